package application

import (
	"sync"
	"sync/atomic"

	"github.com/mudler/thinkstream/core/config"
	"github.com/mudler/thinkstream/core/services"
	"github.com/mudler/thinkstream/pkg/reasoning"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	"github.com/mudler/xlog"
)

// Runtime is an immutable set of objects built from one ReasoningConfig.
// Requests load it once and use it until they finish, so a reload never
// changes the rules in the middle of a stream.
type Runtime struct {
	Config   config.ReasoningConfig
	Registry *reasoning.Registry
	Pipeline *stream.Pipeline[any]

	decode   stream.Decoder[any]
	observer stream.Observer
}

// PipelineFor returns a pipeline sharing this runtime's registry, decoder
// and observer but applying the given failure policy.
func (r *Runtime) PipelineFor(policy stream.Policy) *stream.Pipeline[any] {
	if policy == r.Pipeline.Policy() {
		return r.Pipeline
	}
	opts := []stream.Option{stream.WithRegistry(r.Registry), stream.WithPolicy(policy)}
	if r.observer != nil {
		opts = append(opts, stream.WithObserver(r.observer))
	}
	return stream.New(r.decode, opts...)
}

type Application struct {
	applicationConfig *config.ApplicationConfig
	metricsService    *services.MetricsService
	configHandler     *configFileHandler

	runtime atomic.Pointer[Runtime]

	stopOnce sync.Once
	stopErr  error
}

func newApplication(appConfig *config.ApplicationConfig) *Application {
	return &Application{
		applicationConfig: appConfig,
	}
}

func (a *Application) ApplicationConfig() *config.ApplicationConfig {
	return a.applicationConfig
}

// MetricsService is nil when metrics are disabled.
func (a *Application) MetricsService() *services.MetricsService {
	return a.metricsService
}

func (a *Application) Runtime() *Runtime {
	return a.runtime.Load()
}

// Reload validates cfg and swaps the active runtime. On error the previous
// runtime stays in place.
func (a *Application) Reload(cfg config.ReasoningConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	decode, err := cfg.Decoder()
	if err != nil {
		return err
	}

	rt := &Runtime{
		Config:   cfg,
		Registry: cfg.Registry(),
		decode:   decode,
	}
	opts := []stream.Option{stream.WithRegistry(rt.Registry), stream.WithPolicy(cfg.Policy())}
	if a.metricsService != nil {
		rt.observer = a.metricsService
		opts = append(opts, stream.WithObserver(rt.observer))
	}
	rt.Pipeline = stream.New(decode, opts...)

	a.runtime.Store(rt)
	xlog.Debug("Reasoning runtime loaded", "formats", len(rt.Registry.Formats()), "policy", rt.Pipeline.Policy(), "schema", cfg.Schema)
	return nil
}
