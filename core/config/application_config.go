package config

import (
	"context"
	"time"
)

type ApplicationConfig struct {
	Context context.Context

	Address                       string
	ConfigFile                    string
	DynamicConfigsDir             string
	DynamicConfigsDirPollInterval time.Duration
	UploadLimitMB                 int
	Debug                         bool
	DisableMetrics                bool
	OpaqueErrors                  bool

	// Reasoning is the configuration loaded at startup; the dynamic config
	// watcher may replace it at runtime through the Application.
	Reasoning ReasoningConfig
}

type AppOption func(*ApplicationConfig)

func NewApplicationConfig(o ...AppOption) *ApplicationConfig {
	opt := &ApplicationConfig{
		Context:       context.Background(),
		Address:       ":8080",
		UploadLimitMB: 15,
		Reasoning:     DefaultReasoningConfig(),
	}
	for _, oo := range o {
		oo(opt)
	}
	return opt
}

func WithContext(ctx context.Context) AppOption {
	return func(o *ApplicationConfig) {
		o.Context = ctx
	}
}

func WithAddress(address string) AppOption {
	return func(o *ApplicationConfig) {
		o.Address = address
	}
}

// WithConfigFile sets the reasoning YAML file read at startup.
func WithConfigFile(configFile string) AppOption {
	return func(o *ApplicationConfig) {
		o.ConfigFile = configFile
	}
}

func WithDynamicConfigDir(dynamicConfigsDir string) AppOption {
	return func(o *ApplicationConfig) {
		o.DynamicConfigsDir = dynamicConfigsDir
	}
}

func WithDynamicConfigDirPollInterval(interval time.Duration) AppOption {
	return func(o *ApplicationConfig) {
		o.DynamicConfigsDirPollInterval = interval
	}
}

func WithUploadLimitMB(limit int) AppOption {
	return func(o *ApplicationConfig) {
		o.UploadLimitMB = limit
	}
}

func WithDebug(debug bool) AppOption {
	return func(o *ApplicationConfig) {
		o.Debug = debug
	}
}

func WithReasoningConfig(cfg ReasoningConfig) AppOption {
	return func(o *ApplicationConfig) {
		o.Reasoning = cfg
	}
}

var DisableMetricsEndpoint AppOption = func(o *ApplicationConfig) {
	o.DisableMetrics = true
}

var EnableOpaqueErrors AppOption = func(o *ApplicationConfig) {
	o.OpaqueErrors = true
}
