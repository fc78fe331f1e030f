package cli

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/mudler/thinkstream/core/application"
	cliContext "github.com/mudler/thinkstream/core/cli/context"
	"github.com/mudler/thinkstream/core/config"
	"github.com/mudler/thinkstream/core/http"
	"github.com/mudler/thinkstream/pkg/signals"
	"github.com/mudler/xlog"
)

type RunCMD struct {
	Address                 string        `env:"THINKSTREAM_ADDRESS,ADDRESS" default:":8080" help:"Bind address for the API server" group:"api"`
	UploadLimit             int           `env:"THINKSTREAM_UPLOAD_LIMIT,UPLOAD_LIMIT" default:"15" help:"Default upload-limit in MB" group:"api"`
	DisableMetricsEndpoint  bool          `env:"THINKSTREAM_DISABLE_METRICS_ENDPOINT,DISABLE_METRICS_ENDPOINT" default:"false" help:"Disable the /metrics endpoint" group:"api"`
	OpaqueErrors            bool          `env:"THINKSTREAM_OPAQUE_ERRORS" default:"false" help:"If true, all error responses are replaced with blank errors carrying only the status code" group:"hardening"`
	ConfigDir               string        `env:"THINKSTREAM_CONFIG_DIR" type:"path" default:"${basepath}/configuration" help:"Directory watched for reasoning.yaml, applied over the startup configuration" group:"storage"`
	ConfigDirPollInterval   time.Duration `env:"THINKSTREAM_CONFIG_DIR_POLL_INTERVAL" help:"Typically the config dir picks up changes automatically, but if your system has broken fsnotify events, set this to an interval to poll it (example: 1m)" group:"storage"`
	GracefulShutdownTimeout time.Duration `env:"THINKSTREAM_SHUTDOWN_TIMEOUT" default:"10s" help:"Time allowed for in-flight requests to finish on shutdown" group:"api"`
}

func (r *RunCMD) appOptions(ctx *cliContext.Context) []config.AppOption {
	opts := []config.AppOption{
		config.WithContext(context.Background()),
		config.WithAddress(r.Address),
		config.WithUploadLimitMB(r.UploadLimit),
		config.WithDynamicConfigDir(r.ConfigDir),
		config.WithDynamicConfigDirPollInterval(r.ConfigDirPollInterval),
	}
	if ctx != nil {
		opts = append(opts, config.WithConfigFile(ctx.ConfigFile))
		if ctx.LogLevel != nil {
			opts = append(opts, config.WithDebug(*ctx.LogLevel == "debug" || *ctx.LogLevel == "trace"))
		}
	}
	if r.DisableMetricsEndpoint {
		opts = append(opts, config.DisableMetricsEndpoint)
	}
	if r.OpaqueErrors {
		opts = append(opts, config.EnableOpaqueErrors)
	}
	return opts
}

func (r *RunCMD) Run(ctx *cliContext.Context) error {
	app, err := application.New(r.appOptions(ctx)...)
	if err != nil {
		return err
	}

	appHTTP, err := http.API(app)
	if err != nil {
		xlog.Error("error during HTTP App construction", "error", err)
		return err
	}

	xlog.Info("thinkstream is started and running", "address", r.Address)

	signals.RegisterGracefulTerminationHandler(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), r.GracefulShutdownTimeout)
		defer cancel()
		if err := appHTTP.Shutdown(shutdownCtx); err != nil {
			xlog.Error("error while shutting down the HTTP server", "error", err)
		}
		if err := app.Stop(); err != nil {
			xlog.Error("error while stopping the application", "error", err)
		}
	})

	if err := appHTTP.Start(r.Address); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
		return err
	}
	return nil
}
