package application

import (
	"context"
	"fmt"
	"os"

	"github.com/mudler/thinkstream/core/config"
	"github.com/mudler/thinkstream/core/services"
	"github.com/mudler/thinkstream/internal"
	"github.com/mudler/xlog"
)

func New(opts ...config.AppOption) (*Application, error) {
	options := config.NewApplicationConfig(opts...)
	application := newApplication(options)

	xlog.Info("Starting thinkstream", "version", internal.PrintableVersion())

	if options.ConfigFile != "" {
		cfg, err := config.LoadReasoningConfig(options.ConfigFile)
		if err != nil {
			return nil, err
		}
		options.Reasoning = *cfg
		xlog.Debug("Reasoning configuration loaded", "file", options.ConfigFile)
	}

	if !options.DisableMetrics {
		metricsService, err := services.NewMetricsService()
		if err != nil {
			return nil, err
		}
		application.metricsService = metricsService
	}

	if err := application.Reload(options.Reasoning); err != nil {
		return nil, fmt.Errorf("invalid reasoning configuration: %w", err)
	}

	if options.DynamicConfigsDir != "" {
		if err := os.MkdirAll(options.DynamicConfigsDir, 0750); err != nil {
			return nil, fmt.Errorf("unable to create DynamicConfigsDir: %q", err)
		}

		configHandler := newConfigFileHandler(application)
		if err := configHandler.Watch(); err != nil {
			xlog.Error("couldn't set up the config file watcher", "error", err)
		} else {
			application.configHandler = configHandler
		}
	}

	go func() {
		<-options.Context.Done()
		xlog.Debug("Context canceled, shutting down")
		if err := application.Stop(); err != nil {
			xlog.Error("error while shutting down", "error", err)
		}
	}()

	return application, nil
}

// Stop closes the config watcher and flushes metrics. It is safe to call
// more than once.
func (a *Application) Stop() error {
	a.stopOnce.Do(func() {
		if a.configHandler != nil {
			if err := a.configHandler.Stop(); err != nil {
				a.stopErr = err
			}
		}
		if a.metricsService != nil {
			if err := a.metricsService.Shutdown(context.Background()); err != nil && a.stopErr == nil {
				a.stopErr = err
			}
		}
	})
	return a.stopErr
}
