package application

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mudler/thinkstream/core/config"
	"github.com/mudler/xlog"
)

type fileHandler func(fileContent []byte, app *Application) error

// configFileHandler calls a handler whenever one of the files it knows
// about changes inside the dynamic configuration directory.
type configFileHandler struct {
	handlers map[string]fileHandler

	watcher *fsnotify.Watcher
	done    chan struct{}
	stop    sync.Once

	// serialises handler calls between the fsnotify and polling loops
	mu sync.Mutex

	app *Application
}

func newConfigFileHandler(app *Application) *configFileHandler {
	c := &configFileHandler{
		handlers: make(map[string]fileHandler),
		done:     make(chan struct{}),
		app:      app,
	}
	err := c.Register(config.ReasoningConfigFile, readReasoningYAML(app.ApplicationConfig().Reasoning), true)
	if err != nil {
		xlog.Error("unable to register config file handler", "error", err, "file", config.ReasoningConfigFile)
	}
	return c
}

func (c *configFileHandler) Register(filename string, handler fileHandler, runNow bool) error {
	_, ok := c.handlers[filename]
	if ok {
		return fmt.Errorf("handler already registered for file %s", filename)
	}
	c.handlers[filename] = handler
	if runNow {
		c.callHandler(filename, handler)
	}
	return nil
}

func (c *configFileHandler) callHandler(filename string, handler fileHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rootedFilePath := filepath.Join(c.app.ApplicationConfig().DynamicConfigsDir, filepath.Clean(filename))
	xlog.Debug("reading file for dynamic config update", "filename", rootedFilePath)
	fileContent, err := os.ReadFile(rootedFilePath)
	if err != nil && !os.IsNotExist(err) {
		xlog.Error("could not read file", "error", err, "filename", rootedFilePath)
		return
	}

	if err = handler(fileContent, c.app); err != nil {
		xlog.Error("config watcher failed to apply dynamic configuration", "error", err, "filename", rootedFilePath)
	}
}

func (c *configFileHandler) Watch() error {
	configWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	c.watcher = configWatcher

	if interval := c.app.ApplicationConfig().DynamicConfigsDirPollInterval; interval > 0 {
		xlog.Debug("Poll interval set, falling back to polling for configuration changes", "interval", interval)
		ticker := time.NewTicker(interval)
		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					for file, handler := range c.handlers {
						xlog.Debug("polling config file", "file", file)
						c.callHandler(file, handler)
					}
				case <-c.done:
					return
				}
			}
		}()
	}

	go func() {
		for {
			select {
			case event, ok := <-c.watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename) {
					handler, ok := c.handlers[filepath.Base(event.Name)]
					if !ok {
						continue
					}
					c.callHandler(filepath.Base(event.Name), handler)
				}
			case err, ok := <-c.watcher.Errors:
				if !ok {
					return
				}
				xlog.Error("config watcher error received", "error", err)
			}
		}
	}()

	if err := c.watcher.Add(c.app.ApplicationConfig().DynamicConfigsDir); err != nil {
		return fmt.Errorf("unable to create a watcher on the configuration directory: %w", err)
	}

	return nil
}

func (c *configFileHandler) Stop() error {
	var err error
	c.stop.Do(func() {
		close(c.done)
		if c.watcher != nil {
			err = c.watcher.Close()
		}
	})
	return err
}

// readReasoningYAML applies reasoning.yaml over the startup configuration.
// A missing or empty file restores the startup configuration; an invalid
// one leaves the running configuration untouched.
func readReasoningYAML(startup config.ReasoningConfig) fileHandler {
	return func(fileContent []byte, app *Application) error {
		xlog.Debug("processing reasoning.yaml runtime update")

		if len(fileContent) == 0 {
			xlog.Debug("no dynamic reasoning configuration, using the startup one")
			return app.Reload(startup)
		}

		cfg, err := startup.Overlay(fileContent)
		if err != nil {
			return err
		}
		if err := app.Reload(*cfg); err != nil {
			return err
		}
		xlog.Info("reasoning configuration reloaded", "tag_pairs", len(cfg.TagPairs), "policy", cfg.FailurePolicy)
		return nil
	}
}
