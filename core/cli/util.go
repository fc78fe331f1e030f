package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	cliContext "github.com/mudler/thinkstream/core/cli/context"
	"github.com/mudler/thinkstream/core/config"
	"github.com/mudler/xlog"
	"github.com/schollz/progressbar/v3"
)

func loadReasoningConfig(ctx *cliContext.Context) (config.ReasoningConfig, error) {
	if ctx == nil || ctx.ConfigFile == "" {
		return config.DefaultReasoningConfig(), nil
	}
	cfg, err := config.LoadReasoningConfig(ctx.ConfigFile)
	if err != nil {
		return config.ReasoningConfig{}, err
	}
	xlog.Debug("Reasoning configuration loaded", "file", ctx.ConfigFile)
	return *cfg, nil
}

type inputFile struct {
	io.Reader
	closer func() error
}

func (f inputFile) Close() error { return f.closer() }

// openInput opens path for reading, or stdin when path is empty or "-".
// With progress set, reading a regular file draws a progress bar on stderr.
func openInput(path string, progress bool) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !progress {
		return f, nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	bar := progressbar.NewOptions64(
		info.Size(),
		progressbar.OptionSetDescription(fmt.Sprintf("reading %s", filepath.Base(path))),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	return inputFile{
		Reader: io.TeeReader(f, bar),
		closer: func() error {
			_ = bar.Finish()
			return f.Close()
		},
	}, nil
}
