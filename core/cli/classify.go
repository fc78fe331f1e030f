package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	cliContext "github.com/mudler/thinkstream/core/cli/context"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	"github.com/mudler/thinkstream/pkg/signals"
)

type ClassifyCMD struct {
	File string `arg:"" optional:"" name:"file" help:"File to classify, stdin when omitted or -"`

	FailFast bool   `env:"THINKSTREAM_FAIL_FAST" help:"Stop at the first payload line that fails to decode" group:"classify"`
	Schema   string `env:"THINKSTREAM_SCHEMA" type:"path" help:"JSON schema every payload line must satisfy" group:"classify"`
	Output   string `short:"o" default:"json" enum:"json,text" help:"Output format [${enum}]" group:"output"`
	Progress bool   `help:"Show a progress bar while reading a file" group:"output"`
}

func (c *ClassifyCMD) Run(ctx *cliContext.Context) error {
	in, err := openInput(c.File, c.Progress)
	if err != nil {
		return err
	}
	defer in.Close()

	sigCtx, stop := signals.Context(context.Background())
	defer stop()
	return c.classify(sigCtx, ctx, in, os.Stdout)
}

func (c *ClassifyCMD) classify(ctx context.Context, cliCtx *cliContext.Context, in io.Reader, out io.Writer) error {
	cfg, err := loadReasoningConfig(cliCtx)
	if err != nil {
		return err
	}
	if c.Schema != "" {
		cfg.Schema = c.Schema
	}
	if c.FailFast {
		cfg.FailurePolicy = stream.FailFast.String()
	}

	pipeline, err := cfg.Pipeline()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for ev, err := range pipeline.ClassifyReader(ctx, in) {
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("classification interrupted: %w", context.Cause(ctx))
			}
			return err
		}
		if c.Output == "text" {
			err = writeEventText(out, ev)
		} else {
			err = enc.Encode(ev)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEventText(out io.Writer, ev stream.Event[any]) error {
	if ev.IsPayload() {
		item, err := json.Marshal(ev.Item)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%d\t%s\t%s\n", ev.Line, ev.Kind, item)
		return err
	}
	_, err := fmt.Fprintf(out, "%d\t%s\t%s\t%s\n", ev.Line, ev.Kind, ev.State, ev.Content)
	return err
}
