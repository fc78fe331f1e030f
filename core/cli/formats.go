package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	cliContext "github.com/mudler/thinkstream/core/cli/context"
)

type FormatsCMD struct {
	Output string `short:"o" default:"text" enum:"json,text" help:"Output format [${enum}]" group:"output"`
}

func (f *FormatsCMD) Run(ctx *cliContext.Context) error {
	return f.list(ctx, os.Stdout)
}

func (f *FormatsCMD) list(ctx *cliContext.Context, out io.Writer) error {
	cfg, err := loadReasoningConfig(ctx)
	if err != nil {
		return err
	}
	formats := cfg.Registry().Formats()

	if f.Output == "json" {
		return json.NewEncoder(out).Encode(formats)
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tOPEN\tCLOSE")
	for _, format := range formats {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", format.ID, format.Kind, format.Open, format.Close)
	}
	return w.Flush()
}
