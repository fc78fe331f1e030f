package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	cliContext "github.com/mudler/thinkstream/core/cli/context"
	"github.com/mudler/thinkstream/core/schema"
	"gopkg.in/yaml.v3"
)

const defaultExtractTemplate = `{{- range .Blocks }}[{{ .FormatID }}] {{ .Content | replace "\n" "\n  " }}
{{ end }}
{{- with .Content }}---
{{ . }}
{{ end }}`

type ExtractCMD struct {
	File string `arg:"" optional:"" name:"file" help:"File to read, stdin when omitted or -"`

	Output   string `short:"o" default:"text" enum:"json,yaml,text" help:"Output format [${enum}]" group:"output"`
	Template string `env:"THINKSTREAM_EXTRACT_TEMPLATE" help:"Go template used for text output; sprig functions are available. Receives .Blocks, .Reasoning and .Content" group:"output"`
	Progress bool   `help:"Show a progress bar while reading a file" group:"output"`
}

func (e *ExtractCMD) Run(ctx *cliContext.Context) error {
	in, err := openInput(e.File, e.Progress)
	if err != nil {
		return err
	}
	defer in.Close()

	return e.extract(ctx, in, os.Stdout)
}

func (e *ExtractCMD) extract(ctx *cliContext.Context, in io.Reader, out io.Writer) error {
	cfg, err := loadReasoningConfig(ctx)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	result := schema.NewExtractResponse(cfg.Registry().Analyze(string(data)))

	switch e.Output {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(result)
	}

	tmpl := e.Template
	if tmpl == "" {
		tmpl = defaultExtractTemplate
	}
	t, err := template.New("extract").Funcs(sprig.FuncMap()).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("invalid output template: %w", err)
	}
	return t.Execute(out, result)
}
