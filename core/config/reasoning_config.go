package config

import (
	"errors"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/mudler/thinkstream/pkg/decoder"
	"github.com/mudler/thinkstream/pkg/reasoning"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
	"gopkg.in/yaml.v3"
)

// ReasoningConfigFile is the name the dynamic config watcher looks for.
const ReasoningConfigFile = "reasoning.yaml"

var ErrInvalidReasoningConfig = errors.New("invalid reasoning configuration")

// ReasoningConfig is the YAML form of the reasoning setup:
//
//	tag_pairs:
//	  - start: "<<THINK>>"
//	    end: "<</THINK>>"
//	prefix: "//THINKING:"
//	disable_dynamic_tags: false
//	failure_policy: resilient
//	schema: payload.schema.json
type ReasoningConfig struct {
	reasoning.Config `yaml:",inline"`

	FailurePolicy string `yaml:"failure_policy,omitempty" json:"failure_policy,omitempty"`
	// Schema is the path of a JSON schema payload lines must satisfy.
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`
}

func DefaultReasoningConfig() ReasoningConfig {
	return ReasoningConfig{
		Config: reasoning.Config{
			Prefix: reasoning.DefaultPrefix,
		},
		FailurePolicy: stream.Resilient.String(),
	}
}

// LoadReasoningConfig reads path and fills unset fields from the defaults.
func LoadReasoningConfig(path string) (*ReasoningConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read reasoning config %s: %w", path, err)
	}
	cfg, err := ParseReasoningConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func ParseReasoningConfig(data []byte) (*ReasoningConfig, error) {
	return DefaultReasoningConfig().Overlay(data)
}

// Overlay parses data and takes every field the document leaves unset from c.
func (c ReasoningConfig) Overlay(data []byte) (*ReasoningConfig, error) {
	cfg := &ReasoningConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReasoningConfig, err)
	}
	if err := mergo.Merge(cfg, c); err != nil {
		return nil, err
	}
	if err := mergo.Merge(cfg, DefaultReasoningConfig()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c ReasoningConfig) Validate() error {
	for i, p := range c.TagPairs {
		if p.Start == "" || p.End == "" {
			return fmt.Errorf("%w: tag pair %d has an empty marker", ErrInvalidReasoningConfig, i)
		}
	}
	if _, err := stream.ParsePolicy(c.FailurePolicy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidReasoningConfig, err)
	}
	return nil
}

func (c ReasoningConfig) Registry() *reasoning.Registry {
	return reasoning.NewRegistry(c.Options()...)
}

// Policy returns the configured failure policy, Resilient when unparsable.
func (c ReasoningConfig) Policy() stream.Policy {
	p, _ := stream.ParsePolicy(c.FailurePolicy)
	return p
}

// Decoder returns the payload decoder: schema-validated when a schema is
// configured, plain JSON otherwise.
func (c ReasoningConfig) Decoder() (stream.Decoder[any], error) {
	if c.Schema == "" {
		return decoder.JSON[any](), nil
	}
	return decoder.FromFile(c.Schema)
}

// Pipeline assembles a stream pipeline from the configuration.
func (c ReasoningConfig) Pipeline(opts ...stream.Option) (*stream.Pipeline[any], error) {
	decode, err := c.Decoder()
	if err != nil {
		return nil, err
	}
	opts = append([]stream.Option{
		stream.WithRegistry(c.Registry()),
		stream.WithPolicy(c.Policy()),
	}, opts...)
	return stream.New(decode, opts...), nil
}
