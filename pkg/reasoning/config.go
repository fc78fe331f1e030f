package reasoning

// TagPair represents a start/end tag pair for reasoning extraction
type TagPair struct {
	ID    string `yaml:"id,omitempty" json:"id,omitempty"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

type Config struct {
	TagPairs           []TagPair `yaml:"tag_pairs,omitempty" json:"tag_pairs,omitempty"`
	Prefix             string    `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	DisableDynamicTags *bool     `yaml:"disable_dynamic_tags,omitempty" json:"disable_dynamic_tags,omitempty"`
}

// Options converts the configuration into registry options.
func (c Config) Options() []Option {
	var opts []Option
	if len(c.TagPairs) > 0 {
		opts = append(opts, WithTagPairs(c.TagPairs...))
	}
	if c.Prefix != "" {
		opts = append(opts, WithPrefix(c.Prefix))
	}
	if c.DisableDynamicTags != nil && *c.DisableDynamicTags {
		opts = append(opts, WithoutDynamicTags())
	}
	return opts
}
