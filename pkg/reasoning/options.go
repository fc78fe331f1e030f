package reasoning

// options holds the configuration for a Registry
type options struct {
	tagPairs       []TagPair
	prefix         string
	disableDynamic bool
}

// Option is a functional option for configuring a Registry
type Option func(*options)

// WithTagPairs registers additional paired markers after the built-in table.
// Pairs whose ID or start marker collide with an existing format are skipped.
func WithTagPairs(pairs ...TagPair) Option {
	return func(o *options) {
		o.tagPairs = append(o.tagPairs, pairs...)
	}
}

// WithPrefix replaces the legacy line prefix marker (//THINKING: by default).
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithoutDynamicTags turns off discovery of undeclared <name>...</name> pairs
// during batch extraction.
func WithoutDynamicTags() Option {
	return func(o *options) {
		o.disableDynamic = true
	}
}
