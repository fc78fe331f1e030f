package reasoning

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mudler/thinkstream/pkg/utils"
	"github.com/mudler/xlog"
)

// FormatKind tells how a reasoning block was delimited in the source text.
type FormatKind int

const (
	FormatTag FormatKind = iota
	FormatPrefix
	FormatNoMarker
)

func (k FormatKind) String() string {
	switch k {
	case FormatTag:
		return "TAG"
	case FormatPrefix:
		return "PREFIX"
	case FormatNoMarker:
		return "NO_MARKER"
	}
	return fmt.Sprintf("FormatKind(%d)", int(k))
}

func (k FormatKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FormatKind) UnmarshalText(b []byte) error {
	switch strings.ToUpper(string(b)) {
	case "TAG":
		*k = FormatTag
	case "PREFIX":
		*k = FormatPrefix
	case "NO_MARKER":
		*k = FormatNoMarker
	default:
		return fmt.Errorf("unknown format kind %q", string(b))
	}
	return nil
}

const (
	// DefaultPrefix is the legacy single-line reasoning marker.
	DefaultPrefix = "//THINKING:"

	PrefixID   = "THINKING"
	NoMarkerID = "no_marker"
)

// TagFormat describes one recognised way of delimiting reasoning content.
//
// For paired formats Open and Close are literal markers. The prefix format
// has an empty Close and covers the rest of the line. The no-marker fallback
// has an empty Open and uses Close ("{") as a lookahead boundary.
type TagFormat struct {
	ID      string     `json:"id" yaml:"id"`
	Open    string     `json:"open" yaml:"open"`
	Close   string     `json:"close,omitempty" yaml:"close,omitempty"`
	Kind    FormatKind `json:"kind" yaml:"kind"`
	Dynamic bool       `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
}

// Built-in paired formats, in priority order.
var builtinPairs = []TagFormat{
	{ID: "think", Open: "<think>", Close: "</think>"},
	{ID: "analysis", Open: "<analysis>", Close: "</analysis>"},
	{ID: "thought", Open: "<thought>", Close: "</thought>"},
	{ID: "final", Open: "<final>", Close: "</final>"},
	{ID: "scratchpad", Open: "<scratchpad>", Close: "</scratchpad>"},
	{ID: "chain_of_thought", Open: "<chain_of_thought>", Close: "</chain_of_thought>"},
	{ID: "reasoning", Open: "[REASONING]", Close: "[/REASONING]"},
}

var (
	patterns = utils.NewRegexpStore()

	// an opening tag whose name starts with a letter, optionally followed by attributes
	openTagRegex = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9_-]*)(?:\s[^<>]*)?>`)
	tagNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// pattern returns the expression matching one complete block of this format;
// group 1 captures the content between the markers.
func (f TagFormat) pattern() *regexp.Regexp {
	if f.Dynamic {
		name := regexp.QuoteMeta(f.ID)
		return patterns.MustGet(`(?s)<` + name + `(?:\s[^<>]*)?>(.*?)</` + name + `>`)
	}
	return patterns.MustGet(`(?s)` + regexp.QuoteMeta(f.Open) + `(.*?)` + regexp.QuoteMeta(f.Close))
}

// Registry is an immutable snapshot of the recognised formats.
// A Registry is safe for concurrent use.
type Registry struct {
	paired   []TagFormat
	prefix   TagFormat
	noMarker TagFormat
	dynamic  bool
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry holding only the built-in table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

func NewRegistry(opts ...Option) *Registry {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	prefix := DefaultPrefix
	if o.prefix != "" {
		prefix = o.prefix
	}

	r := &Registry{
		paired:   make([]TagFormat, 0, len(builtinPairs)+len(o.tagPairs)),
		prefix:   TagFormat{ID: PrefixID, Open: prefix, Kind: FormatPrefix},
		noMarker: TagFormat{ID: NoMarkerID, Close: "{", Kind: FormatNoMarker},
		dynamic:  !o.disableDynamic,
	}

	ids := map[string]struct{}{PrefixID: {}, NoMarkerID: {}}
	opens := map[string]struct{}{prefix: {}}
	add := func(f TagFormat) bool {
		if _, dup := ids[f.ID]; dup {
			return false
		}
		if _, dup := opens[f.Open]; dup {
			return false
		}
		ids[f.ID] = struct{}{}
		opens[f.Open] = struct{}{}
		r.paired = append(r.paired, f)
		return true
	}

	for _, f := range builtinPairs {
		add(f)
	}
	for i, p := range o.tagPairs {
		if p.Start == "" || p.End == "" {
			xlog.Warn("Skipping reasoning tag pair with an empty marker", "start", p.Start, "end", p.End)
			continue
		}
		id := p.ID
		if id == "" {
			id = pairID(p, i)
		}
		if !add(TagFormat{ID: id, Open: p.Start, Close: p.End, Kind: FormatTag}) {
			xlog.Warn("Skipping duplicate reasoning tag pair", "id", id, "start", p.Start)
		}
	}

	return r
}

// pairID derives an identifier for a configured pair: the tag name for
// <name> style markers, a positional name otherwise.
func pairID(p TagPair, i int) string {
	if name, ok := xmlName(p.Start); ok {
		return name
	}
	return fmt.Sprintf("custom_%d", i)
}

// xmlName returns "name" for a bare "<name>" marker.
func xmlName(marker string) (string, bool) {
	if !strings.HasPrefix(marker, "<") || !strings.HasSuffix(marker, ">") {
		return "", false
	}
	name := marker[1 : len(marker)-1]
	if !tagNameRegex.MatchString(name) {
		return "", false
	}
	return name, true
}

// Paired returns the fixed paired formats in priority order.
func (r *Registry) Paired() []TagFormat {
	out := make([]TagFormat, len(r.paired))
	copy(out, r.paired)
	return out
}

func (r *Registry) Prefix() TagFormat { return r.prefix }

func (r *Registry) NoMarker() TagFormat { return r.noMarker }

// Formats returns every marker-based format: paired ones first, then the prefix.
func (r *Registry) Formats() []TagFormat {
	return append(r.Paired(), r.prefix)
}

func (r *Registry) DynamicTagsEnabled() bool { return r.dynamic }

// claimedNames are the tag names dynamic discovery must never report again.
func (r *Registry) claimedNames() map[string]struct{} {
	claimed := make(map[string]struct{}, len(r.paired)*2)
	for _, f := range r.paired {
		claimed[f.ID] = struct{}{}
		if name, ok := xmlName(f.Open); ok {
			claimed[name] = struct{}{}
		}
	}
	return claimed
}

// cutPrefix reports whether an already trimmed line carries the prefix marker
// and returns what follows it.
func (r *Registry) cutPrefix(trimmed string) (string, bool) {
	return strings.CutPrefix(trimmed, r.prefix.Open)
}

// DiscoverDynamicTags finds well-formed <name ...>...</name> pairs whose name
// is not in claimed. Each name is reported once, in order of first occurrence.
func DiscoverDynamicTags(text string, claimed map[string]struct{}) []TagFormat {
	var found []TagFormat
	seen := map[string]struct{}{}
	for _, m := range openTagRegex.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if _, ok := claimed[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		if !strings.Contains(text[m[1]:], "</"+name+">") {
			continue
		}
		seen[name] = struct{}{}
		found = append(found, TagFormat{
			ID:      name,
			Open:    "<" + name + ">",
			Close:   "</" + name + ">",
			Kind:    FormatTag,
			Dynamic: true,
		})
	}
	return found
}

// DiscoverDynamicTags runs discovery with the registry's own names claimed
// in addition to the given ones. It returns nil when discovery is disabled.
func (r *Registry) DiscoverDynamicTags(text string, claimed map[string]struct{}) []TagFormat {
	if !r.dynamic {
		return nil
	}
	all := r.claimedNames()
	for name := range claimed {
		all[name] = struct{}{}
	}
	return DiscoverDynamicTags(text, all)
}
