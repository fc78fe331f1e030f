package reasoning

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
)

// Block is one reasoning fragment extracted from a complete response.
type Block struct {
	Content  string     `json:"content" yaml:"content"`
	Kind     FormatKind `json:"kind" yaml:"kind"`
	FormatID string     `json:"format_id" yaml:"format_id"`
}

type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

type positionedBlock struct {
	Block
	pos int
}

// scan holds the intermediate state of one batch extraction.
type scan struct {
	text    string
	blocks  []positionedBlock
	claimed []span
	// removed covers claimed spans and prefix lines; it drives the working copy.
	removed []span
	// rest is the working copy from the first '{' onwards.
	rest string
}

// ExtractAll extracts every reasoning block from text using the default registry.
func ExtractAll(text string) []Block {
	return defaultRegistry.ExtractAll(text)
}

// ExtractAll returns every reasoning block in text, ordered by where each
// block starts in the source. Phases run in priority order and later phases
// never re-claim text an earlier one took:
//
//   - fixed paired formats, in table order
//   - dynamically discovered <name>...</name> pairs
//   - prefix lines (independently of the tag phases)
//   - whatever is left before the first '{' becomes one NO_MARKER block
//
// Unterminated markup is never matched and ends up, unstripped, in the
// NO_MARKER block.
func (r *Registry) ExtractAll(text string) []Block {
	return r.Analyze(text).Blocks
}

// Split separates text into its reasoning, with blocks joined by a blank
// line, and the structured remainder that follows it.
func (r *Registry) Split(text string) (reasoning string, cleaned string) {
	a := r.Analyze(text)
	return a.Reasoning, a.Content
}

// Split separates text using the default registry.
func Split(text string) (reasoning string, cleaned string) {
	return defaultRegistry.Split(text)
}

// Analysis is the full outcome of a batch extraction: the blocks as
// ExtractAll returns them, plus the reasoning and content of Split.
type Analysis struct {
	Blocks    []Block
	Reasoning string
	Content   string
}

// Analyze runs a single batch extraction over text with the default registry.
func Analyze(text string) Analysis {
	return defaultRegistry.Analyze(text)
}

// Analyze scans text once and returns both the blocks and the split.
func (r *Registry) Analyze(text string) Analysis {
	s := r.scan(text)
	a := Analysis{Content: strings.TrimSpace(s.rest)}
	if len(s.blocks) == 0 {
		return a
	}

	a.Blocks = make([]Block, len(s.blocks))
	parts := make([]string, len(s.blocks))
	for i, b := range s.blocks {
		a.Blocks[i] = b.Block
		parts[i] = b.Content
	}
	a.Reasoning = strings.Join(parts, "\n\n")
	return a
}

func (r *Registry) scan(text string) *scan {
	s := &scan{text: text}
	if strings.TrimSpace(text) == "" {
		return s
	}

	for _, f := range r.paired {
		s.claimFormat(f)
	}
	for _, f := range r.DiscoverDynamicTags(text, nil) {
		s.claimFormat(f)
	}
	s.removed = append(s.removed, s.claimed...)

	r.claimPrefixLines(s)
	s.noMarker(r.noMarker)

	slices.SortStableFunc(s.blocks, func(a, b positionedBlock) int {
		return cmp.Compare(a.pos, b.pos)
	})
	return s
}

func (s *scan) claimFormat(f TagFormat) {
	for _, m := range f.pattern().FindAllStringSubmatchIndex(s.text, -1) {
		sp := span{m[0], m[1]}
		if slices.ContainsFunc(s.claimed, sp.overlaps) {
			continue
		}
		s.claimed = append(s.claimed, sp)

		content := strings.TrimSpace(s.text[m[2]:m[3]])
		if content == "" {
			continue
		}
		s.blocks = append(s.blocks, positionedBlock{
			Block: Block{Content: content, Kind: FormatTag, FormatID: f.ID},
			pos:   m[0],
		})
	}
}

func (r *Registry) claimPrefixLines(s *scan) {
	text := s.text
	for start := 0; start < len(text); {
		end, next := len(text), len(text)
		if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
			end, next = start+i, start+i+1
		}

		if content, ok := r.cutPrefix(strings.TrimSpace(text[start:end])); ok {
			s.removed = append(s.removed, span{start, next})
			if content = strings.TrimSpace(content); content != "" {
				s.blocks = append(s.blocks, positionedBlock{
					Block: Block{Content: content, Kind: FormatPrefix, FormatID: r.prefix.ID},
					pos:   start,
				})
			}
		}
		start = next
	}
}

// noMarker builds the working copy (text minus removed spans) and records
// everything before the boundary as a single NO_MARKER block.
func (s *scan) noMarker(f TagFormat) {
	slices.SortFunc(s.removed, func(a, b span) int { return cmp.Compare(a.start, b.start) })

	type segment struct {
		pos  int
		text string
	}
	var (
		segments []segment
		kept     strings.Builder
		cursor   int
	)
	keep := func(from, to int) {
		if from < to {
			segments = append(segments, segment{from, s.text[from:to]})
			kept.WriteString(s.text[from:to])
		}
	}
	for _, sp := range s.removed {
		keep(cursor, sp.start)
		cursor = max(cursor, sp.end)
	}
	keep(cursor, len(s.text))

	working := kept.String()
	head := working
	if i := strings.Index(working, f.Close); i >= 0 {
		head, s.rest = working[:i], working[i:]
	}

	content := stripOpeningFence(strings.TrimSpace(head))
	if content == "" {
		return
	}

	// map the first non-space character of head back to the source
	offset := strings.IndexFunc(head, func(r rune) bool { return !unicode.IsSpace(r) })
	pos := 0
	for _, seg := range segments {
		if offset < len(seg.text) {
			pos = seg.pos + offset
			break
		}
		offset -= len(seg.text)
	}

	s.blocks = append(s.blocks, positionedBlock{
		Block: Block{Content: content, Kind: FormatNoMarker, FormatID: f.ID},
		pos:   pos,
	})
}

// stripOpeningFence drops a trailing ``` or ```lang line left in front of a
// fenced JSON payload.
func stripOpeningFence(s string) string {
	i := strings.LastIndexByte(s, '\n')
	last := strings.TrimSpace(s[i+1:])
	if !strings.HasPrefix(last, "```") || strings.ContainsAny(last[3:], " `") {
		return s
	}
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(s[:i])
}
