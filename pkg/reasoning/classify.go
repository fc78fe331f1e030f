package reasoning

import (
	"fmt"
	"strings"
)

// ThinkingState describes how a single line relates to reasoning markers.
type ThinkingState int

const (
	// StateNone marks a structured payload candidate.
	StateNone ThinkingState = iota
	// StateBoth marks a block that opens and closes on the same line.
	StateBoth
	StateStart
	StateEnd
	// StateContinuation marks a line inside a block, or reasoning with no marker at all.
	StateContinuation
)

var stateNames = map[ThinkingState]string{
	StateNone:         "NONE",
	StateBoth:         "BOTH",
	StateStart:        "START",
	StateEnd:          "END",
	StateContinuation: "CONTINUATION",
}

func (s ThinkingState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ThinkingState(%d)", int(s))
}

func (s ThinkingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ThinkingState) UnmarshalText(b []byte) error {
	for state, name := range stateNames {
		if strings.EqualFold(name, string(b)) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown thinking state %q", string(b))
}

// Classify returns the state of line against the default registry.
func Classify(line string) ThinkingState {
	return defaultRegistry.Classify(line)
}

// Classify returns the state of a single line. Rules are applied in a fixed
// order and the first rule that matches wins:
//
//  1. a complete open...close block, or a prefix line: StateBoth
//  2. the line is exactly an open marker (StateStart) or a close marker (StateEnd)
//  3. starts with an open marker, no close marker of that format: StateStart
//  4. ends with a close marker, no open marker of that format: StateEnd
//  5. looks like a JSON object: StateNone
//  6. anything else: StateContinuation
func (r *Registry) Classify(line string) ThinkingState {
	trimmed := strings.TrimSpace(line)

	for _, f := range r.paired {
		if f.pattern().MatchString(trimmed) {
			return StateBoth
		}
	}
	if _, ok := r.cutPrefix(trimmed); ok {
		return StateBoth
	}

	for _, f := range r.paired {
		if trimmed == f.Open {
			return StateStart
		}
		if trimmed == f.Close {
			return StateEnd
		}
	}

	for _, f := range r.paired {
		if strings.HasPrefix(trimmed, f.Open) && !strings.Contains(trimmed, f.Close) {
			return StateStart
		}
	}

	for _, f := range r.paired {
		if strings.HasSuffix(trimmed, f.Close) && !strings.Contains(trimmed, f.Open) {
			return StateEnd
		}
	}

	if LooksLikeJSON(trimmed) {
		return StateNone
	}

	return StateContinuation
}

// LooksLikeJSON is a deliberately loose check: braces at both ends and a
// colon somewhere. Structural validation is left to the payload decoder.
func LooksLikeJSON(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" &&
		strings.HasPrefix(trimmed, "{") &&
		strings.HasSuffix(trimmed, "}") &&
		strings.Contains(trimmed, ":")
}
