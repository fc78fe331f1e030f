package stream

import (
	"fmt"
	"strings"

	"github.com/mudler/thinkstream/pkg/reasoning"
)

// EventKind tells which side of the union an Event carries.
type EventKind int

const (
	KindPayload EventKind = iota
	KindReasoning
)

func (k EventKind) String() string {
	switch k {
	case KindPayload:
		return "payload"
	case KindReasoning:
		return "reasoning"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EventKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "payload":
		*k = KindPayload
	case "reasoning":
		*k = KindReasoning
	default:
		return fmt.Errorf("unknown event kind %q", string(b))
	}
	return nil
}

// Event is one unit of pipeline output: either a decoded payload (Item) or a
// reasoning fragment (Content and State). Line is the 1-based input line
// the event was produced from.
type Event[T any] struct {
	Kind    EventKind               `json:"kind"`
	Line    int                     `json:"line"`
	Item    T                       `json:"item,omitempty"`
	Content string                  `json:"content,omitempty"`
	State   reasoning.ThinkingState `json:"state,omitempty"`
}

func Payload[T any](line int, item T) Event[T] {
	return Event[T]{Kind: KindPayload, Line: line, Item: item}
}

func Reasoning[T any](line int, content string, state reasoning.ThinkingState) Event[T] {
	return Event[T]{Kind: KindReasoning, Line: line, Content: content, State: state}
}

func (e Event[T]) IsPayload() bool {
	return e.Kind == KindPayload
}
