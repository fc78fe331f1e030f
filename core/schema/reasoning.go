package schema

import (
	"github.com/mudler/thinkstream/pkg/reasoning"
	"github.com/mudler/thinkstream/pkg/reasoning/stream"
)

// ClassifyRequest carries model output to be split into payload and
// reasoning events. Either Text or Lines may be set; Lines wins when both are.
type ClassifyRequest struct {
	Text  string   `json:"text,omitempty" yaml:"text,omitempty"`
	Lines []string `json:"lines,omitempty" yaml:"lines,omitempty"`

	// FailFast overrides the configured failure policy for this request.
	FailFast *bool `json:"fail_fast,omitempty" yaml:"fail_fast,omitempty"`
	// Stream switches the response to server-sent events.
	Stream bool `json:"stream,omitempty" yaml:"stream,omitempty"`
}

type ClassifyResponse struct {
	ID     string              `json:"id"`
	Events []stream.Event[any] `json:"events"`
	// Error is set when a fail-fast stream stopped early; Events holds what
	// was emitted before it.
	Error *APIError `json:"error,omitempty"`
}

// ClassifyStreamEvent is one SSE frame of a streamed classification.
type ClassifyStreamEvent struct {
	ID    string             `json:"id"`
	Type  string             `json:"type"`
	Event *stream.Event[any] `json:"event,omitempty"`
	Error *APIError          `json:"error,omitempty"`
}

const (
	ClassifyEventType = "reasoning.event"
	ClassifyErrorType = "reasoning.error"
	ClassifyDoneType  = "reasoning.done"
)

type ExtractRequest struct {
	Text string `json:"text" yaml:"text"`
}

type ExtractResponse struct {
	ID        string            `json:"id,omitempty" yaml:"id,omitempty"`
	Blocks    []reasoning.Block `json:"blocks" yaml:"blocks"`
	Reasoning string            `json:"reasoning" yaml:"reasoning"`
	Content   string            `json:"content" yaml:"content"`
}

// NewExtractResponse builds a response from a batch extraction. Blocks is
// never nil so it always serialises as a list.
func NewExtractResponse(a reasoning.Analysis) ExtractResponse {
	blocks := a.Blocks
	if blocks == nil {
		blocks = []reasoning.Block{}
	}
	return ExtractResponse{
		Blocks:    blocks,
		Reasoning: a.Reasoning,
		Content:   a.Content,
	}
}

// LineRequest asks for the classification of a single line.
type LineRequest struct {
	Line string `json:"line" yaml:"line"`
}

type LineResponse struct {
	State   reasoning.ThinkingState `json:"state"`
	Content string                  `json:"content"`
}
