package stream

import (
	"context"
	"io"
	"iter"
	"strings"

	"github.com/mudler/thinkstream/pkg/reasoning"
	"github.com/mudler/thinkstream/pkg/xio"
	"github.com/mudler/xlog"
)

// Decoder turns a payload line into a value, or fails. It receives the line
// with surrounding whitespace trimmed; in resilient mode the same trimmed
// line becomes the content of the reasoning event that replaces a failure.
type Decoder[T any] func(line string) (T, error)

// Pipeline classifies a line-oriented stream into payload and reasoning
// events. It keeps no state between lines, so one Pipeline can serve any
// number of concurrent streams.
type Pipeline[T any] struct {
	decode   Decoder[T]
	registry *reasoning.Registry
	policy   Policy
	observer Observer
}

func New[T any](decode Decoder[T], opts ...Option) *Pipeline[T] {
	o := &options{
		registry: reasoning.DefaultRegistry(),
		policy:   Resilient,
	}
	for _, opt := range opts {
		opt(o)
	}
	return &Pipeline[T]{
		decode:   decode,
		registry: o.registry,
		policy:   o.policy,
		observer: o.observer,
	}
}

func (p *Pipeline[T]) Registry() *reasoning.Registry { return p.registry }

func (p *Pipeline[T]) Policy() Policy { return p.policy }

// Process handles a single line. emit is false for blank lines. In fail-fast
// mode a decode failure is returned as a *DecodeError.
func (p *Pipeline[T]) Process(lineNo int, line string) (ev Event[T], emit bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ev, false, nil
	}

	state := p.registry.Classify(line)
	if state != reasoning.StateNone {
		return p.observe(Reasoning[T](lineNo, p.registry.Extract(line), state)), true, nil
	}

	item, decodeErr := p.decode(trimmed)
	if decodeErr == nil {
		return p.observe(Payload(lineNo, item)), true, nil
	}

	if p.observer != nil {
		p.observer.ObserveDecodeFailure(decodeErr)
	}
	if p.policy == FailFast {
		return ev, true, &DecodeError{Line: lineNo, Input: trimmed, Err: decodeErr}
	}

	xlog.Debug("Payload line failed to decode, keeping it as reasoning", "line", lineNo, "error", decodeErr)
	return p.observe(Reasoning[T](lineNo, trimmed, reasoning.StateContinuation)), true, nil
}

func (p *Pipeline[T]) observe(ev Event[T]) Event[T] {
	if p.observer != nil {
		p.observer.ObserveEvent(ev.Kind, ev.State)
	}
	return ev
}

// Classify lazily turns lines into events. Blank lines produce nothing; every
// other line produces exactly one event, in input order. In fail-fast mode
// the sequence ends after yielding the first *DecodeError.
func (p *Pipeline[T]) Classify(lines iter.Seq[string]) iter.Seq2[Event[T], error] {
	return func(yield func(Event[T], error) bool) {
		n := 0
		for line := range lines {
			n++
			ev, emit, err := p.Process(n, line)
			if !emit {
				continue
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// ClassifyReader reads lines from r as they arrive. Read failures and
// context cancellation are yielded as errors and end the sequence.
func (p *Pipeline[T]) ClassifyReader(ctx context.Context, r io.Reader) iter.Seq2[Event[T], error] {
	return func(yield func(Event[T], error) bool) {
		n := 0
		for line, err := range xio.Lines(ctx, r) {
			if err != nil {
				var zero Event[T]
				yield(zero, err)
				return
			}
			n++
			ev, emit, err := p.Process(n, line)
			if !emit {
				continue
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// ClassifyText splits text on line boundaries and classifies it.
func (p *Pipeline[T]) ClassifyText(text string) iter.Seq2[Event[T], error] {
	return p.Classify(strings.Lines(text))
}

// Collect drains seq, stopping at the first error. The events gathered before
// the error are returned with it.
func Collect[T any](seq iter.Seq2[Event[T], error]) ([]Event[T], error) {
	var events []Event[T]
	for ev, err := range seq {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
