package stream

import (
	"fmt"
	"strings"

	"github.com/mudler/thinkstream/pkg/reasoning"
)

// Policy decides what happens when a payload line fails to decode.
type Policy int

const (
	// Resilient re-emits the failing line as continuation reasoning and keeps going.
	Resilient Policy = iota
	// FailFast ends the stream with a *DecodeError.
	FailFast
)

func (p Policy) String() string {
	switch p {
	case Resilient:
		return "resilient"
	case FailFast:
		return "fail-fast"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy accepts "resilient" and "fail-fast" (or "fail_fast"); an empty
// string selects Resilient.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "resilient":
		return Resilient, nil
	case "fail-fast", "fail_fast", "failfast":
		return FailFast, nil
	}
	return Resilient, fmt.Errorf("unknown failure policy %q", s)
}

// Observer is notified of every emitted event and every decode failure.
// It must not block; it never alters the stream.
type Observer interface {
	ObserveEvent(kind EventKind, state reasoning.ThinkingState)
	ObserveDecodeFailure(err error)
}

type options struct {
	registry *reasoning.Registry
	policy   Policy
	observer Observer
}

// Option is a functional option for configuring a Pipeline
type Option func(*options)

func WithRegistry(r *reasoning.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.registry = r
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}
