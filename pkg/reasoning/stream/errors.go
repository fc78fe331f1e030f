package stream

import (
	"errors"
	"fmt"
)

// ErrDecode matches every DecodeError via errors.Is.
var ErrDecode = errors.New("payload decode failed")

// DecodeError is returned in fail-fast mode when a line classified as a
// payload cannot be decoded.
type DecodeError struct {
	Line  int
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
