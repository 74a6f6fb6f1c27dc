package runner

import "github.com/pkg/errors"

var (
	// ErrInputLengthMismatch is returned when the input buffers of one call
	// do not share the same dimensions
	ErrInputLengthMismatch = errors.New("input dimension mismatch")

	// ErrNilInput is returned when an input buffer is nil
	ErrNilInput = errors.New("nil input")

	// ErrInputType is returned when an input buffer's element type differs
	// from the type the reduction declares for that position
	ErrInputType = errors.New("input element type mismatch")

	// ErrKernelPanic is returned when a reduction callback panics
	ErrKernelPanic = errors.New("reduction kernel panicked")
)
