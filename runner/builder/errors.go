package builder

import "github.com/pkg/errors"

var (
	// ErrSpecIncomplete is returned when a reduction cannot be built from the
	// supplied callbacks, or when a call binds the wrong number of inputs
	ErrSpecIncomplete = errors.New("reduction kernel spec incomplete")

	// ErrInvalidDims is returned when an allocation shape is malformed or does
	// not match its data length
	ErrInvalidDims = errors.New("invalid allocation dimensions")
)
