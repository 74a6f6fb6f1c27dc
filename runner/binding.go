package runner

import (
	"reflect"

	"github.com/notargets/DGReduce/runner/builder"
	"github.com/pkg/errors"
)

// bindInputs checks the call's buffers against the declared inputs and
// returns the shared domain shape. Nothing is scheduled when it fails.
func bindInputs(name string, declared []builder.DataType, inputs []builder.Buffer) (builder.Dims, error) {
	var dims builder.Dims

	if len(inputs) != len(declared) {
		return dims, errors.Wrapf(builder.ErrSpecIncomplete,
			"reduction %q declares %d inputs, %d bound", name, len(declared), len(inputs))
	}

	for i, in := range inputs {
		if isNilBuffer(in) {
			return dims, errors.Wrapf(ErrNilInput, "reduction %q input %d", name, i)
		}
		if in.Type() != declared[i] {
			return dims, errors.Wrapf(ErrInputType, "reduction %q input %d: expected %s, got %s",
				name, i, declared[i], in.Type())
		}
		if err := in.Dims().Validate(); err != nil {
			return dims, errors.WithMessagef(err, "reduction %q input %d", name, i)
		}
		if in.Len() != in.Dims().Count() {
			return dims, errors.Wrapf(builder.ErrInvalidDims, "reduction %q input %d: dims %v, length %d",
				name, i, in.Dims(), in.Len())
		}
	}

	dims = inputs[0].Dims()
	for i, in := range inputs[1:] {
		if in.Dims() != dims {
			return dims, errors.Wrapf(ErrInputLengthMismatch, "reduction %q: input 0 is %v, input %d is %v",
				name, dims, i+1, in.Dims())
		}
	}
	return dims, nil
}

// isNilBuffer catches both a nil interface and a typed nil pointer
func isNilBuffer(b builder.Buffer) bool {
	if b == nil {
		return true
	}
	v := reflect.ValueOf(b)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
