package builder

import (
	"reflect"

	"github.com/pkg/errors"
)

// Initializer sets an accumulator to its identity value
type Initializer[A any] func(acc *A)

// Accumulator folds the input values at one element into acc. The
// coordinates are always supplied, accumulators that do not need them ignore
// them.
type Accumulator[A any] func(acc *A, in Args, at Coordinates)

// Combiner merges other into acc. other is never the same accumulator as acc.
type Combiner[A any] func(acc, other *A)

// OutConverter produces the result from the final accumulator
type OutConverter[A, R any] func(out *R, acc *A)

// Reduction is a built reduction kernel: the callbacks of one named
// reduction over accumulator type A producing result type R.
//
// The accumulator and combiner must be associative-compatible: combining the
// accumulators of two adjacent ranges gives the same state as accumulating
// both ranges into one accumulator. The engine relies on it and does not
// check it.
type Reduction[A, R any] struct {
	name         string
	inputs       []DataType
	initializer  Initializer[A]
	accumulator  Accumulator[A]
	combiner     Combiner[A]
	outConverter OutConverter[A, R]

	derivedCombiner bool
}

// Name returns the reduction name
func (r *Reduction[A, R]) Name() string {
	return r.name
}

// Inputs returns the declared input element types, in binding order
func (r *Reduction[A, R]) Inputs() []DataType {
	out := make([]DataType, len(r.inputs))
	copy(out, r.inputs)
	return out
}

// Init sets acc to its start state: the initializer when present, the zero
// value otherwise
func (r *Reduction[A, R]) Init(acc *A) {
	var zero A
	*acc = zero
	if r.initializer != nil {
		r.initializer(acc)
	}
}

// Accumulate folds one element into acc
func (r *Reduction[A, R]) Accumulate(acc *A, in Args, at Coordinates) {
	r.accumulator(acc, in, at)
}

// Combine merges other into acc
func (r *Reduction[A, R]) Combine(acc, other *A) {
	r.combiner(acc, other)
}

// Convert produces the result from the final accumulator
func (r *Reduction[A, R]) Convert(acc *A) (out R) {
	if r.outConverter == nil {
		// Build guarantees A and R are the same type here
		return any(*acc).(R)
	}
	r.outConverter(&out, acc)
	return out
}

// HasDerivedCombiner reports whether the combiner is the accumulator applied
// to the other accumulator's value
func (r *Reduction[A, R]) HasDerivedCombiner() bool {
	return r.derivedCombiner
}

// ReductionBuilder provides a fluent interface for building reductions
type ReductionBuilder[A, R any] struct {
	spec Reduction[A, R]
}

// NewReduction starts a reduction named name over accumulator type A with
// result type R
func NewReduction[A, R any](name string) *ReductionBuilder[A, R] {
	return &ReductionBuilder[A, R]{spec: Reduction[A, R]{name: name}}
}

// Inputs declares the element types of the accumulator's data parameters
func (b *ReductionBuilder[A, R]) Inputs(types ...DataType) *ReductionBuilder[A, R] {
	b.spec.inputs = append([]DataType(nil), types...)
	return b
}

// Initializer sets the initializer callback
func (b *ReductionBuilder[A, R]) Initializer(fn Initializer[A]) *ReductionBuilder[A, R] {
	b.spec.initializer = fn
	return b
}

// Accumulator sets the mandatory accumulator callback
func (b *ReductionBuilder[A, R]) Accumulator(fn Accumulator[A]) *ReductionBuilder[A, R] {
	b.spec.accumulator = fn
	return b
}

// Combiner sets the combiner callback
func (b *ReductionBuilder[A, R]) Combiner(fn Combiner[A]) *ReductionBuilder[A, R] {
	b.spec.combiner = fn
	return b
}

// OutConverter sets the outconverter callback
func (b *ReductionBuilder[A, R]) OutConverter(fn OutConverter[A, R]) *ReductionBuilder[A, R] {
	b.spec.outConverter = fn
	return b
}

// Build validates the callbacks and returns the reduction.
//
// A missing combiner is derived from the accumulator when the reduction has a
// single input of the accumulator's own type. A missing outconverter requires
// A and R to be the same type.
func (b *ReductionBuilder[A, R]) Build() (*Reduction[A, R], error) {
	spec := b.spec
	spec.inputs = append([]DataType(nil), b.spec.inputs...)

	if spec.name == "" {
		return nil, errors.Wrap(ErrSpecIncomplete, "reduction name cannot be empty")
	}
	if spec.accumulator == nil {
		return nil, errors.Wrapf(ErrSpecIncomplete, "reduction %q: no accumulator", spec.name)
	}
	if len(spec.inputs) == 0 {
		return nil, errors.Wrapf(ErrSpecIncomplete, "reduction %q: no inputs declared", spec.name)
	}
	for i, dt := range spec.inputs {
		if dt == Opaque || SizeOfType(dt) == 0 {
			return nil, errors.Wrapf(ErrSpecIncomplete, "reduction %q: input %d has no element type",
				spec.name, i)
		}
	}

	if spec.combiner == nil {
		accType := DataTypeOf[A]()
		if len(spec.inputs) != 1 || accType == Opaque || spec.inputs[0] != accType {
			return nil, errors.Wrapf(ErrSpecIncomplete,
				"reduction %q: no combiner, and the accumulator cannot serve as one "+
					"(needs exactly one input of accumulator type %s, has %v)",
				spec.name, accType, spec.inputs)
		}
		accumulate := spec.accumulator
		spec.combiner = func(acc, other *A) {
			accumulate(acc, valueArgs(*other), Coordinates{})
		}
		spec.derivedCombiner = true
	}

	if spec.outConverter == nil {
		if reflect.TypeFor[A]() != reflect.TypeFor[R]() {
			return nil, errors.Wrapf(ErrSpecIncomplete,
				"reduction %q: no outconverter, and accumulator type %v differs from result type %v",
				spec.name, reflect.TypeFor[A](), reflect.TypeFor[R]())
		}
	}

	return &spec, nil
}

// MustBuild is Build for reductions known to be complete; it panics on error
func (b *ReductionBuilder[A, R]) MustBuild() *Reduction[A, R] {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}
