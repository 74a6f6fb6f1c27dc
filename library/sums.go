package library

import (
	"math"

	"github.com/notargets/DGReduce/runner/builder"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Number is the set of element types Sum accepts
type Number interface {
	constraints.Integer | constraints.Float
}

// NewSum builds a sum over elements of type T, which must have a registered
// DataType (int and uint do not)
func NewSum[T Number](name string) (*builder.Reduction[T, T], error) {
	dt := builder.DataTypeOf[T]()
	if dt == builder.Opaque {
		return nil, errors.Wrapf(builder.ErrSpecIncomplete, "sum %q: %T has no element type", name, *new(T))
	}
	return builder.NewReduction[T, T](name).
		Inputs(dt).
		Accumulator(func(acc *T, in builder.Args, _ builder.Coordinates) {
			*acc += builder.Arg[T](in, 0)
		}).
		Build()
}

// addint: the accumulator doubles as the combiner
func newAddInt() *builder.Reduction[int32, int32] {
	r, err := NewSum[int32]("addint")
	if err != nil {
		panic(err)
	}
	return r
}

func newDp() *builder.Reduction[float32, float32] {
	return builder.NewReduction[float32, float32]("dp").
		Inputs(builder.Float32, builder.Float32).
		Accumulator(func(acc *float32, in builder.Args, _ builder.Coordinates) {
			*acc += builder.Arg[float32](in, 0) * builder.Arg[float32](in, 1)
		}).
		Combiner(func(acc, other *float32) { *acc += *other }).
		MustBuild()
}

func newSumXor() *builder.Reduction[int32, int32] {
	return builder.NewReduction[int32, int32]("sumxor").
		Inputs(builder.INT32, builder.INT32).
		Accumulator(func(acc *int32, in builder.Args, _ builder.Coordinates) {
			*acc += builder.Arg[int32](in, 0) ^ builder.Arg[int32](in, 1)
		}).
		Combiner(func(acc, other *int32) { *acc += *other }).
		MustBuild()
}

// sillysum takes inputs of three different types
func newSillySum() *builder.Reduction[int64, int64] {
	return builder.NewReduction[int64, int64]("sillysum").
		Inputs(builder.INT8, builder.Float32, builder.INT32x3).
		Accumulator(func(acc *int64, in builder.Args, _ builder.Coordinates) {
			c := builder.Arg[int8](in, 0)
			f := builder.Arg[float32](in, 1)
			i3 := builder.Arg[builder.Int3](in, 2)
			*acc += (((int64(c) + int64(math.Ceil(math.Log(float64(f))))) +
				int64(i3.X)) + int64(i3.Y)) + int64(i3.Z)
		}).
		Combiner(func(acc, other *int64) { *acc += *other }).
		MustBuild()
}

// sumhalf widens half-precision inputs into a float32 accumulator
func newSumHalf() *builder.Reduction[float32, float32] {
	return builder.NewReduction[float32, float32]("sumhalf").
		Inputs(builder.Float16).
		Accumulator(func(acc *float32, in builder.Args, _ builder.Coordinates) {
			*acc += builder.Arg[float16.Float16](in, 0).Float32()
		}).
		Combiner(func(acc, other *float32) { *acc += *other }).
		MustBuild()
}
