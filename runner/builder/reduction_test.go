package builder

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func sumAccum(acc *int32, in Args, _ Coordinates) {
	*acc += Arg[int32](in, 0)
}

func TestReductionBuilder_Complete(t *testing.T) {
	r, err := NewReduction[int64, int64]("sum2").
		Inputs(INT32, INT32).
		Accumulator(func(acc *int64, in Args, _ Coordinates) {
			*acc += int64(Arg[int32](in, 0)) * int64(Arg[int32](in, 1))
		}).
		Combiner(func(acc, other *int64) { *acc += *other }).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "sum2", r.Name())
	assert.Equal(t, []DataType{INT32, INT32}, r.Inputs())
	assert.False(t, r.HasDerivedCombiner())

	a := NewAllocation([]int32{2, 3})
	b := NewAllocation([]int32{5, 7})
	inputs := []Buffer{a, b}

	var acc int64
	r.Init(&acc)
	for i := 0; i < 2; i++ {
		r.Accumulate(&acc, NewArgs(inputs, i), Coordinates{X: i})
	}
	assert.Equal(t, int64(2*5+3*7), r.Convert(&acc))
}

func TestReductionBuilder_MissingAccumulator(t *testing.T) {
	_, err := NewReduction[int32, int32]("none").Inputs(INT32).Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSpecIncomplete))
}

func TestReductionBuilder_NoInputs(t *testing.T) {
	_, err := NewReduction[int32, int32]("noinputs").Accumulator(sumAccum).Build()
	assert.ErrorIs(t, err, ErrSpecIncomplete)
}

func TestReductionBuilder_OpaqueInput(t *testing.T) {
	_, err := NewReduction[int32, int32]("opaque").
		Inputs(Opaque).
		Accumulator(sumAccum).
		Build()
	assert.ErrorIs(t, err, ErrSpecIncomplete)
}

func TestReductionBuilder_DerivedCombiner(t *testing.T) {
	r, err := NewReduction[int32, int32]("addint").
		Inputs(INT32).
		Accumulator(sumAccum).
		Build()
	require.NoError(t, err)
	assert.True(t, r.HasDerivedCombiner())

	acc, other := int32(40), int32(2)
	r.Combine(&acc, &other)
	assert.Equal(t, int32(42), acc)
	assert.Equal(t, int32(2), other, "combine must not modify its source")
}

func TestReductionBuilder_CombinerNotDerivable(t *testing.T) {
	testCases := []struct {
		name   string
		inputs []DataType
	}{
		{"two_inputs", []DataType{INT32, INT32}},
		{"other_type", []DataType{Float32}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReduction[int32, int32]("x").
				Inputs(tc.inputs...).
				Accumulator(func(*int32, Args, Coordinates) {}).
				Build()
			assert.ErrorIs(t, err, ErrSpecIncomplete)
		})
	}

	// Opaque accumulators never get a derived combiner
	_, err := NewReduction[[4]int32, [4]int32]("arr").
		Inputs(INT32).
		Accumulator(func(*[4]int32, Args, Coordinates) {}).
		Build()
	assert.ErrorIs(t, err, ErrSpecIncomplete)
}

func TestReductionBuilder_OutConverter(t *testing.T) {
	// Different result type without outconverter
	_, err := NewReduction[int32, int64]("widen").
		Inputs(INT32).
		Accumulator(sumAccum).
		Build()
	assert.ErrorIs(t, err, ErrSpecIncomplete)

	r, err := NewReduction[int32, int64]("widen").
		Inputs(INT32).
		Accumulator(sumAccum).
		OutConverter(func(out *int64, acc *int32) { *out = int64(*acc) * 2 }).
		Build()
	require.NoError(t, err)
	acc := int32(21)
	assert.Equal(t, int64(42), r.Convert(&acc))
}

func TestReduction_InitDefaultsToZero(t *testing.T) {
	r := NewReduction[[3]int32, [3]int32]("arr").
		Inputs(INT32).
		Accumulator(func(*[3]int32, Args, Coordinates) {}).
		Combiner(func(*[3]int32, *[3]int32) {}).
		MustBuild()

	acc := [3]int32{1, 2, 3}
	r.Init(&acc)
	assert.Equal(t, [3]int32{}, acc)

	withInit := NewReduction[int32, int32]("minus1").
		Inputs(INT32).
		Initializer(func(acc *int32) { *acc = -1 }).
		Accumulator(sumAccum).
		MustBuild()
	var v int32 = 99
	withInit.Init(&v)
	assert.Equal(t, int32(-1), v)
}

func TestReductionBuilder_BuildIsolatesSpec(t *testing.T) {
	b := NewReduction[int32, int32]("iso").Inputs(INT32).Accumulator(sumAccum)
	r := b.MustBuild()
	b.Inputs(INT32, INT32)
	assert.Equal(t, []DataType{INT32}, r.Inputs())
}

func TestReduction_Signature(t *testing.T) {
	r := NewReduction[int32, Int2]("pair").
		Inputs(UINT8, Float32, INT32x3).
		Initializer(func(acc *int32) {}).
		Accumulator(func(*int32, Args, Coordinates) {}).
		Combiner(func(*int32, *int32) {}).
		OutConverter(func(*Int2, *int32) {}).
		MustBuild()
	assert.Equal(t,
		"reduce(pair) (uchar, float, int3) accum(int32) -> Int2 [initializer accumulator combiner outconverter]",
		r.Signature())
}

func TestDataTypeOf(t *testing.T) {
	assert.Equal(t, INT8, DataTypeOf[int8]())
	assert.Equal(t, UINT8, DataTypeOf[uint8]())
	assert.Equal(t, INT32, DataTypeOf[int32]())
	assert.Equal(t, UINT64, DataTypeOf[uint64]())
	assert.Equal(t, Float16, DataTypeOf[float16.Float16]())
	assert.Equal(t, Float32, DataTypeOf[float32]())
	assert.Equal(t, INT16x2, DataTypeOf[Short2]())
	assert.Equal(t, INT32x3, DataTypeOf[Int3]())
	assert.Equal(t, UINT64x4, DataTypeOf[ULong4]())
	assert.Equal(t, Opaque, DataTypeOf[int]())
	assert.Equal(t, Opaque, DataTypeOf[[256]uint32]())

	assert.Equal(t, "int3", INT32x3.String())
	assert.Equal(t, 3, INT32x3.VectorSize())
	assert.Equal(t, int64(16), SizeOfType(INT32x3))
	assert.Equal(t, int64(0), SizeOfType(Opaque))
}
