package main

import (
	"math/rand"

	"github.com/notargets/DGReduce/runner/builder"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

func fill[T any](n int, gen func() T) *builder.Allocation[T] {
	data := make([]T, n)
	for i := range data {
		data[i] = gen()
	}
	return builder.NewAllocation(data)
}

// generateInput returns n random elements of type dt. Integers stay small
// enough that sums of a few million elements do not overflow, floats are in
// (0, 1] so logarithms are finite.
func generateInput(rng *rand.Rand, dt builder.DataType, n int) (builder.Buffer, error) {
	small := func() int32 { return rng.Int31n(1<<16) - 1<<15 }
	unit := func() float32 { return 1 - rng.Float32() }
	switch dt {
	case builder.INT8:
		return fill(n, func() int8 { return int8(rng.Intn(256) - 128) }), nil
	case builder.UINT8:
		return fill(n, func() uint8 { return uint8(rng.Intn(256)) }), nil
	case builder.INT16:
		return fill(n, func() int16 { return int16(small()) }), nil
	case builder.UINT16:
		return fill(n, func() uint16 { return uint16(rng.Intn(1 << 16)) }), nil
	case builder.INT32:
		return fill(n, small), nil
	case builder.UINT32:
		return fill(n, func() uint32 { return uint32(rng.Intn(1 << 16)) }), nil
	case builder.INT64:
		return fill(n, func() int64 { return int64(small()) }), nil
	case builder.UINT64:
		return fill(n, func() uint64 { return uint64(rng.Intn(1 << 16)) }), nil
	case builder.Float16:
		return fill(n, func() float16.Float16 { return float16.Fromfloat32(unit()) }), nil
	case builder.Float32:
		return fill(n, unit), nil
	case builder.Float64:
		return fill(n, func() float64 { return 1 - rng.Float64() }), nil
	case builder.INT16x2:
		return fill(n, func() builder.Short2 { return builder.Short2{X: int16(small()), Y: int16(small())} }), nil
	case builder.INT32x2:
		return fill(n, func() builder.Int2 { return builder.Int2{X: small(), Y: small()} }), nil
	case builder.INT32x3:
		return fill(n, func() builder.Int3 { return builder.Int3{X: small(), Y: small(), Z: small()} }), nil
	case builder.INT32x4:
		return fill(n, func() builder.Int4 { return builder.Int4{X: small(), Y: small(), Z: small(), W: small()} }), nil
	case builder.UINT64x4:
		return fill(n, func() builder.ULong4 {
			return builder.ULong4{X: rng.Uint64(), Y: rng.Uint64(), Z: rng.Uint64(), W: rng.Uint64()}
		}), nil
	default:
		return nil, errors.Errorf("cannot generate %s inputs", dt)
	}
}

func generateInputs(seed int64, types []builder.DataType, n int) ([]builder.Buffer, error) {
	rng := rand.New(rand.NewSource(seed))
	out := make([]builder.Buffer, len(types))
	for i, dt := range types {
		in, err := generateInput(rng, dt, n)
		if err != nil {
			return nil, err
		}
		out[i] = in
	}
	return out, nil
}
