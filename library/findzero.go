package library

import "github.com/notargets/DGReduce/runner/builder"

// The zero searches report the location of a zero element, or -1 in every
// component when there is none. With several zeros the last one wins.

func newFz() *builder.Reduction[int32, int32] {
	return builder.NewReduction[int32, int32]("fz").
		Inputs(builder.INT32).
		Initializer(func(acc *int32) { *acc = -1 }).
		Accumulator(func(acc *int32, in builder.Args, _ builder.Coordinates) {
			if builder.Arg[int32](in, 0) == 0 {
				*acc = int32(in.Index())
			}
		}).
		Combiner(func(acc, other *int32) {
			if *other >= 0 {
				*acc = *other
			}
		}).
		MustBuild()
}

func newFz2() *builder.Reduction[builder.Int2, builder.Int2] {
	return builder.NewReduction[builder.Int2, builder.Int2]("fz2").
		Inputs(builder.INT32).
		Initializer(func(acc *builder.Int2) { *acc = builder.Int2{X: -1, Y: -1} }).
		Accumulator(func(acc *builder.Int2, in builder.Args, at builder.Coordinates) {
			if builder.Arg[int32](in, 0) == 0 {
				*acc = builder.Int2{X: int32(at.X), Y: int32(at.Y)}
			}
		}).
		Combiner(func(acc, other *builder.Int2) {
			if other.X >= 0 {
				*acc = *other
			}
		}).
		MustBuild()
}

func newFz3() *builder.Reduction[builder.Int3, builder.Int3] {
	return builder.NewReduction[builder.Int3, builder.Int3]("fz3").
		Inputs(builder.INT32).
		Initializer(func(acc *builder.Int3) { *acc = builder.Int3{X: -1, Y: -1, Z: -1} }).
		Accumulator(func(acc *builder.Int3, in builder.Args, at builder.Coordinates) {
			if builder.Arg[int32](in, 0) == 0 {
				*acc = builder.Int3{X: int32(at.X), Y: int32(at.Y), Z: int32(at.Z)}
			}
		}).
		Combiner(func(acc, other *builder.Int3) {
			if other.X >= 0 {
				*acc = *other
			}
		}).
		MustBuild()
}
