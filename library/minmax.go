package library

import "github.com/notargets/DGReduce/runner/builder"

// IndexedVal is a value and the linear index it was found at
type IndexedVal struct {
	Val float32
	Idx int32
}

// MinAndMax is the findMinAndMax accumulator
type MinAndMax struct {
	Min, Max IndexedVal
}

// findMinAndMax reports the indices of the first minimum and the first
// maximum, or -1 for both when the domain is empty
func (s *Script) newFindMinAndMax() *builder.Reduction[MinAndMax, builder.Int2] {
	return builder.NewReduction[MinAndMax, builder.Int2]("findMinAndMax").
		Inputs(builder.Float32).
		Initializer(func(acc *MinAndMax) {
			acc.Min = IndexedVal{Val: s.posInf, Idx: -1}
			acc.Max = IndexedVal{Val: s.negInf, Idx: -1}
		}).
		Accumulator(func(acc *MinAndMax, in builder.Args, _ builder.Coordinates) {
			v := builder.Arg[float32](in, 0)
			idx := int32(in.Index())
			if v < acc.Min.Val {
				acc.Min = IndexedVal{Val: v, Idx: idx}
			}
			if v > acc.Max.Val {
				acc.Max = IndexedVal{Val: v, Idx: idx}
			}
		}).
		// other always covers later elements, so ties keep acc
		Combiner(func(acc, other *MinAndMax) {
			if other.Min.Val < acc.Min.Val {
				acc.Min = other.Min
			}
			if other.Max.Val > acc.Max.Val {
				acc.Max = other.Max
			}
		}).
		OutConverter(func(out *builder.Int2, acc *MinAndMax) {
			*out = builder.Int2{X: acc.Min.Idx, Y: acc.Max.Idx}
		}).
		MustBuild()
}
