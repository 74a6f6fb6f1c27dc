package library

import "github.com/notargets/DGReduce/runner/builder"

// The oorr kernels ignore their input and emit a result built from the
// script's oorr globals: every position holds OorrGoodResult except the one
// selected by OorrBadPos, which holds 2*OorrBadResultHalf. They exist to
// exercise conversion of unsigned results that may not fit a signed 64-bit
// integer on the host.

// Arr9 is a fixed array of 9 unsigned results
type Arr9 [9]uint64

// Arr9Vec4 is a fixed array of 9 four-component unsigned results
type Arr9Vec4 [9]builder.ULong4

// the accumulator ignores its input so the combiner derives from it
func oorrAccum(_ *int32, _ builder.Args, _ builder.Coordinates) {}

func (s *Script) oorrValue(bad bool) uint64 {
	if bad {
		return 2 * s.oorrBadResultHalf
	}
	return s.oorrGoodResult
}

func (s *Script) newOorrSca() *builder.Reduction[int32, uint64] {
	return builder.NewReduction[int32, uint64]("oorrSca").
		Inputs(builder.INT32).
		Accumulator(oorrAccum).
		OutConverter(func(out *uint64, _ *int32) {
			// a scalar has a single position, 0
			*out = s.oorrValue(s.oorrBadPos == 0)
		}).
		MustBuild()
}

func (s *Script) newOorrVec4() *builder.Reduction[int32, builder.ULong4] {
	return builder.NewReduction[int32, builder.ULong4]("oorrVec4").
		Inputs(builder.INT32).
		Accumulator(oorrAccum).
		OutConverter(func(out *builder.ULong4, _ *int32) {
			*out = s.vec4(s.oorrBadPos)
		}).
		MustBuild()
}

func (s *Script) vec4(badComp int32) builder.ULong4 {
	return builder.ULong4{
		X: s.oorrValue(badComp == 0),
		Y: s.oorrValue(badComp == 1),
		Z: s.oorrValue(badComp == 2),
		W: s.oorrValue(badComp == 3),
	}
}

func (s *Script) newOorrArr9() *builder.Reduction[int32, Arr9] {
	return builder.NewReduction[int32, Arr9]("oorrArr9").
		Inputs(builder.INT32).
		Accumulator(oorrAccum).
		OutConverter(func(out *Arr9, _ *int32) {
			for i := range out {
				out[i] = s.oorrValue(s.oorrBadPos == int32(i))
			}
		}).
		MustBuild()
}

// positions number the flattened components, 4 per array element
func (s *Script) newOorrArr9Vec4() *builder.Reduction[int32, Arr9Vec4] {
	return builder.NewReduction[int32, Arr9Vec4]("oorrArr9Vec4").
		Inputs(builder.INT32).
		Accumulator(oorrAccum).
		OutConverter(func(out *Arr9Vec4, _ *int32) {
			badIdx, badComp := int32(-1), int32(-1)
			if s.oorrBadPos >= 0 {
				badIdx, badComp = s.oorrBadPos/4, s.oorrBadPos%4
			}
			for i := range out {
				if int32(i) == badIdx {
					out[i] = s.vec4(badComp)
				} else {
					out[i] = s.vec4(-1)
				}
			}
		}).
		MustBuild()
}
