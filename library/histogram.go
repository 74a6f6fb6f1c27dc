package library

import "github.com/notargets/DGReduce/runner/builder"

// HistogramBuckets is the number of buckets, one per uint8 value
const HistogramBuckets = 256

// Histogram counts occurrences of each uint8 value
type Histogram [HistogramBuckets]uint32

func histAccum(h *Histogram, in builder.Args, _ builder.Coordinates) {
	h[builder.Arg[uint8](in, 0)]++
}

func histCombine(h, other *Histogram) {
	for i := range h {
		h[i] += other[i]
	}
}

func newHistogram() *builder.Reduction[Histogram, Histogram] {
	return builder.NewReduction[Histogram, Histogram]("histogram").
		Inputs(builder.UINT8).
		Accumulator(histAccum).
		Combiner(histCombine).
		MustBuild()
}

// mode returns the most frequent value and its count. Ties go to the lowest
// value, an empty domain gives (0, 0).
func newMode() *builder.Reduction[Histogram, builder.Int2] {
	return builder.NewReduction[Histogram, builder.Int2]("mode").
		Inputs(builder.UINT8).
		Accumulator(histAccum).
		Combiner(histCombine).
		OutConverter(func(out *builder.Int2, h *Histogram) {
			mode := 0
			for i := 1; i < HistogramBuckets; i++ {
				if h[i] > h[mode] {
					mode = i
				}
			}
			*out = builder.Int2{X: int32(mode), Y: int32(h[mode])}
		}).
		MustBuild()
}
