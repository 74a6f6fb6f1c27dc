// Package library holds the reference reduction kernels: integer and float
// sums, dot product, min/max search, zero search over 1D/2D/3D domains,
// histogram and mode, multi-input sums, and the out-of-range result kernels
// used to exercise host-side result conversion.
package library

import (
	"math"
	"sort"

	"github.com/notargets/DGReduce/runner"
	"github.com/notargets/DGReduce/runner/builder"
)

// Script is one instance of the kernel library. Its kernels are built once
// and read the script's global parameters when they run, so globals must be
// set before a reduction starts and not changed while it runs.
type Script struct {
	negInf, posInf float32

	oorrGoodResult    uint64 // the value of a good result
	oorrBadResultHalf uint64 // half the value of a bad result
	oorrBadPos        int32  // position of the bad result, < 0 for none

	AddInt        *builder.Reduction[int32, int32]
	Dp            *builder.Reduction[float32, float32]
	FindMinAndMax *builder.Reduction[MinAndMax, builder.Int2]
	Fz            *builder.Reduction[int32, int32]
	Fz2           *builder.Reduction[builder.Int2, builder.Int2]
	Fz3           *builder.Reduction[builder.Int3, builder.Int3]
	Histogram     *builder.Reduction[Histogram, Histogram]
	Mode          *builder.Reduction[Histogram, builder.Int2]
	SumXor        *builder.Reduction[int32, int32]
	SillySum      *builder.Reduction[int64, int64]
	OorrSca       *builder.Reduction[int32, uint64]
	OorrVec4      *builder.Reduction[int32, builder.ULong4]
	OorrArr9      *builder.Reduction[int32, Arr9]
	OorrArr9Vec4  *builder.Reduction[int32, Arr9Vec4]
	SumHalf       *builder.Reduction[float32, float32]

	kernels map[string]Kernel
}

// NewScript builds every kernel. NegInf and PosInf start at -Inf and +Inf,
// the out-of-range globals at zero.
func NewScript() *Script {
	s := &Script{
		negInf: float32(math.Inf(-1)),
		posInf: float32(math.Inf(1)),
	}
	s.AddInt = newAddInt()
	s.Dp = newDp()
	s.FindMinAndMax = s.newFindMinAndMax()
	s.Fz = newFz()
	s.Fz2 = newFz2()
	s.Fz3 = newFz3()
	s.Histogram = newHistogram()
	s.Mode = newMode()
	s.SumXor = newSumXor()
	s.SillySum = newSillySum()
	s.OorrSca = s.newOorrSca()
	s.OorrVec4 = s.newOorrVec4()
	s.OorrArr9 = s.newOorrArr9()
	s.OorrArr9Vec4 = s.newOorrArr9Vec4()
	s.SumHalf = newSumHalf()

	s.kernels = make(map[string]Kernel)
	for _, k := range []Kernel{
		entry(s.AddInt), entry(s.Dp), entry(s.FindMinAndMax),
		entry(s.Fz), entry(s.Fz2), entry(s.Fz3),
		entry(s.Histogram), entry(s.Mode), entry(s.SumXor), entry(s.SillySum),
		entry(s.OorrSca), entry(s.OorrVec4), entry(s.OorrArr9), entry(s.OorrArr9Vec4),
		entry(s.SumHalf),
	} {
		s.kernels[k.Name] = k
	}
	return s
}

// SetNegInf sets the value findMinAndMax starts its maximum from
func (s *Script) SetNegInf(v float32) { s.negInf = v }

// SetPosInf sets the value findMinAndMax starts its minimum from
func (s *Script) SetPosInf(v float32) { s.posInf = v }

// SetOorrGoodResult sets the value the oorr kernels emit at good positions
func (s *Script) SetOorrGoodResult(v uint64) { s.oorrGoodResult = v }

// SetOorrBadResultHalf sets half the value emitted at the bad position
func (s *Script) SetOorrBadResultHalf(v uint64) { s.oorrBadResultHalf = v }

// SetOorrBadPos sets the bad position, negative for none
func (s *Script) SetOorrBadPos(v int32) { s.oorrBadPos = v }

// Kernel is a type-erased handle on one library reduction
type Kernel struct {
	Name      string
	Signature string
	Inputs    []builder.DataType
	run       func(kr *runner.Runner, inputs ...builder.Buffer) (any, error)
}

// Run reduces the inputs with the kernel
func (k Kernel) Run(kr *runner.Runner, inputs ...builder.Buffer) (any, error) {
	return k.run(kr, inputs...)
}

func entry[A, R any](r *builder.Reduction[A, R]) Kernel {
	return Kernel{
		Name:      r.Name(),
		Signature: r.Signature(),
		Inputs:    r.Inputs(),
		run: func(kr *runner.Runner, inputs ...builder.Buffer) (any, error) {
			return runner.Reduce(kr, r, inputs...)
		},
	}
}

// Kernel looks up a kernel by name
func (s *Script) Kernel(name string) (Kernel, bool) {
	k, ok := s.kernels[name]
	return k, ok
}

// Names returns the kernel names, sorted
func (s *Script) Names() []string {
	out := make([]string, 0, len(s.kernels))
	for k := range s.kernels {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Kernels returns every kernel, sorted by name
func (s *Script) Kernels() []Kernel {
	names := s.Names()
	out := make([]Kernel, len(names))
	for i, n := range names {
		out[i] = s.kernels[n]
	}
	return out
}
