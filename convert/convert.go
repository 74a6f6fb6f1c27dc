// Package convert checks and widens reduction results for hosts that only
// have signed 64-bit integers. The engine itself never range-checks results.
package convert

import (
	"math"

	"github.com/notargets/DGReduce/runner/builder"
	"github.com/pkg/errors"
)

// ErrNotRepresentable is returned when an unsigned result exceeds MaxInt64
var ErrNotRepresentable = errors.New("result not representable as int64")

// ToInt64 converts a scalar result
func ToInt64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, errors.Wrapf(ErrNotRepresentable, "value %#x", v)
	}
	return int64(v), nil
}

// Vec4ToInt64 converts a 4-component result, reporting the first bad component
func Vec4ToInt64(v builder.ULong4) ([4]int64, error) {
	var out [4]int64
	for i := range out {
		c := v.Component(i)
		if c > math.MaxInt64 {
			return out, errors.Wrapf(ErrNotRepresentable, "component %d: value %#x", i, c)
		}
		out[i] = int64(c)
	}
	return out, nil
}

// ArrayToInt64 converts an array result, reporting the first bad position
func ArrayToInt64(v []uint64) ([]int64, error) {
	out := make([]int64, len(v))
	for i, c := range v {
		if c > math.MaxInt64 {
			return nil, errors.Wrapf(ErrNotRepresentable, "position %d: value %#x", i, c)
		}
		out[i] = int64(c)
	}
	return out, nil
}

// Arr9Vec4ToInt64 converts an array of 4-component results. Positions are
// numbered over the flattened components, 4 per element.
func Arr9Vec4ToInt64(v [9]builder.ULong4) ([9][4]int64, error) {
	var out [9][4]int64
	for i := range v {
		row, err := Vec4ToInt64(v[i])
		if err != nil {
			return out, errors.WithMessagef(err, "element %d", i)
		}
		out[i] = row
	}
	return out, nil
}

// HistogramToInt64 widens a histogram; it cannot fail
func HistogramToInt64(h [256]uint32) []int64 {
	out := make([]int64, len(h))
	for i, c := range h {
		out[i] = int64(c)
	}
	return out
}
