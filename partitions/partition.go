package partitions

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Partition is a contiguous range of domain elements accumulated together
// by one worker
type Partition struct {
	// Unique identifier for this partition, also its position in the layout
	ID int

	// Element range [Start, End)
	Start int
	End   int
}

// NumElements returns the number of elements in the partition
func (p Partition) NumElements() int {
	return p.End - p.Start
}

// Contains reports whether element index i belongs to the partition
func (p Partition) Contains(i int) bool {
	return i >= p.Start && i < p.End
}

// PartitionLayout manages the complete domain decomposition
type PartitionLayout struct {
	// All partitions, ordered by Start
	Partitions []Partition

	// Global sizing information
	K             []int // K[p] = number of elements in partition p
	KpartMax      int   // max(K) across all partitions
	TotalElements int   // Sum of K
	NumPartitions int
}

// Offsets returns the starting element of each partition followed by
// TotalElements, so partition p covers [Offsets[p], Offsets[p+1])
func (pl *PartitionLayout) Offsets() []int {
	offsets := make([]int, pl.NumPartitions+1)
	for i, p := range pl.Partitions {
		offsets[i] = p.Start
	}
	offsets[pl.NumPartitions] = pl.TotalElements
	return offsets
}

// GetPartition returns the partition containing element k
func (pl *PartitionLayout) GetPartition(elementID int) int {
	if elementID < 0 || elementID >= pl.TotalElements {
		return -1
	}
	// Partitions are sorted by Start, binary search the range
	lo, hi := 0, pl.NumPartitions-1
	for lo <= hi {
		mid := (lo + hi) / 2
		p := pl.Partitions[mid]
		switch {
		case elementID < p.Start:
			hi = mid - 1
		case elementID >= p.End:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// Imbalance returns KpartMax divided by the mean partition size. A perfectly
// balanced layout returns 1, an empty domain returns 1 as well.
func (pl *PartitionLayout) Imbalance() float64 {
	if pl.TotalElements == 0 || len(pl.K) == 0 {
		return 1
	}
	k := make([]float64, len(pl.K))
	for i, v := range pl.K {
		k[i] = float64(v)
	}
	return floats.Max(k) / stat.Mean(k, nil)
}

// ValidateLayout checks partition consistency: the partitions must be
// disjoint, contiguous, and cover [0, TotalElements) exactly once
func (pl *PartitionLayout) ValidateLayout() error {
	if pl.NumPartitions < 1 || len(pl.Partitions) != pl.NumPartitions {
		return errors.Errorf("layout has %d partitions, NumPartitions=%d",
			len(pl.Partitions), pl.NumPartitions)
	}
	if len(pl.K) != pl.NumPartitions {
		return errors.Errorf("len(K)=%d != NumPartitions %d", len(pl.K), pl.NumPartitions)
	}

	next := 0
	actualMax := 0
	for i, p := range pl.Partitions {
		if p.ID != i {
			return errors.Errorf("partition at position %d has ID %d", i, p.ID)
		}
		if p.Start != next {
			return errors.Errorf("partition %d: starts at %d, expected %d", p.ID, p.Start, next)
		}
		if p.End < p.Start {
			return errors.Errorf("partition %d: negative range [%d, %d)", p.ID, p.Start, p.End)
		}
		if pl.K[i] != p.NumElements() {
			return errors.Errorf("partition %d: K=%d != range size %d", p.ID, pl.K[i], p.NumElements())
		}
		if p.NumElements() > actualMax {
			actualMax = p.NumElements()
		}
		next = p.End
	}
	if next != pl.TotalElements {
		return errors.Errorf("partitions cover %d elements, TotalElements=%d", next, pl.TotalElements)
	}
	if actualMax != pl.KpartMax {
		return errors.Errorf("computed KpartMax %d != stored KpartMax %d",
			actualMax, pl.KpartMax)
	}
	return nil
}
