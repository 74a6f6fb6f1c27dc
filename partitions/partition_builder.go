package partitions

import (
	"math"
	"runtime"

	"github.com/pkg/errors"
)

// PartitionStrategy defines how elements are grouped
type PartitionStrategy int

const (
	// BalancedBlock splits into consecutive ranges whose sizes differ by at
	// most one element
	BalancedBlock PartitionStrategy = iota
	// BlockPartition uses ceil(N/P) consecutive elements per partition, the
	// last partition taking the remainder
	BlockPartition
)

// PartitionBuilder constructs a partition layout for a domain
type PartitionBuilder struct {
	NumElements int

	// Partitioning parameters
	Parallelism      int // Target partition count, <= 0 means runtime.NumCPU()
	MinPartitionSize int // Lower bound on elements per partition, <= 1 means no bound
	Strategy         PartitionStrategy
}

// Split is a shortcut for a BalancedBlock layout of n elements over p workers
func Split(n, p int) []Partition {
	pb := PartitionBuilder{NumElements: n, Parallelism: p}
	layout, err := pb.BuildPartitions()
	if err != nil {
		panic(err)
	}
	return layout.Partitions
}

// BuildPartitions creates a partition layout covering [0, NumElements)
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.NumElements < 0 {
		return nil, errors.Errorf("negative domain size %d", pb.NumElements)
	}

	// Determine number of partitions needed
	numPartitions := pb.calculateNumPartitions()

	// Size each partition
	k := pb.partitionSizes(numPartitions)

	// Create partition structures
	partitions := make([]Partition, len(k))
	start := 0
	for i, size := range k {
		partitions[i] = Partition{ID: i, Start: start, End: start + size}
		start += size
	}

	layout := &PartitionLayout{
		Partitions:    partitions,
		K:             k,
		KpartMax:      calculateKpartMax(k),
		TotalElements: pb.NumElements,
		NumPartitions: len(k),
	}

	// Validate the layout
	if err := layout.ValidateLayout(); err != nil {
		return nil, errors.Wrap(err, "invalid partition layout")
	}

	return layout, nil
}

// calculateNumPartitions determines the partition count
func (pb *PartitionBuilder) calculateNumPartitions() int {
	numPartitions := pb.Parallelism
	if numPartitions <= 0 {
		numPartitions = runtime.NumCPU()
	}

	// No partition smaller than MinPartitionSize
	if pb.MinPartitionSize > 1 {
		bySize := pb.NumElements / pb.MinPartitionSize
		if bySize < numPartitions {
			numPartitions = bySize
		}
	}

	// Never more partitions than elements
	if numPartitions > pb.NumElements {
		numPartitions = pb.NumElements
	}

	// Ensure at least one partition, even for an empty domain
	if numPartitions < 1 {
		numPartitions = 1
	}

	return numPartitions
}

// partitionSizes assigns element counts to partitions
func (pb *PartitionBuilder) partitionSizes(numPartitions int) []int {
	k := make([]int, numPartitions)
	n := pb.NumElements

	switch pb.Strategy {
	case BlockPartition:
		elementsPerPartition := int(math.Ceil(float64(n) / float64(numPartitions)))
		remaining := n
		for i := range k {
			size := elementsPerPartition
			if size > remaining {
				size = remaining
			}
			k[i] = size
			remaining -= size
		}
		// Ceil sizing can leave trailing partitions empty, drop them
		for len(k) > 1 && k[len(k)-1] == 0 {
			k = k[:len(k)-1]
		}

	default:
		base, extra := n/numPartitions, n%numPartitions
		for i := range k {
			k[i] = base
			if i < extra {
				k[i]++
			}
		}
	}

	return k
}

// calculateKpartMax finds maximum elements across all partitions
func calculateKpartMax(k []int) int {
	kpartMax := 0
	for _, v := range k {
		if v > kpartMax {
			kpartMax = v
		}
	}
	return kpartMax
}
