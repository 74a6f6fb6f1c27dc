package runner

import (
	"fmt"
	"runtime"

	"github.com/notargets/DGReduce/partitions"
	"k8s.io/klog/v2"
)

// Runner partitions reduction domains and drives reduction kernels over them.
// A Runner holds no per-call state and is safe for concurrent use.
type Runner struct {
	Config
	strategy partitions.PartitionStrategy
}

// NewRunner creates a new Runner instance. It panics on an invalid Config.
func NewRunner(cfg Config) *Runner {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid runner config: %v", err))
	}
	strategy, _ := cfg.partitionStrategy()
	return &Runner{
		Config:   cfg,
		strategy: strategy,
	}
}

// WithParallelism returns a copy of the runner with a different parallelism
// hint, for a single call site
func (kr *Runner) WithParallelism(p int) *Runner {
	cfg := kr.Config
	cfg.Parallelism = p
	return NewRunner(cfg)
}

// Parallelism returns the effective worker count
func (kr *Runner) Parallelism() int {
	if kr.Config.Parallelism > 0 {
		return kr.Config.Parallelism
	}
	return runtime.NumCPU()
}

// Partition builds the partition layout used for a domain of n elements
func (kr *Runner) Partition(n int) (*partitions.PartitionLayout, error) {
	pb := partitions.PartitionBuilder{
		NumElements:      n,
		Parallelism:      kr.Parallelism(),
		MinPartitionSize: kr.MinPartitionSize,
		Strategy:         kr.strategy,
	}
	layout, err := pb.BuildPartitions()
	if err != nil {
		return nil, err
	}
	if klog.V(2).Enabled() {
		klog.Infof("partitioned %d elements: %d partitions, K=%v, KpartMax=%d, imbalance=%.3f",
			n, layout.NumPartitions, layout.K, layout.KpartMax, layout.Imbalance())
	}
	return layout, nil
}
