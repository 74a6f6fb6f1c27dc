package runner

import (
	"time"

	"github.com/notargets/DGReduce/partitions"
	"github.com/notargets/DGReduce/runner/builder"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Reduce runs spec over the input buffers and returns the converted result.
//
// Each partition of the domain gets a fresh accumulator, set by the
// initializer, and accumulates its elements on its own goroutine. After all
// partitions finish, the accumulators are combined pairwise into one, which
// the outconverter turns into the result. On error the zero R is returned.
func Reduce[A, R any](kr *Runner, spec *builder.Reduction[A, R], inputs ...builder.Buffer) (R, error) {
	var result R
	if spec == nil {
		return result, errors.Wrap(builder.ErrSpecIncomplete, "nil reduction")
	}
	start := time.Now()

	dims, err := bindInputs(spec.Name(), spec.Inputs(), inputs)
	if err != nil {
		return result, err
	}

	layout, err := kr.Partition(dims.Count())
	if err != nil {
		return result, errors.WithMessagef(err, "reduction %q", spec.Name())
	}

	partials, err := accumulate(kr, spec, layout, dims, inputs)
	if err != nil {
		return result, err
	}

	result, err = Finish(kr, spec, partials)
	if err != nil {
		return result, err
	}

	klog.V(1).Infof("reduce(%s): %d elements (%v) in %d partitions, %s",
		spec.Name(), dims.Count(), dims, layout.NumPartitions, time.Since(start))
	return result, nil
}

// accumulate runs the initializer and accumulator of every partition
// concurrently and returns one accumulator per partition, in partition order
func accumulate[A, R any](kr *Runner, spec *builder.Reduction[A, R], layout *partitions.PartitionLayout,
	dims builder.Dims, inputs []builder.Buffer) ([]A, error) {

	partials := make([]A, layout.NumPartitions)

	var g errgroup.Group
	g.SetLimit(kr.Parallelism())
	for i, part := range layout.Partitions {
		g.Go(func() (err error) {
			defer recoverKernelPanic(&err, spec.Name(), "accumulate", part.ID)

			var acc A
			spec.Init(&acc)
			args := builder.NewArgs(inputs, part.Start)
			for idx := part.Start; idx < part.End; idx++ {
				spec.Accumulate(&acc, args.At(idx), dims.Coordinates(idx))
			}
			partials[i] = acc
			return nil
		})
	}

	// Barrier: no combine starts before every partition is accumulated
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return partials, nil
}

// recoverKernelPanic turns a panic in a user callback into ErrKernelPanic
func recoverKernelPanic(err *error, name, phase string, partition int) {
	if r := recover(); r != nil {
		klog.Warningf("reduce(%s): %s panicked in partition %d: %v", name, phase, partition, r)
		*err = errors.Wrapf(ErrKernelPanic, "reduction %q %s, partition %d: %v", name, phase, partition, r)
	}
}
