package runner

import (
	"github.com/notargets/DGReduce/runner/builder"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// Finish combines per-partition accumulators, ordered by partition, into one
// and converts it to the result. partials is consumed: its elements are used
// as combine destinations.
//
// A single accumulator skips the combine phase entirely.
func Finish[A, R any](kr *Runner, spec *builder.Reduction[A, R], partials []A) (R, error) {
	var result R
	if spec == nil {
		return result, errors.Wrap(builder.ErrSpecIncomplete, "nil reduction")
	}
	if len(partials) == 0 {
		return result, errors.Errorf("reduction %q: no accumulators to combine", spec.Name())
	}

	var err error
	if kr.SequentialCombine {
		err = combineSequential(spec, partials)
	} else {
		err = combineTree(kr, spec, partials)
	}
	if err != nil {
		return result, err
	}

	return convert(spec, &partials[0])
}

// combineSequential folds partials left to right into partials[0]
func combineSequential[A, R any](spec *builder.Reduction[A, R], partials []A) (err error) {
	defer recoverKernelPanic(&err, spec.Name(), "combine", 0)
	for i := 1; i < len(partials); i++ {
		spec.Combine(&partials[0], &partials[i])
	}
	return nil
}

// combineTree merges neighbors at doubling strides, running the pairs of one
// level concurrently. The lower-indexed accumulator is always the destination
// so the result lands in partials[0].
func combineTree[A, R any](kr *Runner, spec *builder.Reduction[A, R], partials []A) error {
	n := len(partials)
	for stride := 1; stride < n; stride *= 2 {
		if klog.V(2).Enabled() {
			klog.Infof("reduce(%s): combine level stride=%d over %d accumulators", spec.Name(), stride, n)
		}

		var g errgroup.Group
		g.SetLimit(kr.Parallelism())
		for i := 0; i+stride < n; i += 2 * stride {
			g.Go(func() (err error) {
				defer recoverKernelPanic(&err, spec.Name(), "combine", i+stride)
				spec.Combine(&partials[i], &partials[i+stride])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// convert applies the outconverter, or the identity copy
func convert[A, R any](spec *builder.Reduction[A, R], acc *A) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			klog.Warningf("reduce(%s): outconverter panicked: %v", spec.Name(), r)
			var zero R
			result = zero
			err = errors.Wrapf(ErrKernelPanic, "reduction %q outconverter: %v", spec.Name(), r)
		}
	}()
	return spec.Convert(acc), nil
}
