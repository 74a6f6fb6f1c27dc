package runner

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/notargets/DGReduce/runner/builder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test kernels
// ============================================================================

func sumSpec() *builder.Reduction[int64, int64] {
	return builder.NewReduction[int64, int64]("sum").
		Inputs(builder.INT32).
		Accumulator(func(acc *int64, in builder.Args, _ builder.Coordinates) {
			*acc += int64(builder.Arg[int32](in, 0))
		}).
		Combiner(func(acc, other *int64) { *acc += *other }).
		MustBuild()
}

// orderSpec records the element indices in visiting order. Its combiner is
// associative but not commutative, so any reordering of partitions shows up
// in the result.
func orderSpec() *builder.Reduction[[]int, []int] {
	return builder.NewReduction[[]int, []int]("order").
		Inputs(builder.UINT8).
		Accumulator(func(acc *[]int, in builder.Args, _ builder.Coordinates) {
			*acc = append(*acc, in.Index())
		}).
		Combiner(func(acc, other *[]int) { *acc = append(*acc, *other...) }).
		MustBuild()
}

type coordAcc struct {
	Seen int
	Sum  builder.Coordinates
	Bad  int
}

func coordSpec(d builder.Dims) *builder.Reduction[coordAcc, coordAcc] {
	return builder.NewReduction[coordAcc, coordAcc]("coords").
		Inputs(builder.INT32).
		Accumulator(func(acc *coordAcc, in builder.Args, at builder.Coordinates) {
			acc.Seen++
			acc.Sum.X += at.X
			acc.Sum.Y += at.Y
			acc.Sum.Z += at.Z
			// data holds the linear index of each element
			if int(builder.Arg[int32](in, 0)) != at.X+d.X*at.Y+d.X*max(d.Y, 1)*at.Z {
				acc.Bad++
			}
		}).
		Combiner(func(acc, other *coordAcc) {
			acc.Seen += other.Seen
			acc.Sum.X += other.Sum.X
			acc.Sum.Y += other.Sum.Y
			acc.Sum.Z += other.Sum.Z
			acc.Bad += other.Bad
		}).
		MustBuild()
}

func randomInt32(n int, seed int64) []int32 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]int32, n)
	for i := range out {
		out[i] = int32(rng.Intn(1 << 13))
	}
	return out
}

// ============================================================================
// Engine properties
// ============================================================================

func TestReduce_PartitionInvariance(t *testing.T) {
	data := randomInt32(1000, 1)
	in := builder.NewAllocation(data)
	spec := sumSpec()

	serial := must.M1(Reduce(NewRunner(Config{Parallelism: 1}), spec, in))
	var expected int64
	for _, v := range data {
		expected += int64(v)
	}
	require.Equal(t, expected, serial)

	for _, p := range []int{2, 3, 7, 16, 999, 1000, 4096} {
		for _, sequential := range []bool{false, true} {
			t.Run(fmt.Sprintf("P=%d/sequential=%v", p, sequential), func(t *testing.T) {
				kr := NewRunner(Config{Parallelism: p, SequentialCombine: sequential})
				got, err := Reduce(kr, spec, in)
				require.NoError(t, err)
				assert.Equal(t, serial, got)
			})
		}
	}
}

func TestReduce_CombineKeepsPartitionOrder(t *testing.T) {
	const n = 37
	in := builder.NewAllocation(make([]uint8, n))
	expected := make([]int, n)
	for i := range expected {
		expected[i] = i
	}

	for _, p := range []int{1, 2, 5, 8, 37} {
		for _, strategy := range []string{"balanced", "block"} {
			kr := NewRunner(Config{Parallelism: p, Strategy: strategy})
			got, err := Reduce(kr, orderSpec(), in)
			require.NoError(t, err)
			assert.Equal(t, expected, got, "P=%d strategy=%s", p, strategy)
		}
	}
}

func TestReduce_EmptyDomain(t *testing.T) {
	spec := builder.NewReduction[int32, int32]("findzero").
		Inputs(builder.INT32).
		Initializer(func(acc *int32) { *acc = -1 }).
		Accumulator(func(acc *int32, in builder.Args, at builder.Coordinates) {
			if builder.Arg[int32](in, 0) == 0 {
				*acc = int32(at.X)
			}
		}).
		Combiner(func(acc, other *int32) {
			if *other >= 0 {
				*acc = *other
			}
		}).
		MustBuild()

	for _, p := range []int{1, 4} {
		got, err := Reduce(NewRunner(Config{Parallelism: p}), spec, builder.NewAllocation([]int32{}))
		require.NoError(t, err)
		assert.Equal(t, int32(-1), got)
	}

	// The outconverter also runs on an empty domain
	converted := builder.NewReduction[int32, string]("describe").
		Inputs(builder.INT32).
		Initializer(func(acc *int32) { *acc = -1 }).
		Accumulator(func(*int32, builder.Args, builder.Coordinates) {}).
		Combiner(func(*int32, *int32) {}).
		OutConverter(func(out *string, acc *int32) { *out = fmt.Sprintf("idx=%d", *acc) }).
		MustBuild()
	got, err := Reduce(NewRunner(Config{Parallelism: 3}), converted, builder.NewAllocation([]int32{}))
	require.NoError(t, err)
	assert.Equal(t, "idx=-1", got)
}

func TestReduce_Coordinates(t *testing.T) {
	testCases := []builder.Dims{
		{X: 17},
		{X: 5, Y: 4},
		{X: 3, Y: 4, Z: 5},
	}
	for _, d := range testCases {
		t.Run(d.String(), func(t *testing.T) {
			data := make([]int32, d.Count())
			for i := range data {
				data[i] = int32(i)
			}
			in := must.M1(builder.NewAllocationDims(data, d))

			var wantSum builder.Coordinates
			for i := range data {
				c := d.Coordinates(i)
				wantSum.X += c.X
				wantSum.Y += c.Y
				wantSum.Z += c.Z
			}

			for _, p := range []int{1, 4, 11} {
				got, err := Reduce(NewRunner(Config{Parallelism: p}), coordSpec(d), in)
				require.NoError(t, err)
				assert.Equal(t, d.Count(), got.Seen)
				assert.Equal(t, 0, got.Bad)
				assert.Equal(t, wantSum, got.Sum)
			}
		})
	}
}

func TestReduce_SinglePartitionSkipsCombine(t *testing.T) {
	var calls int
	var mu sync.Mutex
	spec := builder.NewReduction[int64, int64]("counting").
		Inputs(builder.INT32).
		Accumulator(func(acc *int64, in builder.Args, _ builder.Coordinates) {
			*acc += int64(builder.Arg[int32](in, 0))
		}).
		Combiner(func(acc, other *int64) {
			mu.Lock()
			calls++
			mu.Unlock()
			*acc += *other
		}).
		MustBuild()

	in := builder.NewAllocation([]int32{1, 2, 3, 4})
	got := must.M1(Reduce(NewRunner(Config{Parallelism: 1}), spec, in))
	assert.Equal(t, int64(10), got)
	assert.Equal(t, 0, calls)

	got = must.M1(Reduce(NewRunner(Config{Parallelism: 4}), spec, in))
	assert.Equal(t, int64(10), got)
	assert.Equal(t, 3, calls, "four partitions take three pairwise combines")
}

func TestReduce_MinPartitionSize(t *testing.T) {
	var mu sync.Mutex
	sizes := map[int]bool{}
	spec := builder.NewReduction[int, int]("count").
		Inputs(builder.INT32).
		Accumulator(func(acc *int, _ builder.Args, _ builder.Coordinates) { *acc++ }).
		Combiner(func(acc, other *int) {
			mu.Lock()
			sizes[*other] = true
			mu.Unlock()
			*acc += *other
		}).
		MustBuild()

	kr := NewRunner(Config{Parallelism: 8, MinPartitionSize: 50, SequentialCombine: true})
	got := must.M1(Reduce(kr, spec, builder.NewAllocation(make([]int32, 120))))
	assert.Equal(t, 120, got)
	// 120/50 = 2 partitions of 60
	assert.Equal(t, map[int]bool{60: true}, sizes)
}

// ============================================================================
// Failure kinds
// ============================================================================

func TestReduce_InputValidation(t *testing.T) {
	spec := builder.NewReduction[int32, int32]("sumxor").
		Inputs(builder.INT32, builder.INT32).
		Accumulator(func(acc *int32, in builder.Args, _ builder.Coordinates) {
			*acc += builder.Arg[int32](in, 0) ^ builder.Arg[int32](in, 1)
		}).
		Combiner(func(acc, other *int32) { *acc += *other }).
		MustBuild()
	kr := NewRunner(Config{Parallelism: 2})

	a := builder.NewAllocation([]int32{1, 2, 3})
	b2x3 := must.M1(builder.NewAllocation2D([]int32{1, 2, 3, 4, 5, 6}, 2, 3))
	b3x2 := must.M1(builder.NewAllocation2D([]int32{1, 2, 3, 4, 5, 6}, 3, 2))
	var nilAlloc *builder.Allocation[int32]

	testCases := []struct {
		name   string
		inputs []builder.Buffer
		target error
	}{
		{"arity_low", []builder.Buffer{a}, builder.ErrSpecIncomplete},
		{"arity_high", []builder.Buffer{a, a, a}, builder.ErrSpecIncomplete},
		{"nil_interface", []builder.Buffer{a, nil}, ErrNilInput},
		{"typed_nil", []builder.Buffer{nilAlloc, a}, ErrNilInput},
		{"length", []builder.Buffer{a, builder.NewAllocation([]int32{1, 2})}, ErrInputLengthMismatch},
		{"dims_same_count", []builder.Buffer{b2x3, b3x2}, ErrInputLengthMismatch},
		{"rank", []builder.Buffer{builder.NewAllocation(make([]int32, 6)), b2x3}, ErrInputLengthMismatch},
		{"int16", []builder.Buffer{a, builder.NewAllocation([]int16{1, 2, 3})}, ErrInputType},
		{"short2", []builder.Buffer{builder.NewAllocation(make([]builder.Short2, 3)), a}, ErrInputType},
		{"int2", []builder.Buffer{a, builder.NewAllocation(make([]builder.Int2, 3))}, ErrInputType},
		{"uint32", []builder.Buffer{builder.NewAllocation([]uint32{1, 2, 3}), a}, ErrInputType},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Reduce(kr, spec, tc.inputs...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.target)
			assert.Equal(t, int32(0), got)
		})
	}

	// Matching shapes are accepted
	got, err := Reduce(kr, spec, b2x3, b2x3)
	require.NoError(t, err)
	assert.Equal(t, int32(0), got)

	_, err = Reduce[int32, int32](kr, nil, a, a)
	assert.ErrorIs(t, err, builder.ErrSpecIncomplete)
}

func TestReduce_KernelPanic(t *testing.T) {
	divide := builder.NewReduction[int32, int32]("divide").
		Inputs(builder.INT32).
		Accumulator(func(acc *int32, in builder.Args, _ builder.Coordinates) {
			*acc += 100 / builder.Arg[int32](in, 0)
		}).
		MustBuild()

	in := builder.NewAllocation([]int32{1, 2, 0, 4})
	for _, p := range []int{1, 4} {
		got, err := Reduce(NewRunner(Config{Parallelism: p}), divide, in)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrKernelPanic)
		assert.Equal(t, int32(0), got, "no partial result on failure")
	}

	badCombine := builder.NewReduction[int32, int32]("badcombine").
		Inputs(builder.INT32).
		Accumulator(func(acc *int32, in builder.Args, _ builder.Coordinates) { *acc += builder.Arg[int32](in, 0) }).
		Combiner(func(acc, other *int32) { panic("combine failed") }).
		MustBuild()
	for _, sequential := range []bool{false, true} {
		_, err := Reduce(NewRunner(Config{Parallelism: 2, SequentialCombine: sequential}), badCombine, in)
		assert.ErrorIs(t, err, ErrKernelPanic)
	}

	badConvert := builder.NewReduction[int32, int32]("badconvert").
		Inputs(builder.INT32).
		Accumulator(func(acc *int32, in builder.Args, _ builder.Coordinates) { *acc += builder.Arg[int32](in, 0) }).
		OutConverter(func(out *int32, acc *int32) { panic("convert failed") }).
		MustBuild()
	_, err := Reduce(NewRunner(Config{Parallelism: 2}), badConvert, in)
	assert.ErrorIs(t, err, ErrKernelPanic)
}

func TestReduce_OverflowWraps(t *testing.T) {
	spec := builder.NewReduction[int32, int32]("addint").
		Inputs(builder.INT32).
		Accumulator(func(acc *int32, in builder.Args, _ builder.Coordinates) { *acc += builder.Arg[int32](in, 0) }).
		MustBuild()
	in := builder.NewAllocation([]int32{2147483647, 1})
	got, err := Reduce(NewRunner(Config{Parallelism: 2}), spec, in)
	require.NoError(t, err)
	assert.Equal(t, int32(-2147483648), got)
}

func TestReduce_ConcurrentCalls(t *testing.T) {
	kr := NewRunner(Config{Parallelism: 4})
	spec := sumSpec()
	in := builder.NewAllocation(randomInt32(5000, 3))
	expected := must.M1(Reduce(kr.WithParallelism(1), spec, in))

	var wg sync.WaitGroup
	results := make([]int64, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = must.M1(Reduce(kr, spec, in))
		}()
	}
	wg.Wait()
	for _, r := range results {
		assert.Equal(t, expected, r)
	}
}

func TestFinish(t *testing.T) {
	kr := NewRunner(Config{Parallelism: 3})
	spec := sumSpec()

	got, err := Finish(kr, spec, []int64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(15), got)

	_, err = Finish(kr, spec, nil)
	assert.Error(t, err)
}
