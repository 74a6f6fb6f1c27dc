package builder

// Args gives an accumulator positional access to the input values at one
// domain element. Input k is bound to the k-th buffer passed to the reduction.
type Args struct {
	inputs []Buffer
	index  int
}

// NewArgs binds element index of each input buffer
func NewArgs(inputs []Buffer, index int) Args {
	return Args{inputs: inputs, index: index}
}

// Index returns the linear element index the values are taken from
func (a Args) Index() int {
	return a.index
}

// Len returns the number of bound inputs
func (a Args) Len() int {
	return len(a.inputs)
}

// At rebinds the same inputs to another element index
func (a Args) At(index int) Args {
	return Args{inputs: a.inputs, index: index}
}

// Arg returns the value of input pos. T must be the element type of the
// buffer bound at pos, which the engine checks against the declared inputs
// before any accumulator runs.
func Arg[T any](a Args, pos int) T {
	return a.inputs[pos].(*Allocation[T]).Data[a.index]
}

// valueArgs binds a single value as input 0, used to run an accumulator as
// its own combiner
func valueArgs[T any](v T) Args {
	return Args{inputs: []Buffer{&Allocation[T]{Data: []T{v}, dims: Dims{X: 1}}}}
}
