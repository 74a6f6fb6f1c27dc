package builder

import (
	"fmt"

	"github.com/pkg/errors"
)

// Dims describes the shape of an input domain.
// 1D: Y == 0, Z == 0
// 2D: Y != 0, Z == 0
// 3D: Y != 0, Z != 0
type Dims struct {
	X, Y, Z int
}

// Rank returns the number of dimensions (1, 2 or 3)
func (d Dims) Rank() int {
	switch {
	case d.Z != 0:
		return 3
	case d.Y != 0:
		return 2
	default:
		return 1
	}
}

// Count returns the number of elements in the domain
func (d Dims) Count() int {
	return d.X * max(d.Y, 1) * max(d.Z, 1)
}

// Coordinates returns the x/y/z position of linear element index i,
// x varying fastest
func (d Dims) Coordinates(i int) Coordinates {
	if d.X == 0 {
		return Coordinates{}
	}
	plane := d.X * max(d.Y, 1)
	return Coordinates{
		X: i % d.X,
		Y: (i % plane) / d.X,
		Z: i / plane,
	}
}

// Validate checks the dimension conventions. Only a 1D domain may be empty.
func (d Dims) Validate() error {
	if d.X < 0 || d.Y < 0 || d.Z < 0 {
		return errors.Wrapf(ErrInvalidDims, "negative dimension in %v", d)
	}
	if d.Z != 0 && d.Y == 0 {
		return errors.Wrapf(ErrInvalidDims, "%v has Z without Y", d)
	}
	if d.Rank() > 1 && d.X == 0 {
		return errors.Wrapf(ErrInvalidDims, "%v: multi-dimensional domain needs X >= 1", d)
	}
	return nil
}

func (d Dims) String() string {
	switch d.Rank() {
	case 3:
		return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
	case 2:
		return fmt.Sprintf("%dx%d", d.X, d.Y)
	default:
		return fmt.Sprintf("%d", d.X)
	}
}

// Coordinates are the index coordinates of one domain element, passed to
// accumulators alongside the element values
type Coordinates struct {
	X, Y, Z int
}

// Buffer is one input stream of a reduction. Allocation is the only
// implementation.
type Buffer interface {
	Type() DataType
	Dims() Dims
	Len() int
	isBuffer()
}

// Allocation is a typed, shaped input buffer. The engine never writes to Data.
type Allocation[T any] struct {
	Data []T
	dims Dims
}

// NewAllocation wraps data as a 1D allocation
func NewAllocation[T any](data []T) *Allocation[T] {
	return &Allocation[T]{Data: data, dims: Dims{X: len(data)}}
}

// NewAllocation2D wraps data as an x by y allocation
func NewAllocation2D[T any](data []T, x, y int) (*Allocation[T], error) {
	return NewAllocationDims(data, Dims{X: x, Y: y})
}

// NewAllocation3D wraps data as an x by y by z allocation
func NewAllocation3D[T any](data []T, x, y, z int) (*Allocation[T], error) {
	return NewAllocationDims(data, Dims{X: x, Y: y, Z: z})
}

// NewAllocationDims wraps data with the given shape
func NewAllocationDims[T any](data []T, d Dims) (*Allocation[T], error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if d.Count() != len(data) {
		return nil, errors.Wrapf(ErrInvalidDims, "dims %v need %d elements, got %d",
			d, d.Count(), len(data))
	}
	return &Allocation[T]{Data: data, dims: d}, nil
}

// Type returns the element DataType
func (a *Allocation[T]) Type() DataType {
	return DataTypeOf[T]()
}

// Dims returns the allocation shape
func (a *Allocation[T]) Dims() Dims {
	return a.dims
}

// Len returns the number of elements
func (a *Allocation[T]) Len() int {
	return len(a.Data)
}

// At returns element i
func (a *Allocation[T]) At(i int) T {
	return a.Data[i]
}

func (a *Allocation[T]) isBuffer() {}
