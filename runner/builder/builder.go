package builder

import (
	"github.com/x448/float16"
)

// DataType identifies the element type of an input buffer or accumulator
type DataType int

const (
	// Opaque is any Go type without a registered element type: structs,
	// fixed-length arrays, and other caller-defined accumulators
	Opaque DataType = iota
	INT8
	UINT8
	INT16
	UINT16
	INT32
	UINT32
	INT64
	UINT64
	Float16
	Float32
	Float64
	INT16x2
	INT32x2
	INT32x3
	INT32x4
	UINT64x4
)

// DataTypeOf returns the DataType of the Go type T
func DataTypeOf[T any]() DataType {
	var sample T
	return GetDataTypeFromSample(sample)
}

// GetDataTypeFromSample returns the DataType based on a sample value
func GetDataTypeFromSample(sample interface{}) DataType {
	switch sample.(type) {
	case int8:
		return INT8
	case uint8:
		return UINT8
	case int16:
		return INT16
	case uint16:
		return UINT16
	case int32:
		return INT32
	case uint32:
		return UINT32
	case int64:
		return INT64
	case uint64:
		return UINT64
	case float16.Float16:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	case Short2:
		return INT16x2
	case Int2:
		return INT32x2
	case Int3:
		return INT32x3
	case Int4:
		return INT32x4
	case ULong4:
		return UINT64x4
	default:
		return Opaque
	}
}

// SizeOfType returns the size in bytes of a data type, 0 for Opaque
func SizeOfType(dt DataType) int64 {
	switch dt {
	case INT8, UINT8:
		return 1
	case INT16, UINT16, Float16:
		return 2
	case INT32, UINT32, Float32, INT16x2:
		return 4
	case INT64, UINT64, Float64, INT32x2:
		return 8
	case INT32x3, INT32x4:
		// 3-vectors are padded to 4 components
		return 16
	case UINT64x4:
		return 32
	default:
		return 0
	}
}

// TypeName returns the C type name for a given DataType
func TypeName(dt DataType) string {
	switch dt {
	case INT8:
		return "char"
	case UINT8:
		return "uchar"
	case INT16:
		return "short"
	case UINT16:
		return "ushort"
	case INT32:
		return "int"
	case UINT32:
		return "uint"
	case INT64:
		return "long"
	case UINT64:
		return "ulong"
	case Float16:
		return "half"
	case Float32:
		return "float"
	case Float64:
		return "double"
	case INT16x2:
		return "short2"
	case INT32x2:
		return "int2"
	case INT32x3:
		return "int3"
	case INT32x4:
		return "int4"
	case UINT64x4:
		return "ulong4"
	default:
		return "opaque"
	}
}

// String implements fmt.Stringer
func (dt DataType) String() string {
	return TypeName(dt)
}

// VectorSize returns the number of components, 1 for scalars
func (dt DataType) VectorSize() int {
	switch dt {
	case INT16x2, INT32x2:
		return 2
	case INT32x3:
		return 3
	case INT32x4, UINT64x4:
		return 4
	default:
		return 1
	}
}
