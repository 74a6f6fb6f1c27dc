package builder

// Short2 is a 2-component int16 vector
type Short2 struct {
	X, Y int16
}

// Int2 is a 2-component int32 vector
type Int2 struct {
	X, Y int32
}

// Int3 is a 3-component int32 vector
type Int3 struct {
	X, Y, Z int32
}

// Int4 is a 4-component int32 vector
type Int4 struct {
	X, Y, Z, W int32
}

// ULong4 is a 4-component uint64 vector
type ULong4 struct {
	X, Y, Z, W uint64
}

// Component returns component i (0=X .. 3=W)
func (v ULong4) Component(i int) uint64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		return v.W
	}
}
