package effect

// SizeState is the permanent ball size toggle. It is not timed.
type SizeState int

const (
	SizeNormal SizeState = iota
	SizeShrunk
	SizeBig
)

func (s SizeState) String() string {
	switch s {
	case SizeShrunk:
		return "shrunk"
	case SizeBig:
		return "big"
	default:
		return "normal"
	}
}

// Shrink applies the shrink ball token: big -> normal -> shrunk, no-op when shrunk.
func (s SizeState) Shrink() SizeState {
	switch s {
	case SizeBig:
		return SizeNormal
	case SizeNormal:
		return SizeShrunk
	default:
		return SizeShrunk
	}
}

// Grow applies the big ballz token: shrunk -> normal -> big, no-op when big.
func (s SizeState) Grow() SizeState {
	switch s {
	case SizeShrunk:
		return SizeNormal
	case SizeNormal:
		return SizeBig
	default:
		return SizeBig
	}
}
