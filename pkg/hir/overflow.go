package hir

// Overflow selects how an arithmetic op handles results that do not fit in
// its result type.
type Overflow uint8

const (
	// OverflowWrapping truncates silently (used for iN.add etc. per Wasm
	// semantics).
	OverflowWrapping Overflow = iota
	// OverflowChecked asserts no overflow occurred and traps if it did; used
	// when the frontend can prove non-overflow is required.
	OverflowChecked
	// OverflowOverflowing produces an extra carry/borrow result alongside the
	// wrapped value.
	OverflowOverflowing
)

func (o Overflow) String() string {
	switch o {
	case OverflowWrapping:
		return "wrapping"
	case OverflowChecked:
		return "checked"
	case OverflowOverflowing:
		return "overflowing"
	default:
		return "?"
	}
}
