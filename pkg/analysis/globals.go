package analysis

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Segments reports the first address after any reserved data segments (rodata,
// stack reservations, etc.), the base from which global-variable layout
// begins.
type Segments struct {
	reserved uint32
}

// NewSegments constructs a Segments whose reserved region ends at
// reservedEnd.
func NewSegments(reservedEnd uint32) Segments {
	return Segments{reservedEnd}
}

// NextAvailableOffset returns the first free byte address after the
// reserved segments.
func (s Segments) NextAvailableOffset() uint32 {
	return s.reserved
}

// Global declares one module-level global variable, in declaration order.
type Global struct {
	Name symbol.Symbol
	Type types.Type
}

// GlobalLayout assigns a stable byte offset to every global variable, in
// declaration order, beginning at segments.NextAvailableOffset(). All offsets are word-aligned, matching the target's word-aligned
// load/store requirement.
type GlobalLayout struct {
	offsets map[symbol.Symbol]uint32
	size    uint32
}

// LayoutGlobals computes a GlobalLayout for globals in declaration order.
func LayoutGlobals(segments Segments, globals []Global) *GlobalLayout {
	offset := segments.NextAvailableOffset()
	offsets := make(map[symbol.Symbol]uint32, len(globals))

	for _, g := range globals {
		layout := types.SizeOf(g.Type)
		offset = alignUpWord(offset)
		offsets[g.Name] = offset
		offset += layout.Size
	}

	return &GlobalLayout{offsets: offsets, size: offset - segments.NextAvailableOffset()}
}

func alignUpWord(n uint32) uint32 {
	const word = types.WordBytes
	return (n + word - 1) &^ (word - 1)
}

// Address resolves a global's absolute byte address. Panics if name was not
// part of the layout.
func (l *GlobalLayout) Address(name symbol.Symbol) uint32 {
	addr, ok := l.offsets[name]
	if !ok {
		panic("analysis: unknown global in layout: " + symbol.String(name))
	}

	return addr
}

// Size returns the total number of bytes occupied by all laid-out globals.
func (l *GlobalLayout) Size() uint32 {
	return l.size
}
