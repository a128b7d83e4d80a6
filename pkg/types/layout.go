package types

// Layout describes the in-memory footprint of a Type: its size and
// alignment, both in bytes.  Size and alignment are deterministic functions
// of a type's structure.
type Layout struct {
	Size  uint32
	Align uint32
}

// SizeOf computes the byte layout of t.  Panics for KindFn and KindNever,
// which have no runtime representation.
func SizeOf(t Type) Layout {
	switch t.Kind() {
	case KindUnit:
		return Layout{0, 1}
	case KindI1, KindI8, KindU8:
		return Layout{1, 1}
	case KindI16, KindU16:
		return Layout{2, 2}
	case KindI32, KindU32, KindIsize, KindUsize:
		return Layout{4, 4}
	case KindI64, KindU64, KindF64, KindFelt:
		return Layout{8, 8}
	case KindI128, KindU128:
		return Layout{16, 16}
	case KindU256:
		return Layout{32, 16}
	case KindPtr, KindNativePtr:
		return Layout{4, 4}
	case KindArray:
		elem := SizeOf(t.Elem())
		return Layout{alignUp(elem.Size, elem.Align) * t.Length(), elem.Align}
	case KindStruct:
		return structLayout(t.Fields())
	case KindTuple:
		return structLayout(t.Fields())
	default:
		panic("types: no byte layout for " + t.String())
	}
}

// structLayout lays fields out in declaration order, each field aligned to
// its own alignment requirement, with trailing padding so the whole struct's
// size is a multiple of its alignment -- the conventional C-like layout rule,
// required here because the target additionally demands word alignment on
// top of it (see WordsOf).
func structLayout(fields []Type) Layout {
	var (
		offset uint32
		align  uint32 = 1
	)

	for _, f := range fields {
		fl := SizeOf(f)
		offset = alignUp(offset, fl.Align)
		offset += fl.Size

		if fl.Align > align {
			align = fl.Align
		}
	}

	return Layout{alignUp(offset, align), align}
}

// alignUp rounds n up to the nearest multiple of align (align must be a
// power of two, or 1).
func alignUp(n, align uint32) uint32 {
	if align <= 1 {
		return n
	}

	return (n + align - 1) &^ (align - 1)
}

// WordsOf computes the number of Miden memory words (WordBytes each)
// required to hold a value of type t, rounding up.  All integer loads/stores
// are required by the target to be word-aligned; the
// code generator uses this to decide how many MemLoadW/MemStoreW operations
// a value requires.
func WordsOf(t Type) uint32 {
	sz := SizeOf(t).Size
	return (sz + WordBytes - 1) / WordBytes
}

// FieldOffset returns the byte offset of field index i within a Struct or
// Tuple type.
func FieldOffset(t Type, i int) uint32 {
	var offset uint32

	for idx, f := range t.Fields() {
		fl := SizeOf(f)
		offset = alignUp(offset, fl.Align)

		if idx == i {
			return offset
		}

		offset += fl.Size
	}

	panic("types: field index out of range")
}
