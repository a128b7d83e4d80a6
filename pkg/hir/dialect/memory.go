package dialect

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

func init() {
	hir.RegisterOp(OpLoad, hir.Traits(hir.TraitMemoryRead), nil)
	hir.RegisterOp(OpStore, hir.Traits(hir.TraitMemoryWrite), nil)
}

// Load builds a memory load from ptr (a Ptr(t) value), yielding a value of
// type t. Memory is word-addressed; the code generator, not
// this builder, decides how many MemLoadW ops a given t requires.
func Load(span diagnostic.Span, ptr hir.Value) *hir.Operation {
	elem := ptr.Type().Elem()
	op := hir.NewOperation(OpLoad, span, elem)
	op.AddOperand(ptr)

	return op
}

// Store builds a memory store of value to ptr (a Ptr(value.Type()) value),
// yielding no result.
func Store(span diagnostic.Span, ptr, value hir.Value) *hir.Operation {
	op := hir.NewOperation(OpStore, span)
	op.AddOperand(ptr)
	op.AddOperand(value)

	return op
}

// AllocType is a convenience for constructing a Ptr(t) type when building
// Load/Store operands from a raw address value (the address itself is
// untyped at the HIR level; Ptr(t) is attached by whichever op produced the
// address).
func AllocType(t types.Type) types.Type {
	return types.Ptr(t)
}
