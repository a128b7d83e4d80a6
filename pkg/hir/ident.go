package hir

import (
	"fmt"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
)

// Ident is an interned Symbol paired with the source span it came from
//.
type Ident struct {
	Symbol symbol.Symbol
	Span   diagnostic.Span
}

// NewIdent interns name in the default interner and pairs it with span.
func NewIdent(name string, span diagnostic.Span) Ident {
	return Ident{symbol.Intern(name), span}
}

// String returns the original name this identifier was interned from.
func (id Ident) String() string {
	return symbol.String(id.Symbol)
}

// FunctionIdent globally identifies a function within a linked program by
// its defining module and its own name.
type FunctionIdent struct {
	Module   Ident
	Function Ident
}

// NewFunctionIdent constructs a FunctionIdent from already-interned idents.
func NewFunctionIdent(module, function Ident) FunctionIdent {
	return FunctionIdent{module, function}
}

// String renders a FunctionIdent the way the HIR text form prints call
// targets: "@module::function".
func (f FunctionIdent) String() string {
	return fmt.Sprintf("@%s::%s", f.Module, f.Function)
}

// CallConv enumerates calling conventions.
type CallConv uint8

// The calling conventions a function identity can carry.
const (
	CallConvFast CallConv = iota
	CallConvSystemV
	CallConvWasm
	CallConvKernel
)

// String renders a CallConv in HIR textual form.
func (c CallConv) String() string {
	switch c {
	case CallConvFast:
		return "fast"
	case CallConvSystemV:
		return "C"
	case CallConvWasm:
		return "wasm"
	case CallConvKernel:
		return "kernel"
	default:
		return "?"
	}
}

// Linkage enumerates symbol linkage.
type Linkage uint8

// The linkage kinds a symbol can carry.
const (
	LinkageInternal Linkage = iota
	LinkageOdr
	LinkageExternal
)

func (l Linkage) String() string {
	switch l {
	case LinkageInternal:
		return "internal"
	case LinkageOdr:
		return "odr"
	case LinkageExternal:
		return "external"
	default:
		return "?"
	}
}

// Visibility enumerates symbol-table visibility.
type Visibility uint8

// The visibility kinds a symbol can carry.
const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
	VisibilityInternal
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "pub"
	case VisibilityPrivate:
		return "priv"
	case VisibilityInternal:
		return "internal"
	default:
		return "?"
	}
}
