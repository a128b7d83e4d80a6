package hir

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

func internAttr(name string) symbol.Symbol {
	return symbol.Intern(name)
}

// Builder tracks an insertion block and appends newly constructed
// operations to its end, mirroring the teacher's
// builder-driven construction discipline.
type Builder struct {
	block *Block
}

// NewBuilder constructs a Builder that appends to the end of block.
func NewBuilder(block *Block) *Builder {
	return &Builder{block}
}

// Block returns the block this builder currently inserts into.
func (b *Builder) Block() *Block { return b.block }

// SetBlock repositions the builder to append to the end of block.
func (b *Builder) SetBlock(block *Block) {
	b.block = block
}

// Insert appends op to the current block and returns it, for chaining.
func (b *Builder) Insert(op *Operation) *Operation {
	b.block.Append(op)
	return op
}

// Func represents a top-level HIR function: a named, typed operation whose
// single SSA region holds its body. It is the unit the WebAssembly frontend
// (component G) and the code generator (component I) both operate over.
type Func struct {
	op *Operation
}

// funcAttrs are the symbol.Symbol-keyed attribute names used on a function
// operation.
var (
	attrFuncID      = internAttr("func.id")
	attrFuncSig     = internAttr("func.signature")
	attrFuncCC      = internAttr("func.callconv")
	attrFuncLinkage = internAttr("func.linkage")
	attrFuncVis     = internAttr("func.visibility")
)

// Signature describes a function's parameter and result types, independent
// of types.FunctionType so that parameter names/spans can be attached.
type Signature struct {
	Params  []Param
	Results []types.Type
}

// Param is one function parameter.
type Param struct {
	Name Ident
	Type types.Type
}

// NewFunc constructs a new, empty top-level function operation named id
// with the given signature, calling convention, linkage and visibility. Its
// body is a single-block SSA region whose entry block argument types match
// the signature's parameter types; callers append instructions via
// NewBuilder(fn.Entry()).
func NewFunc(id FunctionIdent, sig Signature, cc CallConv, linkage Linkage, vis Visibility, span diagnostic.Span) *Func {
	op := NewOperation("hir.func", span)
	op.SetAttr(attrFuncID, id)
	op.SetAttr(attrFuncSig, sig)
	op.SetAttr(attrFuncCC, cc)
	op.SetAttr(attrFuncLinkage, linkage)
	op.SetAttr(attrFuncVis, vis)

	region := op.AddRegion(RegionSSA)

	argTypes := make([]types.Type, len(sig.Params))
	for i, p := range sig.Params {
		argTypes[i] = p.Type
	}

	entry := NewBlock(argTypes...)
	region.AppendBlock(entry)

	return &Func{op}
}

// Op returns the underlying hir.Operation ("hir.func") for this function.
func (f *Func) Op() *Operation { return f.op }

// ID returns the function's globally-unique identifier.
func (f *Func) ID() FunctionIdent {
	v, _ := f.op.Attr(attrFuncID)
	return v.(FunctionIdent)
}

// Signature returns the function's parameter/result type signature.
func (f *Func) Signature() Signature {
	v, _ := f.op.Attr(attrFuncSig)
	return v.(Signature)
}

// CallConv returns the function's calling convention.
func (f *Func) CallConv() CallConv {
	v, _ := f.op.Attr(attrFuncCC)
	return v.(CallConv)
}

// Linkage returns the function's linkage.
func (f *Func) Linkage() Linkage {
	v, _ := f.op.Attr(attrFuncLinkage)
	return v.(Linkage)
}

// Visibility returns the function's symbol-table visibility.
func (f *Func) Visibility() Visibility {
	v, _ := f.op.Attr(attrFuncVis)
	return v.(Visibility)
}

// Region returns the function's body region.
func (f *Func) Region() *Region { return f.op.Region0() }

// Entry returns the function body's entry block.
func (f *Func) Entry() *Block { return f.Region().Entry() }

// Params returns the entry block's arguments as Values, one per parameter.
func (f *Func) Params() []*BlockArgument { return f.Entry().Args() }
