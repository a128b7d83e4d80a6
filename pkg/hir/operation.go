package hir

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Successor is one edge out of a terminator: the target Block together with
// the operands forwarded into its block arguments.
type Successor struct {
	Block     *Block
	Forwarded []*OpOperand
}

// ForwardedValues returns the current values forwarded along this successor
// edge, in block-argument order.
func (s *Successor) ForwardedValues() []Value {
	out := make([]Value, len(s.Forwarded))
	for i, o := range s.Forwarded {
		out[i] = o.Value()
	}

	return out
}

// Operation is a single instance of a registered opcode: an ordered operand
// list, an ordered result list, an ordered successor list, an ordered
// region list, an attribute dictionary, and a source span. An
// Operation is owned by exactly one Block (its Parent), or is nil-parented
// if it is a freshly built, not-yet-inserted op.
type Operation struct {
	Name string

	operands   []*OpOperand
	results    []*OpResult
	successors []*Successor
	regions    []*Region
	attrs      map[symbol.Symbol]any
	span       diagnostic.Span

	traits traitSet

	parent     *Block
	prev, next *Operation
}

// NewOperation constructs a detached Operation (no parent block) named
// name, with resultTypes results and no operands/successors/regions yet;
// callers add those with AddOperand/AddSuccessor/AddRegion before
// inserting it into a block. This mirrors the teacher's builder-constructs-
// then-registry-verifies discipline.
func NewOperation(name string, span diagnostic.Span, resultTypes ...types.Type) *Operation {
	op := &Operation{
		Name: name,
		span: span,
	}

	op.results = make([]*OpResult, len(resultTypes))
	for i, t := range resultTypes {
		op.results[i] = &OpResult{owner: op, index: i, typ: t}
	}

	if reg, ok := dialectRegistry[name]; ok {
		op.traits = reg.traits
	}

	return op
}

// Span returns the source span this operation was built from.
func (op *Operation) Span() diagnostic.Span { return op.span }

// Parent returns the Block that owns this operation, or nil if detached.
func (op *Operation) Parent() *Block { return op.parent }

// Region returns the Region containing this operation's parent block, or
// nil if detached.
func (op *Operation) Region() *Region {
	if op.parent == nil {
		return nil
	}

	return op.parent.region
}

// Operands returns this operation's operand list.
func (op *Operation) Operands() []*OpOperand { return op.operands }

// OperandValues returns the current values referenced by each operand, in
// order.
func (op *Operation) OperandValues() []Value {
	out := make([]Value, len(op.operands))
	for i, o := range op.operands {
		out[i] = o.Value()
	}

	return out
}

// Results returns this operation's result list.
func (op *Operation) Results() []*OpResult { return op.results }

// Result returns the i-th result as a Value, for convenience when an op has
// exactly one result.
func (op *Operation) Result(i int) *OpResult { return op.results[i] }

// Successors returns this operation's ordered successor list.
func (op *Operation) Successors() []*Successor { return op.successors }

// Regions returns this operation's ordered region list.
func (op *Operation) Regions() []*Region { return op.regions }

// Region0 returns the first (commonly the only) region, panicking if op has
// none.
func (op *Operation) Region0() *Region { return op.regions[0] }

// AddOperand appends a new operand referencing value.
func (op *Operation) AddOperand(value Value) *OpOperand {
	o := &OpOperand{owner: op, index: len(op.operands)}
	o.set(value)
	op.operands = append(op.operands, o)

	return o
}

// SetOperand replaces the value referenced by the operand at index i,
// unlinking it from the old value's use list and linking it into the new
// one's.
func (op *Operation) SetOperand(i int, value Value) {
	op.operands[i].set(value)
}

// EraseOperand removes the operand at index i entirely, unlinking it from
// its value's use list and shifting subsequent operand indices down.
func (op *Operation) EraseOperand(i int) {
	op.operands[i].erase()
	op.operands = append(op.operands[:i], op.operands[i+1:]...)

	for j := i; j < len(op.operands); j++ {
		op.operands[j].index = j
	}
}

// AddRegion appends and returns a freshly constructed region owned by op.
func (op *Operation) AddRegion(kind RegionKind) *Region {
	r := &Region{kind: kind, parent: op}
	op.regions = append(op.regions, r)

	return r
}

// AddSuccessor appends a new successor edge to target, forwarding args.
func (op *Operation) AddSuccessor(target *Block, args ...Value) *Successor {
	s := &Successor{Block: target}

	for i, a := range args {
		o := &OpOperand{owner: op, index: len(op.operands) + i}
		o.set(a)
		s.Forwarded = append(s.Forwarded, o)
	}

	op.successors = append(op.successors, s)
	target.addPredecessor(op, len(op.successors)-1)

	return s
}

// RetargetSuccessor repoints the successor edge at succIndex to newTarget,
// keeping the same forwarded operands, and updates both blocks'
// predecessor-use lists. This is one of the rewrite primitives used by
// split-critical-edges and block inlining to relocate edges without
// erasing and rebuilding the terminator.
func (op *Operation) RetargetSuccessor(succIndex int, newTarget *Block) {
	s := op.successors[succIndex]
	s.Block.removePredecessorEdge(op, succIndex)
	s.Block = newTarget
	newTarget.addPredecessor(op, succIndex)
}

// EraseSuccessorOperand removes the forwarded operand at argIndex from the
// successor at succIndex, unlinking it from the value's use list.
func (op *Operation) EraseSuccessorOperand(succIndex, argIndex int) {
	s := op.successors[succIndex]
	s.Forwarded[argIndex].erase()
	s.Forwarded = append(s.Forwarded[:argIndex], s.Forwarded[argIndex+1:]...)
}

// CopyAttrsFrom copies every attribute from src into op, overwriting any
// existing value under the same key. Used by rewrites that clone an
// operation (e.g. treeify's per-predecessor block duplication).
func (op *Operation) CopyAttrsFrom(src *Operation) {
	for k, v := range src.attrs {
		op.SetAttr(k, v)
	}
}

// Attr returns the attribute keyed by name, and whether it was present.
func (op *Operation) Attr(name symbol.Symbol) (any, bool) {
	if op.attrs == nil {
		return nil, false
	}

	v, ok := op.attrs[name]

	return v, ok
}

// SetAttr sets the attribute keyed by name to value.
func (op *Operation) SetAttr(name symbol.Symbol, value any) {
	if op.attrs == nil {
		op.attrs = make(map[symbol.Symbol]any)
	}

	op.attrs[name] = value
}

// HasTrait reports whether op's registered opcode declares trait t.
func (op *Operation) HasTrait(t Trait) bool {
	return op.traits.has(t)
}

// IsTerminator reports whether op is a block terminator.
func (op *Operation) IsTerminator() bool {
	return op.HasTrait(TraitTerminator)
}

// ReplaceAllUsesWith retargets every OpOperand currently referencing old
// (one of op's results, or any Value) to new instead. This is one of the
// core rewrite primitives.
func ReplaceAllUsesWith(old, new Value) {
	if old == new {
		return
	}

	for u := old.firstUse(); u != nil; {
		next := u.nextUse
		u.set(new)
		u = next
	}
}

// Erase detaches op from its parent block (if any) and recursively erases
// its nested regions/blocks, unlinking every operand from its defining
// value's use list. op must have no remaining
// uses of its results.
func (op *Operation) Erase() {
	for _, r := range op.results {
		if IsUsed(r) {
			panic("hir: erasing operation with live results")
		}
	}

	if op.parent != nil {
		op.parent.remove(op)
	}

	for _, o := range op.operands {
		o.erase()
	}

	for _, s := range op.successors {
		for _, o := range s.Forwarded {
			o.erase()
		}

		s.Block.removePredecessor(op)
	}

	for _, r := range op.regions {
		r.erase()
	}
}
