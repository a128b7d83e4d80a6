// Package hir implements the Middle IR: a typed, SSA-form control-flow-graph
// IR built from Operations, Regions, Blocks and explicit Value uses. It generalizes the shape of the teacher's HIR/MIR/AIR term model
// (pkg/ir/hir, pkg/ir/mir) from a constraint-system IR to a general-purpose
// control-flow IR, and its Operation/Region/Block ownership model is
// grounded on the interior-mutability discipline the teacher applies to its
// own refcounted IR nodes (pkg/ir/builder) -- back-edges (parent pointers,
// use lists) are non-owning.
package hir

import "github.com/0xPolygonMiden/compiler-sub007/pkg/types"

// Value is either a block argument or an operation result.
// Every value has a type and an intrusive use-def list of OpOperands.
type Value interface {
	// Type returns the static type of this value.
	Type() types.Type
	// firstUse/setFirstUse manage the intrusive use list; they are
	// unexported because only OpOperand (same package) may link/unlink
	// itself into it.
	firstUse() *OpOperand
	setFirstUse(*OpOperand)
}

// Uses returns every OpOperand referencing v, most recently linked use
// first (the list is intrusive and prepended-to at the head).
func Uses(v Value) []*OpOperand {
	var out []*OpOperand
	for u := v.firstUse(); u != nil; u = u.nextUse {
		out = append(out, u)
	}

	return out
}

// HasOneUse reports whether v has exactly one use.
func HasOneUse(v Value) bool {
	u := v.firstUse()
	return u != nil && u.nextUse == nil
}

// IsUsed reports whether v has at least one use.
func IsUsed(v Value) bool {
	return v.firstUse() != nil
}

// BlockArgument is a Value defined by being the i-th parameter of a Block
//.
type BlockArgument struct {
	block *Block
	index int
	typ   types.Type
	use   *OpOperand
}

// Type implements Value.
func (a *BlockArgument) Type() types.Type { return a.typ }

func (a *BlockArgument) firstUse() *OpOperand     { return a.use }
func (a *BlockArgument) setFirstUse(u *OpOperand) { a.use = u }

// Block returns the block this argument belongs to.
func (a *BlockArgument) Block() *Block { return a.block }

// Index returns this argument's position within its block's argument list.
func (a *BlockArgument) Index() int { return a.index }

// OpResult is a Value defined as the i-th result of an Operation.
type OpResult struct {
	owner *Operation
	index int
	typ   types.Type
	use   *OpOperand
}

// Type implements Value.
func (r *OpResult) Type() types.Type { return r.typ }

func (r *OpResult) firstUse() *OpOperand     { return r.use }
func (r *OpResult) setFirstUse(u *OpOperand) { r.use = u }

// Owner returns the Operation that defines this result.
func (r *OpResult) Owner() *Operation { return r.owner }

// Index returns this result's position within its owner's result list.
func (r *OpResult) Index() int { return r.index }

// OpOperand is a single use of a Value by an Operation at a specific operand
// index. It is linked into an intrusive list rooted at the
// value it uses, and separately owned (by position) within its owning
// Operation's operand slice.
type OpOperand struct {
	owner *Operation
	index int
	value Value
	// nextUse/prevUse link this operand into value's use list.
	nextUse, prevUse *OpOperand
}

// Owner returns the Operation this operand belongs to.
func (o *OpOperand) Owner() *Operation { return o.owner }

// Index returns this operand's position within its owner's operand list.
func (o *OpOperand) Index() int { return o.index }

// Value returns the value currently referenced by this operand.
func (o *OpOperand) Value() Value { return o.value }

// Replace retargets this one operand to reference v instead, unlinking it
// from its current value's use list and linking it into v's. Unlike
// ReplaceAllUsesWith, this affects only this operand, not every use of the
// old value -- rewrites that must redirect some but not all uses of a
// value (e.g. structured-control-flow conversion splitting a loop
// header's uses between its condition and its body) use this directly.
func (o *OpOperand) Replace(v Value) {
	o.set(v)
}

// set links o into value's use list, unlinking it from any previous value
// first. This is the only way an OpOperand's referent changes, which keeps
// the use-def invariant trivially true by
// construction.
func (o *OpOperand) set(value Value) {
	o.unlink()

	o.value = value
	if value == nil {
		return
	}

	o.prevUse = nil
	o.nextUse = value.firstUse()

	if o.nextUse != nil {
		o.nextUse.prevUse = o
	}

	value.setFirstUse(o)
}

// unlink removes o from its current value's use list without changing
// o.value to nil (callers follow up with set or discard o entirely).
func (o *OpOperand) unlink() {
	if o.value == nil {
		return
	}

	if o.prevUse != nil {
		o.prevUse.nextUse = o.nextUse
	} else {
		o.value.setFirstUse(o.nextUse)
	}

	if o.nextUse != nil {
		o.nextUse.prevUse = o.prevUse
	}

	o.prevUse, o.nextUse = nil, nil
}

// erase fully removes o from its value's use list and clears its referent.
// Called when the owning Operation is erased or an operand is dropped.
func (o *OpOperand) erase() {
	o.unlink()
	o.value = nil
}
