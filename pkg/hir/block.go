package hir

import "github.com/0xPolygonMiden/compiler-sub007/pkg/types"

// PredecessorUse records that some terminator op's successor at SuccIndex
// targets this block.
type PredecessorUse struct {
	Op        *Operation
	SuccIndex int
}

// Block owns an ordered operation list (an intrusive doubly-linked list)
// plus an ordered block-argument list. A Block belongs to exactly one
// Region.
type Block struct {
	region *Region
	args   []*BlockArgument

	firstOp, lastOp *Operation

	preds []PredecessorUse

	prev, next *Block
}

// NewBlock constructs a detached block (no parent region) with the given
// argument types.
func NewBlock(argTypes ...types.Type) *Block {
	b := &Block{}

	b.args = make([]*BlockArgument, len(argTypes))
	for i, t := range argTypes {
		b.args[i] = &BlockArgument{block: b, index: i, typ: t}
	}

	return b
}

// Region returns the region this block belongs to, or nil if detached.
func (b *Block) Region() *Region { return b.region }

// Args returns this block's ordered argument list.
func (b *Block) Args() []*BlockArgument { return b.args }

// AddArg appends a new block argument of type t and returns it.
func (b *Block) AddArg(t types.Type) *BlockArgument {
	a := &BlockArgument{block: b, index: len(b.args), typ: t}
	b.args = append(b.args, a)

	return a
}

// EraseArg removes the argument at index i, shifting subsequent indices
// down. The argument must have no remaining uses.
func (b *Block) EraseArg(i int) {
	if IsUsed(b.args[i]) {
		panic("hir: erasing block argument with live uses")
	}

	b.args = append(b.args[:i], b.args[i+1:]...)

	for j := i; j < len(b.args); j++ {
		b.args[j].index = j
	}
}

// Predecessors returns the blocks (via their terminator's successor edge)
// with an edge into this block.
func (b *Block) Predecessors() []PredecessorUse { return b.preds }

func (b *Block) addPredecessor(op *Operation, succIndex int) {
	b.preds = append(b.preds, PredecessorUse{op, succIndex})
}

func (b *Block) removePredecessor(op *Operation) {
	out := b.preds[:0]

	for _, p := range b.preds {
		if p.Op != op {
			out = append(out, p)
		}
	}

	b.preds = out
}

// removePredecessorEdge removes exactly the predecessor entry for the
// successor at succIndex in op, leaving any other edges from op to this
// block (a rare but legal multi-edge case) untouched.
func (b *Block) removePredecessorEdge(op *Operation, succIndex int) {
	out := b.preds[:0]

	for _, p := range b.preds {
		if p.Op == op && p.SuccIndex == succIndex {
			continue
		}

		out = append(out, p)
	}

	b.preds = out
}

// Ops returns this block's operations in order, front to back.
func (b *Block) Ops() []*Operation {
	var out []*Operation
	for op := b.firstOp; op != nil; op = op.next {
		out = append(out, op)
	}

	return out
}

// Terminator returns the block's terminator operation (the last op, which
// must be marked Terminator for SSA regions), or nil if the block is
// empty.
func (b *Block) Terminator() *Operation {
	return b.lastOp
}

// Append inserts op at the end of this block's operation list.
func (b *Block) Append(op *Operation) {
	if op.parent != nil {
		panic("hir: operation already has a parent")
	}

	op.parent = b

	if b.lastOp == nil {
		b.firstOp, b.lastOp = op, op
		return
	}

	op.prev = b.lastOp
	b.lastOp.next = op
	b.lastOp = op
}

// InsertBefore inserts newOp immediately before ref within ref's block.
func InsertBefore(ref, newOp *Operation) {
	if newOp.parent != nil {
		panic("hir: operation already has a parent")
	}

	b := ref.parent
	newOp.parent = b
	newOp.prev = ref.prev
	newOp.next = ref

	if ref.prev != nil {
		ref.prev.next = newOp
	} else {
		b.firstOp = newOp
	}

	ref.prev = newOp
}

// InsertAfter inserts newOp immediately after ref within ref's block.
func InsertAfter(ref, newOp *Operation) {
	if newOp.parent != nil {
		panic("hir: operation already has a parent")
	}

	b := ref.parent
	newOp.parent = b
	newOp.next = ref.next
	newOp.prev = ref

	if ref.next != nil {
		ref.next.prev = newOp
	} else {
		b.lastOp = newOp
	}

	ref.next = newOp
}

// MoveOpsInto appends every operation currently in b, in order, to the end
// of dst's operation list, then leaves b empty. Used by block-inlining to
// splice a block's body into its sole predecessor.
func (b *Block) MoveOpsInto(dst *Block) {
	for op := b.firstOp; op != nil; {
		next := op.next
		op.prev, op.next, op.parent = nil, nil, nil
		dst.Append(op)
		op = next
	}

	b.firstOp, b.lastOp = nil, nil
}

// MoveBodyInto appends every operation in b except its terminator, in
// order, to the end of dst's operation list, leaving b with just the
// terminator. Used by structured-control-flow conversion to relocate a
// block's straight-line body into the block that is absorbing it while
// deciding separately what becomes of the terminator itself.
func (b *Block) MoveBodyInto(dst *Block) {
	term := b.lastOp

	for op := b.firstOp; op != nil && op != term; {
		next := op.next
		op.prev, op.next, op.parent = nil, nil, nil
		dst.Append(op)
		op = next
	}

	b.firstOp = term
	if term != nil {
		term.prev = nil
	}
}

// remove splices op out of its block's operation list. Called by
// Operation.Erase.
func (b *Block) remove(op *Operation) {
	if op.prev != nil {
		op.prev.next = op.next
	} else {
		b.firstOp = op.next
	}

	if op.next != nil {
		op.next.prev = op.prev
	} else {
		b.lastOp = op.prev
	}

	op.prev, op.next, op.parent = nil, nil, nil
}
