package hir

// RegionKind classifies a Region. SSA regions have dominance
// and require terminators; Graph regions are unordered, single-block, and
// have no terminator.
type RegionKind uint8

const (
	// RegionSSA is a region with control-flow, dominance, and terminators.
	RegionSSA RegionKind = iota
	// RegionGraph is an unordered, single-block region with no terminator.
	RegionGraph
)

// Region owns an ordered block list (intrusive). The first
// block is the entry block. A Region belongs to exactly one Operation (its
// Parent).
type Region struct {
	kind   RegionKind
	parent *Operation

	firstBlock, lastBlock *Block
}

// Kind returns whether this region is SSA or Graph.
func (r *Region) Kind() RegionKind { return r.kind }

// Parent returns the Operation that owns this region.
func (r *Region) Parent() *Operation { return r.parent }

// Entry returns the region's entry block (its first block), or nil if
// empty.
func (r *Region) Entry() *Block { return r.firstBlock }

// Blocks returns this region's blocks in order.
func (r *Region) Blocks() []*Block {
	var out []*Block
	for b := r.firstBlock; b != nil; b = b.next {
		out = append(out, b)
	}

	return out
}

// AppendBlock inserts b at the end of this region's block list.
func (r *Region) AppendBlock(b *Block) {
	if b.region != nil {
		panic("hir: block already belongs to a region")
	}

	b.region = r

	if r.lastBlock == nil {
		r.firstBlock, r.lastBlock = b, b
		return
	}

	b.prev = r.lastBlock
	r.lastBlock.next = b
	r.lastBlock = b
}

// MoveBlockBefore relocates block b to immediately precede ref within the
// same region.
func MoveBlockBefore(ref, b *Block) {
	r := ref.region
	r.unlinkBlock(b)

	b.region = r
	b.prev = ref.prev
	b.next = ref

	if ref.prev != nil {
		ref.prev.next = b
	} else {
		r.firstBlock = b
	}

	ref.prev = b
}

// MoveBlockAfter relocates block b to immediately follow ref within the same
// region.
func MoveBlockAfter(ref, b *Block) {
	r := ref.region
	r.unlinkBlock(b)

	b.region = r
	b.next = ref.next
	b.prev = ref

	if ref.next != nil {
		ref.next.prev = b
	} else {
		r.lastBlock = b
	}

	ref.next = b
}

// MoveBlockToRegion relocates b, with everything it contains, out of its
// current region (if any) and appends it to dst. Used by structured-
// control-flow conversion to reuse an existing block (its ops, its block
// arguments) as the entry block of a freshly synthesized If/While region
// instead of rebuilding an equivalent block from scratch.
func MoveBlockToRegion(b *Block, dst *Region) {
	if b.region != nil {
		b.region.unlinkBlock(b)
	}

	dst.AppendBlock(b)
}

func (r *Region) unlinkBlock(b *Block) {
	owner := b.region
	if owner == nil {
		return
	}

	if b.prev != nil {
		b.prev.next = b.next
	} else {
		owner.firstBlock = b.next
	}

	if b.next != nil {
		b.next.prev = b.prev
	} else {
		owner.lastBlock = b.prev
	}

	b.prev, b.next, b.region = nil, nil, nil
}

// EraseBlock removes b from this region, erasing every operation it
// contains.
func (r *Region) EraseBlock(b *Block) {
	r.unlinkBlock(b)

	for _, op := range b.Ops() {
		op.Erase()
	}
}

// erase tears down every block in this region. Called transitively by
// Operation.Erase.
func (r *Region) erase() {
	for b := r.firstBlock; b != nil; {
		next := b.next

		for _, op := range b.Ops() {
			op.Erase()
		}

		b = next
	}

	r.firstBlock, r.lastBlock = nil, nil
}
