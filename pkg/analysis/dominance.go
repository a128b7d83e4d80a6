package analysis

import "github.com/0xPolygonMiden/compiler-sub007/pkg/hir"

// DomTree is a dominator tree computed by the Cooper-Harvey-Kennedy
// iterative algorithm: for each block, its immediate dominator
// and postorder number.
type DomTree struct {
	idom     map[*hir.Block]*hir.Block
	postNum  map[*hir.Block]int
	entry    *hir.Block
}

// BuildDomTree computes the dominator tree of cfg.
func BuildDomTree(cfg *CFG) *DomTree {
	entry := cfg.Entry()
	if entry == nil {
		return &DomTree{idom: map[*hir.Block]*hir.Block{}, postNum: map[*hir.Block]int{}}
	}

	postorder := computePostorder(cfg, entry)

	postNum := make(map[*hir.Block]int, len(postorder))
	for i, b := range postorder {
		postNum[b] = i
	}

	idom := make(map[*hir.Block]*hir.Block, len(postorder))
	idom[entry] = entry

	changed := true
	for changed {
		changed = false
		// Process in reverse postorder, skipping the entry.
		for i := len(postorder) - 2; i >= 0; i-- {
			b := postorder[i]

			var newIdom *hir.Block

			for _, e := range cfg.Predecessors(b) {
				if idom[e.Block] == nil {
					continue
				}

				if newIdom == nil {
					newIdom = e.Block
					continue
				}

				newIdom = intersect(idom, postNum, newIdom, e.Block)
			}

			if newIdom != nil && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	delete(idom, entry)

	return &DomTree{idom: idom, postNum: postNum, entry: entry}
}

func intersect(idom map[*hir.Block]*hir.Block, postNum map[*hir.Block]int, a, b *hir.Block) *hir.Block {
	for a != b {
		for postNum[a] < postNum[b] {
			a = idom[a]
		}

		for postNum[b] < postNum[a] {
			b = idom[b]
		}
	}

	return a
}

func computePostorder(cfg *CFG, entry *hir.Block) []*hir.Block {
	var (
		order   []*hir.Block
		visited = make(map[*hir.Block]bool)
	)

	var visit func(b *hir.Block)
	visit = func(b *hir.Block) {
		if visited[b] {
			return
		}

		visited[b] = true

		for _, e := range cfg.Successors(b) {
			visit(e.Block)
		}

		order = append(order, b)
	}

	visit(entry)

	return order
}

// IDom returns b's immediate dominator, or nil for the entry block.
func (d *DomTree) IDom(b *hir.Block) *hir.Block {
	if b == d.entry {
		return nil
	}

	return d.idom[b]
}

// Dominates reports whether a dominates b (every path from the entry to b
// passes through a), inclusive of a == b.
func (d *DomTree) Dominates(a, b *hir.Block) bool {
	for b != nil {
		if b == a {
			return true
		}

		if b == d.entry {
			return a == d.entry
		}

		b = d.idom[b]
	}

	return false
}

// CommonDominator returns the nearest block dominating both a and b.
func (d *DomTree) CommonDominator(a, b *hir.Block) *hir.Block {
	if a == nil {
		return b
	}

	if b == nil {
		return a
	}

	for !d.Dominates(a, b) {
		a = d.idomOrEntry(a)
	}

	return a
}

func (d *DomTree) idomOrEntry(b *hir.Block) *hir.Block {
	if b == d.entry {
		return d.entry
	}

	return d.idom[b]
}
