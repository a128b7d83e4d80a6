// Package analysis computes the control-flow graph, dominator tree, natural
// loop forest, liveness, and global-variable layout over an hir.Region.
// Each analysis is grounded on the teacher's general approach of keeping a
// small, explicitly-rebuilt side table alongside the IR rather than
// caching derived state inside IR nodes (c.f. pkg/schema's separately
// maintained register/module maps) -- CFG here is rebuilt on demand via
// BuildCFG rather than incrementally maintained: callers call BuildCFG
// again after CFG-mutating rewrites.
package analysis

import "github.com/0xPolygonMiden/compiler-sub007/pkg/hir"

// Edge records a single CFG edge, tagging the successor index in the
// predecessor that produced it.
type Edge struct {
	Block     *hir.Block
	SuccIndex int
}

// CFG is a per-function adjacency structure: for each block, its
// predecessors and successors.
type CFG struct {
	blocks []*hir.Block
	preds  map[*hir.Block][]Edge
	succs  map[*hir.Block][]Edge
}

// BuildCFG scans every block's terminator in region and constructs the
// adjacency structure. Call again after any rewrite changes the CFG shape
//.
func BuildCFG(region *hir.Region) *CFG {
	c := &CFG{
		preds: make(map[*hir.Block][]Edge),
		succs: make(map[*hir.Block][]Edge),
	}

	c.blocks = region.Blocks()

	for _, b := range c.blocks {
		// Ensure every block has an entry, even with no successors/preds.
		if _, ok := c.succs[b]; !ok {
			c.succs[b] = nil
		}

		if _, ok := c.preds[b]; !ok {
			c.preds[b] = nil
		}

		term := b.Terminator()
		if term == nil {
			continue
		}

		for i, s := range term.Successors() {
			c.succs[b] = append(c.succs[b], Edge{s.Block, i})
			c.preds[s.Block] = append(c.preds[s.Block], Edge{b, i})
		}
	}

	return c
}

// Blocks returns every block in the function, in region order (first is the
// entry).
func (c *CFG) Blocks() []*hir.Block { return c.blocks }

// Successors returns b's outgoing edges.
func (c *CFG) Successors(b *hir.Block) []Edge { return c.succs[b] }

// Predecessors returns b's incoming edges.
func (c *CFG) Predecessors(b *hir.Block) []Edge { return c.preds[b] }

// Entry returns the function's entry block.
func (c *CFG) Entry() *hir.Block {
	if len(c.blocks) == 0 {
		return nil
	}

	return c.blocks[0]
}
