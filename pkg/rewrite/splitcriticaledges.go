package rewrite

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
)

// SplitCriticalEdges inserts a fresh block on every edge (A -> B) where A
// has more than one successor and B has more than one predecessor. The
// code generator requires each such edge to have a unique materialization
// site to attach spills and stack adjustments to. Reports whether any
// edge was split.
func SplitCriticalEdges(region *hir.Region) bool {
	changed := false

	// Snapshot the block list before mutating: newly inserted blocks must
	// not themselves be scanned as sources of further critical edges in
	// this pass.
	for _, a := range region.Blocks() {
		term := a.Terminator()
		if term == nil || len(term.Successors()) < 2 {
			continue
		}

		for i, s := range term.Successors() {
			b := s.Block
			if len(b.Predecessors()) < 2 {
				continue
			}

			args := s.ForwardedValues()

			for len(term.Successors()[i].Forwarded) > 0 {
				term.EraseSuccessorOperand(i, 0)
			}

			c := hir.NewBlock()
			region.AppendBlock(c)
			hir.NewBuilder(c).Insert(dialect.Br(term.Span(), b, args...))

			term.RetargetSuccessor(i, c)

			changed = true
		}
	}

	return changed
}
