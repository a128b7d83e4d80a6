package rewrite

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/analysis"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
)

// InlineBlocks finds every block B whose only predecessor is an
// unconditional branch from block X, where X's only successor is B, and
// splices B's body into X: B's block arguments are replaced by the
// branch's forwarded operands, the branch is erased, and B's operations
// are appended directly to X. Runs to a fixed point and reports whether
// anything changed.
func InlineBlocks(region *hir.Region) bool {
	anyChanged := false

	for {
		cfg := analysis.BuildCFG(region)
		entry := cfg.Entry()

		changedThisPass := false

		for _, b := range region.Blocks() {
			if b == entry {
				continue
			}

			preds := cfg.Predecessors(b)
			if len(preds) != 1 {
				continue
			}

			x := preds[0].Block
			if len(cfg.Successors(x)) != 1 {
				continue
			}

			term := x.Terminator()
			if term == nil || term.Name != dialect.OpBr {
				continue
			}

			succ := term.Successors()[0]
			args := succ.ForwardedValues()

			for i, a := range b.Args() {
				hir.ReplaceAllUsesWith(a, args[i])
			}

			term.Erase()
			b.MoveOpsInto(x)
			region.EraseBlock(b)

			changedThisPass = true

			break // block list changed; restart the scan
		}

		if !changedThisPass {
			break
		}

		anyChanged = true
	}

	return anyChanged
}
