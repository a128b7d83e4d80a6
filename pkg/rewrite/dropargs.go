// Package rewrite implements the CFG-mutating transforms that run between
// the frontend and the code generator: redundant block-argument removal,
// critical-edge splitting, treeification, block inlining, conversion to
// structured control flow, and spill materialization.
package rewrite

import "github.com/0xPolygonMiden/compiler-sub007/pkg/hir"

// DropRedundantBlockArguments scans every block in region for arguments
// that every predecessor forwards the same value into, replaces uses of
// such an argument with that value, and erases the argument. It runs to a
// fixed point (a single pass may expose further eliminations once an
// argument upstream collapses) and reports whether anything changed.
func DropRedundantBlockArguments(region *hir.Region) bool {
	anyChanged := false

	for {
		changedThisPass := false

		for _, b := range region.Blocks() {
			preds := b.Predecessors()
			if len(preds) == 0 {
				continue
			}

			for i := 0; i < len(b.Args()); {
				v, ok := commonForwardedValue(preds, i)
				if !ok || v == nil || v == hir.Value(b.Args()[i]) {
					i++
					continue
				}

				arg := b.Args()[i]
				hir.ReplaceAllUsesWith(arg, v)
				b.EraseArg(i)

				for _, p := range preds {
					p.Op.EraseSuccessorOperand(p.SuccIndex, i)
				}

				changedThisPass = true
				// Argument list shifted left; re-examine the same index.
			}
		}

		if !changedThisPass {
			break
		}

		anyChanged = true
	}

	return anyChanged
}

// commonForwardedValue reports the value every predecessor use forwards
// into argument index i, if they all agree.
func commonForwardedValue(preds []hir.PredecessorUse, i int) (hir.Value, bool) {
	var common hir.Value

	for _, p := range preds {
		succ := p.Op.Successors()[p.SuccIndex]
		if i >= len(succ.Forwarded) {
			return nil, false
		}

		v := succ.Forwarded[i].Value()
		if common == nil {
			common = v
		} else if common != v {
			return nil, false
		}
	}

	return common, true
}
