package rewrite

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/analysis"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Treeify transforms region so that no block other than a natural-loop
// header or a simple binary if/else merge has more than one predecessor:
// every block reached by more than two non-loop predecessors (a join
// CFGToStructured's single-reconvergence-point detection cannot express
// as one If) is cloned once per extra predecessor, together with
// everything reachable from it up to (but not including) the next loop
// header, producing a CFG that is a tree modulo loop headers and binary
// if/else joins. Ordinary two-predecessor if/else merges are left alone
// deliberately: CFGToStructured consumes exactly that shape directly,
// and duplicating it here would leave nothing for it to reconverge on.
// Treeify assumes it runs before any If/While region has been
// synthesized: cloning an op with nested regions is not supported and
// panics.
func Treeify(region *hir.Region) bool {
	changed := false

	for {
		cfg := analysis.BuildCFG(region)
		dom := analysis.BuildDomTree(cfg)
		loops := analysis.Loops(cfg, dom)

		headers := make(map[*hir.Block]bool, len(loops))
		for _, l := range loops {
			headers[l.Header] = true
		}

		target := findMultiPredNonLoopHeader(region, cfg, headers)
		if target == nil {
			break
		}

		preds := append([]analysis.Edge(nil), cfg.Predecessors(target)...)

		// Keep the first predecessor attached to the original block; clone
		// a fresh copy of the dominated subtree for every other predecessor.
		for _, e := range preds[1:] {
			clone := cloneSubtree(target, make(map[*hir.Block]*hir.Block), region, headers)
			e.Block.Terminator().RetargetSuccessor(e.SuccIndex, clone)
		}

		changed = true
	}

	return changed
}

func findMultiPredNonLoopHeader(region *hir.Region, cfg *analysis.CFG, headers map[*hir.Block]bool) *hir.Block {
	for _, b := range region.Blocks() {
		if headers[b] {
			continue
		}

		if len(cfg.Predecessors(b)) > 2 {
			return b
		}
	}

	return nil
}

// cloneSubtree clones orig and, recursively, every block reachable from
// its terminator's successors, stopping (and sharing the original block
// rather than cloning) at a loop header. memo deduplicates within a
// single clone pass so a block reachable from orig by two different
// paths is cloned only once per redirected predecessor (Treeify passes
// a fresh memo for each one).
func cloneSubtree(orig *hir.Block, memo map[*hir.Block]*hir.Block, region *hir.Region, headers map[*hir.Block]bool) *hir.Block {
	if c, ok := memo[orig]; ok {
		return c
	}

	if headers[orig] {
		return orig
	}

	argTypes := make([]types.Type, len(orig.Args()))
	for i, a := range orig.Args() {
		argTypes[i] = a.Type()
	}

	clone := hir.NewBlock(argTypes...)
	region.AppendBlock(clone)
	memo[orig] = clone

	valueMap := make(map[hir.Value]hir.Value, len(orig.Args()))
	for i, a := range orig.Args() {
		valueMap[hir.Value(a)] = hir.Value(clone.Args()[i])
	}

	for _, op := range orig.Ops() {
		newOp := cloneOp(op, valueMap)
		clone.Append(newOp)

		for i, r := range op.Results() {
			valueMap[hir.Value(r)] = hir.Value(newOp.Results()[i])
		}
	}

	// Recurse into successors after the block's own ops are cloned, so that
	// a self-loop back to orig resolves via memo instead of re-cloning.
	for _, newOp := range clone.Ops() {
		for i, s := range newOp.Successors() {
			target := s.Block
			childClone := cloneSubtree(target, memo, region, headers)

			if childClone != target {
				newOp.RetargetSuccessor(i, childClone)
			}
		}
	}

	return clone
}

func cloneOp(op *hir.Operation, valueMap map[hir.Value]hir.Value) *hir.Operation {
	if len(op.Regions()) > 0 {
		panic("rewrite: treeify cannot clone an op with nested regions")
	}

	resultTypes := make([]types.Type, len(op.Results()))
	for i, r := range op.Results() {
		resultTypes[i] = r.Type()
	}

	newOp := hir.NewOperation(op.Name, op.Span(), resultTypes...)
	newOp.CopyAttrsFrom(op)

	for _, operand := range op.Operands() {
		newOp.AddOperand(mapValue(valueMap, operand.Value()))
	}

	for _, s := range op.Successors() {
		args := make([]hir.Value, len(s.Forwarded))
		for i, f := range s.Forwarded {
			args[i] = mapValue(valueMap, f.Value())
		}
		// The target is fixed up to its clone (or left as-is for a loop
		// header) by the caller once the whole block's ops exist.
		newOp.AddSuccessor(s.Block, args...)
	}

	return newOp
}

func mapValue(valueMap map[hir.Value]hir.Value, v hir.Value) hir.Value {
	if nv, ok := valueMap[v]; ok {
		return nv
	}

	return v
}
