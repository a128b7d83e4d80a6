package rewrite

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
)

// Spill describes one spill decision: value
// is written to a fresh local immediately after After executes, and
// reloaded from that local immediately before each operand in Reloads
// consumes it. No pass in this module produces Spill values (the code
// generator's solver never gives up on an ordering); ApplySpills is the
// rewrite that turns such a decision into concrete HIR.
type Spill struct {
	Value   hir.Value
	After   *hir.Operation
	Reloads []*hir.OpOperand
}

// ApplySpills materializes every spill in spills: for each,
// it inserts a hir.local allocation and a store right after the spill's
// defining point, then a load immediately before each reloading use,
// redirecting that one use to the load's result. Reports whether any
// spill was applied.
func ApplySpills(spills []Spill) bool {
	changed := false

	for _, sp := range spills {
		if sp.After == nil || len(sp.Reloads) == 0 {
			continue
		}

		span := sp.After.Span()

		localOp := dialect.Local(span, sp.Value.Type())
		hir.InsertAfter(sp.After, localOp)

		slot := hir.Value(localOp.Result(0))

		storeOp := dialect.Store(span, slot, sp.Value)
		hir.InsertAfter(localOp, storeOp)

		for _, use := range sp.Reloads {
			loadOp := dialect.Load(span, slot)
			hir.InsertBefore(use.Owner(), loadOp)
			use.Replace(hir.Value(loadOp.Result(0)))
		}

		changed = true
	}

	return changed
}
