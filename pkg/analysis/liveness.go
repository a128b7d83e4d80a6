package analysis

import "github.com/0xPolygonMiden/compiler-sub007/pkg/hir"

// ValueSet is a set of hir.Values. hir.Value implementations are always
// pointers (*hir.BlockArgument or *hir.OpResult), so the interface value is
// directly usable as a map key.
type ValueSet map[hir.Value]bool

// Clone returns a shallow copy of s.
func (s ValueSet) Clone() ValueSet {
	out := make(ValueSet, len(s))
	for v := range s {
		out[v] = true
	}

	return out
}

// Union inserts every element of other into s, reporting whether s changed.
func (s ValueSet) Union(other ValueSet) bool {
	changed := false

	for v := range other {
		if !s[v] {
			s[v] = true
			changed = true
		}
	}

	return changed
}

// Liveness holds, for every block, its live-in and live-out value sets
//.
type Liveness struct {
	LiveIn  map[*hir.Block]ValueSet
	LiveOut map[*hir.Block]ValueSet
}

// ComputeLiveness runs the standard backward dataflow fixpoint:
// live-in(B) = (live-out(B) \ defs(B)) U uses(B)
// live-out(B) = union over successors S of live-in(S), substituting forwarded
// block-argument values for the successor's own arguments.
func ComputeLiveness(cfg *CFG) *Liveness {
	blocks := cfg.Blocks()

	defs := make(map[*hir.Block]ValueSet, len(blocks))
	uses := make(map[*hir.Block]ValueSet, len(blocks))

	for _, b := range blocks {
		defs[b], uses[b] = blockDefsUses(b)
	}

	liveIn := make(map[*hir.Block]ValueSet, len(blocks))
	liveOut := make(map[*hir.Block]ValueSet, len(blocks))

	for _, b := range blocks {
		liveIn[b] = ValueSet{}
		liveOut[b] = ValueSet{}
	}

	changed := true
	for changed {
		changed = false

		// Process in reverse of the block list, which approximates reverse
		// postorder well enough for the fixpoint to converge quickly; exact
		// ordering only affects iteration count, not correctness.
		for i := len(blocks) - 1; i >= 0; i-- {
			b := blocks[i]

			out := ValueSet{}

			for _, e := range cfg.Successors(b) {
				succ := e.Block
				for v := range liveIn[succ] {
					out[v] = true
				}
				// Forwarded operands feeding the successor's block arguments
				// are uses of b, handled via blockDefsUses already covering
				// the terminator's operands; block arguments themselves are
				// defs local to the successor and thus correctly excluded
				// from out by not appearing in liveIn[succ] as the argument
				// identity (they appear as the forwarded values' identity
				// instead, per the terminator's operand list).
			}

			if liveOut[b].Union(out) {
				changed = true
			}

			in := liveOut[b].Clone()
			for v := range defs[b] {
				delete(in, v)
			}

			in.Union(uses[b])

			if !setEqual(liveIn[b], in) {
				liveIn[b] = in
				changed = true
			}
		}
	}

	return &Liveness{LiveIn: liveIn, LiveOut: liveOut}
}

func setEqual(a, b ValueSet) bool {
	if len(a) != len(b) {
		return false
	}

	for v := range a {
		if !b[v] {
			return false
		}
	}

	return true
}

// blockDefsUses returns the values defined within b (its block arguments and
// every op result) and the values used within b whose definition is outside
// b (upward-exposed uses), per the standard local liveness sets.
func blockDefsUses(b *hir.Block) (defs, uses ValueSet) {
	defs = ValueSet{}
	uses = ValueSet{}

	for _, a := range b.Args() {
		defs[hir.Value(a)] = true
	}

	for _, op := range b.Ops() {
		for _, operand := range op.Operands() {
			v := operand.Value()
			if !defs[v] {
				uses[v] = true
			}
		}

		for _, s := range op.Successors() {
			for _, fwd := range s.Forwarded {
				v := fwd.Value()
				if !defs[v] {
					uses[v] = true
				}
			}
		}

		for _, r := range op.Results() {
			defs[hir.Value(r)] = true
		}
	}

	return defs, uses
}

// LiveAt reports whether v is live immediately after op within its block:
// the backward walk from the block's live-out set stops at op once op's
// results are removed, so op's own operand uses are not counted.
func (l *Liveness) LiveAt(b *hir.Block, op *hir.Operation, v hir.Value) bool {
	live := l.LiveOut[b].Clone()

	ops := b.Ops()

	for i := len(ops) - 1; i >= 0; i-- {
		cur := ops[i]

		for _, r := range cur.Results() {
			delete(live, hir.Value(r))
		}

		if cur == op {
			break
		}

		for _, operand := range cur.Operands() {
			live[operand.Value()] = true
		}
	}

	return live[v]
}
