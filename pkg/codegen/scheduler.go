package codegen

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/analysis"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
)

// Step pairs one HIR operation with the stack-movement actions that must
// be emitted immediately before it so its operands land in the order and
// depth it expects.
type Step struct {
	Op      *hir.Operation
	Actions []Action
}

// Scheduler drives OperandStack and Solve across one function body,
// producing, for every operation in program order, the action sequence
// that presents its operands correctly. It is block-scoped: callers walk
// the structured region themselves (entry, then region-by-region through
// scf.if/scf.while), calling Schedule once per straight-line block.
type Scheduler struct {
	live  *analysis.Liveness
	stack *OperandStack
}

// NewScheduler constructs a scheduler sharing stack across the whole
// function, with live giving per-block liveness used to derive Move/Copy
// constraints.
func NewScheduler(live *analysis.Liveness, stack *OperandStack) *Scheduler {
	return &Scheduler{live: live, stack: stack}
}

// Stack exposes the scheduler's abstract operand stack so the emitter can
// push operation results and inspect stack shape at block boundaries.
func (s *Scheduler) Stack() *OperandStack { return s.stack }

// Schedule walks b's operations in program order (excluding its
// terminator, which the emitter handles separately since branch operands
// are scheduled against the successor's expected argument order, not
// against an operation's own operand list) and returns one Step per op.
func (s *Scheduler) Schedule(b *hir.Block) []Step {
	ops := b.Ops()

	steps := make([]Step, 0, len(ops))

	for _, op := range ops {
		if op == b.Terminator() {
			continue
		}

		steps = append(steps, s.scheduleOp(b, op))
	}

	return steps
}

// ScheduleOperands computes and applies the action sequence needed to
// bring vs (in the order given, vs[0] ending up deepest) to the top of
// the stack, treating each one as a Move if it is not live past at, Copy
// otherwise. Used directly by the emitter for terminator operands (branch
// arguments, return values), which are not attached to an *hir.Operation
// the normal Schedule path covers.
func (s *Scheduler) ScheduleOperands(b *hir.Block, at *hir.Operation, vs []hir.Value) []Action {
	expected := make([]hir.Value, len(vs))
	constraints := make([]Constraint, len(vs))

	// Solve expects expected[0] to end up as the final top of stack.
	// Operation operand lists and forwarded-argument lists are both
	// naturally given first-to-last in the order the consumer (instruction
	// or successor block args) wants them, with the first argument
	// expected deepest -- so reverse here to match Solve's top-first
	// convention: vs[0] becomes expected[len-1] (deepest) and vs[len-1]
	// becomes expected[0] (top).
	for i, v := range vs {
		j := len(vs) - 1 - i
		expected[j] = v
		constraints[j] = s.constraintFor(b, at, v)
	}

	actions, err := Solve(s.stack, expected, constraints)
	if err == ErrAlreadySolved {
		return nil
	}

	return actions
}

func (s *Scheduler) scheduleOp(b *hir.Block, op *hir.Operation) Step {
	operands := op.Operands()

	vs := make([]hir.Value, len(operands))
	for i, o := range operands {
		vs[i] = o.Value()
	}

	actions := s.ScheduleOperands(b, op, vs)

	return Step{Op: op, Actions: actions}
}

// constraintFor reports Move when v is dead immediately after op within
// b (the common case: the operand is consumed), Copy when something
// later still needs it.
func (s *Scheduler) constraintFor(b *hir.Block, op *hir.Operation, v hir.Value) Constraint {
	if s.live == nil {
		return Move
	}

	if s.liveAfter(b, op, v) {
		return Copy
	}

	return Move
}

// liveAfter reports whether v is live immediately after op, i.e. some
// operation strictly later in b (or something live-out of b) still uses
// it.
func (s *Scheduler) liveAfter(b *hir.Block, op *hir.Operation, v hir.Value) bool {
	ops := b.Ops()

	found := false

	for _, cur := range ops {
		if !found {
			if cur == op {
				found = true
			}

			continue
		}

		for _, operand := range cur.Operands() {
			if operand.Value() == v {
				return true
			}
		}

		for _, succ := range cur.Successors() {
			for _, fwd := range succ.Forwarded {
				if fwd.Value() == v {
					return true
				}
			}
		}
	}

	return s.live.LiveOut[b][v]
}
