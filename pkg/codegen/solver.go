package codegen

import "github.com/0xPolygonMiden/compiler-sub007/pkg/hir"

// Constraint tells the solver whether an operand must survive its use
// (Copy) or may be consumed by it (Move) -- the per-operand flag the
// scheduler derives from liveness.
type Constraint uint8

const (
	// Move means the operand is dead after this use.
	Move Constraint = iota
	// Copy means the operand is live after this use and must be
	// preserved at its current position.
	Copy
)

// ActionKind discriminates the moves the solver can emit.
type ActionKind uint8

const (
	ActionCopy ActionKind = iota
	ActionSwap
	ActionMoveUp
	ActionMoveDown
)

// Action is a single step of the solver's output sequence:
// Copy(n) duplicates the operand at depth n to the top; Swap(n) exchanges
// the top with depth n; MoveUp(n) lifts depth n to the top; MoveDown(n)
// sinks the top to depth n.
type Action struct {
	Kind ActionKind
	N    int
}

// SolverError reports why the solver returned no actions.
type SolverError uint8

const (
	// ErrAlreadySolved means the current stack already presents the
	// expected operands correctly; no actions are needed.
	ErrAlreadySolved SolverError = iota
)

func (e SolverError) Error() string {
	switch e {
	case ErrAlreadySolved:
		return "codegen: operand stack already satisfies the expected order"
	default:
		return "codegen: solver error"
	}
}

// expectedSlot is one operand of the instruction being scheduled, after
// Copy operands have been substituted with a fresh alias of the original
// (the solver's output must still contain the original at its surviving
// position): the solver first rewrites the expected stack by substituting
// each Copy operand with a fresh alias of the original value.
type expectedSlot struct {
	operand Operand
}

// Solve computes the minimal action sequence that brings stack's top
// len(expected) elements into the order expected, given each operand's
// Move/Copy constraint. expected and constraints must be the
// same length, ordered with expected[0] as the final top of stack.
//
// Solve mutates a scratch copy of stack to find the sequence, then applies
// the same sequence to stack itself, so callers observe the final state
// directly. It never fails: when no curated tactic alone solves the
// ordering, a final generic selection-sort-style tactic (ported in spirit
// from the original's pure-copy/pure-move/eviction fallbacks) always
// terminates, bounded by O(arity) actions.
func Solve(stack *OperandStack, expected []hir.Value, constraints []Constraint) ([]Action, error) {
	if len(expected) == 0 {
		return nil, ErrAlreadySolved
	}

	b := newSolutionBuilder(stack, expected, constraints)

	if !b.requiresCopies() && b.isSolved() {
		return nil, ErrAlreadySolved
	}

	for _, tactic := range tactics {
		b.reset()

		if tactic(b) && b.isSolved() {
			b.commit()
			return b.actions, nil
		}
	}

	// No curated tactic alone closed the gap; fall back to a
	// generically-correct (if not always minimal) bubble solve.
	b.reset()
	bubbleSolve(b)
	b.commit()

	return b.actions, nil
}

// tactics is the fixed, ordered set the solver attempts.
var tactics = []func(*solutionBuilder) bool{
	tacticMoveDownAndSwap,
	tacticSwapAndMoveUp,
	tacticPureCopy,
}

// solutionBuilder mirrors the original's SolverContext/SolutionBuilder
// split: it holds the current working stack (mutated by each attempted
// tactic), the expected output, and the accumulated action log. reset()
// discards a failed tactic's partial progress; commit() applies the
// winning sequence to the real stack.
type solutionBuilder struct {
	real     *OperandStack
	working  []Operand // scratch copy of real's slots, mutated speculatively
	expected []expectedSlot
	actions  []Action
	anyCopy  bool
}

func newSolutionBuilder(stack *OperandStack, expected []hir.Value, constraints []Constraint) *solutionBuilder {
	b := &solutionBuilder{real: stack}

	slots := make([]expectedSlot, len(expected))

	for i := len(expected) - 1; i >= 0; i-- {
		v := expected[i]

		if constraints[i] == Copy {
			alias := stack.FreshAlias(v)
			slots[i] = expectedSlot{Operand{Value: v, Alias: alias}}
			b.anyCopy = true
		} else {
			slots[i] = expectedSlot{Operand{Value: v}}
		}
	}

	b.expected = slots
	b.working = append([]Operand(nil), stack.Snapshot()...)

	return b
}

func (b *solutionBuilder) reset() {
	b.working = append([]Operand(nil), b.real.Snapshot()...)
	b.actions = nil
}

func (b *solutionBuilder) commit() {
	b.real.ResetTo(b.working)
}

func (b *solutionBuilder) arity() int { return len(b.expected) }

func (b *solutionBuilder) requiresCopies() bool { return b.anyCopy }

func (b *solutionBuilder) depthOf(n int) int { return len(b.working) - 1 - n }

func (b *solutionBuilder) current(n int) Operand {
	return b.working[b.depthOf(n)]
}

// isExpected reports whether the operand currently at depth n matches
// what expected[n] calls for (by underlying value; alias is assigned
// fresh per call to Solve and so is compared by value identity, since a
// Copy's fresh alias cannot already be sitting on the stack).
func (b *solutionBuilder) isExpected(n int) bool {
	if n >= len(b.expected) {
		return false
	}

	want := b.expected[n].operand
	got := b.current(n)

	if want.Alias == 0 {
		return got.Value == want.Value
	}

	return got.Value == want.Value
}

// expectedPosition returns the depth at which v is expected to end up, if
// v names one of the instruction's operands.
func (b *solutionBuilder) expectedPosition(v hir.Value) (int, bool) {
	for i, e := range b.expected {
		if e.operand.Value == v {
			return i, true
		}
	}

	return 0, false
}

func (b *solutionBuilder) isSolved() bool {
	if len(b.working) < len(b.expected) {
		return false
	}

	for n := range b.expected {
		if !b.isExpected(n) {
			return false
		}
	}

	return true
}

func (b *solutionBuilder) swap(n int) {
	if n == 0 {
		return
	}

	last := len(b.working) - 1
	target := last - n
	b.working[last], b.working[target] = b.working[target], b.working[last]
	b.actions = append(b.actions, Action{ActionSwap, n})
}

func (b *solutionBuilder) movdn(n int) {
	if n == 0 {
		return
	}

	last := len(b.working) - 1
	at := last - n

	moved := b.working[last]
	copy(b.working[at+1:last+1], b.working[at:last])
	b.working[at] = moved
	b.actions = append(b.actions, Action{ActionMoveDown, n})
}

func (b *solutionBuilder) movup(n int) {
	if n == 0 {
		return
	}

	last := len(b.working) - 1
	at := last - n

	moved := b.working[at]
	copy(b.working[at:last], b.working[at+1:last+1])
	b.working[last] = moved
	b.actions = append(b.actions, Action{ActionMoveUp, n})
}

// tacticMoveDownAndSwap ports codegen/opt/operands/tactics/move_down_and_swap.rs:
// applicable when at least two operands are expected and no copies are
// required; sinks a misplaced top operand to its target position
// (extended past anything that must precede it), then resolves the new
// top with one swap or move-down.
func tacticMoveDownAndSwap(b *solutionBuilder) bool {
	if b.requiresCopies() || b.arity() < 2 {
		return false
	}

	if b.isExpected(0) {
		return false
	}

	actual0 := b.current(0)

	if targetPos, ok := b.expectedPosition(actual0.Value); ok {
		offset := 0

		for d := targetPos + 1; d < len(b.working); d++ {
			occupantPos, ok := b.expectedPosition(b.current(d).Value)
			if ok && targetPos >= occupantPos {
				offset = d - targetPos
			}
		}

		b.movdn(targetPos + offset)
	} else {
		evictTop(b)
	}

	if b.isExpected(0) {
		return true
	}

	actual0 = b.current(0)

	targetPos, ok := b.expectedPosition(actual0.Value)
	if !ok {
		evictTop(b)
		return true
	}

	occupant := b.current(targetPos)
	occupantPos, occupantExpected := b.expectedPosition(occupant.Value)

	switch {
	case occupantExpected && occupantPos == 0:
		b.swap(targetPos)
	case occupantExpected && occupantPos == targetPos-1:
		b.movdn(targetPos)
	default:
		return false
	}

	return true
}

// tacticSwapAndMoveUp ports
// codegen/opt/operands/tactics/swap_and_move_up.rs: swaps whatever
// currently occupies the expected depth-1 slot up to depth 1 (or swaps
// the top straight into depth-1's position if it already sits there),
// then moves the expected top into place.
func tacticSwapAndMoveUp(b *solutionBuilder) bool {
	if b.requiresCopies() || b.arity() < 2 {
		return false
	}

	if b.isExpected(1) {
		return false
	}

	want1 := b.expected[1].operand.Value

	pos1, ok := positionOf(b, want1)
	if !ok {
		return false
	}

	if pos1 == 0 {
		b.swap(1)
	} else {
		b.swap(pos1)
	}

	want0 := b.expected[0].operand.Value

	pos0, ok := positionOf(b, want0)
	if !ok {
		return false
	}

	if pos0 > 0 {
		b.movup(pos0)
	}

	return true
}

// tacticPureCopy applies whenever any expected operand is a Copy: it dups
// every expected operand, deepest-expected-first, directly atop the
// stack. Move operands are duplicated too, so their originals stay on
// the stack beneath the new copies.
func tacticPureCopy(b *solutionBuilder) bool {
	if !b.requiresCopies() {
		return false
	}

	for i := len(b.expected) - 1; i >= 0; i-- {
		want := b.expected[i].operand

		pos, ok := positionOf(b, want.Value)
		if !ok {
			return false
		}

		dupToTop(b, pos)
	}

	return true
}

// positionOf finds the nearest occurrence of value v in the working
// stack, searching from the top.
func positionOf(b *solutionBuilder, v hir.Value) (int, bool) {
	for d := 0; d < len(b.working); d++ {
		if b.current(d).Value == v {
			return d, true
		}
	}

	return 0, false
}

// dupToTop duplicates the operand at depth n to the top of the working
// stack, recording a Copy action.
func dupToTop(b *solutionBuilder, n int) {
	orig := b.current(n)
	b.working = append(b.working, Operand{Value: orig.Value, Alias: orig.Alias + 1})
	b.actions = append(b.actions, Action{ActionCopy, n})
}

// evictTop sinks the current top past every expected operand, since it is
// not itself one of them and must be moved out of the way.
func evictTop(b *solutionBuilder) {
	b.movdn(len(b.expected) - 1)
}

// bubbleSolve is the guaranteed-terminating fallback: a simple selection
// procedure that, for each expected position from the bottom of the
// window to the top, brings the correct operand to the top of the stack,
// above the operands already placed, so expected[0] ends on top. Used
// only when none of the curated tactics closes the gap outright.
func bubbleSolve(b *solutionBuilder) {
	for i := len(b.expected) - 1; i >= 0; i-- {
		want := b.expected[i]

		if want.operand.Alias != 0 {
			// A Copy slot: duplicate the original value to the top.
			pos, ok := positionOf(b, want.operand.Value)
			if !ok {
				continue
			}

			dupToTop(b, pos)

			continue
		}

		// A Move slot: search below the operands already placed on top.
		pos, ok := 0, false
		for d := len(b.expected) - 1 - i; d < len(b.working) && !ok; d++ {
			pos, ok = d, b.current(d).Value == want.operand.Value
		}

		if !ok {
			continue
		}

		b.movup(pos)
	}
}
