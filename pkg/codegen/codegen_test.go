package codegen

import (
	"strings"
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmprint"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

func noCallees(id hir.FunctionIdent) masmir.ProcedureRef {
	panic("codegen_test: no calls expected in this function")
}

// twoValues builds a throwaway function with two felt parameters and
// returns them as distinct hir.Values, for tests that only need
// identities to push around the abstract stack.
func twoValues(t *testing.T) (a, b hir.Value) {
	t.Helper()

	sig := hir.Signature{
		Params: []hir.Param{
			{Name: hir.NewIdent("a", diagnostic.Unknown), Type: types.Felt},
			{Name: hir.NewIdent("b", diagnostic.Unknown), Type: types.Felt},
		},
	}

	fn := hir.NewFunc(
		hir.NewFunctionIdent(hir.NewIdent("m", diagnostic.Unknown), hir.NewIdent("f", diagnostic.Unknown)),
		sig, hir.CallConvFast, hir.LinkageInternal, hir.VisibilityPrivate, diagnostic.Unknown)

	params := fn.Params()
	return params[0], params[1]
}

func TestOperandStackPushAt(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(a)
	s.Push(b)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if got := s.At(0); got.Value != b {
		t.Fatalf("top of stack = %v, want b", got)
	}
	if got := s.At(1); got.Value != a {
		t.Fatalf("At(1) = %v, want a", got)
	}
}

func TestOperandStackDup(t *testing.T) {
	a, _ := twoValues(t)

	s := NewOperandStack()
	s.Push(a)

	dup := s.Dup(0)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 after Dup", s.Len())
	}
	if dup.Value != a || dup.Alias == 0 {
		t.Fatalf("Dup result = %+v, want value a with a nonzero alias", dup)
	}
	if orig := s.At(1); orig.Alias != 0 {
		t.Fatalf("original operand's alias changed: %+v", orig)
	}
}

func TestOperandStackSwap(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(a)
	s.Push(b)

	s.Swap(1)

	if s.At(0).Value != a || s.At(1).Value != b {
		t.Fatalf("after Swap(1): top=%v, depth1=%v, want a on top", s.At(0), s.At(1))
	}
}

func TestOperandStackMovUpMovDn(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(a)
	s.Push(b)
	s.Push(a) // a, b, a (top)

	s.MovUp(1) // lift b to top: a, a, b
	if s.At(0).Value != b {
		t.Fatalf("after MovUp(1), top = %v, want b", s.At(0))
	}

	s.MovDn(1) // sink top (b) to depth 1: a, b, a
	if s.At(1).Value != b {
		t.Fatalf("after MovDn(1), depth 1 = %v, want b", s.At(1))
	}
}

func TestOperandStackPosition(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(a)
	s.Push(b)

	depth, ok := s.Position(a)
	if !ok || depth != 1 {
		t.Fatalf("Position(a) = (%d, %v), want (1, true)", depth, ok)
	}

	if _, ok := s.Position(nil); ok {
		t.Fatal("Position(nil) should report not found")
	}
}

func TestOperandStackSnapshotResetTo(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(a)

	snap := s.Snapshot()

	s.Push(b)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	s.ResetTo(snap)
	if s.Len() != 1 || s.At(0).Value != a {
		t.Fatalf("after ResetTo, stack = %+v, want just [a]", s.Snapshot())
	}
}

func TestSolveAlreadySolved(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(b)
	s.Push(a)

	// expected[0] is the final top of stack, so this asks for a on top,
	// b beneath it -- exactly what's already there.
	actions, err := Solve(s, []hir.Value{a, b}, []Constraint{Move, Move})

	if err != ErrAlreadySolved {
		t.Fatalf("err = %v, want ErrAlreadySolved", err)
	}
	if actions != nil {
		t.Fatalf("actions = %v, want nil", actions)
	}
}

func TestSolveSwapsTwoOperands(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(a)
	s.Push(b) // b on top, a beneath

	// Ask for a on top, b beneath -- the reverse of current order.
	_, err := Solve(s, []hir.Value{a, b}, []Constraint{Move, Move})
	if err != nil {
		t.Fatalf("Solve returned an error: %v", err)
	}

	if s.At(0).Value != a || s.At(1).Value != b {
		t.Fatalf("after Solve, stack = [top]%v, %v; want a on top, b beneath", s.At(0), s.At(1))
	}
}

func TestSolveCopyPreservesOriginal(t *testing.T) {
	a, b := twoValues(t)

	s := NewOperandStack()
	s.Push(a)
	s.Push(b)

	// Require a copy of b on top while b itself must remain live beneath.
	_, err := Solve(s, []hir.Value{b}, []Constraint{Copy})
	if err != nil {
		t.Fatalf("Solve returned an error: %v", err)
	}

	if s.At(0).Value != b {
		t.Fatalf("top after Solve = %v, want a copy of b", s.At(0))
	}

	found := false
	for d := 1; d < s.Len(); d++ {
		if s.At(d).Value == b {
			found = true
		}
	}
	if !found {
		t.Fatal("original b no longer present on the stack after a Copy-constrained solve")
	}
	if s.At(0).Alias == 0 {
		t.Fatal("expected the copy on top to carry a nonzero alias tag")
	}

	_ = a
}

func TestSolveNeverFailsOnDeeperReorder(t *testing.T) {
	a, b := twoValues(t)
	c, d := twoValues(t)

	s := NewOperandStack()
	s.Push(a)
	s.Push(b)
	s.Push(c)
	s.Push(d)

	_, err := Solve(s, []hir.Value{a, b, c, d}, []Constraint{Move, Move, Move, Move})
	if err != nil {
		t.Fatalf("Solve returned an error on a full reversal: %v", err)
	}

	want := []hir.Value{a, b, c, d}
	for i, v := range want {
		if s.At(i).Value != v {
			t.Fatalf("At(%d) = %v, want %v", i, s.At(i).Value, v)
		}
	}
}

// TestEmitFeltIsZero pins the exact MASM felt.is_zero lowers to: no
// lowering-level Dup, since the operand has no further use here and so
// carries a Move constraint -- see the note on dialect.OpFeltIsZero in
// lowering.go.
func TestEmitFeltIsZero(t *testing.T) {
	sig := hir.Signature{
		Params:  []hir.Param{{Name: hir.NewIdent("a", diagnostic.Unknown), Type: types.Felt}},
		Results: []types.Type{types.I1},
	}

	fn := hir.NewFunc(
		hir.NewFunctionIdent(hir.NewIdent("m", diagnostic.Unknown), hir.NewIdent("is_zero", diagnostic.Unknown)),
		sig, hir.CallConvFast, hir.LinkageInternal, hir.VisibilityPrivate, diagnostic.Unknown)

	entry := fn.Entry()
	b := hir.NewBuilder(entry)

	a := fn.Params()[0]
	isZero := b.Insert(dialect.FeltIsZero(diagnostic.Unknown, a))
	b.Insert(dialect.Ret(diagnostic.Unknown, isZero.Result(0)))

	e := NewEmitter(noCallees)
	proc := e.EmitFunction(fn, masmir.VisibilityPrivate)

	var out strings.Builder
	masmprint.Procedure(&out, proc)

	want := "proc.is_zero.0\n    eq.0\nend\n"
	if got := out.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

// TestEmitAssertFeltIsZero pins assert_felt_is_zero's lowering the same
// way: no lowering-level Dup of the operand.
func TestEmitAssertFeltIsZero(t *testing.T) {
	sig := hir.Signature{
		Params: []hir.Param{{Name: hir.NewIdent("a", diagnostic.Unknown), Type: types.Felt}},
	}

	fn := hir.NewFunc(
		hir.NewFunctionIdent(hir.NewIdent("m", diagnostic.Unknown), hir.NewIdent("check", diagnostic.Unknown)),
		sig, hir.CallConvFast, hir.LinkageInternal, hir.VisibilityPrivate, diagnostic.Unknown)

	entry := fn.Entry()
	b := hir.NewBuilder(entry)

	a := fn.Params()[0]
	b.Insert(dialect.AssertFeltIsZero(diagnostic.Unknown, a))
	b.Insert(dialect.Ret(diagnostic.Unknown))

	e := NewEmitter(noCallees)
	proc := e.EmitFunction(fn, masmir.VisibilityPrivate)

	var out strings.Builder
	masmprint.Procedure(&out, proc)

	want := "proc.check.0\n    eq.0\n    assert\nend\n"
	if got := out.String(); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}
