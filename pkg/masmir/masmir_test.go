package masmir_test

import (
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
)

func TestProcedureTreeShape(t *testing.T) {
	proc := &masmir.Procedure{
		Name:       "is_zero",
		Visibility: masmir.VisibilityPublic,
		Signature:  masmir.Signature{Inputs: 1, Outputs: 1},
		NumLocals:  0,
		Body: masmir.Block{
			masmir.DupOp(0),
			masmir.EqImmOp(0),
			&masmir.If{
				Then: masmir.Block{masmir.PushOp(1)},
				Else: masmir.Block{masmir.PushOp(0)},
			},
		},
	}

	if len(proc.Body) != 3 {
		t.Fatalf("expected 3 top-level nodes, got %d", len(proc.Body))
	}

	ifNode, ok := proc.Body[2].(*masmir.If)
	if !ok {
		t.Fatalf("expected the third node to be an If, got %T", proc.Body[2])
	}

	if len(ifNode.Then) != 1 || len(ifNode.Else) != 1 {
		t.Fatalf("expected single-instruction then/else arms")
	}
}

func TestModuleAndLibraryNesting(t *testing.T) {
	module := &masmir.Module{
		Path: "miden::test",
		Kind: masmir.ModuleRegular,
		Imports: []masmir.Import{
			{Path: "std::math::u64"},
		},
		Procedures: []*masmir.Procedure{
			{Name: "main", Visibility: masmir.VisibilityPublic, Body: masmir.Block{masmir.AssertOp()}},
		},
	}

	lib := &masmir.Library{Modules: []*masmir.Module{module}}
	prog := &masmir.Program{
		Library: lib,
		Entry:   masmir.ProcedureRef{ModulePath: "miden::test", Name: "main"},
	}

	var _ masmir.Artifact = prog
	var _ masmir.Artifact = lib

	if prog.Entry.Name != "main" {
		t.Fatalf("expected entry procedure name main, got %s", prog.Entry.Name)
	}

	if len(prog.Library.Modules[0].Procedures) != 1 {
		t.Fatalf("expected one procedure in the test module")
	}
}

func TestRepeatAndWhileNodes(t *testing.T) {
	body := masmir.Block{
		&masmir.Repeat{Count: 4, Body: masmir.Block{masmir.DropOp()}},
		&masmir.While{Body: masmir.Block{masmir.PushOp(1), masmir.SwapOp(1)}},
	}

	if _, ok := body[0].(*masmir.Repeat); !ok {
		t.Fatalf("expected a Repeat node at index 0")
	}

	if _, ok := body[1].(*masmir.While); !ok {
		t.Fatalf("expected a While node at index 1")
	}
}
