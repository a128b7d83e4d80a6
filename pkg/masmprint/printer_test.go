package masmprint

import (
	"strings"
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
)

func TestProcedureSimple(t *testing.T) {
	p := &masmir.Procedure{
		Name:       "add_one",
		Visibility: masmir.VisibilityPublic,
		NumLocals:  0,
		Body: masmir.Block{
			masmir.PushOp(1),
			masmir.Binary(masmir.Add),
		},
	}

	var b strings.Builder
	Procedure(&b, p)
	out := b.String()

	want := "export.add_one.0\n    push.1\n    add\n" + "end\n"
	if out != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out, want)
	}
}

func TestProcedurePrivateHeader(t *testing.T) {
	p := &masmir.Procedure{Name: "helper", Visibility: masmir.VisibilityPrivate, NumLocals: 2}

	var b strings.Builder
	Procedure(&b, p)

	if !strings.HasPrefix(b.String(), "proc.helper.2\n") {
		t.Fatalf("got %q", b.String())
	}
}

func TestWriteNodeIfElse(t *testing.T) {
	block := masmir.Block{
		&masmir.If{
			Then: masmir.Block{masmir.PushOp(1)},
			Else: masmir.Block{masmir.PushOp(0)},
		},
	}

	var b strings.Builder
	writeBlock(&b, block, 0)

	want := "if.true\n    push.1\nelse\n    push.0\nend\n"
	if b.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestWriteNodeWhile(t *testing.T) {
	block := masmir.Block{&masmir.While{Body: masmir.Block{masmir.Binary(masmir.Add)}}}

	var b strings.Builder
	writeBlock(&b, block, 0)

	want := "while.true\n    add\nend\n"
	if b.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestArtifactLibraryVsProgram(t *testing.T) {
	mod := &masmir.Module{
		Path: "test::mod",
		Procedures: []*masmir.Procedure{
			{Name: "main", Visibility: masmir.VisibilityPublic},
		},
	}
	lib := &masmir.Library{Modules: []*masmir.Module{mod}}

	libOut := Artifact(lib)
	if !strings.Contains(libOut, "# module: test::mod") {
		t.Fatalf("library output missing module header: %q", libOut)
	}
	if strings.Contains(libOut, "# entry:") {
		t.Fatalf("a bare library must not print an entry comment: %q", libOut)
	}

	prog := &masmir.Program{Library: lib, Entry: masmir.ProcedureRef{ModulePath: "test::mod", Name: "main"}}
	progOut := Artifact(prog)
	if !strings.Contains(progOut, "# entry: test::mod::main") {
		t.Fatalf("program output missing entry comment: %q", progOut)
	}
}

func TestExecCallSyscallMnemonics(t *testing.T) {
	ref := masmir.ProcedureRef{ModulePath: "std::math", Name: "pow2"}

	var b strings.Builder
	writeInstr(&b, masmir.ExecOp(ref))
	if b.String() != "exec.std::math::pow2" {
		t.Fatalf("got %q", b.String())
	}

	b.Reset()
	writeInstr(&b, masmir.CallOp(ref))
	if b.String() != "call.std::math::pow2" {
		t.Fatalf("got %q", b.String())
	}

	b.Reset()
	writeInstr(&b, masmir.SysCallOp(ref))
	if b.String() != "syscall.std::math::pow2" {
		t.Fatalf("got %q", b.String())
	}
}
