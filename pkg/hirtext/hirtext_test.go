package hirtext

import (
	"strings"
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
)

const addModule = `module m {
    fn @m::add(a: i32, b: i32) -> i32 {
        entry:
            v0 = arith.add a, b : i32;
            cf.ret v0;
    }
}
`

func TestParseSimpleFunction(t *testing.T) {
	m, err := Parse("add.hir", addModule)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if m.Name.String() != "m" {
		t.Fatalf("module name = %q", m.Name.String())
	}
	if len(m.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(m.Funcs))
	}

	fn := m.Funcs[0]
	if fn.ID().Function.String() != "add" {
		t.Fatalf("function name = %q", fn.ID().Function.String())
	}

	sig := fn.Signature()
	if len(sig.Params) != 2 || len(sig.Results) != 1 {
		t.Fatalf("unexpected signature: %+v", sig)
	}

	entry := fn.Entry()
	if len(entry.Ops()) != 2 {
		t.Fatalf("expected 2 ops (add, ret), got %d", len(entry.Ops()))
	}
}

func TestParsePublicFunction(t *testing.T) {
	src := `module m {
    pub fn @m::f() {
        entry:
            cf.ret;
    }
}
`
	m, err := Parse("pub.hir", src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if m.Funcs[0].Visibility() != hir.VisibilityPublic {
		t.Fatal("expected public visibility")
	}
}

func TestParseErrorOnMalformedInput(t *testing.T) {
	_, err := Parse("bad.hir", "not a module")
	if err == nil {
		t.Fatal("expected a parse error")
	}

	if !strings.Contains(err.Error(), "hirtext:") {
		t.Fatalf("expected a ParseError-formatted message, got %q", err.Error())
	}
}

func TestPrintRoundTripsThroughParse(t *testing.T) {
	m, err := Parse("add.hir", addModule)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	printed := Print(m)

	m2, err := Parse("add2.hir", printed)
	if err != nil {
		t.Fatalf("re-parsing printed output failed: %v\n---\n%s", err, printed)
	}

	if len(m2.Funcs) != 1 || m2.Funcs[0].ID().Function.String() != "add" {
		t.Fatalf("round-tripped module lost its function: %+v", m2)
	}
	if len(m2.Funcs[0].Entry().Ops()) != 2 {
		t.Fatalf("round-tripped function lost an op: %d ops", len(m2.Funcs[0].Entry().Ops()))
	}
}
