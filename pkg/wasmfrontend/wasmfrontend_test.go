package wasmfrontend

import (
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
)

// leb encodes a small (<128) unsigned value as one-byte LEB128, which
// covers every length/index/immediate this hand-built module needs.
func leb(n byte) byte { return n }

// buildAddModule hand-assembles a minimal Wasm binary:
//
//	(module
//	  (func (export "add") (param i32 i32) (result i32)
//	    local.get 0
//	    local.get 1
//	    i32.add))
func buildAddModule() []byte {
	var b []byte
	b = append(b, magic[:]...)
	b = append(b, 1, 0, 0, 0) // version 1

	// type section: 1 type, (i32, i32) -> i32
	typeBody := []byte{
		leb(1),       // 1 type
		0x60,         // func form
		leb(2), 0x7f, 0x7f, // 2 params, i32 i32
		leb(1), 0x7f, // 1 result, i32
	}
	b = append(b, secType, leb(byte(len(typeBody))))
	b = append(b, typeBody...)

	// function section: 1 func, type index 0
	funcBody := []byte{leb(1), leb(0)}
	b = append(b, secFunction, leb(byte(len(funcBody))))
	b = append(b, funcBody...)

	// export section: export "add" -> func 0
	exportBody := []byte{leb(1), leb(3), 'a', 'd', 'd', exportKindFunc, leb(0)}
	b = append(b, secExport, leb(byte(len(exportBody))))
	b = append(b, exportBody...)

	// code section: 1 body, no locals, local.get 0; local.get 1; i32.add; end
	code := []byte{opLocalGet, leb(0), opLocalGet, leb(1), opI32Add, opEnd}
	funcBodyBytes := append([]byte{leb(0)}, code...) // 0 local-decl groups
	codeBody := []byte{leb(1), leb(byte(len(funcBodyBytes)))}
	codeBody = append(codeBody, funcBodyBytes...)
	b = append(b, secCode, leb(byte(len(codeBody))))
	b = append(b, codeBody...)

	return b
}

func TestDecodeModuleSections(t *testing.T) {
	bin, err := DecodeModule(buildAddModule())
	if err != nil {
		t.Fatalf("DecodeModule failed: %v", err)
	}

	if len(bin.Types) != 1 {
		t.Fatalf("expected 1 type, got %d", len(bin.Types))
	}
	if len(bin.Types[0].Params) != 2 || len(bin.Types[0].Results) != 1 {
		t.Fatalf("unexpected type shape: %+v", bin.Types[0])
	}
	if len(bin.Bodies) != 1 {
		t.Fatalf("expected 1 body, got %d", len(bin.Bodies))
	}
	if len(bin.Exports) != 1 || bin.Exports[0].Name != "add" {
		t.Fatalf("unexpected exports: %+v", bin.Exports)
	}
}

func TestDecodeModuleRejectsBadMagic(t *testing.T) {
	_, err := DecodeModule([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	if err == nil {
		t.Fatal("expected an error for bad magic")
	}
}

func TestTranslateAddFunction(t *testing.T) {
	m, err := Translate("test", buildAddModule())
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
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

	term := fn.Entry().Terminator()
	if term == nil || term.Name != dialect.OpRet {
		t.Fatalf("expected the entry block to end in a ret, got %v", term)
	}

	var sawAdd bool
	for _, op := range fn.Entry().Ops() {
		if op.Name == dialect.OpAdd {
			sawAdd = true
		}
	}
	if !sawAdd {
		t.Fatal("expected an arith.add op lowered from i32.add")
	}
}

func TestAbiLookupUnknown(t *testing.T) {
	if _, ok := Lookup("not:a:real:module", "nope"); ok {
		t.Fatal("Lookup should report false for an unrecognized module/function pair")
	}
}
