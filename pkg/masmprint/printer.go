// Package masmprint renders a pkg/masmir tree as canonical textual MASM:
// one instruction per line, 4-space indentation per control-flow nesting
// depth, `use.<path>` imports at module top, and `export.NAME.NLOCALS`/
// `proc.NAME.NLOCALS` procedure headers. It is grounded on the teacher's
// own textual-emission convention (pkg/asm/assembler's lexer/printer pair
// reads back what it writes) adapted from a flat register-machine
// instruction stream to MASM's nested block syntax.
//
// The printer's output is consumed by an external assembler; this
// package's responsibility ends at the text -- the compiler's job is to
// emit textual MASM plus a side table of Import directives, not to
// assemble it.
package masmprint

import (
	"fmt"
	"strings"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
)

const indentUnit = "    "

// Module renders one module's text: imports, then each procedure in
// declaration order.
func Module(m *masmir.Module) string {
	var b strings.Builder

	for _, imp := range m.Imports {
		writeImport(&b, imp)
	}

	if len(m.Imports) > 0 {
		b.WriteByte('\n')
	}

	for i, p := range m.Procedures {
		if i > 0 {
			b.WriteByte('\n')
		}

		Procedure(&b, p)
	}

	return b.String()
}

func writeImport(b *strings.Builder, imp masmir.Import) {
	if imp.Alias != "" {
		fmt.Fprintf(b, "use.%s->%s\n", imp.Path, imp.Alias)
		return
	}

	fmt.Fprintf(b, "use.%s\n", imp.Path)
}

// Procedure renders one procedure's `proc`/`export` header, body, and
// `end` trailer into b.
func Procedure(b *strings.Builder, p *masmir.Procedure) {
	header := "proc"
	if p.Visibility == masmir.VisibilityPublic {
		header = "export"
	}

	fmt.Fprintf(b, "%s.%s.%d\n", header, p.Name, p.NumLocals)
	writeBlock(b, p.Body, 1)
	b.WriteString("end\n")
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString(indentUnit)
	}
}

func writeBlock(b *strings.Builder, block masmir.Block, depth int) {
	for _, node := range block {
		writeNode(b, node, depth)
	}
}

func writeNode(b *strings.Builder, node masmir.Node, depth int) {
	switch n := node.(type) {
	case *masmir.Instr:
		writeIndent(b, depth)
		writeInstr(b, n)
		b.WriteByte('\n')

	case *masmir.If:
		writeIndent(b, depth)
		b.WriteString("if.true\n")
		writeBlock(b, n.Then, depth+1)

		if n.Else != nil {
			writeIndent(b, depth)
			b.WriteString("else\n")
			writeBlock(b, n.Else, depth+1)
		}

		writeIndent(b, depth)
		b.WriteString("end\n")

	case *masmir.While:
		writeIndent(b, depth)
		b.WriteString("while.true\n")
		writeBlock(b, n.Body, depth+1)
		writeIndent(b, depth)
		b.WriteString("end\n")

	case *masmir.Repeat:
		writeIndent(b, depth)
		fmt.Fprintf(b, "repeat.%d\n", n.Count)
		writeBlock(b, n.Body, depth+1)
		writeIndent(b, depth)
		b.WriteString("end\n")

	default:
		panic(fmt.Sprintf("masmprint: unhandled node type %T", node))
	}
}

// writeInstr renders one leaf instruction's mnemonic plus whichever operand
// field it carries, matching the concrete syntax each Mnemonic constructor
// in pkg/masmir/instr.go populates.
func writeInstr(b *strings.Builder, instr *masmir.Instr) {
	switch instr.Op {
	case masmir.Push:
		b.WriteString("push")
		for _, v := range instr.Imm {
			fmt.Fprintf(b, ".%d", v)
		}

	case masmir.Dup, masmir.Swap, masmir.Movup, masmir.Movdn:
		fmt.Fprintf(b, "%s.%d", instr.Op, instr.N)

	case masmir.EqImm:
		fmt.Fprintf(b, "eq.%d", instr.Imm[0])

	case masmir.Exec:
		fmt.Fprintf(b, "exec.%s", procRefString(instr.Callee))
	case masmir.Call:
		fmt.Fprintf(b, "call.%s", procRefString(instr.Callee))
	case masmir.SysCall:
		fmt.Fprintf(b, "syscall.%s", procRefString(instr.Callee))

	default:
		b.WriteString(string(instr.Op))
	}
}

func procRefString(ref masmir.ProcedureRef) string {
	if ref.ModulePath == "" {
		return ref.Name
	}

	return ref.ModulePath + "::" + ref.Name
}

// Artifact renders a complete masmir.Artifact: a Library's modules in
// order, or an Executable's library plus a trailing comment naming the
// entrypoint (the external assembler resolves the entrypoint by the side
// table, not by this comment; it exists purely for human inspection of
// the `--emit masm` output).
func Artifact(a masmir.Artifact) string {
	switch v := a.(type) {
	case *masmir.Library:
		return Library(v)
	case *masmir.Program:
		var b strings.Builder
		b.WriteString(Library(v.Library))
		fmt.Fprintf(&b, "# entry: %s\n", procRefString(masmir.ProcedureRef(v.Entry)))

		return b.String()
	default:
		panic(fmt.Sprintf("masmprint: unhandled artifact type %T", a))
	}
}

// Library renders every module in l, separated by a blank line and a
// `# module: <path>` header comment, matching the teacher's own
// section-comment convention for multi-module textual dumps.
func Library(l *masmir.Library) string {
	var b strings.Builder

	for i, m := range l.Modules {
		if i > 0 {
			b.WriteByte('\n')
		}

		fmt.Fprintf(&b, "# module: %s\n", m.Path)
		b.WriteString(Module(m))
	}

	return b.String()
}
