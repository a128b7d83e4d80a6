package hirtext

import (
	"fmt"
	"strings"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Print renders m as the textual form Parse reads, for the
// unstructured-CFG subset of functions this package covers (see
// DESIGN.md's hirtext entry for the structured-region scope cut). Blocks
// are printed in region order; Parse does not read back a function with
// a branch to a block printed after the branch.
func Print(m *hir.Module) string {
	var b strings.Builder

	fmt.Fprintf(&b, "module %s {\n", m.Name)

	for _, g := range m.Globals {
		fmt.Fprintf(&b, "    global @%s: %s\n", g.Name, g.Type)
	}

	for _, imp := range m.Imports {
		printExtern(&b, imp)
	}

	for _, fn := range m.Funcs {
		b.WriteByte('\n')
		printFunc(&b, fn)
	}

	b.WriteString("}\n")

	return b.String()
}

func printExtern(b *strings.Builder, imp hir.Import) {
	fmt.Fprintf(b, "    extern @%s::%s(", imp.Callee.Module, imp.Callee.Function)

	for i, p := range imp.Sig.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(p.Type.String())
	}

	b.WriteByte(')')

	if len(imp.Sig.Results) > 0 {
		b.WriteString(" -> ")
		writeTypeList(b, imp.Sig.Results)
	}

	b.WriteByte('\n')
}

// namer assigns each Value in a function a stable, sequential %name the
// first time it is seen (block argument or op result), so the printed
// form never depends on pointer identity or original source names.
type namer struct {
	names map[hir.Value]string
	next  int
}

func newNamer() *namer { return &namer{names: make(map[hir.Value]string)} }

func (n *namer) name(v hir.Value) string {
	if s, ok := n.names[v]; ok {
		return s
	}

	s := fmt.Sprintf("v%d", n.next)
	n.next++
	n.names[v] = s

	return s
}

func printFunc(b *strings.Builder, fn *hir.Func) {
	if fn.Visibility() == hir.VisibilityPublic {
		b.WriteString("    pub ")
	} else {
		b.WriteString("    ")
	}

	if fn.CallConv() != hir.CallConvFast {
		fmt.Fprintf(b, "cc(%s) ", fn.CallConv())
	}

	sig := fn.Signature()
	fmt.Fprintf(b, "fn @%s::%s(", fn.ID().Module, fn.ID().Function)

	n := newNamer()
	blocks := fn.Region().Blocks()

	for i, p := range sig.Params {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(b, "%s: %s", n.name(blocks[0].Args()[i]), p.Type)
	}

	b.WriteByte(')')

	if len(sig.Results) > 0 {
		b.WriteString(" -> ")
		writeTypeList(b, sig.Results)
	}

	b.WriteString(" {\n")

	labels := make(map[*hir.Block]string, len(blocks))

	for i, blk := range blocks {
		if i == 0 {
			labels[blk] = "entry"
		} else {
			labels[blk] = fmt.Sprintf("bb%d", i)
		}
	}

	for i, blk := range blocks {
		printBlock(b, blk, labels, n, i == 0)
	}

	b.WriteString("    }\n")
}

func writeTypeList(b *strings.Builder, ts []types.Type) {
	for i, t := range ts {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(t.String())
	}
}

func printBlock(b *strings.Builder, blk *hir.Block, labels map[*hir.Block]string, n *namer, isEntry bool) {
	fmt.Fprintf(b, "        %s", labels[blk])

	if !isEntry && len(blk.Args()) > 0 {
		b.WriteByte('(')

		for i, a := range blk.Args() {
			if i > 0 {
				b.WriteString(", ")
			}

			fmt.Fprintf(b, "%s: %s", n.name(a), a.Type())
		}

		b.WriteByte(')')
	}

	b.WriteString(":\n")

	for _, op := range blk.Ops() {
		printOp(b, op, labels, n)
	}
}

func printOp(b *strings.Builder, op *hir.Operation, labels map[*hir.Block]string, n *namer) {
	b.WriteString("            ")

	switch op.Name {
	case dialect.OpBr:
		succ := op.Successors()[0]
		fmt.Fprintf(b, "cf.br %s%s;\n", labels[succ.Block], argListString(succ.ForwardedValues(), n))
		return

	case dialect.OpCondBr:
		thenSucc, elseSucc := op.Successors()[0], op.Successors()[1]
		fmt.Fprintf(b, "cf.cond_br %s, %s%s, %s%s;\n", n.name(op.OperandValues()[0]),
			labels[thenSucc.Block], argListString(thenSucc.ForwardedValues(), n),
			labels[elseSucc.Block], argListString(elseSucc.ForwardedValues(), n))
		return

	case dialect.OpRet:
		fmt.Fprintf(b, "cf.ret%s;\n", operandTail(op.OperandValues(), n))
		return

	case dialect.OpUnreachable:
		b.WriteString("cf.unreachable;\n")
		return

	case dialect.OpStore:
		vs := op.OperandValues()
		fmt.Fprintf(b, "memory.store %s, %s;\n", n.name(vs[0]), n.name(vs[1]))
		return

	case dialect.OpAssertFeltIsZero:
		fmt.Fprintf(b, "felt.assert_is_zero %s;\n", n.name(op.OperandValues()[0]))
		return
	}

	if len(op.Results()) > 0 {
		fmt.Fprintf(b, "%s = ", n.name(op.Result(0)))
	}

	b.WriteString(op.Name)

	for _, v := range op.OperandValues() {
		fmt.Fprintf(b, " %s,", n.name(v))
	}

	if len(op.Results()) > 0 {
		fmt.Fprintf(b, " : %s;\n", op.Result(0).Type())
	} else {
		b.WriteString(";\n")
	}
}

func operandTail(vs []hir.Value, n *namer) string {
	if len(vs) == 0 {
		return ""
	}

	return " " + argListInner(vs, n)
}

func argListString(vs []hir.Value, n *namer) string {
	if len(vs) == 0 {
		return ""
	}

	return "(" + argListInner(vs, n) + ")"
}

func argListInner(vs []hir.Value, n *namer) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = n.name(v)
	}

	return strings.Join(parts, ", ")
}
