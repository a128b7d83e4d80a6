package dialect

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

var attrCallee = symbol.Intern("func.callee")

func init() {
	hir.RegisterOp(OpCall, hir.Traits(), nil)
	hir.RegisterOp(OpSyscall, hir.Traits(), nil)
}

// Call builds a direct call to callee via the ordinary `call`-style opcode
//.
func Call(span diagnostic.Span, callee hir.FunctionIdent, args []hir.Value, resultTypes []types.Type) *hir.Operation {
	op := hir.NewOperation(OpCall, span, resultTypes...)
	op.SetAttr(attrCallee, callee)

	for _, a := range args {
		op.AddOperand(a)
	}

	return op
}

// Syscall builds a call to a Kernel-convention callee via the
// `syscall`-style opcode.
func Syscall(span diagnostic.Span, callee hir.FunctionIdent, args []hir.Value, resultTypes []types.Type) *hir.Operation {
	op := hir.NewOperation(OpSyscall, span, resultTypes...)
	op.SetAttr(attrCallee, callee)

	for _, a := range args {
		op.AddOperand(a)
	}

	return op
}

// Callee returns the function identifier a Call/Syscall op targets.
func Callee(op *hir.Operation) hir.FunctionIdent {
	v, _ := op.Attr(attrCallee)
	return v.(hir.FunctionIdent)
}
