package dialect

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

func init() {
	hir.RegisterOp(OpBr, hir.Traits(hir.TraitTerminator), nil)
	hir.RegisterOp(OpCondBr, hir.Traits(hir.TraitTerminator), nil)
	hir.RegisterOp(OpRet, hir.Traits(hir.TraitTerminator, hir.TraitReturnLike), nil)
	hir.RegisterOp(OpUnreachable, hir.Traits(hir.TraitTerminator), nil)
	hir.RegisterOp(OpYield, hir.Traits(hir.TraitTerminator, hir.TraitReturnLike), nil)
	hir.RegisterOp(OpCondition, hir.Traits(hir.TraitTerminator), nil)
	hir.RegisterOp(OpIf, hir.Traits(hir.TraitNoRegionArguments), nil)
	hir.RegisterOp(OpWhile, hir.Traits(hir.TraitNoRegionArguments), nil)
}

// Br builds an unconditional branch to target, forwarding args into its
// block arguments.
func Br(span diagnostic.Span, target *hir.Block, args ...hir.Value) *hir.Operation {
	op := hir.NewOperation(OpBr, span)
	op.AddSuccessor(target, args...)

	return op
}

// CondBr builds a conditional branch: cond selects between thenTarget and
// elseTarget, each forwarding its own argument list.
func CondBr(span diagnostic.Span, cond hir.Value, thenTarget *hir.Block, thenArgs []hir.Value,
	elseTarget *hir.Block, elseArgs []hir.Value) *hir.Operation {
	op := hir.NewOperation(OpCondBr, span)
	op.AddOperand(cond)
	op.AddSuccessor(thenTarget, thenArgs...)
	op.AddSuccessor(elseTarget, elseArgs...)

	return op
}

// Ret builds a function return, consuming results as operands.
func Ret(span diagnostic.Span, results ...hir.Value) *hir.Operation {
	op := hir.NewOperation(OpRet, span)
	for _, r := range results {
		op.AddOperand(r)
	}

	return op
}

// Unreachable marks a program point that control flow can never reach
//.
func Unreachable(span diagnostic.Span) *hir.Operation {
	return hir.NewOperation(OpUnreachable, span)
}

// Yield terminates a scf.while "after" region or an if/else arm, forwarding
// values up to the enclosing structured op.
func Yield(span diagnostic.Span, values ...hir.Value) *hir.Operation {
	op := hir.NewOperation(OpYield, span)
	for _, v := range values {
		op.AddOperand(v)
	}

	return op
}

// Condition terminates a scf.while "before" region with the loop-continue
// boolean.
func Condition(span diagnostic.Span, cond hir.Value) *hir.Operation {
	op := hir.NewOperation(OpCondition, span)
	op.AddOperand(cond)

	return op
}

// If builds a structured conditional with "then" and optionally "else"
// regions. Callers populate the regions via
// hir.NewBuilder(op.Regions()[i].Entry()).
func If(span diagnostic.Span, cond hir.Value, resultTypes ...types.Type) *hir.Operation {
	op := hir.NewOperation(OpIf, span, resultTypes...)
	op.AddOperand(cond)
	op.AddRegion(hir.RegionSSA).AppendBlock(hir.NewBlock())
	op.AddRegion(hir.RegionSSA).AppendBlock(hir.NewBlock())

	return op
}

// While builds a structured loop with "before" (condition) and "after"
// (body) regions. The before region must end in
// scf.condition; the after region must end in scf.yield forwarding the
// loop-carried values back into the before region's arguments.
func While(span diagnostic.Span, initArgs []hir.Value, carriedTypes []types.Type, resultTypes ...types.Type) *hir.Operation {
	op := hir.NewOperation(OpWhile, span, resultTypes...)
	for _, a := range initArgs {
		op.AddOperand(a)
	}

	before := hir.NewBlock(carriedTypes...)
	op.AddRegion(hir.RegionSSA).AppendBlock(before)

	after := hir.NewBlock(carriedTypes...)
	op.AddRegion(hir.RegionSSA).AppendBlock(after)

	return op
}
