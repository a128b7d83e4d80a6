package dialect

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

var attrOverflow = symbol.Intern("arith.overflow")
var attrConst = symbol.Intern("hir.const.value")

func init() {
	hir.RegisterOp(OpAdd, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands, hir.TraitCommutative), nil)
	hir.RegisterOp(OpSub, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands), nil)
	hir.RegisterOp(OpMul, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands, hir.TraitCommutative), nil)
	hir.RegisterOp(OpDiv, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands), nil)
	hir.RegisterOp(OpMod, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands), nil)
	hir.RegisterOp(OpNeg, hir.Traits(hir.TraitUnaryOp, hir.TraitSameOperandsAndResultType, hir.TraitInvolution), nil)
	hir.RegisterOp(OpNot, hir.Traits(hir.TraitUnaryOp, hir.TraitSameOperandsAndResultType, hir.TraitInvolution), nil)
	hir.RegisterOp(OpAnd, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands, hir.TraitCommutative), nil)
	hir.RegisterOp(OpOr, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands, hir.TraitCommutative), nil)
	hir.RegisterOp(OpXor, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands, hir.TraitCommutative), nil)
	hir.RegisterOp(OpShl, hir.Traits(hir.TraitBinaryOp), nil)
	hir.RegisterOp(OpShr, hir.Traits(hir.TraitBinaryOp), nil)

	hir.RegisterOp(OpEq, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands, hir.TraitCommutative), nil)
	hir.RegisterOp(OpNe, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands, hir.TraitCommutative), nil)
	hir.RegisterOp(OpLt, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands), nil)
	hir.RegisterOp(OpLe, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands), nil)
	hir.RegisterOp(OpGt, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands), nil)
	hir.RegisterOp(OpGe, hir.Traits(hir.TraitBinaryOp, hir.TraitSameTypeOperands), nil)

	hir.RegisterOp(OpTrunc, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpZext, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpSext, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpCast, hir.Traits(hir.TraitUnaryOp), nil)

	hir.RegisterOp(OpFeltIsZero, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpAssertFeltIsZero, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpFeltToU64, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpFeltToInt, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpTruncFelt, hir.Traits(hir.TraitUnaryOp), nil)

	hir.RegisterOp(OpPushI128, hir.Traits(hir.TraitConstantLike), nil)
	hir.RegisterOp(OpEqI128, hir.Traits(hir.TraitBinaryOp, hir.TraitCommutative), nil)
	hir.RegisterOp(OpI128ToI64, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpI128ToU64, hir.Traits(hir.TraitUnaryOp), nil)
	hir.RegisterOp(OpI128ToFelt, hir.Traits(hir.TraitUnaryOp), nil)

	hir.RegisterOp(OpConstant, hir.Traits(hir.TraitConstantLike), nil)
}

func binary(name string, span diagnostic.Span, resultType types.Type, lhs, rhs hir.Value) *hir.Operation {
	op := hir.NewOperation(name, span, resultType)
	op.AddOperand(lhs)
	op.AddOperand(rhs)

	return op
}

func unary(name string, span diagnostic.Span, resultType types.Type, operand hir.Value) *hir.Operation {
	op := hir.NewOperation(name, span, resultType)
	op.AddOperand(operand)

	return op
}

// Add builds an lhs+rhs operation with the given overflow mode.
func Add(span diagnostic.Span, lhs, rhs hir.Value, mode hir.Overflow) *hir.Operation {
	op := binary(OpAdd, span, lhs.Type(), lhs, rhs)
	op.SetAttr(attrOverflow, mode)

	return op
}

// Sub builds an lhs-rhs operation with the given overflow mode.
func Sub(span diagnostic.Span, lhs, rhs hir.Value, mode hir.Overflow) *hir.Operation {
	op := binary(OpSub, span, lhs.Type(), lhs, rhs)
	op.SetAttr(attrOverflow, mode)

	return op
}

// Mul builds an lhs*rhs operation with the given overflow mode.
func Mul(span diagnostic.Span, lhs, rhs hir.Value, mode hir.Overflow) *hir.Operation {
	op := binary(OpMul, span, lhs.Type(), lhs, rhs)
	op.SetAttr(attrOverflow, mode)

	return op
}

// Div builds an lhs/rhs operation (always checked: division by zero traps).
func Div(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation {
	return binary(OpDiv, span, lhs.Type(), lhs, rhs)
}

// Mod builds an lhs%rhs operation (always checked: division by zero traps).
func Mod(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation {
	return binary(OpMod, span, lhs.Type(), lhs, rhs)
}

// OverflowOf returns the overflow mode attached to an arithmetic op built by
// Add/Sub/Mul.
func OverflowOf(op *hir.Operation) hir.Overflow {
	v, ok := op.Attr(attrOverflow)
	if !ok {
		return hir.OverflowWrapping
	}

	return v.(hir.Overflow)
}

// Neg builds a unary negation.
func Neg(span diagnostic.Span, v hir.Value) *hir.Operation {
	return unary(OpNeg, span, v.Type(), v)
}

// Not builds a unary bitwise/boolean complement.
func Not(span diagnostic.Span, v hir.Value) *hir.Operation {
	return unary(OpNot, span, v.Type(), v)
}

func bitwise(name string, span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation {
	return binary(name, span, lhs.Type(), lhs, rhs)
}

// And builds a bitwise/boolean conjunction.
func And(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return bitwise(OpAnd, span, lhs, rhs) }

// Or builds a bitwise/boolean disjunction.
func Or(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return bitwise(OpOr, span, lhs, rhs) }

// Xor builds a bitwise exclusive-or.
func Xor(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return bitwise(OpXor, span, lhs, rhs) }

// Shl builds a left shift of lhs by rhs bits.
func Shl(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return bitwise(OpShl, span, lhs, rhs) }

// Shr builds a right shift of lhs by rhs bits; the operand's signedness
// (set by the caller casting lhs to an unsigned type first) decides
// whether the shift is logical or arithmetic.
func Shr(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return bitwise(OpShr, span, lhs, rhs) }

// compare builds a boolean (i1) comparison op.
func compare(name string, span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation {
	return binary(name, span, types.I1, lhs, rhs)
}

// Eq builds an equality comparison, yielding i1.
func Eq(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return compare(OpEq, span, lhs, rhs) }

// Ne builds an inequality comparison, yielding i1.
func Ne(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return compare(OpNe, span, lhs, rhs) }

// Lt builds a less-than comparison, yielding i1.
func Lt(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return compare(OpLt, span, lhs, rhs) }

// Gt builds a greater-than comparison, yielding i1.
func Gt(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return compare(OpGt, span, lhs, rhs) }

// Le builds a less-than-or-equal comparison, yielding i1.
func Le(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return compare(OpLe, span, lhs, rhs) }

// Ge builds a greater-than-or-equal comparison, yielding i1.
func Ge(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation { return compare(OpGe, span, lhs, rhs) }

// Trunc builds an integer narrowing conversion, discarding high bits.
func Trunc(span diagnostic.Span, v hir.Value, resultType types.Type) *hir.Operation {
	return unary(OpTrunc, span, resultType, v)
}

// Zext builds an integer widening conversion that fills high bits with
// zero.
func Zext(span diagnostic.Span, v hir.Value, resultType types.Type) *hir.Operation {
	return unary(OpZext, span, resultType, v)
}

// Sext builds an integer widening conversion that fills high bits by
// sign-extending the operand's most significant bit.
func Sext(span diagnostic.Span, v hir.Value, resultType types.Type) *hir.Operation {
	return unary(OpSext, span, resultType, v)
}

// Cast builds a same-width bit-reinterpretation, e.g. i32 to u32 to select
// an unsigned comparison/arithmetic op over the same bits.
func Cast(span diagnostic.Span, v hir.Value, resultType types.Type) *hir.Operation {
	return unary(OpCast, span, resultType, v)
}

// Constant builds a constant-like op materializing an immediate value of
// type t.
func Constant(span diagnostic.Span, t types.Type, value any) *hir.Operation {
	op := hir.NewOperation(OpConstant, span, t)
	op.SetAttr(attrConst, value)

	return op
}

// ConstantValue returns the immediate attached to a Constant op.
func ConstantValue(op *hir.Operation) any {
	v, _ := op.Attr(attrConst)
	return v
}

// FeltIsZero builds the felt_is_zero lowering target: yields
// i1. The codegen lowering consumes the operand; a still-live operand is
// kept by the scheduler's Copy constraint.
func FeltIsZero(span diagnostic.Span, v hir.Value) *hir.Operation {
	return unary(OpFeltIsZero, span, types.I1, v)
}

// AssertFeltIsZero builds assert_felt_is_zero, yielding no
// result: it asserts v == 0 and traps otherwise.
func AssertFeltIsZero(span diagnostic.Span, v hir.Value) *hir.Operation {
	op := hir.NewOperation(OpAssertFeltIsZero, span)
	op.AddOperand(v)

	return op
}

// FeltToU64 builds felt_to_u64, yielding a u64.
func FeltToU64(span diagnostic.Span, v hir.Value) *hir.Operation {
	return unary(OpFeltToU64, span, types.U64, v)
}

// FeltToInt builds felt_to_int(n) for n <= 32, yielding an
// unsigned integer of width n bits.
func FeltToInt(span diagnostic.Span, v hir.Value, resultType types.Type) *hir.Operation {
	return unary(OpFeltToInt, span, resultType, v)
}

// TruncFelt builds trunc_felt(n) for n <= 32.
func TruncFelt(span diagnostic.Span, v hir.Value, resultType types.Type) *hir.Operation {
	return unary(OpTruncFelt, span, resultType, v)
}

// PushI128 builds a constant-like op materializing a 128-bit immediate,
// backing the push_i128 lowering.
func PushI128(span diagnostic.Span, value [16]byte) *hir.Operation {
	op := hir.NewOperation(OpPushI128, span, types.I128)
	op.SetAttr(attrConst, value)

	return op
}

// EqI128 builds an i128 equality comparison,
// yielding i1.
func EqI128(span diagnostic.Span, lhs, rhs hir.Value) *hir.Operation {
	return binary(OpEqI128, span, types.I1, lhs, rhs)
}

// I128ToI64 builds the range-checked i128->i64 narrowing conversion.
func I128ToI64(span diagnostic.Span, v hir.Value) *hir.Operation {
	return unary(OpI128ToI64, span, types.I64, v)
}

// I128ToU64 builds the range-checked i128->u64 narrowing conversion.
func I128ToU64(span diagnostic.Span, v hir.Value) *hir.Operation {
	return unary(OpI128ToU64, span, types.U64, v)
}

// I128ToFelt builds the range-checked i128->felt narrowing conversion.
func I128ToFelt(span diagnostic.Span, v hir.Value) *hir.Operation {
	return unary(OpI128ToFelt, span, types.Felt, v)
}
