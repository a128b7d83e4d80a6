package codegen

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
)

// simpleLowering maps an HIR opcode that consumes its operands (already
// arranged on top of stack by the scheduler/solver) directly to a fixed
// MASM instruction sequence, with no further context needed. Opcodes
// requiring extra information -- constants, calls, memory addressing,
// structured control flow -- are lowered directly by the emitter instead
//.
var simpleLowering = map[string][]*masmir.Instr{
	dialect.OpAdd: {masmir.Binary(masmir.Add)},
	dialect.OpSub: {masmir.Binary(masmir.Sub)},
	dialect.OpMul: {masmir.Binary(masmir.Mul)},
	dialect.OpDiv: {masmir.Binary(masmir.Div)},
	dialect.OpAnd: {masmir.Binary(masmir.And)},
	dialect.OpOr:  {masmir.Binary(masmir.Or)},
	dialect.OpXor: {masmir.Binary(masmir.Xor)},
	dialect.OpNeg: {masmir.Unary(masmir.Neg)},
	dialect.OpNot: {masmir.Unary(masmir.Not)},

	dialect.OpEq: {masmir.Binary(masmir.Eq)},
	dialect.OpNe: {masmir.Binary(masmir.Neq)},
	dialect.OpLt: {masmir.Binary(masmir.Lt)},
	dialect.OpLe: {masmir.Binary(masmir.Lte)},
	dialect.OpGt: {masmir.Binary(masmir.Gt)},
	dialect.OpGe: {masmir.Binary(masmir.Gte)},

	// felt_is_zero: compare against the immediate zero, leaving a
	// boolean and consuming the operand. The operand does not end up
	// duplicated beneath the boolean the way a literal "Dup(0); EqImm(0)"
	// reading of the op would produce: this table is consumed through
	// emitUnaryLowering, which always drops exactly the operand slots and
	// pushes exactly the result slots, so an unconditional Dup here would
	// leave an extra, unaccounted-for felt on the concrete stack beneath
	// the boolean. If the operand is still live after this use, the
	// scheduler's own Copy constraint (pkg/codegen/scheduler.go) dups it
	// before bringing it to the top -- that is the single place a
	// re-usable copy of a value is ever created. Pinned end-to-end in
	// TestEmitFeltIsZero.
	dialect.OpFeltIsZero: {masmir.EqImmOp(0)},
	// assert_felt_is_zero: same comparison, then assert and drop. Same
	// note as felt_is_zero above applies: no lowering-level Dup, since
	// assert_felt_is_zero yields no result and the scheduler already
	// keeps the operand alive via a Copy constraint when needed. Pinned
	// end-to-end in TestEmitAssertFeltIsZero.
	dialect.OpAssertFeltIsZero: {masmir.EqImmOp(0), masmir.AssertOp()},
	// felt_to_u64/felt_to_int/trunc_felt all narrow via u32split + range
	// checks in the real target; here the two u32 limbs remain on stack
	// as the lowered representation of the narrower integer result.
	dialect.OpFeltToU64: {masmir.U32SplitOp()},
	dialect.OpFeltToInt: {masmir.U32CastOp()},
	dialect.OpTruncFelt: {masmir.U32CastOp()},

	// eq_i128: compares the top two words (4 felts each) element-wise,
	// then clears the compared words off the stack. Eqw alone leaves
	// the boolean sitting on top of the 8 compared felts -- Movdn(8)
	// sinks it under both words so the two Dropw calls can clear them,
	// leaving just the boolean.
	dialect.OpEqI128: {masmir.EqwOp(), masmir.MovdnOp(8), masmir.DropwOp(), masmir.DropwOp()},
}

// LowerSimple returns the fixed instruction sequence for op's opcode, if
// one exists in the no-context table, and whether it was found.
func LowerSimple(opName string) ([]*masmir.Instr, bool) {
	seq, ok := simpleLowering[opName]
	if !ok {
		return nil, false
	}

	// Callers may mutate the returned slice's backing Instr values'
	// fields (they never do, today, but copy defensively since the table
	// entry is shared across every call site).
	out := make([]*masmir.Instr, len(seq))
	copy(out, seq)

	return out, true
}
