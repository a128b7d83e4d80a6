// Package dialect registers the concrete HIR opcodes used by this compiler:
// arithmetic, comparison, control flow, memory access, and calls. Each
// opcode is registered with hir.RegisterOp at package init, declaring the
// traits it requires, the way the teacher registers each
// constraint/assignment kind by name at load time (pkg/schema's kind
// tables).
package dialect

// Opcode name constants, interned as the hir.Operation.Name field. Named
// "<category>.<op>" the way MLIR-style dialects namespace opcodes, and the
// way the teacher namespaces its own op kinds (e.g. "vanishing", "lookup").
const (
	OpConstant = "hir.constant"

	OpAdd = "arith.add"
	OpSub = "arith.sub"
	OpMul = "arith.mul"
	OpDiv = "arith.div"
	OpMod = "arith.mod"
	OpNeg = "arith.neg"
	OpNot = "arith.not"
	OpAnd = "arith.and"
	OpOr  = "arith.or"
	OpXor = "arith.xor"
	OpShl = "arith.shl"
	OpShr = "arith.shr"

	OpEq  = "arith.eq"
	OpNe  = "arith.ne"
	OpLt  = "arith.lt"
	OpLe  = "arith.le"
	OpGt  = "arith.gt"
	OpGe  = "arith.ge"

	OpTrunc = "arith.trunc"
	OpZext  = "arith.zext"
	OpSext  = "arith.sext"
	OpCast  = "arith.cast"

	OpFeltIsZero       = "felt.is_zero"
	OpAssertFeltIsZero = "felt.assert_is_zero"
	OpFeltToU64        = "felt.to_u64"
	OpFeltToInt        = "felt.to_int"
	OpTruncFelt        = "felt.trunc"

	OpPushI128 = "i128.push"
	OpEqI128   = "i128.eq"
	OpI128ToI64 = "i128.to_i64"
	OpI128ToU64 = "i128.to_u64"
	OpI128ToFelt = "i128.to_felt"

	OpLoad  = "memory.load"
	OpStore = "memory.store"
	OpLocal = "hir.local"

	OpBr     = "cf.br"
	OpCondBr = "cf.cond_br"
	OpRet    = "cf.ret"
	OpUnreachable = "cf.unreachable"

	OpYield     = "scf.yield"
	OpCondition = "scf.condition"
	OpIf        = "scf.if"
	OpWhile     = "scf.while"

	OpCall    = "func.call"
	OpSyscall = "func.syscall"
)
