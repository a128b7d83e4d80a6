package codegen

import (
	"fmt"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/analysis"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Emitter walks a function's structured HIR body (already passed through
// pkg/rewrite's SplitCriticalEdges/Treeify/InlineBlocks/CFGToStructured
// pipeline) and produces a masmir.Procedure. It tracks values
// at the granularity of one abstract stack slot per SSA value regardless
// of how many felts that value occupies concretely (i128 and struct/array
// values are multi-felt); the per-instruction lowering functions in
// lowering.go/i128.go/memory.go account for the felt-level stack effect of
// each concrete instruction sequence, while scheduling itself reasons only
// about value identity. This mirrors the abstraction level of
// codegen/masm/src/stackify/operand_stack.rs in original_source, which is
// likewise value-indexed rather than felt-indexed.
type Emitter struct {
	resolveCallee func(hir.FunctionIdent) masmir.ProcedureRef
	numLocals     uint32
}

// NewEmitter constructs an Emitter. resolveCallee maps a called function's
// identifier to the MASM procedure it lowers to; the driver (component L)
// supplies this once module-level name assignment has run.
func NewEmitter(resolveCallee func(hir.FunctionIdent) masmir.ProcedureRef) *Emitter {
	return &Emitter{resolveCallee: resolveCallee}
}

// EmitFunction lowers fn into a masmir.Procedure. vis controls whether the
// procedure is emitted as `export` or plain `proc`.
func (e *Emitter) EmitFunction(fn *hir.Func, vis masmir.Visibility) *masmir.Procedure {
	sig := fn.Signature()

	cfg := analysis.BuildCFG(fn.Region())
	live := analysis.ComputeLiveness(cfg)

	e.numLocals = 0

	stack := NewOperandStack()
	for _, p := range fn.Params() {
		stack.Push(hir.Value(p))
	}

	sched := NewScheduler(live, stack)

	body := e.emitBlock(fn.Entry(), sched)

	return &masmir.Procedure{
		Name:       fn.ID().Function.String(),
		Visibility: vis,
		Signature:  masmir.Signature{Inputs: len(sig.Params), Outputs: len(sig.Results)},
		NumLocals:  e.numLocals,
		Body:       body,
	}
}

// emitBlock lowers every non-terminator op of b in order, then its
// terminator, returning the resulting masmir block.
func (e *Emitter) emitBlock(b *hir.Block, sched *Scheduler) masmir.Block {
	var out masmir.Block

	term := b.Terminator()

	for _, op := range b.Ops() {
		if op == term {
			out = append(out, e.emitTerminator(op, b, sched)...)
			break
		}

		out = append(out, e.emitOp(op, b, sched)...)
	}

	return out
}

// applyActions translates a solver action sequence into masmir
// instructions, in order.
func applyActions(actions []Action) masmir.Block {
	var out masmir.Block

	for _, a := range actions {
		switch a.Kind {
		case ActionCopy:
			out = append(out, masmir.DupOp(uint8(a.N)))
		case ActionSwap:
			out = append(out, masmir.SwapOp(uint8(a.N)))
		case ActionMoveUp:
			out = append(out, masmir.MovupOp(uint8(a.N)))
		case ActionMoveDown:
			out = append(out, masmir.MovdnOp(uint8(a.N)))
		}
	}

	return out
}

// bringOperandsToTop schedules op's operands (or, for a terminator, an
// explicit value list) to the top of sched's stack and returns the
// movement instructions, leaving it to the caller to Drop the consumed
// slots once the instruction sequence that uses them has been appended.
func (e *Emitter) bringOperandsToTop(sched *Scheduler, b *hir.Block, at *hir.Operation, vs []hir.Value) masmir.Block {
	actions := sched.ScheduleOperands(b, at, vs)
	return applyActions(actions)
}

func operandValues(op *hir.Operation) []hir.Value {
	operands := op.Operands()
	vs := make([]hir.Value, len(operands))

	for i, o := range operands {
		vs[i] = o.Value()
	}

	return vs
}

// emitOp lowers one non-terminator operation, mutating sched's abstract
// stack to reflect the operation's net stack effect (consume its
// operands, push its results) and returning the concrete instructions.
func (e *Emitter) emitOp(op *hir.Operation, b *hir.Block, sched *Scheduler) masmir.Block {
	switch op.Name {
	case dialect.OpConstant:
		return e.pushResult(sched, op, masmir.PushOp(constantImm(dialect.ConstantValue(op))))

	case dialect.OpPushI128:
		value := dialect.ConstantValue(op).([16]byte)
		return e.pushResult(sched, op, LowerPushI128(value)...)

	case dialect.OpLoad:
		out := e.bringOperandsToTop(sched, b, op, operandValues(op))
		sched.Stack().Drop()
		out = append(out, LowerLoad(op.Results()[0].Type())...)
		sched.Stack().Push(hir.Value(op.Result(0)))

		return out

	case dialect.OpStore:
		vs := operandValues(op)
		out := e.bringOperandsToTop(sched, b, op, vs)
		sched.Stack().Drop()
		sched.Stack().Drop()
		out = append(out, LowerStore(vs[1].Type())...)

		return out

	case dialect.OpLocal:
		t := op.Results()[0].Type().Elem()
		addr := e.allocLocal(t)
		out := masmir.Block{masmir.PushOp(uint64(addr))}
		sched.Stack().Push(hir.Value(op.Result(0)))

		return out

	case dialect.OpCall, dialect.OpSyscall:
		return e.emitCall(op, b, sched)

	case dialect.OpIf:
		return e.emitStructuredIf(op, b, sched)

	case dialect.OpWhile:
		return e.emitStructuredWhile(op, b, sched)

	case dialect.OpI128ToU64:
		return e.emitUnaryLowering(op, b, sched, LowerI128ToU64())
	case dialect.OpI128ToI64:
		return e.emitUnaryLowering(op, b, sched, LowerI128ToI64())
	case dialect.OpI128ToFelt:
		return e.emitUnaryLowering(op, b, sched, LowerI128ToFelt())

	default:
		seq, ok := LowerSimple(op.Name)
		if !ok {
			panic(fmt.Sprintf("codegen: no lowering registered for opcode %q", op.Name))
		}

		return e.emitUnaryLowering(op, b, sched, seq)
	}
}

// emitUnaryLowering is the common path for any op whose instruction
// sequence needs no context beyond "operands arranged on top, then this
// fixed sequence, then push the results": bring operands up, drop them
// from the abstract stack, append seq, push results.
func (e *Emitter) emitUnaryLowering(op *hir.Operation, b *hir.Block, sched *Scheduler, seq []*masmir.Instr) masmir.Block {
	vs := operandValues(op)
	out := e.bringOperandsToTop(sched, b, op, vs)

	for range vs {
		sched.Stack().Drop()
	}

	for _, instr := range seq {
		out = append(out, instr)
	}

	for _, r := range op.Results() {
		sched.Stack().Push(hir.Value(r))
	}

	return out
}

func (e *Emitter) pushResult(sched *Scheduler, op *hir.Operation, instrs ...*masmir.Instr) masmir.Block {
	out := masmir.Block{}
	for _, i := range instrs {
		out = append(out, i)
	}

	for _, r := range op.Results() {
		sched.Stack().Push(hir.Value(r))
	}

	return out
}

func (e *Emitter) emitCall(op *hir.Operation, b *hir.Block, sched *Scheduler) masmir.Block {
	vs := operandValues(op)
	out := e.bringOperandsToTop(sched, b, op, vs)

	for range vs {
		sched.Stack().Drop()
	}

	callee := e.resolveCallee(dialect.Callee(op))

	if op.Name == dialect.OpSyscall {
		out = append(out, masmir.SysCallOp(callee))
	} else {
		out = append(out, masmir.CallOp(callee))
	}

	for _, r := range op.Results() {
		sched.Stack().Push(hir.Value(r))
	}

	return out
}

// allocLocal reserves a fresh word-aligned local slot for a value of type
// t, returning its address. Locals are addressed starting just past the
// function's own frame-reserved region; the driver is responsible for
// ensuring this range never overlaps global storage (analysis.Segments).
func (e *Emitter) allocLocal(t types.Type) uint32 {
	addr := e.numLocals
	e.numLocals += types.WordsOf(t)

	return addr
}

// constantImm extracts the raw uint64 immediate PushOp expects from a
// Constant op's attribute, widening booleans and narrower integer kinds.
func constantImm(value any) uint64 {
	switch v := value.(type) {
	case uint64:
		return v
	case int64:
		return uint64(v)
	case uint32:
		return uint64(v)
	case int32:
		return uint64(uint32(v))
	case types.FeltValue:
		return v.Uint64()
	case bool:
		if v {
			return 1
		}

		return 0
	default:
		panic(fmt.Sprintf("codegen: unsupported constant immediate type %T", value))
	}
}

// emitTerminator lowers b's terminator: cf.ret and cf.unreachable, plus
// scf.yield and scf.condition closing a structured region. cf.br and
// cf.cond_br are eliminated by CFGToStructured before code generation
// runs, becoming scf.if/scf.while (handled in emitOp via emitStructured)
// or plain fallthrough.
func (e *Emitter) emitTerminator(op *hir.Operation, b *hir.Block, sched *Scheduler) masmir.Block {
	switch op.Name {
	case dialect.OpRet:
		vs := operandValues(op)
		return e.bringOperandsToTop(sched, b, op, vs)

	case dialect.OpUnreachable:
		return masmir.Block{masmir.PushOp(0), masmir.AssertOp()}

	case dialect.OpYield:
		vs := operandValues(op)
		return e.bringOperandsToTop(sched, b, op, vs)

	case dialect.OpCondition:
		vs := operandValues(op)
		out := e.bringOperandsToTop(sched, b, op, vs)
		// while.true pops and tests this boolean itself; drop it from the
		// abstraction without emitting an instruction for the drop.
		sched.Stack().Drop()

		return out

	default:
		panic(fmt.Sprintf("codegen: unexpected terminator opcode %q reaching the emitter", op.Name))
	}
}

// emitStructuredIf lowers an scf.if to a masmir.If.
// Each arm is emitted against its own forked copy of the stack (both
// start from the identical post-condition shape; only one arm ever
// actually executes, but both must be compiled), then the outer stack is
// advanced past the if as a whole by pushing its results.
func (e *Emitter) emitStructuredIf(op *hir.Operation, b *hir.Block, sched *Scheduler) masmir.Block {
	cond := operandValues(op)
	out := e.bringOperandsToTop(sched, b, op, cond)
	sched.Stack().Drop()

	thenRegion := op.Regions()[0]
	elseRegion := op.Regions()[1]

	thenSched := NewScheduler(sched.live, forkStack(sched.Stack()))
	thenBlock := e.emitBlock(thenRegion.Entry(), thenSched)

	elseSched := NewScheduler(sched.live, forkStack(sched.Stack()))
	elseBlock := e.emitBlock(elseRegion.Entry(), elseSched)

	out = append(out, &masmir.If{Then: thenBlock, Else: elseBlock})

	for _, r := range op.Results() {
		sched.Stack().Push(hir.Value(r))
	}

	return out
}

// emitStructuredWhile lowers an scf.while to a
// masmir.While. MASM's while.true tests a boolean already computed before
// the construct and again at the end of every iteration, so the before
// region's instructions are emitted once as the pre-loop condition
// computation and a second time as the tail of the loop body, matching
// the conventional structured-loop lowering (c.f. how a C `while` compiles
// to a test-then-branch-back shape).
func (e *Emitter) emitStructuredWhile(op *hir.Operation, b *hir.Block, sched *Scheduler) masmir.Block {
	vs := operandValues(op)
	out := e.bringOperandsToTop(sched, b, op, vs)

	beforeRegion := op.Regions()[0]
	afterRegion := op.Regions()[1]

	beforeBlock := e.emitBlock(beforeRegion.Entry(), sched)
	afterBlock := e.emitBlock(afterRegion.Entry(), sched)

	n := len(op.Results())
	for i := 0; i < n; i++ {
		sched.Stack().Rename(n-1-i, hir.Value(op.Result(i)))
	}

	loopBody := append(append(masmir.Block{}, afterBlock...), beforeBlock...)

	out = append(out, beforeBlock...)
	out = append(out, &masmir.While{Body: loopBody})

	return out
}

// forkStack copies stack's current contents into a fresh OperandStack, so
// speculative emission (an if's two arms) can proceed independently
// without one arm's bookkeeping affecting the other.
func forkStack(stack *OperandStack) *OperandStack {
	s := NewOperandStack()
	s.ResetTo(stack.Snapshot())

	return s
}
