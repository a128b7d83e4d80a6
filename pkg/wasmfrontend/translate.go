package wasmfrontend

import (
	"fmt"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Wasm operator opcode bytes this frontend recognizes (binary format §5.4).
// Unrecognized opcodes -- notably every SIMD (0xfd-prefixed), table, and
// exception-handling opcode -- are rejected with a diagnostic rather than
// silently miscompiled.
const (
	opUnreachable = 0x00
	opNop         = 0x01
	opBlock       = 0x02
	opLoop        = 0x03
	opIf          = 0x04
	opElse        = 0x05
	opEnd         = 0x0b
	opBr          = 0x0c
	opBrIf        = 0x0d
	opBrTable     = 0x0e
	opReturn      = 0x0f
	opCall        = 0x10
	opCallIndirect = 0x11
	opDrop        = 0x1a
	opSelect      = 0x1b
	opLocalGet    = 0x20
	opLocalSet    = 0x21
	opLocalTee    = 0x22
	opGlobalGet   = 0x23
	opGlobalSet   = 0x24
	opI32Load     = 0x28
	opI64Load     = 0x29
	opI32Store    = 0x36
	opI64Store    = 0x37
	opI32Const    = 0x41
	opI64Const    = 0x42

	opI32Eqz = 0x45
	opI32Eq  = 0x46
	opI32Ne  = 0x47
	opI32LtS = 0x48
	opI32LtU = 0x49
	opI32GtS = 0x4a
	opI32GtU = 0x4b
	opI32LeS = 0x4c
	opI32LeU = 0x4d
	opI32GeS = 0x4e
	opI32GeU = 0x4f

	opI64Eqz = 0x50
	opI64Eq  = 0x51
	opI64Ne  = 0x52
	opI64LtS = 0x53
	opI64LtU = 0x54
	opI64GtS = 0x55
	opI64GtU = 0x56
	opI64LeS = 0x57
	opI64LeU = 0x58
	opI64GeS = 0x59
	opI64GeU = 0x5a

	opI32Add  = 0x6a
	opI32Sub  = 0x6b
	opI32Mul  = 0x6c
	opI32DivS = 0x6d
	opI32DivU = 0x6e
	opI32RemS = 0x6f
	opI32RemU = 0x70
	opI32And  = 0x71
	opI32Or   = 0x72
	opI32Xor  = 0x73
	opI32Shl  = 0x74
	opI32ShrS = 0x75
	opI32ShrU = 0x76

	opI64Add  = 0x7c
	opI64Sub  = 0x7d
	opI64Mul  = 0x7e
	opI64DivS = 0x7f
	opI64DivU = 0x80
	opI64RemS = 0x81
	opI64RemU = 0x82
	opI64And  = 0x83
	opI64Or   = 0x84
	opI64Xor  = 0x85
	opI64Shl  = 0x86
	opI64ShrS = 0x87
	opI64ShrU = 0x88

	opI32WrapI64    = 0xa7
	opI64ExtendI32S = 0xac
	opI64ExtendI32U = 0xad
)

// blockTypeEmpty, when decoded, means the construct takes no params and
// yields no results.
const blockTypeEmpty = 0x40

// frameKind discriminates the three Wasm structured-control constructs.
type frameKind uint8

const (
	frameBlock frameKind = iota
	frameLoop
	frameIf
)

type blockSig struct {
	params, results []types.Type
}

type ctrlFrame struct {
	kind frameKind
	sig  blockSig
	// continueTarget is where `br` targets when kind == frameLoop (the
	// loop header, re-entered with sig.params); for frameBlock/frameIf it
	// is nil and br targets exitBlock instead.
	continueTarget *hir.Block
	// exitBlock is the merge point reached on `end` (and on `br` for
	// non-loop frames), taking sig.results as block arguments.
	exitBlock *hir.Block
	// elseReached records whether `else` has already been seen for an if
	// frame, so a second `else` is rejected.
	elseReached bool
	// unreachable marks that the current arm of this frame will never
	// execute (e.g. after an explicit `unreachable` or a fallthrough
	// `br`/`return`); operator decoding keeps parsing to track nesting but
	// stops emitting ops until the frame's `else`/`end`. An if frame's
	// `else` arm resets this, since it is reachable independent of
	// whether the then-arm was.
	unreachable bool
	// shadow marks a frame that was entered while already inside dead
	// code (the enclosing frame was unreachable): it has no backing
	// blocks and never becomes live again, not even across its own
	// `else`, since the code containing it can never execute regardless.
	shadow bool
}

// ModuleTranslationState holds the cross-function state the frontend
// needs while translating one Wasm module: the decoded binary sections
// and the HIR identifiers assigned to each function/import index. There
// is exactly one of these per module translation -- no separate/duplicate
// variant.
type ModuleTranslationState struct {
	bin        *BinaryModule
	moduleName string
	// importIdents[i] is the FunctionIdent for import-section entry i.
	importIdents []hir.FunctionIdent
	// definedIdents[i] is the FunctionIdent for code-section entry i
	// (bin.Bodies[i]/bin.FuncTypes[i]).
	definedIdents []hir.FunctionIdent
}

// Translate decodes a Wasm binary module and translates it into an HIR
// module named moduleName.
func Translate(moduleName string, data []byte) (*hir.Module, error) {
	bin, err := DecodeModule(data)
	if err != nil {
		return nil, err
	}

	state := &ModuleTranslationState{bin: bin, moduleName: moduleName}

	modIdent := hir.NewIdent(moduleName, diagnostic.Unknown)
	m := hir.NewModule(modIdent)

	exportedFuncNames := make(map[uint32]string, len(bin.Exports))

	for _, e := range bin.Exports {
		if e.Kind == exportKindFunc {
			exportedFuncNames[e.Index] = e.Name
		}
	}

	for _, imp := range bin.Imports {
		ident := hir.NewFunctionIdent(hir.NewIdent(imp.Module, diagnostic.Unknown), hir.NewIdent(imp.Field, diagnostic.Unknown))
		state.importIdents = append(state.importIdents, ident)

		ft := bin.Types[imp.TypeIndex]
		m.AddImport(hir.Import{Callee: ident, Sig: sigFromFuncType(ft), CC: hir.CallConvFast})
	}

	numImports := uint32(len(bin.Imports))

	for i := range bin.Bodies {
		totalIdx := numImports + uint32(i)

		name, exported := exportedFuncNames[totalIdx]
		if !exported {
			name = fmt.Sprintf("func%d", i)
		}

		state.definedIdents = append(state.definedIdents, hir.NewFunctionIdent(modIdent, hir.NewIdent(name, diagnostic.Unknown)))
	}

	for i, body := range bin.Bodies {
		ft := bin.Types[bin.FuncTypes[i]]

		_, exported := exportedFuncNames[numImports+uint32(i)]
		vis := hir.VisibilityPrivate

		if exported {
			vis = hir.VisibilityPublic
		}

		fn, err := translateFunction(state, i, ft, body, vis)
		if err != nil {
			return nil, fmt.Errorf("wasmfrontend: function %d: %w", i, err)
		}

		m.AddFunc(fn)
	}

	return m, nil
}

func sigFromFuncType(ft FuncType) hir.Signature {
	params := make([]hir.Param, len(ft.Params))
	for i, t := range ft.Params {
		params[i] = hir.Param{Type: t}
	}

	return hir.Signature{Params: params, Results: ft.Results}
}

// funcTranslator holds the per-function mutable state of operator-stream
// translation: a small emulator of the Wasm value/control stack, plus the
// current insertion block.
type funcTranslator struct {
	state *ModuleTranslationState
	fn    *hir.Func
	b     *hir.Builder

	stack []hir.Value
	ctrl  []ctrlFrame

	// locals[i] is the Ptr(t) slot backing Wasm local index i (including
	// parameters); local.get/set/tee translate to Load/Store through it.
	// This sidesteps block-argument threading for mutated locals across
	// arbitrary control flow at the cost of redundant loads/stores a
	// later optimization pass could clean up (out of scope, see
	// DESIGN.md).
	locals     []hir.Value
	localTypes []types.Type
}

func translateFunction(state *ModuleTranslationState, idx int, ft FuncType, body FunctionBody, vis hir.Visibility) (*hir.Func, error) {
	sig := sigFromFuncType(ft)
	fn := hir.NewFunc(state.definedIdents[idx], sig, hir.CallConvWasm, hir.LinkageExternal, vis, diagnostic.Unknown)

	b := hir.NewBuilder(fn.Entry())

	t := &funcTranslator{state: state, fn: fn, b: b}

	for _, pt := range ft.Params {
		t.localTypes = append(t.localTypes, pt)
	}

	t.localTypes = append(t.localTypes, body.Locals...)

	t.locals = make([]hir.Value, len(t.localTypes))
	for i, lt := range t.localTypes {
		slot := b.Insert(dialect.Local(diagnostic.Unknown, lt))
		t.locals[i] = hir.Value(slot.Result(0))
	}

	for i, arg := range fn.Params() {
		b.Insert(dialect.Store(diagnostic.Unknown, t.locals[i], hir.Value(arg)))
	}

	for i := len(ft.Params); i < len(t.localTypes); i++ {
		b.Insert(dialect.Store(diagnostic.Unknown, t.locals[i], zeroValue(b, t.localTypes[i])))
	}

	r := newReader(body.Code)

	if err := t.run(r); err != nil {
		return nil, err
	}

	return fn, nil
}

// zeroValue materializes a zero constant of type ty, for default-
// initializing declared (non-parameter) locals.
func zeroValue(b *hir.Builder, ty types.Type) hir.Value {
	op := dialect.Constant(diagnostic.Unknown, ty, uint64(0))
	return hir.Value(b.Insert(op).Result(0))
}

func (t *funcTranslator) push(v hir.Value) { t.stack = append(t.stack, v) }

func (t *funcTranslator) pop() hir.Value {
	v := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]

	return v
}

func (t *funcTranslator) top() *ctrlFrame { return &t.ctrl[len(t.ctrl)-1] }

func (t *funcTranslator) unreachable() bool {
	return len(t.ctrl) > 0 && t.top().unreachable
}

// run decodes and translates r's operator stream, which is the function
// body (run at the outermost level) or, recursively, none -- control
// constructs are handled inline via the ctrl stack rather than recursion.
func (t *funcTranslator) run(r *reader) error {
	for !r.done() {
		op, err := r.byte()
		if err != nil {
			return err
		}

		done, err := t.step(r, op)
		if err != nil {
			return err
		}

		if done {
			return nil
		}
	}

	return nil
}

// step decodes and translates one operator, returning true once the
// function-level `end` has been processed.
func (t *funcTranslator) step(r *reader, op byte) (bool, error) {
	switch op {
	case opUnreachable:
		if !t.unreachable() {
			t.b.Insert(dialect.Unreachable(diagnostic.Unknown))
			t.markUnreachable()
		}

		return false, nil

	case opNop:
		return false, nil

	case opBlock, opLoop, opIf:
		return false, t.beginConstruct(r, op)

	case opElse:
		return false, t.handleElse()

	case opEnd:
		return t.handleEnd()

	case opBr:
		lbl, err := r.u32()
		if err != nil {
			return false, err
		}

		return false, t.branch(int(lbl), false)

	case opBrIf:
		lbl, err := r.u32()
		if err != nil {
			return false, err
		}

		return false, t.branch(int(lbl), true)

	case opBrTable:
		return false, fmt.Errorf("wasmfrontend: br_table is not supported")

	case opReturn:
		if !t.unreachable() {
			n := len(t.fn.Signature().Results)
			vs := t.stack[len(t.stack)-n:]
			t.b.Insert(dialect.Ret(diagnostic.Unknown, vs...))
			t.markUnreachable()
		}

		return false, nil

	case opCall:
		idx, err := r.u32()
		if err != nil {
			return false, err
		}

		return false, t.call(int(idx))

	case opCallIndirect:
		return false, fmt.Errorf("wasmfrontend: call_indirect (tables) is not supported")

	case opDrop:
		if !t.unreachable() {
			t.pop()
		}

		return false, nil

	case opSelect:
		if !t.unreachable() {
			cond := t.pop()
			b2 := t.pop()
			a := t.pop()
			thenV, elseV := a, b2
			result := t.selectOp(cond, thenV, elseV)
			t.push(result)
		}

		return false, nil

	case opLocalGet:
		idx, err := r.u32()
		if err != nil {
			return false, err
		}

		if !t.unreachable() {
			v := hir.Value(t.b.Insert(dialect.Load(diagnostic.Unknown, t.locals[idx])).Result(0))
			t.push(v)
		}

		return false, nil

	case opLocalSet, opLocalTee:
		idx, err := r.u32()
		if err != nil {
			return false, err
		}

		if !t.unreachable() {
			var v hir.Value
			if op == opLocalTee {
				v = t.stack[len(t.stack)-1]
			} else {
				v = t.pop()
			}

			t.b.Insert(dialect.Store(diagnostic.Unknown, t.locals[idx], v))
		}

		return false, nil

	case opGlobalGet, opGlobalSet:
		return false, fmt.Errorf("wasmfrontend: module-level globals are not supported by this frontend")

	case opI32Load, opI64Load, opI32Store, opI64Store:
		return false, t.memOp(r, op)

	case opI32Const:
		v, err := r.i32()
		if err != nil {
			return false, err
		}

		if !t.unreachable() {
			t.push(hir.Value(t.b.Insert(dialect.Constant(diagnostic.Unknown, types.I32, v)).Result(0)))
		}

		return false, nil

	case opI64Const:
		v, err := r.i64()
		if err != nil {
			return false, err
		}

		if !t.unreachable() {
			t.push(hir.Value(t.b.Insert(dialect.Constant(diagnostic.Unknown, types.I64, v)).Result(0)))
		}

		return false, nil

	case opI32WrapI64:
		return false, t.unaryConv(dialect.Trunc, types.I32)
	case opI64ExtendI32S:
		return false, t.unaryConv(dialect.Sext, types.I64)
	case opI64ExtendI32U:
		return false, t.unaryConv(dialect.Zext, types.I64)

	case opI32Eqz:
		return false, t.eqz(types.I32)
	case opI64Eqz:
		return false, t.eqz(types.I64)

	default:
		if handled, err := t.numericOp(op); handled || err != nil {
			return false, err
		}

		return false, fmt.Errorf("wasmfrontend: unsupported opcode 0x%x", op)
	}
}

func (t *funcTranslator) markUnreachable() {
	if len(t.ctrl) > 0 {
		t.top().unreachable = true
	}
}

func (t *funcTranslator) selectOp(cond, thenV, elseV hir.Value) hir.Value {
	// select has no direct HIR op; lower it as a two-armed If whose result
	// is the chosen operand, the same way structured-control lowering
	// expresses conditional values.
	ifOp := dialect.If(diagnostic.Unknown, cond, thenV.Type())
	thenRegion, elseRegion := ifOp.Regions()[0], ifOp.Regions()[1]
	hir.NewBuilder(thenRegion.Entry()).Insert(dialect.Yield(diagnostic.Unknown, thenV))
	hir.NewBuilder(elseRegion.Entry()).Insert(dialect.Yield(diagnostic.Unknown, elseV))
	t.b.Insert(ifOp)

	return hir.Value(ifOp.Result(0))
}

func (t *funcTranslator) unaryConv(build func(diagnostic.Span, hir.Value, types.Type) *hir.Operation, resultType types.Type) error {
	if t.unreachable() {
		return nil
	}

	v := t.pop()
	t.push(hir.Value(t.b.Insert(build(diagnostic.Unknown, v, resultType)).Result(0)))

	return nil
}

// eqz tests the top-of-stack value against a zero constant of ty, the Wasm
// i32.eqz/i64.eqz instructions (there being no dedicated unary "is zero"
// HIR op for plain integers, unlike felt.is_zero).
func (t *funcTranslator) eqz(ty types.Type) error {
	if t.unreachable() {
		return nil
	}

	v := t.pop()
	zero := hir.Value(t.b.Insert(dialect.Constant(diagnostic.Unknown, ty, uint64(0))).Result(0))
	t.push(hir.Value(t.b.Insert(dialect.Eq(diagnostic.Unknown, v, zero)).Result(0)))

	return nil
}

func (t *funcTranslator) memOp(r *reader, op byte) error {
	if _, err := r.u32(); err != nil { // align
		return err
	}

	if _, err := r.u32(); err != nil { // offset
		return err
	}

	if t.unreachable() {
		return nil
	}

	switch op {
	case opI32Load:
		ptr := t.pop()
		t.push(hir.Value(t.b.Insert(dialect.Load(diagnostic.Unknown, castPtr(t.b, ptr, types.I32))).Result(0)))
	case opI64Load:
		ptr := t.pop()
		t.push(hir.Value(t.b.Insert(dialect.Load(diagnostic.Unknown, castPtr(t.b, ptr, types.I64))).Result(0)))
	case opI32Store:
		val := t.pop()
		ptr := t.pop()
		t.b.Insert(dialect.Store(diagnostic.Unknown, castPtr(t.b, ptr, types.I32), val))
	case opI64Store:
		val := t.pop()
		ptr := t.pop()
		t.b.Insert(dialect.Store(diagnostic.Unknown, castPtr(t.b, ptr, types.I64), val))
	}

	return nil
}

// castPtr reinterprets a raw i32 linear-memory address as a Ptr(elem)
// value via a Cast op, since Wasm's load/store operators carry an
// untyped address while HIR's Load/Store require a typed pointer operand.
func castPtr(b *hir.Builder, addr hir.Value, elem types.Type) hir.Value {
	return hir.Value(b.Insert(dialect.Cast(diagnostic.Unknown, addr, types.Ptr(elem))).Result(0))
}

func (t *funcTranslator) call(idx int) error {
	if t.unreachable() {
		return nil
	}

	numImports := len(t.state.importIdents)

	var callee hir.FunctionIdent

	var sig hir.Signature

	var abi AbiEntry

	if idx < numImports {
		imp := t.state.bin.Imports[idx]
		callee = t.state.importIdents[idx]
		sig = sigFromFuncType(t.state.bin.Types[imp.TypeIndex])
		abi, _ = Lookup(imp.Module, imp.Field)
	} else {
		defIdx := idx - numImports
		callee = t.state.definedIdents[defIdx]
		sig = sigFromFuncType(t.state.bin.Types[t.state.bin.FuncTypes[defIdx]])
	}

	args := make([]hir.Value, len(sig.Params))
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = t.pop()
	}

	switch abi.Transform {
	case ReturnViaPointer:
		// Synthesize an out-pointer to a scratch struct slot, pass it as an
		// extra trailing argument, then load it back onto the value stack
		// after the call returns.
		structTy := types.Struct(abi.ResultFields...)
		outPtr := hir.Value(t.b.Insert(dialect.Local(diagnostic.Unknown, structTy)).Result(0))
		args = append(args, outPtr)

		op := dialect.Call(diagnostic.Unknown, callee, args, nil)
		t.b.Insert(op)

		// Field addressing within the struct is a codegen-level concern
		// (word layout); the frontend loads the whole struct back as one
		// value and leaves decomposition to later passes.
		v := hir.Value(t.b.Insert(dialect.Load(diagnostic.Unknown, outPtr)).Result(0))
		t.push(v)

	case ListReturn:
		op := dialect.Call(diagnostic.Unknown, callee, args, sig.Results)
		t.b.Insert(op)

		// Keep only the length half of the callee's (length, pointer)
		// result pair.
		t.push(hir.Value(op.Result(0)))

	default:
		op := dialect.Call(diagnostic.Unknown, callee, args, sig.Results)
		t.b.Insert(op)

		for _, res := range op.Results() {
			t.push(hir.Value(res))
		}
	}

	return nil
}

// numericOp handles the large, mechanical family of i32/i64 arithmetic
// and comparison opcodes, each mapping directly to one dialect builder
// call; it reports handled=false for any opcode it does not recognize, so
// the caller's default case can report an honest diagnostic.
func (t *funcTranslator) numericOp(op byte) (handled bool, err error) {
	if t.unreachable() {
		if _, ok := numericOpTable[op]; ok {
			return true, nil
		}

		return false, nil
	}

	entry, ok := numericOpTable[op]
	if !ok {
		return false, nil
	}

	rhs := t.pop()
	lhs := t.pop()

	origType := lhs.Type()

	if entry.unsignedOperands {
		uType := unsignedOf(origType)
		lhs = hir.Value(t.b.Insert(dialect.Cast(diagnostic.Unknown, lhs, uType)).Result(0))
		rhs = hir.Value(t.b.Insert(dialect.Cast(diagnostic.Unknown, rhs, uType)).Result(0))
	}

	result := hir.Value(t.b.Insert(entry.build(lhs, rhs)).Result(0))

	// Arithmetic (not comparison) results carry the unsigned cast type;
	// cast back to the original signed Wasm type so later instructions in
	// the operator stream see the iN type they expect.
	if entry.unsignedOperands && result.Type().Kind() != types.KindI1 {
		result = hir.Value(t.b.Insert(dialect.Cast(diagnostic.Unknown, result, origType)).Result(0))
	}

	t.push(result)

	return true, nil
}

func unsignedOf(ty types.Type) types.Type {
	switch ty.Kind() {
	case types.KindI32:
		return types.U32
	case types.KindI64:
		return types.U64
	default:
		return ty
	}
}

type numericOpEntry struct {
	unsignedOperands bool
	build             func(lhs, rhs hir.Value) *hir.Operation
}

var numericOpTable = buildNumericOpTable()

func buildNumericOpTable() map[byte]numericOpEntry {
	arith := func(b func(diagnostic.Span, hir.Value, hir.Value, hir.Overflow) *hir.Operation) func(hir.Value, hir.Value) *hir.Operation {
		return func(lhs, rhs hir.Value) *hir.Operation { return b(diagnostic.Unknown, lhs, rhs, hir.OverflowWrapping) }
	}
	cmp := func(b func(diagnostic.Span, hir.Value, hir.Value) *hir.Operation) func(hir.Value, hir.Value) *hir.Operation {
		return func(lhs, rhs hir.Value) *hir.Operation { return b(diagnostic.Unknown, lhs, rhs) }
	}

	m := map[byte]numericOpEntry{
		opI32Add: {build: arith(dialect.Add)}, opI64Add: {build: arith(dialect.Add)},
		opI32Sub: {build: arith(dialect.Sub)}, opI64Sub: {build: arith(dialect.Sub)},
		opI32Mul: {build: arith(dialect.Mul)}, opI64Mul: {build: arith(dialect.Mul)},
		opI32DivS: {build: cmp(dialect.Div)}, opI64DivS: {build: cmp(dialect.Div)},
		opI32DivU: {unsignedOperands: true, build: cmp(dialect.Div)},
		opI64DivU: {unsignedOperands: true, build: cmp(dialect.Div)},
		opI32RemS: {build: cmp(dialect.Mod)}, opI64RemS: {build: cmp(dialect.Mod)},
		opI32RemU: {unsignedOperands: true, build: cmp(dialect.Mod)},
		opI64RemU: {unsignedOperands: true, build: cmp(dialect.Mod)},
		opI32And: {build: cmp(dialect.And)}, opI64And: {build: cmp(dialect.And)},
		opI32Or: {build: cmp(dialect.Or)}, opI64Or: {build: cmp(dialect.Or)},
		opI32Xor: {build: cmp(dialect.Xor)}, opI64Xor: {build: cmp(dialect.Xor)},
		opI32Shl: {build: cmp(dialect.Shl)}, opI64Shl: {build: cmp(dialect.Shl)},
		opI32ShrS: {build: cmp(dialect.Shr)}, opI64ShrS: {build: cmp(dialect.Shr)},
		opI32ShrU: {unsignedOperands: true, build: cmp(dialect.Shr)},
		opI64ShrU: {unsignedOperands: true, build: cmp(dialect.Shr)},

		opI32Eq: {build: cmp(dialect.Eq)}, opI64Eq: {build: cmp(dialect.Eq)},
		opI32Ne: {build: cmp(dialect.Ne)}, opI64Ne: {build: cmp(dialect.Ne)},
		opI32LtS: {build: cmp(dialect.Lt)}, opI64LtS: {build: cmp(dialect.Lt)},
		opI32GtS: {build: cmp(dialect.Gt)}, opI64GtS: {build: cmp(dialect.Gt)},
		opI32LeS: {build: cmp(dialect.Le)}, opI64LeS: {build: cmp(dialect.Le)},
		opI32GeS: {build: cmp(dialect.Ge)}, opI64GeS: {build: cmp(dialect.Ge)},
		opI32LtU: {unsignedOperands: true, build: cmp(dialect.Lt)},
		opI64LtU: {unsignedOperands: true, build: cmp(dialect.Lt)},
		opI32GtU: {unsignedOperands: true, build: cmp(dialect.Gt)},
		opI64GtU: {unsignedOperands: true, build: cmp(dialect.Gt)},
		opI32LeU: {unsignedOperands: true, build: cmp(dialect.Le)},
		opI64LeU: {unsignedOperands: true, build: cmp(dialect.Le)},
		opI32GeU: {unsignedOperands: true, build: cmp(dialect.Ge)},
		opI64GeU: {unsignedOperands: true, build: cmp(dialect.Ge)},
	}

	return m
}

// beginConstruct decodes a block/loop/if header and pushes the matching
// control frame, creating whichever HIR blocks the construct's kind needs
// up front.
func (t *funcTranslator) beginConstruct(r *reader, op byte) error {
	sig, err := t.readBlockSig(r)
	if err != nil {
		return err
	}

	if t.unreachable() {
		// Nested construct inside already-dead code: push a frame with no
		// backing blocks so `end`/`else` bookkeeping still balances, but
		// emit nothing -- and, unlike an ordinary diverged arm, it must
		// stay dead across its own `else` too.
		t.ctrl = append(t.ctrl, ctrlFrame{kind: frameKindOf(op), sig: sig, unreachable: true, shadow: true})
		return nil
	}

	switch frameKindOf(op) {
	case frameBlock:
		exit := hir.NewBlock(sig.results...)
		t.fn.Region().AppendBlock(exit)
		t.ctrl = append(t.ctrl, ctrlFrame{kind: frameBlock, sig: sig, exitBlock: exit})

	case frameLoop:
		header := hir.NewBlock(sig.params...)
		t.fn.Region().AppendBlock(header)
		exit := hir.NewBlock(sig.results...)
		t.fn.Region().AppendBlock(exit)

		args := t.popN(len(sig.params))
		t.b.Insert(dialect.Br(diagnostic.Unknown, header, args...))
		t.b.SetBlock(header)

		for _, a := range header.Args() {
			t.push(hir.Value(a))
		}

		t.ctrl = append(t.ctrl, ctrlFrame{kind: frameLoop, sig: sig, continueTarget: header, exitBlock: exit})

	case frameIf:
		cond := t.pop()
		thenBlk := hir.NewBlock()
		t.fn.Region().AppendBlock(thenBlk)
		elseBlk := hir.NewBlock()
		t.fn.Region().AppendBlock(elseBlk)
		exit := hir.NewBlock(sig.results...)
		t.fn.Region().AppendBlock(exit)

		t.b.Insert(dialect.CondBr(diagnostic.Unknown, cond, thenBlk, nil, elseBlk, nil))
		t.b.SetBlock(thenBlk)

		// continueTarget doubles as the else block for an if frame: there
		// is no loop to continue into, so the field is free to reuse.
		t.ctrl = append(t.ctrl, ctrlFrame{kind: frameIf, sig: sig, exitBlock: exit, continueTarget: elseBlk})
	}

	return nil
}

func frameKindOf(op byte) frameKind {
	switch op {
	case opLoop:
		return frameLoop
	case opIf:
		return frameIf
	default:
		return frameBlock
	}
}

func (t *funcTranslator) popN(n int) []hir.Value {
	vs := make([]hir.Value, n)
	for i := n - 1; i >= 0; i-- {
		vs[i] = t.pop()
	}

	return vs
}

// readBlockSig decodes a blocktype: either the single empty-type byte, a
// single value-type result, or (not supported here) a type-section index
// for a multi-value signature.
func (t *funcTranslator) readBlockSig(r *reader) (blockSig, error) {
	b, err := r.byte()
	if err != nil {
		return blockSig{}, err
	}

	if b == blockTypeEmpty {
		return blockSig{}, nil
	}

	if vt, err := decodeValType(b); err == nil {
		return blockSig{results: []types.Type{vt}}, nil
	}

	return blockSig{}, fmt.Errorf("wasmfrontend: multi-value block types are not supported")
}

func (t *funcTranslator) handleElse() error {
	f := t.top()
	if f.kind != frameIf {
		return fmt.Errorf("wasmfrontend: else outside if")
	}

	if f.shadow {
		f.elseReached = true
		return nil
	}

	if !f.unreachable {
		branchToExit(t, f)
	}

	t.b.SetBlock(f.continueTarget)
	f.unreachable = false
	f.elseReached = true

	return nil
}

// branchToExit finalizes the current block (if it is still reachable) by
// branching to f's exit block, forwarding f.sig.results off the value
// stack.
func branchToExit(t *funcTranslator, f *ctrlFrame) {
	n := len(f.sig.results)
	args := t.stack[len(t.stack)-n:]
	t.b.Insert(dialect.Br(diagnostic.Unknown, f.exitBlock, args...))
	t.stack = t.stack[:len(t.stack)-n]
}

func (t *funcTranslator) handleEnd() (bool, error) {
	if len(t.ctrl) == 0 {
		// Function-body-ending `end`: if control fell through to here
		// rather than already terminating via an explicit return, emit the
		// implicit return of whatever is left on the value stack.
		if t.b.Block().Terminator() == nil {
			n := len(t.fn.Signature().Results)
			vs := t.stack[len(t.stack)-n:]
			t.b.Insert(dialect.Ret(diagnostic.Unknown, vs...))
		}

		return true, nil
	}

	f := t.top()

	if f.kind == frameIf && !f.elseReached && !f.shadow {
		// `if` with no `else`: the synthesized (empty) else block always
		// falls through to exit, regardless of whether the then-branch
		// itself was reachable.
		hir.NewBuilder(f.continueTarget).Insert(dialect.Br(diagnostic.Unknown, f.exitBlock))
	}

	if !f.unreachable {
		branchToExit(t, f)
	}

	t.ctrl = t.ctrl[:len(t.ctrl)-1]

	if f.exitBlock != nil {
		t.b.SetBlock(f.exitBlock)

		for _, a := range f.exitBlock.Args() {
			t.push(hir.Value(a))
		}
	}

	return false, nil
}

// branch implements `br`/`br_if` targeting the label at relative depth
// (0 = innermost enclosing construct), forwarding the construct's loop-
// continue or exit arguments off the value stack.
func (t *funcTranslator) branch(depth int, conditional bool) error {
	if t.unreachable() {
		return nil
	}

	f := &t.ctrl[len(t.ctrl)-1-depth]

	var target *hir.Block

	var argCount int

	if f.kind == frameLoop {
		target = f.continueTarget
		argCount = len(f.sig.params)
	} else {
		target = f.exitBlock
		argCount = len(f.sig.results)
	}

	if conditional {
		cond := t.pop()
		args := t.stack[len(t.stack)-argCount:]
		fallthroughBlk := hir.NewBlock()
		t.fn.Region().AppendBlock(fallthroughBlk)
		t.b.Insert(dialect.CondBr(diagnostic.Unknown, cond, target, args, fallthroughBlk, nil))
		t.b.SetBlock(fallthroughBlk)

		return nil
	}

	args := t.stack[len(t.stack)-argCount:]
	t.b.Insert(dialect.Br(diagnostic.Unknown, target, args...))
	t.markUnreachable()

	return nil
}
