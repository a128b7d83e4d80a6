package hirtext

import (
	"fmt"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// ParseError reports a syntax error at a specific offset, matching the
// teacher's own SyntaxError shape (pkg/sexp/error.go) so parse failures
// plug into component K the same way sexp failures do in the teacher.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hirtext: %d: %s", e.Offset, e.Message)
}

// Parser consumes a token stream produced by a Lexer and builds an
// hir.Module. It covers the unstructured-CFG subset of the grammar: module
// declarations, global/extern declarations, functions with multiple
// blocks, and the straight-line/branching instruction forms the
// WebAssembly frontend and pkg/rewrite operate over before
// CFGToStructured introduces nested scf.if/scf.while regions (those are an
// internal, mid-pipeline representation this textual form does not need
// to round-trip -- see DESIGN.md).
type Parser struct {
	lex  *Lexer
	file string
	// values maps this function's in-scope %name tokens (block arguments
	// and instruction results) to their hir.Value, reset per function.
	values map[string]hir.Value
	// blocks maps this function's label names to their hir.Block, reset
	// per function. Labels are registered as blocks are declared, so a
	// branch can name only a block declared earlier in the function; a
	// forward reference fails as an undefined block.
	blocks map[string]*hir.Block
}

// NewParser constructs a Parser reading src, attributing spans to file.
func NewParser(file, src string) *Parser {
	return &Parser{lex: NewLexer(src), file: file}
}

// Parse parses a full module from the Parser's source.
func Parse(file, src string) (m *hir.Module, err error) {
	p := NewParser(file, src)

	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}

			panic(r)
		}
	}()

	return p.parseModule(), nil
}

func (p *Parser) span(tok Token) diagnostic.Span {
	return diagnostic.NewSpan(p.file, tok.Start, tok.End)
}

func (p *Parser) fail(tok Token, format string, args ...any) {
	panic(&ParseError{Offset: tok.Start, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(k TokenKind) Token {
	tok := p.lex.Next()
	if tok.Kind != k {
		p.fail(tok, "expected %s, got %s", k, tok.Kind)
	}

	return tok
}

func (p *Parser) expectIdent(text string) Token {
	tok := p.expect(TokIdent)
	if tok.Text != text {
		p.fail(tok, "expected %q, got %q", text, tok.Text)
	}

	return tok
}

func (p *Parser) at(k TokenKind) bool {
	return p.lex.Peek().Kind == k
}

func (p *Parser) atIdent(text string) bool {
	t := p.lex.Peek()
	return t.Kind == TokIdent && t.Text == text
}

func (p *Parser) parseModule() *hir.Module {
	p.expectIdent("module")
	name := p.expect(TokIdent)
	m := hir.NewModule(hir.NewIdent(name.Text, p.span(name)))

	p.expect(TokLBrace)

	for !p.at(TokRBrace) {
		switch {
		case p.atIdent("global"):
			p.parseGlobal(m)
		case p.atIdent("extern"):
			p.parseExtern(m)
		default:
			p.parseFunction(m)
		}
	}

	p.expect(TokRBrace)

	return m
}

func (p *Parser) parseGlobal(m *hir.Module) {
	p.expectIdent("global")
	p.expect(TokAt)
	name := p.expect(TokIdent)
	p.expect(TokColon)
	t := p.parseType()

	m.AddGlobal(hir.GlobalVar{Name: hir.NewIdent(name.Text, p.span(name)), Type: t})
}

func (p *Parser) parseExtern(m *hir.Module) {
	p.expectIdent("extern")
	p.expect(TokAt)
	name := p.expect(TokIdent)

	mod, fn := splitScopedName(name.Text)

	params := p.parseTypeList(TokLParen, TokRParen)

	var results []types.Type
	if p.at(TokArrow) {
		p.lex.Next()
		results = p.parseTypeListBare()
	}

	m.AddImport(hir.Import{
		Callee: hir.NewFunctionIdent(hir.NewIdent(mod, p.span(name)), hir.NewIdent(fn, p.span(name))),
		Sig:    hir.Signature{Params: paramsFromTypes(params), Results: results},
		CC:     hir.CallConvFast,
	})
}

func paramsFromTypes(ts []types.Type) []hir.Param {
	out := make([]hir.Param, len(ts))
	for i, t := range ts {
		out[i] = hir.Param{Type: t}
	}

	return out
}

// parseTypeList parses "(T, T, ...)" delimited by open/close.
func (p *Parser) parseTypeList(open, close TokenKind) []types.Type {
	p.expect(open)

	var out []types.Type
	for !p.at(close) {
		out = append(out, p.parseType())
		if p.at(TokComma) {
			p.lex.Next()
		}
	}

	p.expect(close)

	return out
}

// parseTypeListBare parses a comma-separated type list with no
// surrounding delimiters (the function-result-list position).
func (p *Parser) parseTypeListBare() []types.Type {
	var out []types.Type

	out = append(out, p.parseType())
	for p.at(TokComma) {
		p.lex.Next()
		out = append(out, p.parseType())
	}

	return out
}

var primitiveTypes = map[string]types.Type{
	"unit": types.Unit, "never": types.Never,
	"i1": types.I1, "i8": types.I8, "i16": types.I16, "i32": types.I32, "i64": types.I64, "i128": types.I128,
	"u8": types.U8, "u16": types.U16, "u32": types.U32, "u64": types.U64, "u128": types.U128, "u256": types.U256,
	"isize": types.Isize, "usize": types.Usize, "f64": types.F64, "felt": types.Felt,
}

func (p *Parser) parseType() types.Type {
	tok := p.expect(TokIdent)

	if t, ok := primitiveTypes[tok.Text]; ok {
		return t
	}

	p.fail(tok, "unknown type %q (pointer/aggregate types are not part of the textual round-trip subset)", tok.Text)

	return types.Unit
}

func (p *Parser) parseFunction(m *hir.Module) {
	vis := hir.VisibilityPrivate
	if p.atIdent("pub") {
		p.lex.Next()
		vis = hir.VisibilityPublic
	}

	cc := hir.CallConvFast
	if p.atIdent("cc") {
		p.lex.Next()
		p.expect(TokLParen)
		ccName := p.expect(TokIdent)
		p.expect(TokRParen)
		cc = parseCallConv(ccName.Text)
	}

	p.expectIdent("fn")
	p.expect(TokAt)
	name := p.expect(TokIdent)
	modName, fnName := splitScopedName(name.Text)

	p.expect(TokLParen)

	var paramNames []string
	var paramTypes []types.Type

	for !p.at(TokRParen) {
		pname := p.expect(TokIdent)
		p.expect(TokColon)
		pt := p.parseType()
		paramNames = append(paramNames, pname.Text)
		paramTypes = append(paramTypes, pt)

		if p.at(TokComma) {
			p.lex.Next()
		}
	}

	p.expect(TokRParen)

	var results []types.Type
	if p.at(TokArrow) {
		p.lex.Next()
		results = p.parseTypeListBare()
	}

	params := make([]hir.Param, len(paramNames))
	for i, n := range paramNames {
		params[i] = hir.Param{Name: hir.NewIdent(n, diagnostic.Unknown), Type: paramTypes[i]}
	}

	fn := hir.NewFunc(
		hir.NewFunctionIdent(hir.NewIdent(modName, p.span(name)), hir.NewIdent(fnName, p.span(name))),
		hir.Signature{Params: params, Results: results}, cc, hir.LinkageExternal, vis, p.span(name))

	p.values = make(map[string]hir.Value)
	p.blocks = make(map[string]*hir.Block)

	for i, n := range paramNames {
		p.values[n] = fn.Params()[i]
	}

	p.expect(TokLBrace)

	type pendingBlock struct {
		name string
		blk  *hir.Block
	}

	var order []pendingBlock
	first := true

	for !p.at(TokRBrace) {
		label := p.expect(TokIdent)

		var argTypes []types.Type
		var argNames []string

		if p.at(TokLParen) {
			p.lex.Next()

			for !p.at(TokRParen) {
				an := p.expect(TokIdent)
				p.expect(TokColon)
				at := p.parseType()
				argNames = append(argNames, an.Text)
				argTypes = append(argTypes, at)

				if p.at(TokComma) {
					p.lex.Next()
				}
			}

			p.expect(TokRParen)
		}

		p.expect(TokColon)

		var blk *hir.Block
		if first {
			blk = fn.Entry()
			first = false
		} else {
			blk = hir.NewBlock(argTypes...)
			fn.Region().AppendBlock(blk)
		}

		p.blocks[label.Text] = blk
		order = append(order, pendingBlock{label.Text, blk})

		for i, an := range argNames {
			p.values[an] = blk.Args()[i]
		}

		b := hir.NewBuilder(blk)

		// Every instruction line ends in ';', and a block always ends in
		// exactly one terminator, so this loop -- unlike scanning for a
		// closing delimiter -- never needs to look past the line it is
		// currently parsing to find the block's extent.
		for !p.parseInstruction(b) {
		}
	}

	p.expect(TokRBrace)

	m.AddFunc(fn)
}

func parseCallConv(s string) hir.CallConv {
	switch s {
	case "fast":
		return hir.CallConvFast
	case "C":
		return hir.CallConvSystemV
	case "wasm":
		return hir.CallConvWasm
	case "kernel":
		return hir.CallConvKernel
	default:
		return hir.CallConvFast
	}
}

// parseInstruction parses one ';'-terminated instruction line and appends
// it to b's block, registering any result under its %name. It reports
// whether the parsed instruction was a block terminator, ending the
// enclosing block.
func (p *Parser) parseInstruction(b *hir.Builder) bool {
	if p.atIdent("cf.ret") || p.atIdent("cf.br") || p.atIdent("cf.cond_br") || p.atIdent("cf.unreachable") {
		p.parseTerminator(b)
		p.expect(TokSemi)

		return true
	}

	if p.atIdent("memory.store") {
		p.lex.Next()
		ptr := p.parseOperand()
		p.expect(TokComma)
		val := p.parseOperand()
		p.expect(TokSemi)
		b.Insert(dialect.Store(diagnostic.Unknown, ptr, val))

		return false
	}

	if p.atIdent("felt.assert_is_zero") {
		opTok := p.lex.Next()
		v := p.parseOperand()
		p.expect(TokSemi)
		b.Insert(dialect.AssertFeltIsZero(p.span(opTok), v))

		return false
	}

	resultName := p.expect(TokIdent)
	p.expect(TokEquals)

	opTok := p.expect(TokIdent)

	var operands []hir.Value
	for !p.at(TokColon) {
		v := p.parseOperand()
		operands = append(operands, v)

		if p.at(TokComma) {
			p.lex.Next()
		}
	}

	p.expect(TokColon)
	resultType := p.parseType()
	p.expect(TokSemi)

	op := buildGenericOp(opTok.Text, p.span(opTok), operands, resultType)
	b.Insert(op)

	if len(op.Results()) > 0 {
		p.values[resultName.Text] = hir.Value(op.Result(0))
	}

	return false
}

func (p *Parser) parseOperand() hir.Value {
	if p.at(TokIdent) {
		tok := p.lex.Next()

		if v, ok := p.values[tok.Text]; ok {
			return v
		}

		p.fail(tok, "undefined value %%%s", tok.Text)
	}

	p.fail(p.lex.Peek(), "expected operand")

	return nil
}

func (p *Parser) parseTerminator(b *hir.Builder) {
	opTok := p.expect(TokIdent)

	switch opTok.Text {
	case "cf.ret":
		var vs []hir.Value
		for !p.at(TokSemi) {
			vs = append(vs, p.parseOperand())
			if p.at(TokComma) {
				p.lex.Next()
			}
		}

		b.Insert(dialect.Ret(p.span(opTok), vs...))

	case "cf.unreachable":
		b.Insert(dialect.Unreachable(p.span(opTok)))

	case "cf.br":
		target, args := p.parseBlockRef()
		b.Insert(dialect.Br(p.span(opTok), target, args...))

	case "cf.cond_br":
		cond := p.parseOperand()
		p.expect(TokComma)
		thenTarget, thenArgs := p.parseBlockRef()
		p.expect(TokComma)
		elseTarget, elseArgs := p.parseBlockRef()

		b.Insert(dialect.CondBr(p.span(opTok), cond, thenTarget, thenArgs, elseTarget, elseArgs))
	}
}

func (p *Parser) parseBlockRef() (*hir.Block, []hir.Value) {
	label := p.expect(TokIdent)

	blk, ok := p.blocks[label.Text]
	if !ok {
		p.fail(label, "undefined block %s", label.Text)
	}

	var args []hir.Value
	if p.at(TokLParen) {
		p.lex.Next()

		for !p.at(TokRParen) {
			args = append(args, p.parseOperand())
			if p.at(TokComma) {
				p.lex.Next()
			}
		}

		p.expect(TokRParen)
	}

	return blk, args
}

// buildGenericOp constructs an operation of the given opcode name directly
// (bypassing pkg/hir/dialect's typed constructors, which each fix their
// own result type/attribute shape) since the textual form carries the
// result type explicitly and dialect-specific attributes (overflow mode,
// constant payload) are out of scope for the round-trip subset this parser
// covers -- arithmetic ops parsed this way default to OverflowWrapping,
// matching Wasm's iN.add semantics.
func buildGenericOp(name string, span diagnostic.Span, operands []hir.Value, resultType types.Type) *hir.Operation {
	var op *hir.Operation
	if resultType.Equal(types.Unit) {
		op = hir.NewOperation(name, span)
	} else {
		op = hir.NewOperation(name, span, resultType)
	}

	for _, o := range operands {
		op.AddOperand(o)
	}

	return op
}
