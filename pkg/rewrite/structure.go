package rewrite

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/analysis"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// CFGToStructured rewrites region's single function body from a flat CFG
// into scf.if/scf.while structured control flow. It assumes
// the CFG has already been normalized by SplitCriticalEdges, Treeify and
// InlineBlocks: every block other than a natural-loop header has at most
// two predecessors, so every join the walk encounters is either a loop
// header or the unique merge point of an if/else the walk itself just
// opened.
//
// The algorithm walks forward from the entry block. A conditional branch
// whose two arms reconverge at a block M is replaced by an scf.if whose
// results are M's (now unused) block arguments; a block that heads a
// natural loop is replaced by an scf.while whose before region is the
// header itself (reused verbatim, since its own condition computation
// never needs to leave the header's SSA scope) and whose after region is
// the loop body. Blocks are consumed (their ops relocated, then erased)
// as the walk passes through them.
func CFGToStructured(region *hir.Region) {
	cfg := analysis.BuildCFG(region)
	dom := analysis.BuildDomTree(cfg)
	loops := analysis.Loops(cfg, dom)

	s := &structurer{region: region, cfg: cfg, dom: dom, loops: loops}

	entry := cfg.Entry()
	if entry == nil {
		return
	}

	s.process(entry, entry, nil, blockArgValues(entry))
}

type structurer struct {
	region *hir.Region
	cfg    *analysis.CFG
	dom    *analysis.DomTree
	loops  map[*hir.Block]*analysis.Loop
}

func (s *structurer) isHeader(b *hir.Block) bool {
	l, ok := s.loops[b]
	return ok && l.Header == b
}

// process walks forward from cur, relocating straight-line operations and
// synthesized If/While ops into dst, until it reaches stopAt or a real
// function terminator (ret/unreachable). If it reaches stopAt via an
// unconditional branch (or an if whose merge is exactly stopAt), it
// returns the values that branch forwarded into stopAt's block
// arguments -- the caller uses these to build the scf.yield that closes
// off an if-arm or a while's after-region. initial is returned verbatim
// if cur already equals stopAt on entry (an empty arm).
func (s *structurer) process(cur, dst *hir.Block, stopAt *hir.Block, initial []hir.Value) []hir.Value {
	for {
		if cur == stopAt {
			return initial
		}

		if s.isHeader(cur) {
			next, nextInitial := s.emitWhile(cur, initial, dst)
			cur, initial = next, nextInitial

			continue
		}

		moveStraightLineOps(cur, dst)

		term := cur.Terminator()

		switch term.Name {
		case dialect.OpCondBr:
			merge, forwarded, stopped := s.emitIf(term, dst, stopAt)
			finishBlock(s.region, cur, dst)

			if stopped {
				return forwarded
			}

			cur, initial = merge, nil

		case dialect.OpBr:
			succ := term.Successors()[0]
			target := succ.Block
			args := succ.ForwardedValues()

			term.Erase()
			finishBlock(s.region, cur, dst)

			if target == stopAt {
				return args
			}

			cur, initial = target, args

		default:
			// A real function terminator (ret/unreachable): move it into
			// dst and stop. stopAt is not expected to be reachable past
			// this point since every live path out of this region must
			// converge there by construction; if it doesn't (one arm of
			// an if returns while the other falls through), there is
			// nothing further to forward.
			moveTerminatorOnly(cur, dst)
			finishBlock(s.region, cur, dst)

			return nil
		}
	}
}

// emitIf converts a conditional-branch terminator into an scf.if. It
// returns the block where control continues after the if (merge), or,
// when merge is exactly the enclosing call's stopAt, reports stopped=true
// along with the values to forward into stopAt.
func (s *structurer) emitIf(term *hir.Operation, dst *hir.Block, stopAt *hir.Block) (merge *hir.Block, forwarded []hir.Value, stopped bool) {
	span := term.Span()
	cond := term.Operands()[0].Value()

	thenSucc := term.Successors()[0]
	elseSucc := term.Successors()[1]

	merge = s.findMerge(term.Parent())

	var resultTypes []types.Type
	if merge != nil {
		resultTypes = blockArgTypes(merge)
	}

	ifOp := hir.NewOperation(dialect.OpIf, span, resultTypes...)
	ifOp.AddOperand(cond)
	thenRegion := ifOp.AddRegion(hir.RegionSSA)
	elseRegion := ifOp.AddRegion(hir.RegionSSA)

	thenArgs := s.emitArm(thenSucc, merge, thenRegion)
	elseArgs := s.emitArm(elseSucc, merge, elseRegion)

	if thenArgs != nil {
		hir.NewBuilder(thenRegion.Entry()).Insert(dialect.Yield(span, thenArgs...))
	}

	if elseArgs != nil {
		hir.NewBuilder(elseRegion.Entry()).Insert(dialect.Yield(span, elseArgs...))
	}

	hir.NewBuilder(dst).Insert(ifOp)
	term.Erase()

	if merge == nil {
		// Both arms end in their own real terminator; nothing follows.
		return nil, nil, true
	}

	if merge == stopAt {
		out := make([]hir.Value, len(ifOp.Results()))
		for i, r := range ifOp.Results() {
			out[i] = hir.Value(r)
		}

		return nil, out, true
	}

	for i, a := range merge.Args() {
		hir.ReplaceAllUsesWith(a, hir.Value(ifOp.Result(i)))
	}

	return merge, nil, false
}

// emitArm builds one arm (then or else) of an scf.if: a fresh entry block
// in region, populated by walking forward from succ.Block to merge. It
// returns the values to yield, or nil if the arm ends in its own real
// terminator (merge == nil) rather than reconverging.
func (s *structurer) emitArm(succ *hir.Successor, merge *hir.Block, region *hir.Region) []hir.Value {
	armEntry := hir.NewBlock()
	region.AppendBlock(armEntry)

	if merge == nil {
		s.process(succ.Block, armEntry, nil, nil)
		return nil
	}

	return s.process(succ.Block, armEntry, merge, succ.ForwardedValues())
}

// emitWhile converts the natural loop headed by header into an scf.while.
// initial is the set of values that, before this call, fed header's block
// arguments (the loop's initial carried state). It returns the block
// where control continues after the loop (the loop's exit target) and
// the values forwarded into it.
func (s *structurer) emitWhile(header *hir.Block, initial []hir.Value, dst *hir.Block) (*hir.Block, []hir.Value) {
	loop := s.loops[header]
	span := header.Terminator().Span()

	carriedTypes := blockArgTypes(header)

	whileOp := hir.NewOperation(dialect.OpWhile, span, carriedTypes...)
	for _, v := range initial {
		whileOp.AddOperand(v)
	}

	hir.NewBuilder(dst).Insert(whileOp)

	beforeRegion := whileOp.AddRegion(hir.RegionSSA)
	afterRegion := whileOp.AddRegion(hir.RegionSSA)

	afterEntry := hir.NewBlock(carriedTypes...)
	afterRegion.AppendBlock(afterEntry)

	// Every use of header's own args from a block other than header
	// itself belongs logically to the loop body, not the condition test;
	// redirect those to the after-region's fresh args before relocating
	// anything. Header's own uses (the condition computation) are left
	// untouched and travel with header into beforeRegion below.
	for i, a := range header.Args() {
		newV := hir.Value(afterEntry.Args()[i])

		for _, u := range hir.Uses(a) {
			if u.Owner().Parent() == header {
				continue
			}

			if loop.Blocks[u.Owner().Parent()] {
				u.Replace(newV)
			}
		}
	}

	term := header.Terminator()
	cond := term.Operands()[0].Value()

	succs := term.Successors()

	var loopSucc, exitSucc *hir.Successor
	switch {
	case loop.Blocks[succs[0].Block] && !loop.Blocks[succs[1].Block]:
		loopSucc, exitSucc = succs[0], succs[1]
	case loop.Blocks[succs[1].Block] && !loop.Blocks[succs[0].Block]:
		loopSucc, exitSucc = succs[1], succs[0]
	default:
		panic("rewrite: loop header must have exactly one in-loop and one exit successor")
	}

	loopTarget := loopSucc.Block
	loopArgs := remapToAfter(header, afterEntry, loopSucc.ForwardedValues())

	exitTarget := exitSucc.Block
	exitArgs := exitSucc.ForwardedValues()

	term.Erase()

	hir.MoveBlockToRegion(header, beforeRegion)
	hir.NewBuilder(header).Insert(dialect.Condition(span, cond))

	var backArgs []hir.Value
	if loopTarget == header {
		backArgs = loopArgs
	} else {
		backArgs = remapToAfter(header, afterEntry, s.process(loopTarget, afterEntry, header, loopArgs))
	}

	hir.NewBuilder(afterEntry).Insert(dialect.Yield(span, backArgs...))

	// Any use of header's args surviving outside the loop (everything
	// that wasn't the condition test, now relocated with header into
	// beforeRegion, and wasn't redirected to the after-region above) is a
	// post-loop consumer; it observes the loop's final carried values.
	for i, a := range header.Args() {
		newV := hir.Value(whileOp.Result(i))

		for _, u := range hir.Uses(a) {
			if u.Owner().Parent() == header {
				continue
			}

			u.Replace(newV)
		}
	}

	return exitTarget, exitArgs
}

// remapToAfter rewrites any value in vs that is one of header's own block
// arguments to the corresponding after-region argument instead. Needed
// because a successor's forwarded-value list is captured by value, not by
// use, so the use-scoped redirection in emitWhile does not reach it.
func remapToAfter(header, afterEntry *hir.Block, vs []hir.Value) []hir.Value {
	out := make([]hir.Value, len(vs))

	for i, v := range vs {
		out[i] = v

		for j, a := range header.Args() {
			if hir.Value(a) == v {
				out[i] = hir.Value(afterEntry.Args()[j])
				break
			}
		}
	}

	return out
}

// findMerge returns the nearest block reachable from h's successors that
// has more than one predecessor and is not itself a loop header -- the
// unique if/else reconvergence point guaranteed by a prior Treeify pass --
// or nil if neither arm ever reconverges (one or both end in ret /
// unreachable).
func (s *structurer) findMerge(h *hir.Block) *hir.Block {
	visited := map[*hir.Block]bool{h: true}
	queue := []*hir.Block{h}

	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]

		for _, e := range s.cfg.Successors(b) {
			nb := e.Block
			if visited[nb] {
				continue
			}

			visited[nb] = true

			if len(s.cfg.Predecessors(nb)) > 1 && !s.isHeader(nb) {
				return nb
			}

			queue = append(queue, nb)
		}
	}

	return nil
}

func blockArgTypes(b *hir.Block) []types.Type {
	out := make([]types.Type, len(b.Args()))
	for i, a := range b.Args() {
		out[i] = a.Type()
	}

	return out
}

func blockArgValues(b *hir.Block) []hir.Value {
	out := make([]hir.Value, len(b.Args()))
	for i, a := range b.Args() {
		out[i] = hir.Value(a)
	}

	return out
}

func moveStraightLineOps(b, dst *hir.Block) {
	if b == dst {
		return
	}

	b.MoveBodyInto(dst)
}

func moveTerminatorOnly(b, dst *hir.Block) {
	if b == dst {
		return
	}

	b.MoveOpsInto(dst)
}

func finishBlock(region *hir.Region, b, dst *hir.Block) {
	if b == dst {
		return
	}

	if len(b.Ops()) == 0 {
		region.EraseBlock(b)
	}
}
