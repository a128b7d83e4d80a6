package rewrite_test

import (
	"testing"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/analysis"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir/dialect"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/rewrite"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

func newFn(t *testing.T, sig hir.Signature) *hir.Func {
	t.Helper()

	return hir.NewFunc(
		hir.NewFunctionIdent(hir.NewIdent("m", diagnostic.Unknown), hir.NewIdent("f", diagnostic.Unknown)),
		sig, hir.CallConvFast, hir.LinkageInternal, hir.VisibilityPublic, diagnostic.Unknown)
}

// buildDiamond builds entry -> {thenB, elseB} -> merge -> ret, with merge
// taking one felt argument fed the constant 1 from thenB and 0 from elseB.
func buildDiamond(t *testing.T) (*hir.Region, *hir.Block, *hir.Block, *hir.Block, *hir.Block) {
	t.Helper()

	sig := hir.Signature{
		Params:  []hir.Param{{Name: hir.NewIdent("cond", diagnostic.Unknown), Type: types.I1}},
		Results: []types.Type{types.Felt},
	}
	fn := newFn(t, sig)

	region := fn.Region()
	entry := fn.Entry()
	thenB := hir.NewBlock()
	elseB := hir.NewBlock()
	merge := hir.NewBlock(types.Felt)

	region.AppendBlock(thenB)
	region.AppendBlock(elseB)
	region.AppendBlock(merge)

	cond := fn.Params()[0]

	hir.NewBuilder(entry).Insert(dialect.CondBr(diagnostic.Unknown, cond, thenB, nil, elseB, nil))

	one := hir.NewBuilder(thenB).Insert(dialect.Constant(diagnostic.Unknown, types.Felt, types.NewFelt(1)))
	hir.NewBuilder(thenB).Insert(dialect.Br(diagnostic.Unknown, merge, one.Result(0)))

	zero := hir.NewBuilder(elseB).Insert(dialect.Constant(diagnostic.Unknown, types.Felt, types.NewFelt(0)))
	hir.NewBuilder(elseB).Insert(dialect.Br(diagnostic.Unknown, merge, zero.Result(0)))

	hir.NewBuilder(merge).Insert(dialect.Ret(diagnostic.Unknown, merge.Args()[0]))

	return region, entry, thenB, elseB, merge
}

// buildLoop builds entry -> header(felt) -(cond)-> {latch, exit}; latch ->
// header (back-edge); exit -> ret header.Args()[0].
func buildLoop(t *testing.T) (*hir.Region, *hir.Block, *hir.Block, *hir.Block, *hir.Block) {
	t.Helper()

	sig := hir.Signature{Results: []types.Type{types.Felt}}
	fn := newFn(t, sig)

	region := fn.Region()
	entry := fn.Entry()
	header := hir.NewBlock(types.Felt)
	latch := hir.NewBlock()
	exit := hir.NewBlock()

	region.AppendBlock(header)
	region.AppendBlock(latch)
	region.AppendBlock(exit)

	zero := hir.NewBuilder(entry).Insert(dialect.Constant(diagnostic.Unknown, types.Felt, types.NewFelt(0)))
	hir.NewBuilder(entry).Insert(dialect.Br(diagnostic.Unknown, header, zero.Result(0)))

	condOp := hir.NewBuilder(header).Insert(dialect.Constant(diagnostic.Unknown, types.I1, false))
	hir.NewBuilder(header).Insert(dialect.CondBr(diagnostic.Unknown, condOp.Result(0), latch, nil, exit, nil))

	one := hir.NewBuilder(latch).Insert(dialect.Constant(diagnostic.Unknown, types.Felt, types.NewFelt(1)))
	hir.NewBuilder(latch).Insert(dialect.Br(diagnostic.Unknown, header, one.Result(0)))

	hir.NewBuilder(exit).Insert(dialect.Ret(diagnostic.Unknown, header.Args()[0]))

	return region, entry, header, latch, exit
}

func TestDropRedundantBlockArguments(t *testing.T) {
	region, _, _, _, merge := buildDiamond(t)

	// merge's single argument is fed 1 from thenB and 0 from elseB: not
	// redundant, so a first pass must leave it alone.
	if rewrite.DropRedundantBlockArguments(region) {
		t.Fatalf("expected no change: merge's argument is not redundant")
	}

	if len(merge.Args()) != 1 {
		t.Fatalf("expected merge to keep its argument")
	}
}

func TestDropRedundantBlockArgumentsEliminatesAgreeingArg(t *testing.T) {
	sig := hir.Signature{Results: []types.Type{types.Felt}}
	fn := newFn(t, sig)
	region := fn.Region()
	entry := fn.Entry()

	thenB := hir.NewBlock()
	elseB := hir.NewBlock()
	merge := hir.NewBlock(types.Felt)
	region.AppendBlock(thenB)
	region.AppendBlock(elseB)
	region.AppendBlock(merge)

	condOp := hir.NewBuilder(entry).Insert(dialect.Constant(diagnostic.Unknown, types.I1, true))
	hir.NewBuilder(entry).Insert(dialect.CondBr(diagnostic.Unknown, condOp.Result(0), thenB, nil, elseB, nil))

	same := hir.NewBuilder(thenB).Insert(dialect.Constant(diagnostic.Unknown, types.Felt, types.NewFelt(7)))
	hir.NewBuilder(thenB).Insert(dialect.Br(diagnostic.Unknown, merge, same.Result(0)))
	hir.NewBuilder(elseB).Insert(dialect.Br(diagnostic.Unknown, merge, same.Result(0)))

	hir.NewBuilder(merge).Insert(dialect.Ret(diagnostic.Unknown, merge.Args()[0]))

	if !rewrite.DropRedundantBlockArguments(region) {
		t.Fatalf("expected the agreeing argument to be dropped")
	}

	if len(merge.Args()) != 0 {
		t.Fatalf("expected merge to have zero arguments after drop, got %d", len(merge.Args()))
	}
}

func TestSplitCriticalEdges(t *testing.T) {
	region, entry, _, _, merge := buildDiamond(t)

	if rewrite.SplitCriticalEdges(region) {
		t.Fatalf("diamond has no critical edge (merge has only single-pred sources)")
	}

	// Make elseB itself branch conditionally too, so the elseB->merge
	// edge becomes critical (elseB has >1 successor, merge has >1 pred).
	elseB := entry.Terminator().Successors()[1].Block
	other := hir.NewBlock()
	region.AppendBlock(other)

	elseTerm := elseB.Terminator()
	args := elseTerm.Successors()[0].ForwardedValues()
	elseTerm.Erase()
	hir.NewBuilder(elseB).Insert(dialect.CondBr(diagnostic.Unknown, args[0], merge, args, other, nil))
	hir.NewBuilder(other).Insert(dialect.Ret(diagnostic.Unknown, args[0]))

	before := len(region.Blocks())

	if !rewrite.SplitCriticalEdges(region) {
		t.Fatalf("expected the elseB->merge edge to be split")
	}

	if len(region.Blocks()) != before+1 {
		t.Fatalf("expected exactly one new block, had %d now have %d", before, len(region.Blocks()))
	}

	cfg := analysis.BuildCFG(region)
	for _, b := range cfg.Blocks() {
		succs := cfg.Successors(b)
		if len(succs) < 2 {
			continue
		}

		for _, s := range succs {
			if len(cfg.Predecessors(s.Block)) > 1 {
				t.Fatalf("critical edge survived split-critical-edges")
			}
		}
	}
}

func TestInlineBlocks(t *testing.T) {
	sig := hir.Signature{Results: []types.Type{types.Felt}}
	fn := newFn(t, sig)
	region := fn.Region()
	entry := fn.Entry()

	tail := hir.NewBlock(types.Felt)
	region.AppendBlock(tail)

	c := hir.NewBuilder(entry).Insert(dialect.Constant(diagnostic.Unknown, types.Felt, types.NewFelt(3)))
	hir.NewBuilder(entry).Insert(dialect.Br(diagnostic.Unknown, tail, c.Result(0)))
	hir.NewBuilder(tail).Insert(dialect.Ret(diagnostic.Unknown, tail.Args()[0]))

	if !rewrite.InlineBlocks(region) {
		t.Fatalf("expected tail to be inlined into entry")
	}

	if len(region.Blocks()) != 1 {
		t.Fatalf("expected a single surviving block, got %d", len(region.Blocks()))
	}

	term := entry.Terminator()
	if term.Name != dialect.OpRet {
		t.Fatalf("expected entry's terminator to now be ret, got %s", term.Name)
	}
}

func TestCFGToStructuredDiamond(t *testing.T) {
	region, entry, _, _, _ := buildDiamond(t)

	rewrite.SplitCriticalEdges(region)
	rewrite.Treeify(region)
	rewrite.InlineBlocks(region)
	rewrite.CFGToStructured(region)

	if len(region.Blocks()) != 1 {
		t.Fatalf("expected structuring to collapse the diamond into entry alone, got %d blocks", len(region.Blocks()))
	}

	ops := entry.Ops()
	if len(ops) < 2 {
		t.Fatalf("expected at least an scf.if and a ret, got %d ops", len(ops))
	}

	ifOp := ops[len(ops)-2]
	if ifOp.Name != dialect.OpIf {
		t.Fatalf("expected the second-to-last op to be scf.if, got %s", ifOp.Name)
	}

	if len(ifOp.Results()) != 1 {
		t.Fatalf("expected the if to produce merge's one carried value, got %d results", len(ifOp.Results()))
	}

	retOp := ops[len(ops)-1]
	if retOp.Name != dialect.OpRet {
		t.Fatalf("expected the last op to be ret, got %s", retOp.Name)
	}

	if retOp.Operands()[0].Value() != hir.Value(ifOp.Result(0)) {
		t.Fatalf("expected ret to consume the if's result")
	}
}

func TestCFGToStructuredLoop(t *testing.T) {
	region, entry, _, _, _ := buildLoop(t)

	rewrite.SplitCriticalEdges(region)
	rewrite.Treeify(region)
	rewrite.InlineBlocks(region)
	rewrite.CFGToStructured(region)

	var whileOp *hir.Operation
	for _, op := range entry.Ops() {
		if op.Name == dialect.OpWhile {
			whileOp = op
		}
	}

	if whileOp == nil {
		t.Fatalf("expected an scf.while op in the structured entry block")
	}

	if len(whileOp.Regions()) != 2 {
		t.Fatalf("expected scf.while to have before/after regions, got %d", len(whileOp.Regions()))
	}

	before := whileOp.Regions()[0].Entry()
	beforeTerm := before.Terminator()
	if beforeTerm.Name != dialect.OpCondition {
		t.Fatalf("expected before-region to end in scf.condition, got %s", beforeTerm.Name)
	}

	after := whileOp.Regions()[1].Entry()
	afterTerm := after.Terminator()
	if afterTerm.Name != dialect.OpYield {
		t.Fatalf("expected after-region to end in scf.yield, got %s", afterTerm.Name)
	}

	retOp := entry.Terminator()
	if retOp.Name != dialect.OpRet {
		t.Fatalf("expected entry to still end in ret after the loop, got %s", retOp.Name)
	}

	if retOp.Operands()[0].Value() != hir.Value(whileOp.Result(0)) {
		t.Fatalf("expected ret to consume the while's final carried value")
	}
}

func TestApplySpills(t *testing.T) {
	sig := hir.Signature{Results: []types.Type{types.Felt}}
	fn := newFn(t, sig)
	entry := fn.Entry()

	a := hir.NewBuilder(entry).Insert(dialect.Constant(diagnostic.Unknown, types.Felt, types.NewFelt(5)))
	retOp := hir.NewBuilder(entry).Insert(dialect.Ret(diagnostic.Unknown, hir.Value(a.Result(0))))

	spills := []rewrite.Spill{{
		Value:   hir.Value(a.Result(0)),
		After:   a,
		Reloads: []*hir.OpOperand{retOp.Operands()[0]},
	}}

	if !rewrite.ApplySpills(spills) {
		t.Fatalf("expected the spill to be applied")
	}

	var sawLocal, sawStore, sawLoad bool
	for _, op := range entry.Ops() {
		switch op.Name {
		case dialect.OpLocal:
			sawLocal = true
		case dialect.OpStore:
			sawStore = true
		case dialect.OpLoad:
			sawLoad = true
		}
	}

	if !sawLocal || !sawStore || !sawLoad {
		t.Fatalf("expected hir.local/memory.store/memory.load to be inserted, got local=%v store=%v load=%v", sawLocal, sawStore, sawLoad)
	}

	if retOp.Operands()[0].Value() == hir.Value(a.Result(0)) {
		t.Fatalf("expected ret's operand to be redirected through the reload")
	}
}
