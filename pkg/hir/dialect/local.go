package dialect

import (
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

func init() {
	hir.RegisterOp(OpLocal, hir.Traits(), nil)
}

// Local allocates a fresh stack-frame slot sized for t, yielding a Ptr(t)
// address usable with Load/Store. Two things produce this op: spill
// materialization (pkg/rewrite's ApplySpills), and the Wasm frontend, which
// gives each Wasm local and each ReturnViaPointer-transformed call's
// out-parameter struct its own slot this way. Everything else that needs addressable storage goes
// through the global-variable layout (pkg/analysis's LayoutGlobals) instead.
func Local(span diagnostic.Span, t types.Type) *hir.Operation {
	return hir.NewOperation(OpLocal, span, types.Ptr(t))
}
