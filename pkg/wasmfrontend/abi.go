package wasmfrontend

import "github.com/0xPolygonMiden/compiler-sub007/pkg/types"

// Transform names the ABI adjustment applied at a call site to a
// recognized intrinsic import.
type Transform uint8

const (
	// NoTransform emits a direct call; results flow through normally.
	NoTransform Transform = iota
	// ListReturn keeps only the `length` half of a callee's
	// (length, pointer) stack-return pair.
	ListReturn
	// ReturnViaPointer threads a synthesized out-pointer argument and
	// stores each returned field element at the matching struct offset.
	ReturnViaPointer
)

// AbiEntry describes one recognized (module, function) intrinsic import
// and how calls to it are rewritten.
type AbiEntry struct {
	Transform Transform
	// ResultFields gives the synthesized result-struct field types for a
	// ReturnViaPointer entry; unused for the other transforms.
	ResultFields []types.Type
}

// key is the (module, function) lookup key into AbiTransform.
type key struct{ module, function string }

// AbiTransform is the frontend's recognized intrinsic-import table,
// modeled on miden_abi's transform table: the felt intrinsics and the
// stdlib-mem module are implemented concretely; hash/account/tx modules
// are a documented, empty extension point (out of scope as external-
// collaborator ABI surfaces, but the table shape these would slot into is
// real).
var AbiTransform = map[key]AbiEntry{
	{"miden:prelude/intrinsics_felt", "add"}:     {Transform: NoTransform},
	{"miden:prelude/intrinsics_felt", "sub"}:     {Transform: NoTransform},
	{"miden:prelude/intrinsics_felt", "mul"}:     {Transform: NoTransform},
	{"miden:prelude/intrinsics_felt", "is_zero"}: {Transform: NoTransform},

	{"miden:core-import/stdlib-mem@1.0.0", "pipe_words_to_memory"}: {Transform: ListReturn},
	{"miden:core-import/stdlib-mem@1.0.0", "pipe_double_words_to_memory"}: {
		Transform:    ReturnViaPointer,
		ResultFields: []types.Type{types.Felt, types.Felt, types.Felt, types.Felt},
	},
}

// Lookup returns the ABI entry recognized for a (module, function) import
// pair, and whether one was found. Unrecognized imports use NoTransform by
// convention at the call site (ordinary external functions, not ABI
// intrinsics).
func Lookup(module, function string) (AbiEntry, bool) {
	e, ok := AbiTransform[key{module, function}]
	return e, ok
}
