package wasmfrontend

import (
	"fmt"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Wasm value-type encoding bytes (binary format §5.3.1).
const (
	valF64      = 0x7c
	valF32      = 0x7d
	valI64      = 0x7e
	valI32      = 0x7f
	valV128     = 0x7b
	valFuncRef  = 0x70
	valExternRef = 0x6f
)

// decodeValType maps one Wasm value-type byte to an HIR type, rejecting
// the unsupported kinds: f32, v128 (SIMD), and the reference types
// (funcref/externref -- tables and reference types are out of scope).
func decodeValType(b byte) (types.Type, error) {
	switch b {
	case valI32:
		return types.I32, nil
	case valI64:
		return types.I64, nil
	case valF64:
		return types.F64, nil
	case valF32:
		return types.Type{}, fmt.Errorf("wasmfrontend: f32 is not supported")
	case valV128:
		return types.Type{}, fmt.Errorf("wasmfrontend: v128/SIMD is not supported")
	case valFuncRef, valExternRef:
		return types.Type{}, fmt.Errorf("wasmfrontend: reference types are not supported")
	default:
		return types.Type{}, fmt.Errorf("wasmfrontend: unknown value type 0x%x", b)
	}
}
