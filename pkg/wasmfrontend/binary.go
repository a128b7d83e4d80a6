package wasmfrontend

import (
	"encoding/binary"
	"fmt"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/types"
)

// Wasm section id bytes (binary format §5.5).
const (
	secCustom = iota
	secType
	secImport
	secFunction
	secTable
	secMemory
	secGlobal
	secExport
	secStart
	secElement
	secCode
	secData
)

var magic = [4]byte{0x00, 0x61, 0x73, 0x6d}

// FuncType is a decoded Wasm function signature.
type FuncType struct {
	Params  []types.Type
	Results []types.Type
}

// Import is a decoded Wasm import entry. Only function imports are
// represented; table/memory/global imports are parsed (to keep the index
// space and section loop correct) but not retained, since this frontend
// only translates functions and the ABI-transformed intrinsic calls.
type Import struct {
	Module, Field string
	TypeIndex     uint32
}

// Export is a decoded Wasm export entry.
type Export struct {
	Name string
	Kind byte
	// Index into the relevant index space (function index space for
	// Kind == exportKindFunc, the only kind this frontend resolves).
	Index uint32
}

const exportKindFunc = 0x00

// FunctionBody is one decoded Wasm function's locals and operator stream.
type FunctionBody struct {
	// Locals lists each local's declared type, params (from the function's
	// FuncType) not included -- index 0 is the first *additional* local
	// declared in the body.
	Locals []types.Type
	// Code is the raw, undecoded operator byte stream after the local
	// declarations, up to and including the function-ending 0x0b.
	Code []byte
}

// BinaryModule is a fully section-decoded Wasm module, before operator-
// stream translation.
type BinaryModule struct {
	Types []FuncType
	// Imports lists only function imports, in import-section order.
	Imports []Import
	// FuncTypes maps each *defined* (non-imported) function's index (0-
	// based, within the defined-function index space) to its signature
	// index into Types.
	FuncTypes []uint32
	Exports   []Export
	Bodies    []FunctionBody
}

// DecodeModule parses a Wasm binary module's sections, without yet
// translating any function body's operator stream.
func DecodeModule(data []byte) (*BinaryModule, error) {
	if len(data) < 8 || [4]byte(data[0:4]) != magic {
		return nil, fmt.Errorf("wasmfrontend: not a Wasm binary module (bad magic)")
	}

	version := binary.LittleEndian.Uint32(data[4:8])
	if version != 1 {
		return nil, fmt.Errorf("wasmfrontend: unsupported Wasm binary version %d", version)
	}

	r := newReader(data[8:])
	m := &BinaryModule{}

	var funcTypeIndices []uint32

	for !r.done() {
		id, err := r.byte()
		if err != nil {
			return nil, err
		}

		size, err := r.u32()
		if err != nil {
			return nil, err
		}

		body, err := r.bytes(int(size))
		if err != nil {
			return nil, err
		}

		sr := newReader(body)

		switch id {
		case secType:
			if m.Types, err = decodeTypeSection(sr); err != nil {
				return nil, err
			}

		case secImport:
			if m.Imports, err = decodeImportSection(sr); err != nil {
				return nil, err
			}

		case secFunction:
			if funcTypeIndices, err = decodeFunctionSection(sr); err != nil {
				return nil, err
			}

		case secExport:
			if m.Exports, err = decodeExportSection(sr); err != nil {
				return nil, err
			}

		case secCode:
			if m.Bodies, err = decodeCodeSection(sr); err != nil {
				return nil, err
			}

		default:
			// Table/memory/global/start/element/data/custom sections are
			// skipped: this frontend translates function bodies and the
			// ABI-recognized import surface only.
		}
	}

	m.FuncTypes = funcTypeIndices

	return m, nil
}

func decodeTypeSection(r *reader) ([]FuncType, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	out := make([]FuncType, count)

	for i := range out {
		form, err := r.byte()
		if err != nil {
			return nil, err
		}

		if form != 0x60 {
			return nil, fmt.Errorf("wasmfrontend: unexpected type-section form 0x%x", form)
		}

		params, err := decodeValTypeVec(r)
		if err != nil {
			return nil, err
		}

		results, err := decodeValTypeVec(r)
		if err != nil {
			return nil, err
		}

		out[i] = FuncType{Params: params, Results: results}
	}

	return out, nil
}

func decodeValTypeVec(r *reader) ([]types.Type, error) {
	n, err := r.u32()
	if err != nil {
		return nil, err
	}

	out := make([]types.Type, n)

	for i := range out {
		b, err := r.byte()
		if err != nil {
			return nil, err
		}

		t, err := decodeValType(b)
		if err != nil {
			return nil, err
		}

		out[i] = t
	}

	return out, nil
}

func decodeImportSection(r *reader) ([]Import, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	var out []Import

	for i := uint32(0); i < count; i++ {
		mod, err := r.name()
		if err != nil {
			return nil, err
		}

		field, err := r.name()
		if err != nil {
			return nil, err
		}

		kind, err := r.byte()
		if err != nil {
			return nil, err
		}

		switch kind {
		case 0x00: // function import
			typeIdx, err := r.u32()
			if err != nil {
				return nil, err
			}

			out = append(out, Import{Module: mod, Field: field, TypeIndex: typeIdx})

		case 0x01: // table
			if _, err := skipTableType(r); err != nil {
				return nil, err
			}

		case 0x02: // memory
			if _, err := skipLimits(r); err != nil {
				return nil, err
			}

		case 0x03: // global
			if _, err := r.byte(); err != nil {
				return nil, err
			}

			if _, err := r.byte(); err != nil {
				return nil, err
			}

		default:
			return nil, fmt.Errorf("wasmfrontend: unknown import kind 0x%x", kind)
		}
	}

	return out, nil
}

func skipTableType(r *reader) (struct{}, error) {
	if _, err := r.byte(); err != nil { // elemtype
		return struct{}{}, err
	}

	return skipLimits(r)
}

func skipLimits(r *reader) (struct{}, error) {
	flags, err := r.byte()
	if err != nil {
		return struct{}{}, err
	}

	if _, err := r.u32(); err != nil {
		return struct{}{}, err
	}

	if flags&0x01 != 0 {
		if _, err := r.u32(); err != nil {
			return struct{}{}, err
		}
	}

	return struct{}{}, nil
}

func decodeFunctionSection(r *reader) ([]uint32, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	out := make([]uint32, count)

	for i := range out {
		if out[i], err = r.u32(); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func decodeExportSection(r *reader) ([]Export, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	out := make([]Export, count)

	for i := range out {
		name, err := r.name()
		if err != nil {
			return nil, err
		}

		kind, err := r.byte()
		if err != nil {
			return nil, err
		}

		idx, err := r.u32()
		if err != nil {
			return nil, err
		}

		out[i] = Export{Name: name, Kind: kind, Index: idx}
	}

	return out, nil
}

func decodeCodeSection(r *reader) ([]FunctionBody, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	out := make([]FunctionBody, count)

	for i := range out {
		size, err := r.u32()
		if err != nil {
			return nil, err
		}

		body, err := r.bytes(int(size))
		if err != nil {
			return nil, err
		}

		fb, err := decodeFunctionBody(body)
		if err != nil {
			return nil, err
		}

		out[i] = fb
	}

	return out, nil
}

func decodeFunctionBody(body []byte) (FunctionBody, error) {
	r := newReader(body)

	localGroupCount, err := r.u32()
	if err != nil {
		return FunctionBody{}, err
	}

	var locals []types.Type

	for i := uint32(0); i < localGroupCount; i++ {
		n, err := r.u32()
		if err != nil {
			return FunctionBody{}, err
		}

		b, err := r.byte()
		if err != nil {
			return FunctionBody{}, err
		}

		t, err := decodeValType(b)
		if err != nil {
			return FunctionBody{}, err
		}

		for j := uint32(0); j < n; j++ {
			locals = append(locals, t)
		}
	}

	code, err := r.bytes(r.remaining())
	if err != nil {
		return FunctionBody{}, err
	}

	return FunctionBody{Locals: locals, Code: code}, nil
}
