// Package assembler defines the interface this compiler's core expects of
// the downstream MASM assembler. It mirrors the teacher's own binfile
// package shape: a typed, versioned artifact
// wrapper plus a narrow Assemble entry point, so that swapping in the real
// assembler later is a matter of providing an Assembler implementation,
// not touching pkg/masmir or pkg/masmprint.
package assembler

import (
	"errors"
	"fmt"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
)

// MAST is the compact, Merkle-hashed binary form the real assembler
// produces. This package never constructs one itself --
// it only defines the shape a real Assembler implementation returns, so
// that callers in this module (pkg/cmd) can be written against a stable
// type regardless of which assembler backend is wired in.
type MAST struct {
	// Digest is the root commitment of the assembled program, opaque at
	// this layer.
	Digest [32]byte
	// Bytes is the serialized MAST encoding, opaque at this layer.
	Bytes []byte
}

// Assembler turns a textual or in-memory MASM artifact into MAST. This
// compiler's responsibility ends with textual MASM plus a side table of
// Import directives -- so every method here is a pass-through boundary,
// not an implementation.
type Assembler interface {
	// AssembleText assembles already-printed MASM source.
	AssembleText(moduleName, source string) (MAST, error)
	// AssembleArtifact assembles directly from the in-memory tree, skipping
	// the text round-trip when the caller has no need for the printed form.
	AssembleArtifact(a masmir.Artifact) (MAST, error)
}

// ErrNoAssembler is returned by Unavailable's methods: this module ships no
// assembler implementation of its own (it is an external collaborator), so
// a driver that asks to assemble without wiring one in gets a clear, named
// error rather than a nil-pointer panic.
var ErrNoAssembler = errors.New("assembler: no backend configured; MAST production is outside this compiler's scope")

// unavailable is the zero-value Assembler: every method reports
// ErrNoAssembler. Callers that only need textual MASM (the `--emit masm`
// case) never construct an Assembler at all; this exists so `--emit mast`
// fails with a clear diagnostic instead of requiring every driver call site
// to nil-check.
type unavailable struct{}

// Unavailable returns an Assembler whose every method fails with
// ErrNoAssembler.
func Unavailable() Assembler { return unavailable{} }

func (unavailable) AssembleText(moduleName, _ string) (MAST, error) {
	return MAST{}, fmt.Errorf("%w (module %q)", ErrNoAssembler, moduleName)
}

func (unavailable) AssembleArtifact(masmir.Artifact) (MAST, error) {
	return MAST{}, ErrNoAssembler
}
