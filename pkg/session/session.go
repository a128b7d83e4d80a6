// Package session threads configuration, the symbol interner, and a
// diagnostics handler through the compiler's pass pipeline (component L).
// Grounded on the teacher's pkg/cmd/util.SchemaStack, which threads a
// layered compilation state (MACRO_ASM_LAYER/MICRO_ASM_LAYER/MIR_LAYER/
// AIR_LAYER) through the corset-to-AIR lowering pipeline the same way a
// Session threads WasmLayer/HirLayer/StructuredLayer/MasmLayer here.
package session

import (
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/symbol"
)

// Pipeline layer identifiers, in the teacher's upper-snake-case layer-
// constant style (c.f. MACRO_ASM_LAYER/MIR_LAYER/AIR_LAYER).
const (
	// WasmLayer is the raw input, before any translation to HIR.
	WasmLayer = 0
	// HirLayer is unstructured HIR, as produced by the frontend/parser and
	// consumed by analysis/rewrite.
	HirLayer = 1
	// StructuredLayer is HIR after CFGToStructured, with nested scf.if/
	// scf.while regions in place of unstructured branches.
	StructuredLayer = 2
	// MasmLayer is the final MASM IR, ready for pkg/masmprint.
	MasmLayer = 3
)

// Config holds environment-derived compiler configuration, read once at
// Session construction the way the teacher's root command reads its
// Version/build-info at startup.
type Config struct {
	// TargetDir is where intermediate build products are written, from
	// MIDENC_TARGET_DIR (default "target").
	TargetDir string
	// OutDir is where final `--emit` artifacts are written, from
	// MIDENC_OUT_DIR (default TargetDir).
	OutDir string
	// Sysroot locates the Miden standard library/runtime, from
	// MIDENC_SYSROOT; empty means none configured.
	Sysroot string
	// NoColor disables ANSI color in diagnostic rendering, from NO_COLOR
	// (any non-empty value) or a non-terminal/"dumb" TERM.
	NoColor bool
	// Trace enables verbose per-pass Tracef logging; this flag gates
	// log.Tracef calls rather than a raw println.
	Trace bool
}

// ConfigFromEnv reads Config fields from the process environment,
// mirroring the teacher's pattern of pulling build-time/environment facts
// into a small struct at startup (pkg/cmd/root.go's Version variable).
func ConfigFromEnv() Config {
	targetDir := os.Getenv("MIDENC_TARGET_DIR")
	if targetDir == "" {
		targetDir = "target"
	}

	outDir := os.Getenv("MIDENC_OUT_DIR")
	if outDir == "" {
		outDir = targetDir
	}

	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb"

	trace, _ := strconv.ParseBool(os.Getenv("MIDENC_TRACE"))

	return Config{
		TargetDir: targetDir,
		OutDir:    outDir,
		Sysroot:   os.Getenv("MIDENC_SYSROOT"),
		NoColor:   noColor,
		Trace:     trace,
	}
}

// Session carries the state every pass needs: the symbol interner,
// diagnostics handler, and configuration, plus which pipeline layer the
// current compilation unit has reached.
type Session struct {
	Config    Config
	Interner  *symbol.Interner
	Diags     *diagnostic.Handler
	layer     int
	layerName string
}

// New constructs a Session with the default interner and a fresh
// diagnostics handler. When cfg.Trace is set it also raises logrus's level
// to Trace, so that EnterLayer's Tracef messages are printed.
func New(cfg Config) *Session {
	if cfg.Trace {
		log.SetLevel(log.TraceLevel)
	}

	return &Session{
		Config:   cfg,
		Interner: symbol.Default(),
		Diags:    diagnostic.NewHandler(),
		layer:    WasmLayer,
	}
}

// Layer reports the pipeline layer the session has most recently entered.
func (s *Session) Layer() int { return s.layer }

// EnterLayer advances the session into the named pipeline layer, tracing
// the transition when Config.Trace is set.
func (s *Session) EnterLayer(layer int, name string) {
	s.layer = layer
	s.layerName = name

	if s.Config.Trace {
		log.Tracef("session: entering layer %s", name)
	}
}

// LayerName returns the human-readable name of the current layer.
func (s *Session) LayerName() string { return s.layerName }
