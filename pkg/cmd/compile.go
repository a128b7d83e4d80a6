package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/0xPolygonMiden/compiler-sub007/pkg/assembler"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/codegen"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/diagnostic"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/hirtext"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmir"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/masmprint"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/rewrite"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/session"
	"github.com/0xPolygonMiden/compiler-sub007/pkg/wasmfrontend"
)

// Recognized --emit artifact kinds. "ast" is accepted but produces the same
// output as "hir": the frontend goes straight from Wasm bytes to HIR, with
// no separate retained AST stage to print.
const (
	emitAst  = "ast"
	emitHir  = "hir"
	emitMasm = "masm"
	emitMast = "mast"
)

var defaultEmit = []string{emitMasm}

// allEmitKinds is what "--emit all" expands to. "mast" is deliberately
// excluded: it always fails without an external assembler wired in, so a
// user only sees that failure by asking for it explicitly.
var allEmitKinds = []string{emitHir, emitMasm}

var compileCmd = &cobra.Command{
	Use:   "compile [flags] file1 file2 ...",
	Short: "Compile WebAssembly or HIR modules to Miden Assembly.",
	Run:   runCompile,
}

func init() {
	compileCmd.Flags().String("output-dir", "", "directory to write --emit artifacts to (default: MIDENC_OUT_DIR)")
	compileCmd.Flags().String("emit", strings.Join(defaultEmit, ","), "comma-separated artifact kinds to emit: ast,hir,masm,mast,all")
	compileCmd.Flags().StringP("warnings", "W", "auto", "warning reporting mode: none, auto, error")
	compileCmd.Flags().String("target", "base", "target environment: base, rollup, emu")
	compileCmd.Flags().Bool("exe", false, "emit a standalone executable program, not a library")
	compileCmd.Flags().Bool("lib", false, "emit a reusable library (default)")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		fmt.Println("compile: no input files given")
		os.Exit(exitCliMisuse)
	}

	emitKinds, ok := parseEmitFlag(GetString(cmd, "emit"))
	if !ok {
		os.Exit(exitCliMisuse)
	}

	warnMode := GetString(cmd, "warnings")
	if warnMode != "none" && warnMode != "auto" && warnMode != "error" {
		fmt.Printf("compile: unrecognized -W value %q (want none, auto, error)\n", warnMode)
		os.Exit(exitCliMisuse)
	}

	target := GetString(cmd, "target")
	if target != "base" && target != "rollup" && target != "emu" {
		fmt.Printf("compile: unrecognized --target value %q (want base, rollup, emu)\n", target)
		os.Exit(exitCliMisuse)
	}

	wantExe := GetFlag(cmd, "exe")
	wantLib := GetFlag(cmd, "lib")
	if wantExe && wantLib {
		fmt.Println("compile: --exe and --lib are mutually exclusive")
		os.Exit(exitCliMisuse)
	}

	cfg := session.ConfigFromEnv()
	if outDir := GetString(cmd, "output-dir"); outDir != "" {
		cfg.OutDir = outDir
	}
	cfg.Trace = GetFlag(cmd, "verbose")
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		cfg.NoColor = true
	}

	sess := session.New(cfg)
	sess.EnterLayer(session.WasmLayer, "wasm")

	var modules []*hir.Module
	for _, path := range args {
		m, err := loadModule(sess, path)
		if err != nil {
			fmt.Printf("compile: %s: %v\n", path, err)
			os.Exit(exitCompile)
		}
		modules = append(modules, m)
	}

	sess.EnterLayer(session.StructuredLayer, "structured")
	for _, m := range modules {
		for _, fn := range m.Funcs {
			structureFunc(fn)
		}
	}

	if failed := checkDiagnostics(sess, warnMode); failed {
		os.Exit(exitCompile)
	}

	sess.EnterLayer(session.MasmLayer, "masm")

	calleeModule := make(map[hir.FunctionIdent]string)
	for _, m := range modules {
		for _, fn := range m.Funcs {
			calleeModule[fn.ID()] = m.Name.String()
		}
	}
	resolveCallee := func(id hir.FunctionIdent) masmir.ProcedureRef {
		modPath, ok := calleeModule[id]
		if !ok {
			modPath = id.Module.String()
		}
		return masmir.ProcedureRef{ModulePath: modPath, Name: id.Function.String()}
	}

	var entry *masmir.ProcedureRef
	lib := &masmir.Library{}
	for _, m := range modules {
		mod := &masmir.Module{Path: m.Name.String()}

		emitter := codegen.NewEmitter(resolveCallee)
		for _, fn := range m.Funcs {
			vis := masmir.VisibilityPrivate
			if fn.Visibility() == hir.VisibilityPublic {
				vis = masmir.VisibilityPublic
			}

			proc := emitter.EmitFunction(fn, vis)
			mod.Procedures = append(mod.Procedures, proc)

			if wantExe && vis == masmir.VisibilityPublic && entry == nil {
				ref := masmir.ProcedureRef{ModulePath: mod.Path, Name: fn.ID().Function.String()}
				entry = &ref
			}
		}

		lib.Modules = append(lib.Modules, mod)
	}

	if wantExe && entry == nil {
		fmt.Println("compile: --exe requested but no exported function found to use as entry")
		os.Exit(exitCompile)
	}

	var artifact masmir.Artifact = lib
	if wantExe {
		artifact = &masmir.Program{Library: lib, Entry: *entry}
	}

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		fmt.Printf("compile: creating output directory %s: %v\n", cfg.OutDir, err)
		os.Exit(exitCompile)
	}

	for _, kind := range emitKinds {
		if err := emitArtifact(cfg.OutDir, kind, modules, artifact); err != nil {
			fmt.Printf("compile: emitting %s: %v\n", kind, err)
			os.Exit(exitCompile)
		}
	}

	os.Exit(exitSuccess)
}

// parseEmitFlag splits and validates a comma-separated --emit value,
// expanding "all" to allEmitKinds.
func parseEmitFlag(raw string) ([]string, bool) {
	var out []string
	for _, kind := range strings.Split(raw, ",") {
		kind = strings.TrimSpace(kind)
		switch kind {
		case "all":
			out = append(out, allEmitKinds...)
		case emitAst, emitHir, emitMasm, emitMast:
			out = append(out, kind)
		default:
			fmt.Printf("compile: unrecognized --emit kind %q\n", kind)
			return nil, false
		}
	}

	return out, true
}

// loadModule sniffs path's input kind by extension (or, for stdin, by
// content) and parses it into an HIR module.
func loadModule(sess *session.Session, path string) (*hir.Module, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = readAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	name := moduleNameFor(path)

	switch {
	case path == "-":
		if bytes.HasPrefix(data, []byte("\x00asm")) {
			return wasmfrontend.Translate(name, data)
		}
		return hirtext.Parse(path, string(data))
	case strings.HasSuffix(path, ".wasm"):
		return wasmfrontend.Translate(name, data)
	case strings.HasSuffix(path, ".hir"):
		return hirtext.Parse(path, string(data))
	case strings.HasSuffix(path, ".wat"), strings.HasSuffix(path, ".masm"):
		return nil, fmt.Errorf("%s input is not supported by this compiler (MASM/WAT are output-only)", filepath.Ext(path))
	default:
		return nil, fmt.Errorf("unrecognized input extension %q", filepath.Ext(path))
	}
}

func moduleNameFor(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func readAll(f *os.File) ([]byte, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(f)
	return buf.Bytes(), err
}

// structureFunc runs the rewrite pipeline that turns a function's
// unstructured CFG into nested scf.if/scf.while regions, in the order
// SplitCriticalEdges -> DropRedundantBlockArguments -> Treeify ->
// InlineBlocks -> CFGToStructured.
func structureFunc(fn *hir.Func) {
	region := fn.Region()

	rewrite.SplitCriticalEdges(region)
	rewrite.DropRedundantBlockArguments(region)
	rewrite.Treeify(region)
	rewrite.InlineBlocks(region)
	rewrite.CFGToStructured(region)
}

// checkDiagnostics reports accumulated diagnostics and decides whether the
// run should fail: any Error/Bug severity always fails, and under
// "-W error" a bare Warning fails too (Handler.HasErrors alone only counts
// Error/Bug).
func checkDiagnostics(sess *session.Session, warnMode string) bool {
	sess.Diags.Render(os.Stderr)

	if sess.Diags.HasErrors() {
		return true
	}

	if warnMode != "error" {
		return false
	}

	for _, d := range sess.Diags.Diagnostics() {
		if d.Severity == diagnostic.SeverityWarning {
			return true
		}
	}

	return false
}

func emitArtifact(outDir, kind string, modules []*hir.Module, artifact masmir.Artifact) error {
	switch kind {
	case emitAst, emitHir:
		for _, m := range modules {
			text := hirtext.Print(m)
			if err := os.WriteFile(filepath.Join(outDir, m.Name.String()+".hir"), []byte(text), 0o644); err != nil {
				return err
			}
		}
		return nil
	case emitMasm:
		text := masmprint.Artifact(artifact)
		name := "out"
		if len(modules) == 1 {
			name = modules[0].Name.String()
		}
		return os.WriteFile(filepath.Join(outDir, name+".masm"), []byte(text), 0o644)
	case emitMast:
		_, err := assembler.Unavailable().AssembleArtifact(artifact)
		return err
	default:
		return fmt.Errorf("unrecognized emit kind %q", kind)
	}
}
