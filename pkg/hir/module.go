package hir

import "github.com/0xPolygonMiden/compiler-sub007/pkg/types"

// GlobalVar declares one module-level global variable, in declaration order
//.
type GlobalVar struct {
	Name Ident
	Type types.Type
	// Init, if non-nil, is the global's initial value attribute; nil means
	// zero-initialized.
	Init any
}

// Import records an external symbol a module depends on but does not
// define -- a function imported from another module or from the host
// environment.
type Import struct {
	Callee FunctionIdent
	Sig    Signature
	CC     CallConv
}

// Module is the top-level HIR container the WebAssembly frontend (G) and
// the textual parser (D) both produce: a named collection of functions,
// module-level globals, and imports, the unit the driver (L) threads
// through the analysis/rewrite/codegen pipeline one function at a time.
// Unlike Func, Module is not itself an Operation -- operations, regions,
// blocks and values describe a function body, but a whole compilation unit is one
// level above that graph, the way the teacher's schema.Module groups
// columns/constraints without itself being a constraint-bearing node.
type Module struct {
	Name    Ident
	Globals []GlobalVar
	Imports []Import
	Funcs   []*Func
}

// NewModule constructs an empty module named id.
func NewModule(id Ident) *Module {
	return &Module{Name: id}
}

// AddFunc appends fn to the module's function list and returns it, for
// chaining.
func (m *Module) AddFunc(fn *Func) *Func {
	m.Funcs = append(m.Funcs, fn)
	return fn
}

// AddGlobal appends a global variable declaration.
func (m *Module) AddGlobal(g GlobalVar) {
	m.Globals = append(m.Globals, g)
}

// AddImport appends an import declaration.
func (m *Module) AddImport(i Import) {
	m.Imports = append(m.Imports, i)
}

// FindFunc returns the function named name within this module, or nil.
func (m *Module) FindFunc(name Ident) *Func {
	for _, fn := range m.Funcs {
		if fn.ID().Function.Symbol == name.Symbol {
			return fn
		}
	}

	return nil
}
