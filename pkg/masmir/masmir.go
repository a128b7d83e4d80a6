// Package masmir models a MASM program as a concrete tree: Program/Library
// hold Modules, a Module holds Procedures, and a Procedure's body is a Block
// of Nodes -- either a leaf instruction or a structured construct (If, While,
// Repeat). Unlike pkg/hir this is not an SSA graph: MASM has no values, only
// a stack, so the tree records exactly what the printer must emit and
// nothing more.
//
// The shape mirrors the teacher's own concrete instruction-set model
// (pkg/asm/program's Module/Function wrapping a []Instruction body), adapted
// from a register machine's flat instruction list to a stack machine's
// nested block tree.
package masmir

// Artifact is the output of the compiler's core: either a standalone
// Executable program or a reusable Library.
type Artifact interface {
	isArtifact()
}

// Program is an executable artifact: a Library plus a distinguished entry
// procedure.
type Program struct {
	Library *Library
	Entry   ProcedureRef
}

func (*Program) isArtifact() {}

// Library is a named collection of modules, addressable by dotted path
// (e.g. "miden::kernels::tx").
type Library struct {
	Modules []*Module
}

func (*Library) isArtifact() {}

// ProcedureRef names a procedure by its owning module's path and its own
// name within that module.
type ProcedureRef struct {
	ModulePath string
	Name       string
}

// ModuleKind distinguishes a kernel module (whose procedures are callable
// only via SysCall) from an ordinary one.
type ModuleKind uint8

const (
	ModuleRegular ModuleKind = iota
	ModuleKernel
)

// Module is a named group of procedures plus the imports their bodies rely
// on.
type Module struct {
	Path       string
	Kind       ModuleKind
	Imports    []Import
	Procedures []*Procedure
}

// Import records one `use.<path>` (optionally `-><alias>`) directive.
type Import struct {
	Path  string
	Alias string
}

// Visibility controls whether a procedure is emitted as `export.NAME` or a
// plain `proc.NAME`.
type Visibility uint8

const (
	VisibilityPrivate Visibility = iota
	VisibilityPublic
)

// Signature records a procedure's stack-effect arity: how many operands it
// consumes from, and leaves on, the caller's stack.
type Signature struct {
	Inputs  int
	Outputs int
}

// Procedure is one `proc`/`export` body: a name, visibility, signature, a
// count of local (addressable) slots, and a tree of structured blocks.
type Procedure struct {
	Name       string
	Visibility Visibility
	Signature  Signature
	NumLocals  uint32
	Body       Block
}

// Block is a straight-line sequence of Nodes: leaf instructions interleaved
// with nested structured constructs.
type Block []Node

// Node is either an Instr leaf or one of If/While/Repeat.
type Node interface {
	isNode()
}

// If is a structured conditional: `if.true … else … end`. Else may be nil,
// matching MASM's optional else clause.
type If struct {
	Then Block
	Else Block
}

func (*If) isNode() {}

// While is a structured loop: `while.true … end`. The VM pops and tests the
// top-of-stack boolean before each iteration, including the first.
type While struct {
	Body Block
}

func (*While) isNode() {}

// Repeat is a fixed-count loop: `repeat.N … end`, unrolled by the VM at
// execution time rather than by the compiler.
type Repeat struct {
	Count uint32
	Body  Block
}

func (*Repeat) isNode() {}
