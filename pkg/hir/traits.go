package hir

// Trait enumerates the verification-bearing operation traits an operation
// can carry. Traits compose; an op's registration declares the set it
// has, and Verify runs every attached rule.
type Trait uint32

// The trait set an operation's definition can attach.
const (
	TraitUnaryOp Trait = 1 << iota
	TraitBinaryOp
	TraitSameTypeOperands
	TraitSameOperandsAndResultType
	TraitCommutative
	TraitConstantLike
	TraitTerminator
	TraitNoTerminator
	TraitSingleBlock
	TraitSingleRegion
	TraitNoRegionArguments
	TraitIsolatedFromAbove
	TraitHasOnlyGraphRegion
	TraitMemoryRead
	TraitMemoryWrite
	TraitReturnLike
	TraitIdempotent
	TraitInvolution
)

type traitSet uint32

func (s traitSet) has(t Trait) bool {
	return s&traitSet(t) != 0
}

// Traits combines individual Trait flags into a traitSet suitable for
// RegisterOp.
func Traits(ts ...Trait) traitSet {
	var s traitSet
	for _, t := range ts {
		s |= traitSet(t)
	}

	return s
}

// Verifier is a function attached to a registered opcode that checks
// opcode-specific invariants beyond the generic trait rules. It appends a
// descriptive error to errs (via *VerifyErrors.Add) rather than returning
// early, so a single verification pass surfaces every violation found on a
// given op.
type Verifier func(op *Operation, errs *VerifyErrors)

// dialectRegistration is what a dialect registers per opcode name.
type dialectRegistration struct {
	traits   traitSet
	verifier Verifier
}

var dialectRegistry = make(map[string]dialectRegistration)

// RegisterOp registers name with the given traits and an optional opcode-
// specific verifier (nil is fine). Dialects call this from an init()
// function, matching the teacher's pattern of registering constraint/
// assignment kinds by name at package load (pkg/schema's kind tables).
func RegisterOp(name string, ts traitSet, verifier Verifier) {
	dialectRegistry[name] = dialectRegistration{ts, verifier}
}

// VerifyErrors accumulates verification-failure messages, each naming the
// operation and the invariant violated.
type VerifyErrors struct {
	Errors []VerifyError
}

// VerifyError is one verification-rule violation.
type VerifyError struct {
	Op      *Operation
	Message string
}

// Add appends a new violation against op.
func (e *VerifyErrors) Add(op *Operation, msg string) {
	e.Errors = append(e.Errors, VerifyError{op, msg})
}

// OK reports whether no violations were recorded.
func (e *VerifyErrors) OK() bool {
	return len(e.Errors) == 0
}

// Verify walks the op tree rooted at root in postorder, applying each op's
// registered verifier and each attached trait's generic rule.
func Verify(root *Operation) VerifyErrors {
	var errs VerifyErrors

	verifyOp(root, &errs)

	return errs
}

func verifyOp(op *Operation, errs *VerifyErrors) {
	for _, r := range op.regions {
		for _, b := range r.Blocks() {
			for _, child := range b.Ops() {
				verifyOp(child, errs)
			}
		}
	}

	verifyTraits(op, errs)

	if reg, ok := dialectRegistry[op.Name]; ok && reg.verifier != nil {
		reg.verifier(op, errs)
	}
}

func verifyTraits(op *Operation, errs *VerifyErrors) {
	if op.traits.has(TraitUnaryOp) && len(op.operands) != 1 {
		errs.Add(op, "UnaryOp requires exactly one operand")
	}

	if op.traits.has(TraitBinaryOp) && len(op.operands) != 2 {
		errs.Add(op, "BinaryOp requires exactly two operands")
	}

	if op.traits.has(TraitSameTypeOperands) {
		for i := 1; i < len(op.operands); i++ {
			if !op.operands[i].Value().Type().Equal(op.operands[0].Value().Type()) {
				errs.Add(op, "SameTypeOperands: operand types differ")
				break
			}
		}
	}

	if op.traits.has(TraitSameOperandsAndResultType) && len(op.operands) > 0 && len(op.results) > 0 {
		t := op.operands[0].Value().Type()

		for _, r := range op.results {
			if !r.Type().Equal(t) {
				errs.Add(op, "SameOperandsAndResultType: result type differs from operand type")
				break
			}
		}
	}

	if op.traits.has(TraitSingleRegion) && len(op.regions) != 1 {
		errs.Add(op, "SingleRegion requires exactly one region")
	}

	if op.traits.has(TraitSingleBlock) {
		for _, r := range op.regions {
			if len(r.Blocks()) != 1 {
				errs.Add(op, "SingleBlock requires exactly one block per region")
			}
		}
	}

	if op.traits.has(TraitNoRegionArguments) {
		for _, r := range op.regions {
			if e := r.Entry(); e != nil && len(e.Args()) != 0 {
				errs.Add(op, "NoRegionArguments: entry block must not have arguments")
			}
		}
	}

	if op.traits.has(TraitHasOnlyGraphRegion) {
		for _, r := range op.regions {
			if r.Kind() != RegionGraph {
				errs.Add(op, "HasOnlyGraphRegion: region must be a Graph region")
			}
		}
	}

	verifyTerminator(op, errs)
}

// verifyTerminator checks the terminator invariant: every block in
// an SSA region ends in exactly one operation marked Terminator, whose
// successors reference blocks of the same region; single-block regions
// attached to a NoTerminator op are exempt.
func verifyTerminator(op *Operation, errs *VerifyErrors) {
	for _, r := range op.regions {
		if r.Kind() != RegionSSA {
			continue
		}

		for _, b := range r.Blocks() {
			term := b.Terminator()

			if term == nil {
				if op.traits.has(TraitNoTerminator) && len(r.Blocks()) == 1 {
					continue
				}

				errs.Add(op, "block has no terminator")

				continue
			}

			if !term.IsTerminator() {
				if op.traits.has(TraitNoTerminator) && len(r.Blocks()) == 1 {
					continue
				}

				errs.Add(term, "last operation in block is not a Terminator")
			}

			for _, s := range term.successors {
				if s.Block.region != r {
					errs.Add(term, "successor block belongs to a different region")
				}
			}
		}
	}
}
