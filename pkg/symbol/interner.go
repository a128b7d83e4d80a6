// Package symbol provides a process-wide interner mapping strings to small
// integer identifiers.  Interning is idempotent and thread-safe: concurrent
// writers serialize behind a single lock, while readers may proceed in
// parallel once a symbol has been registered.
package symbol

import "sync"

// Symbol is an interned string identifier.  Symbols compare by identity
// (equal strings always intern to the same Symbol), which makes them cheap
// to use as map keys and cheap to compare.
type Symbol uint32

// reservedSymbols marks the top of the id space as reserved, so that a
// Symbol can always be packed into the low bits of a tagged value (see
// pkg/codegen's alias-tagged operand identity) without colliding with a
// legitimate interned id.
const reservedSymbols = Symbol(1 << 24)

// Interner maps strings to Symbols and back.  The zero value is not usable;
// construct one with New.
type Interner struct {
	mu      sync.RWMutex
	strToID map[string]Symbol
	idToStr []string
}

// New constructs an empty interner.
func New() *Interner {
	return &Interner{
		strToID: make(map[string]Symbol),
	}
}

// Intern returns the Symbol for s, allocating a fresh one if s has not been
// seen before.  Intern is idempotent: Intern(s) == Intern(s) for the
// lifetime of the Interner.
func (in *Interner) Intern(s string) Symbol {
	in.mu.RLock()
	if id, ok := in.strToID[s]; ok {
		in.mu.RUnlock()
		return id
	}
	in.mu.RUnlock()
	//
	in.mu.Lock()
	defer in.mu.Unlock()
	// Another writer may have raced us between the unlock above and here.
	if id, ok := in.strToID[s]; ok {
		return id
	}

	id := Symbol(len(in.idToStr))
	if id >= reservedSymbols {
		panic("symbol: interner exhausted reserved id space")
	}
	// Copy s so callers cannot mutate our storage through a shared backing
	// array; the returned string is treated as living for the process
	// lifetime.
	stable := string([]byte(s))
	in.idToStr = append(in.idToStr, stable)
	in.strToID[stable] = id
	//
	return id
}

// String returns the original string a Symbol was interned from.  Panics if
// sym was not produced by this Interner.
func (in *Interner) String(sym Symbol) string {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if int(sym) >= len(in.idToStr) {
		panic("symbol: unknown symbol")
	}

	return in.idToStr[sym]
}

// Len returns the number of distinct strings interned so far.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	return len(in.idToStr)
}

var (
	defaultOnce sync.Once
	defaultIntr *Interner
)

// Default returns the process-wide default interner, constructing it on
// first use.
func Default() *Interner {
	defaultOnce.Do(func() {
		defaultIntr = New()
	})

	return defaultIntr
}

// Intern interns s in the default, process-wide interner.
func Intern(s string) Symbol {
	return Default().Intern(s)
}

// String looks up sym in the default, process-wide interner.
func String(sym Symbol) string {
	return Default().String(sym)
}
