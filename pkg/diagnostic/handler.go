package diagnostic

import (
	"io"
	"sync"

	"go.uber.org/multierr"
)

// Handler accumulates diagnostics for the current pass, so that compilation
// "continues through the current pass to maximize diagnostic yield, then
// aborts at [the] pass boundary".  It is safe for concurrent use,
// matching the session's "thread-safe diagnostics sink" policy.
type Handler struct {
	mu    sync.Mutex
	diags []Diagnostic
	err   error
}

// NewHandler constructs an empty Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Emit records a diagnostic.  Diagnostics of SeverityError or SeverityBug
// contribute to HasErrors.
func (h *Handler) Emit(d Diagnostic) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.diags = append(h.diags, d)

	if d.Severity >= SeverityError {
		h.err = multierr.Append(h.err, d)
	}
}

// Error is a convenience that constructs and emits a SeverityError diagnostic.
func (h *Handler) Error(msg string, args ...any) {
	h.Emit(New(SeverityError, msg, args...))
}

// Bug is a convenience that constructs and emits a SeverityBug diagnostic.
func (h *Handler) Bug(msg string, args ...any) {
	h.Emit(New(SeverityBug, msg, args...))
}

// HasErrors reports whether any SeverityError or SeverityBug diagnostic has
// been emitted.
func (h *Handler) HasErrors() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err != nil
}

// Diagnostics returns all diagnostics emitted so far, in emission order.
func (h *Handler) Diagnostics() []Diagnostic {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Diagnostic, len(h.diags))
	copy(out, h.diags)

	return out
}

// Err returns the aggregated multierr.Error of all error-or-worse
// diagnostics, or nil if there were none.
func (h *Handler) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.err
}

// Render writes every accumulated diagnostic to w in emission order.  A real
// build would delegate this to an external diagnostics rendering library;
// this is the internal fallback.
func (h *Handler) Render(w io.Writer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, d := range h.diags {
		d.Fprint(w)
	}
}
