package diagnostic

import (
	"fmt"
	"io"
)

// Severity classifies a Diagnostic.
type Severity uint8

const (
	// SeverityNote is informational; never affects the exit code.
	SeverityNote Severity = iota
	// SeverityWarning flags a likely-but-not-certain problem.
	SeverityWarning
	// SeverityError is a user error or IR verification failure; aborts
	// compilation at the next pass boundary.
	SeverityError
	// SeverityBug marks an internal compiler assertion failure (e.g. stack
	// underflow during codegen); always fatal.
	SeverityBug
)

// String renders the severity the way a diagnostics renderer would label it.
func (s Severity) String() string {
	switch s {
	case SeverityNote:
		return "note"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityBug:
		return "internal compiler error"
	default:
		return "unknown"
	}
}

// Label attaches a message to a specific Span within a Diagnostic.
type Label struct {
	Span    Span
	Message string
}

// Diagnostic is a single labeled-span compiler message, the unit this
// package hands to an external diagnostics rendering library.
type Diagnostic struct {
	Severity Severity
	Message  string
	Labels   []Label
}

// New constructs a Diagnostic with no labels.
func New(sev Severity, msg string, args ...any) Diagnostic {
	return Diagnostic{Severity: sev, Message: fmt.Sprintf(msg, args...)}
}

// WithLabel returns a copy of d with an additional label attached.
func (d Diagnostic) WithLabel(span Span, msg string, args ...any) Diagnostic {
	d.Labels = append(d.Labels, Label{span, fmt.Sprintf(msg, args...)})
	return d
}

// Error implements the error interface so a Diagnostic can be returned and
// wrapped like any other Go error.
func (d Diagnostic) Error() string {
	if len(d.Labels) == 0 {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}

	return fmt.Sprintf("%s: %s (%s: %s)", d.Severity, d.Message, d.Labels[0].Span, d.Labels[0].Message)
}

// Fprint renders a diagnostic in a plain textual form.  This is a stand-in
// for a real diagnostics renderer; it exists so the driver has something
// to print without an external dependency.
func (d Diagnostic) Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s: %s\n", d.Severity, d.Message)

	for _, l := range d.Labels {
		fmt.Fprintf(w, "  --> %s: %s\n", l.Span, l.Message)
	}
}
