package diagnostic

import (
	"strings"
	"testing"
)

func TestHandlerHasErrors(t *testing.T) {
	h := NewHandler()

	if h.HasErrors() {
		t.Fatal("fresh handler should report no errors")
	}

	h.Emit(New(SeverityWarning, "just a warning"))
	if h.HasErrors() {
		t.Fatal("a warning alone should not count as an error")
	}

	h.Error("boom: %d", 42)
	if !h.HasErrors() {
		t.Fatal("expected HasErrors after Error()")
	}

	diags := h.Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}
	if diags[1].Severity != SeverityError || diags[1].Message != "boom: 42" {
		t.Fatalf("unexpected second diagnostic: %+v", diags[1])
	}
}

func TestHandlerBugCountsAsError(t *testing.T) {
	h := NewHandler()
	h.Bug("internal inconsistency")

	if !h.HasErrors() {
		t.Fatal("a Bug-severity diagnostic must count as an error")
	}
}

func TestHandlerRender(t *testing.T) {
	h := NewHandler()
	h.Emit(New(SeverityError, "bad thing").WithLabel(NewSpan("a.hir", 3, 7), "here"))

	var sb strings.Builder
	h.Render(&sb)

	out := sb.String()
	if !strings.Contains(out, "error: bad thing") {
		t.Fatalf("render missing message: %q", out)
	}
	if !strings.Contains(out, "a.hir:3:7") {
		t.Fatalf("render missing label span: %q", out)
	}
}

func TestSpanString(t *testing.T) {
	if got := NewSpan("f.hir", 1, 2).String(); got != "f.hir:1:2" {
		t.Fatalf("got %q", got)
	}
	if got := Unknown.String(); got != "0:0" {
		t.Fatalf("got %q", got)
	}
}
