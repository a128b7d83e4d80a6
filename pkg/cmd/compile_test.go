package cmd

import (
	"reflect"
	"testing"
)

func TestParseEmitFlag(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
		ok   bool
	}{
		{"single", "masm", []string{"masm"}, true},
		{"multiple", "hir,masm", []string{"hir", "masm"}, true},
		{"spaces", "hir, masm", []string{"hir", "masm"}, true},
		{"all expands", "all", allEmitKinds, true},
		{"mast not in all", "all", []string{"hir", "masm"}, true},
		{"unrecognized", "bogus", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseEmitFlag(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseEmitFlag(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseEmitFlag(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestModuleNameFor(t *testing.T) {
	tests := map[string]string{
		"foo.wasm":         "foo",
		"/a/b/bar.hir":     "bar",
		"noext":            "noext",
		"./rel/mod.wasm":   "mod",
	}

	for path, want := range tests {
		if got := moduleNameFor(path); got != want {
			t.Errorf("moduleNameFor(%q) = %q, want %q", path, got, want)
		}
	}
}
