package session

import (
	"os"
	"testing"
)

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()

	for k, v := range kv {
		old, had := os.LookupEnv(k)
		os.Setenv(k, v)
		defer func(k string, old string, had bool) {
			if had {
				os.Setenv(k, old)
			} else {
				os.Unsetenv(k)
			}
		}(k, old, had)
	}

	fn()
}

func TestConfigFromEnvDefaults(t *testing.T) {
	withEnv(t, map[string]string{
		"MIDENC_TARGET_DIR": "",
		"MIDENC_OUT_DIR":    "",
		"MIDENC_SYSROOT":    "",
		"NO_COLOR":          "",
		"TERM":              "xterm",
		"MIDENC_TRACE":      "",
	}, func() {
		cfg := ConfigFromEnv()

		if cfg.TargetDir != "target" {
			t.Errorf("TargetDir = %q, want default %q", cfg.TargetDir, "target")
		}
		if cfg.OutDir != cfg.TargetDir {
			t.Errorf("OutDir = %q, want it to default to TargetDir %q", cfg.OutDir, cfg.TargetDir)
		}
		if cfg.NoColor {
			t.Error("NoColor should be false with no NO_COLOR and a normal TERM")
		}
		if cfg.Trace {
			t.Error("Trace should default to false")
		}
	})
}

func TestConfigFromEnvOverrides(t *testing.T) {
	withEnv(t, map[string]string{
		"MIDENC_TARGET_DIR": "build",
		"MIDENC_OUT_DIR":    "dist",
		"MIDENC_SYSROOT":    "/opt/miden",
		"NO_COLOR":          "1",
		"MIDENC_TRACE":      "true",
	}, func() {
		cfg := ConfigFromEnv()

		if cfg.TargetDir != "build" {
			t.Errorf("TargetDir = %q", cfg.TargetDir)
		}
		if cfg.OutDir != "dist" {
			t.Errorf("OutDir = %q, want explicit override to win over TargetDir", cfg.OutDir)
		}
		if cfg.Sysroot != "/opt/miden" {
			t.Errorf("Sysroot = %q", cfg.Sysroot)
		}
		if !cfg.NoColor {
			t.Error("NO_COLOR=1 should force NoColor")
		}
		if !cfg.Trace {
			t.Error("MIDENC_TRACE=true should set Trace")
		}
	})
}

func TestConfigFromEnvDumbTerm(t *testing.T) {
	withEnv(t, map[string]string{"NO_COLOR": "", "TERM": "dumb"}, func() {
		cfg := ConfigFromEnv()
		if !cfg.NoColor {
			t.Error("TERM=dumb should force NoColor even without NO_COLOR")
		}
	})
}

func TestSessionEnterLayer(t *testing.T) {
	s := New(Config{})

	if s.Layer() != WasmLayer {
		t.Fatalf("fresh session should start at WasmLayer, got %d", s.Layer())
	}

	s.EnterLayer(StructuredLayer, "structured")

	if s.Layer() != StructuredLayer {
		t.Fatalf("Layer() = %d, want %d", s.Layer(), StructuredLayer)
	}
	if s.LayerName() != "structured" {
		t.Fatalf("LayerName() = %q", s.LayerName())
	}
}

func TestSessionNewHasInternerAndFreshDiags(t *testing.T) {
	s := New(Config{})

	if s.Interner == nil {
		t.Fatal("New should populate Interner")
	}
	if s.Diags == nil {
		t.Fatal("New should populate Diags")
	}
	if s.Diags.HasErrors() {
		t.Fatal("a fresh session's Diags should have no errors")
	}
}
