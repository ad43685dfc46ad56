package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoad checks layering over the defaults
func TestLoad(t *testing.T) {
	t.Run("partial_file_keeps_defaults", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "mode: zed\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Mode != "zed" {
			t.Errorf("mode = %q", cfg.Mode)
		}
		if cfg.Width != 78 {
			t.Errorf("width = %d, want the default 78", cfg.Width)
		}
	})

	t.Run("full_file", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "mode: fuzz\nwidth: 100\noutput: out.tex\nverbose: true\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Width != 100 || cfg.Output != "out.tex" || !cfg.Verbose {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("bad_mode_rejected", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "mode: markdown\n")
		if _, err := Load(path); err == nil {
			t.Error("expected an error for an unknown mode")
		}
	})

	t.Run("bad_yaml_rejected", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "mode: [\n")
		if _, err := Load(path); err == nil {
			t.Error("expected an error for malformed yaml")
		}
	})
}

// TestDiscover checks the parent-directory walk
func TestDiscover(t *testing.T) {
	t.Run("found_in_parent", func(t *testing.T) {
		root := t.TempDir()
		writeConfig(t, root, "mode: zed\n")
		nested := filepath.Join(root, "a", "b")
		if err := os.MkdirAll(nested, 0755); err != nil {
			t.Fatal(err)
		}
		cfg, err := Discover(nested)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Mode != "zed" {
			t.Errorf("mode = %q, want zed from the parent config", cfg.Mode)
		}
	})

	t.Run("absent_yields_defaults", func(t *testing.T) {
		cfg, err := Discover(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if cfg.Mode != "fuzz" || cfg.Width != 78 {
			t.Errorf("cfg = %+v, want defaults", cfg)
		}
	})
}

// TestValidate covers field checks directly
func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Width = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a negative width")
	}
}
