package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/zboard/zboard/pkg/config"
	"github.com/zboard/zboard/pkg/logger"
)

// TestConfigVerbose checks that verbose: true in a discovered config
// file turns on debug logging without the -v flag.
func TestConfigVerbose(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.zb")
	if err := os.WriteFile(src, []byte("ZED:\n  x = 1\nEND\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.FileName), []byte("verbose: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	logger.InitQuiet()
	cfgFile = ""
	verbose = false
	convertFlags.mode = ""
	convertFlags.width = 0
	convertFlags.output = filepath.Join(dir, "notes.tex")
	convertFlags.watch = false

	if err := runConvert(convertCmd, []string{src}); err != nil {
		t.Fatalf("runConvert: %v", err)
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("config verbose = true did not enable debug logging")
	}
}
