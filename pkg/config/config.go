// Package config loads converter settings from .zboard.yaml files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory and its parents.
const FileName = ".zboard.yaml"

// Config holds converter settings. Zero value is not usable; call Default.
type Config struct {
	// Mode selects the target dialect, "fuzz" or "zed".
	Mode string `yaml:"mode"`
	// Width is the advisory line-length threshold for overflow warnings.
	Width int `yaml:"width"`
	// Output is the default output path, empty for stdout.
	Output string `yaml:"output"`
	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Mode:  "fuzz",
		Width: 78,
	}
}

// Load reads cfg from path, layered over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover walks from dir up to the filesystem root looking for FileName.
// Returns the defaults when no config file exists.
func Discover(dir string) (Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Default(), err
	}
	for {
		path := filepath.Join(abs, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return Default(), nil
		}
		abs = parent
	}
}

// Validate checks field values.
func (c Config) Validate() error {
	switch c.Mode {
	case "fuzz", "zed", "zed-csp":
	default:
		return fmt.Errorf("unknown mode %q (want fuzz or zed)", c.Mode)
	}
	if c.Width < 0 {
		return fmt.Errorf("width must be non-negative, got %d", c.Width)
	}
	return nil
}
