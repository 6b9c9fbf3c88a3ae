package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ValidationError wraps one problem found while merging or validating
// a config file, carrying the file path so a user can find the
// offending line without re-reading the whole document.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// DefaultConfigPath returns ~/.config/tessera/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "tessera", "config.yaml")
}

// Load resolves the default config path and loads it, falling back to
// DefaultConfig() untouched if no file exists there.
func Load() (*Config, error) {
	path := DefaultConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads, strictly decodes, merges onto the defaults, and
// validates the YAML file at path.
func LoadFromPath(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Err: err}
	}
	defer f.Close()

	var raw RawConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}

	cfg := DefaultConfig().merge(raw)
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Path: path, Err: errors.Join(errs...)}
	}
	return cfg, nil
}
