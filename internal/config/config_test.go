package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("DefaultConfig() should validate cleanly, got %v", errs)
	}
	if cfg.WorkspaceCount != 9 {
		t.Fatalf("WorkspaceCount = %d, want 9", cfg.WorkspaceCount)
	}
	if cfg.Gap != 4 {
		t.Fatalf("Gap = %d, want 4", cfg.Gap)
	}
	if cfg.MasterRatio != 0.55 {
		t.Fatalf("MasterRatio = %v, want 0.55", cfg.MasterRatio)
	}
	if len(cfg.Hotkeys) == 0 {
		t.Fatalf("expected built-in hotkeys, got none")
	}
	if _, ok := cfg.Hotkeys["workspace_switch_1"]; !ok {
		t.Fatalf("expected workspace_switch_1 to have a default binding")
	}
}

func TestValidateRejectsOutOfRangeValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorkspaceCount = 20
	cfg.Gap = -1
	cfg.MasterRatio = 1.5
	cfg.LogLevel = "verbose"
	errs := cfg.Validate()
	if len(errs) != 4 {
		t.Fatalf("expected 4 validation errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateRejectsUnknownLayoutName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layouts["spiral"] = LayoutDefaults{Gap: 4, MasterRatio: 0.5}
	errs := cfg.Validate()
	if len(errs) != 1 {
		t.Fatalf("expected 1 validation error, got %d: %v", len(errs), errs)
	}
}

func TestLoadFromPathMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "workspace_count: 4\ngap: 8\nlayouts:\n  tall:\n    master_ratio: 0.7\nhotkeys:\n  quit: \"Super-Escape\"\nignore:\n  classes:\n    - Conky\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.WorkspaceCount != 4 {
		t.Fatalf("WorkspaceCount = %d, want 4", cfg.WorkspaceCount)
	}
	if cfg.Gap != 8 {
		t.Fatalf("Gap = %d, want 8", cfg.Gap)
	}
	if cfg.MasterRatio != defaultMasterRatio {
		t.Fatalf("MasterRatio should keep its default when unset, got %v", cfg.MasterRatio)
	}
	if got := cfg.Layouts["tall"].MasterRatio; got != 0.7 {
		t.Fatalf("layouts.tall.master_ratio = %v, want 0.7", got)
	}
	if cfg.Hotkeys["quit"] != "Super-Escape" {
		t.Fatalf("hotkeys.quit override did not apply")
	}
	if cfg.Hotkeys["focus_left"] == "" {
		t.Fatalf("unrelated default hotkey focus_left should survive the merge")
	}
	if len(cfg.Ignore.Classes) != 1 || cfg.Ignore.Classes[0] != "Conky" {
		t.Fatalf("ignore.classes override did not apply, got %v", cfg.Ignore.Classes)
	}
	if len(cfg.Ignore.Shell) == 0 {
		t.Fatalf("ignore.shell default should survive when not overridden")
	}
}

func TestLoadFromPathRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("workspace_count: 4\nbogus_field: true\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected strict decoding to reject an unknown field")
	}
}

func TestLoadFromPathRejectsInvalidMergedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("gap: -1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected a negative gap to fail validation")
	}
}

func TestLoadFromPathErrorsWhenFileMissing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatalf("LoadFromPath should error on a missing file")
		_ = cfg
	}
}
