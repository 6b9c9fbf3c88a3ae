// Package config loads tessera's YAML configuration: workspace count,
// default gap/master_ratio, per-layout overrides, the ignore lists fed
// to internal/eventpump's filter, and the hotkey-to-command bindings
// table internal/hotkeys and internal/command are wired through.
package config

import (
	"fmt"

	"github.com/tesserawm/tessera/internal/layout"
)

const (
	defaultWorkspaceCount = 9
	maxWorkspaceCount     = 9 // spec.md's hotkey surface only names workspaces 1..9
	defaultGap            = 4
	defaultMasterRatio    = 0.55
	minMasterRatio        = 0.1
	maxMasterRatio        = 0.9
)

// LayoutDefaults overrides the starting master_ratio/gap for one named
// layout variant. Either field may be zero, meaning "use the global
// default". A per-layout gap of 0 is therefore indistinguishable from
// an unset one and cannot be requested here, even though a global gap
// of 0 is valid.
type LayoutDefaults struct {
	Gap         int     `yaml:"gap"`
	MasterRatio float64 `yaml:"master_ratio"`
}

// IgnoreLists feeds eventpump.NewIgnoreConfig: windows matching any of
// these are never tiled.
type IgnoreLists struct {
	Classes         []string `yaml:"classes"`
	Processes       []string `yaml:"processes"`
	Titles          []string `yaml:"titles"`
	ToolWindowAllow []string `yaml:"tool_window_allow"`
	Shell           []string `yaml:"shell"`
}

// SpawnBinding binds a hotkey combo directly to an external process
// launch, bypassing the fixed command table. spec.md §6 treats the
// launched process as opaque to the core.
type SpawnBinding struct {
	Combo   string   `yaml:"combo"`
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Config is the fully-resolved, post-merge, post-validation
// configuration a running tessera process acts on.
type Config struct {
	WorkspaceCount int                       `yaml:"workspace_count"`
	Gap            int                       `yaml:"gap"`
	MasterRatio    float64                   `yaml:"master_ratio"`
	LogLevel       string                    `yaml:"log_level"`
	Layouts        map[string]LayoutDefaults `yaml:"layouts"`
	Ignore         IgnoreLists               `yaml:"ignore"`
	Hotkeys        map[string]string         `yaml:"hotkeys"`
	Spawns         []SpawnBinding            `yaml:"spawn"`
}

// DefaultConfig returns the built-in configuration, before any user
// file is merged in.
func DefaultConfig() *Config {
	return &Config{
		WorkspaceCount: defaultWorkspaceCount,
		Gap:            defaultGap,
		MasterRatio:    defaultMasterRatio,
		LogLevel:       "info",
		Layouts:        map[string]LayoutDefaults{},
		Ignore: IgnoreLists{
			// Desktop/taskbar-shell classes a reconciling WM must never
			// try to tile, mirroring the shell-class carve-out
			// spec.md §4.E's ignore rules describe.
			Shell: []string{"Desktop", "Shell_TrayWnd", "Progman", "Button"},
		},
		Hotkeys: defaultHotkeys(),
		Spawns: []SpawnBinding{
			{Combo: "Super-Return", Command: "xterm"},
		},
	}
}

// defaultHotkeys is the built-in combo table for every fixed command
// in spec.md §6's hotkey surface. Users override individual entries;
// an entry they don't mention keeps its built-in combo.
func defaultHotkeys() map[string]string {
	h := map[string]string{
		"focus_left": "Super-Left", "focus_right": "Super-Right",
		"focus_up": "Super-Up", "focus_down": "Super-Down",
		"move_left": "Super-Shift-Left", "move_right": "Super-Shift-Right",
		"move_up": "Super-Shift-Up", "move_down": "Super-Shift-Down",
		"close": "Super-Shift-c", "minimize": "Super-n",
		"maximize": "Super-m", "restore": "Super-Shift-n",
		"swap_master": "Super-Shift-Return",
		"next_layout": "Super-Space", "prev_layout": "Super-Shift-Space",
		"rotate_next": "Super-Tab", "rotate_prev": "Super-Shift-Tab",
		"grow_master": "Super-l", "shrink_master": "Super-h",
		"increase_gap": "Super-Control-k", "decrease_gap": "Super-Control-j",
		"resize_mode_enter": "Super-Control-r", "resize_mode_toggle": "Super-r",
		"resize_mode_exit":   "Escape",
		"resize_arrow_left":  "Super-Control-Left",
		"resize_arrow_right": "Super-Control-Right",
		"resize_arrow_up":    "Super-Control-Up",
		"resize_arrow_down":  "Super-Control-Down",
		"retile": "Super-Control-t", "retile_all": "Super-Control-Shift-t",
		"quit": "Super-Shift-q",
	}
	for i := 1; i <= maxWorkspaceCount; i++ {
		h[fmt.Sprintf("workspace_switch_%d", i)] = fmt.Sprintf("Super-%d", i)
		h[fmt.Sprintf("move_to_workspace_%d", i)] = fmt.Sprintf("Super-Shift-%d", i)
	}
	return h
}

// Validate checks the merged config against spec.md's invariants,
// returning every problem found rather than stopping at the first.
func (c *Config) Validate() []error {
	var errs []error
	if c.WorkspaceCount < 1 || c.WorkspaceCount > maxWorkspaceCount {
		errs = append(errs, fmt.Errorf("workspace_count must be between 1 and %d, got %d", maxWorkspaceCount, c.WorkspaceCount))
	}
	if c.Gap < 0 {
		errs = append(errs, fmt.Errorf("gap must be >= 0, got %d", c.Gap))
	}
	if c.MasterRatio < minMasterRatio || c.MasterRatio > maxMasterRatio {
		errs = append(errs, fmt.Errorf("master_ratio must be between %.2f and %.2f, got %.2f", minMasterRatio, maxMasterRatio, c.MasterRatio))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug/info/warn/error, got %q", c.LogLevel))
	}
	names := make(map[string]bool, len(layout.Names()))
	for _, n := range layout.Names() {
		names[n] = true
	}
	for name, d := range c.Layouts {
		if !names[name] {
			errs = append(errs, fmt.Errorf("layouts: unknown variant %q", name))
			continue
		}
		if d.Gap < 0 {
			errs = append(errs, fmt.Errorf("layouts.%s.gap must be >= 0, got %d", name, d.Gap))
		}
		if d.MasterRatio != 0 && (d.MasterRatio < minMasterRatio || d.MasterRatio > maxMasterRatio) {
			errs = append(errs, fmt.Errorf("layouts.%s.master_ratio must be between %.2f and %.2f, got %.2f", name, minMasterRatio, maxMasterRatio, d.MasterRatio))
		}
	}
	return errs
}
