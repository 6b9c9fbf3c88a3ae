package eventpump

import "github.com/tesserawm/tessera/internal/platform"

// IgnoreConfig supplies the class/process/title deny-lists and the
// tool-window allow-list the managed-window filter consults. All
// comparisons are case-insensitive exact matches, mirroring the
// config-driven ignore lists the config package loads from YAML.
type IgnoreConfig struct {
	Classes          map[string]struct{}
	Processes        map[string]struct{}
	Titles           map[string]struct{}
	ToolWindowAllow  map[string]struct{} // classes opted in as app-windows despite the tool-window bit
	ShellClasses     map[string]struct{} // shell/desktop pseudo-window classes
}

// NewIgnoreConfig builds an IgnoreConfig from plain string slices,
// lower-casing every entry once up front so Manageable can do cheap
// exact lookups.
func NewIgnoreConfig(classes, processes, titles, toolAllow, shell []string) IgnoreConfig {
	return IgnoreConfig{
		Classes:         toSet(classes),
		Processes:       toSet(processes),
		Titles:          toSet(titles),
		ToolWindowAllow: toSet(toolAllow),
		ShellClasses:    toSet(shell),
	}
}

func toSet(items []string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, s := range items {
		m[lower(s)] = struct{}{}
	}
	return m
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func (c IgnoreConfig) has(set map[string]struct{}, s string) bool {
	_, ok := set[lower(s)]
	return ok
}

// Manageable runs the 11-point managed-window filter against a live
// attribute snapshot. valid must already be known true by the caller
// (IsValid is checked once, outside this pure function, since it
// requires a live backend round-trip this package doesn't otherwise
// need).
func Manageable(a platform.Attributes, cfg IgnoreConfig) bool {
	switch {
	case !a.Visible: // 2
		return false
	case a.Cloaked: // 3
		return false
	case a.IsChild: // 4
		return false
	case cfg.has(cfg.Classes, a.Class): // 5
		return false
	case cfg.has(cfg.Processes, a.ProcessName): // 6
		return false
	case cfg.has(cfg.Titles, a.Title): // 7
		return false
	case a.ToolWindow && !cfg.has(cfg.ToolWindowAllow, a.Class): // 8
		return false
	case a.NoActivate: // 9
		return false
	case a.Bounds.Width <= 0 || a.Bounds.Height <= 0: // 10
		return false
	case cfg.has(cfg.ShellClasses, a.Class): // 11
		return false
	default:
		return true
	}
}
