package config

// RawConfig mirrors Config but with every scalar as a pointer, so
// merge can distinguish "the user set this to its zero value" from
// "the user didn't mention this key" the same way termtile's own
// overlay config did.
type RawConfig struct {
	WorkspaceCount *int                 `yaml:"workspace_count"`
	Gap            *int                 `yaml:"gap"`
	MasterRatio    *float64             `yaml:"master_ratio"`
	LogLevel       *string              `yaml:"log_level"`
	Layouts        map[string]RawLayout `yaml:"layouts"`
	Ignore         *RawIgnoreLists      `yaml:"ignore"`
	Hotkeys        map[string]string    `yaml:"hotkeys"`
	Spawn          []SpawnBinding       `yaml:"spawn"`
}

// RawLayout is RawConfig's per-variant override entry.
type RawLayout struct {
	Gap         *int     `yaml:"gap"`
	MasterRatio *float64 `yaml:"master_ratio"`
}

// RawIgnoreLists overlays IgnoreLists. Each list, if present at all,
// replaces the default list wholesale rather than appending to it —
// the same whole-list-replace semantics termtile's own
// TerminalClasses override used.
type RawIgnoreLists struct {
	Classes         []string `yaml:"classes"`
	Processes       []string `yaml:"processes"`
	Titles          []string `yaml:"titles"`
	ToolWindowAllow []string `yaml:"tool_window_allow"`
	Shell           []string `yaml:"shell"`
}

// merge overlays raw onto base in place, returning base for chaining.
func (base *Config) merge(raw RawConfig) *Config {
	if raw.WorkspaceCount != nil {
		base.WorkspaceCount = *raw.WorkspaceCount
	}
	if raw.Gap != nil {
		base.Gap = *raw.Gap
	}
	if raw.MasterRatio != nil {
		base.MasterRatio = *raw.MasterRatio
	}
	if raw.LogLevel != nil {
		base.LogLevel = *raw.LogLevel
	}
	for name, rl := range raw.Layouts {
		d := base.Layouts[name]
		if rl.Gap != nil {
			d.Gap = *rl.Gap
		}
		if rl.MasterRatio != nil {
			d.MasterRatio = *rl.MasterRatio
		}
		base.Layouts[name] = d
	}
	if raw.Ignore != nil {
		if raw.Ignore.Classes != nil {
			base.Ignore.Classes = raw.Ignore.Classes
		}
		if raw.Ignore.Processes != nil {
			base.Ignore.Processes = raw.Ignore.Processes
		}
		if raw.Ignore.Titles != nil {
			base.Ignore.Titles = raw.Ignore.Titles
		}
		if raw.Ignore.ToolWindowAllow != nil {
			base.Ignore.ToolWindowAllow = raw.Ignore.ToolWindowAllow
		}
		if raw.Ignore.Shell != nil {
			base.Ignore.Shell = raw.Ignore.Shell
		}
	}
	for name, combo := range raw.Hotkeys {
		base.Hotkeys[name] = combo
	}
	if raw.Spawn != nil {
		base.Spawns = raw.Spawn
	}
	return base
}
