package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tesserawm/tessera/internal/command"
	"github.com/tesserawm/tessera/internal/hotkeys"
)

// commandFuncs is the fixed command-name -> dispatcher-call table for
// every entry in spec.md §6's hotkey surface that isn't parameterized
// by a workspace number; directional commands get one entry per
// direction.
func commandFuncs(d *command.Dispatcher) map[string]func() {
	return map[string]func(){
		"close":       func() { d.CloseFocused() },
		"minimize":    func() { d.MinimizeFocused() },
		"maximize":    func() { d.MaximizeFocused() },
		"restore":     func() { d.RestoreFocused() },
		"swap_master": func() { d.SwapWithMaster() },

		"next_layout": func() { d.NextLayout() },
		"prev_layout": func() { d.PrevLayout() },
		"rotate_next": func() { d.RotateNext() },
		"rotate_prev": func() { d.RotatePrev() },

		"grow_master":   func() { d.GrowMaster() },
		"shrink_master": func() { d.ShrinkMaster() },
		"increase_gap":  func() { d.IncreaseGap() },
		"decrease_gap":  func() { d.DecreaseGap() },

		"resize_mode_enter":  func() { d.EnterResizeMode() },
		"resize_mode_exit":   func() { d.ResizeExit() },
		"resize_mode_toggle": func() { d.ToggleResizeMode() },
		"resize_arrow_left":  func() { d.ResizeArrow(command.Left) },
		"resize_arrow_right": func() { d.ResizeArrow(command.Right) },
		"resize_arrow_up":    func() { d.ResizeArrow(command.Up) },
		"resize_arrow_down":  func() { d.ResizeArrow(command.Down) },

		"retile":     func() { d.Retile() },
		"retile_all": func() { d.RetileAll() },
		"quit":       func() { d.Quit() },

		"focus_left":  func() { d.Focus(command.Left) },
		"focus_right": func() { d.Focus(command.Right) },
		"focus_up":    func() { d.Focus(command.Up) },
		"focus_down":  func() { d.Focus(command.Down) },

		"move_left":  func() { d.MoveWindow(command.Left) },
		"move_right": func() { d.MoveWindow(command.Right) },
		"move_up":    func() { d.MoveWindow(command.Up) },
		"move_down":  func() { d.MoveWindow(command.Down) },
	}
}

// resolveCommand turns a command name into a callback, handling the
// workspace_switch_N / move_to_workspace_N families that the fixed
// table above can't express directly.
func resolveCommand(name string, d *command.Dispatcher, fixed map[string]func()) (func(), error) {
	if fn, ok := fixed[name]; ok {
		return fn, nil
	}
	if id, ok := parseIndexed(name, "workspace_switch_"); ok {
		return func() { d.SwitchWorkspace(id) }, nil
	}
	if id, ok := parseIndexed(name, "move_to_workspace_"); ok {
		return func() { d.MoveFocusedToWorkspace(id) }, nil
	}
	return nil, fmt.Errorf("unknown command %q", name)
}

func parseIndexed(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// BindHotkeys registers every entry in cfg.Hotkeys and cfg.Spawns
// against reg, dispatching fired hotkeys to d. A binding with an
// unknown command name or a combo string the backend can't resolve is
// spec.md §7's BadConfig case: logged and skipped, the remaining
// bindings still register.
func BindHotkeys(cfg *Config, reg *hotkeys.Registry, d *command.Dispatcher, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	fixed := commandFuncs(d)
	for name, combo := range cfg.Hotkeys {
		fn, err := resolveCommand(name, d, fixed)
		if err != nil {
			logger.Warn("config: skipping hotkey binding: unknown command", "name", name, "combo", combo, "err", err)
			continue
		}
		if _, err := reg.Bind(combo, fn); err != nil {
			logger.Warn("config: skipping hotkey binding: bad combo", "name", name, "combo", combo, "err", err)
			continue
		}
	}
	for _, sb := range cfg.Spawns {
		sb := sb
		if _, err := reg.Bind(sb.Combo, func() { _ = d.SpawnExternal(sb.Command, sb.Args...) }); err != nil {
			logger.Warn("config: skipping spawn binding: bad combo", "combo", sb.Combo, "command", sb.Command, "err", err)
		}
	}
}
