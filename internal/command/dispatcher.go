// Package command turns the fixed hotkey command surface of spec.md
// §6 into calls against the workspace manager, the event pump's
// managed set, and the active layout: workspace switching, directional
// focus/move, window state changes, layout tuning, resize mode, and
// process lifecycle (spawn/retile/quit).
package command

import (
	"fmt"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/tesserawm/tessera/internal/eventpump"
	"github.com/tesserawm/tessera/internal/wm"
	"github.com/tesserawm/tessera/internal/workspace"
)

// Dispatcher binds the hotkey command surface to a running WM. One
// Dispatcher serves the whole process; every method is safe to call
// from hotkey callbacks on the event pump's own thread.
type Dispatcher struct {
	mgr    *wm.Manager
	pump   *eventpump.Pump
	logger *slog.Logger

	onQuit func()

	mu         sync.Mutex
	resizeMode bool
}

// New constructs a Dispatcher over mgr and pump. onQuit, if non-nil,
// is invoked once by Quit before the pump is stopped (e.g. to release
// resources the CLI entrypoint owns). logger may be nil.
func New(mgr *wm.Manager, pump *eventpump.Pump, onQuit func(), logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{mgr: mgr, pump: pump, onQuit: onQuit, logger: logger}
}

// currentMonitor resolves "the monitor the command should act on": the
// monitor holding the currently focused window's workspace, or monitor
// 0 if nothing is focused. spec.md does not define per-monitor input
// focus beyond the monitor→active-workspace mapping, so this is the
// simplest consistent resolution.
func (d *Dispatcher) currentMonitor() int {
	if win, ok := d.pump.Managed().Focused(); ok {
		if ws, ok := d.mgr.WorkspaceOf(win); ok {
			if mi, ok := d.mgr.MonitorForWorkspace(ws.ID()); ok {
				return mi
			}
		}
	}
	return 0
}

func (d *Dispatcher) activeWorkspace() (*workspace.Workspace, int, bool) {
	mi := d.currentMonitor()
	ws, ok := d.mgr.ActiveWorkspace(mi)
	if !ok {
		return nil, 0, false
	}
	return ws, mi, true
}

// SwitchWorkspace activates workspace id on the current monitor.
func (d *Dispatcher) SwitchWorkspace(id int) bool {
	return d.mgr.SwitchWorkspace(id, d.currentMonitor())
}

// MoveFocusedToWorkspace moves the focused window to workspace id.
func (d *Dispatcher) MoveFocusedToWorkspace(id int) bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	return d.mgr.MoveWindowToWorkspace(win, id)
}

// Focus moves input focus to the nearest tiled window in dir, within
// the focused window's own workspace.
func (d *Dispatcher) Focus(dir Direction) bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	ws, ok := d.mgr.WorkspaceOf(win)
	if !ok {
		return false
	}
	return FocusDirection(win, ws.Tiled(), dir)
}

// MoveWindow swaps the focused window with its nearest tiled neighbor
// in dir and retiles.
func (d *Dispatcher) MoveWindow(dir Direction) bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	ws, ok := d.mgr.WorkspaceOf(win)
	if !ok {
		return false
	}
	if !SwapDirection(win, ws, dir) {
		return false
	}
	if mi, ok := d.mgr.MonitorForWorkspace(ws.ID()); ok {
		d.mgr.Retile(mi)
	}
	return true
}

// CloseFocused posts a close request to the focused window.
func (d *Dispatcher) CloseFocused() bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	return win.Close()
}

// MinimizeFocused iconifies the focused window.
func (d *Dispatcher) MinimizeFocused() bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	return win.Minimize()
}

// MaximizeFocused zooms the focused window over its monitor's work area.
func (d *Dispatcher) MaximizeFocused() bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	return win.Maximize()
}

// RestoreFocused un-minimizes or un-maximizes the focused window.
func (d *Dispatcher) RestoreFocused() bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	return win.Restore()
}

// SwapWithMaster promotes the focused window to master position and
// retiles.
func (d *Dispatcher) SwapWithMaster() bool {
	win, ok := d.pump.Managed().Focused()
	if !ok {
		return false
	}
	ws, ok := d.mgr.WorkspaceOf(win)
	if !ok {
		return false
	}
	ws.SwapWithMaster(win)
	if mi, ok := d.mgr.MonitorForWorkspace(ws.ID()); ok {
		d.mgr.Retile(mi)
	}
	return true
}

// NextLayout/PrevLayout cycle the current monitor's active workspace
// through the fixed layout-variant set and retile.
func (d *Dispatcher) NextLayout() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.NextLayout()
	d.mgr.Retile(mi)
	return true
}

func (d *Dispatcher) PrevLayout() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.PrevLayout()
	d.mgr.Retile(mi)
	return true
}

// RotateNext/RotatePrev cyclically shift the tiled list and retile.
func (d *Dispatcher) RotateNext() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.RotateNext()
	d.mgr.Retile(mi)
	return true
}

func (d *Dispatcher) RotatePrev() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.RotatePrev()
	d.mgr.Retile(mi)
	return true
}

// GrowMaster/ShrinkMaster adjust the current layout's master_ratio and
// retile.
func (d *Dispatcher) GrowMaster() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.CurrentLayout().GrowMaster()
	d.mgr.Retile(mi)
	return true
}

func (d *Dispatcher) ShrinkMaster() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.CurrentLayout().ShrinkMaster()
	d.mgr.Retile(mi)
	return true
}

// IncreaseGap/DecreaseGap adjust the current layout's gap and retile.
func (d *Dispatcher) IncreaseGap() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.CurrentLayout().IncreaseGap()
	d.mgr.Retile(mi)
	return true
}

func (d *Dispatcher) DecreaseGap() bool {
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	ws.CurrentLayout().DecreaseGap()
	d.mgr.Retile(mi)
	return true
}

// InResizeMode reports whether interactive resize mode is active.
func (d *Dispatcher) InResizeMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resizeMode
}

// EnterResizeMode switches into interactive arrows-resize mode:
// subsequent ResizeArrow calls adjust the current workspace's layout
// instead of moving focus.
func (d *Dispatcher) EnterResizeMode() {
	d.mu.Lock()
	d.resizeMode = true
	d.mu.Unlock()
}

// ExitResizeMode leaves resize mode and retiles once more so the final
// adjustment is reflected.
func (d *Dispatcher) ExitResizeMode() {
	d.mu.Lock()
	d.resizeMode = false
	d.mu.Unlock()
	if _, mi, ok := d.activeWorkspace(); ok {
		d.mgr.Retile(mi)
	}
}

// ToggleResizeMode flips resize mode on or off.
func (d *Dispatcher) ToggleResizeMode() {
	d.mu.Lock()
	entering := !d.resizeMode
	d.resizeMode = entering
	d.mu.Unlock()
	if !entering {
		if _, mi, ok := d.activeWorkspace(); ok {
			d.mgr.Retile(mi)
		}
	}
}

// ResizeArrow handles an arrow-key press while in resize mode:
// left/right shrink/grow master_ratio, up/down decrease/increase gap.
// Returns false if resize mode is not active.
func (d *Dispatcher) ResizeArrow(dir Direction) bool {
	if !d.InResizeMode() {
		return false
	}
	ws, mi, ok := d.activeWorkspace()
	if !ok {
		return false
	}
	l := ws.CurrentLayout()
	switch dir {
	case Left:
		l.ShrinkMaster()
	case Right:
		l.GrowMaster()
	case Up:
		l.DecreaseGap()
	case Down:
		l.IncreaseGap()
	}
	d.mgr.Retile(mi)
	return true
}

// ResizeExit handles the escape/enter keypress that ends resize mode.
// Returns false if resize mode was not active.
func (d *Dispatcher) ResizeExit() bool {
	if !d.InResizeMode() {
		return false
	}
	d.ExitResizeMode()
	return true
}

// SpawnExternal launches name with args as a detached child process.
// The core treats the launched process as opaque: it neither waits for
// it nor inspects its output.
func (d *Dispatcher) SpawnExternal(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("command: spawn %q: %w", name, err)
	}
	return nil
}

// Retile retiles the current monitor's active workspace.
func (d *Dispatcher) Retile() bool {
	mi := d.currentMonitor()
	d.mgr.Retile(mi)
	return true
}

// RetileAll retiles every monitor's active workspace.
func (d *Dispatcher) RetileAll() {
	d.mgr.RetileAll()
}

// Quit runs the onQuit callback (if any) and stops the event pump,
// causing Pump.Run to return.
func (d *Dispatcher) Quit() {
	d.logger.Info("quit requested")
	if d.onQuit != nil {
		d.onQuit()
	}
	d.pump.Stop()
}
