// Package wm implements the workspace manager: the per-monitor
// multiplexer that owns every Workspace, the monitor-to-active-
// workspace mapping, and the operations that move windows between
// workspaces and monitors while keeping the event pump's managed set
// and suppression gates consistent with what actually happened.
package wm

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/tesserawm/tessera/internal/eventpump"
	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/handle"
	"github.com/tesserawm/tessera/internal/workspace"
)

// Manager is the workspace multiplexer: N fixed workspaces (default
// 9), M monitors detected at startup, each monitor mapped to exactly
// one active workspace.
type Manager struct {
	mu sync.Mutex

	pump     *eventpump.Pump
	monitors []geom.Monitor

	workspaces map[int]*workspace.Workspace
	monitorWS  map[int]int // monitor index -> active workspace id

	logger *slog.Logger
}

// New builds a Manager with workspaceCount fixed workspaces and the
// initial monitor→workspace mapping monitor i → workspace (i mod N)+1.
// pump may be nil in tests that don't exercise suppression.
func New(pump *eventpump.Pump, monitors []geom.Monitor, workspaceCount int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		pump:       pump,
		monitors:   monitors,
		workspaces: make(map[int]*workspace.Workspace, workspaceCount),
		monitorWS:  make(map[int]int, len(monitors)),
		logger:     logger,
	}
	for id := 1; id <= workspaceCount; id++ {
		m.workspaces[id] = workspace.New(id, fmt.Sprintf("%d", id))
	}
	for i := range monitors {
		wsID := (i % workspaceCount) + 1
		m.monitorWS[i] = wsID
		m.workspaces[wsID].SetActive(true)
	}
	return m
}

// SetLayoutParams applies a configured master_ratio/gap default for
// the named layout variant to every workspace, so the setting takes
// effect regardless of which monitor is currently showing it.
func (m *Manager) SetLayoutParams(name string, masterRatio float64, gap int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ws := range m.workspaces {
		ws.SetLayoutParams(name, masterRatio, gap)
	}
}

// ActiveWorkspace returns the workspace currently active on monitorIndex.
func (m *Manager) ActiveWorkspace(monitorIndex int) (*workspace.Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeWorkspaceLocked(monitorIndex)
}

func (m *Manager) activeWorkspaceLocked(monitorIndex int) (*workspace.Workspace, bool) {
	wsID, ok := m.monitorWS[monitorIndex]
	if !ok {
		return nil, false
	}
	return m.workspaces[wsID], true
}

// WorkspaceOf returns the workspace currently holding win, tiled or
// floating, if any.
func (m *Manager) WorkspaceOf(win handle.Window) (*workspace.Workspace, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws := m.findWindowWorkspaceLocked(win)
	if ws == nil {
		return nil, false
	}
	return ws, true
}

// MonitorForWorkspace returns the monitor index wsID is currently
// active on, if any.
func (m *Manager) MonitorForWorkspace(wsID int) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitorForWorkspaceLocked(wsID)
}

func (m *Manager) monitorForWorkspaceLocked(wsID int) (int, bool) {
	for mi, id := range m.monitorWS {
		if id == wsID {
			return mi, true
		}
	}
	return 0, false
}

func (m *Manager) findWindowWorkspaceLocked(win handle.Window) *workspace.Workspace {
	for _, ws := range m.workspaces {
		if ws.Contains(win) {
			return ws
		}
	}
	return nil
}

func (m *Manager) retileLocked(ws *workspace.Workspace, monitorIndex int) {
	if monitorIndex < 0 || monitorIndex >= len(m.monitors) {
		return
	}
	mon := m.monitors[monitorIndex]
	ws.Retile(mon.WorkRect, mon.FullRect)
}

// Retile retiles the active workspace on monitorIndex, if any.
func (m *Manager) Retile(monitorIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ws, ok := m.activeWorkspaceLocked(monitorIndex)
	if !ok || !ws.Active() {
		return
	}
	m.retileLocked(ws, monitorIndex)
}

// RetileAll retiles every monitor's active workspace.
func (m *Manager) RetileAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for mi, wsID := range m.monitorWS {
		m.retileLocked(m.workspaces[wsID], mi)
	}
}

// AddWindow adds win to the active workspace of monitorIndex, unless
// win is already native-fullscreen over that monitor's full rect (in
// which case it is deliberately left unmanaged — an exclusive-
// fullscreen game should never be tiled) or already tracked anywhere.
func (m *Manager) AddWindow(win handle.Window, monitorIndex int, floating bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findWindowWorkspaceLocked(win) != nil {
		return false
	}
	if monitorIndex < 0 || monitorIndex >= len(m.monitors) {
		return false
	}
	if win.IsNativeFullscreen(m.monitors[monitorIndex].FullRect) {
		m.logger.Info("ignoring exclusive-fullscreen window", "handle", win.Handle())
		return false
	}

	ws, ok := m.activeWorkspaceLocked(monitorIndex)
	if !ok || !ws.AddWindow(win, floating) {
		return false
	}
	if ws.Active() && !floating {
		m.retileLocked(ws, monitorIndex)
	}
	return true
}

// RemoveWindow removes win from whichever workspace holds it,
// retiling that workspace if it is active.
func (m *Manager) RemoveWindow(win handle.Window) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ws := m.findWindowWorkspaceLocked(win)
	if ws == nil || !ws.RemoveWindow(win) {
		return false
	}
	if ws.Active() {
		if mi, ok := m.monitorForWorkspaceLocked(ws.ID()); ok {
			m.retileLocked(ws, mi)
		}
	}
	return true
}

// SwitchWorkspace activates targetID on monitorIndex. If targetID is
// already active on another monitor, this delegates to a monitor
// swap. A no-op if targetID is already active on monitorIndex.
func (m *Manager) SwitchWorkspace(targetID, monitorIndex int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	currentID, ok := m.monitorWS[monitorIndex]
	if !ok {
		return false
	}
	if currentID == targetID {
		return false
	}

	if otherMonitor, ok := m.monitorForWorkspaceLocked(targetID); ok && otherMonitor != monitorIndex {
		return m.swapWorkspacesBetweenMonitorsLocked(monitorIndex, otherMonitor)
	}

	target, ok := m.workspaces[targetID]
	if !ok {
		return false
	}
	current := m.workspaces[currentID]

	m.withSuppressionLocked(func() {
		m.registerSuppressedLocked(current, target)
		current.HideAllWindows()
		current.SetActive(false)
		target.ShowAllWindows()
		target.SetActive(true)
		m.ensureWindowsTrackedLocked(target)
	})

	m.monitorWS[monitorIndex] = targetID
	m.retileLocked(target, monitorIndex)
	m.logger.Info("switched workspace", "monitor", monitorIndex, "from", currentID, "to", targetID)
	return true
}

func (m *Manager) swapWorkspacesBetweenMonitorsLocked(monitorA, monitorB int) bool {
	idA, okA := m.monitorWS[monitorA]
	idB, okB := m.monitorWS[monitorB]
	if !okA || !okB {
		return false
	}
	a, b := m.workspaces[idA], m.workspaces[idB]

	m.withSuppressionLocked(func() {
		m.registerSuppressedLocked(a, b)
		a.HideAllWindows()
		b.HideAllWindows()

		m.monitorWS[monitorA] = idB
		m.monitorWS[monitorB] = idA

		a.ShowAllWindows()
		b.ShowAllWindows()
		m.ensureWindowsTrackedLocked(a)
		m.ensureWindowsTrackedLocked(b)
	})

	m.retileLocked(b, monitorA)
	m.retileLocked(a, monitorB)
	m.logger.Info("swapped workspaces between monitors", "monitorA", monitorA, "monitorB", monitorB)
	return true
}

// MoveWindowToWorkspace moves win from its current workspace to
// targetID. If targetID is not currently active, win is hidden under
// suppression (fullscreen windows are suspended instead) and
// re-inserted into the pump's managed set so it isn't lost while the
// target workspace is inactive.
func (m *Manager) MoveWindowToWorkspace(win handle.Window, targetID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, ok := m.workspaces[targetID]
	if !ok || target.Contains(win) {
		return false
	}
	source := m.findWindowWorkspaceLocked(win)
	if source == nil {
		return false
	}

	if m.pump != nil {
		m.pump.RegisterSuppressed(win.Handle())
	}

	source.RemoveWindow(win)
	if source.Active() {
		if mi, ok := m.monitorForWorkspaceLocked(source.ID()); ok {
			m.retileLocked(source, mi)
		}
	}

	target.AddWindow(win, false)

	if target.Active() {
		if mi, ok := m.monitorForWorkspaceLocked(target.ID()); ok {
			m.retileLocked(target, mi)
		}
		return true
	}

	m.withSuppressionLocked(func() {
		if win.IsValid() {
			target.ParkWindowOffscreen(win)
		}
		m.ensureWindowsTrackedLocked(target)
	})
	return true
}

// MoveWindowToNextMonitor moves win's workspace membership from its
// current monitor's active workspace to the active workspace of the
// next monitor in circular order. A no-op with only one monitor.
func (m *Manager) MoveWindowToNextMonitor(win handle.Window) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.monitors) < 2 {
		return false
	}
	source := m.findWindowWorkspaceLocked(win)
	if source == nil {
		return false
	}
	sourceMI, ok := m.monitorForWorkspaceLocked(source.ID())
	if !ok {
		return false
	}
	nextMI := (sourceMI + 1) % len(m.monitors)
	target, ok := m.activeWorkspaceLocked(nextMI)
	if !ok {
		return false
	}

	source.RemoveWindow(win)
	m.retileLocked(source, sourceMI)

	target.AddWindow(win, false)
	m.retileLocked(target, nextMI)
	return true
}

// RefreshMonitors redetects monitors and reconciles the mapping: any
// workspace whose monitor index no longer exists is deactivated and
// hidden (under suppression); it stays that way until later reassigned
// by a subsequent RefreshMonitors call that restores enough monitors,
// or until the user manually switches to it.
func (m *Manager) RefreshMonitors(newMonitors []geom.Monitor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(newMonitors) == 0 {
		m.logger.Warn("refresh_monitors: no monitors detected, keeping prior layout")
		return
	}
	m.monitors = newMonitors

	m.withSuppressionLocked(func() {
		for mi := range m.monitorWS {
			if mi >= len(m.monitors) {
				wsID := m.monitorWS[mi]
				delete(m.monitorWS, mi)
				ws := m.workspaces[wsID]
				ws.SetActive(false)
				ws.HideAllWindows()
			}
		}
	})

	for mi, wsID := range m.monitorWS {
		m.retileLocked(m.workspaces[wsID], mi)
	}
}

// RestoreAllWindows is the shutdown path: every fullscreen window
// exits fullscreen, and every window on an inactive workspace is
// restored from its saved position (or, if it has none, given an
// ordinary restore when it is minimized). Done entirely under suppression so the shutdown sequence
// never fires a flurry of spurious managed events.
func (m *Manager) RestoreAllWindows() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.withSuppressionLocked(func() {
		for _, ws := range m.workspaces {
			for _, win := range ws.Tiled() {
				if win.IsValid() && win.IsFullscreen() {
					win.ExitFullscreen()
				}
			}
			for _, win := range ws.Floating() {
				if win.IsValid() && win.IsFullscreen() {
					win.ExitFullscreen()
				}
			}
			if ws.Active() {
				continue
			}
			ws.ShowAllWindows()
		}
	})
}

// DumpState returns a human-readable summary of the monitor→workspace
// mapping plus every workspace's own DumpState line. No CLI
// subcommand prints it; the tests use it.
func (m *Manager) DumpState() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var b strings.Builder
	for i := 0; i < len(m.monitors); i++ {
		fmt.Fprintf(&b, "monitor %d -> workspace %d\n", i, m.monitorWS[i])
	}
	ids := make([]int, 0, len(m.workspaces))
	for id := range m.workspaces {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Fprintln(&b, m.workspaces[id].DumpState())
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Manager) withSuppressionLocked(fn func()) {
	if m.pump != nil {
		m.pump.SuppressHideShow()
	}
	fn()
	if m.pump != nil {
		m.pump.ResumeHideShow()
	}
}

func (m *Manager) registerSuppressedLocked(workspaces ...*workspace.Workspace) {
	if m.pump == nil {
		return
	}
	var handles []handle.Handle
	for _, ws := range workspaces {
		for _, win := range ws.Tiled() {
			if win.IsValid() {
				handles = append(handles, win.Handle())
			}
		}
		for _, win := range ws.Floating() {
			if win.IsValid() {
				handles = append(handles, win.Handle())
			}
		}
	}
	if len(handles) > 0 {
		m.pump.RegisterSuppressed(handles...)
	}
}

func (m *Manager) ensureWindowsTrackedLocked(ws *workspace.Workspace) {
	if m.pump == nil {
		return
	}
	for _, win := range ws.Tiled() {
		if win.IsValid() {
			m.pump.Managed().Insert(win)
		}
	}
	for _, win := range ws.Floating() {
		if win.IsValid() {
			m.pump.Managed().Insert(win)
		}
	}
}
