package command

import (
	"testing"

	"github.com/tesserawm/tessera/internal/eventpump"
	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/handle"
	"github.com/tesserawm/tessera/internal/platform"
	"github.com/tesserawm/tessera/internal/wm"
)

// fakeBackend is a minimal in-memory platform.Backend for exercising
// Dispatcher without any real OS.
type fakeBackend struct {
	attrs  map[platform.WindowID]platform.Attributes
	valid  map[platform.WindowID]bool
	closed map[platform.WindowID]bool
}

var _ platform.Backend = (*fakeBackend)(nil)

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		attrs:  make(map[platform.WindowID]platform.Attributes),
		valid:  make(map[platform.WindowID]bool),
		closed: make(map[platform.WindowID]bool),
	}
}

func (f *fakeBackend) EnumerateWindows() ([]platform.WindowID, error) { return nil, nil }

func (f *fakeBackend) Attributes(id platform.WindowID) (platform.Attributes, error) {
	return f.attrs[id], nil
}

func (f *fakeBackend) IsValid(id platform.WindowID) bool { return f.valid[id] }

func (f *fakeBackend) SetStyle(id platform.WindowID, style platform.StyleBits) error {
	a := f.attrs[id]
	a.Style = style
	f.attrs[id] = a
	return nil
}

func (f *fakeBackend) MoveResize(id platform.WindowID, bounds geom.Rect, _ platform.PlacementFlags) error {
	a := f.attrs[id]
	a.Bounds = bounds
	f.attrs[id] = a
	return nil
}

func (f *fakeBackend) ShowWindow(id platform.WindowID, cmd platform.ShowCmd) error {
	a := f.attrs[id]
	switch cmd {
	case platform.ShowMinimize:
		a.Minimized = true
	case platform.ShowMaximize:
		a.Maximized = true
	case platform.ShowRestore:
		a.Minimized = false
		a.Maximized = false
	}
	f.attrs[id] = a
	return nil
}

func (f *fakeBackend) Close(id platform.WindowID) error {
	f.closed[id] = true
	return nil
}

func (f *fakeBackend) Focus(id platform.WindowID) error { return nil }

func (f *fakeBackend) Monitors() ([]geom.Monitor, error) { return nil, nil }

func (f *fakeBackend) RegisterHotkey(uint32, uint32) (platform.HotkeyID, error) { return 0, nil }
func (f *fakeBackend) UnregisterHotkey(platform.HotkeyID) error                { return nil }

func (f *fakeBackend) Fetch() (platform.Event, bool) { return platform.Event{}, false }
func (f *fakeBackend) Start() error                  { return nil }
func (f *fakeBackend) Stop()                         {}

func newWindow(b *fakeBackend, id platform.WindowID, bounds geom.Rect) handle.Window {
	b.valid[id] = true
	b.attrs[id] = platform.Attributes{Bounds: bounds, Visible: true}
	return handle.New(handle.Handle(id), b)
}

func oneMonitor() []geom.Monitor {
	return []geom.Monitor{{
		Name:      "primary",
		FullRect:  geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		WorkRect:  geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
		IsPrimary: true,
	}}
}

// newTestDispatcher builds a Dispatcher with a single-monitor Manager
// and a Pump whose managed set is pre-populated directly (tests don't
// exercise the pump's own filter/dispatch machinery here).
func newTestDispatcher(b *fakeBackend) (*Dispatcher, *wm.Manager, *eventpump.Pump) {
	pump := eventpump.New(b, eventpump.NewIgnoreConfig(nil, nil, nil, nil, nil), nil, nil, nil)
	mgr := wm.New(pump, oneMonitor(), 9, nil)
	d := New(mgr, pump, nil, nil)
	return d, mgr, pump
}

func focus(pump *eventpump.Pump, win handle.Window) {
	pump.Managed().Insert(win)
	pump.Managed().SetFocus(win.Handle())
}

func TestSwitchWorkspaceActivatesTarget(t *testing.T) {
	b := newFakeBackend()
	d, mgr, _ := newTestDispatcher(b)

	if !d.SwitchWorkspace(3) {
		t.Fatalf("SwitchWorkspace(3) should succeed from the default active workspace")
	}
	ws, ok := mgr.ActiveWorkspace(0)
	if !ok || ws.ID() != 3 {
		t.Fatalf("expected workspace 3 active on monitor 0, got %+v", ws)
	}
}

func TestMoveFocusedToWorkspaceRequiresFocus(t *testing.T) {
	b := newFakeBackend()
	d, _, _ := newTestDispatcher(b)

	if d.MoveFocusedToWorkspace(2) {
		t.Fatalf("expected MoveFocusedToWorkspace to fail with nothing focused")
	}
}

func TestMoveFocusedToWorkspaceMovesTrackedWindow(t *testing.T) {
	b := newFakeBackend()
	d, mgr, pump := newTestDispatcher(b)

	win := newWindow(b, 1, geom.Rect{Width: 100, Height: 100})
	if !mgr.AddWindow(win, 0, false) {
		t.Fatalf("AddWindow failed")
	}
	focus(pump, win)

	if !d.MoveFocusedToWorkspace(5) {
		t.Fatalf("MoveFocusedToWorkspace(5) should succeed")
	}
	ws, ok := mgr.WorkspaceOf(win)
	if !ok || ws.ID() != 5 {
		t.Fatalf("expected window moved to workspace 5, got %+v", ws)
	}
}

func TestFocusDirectionMovesFocusAmongTiled(t *testing.T) {
	b := newFakeBackend()
	d, mgr, pump := newTestDispatcher(b)

	left := newWindow(b, 1, geom.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	right := newWindow(b, 2, geom.Rect{X: 1000, Y: 0, Width: 100, Height: 100})
	mgr.AddWindow(left, 0, false)
	mgr.AddWindow(right, 0, false)
	focus(pump, left)

	if !d.Focus(Right) {
		t.Fatalf("Focus(Right) should find the right-hand window")
	}
}

func TestMoveWindowSwapsAndRetiles(t *testing.T) {
	b := newFakeBackend()
	d, mgr, pump := newTestDispatcher(b)

	left := newWindow(b, 1, geom.Rect{X: 0, Y: 0, Width: 100, Height: 100})
	right := newWindow(b, 2, geom.Rect{X: 1000, Y: 0, Width: 100, Height: 100})
	mgr.AddWindow(left, 0, false)
	mgr.AddWindow(right, 0, false)
	focus(pump, left)

	if !d.MoveWindow(Right) {
		t.Fatalf("MoveWindow(Right) should succeed")
	}
	ws, _ := mgr.WorkspaceOf(left)
	tiled := ws.Tiled()
	if tiled[0].Handle() != right.Handle() || tiled[1].Handle() != left.Handle() {
		t.Fatalf("expected left and right swapped in tiled order")
	}
}

func TestCloseFocusedInvokesBackendClose(t *testing.T) {
	b := newFakeBackend()
	d, _, pump := newTestDispatcher(b)

	win := newWindow(b, 1, geom.Rect{Width: 100, Height: 100})
	focus(pump, win)

	if !d.CloseFocused() {
		t.Fatalf("CloseFocused should succeed")
	}
	if !b.closed[1] {
		t.Fatalf("expected backend Close invoked for handle 1")
	}
}

func TestMinimizeMaximizeRestoreFocused(t *testing.T) {
	b := newFakeBackend()
	d, _, pump := newTestDispatcher(b)

	win := newWindow(b, 1, geom.Rect{Width: 100, Height: 100})
	focus(pump, win)

	if !d.MinimizeFocused() || !win.Minimized() {
		t.Fatalf("expected window minimized")
	}
	if !d.RestoreFocused() || win.Minimized() {
		t.Fatalf("expected window restored from minimize")
	}
	if !d.MaximizeFocused() || !win.Maximized() {
		t.Fatalf("expected window maximized")
	}
}

func TestSwapWithMasterPromotesFocused(t *testing.T) {
	b := newFakeBackend()
	d, mgr, pump := newTestDispatcher(b)

	a := newWindow(b, 1, geom.Rect{Width: 100, Height: 100})
	c := newWindow(b, 2, geom.Rect{Width: 100, Height: 100})
	mgr.AddWindow(a, 0, false)
	mgr.AddWindow(c, 0, false)
	focus(pump, c)

	if !d.SwapWithMaster() {
		t.Fatalf("SwapWithMaster should succeed")
	}
	ws, _ := mgr.WorkspaceOf(c)
	if ws.Tiled()[0].Handle() != c.Handle() {
		t.Fatalf("expected c promoted to master")
	}
}

func TestLayoutCycleCommands(t *testing.T) {
	b := newFakeBackend()
	d, mgr, _ := newTestDispatcher(b)
	ws, _ := mgr.ActiveWorkspace(0)
	first := ws.CurrentLayout().Name()

	if !d.NextLayout() {
		t.Fatalf("NextLayout should succeed on an active workspace")
	}
	if ws.CurrentLayout().Name() == first {
		t.Fatalf("expected layout to change after NextLayout")
	}
	if !d.PrevLayout() {
		t.Fatalf("PrevLayout should succeed")
	}
	if ws.CurrentLayout().Name() != first {
		t.Fatalf("expected PrevLayout to undo NextLayout")
	}
}

func TestRotateCommands(t *testing.T) {
	b := newFakeBackend()
	d, mgr, _ := newTestDispatcher(b)
	a := newWindow(b, 1, geom.Rect{Width: 100, Height: 100})
	c := newWindow(b, 2, geom.Rect{Width: 100, Height: 100})
	mgr.AddWindow(a, 0, false)
	mgr.AddWindow(c, 0, false)

	if !d.RotateNext() {
		t.Fatalf("RotateNext should succeed")
	}
	ws, _ := mgr.ActiveWorkspace(0)
	if ws.Tiled()[0].Handle() != c.Handle() {
		t.Fatalf("expected RotateNext to move a to the back")
	}
	if !d.RotatePrev() {
		t.Fatalf("RotatePrev should succeed")
	}
	if ws.Tiled()[0].Handle() != a.Handle() {
		t.Fatalf("expected RotatePrev to undo RotateNext")
	}
}

func TestGrowShrinkMasterAndGapCommands(t *testing.T) {
	b := newFakeBackend()
	d, mgr, _ := newTestDispatcher(b)
	ws, _ := mgr.ActiveWorkspace(0)
	startRatio := ws.CurrentLayout().MasterRatio()
	startGap := ws.CurrentLayout().Gap()

	d.GrowMaster()
	if ws.CurrentLayout().MasterRatio() <= startRatio {
		t.Fatalf("expected GrowMaster to increase master_ratio")
	}
	d.ShrinkMaster()
	d.ShrinkMaster()
	if ws.CurrentLayout().MasterRatio() >= startRatio {
		t.Fatalf("expected net ShrinkMaster to decrease master_ratio below start")
	}

	d.IncreaseGap()
	if ws.CurrentLayout().Gap() <= startGap {
		t.Fatalf("expected IncreaseGap to grow gap")
	}
	d.DecreaseGap()
	d.DecreaseGap()
	if ws.CurrentLayout().Gap() >= startGap {
		t.Fatalf("expected net DecreaseGap to shrink gap below start")
	}
}

func TestResizeModeGatesArrowsAndExit(t *testing.T) {
	b := newFakeBackend()
	d, mgr, _ := newTestDispatcher(b)
	ws, _ := mgr.ActiveWorkspace(0)
	startRatio := ws.CurrentLayout().MasterRatio()

	if d.ResizeArrow(Right) {
		t.Fatalf("ResizeArrow should be a no-op outside resize mode")
	}
	if d.ResizeExit() {
		t.Fatalf("ResizeExit should be a no-op outside resize mode")
	}

	d.EnterResizeMode()
	if !d.InResizeMode() {
		t.Fatalf("expected resize mode active after EnterResizeMode")
	}
	if !d.ResizeArrow(Right) {
		t.Fatalf("ResizeArrow(Right) should adjust master_ratio in resize mode")
	}
	if ws.CurrentLayout().MasterRatio() <= startRatio {
		t.Fatalf("expected ResizeArrow(Right) to grow master_ratio")
	}
	if !d.ResizeExit() {
		t.Fatalf("ResizeExit should succeed while in resize mode")
	}
	if d.InResizeMode() {
		t.Fatalf("expected resize mode cleared after ResizeExit")
	}
}

func TestToggleResizeMode(t *testing.T) {
	b := newFakeBackend()
	d, _, _ := newTestDispatcher(b)

	d.ToggleResizeMode()
	if !d.InResizeMode() {
		t.Fatalf("expected first toggle to enter resize mode")
	}
	d.ToggleResizeMode()
	if d.InResizeMode() {
		t.Fatalf("expected second toggle to exit resize mode")
	}
}

func TestRetileAndRetileAllDoNotPanicWithoutFocus(t *testing.T) {
	b := newFakeBackend()
	d, _, _ := newTestDispatcher(b)

	if !d.Retile() {
		t.Fatalf("Retile should always report true for the current monitor")
	}
	d.RetileAll()
}

func TestQuitInvokesOnQuit(t *testing.T) {
	b := newFakeBackend()
	pump := eventpump.New(b, eventpump.NewIgnoreConfig(nil, nil, nil, nil, nil), nil, nil, nil)
	mgr := wm.New(pump, oneMonitor(), 9, nil)

	called := false
	d := New(mgr, pump, func() { called = true }, nil)
	d.Quit()
	if !called {
		t.Fatalf("expected onQuit callback invoked")
	}
}
