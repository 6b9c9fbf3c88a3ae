package main

import (
	"testing"

	cfgpkg "github.com/tesserawm/tessera/internal/config"
	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/handle"
	"github.com/tesserawm/tessera/internal/layout"
	"github.com/tesserawm/tessera/internal/platform"
	"github.com/tesserawm/tessera/internal/wm"
)

type fakeBackend struct {
	attrs map[platform.WindowID]platform.Attributes
	valid map[platform.WindowID]bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		attrs: make(map[platform.WindowID]platform.Attributes),
		valid: make(map[platform.WindowID]bool),
	}
}

var _ platform.Backend = (*fakeBackend)(nil)

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
func (f *fakeBackend) ShowWindow(platform.WindowID, platform.ShowCmd) error { return nil }
func (f *fakeBackend) Close(platform.WindowID) error                       { return nil }
func (f *fakeBackend) Focus(platform.WindowID) error                       { return nil }
func (f *fakeBackend) Monitors() ([]geom.Monitor, error)                   { return nil, nil }
func (f *fakeBackend) RegisterHotkey(uint32, uint32) (platform.HotkeyID, error) {
	return 0, nil
}
func (f *fakeBackend) UnregisterHotkey(platform.HotkeyID) error { return nil }
func (f *fakeBackend) Fetch() (platform.Event, bool)            { return platform.Event{}, false }
func (f *fakeBackend) Start() error                             { return nil }
func (f *fakeBackend) Stop()                                    {}

func newWindow(b *fakeBackend, id platform.WindowID, bounds geom.Rect) handle.Window {
	b.valid[id] = true
	b.attrs[id] = platform.Attributes{Bounds: bounds, Visible: true}
	return handle.New(handle.Handle(id), b)
}

func twoMonitors() []geom.Monitor {
	return []geom.Monitor{
		{Name: "A", FullRect: geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}, WorkRect: geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1040}, IsPrimary: true},
		{Name: "B", FullRect: geom.Rect{X: 1920, Y: 0, Width: 1920, Height: 1080}, WorkRect: geom.Rect{X: 1920, Y: 0, Width: 1920, Height: 1040}},
	}
}

func TestMonitorForWindowPicksContainingMonitor(t *testing.T) {
	b := newFakeBackend()
	monitors := twoMonitors()

	onA := newWindow(b, 1, geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	onB := newWindow(b, 2, geom.Rect{X: 2000, Y: 100, Width: 400, Height: 300})

	if got := monitorForWindow(onA, monitors); got != 0 {
		t.Fatalf("window on monitor A: got index %d, want 0", got)
	}
	if got := monitorForWindow(onB, monitors); got != 1 {
		t.Fatalf("window on monitor B: got index %d, want 1", got)
	}
}

func TestMonitorForWindowFallsBackToZeroWhenUnattached(t *testing.T) {
	b := newFakeBackend()
	orphan := handle.New(handle.Handle(99), b)
	if got := monitorForWindow(orphan, twoMonitors()); got != 0 {
		t.Fatalf("invalid handle: got index %d, want fallback 0", got)
	}
}

func TestApplyLayoutDefaultsUsesGlobalsAndOverrides(t *testing.T) {
	mgr := wm.New(nil, twoMonitors(), 9, nil)
	cfg := cfgpkg.DefaultConfig()
	cfg.MasterRatio = 0.6
	cfg.Gap = 6
	cfg.Layouts = map[string]cfgpkg.LayoutDefaults{
		"tall": {MasterRatio: 0.8, Gap: 20},
	}

	applyLayoutDefaults(mgr, cfg)

	ws, ok := mgr.ActiveWorkspace(0)
	if !ok {
		t.Fatalf("expected an active workspace on monitor 0")
	}

	seen := make(map[string]bool)
	for range layout.Names() {
		l := ws.CurrentLayout()
		seen[l.Name()] = true
		if l.Name() == "tall" {
			if l.MasterRatio() != 0.8 || l.Gap() != 20 {
				t.Fatalf("tall: got ratio=%v gap=%d, want override ratio=0.8 gap=20", l.MasterRatio(), l.Gap())
			}
		} else if l.MasterRatio() != 0.6 || l.Gap() != 6 {
			t.Fatalf("%s: got ratio=%v gap=%d, want global ratio=0.6 gap=6", l.Name(), l.MasterRatio(), l.Gap())
		}
		ws.NextLayout()
	}
	if len(seen) != len(layout.Names()) {
		t.Fatalf("expected to visit all %d layouts, saw %d", len(layout.Names()), len(seen))
	}
}
