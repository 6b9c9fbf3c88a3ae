package handle

import (
	"testing"

	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/platform"
)

// fakeBackend is a minimal in-memory platform.Backend for exercising
// Window/fullscreen logic without any real OS.
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

func (f *fakeBackend) Close(id platform.WindowID) error { return nil }
func (f *fakeBackend) Focus(id platform.WindowID) error { return nil }

func (f *fakeBackend) Monitors() ([]geom.Monitor, error) { return nil, nil }

func (f *fakeBackend) RegisterHotkey(uint32, uint32) (platform.HotkeyID, error) { return 0, nil }
func (f *fakeBackend) UnregisterHotkey(platform.HotkeyID) error                { return nil }

func (f *fakeBackend) Fetch() (platform.Event, bool) { return platform.Event{}, false }
func (f *fakeBackend) Start() error                  { return nil }
func (f *fakeBackend) Stop()                         {}

func TestFullscreenRoundTrip(t *testing.T) {
	b := newFakeBackend()
	id := platform.WindowID(1)
	b.valid[id] = true
	original := platform.Attributes{
		Bounds: geom.Rect{X: 100, Y: 50, Width: 800, Height: 600},
		Style:  platform.StyleBits{Style: 0x10CC0000, ExStyle: 0x00000300},
	}
	b.attrs[id] = original

	w := New(Handle(id), b)
	monRect := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	if !w.EnterFullscreen(monRect) {
		t.Fatalf("EnterFullscreen returned false")
	}
	if !w.IsFullscreen() {
		t.Fatalf("expected fullscreen_on after enter")
	}
	if !w.ExitFullscreen() {
		t.Fatalf("ExitFullscreen returned false")
	}
	if w.IsFullscreen() {
		t.Fatalf("expected fullscreen_on cleared after exit")
	}

	got := b.attrs[id]
	if got.Style != original.Style {
		t.Fatalf("style not bit-exact after round trip: got %+v want %+v", got.Style, original.Style)
	}
	if got.Bounds != original.Bounds {
		t.Fatalf("rect not exact after round trip: got %+v want %+v", got.Bounds, original.Bounds)
	}
}

func TestSuspendReapplyCoversMonitor(t *testing.T) {
	b := newFakeBackend()
	id := platform.WindowID(2)
	b.valid[id] = true
	b.attrs[id] = platform.Attributes{Bounds: geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}}

	w := New(Handle(id), b)
	monRect := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	if !w.EnterFullscreen(monRect) {
		t.Fatalf("EnterFullscreen failed")
	}
	if !w.SuspendFullscreen() {
		t.Fatalf("SuspendFullscreen failed")
	}
	if !w.IsFullscreen() {
		t.Fatalf("suspend must not clear fullscreen_on")
	}
	if !w.ReapplyFullscreen(monRect) {
		t.Fatalf("ReapplyFullscreen failed")
	}
	if b.attrs[id].Bounds != monRect {
		t.Fatalf("expected window repositioned to monitor rect, got %+v", b.attrs[id].Bounds)
	}
}

func TestIsNativeFullscreenToleratesFivePixels(t *testing.T) {
	b := newFakeBackend()
	id := platform.WindowID(3)
	b.valid[id] = true
	monRect := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	b.attrs[id] = platform.Attributes{
		Bounds: geom.Rect{X: -4, Y: 3, Width: 1920, Height: 1080 + 2},
	}

	w := New(Handle(id), b)
	if !w.IsNativeFullscreen(monRect) {
		t.Fatalf("expected native-fullscreen match within 5px tolerance")
	}
}

func TestIsNativeFullscreenRejectsDecoratedWindow(t *testing.T) {
	b := newFakeBackend()
	id := platform.WindowID(4)
	b.valid[id] = true
	monRect := geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	b.attrs[id] = platform.Attributes{
		Bounds: monRect,
		Style:  platform.StyleBits{Style: decorationMask},
	}

	w := New(Handle(id), b)
	if w.IsNativeFullscreen(monRect) {
		t.Fatalf("expected decorated window to be rejected as native fullscreen")
	}
}

func TestOperationsFailSoftOnDisappearedHandle(t *testing.T) {
	b := newFakeBackend()
	id := platform.WindowID(5)
	// never marked valid

	w := New(Handle(id), b)
	if w.Focus() {
		t.Fatalf("Focus on invalid handle should return false")
	}
	if w.MoveResize(geom.Rect{Width: 10, Height: 10}) {
		t.Fatalf("MoveResize on invalid handle should return false")
	}
	if w.Close() {
		t.Fatalf("Close on invalid handle should return false")
	}
}
