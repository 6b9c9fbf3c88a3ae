// Package handle wraps the OS window identity and the one piece of
// mutable state the engine keeps about it: the WM-initiated fullscreen
// record. Every other attribute is read through to the backend on
// each access, never cached.
package handle

import (
	"log"

	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/platform"
)

// Handle is the opaque OS identifier for a top-level window. Equality
// and hashing are on this value alone.
type Handle platform.WindowID

// fullscreenRecord is the only state a Window stores outside the OS
// itself.
type fullscreenRecord struct {
	on       bool
	style    platform.StyleBits
	rect     geom.Rect
}

// Window is a lightweight, copyable identity wrapper over a Handle.
// It is constructed lazily the first time a handle appears in an OS
// event or enumeration, and dropped the moment the event pump
// unmanages it; there is no independent lifecycle to close.
type Window struct {
	h       Handle
	backend platform.Backend
	fs      *fullscreenRecord
}

// New wraps h for use against backend. The fullscreen record starts
// empty; it is populated the first time EnterFullscreen or
// MarkAsFullscreen is called.
func New(h Handle, backend platform.Backend) Window {
	return Window{h: h, backend: backend, fs: &fullscreenRecord{}}
}

// Handle returns the wrapped identifier.
func (w Window) Handle() Handle { return w.h }

// IsValid reports whether the handle still refers to a live OS window.
// Every other method on Window must tolerate this becoming false at
// any time; they are written to fail soft rather than panic.
func (w Window) IsValid() bool {
	if w.backend == nil {
		return false
	}
	return w.backend.IsValid(platform.WindowID(w.h))
}

func (w Window) attrs() (platform.Attributes, bool) {
	a, err := w.backend.Attributes(platform.WindowID(w.h))
	if err != nil {
		return platform.Attributes{}, false
	}
	return a, true
}

// Attrs returns the window's full current attribute snapshot in one
// round-trip, for callers (the event pump's managed-window filter)
// that need more than one field at once.
func (w Window) Attrs() (platform.Attributes, bool) {
	return w.attrs()
}

// Title reads the window's current title.
func (w Window) Title() string {
	a, ok := w.attrs()
	if !ok {
		return ""
	}
	return a.Title
}

// Class reads the window's window-class (or equivalent application id).
func (w Window) Class() string {
	a, ok := w.attrs()
	if !ok {
		return ""
	}
	return a.Class
}

// ProcessName reads the name of the process that owns the window.
func (w Window) ProcessName() string {
	a, ok := w.attrs()
	if !ok {
		return ""
	}
	return a.ProcessName
}

// Bounds reads the window's current rectangle.
func (w Window) Bounds() geom.Rect {
	a, ok := w.attrs()
	if !ok {
		return geom.Rect{}
	}
	return a.Bounds
}

// Center returns the window's current center point, used by the
// directional-swap metric.
func (w Window) Center() (cx, cy int) {
	return w.Bounds().Center()
}

// Minimized reports whether the window is currently iconic.
func (w Window) Minimized() bool {
	a, ok := w.attrs()
	return ok && a.Minimized
}

// Maximized reports whether the window currently occupies its
// monitor's work area via the OS zoom state.
func (w Window) Maximized() bool {
	a, ok := w.attrs()
	return ok && a.Maximized
}

// Visible reports whether the window is currently mapped/shown.
func (w Window) Visible() bool {
	a, ok := w.attrs()
	return ok && a.Visible
}

// Cloaked reports whether the OS compositor is hiding the window
// despite it being nominally visible.
func (w Window) Cloaked() bool {
	a, ok := w.attrs()
	return ok && a.Cloaked
}

// Focus brings the window to the foreground, restoring it first if
// minimized. Returns false rather than erroring on a disappeared
// handle.
func (w Window) Focus() bool {
	if !w.IsValid() {
		return false
	}
	if w.Minimized() {
		if err := w.backend.ShowWindow(platform.WindowID(w.h), platform.ShowRestore); err != nil {
			log.Printf("handle: restore before focus %d: %v", w.h, err)
		}
	}
	if err := w.backend.Focus(platform.WindowID(w.h)); err != nil {
		log.Printf("handle: focus %d: %v", w.h, err)
		return false
	}
	return true
}

// Minimize iconifies the window.
func (w Window) Minimize() bool { return w.show(platform.ShowMinimize) }

// Maximize zooms the window to fill its monitor's work area.
func (w Window) Maximize() bool { return w.show(platform.ShowMaximize) }

// Restore un-iconifies or un-maximizes the window.
func (w Window) Restore() bool { return w.show(platform.ShowRestore) }

func (w Window) show(cmd platform.ShowCmd) bool {
	if !w.IsValid() {
		return false
	}
	if err := w.backend.ShowWindow(platform.WindowID(w.h), cmd); err != nil {
		log.Printf("handle: show %d cmd %v: %v", w.h, cmd, err)
		return false
	}
	return true
}

// Close posts a graceful close request; there is no confirmation and
// no guarantee the window actually closes.
func (w Window) Close() bool {
	if !w.IsValid() {
		return false
	}
	if err := w.backend.Close(platform.WindowID(w.h)); err != nil {
		log.Printf("handle: close %d: %v", w.h, err)
		return false
	}
	return true
}

// MoveResize places the window at an absolute rectangle. If the
// window is minimized or maximized it is restored first so the move
// actually takes effect.
func (w Window) MoveResize(r geom.Rect) bool {
	return w.moveResize(r, platform.PlacementFlags{})
}

// MoveResizeBottomNoActivate places the window at r, lowers it to the
// bottom of Z-order, and suppresses activation — the technique
// Workspace.HideAllWindows uses instead of a direct hide so the OS
// never fires the show/hide events a real hide would.
func (w Window) MoveResizeBottomNoActivate(r geom.Rect) bool {
	return w.moveResize(r, platform.PlacementFlags{NoActivate: true, InsertAtBottom: true})
}

// MoveResizeTopNoActivate places the window at r, raises it to the top
// of Z-order, and suppresses activation — used by
// Workspace.ShowAllWindows to restore a previously hidden window
// without stealing focus.
func (w Window) MoveResizeTopNoActivate(r geom.Rect) bool {
	return w.moveResize(r, platform.PlacementFlags{NoActivate: true, InsertAtTop: true})
}

func (w Window) moveResize(r geom.Rect, flags platform.PlacementFlags) bool {
	if !w.IsValid() {
		return false
	}
	if w.Minimized() || w.Maximized() {
		if err := w.backend.ShowWindow(platform.WindowID(w.h), platform.ShowRestore); err != nil {
			log.Printf("handle: restore before move_resize %d: %v", w.h, err)
		}
	}
	if err := w.backend.MoveResize(platform.WindowID(w.h), r, flags); err != nil {
		log.Printf("handle: move_resize %d: %v", w.h, err)
		return false
	}
	return true
}
