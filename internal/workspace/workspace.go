// Package workspace implements a single workspace's tiling state: its
// ordered tiled-window list, its unordered floating set, the active
// layout, and the off-screen positions it remembers for windows it
// has hidden.
package workspace

import (
	"fmt"
	"log"
	"sync"

	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/handle"
	"github.com/tesserawm/tessera/internal/layout"
)

// offscreenOrigin is where HideAllWindows parks non-fullscreen windows
// so they never trigger the OS hide events that would otherwise feed
// back into the managed set (see internal/eventpump's suppression
// gates).
var offscreenOrigin = geom.Rect{X: -32000, Y: -32000, Width: 1, Height: 1}

// Workspace is a named container of windows with its own layout cycle.
// All mutation happens on the single event-loop thread described in
// spec.md §5; the mutex exists only so status/debug reads (e.g. a CLI
// "status" command) stay safe from another goroutine.
type Workspace struct {
	mu sync.Mutex

	id   int
	name string

	layouts   []layout.Layout
	layoutIdx int

	tiled    []handle.Window
	floating []handle.Window

	active bool

	savedPositions map[handle.Handle]geom.Rect
}

// New creates a workspace with the given id/name and the default
// layout cycle (spec.md §4.C's fixed variant set).
func New(id int, name string) *Workspace {
	layouts := make([]layout.Layout, 0, len(layout.Names()))
	for _, n := range layout.Names() {
		layouts = append(layouts, layout.New(n))
	}
	return &Workspace{
		id:             id,
		name:           name,
		layouts:        layouts,
		savedPositions: make(map[handle.Handle]geom.Rect),
	}
}

func (w *Workspace) ID() int      { return w.id }
func (w *Workspace) Name() string { return w.name }

func (w *Workspace) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *Workspace) SetActive(active bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
}

// CurrentLayout returns the layout currently selected by the cycle.
func (w *Workspace) CurrentLayout() layout.Layout {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layouts[w.layoutIdx]
}

// SetLayoutParams applies a configured master_ratio/gap default to the
// named layout variant in this workspace's cycle, if present. Used at
// startup to apply per-layout config defaults without disturbing
// whichever variant is currently active.
func (w *Workspace) SetLayoutParams(name string, masterRatio float64, gap int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, l := range w.layouts {
		if l.Name() == name {
			l.SetParams(masterRatio, gap)
		}
	}
}

// NextLayout/PrevLayout cycle the active layout index, wrapping.
func (w *Workspace) NextLayout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layoutIdx = (w.layoutIdx + 1) % len(w.layouts)
}

func (w *Workspace) PrevLayout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layoutIdx = (w.layoutIdx - 1 + len(w.layouts)) % len(w.layouts)
}

// Tiled returns a copy of the ordered tiled-window list.
func (w *Workspace) Tiled() []handle.Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]handle.Window, len(w.tiled))
	copy(out, w.tiled)
	return out
}

// Floating returns a copy of the floating-window set.
func (w *Workspace) Floating() []handle.Window {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]handle.Window, len(w.floating))
	copy(out, w.floating)
	return out
}

// Contains reports whether win is tracked by this workspace, tiled or
// floating.
func (w *Workspace) Contains(win handle.Window) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOfLocked(win.Handle()) >= 0 || w.floatingIndexLocked(win.Handle()) >= 0
}

func (w *Workspace) indexOfLocked(h handle.Handle) int {
	for i, t := range w.tiled {
		if t.Handle() == h {
			return i
		}
	}
	return -1
}

func (w *Workspace) floatingIndexLocked(h handle.Handle) int {
	for i, f := range w.floating {
		if f.Handle() == h {
			return i
		}
	}
	return -1
}

// AddWindow appends win to the tiled (or floating) list. Refuses if
// win is already present in either list, returning false.
func (w *Workspace) AddWindow(win handle.Window, floating bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.indexOfLocked(win.Handle()) >= 0 || w.floatingIndexLocked(win.Handle()) >= 0 {
		return false
	}
	if floating {
		w.floating = append(w.floating, win)
	} else {
		w.tiled = append(w.tiled, win)
	}
	return true
}

// RemoveWindow removes win from whichever list holds it. Returns
// false if it was tracked by neither.
func (w *Workspace) RemoveWindow(win handle.Window) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i := w.indexOfLocked(win.Handle()); i >= 0 {
		w.tiled = append(w.tiled[:i], w.tiled[i+1:]...)
		delete(w.savedPositions, win.Handle())
		return true
	}
	if i := w.floatingIndexLocked(win.Handle()); i >= 0 {
		w.floating = append(w.floating[:i], w.floating[i+1:]...)
		delete(w.savedPositions, win.Handle())
		return true
	}
	return false
}

// SwapMaster swaps tiled[0] and tiled[1] if there are at least two
// tiled windows.
func (w *Workspace) SwapMaster() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.tiled) >= 2 {
		w.tiled[0], w.tiled[1] = w.tiled[1], w.tiled[0]
	}
}

// SwapWithMaster moves win to index 0 if present and not already
// master.
func (w *Workspace) SwapWithMaster(win handle.Window) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOfLocked(win.Handle())
	if i <= 0 {
		return
	}
	w.tiled = append(w.tiled[:i], w.tiled[i+1:]...)
	w.tiled = append([]handle.Window{win}, w.tiled...)
}

// SwapWindows exchanges the tiled-list positions of a and b. No-op if
// either is absent from the tiled list.
func (w *Workspace) SwapWindows(a, b handle.Window) {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOfLocked(a.Handle())
	j := w.indexOfLocked(b.Handle())
	if i < 0 || j < 0 {
		return
	}
	w.tiled[i], w.tiled[j] = w.tiled[j], w.tiled[i]
}

// RotateNext cyclically shifts the tiled list by one: the first
// element moves to the end.
func (w *Workspace) RotateNext() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.tiled) < 2 {
		return
	}
	first := w.tiled[0]
	w.tiled = append(w.tiled[1:], first)
}

// RotatePrev cyclically shifts the tiled list by one the other way:
// the last element moves to the front.
func (w *Workspace) RotatePrev() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.tiled) < 2 {
		return
	}
	last := w.tiled[len(w.tiled)-1]
	w.tiled = append([]handle.Window{last}, w.tiled[:len(w.tiled)-1]...)
}

// Retile partitions the tiled list into fullscreen and tileable
// windows. Fullscreen windows are reapplied over fullRect; the rest
// are arranged by the current layout over workRect. Floating windows
// are never touched.
func (w *Workspace) Retile(workRect, fullRect geom.Rect) {
	w.mu.Lock()
	tiled := make([]handle.Window, len(w.tiled))
	copy(tiled, w.tiled)
	l := w.layouts[w.layoutIdx]
	w.mu.Unlock()

	var tileable []handle.Window
	for _, win := range tiled {
		if win.IsFullscreen() {
			if !win.ReapplyFullscreen(fullRect) {
				log.Printf("workspace %d: reapply_fullscreen failed for %v", w.id, win.Handle())
			}
			continue
		}
		tileable = append(tileable, win)
	}

	rects := l.Arrange(len(tileable), workRect)
	for i, win := range tileable {
		if !win.IsValid() {
			log.Printf("workspace %d: skipping invalid handle %v during retile", w.id, win.Handle())
			continue
		}
		if !win.MoveResize(rects[i]) {
			log.Printf("workspace %d: move_resize failed for %v", w.id, win.Handle())
		}
	}
}

// HideAllWindows moves every non-fullscreen window off-screen and
// lowers it in Z-order, recording its prior rect so ShowAllWindows can
// restore it exactly. Fullscreen windows are suspended instead. This
// technique — move off-screen plus lower, rather than an ordinary hide
// — avoids the OS hide events a direct hide would fire, which would
// otherwise be mistaken by the event pump for the window having
// closed.
func (w *Workspace) HideAllWindows() {
	w.mu.Lock()
	all := make([]handle.Window, 0, len(w.tiled)+len(w.floating))
	all = append(all, w.tiled...)
	all = append(all, w.floating...)
	w.mu.Unlock()

	for _, win := range all {
		if win.IsFullscreen() {
			if !win.SuspendFullscreen() {
				log.Printf("workspace %d: suspend_fullscreen failed for %v", w.id, win.Handle())
			}
			continue
		}
		if !win.IsValid() {
			continue
		}
		rect := win.Bounds()
		w.mu.Lock()
		w.savedPositions[win.Handle()] = rect
		w.mu.Unlock()

		moved := geom.Rect{X: offscreenOrigin.X, Y: offscreenOrigin.Y, Width: rect.Width, Height: rect.Height}
		if !win.MoveResizeBottomNoActivate(moved) {
			log.Printf("workspace %d: hide move_resize failed for %v", w.id, win.Handle())
		}
	}
}

// ParkWindowOffscreen records win's current bounds as its saved
// position in this workspace and moves it off-screen, bottom-of-z-order,
// without activating it. It is HideAllWindows' per-window body, exposed
// for callers that move a single window into an inactive workspace
// (e.g. WorkspaceManager.MoveWindowToWorkspace) rather than hiding a
// workspace wholesale. Fullscreen windows are suspended instead, same
// as HideAllWindows.
func (w *Workspace) ParkWindowOffscreen(win handle.Window) bool {
	if win.IsFullscreen() {
		if !win.SuspendFullscreen() {
			log.Printf("workspace %d: suspend_fullscreen failed for %v", w.id, win.Handle())
			return false
		}
		return true
	}
	if !win.IsValid() {
		return false
	}
	rect := win.Bounds()
	w.mu.Lock()
	w.savedPositions[win.Handle()] = rect
	w.mu.Unlock()

	moved := geom.Rect{X: offscreenOrigin.X, Y: offscreenOrigin.Y, Width: rect.Width, Height: rect.Height}
	if !win.MoveResizeBottomNoActivate(moved) {
		log.Printf("workspace %d: park move_resize failed for %v", w.id, win.Handle())
		return false
	}
	return true
}

// ShowAllWindows restores every non-fullscreen window to its saved
// position (raised to the top, no-activate), falling back to an
// ordinary restore of a minimized window if no saved position exists
// (e.g. the window was added while this workspace was inactive and
// never tiled); such a window that is not minimized is left as it is.
// Fullscreen
// windows get an ordinary restore; ReapplyFullscreen happens on the
// subsequent retile.
func (w *Workspace) ShowAllWindows() {
	w.mu.Lock()
	all := make([]handle.Window, 0, len(w.tiled)+len(w.floating))
	all = append(all, w.tiled...)
	all = append(all, w.floating...)
	w.mu.Unlock()

	for _, win := range all {
		if win.IsFullscreen() {
			win.Restore()
			continue
		}
		if !win.IsValid() {
			continue
		}
		w.mu.Lock()
		rect, ok := w.savedPositions[win.Handle()]
		delete(w.savedPositions, win.Handle())
		w.mu.Unlock()

		if ok {
			if !win.MoveResizeTopNoActivate(rect) {
				log.Printf("workspace %d: show move_resize failed for %v", w.id, win.Handle())
			}
			continue
		}
		if win.Minimized() {
			win.Restore()
		}
	}
}

// DumpState returns a human-readable summary. No CLI subcommand prints
// it; the tests and Manager.DumpState use it.
func (w *Workspace) DumpState() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fmtDump(w.id, w.name, w.active, len(w.tiled), len(w.floating), w.layouts[w.layoutIdx].Name())
}

// fmtDump renders a one-line workspace summary, e.g.:
//
//	workspace 2 "code" active=true tiled=3 floating=1 layout=tall
func fmtDump(id int, name string, active bool, tiledCount, floatingCount int, layoutName string) string {
	return fmt.Sprintf("workspace %d %q active=%t tiled=%d floating=%d layout=%s",
		id, name, active, tiledCount, floatingCount, layoutName)
}
