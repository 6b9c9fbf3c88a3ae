package handle

import (
	"log"
	"math"

	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/platform"
)

// nativeFullscreenTolerance is the pixel slack allowed on every edge
// when deciding whether a window is already covering a monitor
// without the WM's help. The source this was distilled from leaves
// the intended semantics of this tolerance unspecified (see
// DESIGN.md); it is applied symmetrically here, not clamped to one
// direction.
const nativeFullscreenTolerance = 5

// decorationMask and functionMask are the StyleBits.Style/ExStyle bits
// EnterFullscreen strips: caption, thick (resizable) frame, and the
// modal/window/client/static edge bits spec.md §4.B names. These are
// the literal Win32 WS_CAPTION|WS_THICKFRAME and WS_EX_*EDGE values;
// the Linux backend packs its Motif decoration/function hint flags
// into the same two StyleBits fields so this package stays
// platform-neutral.
const (
	decorationMask uint32 = 0x00C00000 | 0x00040000 // WS_CAPTION | WS_THICKFRAME
	functionMask   uint32 = 0x00000001 | 0x00000100 | 0x00000200 | 0x00020000 // WS_EX_DLGMODALFRAME | WS_EX_WINDOWEDGE | WS_EX_CLIENTEDGE | WS_EX_STATICEDGE
)

// IsFullscreen reports whether this Window currently carries an
// active WM-fullscreen record.
func (w Window) IsFullscreen() bool {
	return w.fs != nil && w.fs.on
}

// EnterFullscreen saves the window's current style bits and rect,
// restores it from any minimized/maximized state, strips decoration
// and function style bits, and repositions it to cover monRect. No-op
// if already fullscreen or if the handle has disappeared.
func (w Window) EnterFullscreen(monRect geom.Rect) bool {
	if w.IsFullscreen() || !w.IsValid() {
		return false
	}

	a, ok := w.attrs()
	if !ok {
		return false
	}

	w.fs.style = a.Style
	w.fs.rect = a.Bounds

	if a.Minimized || a.Maximized {
		if err := w.backend.ShowWindow(platform.WindowID(w.h), platform.ShowRestore); err != nil {
			log.Printf("handle: restore before enter_fullscreen %d: %v", w.h, err)
		}
	}

	stripped := platform.StyleBits{
		Style:   a.Style.Style &^ decorationMask,
		ExStyle: a.Style.ExStyle &^ functionMask,
	}
	if err := w.backend.SetStyle(platform.WindowID(w.h), stripped); err != nil {
		log.Printf("handle: strip decorations %d: %v", w.h, err)
	}

	ok2 := w.moveResize(monRect, platform.PlacementFlags{FrameChanged: true})
	w.fs.on = true
	return ok2
}

// ExitFullscreen restores the saved style bits and rect and clears
// the fullscreen record. No-op if not currently fullscreen.
func (w Window) ExitFullscreen() bool {
	if !w.IsFullscreen() {
		return false
	}
	if err := w.backend.SetStyle(platform.WindowID(w.h), w.fs.style); err != nil {
		log.Printf("handle: restore style %d: %v", w.h, err)
	}
	ok := w.moveResize(w.fs.rect, platform.PlacementFlags{FrameChanged: true})
	w.fs.on = false
	return ok
}

// SuspendFullscreen hides a fullscreen window off-screen without
// disturbing the saved style/rect or clearing the fullscreen flag, so
// it can be reapplied later (e.g. across a workspace switch) without
// a visible flash or a phantom hide event. Preconditions: fullscreen_on.
func (w Window) SuspendFullscreen() bool {
	if !w.IsFullscreen() || !w.IsValid() {
		return false
	}
	off := geom.Rect{X: -32000, Y: -32000, Width: 1, Height: 1}
	if err := w.backend.MoveResize(platform.WindowID(w.h), off, platform.PlacementFlags{
		NoActivate: true, Hide: true,
	}); err != nil {
		log.Printf("handle: suspend_fullscreen %d: %v", w.h, err)
		return false
	}
	return true
}

// ReapplyFullscreen re-strips decorations (in case something altered
// them while suspended) and repositions the window to cover monRect,
// showing it again. Preconditions: fullscreen_on.
func (w Window) ReapplyFullscreen(monRect geom.Rect) bool {
	if !w.IsFullscreen() || !w.IsValid() {
		return false
	}
	stripped := platform.StyleBits{
		Style:   w.fs.style.Style &^ decorationMask,
		ExStyle: w.fs.style.ExStyle &^ functionMask,
	}
	if err := w.backend.SetStyle(platform.WindowID(w.h), stripped); err != nil {
		log.Printf("handle: reapply strip %d: %v", w.h, err)
	}
	return w.moveResize(monRect, platform.PlacementFlags{Show: true, FrameChanged: true})
}

// IsNativeFullscreen reports whether the window already covers monRect
// without WM help: no caption/thick-frame bits and its current rect
// matches monRect within the tolerance on every edge.
func (w Window) IsNativeFullscreen(monRect geom.Rect) bool {
	a, ok := w.attrs()
	if !ok {
		return false
	}
	if a.Style.Style&decorationMask != 0 {
		return false
	}
	b := a.Bounds
	return withinTolerance(b.Left(), monRect.Left()) &&
		withinTolerance(b.Top(), monRect.Top()) &&
		withinTolerance(b.Right(), monRect.Right()) &&
		withinTolerance(b.Bottom(), monRect.Bottom())
}

func withinTolerance(a, b int) bool {
	return math.Abs(float64(a-b)) <= nativeFullscreenTolerance
}

// MarkAsFullscreen records the window's current style/rect as the
// saved values and sets the fullscreen flag without touching any OS
// state — used when a window is discovered already fullscreen (e.g. a
// game) so the WM can track it as such without flashing it.
func (w Window) MarkAsFullscreen() {
	a, ok := w.attrs()
	if !ok {
		return
	}
	w.fs.style = a.Style
	w.fs.rect = a.Bounds
	w.fs.on = true
}
