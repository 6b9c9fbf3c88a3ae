// Package platform abstracts the OS windowing primitives the engine
// consumes: handle enumeration, attribute reads, move/resize/z-order,
// show-window commands, global hotkeys, monitor enumeration, and the
// per-thread event queue. Concrete implementations live in
// backend_linux.go (X11/EWMH) and backend_windows.go (Win32).
package platform

import "github.com/tesserawm/tessera/internal/geom"

// WindowID is the platform-neutral opaque handle identifying a
// top-level window. Equality is on this value alone.
type WindowID uint32

// StyleBits is an opaque, platform-specific bag of window style flags
// (GWL_STYLE / GWL_EXSTYLE on Windows, MWM/EWMH hints on X11). The
// engine never interprets individual bits itself; it only saves and
// restores whatever the backend hands it.
type StyleBits struct {
	Style   uint32
	ExStyle uint32
}

// PlacementFlags mirrors the move/resize/z-order flag set spec.md §6
// requires: no-size, no-move, no-zorder, no-activate, show, hide,
// frame-changed. Zero value means "apply normally."
type PlacementFlags struct {
	NoSize        bool
	NoMove        bool
	NoZOrder      bool
	NoActivate    bool
	Show          bool
	Hide          bool
	FrameChanged  bool
	InsertAtBottom bool
	InsertAtTop    bool
}

// ShowCmd enumerates the show-window commands spec.md §6 lists.
type ShowCmd int

const (
	ShowHide ShowCmd = iota
	ShowRestore
	ShowMinimize
	ShowMaximize
	ShowNoActivate
)

// Attributes is a live, read-through snapshot of a window's OS-level
// attributes. Backends must fetch these synchronously on every call;
// the engine never caches them itself (handle.Window does the same).
type Attributes struct {
	Title       string
	Class       string
	ProcessName string
	PID         int
	Bounds      geom.Rect
	Style       StyleBits
	Visible     bool
	Minimized   bool
	Maximized   bool
	Cloaked     bool
	ToolWindow  bool
	NoActivate  bool
	IsChild     bool
}

// EventKind enumerates the raw OS event classes the backend's hook
// delivers; the eventpump package turns these into its own managed
// event taxonomy after running the filter pipeline.
type EventKind int

const (
	EventShow EventKind = iota
	EventHide
	EventDestroy
	EventForegroundChanged
	EventMinimizeStart
	EventMinimizeEnd
	EventMoveSizeEnd
	EventNameChanged
	EventHotkey
)

// Event is one message delivered by the backend's blocking fetch
// primitive. HotkeyID is only meaningful when Kind == EventHotkey.
type Event struct {
	Kind     EventKind
	Window   WindowID
	HotkeyID int
}

// HotkeyID identifies a registered global hotkey for later unregistration.
type HotkeyID int

// Backend abstracts every OS-level primitive the engine needs. Apart
// from Start and Stop, its methods are only ever driven from the
// goroutine that runs the event pump, and none of them are expected to
// be goroutine-safe against each other. Start runs on its own
// goroutine (see below), and Stop must be callable from any thread.
type Backend interface {
	// Enumeration and attributes.
	EnumerateWindows() ([]WindowID, error)
	Attributes(id WindowID) (Attributes, error)
	IsValid(id WindowID) bool

	// Placement and state.
	SetStyle(id WindowID, style StyleBits) error
	MoveResize(id WindowID, bounds geom.Rect, flags PlacementFlags) error
	ShowWindow(id WindowID, cmd ShowCmd) error
	Close(id WindowID) error
	Focus(id WindowID) error

	// Monitors.
	Monitors() ([]geom.Monitor, error)

	// Hotkeys.
	RegisterHotkey(modMask uint32, key uint32) (HotkeyID, error)
	UnregisterHotkey(id HotkeyID) error

	// Start begins producing OS events into Fetch's stream: it installs
	// whatever hooks/grabs the platform needs and then blocks servicing
	// the connection until Stop is called, so callers run it on its own
	// goroutine, separate from whichever goroutine calls Fetch (Fetch's
	// channel read is the hand-off point between the two).
	Start() error

	// Event loop: Fetch blocks until the next event or until Stop is
	// called from another thread, in which case it returns ok=false.
	Fetch() (ev Event, ok bool)
	Stop()
}
