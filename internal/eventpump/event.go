package eventpump

import "github.com/tesserawm/tessera/internal/handle"

// Kind is the managed event taxonomy emitted to subscribers, distinct
// from platform.EventKind which is the raw OS event classification.
type Kind int

const (
	WindowAdded Kind = iota
	WindowRemoved
	FocusChanged
	WindowMinimized
	WindowRestored
	WindowMoved
	TitleChanged
)

func (k Kind) String() string {
	switch k {
	case WindowAdded:
		return "WindowAdded"
	case WindowRemoved:
		return "WindowRemoved"
	case FocusChanged:
		return "FocusChanged"
	case WindowMinimized:
		return "WindowMinimized"
	case WindowRestored:
		return "WindowRestored"
	case WindowMoved:
		return "WindowMoved"
	case TitleChanged:
		return "TitleChanged"
	default:
		return "Unknown"
	}
}

// Event is the notification delivered to a subscriber callback.
type Event struct {
	Kind   Kind
	Window handle.Window
}

// Handler is invoked synchronously on the pump's own thread for every
// emitted Event; it must not block.
type Handler func(Event)
