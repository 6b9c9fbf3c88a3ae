package eventpump

import "github.com/tesserawm/tessera/internal/handle"

// ManagedSet is the live collection of handles currently passing the
// managed-window filter. It has no lock of its own: the pump only
// ever touches it from the single event-loop thread (spec.md §5), and
// the pump offers no thread-safe wrapper around it, so other callers
// must use it only from that same thread.
type ManagedSet struct {
	windows map[handle.Handle]handle.Window
	focused handle.Handle
	hasFocus bool
}

func newManagedSet() *ManagedSet {
	return &ManagedSet{windows: make(map[handle.Handle]handle.Window)}
}

// Get returns the managed Window for h, if any.
func (s *ManagedSet) Get(h handle.Handle) (handle.Window, bool) {
	w, ok := s.windows[h]
	return w, ok
}

// Contains reports whether h is currently managed.
func (s *ManagedSet) Contains(h handle.Handle) bool {
	_, ok := s.windows[h]
	return ok
}

// Insert adds or replaces the managed entry for win.
func (s *ManagedSet) Insert(win handle.Window) {
	s.windows[win.Handle()] = win
}

// Remove drops h from the managed set. If h was the focused handle,
// focus is cleared.
func (s *ManagedSet) Remove(h handle.Handle) {
	delete(s.windows, h)
	if s.hasFocus && s.focused == h {
		s.hasFocus = false
	}
}

// Len returns the number of currently managed handles.
func (s *ManagedSet) Len() int { return len(s.windows) }

// All returns every managed window in unspecified order.
func (s *ManagedSet) All() []handle.Window {
	out := make([]handle.Window, 0, len(s.windows))
	for _, w := range s.windows {
		out = append(out, w)
	}
	return out
}

// Focused returns the currently focused managed window, if any.
func (s *ManagedSet) Focused() (handle.Window, bool) {
	if !s.hasFocus {
		return handle.Window{}, false
	}
	return s.Get(s.focused)
}

// SetFocus records h as the focused handle. h need not already be
// managed; the caller is expected to have inserted it first.
func (s *ManagedSet) SetFocus(h handle.Handle) {
	s.focused = h
	s.hasFocus = true
}

// ClearFocus drops the current focus record without affecting
// membership.
func (s *ManagedSet) ClearFocus() {
	s.hasFocus = false
}
