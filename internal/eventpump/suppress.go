package eventpump

import "github.com/tesserawm/tessera/internal/handle"

// suppression implements the two gates spec.md §4.E requires so that
// the manager's own hide/show/foreground traffic during a workspace
// switch never reaches subscribers as if a user had triggered it:
//
//   - a global flag that blanket-swallows hide/show/minimize/restore/
//     foreground/(non-fatal) destroy events while engaged;
//   - a one-shot per-handle set that keeps absorbing the next matching
//     event for specific handles even after the global flag clears,
//     covering the race where a WM-initiated hide arrives asynchronously
//     after the switch that caused it has already completed.
type suppression struct {
	global    bool
	oneShot   map[handle.Handle]struct{}
}

func newSuppression() *suppression {
	return &suppression{oneShot: make(map[handle.Handle]struct{})}
}

// engage turns on the global gate.
func (s *suppression) engage() { s.global = true }

// release turns off the global gate. The one-shot set is untouched;
// it is consumed per-handle by absorbs.
func (s *suppression) release() { s.global = false }

// register adds h to the one-shot set so its next matching event is
// swallowed even after release.
func (s *suppression) register(h handle.Handle) {
	s.oneShot[h] = struct{}{}
}

// registerAll is a convenience for registering every handle in hs.
func (s *suppression) registerAll(hs []handle.Handle) {
	for _, h := range hs {
		s.register(h)
	}
}

// absorbs reports whether the current event for h should be swallowed,
// consuming h's one-shot entry if that's what absorbed it. Callers must
// only call this for events of the suppressible platform.EventKind
// values.
func (s *suppression) absorbs(h handle.Handle) bool {
	if s.global {
		return true
	}
	if _, ok := s.oneShot[h]; ok {
		delete(s.oneShot, h)
		return true
	}
	return false
}
