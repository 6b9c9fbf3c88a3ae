// Package eventpump turns a platform.Backend's raw event stream into
// the engine's managed-window event taxonomy: a single-threaded,
// cooperative pump that runs the 11-point managed-window filter on
// every incoming event, tracks a ManagedSet, and dispatches both
// managed events and hotkeys to the rest of the engine on the
// goroutine that calls Run. The OS queue itself is serviced by
// platform.Backend.Start on a separate goroutine, which hands events
// to the pump through Fetch.
package eventpump

import (
	"log/slog"

	"github.com/tesserawm/tessera/internal/handle"
	"github.com/tesserawm/tessera/internal/platform"
)

// HotkeyRegistry resolves a fired hotkey id to its callback. Looked up
// and invoked on the pump's own thread, so callbacks may freely
// mutate WM state without locking.
type HotkeyRegistry interface {
	Lookup(id platform.HotkeyID) (func(), bool)
}

// Pump is the single logical event loop of the engine. It must be
// constructed once per backend and Run from one goroutine for the
// process lifetime. That goroutine does not own the OS message queue:
// Backend.Start services the queue on its own goroutine and Run
// receives the resulting events through Fetch.
type Pump struct {
	backend platform.Backend
	ignore  IgnoreConfig
	hotkeys HotkeyRegistry
	handler Handler
	logger  *slog.Logger

	managed    *ManagedSet
	suppressor *suppression
}

// New constructs a Pump. handler is invoked for every managed event;
// hotkeys resolves fired hotkey ids. logger may be nil, in which case
// slog.Default() is used.
func New(backend platform.Backend, ignore IgnoreConfig, hotkeys HotkeyRegistry, handler Handler, logger *slog.Logger) *Pump {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pump{
		backend:    backend,
		ignore:     ignore,
		hotkeys:    hotkeys,
		handler:    handler,
		logger:     logger,
		managed:    newManagedSet(),
		suppressor: newSuppression(),
	}
}

// Managed exposes the live managed set for read-only use by other
// components (e.g. the workspace manager's initial-scan bookkeeping).
func (p *Pump) Managed() *ManagedSet { return p.managed }

// Scan enumerates every top-level handle, runs the filter, populates
// the managed set, and emits WindowAdded for each admitted handle. It
// does not set focus: no window is focused until the first
// foreground-change event arrives.
func (p *Pump) Scan() error {
	ids, err := p.backend.EnumerateWindows()
	if err != nil {
		return err
	}
	for _, id := range ids {
		h := handle.Handle(id)
		win := handle.New(h, p.backend)
		attrs, ok := win.Attrs()
		if !ok || !win.IsValid() || !Manageable(attrs, p.ignore) {
			continue
		}
		p.managed.Insert(win)
		p.emit(Event{Kind: WindowAdded, Window: win})
	}
	return nil
}

// SuppressHideShow engages the global suppression gate.
func (p *Pump) SuppressHideShow() { p.suppressor.engage() }

// ResumeHideShow disengages the global suppression gate. Handles
// previously passed to RegisterSuppressed keep absorbing their next
// matching event regardless.
func (p *Pump) ResumeHideShow() { p.suppressor.release() }

// RegisterSuppressed adds hs to the one-shot suppression set.
func (p *Pump) RegisterSuppressed(hs ...handle.Handle) {
	p.suppressor.registerAll(hs)
}

// Run blocks, servicing backend events until Stop is called from
// another thread (Fetch then returns ok=false).
func (p *Pump) Run() {
	for {
		ev, ok := p.backend.Fetch()
		if !ok {
			return
		}
		p.dispatch(ev)
	}
}

// Stop wakes Run from its blocking fetch. Safe to call from any
// thread, per platform.Backend's contract.
func (p *Pump) Stop() { p.backend.Stop() }

func (p *Pump) dispatch(ev platform.Event) {
	if ev.Kind == platform.EventHotkey {
		if cb, ok := p.hotkeys.Lookup(platform.HotkeyID(ev.HotkeyID)); ok {
			cb()
		} else {
			p.logger.Warn("unrecognized hotkey id", "id", ev.HotkeyID)
		}
		return
	}

	h := handle.Handle(ev.Window)

	if suppressible(ev.Kind) && p.suppressor.absorbs(h) {
		if ev.Kind == platform.EventDestroy {
			// destroy during suppression still removes the handle,
			// just silently: the window really is gone.
			p.managed.Remove(h)
		}
		return
	}

	switch ev.Kind {
	case platform.EventDestroy, platform.EventHide:
		p.handleUnmanage(h)
	case platform.EventShow, platform.EventForegroundChanged:
		p.handleShowOrForeground(h, ev.Kind)
	case platform.EventMinimizeStart:
		p.handleStillManaged(h, WindowMinimized)
	case platform.EventMinimizeEnd:
		p.handleStillManaged(h, WindowRestored)
	case platform.EventMoveSizeEnd:
		p.handleStillManaged(h, WindowMoved)
	case platform.EventNameChanged:
		p.handleStillManaged(h, TitleChanged)
	}
}

// suppressible reports whether a platform event kind is one the
// suppression gates are allowed to swallow: hide, show, minimize,
// restore, foreground, and destroy. Move/resize and name-change are
// never suppressed — they carry no feedback-loop risk.
func suppressible(k platform.EventKind) bool {
	switch k {
	case platform.EventHide, platform.EventShow,
		platform.EventMinimizeStart, platform.EventMinimizeEnd,
		platform.EventForegroundChanged, platform.EventDestroy:
		return true
	default:
		return false
	}
}

func (p *Pump) handleUnmanage(h handle.Handle) {
	if !p.managed.Contains(h) {
		return
	}
	win, _ := p.managed.Get(h)
	p.managed.Remove(h)
	p.emit(Event{Kind: WindowRemoved, Window: win})
}

func (p *Pump) handleShowOrForeground(h handle.Handle, kind platform.EventKind) {
	win := handle.New(h, p.backend)
	attrs, ok := win.Attrs()
	manageable := ok && win.IsValid() && Manageable(attrs, p.ignore)

	wasManaged := p.managed.Contains(h)
	switch {
	case manageable && !wasManaged:
		p.managed.Insert(win)
		p.emit(Event{Kind: WindowAdded, Window: win})
	case !manageable && wasManaged:
		p.managed.Remove(h)
		p.emit(Event{Kind: WindowRemoved, Window: win})
		return
	case !manageable:
		return
	}

	if kind == platform.EventForegroundChanged {
		p.managed.SetFocus(h)
		p.emit(Event{Kind: FocusChanged, Window: win})
	}
}

// handleStillManaged emits kind for h if h is currently managed,
// re-running the filter first since a title/size change can push a
// previously managed window out of scope (and vice versa is handled
// by handleShowOrForeground's own path).
func (p *Pump) handleStillManaged(h handle.Handle, kind Kind) {
	win, ok := p.managed.Get(h)
	if !ok {
		return
	}
	attrs, valid := win.Attrs()
	if !valid || !win.IsValid() || !Manageable(attrs, p.ignore) {
		p.managed.Remove(h)
		p.emit(Event{Kind: WindowRemoved, Window: win})
		return
	}
	p.emit(Event{Kind: kind, Window: win})
}

func (p *Pump) emit(ev Event) {
	if p.handler != nil {
		p.handler(ev)
	}
}
