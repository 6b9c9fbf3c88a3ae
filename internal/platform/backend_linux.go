//go:build linux

package platform

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tesserawm/tessera/internal/geom"
	"github.com/tesserawm/tessera/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xevent"
)

// LinuxBackend implements Backend over an X11/EWMH connection. Decoration
// stripping for WM-fullscreen is done with Motif hints (_MOTIF_WM_HINTS)
// rather than GWL_STYLE bits, since that is the X11 analogue; StyleBits
// on this backend packs the saved Motif decoration/function flags into
// its Style field and the saved _NET_WM_STATE fullscreen flag into
// ExStyle so the save/restore round-trip in internal/handle stays
// platform-neutral.
type LinuxBackend struct {
	conn *x11.Connection

	mu        sync.Mutex
	events    chan Event
	stop      chan struct{}
	hotkeys   map[HotkeyID]hotkeyGrab
	grabIndex map[grabKey]HotkeyID
	nextHKID  int

	// watched/hidden track per-window PropertyNotify subscriptions: once
	// a window is mapped, we select PropertyChangeMask on it so _NET_WM_STATE
	// and name changes reach push() too, and remember its last-known
	// hidden state so a _NET_WM_STATE change can be told apart as a
	// minimize-start vs minimize-end transition.
	watched map[xproto.Window]bool
	hidden  map[xproto.Window]bool

	atomActiveWindow xproto.Atom
	atomWmState      xproto.Atom
	atomNetWmName    xproto.Atom
	atomWmName       xproto.Atom
}

type hotkeyGrab struct {
	keycode xproto.Keycode
	mods    []uint16
}

// grabKey is the exact (keycode, modifier-state) pair X delivers on a
// KeyPress; RegisterHotkey grabs one entry per lock-key variant so any
// of them maps back to the same HotkeyID.
type grabKey struct {
	keycode xproto.Keycode
	mods    uint16
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend opens a fresh X11 connection and wraps it as a Backend.
func NewLinuxBackend() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("connect to X11: %w", err)
	}
	return &LinuxBackend{
		conn:      conn,
		events:    make(chan Event, 64),
		stop:      make(chan struct{}),
		hotkeys:   make(map[HotkeyID]hotkeyGrab),
		grabIndex: make(map[grabKey]HotkeyID),
		watched:   make(map[xproto.Window]bool),
		hidden:    make(map[xproto.Window]bool),
	}, nil
}

func (b *LinuxBackend) EnumerateWindows() ([]WindowID, error) {
	clients, err := ewmh.ClientListGet(b.conn.XUtil)
	if err != nil {
		return nil, err
	}
	ids := make([]WindowID, 0, len(clients))
	for _, c := range clients {
		ids = append(ids, WindowID(c))
	}
	return ids, nil
}

func (b *LinuxBackend) IsValid(id WindowID) bool {
	_, err := xproto.GetGeometry(b.conn.XUtil.Conn(), xproto.Drawable(id)).Reply()
	return err == nil
}

func (b *LinuxBackend) Attributes(id WindowID) (Attributes, error) {
	win := xproto.Window(id)
	rect, ok := b.windowRect(win)
	if !ok {
		return Attributes{}, fmt.Errorf("window %d: no geometry", id)
	}

	attrs := Attributes{
		Bounds: rect,
		Title:  b.windowTitle(win),
		Class:  b.windowClass(win),
	}

	if pid, err := ewmh.WmPidGet(b.conn.XUtil, win); err == nil {
		attrs.PID = int(pid)
	}
	attrs.ProcessName = attrs.Class

	wa, err := xproto.GetWindowAttributes(b.conn.XUtil.Conn(), win).Reply()
	if err == nil {
		attrs.Visible = wa.MapState == xproto.MapStateViewable
	}

	states, _ := ewmh.WmStateGet(b.conn.XUtil, win)
	for _, s := range states {
		switch s {
		case "_NET_WM_STATE_HIDDEN":
			attrs.Minimized = true
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT":
			attrs.Maximized = true
		}
	}

	wmType, _ := ewmh.WmWindowTypeGet(b.conn.XUtil, win)
	for _, t := range wmType {
		if t == "_NET_WM_WINDOW_TYPE_UTILITY" {
			attrs.ToolWindow = true
		}
	}

	return attrs, nil
}

func (b *LinuxBackend) SetStyle(id WindowID, style StyleBits) error {
	win := xproto.Window(id)
	hints := &motif.Hints{
		Flags:      motif.HintDecorations | motif.HintFunctions,
		Decoration: style.Style,
		Function:   style.ExStyle,
	}
	return motif.WmHintsSet(b.conn.XUtil, win, hints)
}

func (b *LinuxBackend) MoveResize(id WindowID, bounds geom.Rect, flags PlacementFlags) error {
	win := xproto.Window(id)

	if flags.InsertAtBottom {
		_ = xproto.ConfigureWindowChecked(b.conn.XUtil.Conn(), win,
			xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow}).Check()
	} else if flags.InsertAtTop {
		_ = xproto.ConfigureWindowChecked(b.conn.XUtil.Conn(), win,
			xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
	}

	if flags.NoSize && flags.NoMove {
		return nil
	}

	return b.conn.MoveResizeWindow(win, bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) ShowWindow(id WindowID, cmd ShowCmd) error {
	win := xproto.Window(id)
	switch cmd {
	case ShowHide:
		return xproto.UnmapWindowChecked(b.conn.XUtil.Conn(), win).Check()
	case ShowRestore, ShowNoActivate:
		if err := xproto.MapWindowChecked(b.conn.XUtil.Conn(), win).Check(); err != nil {
			return err
		}
		if cmd == ShowRestore {
			return ewmh.ActiveWindowReq(b.conn.XUtil, win)
		}
		return nil
	case ShowMinimize:
		return sendClientMessage(b.conn, win, "WM_CHANGE_STATE", []uint32{3, 0, 0, 0, 0})
	case ShowMaximize:
		return ewmh.WmStateReq(b.conn.XUtil, win, ewmh.StateToggle,
			"_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT")
	}
	return fmt.Errorf("unknown show command %d", cmd)
}

func (b *LinuxBackend) Close(id WindowID) error {
	win := xproto.Window(id)
	protocols, err := icccm.WmProtocolsGet(b.conn.XUtil, win)
	if err == nil {
		for _, p := range protocols {
			if p == "WM_DELETE_WINDOW" {
				return sendProtocolMessage(b.conn, win, "WM_DELETE_WINDOW")
			}
		}
	}
	return xproto.DestroyWindowChecked(b.conn.XUtil.Conn(), win).Check()
}

func (b *LinuxBackend) Focus(id WindowID) error {
	return ewmh.ActiveWindowReq(b.conn.XUtil, xproto.Window(id))
}

func (b *LinuxBackend) Monitors() ([]geom.Monitor, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}
	result := make([]geom.Monitor, 0, len(monitors))
	for _, m := range monitors {
		full := geom.Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}
		result = append(result, geom.Monitor{
			Name:      m.Name,
			FullRect:  full,
			WorkRect:  full, // the full CRTC rect: panel/dock struts are not subtracted
			IsPrimary: m.Primary,
		})
	}
	return result, nil
}

// RegisterHotkey grabs a key combination on the root window. modMask and
// key are raw X11 modifier mask / keycode values; resolving a symbolic
// keybinding string to a keycode is the hotkeys package's job. The combo
// is grabbed once per CapsLock/NumLock/ScrollLock variant (see
// lockModVariants) so the hotkey still fires with any of those engaged,
// mirroring termtile's own configureIgnoreMods handling.
func (b *LinuxBackend) RegisterHotkey(modMask uint32, key uint32) (HotkeyID, error) {
	code := xproto.Keycode(key)
	variants := b.lockModVariants(uint16(modMask))

	grabbed := make([]uint16, 0, len(variants))
	for _, mods := range variants {
		err := xproto.GrabKeyChecked(b.conn.XUtil.Conn(), true, b.conn.Root, mods, code,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			for _, done := range grabbed {
				xproto.UngrabKeyChecked(b.conn.XUtil.Conn(), code, b.conn.Root, done).Check()
			}
			return 0, err
		}
		grabbed = append(grabbed, mods)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextHKID++
	id := HotkeyID(b.nextHKID)
	b.hotkeys[id] = hotkeyGrab{keycode: code, mods: grabbed}
	for _, mods := range grabbed {
		b.grabIndex[grabKey{keycode: code, mods: mods}] = id
	}
	return id, nil
}

// lockModVariants returns every combination of base with the Lock-like
// modifier bits (CapsLock, NumLock, ScrollLock) added, since X only
// delivers a KeyPress for the exact modifier state grabbed: a combo
// grabbed with mods=Mod4 alone never fires while CapsLock is on.
// Mirrors termtile's configureIgnoreMods.
func (b *LinuxBackend) lockModVariants(base uint16) []uint16 {
	var locks []uint16
	add := func(m uint16) {
		if m == 0 {
			return
		}
		for _, existing := range locks {
			if existing == m {
				return
			}
		}
		locks = append(locks, m)
	}
	add(uint16(xproto.ModMaskLock))
	add(uint16(b.ModMaskForKeysym("Num_Lock")))
	add(uint16(b.ModMaskForKeysym("Scroll_Lock")))

	seen := make(map[uint16]bool)
	var variants []uint16
	for subset := 0; subset < (1 << len(locks)); subset++ {
		mask := base
		for i, bit := range locks {
			if subset&(1<<i) != 0 {
				mask |= bit
			}
		}
		if !seen[mask] {
			seen[mask] = true
			variants = append(variants, mask)
		}
	}
	return variants
}

// ResolveMod resolves a symbolic modifier name to its X11 modifier
// mask bit.
func (b *LinuxBackend) ResolveMod(name string) (uint32, error) {
	switch name {
	case "Shift":
		return uint32(xproto.ModMaskShift), nil
	case "Control", "Ctrl":
		return uint32(xproto.ModMaskControl), nil
	case "Alt":
		return uint32(xproto.ModMask1), nil
	case "Super", "Win", "Mod4":
		return uint32(xproto.ModMask4), nil
	default:
		return 0, fmt.Errorf("platform: unknown modifier %q", name)
	}
}

// ResolveKey resolves an X11 keysym name (e.g. "h", "1", "Left") to
// its current keycode, for internal/hotkeys's symbolic key-combo
// parsing. Not part of the Backend interface; callers type-assert for
// it the way termtile's hotkeys handler type-asserted for x11Accessor.
func (b *LinuxBackend) ResolveKey(name string) (uint32, error) {
	codes := keybind.StrToKeycodes(b.conn.XUtil, name)
	if len(codes) == 0 {
		return 0, fmt.Errorf("platform: no keycode for keysym %q", name)
	}
	return uint32(codes[0]), nil
}

// ModMaskForKeysym exposes the modifier bit a lock/modifier keysym
// (e.g. "Num_Lock") currently maps to, so lockModVariants can build
// the ignore-mods set the way termtile's configureIgnoreMods did.
func (b *LinuxBackend) ModMaskForKeysym(name string) uint32 {
	for _, code := range keybind.StrToKeycodes(b.conn.XUtil, name) {
		if mask := keybind.ModGet(b.conn.XUtil, code); mask != 0 {
			return uint32(mask)
		}
	}
	return 0
}

func (b *LinuxBackend) UnregisterHotkey(id HotkeyID) error {
	b.mu.Lock()
	grab, ok := b.hotkeys[id]
	delete(b.hotkeys, id)
	if ok {
		for _, mods := range grab.mods {
			delete(b.grabIndex, grabKey{keycode: grab.keycode, mods: mods})
		}
	}
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("hotkey %d not registered", id)
	}
	var lastErr error
	for _, mods := range grab.mods {
		if err := xproto.UngrabKeyChecked(b.conn.XUtil.Conn(), grab.keycode, b.conn.Root, mods).Check(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// Fetch blocks on the X11 connection's event channel. The caller (the
// eventpump) is the single thread servicing this; Start feeds the
// channel from its own goroutine, and Stop may be called from anywhere.
func (b *LinuxBackend) Fetch() (Event, bool) {
	select {
	case ev := <-b.events:
		return ev, true
	case <-b.stop:
		return Event{}, false
	}
}

// Stop wakes a blocked Fetch from any goroutine by closing the stop
// channel; it is the cross-thread entry point spec.md §5 requires.
func (b *LinuxBackend) Stop() {
	select {
	case <-b.stop:
		// already stopped
	default:
		close(b.stop)
	}
}

// Start installs the xgbutil event handlers that translate raw X11
// events into platform.Event values pushed onto b.events, then blocks
// servicing the connection (xevent.Main) until Stop is called. It runs
// on its own goroutine: xevent.Main never returns control to its
// caller while the connection is alive, so it cannot share a goroutine
// with the loop that calls Fetch (that loop is internal/eventpump's
// Pump.Run, the single logical event-loop thread spec.md §5 describes).
// The two communicate only through the buffered b.events channel.
func (b *LinuxBackend) Start() error {
	if err := b.internAtoms(); err != nil {
		return err
	}

	xevent.MapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.MapNotifyEvent) {
		b.watchProperties(ev.Window)
		b.push(Event{Kind: EventShow, Window: WindowID(ev.Window)})
	}).Connect(b.conn.XUtil, b.conn.Root)

	xevent.UnmapNotifyFun(func(_ *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		b.push(Event{Kind: EventHide, Window: WindowID(ev.Window)})
	}).Connect(b.conn.XUtil, b.conn.Root)

	xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		b.forgetWindow(ev.Window)
		b.push(Event{Kind: EventDestroy, Window: WindowID(ev.Window)})
	}).Connect(b.conn.XUtil, b.conn.Root)

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		b.push(Event{Kind: EventMoveSizeEnd, Window: WindowID(ev.Window)})
	}).Connect(b.conn.XUtil, b.conn.Root)

	xevent.KeyPressFun(func(_ *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		b.mu.Lock()
		id, ok := b.grabIndex[grabKey{keycode: ev.Detail, mods: ev.State}]
		b.mu.Unlock()
		if !ok {
			return
		}
		b.push(Event{Kind: EventHotkey, Window: WindowID(ev.Event), HotkeyID: int(id)})
	}).Connect(b.conn.XUtil, b.conn.Root)

	xevent.PropertyNotifyFun(func(_ *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		b.handlePropertyNotify(ev)
	}).Connect(b.conn.XUtil, b.conn.Root)

	go func() {
		<-b.stop
		b.conn.Close()
	}()

	b.conn.EventLoop()
	return nil
}

// internAtoms resolves the property atoms Start's PropertyNotify
// handler compares against, once, up front.
func (b *LinuxBackend) internAtoms() error {
	names := []string{"_NET_ACTIVE_WINDOW", "_NET_WM_STATE", "_NET_WM_NAME", "WM_NAME"}
	atoms := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(b.conn.XUtil.Conn(), false, uint16(len(name)), name).Reply()
		if err != nil {
			return fmt.Errorf("intern atom %s: %w", name, err)
		}
		atoms[i] = reply.Atom
	}
	b.atomActiveWindow, b.atomWmState, b.atomNetWmName, b.atomWmName = atoms[0], atoms[1], atoms[2], atoms[3]
	return nil
}

// watchProperties selects PropertyChangeMask on win so its _NET_WM_STATE
// and name-atom changes generate PropertyNotify: SubstructureNotifyMask
// on the root (which already delivers Map/Unmap/Destroy/ConfigureNotify
// for children) does not cover a child's own PropertyNotify stream.
func (b *LinuxBackend) watchProperties(win xproto.Window) {
	b.mu.Lock()
	if b.watched[win] {
		b.mu.Unlock()
		return
	}
	b.watched[win] = true
	b.mu.Unlock()

	xproto.ChangeWindowAttributes(b.conn.XUtil.Conn(), win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange})
}

func (b *LinuxBackend) forgetWindow(win xproto.Window) {
	b.mu.Lock()
	delete(b.watched, win)
	delete(b.hidden, win)
	b.mu.Unlock()
}

func (b *LinuxBackend) handlePropertyNotify(ev xevent.PropertyNotifyEvent) {
	switch ev.Atom {
	case b.atomActiveWindow:
		if ev.Window != b.conn.Root {
			return
		}
		active, err := ewmh.ActiveWindowGet(b.conn.XUtil)
		if err != nil || active == 0 {
			return
		}
		b.push(Event{Kind: EventForegroundChanged, Window: WindowID(active)})
	case b.atomWmState:
		b.handleStateChange(ev.Window)
	case b.atomNetWmName, b.atomWmName:
		b.push(Event{Kind: EventNameChanged, Window: WindowID(ev.Window)})
	}
}

func (b *LinuxBackend) handleStateChange(win xproto.Window) {
	hidden := false
	if states, err := ewmh.WmStateGet(b.conn.XUtil, win); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_HIDDEN" {
				hidden = true
				break
			}
		}
	}

	b.mu.Lock()
	was := b.hidden[win]
	b.hidden[win] = hidden
	b.mu.Unlock()

	if hidden == was {
		return
	}
	if hidden {
		b.push(Event{Kind: EventMinimizeStart, Window: WindowID(win)})
	} else {
		b.push(Event{Kind: EventMinimizeEnd, Window: WindowID(win)})
	}
}

func (b *LinuxBackend) push(ev Event) {
	select {
	case b.events <- ev:
	case <-b.stop:
	}
}

func (b *LinuxBackend) windowRect(win xproto.Window) (geom.Rect, bool) {
	g, err := xproto.GetGeometry(b.conn.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geom.Rect{}, false
	}
	t, err := xproto.TranslateCoordinates(b.conn.XUtil.Conn(), win, b.conn.Root, 0, 0).Reply()
	if err != nil {
		return geom.Rect{}, false
	}
	return geom.Rect{X: int(t.DstX), Y: int(t.DstY), Width: int(g.Width), Height: int(g.Height)}, true
}

func (b *LinuxBackend) windowClass(win xproto.Window) string {
	wc, err := icccm.WmClassGet(b.conn.XUtil, win)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wc.Class)
}

func (b *LinuxBackend) windowTitle(win xproto.Window) string {
	if title, err := ewmh.WmNameGet(b.conn.XUtil, win); err == nil {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	if title, err := icccm.WmNameGet(b.conn.XUtil, win); err == nil {
		return strings.TrimSpace(title)
	}
	return ""
}

func sendClientMessage(conn *x11.Connection, win xproto.Window, atomName string, data []uint32) error {
	reply, err := xproto.InternAtom(conn.XUtil.Conn(), false, uint16(len(atomName)), atomName).Reply()
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New(data),
	}
	return xproto.SendEventChecked(conn.XUtil.Conn(), false, conn.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify, string(ev.Bytes())).Check()
}

func sendProtocolMessage(conn *x11.Connection, win xproto.Window, protocol string) error {
	protoAtom, err := xproto.InternAtom(conn.XUtil.Conn(), false, uint16(len(protocol)), protocol).Reply()
	if err != nil {
		return err
	}
	wmProtocols, err := xproto.InternAtom(conn.XUtil.Conn(), false, uint16(len("WM_PROTOCOLS")), "WM_PROTOCOLS").Reply()
	if err != nil {
		return err
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   wmProtocols.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(protoAtom.Atom), 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(conn.XUtil.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}
