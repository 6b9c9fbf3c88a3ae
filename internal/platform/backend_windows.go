//go:build windows

package platform

import (
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"github.com/tesserawm/tessera/internal/geom"
	"golang.org/x/sys/windows"
)

var (
	user32  = windows.NewLazyDLL("user32.dll")
	dwmapi  = windows.NewLazyDLL("dwmapi.dll")
	kernel32 = windows.NewLazyDLL("kernel32.dll")

	procEnumWindows          = user32.NewProc("EnumWindows")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLength  = user32.NewProc("GetWindowTextLengthW")
	procGetClassNameW        = user32.NewProc("GetClassNameW")
	procGetWindowRect        = user32.NewProc("GetWindowRect")
	procGetWindowThreadPID   = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procIsIconic             = user32.NewProc("IsIconic")
	procIsZoomed             = user32.NewProc("IsZoomed")
	procShowWindow           = user32.NewProc("ShowWindow")
	procSetWindowPos         = user32.NewProc("SetWindowPos")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")
	procGetWindowLongPtrW    = user32.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW    = user32.NewProc("SetWindowLongPtrW")
	procPostMessageW         = user32.NewProc("PostMessageW")
	procRegisterHotKey       = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey     = user32.NewProc("UnregisterHotKey")
	procPostThreadMessageW   = user32.NewProc("PostThreadMessageW")
	procEnumDisplayMonitors  = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW      = user32.NewProc("GetMonitorInfoW")
	procIsWindow             = user32.NewProc("IsWindow")
	procDwmGetWindowAttribute = dwmapi.NewProc("DwmGetWindowAttribute")
	procGetCurrentThreadId   = kernel32.NewProc("GetCurrentThreadId")
	procSetWinEventHook      = user32.NewProc("SetWinEventHook")
	procUnhookWinEvent       = user32.NewProc("UnhookWinEvent")
	procPeekMessageW         = user32.NewProc("PeekMessageW")
	procTranslateMessage     = user32.NewProc("TranslateMessage")
	procDispatchMessageW     = user32.NewProc("DispatchMessageW")
)

// Event constants spec.md §6 groups as "the event range
// [foreground..name-change]": SetWinEventHook takes an inclusive
// [eventMin, eventMax] pair, so the hook is installed once over the
// full span rather than once per event type.
const (
	eventSystemForeground    = 0x0003
	eventSystemMinimizeStart = 0x0016
	eventSystemMinimizeEnd   = 0x0017
	eventObjectShow          = 0x8002
	eventObjectHide          = 0x8003
	eventObjectDestroy       = 0x8001
	eventObjectLocationChg   = 0x800B
	eventObjectNameChange    = 0x800C
	eventMin                 = eventSystemForeground
	eventMax                 = eventObjectNameChange

	winEventOutOfContext = 0x0000
)

const (
	swHide         = 0
	swShowNormal   = 1
	swShowMinimize = 2
	swMaximize     = 3
	swShowNoActive = 4
	swMinimize     = 6
	swRestore      = 9

	swpNoSize       = 0x0001
	swpNoMove       = 0x0002
	swpNoZOrder     = 0x0004
	swpNoActivate   = 0x0010
	swpFrameChanged = 0x0020
	swpShowWindow   = 0x0040
	swpHideWindow   = 0x0080

	hwndTop    = 0
	hwndBottom = 1

	gwlStyle   = -16
	gwlExStyle = -20

	wsCaption    = 0x00C00000
	wsThickFrame = 0x00040000
	wsMinimize   = 0x20000000
	wsMaximize   = 0x01000000

	wsExToolWindow = 0x00000080
	wsExAppWindow  = 0x00040000
	wsExNoActivate = 0x08000000

	dwmwaCloaked = 14

	wmClose  = 0x0010
	wmHotkey = 0x0312
	wmQuit   = 0x0012
)

// WindowsBackend implements Backend over raw Win32 syscalls. StyleBits
// here is the literal GWL_STYLE/GWL_EXSTYLE pair spec.md §3/§4.B
// describes, so save/restore round-trips bit-exact.
type WindowsBackend struct {
	mu       sync.Mutex
	threadID uint32
	hotkeys  map[HotkeyID]int
	nextHKID int
	nextAtom int

	events   chan Event
	stop     chan struct{}
	hookHandle uintptr
}

var _ Backend = (*WindowsBackend)(nil)

// NewWindowsBackend constructs a backend bound to the calling OS
// thread. The caller must have pinned the goroutine with
// runtime.LockOSThread before invoking this, since RegisterHotKey,
// SetWinEventHook and the message queue are thread-affine on Windows.
func NewWindowsBackend() (*WindowsBackend, error) {
	tid, _, _ := procGetCurrentThreadId.Call()
	b := &WindowsBackend{
		threadID: uint32(tid),
		hotkeys:  make(map[HotkeyID]int),
		events:   make(chan Event, 64),
		stop:     make(chan struct{}),
	}
	return b, nil
}

// Start installs the out-of-context WinEvent hook over the
// [foreground..name-change] range and pumps this thread's message
// queue so the hook's callbacks (delivered as posted messages) are
// serviced, until Stop is called. It runs on its own goroutine, locked
// to the OS thread SetWinEventHook was installed on (see
// NewWindowsBackend): the message pump below and whatever goroutine
// calls Fetch hand off only through b.events.
func (b *WindowsBackend) Start() error {
	cb := syscall.NewCallback(func(_ uintptr, event uint32, hwnd syscall.Handle, _ int32, _ int32, _ uint32, _ uint32) uintptr {
		kind, ok := winEventToKind(event)
		if !ok {
			return 0
		}
		select {
		case b.events <- Event{Kind: kind, Window: WindowID(hwnd)}:
		case <-b.stop:
		}
		return 0
	})
	hook, _, _ := procSetWinEventHook.Call(eventMin, eventMax, 0, cb, 0, 0, winEventOutOfContext)
	b.hookHandle = hook
	defer procUnhookWinEvent.Call(b.hookHandle)

	var m msg
	for {
		select {
		case <-b.stop:
			return nil
		default:
		}
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, 1 /* PM_REMOVE */)
		if ret == 0 {
			continue
		}
		if m.Message == wmHotkey {
			select {
			case b.events <- Event{Kind: EventHotkey, HotkeyID: int(m.WParam)}:
			case <-b.stop:
				return nil
			}
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func winEventToKind(event uint32) (EventKind, bool) {
	switch event {
	case eventSystemForeground:
		return EventForegroundChanged, true
	case eventObjectShow:
		return EventShow, true
	case eventObjectHide:
		return EventHide, true
	case eventObjectDestroy:
		return EventDestroy, true
	case eventSystemMinimizeStart:
		return EventMinimizeStart, true
	case eventSystemMinimizeEnd:
		return EventMinimizeEnd, true
	case eventObjectLocationChg:
		return EventMoveSizeEnd, true
	case eventObjectNameChange:
		return EventNameChanged, true
	default:
		return 0, false
	}
}

func (b *WindowsBackend) EnumerateWindows() ([]WindowID, error) {
	var ids []WindowID
	cb := syscall.NewCallback(func(hwnd syscall.Handle, _ uintptr) uintptr {
		ids = append(ids, WindowID(hwnd))
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return ids, nil
}

func (b *WindowsBackend) IsValid(id WindowID) bool {
	ok, _, _ := procIsWindow.Call(uintptr(id))
	return ok != 0
}

type winRect struct{ Left, Top, Right, Bottom int32 }

func (b *WindowsBackend) Attributes(id WindowID) (Attributes, error) {
	hwnd := uintptr(id)

	var r winRect
	procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	bounds := geom.Rect{X: int(r.Left), Y: int(r.Top), Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)}

	style, _, _ := procGetWindowLongPtrW.Call(hwnd, uintptr(gwlStyle))
	exStyle, _, _ := procGetWindowLongPtrW.Call(hwnd, uintptr(gwlExStyle))

	visible, _, _ := procIsWindowVisible.Call(hwnd)
	minimized, _, _ := procIsIconic.Call(hwnd)
	maximized, _, _ := procIsZoomed.Call(hwnd)

	var cloaked int32
	procDwmGetWindowAttribute.Call(hwnd, dwmwaCloaked, uintptr(unsafe.Pointer(&cloaked)), unsafe.Sizeof(cloaked))

	var pid uint32
	procGetWindowThreadPID.Call(hwnd, uintptr(unsafe.Pointer(&pid)))

	return Attributes{
		Title:       windowText(hwnd),
		Class:       windowClassName(hwnd),
		ProcessName: processImageName(pid),
		PID:         int(pid),
		Bounds:      bounds,
		Style:       StyleBits{Style: uint32(style), ExStyle: uint32(exStyle)},
		Visible:     visible != 0,
		Minimized:   minimized != 0,
		Maximized:   maximized != 0,
		Cloaked:     cloaked != 0,
		ToolWindow:  uint32(exStyle)&wsExToolWindow != 0,
		NoActivate:  uint32(exStyle)&wsExNoActivate != 0,
	}, nil
}

func (b *WindowsBackend) SetStyle(id WindowID, style StyleBits) error {
	hwnd := uintptr(id)
	procSetWindowLongPtrW.Call(hwnd, uintptr(gwlStyle), uintptr(style.Style))
	procSetWindowLongPtrW.Call(hwnd, uintptr(gwlExStyle), uintptr(style.ExStyle))
	return nil
}

func (b *WindowsBackend) MoveResize(id WindowID, bounds geom.Rect, flags PlacementFlags) error {
	hwnd := uintptr(id)
	hwndInsertAfter := uintptr(0)
	swp := 0
	if flags.NoSize {
		swp |= swpNoSize
	}
	if flags.NoMove {
		swp |= swpNoMove
	}
	if flags.NoActivate {
		swp |= swpNoActivate
	}
	if flags.FrameChanged {
		swp |= swpFrameChanged
	}
	if flags.Show {
		swp |= swpShowWindow
	}
	if flags.Hide {
		swp |= swpHideWindow
	}
	if flags.InsertAtBottom {
		hwndInsertAfter = hwndBottom
	} else if flags.InsertAtTop {
		hwndInsertAfter = hwndTop
	} else {
		swp |= swpNoZOrder
	}

	ok, _, err := procSetWindowPos.Call(hwnd, hwndInsertAfter,
		uintptr(bounds.X), uintptr(bounds.Y), uintptr(bounds.Width), uintptr(bounds.Height), uintptr(swp))
	if ok == 0 {
		return fmt.Errorf("SetWindowPos: %w", err)
	}
	return nil
}

func (b *WindowsBackend) ShowWindow(id WindowID, cmd ShowCmd) error {
	hwnd := uintptr(id)
	var sw int
	switch cmd {
	case ShowHide:
		sw = swHide
	case ShowRestore:
		sw = swRestore
	case ShowMinimize:
		sw = swMinimize
	case ShowMaximize:
		sw = swMaximize
	case ShowNoActivate:
		sw = swShowNoActive
	default:
		return fmt.Errorf("unknown show command %d", cmd)
	}
	procShowWindow.Call(hwnd, uintptr(sw))
	if cmd == ShowRestore {
		procSetForegroundWindow.Call(hwnd)
	}
	return nil
}

func (b *WindowsBackend) Close(id WindowID) error {
	procPostMessageW.Call(uintptr(id), wmClose, 0, 0)
	return nil
}

func (b *WindowsBackend) Focus(id WindowID) error {
	minimized, _, _ := procIsIconic.Call(uintptr(id))
	if minimized != 0 {
		procShowWindow.Call(uintptr(id), swRestore)
	}
	ok, _, err := procSetForegroundWindow.Call(uintptr(id))
	if ok == 0 {
		return fmt.Errorf("SetForegroundWindow: %w", err)
	}
	return nil
}

type monitorInfo struct {
	Size    uint32
	Monitor winRect
	Work    winRect
	Flags   uint32
}

const monitorInfoFPrimary = 0x1

func (b *WindowsBackend) Monitors() ([]geom.Monitor, error) {
	var monitors []geom.Monitor
	cb := syscall.NewCallback(func(hMonitor syscall.Handle, _ syscall.Handle, _ uintptr, _ uintptr) uintptr {
		var mi monitorInfo
		mi.Size = uint32(unsafe.Sizeof(mi))
		procGetMonitorInfoW.Call(uintptr(hMonitor), uintptr(unsafe.Pointer(&mi)))
		full := geom.Rect{
			X: int(mi.Monitor.Left), Y: int(mi.Monitor.Top),
			Width: int(mi.Monitor.Right - mi.Monitor.Left), Height: int(mi.Monitor.Bottom - mi.Monitor.Top),
		}
		work := geom.Rect{
			X: int(mi.Work.Left), Y: int(mi.Work.Top),
			Width: int(mi.Work.Right - mi.Work.Left), Height: int(mi.Work.Bottom - mi.Work.Top),
		}
		monitors = append(monitors, geom.Monitor{
			Name:      fmt.Sprintf("monitor-%d", len(monitors)),
			FullRect:  full,
			WorkRect:  work,
			IsPrimary: mi.Flags&monitorInfoFPrimary != 0,
		})
		return 1
	})
	procEnumDisplayMonitors.Call(0, 0, cb, 0)
	return monitors, nil
}

func (b *WindowsBackend) RegisterHotkey(modMask uint32, key uint32) (HotkeyID, error) {
	b.mu.Lock()
	b.nextAtom++
	atomID := b.nextAtom
	b.mu.Unlock()

	ok, _, err := procRegisterHotKey.Call(0, uintptr(atomID), uintptr(modMask), uintptr(key))
	if ok == 0 {
		return 0, fmt.Errorf("RegisterHotKey: %w", err)
	}

	b.mu.Lock()
	b.nextHKID++
	id := HotkeyID(b.nextHKID)
	b.hotkeys[id] = atomID
	b.mu.Unlock()
	return id, nil
}

// ResolveMod resolves a symbolic modifier name to its Win32
// RegisterHotKey MOD_* bit.
func (b *WindowsBackend) ResolveMod(name string) (uint32, error) {
	switch name {
	case "Alt":
		return 0x0001, nil // MOD_ALT
	case "Control", "Ctrl":
		return 0x0002, nil // MOD_CONTROL
	case "Shift":
		return 0x0004, nil // MOD_SHIFT
	case "Super", "Win":
		return 0x0008, nil // MOD_WIN
	default:
		return 0, fmt.Errorf("platform: unknown modifier %q", name)
	}
}

// vkNames maps the non-alphanumeric key names internal/hotkeys's
// combo parser accepts to their Win32 virtual-key codes. Letters and
// digits need no table entry: their VK code equals their upper-case
// ASCII value.
var vkNames = map[string]uint32{
	"Left": 0x25, "Up": 0x26, "Right": 0x27, "Down": 0x28,
	"Enter": 0x0D, "Return": 0x0D, "Escape": 0x1B, "Space": 0x20, "Tab": 0x09,
	"Backspace": 0x08, "Delete": 0x2E,
}

// ResolveKey resolves a symbolic key name to its Win32 virtual-key
// code. Not part of the Backend interface; internal/hotkeys type-
// asserts for it the same way it type-asserts the Linux backend for
// its own ResolveKey.
func (b *WindowsBackend) ResolveKey(name string) (uint32, error) {
	if vk, ok := vkNames[name]; ok {
		return vk, nil
	}
	if len(name) == 1 {
		c := name[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			return uint32(c), nil
		}
	}
	return 0, fmt.Errorf("platform: no virtual-key code for %q", name)
}

func (b *WindowsBackend) UnregisterHotkey(id HotkeyID) error {
	b.mu.Lock()
	atomID, ok := b.hotkeys[id]
	delete(b.hotkeys, id)
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("hotkey %d not registered", id)
	}
	procUnregisterHotKey.Call(0, uintptr(atomID))
	return nil
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Fetch blocks until the next translated event or until Stop is called
// from another thread.
func (b *WindowsBackend) Fetch() (Event, bool) {
	select {
	case ev := <-b.events:
		return ev, true
	case <-b.stop:
		return Event{}, false
	}
}

// Stop wakes Start's PeekMessage loop and any blocked Fetch. Safe to
// call from any goroutine; it is the cross-thread entry point spec.md
// §5 requires.
func (b *WindowsBackend) Stop() {
	select {
	case <-b.stop:
	default:
		close(b.stop)
		procPostThreadMessageW.Call(uintptr(b.threadID), wmQuit, 0, 0)
	}
}

func windowText(hwnd uintptr) string {
	length, _, _ := procGetWindowTextLength.Call(hwnd)
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), length+1)
	return syscall.UTF16ToString(buf)
}

func windowClassName(hwnd uintptr) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf[:n])
}

func processImageName(pid uint32) string {
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return ""
	}
	defer windows.CloseHandle(h)
	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return ""
	}
	return syscall.UTF16ToString(buf[:size])
}
