package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// First, check if window is maximized and unmaximize it
	if err := c.unmaximizeWindow(windowID); err != nil {
		// Ignore the error - some windows might not support this
	}

	// Create xwindow wrapper
	win := xwindow.New(c.XUtil, windowID)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(
		c.XUtil,
		windowID,
		x, y, width, height,
	)

	if err != nil {
		// Fallback to direct window manipulation
		win.MoveResize(x, y, width, height)
		return nil
	}

	return nil
}

// unmaximizeWindow removes maximized state from a window
func (c *Connection) unmaximizeWindow(windowID xproto.Window) error {
	// Get current window states
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return err
	}

	// Check if window is maximized
	hasMaxH := false
	hasMaxV := false

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" {
			hasMaxH = true
		}
		if state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			hasMaxV = true
		}
	}

	// Remove maximized states if present
	if hasMaxH || hasMaxV {
		// Request state removal
		if hasMaxH {
			ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_HORZ")
		}
		if hasMaxV {
			ewmh.WmStateReq(c.XUtil, windowID, 0, "_NET_WM_STATE_MAXIMIZED_VERT")
		}
	}

	return nil
}
