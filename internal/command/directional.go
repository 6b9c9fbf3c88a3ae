package command

import (
	"github.com/tesserawm/tessera/internal/handle"
	"github.com/tesserawm/tessera/internal/workspace"
)

// Direction is a cardinal direction for focus/swap operations.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// nearest finds the closest window to focused in direction among
// candidates, comparing window centers: primary-axis distance first,
// secondary-axis distance as tiebreaker. There is no angular cone —
// any candidate whose center lies strictly on the correct side of
// focused's center on the primary axis is eligible.
func nearest(focused handle.Window, candidates []handle.Window, dir Direction) (handle.Window, bool) {
	fx, fy := focused.Center()

	var best handle.Window
	found := false
	bestPrimary, bestSecondary := 0, 0

	for _, c := range candidates {
		if c.Handle() == focused.Handle() {
			continue
		}
		if !c.IsValid() {
			continue
		}
		cx, cy := c.Center()
		dx, dy := cx-fx, cy-fy

		var inDirection bool
		var primary, secondary int
		switch dir {
		case Left:
			inDirection = dx < 0
			primary, secondary = abs(dx), abs(dy)
		case Right:
			inDirection = dx > 0
			primary, secondary = abs(dx), abs(dy)
		case Up:
			inDirection = dy < 0
			primary, secondary = abs(dy), abs(dx)
		case Down:
			inDirection = dy > 0
			primary, secondary = abs(dy), abs(dx)
		}
		if !inDirection {
			continue
		}

		if !found || primary < bestPrimary || (primary == bestPrimary && secondary < bestSecondary) {
			best, found = c, true
			bestPrimary, bestSecondary = primary, secondary
		}
	}
	return best, found
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// FocusDirection focuses the nearest tiled window to focused in dir,
// confined to the same workspace's tiled list. Returns false if there
// is no candidate.
func FocusDirection(focused handle.Window, tiled []handle.Window, dir Direction) bool {
	target, ok := nearest(focused, tiled, dir)
	if !ok {
		return false
	}
	return target.Focus()
}

// SwapDirection exchanges focused with the nearest tiled window to it
// in dir, confined to ws's own tiled list, and swaps their list
// positions. Returns false if there is no candidate. The caller must
// retile ws afterward; this mirrors the swap-then-retile split spec.md
// §6 describes for the directional-swap metric.
func SwapDirection(focused handle.Window, ws *workspace.Workspace, dir Direction) bool {
	target, ok := nearest(focused, ws.Tiled(), dir)
	if !ok {
		return false
	}
	ws.SwapWindows(focused, target)
	return true
}
