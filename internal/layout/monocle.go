package layout

import "github.com/tesserawm/tessera/internal/geom"

// Monocle gives every window the full padded area; only the
// foreground window in Z-order is visually relevant, but all N
// windows are moved there so an unfocused one is ready the instant it
// is raised.
type Monocle struct {
	params
}

func (m *Monocle) Name() string { return "monocle" }

func (m *Monocle) Arrange(n int, area geom.Rect) []geom.Rect {
	if rects, ok := singleWindow(n, area, m.gap); ok {
		return rects
	}
	padded := area.Pad(m.gap)
	rects := make([]geom.Rect, n)
	for i := range rects {
		rects[i] = padded
	}
	return rects
}
