package layout

import "github.com/tesserawm/tessera/internal/geom"

// Wide is the transpose of Tall: a master window on top, the
// remaining windows stacked as equal-width columns below it.
type Wide struct {
	params
}

func (w *Wide) Name() string { return "wide" }

func (w *Wide) Arrange(n int, area geom.Rect) []geom.Rect {
	if rects, ok := singleWindow(n, area, w.gap); ok {
		return rects
	}

	master, stack := area.SplitVertical(w.masterRatio)
	g := w.gap

	rects := make([]geom.Rect, n)
	rects[0] = geom.Rect{
		X: master.X + g, Y: master.Y + g,
		Width:  master.Width - 2*g,
		Height: master.Height - g - g/2,
	}

	cols := geom.SliceColumns(stack, n-1)
	for i, col := range cols {
		left := g / 2
		right := g / 2
		if i == 0 {
			left = g
		}
		if i == len(cols)-1 {
			right = g
		}
		rects[i+1] = geom.Rect{
			X:      col.X + left,
			Y:      col.Y + g/2,
			Width:  col.Width - left - right,
			Height: col.Height - g/2 - g,
		}
	}
	return rects
}
