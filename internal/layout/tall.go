package layout

import "github.com/tesserawm/tessera/internal/geom"

// Tall places a single master window in a left column and stacks the
// remaining windows as equal-height rows in a right column.
type Tall struct {
	params
}

func (t *Tall) Name() string { return "tall" }

func (t *Tall) Arrange(n int, area geom.Rect) []geom.Rect {
	if rects, ok := singleWindow(n, area, t.gap); ok {
		return rects
	}
	return tallSplit(n, area, t.masterRatio, t.gap)
}

// tallSplit computes the Tall arrangement for n>=2 windows: a master
// rect on the left with g padding on three sides and g/2 on the side
// facing the stack, and n-1 equal-height stack rows on the right, each
// with g on its outward edges (or g/2 where it borders a sibling row),
// g/2 on the side facing the master and g on the far side. Shared with
// ThreeColumn's n=2 fallback, which is defined to behave exactly like
// Tall.
func tallSplit(n int, area geom.Rect, ratio float64, gap int) []geom.Rect {
	master, stack := area.SplitHorizontal(ratio)
	g := gap

	rects := make([]geom.Rect, n)
	rects[0] = geom.Rect{
		X: master.X + g, Y: master.Y + g,
		Width:  master.Width - g - g/2,
		Height: master.Height - 2*g,
	}

	rows := geom.SliceRows(stack, n-1)
	for i, row := range rows {
		top := g / 2
		bottom := g / 2
		if i == 0 {
			top = g
		}
		if i == len(rows)-1 {
			bottom = g
		}
		rects[i+1] = geom.Rect{
			X:      row.X + g/2,
			Y:      row.Y + top,
			Width:  row.Width - g/2 - g,
			Height: row.Height - top - bottom,
		}
	}
	return rects
}
