package layout

import "github.com/tesserawm/tessera/internal/geom"

// ThreeColumn centers the master window in a wide column flanked by a
// left and right column that share the remaining windows, alternating
// sides as each is added.
type ThreeColumn struct {
	params
}

func (c *ThreeColumn) Name() string { return "threecolumn" }

func (c *ThreeColumn) Arrange(n int, area geom.Rect) []geom.Rect {
	if rects, ok := singleWindow(n, area, c.gap); ok {
		return rects
	}
	if n == 2 {
		return tallSplit(n, area, c.masterRatio, c.gap)
	}

	g := c.gap
	side := int((1 - c.masterRatio) * float64(area.Width) / 2)
	center := area.Width - 2*side

	leftCol := geom.Rect{X: area.X, Y: area.Y, Width: side, Height: area.Height}
	centerCol := geom.Rect{X: area.X + side, Y: area.Y, Width: center, Height: area.Height}
	rightCol := geom.Rect{X: area.X + side + center, Y: area.Y, Width: side, Height: area.Height}

	var leftIdx, rightIdx []int
	for i := 1; i < n; i++ {
		if i%2 == 1 {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	// The alternation above always keeps both sides non-empty once
	// n>=3, but if a future redistribution rule ever left one side
	// empty, split the other side's column in half so no window is
	// dropped.
	if len(leftIdx) == 0 && len(rightIdx) > 0 {
		half := (len(rightIdx) + 1) / 2
		leftIdx, rightIdx = rightIdx[:half], rightIdx[half:]
	} else if len(rightIdx) == 0 && len(leftIdx) > 0 {
		half := (len(leftIdx) + 1) / 2
		rightIdx, leftIdx = leftIdx[half:], leftIdx[:half]
	}

	rects := make([]geom.Rect, n)
	rects[0] = centerCol.Pad(g)
	placeColumn(rects, leftIdx, leftCol, g)
	placeColumn(rects, rightIdx, rightCol, g)
	return rects
}

func placeColumn(rects []geom.Rect, indices []int, col geom.Rect, gap int) {
	rows := geom.SliceRows(col, len(indices))
	for i, idx := range indices {
		rects[idx] = rows[i].Pad(gap)
	}
}
