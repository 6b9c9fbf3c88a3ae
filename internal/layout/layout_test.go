package layout

import (
	"testing"

	"github.com/tesserawm/tessera/internal/geom"
)

var area = geom.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func allVariants() []Layout {
	variants := make([]Layout, 0, len(Names()))
	for _, name := range Names() {
		variants = append(variants, New(name))
	}
	return variants
}

func TestLayoutTotality(t *testing.T) {
	for _, l := range allVariants() {
		for n := 0; n <= 6; n++ {
			rects := l.Arrange(n, area)
			if len(rects) != n {
				t.Fatalf("%s: Arrange(%d) returned %d rects, want %d", l.Name(), n, len(rects), n)
			}
			for i, r := range rects {
				if r.Width < 0 || r.Height < 0 {
					t.Fatalf("%s: Arrange(%d)[%d] has negative size: %+v", l.Name(), n, i, r)
				}
			}
		}
	}
}

func TestMonocleIdentity(t *testing.T) {
	m := New("monocle")
	want := area.Pad(m.Gap())
	for n := 1; n <= 5; n++ {
		for _, r := range m.Arrange(n, area) {
			if r != want {
				t.Fatalf("monocle n=%d: got %+v want %+v", n, r, want)
			}
		}
	}
}

func TestTallNonOverlapAndCoverage(t *testing.T) {
	tall := New("tall").(*Tall)
	tall.gap = 0
	for n := 1; n <= 5; n++ {
		rects := tall.Arrange(n, area)
		assertNonOverlapping(t, rects)
		assertUnionEquals(t, rects, area)
	}
}

func TestWideNonOverlapAndCoverage(t *testing.T) {
	wide := New("wide").(*Wide)
	wide.gap = 0
	for n := 1; n <= 5; n++ {
		rects := wide.Arrange(n, area)
		assertNonOverlapping(t, rects)
		assertUnionEquals(t, rects, area)
	}
}

func TestThreeColumnNonOverlapAndCoverage(t *testing.T) {
	tc := New("threecolumn").(*ThreeColumn)
	tc.gap = 0
	for n := 1; n <= 7; n++ {
		rects := tc.Arrange(n, area)
		assertNonOverlapping(t, rects)
		assertUnionEquals(t, rects, area)
	}
}

func TestSplitHorizontalRoundTrip(t *testing.T) {
	left, right := area.SplitHorizontal(0.55)
	if left.Width+right.Width != area.Width {
		t.Fatalf("widths don't sum: %d + %d != %d", left.Width, right.Width, area.Width)
	}
	if left.Right() != right.X {
		t.Fatalf("spans don't abut: left.Right=%d right.X=%d", left.Right(), right.X)
	}
}

func TestGrowShrinkMasterClamp(t *testing.T) {
	l := New("tall")
	for i := 0; i < 20; i++ {
		l.GrowMaster()
	}
	if l.MasterRatio() > maxMasterRatio {
		t.Fatalf("master ratio exceeded max: %f", l.MasterRatio())
	}
	for i := 0; i < 20; i++ {
		l.ShrinkMaster()
	}
	if l.MasterRatio() < minMasterRatio {
		t.Fatalf("master ratio under min: %f", l.MasterRatio())
	}
}

func TestDecreaseGapNeverNegative(t *testing.T) {
	l := New("tall")
	for i := 0; i < 20; i++ {
		l.DecreaseGap()
	}
	if l.Gap() < 0 {
		t.Fatalf("gap went negative: %d", l.Gap())
	}
}

func TestNewWithParamsAppliesGivenValues(t *testing.T) {
	for _, name := range Names() {
		l := NewWithParams(name, 0.7, 10)
		if l.MasterRatio() != 0.7 {
			t.Fatalf("%s: MasterRatio() = %v, want 0.7", name, l.MasterRatio())
		}
		if l.Gap() != 10 {
			t.Fatalf("%s: Gap() = %d, want 10", name, l.Gap())
		}
	}
}

func TestNewWithParamsClampsMasterRatio(t *testing.T) {
	l := NewWithParams("tall", 0.99, 4)
	if l.MasterRatio() != maxMasterRatio {
		t.Fatalf("MasterRatio() = %v, want clamped to %v", l.MasterRatio(), maxMasterRatio)
	}
	l = NewWithParams("tall", 0.0, 4)
	if l.MasterRatio() != minMasterRatio {
		t.Fatalf("MasterRatio() = %v, want clamped to %v", l.MasterRatio(), minMasterRatio)
	}
}

func TestSetParamsClampsNegativeGap(t *testing.T) {
	l := New("tall")
	l.SetParams(0.5, -5)
	if l.Gap() != 0 {
		t.Fatalf("Gap() = %d, want 0", l.Gap())
	}
}

func TestThreeColumnMasterOccupiesCenter(t *testing.T) {
	tc := New("threecolumn").(*ThreeColumn)
	tc.gap = 0
	rects := tc.Arrange(5, area)
	master := rects[0]
	centerX := area.X + area.Width/2
	if master.X > centerX || master.Right() < centerX {
		t.Fatalf("master rect %+v does not straddle monitor center %d", master, centerX)
	}
}

func assertNonOverlapping(t *testing.T, rects []geom.Rect) {
	t.Helper()
	for i := 0; i < len(rects); i++ {
		for j := i + 1; j < len(rects); j++ {
			if overlaps(rects[i], rects[j]) {
				t.Fatalf("rects overlap: %+v and %+v", rects[i], rects[j])
			}
		}
	}
}

func overlaps(a, b geom.Rect) bool {
	return a.Left() < b.Right() && b.Left() < a.Right() &&
		a.Top() < b.Bottom() && b.Top() < a.Bottom()
}

func assertUnionEquals(t *testing.T, rects []geom.Rect, want geom.Rect) {
	t.Helper()
	if len(rects) == 0 {
		return
	}
	minX, minY := rects[0].Left(), rects[0].Top()
	maxX, maxY := rects[0].Right(), rects[0].Bottom()
	for _, r := range rects[1:] {
		if r.Left() < minX {
			minX = r.Left()
		}
		if r.Top() < minY {
			minY = r.Top()
		}
		if r.Right() > maxX {
			maxX = r.Right()
		}
		if r.Bottom() > maxY {
			maxY = r.Bottom()
		}
	}
	if minX != want.Left() || minY != want.Top() || maxX != want.Right() || maxY != want.Bottom() {
		t.Fatalf("union bounding box = (%d,%d)-(%d,%d), want (%d,%d)-(%d,%d)",
			minX, minY, maxX, maxY, want.Left(), want.Top(), want.Right(), want.Bottom())
	}
}
