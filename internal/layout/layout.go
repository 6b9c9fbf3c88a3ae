// Package layout implements the tiling engine's arrangement algebra: a
// fixed set of layout variants, each a pure function from (N, area) to
// N rectangles, plus the adjustable master_ratio/gap parameters every
// variant shares.
package layout

import "github.com/tesserawm/tessera/internal/geom"

const (
	defaultMasterRatio = 0.55
	minMasterRatio     = 0.1
	maxMasterRatio     = 0.9
	masterRatioStep    = 0.05

	defaultGap = 4
	gapStep    = 2
)

// Layout arranges N windows inside a Rect. Implementations keep
// master_ratio and gap as internal, adjustable state; the set of
// variants is fixed, so this is modeled as a small tagged interface
// rather than open inheritance.
type Layout interface {
	// Name identifies the variant for display and config lookups.
	Name() string

	// Arrange returns exactly n Rects for n >= 0: empty for n=0, a
	// single padded Rect equal to area for n=1, and the variant's
	// master/stack split for n>=2.
	Arrange(n int, area geom.Rect) []geom.Rect

	GrowMaster()
	ShrinkMaster()
	IncreaseGap()
	DecreaseGap()
	SetParams(masterRatio float64, gap int)

	MasterRatio() float64
	Gap() int
}

// params holds the shared mutable state every variant embeds.
type params struct {
	masterRatio float64
	gap         int
}

func newParams() params {
	return params{masterRatio: defaultMasterRatio, gap: defaultGap}
}

func (p *params) GrowMaster() {
	p.masterRatio = clampRatio(p.masterRatio + masterRatioStep)
}

func (p *params) ShrinkMaster() {
	p.masterRatio = clampRatio(p.masterRatio - masterRatioStep)
}

func (p *params) IncreaseGap() {
	p.gap += gapStep
}

func (p *params) DecreaseGap() {
	p.gap -= gapStep
	if p.gap < 0 {
		p.gap = 0
	}
}

func (p *params) MasterRatio() float64 { return p.masterRatio }
func (p *params) Gap() int             { return p.gap }

// SetParams overwrites master_ratio and gap directly, clamping ratio
// to [minMasterRatio, maxMasterRatio] and gap to >= 0. Used to apply
// configured defaults at construction time, as opposed to
// Grow/ShrinkMaster's relative hotkey-driven adjustment.
func (p *params) SetParams(masterRatio float64, gap int) {
	p.masterRatio = clampRatio(masterRatio)
	if gap < 0 {
		gap = 0
	}
	p.gap = gap
}

func clampRatio(r float64) float64 {
	if r < minMasterRatio {
		return minMasterRatio
	}
	if r > maxMasterRatio {
		return maxMasterRatio
	}
	return r
}

// singleWindow is the shared n=0/n=1 case every variant reduces to.
func singleWindow(n int, area geom.Rect, gap int) ([]geom.Rect, bool) {
	switch n {
	case 0:
		return []geom.Rect{}, true
	case 1:
		return []geom.Rect{area.Pad(gap)}, true
	default:
		return nil, false
	}
}

// Names returns the fixed set of built-in layout variant names, in the
// order a next/prev-layout cycle visits them.
func Names() []string {
	return []string{"tall", "wide", "monocle", "threecolumn"}
}

// New constructs the named variant with default master_ratio and gap.
func New(name string) Layout {
	return NewWithParams(name, defaultMasterRatio, defaultGap)
}

// NewWithParams constructs the named variant with an explicit starting
// master_ratio and gap, for configured per-layout defaults.
func NewWithParams(name string, masterRatio float64, gap int) Layout {
	var l Layout
	switch name {
	case "wide":
		l = &Wide{params: newParams()}
	case "monocle":
		l = &Monocle{params: newParams()}
	case "threecolumn":
		l = &ThreeColumn{params: newParams()}
	default:
		l = &Tall{params: newParams()}
	}
	l.SetParams(masterRatio, gap)
	return l
}
