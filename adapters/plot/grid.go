package plot

import (
	"eegtfr/domain/tfr"
)

// mapGrid adapts a tfr.Map to plotter.GridXYZ: columns are time bins,
// rows are frequency bins.
type mapGrid struct {
	m *tfr.Map
}

func (g mapGrid) Dims() (c, r int)   { return len(g.m.Times), len(g.m.Freqs) }
func (g mapGrid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g mapGrid) X(c int) float64    { return g.m.Times[c] }
func (g mapGrid) Y(r int) float64    { return g.m.Freqs[r] }

// maskGrid exposes a boolean mask as a 0/1 surface so a contour at 0.5
// traces the mask boundary.
type maskGrid struct {
	times []float64
	freqs []float64
	mask  [][]bool
}

func (g maskGrid) Dims() (c, r int) { return len(g.times), len(g.freqs) }
func (g maskGrid) X(c int) float64  { return g.times[c] }
func (g maskGrid) Y(r int) float64  { return g.freqs[r] }
func (g maskGrid) Z(c, r int) float64 {
	if g.mask[r][c] {
		return 1
	}
	return 0
}
