package coverage

import (
	"strings"

	"github.com/banshee-data/coverage.planner/internal/gridmap"
)

// stubGrid is an ASCII occupancy grid. Rows are given top first; '#' is an
// obstacle, 'v' a visited cell, anything else free. Cell centres are the
// integer indices themselves.
type stubGrid struct {
	w, h   int
	values []float64
	marks  int
}

func newStubGrid(rows ...string) *stubGrid {
	g := &stubGrid{w: len(rows[0]), h: len(rows)}
	g.values = make([]float64, g.w*g.h)
	for i, row := range rows {
		yi := g.h - 1 - i
		for xi, ch := range row {
			switch ch {
			case '#':
				g.values[yi*g.w+xi] = gridmap.OccupiedValue
			case 'v':
				g.values[yi*g.w+xi] = gridmap.VisitedValue
			}
		}
	}
	return g
}

func (g *stubGrid) Width() int  { return g.w }
func (g *stubGrid) Height() int { return g.h }

func (g *stubGrid) IsOccupied(xi, yi int, threshold float64) bool {
	if xi < 0 || xi >= g.w || yi < 0 || yi >= g.h {
		return true
	}
	return g.values[yi*g.w+xi] >= threshold
}

func (g *stubGrid) SetVisited(xi, yi int) bool {
	if xi < 0 || xi >= g.w || yi < 0 || yi >= g.h {
		return false
	}
	g.marks++
	if g.values[yi*g.w+xi] < gridmap.VisitedValue {
		g.values[yi*g.w+xi] = gridmap.VisitedValue
	}
	return true
}

func (g *stubGrid) CenterOf(xi, yi int) (float64, float64) {
	return float64(xi), float64(yi)
}

// String renders the grid in the same notation it was built from.
func (g *stubGrid) String() string {
	var b strings.Builder
	for yi := g.h - 1; yi >= 0; yi-- {
		for xi := 0; xi < g.w; xi++ {
			switch v := g.values[yi*g.w+xi]; {
			case v >= gridmap.OccupiedValue:
				b.WriteByte('#')
			case v >= gridmap.VisitedValue:
				b.WriteByte('v')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// mustSearcher builds a searcher whose goal row is taken from g the same way
// the planner does.
func mustSearcher(g Grid, moving MovingDirection, sweep SweepDirection) *Searcher {
	xs, y, _ := SearchFreeGridIndexAtEdgeY(g, sweep == SweepUp)
	s, err := NewSearcher(moving, sweep, xs, y)
	if err != nil {
		panic(err)
	}
	return s
}
