package render

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/geom"
	"github.com/banshee-data/coverage.planner/internal/gridmap"
)

// ErrNoGrid is returned when a result carries no grid snapshot.
var ErrNoGrid = errors.New("render: result has no grid snapshot")

var (
	boundaryColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	pathColor     = color.RGBA{R: 220, G: 30, B: 30, A: 255}
	lastPosColor  = color.RGBA{R: 30, G: 60, B: 220, A: 255}
)

// heatColors is the number of palette steps used for grid heat maps.
const heatColors = 16

// toXYs converts points to plotter coordinates.
func toXYs(pts []geom.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X = p.X
		xys[i].Y = p.Y
	}
	return xys
}

// closedRing returns the boundary with its first vertex repeated at the end
// when it is not already closed, so the outline draws fully.
func closedRing(b geom.Boundary) []geom.Point {
	if len(b) == 0 || b.IsClosed() {
		return b
	}
	ring := make([]geom.Point, 0, len(b)+1)
	ring = append(ring, b...)
	return append(ring, b[0])
}

// addPath draws the path as a line and marks its last position.
func addPath(p *plot.Plot, path []geom.Point) error {
	if len(path) == 0 {
		return nil
	}
	line, err := plotter.NewLine(toXYs(path))
	if err != nil {
		return fmt.Errorf("path line: %w", err)
	}
	line.Color = pathColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("path", line)

	last, err := plotter.NewScatter(toXYs(path[len(path)-1:]))
	if err != nil {
		return fmt.Errorf("last position: %w", err)
	}
	last.GlyphStyle.Shape = draw.CrossGlyph{}
	last.GlyphStyle.Color = lastPosColor
	last.GlyphStyle.Radius = vg.Points(5)
	p.Add(last)
	p.Legend.Add("last position", last)
	return nil
}

// PathPlot draws the world-frame path over its boundary.
func PathPlot(title string, boundary geom.Boundary, res *coverage.Result) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	if len(boundary) > 0 {
		outline, err := plotter.NewLine(toXYs(closedRing(boundary)))
		if err != nil {
			return nil, fmt.Errorf("boundary line: %w", err)
		}
		outline.Color = boundaryColor
		outline.Width = vg.Points(1.5)
		p.Add(outline)
		p.Legend.Add("boundary", outline)
	}
	if res != nil {
		if err := addPath(p, res.Path); err != nil {
			return nil, err
		}
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// GridPlot draws the sweep-frame grid as a heat map with the local path on
// top. Free cells are cold, visited cells warm and obstacles hot.
func GridPlot(title string, res *coverage.Result) (*plot.Plot, error) {
	if res == nil || res.Grid == nil {
		return nil, ErrNoGrid
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "sweep x (m)"
	p.Y.Label.Text = "sweep y (m)"

	hm := plotter.NewHeatMap(res.Grid, palette.Heat(heatColors, 1))
	// Fixed range so that a uniform grid still maps to a colour.
	hm.Min = gridmap.FreeValue
	hm.Max = gridmap.OccupiedValue
	p.Add(hm)

	if err := addPath(p, res.LocalPath); err != nil {
		return nil, err
	}
	p.Legend.Top = true
	p.Legend.Left = false
	return p, nil
}
