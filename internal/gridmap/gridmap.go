package gridmap

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/coverage.planner/internal/geom"
)

// Cell values understood by the planner.
const (
	FreeValue     = 0.0
	VisitedValue  = 0.5
	OccupiedValue = 1.0
)

// Occupancy thresholds. A cell is occupied when its value is >= threshold.
const (
	// ObstacleThreshold treats only rasterised or dilated cells as occupied.
	ObstacleThreshold = OccupiedValue
	// MotionThreshold additionally blocks cells already visited.
	MotionThreshold = VisitedValue
)

// DefaultMarginCells is the number of cells added to each axis around the
// boundary's bounding box.
const DefaultMarginCells = 10

// DefaultMaxCells caps width×height for Build when the caller passes no
// limit. At 8 bytes a cell this keeps one grid under 32 MiB.
const DefaultMaxCells = 4_000_000

var (
	// ErrInvalidResolution is returned for a non-positive or non-finite resolution.
	ErrInvalidResolution = errors.New("gridmap: resolution must be positive and finite")
	// ErrInvalidSize is returned for non-positive grid dimensions.
	ErrInvalidSize = errors.New("gridmap: width and height must be positive")
	// ErrEmptyPolygon is returned when building from an empty boundary.
	ErrEmptyPolygon = errors.New("gridmap: polygon has no vertices")
	// ErrGridTooLarge is returned when the boundary extent over the
	// resolution needs more cells than allowed.
	ErrGridTooLarge = errors.New("gridmap: grid too large")
)

// GridMap is a row-major occupancy grid. Index (xi, yi) addresses column xi
// of row yi; row 0 is the lowest y.
type GridMap struct {
	width      int
	height     int
	resolution float64
	centerX    float64
	centerY    float64
	leftLowerX float64
	leftLowerY float64
	data       []float64
}

// New creates an all-free grid of width×height cells centred on
// (centerX, centerY).
func New(width, height int, resolution, centerX, centerY float64) (*GridMap, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidSize, width, height)
	}
	if width > math.MaxInt/height {
		return nil, fmt.Errorf("%w: %dx%d overflows", ErrGridTooLarge, width, height)
	}
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidResolution, resolution)
	}
	return &GridMap{
		width:      width,
		height:     height,
		resolution: resolution,
		centerX:    centerX,
		centerY:    centerY,
		leftLowerX: centerX - float64(width)/2.0*resolution,
		leftLowerY: centerY - float64(height)/2.0*resolution,
		data:       make([]float64, width*height),
	}, nil
}

// Build sizes a grid around the polygon's bounding box plus marginCells on
// each axis, fills every cell outside the polygon as occupied and dilates
// the occupied region by one cell. Grids over maxCells cells are refused
// with ErrGridTooLarge; maxCells <= 0 means DefaultMaxCells.
func Build(polygon []geom.Point, resolution float64, marginCells, maxCells int) (*GridMap, error) {
	if len(polygon) == 0 {
		return nil, ErrEmptyPolygon
	}
	if marginCells < 0 {
		marginCells = 0
	}
	if maxCells <= 0 {
		maxCells = DefaultMaxCells
	}
	xs, ys := geom.Split(polygon)
	minX, maxX := floats.Min(xs), floats.Max(xs)
	minY, maxY := floats.Min(ys), floats.Max(ys)

	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidResolution, resolution)
	}

	// Sized in float64 first: the int conversion and product can overflow.
	fw := math.Ceil((maxX-minX)/resolution) + float64(marginCells)
	fh := math.Ceil((maxY-minY)/resolution) + float64(marginCells)
	if !(fw*fh <= float64(maxCells)) {
		return nil, fmt.Errorf("%w: %gx%g cells exceeds limit %d (extent %gx%g at resolution %g)",
			ErrGridTooLarge, fw, fh, maxCells, maxX-minX, maxY-minY, resolution)
	}
	width, height := int(fw), int(fh)

	g, err := New(width, height, resolution, (maxX+minX)/2.0, (maxY+minY)/2.0)
	if err != nil {
		return nil, err
	}
	diagf("grid %dx%d res=%.3f center=(%.3f, %.3f) left_lower=(%.3f, %.3f)",
		g.width, g.height, g.resolution, g.centerX, g.centerY, g.leftLowerX, g.leftLowerY)

	g.SetValueFromPolygon(polygon, OccupiedValue, false)
	g.Dilate()
	return g, nil
}

// Width returns the number of columns.
func (g *GridMap) Width() int { return g.width }

// Height returns the number of rows.
func (g *GridMap) Height() int { return g.height }

// Resolution returns the cell edge length.
func (g *GridMap) Resolution() float64 { return g.resolution }

func (g *GridMap) inBounds(xi, yi int) bool {
	return xi >= 0 && xi < g.width && yi >= 0 && yi < g.height
}

// Value returns the stored value of a cell. ok is false out of bounds.
func (g *GridMap) Value(xi, yi int) (v float64, ok bool) {
	if !g.inBounds(xi, yi) {
		return 0, false
	}
	return g.data[yi*g.width+xi], true
}

// SetValue writes v into a cell unless that would lower its current value.
// It returns false when the index is out of bounds.
func (g *GridMap) SetValue(xi, yi int, v float64) bool {
	if !g.inBounds(xi, yi) {
		return false
	}
	i := yi*g.width + xi
	if v > g.data[i] {
		g.data[i] = v
		tracef("cell (%d, %d) <- %.2f", xi, yi, v)
	}
	return true
}

// SetVisited marks a cell as swept. Occupied cells keep their value.
func (g *GridMap) SetVisited(xi, yi int) bool {
	ok := g.SetValue(xi, yi, VisitedValue)
	if !ok {
		opsf("cannot mark visited: index (%d, %d) outside %dx%d grid", xi, yi, g.width, g.height)
	}
	return ok
}

// IsOccupied reports whether the cell value is >= threshold. Out of bounds
// indices are always occupied.
func (g *GridMap) IsOccupied(xi, yi int, threshold float64) bool {
	v, ok := g.Value(xi, yi)
	return !ok || v >= threshold
}

// CenterOf returns the position of the cell centre in the grid's frame.
func (g *GridMap) CenterOf(xi, yi int) (x, y float64) {
	x = g.leftLowerX + float64(xi)*g.resolution + g.resolution/2.0
	y = g.leftLowerY + float64(yi)*g.resolution + g.resolution/2.0
	return x, y
}

// SetValueFromPolygon writes val into every cell whose centre is inside the
// polygon (inside=true) or outside it (inside=false). The polygon is treated
// as a closed ring.
func (g *GridMap) SetValueFromPolygon(polygon []geom.Point, val float64, inside bool) {
	ring := make(orb.Ring, 0, len(polygon)+1)
	for _, p := range polygon {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}

	written := 0
	for yi := 0; yi < g.height; yi++ {
		for xi := 0; xi < g.width; xi++ {
			x, y := g.CenterOf(xi, yi)
			if planar.RingContains(ring, orb.Point{x, y}) == inside {
				g.SetValue(xi, yi, val)
				written++
			}
		}
	}
	diagf("polygon fill inside=%t val=%.2f cells=%d/%d", inside, val, written, len(g.data))
}

// Dilate grows every occupied cell into its four edge neighbours.
func (g *GridMap) Dilate() {
	var occupied [][2]int
	for yi := 0; yi < g.height; yi++ {
		for xi := 0; xi < g.width; xi++ {
			if g.IsOccupied(xi, yi, ObstacleThreshold) {
				occupied = append(occupied, [2]int{xi, yi})
			}
		}
	}
	for _, c := range occupied {
		g.SetValue(c[0]+1, c[1], OccupiedValue)
		g.SetValue(c[0]-1, c[1], OccupiedValue)
		g.SetValue(c[0], c[1]+1, OccupiedValue)
		g.SetValue(c[0], c[1]-1, OccupiedValue)
	}
}

// CountBelow returns the number of cells whose value is below threshold.
func (g *GridMap) CountBelow(threshold float64) int {
	n := 0
	for _, v := range g.data {
		if v < threshold {
			n++
		}
	}
	return n
}
