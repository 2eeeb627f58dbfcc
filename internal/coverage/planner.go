package coverage

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/coverage.planner/internal/geom"
	"github.com/banshee-data/coverage.planner/internal/gridmap"
)

var (
	// ErrTooFewVertices is returned for a boundary with fewer than two vertices.
	ErrTooFewVertices = errors.New("coverage: boundary needs at least two vertices")
	// ErrInvalidResolution is returned for a resolution that is not a positive finite number.
	ErrInvalidResolution = errors.New("coverage: resolution must be positive and finite")
	// ErrInvalidDirection marks a moving or sweep direction outside its two legal values.
	ErrInvalidDirection = errors.New("coverage: invalid direction")
)

// Options tunes a planning call. The zero value is not valid; start from
// DefaultOptions.
type Options struct {
	MovingDirection MovingDirection
	SweepDirection  SweepDirection
	MarginCells     int // cells added around the boundary's bounding box
	MaxSteps        int // move budget; <= 0 means the grid's cell count
	MaxCells        int // grid size cap; <= 0 means gridmap.DefaultMaxCells
}

// DefaultOptions returns right/up sweeping with the default grid margin.
func DefaultOptions() Options {
	return Options{
		MovingDirection: MoveRight,
		SweepDirection:  SweepUp,
		MarginCells:     gridmap.DefaultMarginCells,
		MaxCells:        gridmap.DefaultMaxCells,
	}
}

// Result is everything a planning call produced.
type Result struct {
	Path      []geom.Point      // waypoints in the world frame
	LocalPath []geom.Point      // the same waypoints in the sweep frame
	Cells     []Cell            // grid indices of the waypoints
	Frame     geom.SweepFrame   // sweep vector and start position
	Grid      *gridmap.Snapshot // grid after the search, in the sweep frame
	GoalY     int
	GoalXInds []int
	Steps     int
	Stop      StopReason
}

// Plan returns the world-frame coverage path for boundary at the given grid
// resolution. The result may be empty.
func Plan(boundary geom.Boundary, resolution float64, moving MovingDirection, sweep SweepDirection) ([]geom.Point, error) {
	opts := DefaultOptions()
	opts.MovingDirection = moving
	opts.SweepDirection = sweep
	res, err := Planning(boundary, resolution, opts)
	if err != nil {
		return nil, err
	}
	return res.Path, nil
}

// Planning runs the full pipeline: pick the sweep frame from the longest
// boundary edge, move the boundary into that frame, build and dilate the
// grid, locate the goal row, sweep, and move the path back to the world
// frame.
func Planning(boundary geom.Boundary, resolution float64, opts Options) (*Result, error) {
	if len(boundary) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewVertices, len(boundary))
	}
	if !(resolution > 0) || math.IsInf(resolution, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidResolution, resolution)
	}
	if !opts.MovingDirection.Valid() {
		return nil, fmt.Errorf("%w: moving direction %d", ErrInvalidDirection, int(opts.MovingDirection))
	}
	if !opts.SweepDirection.Valid() {
		return nil, fmt.Errorf("%w: sweep direction %d", ErrInvalidDirection, int(opts.SweepDirection))
	}

	frame := geom.FindSweepDirectionAndStartPosition(boundary)
	local := frame.ToLocal(boundary)

	g, goalXInds, goalY, err := setupGridMap(local, resolution, opts.SweepDirection, opts.MarginCells, opts.MaxCells)
	if err != nil {
		return nil, err
	}

	s, err := NewSearcher(opts.MovingDirection, opts.SweepDirection, goalXInds, goalY)
	if err != nil {
		return nil, err
	}

	sr, err := SweepPathSearch(s, g, opts.MaxSteps)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Path:      frame.ToWorld(sr.Path),
		LocalPath: sr.Path,
		Cells:     sr.Cells,
		Frame:     frame,
		Grid:      g.Snapshot(),
		GoalY:     goalY,
		GoalXInds: goalXInds,
		Steps:     sr.Steps,
		Stop:      sr.Stop,
	}
	diagf("path length: %d (stop=%s)", len(res.Path), res.Stop)
	return res, nil
}

// setupGridMap builds the grid over the local-frame boundary and returns the
// goal row: the free row at the far edge in the sweep direction.
func setupGridMap(local []geom.Point, resolution float64, sweep SweepDirection, marginCells, maxCells int) (*gridmap.GridMap, []int, int, error) {
	g, err := gridmap.Build(local, resolution, marginCells, maxCells)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("build grid map: %w", err)
	}

	var (
		goalXInds []int
		goalY     int
	)
	switch sweep {
	case SweepUp:
		goalXInds, goalY, _ = SearchFreeGridIndexAtEdgeY(g, true)
	case SweepDown:
		goalXInds, goalY, _ = SearchFreeGridIndexAtEdgeY(g, false)
	}
	diagf("grid %dx%d free=%d goal_y=%d goal_cells=%d",
		g.Width(), g.Height(), g.CountBelow(gridmap.VisitedValue), goalY, len(goalXInds))
	return g, goalXInds, goalY, nil
}
