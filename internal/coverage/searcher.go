package coverage

import (
	"fmt"
	"slices"
	"strings"

	"github.com/banshee-data/coverage.planner/internal/gridmap"
)

// MovingDirection is the direction of travel along a row.
type MovingDirection int

const (
	MoveRight MovingDirection = 1
	MoveLeft  MovingDirection = -1
)

// Valid reports whether d is MoveRight or MoveLeft.
func (d MovingDirection) Valid() bool { return d == MoveRight || d == MoveLeft }

func (d MovingDirection) String() string {
	switch d {
	case MoveRight:
		return "right"
	case MoveLeft:
		return "left"
	}
	return fmt.Sprintf("MovingDirection(%d)", int(d))
}

// ParseMovingDirection accepts "right" or "left" in any case.
func ParseMovingDirection(s string) (MovingDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right":
		return MoveRight, nil
	case "left":
		return MoveLeft, nil
	}
	return 0, fmt.Errorf("%w: moving direction %q", ErrInvalidDirection, s)
}

// SweepDirection is the direction in which successive rows are taken.
type SweepDirection int

const (
	SweepUp   SweepDirection = 1
	SweepDown SweepDirection = -1
)

// Valid reports whether d is SweepUp or SweepDown.
func (d SweepDirection) Valid() bool { return d == SweepUp || d == SweepDown }

func (d SweepDirection) String() string {
	switch d {
	case SweepUp:
		return "up"
	case SweepDown:
		return "down"
	}
	return fmt.Sprintf("SweepDirection(%d)", int(d))
}

// ParseSweepDirection accepts "up" or "down" in any case.
func ParseSweepDirection(s string) (SweepDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return SweepUp, nil
	case "down":
		return SweepDown, nil
	}
	return 0, fmt.Errorf("%w: sweep direction %q", ErrInvalidDirection, s)
}

// Cell is a grid index, or a relative offset between two grid indices.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is the occupancy grid the searcher moves over. *gridmap.GridMap
// implements it.
type Grid interface {
	Width() int
	Height() int
	IsOccupied(xi, yi int, threshold float64) bool
	SetVisited(xi, yi int) bool
	CenterOf(xi, yi int) (x, y float64)
}

var _ Grid = (*gridmap.GridMap)(nil)

// Searcher decides the next cell of a sweep. It carries the moving and
// sweep directions, the turning window derived from them, and the goal row
// whose cells must all be non-free before the search is done.
type Searcher struct {
	moving        MovingDirection
	sweep         SweepDirection
	turningWindow [4]Cell
	goalXInds     []int
	goalY         int
}

// NewSearcher returns a Searcher for the given directions and goal row.
func NewSearcher(moving MovingDirection, sweep SweepDirection, goalXInds []int, goalY int) (*Searcher, error) {
	if !moving.Valid() {
		return nil, fmt.Errorf("%w: moving direction %d", ErrInvalidDirection, int(moving))
	}
	if !sweep.Valid() {
		return nil, fmt.Errorf("%w: sweep direction %d", ErrInvalidDirection, int(sweep))
	}
	s := &Searcher{
		moving:    moving,
		sweep:     sweep,
		goalXInds: append([]int(nil), goalXInds...),
		goalY:     goalY,
	}
	s.updateTurningWindow()
	return s, nil
}

// MovingDirection returns the current row direction.
func (s *Searcher) MovingDirection() MovingDirection { return s.moving }

// SweepDirection returns the row-advance direction.
func (s *Searcher) SweepDirection() SweepDirection { return s.sweep }

// TurningWindow returns the candidate offsets tried, in order, when forward
// motion is blocked.
func (s *Searcher) TurningWindow() [4]Cell { return s.turningWindow }

// GoalRow returns the goal row index and its column indices.
func (s *Searcher) GoalRow() (y int, xInds []int) {
	return s.goalY, append([]int(nil), s.goalXInds...)
}

func (s *Searcher) updateTurningWindow() {
	m, d := int(s.moving), int(s.sweep)
	s.turningWindow = [4]Cell{
		{X: m, Y: 0},
		{X: m, Y: d},
		{X: 0, Y: d},
		{X: -m, Y: d},
	}
}

func (s *Searcher) swapMovingDirection() {
	s.moving = -s.moving
	s.updateTurningWindow()
}

// MoveTargetGrid returns the next cell from c. ok is false when the robot is
// enclosed: forward, every turning candidate and the backward cell are all
// blocked.
//
// After a successful turn the searcher keeps going in the current direction
// until the next cell is blocked, then reverses. Only that final cell is
// returned; cells passed over stay free and are swept on the way back.
func (s *Searcher) MoveTargetGrid(c Cell, g Grid) (next Cell, ok bool) {
	m := int(s.moving)

	next = Cell{X: c.X + m, Y: c.Y}
	if !g.IsOccupied(next.X, next.Y, gridmap.MotionThreshold) {
		tracef("forward (%d, %d) -> (%d, %d)", c.X, c.Y, next.X, next.Y)
		return next, true
	}

	turn, found := s.findSafeTurningGrid(c, g)
	if !found {
		back := Cell{X: c.X - m, Y: c.Y}
		if g.IsOccupied(back.X, back.Y, gridmap.ObstacleThreshold) {
			tracef("enclosed at (%d, %d)", c.X, c.Y)
			return Cell{}, false
		}
		tracef("backward (%d, %d) -> (%d, %d)", c.X, c.Y, back.X, back.Y)
		return back, true
	}

	for !g.IsOccupied(turn.X+m, turn.Y, gridmap.MotionThreshold) {
		turn.X += m
	}
	s.swapMovingDirection()
	tracef("turn (%d, %d) -> (%d, %d), now moving %s", c.X, c.Y, turn.X, turn.Y, s.moving)
	return turn, true
}

func (s *Searcher) findSafeTurningGrid(c Cell, g Grid) (Cell, bool) {
	for _, d := range s.turningWindow {
		n := Cell{X: c.X + d.X, Y: c.Y + d.Y}
		if !g.IsOccupied(n.X, n.Y, gridmap.MotionThreshold) {
			return n, true
		}
	}
	return Cell{}, false
}

// IsSearchDone reports whether every goal-row cell is visited or occupied.
func (s *Searcher) IsSearchDone(g Grid) bool {
	for _, x := range s.goalXInds {
		if !g.IsOccupied(x, s.goalY, gridmap.MotionThreshold) {
			return false
		}
	}
	return true
}

// SearchStartGrid picks the start cell: on the first row with a free cell,
// scanning from the edge opposite the sweep direction, the leftmost free
// cell when moving right or the rightmost when moving left. ok is false when
// the grid has no free cell. An invalid direction is a programming error and
// is returned as ErrInvalidDirection.
func (s *Searcher) SearchStartGrid(g Grid) (start Cell, ok bool, err error) {
	var (
		xInds []int
		y     int
	)
	switch s.sweep {
	case SweepDown:
		xInds, y, ok = SearchFreeGridIndexAtEdgeY(g, true)
	case SweepUp:
		xInds, y, ok = SearchFreeGridIndexAtEdgeY(g, false)
	default:
		return Cell{}, false, fmt.Errorf("%w: sweep direction %d", ErrInvalidDirection, int(s.sweep))
	}

	switch s.moving {
	case MoveRight:
		if !ok {
			return Cell{}, false, nil
		}
		return Cell{X: slices.Min(xInds), Y: y}, true, nil
	case MoveLeft:
		if !ok {
			return Cell{}, false, nil
		}
		return Cell{X: slices.Max(xInds), Y: y}, true, nil
	}
	return Cell{}, false, fmt.Errorf("%w: moving direction %d", ErrInvalidDirection, int(s.moving))
}

// SearchFreeGridIndexAtEdgeY finds the first row, from the top when
// fromUpper is set and from the bottom otherwise, holding at least one cell
// that is not an obstacle, and returns that row's free column indices.
func SearchFreeGridIndexAtEdgeY(g Grid, fromUpper bool) (xInds []int, y int, ok bool) {
	h, w := g.Height(), g.Width()
	for i := 0; i < h; i++ {
		iy := i
		if fromUpper {
			iy = h - 1 - i
		}
		for j := 0; j < w; j++ {
			ix := j
			if fromUpper {
				ix = w - 1 - j
			}
			if !g.IsOccupied(ix, iy, gridmap.ObstacleThreshold) {
				xInds = append(xInds, ix)
			}
		}
		if len(xInds) > 0 {
			return xInds, iy, true
		}
	}
	return nil, 0, false
}
