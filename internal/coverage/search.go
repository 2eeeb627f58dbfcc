package coverage

import (
	"github.com/banshee-data/coverage.planner/internal/geom"
)

// StopReason records why a sweep search ended.
type StopReason string

const (
	// StopGoalReached: every goal-row cell is visited or occupied.
	StopGoalReached StopReason = "goal_reached"
	// StopEnclosed: no forward, turning or backward cell was free.
	StopEnclosed StopReason = "enclosed"
	// StopNoStart: the grid has no free cell to start from, or the start
	// cell could not be marked.
	StopNoStart StopReason = "no_start"
	// StopStepLimit: the move budget ran out.
	StopStepLimit StopReason = "step_limit"
)

// SearchResult is the outcome of SweepPathSearch.
type SearchResult struct {
	Path  []geom.Point // cell centres in the grid frame, in visiting order
	Cells []Cell       // grid indices matching Path
	Steps int          // number of MoveTargetGrid calls
	Stop  StopReason
}

// SweepPathSearch walks the searcher over g from its start cell, marking
// every cell it enters as visited, until the goal row is complete, the robot
// is enclosed, or maxSteps moves have been made. maxSteps <= 0 uses the
// grid's cell count.
//
// The only error is ErrInvalidDirection from an improperly built searcher.
func SweepPathSearch(s *Searcher, g Grid, maxSteps int) (*SearchResult, error) {
	res := &SearchResult{Path: []geom.Point{}, Cells: []Cell{}}

	cur, ok, err := s.SearchStartGrid(g)
	if err != nil {
		return nil, err
	}
	if !ok || !g.SetVisited(cur.X, cur.Y) {
		opsf("cannot find start grid")
		res.Stop = StopNoStart
		return res, nil
	}
	res.append(cur, g)

	limit := maxSteps
	if limit <= 0 {
		limit = g.Width() * g.Height()
	}

	for {
		if res.Steps >= limit {
			opsf("step limit %d reached at (%d, %d)", limit, cur.X, cur.Y)
			res.Stop = StopStepLimit
			break
		}
		next, moved := s.MoveTargetGrid(cur, g)
		res.Steps++

		if s.IsSearchDone(g) {
			res.Stop = StopGoalReached
			break
		}
		if !moved {
			res.Stop = StopEnclosed
			break
		}

		res.append(next, g)
		g.SetVisited(next.X, next.Y)
		cur = next
	}

	diagf("search done: reason=%s steps=%d waypoints=%d", res.Stop, res.Steps, len(res.Path))
	return res, nil
}

func (r *SearchResult) append(c Cell, g Grid) {
	x, y := g.CenterOf(c.X, c.Y)
	r.Path = append(r.Path, geom.Point{X: x, Y: y})
	r.Cells = append(r.Cells, c)
}
