package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/geom"
)

// ErrNotFound is wrapped by lookups of a plan ID that does not exist.
var ErrNotFound = errors.New("not found")

// Plan is a persisted planning run: its inputs, the path it produced and how
// the search stopped.
type Plan struct {
	PlanID          string       `json:"plan_id"`
	Name            string       `json:"name,omitempty"`
	Resolution      float64      `json:"resolution"`
	MovingDirection int          `json:"moving_direction"`
	SweepDirection  int          `json:"sweep_direction"`
	MarginCells     int          `json:"margin_cells"`
	Boundary        [][2]float64 `json:"boundary"`
	Path            [][2]float64 `json:"path,omitempty"`
	Waypoints       int          `json:"waypoints"`
	Steps           int          `json:"steps"`
	StopReason      string       `json:"stop_reason"`
	FreeCells       int          `json:"free_cells"`
	VisitedCells    int          `json:"visited_cells"`
	CreatedAt       int64        `json:"created_at"`
}

// NewPlan builds a record from a planning call's inputs and result.
func NewPlan(name string, boundary geom.Boundary, resolution float64, opts coverage.Options, res *coverage.Result) *Plan {
	p := &Plan{
		Name:            name,
		Resolution:      resolution,
		MovingDirection: int(opts.MovingDirection),
		SweepDirection:  int(opts.SweepDirection),
		MarginCells:     opts.MarginCells,
		Boundary:        geom.Pairs(boundary),
		Path:            [][2]float64{},
	}
	if res != nil {
		p.Path = geom.Pairs(res.Path)
		p.Waypoints = len(res.Path)
		p.Steps = res.Steps
		p.StopReason = string(res.Stop)
		if res.Grid != nil {
			p.FreeCells, p.VisitedCells, _ = res.Grid.Counts()
		}
	}
	return p
}

// BoundaryPoints returns the stored boundary as geometry.
func (p *Plan) BoundaryPoints() geom.Boundary { return geom.Boundary(geom.FromPairs(p.Boundary)) }

// PathPoints returns the stored path as geometry.
func (p *Plan) PathPoints() []geom.Point { return geom.FromPairs(p.Path) }

// PlanStore provides persistence for planning runs.
type PlanStore struct {
	db *DB
}

// NewPlanStore creates a new PlanStore.
func NewPlanStore(db *DB) *PlanStore {
	return &PlanStore{db: db}
}

// Insert persists a new plan. If PlanID is empty, a UUID is generated; if
// CreatedAt is zero, it is stamped from the database clock.
func (s *PlanStore) Insert(p *Plan) error {
	if p.PlanID == "" {
		p.PlanID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = s.db.clock.Now().UnixNano()
	}
	if p.Path == nil {
		p.Path = [][2]float64{}
	}
	boundaryJSON, err := json.Marshal(p.Boundary)
	if err != nil {
		return fmt.Errorf("marshal boundary: %w", err)
	}
	pathJSON, err := json.Marshal(p.Path)
	if err != nil {
		return fmt.Errorf("marshal path: %w", err)
	}

	return retryOnBusy(s.db.clock, func() error {
		_, err := s.db.Exec(`
			INSERT INTO coverage_plans (
				plan_id, name, resolution, moving_direction, sweep_direction,
				margin_cells, boundary_json, path_json, waypoints, steps,
				stop_reason, free_cells, visited_cells, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.PlanID, p.Name, p.Resolution, p.MovingDirection, p.SweepDirection,
			p.MarginCells, string(boundaryJSON), string(pathJSON), p.Waypoints, p.Steps,
			p.StopReason, p.FreeCells, p.VisitedCells, p.CreatedAt,
		)
		return err
	})
}

// Get returns a single plan by ID, including its path.
func (s *PlanStore) Get(planID string) (*Plan, error) {
	row := s.db.QueryRow(`
		SELECT plan_id, name, resolution, moving_direction, sweep_direction,
		       margin_cells, boundary_json, path_json, waypoints, steps,
		       stop_reason, free_cells, visited_cells, created_at
		FROM coverage_plans
		WHERE plan_id = ?`, planID)

	p, err := scanPlan(row, true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plan %s %w", planID, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// List returns plans ordered by creation time descending. Paths are omitted;
// use Get for the full record. A limit <= 0 returns every plan.
func (s *PlanStore) List(limit int) ([]*Plan, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT plan_id, name, resolution, moving_direction, sweep_direction,
		       margin_cells, boundary_json, '', waypoints, steps,
		       stop_reason, free_cells, visited_cells, created_at
		FROM coverage_plans
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	plans := []*Plan{}
	for rows.Next() {
		p, err := scanPlan(rows, false)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Delete removes a plan by ID.
func (s *PlanStore) Delete(planID string) error {
	return retryOnBusy(s.db.clock, func() error {
		result, err := s.db.Exec(`DELETE FROM coverage_plans WHERE plan_id = ?`, planID)
		if err != nil {
			return fmt.Errorf("delete plan: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("plan %s %w", planID, ErrNotFound)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlan(row rowScanner, withPath bool) (*Plan, error) {
	var p Plan
	var boundaryJSON, pathJSON string
	err := row.Scan(
		&p.PlanID, &p.Name, &p.Resolution, &p.MovingDirection, &p.SweepDirection,
		&p.MarginCells, &boundaryJSON, &pathJSON, &p.Waypoints, &p.Steps,
		&p.StopReason, &p.FreeCells, &p.VisitedCells, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan plan row: %w", err)
	}
	if err := json.Unmarshal([]byte(boundaryJSON), &p.Boundary); err != nil {
		return nil, fmt.Errorf("decode boundary of plan %s: %w", p.PlanID, err)
	}
	if withPath {
		if err := json.Unmarshal([]byte(pathJSON), &p.Path); err != nil {
			return nil, fmt.Errorf("decode path of plan %s: %w", p.PlanID, err)
		}
	}
	return &p, nil
}
