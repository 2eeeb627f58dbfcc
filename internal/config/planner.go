// Package config loads planner settings from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/geom"
	"github.com/banshee-data/coverage.planner/internal/gridmap"
)

// DefaultConfigPath is the path to the canonical planner defaults file.
const DefaultConfigPath = "config/planner.defaults.json"

// PlannerConfig is the root planner configuration. The schema matches the
// POST /api/plans body so the same JSON can seed both the CLI and the API.
type PlannerConfig struct {
	// Planning params
	Resolution      *float64 `json:"resolution,omitempty"`
	MarginCells     *int     `json:"margin_cells,omitempty"`
	MovingDirection *string  `json:"moving_direction,omitempty"` // "right" or "left"
	SweepDirection  *string  `json:"sweep_direction,omitempty"`  // "up" or "down"
	MaxSteps        *int     `json:"max_steps,omitempty"`        // 0 = grid cell count
	MaxCells        *int     `json:"max_cells,omitempty"`        // 0 = gridmap.DefaultMaxCells

	// Boundary vertices in world coordinates, [[x, y], ...]
	Boundary [][2]float64 `json:"boundary,omitempty"`

	// Output params
	PlotDir *string `json:"plot_dir,omitempty"`
	DBPath  *string `json:"db_path,omitempty"`
	Listen  *string `json:"listen,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPlannerConfig returns a PlannerConfig with all fields unset.
func EmptyPlannerConfig() *PlannerConfig {
	return &PlannerConfig{}
}

// DefaultPlannerConfig returns a PlannerConfig with every field set to its
// default value.
func DefaultPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		Resolution:      ptrFloat64(1.0),
		MarginCells:     ptrInt(gridmap.DefaultMarginCells),
		MovingDirection: ptrString("right"),
		SweepDirection:  ptrString("up"),
		MaxSteps:        ptrInt(0),
		MaxCells:        ptrInt(gridmap.DefaultMaxCells),
		PlotDir:         ptrString("plots"),
		DBPath:          ptrString("coverage_plans.db"),
		Listen:          ptrString(":8080"),
	}
}

// LoadPlannerConfig loads a PlannerConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file fall back to the Get* defaults.
func LoadPlannerConfig(path string) (*PlannerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParsePlannerConfig(data)
}

// ParsePlannerConfig decodes and validates a JSON document.
func ParsePlannerConfig(data []byte) (*PlannerConfig, error) {
	cfg := EmptyPlannerConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents up to the repo root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PlannerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadPlannerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *PlannerConfig) Validate() error {
	if c.Resolution != nil {
		r := *c.Resolution
		if !(r > 0) || math.IsInf(r, 0) {
			return fmt.Errorf("resolution must be positive, got %v", r)
		}
	}

	if c.MarginCells != nil && *c.MarginCells < 0 {
		return fmt.Errorf("margin_cells must be non-negative, got %d", *c.MarginCells)
	}

	if c.MaxSteps != nil && *c.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", *c.MaxSteps)
	}

	if c.MaxCells != nil && *c.MaxCells < 0 {
		return fmt.Errorf("max_cells must be non-negative, got %d", *c.MaxCells)
	}

	if c.MovingDirection != nil {
		if _, err := coverage.ParseMovingDirection(*c.MovingDirection); err != nil {
			return err
		}
	}

	if c.SweepDirection != nil {
		if _, err := coverage.ParseSweepDirection(*c.SweepDirection); err != nil {
			return err
		}
	}

	if c.Boundary != nil && len(c.Boundary) < 2 {
		return fmt.Errorf("boundary needs at least two vertices, got %d", len(c.Boundary))
	}

	return nil
}

// GetResolution returns the resolution value or the default.
func (c *PlannerConfig) GetResolution() float64 {
	if c.Resolution == nil {
		return 1.0
	}
	return *c.Resolution
}

// GetMarginCells returns the margin_cells value or the default.
func (c *PlannerConfig) GetMarginCells() int {
	if c.MarginCells == nil {
		return gridmap.DefaultMarginCells
	}
	return *c.MarginCells
}

// GetMaxSteps returns the max_steps value or the default.
func (c *PlannerConfig) GetMaxSteps() int {
	if c.MaxSteps == nil {
		return 0 // grid cell count
	}
	return *c.MaxSteps
}

// GetMaxCells returns the max_cells value or the default.
func (c *PlannerConfig) GetMaxCells() int {
	if c.MaxCells == nil || *c.MaxCells == 0 {
		return gridmap.DefaultMaxCells
	}
	return *c.MaxCells
}

// GetMovingDirection returns the parsed moving_direction, or MoveRight when
// unset. An unparseable value is an error, never a default.
func (c *PlannerConfig) GetMovingDirection() (coverage.MovingDirection, error) {
	if c.MovingDirection == nil {
		return coverage.MoveRight, nil
	}
	return coverage.ParseMovingDirection(*c.MovingDirection)
}

// GetSweepDirection returns the parsed sweep_direction, or SweepUp when
// unset. An unparseable value is an error, never a default.
func (c *PlannerConfig) GetSweepDirection() (coverage.SweepDirection, error) {
	if c.SweepDirection == nil {
		return coverage.SweepUp, nil
	}
	return coverage.ParseSweepDirection(*c.SweepDirection)
}

// GetPlotDir returns the plot_dir value or the default.
func (c *PlannerConfig) GetPlotDir() string {
	if c.PlotDir == nil {
		return "plots"
	}
	return *c.PlotDir
}

// GetDBPath returns the db_path value or the default.
func (c *PlannerConfig) GetDBPath() string {
	if c.DBPath == nil {
		return "coverage_plans.db"
	}
	return *c.DBPath
}

// GetListen returns the listen value or the default.
func (c *PlannerConfig) GetListen() string {
	if c.Listen == nil {
		return ":8080"
	}
	return *c.Listen
}

// GetBoundary returns the configured boundary, or nil when none is set.
func (c *PlannerConfig) GetBoundary() geom.Boundary {
	if len(c.Boundary) == 0 {
		return nil
	}
	return geom.Boundary(geom.FromPairs(c.Boundary))
}

// PlanningOptions converts the configuration into coverage.Options.
func (c *PlannerConfig) PlanningOptions() (coverage.Options, error) {
	moving, err := c.GetMovingDirection()
	if err != nil {
		return coverage.Options{}, err
	}
	sweep, err := c.GetSweepDirection()
	if err != nil {
		return coverage.Options{}, err
	}
	return coverage.Options{
		MovingDirection: moving,
		SweepDirection:  sweep,
		MarginCells:     c.GetMarginCells(),
		MaxSteps:        c.GetMaxSteps(),
		MaxCells:        c.GetMaxCells(),
	}, nil
}

// PlanningOnly returns a copy of c without the output settings (plot_dir,
// db_path, listen), which only mean something to the local process.
func (c *PlannerConfig) PlanningOnly() *PlannerConfig {
	out := *c
	out.PlotDir = nil
	out.DBPath = nil
	out.Listen = nil
	return &out
}

// Overlay returns a copy of c with every field that o sets replacing c's.
// A nil o returns a plain copy.
func (c *PlannerConfig) Overlay(o *PlannerConfig) *PlannerConfig {
	out := *c
	if o == nil {
		return &out
	}
	if o.Resolution != nil {
		out.Resolution = o.Resolution
	}
	if o.MarginCells != nil {
		out.MarginCells = o.MarginCells
	}
	if o.MovingDirection != nil {
		out.MovingDirection = o.MovingDirection
	}
	if o.SweepDirection != nil {
		out.SweepDirection = o.SweepDirection
	}
	if o.MaxSteps != nil {
		out.MaxSteps = o.MaxSteps
	}
	if o.MaxCells != nil {
		out.MaxCells = o.MaxCells
	}
	if o.Boundary != nil {
		out.Boundary = o.Boundary
	}
	if o.PlotDir != nil {
		out.PlotDir = o.PlotDir
	}
	if o.DBPath != nil {
		out.DBPath = o.DBPath
	}
	if o.Listen != nil {
		out.Listen = o.Listen
	}
	return &out
}
