package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/geom"
	"github.com/banshee-data/coverage.planner/internal/gridmap"
)

func mustMoving(t *testing.T, c *PlannerConfig) coverage.MovingDirection {
	t.Helper()
	d, err := c.GetMovingDirection()
	if err != nil {
		t.Fatalf("GetMovingDirection: %v", err)
	}
	return d
}

func mustSweep(t *testing.T, c *PlannerConfig) coverage.SweepDirection {
	t.Helper()
	d, err := c.GetSweepDirection()
	if err != nil {
		t.Fatalf("GetSweepDirection: %v", err)
	}
	return d
}

func TestDefaultPlannerConfig(t *testing.T) {
	cfg := DefaultPlannerConfig()

	if cfg.Resolution == nil || *cfg.Resolution != 1.0 {
		t.Errorf("Expected Resolution 1.0, got %v", cfg.Resolution)
	}
	if cfg.MarginCells == nil || *cfg.MarginCells != 10 {
		t.Errorf("Expected MarginCells 10, got %v", cfg.MarginCells)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	opts, err := cfg.PlanningOptions()
	if err != nil {
		t.Fatalf("PlanningOptions: %v", err)
	}
	if opts != coverage.DefaultOptions() {
		t.Errorf("PlanningOptions() = %+v, want %+v", opts, coverage.DefaultOptions())
	}
}

func TestEmptyConfigGetters(t *testing.T) {
	cfg := EmptyPlannerConfig()

	if cfg.GetResolution() != 1.0 {
		t.Errorf("GetResolution() = %f, want 1.0", cfg.GetResolution())
	}
	if cfg.GetMarginCells() != 10 {
		t.Errorf("GetMarginCells() = %d, want 10", cfg.GetMarginCells())
	}
	if cfg.GetMaxSteps() != 0 {
		t.Errorf("GetMaxSteps() = %d, want 0", cfg.GetMaxSteps())
	}
	if got := mustMoving(t, cfg); got != coverage.MoveRight {
		t.Errorf("GetMovingDirection() = %v, want right", got)
	}
	if got := mustSweep(t, cfg); got != coverage.SweepUp {
		t.Errorf("GetSweepDirection() = %v, want up", got)
	}
	if cfg.GetPlotDir() != "plots" {
		t.Errorf("GetPlotDir() = %q, want plots", cfg.GetPlotDir())
	}
	if cfg.GetDBPath() != "coverage_plans.db" {
		t.Errorf("GetDBPath() = %q", cfg.GetDBPath())
	}
	if cfg.GetListen() != ":8080" {
		t.Errorf("GetListen() = %q", cfg.GetListen())
	}
	if cfg.GetBoundary() != nil {
		t.Errorf("GetBoundary() = %v, want nil", cfg.GetBoundary())
	}
}

func TestLoadPlannerConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "planner.json")

	testJSON := `{
  "resolution": 0.5,
  "moving_direction": "left",
  "sweep_direction": "down",
  "boundary": [[0, 0], [4, 0], [4, 3]]
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadPlannerConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetResolution() != 0.5 {
		t.Errorf("GetResolution() = %f, want 0.5", cfg.GetResolution())
	}
	if got := mustMoving(t, cfg); got != coverage.MoveLeft {
		t.Errorf("GetMovingDirection() = %v, want left", got)
	}
	if got := mustSweep(t, cfg); got != coverage.SweepDown {
		t.Errorf("GetSweepDirection() = %v, want down", got)
	}
	// Omitted fields keep their defaults.
	if cfg.GetMarginCells() != 10 {
		t.Errorf("GetMarginCells() = %d, want 10", cfg.GetMarginCells())
	}

	want := geom.Boundary{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 3}}
	got := cfg.GetBoundary()
	if len(got) != len(want) {
		t.Fatalf("GetBoundary() len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetBoundary()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLoadPlannerConfigErrors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"wrong extension", "planner.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"resolution": }`, "failed to parse config JSON"},
		{"zero resolution", "zero.json", `{"resolution": 0}`, "resolution must be positive"},
		{"negative margin", "margin.json", `{"margin_cells": -1}`, "margin_cells must be non-negative"},
		{"negative steps", "steps.json", `{"max_steps": -3}`, "max_steps must be non-negative"},
		{"bad moving direction", "moving.json", `{"moving_direction": "up"}`, "invalid direction"},
		{"bad sweep direction", "sweep.json", `{"sweep_direction": "left"}`, "invalid direction"},
		{"short boundary", "short.json", `{"boundary": [[1, 2]]}`, "at least two vertices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := LoadPlannerConfig(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}

	if _, err := LoadPlannerConfig(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadPlannerConfigTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.json")
	big := `{"plot_dir": "` + strings.Repeat("x", 1024*1024) + `"}`
	if err := os.WriteFile(path, []byte(big), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := LoadPlannerConfig(path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetResolution() != 1.0 {
		t.Errorf("GetResolution() = %f, want 1.0", cfg.GetResolution())
	}
	if len(cfg.GetBoundary()) != 5 {
		t.Errorf("default boundary has %d vertices, want 5", len(cfg.GetBoundary()))
	}
	if cfg.GetListen() != ":8080" {
		t.Errorf("GetListen() = %q", cfg.GetListen())
	}
}

func TestOverlay(t *testing.T) {
	base := DefaultPlannerConfig()
	override, err := ParsePlannerConfig([]byte(`{"resolution": 2.5, "sweep_direction": "down", "boundary": [[0,0],[1,0],[1,1]]}`))
	if err != nil {
		t.Fatalf("ParsePlannerConfig: %v", err)
	}

	got := base.Overlay(override)
	if got.GetResolution() != 2.5 {
		t.Errorf("resolution = %v, want 2.5", got.GetResolution())
	}
	if d := mustSweep(t, got); d != coverage.SweepDown {
		t.Errorf("sweep = %v, want down", d)
	}
	if d := mustMoving(t, got); d != coverage.MoveRight {
		t.Errorf("moving = %v, want right from base", d)
	}
	if len(got.GetBoundary()) != 3 {
		t.Errorf("boundary len = %d, want 3", len(got.GetBoundary()))
	}
	if base.GetResolution() != 1.0 || base.Boundary != nil {
		t.Error("Overlay modified its receiver")
	}

	cp := base.Overlay(nil)
	if cp == base || cp.GetResolution() != base.GetResolution() {
		t.Error("Overlay(nil) should return a distinct copy")
	}
}

func TestInvalidDirectionIsNeverDefaulted(t *testing.T) {
	bad := "sideways"
	cfg := &PlannerConfig{MovingDirection: &bad}
	if _, err := cfg.GetMovingDirection(); !errors.Is(err, coverage.ErrInvalidDirection) {
		t.Errorf("GetMovingDirection() err = %v, want ErrInvalidDirection", err)
	}
	if _, err := cfg.PlanningOptions(); !errors.Is(err, coverage.ErrInvalidDirection) {
		t.Errorf("PlanningOptions() err = %v, want ErrInvalidDirection", err)
	}

	cfg = &PlannerConfig{SweepDirection: &bad}
	if _, err := cfg.GetSweepDirection(); !errors.Is(err, coverage.ErrInvalidDirection) {
		t.Errorf("GetSweepDirection() err = %v, want ErrInvalidDirection", err)
	}
	if _, err := cfg.PlanningOptions(); !errors.Is(err, coverage.ErrInvalidDirection) {
		t.Errorf("PlanningOptions() err = %v, want ErrInvalidDirection", err)
	}
}

func TestMaxCells(t *testing.T) {
	if got := EmptyPlannerConfig().GetMaxCells(); got != gridmap.DefaultMaxCells {
		t.Errorf("GetMaxCells() unset = %d, want %d", got, gridmap.DefaultMaxCells)
	}
	zero := 0
	if got := (&PlannerConfig{MaxCells: &zero}).GetMaxCells(); got != gridmap.DefaultMaxCells {
		t.Errorf("GetMaxCells() zero = %d, want default", got)
	}

	cfg, err := ParsePlannerConfig([]byte(`{"max_cells": 500}`))
	if err != nil {
		t.Fatalf("ParsePlannerConfig: %v", err)
	}
	opts, err := DefaultPlannerConfig().Overlay(cfg).PlanningOptions()
	if err != nil {
		t.Fatalf("PlanningOptions: %v", err)
	}
	if opts.MaxCells != 500 {
		t.Errorf("MaxCells = %d, want 500", opts.MaxCells)
	}

	neg := -1
	if err := (&PlannerConfig{MaxCells: &neg}).Validate(); err == nil {
		t.Error("negative max_cells should fail validation")
	}
}

func TestPlanningOnlyDropsOutputSettings(t *testing.T) {
	cfg := DefaultPlannerConfig()
	got := cfg.PlanningOnly()
	if got.PlotDir != nil || got.DBPath != nil || got.Listen != nil {
		t.Errorf("PlanningOnly kept output settings: %+v", got)
	}
	if got.GetResolution() != cfg.GetResolution() || got.GetMaxCells() != cfg.GetMaxCells() {
		t.Error("PlanningOnly dropped planning settings")
	}
	if cfg.PlotDir == nil {
		t.Error("PlanningOnly modified its receiver")
	}
}
