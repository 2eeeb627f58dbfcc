// Command planner computes a boustrophedon coverage path over a polygon.
//
// The boundary comes from -ox/-oy, from a config file, or from the built-in
// demo set (-demo). Plans can be rendered (-plot-dir), stored (-db) or sent to
// a running plan-server (-submit).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/banshee-data/coverage.planner/internal/api"
	"github.com/banshee-data/coverage.planner/internal/config"
	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/fsutil"
	"github.com/banshee-data/coverage.planner/internal/geom"
	"github.com/banshee-data/coverage.planner/internal/gridmap"
	"github.com/banshee-data/coverage.planner/internal/render"
	"github.com/banshee-data/coverage.planner/internal/store"
	"github.com/banshee-data/coverage.planner/internal/version"
)

var (
	configPath  = flag.String("config", "", "Planner config JSON file (built-in defaults when empty)")
	oxList      = flag.String("ox", "", "Comma-separated boundary x coordinates")
	oyList      = flag.String("oy", "", "Comma-separated boundary y coordinates")
	resolution  = flag.Float64("resolution", 0, "Grid resolution in metres (0 = from config)")
	moving      = flag.String("moving", "", "Moving direction: right or left (empty = from config)")
	sweep       = flag.String("sweep", "", "Sweep direction: up or down (empty = from config)")
	demo        = flag.Bool("demo", false, "Plan the three built-in demo boundaries")
	plotDir     = flag.String("plot-dir", "", "Write PNG and HTML renderings into this directory")
	dbPath      = flag.String("db", "", "Store plans in this SQLite database")
	submitURL   = flag.String("submit", "", "Send plans to a plan-server at this base URL instead of planning locally")
	printPath   = flag.Bool("print", false, "Print every waypoint as x,y")
	verbose     = flag.Bool("v", false, "Log planner diagnostics to stderr")
	trace       = flag.Bool("trace", false, "Log every search step to stderr (implies -v)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// job is one boundary to plan.
type job struct {
	name       string
	boundary   geom.Boundary
	resolution float64
}

// demoJobs returns the three demo boundaries with their resolutions.
func demoJobs() []job {
	return []job{
		{
			name: "demo_skewed",
			boundary: geom.NewBoundary(
				[]float64{0.0, 20.0, 50.0, 100.0, 130.0, 40.0, 0.0},
				[]float64{0.0, -20.0, 0.0, 30.0, 60.0, 80.0, 0.0},
			),
			resolution: 5.0,
		},
		{
			name: "demo_rectangle",
			boundary: geom.NewBoundary(
				[]float64{0.0, 50.0, 50.0, 0.0, 0.0},
				[]float64{0.0, 0.0, 30.0, 30.0, 0.0},
			),
			resolution: 1.3,
		},
		{
			name: "demo_long",
			boundary: geom.NewBoundary(
				[]float64{0.0, 20.0, 50.0, 200.0, 130.0, 40.0, 0.0},
				[]float64{0.0, -80.0, 0.0, 30.0, 60.0, 80.0, 0.0},
			),
			resolution: 5.0,
		},
	}
}

// parseCSVFloatSlice parses a comma-separated list of floats
func parseCSVFloatSlice(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// flagOverrides turns the command-line planning flags into a config layer.
// Unset flags leave the matching field nil.
func flagOverrides(ox, oy string, res float64, movingDir, sweepDir string) (*config.PlannerConfig, error) {
	over := config.EmptyPlannerConfig()

	xs, err := parseCSVFloatSlice(ox)
	if err != nil {
		return nil, fmt.Errorf("-ox: %w", err)
	}
	ys, err := parseCSVFloatSlice(oy)
	if err != nil {
		return nil, fmt.Errorf("-oy: %w", err)
	}
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("-ox has %d values but -oy has %d", len(xs), len(ys))
	}
	if len(xs) > 0 {
		over.Boundary = geom.Pairs(geom.NewBoundary(xs, ys))
	}
	if res != 0 {
		over.Resolution = &res
	}
	if movingDir != "" {
		over.MovingDirection = &movingDir
	}
	if sweepDir != "" {
		over.SweepDirection = &sweepDir
	}
	if err := over.Validate(); err != nil {
		return nil, err
	}
	return over, nil
}

// runner plans jobs locally and hands results to the optional outputs.
type runner struct {
	out       io.Writer
	opts      coverage.Options
	render    *render.Writer
	plans     *store.PlanStore
	printPath bool
}

func (r *runner) run(j job) (*coverage.Result, error) {
	res, err := coverage.Planning(j.boundary, j.resolution, r.opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", j.name, err)
	}
	fmt.Fprintf(r.out, "%s: %d waypoints, %d steps, stop=%s\n", j.name, len(res.Path), res.Steps, res.Stop)
	if r.printPath {
		for _, p := range res.Path {
			fmt.Fprintf(r.out, "%.3f,%.3f\n", p.X, p.Y)
		}
	}

	if r.render != nil {
		files, err := r.render.SaveAll(j.name, j.boundary, res)
		if err != nil {
			return res, fmt.Errorf("%s: render: %w", j.name, err)
		}
		for _, f := range files {
			fmt.Fprintf(r.out, "  wrote %s\n", f)
		}
	}
	if r.plans != nil {
		plan := store.NewPlan(j.name, j.boundary, j.resolution, r.opts, res)
		if err := r.plans.Insert(plan); err != nil {
			return res, fmt.Errorf("%s: store: %w", j.name, err)
		}
		fmt.Fprintf(r.out, "  stored plan %s\n", plan.PlanID)
	}
	return res, nil
}

// submit sends each job to a plan-server instead of planning locally.
func submit(ctx context.Context, out io.Writer, c *api.Client, cfg *config.PlannerConfig, jobs []job) error {
	for _, j := range jobs {
		req := &api.PlanRequest{Name: j.name, PlannerConfig: *cfg.PlanningOnly()}
		req.Boundary = geom.Pairs(j.boundary)
		res := j.resolution
		req.Resolution = &res

		plan, err := c.Submit(ctx, req)
		if err != nil {
			return fmt.Errorf("%s: %w", j.name, err)
		}
		fmt.Fprintf(out, "%s: plan %s, %d waypoints, %d steps, stop=%s\n",
			j.name, plan.PlanID, plan.Waypoints, plan.Steps, plan.StopReason)
	}
	return nil
}

func setupLogging() {
	if !*verbose && !*trace {
		return
	}
	var traceW io.Writer
	if *trace {
		traceW = os.Stderr
	}
	coverage.SetLogWriters(os.Stderr, os.Stderr, traceW)
	gridmap.SetLogWriters(os.Stderr, os.Stderr, traceW)
	render.SetLogWriter(os.Stderr)
	store.SetLogWriter(os.Stderr)
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("planner", version.String())
		return
	}
	setupLogging()

	cfg := config.DefaultPlannerConfig()
	if *configPath != "" {
		loaded, err := config.LoadPlannerConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = cfg.Overlay(loaded)
	}
	over, err := flagOverrides(*oxList, *oyList, *resolution, *moving, *sweep)
	if err != nil {
		log.Fatalf("invalid flags: %v", err)
	}
	cfg = cfg.Overlay(over)

	var jobs []job
	if *demo {
		jobs = demoJobs()
	} else {
		boundary := cfg.GetBoundary()
		if len(boundary) == 0 {
			log.Fatal("no boundary: use -ox/-oy, a config file with \"boundary\", or -demo")
		}
		jobs = []job{{name: "plan", boundary: boundary, resolution: cfg.GetResolution()}}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *submitURL != "" {
		c := api.NewClient(*submitURL, &http.Client{Timeout: 30 * time.Second})
		if err := submit(ctx, os.Stdout, c, cfg, jobs); err != nil {
			log.Fatalf("submit failed: %v", err)
		}
		return
	}

	opts, err := cfg.PlanningOptions()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	r := &runner{out: os.Stdout, opts: opts, printPath: *printPath}
	if *plotDir != "" {
		r.render = render.NewWriter(fsutil.OSFileSystem{}, *plotDir)
	}
	if *dbPath != "" {
		db, err := store.Open(*dbPath)
		if err != nil {
			log.Fatalf("failed to open plan database: %v", err)
		}
		defer db.Close()
		r.plans = store.NewPlanStore(db)
	}

	for _, j := range jobs {
		if ctx.Err() != nil {
			log.Printf("interrupted")
			return
		}
		if _, err := r.run(j); err != nil {
			log.Fatalf("planning failed: %v", err)
		}
	}
}
