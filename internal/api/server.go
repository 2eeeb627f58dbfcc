// Package api serves coverage planning over HTTP: plans are computed on
// POST, stored in SQLite and read back as JSON or as an interactive chart.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/coverage.planner/internal/config"
	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/gridmap"
	"github.com/banshee-data/coverage.planner/internal/httputil"
	"github.com/banshee-data/coverage.planner/internal/render"
	"github.com/banshee-data/coverage.planner/internal/store"
	"github.com/banshee-data/coverage.planner/internal/timeutil"
)

// ANSI escape codes for request logging
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// maxRequestBytes caps a POST /api/plans body.
const maxRequestBytes = 1 << 20

// PlanRequest is the POST /api/plans body: the planner config schema plus
// an optional name. Fields left out fall back to the server's defaults.
type PlanRequest struct {
	Name string `json:"name,omitempty"`
	config.PlannerConfig
}

// Server handles the plan API.
type Server struct {
	plans      *store.PlanStore
	defaults   *config.PlannerConfig
	clock      timeutil.Clock
	assetsHost string
}

// NewServer returns a Server storing plans in plans. defaults supplies any
// planning parameter a request leaves unset; nil means the built-in defaults.
func NewServer(plans *store.PlanStore, defaults *config.PlannerConfig) *Server {
	if defaults == nil {
		defaults = config.DefaultPlannerConfig()
	}
	return &Server{
		plans:    plans,
		defaults: defaults,
		clock:    timeutil.RealClock{},
	}
}

// SetClock replaces the clock used to time planning calls.
func (s *Server) SetClock(c timeutil.Clock) { s.clock = c }

// SetAssetsHost overrides where chart pages load echarts from.
func (s *Server) SetAssetsHost(host string) { s.assetsHost = host }

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the API routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/plans", s.handlePlans)
	mux.HandleFunc("/api/plans/", s.handlePlanByID)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}

// handlePlans handles GET/POST /api/plans
func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listPlans(w, r)
	case http.MethodPost:
		s.createPlan(w, r)
	default:
		httputil.MethodNotAllowed(w)
	}
}

// handlePlanByID handles GET/DELETE /api/plans/:id and GET /api/plans/:id/chart
func (s *Server) handlePlanByID(w http.ResponseWriter, r *http.Request) {
	pathParts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/plans/"), "/")
	id := pathParts[0]
	if id == "" {
		httputil.BadRequest(w, "missing plan id")
		return
	}

	if len(pathParts) == 2 && pathParts[1] == "chart" {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		s.showChart(w, id)
		return
	}
	if len(pathParts) > 1 {
		httputil.NotFound(w, "unknown plan resource")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getPlan(w, id)
	case http.MethodDelete:
		s.deletePlan(w, id)
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if len(req.Boundary) == 0 {
		httputil.BadRequest(w, "boundary is required")
		return
	}

	cfg := s.defaults.Overlay(&req.PlannerConfig)
	boundary := cfg.GetBoundary()
	resolution := cfg.GetResolution()
	opts, err := cfg.PlanningOptions()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	// A request may lower the server's grid cap but never raise it.
	if limit := s.defaults.GetMaxCells(); opts.MaxCells > limit {
		opts.MaxCells = limit
	}

	start := s.clock.Now()
	res, err := coverage.Planning(boundary, resolution, opts)
	if err != nil {
		if errors.Is(err, coverage.ErrTooFewVertices) ||
			errors.Is(err, coverage.ErrInvalidResolution) ||
			errors.Is(err, coverage.ErrInvalidDirection) ||
			errors.Is(err, gridmap.ErrGridTooLarge) {
			httputil.BadRequest(w, err.Error())
			return
		}
		log.Printf("planning failed: %v", err)
		httputil.InternalServerError(w, "planning failed")
		return
	}
	log.Printf("planned %q: %d waypoints, stop=%s in %v", req.Name, len(res.Path), res.Stop, s.clock.Since(start))

	plan := store.NewPlan(req.Name, boundary, resolution, opts, res)
	if err := s.plans.Insert(plan); err != nil {
		log.Printf("Error storing plan: %v", err)
		httputil.InternalServerError(w, "failed to store plan")
		return
	}
	httputil.Created(w, plan)
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httputil.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	plans, err := s.plans.List(limit)
	if err != nil {
		log.Printf("Error listing plans: %v", err)
		httputil.InternalServerError(w, "failed to list plans")
		return
	}
	httputil.WriteJSONOK(w, plans)
}

func (s *Server) getPlan(w http.ResponseWriter, id string) {
	plan, ok := s.lookup(w, id)
	if !ok {
		return
	}
	httputil.WriteJSONOK(w, plan)
}

func (s *Server) deletePlan(w http.ResponseWriter, id string) {
	if err := s.plans.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, err.Error())
			return
		}
		log.Printf("Error deleting plan %s: %v", id, err)
		httputil.InternalServerError(w, "failed to delete plan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) showChart(w http.ResponseWriter, id string) {
	plan, ok := s.lookup(w, id)
	if !ok {
		return
	}
	res := &coverage.Result{
		Path:  plan.PathPoints(),
		Steps: plan.Steps,
		Stop:  coverage.StopReason(plan.StopReason),
	}
	title := plan.Name
	if title == "" {
		title = "plan " + plan.PlanID
	}
	var buf bytes.Buffer
	if err := render.WriteChart(&buf, title, plan.BoundaryPoints(), res, s.assetsHost); err != nil {
		log.Printf("Error rendering chart for plan %s: %v", id, err)
		httputil.InternalServerError(w, "failed to render chart")
		return
	}
	httputil.WriteHTML(w, buf.Bytes())
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.defaults)
}

// lookup fetches a plan, writing the error response itself when it fails.
func (s *Server) lookup(w http.ResponseWriter, id string) (*store.Plan, bool) {
	plan, err := s.plans.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httputil.NotFound(w, err.Error())
			return nil, false
		}
		log.Printf("Error fetching plan %s: %v", id, err)
		httputil.InternalServerError(w, "failed to fetch plan")
		return nil, false
	}
	return plan, true
}
