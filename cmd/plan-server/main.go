// Command plan-server serves the coverage planner over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/banshee-data/coverage.planner/internal/api"
	"github.com/banshee-data/coverage.planner/internal/config"
	"github.com/banshee-data/coverage.planner/internal/coverage"
	"github.com/banshee-data/coverage.planner/internal/gridmap"
	"github.com/banshee-data/coverage.planner/internal/store"
	"github.com/banshee-data/coverage.planner/internal/version"
)

var (
	configPath  = flag.String("config", "", "Planner config JSON supplying request defaults")
	listen      = flag.String("listen", "", "Listen address (empty = from config)")
	dbPath      = flag.String("db", "", "Plan database path (empty = from config)")
	assetsHost  = flag.String("assets-host", "", "Base URL for echarts assets in chart pages")
	verbose     = flag.Bool("v", false, "Log planner diagnostics")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// loadConfig layers the optional config file and command-line flags over
// the built-in defaults.
func loadConfig(path, listenAddr, db string) (*config.PlannerConfig, error) {
	cfg := config.DefaultPlannerConfig()
	if path != "" {
		loaded, err := config.LoadPlannerConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.Overlay(loaded)
	}
	over := config.EmptyPlannerConfig()
	if listenAddr != "" {
		over.Listen = &listenAddr
	}
	if db != "" {
		over.DBPath = &db
	}
	return cfg.Overlay(over), nil
}

// newHandler builds the full route set: the plan API plus debug routes over
// the plan database.
func newHandler(db *store.DB, cfg *config.PlannerConfig, assets string) (http.Handler, error) {
	srv := api.NewServer(store.NewPlanStore(db), cfg)
	srv.SetAssetsHost(assets)
	mux := srv.ServeMux()
	if err := db.AttachAdminRoutes(mux); err != nil {
		return nil, err
	}
	return api.LoggingMiddleware(mux), nil
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("plan-server", version.String())
		return
	}
	if *verbose {
		coverage.SetLogWriters(os.Stderr, os.Stderr, nil)
		gridmap.SetLogWriters(os.Stderr, os.Stderr, nil)
		store.SetLogWriter(os.Stderr)
	}

	cfg, err := loadConfig(*configPath, *listen, *dbPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := store.Open(cfg.GetDBPath())
	if err != nil {
		log.Fatalf("Failed to open plan database: %v", err)
	}
	defer db.Close()

	handler, err := newHandler(db, cfg, *assetsHost)
	if err != nil {
		log.Fatalf("failed to build routes: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              cfg.GetListen(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine so it doesn't block
	go func() {
		log.Printf("plan-server %s listening on %s (db=%s)", version.Version, server.Addr, cfg.GetDBPath())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		if err := server.Close(); err != nil {
			log.Printf("HTTP server force close error: %v", err)
		}
	}
	log.Printf("Graceful shutdown complete")
}
