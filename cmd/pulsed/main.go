// Command pulsed is the Pulsecheck service daemon. It serves the REST
// API, exposes Prometheus metrics, and runs the scheduled recompute
// loop that keeps every project's resilience score fresh.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/pulsecheck/pulsecheck/internal/api"
	"github.com/pulsecheck/pulsecheck/internal/collect"
	"github.com/pulsecheck/pulsecheck/internal/history"
	"github.com/pulsecheck/pulsecheck/internal/platform"
	"github.com/pulsecheck/pulsecheck/internal/project"
	"github.com/pulsecheck/pulsecheck/internal/recalibrate"
	"github.com/pulsecheck/pulsecheck/internal/recompute"
	"github.com/pulsecheck/pulsecheck/pkg/config"
	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadSettings()
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	policyCfg, err := config.Load(cfg.PolicyPath)
	if err != nil {
		log.Fatalf("load policy: %v", err)
	}
	engine := scoring.NewEngine(policyCfg.Policy())

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	archive, err := newArchive(ctx, cfg)
	if err != nil {
		log.Fatalf("init archive: %v", err)
	}

	snapshots := history.NewStore(db)
	projects := project.NewService(db, snapshots)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	orch := recompute.New(recompute.Orchestrator{
		Store:       projects,
		Locker:      recompute.NewPGLocker(db),
		Code:        collect.NewCodeHosting(cfg.CodeAPIURL, cfg.CodeAPIToken),
		Deps:        collect.NewDepRegistry(cfg.RegistryURL),
		Governance:  collect.NewChainReader(cfg.ChainAPIURL),
		Economic:    collect.NewTVLFeed(cfg.TVLAPIURL),
		Engine:      engine,
		Cadences:    policyCfg.Cadences,
		Archive:     archive,
		Metrics:     recompute.NewMetrics(reg),
		BatchSize:   cfg.RecomputeBatch,
		Concurrency: cfg.RecomputeWorkers,
	})

	recalSvc := recalibrate.NewService(projects, engine)

	mux := http.NewServeMux()
	api.NewHandler(projects, snapshots, recalSvc, orch, db).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	handler := api.CORS(api.APIKeyAuth(cfg.APIKey)(mux))

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.RecomputeSchedule, func() {
		if err := orch.RunCycle(ctx); err != nil {
			log.Printf("recompute cycle: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule recompute (%q): %v", cfg.RecomputeSchedule, err)
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	go func() {
		log.Printf("starting pulsed on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func newArchive(ctx context.Context, cfg *settings) (history.ArchiveClient, error) {
	switch cfg.ArchiveBackend {
	case "", "local":
		return history.NewLocalArchive(cfg.ArchiveDir), nil
	case "s3":
		return history.NewS3Archive(ctx, history.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "gcs":
		return history.NewGCSArchive(ctx, cfg.GCSBucket)
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}
