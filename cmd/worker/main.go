package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jwalitptl/ubs-console/internal/config"
	"github.com/jwalitptl/ubs-console/internal/repository/postgres"
	"github.com/jwalitptl/ubs-console/internal/service/audit"
	"github.com/jwalitptl/ubs-console/internal/worker"
	"github.com/jwalitptl/ubs-console/pkg/logger"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
)

const healthAddr = ":8081"

func setupHealthCheck(log *logger.Logger, ready func(ctx context.Context) error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(healthAddr, mux); err != nil {
			log.Fatal(err, "Health check server failed")
		}
	}()
}

// The worker enforces audit retention for the console's own database.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level), JSON: cfg.Log.JSON})
	log.SetGlobal()

	if !cfg.Database.Enabled() {
		log.Warn("Audit database not configured, nothing to clean up")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		log.Fatal(err, "Failed to connect to database")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatal(err, "Failed to migrate database")
	}

	m := metrics.NewMetrics(cfg.Monitoring.Namespace, "audit_worker")
	audits := audit.NewService(postgres.NewAuditRepository(postgres.NewBaseRepository(db)), m)
	cleanup := worker.NewAuditCleanupWorker(audits, cfg.Audit.RetentionDays, cfg.Audit.CleanupInterval, log)

	setupHealthCheck(log, db.PingContext)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Shutting down audit worker")
		cancel()
	}()

	log.Info("Audit worker started", "retention_days", cfg.Audit.RetentionDays, "interval", cfg.Audit.CleanupInterval.String())
	cleanup.Start(ctx)
}
