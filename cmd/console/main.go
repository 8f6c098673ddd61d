package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/ubs-console/internal/config"
	"github.com/jwalitptl/ubs-console/internal/email"
	"github.com/jwalitptl/ubs-console/internal/handler"
	appointmentHandler "github.com/jwalitptl/ubs-console/internal/handler/appointment"
	auditHandler "github.com/jwalitptl/ubs-console/internal/handler/audit"
	authHandler "github.com/jwalitptl/ubs-console/internal/handler/auth"
	"github.com/jwalitptl/ubs-console/internal/handler/health"
	materialHandler "github.com/jwalitptl/ubs-console/internal/handler/material"
	"github.com/jwalitptl/ubs-console/internal/handler/overlay"
	problemHandler "github.com/jwalitptl/ubs-console/internal/handler/problem"
	reportHandler "github.com/jwalitptl/ubs-console/internal/handler/report"
	scheduleHandler "github.com/jwalitptl/ubs-console/internal/handler/schedule"
	supportHandler "github.com/jwalitptl/ubs-console/internal/handler/support"
	teamHandler "github.com/jwalitptl/ubs-console/internal/handler/team"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/internal/repository/postgres"
	"github.com/jwalitptl/ubs-console/internal/repository/remote"
	"github.com/jwalitptl/ubs-console/internal/router"
	appointmentService "github.com/jwalitptl/ubs-console/internal/service/appointment"
	auditService "github.com/jwalitptl/ubs-console/internal/service/audit"
	authService "github.com/jwalitptl/ubs-console/internal/service/auth"
	materialService "github.com/jwalitptl/ubs-console/internal/service/material"
	problemService "github.com/jwalitptl/ubs-console/internal/service/problem"
	reportService "github.com/jwalitptl/ubs-console/internal/service/report"
	scheduleService "github.com/jwalitptl/ubs-console/internal/service/schedule"
	supportService "github.com/jwalitptl/ubs-console/internal/service/support"
	teamService "github.com/jwalitptl/ubs-console/internal/service/team"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	"github.com/jwalitptl/ubs-console/pkg/circuitbreaker"
	"github.com/jwalitptl/ubs-console/pkg/logger"
	"github.com/jwalitptl/ubs-console/pkg/messaging/redis"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
	"github.com/jwalitptl/ubs-console/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(cfg.Log.Level), JSON: cfg.Log.JSON})
	log.SetGlobal()
	gin.SetMode(cfg.Server.Mode)

	if err := middleware.RegisterValidation(); err != nil {
		log.Fatal(err, "Failed to register validators")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.Default(cfg.Monitoring.Namespace)
	checks := map[string]health.Pinger{}

	// Sessions live in Redis when it is configured so replicas share them
	// and hear each other's invalidations.
	var (
		store session.Store
		bus   session.Bus
		rdb   *goredis.Client
	)
	if cfg.Redis.URL != "" {
		rdb, err = redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal(err, "Failed to connect to Redis")
		}
		redisStore := session.NewRedisStore(rdb, m)
		store = redisStore
		bus = session.NewBus(redis.NewRedisBroker(rdb, log.Zerolog()))
		checks["redis"] = redisStore
	} else {
		log.Warn("Redis not configured, sessions are kept in memory")
		store = session.NewMemoryStore(time.Minute)
		bus = session.NewLocalBus()
	}

	sessions := session.NewManager(store, bus,
		session.WithMetrics(m),
		session.WithLogger(log),
		session.WithFallbackTTL(cfg.Session.FallbackTTL),
	)
	if err := sessions.Start(ctx); err != nil {
		log.Fatal(err, "Failed to subscribe to session invalidations")
	}

	cookies, err := session.NewCookies(session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secret: cfg.Session.Secret,
		Secure: cfg.Session.Secure,
		Domain: cfg.Session.Domain,
		MaxAge: int(cfg.Session.FallbackTTL.Seconds()),
	})
	if err != nil {
		log.Fatal(err, "Failed to set up session cookies")
	}

	center := notify.NewCenter(m)
	sessions.OnInvalidate(func(ev session.Invalidated) {
		center.Release(ev.SessionID)
	})

	api, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Breaker: circuitbreaker.Settings{
			Name:                "ubs-api",
			MaxRequests:         1,
			Interval:            cfg.API.BreakerInterval,
			Timeout:             cfg.API.BreakerOpenFor,
			ConsecutiveFailures: cfg.API.BreakerFailures,
		},
	}, apiclient.WithMetrics(m), apiclient.WithLogger(log))
	if err != nil {
		log.Fatal(err, "Failed to create UBS API client")
	}
	repos := remote.New(api)

	// The audit trail is optional and needs its own database.
	var (
		db        *sqlx.DB
		auditRepo repository.AuditRepository
	)
	if cfg.Database.Enabled() {
		db, err = postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			log.Fatal(err, "Failed to connect to audit database")
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatal(err, "Failed to migrate audit database")
		}
		auditRepo = postgres.NewAuditRepository(postgres.NewBaseRepository(db))
		checks["database"] = health.PingFunc(db.PingContext)
	} else {
		log.Warn("Audit database not configured, audit trail disabled")
	}
	audits := auditService.NewService(auditRepo, m)
	auditLog := auditService.NewAuditLogger(audits)

	mailer := email.NewService(email.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		From:      cfg.SMTP.From,
		SupportTo: cfg.SMTP.SupportTo,
	})

	// Services
	editors := reportService.NewRegistry(repos.Report, sessions, center, cfg.Autosave.Delay, m, log)
	reports := reportService.NewService(repos.Report, editors, cfg.Uploads.MaxFileBytes)
	support := supportService.NewService(repos.Support, mailer, log)

	guard := middleware.NewGuard(sessions, cookies, cfg.API.GuardCacheTTL)
	base := handler.BaseHandler{Sessions: sessions, Center: center, Audit: auditLog}

	var gatherer prometheus.Gatherer
	if cfg.Monitoring.PrometheusEnabled {
		gatherer = prometheus.DefaultGatherer
	}

	handlers := router.Handlers{
		Health: health.NewHandler(checks, gatherer),
		Auth: authHandler.NewHandler(base, authService.NewService(repos.Auth, sessions), cookies, guard,
			middleware.NewLoginRateLimiter(cfg.RateLimit.LoginPerMinute)),
		Overlay:     overlay.NewHandler(base),
		Report:      reportHandler.NewHandler(base, reports, guard, cfg.Uploads.MaxFileBytes),
		Problem:     problemHandler.NewHandler(base, problemService.NewService(repos.Problem, m, log)),
		Appointment: appointmentHandler.NewHandler(base, appointmentService.NewService(repos.Appointment), guard),
		Schedule:    scheduleHandler.NewHandler(base, scheduleService.NewService(repos.Schedule), guard),
		Material:    materialHandler.NewHandler(base, materialService.NewService(repos.Material, cfg.Uploads.MaxFileBytes), guard),
		Team:        teamHandler.NewHandler(base, teamService.NewService(repos.Team), guard),
		Support:     supportHandler.NewHandler(base, support, guard),
		Audit:       auditHandler.NewHandler(audits),
	}

	routerConfig := router.RouterConfig{
		CORSConfig: middleware.DefaultCORSConfig(cfg.Security.TrustedOrigins),
		Security:   middleware.DefaultSecurityConfig(),
		SizeLimit:  middleware.DefaultSizeLimitConfig(),
		Timeout:    cfg.API.Timeout + 5*time.Second,
		Errors: middleware.ErrorConfig{
			Sessions: sessions,
			Cookies:  cookies,
			Center:   center,
		},
		MetricsPrefix: cfg.Monitoring.Namespace + "_http",
		Registerer:    prometheus.DefaultRegisterer,
	}
	routerConfig.Security.HSTS = cfg.Security.HSTS
	routerConfig.SizeLimit.MaxUploadSize = cfg.Uploads.MaxFileBytes + 1<<20
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}
	if cfg.Security.CSRFEnabled {
		key, err := security.DeriveKey([]byte(cfg.Session.Secret), "ubs-console csrf", 32)
		if err != nil {
			log.Fatal(err, "Failed to derive CSRF key")
		}
		routerConfig.CSRF = &middleware.CSRFConfig{
			Key:            key,
			Secure:         cfg.Session.Secure,
			TrustedOrigins: cfg.Security.TrustedOrigins,
		}
	}

	r := router.NewRouter(guard, handlers, routerConfig)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("Console listening", "port", cfg.Server.Port, "api", cfg.API.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down console")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	// Ends every session scope and the invalidation subscription.
	cancel()
	support.Wait()
	auditLog.Wait()
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error(err, "Failed to close Redis client")
		}
	}
	log.Info("Console exited")
}
