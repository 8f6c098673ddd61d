package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
)

// SetupPath is where users are sent when no UBS report exists yet.
const SetupPath = "/setup-ubs"

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler also serves routes that need no session.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup)
}

// ResourceHandler owns the resource other pages depend on.
type ResourceHandler interface {
	Handler
	ResourceCheck() middleware.ResourceCheck
}

// Handlers lists the page handlers. A nil entry is skipped.
type Handlers struct {
	Health      Handler
	Auth        PublicHandler
	Overlay     Handler
	Report      ResourceHandler
	Problem     Handler
	Appointment Handler
	Schedule    Handler
	Material    Handler
	Team        Handler
	Support     Handler
	Audit       Handler
}

type Router struct {
	engine   *gin.Engine
	guard    *middleware.Guard
	handlers Handlers
	metrics  *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	Security      middleware.SecurityConfig
	SizeLimit     middleware.SizeLimitConfig
	Timeout       time.Duration
	Errors        middleware.ErrorConfig
	MetricsPrefix string
	// Registerer receives the route metrics. Nil keeps them in a private registry.
	Registerer prometheus.Registerer
	// CSRF is nil when CSRF protection is disabled.
	CSRF *middleware.CSRFConfig
}

func NewRouter(guard *middleware.Guard, handlers Handlers, config RouterConfig) *Router {
	engine := gin.New()

	r := &Router{
		engine:   engine,
		guard:    guard,
		handlers: handlers,
		metrics:  initRouterMetrics(config.MetricsPrefix, config.Registerer),
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = middleware.DefaultTimeoutConfig().Duration
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(config.Errors),
		r.metricsMiddleware(),
		middleware.SecurityHeaders(config.Security),
		middleware.SizeLimit(config.SizeLimit),
		middleware.Cache(middleware.NoStoreConfig()),
	)

	if config.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
		engine.Use(rateLimiter.RateLimit())
	}

	engine.Use(middleware.CORS(config.CORSConfig))
	if config.CSRF != nil {
		engine.Use(middleware.CSRF(*config.CSRF))
	}
	engine.Use(middleware.Timeout(middleware.TimeoutConfig{Duration: timeout}))

	return r
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(api)
	}
	if r.handlers.Auth != nil {
		r.handlers.Auth.RegisterPublicRoutes(api)
	}

	protected := api.Group("", r.guard.RequireSession())
	r.setupProtectedRoutes(protected)
}

func (r *Router) setupProtectedRoutes(rg *gin.RouterGroup) {
	for _, h := range []Handler{
		r.handlers.Auth,
		r.handlers.Overlay,
		r.handlers.Appointment,
		r.handlers.Schedule,
		r.handlers.Material,
		r.handlers.Team,
		r.handlers.Support,
	} {
		if h != nil {
			h.RegisterRoutes(rg)
		}
	}

	if r.handlers.Report != nil {
		r.handlers.Report.RegisterRoutes(rg)
		check := r.handlers.Report.ResourceCheck()
		rg.GET("/guards/resource", r.guard.ResourceState(check))

		if r.handlers.Problem != nil {
			// Problems hang off a report; GESTOR may be sent to create one.
			reportReady := rg.Group("", r.guard.RequireResource(check, SetupPath, model.RoleGestor))
			r.handlers.Problem.RegisterRoutes(reportReady)
		}
	}

	if r.handlers.Audit != nil {
		r.handlers.Audit.RegisterRoutes(rg.Group("", r.guard.RequireRoles(model.RoleGestor)))
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string, reg prometheus.Registerer) *routerMetrics {
	if prefix == "" {
		prefix = "ubs_console"
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &routerMetrics{
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 500 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "server").Inc()
		} else if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "client").Inc()
		}
	}
}
