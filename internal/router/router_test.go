package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audith "github.com/jwalitptl/ubs-console/internal/handler/audit"
	"github.com/jwalitptl/ubs-console/internal/handler/handlertest"
	"github.com/jwalitptl/ubs-console/internal/handler/health"
	"github.com/jwalitptl/ubs-console/internal/handler/overlay"
	problemh "github.com/jwalitptl/ubs-console/internal/handler/problem"
	reporth "github.com/jwalitptl/ubs-console/internal/handler/report"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/service/audit"
	"github.com/jwalitptl/ubs-console/internal/service/problem"
	"github.com/jwalitptl/ubs-console/internal/service/report"
)

func setup(t *testing.T) (*handlertest.Fixture, *Router, *prometheus.Registry) {
	f := handlertest.New(t)
	reg := prometheus.NewRegistry()
	base := f.Base()

	registry := report.NewRegistry(f.Repos.Report, f.Sessions, f.Center, 20*time.Millisecond, nil, nil)
	r := NewRouter(f.Guard, Handlers{
		Health:  health.NewHandler(nil, reg),
		Overlay: overlay.NewHandler(base),
		Report:  reporth.NewHandler(base, report.NewService(f.Repos.Report, registry, 0), f.Guard, 0),
		Problem: problemh.NewHandler(base, problem.NewService(f.Repos.Problem, nil, nil)),
		Audit:   audith.NewHandler(audit.NewService(nil, nil)),
	}, RouterConfig{
		CORSConfig:    middleware.DefaultCORSConfig([]string{"http://localhost:5173"}),
		Security:      middleware.DefaultSecurityConfig(),
		SizeLimit:     middleware.DefaultSizeLimitConfig(),
		Timeout:       5 * time.Second,
		Errors:        middleware.ErrorConfig{Sessions: f.Sessions, Cookies: f.Cookies, Center: f.Center},
		MetricsPrefix: "test",
		Registerer:    reg,
	})
	r.Setup()
	return f, r, reg
}

func serve(r *Router, method, path string, f *handlertest.Fixture, role model.Role) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Accept", "application/json")
	if role != "" {
		_, cookies := f.Login(role)
		for _, c := range cookies {
			req.AddCookie(c)
		}
	}
	rec := httptest.NewRecorder()
	r.Engine().ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	f, r, _ := setup(t)

	rec := serve(r, http.MethodGet, "/api/v1/health/live", f, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0", rec.Header().Get("X-API-Version"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderXRequestID))
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	f, r, _ := setup(t)

	rec := serve(r, http.MethodGet, "/api/v1/overlay", f, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), middleware.LoginPath)

	rec = serve(r, http.MethodGet, "/api/v1/overlay", f, model.RoleUser)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuditNeedsGestor(t *testing.T) {
	f, r, _ := setup(t)

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/audit/logs", f, model.RoleRecepcao).Code)
	// the audit trail is disabled without a database
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodGet, "/api/v1/audit/logs", f, model.RoleGestor).Code)
}

func TestProblemsNeedAReport(t *testing.T) {
	f, r, _ := setup(t)
	f.API.HandleFunc("GET /ubs", handlertest.JSON(http.StatusOK, model.Page[model.Report]{Items: []model.Report{}, Page: 1, PageSize: 1}))

	rec := serve(r, http.MethodGet, "/api/v1/ubs/9/problems", f, model.RoleGestor)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), SetupPath)

	rec = serve(r, http.MethodGet, "/api/v1/guards/resource?name="+reporth.ResourceName, f, model.RoleGestor)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), middleware.ResourceMissing)
}

func TestRouteMetricsAreRecorded(t *testing.T) {
	f, r, reg := setup(t)
	serve(r, http.MethodGet, "/api/v1/health/live", f, "")
	serve(r, http.MethodGet, "/nowhere", f, "")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	joined := strings.Join(names, ",")
	assert.Contains(t, joined, "test_requests_total")
	assert.Contains(t, joined, "test_errors_total")
}
