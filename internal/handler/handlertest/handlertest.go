// Package handlertest runs console handlers against a fake UBS API.
package handlertest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/repository/remote"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

// Call is one request the fake API received.
type Call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   []byte
}

// Fixture wires a gin engine the way the console does, with the API client
// pointed at an httptest server whose routes the test registers on API.
type Fixture struct {
	t *testing.T

	API      *http.ServeMux
	Server   *httptest.Server
	Client   *apiclient.Client
	Repos    *remote.Repositories
	Sessions *session.Manager
	Cookies  *session.Cookies
	Guard    *middleware.Guard
	Center   *notify.Center

	Engine    *gin.Engine
	Public    *gin.RouterGroup
	Protected *gin.RouterGroup

	mu    sync.Mutex
	calls []Call
}

func New(t *testing.T) *Fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &Fixture{t: t, API: http.NewServeMux()}
	f.Server = httptest.NewServer(http.HandlerFunc(f.record))
	t.Cleanup(f.Server.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: f.Server.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	f.Client = client
	f.Repos = remote.New(client)

	f.Sessions = session.NewManager(session.NewMemoryStore(time.Minute), session.NewLocalBus())
	f.Cookies, err = session.NewCookies(session.CookieConfig{Secret: strings.Repeat("s", 32)})
	require.NoError(t, err)
	f.Guard = middleware.NewGuard(f.Sessions, f.Cookies, time.Minute)
	f.Center = notify.NewCenter(nil)
	f.Sessions.OnInvalidate(func(ev session.Invalidated) {
		f.Center.Release(ev.SessionID)
	})

	f.Engine = gin.New()
	f.Engine.Use(middleware.ErrorHandler(middleware.ErrorConfig{
		Sessions: f.Sessions,
		Cookies:  f.Cookies,
		Center:   f.Center,
	}))
	f.Public = f.Engine.Group("/api/v1")
	f.Protected = f.Engine.Group("/api/v1", f.Guard.RequireSession())
	return f
}

func (f *Fixture) record(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	f.mu.Unlock()
	f.API.ServeHTTP(w, r)
}

// Calls returns the requests the fake API has seen so far.
func (f *Fixture) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Called reports whether the fake API saw method and path.
func (f *Fixture) Called(method, path string) bool {
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			return true
		}
	}
	return false
}

// Base is the BaseHandler a domain handler embeds.
func (f *Fixture) Base() handler.BaseHandler {
	return handler.BaseHandler{Sessions: f.Sessions, Center: f.Center}
}

// Login opens a session for a user with role and returns it with its cookies.
func (f *Fixture) Login(role model.Role) (*session.Session, []*http.Cookie) {
	f.t.Helper()
	sess, err := f.Sessions.Create(context.Background(), "token-"+string(role), model.User{ID: 7, Nome: "Maria", Email: "maria@ubs.local", Role: role})
	require.NoError(f.t, err)

	rec := httptest.NewRecorder()
	require.NoError(f.t, f.Cookies.SetSessionID(rec, httptest.NewRequest(http.MethodGet, "/", nil), sess.ID))
	return sess, rec.Result().Cookies()
}

// Do sends a JSON request to the console.
func (f *Fixture) Do(method, path string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	f.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return f.Send(req, cookies)
}

// Send serves a prepared request.
func (f *Fixture) Send(req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req.Header.Set("Accept", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.Engine.ServeHTTP(rec, req)
	return rec
}

// Decode unmarshals a console response.
func (f *Fixture) Decode(rec *httptest.ResponseRecorder) map[string]interface{} {
	f.t.Helper()
	var out map[string]interface{}
	require.NoError(f.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// DialogID extracts the dialog id of a 202 answer.
func (f *Fixture) DialogID(rec *httptest.ResponseRecorder) string {
	f.t.Helper()
	require.Equal(f.t, http.StatusAccepted, rec.Code, rec.Body.String())
	data, ok := f.Decode(rec)["data"].(map[string]interface{})
	require.True(f.t, ok)
	dialog, ok := data["dialog"].(map[string]interface{})
	require.True(f.t, ok)
	id, _ := dialog["id"].(string)
	require.NotEmpty(f.t, id)
	return id
}

// Answer resolves a dialog as the user would.
func (f *Fixture) Answer(sess *session.Session, dialogID string, a notify.Answer) {
	f.t.Helper()
	require.NoError(f.t, f.Center.Resolve(sess.ID, dialogID, a))
}

// WaitFor polls until the fake API has seen method and path.
func (f *Fixture) WaitFor(method, path string) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if f.Called(method, path) {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitToast polls until the session has a toast of type t.
func (f *Fixture) WaitToast(sess *session.Session, t notify.ToastType) (notify.Toast, bool) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, toast := range f.Center.Toasts(sess.ID) {
			if toast.Type == t {
				return toast, true
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return notify.Toast{}, false
}

// Reply writes a JSON body with status.
func Reply(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// JSON returns a handler that always replies with body.
func JSON(status int, body interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		Reply(w, status, body)
	}
}
