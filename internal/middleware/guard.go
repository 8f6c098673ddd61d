package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

const (
	LoginPath   = "/login"
	DefaultPath = "/"

	MsgSessionExpired   = "Sessão expirada"
	MsgLoginRequired    = "Faça login para continuar"
	MsgForbidden        = "Seu perfil não tem acesso a esta página"
	MsgResourceFailed   = "Não foi possível verificar os dados da unidade. Tente novamente mais tarde ou procure o gestor."
	defaultGuardTTL     = 30 * time.Second
	defaultGuardCleanup = time.Minute
)

// Resource states reported by ResourceState.
const (
	ResourcePending = "pending"
	ResourceReady   = "ready"
	ResourceMissing = "missing"
	ResourceFailed  = "failed"
)

// ResourceCheck asks the API whether at least one resource of a kind exists.
type ResourceCheck struct {
	Name   string
	Exists func(ctx context.Context) (bool, error)
}

// Guard protects routes that need a session, a role or an existing resource.
type Guard struct {
	sessions *session.Manager
	cookies  *session.Cookies
	ready    *gocache.Cache

	mu sync.Mutex
	// checks running per session and resource
	inflight map[string]int
}

func NewGuard(sessions *session.Manager, cookies *session.Cookies, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	g := &Guard{
		sessions: sessions,
		cookies:  cookies,
		ready:    gocache.New(ttl, defaultGuardCleanup),
		inflight: make(map[string]int),
	}
	sessions.OnInvalidate(func(ev session.Invalidated) {
		g.forget(ev.SessionID)
	})
	return g
}

// RequireSession resolves the cookie to a live session and attaches the API
// credentials to the request context. Without one it sends the user to login.
func (g *Guard) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := g.cookies.SessionID(c.Request)
		if id == "" {
			abortRedirect(c, http.StatusUnauthorized, LoginPath, MsgLoginRequired)
			return
		}

		sess, err := g.sessions.Load(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, session.ErrNotFound) && !errors.Is(err, session.ErrExpired) {
				_ = c.Error(apperrors.NewInternal(err))
				c.Abort()
				return
			}
			if err := g.cookies.ClearWithFlash(c.Writer, c.Request, MsgSessionExpired); err != nil {
				log.Warn().Err(err).Msg("Failed to clear session cookie")
			}
			abortRedirect(c, http.StatusUnauthorized, LoginPath, MsgSessionExpired)
			return
		}

		c.Set(ContextSession, sess)
		ctx := apiclient.WithCredentials(c.Request.Context(), g.sessions.Credentials(sess))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles. Anyone
// else goes back to the default page.
func (g *Guard) RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			abortRedirect(c, http.StatusUnauthorized, LoginPath, MsgLoginRequired)
			return
		}
		if !sess.HasRole(roles...) {
			abortRedirect(c, http.StatusForbidden, DefaultPath, MsgForbidden)
			return
		}
		c.Next()
	}
}

// RequireResource redirects to setupPath while no resource exists. When the
// check itself fails, roles in canSetup are sent to setupPath too and every
// other role gets 503.
func (g *Guard) RequireResource(check ResourceCheck, setupPath string, canSetup ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			abortRedirect(c, http.StatusUnauthorized, LoginPath, MsgLoginRequired)
			return
		}

		state, err := g.resolve(c.Request.Context(), sess.ID, check)
		switch state {
		case ResourceReady:
			c.Next()
		case ResourceMissing:
			abortRedirect(c, http.StatusConflict, setupPath, "Cadastre a unidade para continuar")
		default:
			if errors.Is(err, apiclient.ErrUnauthorized) {
				_ = c.Error(err)
				c.Abort()
				return
			}
			if sess.HasRole(canSetup...) {
				abortRedirect(c, http.StatusConflict, setupPath, MsgResourceFailed)
				return
			}
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": MsgResourceFailed,
			})
		}
	}
}

// ResourceState answers GET ?name= with the state of one of checks for the
// request session.
func (g *Guard) ResourceState(checks ...ResourceCheck) gin.HandlerFunc {
	byName := make(map[string]ResourceCheck, len(checks))
	for _, ch := range checks {
		byName[ch.Name] = ch
	}
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			abortRedirect(c, http.StatusUnauthorized, LoginPath, MsgLoginRequired)
			return
		}
		check, ok := byName[c.Query("name")]
		if !ok {
			_ = c.Error(apperrors.NewBadRequest("recurso desconhecido", nil))
			return
		}
		if g.checking(sess.ID, check.Name) {
			c.JSON(http.StatusOK, gin.H{"state": ResourcePending})
			return
		}
		state, err := g.resolve(c.Request.Context(), sess.ID, check)
		if errors.Is(err, apiclient.ErrUnauthorized) {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": state})
	}
}

func (g *Guard) resolve(ctx context.Context, sessionID string, check ResourceCheck) (string, error) {
	key := guardKey(sessionID, check.Name)
	if _, ok := g.ready.Get(key); ok {
		return ResourceReady, nil
	}

	g.mu.Lock()
	g.inflight[key]++
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		if g.inflight[key]--; g.inflight[key] <= 0 {
			delete(g.inflight, key)
		}
		g.mu.Unlock()
	}()

	exists, err := check.Exists(ctx)
	if err != nil {
		log.Warn().Err(err).Str("resource", check.Name).Msg("Resource check failed")
		return ResourceFailed, err
	}
	if !exists {
		return ResourceMissing, nil
	}
	g.ready.SetDefault(key, true)
	return ResourceReady, nil
}

func (g *Guard) checking(sessionID, name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.inflight[guardKey(sessionID, name)] > 0
}

// Invalidate drops the cached result of one check, for instance after the
// resource was created or deleted.
func (g *Guard) Invalidate(sessionID, name string) {
	g.ready.Delete(guardKey(sessionID, name))
}

func (g *Guard) forget(sessionID string) {
	prefix := sessionID + ":"
	for key := range g.ready.Items() {
		if strings.HasPrefix(key, prefix) {
			g.ready.Delete(key)
		}
	}
}

func guardKey(sessionID, name string) string {
	return sessionID + ":" + name
}

// WantsHTML reports whether the client navigates pages rather than calling
// the JSON API.
func WantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

func abortRedirect(c *gin.Context, status int, path, message string) {
	if WantsHTML(c) {
		c.Redirect(http.StatusFound, path)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(status, gin.H{
		"status":   "error",
		"message":  message,
		"redirect": path,
	})
}
