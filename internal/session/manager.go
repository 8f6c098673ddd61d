package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	"github.com/jwalitptl/ubs-console/pkg/auth"
	"github.com/jwalitptl/ubs-console/pkg/logger"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
)

const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"
)

const defaultSweepInterval = time.Minute

// Manager owns session lifecycles. Each live session has a scope context
// that is cancelled when the session is invalidated here or on another
// replica, or when it expires.
type Manager struct {
	store         Store
	bus           Bus
	metrics       *metrics.Metrics
	logger        *logger.Logger
	fallbackTTL   time.Duration
	sweepInterval time.Duration
	origin        string
	now           func() time.Time

	mu        sync.Mutex
	base      context.Context
	scopes    map[string]context.CancelFunc
	ctxs      map[string]context.Context
	expiries  map[string]time.Time
	released  *cache.Cache
	listeners []func(Invalidated)
}

type ManagerOption func(*Manager)

func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

func WithLogger(l *logger.Logger) ManagerOption {
	return func(mgr *Manager) { mgr.logger = l }
}

// WithFallbackTTL sets the lifetime of sessions whose token carries no exp.
func WithFallbackTTL(ttl time.Duration) ManagerOption {
	return func(mgr *Manager) { mgr.fallbackTTL = ttl }
}

// WithSweepInterval sets how often Start looks for expired sessions.
func WithSweepInterval(d time.Duration) ManagerOption {
	return func(mgr *Manager) { mgr.sweepInterval = d }
}

func withClock(now func() time.Time) ManagerOption {
	return func(mgr *Manager) { mgr.now = now }
}

func NewManager(store Store, bus Bus, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:         store,
		bus:           bus,
		logger:        logger.Nop(),
		fallbackTTL:   8 * time.Hour,
		sweepInterval: defaultSweepInterval,
		origin:        uuid.NewString(),
		now:           time.Now,
		base:          context.Background(),
		scopes:        make(map[string]context.CancelFunc),
		ctxs:          make(map[string]context.Context),
		expiries:      make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	// Released ids are remembered for a full session lifetime so a late
	// request cannot reopen their scope.
	m.released = cache.New(m.fallbackTTL, m.fallbackTTL)
	return m
}

// Start subscribes to invalidations published by other replicas and sweeps
// expired sessions until ctx ends. Scopes created afterwards derive from ctx.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	m.base = ctx
	m.mu.Unlock()

	err := m.bus.Subscribe(ctx, func(ev Invalidated) {
		if ev.Origin == m.origin {
			return
		}
		m.logger.Debug("Session invalidated remotely", "session_id", ev.SessionID, "reason", ev.Reason)
		m.release(ev)
	})
	if err != nil {
		return err
	}
	if m.sweepInterval > 0 {
		go m.sweepLoop(ctx)
	}
	return nil
}

func (m *Manager) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

// Sweep invalidates every tracked session whose ExpiresAt has passed and
// returns how many it ended.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.now()
	m.mu.Lock()
	var expired []string
	for id, at := range m.expiries {
		if !now.Before(at) {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if err := m.Invalidate(ctx, id, ReasonExpired); err != nil {
			m.logger.Error(err, "Failed to invalidate expired session", "session_id", id)
		}
	}
	return len(expired)
}

// Create opens a session for a freshly issued API token.
func (m *Manager) Create(ctx context.Context, token string, user model.User) (*Session, error) {
	now := m.now()
	ttl := m.fallbackTTL

	claims, err := auth.ParseUnverified(token)
	switch {
	case err != nil:
		m.logger.Debug("Access token is not a JWT, using fallback TTL", "error", err.Error())
	case claims.Expired(now):
		return nil, ErrExpired
	default:
		ttl = claims.TTL(now, m.fallbackTTL)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := m.store.Save(ctx, sess, ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	m.track(sess)
	if m.metrics != nil {
		m.metrics.SessionsCreated.Inc()
	}
	m.logger.Info("Session created", "session_id", sess.ID, "user_id", user.ID, "role", string(user.EffectiveRole()))
	return sess, nil
}

// Load returns a live session. An expired one is invalidated and reported
// as ErrExpired. A session the store already dropped by TTL is released
// locally if this replica still holds state for it.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	sess, err := m.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		if m.known(id) {
			m.release(Invalidated{SessionID: id, Reason: ReasonExpired, Origin: m.origin, At: m.now()})
			if m.metrics != nil {
				m.metrics.SessionsInvalidated.WithLabelValues(ReasonExpired).Inc()
			}
			m.logger.Info("Session dropped by store", "session_id", id)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(m.now()) {
		_ = m.Invalidate(ctx, id, ReasonExpired)
		return nil, ErrExpired
	}
	m.track(sess)
	return sess, nil
}

func (m *Manager) track(sess *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, gone := m.released.Get(sess.ID); gone {
		return
	}
	m.expiries[sess.ID] = sess.ExpiresAt
}

func (m *Manager) known(id string) bool {
	if _, gone := m.released.Get(id); gone {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, scoped := m.scopes[id]
	_, tracked := m.expiries[id]
	return scoped || tracked
}

// UpdateUser replaces the cached user, keeping the remaining lifetime.
func (m *Manager) UpdateUser(ctx context.Context, sess *Session, user model.User) error {
	ttl := sess.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return ErrExpired
	}
	sess.User = user
	return m.store.Save(ctx, sess, ttl)
}

// Invalidate deletes the session, cancels its scope, notifies local
// listeners and announces the event to other replicas.
func (m *Manager) Invalidate(ctx context.Context, id, reason string) error {
	if id == "" {
		return nil
	}
	ctx = context.WithoutCancel(ctx)

	var errs []error
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		errs = append(errs, fmt.Errorf("delete session: %w", err))
	}

	ev := Invalidated{SessionID: id, Reason: reason, Origin: m.origin, At: m.now()}
	m.release(ev)

	if err := m.bus.Publish(ctx, ev); err != nil {
		errs = append(errs, fmt.Errorf("publish invalidation: %w", err))
	}
	if m.metrics != nil {
		m.metrics.SessionsInvalidated.WithLabelValues(reason).Inc()
	}
	m.logger.Info("Session invalidated", "session_id", id, "reason", reason)
	return errors.Join(errs...)
}

// Scope returns the lifecycle context of a session. Work derived from it
// stops when the session is invalidated. The scope of a released session
// is already done.
func (m *Manager) Scope(id string) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx, ok := m.ctxs[id]; ok {
		return ctx
	}
	ctx, cancel := context.WithCancel(m.base)
	if _, gone := m.released.Get(id); gone {
		cancel()
		return ctx
	}
	m.ctxs[id] = ctx
	m.scopes[id] = cancel
	return ctx
}

// OnInvalidate registers fn to release per-session state.
func (m *Manager) OnInvalidate(fn func(Invalidated)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// release ends local state for a session once. Later events for the same
// id are ignored.
func (m *Manager) release(ev Invalidated) {
	m.mu.Lock()
	if _, gone := m.released.Get(ev.SessionID); gone {
		delete(m.expiries, ev.SessionID)
		m.mu.Unlock()
		return
	}
	m.released.SetDefault(ev.SessionID, struct{}{})
	cancel := m.scopes[ev.SessionID]
	delete(m.scopes, ev.SessionID)
	delete(m.ctxs, ev.SessionID)
	delete(m.expiries, ev.SessionID)
	listeners := append([]func(Invalidated){}, m.listeners...)
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	for _, fn := range listeners {
		fn(ev)
	}
}

// Credentials adapts a session to the API client.
func (m *Manager) Credentials(sess *Session) apiclient.Credentials {
	return &credentials{manager: m, session: sess}
}

type credentials struct {
	manager *Manager
	session *Session
}

func (c *credentials) Token() string {
	return c.session.Token
}

func (c *credentials) Invalidate(ctx context.Context, reason string) {
	if err := c.manager.Invalidate(ctx, c.session.ID, reason); err != nil {
		c.manager.logger.Error(err, "Failed to invalidate session", "session_id", c.session.ID)
	}
}
