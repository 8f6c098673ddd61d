package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	"github.com/jwalitptl/ubs-console/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "gestor@ubs.gov.br",
		"exp": exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

var gestor = model.User{ID: 7, Nome: "Ana", Email: "gestor@ubs.gov.br", Role: model.RoleGestor}

func TestManagerCreateUsesTokenExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus())

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	sess, err := m.Create(ctx, testToken(t, exp), gestor)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, sess.ExpiresAt.Equal(exp))
	assert.Equal(t, model.RoleGestor, sess.Role())

	loaded, err := m.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, loaded.Token)
	assert.Equal(t, gestor.Email, loaded.User.Email)
}

func TestManagerCreateRejectsExpiredToken(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus())
	_, err := m.Create(context.Background(), testToken(t, time.Now().Add(-time.Minute)), gestor)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestManagerOpaqueTokenUsesFallbackTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus(),
		WithFallbackTTL(2*time.Hour), withClock(func() time.Time { return now }))

	sess, err := m.Create(context.Background(), "opaque", gestor)
	require.NoError(t, err)
	assert.Equal(t, now.Add(2*time.Hour), sess.ExpiresAt)
}

func TestManagerLoadExpired(t *testing.T) {
	now := time.Now()
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus(), withClock(func() time.Time { return now }))
	sess, err := m.Create(context.Background(), "opaque", gestor)
	require.NoError(t, err)

	now = now.Add(9 * time.Hour)
	_, err = m.Load(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = m.Load(context.Background(), sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerInvalidateCancelsScope(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus())

	sess, err := m.Create(ctx, "opaque", gestor)
	require.NoError(t, err)
	scope := m.Scope(sess.ID)
	assert.Same(t, scope, m.Scope(sess.ID))

	var released []Invalidated
	m.OnInvalidate(func(ev Invalidated) { released = append(released, ev) })

	require.NoError(t, m.Invalidate(ctx, sess.ID, ReasonLogout))

	select {
	case <-scope.Done():
	default:
		t.Fatal("scope not cancelled")
	}
	require.Len(t, released, 1)
	assert.Equal(t, sess.ID, released[0].SessionID)
	assert.Equal(t, ReasonLogout, released[0].Reason)

	_, err = m.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerRemoteInvalidation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := messaging.NewMemoryBroker()
	store := NewMemoryStore(time.Minute)
	a := NewManager(store, NewBus(broker))
	b := NewManager(store, NewBus(broker))
	require.NoError(t, a.Start(ctx))
	require.NoError(t, b.Start(ctx))

	var aCalls, bCalls atomic.Int32
	a.OnInvalidate(func(Invalidated) { aCalls.Add(1) })
	b.OnInvalidate(func(Invalidated) { bCalls.Add(1) })

	sess, err := a.Create(ctx, "opaque", gestor)
	require.NoError(t, err)
	remoteScope := b.Scope(sess.ID)

	require.NoError(t, a.Invalidate(ctx, sess.ID, ReasonUnauthorized))

	assert.Eventually(t, func() bool { return remoteScope.Err() != nil }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return bCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// the origin replica ignores its own echo
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), aCalls.Load())
}

func TestCredentialsInvalidate(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus())
	sess, err := m.Create(ctx, "opaque", gestor)
	require.NoError(t, err)

	var creds apiclient.Credentials = m.Credentials(sess)
	assert.Equal(t, "opaque", creds.Token())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	creds.Invalidate(cctx, ReasonUnauthorized)

	_, err = m.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus())
	sess, err := m.Create(ctx, "opaque", model.User{ID: 1, Email: "u@x.com"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, sess.Role())

	require.NoError(t, m.UpdateUser(ctx, sess, model.User{ID: 1, Email: "u@x.com", IsProfissional: true}))
	loaded, err := m.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleProfissional, loaded.Role())
	assert.True(t, loaded.HasRole(model.RoleGestor, model.RoleProfissional))
}

func TestManagerSweepEndsExpiredSessions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus(),
		WithFallbackTTL(50*time.Millisecond), WithSweepInterval(10*time.Millisecond))
	require.NoError(t, m.Start(ctx))

	var released atomic.Int32
	m.OnInvalidate(func(ev Invalidated) {
		assert.Equal(t, ReasonExpired, ev.Reason)
		released.Add(1)
	})

	sess, err := m.Create(ctx, "opaque", gestor)
	require.NoError(t, err)
	scope := m.Scope(sess.ID)

	assert.Eventually(t, func() bool { return scope.Err() != nil }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return released.Load() == 1 }, time.Second, 5*time.Millisecond)

	late := m.Scope(sess.ID)
	assert.Error(t, late.Err())
	m.mu.Lock()
	assert.Empty(t, m.ctxs)
	assert.Empty(t, m.scopes)
	assert.Empty(t, m.expiries)
	m.mu.Unlock()

	_, err = m.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), released.Load())
}

func TestManagerLoadReleasesSessionDroppedByStore(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus(), WithFallbackTTL(30*time.Millisecond))

	var released []Invalidated
	m.OnInvalidate(func(ev Invalidated) { released = append(released, ev) })

	sess, err := m.Create(ctx, "opaque", gestor)
	require.NoError(t, err)
	scope := m.Scope(sess.ID)

	time.Sleep(60 * time.Millisecond)
	_, err = m.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, scope.Err())
	require.Len(t, released, 1)
	assert.Equal(t, ReasonExpired, released[0].Reason)

	_, err = m.Load(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, released, 1)
}

func TestManagerScopeOfUnknownSessionStaysOpen(t *testing.T) {
	m := NewManager(NewMemoryStore(time.Minute), NewLocalBus())
	scope := m.Scope("from-another-replica")
	assert.NoError(t, scope.Err())
	assert.Same(t, scope, m.Scope("from-another-replica"))
}
