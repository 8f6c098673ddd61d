package report

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	"github.com/jwalitptl/ubs-console/pkg/logger"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
)

// Sessions is the part of the session manager editors depend on.
type Sessions interface {
	Scope(id string) context.Context
	Credentials(s *session.Session) apiclient.Credentials
	OnInvalidate(fn func(session.Invalidated))
}

// Registry keeps one editor per (session, report). Editors of an
// invalidated session are closed and their unsaved edits discarded.
type Registry struct {
	repo     repository.ReportRepository
	sessions Sessions
	center   *notify.Center
	delay    time.Duration
	metrics  *metrics.Metrics
	logger   *logger.Logger

	mu      sync.Mutex
	editors map[string]map[int64]*Editor
}

func NewRegistry(repo repository.ReportRepository, sessions Sessions, center *notify.Center, delay time.Duration, m *metrics.Metrics, l *logger.Logger) *Registry {
	if l == nil {
		l = logger.Nop()
	}
	r := &Registry{
		repo:     repo,
		sessions: sessions,
		center:   center,
		delay:    delay,
		metrics:  m,
		logger:   l.With("report_editor"),
		editors:  make(map[string]map[int64]*Editor),
	}
	sessions.OnInvalidate(func(ev session.Invalidated) {
		r.CloseSession(ev.SessionID)
	})
	return r
}

// Open returns the session's editor for report id, creating it on first use.
func (r *Registry) Open(sess *session.Session, id int64) *Editor {
	r.mu.Lock()
	defer r.mu.Unlock()

	byReport, ok := r.editors[sess.ID]
	if !ok {
		byReport = make(map[int64]*Editor)
		r.editors[sess.ID] = byReport
	}
	if e, ok := byReport[id]; ok {
		return e
	}

	ctx := apiclient.WithCredentials(r.sessions.Scope(sess.ID), r.sessions.Credentials(sess))
	sid := sess.ID
	e := newEditor(ctx, id, r.repo, r.delay, r.metrics, func(err error) {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return
		}
		r.logger.Warn("Autosave failed", "report_id", id, "error", err.Error())
		if r.center != nil {
			r.center.Error(sid, "Erro ao salvar: "+err.Error())
		}
	})
	byReport[id] = e
	return e
}

func (r *Registry) Get(sessionID string, id int64) (*Editor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.editors[sessionID][id]
	return e, ok
}

// Close discards the session's editor for report id.
func (r *Registry) Close(sessionID string, id int64) {
	r.mu.Lock()
	e, ok := r.editors[sessionID][id]
	if ok {
		delete(r.editors[sessionID], id)
		if len(r.editors[sessionID]) == 0 {
			delete(r.editors, sessionID)
		}
	}
	r.mu.Unlock()
	if ok {
		e.Close()
	}
}

func (r *Registry) CloseSession(sessionID string) {
	r.mu.Lock()
	byReport := r.editors[sessionID]
	delete(r.editors, sessionID)
	r.mu.Unlock()

	for _, e := range byReport {
		e.Close()
	}
}

// Len counts open editors.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, byReport := range r.editors {
		n += len(byReport)
	}
	return n
}
