package report

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	"github.com/jwalitptl/ubs-console/pkg/debounce"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
)

type State string

const (
	StateUnloaded  State = "UNLOADED"
	StateLoading   State = "LOADING"
	StateLoaded    State = "LOADED"
	StateDirty     State = "DIRTY"
	StateSaving    State = "SAVING"
	StateError     State = "ERROR_DISPLAYED"
	StateSubmitted State = "SUBMITTED"
)

var (
	ErrNotLoaded = apperrors.NewConflict("relatório ainda não carregado")
	ErrSubmitted = apperrors.NewConflict("relatório já enviado não pode ser alterado")
	ErrClosed    = apperrors.NewConflict("editor encerrado")
)

// View is a point-in-time copy of an editor.
type View struct {
	ID        int64                  `json:"id"`
	State     State                  `json:"state"`
	Diagnosis *model.Diagnosis       `json:"diagnosis,omitempty"`
	Pending   map[string]interface{} `json:"pending,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

type edit struct {
	value interface{}
	gen   uint64
}

// Editor holds the header form of one report for one session and saves it
// in the background once edits settle.
type Editor struct {
	id      int64
	repo    repository.ReportRepository
	ctx     context.Context
	metrics *metrics.Metrics
	onError func(error)
	saver   *debounce.Debouncer[uint64]

	mu       sync.Mutex
	state    State
	diag     *model.Diagnosis
	dirty    map[string]edit
	gen      uint64
	saveSeq  uint64
	cancel   context.CancelFunc
	inflight chan struct{}
	lastErr  error
	closed   bool
}

// newEditor builds an editor whose autosaves run under ctx. ctx must carry
// the session credentials and end when the session does.
func newEditor(ctx context.Context, id int64, repo repository.ReportRepository, delay time.Duration, m *metrics.Metrics, onError func(error)) *Editor {
	e := &Editor{
		id:      id,
		repo:    repo,
		ctx:     ctx,
		metrics: m,
		onError: onError,
		state:   StateUnloaded,
		dirty:   make(map[string]edit),
	}
	e.saver = debounce.New(delay, e.save)
	return e
}

func (e *Editor) ID() int64 {
	return e.id
}

func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Load fetches the full diagnosis. Pending edits survive a reload.
func (e *Editor) Load(ctx context.Context) (View, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return View{}, ErrClosed
	}
	prev := e.state
	if prev != StateSaving {
		e.state = StateLoading
	}
	e.mu.Unlock()

	diag, err := e.repo.Diagnosis(ctx, e.id)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		if e.state == StateLoading {
			e.state = prev
			if e.diag == nil {
				e.state = StateUnloaded
			}
		}
		return View{}, err
	}

	e.diag = diag
	switch {
	case diag.Submission.Status == model.ReportSubmitted || diag.UBS.Status == model.ReportSubmitted:
		e.state = StateSubmitted
		e.dirty = make(map[string]edit)
	case e.state == StateSaving:
	case len(e.dirty) > 0:
		e.state = StateDirty
	default:
		e.state = StateLoaded
	}
	return e.viewLocked(), nil
}

// Edit records a header field change and restarts the autosave delay.
func (e *Editor) Edit(field, raw string) (View, error) {
	value, err := parseField(field, raw)
	if err != nil {
		return View{}, err
	}

	e.mu.Lock()
	if err := e.editableLocked(); err != nil {
		e.mu.Unlock()
		return View{}, err
	}

	pending := e.pendingLocked()
	pending[field] = value
	if err := checkDateOrder(pending, &e.diag.UBS); err != nil {
		e.mu.Unlock()
		return View{}, err
	}

	e.gen++
	gen := e.gen
	e.dirty[field] = edit{value: value, gen: gen}
	if e.state != StateSaving {
		e.state = StateDirty
	}
	v := e.viewLocked()
	e.mu.Unlock()

	e.saver.Set(gen)
	return v, nil
}

func (e *Editor) editableLocked() error {
	switch {
	case e.closed:
		return ErrClosed
	case e.state == StateSubmitted:
		return ErrSubmitted
	case e.diag == nil:
		return ErrNotLoaded
	}
	return nil
}

// save sends every dirty field. A newer save cancels the one in flight, and
// a superseded response never changes the editor state.
func (e *Editor) save(uint64) {
	e.mu.Lock()
	if e.closed || e.diag == nil || e.state == StateSubmitted || len(e.dirty) == 0 {
		e.mu.Unlock()
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.saveSeq++
	seq := e.saveSeq
	ctx, cancel := context.WithCancel(e.ctx)
	e.cancel = cancel
	done := make(chan struct{})
	e.inflight = done

	sent := make(map[string]edit, len(e.dirty))
	payload := make(map[string]interface{}, len(e.dirty))
	for field, ed := range e.dirty {
		sent[field] = ed
		payload[field] = ed.value
	}
	e.state = StateSaving
	e.mu.Unlock()

	start := time.Now()
	updated, err := e.repo.PatchHeader(ctx, e.id, payload)
	cancel()
	if e.metrics != nil {
		e.metrics.AutosaveLatency.Observe(time.Since(start).Seconds())
	}

	e.mu.Lock()
	close(done)
	if seq != e.saveSeq || e.closed {
		e.mu.Unlock()
		e.observe("superseded")
		return
	}
	e.cancel = nil

	if err != nil {
		e.state = StateError
		e.lastErr = err
		e.mu.Unlock()
		e.observe("error")
		if e.onError != nil && !errors.Is(err, context.Canceled) {
			e.onError(err)
		}
		return
	}

	for field, ed := range sent {
		if cur, ok := e.dirty[field]; ok && cur.gen == ed.gen {
			delete(e.dirty, field)
		}
	}
	if updated != nil {
		e.diag.UBS = *updated
	}
	e.lastErr = nil
	if len(e.dirty) == 0 {
		e.state = StateLoaded
	} else {
		e.state = StateDirty
	}
	e.mu.Unlock()
	e.observe("ok")
}

func (e *Editor) observe(outcome string) {
	if e.metrics != nil {
		e.metrics.AutosaveFlushes.WithLabelValues(outcome).Inc()
	}
}

// Save flushes pending edits now and waits for the result.
func (e *Editor) Save(ctx context.Context) (View, error) {
	if !e.saver.Flush() {
		e.mu.Lock()
		retry := len(e.dirty) > 0 && e.state == StateError
		e.mu.Unlock()
		if retry {
			e.save(0)
		}
	}
	if err := e.waitIdle(ctx); err != nil {
		return View{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateError {
		return e.viewLocked(), e.lastErr
	}
	return e.viewLocked(), nil
}

func (e *Editor) waitIdle(ctx context.Context) error {
	for {
		e.mu.Lock()
		state, done := e.state, e.inflight
		e.mu.Unlock()
		if state != StateSaving || done == nil {
			return nil
		}
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Submit saves pending edits and then submits the report. Structured API
// rejections come back as *SubmitRejected.
func (e *Editor) Submit(ctx context.Context) (*model.SubmitResult, error) {
	e.mu.Lock()
	err := e.editableLocked()
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if _, err := e.Save(ctx); err != nil {
		// Transport and API failures keep their own status.
		var netErr *apiclient.NetworkError
		var apiErr *apiclient.Error
		if errors.As(err, &netErr) || errors.As(err, &apiErr) || ctx.Err() != nil {
			return nil, err
		}
		return nil, apperrors.NewBadRequest("Não foi possível salvar as alterações antes do envio", err)
	}

	res, err := e.repo.Submit(ctx, e.id)
	if err != nil {
		return nil, asSubmitRejected(err)
	}

	e.mu.Lock()
	e.state = StateSubmitted
	e.diag.Submission.Status = model.ReportSubmitted
	if res != nil {
		e.diag.Submission.SubmittedAt = res.SubmittedAt
	}
	e.mu.Unlock()
	e.saver.Stop()
	return res, nil
}

// View returns the current form: the loaded report plus pending edits.
func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Editor) viewLocked() View {
	v := View{ID: e.id, State: e.state}
	if e.diag != nil {
		d := *e.diag
		v.Diagnosis = &d
	}
	if len(e.dirty) > 0 {
		v.Pending = e.pendingLocked()
	}
	if e.state == StateError && e.lastErr != nil {
		v.Error = e.lastErr.Error()
	}
	return v
}

func (e *Editor) pendingLocked() map[string]interface{} {
	out := make(map[string]interface{}, len(e.dirty))
	for field, ed := range e.dirty {
		out[field] = ed.value
	}
	return out
}

// Close discards unsaved edits and cancels a save in flight.
func (e *Editor) Close() {
	e.saver.Stop()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.dirty = make(map[string]edit)
}

// SubmitRejected lists the fields the API refused on submit.
type SubmitRejected struct {
	Fields []apperrors.FieldError
}

func (e *SubmitRejected) Error() string {
	msg := ""
	for i, f := range e.Fields {
		if i > 0 {
			msg += "\n"
		}
		msg += f.Message
	}
	return msg
}

// HasField reports whether field is among the rejected ones.
func (e *SubmitRejected) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func asSubmitRejected(err error) error {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest && len(apiErr.Fields) > 0 {
		return &SubmitRejected{Fields: apiErr.Fields}
	}
	return err
}
