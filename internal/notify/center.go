package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
	"github.com/rs/zerolog/log"
)

type queued struct {
	dialog  Dialog
	resolve func(Answer)
}

// Center holds toasts and dialog queues for every session.
type Center struct {
	toasts  *toastStore
	metrics *metrics.Metrics

	mu     sync.Mutex
	queues map[string][]*queued
}

func NewCenter(m *metrics.Metrics) *Center {
	return &Center{
		toasts:  newToastStore(time.Minute),
		metrics: m,
		queues:  make(map[string][]*queued),
	}
}

// Notify shows a toast and returns it with its id filled in.
func (c *Center) Notify(sessionID string, t Toast) Toast {
	return c.toasts.add(sessionID, t)
}

func (c *Center) Success(sessionID, message string) Toast {
	return c.Notify(sessionID, Toast{Type: TypeSuccess, Message: message, Duration: DefaultDuration})
}

func (c *Center) Error(sessionID, message string) Toast {
	return c.Notify(sessionID, Toast{Type: TypeError, Message: message, Duration: DefaultDuration})
}

func (c *Center) Info(sessionID, message string) Toast {
	return c.Notify(sessionID, Toast{Type: TypeInfo, Message: message, Duration: DefaultDuration})
}

func (c *Center) Warning(sessionID, message string) Toast {
	return c.Notify(sessionID, Toast{Type: TypeWarning, Message: message, Duration: DefaultDuration})
}

// Toasts lists live toasts oldest first.
func (c *Center) Toasts(sessionID string) []Toast {
	return c.toasts.list(sessionID)
}

func (c *Center) Dismiss(sessionID, toastID string) bool {
	return c.toasts.dismiss(sessionID, toastID)
}

// Confirm queues a yes/no dialog.
func (c *Center) Confirm(sessionID string, opts ConfirmOptions) *Pending[bool] {
	d := opts.dialog()
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now()

	p := newPending[bool](d, func() { c.drop(sessionID, d.ID) })
	c.enqueue(sessionID, &queued{dialog: d, resolve: func(a Answer) { p.deliver(confirmResult(a)) }})
	return p
}

// Prompt queues a text-input dialog. A cancelled prompt yields nil.
func (c *Center) Prompt(sessionID string, opts PromptOptions) *Pending[*string] {
	d := opts.dialog()
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now()

	p := newPending[*string](d, func() { c.drop(sessionID, d.ID) })
	c.enqueue(sessionID, &queued{dialog: d, resolve: func(a Answer) { p.deliver(promptResult(a)) }})
	return p
}

// Current returns the dialog at the head of the queue.
func (c *Center) Current(sessionID string) (Dialog, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.queues[sessionID]
	if len(q) == 0 {
		return Dialog{}, false
	}
	return q[0].dialog, true
}

// Resolve answers the dialog with dialogID and removes it from the queue.
func (c *Center) Resolve(sessionID, dialogID string, a Answer) error {
	c.mu.Lock()
	q := c.queues[sessionID]
	idx := -1
	for i, e := range q {
		if e.dialog.ID == dialogID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return ErrDialogNotFound
	}
	e := q[idx]
	if e.dialog.Kind == KindPrompt && e.dialog.Required && a.Confirmed &&
		(a.Value == nil || strings.TrimSpace(*a.Value) == "") {
		c.mu.Unlock()
		return ErrValueRequired
	}
	c.removeLocked(sessionID, idx)
	c.mu.Unlock()

	e.resolve(a)
	return nil
}

// Release resolves every pending dialog negatively and clears toasts.
func (c *Center) Release(sessionID string) {
	c.mu.Lock()
	q := c.queues[sessionID]
	delete(c.queues, sessionID)
	c.mu.Unlock()

	for _, e := range q {
		e.resolve(Answer{})
	}
	if c.metrics != nil && len(q) > 0 {
		c.metrics.DialogsPending.Sub(float64(len(q)))
	}
	c.toasts.clear(sessionID)
}

func (c *Center) enqueue(sessionID string, e *queued) {
	c.mu.Lock()
	c.queues[sessionID] = append(c.queues[sessionID], e)
	c.mu.Unlock()
	if c.metrics != nil {
		c.metrics.DialogsPending.Inc()
	}
}

func (c *Center) drop(sessionID, dialogID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.queues[sessionID] {
		if e.dialog.ID == dialogID {
			c.removeLocked(sessionID, i)
			return
		}
	}
}

func (c *Center) removeLocked(sessionID string, idx int) {
	q := c.queues[sessionID]
	q = append(q[:idx:idx], q[idx+1:]...)
	if len(q) == 0 {
		delete(c.queues, sessionID)
	} else {
		c.queues[sessionID] = q
	}
	if c.metrics != nil {
		c.metrics.DialogsPending.Dec()
	}
}

// ConfirmAndRun queues a confirmation and runs action in the background once
// the user confirms. The action runs under scope, so invalidating the session
// abandons it. A failed action is reported as an error toast. The returned
// channel yields the action's error, or nil when it did not run.
func (c *Center) ConfirmAndRun(scope context.Context, sessionID string, opts ConfirmOptions, action func(ctx context.Context) error) (Dialog, <-chan error) {
	p := c.Confirm(sessionID, opts)
	done := make(chan error, 1)

	go func() {
		defer close(done)
		ok, err := p.Wait(scope)
		if err != nil || !ok {
			return
		}
		if err := action(scope); err != nil {
			if scope.Err() == nil {
				c.Error(sessionID, err.Error())
			}
			log.Debug().Err(err).Str("dialog_id", p.Dialog().ID).Msg("Confirmed action failed")
			done <- err
		}
	}()
	return p.Dialog(), done
}
