package notify

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrDialogNotFound = errors.New("dialog not found")
	ErrValueRequired  = errors.New("a value is required")
)

type DialogKind string

const (
	KindConfirm DialogKind = "confirm"
	KindPrompt  DialogKind = "prompt"
)

type Tone string

const (
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneInfo    Tone = "info"
)

type ConfirmOptions struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Tone         Tone
}

type PromptOptions struct {
	Title        string
	Message      string
	Label        string
	Placeholder  string
	InitialValue string
	ConfirmLabel string
	CancelLabel  string
	Required     bool
}

// Dialog is what the overlay renders for the head of a session's queue.
type Dialog struct {
	ID           string     `json:"id"`
	Kind         DialogKind `json:"kind"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	ConfirmLabel string     `json:"confirm_label"`
	CancelLabel  string     `json:"cancel_label"`
	Tone         Tone       `json:"tone,omitempty"`
	Label        string     `json:"label,omitempty"`
	Placeholder  string     `json:"placeholder,omitempty"`
	InitialValue string     `json:"initial_value,omitempty"`
	Required     bool       `json:"required,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Answer is the user's reply to a dialog.
type Answer struct {
	Confirmed bool    `json:"confirmed"`
	Value     *string `json:"value"`
}

func (o ConfirmOptions) dialog() Dialog {
	d := Dialog{
		Kind:         KindConfirm,
		Title:        o.Title,
		Message:      o.Message,
		ConfirmLabel: o.ConfirmLabel,
		CancelLabel:  o.CancelLabel,
		Tone:         o.Tone,
	}
	if d.Title == "" {
		d.Title = "Confirmação"
	}
	if d.ConfirmLabel == "" {
		d.ConfirmLabel = "Confirmar"
	}
	if d.CancelLabel == "" {
		d.CancelLabel = "Cancelar"
	}
	if d.Tone == "" {
		d.Tone = ToneWarning
	}
	return d
}

func (o PromptOptions) dialog() Dialog {
	d := Dialog{
		Kind:         KindPrompt,
		Title:        o.Title,
		Message:      o.Message,
		Label:        o.Label,
		Placeholder:  o.Placeholder,
		InitialValue: o.InitialValue,
		ConfirmLabel: o.ConfirmLabel,
		CancelLabel:  o.CancelLabel,
		Required:     o.Required,
	}
	if d.Title == "" {
		d.Title = "Informe o motivo"
	}
	if d.ConfirmLabel == "" {
		d.ConfirmLabel = "Confirmar"
	}
	if d.CancelLabel == "" {
		d.CancelLabel = "Cancelar"
	}
	return d
}

// Pending is an open dialog. Its result arrives once, through Wait.
type Pending[T any] struct {
	dialog Dialog
	result chan T
	drop   func()
}

func newPending[T any](d Dialog, drop func()) *Pending[T] {
	return &Pending[T]{dialog: d, result: make(chan T, 1), drop: drop}
}

func (p *Pending[T]) Dialog() Dialog {
	return p.dialog
}

// Wait blocks for the answer. If ctx ends first the dialog is withdrawn
// from the queue and ctx's error is returned.
func (p *Pending[T]) Wait(ctx context.Context) (T, error) {
	select {
	case v := <-p.result:
		return v, nil
	case <-ctx.Done():
		p.drop()
		var zero T
		return zero, ctx.Err()
	}
}

func (p *Pending[T]) deliver(v T) {
	select {
	case p.result <- v:
	default:
	}
}

func confirmResult(a Answer) bool {
	return a.Confirmed
}

func promptResult(a Answer) *string {
	if !a.Confirmed || a.Value == nil {
		return nil
	}
	v := strings.TrimSpace(*a.Value)
	return &v
}
