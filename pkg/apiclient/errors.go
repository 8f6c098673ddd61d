package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

// CannotConnectMessage is shown for every transport-level failure.
const CannotConnectMessage = "não foi possível conectar ao servidor"

var (
	// ErrCannotConnect matches any *NetworkError.
	ErrCannotConnect = errors.New(CannotConnectMessage)
	// ErrUnauthorized matches a 401 answer to an authenticated request.
	ErrUnauthorized = errors.New("sessão expirada")
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
	Fields  []apperrors.FieldError
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 answers.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// StatusCode satisfies the error middleware's status lookup.
func (e *Error) StatusCode() int {
	return e.Status
}

// HasField reports whether the API flagged field.
func (e *Error) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NetworkError wraps a failure that produced no HTTP answer. Its message never
// includes the underlying cause.
type NetworkError struct {
	Op string
	// Reason is "timeout", "breaker_open" or "transport".
	Reason string
	Cause  error
}

func (e *NetworkError) Error() string {
	return CannotConnectMessage
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrCannotConnect
}

// StatusCode reports a gateway failure.
func (e *NetworkError) StatusCode() int {
	return http.StatusBadGateway
}

// errorBody covers the error shapes the API produces: {"detail": "..."},
// {"error": "..."}, {"detail": {"detail": "...", "errors": [...]}} and
// validation arrays {"detail": [{"loc": [...], "msg": "..."}]}.
type errorBody struct {
	Detail  json.RawMessage        `json:"detail"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Errors  []apperrors.FieldError `json:"errors"`
}

type nestedDetail struct {
	Detail string                 `json:"detail"`
	Errors []apperrors.FieldError `json:"errors"`
}

type validationItem struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// parseError builds an *Error from a non-2xx status and its body.
func parseError(status int, body []byte) *Error {
	e := &Error{Status: status}

	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		e.Message, e.Fields = interpretDetail(eb.Detail)
		if len(e.Fields) == 0 {
			e.Fields = eb.Errors
		}
		if e.Message == "" {
			e.Message = strings.TrimSpace(eb.Error)
		}
		if e.Message == "" {
			e.Message = strings.TrimSpace(eb.Message)
		}
	}

	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("HTTP %d", status)
	}
	return e
}

func interpretDetail(raw json.RawMessage) (string, []apperrors.FieldError) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s), nil
	}

	var nested nestedDetail
	if json.Unmarshal(raw, &nested) == nil && (nested.Detail != "" || len(nested.Errors) > 0) {
		msg := nested.Detail
		if msg == "" && len(nested.Errors) > 0 {
			msg = nested.Errors[0].Message
		}
		return msg, nested.Errors
	}

	var items []validationItem
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		fields := make([]apperrors.FieldError, 0, len(items))
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			field := ""
			if n := len(it.Loc); n > 0 {
				field = fmt.Sprint(it.Loc[n-1])
			}
			fields = append(fields, apperrors.FieldError{Field: field, Message: it.Msg, Code: it.Type})
			msgs = append(msgs, it.Msg)
		}
		return strings.Join(msgs, "; "), fields
	}

	return "", nil
}
