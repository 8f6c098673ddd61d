package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/model"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

// QueryID reads a required positive integer query parameter such as ubs_id.
func QueryID(c *gin.Context, name string) (int64, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		_ = c.Error(apperrors.Validation(apperrors.FieldError{Field: name, Message: "Campo obrigatório", Code: "required"}))
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.Validation(apperrors.FieldError{Field: name, Message: "Número inválido", Code: "numeric"}))
		return 0, false
	}
	return id, true
}

// QueryTime reads an optional date (AAAA-MM-DD) or timestamp query
// parameter. A bare date used as an upper bound covers the whole day.
func QueryTime(c *gin.Context, name string, upper bool) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	t, err := parseBound(raw, upper)
	if err != nil {
		_ = c.Error(apperrors.Validation(apperrors.FieldError{Field: name, Message: "Data inválida", Code: "datetime"}))
		return nil, false
	}
	return &t, true
}

func parseBound(raw string, upper bool) (time.Time, error) {
	if len(raw) == len(model.DateLayout) {
		t, err := time.ParseInLocation(model.DateLayout, raw, time.Local)
		if err != nil {
			return time.Time{}, err
		}
		if upper {
			t = t.Add(24*time.Hour - time.Second)
		}
		return t, nil
	}
	return model.ParseTimestamp(raw, time.Local)
}
