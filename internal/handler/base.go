package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/audit"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

// BaseHandler carries what every page handler shares: the session manager,
// the notification center and the audit trail.
type BaseHandler struct {
	Sessions *session.Manager
	Center   *notify.Center
	Audit    *audit.AuditLogger
}

// Destructive describes an action that runs only after the user confirms it.
type Destructive struct {
	Options    notify.ConfirmOptions
	Success    string
	Action     string
	EntityType string
	EntityID   string
}

// Session returns the request session. It reports an unauthorized error when
// the route was registered without RequireSession.
func (h *BaseHandler) Session(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		_ = c.Error(apperrors.Unauthorized(nil))
	}
	return sess, ok
}

// Notify raises a success toast for the request session.
func (h *BaseHandler) Notify(c *gin.Context, message string) {
	if h.Center == nil {
		return
	}
	if id := middleware.SessionID(c); id != "" {
		h.Center.Success(id, message)
	}
}

// Record adds an audit entry for the request.
func (h *BaseHandler) Record(c *gin.Context, action, entityType, entityID string) {
	if h.Audit == nil {
		return
	}
	h.Audit.Log(c.Request.Context(), middleware.AuditEntry(c, action, entityType, entityID, c.Writer.Status()))
}

// Confirm queues a confirmation dialog and answers 202 with it. run executes
// under the session scope with the session credentials once the user
// confirms; its outcome reaches the user as a toast.
func (h *BaseHandler) Confirm(c *gin.Context, d Destructive, run func(ctx context.Context) error) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	if d.Action == "" {
		d.Action = "delete"
	}
	creds := h.Sessions.Credentials(sess)
	entry := middleware.AuditEntry(c, d.Action, d.EntityType, d.EntityID, http.StatusOK)

	dialog, _ := h.Center.ConfirmAndRun(h.Sessions.Scope(sess.ID), sess.ID, d.Options, func(ctx context.Context) error {
		ctx = apiclient.WithCredentials(ctx, creds)
		if err := run(ctx); err != nil {
			return err
		}
		if d.Success != "" {
			h.Center.Success(sess.ID, d.Success)
		}
		if h.Audit != nil {
			h.Audit.Log(ctx, entry)
		}
		return nil
	})
	c.JSON(http.StatusAccepted, NewSuccessResponse(gin.H{"dialog": dialog}))
}

// Prompt asks the user for a value and runs run with it once answered.
// A cancelled prompt runs nothing.
func (h *BaseHandler) Prompt(c *gin.Context, opts notify.PromptOptions, success string, run func(ctx context.Context, value string) error) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	creds := h.Sessions.Credentials(sess)
	scope := h.Sessions.Scope(sess.ID)
	pending := h.Center.Prompt(sess.ID, opts)

	go func() {
		value, err := pending.Wait(scope)
		if err != nil || value == nil {
			return
		}
		ctx := apiclient.WithCredentials(scope, creds)
		if err := run(ctx, *value); err != nil {
			if scope.Err() == nil {
				h.Center.Error(sess.ID, middleware.Classify(err).Message)
			}
			log.Debug().Err(err).Str("dialog_id", pending.Dialog().ID).Msg("Prompted action failed")
			return
		}
		if success != "" {
			h.Center.Success(sess.ID, success)
		}
	}()
	c.JSON(http.StatusAccepted, NewSuccessResponse(gin.H{"dialog": pending.Dialog()}))
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		_ = c.Error(apperrors.NewBadRequest("identificador inválido", nil))
		return 0, false
	}
	return id, true
}

// QueryInt reads an optional integer query parameter, falling back to def.
func QueryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		_ = c.Error(apperrors.Validation(apperrors.FieldError{Field: name, Message: "Número inválido", Code: "numeric"}))
		return 0, false
	}
	return v, true
}

// Bind decodes and validates a JSON body.
func Bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(err)
		return false
	}
	return true
}

// Decode reads a JSON body without running binding rules, for requests whose
// service reports every failed rule itself.
func Decode(c *gin.Context, obj interface{}) bool {
	if err := json.NewDecoder(c.Request.Body).Decode(obj); err != nil && err != io.EOF {
		_ = c.Error(err)
		return false
	}
	return true
}

// SendBlob streams a file obtained from the API.
func SendBlob(c *gin.Context, blob *apiclient.BlobData) {
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if blob.Filename != "" {
		c.Header("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(blob.Filename, `"`, "")+`"`)
	}
	c.Data(http.StatusOK, contentType, blob.Data)
}

// FormFile reads an uploaded file, rejecting it before reading when it is
// over limit. A missing optional file yields nil.
func FormFile(c *gin.Context, field string, limit int64, required bool) (*apiclient.File, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile && !required {
			return nil, true
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(err)
			return nil, false
		}
		_ = c.Error(apperrors.Validation(apperrors.FieldError{Field: field, Message: "Selecione um arquivo", Code: "required"}))
		return nil, false
	}
	if err := apiclient.CheckSize(header.Filename, header.Size, limit); err != nil {
		_ = c.Error(err)
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		_ = c.Error(apperrors.NewBadRequest("não foi possível ler o arquivo", err))
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		_ = c.Error(apperrors.NewBadRequest("não foi possível ler o arquivo", err))
		return nil, false
	}
	return &apiclient.File{
		Field:       field,
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
