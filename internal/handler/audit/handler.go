package audit

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/service/audit"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes expects r to be restricted to GESTOR already.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	audit := r.Group("/audit")
	{
		audit.GET("/logs", h.ListLogs)
		audit.GET("/logs/user/:id", h.GetUserLogs)
		audit.GET("/export", h.ExportLogs)
	}
}

func (h *Handler) ListLogs(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) GetUserLogs(c *gin.Context) {
	userID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.UserID = userID

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) ExportLogs(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "json" {
		_ = c.Error(apperrors.NewBadRequest("formato não suportado", nil))
		return
	}

	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	filter.Limit = maxPageSize
	filter.Offset = 0

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filename := fmt.Sprintf("auditoria_%s.%s", time.Now().Format("20060102_150405"), format)

	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		writer := csv.NewWriter(c.Writer)
		_ = writer.Write([]string{"ID", "User ID", "Role", "Action", "Entity Type", "Entity ID", "Status", "IP", "Created At"})
		for _, log := range page.Items {
			_ = writer.Write([]string{
				log.ID.String(),
				strconv.FormatInt(log.UserID, 10),
				log.Role,
				log.Action,
				log.EntityType,
				log.EntityID,
				strconv.Itoa(log.Status),
				log.IPAddress,
				log.CreatedAt.Format(time.RFC3339),
			})
		}
		writer.Flush()
	case "json":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
		c.JSON(http.StatusOK, page.Items)
	}
}

// parseFilter reads user_id, action, entity_type, start_date, end_date
// (RFC 3339), page and page_size.
func parseFilter(c *gin.Context) (model.AuditFilter, bool) {
	var f model.AuditFilter
	var fields []apperrors.FieldError

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: "user_id", Message: "Número inválido", Code: "numeric"})
		}
		f.UserID = id
	}
	f.Action = c.Query("action")
	f.EntityType = c.Query("entity_type")

	for _, q := range []struct {
		name string
		dst  *time.Time
	}{{"start_date", &f.Since}, {"end_date", &f.Until}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fields = append(fields, apperrors.FieldError{Field: q.name, Message: "Data inválida", Code: "datetime"})
			continue
		}
		*q.dst = t
	}
	if !f.Since.IsZero() && !f.Until.IsZero() && f.Until.Before(f.Since) {
		fields = append(fields, apperrors.FieldError{Field: "end_date", Message: "A data final deve ser posterior à inicial", Code: "gtefield"})
	}

	page, ok := handler.QueryInt(c, "page", 1)
	if !ok {
		return f, false
	}
	size, ok := handler.QueryInt(c, "page_size", defaultPageSize)
	if !ok {
		return f, false
	}
	if len(fields) > 0 {
		_ = c.Error(apperrors.Validation(fields...))
		return f, false
	}

	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	f.Limit = size
	f.Offset = (page - 1) * size
	return f, true
}
