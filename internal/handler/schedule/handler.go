package schedule

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/schedule"
)

// EditorRoles may change the cronograma. Everyone signed in may read it.
var EditorRoles = []model.Role{model.RoleGestor, model.RoleProfissional, model.RoleACS}

type Handler struct {
	handler.BaseHandler
	svc   *schedule.Service
	guard *middleware.Guard
}

func NewHandler(base handler.BaseHandler, svc *schedule.Service, guard *middleware.Guard) *Handler {
	return &Handler{BaseHandler: base, svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/cronograma")
	{
		events.GET("", h.List)
		events.GET("/calendario", h.Calendar)

		edit := events.Group("", h.guard.RequireRoles(EditorRoles...))
		edit.POST("", h.Create)
		edit.PATCH("/:id", h.Update)
		edit.DELETE("/:id", h.Delete)
	}
}

// List returns the stored events of a UBS, optionally bounded by start and end.
func (h *Handler) List(c *gin.Context) {
	ubsID, ok := handler.QueryID(c, "ubs_id")
	if !ok {
		return
	}
	start, ok := handler.QueryTime(c, "start", false)
	if !ok {
		return
	}
	end, ok := handler.QueryTime(c, "end", true)
	if !ok {
		return
	}

	events, err := h.svc.List(c.Request.Context(), ubsID, start, end)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(events))
}

// Calendar expands recurring events into occurrences. The window defaults to
// the current month.
func (h *Handler) Calendar(c *gin.Context) {
	ubsID, ok := handler.QueryID(c, "ubs_id")
	if !ok {
		return
	}
	start, ok := handler.QueryTime(c, "start", false)
	if !ok {
		return
	}
	end, ok := handler.QueryTime(c, "end", true)
	if !ok {
		return
	}
	if start == nil {
		now := time.Now()
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
		start = &first
	}
	if end == nil {
		last := start.AddDate(0, 1, 0).Add(-time.Second)
		end = &last
	}

	occurrences, err := h.svc.Calendar(c.Request.Context(), ubsID, *start, *end)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(occurrences))
}

func (h *Handler) Create(c *gin.Context) {
	var ev model.Event
	if !handler.Bind(c, &ev) {
		return
	}
	created, err := h.svc.Create(c.Request.Context(), &ev)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Evento criado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityEvent, strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var patch model.EventPatch
	if !handler.Bind(c, &patch) {
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), id, &patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Evento atualizado")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityEvent, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir evento",
			Message:      "Todas as ocorrências deste evento serão removidas do cronograma.",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Evento excluído",
		EntityType: model.AuditEntityEvent,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.Delete(ctx, id)
	})
}
