package appointment

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
	"github.com/jwalitptl/ubs-console/internal/service/appointment"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

// StaffRoles may read agendas and manage schedule blocks.
var StaffRoles = []model.Role{model.RoleProfissional, model.RoleGestor, model.RoleRecepcao}

type Handler struct {
	handler.BaseHandler
	service *appointment.Service
	guard   *middleware.Guard
}

func NewHandler(base handler.BaseHandler, service *appointment.Service, guard *middleware.Guard) *Handler {
	return &Handler{BaseHandler: base, service: service, guard: guard}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/agendamentos")
	{
		appointments.GET("/meus", h.Mine)
		appointments.POST("", h.Create)
		appointments.PATCH("/:id", h.Update)
		appointments.POST("/:id/cancelar", h.Cancel)
		appointments.POST("/:id/confirmar", h.Confirm)
		appointments.GET("/profissionais", h.Professionals)
		appointments.GET("/especialidades", h.Specialties)
	}

	agenda := r.Group("/agenda", h.guard.RequireRoles(StaffRoles...))
	{
		agenda.GET("/profissional/:id", h.Agenda)
		agenda.GET("/bloqueios", h.ListBlocks)
		agenda.POST("/bloqueios", h.CreateBlock)
		agenda.DELETE("/bloqueios/:id", h.DeleteBlock)
	}
}

func (h *Handler) Mine(c *gin.Context) {
	list, err := h.service.Mine(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []model.Appointment{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.Bind(c, &req) {
		return
	}

	created, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Agendamento criado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityAppointment, strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.Bind(c, &req) {
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Agendamento atualizado")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityAppointment, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

// Cancel asks for confirmation before moving the appointment to CANCELADO.
func (h *Handler) Cancel(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.BaseHandler.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Cancelar agendamento",
			Message:      "O paciente perderá o horário reservado.",
			ConfirmLabel: "Cancelar agendamento",
			CancelLabel:  "Voltar",
			Tone:         notify.ToneDanger,
		},
		Success:    "Agendamento cancelado",
		Action:     model.AuditActionUpdate,
		EntityType: model.AuditEntityAppointment,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		_, err := h.service.Cancel(ctx, id)
		return err
	})
}

// Confirm marks the appointment as confirmed with the patient.
func (h *Handler) Confirm(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	confirmed, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Confirmação registrada")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityAppointment, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(confirmed))
}

func (h *Handler) Professionals(c *gin.Context) {
	list, err := h.service.Professionals(c.Request.Context(), c.Query("cargo"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []model.Professional{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) Specialties(c *gin.Context) {
	list, err := h.service.Specialties(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []string{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

// Agenda reads start_date and end_date as dates or timestamps. The range
// defaults to the next seven days.
func (h *Handler) Agenda(c *gin.Context) {
	professionalID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	start, ok := handler.QueryTime(c, "start_date", false)
	if !ok {
		return
	}
	end, ok := handler.QueryTime(c, "end_date", true)
	if !ok {
		return
	}
	if start == nil {
		now := time.Now()
		start = &now
	}
	if end == nil {
		week := start.AddDate(0, 0, 7)
		end = &week
	}

	agenda, err := h.service.Agenda(c.Request.Context(), professionalID, *start, *end)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(agenda))
}

func (h *Handler) ListBlocks(c *gin.Context) {
	var professionalID *int64
	if raw := c.Query("profissional_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			_ = c.Error(apperrors.Validation(apperrors.FieldError{Field: "profissional_id", Message: "Número inválido", Code: "numeric"}))
			return
		}
		professionalID = &id
	}

	blocks, err := h.service.ListBlocks(c.Request.Context(), professionalID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if blocks == nil {
		blocks = []model.ScheduleBlock{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(blocks))
}

func (h *Handler) CreateBlock(c *gin.Context) {
	var block model.ScheduleBlock
	if !handler.Bind(c, &block) {
		return
	}

	created, err := h.service.CreateBlock(c.Request.Context(), &block)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Bloqueio criado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityBlock, strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) DeleteBlock(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.BaseHandler.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Remover bloqueio",
			Message:      "O período voltará a aceitar agendamentos.",
			ConfirmLabel: "Remover",
			Tone:         notify.ToneWarning,
		},
		Success:    "Bloqueio removido",
		EntityType: model.AuditEntityBlock,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.service.DeleteBlock(ctx, id)
	})
}
