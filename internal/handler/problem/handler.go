package problem

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/problem"
)

type Handler struct {
	handler.BaseHandler
	svc *problem.Service
}

func NewHandler(base handler.BaseHandler, svc *problem.Service) *Handler {
	return &Handler{BaseHandler: base, svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ubs := r.Group("/ubs")
	{
		ubs.GET("/:id/problems", h.List)
		ubs.POST("/:id/problems", h.Create)
		ubs.GET("/problems/preview", h.Preview)
		ubs.PATCH("/problems/:id", h.Update)
		ubs.DELETE("/problems/:id", h.Delete)

		ubs.GET("/problems/:id/interventions", h.ListInterventions)
		ubs.POST("/problems/:id/interventions", h.CreateIntervention)
		ubs.PATCH("/interventions/:id", h.UpdateIntervention)
		ubs.DELETE("/interventions/:id", h.DeleteIntervention)

		ubs.GET("/interventions/:id/actions", h.ListActions)
		ubs.POST("/interventions/:id/actions", h.CreateAction)
		ubs.PATCH("/intervention-actions/:id", h.UpdateAction)
		ubs.DELETE("/intervention-actions/:id", h.DeleteAction)
	}
}

// List returns the problems of a report ranked by GUT level.
func (h *Handler) List(c *gin.Context) {
	ubsID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	problems, err := h.svc.List(c.Request.Context(), ubsID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(problems))
}

// Preview scores g, u and t without calling the API.
func (h *Handler) Preview(c *gin.Context) {
	var factors [3]int
	for i, name := range []string{"g", "u", "t"} {
		v, ok := handler.QueryInt(c, name, 0)
		if !ok {
			return
		}
		factors[i] = v
	}
	preview, err := h.svc.Preview(factors[0], factors[1], factors[2])
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(preview))
}

func (h *Handler) Create(c *gin.Context) {
	ubsID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var in model.ProblemInput
	if !handler.Bind(c, &in) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), ubsID, &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Problema cadastrado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityProblem, strconv.FormatInt(p.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(p))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var in model.ProblemInput
	if !handler.Bind(c, &in) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), id, &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Problema atualizado")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityProblem, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir problema",
			Message:      "O problema, suas intervenções e ações serão excluídos.",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Problema excluído",
		EntityType: model.AuditEntityProblem,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.Delete(ctx, id)
	})
}

func (h *Handler) ListInterventions(c *gin.Context) {
	problemID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListInterventions(c.Request.Context(), problemID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if items == nil {
		items = []model.Intervention{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) CreateIntervention(c *gin.Context) {
	problemID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var in model.Intervention
	if !handler.Bind(c, &in) {
		return
	}
	out, err := h.svc.CreateIntervention(c.Request.Context(), problemID, &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Intervenção cadastrada")
	h.Record(c, model.AuditActionCreate, model.AuditEntityProblem, c.Param("id"))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

func (h *Handler) UpdateIntervention(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var in model.Intervention
	if !handler.Bind(c, &in) {
		return
	}
	out, err := h.svc.UpdateIntervention(c.Request.Context(), id, &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Intervenção atualizada")
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) DeleteIntervention(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir intervenção",
			Message:      "A intervenção e suas ações serão excluídas.",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Intervenção excluída",
		EntityType: model.AuditEntityProblem,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.DeleteIntervention(ctx, id)
	})
}

func (h *Handler) ListActions(c *gin.Context) {
	interventionID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	items, err := h.svc.ListActions(c.Request.Context(), interventionID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if items == nil {
		items = []model.InterventionAction{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) CreateAction(c *gin.Context) {
	interventionID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var in model.InterventionAction
	if !handler.Bind(c, &in) {
		return
	}
	out, err := h.svc.CreateAction(c.Request.Context(), interventionID, &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Ação cadastrada")
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

func (h *Handler) UpdateAction(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var in model.InterventionAction
	if !handler.Bind(c, &in) {
		return
	}
	out, err := h.svc.UpdateAction(c.Request.Context(), id, &in)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Ação atualizada")
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) DeleteAction(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir ação",
			Message:      "Excluir esta ação do plano?",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Ação excluída",
		EntityType: model.AuditEntityProblem,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.DeleteAction(ctx, id)
	})
}
