package team

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/service/team"
)

// ManagerRoles may open team management.
var ManagerRoles = []model.Role{model.RoleGestor, model.RoleRecepcao}

type Handler struct {
	handler.BaseHandler
	svc   *team.Service
	guard *middleware.Guard
}

func NewHandler(base handler.BaseHandler, svc *team.Service, guard *middleware.Guard) *Handler {
	return &Handler{BaseHandler: base, svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	teams := r.Group("/gestao-equipes", h.guard.RequireRoles(ManagerRoles...))
	{
		teams.GET("/kpis", h.KPIs)
		teams.GET("/microareas", h.ListMicroareas)
		teams.POST("/microareas", h.CreateMicroarea)
		teams.PATCH("/microareas/:id", h.UpdateMicroarea)
		teams.GET("/agentes", h.ListAgents)
		teams.POST("/agentes", h.CreateAgent)
		teams.PATCH("/agentes/:id", h.UpdateAgent)
		teams.GET("/acs-users", h.ListACSUsers)
	}
}

func (h *Handler) KPIs(c *gin.Context) {
	ubsID, ok := handler.QueryID(c, "ubs_id")
	if !ok {
		return
	}
	kpis, err := h.svc.KPIs(c.Request.Context(), ubsID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(kpis))
}

func (h *Handler) ListMicroareas(c *gin.Context) {
	ubsID, ok := handler.QueryID(c, "ubs_id")
	if !ok {
		return
	}
	list, err := h.svc.ListMicroareas(c.Request.Context(), ubsID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []model.Microarea{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) CreateMicroarea(c *gin.Context) {
	var m model.Microarea
	if !handler.Bind(c, &m) {
		return
	}
	created, err := h.svc.CreateMicroarea(c.Request.Context(), &m)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Microárea cadastrada")
	h.Record(c, model.AuditActionCreate, model.AuditEntityMicroarea, strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) UpdateMicroarea(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var patch model.MicroareaPatch
	if !handler.Bind(c, &patch) {
		return
	}
	updated, err := h.svc.UpdateMicroarea(c.Request.Context(), id, &patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Microárea atualizada")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityMicroarea, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) ListAgents(c *gin.Context) {
	ubsID, ok := handler.QueryID(c, "ubs_id")
	if !ok {
		return
	}
	list, err := h.svc.ListAgents(c.Request.Context(), ubsID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []model.Agent{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) CreateAgent(c *gin.Context) {
	var a model.Agent
	if !handler.Bind(c, &a) {
		return
	}
	created, err := h.svc.CreateAgent(c.Request.Context(), &a)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Agente vinculado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityAgent, strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) UpdateAgent(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var patch model.AgentPatch
	if !handler.Bind(c, &patch) {
		return
	}
	updated, err := h.svc.UpdateAgent(c.Request.Context(), id, &patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Agente atualizado")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityAgent, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) ListACSUsers(c *gin.Context) {
	users, err := h.svc.ListACSUsers(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}
