package support

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/service/support"
)

type Handler struct {
	handler.BaseHandler
	svc   *support.Service
	guard *middleware.Guard
}

func NewHandler(base handler.BaseHandler, svc *support.Service, guard *middleware.Guard) *Handler {
	return &Handler{BaseHandler: base, svc: svc, guard: guard}
}

// RegisterRoutes lets anyone signed in write to support. Only the reception
// desk reads and triages the inbox.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/suporte-feedback")
	{
		messages.POST("", h.Create)

		desk := messages.Group("", h.guard.RequireRoles(model.RoleRecepcao))
		desk.GET("", h.List)
		desk.PATCH("/:id", h.UpdateStatus)
	}
}

func (h *Handler) Create(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	var req model.SupportRequest
	if !handler.Bind(c, &req) {
		return
	}
	msg, err := h.svc.Create(c.Request.Context(), sess.User, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Mensagem enviada ao suporte")
	h.Record(c, model.AuditActionCreate, model.AuditEntitySupport, strconv.FormatInt(msg.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(msg))
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []model.SupportMessage{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

// UpdateStatus marks a message PENDENTE or LIDA.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var body model.StatusUpdate
	if !handler.Bind(c, &body) {
		return
	}
	msg, err := h.svc.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Record(c, model.AuditActionUpdate, model.AuditEntitySupport, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(msg))
}
