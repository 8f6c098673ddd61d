package overlay

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/notify"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

// Handler serves the toasts and the dialog queue of the request session.
type Handler struct {
	handler.BaseHandler
}

func NewHandler(base handler.BaseHandler) *Handler {
	return &Handler{BaseHandler: base}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	overlay := r.Group("/overlay")
	{
		overlay.GET("", h.Get)
		overlay.DELETE("/toasts/:id", h.DismissToast)
		overlay.POST("/dialogs/:id", h.Answer)
	}
}

// Get returns the live toasts and the dialog at the head of the queue.
func (h *Handler) Get(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	out := gin.H{"toasts": h.Center.Toasts(sess.ID), "dialog": nil}
	if d, ok := h.Center.Current(sess.ID); ok {
		out["dialog"] = d
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) DismissToast(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	if !h.Center.Dismiss(sess.ID, c.Param("id")) {
		_ = c.Error(apperrors.NewNotFound("Aviso", nil))
		return
	}
	c.Status(http.StatusNoContent)
}

// Answer resolves one dialog of the queue.
func (h *Handler) Answer(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	var a notify.Answer
	if !handler.Decode(c, &a) {
		return
	}

	err := h.Center.Resolve(sess.ID, c.Param("id"), a)
	switch {
	case errors.Is(err, notify.ErrDialogNotFound):
		_ = c.Error(apperrors.NewNotFound("Diálogo", err))
		return
	case errors.Is(err, notify.ErrValueRequired):
		_ = c.Error(apperrors.NewValidation("Preencha o campo para continuar", apperrors.FieldError{
			Field: "value", Message: "Campo obrigatório", Code: "required",
		}))
		return
	case err != nil:
		_ = c.Error(err)
		return
	}

	next := gin.H{"dialog": nil}
	if d, ok := h.Center.Current(sess.ID); ok {
		next["dialog"] = d
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(next))
}
