package material

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/material"
)

// EditorRoles may publish and remove materials.
var EditorRoles = []model.Role{model.RoleGestor, model.RoleProfissional}

type Handler struct {
	handler.BaseHandler
	svc   *material.Service
	guard *middleware.Guard
}

func NewHandler(base handler.BaseHandler, svc *material.Service, guard *middleware.Guard) *Handler {
	return &Handler{BaseHandler: base, svc: svc, guard: guard}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	materials := r.Group("/materiais")
	{
		materials.GET("", h.List)
		materials.GET("/files/:id/download", h.Download)

		edit := materials.Group("", h.guard.RequireRoles(EditorRoles...))
		edit.POST("", h.Create)
		edit.PATCH("/:id", h.Update)
		edit.DELETE("/:id", h.Delete)
		edit.POST("/:id/files", h.AddFile)
		edit.DELETE("/files/:id", h.DeleteFile)
	}
}

func (h *Handler) List(c *gin.Context) {
	ubsID, ok := handler.QueryID(c, "ubs_id")
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), ubsID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if list == nil {
		list = []model.Material{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

// Create takes a multipart form with the material fields and an optional file.
func (h *Handler) Create(c *gin.Context) {
	var in model.MaterialInput
	if err := c.ShouldBindWith(&in, binding.FormMultipart); err != nil {
		_ = c.Error(err)
		return
	}
	file, ok := handler.FormFile(c, "file", h.svc.MaxUploadBytes(), false)
	if !ok {
		return
	}

	created, err := h.svc.Create(c.Request.Context(), &in, file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Material publicado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityMaterial, strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var patch model.MaterialPatch
	if !handler.Bind(c, &patch) {
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), id, &patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Material atualizado")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityMaterial, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir material",
			Message:      "O material e todos os seus arquivos serão excluídos.",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Material excluído",
		EntityType: model.AuditEntityMaterial,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.Delete(ctx, id)
	})
}

func (h *Handler) AddFile(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	file, ok := handler.FormFile(c, "file", h.svc.MaxUploadBytes(), true)
	if !ok {
		return
	}
	added, err := h.svc.AddFile(c.Request.Context(), id, *file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Arquivo enviado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityMaterial, c.Param("id"))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(added))
}

func (h *Handler) DeleteFile(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir arquivo",
			Message:      "O arquivo será removido do material.",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Arquivo excluído",
		EntityType: model.AuditEntityMaterial,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.DeleteFile(ctx, id)
	})
}

// Download proxies the file with the session's bearer token so the token
// never appears in a link.
func (h *Handler) Download(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	blob, err := h.svc.Download(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	handler.SendBlob(c, blob)
}
