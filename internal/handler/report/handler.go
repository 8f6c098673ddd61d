package report

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/report"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

// ResourceName is the guard check that tells whether any report exists.
const ResourceName = "ubs"

type Handler struct {
	handler.BaseHandler
	svc         *report.Service
	guard       *middleware.Guard
	uploadLimit int64
}

func NewHandler(base handler.BaseHandler, svc *report.Service, guard *middleware.Guard, uploadLimit int64) *Handler {
	if uploadLimit <= 0 {
		uploadLimit = apiclient.MaxUploadBytes
	}
	return &Handler{BaseHandler: base, svc: svc, guard: guard, uploadLimit: uploadLimit}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ubs := r.Group("/ubs")
	{
		ubs.GET("", h.List)
		ubs.POST("", h.Create)
		ubs.GET("/:id", h.Get)
		ubs.DELETE("/:id", h.Delete)

		ubs.PATCH("/:id/fields", h.Edit)
		ubs.POST("/:id/save", h.Save)
		ubs.POST("/:id/reload", h.Reload)
		ubs.POST("/:id/submit", h.Submit)
		ubs.GET("/:id/export/pdf", h.Export)

		ubs.PUT("/:id/territory", h.PutTerritory)
		ubs.PUT("/:id/needs", h.PutNeeds)
		ubs.POST("/:id/professionals", h.AddProfessionalGroup)
		ubs.PATCH("/professionals/:id", h.UpdateProfessionalGroup)
		ubs.DELETE("/professionals/:id", h.DeleteProfessionalGroup)
		ubs.POST("/:id/indicators", h.AddIndicator)
		ubs.DELETE("/indicators/:id", h.DeleteIndicator)
		ubs.POST("/:id/attachments", h.UploadAttachment)
		ubs.DELETE("/attachments/:id", h.DeleteAttachment)
	}
}

// ResourceCheck reports whether the signed-in user can see at least one report.
func (h *Handler) ResourceCheck() middleware.ResourceCheck {
	return middleware.ResourceCheck{
		Name: ResourceName,
		Exists: func(ctx context.Context) (bool, error) {
			page, err := h.svc.List(ctx, 1, 1)
			if err != nil {
				return false, err
			}
			return page.Total > 0 || len(page.Items) > 0, nil
		},
	}
}

func (h *Handler) List(c *gin.Context) {
	page, ok := handler.QueryInt(c, "page", 1)
	if !ok {
		return
	}
	size, ok := handler.QueryInt(c, "page_size", 0)
	if !ok {
		return
	}
	reports, err := h.svc.List(c.Request.Context(), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(reports))
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateReportRequest
	if !handler.Decode(c, &req) {
		return
	}
	rep, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.guard.Invalidate(middleware.SessionID(c), ResourceName)
	h.Notify(c, "Relatório criado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityReport, strconv.FormatInt(rep.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rep))
}

func (h *Handler) Delete(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir relatório",
			Message:      "O relatório e todas as seções serão excluídos. Esta ação não pode ser desfeita.",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Relatório excluído",
		EntityType: model.AuditEntityReport,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		if err := h.svc.Delete(ctx, sess, id); err != nil {
			return err
		}
		h.guard.Invalidate(sess.ID, ResourceName)
		return nil
	})
}

// Get opens the editor of a report and returns its current view.
func (h *Handler) Get(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	_, view, err := h.svc.Editor(c.Request.Context(), sess, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

type fieldEdit struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// Edit changes one header field. The change is saved once edits settle.
func (h *Handler) Edit(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req fieldEdit
	if !handler.Bind(c, &req) {
		return
	}
	view, err := h.svc.Edit(c.Request.Context(), sess, id, req.Field, req.Value)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) Save(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Save(c.Request.Context(), sess, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Record(c, model.AuditActionUpdate, model.AuditEntityReport, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

func (h *Handler) Reload(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	view, err := h.svc.Reload(c.Request.Context(), sess, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(view))
}

// Submit flushes pending edits and submits. Fields the API refuses come back
// as 422 and as a toast listing each message as the API wrote it.
func (h *Handler) Submit(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), sess, id)
	if err != nil {
		var rejected *report.SubmitRejected
		if errors.As(err, &rejected) {
			h.Center.Error(sess.ID, rejected.Error())
			c.JSON(http.StatusUnprocessableEntity, middleware.ErrorResponse{
				Code:    http.StatusUnprocessableEntity,
				Message: rejected.Error(),
				Errors:  rejected.Fields,
				TraceID: c.GetString(middleware.ContextRequestID),
			})
			return
		}
		_ = c.Error(err)
		return
	}

	h.Notify(c, "Relatório enviado")
	h.Record(c, model.AuditActionSubmit, model.AuditEntityReport, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(res))
}

func (h *Handler) Export(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	blob, err := h.svc.Export(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if blob.Filename == "" {
		blob.Filename = "relatorio-situacional-" + c.Param("id") + ".pdf"
	}
	handler.SendBlob(c, blob)
}

func (h *Handler) PutTerritory(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var t model.Territory
	if !handler.Bind(c, &t) {
		return
	}
	out, err := h.svc.PutTerritory(c.Request.Context(), id, &t)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Território salvo")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityReport, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) PutNeeds(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var n model.Needs
	if !handler.Bind(c, &n) {
		return
	}
	out, err := h.svc.PutNeeds(c.Request.Context(), id, &n)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Necessidades salvas")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityReport, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) AddProfessionalGroup(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var g model.ProfessionalGroup
	if !handler.Bind(c, &g) {
		return
	}
	out, err := h.svc.AddProfessionalGroup(c.Request.Context(), id, &g)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Profissionais adicionados")
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

func (h *Handler) UpdateProfessionalGroup(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var g model.ProfessionalGroup
	if !handler.Bind(c, &g) {
		return
	}
	out, err := h.svc.UpdateProfessionalGroup(c.Request.Context(), id, &g)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Profissionais atualizados")
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) DeleteProfessionalGroup(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Remover profissionais",
			Message:      "Remover este grupo de profissionais do relatório?",
			ConfirmLabel: "Remover",
			Tone:         notify.ToneDanger,
		},
		Success:    "Profissionais removidos",
		EntityType: model.AuditEntityReport,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.DeleteProfessionalGroup(ctx, id)
	})
}

func (h *Handler) AddIndicator(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var ind model.Indicator
	if !handler.Bind(c, &ind) {
		return
	}
	out, err := h.svc.AddIndicator(c.Request.Context(), id, &ind)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Indicador adicionado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityIndicator, strconv.FormatInt(out.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(out))
}

func (h *Handler) DeleteIndicator(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir indicador",
			Message:      "Excluir este indicador?",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Indicador excluído",
		EntityType: model.AuditEntityIndicator,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.DeleteIndicator(ctx, id)
	})
}

func (h *Handler) UploadAttachment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	file, ok := handler.FormFile(c, "file", h.uploadLimit, true)
	if !ok {
		return
	}
	att, err := h.svc.UploadAttachment(c.Request.Context(), id, *file, c.PostForm("section"), c.PostForm("description"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Anexo enviado")
	h.Record(c, model.AuditActionCreate, model.AuditEntityAttachment, strconv.FormatInt(att.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(att))
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	h.Confirm(c, handler.Destructive{
		Options: notify.ConfirmOptions{
			Title:        "Excluir anexo",
			Message:      "Excluir este anexo do relatório?",
			ConfirmLabel: "Excluir",
			Tone:         notify.ToneDanger,
		},
		Success:    "Anexo excluído",
		EntityType: model.AuditEntityAttachment,
		EntityID:   c.Param("id"),
	}, func(ctx context.Context) error {
		return h.svc.DeleteAttachment(ctx, id)
	})
}
