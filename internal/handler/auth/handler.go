package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ubs-console/internal/handler"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/auth"
	"github.com/jwalitptl/ubs-console/internal/session"
)

type Handler struct {
	handler.BaseHandler
	svc     *auth.Service
	cookies *session.Cookies
	guard   *middleware.Guard
	limiter *middleware.IPRateLimiter
}

// NewHandler builds the account endpoints. limiter throttles login attempts
// per client IP and may be nil.
func NewHandler(base handler.BaseHandler, svc *auth.Service, cookies *session.Cookies, guard *middleware.Guard, limiter *middleware.IPRateLimiter) *Handler {
	return &Handler{BaseHandler: base, svc: svc, cookies: cookies, guard: guard, limiter: limiter}
}

// RegisterPublicRoutes mounts the endpoints reachable without a session.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		login := []gin.HandlerFunc{h.Login}
		if h.limiter != nil {
			login = append([]gin.HandlerFunc{h.limiter.RateLimit()}, login...)
		}
		auth.POST("/login", login...)
		auth.POST("/register", h.Register)
		auth.GET("/flashes", h.Flashes)
	}
}

// RegisterRoutes mounts the endpoints that need a session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.Me)
		auth.POST("/profissional/claim", h.ClaimProfessional)
		auth.POST("/professional-requests/me", h.CreateProfessionalRequest)
		auth.GET("/professional-requests/me", h.MyProfessionalRequest)

		gestor := auth.Group("", h.guard.RequireRoles(model.RoleGestor))
		gestor.POST("/reset-password", h.ResetPassword)
		gestor.GET("/professional-requests", h.ListProfessionalRequests)
		gestor.POST("/professional-requests/:id/approve", h.ApproveProfessionalRequest)
		gestor.POST("/professional-requests/:id/reject", h.RejectProfessionalRequest)
	}
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.Bind(c, &req) {
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.cookies.SetSessionID(c.Writer, c.Request, sess.ID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Set(middleware.ContextSession, sess)
	h.Record(c, model.AuditActionLogin, model.AuditEntitySession, "")
	log.Info().Int64("user_id", sess.User.ID).Str("role", string(sess.Role())).Msg("User logged in")

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"user":       sess.User,
		"role":       sess.Role(),
		"expires_at": sess.ExpiresAt,
	}))
}

func (h *Handler) Logout(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	h.Record(c, model.AuditActionLogout, model.AuditEntitySession, "")
	if err := h.svc.Logout(c.Request.Context(), sess); err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.cookies.Clear(c.Writer, c.Request); err != nil {
		log.Warn().Err(err).Msg("Failed to clear session cookie")
	}
	c.JSON(http.StatusOK, handler.NewMessageResponse("Sessão encerrada", nil))
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.Decode(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewMessageResponse("Cadastro realizado. Faça login para continuar.", user))
}

// Flashes pops the messages left for the login page.
func (h *Handler) Flashes(c *gin.Context) {
	flashes, err := h.cookies.Flashes(c.Writer, c.Request)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read flashes")
	}
	if flashes == nil {
		flashes = []string{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(flashes))
}

func (h *Handler) Me(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	user, err := h.svc.Refresh(c.Request.Context(), sess)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"user": user, "role": user.EffectiveRole()}))
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if !handler.Decode(c, &req) {
		return
	}
	if err := h.svc.ResetPassword(c.Request.Context(), &req); err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Senha redefinida")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityUser, strings.ToLower(strings.TrimSpace(req.Email)))
	c.JSON(http.StatusOK, handler.NewMessageResponse("Senha redefinida", nil))
}

func (h *Handler) ClaimProfessional(c *gin.Context) {
	sess, ok := h.Session(c)
	if !ok {
		return
	}
	var claim model.ProfessionalClaim
	if !handler.Bind(c, &claim) {
		return
	}
	user, err := h.svc.ClaimProfessional(c.Request.Context(), sess, &claim)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Perfil profissional vinculado")
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"user": user, "role": user.EffectiveRole()}))
}

func (h *Handler) CreateProfessionalRequest(c *gin.Context) {
	var claim model.ProfessionalClaim
	if !handler.Bind(c, &claim) {
		return
	}
	req, err := h.svc.CreateProfessionalRequest(c.Request.Context(), &claim)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Solicitação enviada")
	h.Record(c, model.AuditActionCreate, model.AuditEntityRequest, strconv.FormatInt(req.ID, 10))
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(req))
}

func (h *Handler) MyProfessionalRequest(c *gin.Context) {
	req, err := h.svc.MyProfessionalRequest(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(req))
}

func (h *Handler) ListProfessionalRequests(c *gin.Context) {
	reqs, err := h.svc.ListProfessionalRequests(c.Request.Context(), c.Query("status"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if reqs == nil {
		reqs = []model.ProfessionalRequest{}
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(reqs))
}

func (h *Handler) ApproveProfessionalRequest(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	req, err := h.svc.ApproveProfessionalRequest(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.Notify(c, "Solicitação aprovada")
	h.Record(c, model.AuditActionUpdate, model.AuditEntityRequest, c.Param("id"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(req))
}

// RejectProfessionalRequest rejects right away when the body carries a
// reason, and asks for one otherwise.
func (h *Handler) RejectProfessionalRequest(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Motivo string `json:"motivo"`
	}
	if !handler.Decode(c, &body) {
		return
	}

	if strings.TrimSpace(body.Motivo) != "" {
		req, err := h.svc.RejectProfessionalRequest(c.Request.Context(), id, body.Motivo)
		if err != nil {
			_ = c.Error(err)
			return
		}
		h.Notify(c, "Solicitação rejeitada")
		h.Record(c, model.AuditActionUpdate, model.AuditEntityRequest, c.Param("id"))
		c.JSON(http.StatusOK, handler.NewSuccessResponse(req))
		return
	}

	opts := notify.PromptOptions{
		Title:        "Rejeitar solicitação",
		Message:      "Informe o motivo da rejeição. O solicitante verá este texto.",
		Label:        "Motivo",
		ConfirmLabel: "Rejeitar",
		Required:     true,
	}
	h.Prompt(c, opts, "Solicitação rejeitada", func(ctx context.Context, motivo string) error {
		_, err := h.svc.RejectProfessionalRequest(ctx, id, motivo)
		return err
	})
}
