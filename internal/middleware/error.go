package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
	"github.com/jwalitptl/ubs-console/pkg/validator"
)

const msgInternal = "Erro interno do servidor"

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code     int                    `json:"code"`
	Message  string                 `json:"message"`
	Errors   []apperrors.FieldError `json:"errors,omitempty"`
	TraceID  string                 `json:"trace_id,omitempty"`
	Redirect string                 `json:"redirect,omitempty"`
}

// ErrorConfig wires the error handler to session state. Every field is optional.
type ErrorConfig struct {
	Sessions *session.Manager
	Cookies  *session.Cookies
	Center   *notify.Center
}

// ErrorHandler renders the last error of the request. An unauthorized error
// ends the session and sends the user to login. Failed mutations also raise
// an error toast.
func ErrorHandler(cfg ErrorConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		traceID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("trace_id", traceID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last().Err
		if isUnauthorized(lastErr) {
			handleUnauthorized(c, cfg, lastErr, traceID)
			return
		}

		resp := Classify(lastErr)
		resp.TraceID = traceID
		if cfg.Center != nil && c.Request.Method != http.MethodGet {
			if id := SessionID(c); id != "" {
				cfg.Center.Error(id, resp.Message)
			}
		}
		c.JSON(resp.Code, resp)
	}
}

// Classify maps an error to the response the console sends for it.
func Classify(err error) ErrorResponse {
	if fields := validator.FieldErrors(err); len(fields) > 0 {
		return ErrorResponse{Code: http.StatusBadRequest, Message: "Verifique os campos destacados", Errors: fields}
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		msg := appErr.Message
		if msg == "" {
			msg = "Verifique os campos destacados"
		}
		return ErrorResponse{Code: appErr.StatusCode(), Message: msg, Errors: appErr.Fields}
	}

	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) {
		return ErrorResponse{Code: apiErr.StatusCode(), Message: apiErr.Message, Errors: apiErr.Fields}
	}

	var netErr *apiclient.NetworkError
	if errors.As(err, &netErr) {
		return ErrorResponse{Code: http.StatusBadGateway, Message: apiclient.CannotConnectMessage}
	}

	var tooLarge *apiclient.FileTooLargeError
	if errors.As(err, &tooLarge) {
		return ErrorResponse{Code: http.StatusRequestEntityTooLarge, Message: tooLarge.Error()}
	}

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return ErrorResponse{Code: http.StatusRequestEntityTooLarge, Message: "Requisição maior que o permitido"}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrorResponse{Code: http.StatusBadRequest, Message: "Dados inválidos"}
	}

	if sc, ok := err.(interface{ StatusCode() int }); ok {
		return ErrorResponse{Code: sc.StatusCode(), Message: err.Error()}
	}
	return ErrorResponse{Code: http.StatusInternalServerError, Message: msgInternal}
}

func isUnauthorized(err error) bool {
	if errors.Is(err, apiclient.ErrUnauthorized) || errors.Is(err, session.ErrExpired) {
		return true
	}
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrUnauthorized
}

// The API client already invalidated the session on a 401 from the API.
func handleUnauthorized(c *gin.Context, cfg ErrorConfig, err error, traceID string) {
	if sess, ok := SessionFrom(c); ok && cfg.Sessions != nil && !errors.Is(err, apiclient.ErrUnauthorized) {
		if err := cfg.Sessions.Invalidate(c.Request.Context(), sess.ID, session.ReasonUnauthorized); err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to invalidate session")
		}
	}
	if cfg.Cookies != nil {
		if err := cfg.Cookies.ClearWithFlash(c.Writer, c.Request, MsgSessionExpired); err != nil {
			log.Warn().Err(err).Msg("Failed to clear session cookie")
		}
	}

	if WantsHTML(c) {
		c.Redirect(http.StatusFound, LoginPath)
		return
	}
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Code:     http.StatusUnauthorized,
		Message:  MsgSessionExpired,
		TraceID:  traceID,
		Redirect: LoginPath,
	})
}
