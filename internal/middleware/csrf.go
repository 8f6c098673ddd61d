package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"
	"github.com/rs/zerolog/log"
)

const HeaderCSRFToken = "X-CSRF-Token"

type CSRFConfig struct {
	Key            []byte
	Secure         bool
	TrustedOrigins []string
}

// CSRF protects cookie-authenticated mutations. Every response carries the
// token to echo back in the X-CSRF-Token header.
func CSRF(config CSRFConfig) gin.HandlerFunc {
	protect := csrf.Protect(config.Key,
		csrf.Secure(config.Secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(HeaderCSRFToken),
		csrf.TrustedOrigins(config.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Warn().Err(csrf.FailureReason(r)).Str("path", r.URL.Path).Msg("CSRF check failed")
		})),
	)

	return func(c *gin.Context) {
		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "Token de segurança inválido. Recarregue a página.",
				TraceID: c.GetString(ContextRequestID),
			})
			return
		}
		c.Header(HeaderCSRFToken, csrf.Token(c.Request))
		c.Next()
	}
}
