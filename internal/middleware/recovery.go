package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery turns a panic into a 500 for the request. A panic caused by the
// browser going away is logged at debug and gets no response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && (errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)) {
				log.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("Client went away")
				c.Abort()
				return
			}

			event := log.Error().
				Interface("error", rec).
				Str("stack", string(debug.Stack())).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("request_id", c.GetString(ContextRequestID))
			if sess, ok := SessionFrom(c); ok {
				event = event.Int64("user_id", sess.User.ID).Str("role", string(sess.Role()))
			}
			event.Msg("Request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: msgInternal,
				TraceID: c.GetString(ContextRequestID),
			})
		}()
		c.Next()
	}
}
