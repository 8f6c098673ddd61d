package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/session"
)

const ContextSession = "session"

// SessionFrom returns the session RequireSession attached to the request.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}

// SessionID returns the id of the request session, or "".
func SessionID(c *gin.Context) string {
	if sess, ok := SessionFrom(c); ok {
		return sess.ID
	}
	return ""
}
