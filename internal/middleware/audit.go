package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/ubs-console/internal/service/audit"
)

// AuditEntry describes a mutation made by the request session.
func AuditEntry(c *gin.Context, action, entityType, entityID string, status int) audit.Entry {
	e := audit.Entry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Status:     status,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
		Metadata: map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"request_id": c.GetString(ContextRequestID),
		},
	}
	if sess, ok := SessionFrom(c); ok {
		e.UserID = sess.User.ID
		e.Role = string(sess.Role())
	}
	return e
}
