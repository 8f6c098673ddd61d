package postgres

import (
	"testing"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBuildAuditWhere(t *testing.T) {
	where, args := buildAuditWhere(model.AuditFilter{})
	assert.Equal(t, "WHERE 1=1", where)
	assert.Empty(t, args)

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	where, args = buildAuditWhere(model.AuditFilter{UserID: 7, Action: "delete", Since: since})
	assert.Equal(t, "WHERE 1=1 AND user_id = $1 AND action = $2 AND created_at >= $3", where)
	assert.Equal(t, []interface{}{int64(7), "delete", since}, args)
}
