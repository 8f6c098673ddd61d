package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog records one mutation made through the console.
type AuditLog struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	UserID     int64           `json:"user_id" db:"user_id"`
	Role       string          `json:"role" db:"role"`
	Action     string          `json:"action" db:"action"`
	EntityType string          `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Status     int             `json:"status" db:"status"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	IPAddress  string          `json:"ip_address" db:"ip_address"`
	UserAgent  string          `json:"user_agent" db:"user_agent"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
	AuditActionSubmit = "submit"
	AuditActionLogin  = "login"
	AuditActionLogout = "logout"

	AuditEntitySession     = "session"
	AuditEntityReport      = "report"
	AuditEntityProblem     = "problem"
	AuditEntityAppointment = "appointment"
	AuditEntityEvent       = "event"
	AuditEntityMaterial    = "material"
	AuditEntityMicroarea   = "microarea"
	AuditEntityAgent       = "agent"
	AuditEntitySupport     = "support"
	AuditEntityRequest     = "professional_request"
	AuditEntityUser        = "user"
	AuditEntityIndicator   = "indicator"
	AuditEntityAttachment  = "attachment"
	AuditEntityBlock       = "block"
)

// AuditFilter narrows an audit listing. Zero values are ignored.
type AuditFilter struct {
	UserID     int64
	Action     string
	EntityType string
	Since      time.Time
	Until      time.Time
	Limit      int
	Offset     int
}
