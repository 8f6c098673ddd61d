package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
)

// Service records console mutations. A nil repository turns it into a no-op.
type Service struct {
	repo    repository.AuditRepository
	metrics *metrics.Metrics
}

func NewService(repo repository.AuditRepository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m}
}

// Enabled reports whether entries are persisted.
func (s *Service) Enabled() bool {
	return s != nil && s.repo != nil
}

type Entry struct {
	UserID     int64
	Role       string
	Action     string
	EntityType string
	EntityID   string
	Status     int
	Metadata   interface{}
	IPAddress  string
	UserAgent  string
}

func (s *Service) Log(ctx context.Context, e Entry) error {
	if !s.Enabled() {
		return nil
	}

	var metadata json.RawMessage
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return err
		}
		metadata = raw
	}

	err := s.repo.Create(ctx, &model.AuditLog{
		ID:         uuid.New(),
		UserID:     e.UserID,
		Role:       e.Role,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Status:     e.Status,
		Metadata:   metadata,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
		CreatedAt:  time.Now().UTC(),
	})
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.AuditRecords.WithLabelValues(status).Inc()
	}
	return err
}

func (s *Service) List(ctx context.Context, f model.AuditFilter) (*model.Page[*model.AuditLog], error) {
	if !s.Enabled() {
		return nil, apperrors.NewBadRequest("Trilha de auditoria desabilitada", nil)
	}
	logs, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	page := 1
	if f.Limit > 0 {
		page = f.Offset/f.Limit + 1
	}
	return &model.Page[*model.AuditLog]{Items: logs, Total: int(total), Page: page, PageSize: f.Limit}, nil
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	return s.repo.Cleanup(ctx, before)
}
