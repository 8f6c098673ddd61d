// Package team manages microareas and the community health agents covering them.
package team

import (
	"context"
	"strings"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

type Service struct {
	repo repository.TeamRepository
}

func NewService(repo repository.TeamRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) KPIs(ctx context.Context, ubsID int64) (*model.TerritoryKPIs, error) {
	return s.repo.KPIs(ctx, ubsID)
}

func (s *Service) ListMicroareas(ctx context.Context, ubsID int64) ([]model.Microarea, error) {
	return s.repo.ListMicroareas(ctx, ubsID)
}

func (s *Service) CreateMicroarea(ctx context.Context, m *model.Microarea) (*model.Microarea, error) {
	m.Nome = strings.TrimSpace(m.Nome)
	if m.Status == "" {
		m.Status = model.MicroareaCoberta
	}
	if err := validateCounts(&m.Populacao, &m.Familias); err != nil {
		return nil, err
	}
	if m.Nome == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "nome", Message: "informe o nome da microárea", Code: "required"})
	}
	return s.repo.CreateMicroarea(ctx, m)
}

func (s *Service) UpdateMicroarea(ctx context.Context, id int64, p *model.MicroareaPatch) (*model.Microarea, error) {
	if err := validateCounts(p.Populacao, p.Familias); err != nil {
		return nil, err
	}
	return s.repo.UpdateMicroarea(ctx, id, p)
}

func validateCounts(populacao, familias *int) error {
	var fields []apperrors.FieldError
	if populacao != nil && *populacao < 0 {
		fields = append(fields, apperrors.FieldError{Field: "populacao", Message: "não pode ser negativo", Code: "gte"})
	}
	if familias != nil && *familias < 0 {
		fields = append(fields, apperrors.FieldError{Field: "familias", Message: "não pode ser negativo", Code: "gte"})
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return nil
}

func (s *Service) ListAgents(ctx context.Context, ubsID int64) ([]model.Agent, error) {
	return s.repo.ListAgents(ctx, ubsID)
}

func (s *Service) CreateAgent(ctx context.Context, a *model.Agent) (*model.Agent, error) {
	if a.Ativo == nil {
		active := true
		a.Ativo = &active
	}
	return s.repo.CreateAgent(ctx, a)
}

func (s *Service) UpdateAgent(ctx context.Context, id int64, p *model.AgentPatch) (*model.Agent, error) {
	return s.repo.UpdateAgent(ctx, id, p)
}

func (s *Service) ListACSUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.ListACSUsers(ctx)
}
