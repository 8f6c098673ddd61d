// Package problem manages GUT-prioritized problems with their interventions
// and actions.
package problem

import (
	"context"
	"errors"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
	"github.com/jwalitptl/ubs-console/pkg/gut"
	"github.com/jwalitptl/ubs-console/pkg/logger"
	"github.com/jwalitptl/ubs-console/pkg/metrics"
)

// Ranked is a problem with its priority level as shown in the list.
type Ranked struct {
	model.Problem
	Level gut.Level `json:"gut_level"`
	Tone  string    `json:"gut_tone"`
}

// Preview is the live score of a form that has not been saved.
type Preview struct {
	Score int       `json:"gut_score"`
	Level gut.Level `json:"gut_level"`
	Tone  string    `json:"gut_tone"`
}

type Service struct {
	repo    repository.ProblemRepository
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.ProblemRepository, m *metrics.Metrics, l *logger.Logger) *Service {
	if l == nil {
		l = logger.Nop()
	}
	return &Service{repo: repo, metrics: m, logger: l.With("problem")}
}

// List returns the problems of a UBS. Every stored score is checked against
// the recomputed product; the stored value is the one displayed.
func (s *Service) List(ctx context.Context, ubsID int64) ([]Ranked, error) {
	problems, err := s.repo.List(ctx, ubsID)
	if err != nil {
		return nil, err
	}
	out := make([]Ranked, 0, len(problems))
	for _, p := range problems {
		s.checkScore(p)
		level := gut.Classify(p.Score)
		out = append(out, Ranked{Problem: p, Level: level, Tone: level.Tone()})
	}
	return out, nil
}

func (s *Service) checkScore(p model.Problem) {
	want, err := gut.Score(p.Gravidade, p.Urgencia, p.Tendencia)
	if err == nil && want == p.Score {
		return
	}
	if s.metrics != nil {
		s.metrics.GUTScoreMismatch.Inc()
	}
	s.logger.Warn("Stored GUT score differs from recomputed value",
		"problem_id", p.ID, "stored", p.Score, "recomputed", want)
}

// Preview scores a form without calling the API.
func (s *Service) Preview(g, u, t int) (Preview, error) {
	score, err := gut.Score(g, u, t)
	if err != nil {
		return Preview{}, factorError(err)
	}
	level := gut.Classify(score)
	return Preview{Score: score, Level: level, Tone: level.Tone()}, nil
}

func (s *Service) Create(ctx context.Context, ubsID int64, in *model.ProblemInput) (*model.Problem, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, ubsID, in)
}

func (s *Service) Update(ctx context.Context, id int64, in *model.ProblemInput) (*model.Problem, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func validateInput(in *model.ProblemInput) error {
	if _, err := gut.Score(in.Gravidade, in.Urgencia, in.Tendencia); err != nil {
		return factorError(err)
	}
	return nil
}

func factorError(err error) error {
	var fe *gut.FactorError
	if errors.As(err, &fe) {
		return apperrors.Validation(apperrors.FieldError{Field: fe.Field, Message: fe.Error(), Code: "range"})
	}
	return err
}

func (s *Service) ListInterventions(ctx context.Context, problemID int64) ([]model.Intervention, error) {
	return s.repo.ListInterventions(ctx, problemID)
}

func (s *Service) CreateIntervention(ctx context.Context, problemID int64, in *model.Intervention) (*model.Intervention, error) {
	if in.Status == "" {
		in.Status = model.StatusPlanejado
	}
	return s.repo.CreateIntervention(ctx, problemID, in)
}

func (s *Service) UpdateIntervention(ctx context.Context, id int64, in *model.Intervention) (*model.Intervention, error) {
	return s.repo.UpdateIntervention(ctx, id, in)
}

func (s *Service) DeleteIntervention(ctx context.Context, id int64) error {
	return s.repo.DeleteIntervention(ctx, id)
}

func (s *Service) ListActions(ctx context.Context, interventionID int64) ([]model.InterventionAction, error) {
	return s.repo.ListActions(ctx, interventionID)
}

func (s *Service) CreateAction(ctx context.Context, interventionID int64, in *model.InterventionAction) (*model.InterventionAction, error) {
	if in.Status == "" {
		in.Status = model.StatusPlanejado
	}
	return s.repo.CreateAction(ctx, interventionID, in)
}

func (s *Service) UpdateAction(ctx context.Context, id int64, in *model.InterventionAction) (*model.InterventionAction, error) {
	return s.repo.UpdateAction(ctx, id, in)
}

func (s *Service) DeleteAction(ctx context.Context, id int64) error {
	return s.repo.DeleteAction(ctx, id)
}
