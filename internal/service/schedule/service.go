// Package schedule manages the UBS cronograma: vaccination room hours,
// pharmacy hours, team meetings and other recurring events.
package schedule

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

type Service struct {
	repo repository.ScheduleRepository
}

func NewService(repo repository.ScheduleRepository) *Service {
	return &Service{repo: repo}
}

func fieldError(field, message, code string) error {
	return apperrors.Validation(apperrors.FieldError{Field: field, Message: message, Code: code})
}

func (s *Service) List(ctx context.Context, ubsID int64, start, end *time.Time) ([]model.Event, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, fieldError("end", "o fim do período deve ser posterior ao início", "date_order")
	}
	return s.repo.List(ctx, ubsID, start, end)
}

// Calendar returns every occurrence in [from, to], recurring events that
// started earlier included.
func (s *Service) Calendar(ctx context.Context, ubsID int64, from, to time.Time) ([]model.Occurrence, error) {
	if to.Before(from) {
		return nil, fieldError("end", "o fim do período deve ser posterior ao início", "date_order")
	}
	events, err := s.repo.List(ctx, ubsID, nil, &to)
	if err != nil {
		return nil, err
	}
	out := []model.Occurrence{}
	for _, ev := range events {
		out = append(out, Occurrences(ev, from, to)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Inicio.Before(out[j].Inicio.Time)
	})
	return out, nil
}

func (s *Service) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	ev.Titulo = strings.TrimSpace(ev.Titulo)
	if ev.Tipo == "" {
		ev.Tipo = model.EventOutro
	}
	if ev.Recorrencia == "" {
		ev.Recorrencia = model.RecurrenceNone
	}
	if ev.RecorrenciaIntervalo == 0 {
		ev.RecorrenciaIntervalo = 1
	}
	if ev.DiaInteiro {
		var fim *time.Time
		if ev.Fim != nil {
			fim = &ev.Fim.Time
		}
		start, end := NormalizeAllDay(ev.Inicio.Time, fim)
		ev.Inicio = model.Timestamp{Time: start}
		ev.Fim = model.NewTimestamp(end)
	}
	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, ev)
}

func validateEvent(ev *model.Event) error {
	if ev.Titulo == "" {
		return fieldError("titulo", "informe o título", "required")
	}
	if ev.Inicio.IsZero() {
		return fieldError("inicio", "informe o início", "required")
	}
	if ev.RecorrenciaIntervalo < 1 {
		return fieldError("recorrencia_intervalo", "o intervalo deve ser de pelo menos 1", "min")
	}
	if ev.Fim != nil && !ev.Fim.IsZero() && ev.Fim.Before(ev.Inicio.Time) {
		return fieldError("fim", "o fim não pode ser anterior ao início", "date_order")
	}
	if ev.RecorrenciaFim != nil && !ev.RecorrenciaFim.IsZero() {
		startDay := model.NewDate(ev.Inicio.Time)
		if ev.RecorrenciaFim.Before(startDay.Time) {
			return fieldError("recorrencia_fim", "o fim da recorrência não pode ser anterior à data de início", "date_order")
		}
	}
	return nil
}

// Update sends a partial change. Rules are checked on the fields present;
// the API re-checks against the stored event.
func (s *Service) Update(ctx context.Context, id int64, patch *model.EventPatch) (*model.Event, error) {
	if patch.Titulo != nil {
		t := strings.TrimSpace(*patch.Titulo)
		if t == "" {
			return nil, fieldError("titulo", "informe o título", "required")
		}
		patch.Titulo = &t
	}
	if patch.RecorrenciaIntervalo != nil && *patch.RecorrenciaIntervalo < 1 {
		return nil, fieldError("recorrencia_intervalo", "o intervalo deve ser de pelo menos 1", "min")
	}
	if patch.DiaInteiro != nil && *patch.DiaInteiro && patch.Inicio != nil {
		var fim *time.Time
		if patch.Fim != nil {
			fim = &patch.Fim.Time
		}
		start, end := NormalizeAllDay(patch.Inicio.Time, fim)
		patch.Inicio = model.NewTimestamp(start)
		patch.Fim = model.NewTimestamp(end)
	}
	if patch.Inicio != nil && patch.Fim != nil && patch.Fim.Before(patch.Inicio.Time) {
		return nil, fieldError("fim", "o fim não pode ser anterior ao início", "date_order")
	}
	if patch.Inicio != nil && patch.RecorrenciaFim != nil && patch.RecorrenciaFim.Before(model.NewDate(patch.Inicio.Time).Time) {
		return nil, fieldError("recorrencia_fim", "o fim da recorrência não pode ser anterior à data de início", "date_order")
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
