package appointment

import (
	"context"
	"sort"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

type Service struct {
	repo repository.AppointmentRepository
	now  func() time.Time
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func fieldError(field, message, code string) error {
	return apperrors.Validation(apperrors.FieldError{Field: field, Message: message, Code: code})
}

// Mine lists the caller's appointments, soonest first.
func (s *Service) Mine(ctx context.Context) ([]model.Appointment, error) {
	list, err := s.repo.Mine(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DataHora.Before(list[j].DataHora.Time)
	})
	return list, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validateAppointmentTime(req.DataHora.Time); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) validateAppointmentTime(at time.Time) error {
	if at.IsZero() {
		return fieldError("data_hora", "informe a data e hora", "required")
	}
	if at.Before(s.now()) {
		return fieldError("data_hora", "não é possível agendar no passado", "future")
	}
	return nil
}

// Update changes status or time. Rescheduling needs the new time.
func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	if req.Status == model.AppointmentReagendado {
		if req.DataHora == nil || req.DataHora.IsZero() {
			return nil, fieldError("data_hora", "informe a nova data para reagendar", "required")
		}
	}
	if req.DataHora != nil && !req.DataHora.IsZero() {
		if err := s.validateAppointmentTime(req.DataHora.Time); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, req)
}

// Cancel is the destructive status change run after confirmation.
func (s *Service) Cancel(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.repo.Update(ctx, id, &model.UpdateAppointmentRequest{Status: model.AppointmentCancelado})
}

func (s *Service) Confirm(ctx context.Context, id int64) (*model.Appointment, error) {
	return s.repo.Confirm(ctx, id)
}

// Agenda returns a professional's appointments and blocks in [start, end].
func (s *Service) Agenda(ctx context.Context, professionalID int64, start, end time.Time) (*model.Agenda, error) {
	if end.Before(start) {
		return nil, fieldError("end_date", "a data final deve ser igual ou posterior à inicial", "date_order")
	}

	appointments, err := s.repo.Agenda(ctx, professionalID, start, end)
	if err != nil {
		return nil, err
	}
	blocks, err := s.repo.ListBlocks(ctx, &professionalID)
	if err != nil {
		return nil, err
	}

	agenda := &model.Agenda{Agendamentos: appointments, Bloqueios: make([]model.ScheduleBlock, 0, len(blocks))}
	for _, b := range blocks {
		if b.DataFim.Before(start) || b.DataInicio.After(end) {
			continue
		}
		agenda.Bloqueios = append(agenda.Bloqueios, b)
	}
	return agenda, nil
}

func (s *Service) CreateBlock(ctx context.Context, b *model.ScheduleBlock) (*model.ScheduleBlock, error) {
	if !b.DataInicio.Before(b.DataFim.Time) {
		return nil, fieldError("data_fim", "o fim do bloqueio deve ser posterior ao início", "date_order")
	}
	return s.repo.CreateBlock(ctx, b)
}

func (s *Service) ListBlocks(ctx context.Context, professionalID *int64) ([]model.ScheduleBlock, error) {
	return s.repo.ListBlocks(ctx, professionalID)
}

func (s *Service) DeleteBlock(ctx context.Context, id int64) error {
	return s.repo.DeleteBlock(ctx, id)
}

func (s *Service) Professionals(ctx context.Context, cargo string) ([]model.Professional, error) {
	return s.repo.Professionals(ctx, cargo)
}

func (s *Service) Specialties(ctx context.Context) ([]string, error) {
	return s.repo.Specialties(ctx)
}
