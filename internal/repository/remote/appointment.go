package remote

import (
	"context"
	"net/url"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
)

type appointmentRepository struct{ base }

func (r *appointmentRepository) Mine(ctx context.Context) ([]model.Appointment, error) {
	var out []model.Appointment
	if err := r.get(ctx, "/agendamentos/meus", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *appointmentRepository) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	var out model.Appointment
	if err := r.post(ctx, "/agendamentos", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *appointmentRepository) Update(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	var out model.Appointment
	if err := r.patch(ctx, path("/agendamentos/%d", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *appointmentRepository) Confirm(ctx context.Context, id int64) (*model.Appointment, error) {
	var out model.Appointment
	if err := r.post(ctx, path("/agendamentos/%d/confirmar", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *appointmentRepository) Agenda(ctx context.Context, professionalID int64, start, end time.Time) ([]model.Appointment, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(time.RFC3339))
	q.Set("end_date", end.Format(time.RFC3339))
	var out []model.Appointment
	if err := r.get(ctx, path("/agenda/profissional/%d", professionalID), q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *appointmentRepository) CreateBlock(ctx context.Context, b *model.ScheduleBlock) (*model.ScheduleBlock, error) {
	var out model.ScheduleBlock
	if err := r.post(ctx, "/agenda/bloqueios", b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *appointmentRepository) ListBlocks(ctx context.Context, professionalID *int64) ([]model.ScheduleBlock, error) {
	q := url.Values{}
	if professionalID != nil {
		q.Set("profissional_id", idParam(*professionalID))
	}
	var out []model.ScheduleBlock
	if err := r.get(ctx, "/agenda/bloqueios", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *appointmentRepository) DeleteBlock(ctx context.Context, id int64) error {
	return r.delete(ctx, path("/agenda/bloqueios/%d", id))
}

func (r *appointmentRepository) Professionals(ctx context.Context, cargo string) ([]model.Professional, error) {
	q := url.Values{}
	if cargo != "" {
		q.Set("cargo", cargo)
	}
	var out []model.Professional
	if err := r.get(ctx, "/agendamentos/profissionais", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *appointmentRepository) Specialties(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.get(ctx, "/agendamentos/especialidades", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
