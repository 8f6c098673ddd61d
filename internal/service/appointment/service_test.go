package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
)

type fakeRepo struct {
	repository.AppointmentRepository
	updates int
	blocks  []model.ScheduleBlock
}

func (f *fakeRepo) Create(_ context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	return &model.Appointment{ID: 1, ProfissionalID: req.ProfissionalID, DataHora: req.DataHora, Status: model.AppointmentAgendado}, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	f.updates++
	return &model.Appointment{ID: id, Status: req.Status}, nil
}

func (f *fakeRepo) Agenda(context.Context, int64, time.Time, time.Time) ([]model.Appointment, error) {
	return []model.Appointment{}, nil
}

func (f *fakeRepo) ListBlocks(context.Context, *int64) ([]model.ScheduleBlock, error) {
	return f.blocks, nil
}

func (f *fakeRepo) CreateBlock(_ context.Context, b *model.ScheduleBlock) (*model.ScheduleBlock, error) {
	return b, nil
}

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newService(repo *fakeRepo) *Service {
	s := NewService(repo)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestCreateRejectsPast(t *testing.T) {
	s := newService(&fakeRepo{})

	_, err := s.Create(context.Background(), &model.CreateAppointmentRequest{
		ProfissionalID: 2,
		DataHora:       model.Timestamp{Time: fixedNow.Add(-time.Minute)},
	})
	assert.Error(t, err)

	apt, err := s.Create(context.Background(), &model.CreateAppointmentRequest{
		ProfissionalID: 2,
		DataHora:       model.Timestamp{Time: fixedNow.Add(time.Hour)},
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentAgendado, apt.Status)
}

func TestRescheduleNeedsNewTime(t *testing.T) {
	repo := &fakeRepo{}
	s := newService(repo)

	_, err := s.Update(context.Background(), 4, &model.UpdateAppointmentRequest{Status: model.AppointmentReagendado})
	assert.Error(t, err)
	assert.Equal(t, 0, repo.updates)

	_, err = s.Update(context.Background(), 4, &model.UpdateAppointmentRequest{
		Status:   model.AppointmentReagendado,
		DataHora: model.NewTimestamp(fixedNow.Add(48 * time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)
}

func TestAgendaWindow(t *testing.T) {
	start := fixedNow
	repo := &fakeRepo{blocks: []model.ScheduleBlock{
		{ID: 1, DataInicio: model.Timestamp{Time: start.Add(2 * time.Hour)}, DataFim: model.Timestamp{Time: start.Add(3 * time.Hour)}},
		{ID: 2, DataInicio: model.Timestamp{Time: start.AddDate(0, 1, 0)}, DataFim: model.Timestamp{Time: start.AddDate(0, 1, 1)}},
	}}
	s := newService(repo)

	_, err := s.Agenda(context.Background(), 2, start, start.Add(-time.Hour))
	assert.Error(t, err)

	agenda, err := s.Agenda(context.Background(), 2, start, start.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, agenda.Bloqueios, 1)
	assert.Equal(t, int64(1), agenda.Bloqueios[0].ID)

	agenda, err = s.Agenda(context.Background(), 2, start, start)
	require.NoError(t, err)
	assert.NotNil(t, agenda.Agendamentos)
}

func TestCreateBlockOrder(t *testing.T) {
	s := newService(&fakeRepo{})
	at := model.Timestamp{Time: fixedNow}

	_, err := s.CreateBlock(context.Background(), &model.ScheduleBlock{DataInicio: at, DataFim: at})
	assert.Error(t, err)

	_, err = s.CreateBlock(context.Background(), &model.ScheduleBlock{DataInicio: at, DataFim: model.Timestamp{Time: fixedNow.Add(time.Hour)}})
	assert.NoError(t, err)
}
