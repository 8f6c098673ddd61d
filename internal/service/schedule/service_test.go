package schedule

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
	repository.ScheduleRepository
	events  []model.Event
	created *model.Event
	patched *model.EventPatch
	listEnd *time.Time
}

func (f *fakeRepo) List(_ context.Context, _ int64, _ *time.Time, end *time.Time) ([]model.Event, error) {
	f.listEnd = end
	return f.events, nil
}

func (f *fakeRepo) Create(_ context.Context, ev *model.Event) (*model.Event, error) {
	f.created = ev
	return ev, nil
}

func (f *fakeRepo) Update(_ context.Context, id int64, p *model.EventPatch) (*model.Event, error) {
	f.patched = p
	return &model.Event{ID: id}, nil
}

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func date(s string) *model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalizeAllDay(t *testing.T) {
	start, end := NormalizeAllDay(at("2025-04-02 14:30"), nil)
	assert.Equal(t, at("2025-04-02 00:00"), start)
	assert.Equal(t, time.Date(2025, 4, 2, 23, 59, 59, 0, time.UTC), end)

	fim := at("2025-04-04 08:00")
	_, end = NormalizeAllDay(at("2025-04-02 14:30"), &fim)
	assert.Equal(t, time.Date(2025, 4, 4, 23, 59, 59, 0, time.UTC), end)
}

func TestCreateDefaultsAndAllDay(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo)

	_, err := s.Create(context.Background(), &model.Event{
		UBSID:      1,
		Titulo:     " Campanha de vacinação ",
		Inicio:     model.Timestamp{Time: at("2025-05-05 10:00")},
		DiaInteiro: true,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, "Campanha de vacinação", repo.created.Titulo)
	assert.Equal(t, model.EventOutro, repo.created.Tipo)
	assert.Equal(t, model.RecurrenceNone, repo.created.Recorrencia)
	assert.Equal(t, 1, repo.created.RecorrenciaIntervalo)
	assert.Equal(t, at("2025-05-05 00:00"), repo.created.Inicio.Time)
	assert.Equal(t, 23, repo.created.Fim.Hour())
}

func TestCreateOrderingRules(t *testing.T) {
	s := NewService(&fakeRepo{})
	start := model.Timestamp{Time: at("2025-05-05 10:00")}

	_, err := s.Create(context.Background(), &model.Event{
		Titulo: "Reunião", Inicio: start, Fim: model.NewTimestamp(at("2025-05-05 09:00")),
	})
	assert.Error(t, err)

	_, err = s.Create(context.Background(), &model.Event{
		Titulo: "Reunião", Inicio: start, Recorrencia: model.RecurrenceWeekly, RecorrenciaFim: date("2025-05-01"),
	})
	assert.Error(t, err)

	_, err = s.Create(context.Background(), &model.Event{
		Titulo: "Reunião", Inicio: start, Recorrencia: model.RecurrenceWeekly, RecorrenciaIntervalo: -1,
	})
	assert.Error(t, err)
}

func TestUpdateNormalizesAllDay(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo)
	allDay := true

	_, err := s.Update(context.Background(), 9, &model.EventPatch{
		DiaInteiro: &allDay,
		Inicio:     model.NewTimestamp(at("2025-06-01 15:00")),
	})
	require.NoError(t, err)
	assert.Equal(t, at("2025-06-01 00:00"), repo.patched.Inicio.Time)
	assert.Equal(t, 59, repo.patched.Fim.Second())
}

func TestOccurrencesWeekly(t *testing.T) {
	ev := model.Event{
		ID:                   3,
		Titulo:               "Reunião de equipe",
		Inicio:               model.Timestamp{Time: at("2025-01-06 14:00")},
		Fim:                  model.NewTimestamp(at("2025-01-06 15:00")),
		Recorrencia:          model.RecurrenceWeekly,
		RecorrenciaIntervalo: 2,
		RecorrenciaFim:       date("2025-02-17"),
	}

	occ := Occurrences(ev, at("2025-01-01 00:00"), at("2025-12-31 00:00"))
	require.Len(t, occ, 4)
	assert.Equal(t, at("2025-01-20 14:00"), occ[1].Inicio.Time)
	assert.Equal(t, at("2025-02-17 14:00"), occ[3].Inicio.Time)
	assert.Equal(t, at("2025-02-17 15:00"), occ[3].Fim.Time)
}

func TestOccurrencesMonthlyAndDailyWindow(t *testing.T) {
	monthly := model.Event{
		Inicio:               model.Timestamp{Time: at("2025-01-15 08:00")},
		Recorrencia:          model.RecurrenceMonthly,
		RecorrenciaIntervalo: 1,
	}
	occ := Occurrences(monthly, at("2025-03-01 00:00"), at("2025-05-31 00:00"))
	require.Len(t, occ, 3)
	assert.Equal(t, time.March, occ[0].Inicio.Month())
	assert.Equal(t, time.May, occ[2].Inicio.Month())

	daily := model.Event{
		Inicio:               model.Timestamp{Time: at("2025-01-01 08:00")},
		Recorrencia:          model.RecurrenceDaily,
		RecorrenciaIntervalo: 3,
	}
	occ = Occurrences(daily, at("2025-01-01 00:00"), at("2025-01-10 12:00"))
	assert.Len(t, occ, 4)
}

func TestOccurrencesSingleEvent(t *testing.T) {
	ev := model.Event{Inicio: model.Timestamp{Time: at("2025-01-06 14:00")}, Recorrencia: model.RecurrenceNone}
	assert.Len(t, Occurrences(ev, at("2025-01-01 00:00"), at("2025-01-31 00:00")), 1)
	assert.Empty(t, Occurrences(ev, at("2025-02-01 00:00"), at("2025-02-28 00:00")))
}

func TestCalendarIncludesEarlierRecurringEvents(t *testing.T) {
	repo := &fakeRepo{events: []model.Event{{
		ID:                   1,
		Inicio:               model.Timestamp{Time: at("2024-12-02 09:00")},
		Recorrencia:          model.RecurrenceWeekly,
		RecorrenciaIntervalo: 1,
	}}}
	s := NewService(repo)

	from, to := at("2025-01-01 00:00"), at("2025-01-15 00:00")
	occ, err := s.Calendar(context.Background(), 1, from, to)
	require.NoError(t, err)
	require.NotNil(t, repo.listEnd)
	assert.Equal(t, to, *repo.listEnd)
	assert.Len(t, occ, 2)
}

func TestOccurrencesOfLongRunningEvent(t *testing.T) {
	daily := model.Event{
		Inicio:      model.Timestamp{Time: at("2022-01-03 07:30")},
		Fim:         model.NewTimestamp(at("2022-01-03 08:00")),
		Recorrencia: model.RecurrenceDaily,
	}
	occ := Occurrences(daily, at("2026-10-01 00:00"), at("2026-10-31 23:59"))
	require.Len(t, occ, 31)
	assert.Equal(t, at("2026-10-01 07:30"), occ[0].Inicio.Time)
	assert.Equal(t, at("2026-10-31 07:30"), occ[30].Inicio.Time)

	weekly := model.Event{
		Inicio:               model.Timestamp{Time: at("2019-03-04 14:00")},
		Recorrencia:          model.RecurrenceWeekly,
		RecorrenciaIntervalo: 2,
	}
	occ = Occurrences(weekly, at("2026-10-01 00:00"), at("2026-10-31 23:59"))
	require.NotEmpty(t, occ)
	for _, o := range occ {
		assert.Equal(t, time.Monday, o.Inicio.Weekday())
		days := int(o.Inicio.Sub(at("2019-03-04 14:00")).Hours() / 24)
		assert.Zero(t, days%14)
	}

	// an event still running when the window opens is included
	spanning := model.Event{
		Inicio:      model.Timestamp{Time: at("2020-01-01 20:00")},
		Fim:         model.NewTimestamp(at("2020-01-02 06:00")),
		Recorrencia: model.RecurrenceDaily,
	}
	occ = Occurrences(spanning, at("2026-10-01 02:00"), at("2026-10-01 03:00"))
	require.Len(t, occ, 1)
	assert.Equal(t, at("2026-09-30 20:00"), occ[0].Inicio.Time)
}

func TestOccurrencesMonthlyClampsToMonthEnd(t *testing.T) {
	ev := model.Event{
		Inicio:      model.Timestamp{Time: at("2026-01-31 10:00")},
		Recorrencia: model.RecurrenceMonthly,
	}

	occ := Occurrences(ev, at("2026-02-01 00:00"), at("2026-04-30 23:59"))
	require.Len(t, occ, 3)
	assert.Equal(t, at("2026-02-28 10:00"), occ[0].Inicio.Time)
	assert.Equal(t, at("2026-03-31 10:00"), occ[1].Inicio.Time)
	assert.Equal(t, at("2026-04-30 10:00"), occ[2].Inicio.Time)

	leap := Occurrences(ev, at("2028-02-01 00:00"), at("2028-02-29 23:59"))
	require.Len(t, leap, 1)
	assert.Equal(t, at("2028-02-29 10:00"), leap[0].Inicio.Time)
}
