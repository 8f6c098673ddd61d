package schedule

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/handler/handlertest"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/schedule"
)

type obj = map[string]interface{}

func setup(t *testing.T) *handlertest.Fixture {
	f := handlertest.New(t)
	NewHandler(f.Base(), schedule.NewService(f.Repos.Schedule), f.Guard).RegisterRoutes(f.Protected)
	return f
}

func TestListRequiresUBS(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleUser)

	rec := f.Do(http.MethodGet, "/api/v1/cronograma", nil, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.Calls())
}

func TestCalendarExpandsWeeklyEvent(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleUser)

	first := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)
	fim := first.Add(4 * time.Hour)
	f.API.HandleFunc("GET /cronograma", handlertest.JSON(http.StatusOK, []model.Event{{
		ID:                   4,
		UBSID:                9,
		Titulo:               "Sala de vacina",
		Tipo:                 model.EventSalaVacina,
		Inicio:               model.Timestamp{Time: first},
		Fim:                  model.NewTimestamp(fim),
		Recorrencia:          model.RecurrenceWeekly,
		RecorrenciaIntervalo: 1,
	}}))

	rec := f.Do(http.MethodGet, "/api/v1/cronograma/calendario?ubs_id=9&start=2026-03-01&end=2026-03-31", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := f.Decode(rec)["data"].([]interface{})
	assert.Len(t, data, 5)
	require.Len(t, f.Calls(), 1)
	assert.Contains(t, f.Calls()[0].Query, "ubs_id=9")
}

func TestCreateNeedsEditorRole(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleRecepcao)

	rec := f.Do(http.MethodPost, "/api/v1/cronograma", obj{"ubs_id": 9, "titulo": "Reunião"}, cookies)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, f.Calls())
}

func TestCreateNormalizesAllDay(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleACS)

	var sent model.Event
	f.API.HandleFunc("POST /cronograma", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		sent.ID = 11
		handlertest.Reply(w, http.StatusCreated, sent)
	})

	rec := f.Do(http.MethodPost, "/api/v1/cronograma", obj{
		"ubs_id":      9,
		"titulo":      "  Campanha  ",
		"inicio":      "2026-04-10T14:30:00",
		"dia_inteiro": true,
	}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, "Campanha", sent.Titulo)
	assert.Equal(t, model.EventOutro, sent.Tipo)
	assert.Equal(t, model.RecurrenceNone, sent.Recorrencia)
	assert.Equal(t, 0, sent.Inicio.Hour())
	require.NotNil(t, sent.Fim)
	assert.Equal(t, 23, sent.Fim.Hour())
	assert.Equal(t, 59, sent.Fim.Second())
}

func TestCreateRejectsEndBeforeStart(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleGestor)

	rec := f.Do(http.MethodPost, "/api/v1/cronograma", obj{
		"ubs_id": 9,
		"titulo": "Farmácia",
		"inicio": "2026-04-10T14:00:00",
		"fim":    "2026-04-10T10:00:00",
	}, cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "fim", f.Decode(rec)["errors"].([]interface{})[0].(map[string]interface{})["field"])
	assert.Empty(t, f.Calls())
}

func TestDeleteEventAfterConfirm(t *testing.T) {
	f := setup(t)
	sess, cookies := f.Login(model.RoleProfissional)
	f.API.HandleFunc("DELETE /cronograma/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	dialogID := f.DialogID(f.Do(http.MethodDelete, "/api/v1/cronograma/11", nil, cookies))
	assert.False(t, f.Called(http.MethodDelete, "/cronograma/11"))

	f.Answer(sess, dialogID, notify.Answer{Confirmed: true})
	require.True(t, f.WaitFor(http.MethodDelete, "/cronograma/11"))
	toast, ok := f.WaitToast(sess, notify.TypeSuccess)
	require.True(t, ok)
	assert.Equal(t, "Evento excluído", toast.Message)
}
