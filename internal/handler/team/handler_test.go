package team

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/handler/handlertest"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/service/team"
)

type obj = map[string]interface{}

func setup(t *testing.T) *handlertest.Fixture {
	f := handlertest.New(t)
	NewHandler(f.Base(), team.NewService(f.Repos.Team), f.Guard).RegisterRoutes(f.Protected)
	return f
}

func TestTeamNeedsManagerRole(t *testing.T) {
	f := setup(t)
	for _, role := range []model.Role{model.RoleUser, model.RoleACS, model.RoleProfissional} {
		_, cookies := f.Login(role)
		rec := f.Do(http.MethodGet, "/api/v1/gestao-equipes/kpis?ubs_id=9", nil, cookies)
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}
	assert.Empty(t, f.Calls())
}

func TestKPIsForReception(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleRecepcao)
	f.API.HandleFunc("GET /gestao-equipes/kpis", handlertest.JSON(http.StatusOK, model.TerritoryKPIs{PopulacaoAdscrita: 3200, MicroareasDescobertas: 1}))

	rec := f.Do(http.MethodGet, "/api/v1/gestao-equipes/kpis?ubs_id=9", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := f.Decode(rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(3200), data["populacao_adscrita"])
	assert.Contains(t, f.Calls()[0].Query, "ubs_id=9")
}

func TestCreateMicroareaDefaultsToCovered(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleGestor)

	var sent model.Microarea
	f.API.HandleFunc("POST /gestao-equipes/microareas", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		sent.ID = 2
		handlertest.Reply(w, http.StatusCreated, sent)
	})

	rec := f.Do(http.MethodPost, "/api/v1/gestao-equipes/microareas", obj{"ubs_id": 9, "nome": " Microárea 02 ", "populacao": 800, "familias": 210}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.MicroareaCoberta, sent.Status)
	assert.Equal(t, "Microárea 02", sent.Nome)
}

func TestUpdateMicroareaRejectsNegativeCounts(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleGestor)

	rec := f.Do(http.MethodPatch, "/api/v1/gestao-equipes/microareas/2", obj{"familias": -3}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.Calls())
}

func TestCreateAgentDefaultsToActive(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleGestor)

	var sent model.Agent
	f.API.HandleFunc("POST /gestao-equipes/agentes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		handlertest.Reply(w, http.StatusCreated, model.Agent{ID: 5, UsuarioID: sent.UsuarioID, MicroareaID: sent.MicroareaID, Ativo: sent.Ativo})
	})

	rec := f.Do(http.MethodPost, "/api/v1/gestao-equipes/agentes", obj{"usuario_id": 14, "microarea_id": 2}, cookies)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, sent.Ativo)
	assert.True(t, *sent.Ativo)
}
