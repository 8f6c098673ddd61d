package team

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
)

type fakeRepo struct {
	repository.TeamRepository
	created *model.Microarea
	agent   *model.Agent
}

func (f *fakeRepo) CreateMicroarea(_ context.Context, m *model.Microarea) (*model.Microarea, error) {
	f.created = m
	return m, nil
}

func (f *fakeRepo) UpdateMicroarea(_ context.Context, id int64, _ *model.MicroareaPatch) (*model.Microarea, error) {
	return &model.Microarea{ID: id}, nil
}

func (f *fakeRepo) CreateAgent(_ context.Context, a *model.Agent) (*model.Agent, error) {
	f.agent = a
	return a, nil
}

func TestCreateMicroareaDefaultsToCoberta(t *testing.T) {
	repo := &fakeRepo{}
	s := NewService(repo)

	_, err := s.CreateMicroarea(context.Background(), &model.Microarea{UBSID: 1, Nome: "MA 01", Populacao: 800, Familias: 210})
	require.NoError(t, err)
	assert.Equal(t, model.MicroareaCoberta, repo.created.Status)
}

func TestMicroareaCountsMustNotBeNegative(t *testing.T) {
	s := NewService(&fakeRepo{})

	_, err := s.CreateMicroarea(context.Background(), &model.Microarea{UBSID: 1, Nome: "MA 02", Populacao: -1})
	assert.Error(t, err)

	neg := -5
	_, err = s.UpdateMicroarea(context.Background(), 2, &model.MicroareaPatch{Familias: &neg})
	assert.Error(t, err)
}

func TestCreateAgentActiveByDefault(t *testing.T) {
	repo := &fakeRepo{}
	_, err := NewService(repo).CreateAgent(context.Background(), &model.Agent{UsuarioID: 4, MicroareaID: 1})
	require.NoError(t, err)
	require.NotNil(t, repo.agent.Ativo)
	assert.True(t, *repo.agent.Ativo)
}
