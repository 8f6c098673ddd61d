package remote

import (
	"context"
	"net/url"

	"github.com/jwalitptl/ubs-console/internal/model"
)

type teamRepository struct{ base }

func ubsQuery(ubsID int64) url.Values {
	q := url.Values{}
	if ubsID > 0 {
		q.Set("ubs_id", idParam(ubsID))
	}
	return q
}

func (r *teamRepository) KPIs(ctx context.Context, ubsID int64) (*model.TerritoryKPIs, error) {
	var out model.TerritoryKPIs
	if err := r.get(ctx, "/gestao-equipes/kpis", ubsQuery(ubsID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *teamRepository) ListMicroareas(ctx context.Context, ubsID int64) ([]model.Microarea, error) {
	var out []model.Microarea
	if err := r.get(ctx, "/gestao-equipes/microareas", ubsQuery(ubsID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teamRepository) CreateMicroarea(ctx context.Context, m *model.Microarea) (*model.Microarea, error) {
	var out model.Microarea
	if err := r.post(ctx, "/gestao-equipes/microareas", m, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *teamRepository) UpdateMicroarea(ctx context.Context, id int64, patch *model.MicroareaPatch) (*model.Microarea, error) {
	var out model.Microarea
	if err := r.patch(ctx, path("/gestao-equipes/microareas/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *teamRepository) ListAgents(ctx context.Context, ubsID int64) ([]model.Agent, error) {
	var out []model.Agent
	if err := r.get(ctx, "/gestao-equipes/agentes", ubsQuery(ubsID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *teamRepository) CreateAgent(ctx context.Context, a *model.Agent) (*model.Agent, error) {
	var out model.Agent
	if err := r.post(ctx, "/gestao-equipes/agentes", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *teamRepository) UpdateAgent(ctx context.Context, id int64, patch *model.AgentPatch) (*model.Agent, error) {
	var out model.Agent
	if err := r.patch(ctx, path("/gestao-equipes/agentes/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *teamRepository) ListACSUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := r.get(ctx, "/gestao-equipes/acs-users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
