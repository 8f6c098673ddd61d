package remote

import (
	"context"

	"github.com/jwalitptl/ubs-console/internal/model"
)

type problemRepository struct{ base }

func (r *problemRepository) List(ctx context.Context, ubsID int64) ([]model.Problem, error) {
	var out []model.Problem
	if err := r.get(ctx, path("/ubs/%d/problems", ubsID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemRepository) Create(ctx context.Context, ubsID int64, in *model.ProblemInput) (*model.Problem, error) {
	var out model.Problem
	if err := r.post(ctx, path("/ubs/%d/problems", ubsID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *problemRepository) Update(ctx context.Context, id int64, in *model.ProblemInput) (*model.Problem, error) {
	var out model.Problem
	if err := r.patch(ctx, path("/ubs/problems/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *problemRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, path("/ubs/problems/%d", id))
}

func (r *problemRepository) ListInterventions(ctx context.Context, problemID int64) ([]model.Intervention, error) {
	var out []model.Intervention
	if err := r.get(ctx, path("/ubs/problems/%d/interventions", problemID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemRepository) CreateIntervention(ctx context.Context, problemID int64, in *model.Intervention) (*model.Intervention, error) {
	var out model.Intervention
	if err := r.post(ctx, path("/ubs/problems/%d/interventions", problemID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *problemRepository) UpdateIntervention(ctx context.Context, id int64, in *model.Intervention) (*model.Intervention, error) {
	var out model.Intervention
	if err := r.patch(ctx, path("/ubs/interventions/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *problemRepository) DeleteIntervention(ctx context.Context, id int64) error {
	return r.delete(ctx, path("/ubs/interventions/%d", id))
}

func (r *problemRepository) ListActions(ctx context.Context, interventionID int64) ([]model.InterventionAction, error) {
	var out []model.InterventionAction
	if err := r.get(ctx, path("/ubs/interventions/%d/actions", interventionID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *problemRepository) CreateAction(ctx context.Context, interventionID int64, in *model.InterventionAction) (*model.InterventionAction, error) {
	var out model.InterventionAction
	if err := r.post(ctx, path("/ubs/interventions/%d/actions", interventionID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *problemRepository) UpdateAction(ctx context.Context, id int64, in *model.InterventionAction) (*model.InterventionAction, error) {
	var out model.InterventionAction
	if err := r.patch(ctx, path("/ubs/intervention-actions/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *problemRepository) DeleteAction(ctx context.Context, id int64) error {
	return r.delete(ctx, path("/ubs/intervention-actions/%d", id))
}
