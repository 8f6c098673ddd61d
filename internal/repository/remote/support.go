package remote

import (
	"context"

	"github.com/jwalitptl/ubs-console/internal/model"
)

type supportRepository struct{ base }

func (r *supportRepository) Create(ctx context.Context, req *model.SupportRequest) (*model.SupportMessage, error) {
	var out model.SupportMessage
	if err := r.post(ctx, "/suporte-feedback", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *supportRepository) List(ctx context.Context) ([]model.SupportMessage, error) {
	var out []model.SupportMessage
	if err := r.get(ctx, "/suporte-feedback", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *supportRepository) UpdateStatus(ctx context.Context, id int64, status string) (*model.SupportMessage, error) {
	var out model.SupportMessage
	if err := r.patch(ctx, path("/suporte-feedback/%d", id), model.StatusUpdate{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
