package remote

import (
	"context"
	"net/url"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
)

type scheduleRepository struct{ base }

func (r *scheduleRepository) List(ctx context.Context, ubsID int64, start, end *time.Time) ([]model.Event, error) {
	q := url.Values{}
	q.Set("ubs_id", idParam(ubsID))
	if start != nil {
		q.Set("start", start.Format(time.RFC3339))
	}
	if end != nil {
		q.Set("end", end.Format(time.RFC3339))
	}
	var out []model.Event
	if err := r.get(ctx, "/cronograma", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *scheduleRepository) Create(ctx context.Context, ev *model.Event) (*model.Event, error) {
	var out model.Event
	if err := r.post(ctx, "/cronograma", ev, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *scheduleRepository) Update(ctx context.Context, id int64, patch *model.EventPatch) (*model.Event, error) {
	var out model.Event
	if err := r.patch(ctx, path("/cronograma/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *scheduleRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, path("/cronograma/%d", id))
}
