package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

type materialRepository struct{ base }

func (r *materialRepository) List(ctx context.Context, ubsID int64) ([]model.Material, error) {
	q := url.Values{}
	q.Set("ubs_id", idParam(ubsID))
	var out []model.Material
	if err := r.get(ctx, "/materiais", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepository) Create(ctx context.Context, form *apiclient.Multipart) (*model.Material, error) {
	var out model.Material
	if err := r.api.Upload(ctx, http.MethodPost, "/materiais", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepository) Update(ctx context.Context, id int64, patch *model.MaterialPatch) (*model.Material, error) {
	var out model.Material
	if err := r.patch(ctx, path("/materiais/%d", id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, path("/materiais/%d", id))
}

func (r *materialRepository) AddFile(ctx context.Context, id int64, form *apiclient.Multipart) (*model.MaterialFile, error) {
	var out model.MaterialFile
	if err := r.api.Upload(ctx, http.MethodPost, path("/materiais/%d/files", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *materialRepository) DeleteFile(ctx context.Context, fileID int64) error {
	return r.delete(ctx, path("/materiais/files/%d", fileID))
}

// Download sends the bearer header, so the token never appears in a URL.
func (r *materialRepository) Download(ctx context.Context, fileID int64) (*apiclient.BlobData, error) {
	return r.api.Download(ctx, path("/materiais/files/%d/download", fileID), nil)
}
