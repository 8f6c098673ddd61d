package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

type reportRepository struct{ base }

func (r *reportRepository) List(ctx context.Context, page, pageSize int) (*model.Page[model.Report], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	var out model.Page[model.Report]
	if err := r.get(ctx, "/ubs", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) Create(ctx context.Context, req *model.CreateReportRequest) (*model.Report, error) {
	var out model.Report
	if err := r.post(ctx, "/ubs", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) Diagnosis(ctx context.Context, id int64) (*model.Diagnosis, error) {
	var out model.Diagnosis
	if err := r.get(ctx, path("/ubs/%d/diagnosis", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) PatchHeader(ctx context.Context, id int64, fields map[string]interface{}) (*model.Report, error) {
	var out model.Report
	if err := r.patch(ctx, path("/ubs/%d", id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) Delete(ctx context.Context, id int64) error {
	return r.delete(ctx, path("/ubs/%d", id))
}

func (r *reportRepository) Submit(ctx context.Context, id int64) (*model.SubmitResult, error) {
	var out model.SubmitResult
	if err := r.post(ctx, path("/ubs/%d/submit", id), map[string]bool{"confirm": true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) Export(ctx context.Context, id int64) (*apiclient.BlobData, error) {
	return r.api.Download(ctx, path("/ubs/%d/export/pdf", id), nil)
}

func (r *reportRepository) PutTerritory(ctx context.Context, id int64, t *model.Territory) (*model.Territory, error) {
	var out model.Territory
	if err := r.put(ctx, path("/ubs/%d/territory", id), t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) PutNeeds(ctx context.Context, id int64, n *model.Needs) (*model.Needs, error) {
	var out model.Needs
	if err := r.put(ctx, path("/ubs/%d/needs", id), n, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) AddProfessionalGroup(ctx context.Context, id int64, g *model.ProfessionalGroup) (*model.ProfessionalGroup, error) {
	var out model.ProfessionalGroup
	if err := r.post(ctx, path("/ubs/%d/professionals", id), g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) UpdateProfessionalGroup(ctx context.Context, groupID int64, g *model.ProfessionalGroup) (*model.ProfessionalGroup, error) {
	var out model.ProfessionalGroup
	if err := r.patch(ctx, path("/ubs/professionals/%d", groupID), g, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) DeleteProfessionalGroup(ctx context.Context, groupID int64) error {
	return r.delete(ctx, path("/ubs/professionals/%d", groupID))
}

func (r *reportRepository) AddIndicator(ctx context.Context, id int64, ind *model.Indicator) (*model.Indicator, error) {
	var out model.Indicator
	if err := r.post(ctx, path("/ubs/%d/indicators", id), ind, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) DeleteIndicator(ctx context.Context, indicatorID int64) error {
	return r.delete(ctx, path("/ubs/indicators/%d", indicatorID))
}

func (r *reportRepository) UploadAttachment(ctx context.Context, id int64, form *apiclient.Multipart) (*model.Attachment, error) {
	var out model.Attachment
	if err := r.api.Upload(ctx, http.MethodPost, path("/ubs/%d/attachments", id), form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepository) DeleteAttachment(ctx context.Context, attachmentID int64) error {
	return r.delete(ctx, path("/ubs/attachments/%d", attachmentID))
}
