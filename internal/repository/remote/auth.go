package remote

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

type authRepository struct{ base }

func (r *authRepository) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	var out model.LoginResponse
	err := r.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: "/auth/login", Body: req}, apiclient.JSON(&out))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *authRepository) Register(ctx context.Context, req *model.RegisterPayload) (*model.User, error) {
	var out model.User
	err := r.api.Do(ctx, &apiclient.Request{Method: http.MethodPost, Path: "/auth/register", Body: req}, apiclient.JSON(&out))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *authRepository) Me(ctx context.Context) (*model.User, error) {
	var out model.User
	if err := r.get(ctx, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *authRepository) ResetPassword(ctx context.Context, email, senha string) error {
	body := map[string]string{"email": email, "senha": senha}
	return r.post(ctx, "/auth/reset-password", body, nil)
}

func (r *authRepository) ClaimProfessional(ctx context.Context, claim *model.ProfessionalClaim) (*model.User, error) {
	var out model.User
	if err := r.post(ctx, "/auth/profissional/claim", claim, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *authRepository) CreateProfessionalRequest(ctx context.Context, claim *model.ProfessionalClaim) (*model.ProfessionalRequest, error) {
	var out model.ProfessionalRequest
	if err := r.post(ctx, "/auth/professional-requests/me", claim, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *authRepository) MyProfessionalRequest(ctx context.Context) (*model.ProfessionalRequest, error) {
	var out *model.ProfessionalRequest
	if err := r.get(ctx, "/auth/professional-requests/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *authRepository) ListProfessionalRequests(ctx context.Context, status string) ([]model.ProfessionalRequest, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var out []model.ProfessionalRequest
	if err := r.get(ctx, "/auth/professional-requests", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *authRepository) ApproveProfessionalRequest(ctx context.Context, id int64) (*model.ProfessionalRequest, error) {
	var out model.ProfessionalRequest
	if err := r.post(ctx, path("/auth/professional-requests/%d/approve", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *authRepository) RejectProfessionalRequest(ctx context.Context, id int64, motivo string) (*model.ProfessionalRequest, error) {
	var out model.ProfessionalRequest
	body := map[string]string{"motivo": motivo}
	if err := r.post(ctx, path("/auth/professional-requests/%d/reject", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
