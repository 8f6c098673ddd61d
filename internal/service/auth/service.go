// Package auth signs users in and out of the console and fronts the
// account endpoints of the API.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
	"github.com/jwalitptl/ubs-console/pkg/validator"
)

const msgInvalidCredentials = "E-mail ou senha inválidos."

type Service struct {
	repo     repository.AuthRepository
	sessions *session.Manager
}

func NewService(repo repository.AuthRepository, sessions *session.Manager) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Login exchanges credentials for an API token and opens a session.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*session.Session, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !validator.IsValidEmail(req.Email) {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "email", Message: "E-mail inválido", Code: "email"})
	}

	resp, err := s.repo.Login(ctx, req)
	if err != nil {
		var apiErr *apiclient.Error
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusBadRequest) {
			msg := apiErr.Message
			if msg == "" || msg == http.StatusText(apiErr.Status) {
				msg = msgInvalidCredentials
			}
			// a rejected login is not an expired session
			return nil, apperrors.NewBadRequest(msg, nil)
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, apperrors.NewUpstream("resposta de login sem token", nil)
	}

	return s.sessions.Create(ctx, resp.AccessToken, resp.User)
}

func (s *Service) Logout(ctx context.Context, sess *session.Session) error {
	return s.sessions.Invalidate(ctx, sess.ID, session.ReasonLogout)
}

// Register checks every field before anything is sent and reports all
// failures at once.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	var fields []apperrors.FieldError
	add := func(field, msg, code string) {
		fields = append(fields, apperrors.FieldError{Field: field, Message: msg, Code: code})
	}

	if msg := validator.ValidateName(req.Nome); msg != "" {
		add("nome", msg, "personname")
	}
	if !validator.IsValidEmail(req.Email) {
		add("email", "E-mail inválido", "email")
	}
	if !validator.IsValidCPF(req.CPF) {
		add("cpf", "CPF inválido", "cpf")
	}
	for _, msg := range validator.PasswordErrors(req.Senha) {
		add("senha", msg, "strongpassword")
	}
	if req.Senha != req.ConfirmarSenha {
		add("confirmar_senha", "As senhas não conferem.", "eqfield")
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}

	return s.repo.Register(ctx, &model.RegisterPayload{
		Nome:  strings.TrimSpace(req.Nome),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		CPF:   validator.OnlyDigits(req.CPF),
		Senha: req.Senha,
	})
}

// Refresh reloads the user from the API into the session.
func (s *Service) Refresh(ctx context.Context, sess *session.Session) (*model.User, error) {
	user, err := s.repo.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, sess, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword sets another user's password.
func (s *Service) ResetPassword(ctx context.Context, req *model.ResetPasswordRequest) error {
	var fields []apperrors.FieldError
	if !validator.IsValidEmail(req.Email) {
		fields = append(fields, apperrors.FieldError{Field: "email", Message: "E-mail inválido", Code: "email"})
	}
	for _, msg := range validator.PasswordErrors(req.Senha) {
		fields = append(fields, apperrors.FieldError{Field: "senha", Message: msg, Code: "strongpassword"})
	}
	if req.Senha != req.ConfirmarSenha {
		fields = append(fields, apperrors.FieldError{Field: "confirmar_senha", Message: "As senhas não conferem.", Code: "eqfield"})
	}
	if len(fields) > 0 {
		return apperrors.Validation(fields...)
	}
	return s.repo.ResetPassword(ctx, strings.ToLower(strings.TrimSpace(req.Email)), req.Senha)
}

func (s *Service) ClaimProfessional(ctx context.Context, sess *session.Session, claim *model.ProfessionalClaim) (*model.User, error) {
	user, err := s.repo.ClaimProfessional(ctx, claim)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateUser(ctx, sess, *user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) CreateProfessionalRequest(ctx context.Context, claim *model.ProfessionalClaim) (*model.ProfessionalRequest, error) {
	return s.repo.CreateProfessionalRequest(ctx, claim)
}

func (s *Service) MyProfessionalRequest(ctx context.Context) (*model.ProfessionalRequest, error) {
	return s.repo.MyProfessionalRequest(ctx)
}

func (s *Service) ListProfessionalRequests(ctx context.Context, status string) ([]model.ProfessionalRequest, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	switch status {
	case "", model.RequestPendente, model.RequestAprovada, model.RequestRejeitada:
	default:
		return nil, apperrors.Validation(apperrors.FieldError{Field: "status", Message: "Status inválido.", Code: "oneof"})
	}
	return s.repo.ListProfessionalRequests(ctx, status)
}

func (s *Service) ApproveProfessionalRequest(ctx context.Context, id int64) (*model.ProfessionalRequest, error) {
	return s.repo.ApproveProfessionalRequest(ctx, id)
}

// RejectProfessionalRequest needs a reason.
func (s *Service) RejectProfessionalRequest(ctx context.Context, id int64, motivo string) (*model.ProfessionalRequest, error) {
	motivo = strings.TrimSpace(motivo)
	if motivo == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "motivo", Message: "Informe o motivo da rejeição.", Code: "required"})
	}
	return s.repo.RejectProfessionalRequest(ctx, id, motivo)
}
