// Package support sends and triages support messages.
package support

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/ubs-console/internal/email"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
	"github.com/jwalitptl/ubs-console/pkg/logger"
)

const forwardTimeout = 30 * time.Second

type Service struct {
	repo   repository.SupportRepository
	mailer email.Service
	logger *logger.Logger
	wg     sync.WaitGroup
}

// NewService builds the service. mailer may be nil, in which case messages
// are not forwarded by email.
func NewService(repo repository.SupportRepository, mailer email.Service, l *logger.Logger) *Service {
	if l == nil {
		l = logger.Nop()
	}
	return &Service{repo: repo, mailer: mailer, logger: l.With("support")}
}

func (s *Service) Create(ctx context.Context, from model.User, req *model.SupportRequest) (*model.SupportMessage, error) {
	req.Mensagem = strings.TrimSpace(req.Mensagem)
	if req.Mensagem == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "mensagem", Message: "Mensagem não pode ser vazia.", Code: "required"})
	}
	switch req.Assunto {
	case model.SupportDuvida, model.SupportSugestao, model.SupportProblema:
	default:
		return nil, apperrors.Validation(apperrors.FieldError{Field: "assunto", Message: "Assunto inválido.", Code: "oneof"})
	}

	msg, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.forward(ctx, msg, from)
	return msg, nil
}

// forward emails the message in the background; failures are only logged.
func (s *Service) forward(ctx context.Context, msg *model.SupportMessage, from model.User) {
	if s.mailer == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, forwardTimeout)
		defer cancel()
		if err := s.mailer.SendSupportMessage(ctx, msg, from); err != nil {
			s.logger.Error(err, "Failed to forward support message", "message_id", msg.ID)
		}
	}()
}

// Wait blocks until pending forwards finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) List(ctx context.Context) ([]model.SupportMessage, error) {
	return s.repo.List(ctx)
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*model.SupportMessage, error) {
	if status != model.SupportPendente && status != model.SupportLida {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "status", Message: "Status inválido.", Code: "oneof"})
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
