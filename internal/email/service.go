// Package email forwards console notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/ubs-console/internal/model"
)

type Service interface {
	SendSupportMessage(ctx context.Context, msg *model.SupportMessage, from model.User) error
	SendCustom(ctx context.Context, to string, subject string, content string) error
}

type Config struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	SupportTo string
}

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	cfg    Config
	sender Sender
}

// NewService returns nil when no SMTP host is configured.
func NewService(cfg Config) Service {
	if cfg.Host == "" {
		return nil
	}
	return NewServiceWithSender(cfg, gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password))
}

func NewServiceWithSender(cfg Config, sender Sender) Service {
	return &smtpService{cfg: cfg, sender: sender}
}

var subjects = map[string]string{
	model.SupportDuvida:   "Dúvida",
	model.SupportSugestao: "Sugestão",
	model.SupportProblema: "Problema",
}

func (s *smtpService) SendSupportMessage(ctx context.Context, msg *model.SupportMessage, from model.User) error {
	if s.cfg.SupportTo == "" {
		return nil
	}
	label := subjects[msg.Assunto]
	if label == "" {
		label = msg.Assunto
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.SupportTo)
	if from.Email != "" {
		m.SetAddressHeader("Reply-To", from.Email, from.Nome)
	}
	m.SetHeader("Subject", fmt.Sprintf("[Suporte UBS] %s #%d", label, msg.ID))

	var body strings.Builder
	fmt.Fprintf(&body, "De: %s <%s>\n", from.Nome, from.Email)
	fmt.Fprintf(&body, "Assunto: %s\n\n", label)
	body.WriteString(msg.Mensagem)
	m.SetBody("text/plain", body.String())

	return s.send(ctx, m)
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)
	return s.send(ctx, m)
}

// send runs the blocking SMTP exchange and gives up waiting when ctx ends.
func (s *smtpService) send(ctx context.Context, m *gomail.Message) error {
	done := make(chan error, 1)
	go func() {
		done <- s.sender.DialAndSend(m)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
