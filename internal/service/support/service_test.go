package support

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
)

type fakeRepo struct {
	repository.SupportRepository
	created *model.SupportRequest
}

func (f *fakeRepo) Create(_ context.Context, req *model.SupportRequest) (*model.SupportMessage, error) {
	f.created = req
	return &model.SupportMessage{ID: 9, Assunto: req.Assunto, Mensagem: req.Mensagem, Status: model.SupportPendente}, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id int64, status string) (*model.SupportMessage, error) {
	return &model.SupportMessage{ID: id, Status: status}, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []int64
}

func (f *fakeMailer) SendSupportMessage(_ context.Context, msg *model.SupportMessage, _ model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg.ID)
	return nil
}

func (f *fakeMailer) SendCustom(context.Context, string, string, string) error {
	return nil
}

func TestCreateForwardsByEmail(t *testing.T) {
	repo := &fakeRepo{}
	mailer := &fakeMailer{}
	svc := NewService(repo, mailer, nil)

	msg, err := svc.Create(context.Background(), model.User{ID: 1}, &model.SupportRequest{Assunto: model.SupportDuvida, Mensagem: "  Como exporto o PDF?  "})
	require.NoError(t, err)
	assert.Equal(t, "Como exporto o PDF?", repo.created.Mensagem)
	assert.Equal(t, model.SupportPendente, msg.Status)

	svc.Wait()
	assert.Equal(t, []int64{9}, mailer.sent)
}

func TestCreateValidation(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), model.User{}, &model.SupportRequest{Assunto: model.SupportDuvida, Mensagem: "   "})
	assert.ErrorContains(t, err, "Mensagem não pode ser vazia.")

	_, err = svc.Create(context.Background(), model.User{}, &model.SupportRequest{Assunto: "elogio", Mensagem: "ok"})
	assert.ErrorContains(t, err, "Assunto inválido.")
	assert.Nil(t, repo.created)
}

func TestUpdateStatus(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), 1, "RESOLVIDO")
	assert.Error(t, err)

	msg, err := svc.UpdateStatus(context.Background(), 1, model.SupportLida)
	require.NoError(t, err)
	assert.Equal(t, model.SupportLida, msg.Status)
}
