package material

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

type fakeRepo struct {
	repository.MaterialRepository
	form *apiclient.Multipart
}

func (f *fakeRepo) Create(_ context.Context, form *apiclient.Multipart) (*model.Material, error) {
	f.form = form
	return &model.Material{ID: 1, Titulo: form.Fields["titulo"]}, nil
}

func (f *fakeRepo) AddFile(_ context.Context, id int64, form *apiclient.Multipart) (*model.MaterialFile, error) {
	f.form = form
	return &model.MaterialFile{ID: 2, MaterialID: id, OriginalFilename: form.Files[0].Name}, nil
}

func TestCreateBuildsForm(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, 0)

	inactive := false
	_, err := svc.Create(context.Background(), &model.MaterialInput{
		UBSID: 3, Titulo: " Cartilha ", Categoria: "vacina", Ativo: &inactive,
	}, &apiclient.File{Name: "cartilha.pdf", Data: []byte("%PDF")})
	require.NoError(t, err)

	assert.Equal(t, "3", repo.form.Fields["ubs_id"])
	assert.Equal(t, "Cartilha", repo.form.Fields["titulo"])
	assert.Equal(t, "false", repo.form.Fields["ativo"])
	assert.NotContains(t, repo.form.Fields, "descricao")
	require.Len(t, repo.form.Files, 1)
	assert.Equal(t, "file", repo.form.Files[0].Field)
}

func TestFileOverLimitIsRejectedBeforeSending(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, 10)

	_, err := svc.AddFile(context.Background(), 1, apiclient.File{Name: "grande.pdf", Data: make([]byte, 11)})
	var tooLarge *apiclient.FileTooLargeError
	require.True(t, errors.As(err, &tooLarge))
	assert.Nil(t, repo.form)

	f, err := svc.AddFile(context.Background(), 1, apiclient.File{Name: "ok.pdf", Data: make([]byte, 10)})
	require.NoError(t, err)
	assert.Equal(t, "ok.pdf", f.OriginalFilename)
}

func TestDefaultLimitIsTwentyMegabytes(t *testing.T) {
	assert.Equal(t, int64(20<<20), NewService(&fakeRepo{}, 0).MaxUploadBytes())
}
