// Package material manages educational materials and their files.
package material

import (
	"context"
	"strconv"
	"strings"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

type Service struct {
	repo     repository.MaterialRepository
	maxBytes int64
}

func NewService(repo repository.MaterialRepository, maxUploadBytes int64) *Service {
	if maxUploadBytes <= 0 {
		maxUploadBytes = apiclient.MaxUploadBytes
	}
	return &Service{repo: repo, maxBytes: maxUploadBytes}
}

// MaxUploadBytes is the per-file ceiling.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxBytes
}

func (s *Service) List(ctx context.Context, ubsID int64) ([]model.Material, error) {
	return s.repo.List(ctx, ubsID)
}

// Create uploads the material with an optional first file.
func (s *Service) Create(ctx context.Context, in *model.MaterialInput, file *apiclient.File) (*model.Material, error) {
	titulo := strings.TrimSpace(in.Titulo)
	if titulo == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "titulo", Message: "informe o título", Code: "required"})
	}

	fields := map[string]string{
		"ubs_id": strconv.FormatInt(in.UBSID, 10),
		"titulo": titulo,
		"ativo":  "true",
	}
	for k, v := range map[string]string{
		"descricao":    in.Descricao,
		"categoria":    in.Categoria,
		"publico_alvo": in.PublicoAlvo,
	} {
		if v = strings.TrimSpace(v); v != "" {
			fields[k] = v
		}
	}
	if in.Ativo != nil {
		fields["ativo"] = strconv.FormatBool(*in.Ativo)
	}

	form := &apiclient.Multipart{Fields: fields, MaxFileSize: s.maxBytes}
	if file != nil {
		if err := s.checkFile(file); err != nil {
			return nil, err
		}
		form.Files = []apiclient.File{*file}
	}
	return s.repo.Create(ctx, form)
}

func (s *Service) checkFile(f *apiclient.File) error {
	if f.Name == "" || len(f.Data) == 0 {
		return apperrors.Validation(apperrors.FieldError{Field: "file", Message: "arquivo vazio", Code: "required"})
	}
	f.Field = "file"
	return apiclient.CheckSize(f.Name, int64(len(f.Data)), s.maxBytes)
}

func (s *Service) Update(ctx context.Context, id int64, patch *model.MaterialPatch) (*model.Material, error) {
	if patch.Titulo != nil && strings.TrimSpace(*patch.Titulo) == "" {
		return nil, apperrors.Validation(apperrors.FieldError{Field: "titulo", Message: "informe o título", Code: "required"})
	}
	return s.repo.Update(ctx, id, patch)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddFile(ctx context.Context, id int64, file apiclient.File) (*model.MaterialFile, error) {
	if err := s.checkFile(&file); err != nil {
		return nil, err
	}
	return s.repo.AddFile(ctx, id, &apiclient.Multipart{Files: []apiclient.File{file}, MaxFileSize: s.maxBytes})
}

func (s *Service) DeleteFile(ctx context.Context, fileID int64) error {
	return s.repo.DeleteFile(ctx, fileID)
}

func (s *Service) Download(ctx context.Context, fileID int64) (*apiclient.BlobData, error) {
	return s.repo.Download(ctx, fileID)
}
