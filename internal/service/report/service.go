// Package report manages situational diagnostic reports: listing, drafts,
// the autosaving header editor, the explicit sections and submission.
package report

import (
	"context"
	"strings"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type Service struct {
	repo     repository.ReportRepository
	editors  *Registry
	maxBytes int64
}

func NewService(repo repository.ReportRepository, editors *Registry, maxUploadBytes int64) *Service {
	return &Service{repo: repo, editors: editors, maxBytes: maxUploadBytes}
}

func (s *Service) List(ctx context.Context, page, pageSize int) (*model.Page[model.Report], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return s.repo.List(ctx, page, pageSize)
}

func (s *Service) Create(ctx context.Context, req *model.CreateReportRequest) (*model.Report, error) {
	var fields []apperrors.FieldError
	for _, f := range []struct{ name, value string }{
		{"nome_ubs", req.NomeUBS},
		{"cnes", req.CNES},
		{"area_atuacao", req.AreaAtuacao},
	} {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, apperrors.FieldError{Field: f.name, Message: "campo obrigatório", Code: "required"})
		}
	}
	if len(fields) > 0 {
		return nil, apperrors.Validation(fields...)
	}
	return s.repo.Create(ctx, req)
}

func (s *Service) Delete(ctx context.Context, sess *session.Session, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.editors.Close(sess.ID, id)
	return nil
}

// Editor opens (or reuses) the session's editor and loads it if needed.
func (s *Service) Editor(ctx context.Context, sess *session.Session, id int64) (*Editor, View, error) {
	e := s.editors.Open(sess, id)
	if e.State() == StateUnloaded {
		v, err := e.Load(ctx)
		if err != nil {
			s.editors.Close(sess.ID, id)
			return nil, View{}, err
		}
		return e, v, nil
	}
	return e, e.View(), nil
}

// Reload refetches the diagnosis, keeping pending edits.
func (s *Service) Reload(ctx context.Context, sess *session.Session, id int64) (View, error) {
	return s.editors.Open(sess, id).Load(ctx)
}

func (s *Service) Edit(ctx context.Context, sess *session.Session, id int64, field, value string) (View, error) {
	e, _, err := s.Editor(ctx, sess, id)
	if err != nil {
		return View{}, err
	}
	return e.Edit(field, value)
}

func (s *Service) Save(ctx context.Context, sess *session.Session, id int64) (View, error) {
	e, _, err := s.Editor(ctx, sess, id)
	if err != nil {
		return View{}, err
	}
	return e.Save(ctx)
}

func (s *Service) Submit(ctx context.Context, sess *session.Session, id int64) (*model.SubmitResult, error) {
	e, _, err := s.Editor(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	return e.Submit(ctx)
}

func (s *Service) Export(ctx context.Context, id int64) (*apiclient.BlobData, error) {
	return s.repo.Export(ctx, id)
}

func (s *Service) PutTerritory(ctx context.Context, id int64, t *model.Territory) (*model.Territory, error) {
	return s.repo.PutTerritory(ctx, id, t)
}

func (s *Service) PutNeeds(ctx context.Context, id int64, n *model.Needs) (*model.Needs, error) {
	return s.repo.PutNeeds(ctx, id, n)
}

func (s *Service) AddProfessionalGroup(ctx context.Context, id int64, g *model.ProfessionalGroup) (*model.ProfessionalGroup, error) {
	return s.repo.AddProfessionalGroup(ctx, id, g)
}

func (s *Service) UpdateProfessionalGroup(ctx context.Context, groupID int64, g *model.ProfessionalGroup) (*model.ProfessionalGroup, error) {
	return s.repo.UpdateProfessionalGroup(ctx, groupID, g)
}

func (s *Service) DeleteProfessionalGroup(ctx context.Context, groupID int64) error {
	return s.repo.DeleteProfessionalGroup(ctx, groupID)
}

func (s *Service) AddIndicator(ctx context.Context, id int64, ind *model.Indicator) (*model.Indicator, error) {
	return s.repo.AddIndicator(ctx, id, ind)
}

func (s *Service) DeleteIndicator(ctx context.Context, indicatorID int64) error {
	return s.repo.DeleteIndicator(ctx, indicatorID)
}

// UploadAttachment checks the size ceiling before anything is sent.
func (s *Service) UploadAttachment(ctx context.Context, id int64, file apiclient.File, section, description string) (*model.Attachment, error) {
	if err := apiclient.CheckSize(file.Name, int64(len(file.Data)), s.maxBytes); err != nil {
		return nil, err
	}
	file.Field = "file"
	form := &apiclient.Multipart{Fields: map[string]string{}, Files: []apiclient.File{file}, MaxFileSize: s.maxBytes}
	if section != "" {
		form.Fields["section"] = section
	}
	if description != "" {
		form.Fields["description"] = description
	}
	return s.repo.UploadAttachment(ctx, id, form)
}

func (s *Service) DeleteAttachment(ctx context.Context, attachmentID int64) error {
	return s.repo.DeleteAttachment(ctx, attachmentID)
}
