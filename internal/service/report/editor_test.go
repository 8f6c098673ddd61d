package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/internal/session"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
)

const testDelay = 20 * time.Millisecond

type fakeRepo struct {
	repository.ReportRepository

	mu        sync.Mutex
	diag      *model.Diagnosis
	patches   []map[string]interface{}
	patchFn   func(ctx context.Context, n int, fields map[string]interface{}) error
	submitErr error
	submits   int
}

func newFakeRepo() *fakeRepo {
	nome := "UBS Centro"
	return &fakeRepo{diag: &model.Diagnosis{
		UBS:        model.Report{ID: 1, Status: model.ReportDraft, NomeUBS: &nome},
		Submission: model.Submission{Status: model.ReportDraft},
	}}
}

func (f *fakeRepo) Diagnosis(context.Context, int64) (*model.Diagnosis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := *f.diag
	return &d, nil
}

func (f *fakeRepo) PatchHeader(ctx context.Context, id int64, fields map[string]interface{}) (*model.Report, error) {
	f.mu.Lock()
	f.patches = append(f.patches, fields)
	n := len(f.patches)
	fn := f.patchFn
	f.mu.Unlock()

	if fn != nil {
		if err := fn(ctx, n, fields); err != nil {
			return nil, err
		}
	}
	r := model.Report{ID: id, Status: model.ReportDraft}
	if v, ok := fields["nome_ubs"].(string); ok {
		r.NomeUBS = &v
	}
	return &r, nil
}

func (f *fakeRepo) Submit(context.Context, int64) (*model.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	now := model.NewTimestamp(time.Now())
	return &model.SubmitResult{Status: model.ReportSubmitted, SubmittedAt: now}, nil
}

func (f *fakeRepo) patchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.patches)
}

func (f *fakeRepo) lastPatch() map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.patches) == 0 {
		return nil
	}
	return f.patches[len(f.patches)-1]
}

type errRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *errRecorder) record(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *errRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errs)
}

func loadedEditor(t *testing.T, repo *fakeRepo, rec *errRecorder) *Editor {
	t.Helper()
	var onError func(error)
	if rec != nil {
		onError = rec.record
	}
	e := newEditor(context.Background(), 1, repo, testDelay, nil, onError)
	t.Cleanup(e.Close)
	v, err := e.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateLoaded, v.State)
	return e
}

func TestEditorAutosaveCommitsOnlyLastValue(t *testing.T) {
	repo := newFakeRepo()
	e := loadedEditor(t, repo, nil)

	for _, v := range []string{"U", "UB", "UBS Norte"} {
		view, err := e.Edit("nome_ubs", v)
		require.NoError(t, err)
		assert.Equal(t, StateDirty, view.State)
	}

	assert.Eventually(t, func() bool { return e.State() == StateLoaded }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, repo.patchCount())
	assert.Equal(t, "UBS Norte", repo.lastPatch()["nome_ubs"])
	assert.Equal(t, "UBS Norte", *e.View().Diagnosis.UBS.NomeUBS)
	assert.Empty(t, e.View().Pending)
}

func TestEditorFieldParsing(t *testing.T) {
	e := loadedEditor(t, newFakeRepo(), nil)

	_, err := e.Edit("numero_microareas", "-1")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "numero_microareas", appErr.Fields[0].Field)

	_, err = e.Edit("campo_inexistente", "x")
	assert.Error(t, err)

	v, err := e.Edit("numero_microareas", "12")
	require.NoError(t, err)
	assert.Equal(t, 12, v.Pending["numero_microareas"])

	v, err = e.Edit("cnes", "   ")
	require.NoError(t, err)
	assert.Nil(t, v.Pending["cnes"])
	assert.Contains(t, v.Pending, "cnes")
}

func TestEditorRejectsRenovationBeforeOpening(t *testing.T) {
	e := loadedEditor(t, newFakeRepo(), nil)

	_, err := e.Edit("data_inauguracao", "2020-05-10")
	require.NoError(t, err)
	_, err = e.Edit("data_ultima_reforma", "2019-01-01")
	require.Error(t, err)
	_, err = e.Edit("data_ultima_reforma", "2021-01-01")
	assert.NoError(t, err)
}

func TestEditorEditDuringSaveStaysDirty(t *testing.T) {
	repo := newFakeRepo()
	started := make(chan struct{})
	release := make(chan struct{})
	repo.patchFn = func(ctx context.Context, n int, _ map[string]interface{}) error {
		if n == 1 {
			close(started)
			<-release
		}
		return nil
	}
	e := loadedEditor(t, repo, nil)

	_, err := e.Edit("nome_ubs", "Primeiro")
	require.NoError(t, err)
	<-started
	assert.Equal(t, StateSaving, e.State())

	_, err = e.Edit("cnes", "1234567")
	require.NoError(t, err)
	assert.Equal(t, StateSaving, e.State())
	close(release)

	assert.Eventually(t, func() bool { return repo.patchCount() == 2 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return e.State() == StateLoaded }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "1234567", repo.lastPatch()["cnes"])
}

func TestEditorStaleSaveDoesNotOverwriteNewer(t *testing.T) {
	repo := newFakeRepo()
	started := make(chan struct{})
	repo.patchFn = func(ctx context.Context, n int, _ map[string]interface{}) error {
		if n == 1 {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}
	rec := &errRecorder{}
	e := loadedEditor(t, repo, rec)

	_, err := e.Edit("nome_ubs", "Antigo")
	require.NoError(t, err)
	<-started
	_, err = e.Edit("nome_ubs", "Novo")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return e.State() == StateLoaded }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Novo", repo.lastPatch()["nome_ubs"])
	assert.Equal(t, 0, rec.count())
}

func TestEditorSaveErrorKeepsChanges(t *testing.T) {
	repo := newFakeRepo()
	repo.patchFn = func(_ context.Context, n int, _ map[string]interface{}) error {
		if n == 1 {
			return &apiclient.NetworkError{Op: "PATCH /ubs/1", Cause: errors.New("refused")}
		}
		return nil
	}
	rec := &errRecorder{}
	e := loadedEditor(t, repo, rec)

	_, err := e.Edit("responsavel_nome", "Ana")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return e.State() == StateError }, time.Second, 5*time.Millisecond)

	v := e.View()
	assert.Equal(t, "Ana", v.Pending["responsavel_nome"])
	assert.Equal(t, apiclient.CannotConnectMessage, v.Error)
	assert.Equal(t, 1, rec.count())

	v, err = e.Save(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateLoaded, v.State)
	assert.Equal(t, 2, repo.patchCount())
}

func TestEditorSubmitKeepsTransportFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.patchFn = func(context.Context, int, map[string]interface{}) error {
		return &apiclient.NetworkError{Op: "PATCH /ubs/1", Reason: "transport", Cause: errors.New("refused")}
	}
	e := newEditor(context.Background(), 1, repo, time.Hour, nil, nil)
	t.Cleanup(e.Close)
	_, err := e.Load(context.Background())
	require.NoError(t, err)
	_, err = e.Edit("cnes", "7654321")
	require.NoError(t, err)

	_, err = e.Submit(context.Background())
	var netErr *apiclient.NetworkError
	require.ErrorAs(t, err, &netErr)
	var appErr *apperrors.AppError
	assert.False(t, errors.As(err, &appErr))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Zero(t, repo.submits)
}

func TestEditorSubmitFlushesPendingEdits(t *testing.T) {
	repo := newFakeRepo()
	e := newEditor(context.Background(), 1, repo, time.Hour, nil, nil)
	t.Cleanup(e.Close)
	_, err := e.Load(context.Background())
	require.NoError(t, err)

	_, err = e.Edit("cnes", "7654321")
	require.NoError(t, err)

	res, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ReportSubmitted, res.Status)
	assert.Equal(t, 1, repo.patchCount())
	assert.Equal(t, StateSubmitted, e.State())

	_, err = e.Edit("cnes", "1")
	assert.ErrorIs(t, err, ErrSubmitted)
}

func TestEditorSubmitRejectedBlankCNES(t *testing.T) {
	repo := newFakeRepo()
	repo.submitErr = &apiclient.Error{
		Status:  400,
		Message: "Relatório incompleto",
		Fields: []apperrors.FieldError{
			{Field: "cnes", Message: "CNES é obrigatório para envio"},
			{Field: "area_atuacao", Message: "Área de atuação é obrigatória"},
		},
	}
	e := loadedEditor(t, repo, nil)

	_, err := e.Submit(context.Background())
	var rejected *SubmitRejected
	require.True(t, errors.As(err, &rejected))
	assert.True(t, rejected.HasField("cnes"))
	assert.Equal(t, "CNES é obrigatório para envio\nÁrea de atuação é obrigatória", rejected.Error())
	assert.Equal(t, StateLoaded, e.State())
}

func TestEditorNotLoaded(t *testing.T) {
	e := newEditor(context.Background(), 1, newFakeRepo(), testDelay, nil, nil)
	defer e.Close()
	_, err := e.Edit("cnes", "1")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestRegistryClosesEditorsOnInvalidation(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(session.NewMemoryStore(time.Minute), session.NewLocalBus())
	sess, err := mgr.Create(ctx, "opaque-token", model.User{ID: 7, Role: model.RoleGestor})
	require.NoError(t, err)

	repo := newFakeRepo()
	reg := NewRegistry(repo, mgr, nil, time.Hour, nil, nil)
	svc := NewService(repo, reg, 0)

	_, err = svc.Edit(ctx, sess, 1, "cnes", "123")
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())
	assert.Same(t, reg.Open(sess, 1), reg.Open(sess, 1))

	require.NoError(t, mgr.Invalidate(ctx, sess.ID, session.ReasonLogout))
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, 0, repo.patchCount())
}

func TestServiceCreateRequiresHeader(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, 0)
	_, err := svc.Create(context.Background(), &model.CreateReportRequest{NomeUBS: "UBS", CNES: " "})
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Len(t, appErr.Fields, 2)
	assert.Equal(t, "cnes", appErr.Fields[0].Field)
	assert.Equal(t, "area_atuacao", appErr.Fields[1].Field)
}
