package material

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/handler/handlertest"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/material"
)

func setup(t *testing.T, limit int64) *handlertest.Fixture {
	f := handlertest.New(t)
	NewHandler(f.Base(), material.NewService(f.Repos.Material, limit), f.Guard).RegisterRoutes(f.Protected)
	return f
}

func form(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = part.Write(content)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateWithoutFile(t *testing.T) {
	f := setup(t, 0)
	_, cookies := f.Login(model.RoleProfissional)

	var titulo, ativo string
	f.API.HandleFunc("POST /materiais", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		titulo = r.FormValue("titulo")
		ativo = r.FormValue("ativo")
		handlertest.Reply(w, http.StatusCreated, model.Material{ID: 3, UBSID: 9, Titulo: titulo, Ativo: true})
	})

	body, contentType := form(t, map[string]string{"ubs_id": "9", "titulo": " Cartilha de vacinação "}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materiais", body)
	req.Header.Set("Content-Type", contentType)
	rec := f.Send(req, cookies)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Cartilha de vacinação", titulo)
	assert.Equal(t, "true", ativo)
}

func TestCreateRejectsLargeFileBeforeSending(t *testing.T) {
	f := setup(t, 8)
	_, cookies := f.Login(model.RoleGestor)

	body, contentType := form(t, map[string]string{"ubs_id": "9", "titulo": "Folder"}, "folder.pdf", bytes.Repeat([]byte("x"), 32))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materiais", body)
	req.Header.Set("Content-Type", contentType)
	rec := f.Send(req, cookies)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, f.Calls())
}

func TestCreateNeedsEditorRole(t *testing.T) {
	f := setup(t, 0)
	_, cookies := f.Login(model.RoleACS)

	body, contentType := form(t, map[string]string{"ubs_id": "9", "titulo": "Folder"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materiais", body)
	req.Header.Set("Content-Type", contentType)
	assert.Equal(t, http.StatusForbidden, f.Send(req, cookies).Code)
}

func TestAddFileRequiresFile(t *testing.T) {
	f := setup(t, 0)
	_, cookies := f.Login(model.RoleGestor)

	body, contentType := form(t, map[string]string{"descricao": "sem arquivo"}, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materiais/3/files", body)
	req.Header.Set("Content-Type", contentType)
	rec := f.Send(req, cookies)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, f.Calls())
}

func TestAddFileOverRequestLimitAnswers413(t *testing.T) {
	f := setup(t, 0)
	_, cookies := f.Login(model.RoleGestor)

	body, contentType := form(t, nil, "ata.pdf", bytes.Repeat([]byte("x"), 4096))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/materiais/3/files", body)
	req.Header.Set("Content-Type", contentType)
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 512)
	rec := f.Send(req, cookies)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	assert.Empty(t, f.Calls())
}

func TestDownloadUsesBearerHeader(t *testing.T) {
	f := setup(t, 0)
	_, cookies := f.Login(model.RoleACS)
	f.API.HandleFunc("GET /materiais/files/{id}/download", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-ACS", r.Header.Get("Authorization"))
		assert.Empty(t, r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="cartilha.pdf"`)
		_, _ = w.Write([]byte("%PDF"))
	})

	rec := f.Do(http.MethodGet, "/api/v1/materiais/files/12/download", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "cartilha.pdf")
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestDeleteFileAfterConfirm(t *testing.T) {
	f := setup(t, 0)
	sess, cookies := f.Login(model.RoleGestor)
	f.API.HandleFunc("DELETE /materiais/files/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	dialogID := f.DialogID(f.Do(http.MethodDelete, "/api/v1/materiais/files/12", nil, cookies))
	f.Answer(sess, dialogID, notify.Answer{Confirmed: true})
	require.True(t, f.WaitFor(http.MethodDelete, "/materiais/files/12"))
	toast, ok := f.WaitToast(sess, notify.TypeSuccess)
	require.True(t, ok)
	assert.Equal(t, "Arquivo excluído", toast.Message)
}
