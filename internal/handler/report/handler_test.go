package report

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/handler/handlertest"
	"github.com/jwalitptl/ubs-console/internal/middleware"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/internal/service/report"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

type obj = map[string]interface{}

func setup(t *testing.T, uploadLimit int64) (*handlertest.Fixture, *Handler) {
	f := handlertest.New(t)
	registry := report.NewRegistry(f.Repos.Report, f.Sessions, f.Center, 20*time.Millisecond, nil, nil)
	h := NewHandler(f.Base(), report.NewService(f.Repos.Report, registry, uploadLimit), f.Guard, uploadLimit)
	h.RegisterRoutes(f.Protected)
	return f, h
}

func serveDiagnosis(f *handlertest.Fixture, cnes string) {
	nome := "UBS Centro"
	f.API.HandleFunc("GET /ubs/{id}/diagnosis", handlertest.JSON(http.StatusOK, model.Diagnosis{
		UBS:        model.Report{ID: 9, Status: model.ReportDraft, NomeUBS: &nome, CNES: &cnes},
		Submission: model.Submission{Status: model.ReportDraft},
	}))
}

func TestSubmitRejectedFieldsAnswer422(t *testing.T) {
	f, _ := setup(t, 0)
	sess, cookies := f.Login(model.RoleGestor)
	serveDiagnosis(f, "")
	f.API.HandleFunc("POST /ubs/{id}/submit", handlertest.JSON(http.StatusBadRequest, obj{
		"detail": obj{
			"detail": "Relatório incompleto",
			"errors": []obj{
				{"field": "cnes", "message": "CNES é obrigatório."},
				{"field": "area_atuacao", "message": "Área de atuação é obrigatória."},
			},
		},
	}))

	rec := f.Do(http.MethodPost, "/api/v1/ubs/9/submit", nil, cookies)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Errors, 2)
	assert.Equal(t, "cnes", body.Errors[0].Field)

	toasts := f.Center.Toasts(sess.ID)
	require.Len(t, toasts, 1)
	assert.Equal(t, notify.TypeError, toasts[0].Type)
	assert.Equal(t, "CNES é obrigatório.\nÁrea de atuação é obrigatória.", toasts[0].Message)
}

func TestSubmitSucceeds(t *testing.T) {
	f, _ := setup(t, 0)
	sess, cookies := f.Login(model.RoleGestor)
	serveDiagnosis(f, "1234567")
	f.API.HandleFunc("POST /ubs/{id}/submit", handlertest.JSON(http.StatusOK, model.SubmitResult{Status: model.ReportSubmitted}))

	rec := f.Do(http.MethodPost, "/api/v1/ubs/9/submit", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	toast, ok := f.WaitToast(sess, notify.TypeSuccess)
	require.True(t, ok)
	assert.Equal(t, "Relatório enviado", toast.Message)

	rec = f.Do(http.MethodPatch, "/api/v1/ubs/9/fields", obj{"field": "cnes", "value": "7654321"}, cookies)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSubmitWhenSaveCannotReachAPIAnswers502(t *testing.T) {
	f, _ := setup(t, 0)
	_, cookies := f.Login(model.RoleGestor)
	serveDiagnosis(f, "1234567")
	f.API.HandleFunc("PATCH /ubs/{id}", func(w http.ResponseWriter, r *http.Request) {
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(t, err)
		_ = conn.Close()
	})

	rec := f.Do(http.MethodPatch, "/api/v1/ubs/9/fields", obj{"field": "numero_microareas", "value": "6"}, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.Do(http.MethodPost, "/api/v1/ubs/9/submit", nil, cookies)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())

	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apiclient.CannotConnectMessage, body.Message)
	assert.False(t, f.Called(http.MethodPost, "/ubs/9/submit"))
}

func TestCreateRequiresHeaderFields(t *testing.T) {
	f, _ := setup(t, 0)
	_, cookies := f.Login(model.RoleGestor)

	rec := f.Do(http.MethodPost, "/api/v1/ubs", obj{"nome_ubs": "UBS Norte"}, cookies)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	fields := []string{}
	for _, e := range body.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"cnes", "area_atuacao"}, fields)
	assert.Empty(t, f.Calls())
}

func TestEditThenSavePatchesHeader(t *testing.T) {
	f, _ := setup(t, 0)
	_, cookies := f.Login(model.RoleGestor)
	serveDiagnosis(f, "1234567")

	var patched map[string]interface{}
	f.API.HandleFunc("PATCH /ubs/{id}", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&patched)
		handlertest.Reply(w, http.StatusOK, model.Report{ID: 9, Status: model.ReportDraft})
	})

	rec := f.Do(http.MethodPatch, "/api/v1/ubs/9/fields", obj{"field": "numero_microareas", "value": "6"}, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := f.Decode(rec)["data"].(map[string]interface{})
	assert.Equal(t, string(report.StateDirty), data["state"])

	rec = f.Do(http.MethodPost, "/api/v1/ubs/9/save", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(6), patched["numero_microareas"])

	rec = f.Do(http.MethodPatch, "/api/v1/ubs/9/fields", obj{"field": "numero_microareas", "value": "-1"}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteWaitsForConfirmation(t *testing.T) {
	f, _ := setup(t, 0)
	sess, cookies := f.Login(model.RoleGestor)
	f.API.HandleFunc("DELETE /ubs/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	dialogID := f.DialogID(f.Do(http.MethodDelete, "/api/v1/ubs/9", nil, cookies))
	assert.False(t, f.Called(http.MethodDelete, "/ubs/9"))

	f.Answer(sess, dialogID, notify.Answer{Confirmed: true})
	require.True(t, f.WaitFor(http.MethodDelete, "/ubs/9"))
	toast, ok := f.WaitToast(sess, notify.TypeSuccess)
	require.True(t, ok)
	assert.Equal(t, "Relatório excluído", toast.Message)
}

func TestDeleteCancelledRunsNothing(t *testing.T) {
	f, _ := setup(t, 0)
	sess, cookies := f.Login(model.RoleGestor)

	dialogID := f.DialogID(f.Do(http.MethodDelete, "/api/v1/ubs/attachments/3", nil, cookies))
	f.Answer(sess, dialogID, notify.Answer{Confirmed: false})

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.Calls())
	_, pending := f.Center.Current(sess.ID)
	assert.False(t, pending)
}

func TestUploadOverLimitIsRejectedBeforeSending(t *testing.T) {
	f, _ := setup(t, 16)
	_, cookies := f.Login(model.RoleGestor)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "mapa.pdf")
	require.NoError(t, err)
	_, _ = part.Write(bytes.Repeat([]byte("x"), 64))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ubs/9/attachments", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := f.Send(req, cookies)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, f.Calls())
}

func TestExportProxiesPDF(t *testing.T) {
	f, _ := setup(t, 0)
	_, cookies := f.Login(model.RoleGestor)
	f.API.HandleFunc("GET /ubs/{id}/export/pdf", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-GESTOR", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})

	rec := f.Do(http.MethodGet, "/api/v1/ubs/9/export/pdf", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "relatorio-situacional-9.pdf")
	assert.Equal(t, "%PDF-1.4", rec.Body.String())
}

func TestResourceCheckSendsToSetup(t *testing.T) {
	f, h := setup(t, 0)
	_, cookies := f.Login(model.RoleGestor)
	f.API.HandleFunc("GET /ubs", handlertest.JSON(http.StatusOK, model.Page[model.Report]{Items: []model.Report{}, Total: 0, Page: 1, PageSize: 1}))

	f.Protected.GET("/problems-page", f.Guard.RequireResource(h.ResourceCheck(), "/setup-ubs", model.RoleGestor), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := f.Do(http.MethodGet, "/api/v1/problems-page", nil, cookies)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "/setup-ubs", f.Decode(rec)["redirect"])
}
