package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
	apperrors "github.com/jwalitptl/ubs-console/pkg/errors"
	"github.com/jwalitptl/ubs-console/pkg/validator"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperrors.NewValidation("Campos inválidos", apperrors.FieldError{Field: "cnes", Message: "Campo obrigatório"}), http.StatusBadRequest, "Campos inválidos"},
		{"api error", &apiclient.Error{Status: http.StatusConflict, Message: "Relatório já enviado"}, http.StatusConflict, "Relatório já enviado"},
		{"network", &apiclient.NetworkError{Op: "GET /ubs", Cause: errors.New("refused")}, http.StatusBadGateway, apiclient.CannotConnectMessage},
		{"too large", &apiclient.FileTooLargeError{Name: "a.pdf", Size: 30 << 20, Limit: 20 << 20}, http.StatusRequestEntityTooLarge, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, msgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Classify(tt.err)
			assert.Equal(t, tt.status, resp.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, resp.Message)
			}
		})
	}
}

func TestClassifyBindingErrors(t *testing.T) {
	req := struct {
		CPF string `json:"cpf" validate:"required,cpf"`
	}{CPF: "11111111111"}

	err := validator.New().Engine().Struct(req)
	resp := Classify(err)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "cpf", resp.Errors[0].Field)
}

func TestErrorHandlerUnauthorizedEndsSession(t *testing.T) {
	f := newGuardFixture(t)
	sess, cookies := f.login(t, model.RoleGestor)

	r := f.engine(func(c *gin.Context) {
		_ = c.Error(apperrors.Unauthorized(nil))
	})

	rec := do(r, cookies, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, LoginPath, decode(t, rec)["redirect"])

	_, err := f.manager.Load(httptest.NewRequest(http.MethodGet, "/", nil).Context(), sess.ID)
	assert.Error(t, err)
}

func TestErrorHandlerToastsFailedMutations(t *testing.T) {
	f := newGuardFixture(t)
	sess, cookies := f.login(t, model.RoleGestor)
	center := notify.NewCenter(nil)

	r := gin.New()
	r.Use(ErrorHandler(ErrorConfig{Sessions: f.manager, Cookies: f.cookies, Center: center}))
	r.DELETE("/protected", f.guard.RequireSession(), func(c *gin.Context) {
		_ = c.Error(&apiclient.Error{Status: http.StatusNotFound, Message: "Problema não encontrado"})
	})

	req := httptest.NewRequest(http.MethodDelete, "/protected", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	toasts := center.Toasts(sess.ID)
	require.Len(t, toasts, 1)
	assert.Equal(t, "Problema não encontrado", toasts[0].Message)
	assert.Equal(t, notify.TypeError, toasts[0].Type)
}
