package overlay

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ubs-console/internal/handler/handlertest"
	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/internal/notify"
)

func setup(t *testing.T) *handlertest.Fixture {
	f := handlertest.New(t)
	NewHandler(f.Base()).RegisterRoutes(f.Protected)
	return f
}

func TestOverlayShowsHeadOfQueue(t *testing.T) {
	f := setup(t)
	sess, cookies := f.Login(model.RoleGestor)

	first := f.Center.Confirm(sess.ID, notify.ConfirmOptions{Message: "Excluir problema?"})
	second := f.Center.Confirm(sess.ID, notify.ConfirmOptions{Message: "Excluir ação?"})
	f.Center.Success(sess.ID, "Salvo")

	body := f.Decode(f.Do(http.MethodGet, "/api/v1/overlay", nil, cookies))
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["toasts"], 1)
	assert.Equal(t, first.Dialog().ID, data["dialog"].(map[string]interface{})["id"])

	rec := f.Do(http.MethodPost, "/api/v1/overlay/dialogs/"+first.Dialog().ID, map[string]interface{}{"confirmed": true}, cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	next := f.Decode(rec)["data"].(map[string]interface{})
	assert.Equal(t, second.Dialog().ID, next["dialog"].(map[string]interface{})["id"])
}

func TestAnswerUnknownDialog(t *testing.T) {
	f := setup(t)
	_, cookies := f.Login(model.RoleUser)

	rec := f.Do(http.MethodPost, "/api/v1/overlay/dialogs/nope", map[string]interface{}{"confirmed": true}, cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequiredPromptNeedsValue(t *testing.T) {
	f := setup(t)
	sess, cookies := f.Login(model.RoleGestor)
	p := f.Center.Prompt(sess.ID, notify.PromptOptions{Required: true})

	rec := f.Do(http.MethodPost, "/api/v1/overlay/dialogs/"+p.Dialog().ID, map[string]interface{}{"confirmed": true, "value": ""}, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, pending := f.Center.Current(sess.ID)
	assert.True(t, pending)
}

func TestDismissToast(t *testing.T) {
	f := setup(t)
	sess, cookies := f.Login(model.RoleUser)
	toast := f.Center.Info(sess.ID, "Bem-vinda")

	assert.Equal(t, http.StatusNoContent, f.Do(http.MethodDelete, "/api/v1/overlay/toasts/"+toast.ID, nil, cookies).Code)
	assert.Equal(t, http.StatusNotFound, f.Do(http.MethodDelete, "/api/v1/overlay/toasts/"+toast.ID, nil, cookies).Code)
}
