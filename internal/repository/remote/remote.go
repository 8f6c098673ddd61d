// Package remote implements the repositories on top of the UBS REST API.
package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jwalitptl/ubs-console/internal/repository"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

// Repositories bundles every API-backed repository.
type Repositories struct {
	Auth        repository.AuthRepository
	Report      repository.ReportRepository
	Problem     repository.ProblemRepository
	Appointment repository.AppointmentRepository
	Schedule    repository.ScheduleRepository
	Material    repository.MaterialRepository
	Team        repository.TeamRepository
	Support     repository.SupportRepository
}

func New(api *apiclient.Client) *Repositories {
	b := base{api: api}
	return &Repositories{
		Auth:        &authRepository{b},
		Report:      &reportRepository{b},
		Problem:     &problemRepository{b},
		Appointment: &appointmentRepository{b},
		Schedule:    &scheduleRepository{b},
		Material:    &materialRepository{b},
		Team:        &teamRepository{b},
		Support:     &supportRepository{b},
	}
}

type base struct {
	api *apiclient.Client
}

func (b base) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return b.api.GetJSON(ctx, path, query, out)
}

func (b base) post(ctx context.Context, path string, body, out interface{}) error {
	return b.api.SendJSON(ctx, http.MethodPost, path, body, out)
}

func (b base) patch(ctx context.Context, path string, body, out interface{}) error {
	return b.api.SendJSON(ctx, http.MethodPatch, path, body, out)
}

func (b base) put(ctx context.Context, path string, body, out interface{}) error {
	return b.api.SendJSON(ctx, http.MethodPut, path, body, out)
}

func (b base) delete(ctx context.Context, path string) error {
	return b.api.Delete(ctx, path)
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

func idParam(id int64) string {
	return strconv.FormatInt(id, 10)
}
