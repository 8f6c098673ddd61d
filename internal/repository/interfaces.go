package repository

import (
	"context"
	"time"

	"github.com/jwalitptl/ubs-console/internal/model"
	"github.com/jwalitptl/ubs-console/pkg/apiclient"
)

// All repository interfaces in one file. Every repository except audit is
// backed by the remote UBS API; credentials travel in the context.
type (
	AuthRepository interface {
		Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
		Register(ctx context.Context, req *model.RegisterPayload) (*model.User, error)
		Me(ctx context.Context) (*model.User, error)
		ResetPassword(ctx context.Context, email, senha string) error
		ClaimProfessional(ctx context.Context, claim *model.ProfessionalClaim) (*model.User, error)
		CreateProfessionalRequest(ctx context.Context, claim *model.ProfessionalClaim) (*model.ProfessionalRequest, error)
		MyProfessionalRequest(ctx context.Context) (*model.ProfessionalRequest, error)
		ListProfessionalRequests(ctx context.Context, status string) ([]model.ProfessionalRequest, error)
		ApproveProfessionalRequest(ctx context.Context, id int64) (*model.ProfessionalRequest, error)
		RejectProfessionalRequest(ctx context.Context, id int64, motivo string) (*model.ProfessionalRequest, error)
	}

	ReportRepository interface {
		List(ctx context.Context, page, pageSize int) (*model.Page[model.Report], error)
		Create(ctx context.Context, req *model.CreateReportRequest) (*model.Report, error)
		Diagnosis(ctx context.Context, id int64) (*model.Diagnosis, error)
		PatchHeader(ctx context.Context, id int64, fields map[string]interface{}) (*model.Report, error)
		Delete(ctx context.Context, id int64) error
		Submit(ctx context.Context, id int64) (*model.SubmitResult, error)
		Export(ctx context.Context, id int64) (*apiclient.BlobData, error)

		PutTerritory(ctx context.Context, id int64, t *model.Territory) (*model.Territory, error)
		PutNeeds(ctx context.Context, id int64, n *model.Needs) (*model.Needs, error)
		AddProfessionalGroup(ctx context.Context, id int64, g *model.ProfessionalGroup) (*model.ProfessionalGroup, error)
		UpdateProfessionalGroup(ctx context.Context, groupID int64, g *model.ProfessionalGroup) (*model.ProfessionalGroup, error)
		DeleteProfessionalGroup(ctx context.Context, groupID int64) error
		AddIndicator(ctx context.Context, id int64, ind *model.Indicator) (*model.Indicator, error)
		DeleteIndicator(ctx context.Context, indicatorID int64) error
		UploadAttachment(ctx context.Context, id int64, form *apiclient.Multipart) (*model.Attachment, error)
		DeleteAttachment(ctx context.Context, attachmentID int64) error
	}

	ProblemRepository interface {
		List(ctx context.Context, ubsID int64) ([]model.Problem, error)
		Create(ctx context.Context, ubsID int64, in *model.ProblemInput) (*model.Problem, error)
		Update(ctx context.Context, id int64, in *model.ProblemInput) (*model.Problem, error)
		Delete(ctx context.Context, id int64) error

		ListInterventions(ctx context.Context, problemID int64) ([]model.Intervention, error)
		CreateIntervention(ctx context.Context, problemID int64, in *model.Intervention) (*model.Intervention, error)
		UpdateIntervention(ctx context.Context, id int64, in *model.Intervention) (*model.Intervention, error)
		DeleteIntervention(ctx context.Context, id int64) error

		ListActions(ctx context.Context, interventionID int64) ([]model.InterventionAction, error)
		CreateAction(ctx context.Context, interventionID int64, in *model.InterventionAction) (*model.InterventionAction, error)
		UpdateAction(ctx context.Context, id int64, in *model.InterventionAction) (*model.InterventionAction, error)
		DeleteAction(ctx context.Context, id int64) error
	}

	AppointmentRepository interface {
		Mine(ctx context.Context) ([]model.Appointment, error)
		Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
		Update(ctx context.Context, id int64, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
		Confirm(ctx context.Context, id int64) (*model.Appointment, error)
		Agenda(ctx context.Context, professionalID int64, start, end time.Time) ([]model.Appointment, error)
		CreateBlock(ctx context.Context, b *model.ScheduleBlock) (*model.ScheduleBlock, error)
		ListBlocks(ctx context.Context, professionalID *int64) ([]model.ScheduleBlock, error)
		DeleteBlock(ctx context.Context, id int64) error
		Professionals(ctx context.Context, cargo string) ([]model.Professional, error)
		Specialties(ctx context.Context) ([]string, error)
	}

	ScheduleRepository interface {
		List(ctx context.Context, ubsID int64, start, end *time.Time) ([]model.Event, error)
		Create(ctx context.Context, ev *model.Event) (*model.Event, error)
		Update(ctx context.Context, id int64, patch *model.EventPatch) (*model.Event, error)
		Delete(ctx context.Context, id int64) error
	}

	MaterialRepository interface {
		List(ctx context.Context, ubsID int64) ([]model.Material, error)
		Create(ctx context.Context, form *apiclient.Multipart) (*model.Material, error)
		Update(ctx context.Context, id int64, patch *model.MaterialPatch) (*model.Material, error)
		Delete(ctx context.Context, id int64) error
		AddFile(ctx context.Context, id int64, form *apiclient.Multipart) (*model.MaterialFile, error)
		DeleteFile(ctx context.Context, fileID int64) error
		Download(ctx context.Context, fileID int64) (*apiclient.BlobData, error)
	}

	TeamRepository interface {
		KPIs(ctx context.Context, ubsID int64) (*model.TerritoryKPIs, error)
		ListMicroareas(ctx context.Context, ubsID int64) ([]model.Microarea, error)
		CreateMicroarea(ctx context.Context, m *model.Microarea) (*model.Microarea, error)
		UpdateMicroarea(ctx context.Context, id int64, patch *model.MicroareaPatch) (*model.Microarea, error)
		ListAgents(ctx context.Context, ubsID int64) ([]model.Agent, error)
		CreateAgent(ctx context.Context, a *model.Agent) (*model.Agent, error)
		UpdateAgent(ctx context.Context, id int64, patch *model.AgentPatch) (*model.Agent, error)
		ListACSUsers(ctx context.Context) ([]model.User, error)
	}

	SupportRepository interface {
		Create(ctx context.Context, req *model.SupportRequest) (*model.SupportMessage, error)
		List(ctx context.Context) ([]model.SupportMessage, error)
		UpdateStatus(ctx context.Context, id int64, status string) (*model.SupportMessage, error)
	}

	AuditRepository interface {
		Create(ctx context.Context, log *model.AuditLog) error
		List(ctx context.Context, filter model.AuditFilter) ([]*model.AuditLog, int64, error)
		Cleanup(ctx context.Context, before time.Time) (int64, error)
	}
)
