package model

const (
	AppointmentAgendado   = "AGENDADO"
	AppointmentCancelado  = "CANCELADO"
	AppointmentRealizado  = "REALIZADO"
	AppointmentReagendado = "REAGENDADO"
)

type Appointment struct {
	ID                 int64      `json:"id"`
	ProfissionalID     int64      `json:"profissional_id"`
	PacienteID         int64      `json:"paciente_id"`
	DataHora           Timestamp  `json:"data_hora"`
	Status             string     `json:"status"`
	Observacoes        *string    `json:"observacoes"`
	ConfirmacaoEnviada *Timestamp `json:"confirmacao_enviada,omitempty"`
	NomePaciente       *string    `json:"nome_paciente,omitempty"`
	NomeProfissional   *string    `json:"nome_profissional,omitempty"`
	CargoProfissional  *string    `json:"cargo_profissional,omitempty"`
	CreatedAt          *Timestamp `json:"created_at,omitempty"`
	UpdatedAt          *Timestamp `json:"updated_at,omitempty"`
}

type CreateAppointmentRequest struct {
	ProfissionalID int64     `json:"profissional_id" binding:"required,gt=0"`
	DataHora       Timestamp `json:"data_hora" binding:"required"`
	Observacoes    *string   `json:"observacoes"`
}

type UpdateAppointmentRequest struct {
	DataHora    *Timestamp `json:"data_hora,omitempty"`
	Status      string     `json:"status,omitempty" binding:"omitempty,oneof=AGENDADO CANCELADO REALIZADO REAGENDADO"`
	Observacoes *string    `json:"observacoes,omitempty"`
}

// ScheduleBlock is a period in which a professional takes no appointments.
type ScheduleBlock struct {
	ID             int64      `json:"id,omitempty"`
	ProfissionalID *int64     `json:"profissional_id,omitempty"`
	DataInicio     Timestamp  `json:"data_inicio" binding:"required"`
	DataFim        Timestamp  `json:"data_fim" binding:"required"`
	Motivo         *string    `json:"motivo"`
	CreatedAt      *Timestamp `json:"created_at,omitempty"`
}

type Professional struct {
	ID    int64   `json:"id"`
	Nome  string  `json:"nome"`
	Cargo *string `json:"cargo,omitempty"`
	Email string  `json:"email,omitempty"`
}

// Agenda is a professional's calendar for a date range.
type Agenda struct {
	Agendamentos []Appointment   `json:"agendamentos"`
	Bloqueios    []ScheduleBlock `json:"bloqueios"`
}
