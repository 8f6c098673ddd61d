package model

import "encoding/json"

const (
	MicroareaCoberta    = "COBERTA"
	MicroareaDescoberta = "DESCOBERTA"
)

type Microarea struct {
	ID        int64           `json:"id,omitempty"`
	UBSID     int64           `json:"ubs_id" binding:"required,gt=0"`
	Nome      string          `json:"nome" binding:"required"`
	Status    string          `json:"status" binding:"omitempty,oneof=COBERTA DESCOBERTA"`
	Populacao int             `json:"populacao" binding:"gte=0"`
	Familias  int             `json:"familias" binding:"gte=0"`
	GeoJSON   json.RawMessage `json:"geojson,omitempty"`
	CreatedAt *Timestamp      `json:"created_at,omitempty"`
	UpdatedAt *Timestamp      `json:"updated_at,omitempty"`
}

type MicroareaPatch struct {
	Nome      *string         `json:"nome,omitempty"`
	Status    *string         `json:"status,omitempty" binding:"omitempty,oneof=COBERTA DESCOBERTA"`
	Populacao *int            `json:"populacao,omitempty" binding:"omitempty,gte=0"`
	Familias  *int            `json:"familias,omitempty" binding:"omitempty,gte=0"`
	GeoJSON   json.RawMessage `json:"geojson,omitempty"`
}

// Agent is a community health agent (ACS) assigned to a microarea.
type Agent struct {
	ID            int64      `json:"id,omitempty"`
	UsuarioID     int64      `json:"usuario_id" binding:"required,gt=0"`
	MicroareaID   int64      `json:"microarea_id" binding:"required,gt=0"`
	Ativo         *bool      `json:"ativo"`
	Nome          *string    `json:"nome,omitempty"`
	MicroareaNome *string    `json:"microarea_nome,omitempty"`
	Familias      *int       `json:"familias,omitempty"`
	Pacientes     *int       `json:"pacientes,omitempty"`
	CreatedAt     *Timestamp `json:"created_at,omitempty"`
	UpdatedAt     *Timestamp `json:"updated_at,omitempty"`
}

type AgentPatch struct {
	MicroareaID *int64 `json:"microarea_id,omitempty" binding:"omitempty,gt=0"`
	Ativo       *bool  `json:"ativo,omitempty"`
}

type TerritoryKPIs struct {
	PopulacaoAdscrita     int     `json:"populacao_adscrita"`
	FamiliasCadastradas   int     `json:"familias_cadastradas"`
	MicroareasDescobertas int     `json:"microareas_descobertas"`
	CoberturaESF          float64 `json:"cobertura_esf"`
}
