package model

const (
	StatusPlanejado   = "PLANEJADO"
	StatusEmAndamento = "EM_ANDAMENTO"
	StatusConcluido   = "CONCLUIDO"
)

// Problem is a GUT-prioritized problem of a UBS.
type Problem struct {
	ID            int64      `json:"id,omitempty"`
	UBSID         int64      `json:"ubs_id,omitempty"`
	Titulo        string     `json:"titulo"`
	Descricao     *string    `json:"descricao"`
	Gravidade     int        `json:"gut_gravidade"`
	Urgencia      int        `json:"gut_urgencia"`
	Tendencia     int        `json:"gut_tendencia"`
	Score         int        `json:"gut_score,omitempty"`
	IsPrioritario bool       `json:"is_prioritario"`
	CreatedAt     *Timestamp `json:"created_at,omitempty"`
	UpdatedAt     *Timestamp `json:"updated_at,omitempty"`
}

type ProblemInput struct {
	Titulo        string  `json:"titulo" binding:"required,max=255"`
	Descricao     *string `json:"descricao"`
	Gravidade     int     `json:"gut_gravidade" binding:"required,min=1,max=5"`
	Urgencia      int     `json:"gut_urgencia" binding:"required,min=1,max=5"`
	Tendencia     int     `json:"gut_tendencia" binding:"required,min=1,max=5"`
	IsPrioritario bool    `json:"is_prioritario"`
}

type Intervention struct {
	ID          int64      `json:"id,omitempty"`
	ProblemID   int64      `json:"problem_id,omitempty"`
	Objetivo    string     `json:"objetivo" binding:"required"`
	Metas       *string    `json:"metas"`
	Responsavel *string    `json:"responsavel" binding:"omitempty,max=255"`
	Status      string     `json:"status" binding:"omitempty,oneof=PLANEJADO EM_ANDAMENTO CONCLUIDO"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
}

type InterventionAction struct {
	ID             int64      `json:"id,omitempty"`
	InterventionID int64      `json:"intervention_id,omitempty"`
	Acao           string     `json:"acao" binding:"required"`
	Prazo          *Date      `json:"prazo"`
	Status         string     `json:"status" binding:"omitempty,oneof=PLANEJADO EM_ANDAMENTO CONCLUIDO"`
	Observacoes    *string    `json:"observacoes"`
	CreatedAt      *Timestamp `json:"created_at,omitempty"`
	UpdatedAt      *Timestamp `json:"updated_at,omitempty"`
}
