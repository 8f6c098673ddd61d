package model

const (
	EventSalaVacina     = "SALA_VACINA"
	EventFarmaciaBasica = "FARMACIA_BASICA"
	EventReuniaoEquipe  = "REUNIAO_EQUIPE"
	EventOutro          = "OUTRO"
)

const (
	RecurrenceNone    = "NONE"
	RecurrenceDaily   = "DAILY"
	RecurrenceWeekly  = "WEEKLY"
	RecurrenceMonthly = "MONTHLY"
)

// EventTypes lists the accepted cronograma types.
var EventTypes = []string{EventSalaVacina, EventFarmaciaBasica, EventReuniaoEquipe, EventOutro}

// Event is one cronograma entry. A recurring event is stored once.
type Event struct {
	ID                   int64      `json:"id,omitempty"`
	UBSID                int64      `json:"ubs_id" binding:"required,gt=0"`
	Titulo               string     `json:"titulo" binding:"required,max=255"`
	Tipo                 string     `json:"tipo" binding:"omitempty,oneof=SALA_VACINA FARMACIA_BASICA REUNIAO_EQUIPE OUTRO"`
	Local                *string    `json:"local" binding:"omitempty,max=255"`
	Inicio               Timestamp  `json:"inicio"`
	Fim                  *Timestamp `json:"fim"`
	DiaInteiro           bool       `json:"dia_inteiro"`
	Observacoes          *string    `json:"observacoes"`
	Recorrencia          string     `json:"recorrencia" binding:"omitempty,oneof=NONE DAILY WEEKLY MONTHLY"`
	RecorrenciaIntervalo int        `json:"recorrencia_intervalo" binding:"omitempty,min=1"`
	RecorrenciaFim       *Date      `json:"recorrencia_fim"`
	CreatedAt            *Timestamp `json:"created_at,omitempty"`
	UpdatedAt            *Timestamp `json:"updated_at,omitempty"`
}

// EventPatch carries only the fields being changed.
type EventPatch struct {
	Titulo               *string    `json:"titulo,omitempty" binding:"omitempty,max=255"`
	Tipo                 *string    `json:"tipo,omitempty" binding:"omitempty,oneof=SALA_VACINA FARMACIA_BASICA REUNIAO_EQUIPE OUTRO"`
	Local                *string    `json:"local,omitempty" binding:"omitempty,max=255"`
	Inicio               *Timestamp `json:"inicio,omitempty"`
	Fim                  *Timestamp `json:"fim,omitempty"`
	DiaInteiro           *bool      `json:"dia_inteiro,omitempty"`
	Observacoes          *string    `json:"observacoes,omitempty"`
	Recorrencia          *string    `json:"recorrencia,omitempty" binding:"omitempty,oneof=NONE DAILY WEEKLY MONTHLY"`
	RecorrenciaIntervalo *int       `json:"recorrencia_intervalo,omitempty" binding:"omitempty,min=1"`
	RecorrenciaFim       *Date      `json:"recorrencia_fim,omitempty"`
}

// Occurrence is one concrete instance of an event on the calendar.
type Occurrence struct {
	EventID    int64     `json:"event_id"`
	Titulo     string    `json:"titulo"`
	Tipo       string    `json:"tipo"`
	Inicio     Timestamp `json:"inicio"`
	Fim        Timestamp `json:"fim"`
	DiaInteiro bool      `json:"dia_inteiro"`
}
