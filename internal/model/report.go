package model

const (
	ReportDraft     = "DRAFT"
	ReportSubmitted = "SUBMITTED"
)

// Report is the situational diagnostic of one UBS ("relatório situacional").
type Report struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`

	NomeRelatorio             *string `json:"nome_relatorio"`
	NomeUBS                   *string `json:"nome_ubs"`
	CNES                      *string `json:"cnes"`
	AreaAtuacao               *string `json:"area_atuacao"`
	NumeroHabitantesAtivos    *int    `json:"numero_habitantes_ativos"`
	NumeroMicroareas          *int    `json:"numero_microareas"`
	NumeroFamiliasCadastradas *int    `json:"numero_familias_cadastradas"`
	NumeroDomicilios          *int    `json:"numero_domicilios"`
	DomiciliosRurais          *int    `json:"domicilios_rurais"`
	DataInauguracao           *Date   `json:"data_inauguracao"`
	DataUltimaReforma         *Date   `json:"data_ultima_reforma"`
	DescritivosGerais         *string `json:"descritivos_gerais"`
	ObservacoesGerais         *string `json:"observacoes_gerais"`
	OutrosServicos            *string `json:"outros_servicos"`
	PeriodoReferencia         *string `json:"periodo_referencia"`
	IdentificacaoEquipe       *string `json:"identificacao_equipe"`
	ResponsavelNome           *string `json:"responsavel_nome"`
	ResponsavelCargo          *string `json:"responsavel_cargo"`
	ResponsavelContato        *string `json:"responsavel_contato"`
	FluxoAgendaAcesso         *string `json:"fluxo_agenda_acesso"`

	CreatedAt   *Timestamp `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp `json:"updated_at,omitempty"`
	SubmittedAt *Timestamp `json:"submitted_at,omitempty"`
}

// CreateReportRequest holds the fields a draft needs before it can exist.
type CreateReportRequest struct {
	NomeRelatorio *string `json:"nome_relatorio,omitempty"`
	NomeUBS       string  `json:"nome_ubs" binding:"required"`
	CNES          string  `json:"cnes" binding:"required"`
	AreaAtuacao   string  `json:"area_atuacao" binding:"required"`
}

type Territory struct {
	ID                        int64   `json:"id,omitempty"`
	UBSID                     int64   `json:"ubs_id,omitempty"`
	DescricaoTerritorio       string  `json:"descricao_territorio" binding:"required"`
	PotencialidadesTerritorio *string `json:"potencialidades_territorio"`
	RiscosVulnerabilidades    *string `json:"riscos_vulnerabilidades"`
}

type Needs struct {
	ID                                   int64   `json:"id,omitempty"`
	UBSID                                int64   `json:"ubs_id,omitempty"`
	ProblemasIdentificados               string  `json:"problemas_identificados" binding:"required"`
	NecessidadesEquipamentosInsumos      *string `json:"necessidades_equipamentos_insumos"`
	NecessidadesEspecificasACS           *string `json:"necessidades_especificas_acs"`
	NecessidadesInfraestruturaManutencao *string `json:"necessidades_infraestrutura_manutencao"`
}

type ProfessionalGroup struct {
	ID          int64   `json:"id,omitempty"`
	UBSID       int64   `json:"ubs_id,omitempty"`
	CargoFuncao string  `json:"cargo_funcao" binding:"required,max=255"`
	Quantidade  int     `json:"quantidade" binding:"gte=0"`
	TipoVinculo *string `json:"tipo_vinculo" binding:"omitempty,max=50"`
	Observacoes *string `json:"observacoes"`
}

const (
	IndicatorPercentual = "PERCENTUAL"
	IndicatorAbsoluto   = "ABSOLUTO"
	IndicatorPor1000    = "POR_1000"
)

type Indicator struct {
	ID                int64    `json:"id,omitempty"`
	UBSID             int64    `json:"ubs_id,omitempty"`
	NomeIndicador     string   `json:"nome_indicador" binding:"required,max=255"`
	TipoValor         string   `json:"tipo_valor" binding:"required,oneof=PERCENTUAL ABSOLUTO POR_1000"`
	Valor             float64  `json:"valor" binding:"gte=0"`
	Meta              *float64 `json:"meta" binding:"omitempty,gte=0"`
	PeriodoReferencia string   `json:"periodo_referencia" binding:"required,max=100"`
	Observacoes       *string  `json:"observacoes"`
}

type Attachment struct {
	ID               int64      `json:"id"`
	UBSID            int64      `json:"ubs_id"`
	OriginalFilename string     `json:"original_filename"`
	ContentType      *string    `json:"content_type"`
	SizeBytes        int64      `json:"size_bytes"`
	Section          *string    `json:"section"`
	Description      *string    `json:"description"`
	CreatedAt        *Timestamp `json:"created_at,omitempty"`
}

type ServiceItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ReportServices struct {
	Services       []ServiceItem `json:"services"`
	OutrosServicos *string       `json:"outros_servicos"`
}

type Submission struct {
	Status      string     `json:"status"`
	SubmittedAt *Timestamp `json:"submitted_at"`
	SubmittedBy *int64     `json:"submitted_by"`
}

// Diagnosis is the full report with every section, as the editor loads it.
type Diagnosis struct {
	UBS                Report              `json:"ubs"`
	Services           ReportServices      `json:"services"`
	IndicatorsLatest   []Indicator         `json:"indicators_latest"`
	ProfessionalGroups []ProfessionalGroup `json:"professional_groups"`
	TerritoryProfile   *Territory          `json:"territory_profile"`
	Needs              *Needs              `json:"needs"`
	Attachments        []Attachment        `json:"attachments"`
	Submission         Submission          `json:"submission"`
}

type SubmitResult struct {
	Status      string     `json:"status"`
	SubmittedAt *Timestamp `json:"submitted_at"`
}
