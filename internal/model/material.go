package model

type Material struct {
	ID          int64          `json:"id"`
	UBSID       int64          `json:"ubs_id"`
	Titulo      string         `json:"titulo"`
	Descricao   *string        `json:"descricao"`
	Categoria   *string        `json:"categoria"`
	PublicoAlvo *string        `json:"publico_alvo"`
	Ativo       bool           `json:"ativo"`
	Files       []MaterialFile `json:"files"`
	CreatedAt   *Timestamp     `json:"created_at,omitempty"`
	UpdatedAt   *Timestamp     `json:"updated_at,omitempty"`
}

type MaterialFile struct {
	ID               int64      `json:"id"`
	MaterialID       int64      `json:"material_id"`
	OriginalFilename string     `json:"original_filename"`
	ContentType      *string    `json:"content_type"`
	SizeBytes        int64      `json:"size_bytes"`
	CreatedAt        *Timestamp `json:"created_at,omitempty"`
}

// MaterialInput is sent as multipart form fields alongside the files.
type MaterialInput struct {
	UBSID       int64  `form:"ubs_id" binding:"required,gt=0"`
	Titulo      string `form:"titulo" binding:"required,max=255"`
	Descricao   string `form:"descricao"`
	Categoria   string `form:"categoria" binding:"max=80"`
	PublicoAlvo string `form:"publico_alvo" binding:"max=80"`
	Ativo       *bool  `form:"ativo"`
}

type MaterialPatch struct {
	Titulo      *string `json:"titulo,omitempty" binding:"omitempty,max=255"`
	Descricao   *string `json:"descricao,omitempty"`
	Categoria   *string `json:"categoria,omitempty" binding:"omitempty,max=80"`
	PublicoAlvo *string `json:"publico_alvo,omitempty" binding:"omitempty,max=80"`
	Ativo       *bool   `json:"ativo,omitempty"`
}
