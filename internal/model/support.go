package model

const (
	SupportPendente = "PENDENTE"
	SupportLida     = "LIDA"
)

// Support subjects.
const (
	SupportDuvida   = "duvida"
	SupportSugestao = "sugestao"
	SupportProblema = "problema"
)

type SupportMessage struct {
	ID           int64      `json:"id"`
	UsuarioID    int64      `json:"usuario_id"`
	Assunto      string     `json:"assunto"`
	Mensagem     string     `json:"mensagem"`
	Status       string     `json:"status"`
	NomeUsuario  *string    `json:"nome_usuario,omitempty"`
	EmailUsuario *string    `json:"email_usuario,omitempty"`
	CreatedAt    *Timestamp `json:"created_at,omitempty"`
}

type SupportRequest struct {
	Assunto  string `json:"assunto" binding:"required,oneof=duvida sugestao problema"`
	Mensagem string `json:"mensagem" binding:"required"`
}
