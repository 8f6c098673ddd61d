package model

import "strings"

type Role string

const (
	RoleUser         Role = "USER"
	RoleProfissional Role = "PROFISSIONAL"
	RoleGestor       Role = "GESTOR"
	RoleRecepcao     Role = "RECEPCAO"
	RoleACS          Role = "ACS"
)

// Roles lists every role the API assigns.
var Roles = []Role{RoleUser, RoleProfissional, RoleGestor, RoleRecepcao, RoleACS}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole normalizes case and whitespace. Unknown values yield "".
func ParseRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return ""
	}
	return r
}

type User struct {
	ID             int64  `json:"id"`
	Nome           string `json:"nome"`
	Email          string `json:"email"`
	CPF            string `json:"cpf,omitempty"`
	Role           Role   `json:"role,omitempty"`
	IsProfissional bool   `json:"is_profissional"`
	Ativo          *bool  `json:"ativo,omitempty"`
}

// EffectiveRole returns the API role, or derives one from is_profissional
// when the API omitted it.
func (u User) EffectiveRole() Role {
	if r := ParseRole(string(u.Role)); r != "" {
		return r
	}
	if u.IsProfissional {
		return RoleProfissional
	}
	return RoleUser
}

type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Senha string `json:"senha" binding:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

type RegisterRequest struct {
	Nome           string `json:"nome" binding:"required,personname"`
	Email          string `json:"email" binding:"required,email"`
	CPF            string `json:"cpf" binding:"required,cpf"`
	Senha          string `json:"senha" binding:"required,strongpassword"`
	ConfirmarSenha string `json:"confirmar_senha" binding:"required,eqfield=Senha"`
}

// RegisterPayload is what the API receives; the confirmation never leaves the console.
type RegisterPayload struct {
	Nome  string `json:"nome"`
	Email string `json:"email"`
	CPF   string `json:"cpf"`
	Senha string `json:"senha"`
}

type ResetPasswordRequest struct {
	Email          string `json:"email" binding:"required,email"`
	Senha          string `json:"senha" binding:"required,strongpassword"`
	ConfirmarSenha string `json:"confirmar_senha" binding:"required,eqfield=Senha"`
}

type ProfessionalClaim struct {
	Cargo                string `json:"cargo" binding:"required"`
	RegistroProfissional string `json:"registro_profissional" binding:"required"`
}

const (
	RequestPendente  = "PENDENTE"
	RequestAprovada  = "APROVADA"
	RequestRejeitada = "REJEITADA"
)

type ProfessionalRequest struct {
	ID                   int64      `json:"id"`
	UsuarioID            int64      `json:"usuario_id"`
	NomeUsuario          string     `json:"nome_usuario,omitempty"`
	EmailUsuario         string     `json:"email_usuario,omitempty"`
	Cargo                string     `json:"cargo"`
	RegistroProfissional string     `json:"registro_profissional"`
	Status               string     `json:"status"`
	Motivo               *string    `json:"motivo,omitempty"`
	CreatedAt            *Timestamp `json:"created_at,omitempty"`
}
