package entities

import (
	"strings"
	"time"

	"sindicatorest/internal/models/types"

	"gorm.io/gorm"
)

// Perfil representa um perfil de acesso
type Perfil struct {
	Base
	Nome       string           `json:"nome" gorm:"column:nome;type:varchar(100);not null;uniqueIndex:idx_perfis_nome" binding:"required,min=2,max=100"`
	Descricao  *string          `json:"descricao,omitempty" gorm:"column:descricao;type:text"`
	Role       string           `json:"role" gorm:"column:role;type:varchar(50);not null" binding:"required,max=50"`
	Permissoes types.StringList `json:"permissoes" gorm:"column:permissoes"`
}

// TableName especifica o nome da tabela no banco
func (Perfil) TableName() string {
	return "perfis"
}

// IsAdmin indica se o papel do perfil contém "admin"
func (p *Perfil) IsAdmin() bool {
	return IsAdminRole(p.Role)
}

// IsAdminRole compara sem diferenciar maiúsculas
func IsAdminRole(role string) bool {
	return strings.Contains(strings.ToLower(role), "admin")
}

// Usuario representa um usuário do sistema
type Usuario struct {
	Base
	Nome         string     `json:"nome" gorm:"column:nome;type:varchar(200);not null" binding:"required,min=2,max=200"`
	Email        string     `json:"email" gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_usuarios_email" binding:"required,email"`
	PasswordHash *string    `json:"-" gorm:"column:password_hash;type:varchar(255)"` // Nunca retornar no JSON
	MicrosoftID  *string    `json:"-" gorm:"column:microsoft_id;type:varchar(255)"`
	PerfilID     string     `json:"perfilId" gorm:"column:perfil_id;type:varchar(36);not null;index:idx_usuarios_perfil" binding:"required"`
	Ativo        *bool      `json:"ativo" gorm:"column:ativo;not null"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" gorm:"column:last_login_at"`
}

// TableName especifica o nome da tabela no banco
func (Usuario) TableName() string {
	return "usuarios"
}

// BeforeSave aplica os valores padrão
func (u *Usuario) BeforeSave(tx *gorm.DB) error {
	if u.Ativo == nil {
		u.Ativo = Bool(true)
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return nil
}

// IsActive trata ausência como ativo
func (u *Usuario) IsActive() bool {
	return u.Ativo == nil || *u.Ativo
}
