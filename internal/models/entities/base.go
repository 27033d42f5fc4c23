// Package entities contains the gorm models of the union database
package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contém os campos comuns a todas as tabelas
type Base struct {
	ID        string    `json:"id" gorm:"column:id;type:varchar(36);primaryKey"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at;not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"column:updated_at;not null"`
}

// BeforeCreate gera o identificador quando não informado
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// GetID retorna o identificador do registro
func (b Base) GetID() string {
	return b.ID
}

// Bool devolve um ponteiro para v
func Bool(v bool) *bool {
	return &v
}

// String devolve um ponteiro para s
func String(s string) *string {
	return &s
}

// Float devolve um ponteiro para f
func Float(f float64) *float64 {
	return &f
}

// All lista os modelos migrados pelo AutoMigrate
func All() []interface{} {
	return []interface{}{
		&Perfil{},
		&Usuario{},
		&Empresa{},
		&Socio{},
		&Dependente{},
		&Funcao{},
		&Funcionario{},
		&Ativo{},
		&ContaPagar{},
		&ContaReceber{},
	}
}

// Common dá acesso aos campos comuns a partir de qualquer entidade
func (b *Base) Common() *Base {
	return b
}
