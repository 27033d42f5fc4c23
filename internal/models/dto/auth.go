package dto

import (
	"time"

	"sindicatorest/internal/models/entities"
)

// LoginRequest representa a requisição de login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"maria@sindicato.org.br"`
	Password string `json:"password" binding:"required" example:"SenhaSegura@123"`
}

// LoginResponse carrega o token emitido
type LoginResponse struct {
	Token     string            `json:"token" example:"eyJhbGciOi..."`
	ExpiresAt time.Time         `json:"expiresAt"`
	Usuario   *entities.Usuario `json:"usuario"`
	Perfil    *entities.Perfil  `json:"perfil,omitempty"`
}

// ChangePasswordRequest representa a requisição de mudança de senha
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required" example:"SenhaAtual@123"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=100" example:"NovaSenha@456"`
}

// MeResponse é o usuário autenticado com o seu perfil
type MeResponse struct {
	Usuario *entities.Usuario `json:"usuario"`
	Perfil  *entities.Perfil  `json:"perfil"`
	IsAdmin bool              `json:"isAdmin"`
}

// CreateUsuarioRequest cria um usuário com senha
type CreateUsuarioRequest struct {
	Nome     string `json:"nome" binding:"required,min=2,max=200" example:"Maria Souza"`
	Email    string `json:"email" binding:"required,email,max=255" example:"maria@sindicato.org.br"`
	Password string `json:"password" binding:"required,min=8,max=100" example:"SenhaSegura@123"`
	PerfilID string `json:"perfilId" binding:"required" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
	Ativo    *bool  `json:"ativo,omitempty" example:"true"`
}

// UpdateUsuarioRequest substitui os dados de um usuário; senha é opcional
type UpdateUsuarioRequest struct {
	Nome     string  `json:"nome" binding:"required,min=2,max=200" example:"Maria Souza"`
	Email    string  `json:"email" binding:"required,email,max=255" example:"maria@sindicato.org.br"`
	Password *string `json:"password,omitempty" binding:"omitempty,min=8,max=100" example:"NovaSenha@456"`
	PerfilID string  `json:"perfilId" binding:"required" example:"1b4e28ba-2fa1-11d2-883f-0016d3cca427"`
	Ativo    *bool   `json:"ativo,omitempty" example:"true"`
}
