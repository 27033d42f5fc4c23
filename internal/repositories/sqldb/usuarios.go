package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sindicatorest/internal/models/entities"
)

// GetUsuarioByEmail busca um usuário pelo email (sem diferenciar maiúsculas)
func (s *Internal) GetUsuarioByEmail(ctx context.Context, email string) (*entities.Usuario, error) {
	var u entities.Usuario
	err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetUsuarioWithPerfil carrega o usuário e o seu perfil
func (s *Internal) GetUsuarioWithPerfil(ctx context.Context, id string) (*entities.Usuario, *entities.Perfil, error) {
	u, err := FindByID[entities.Usuario](ctx, s, id)
	if err != nil {
		return nil, nil, err
	}
	p, err := FindByID[entities.Perfil](ctx, s, u.PerfilID)
	if err != nil {
		return u, nil, fmt.Errorf("failed to load perfil %s: %w", u.PerfilID, err)
	}
	return u, p, nil
}

// GetPerfilRole retorna o papel do perfil do usuário. Usuários inativos
// retornam papel vazio.
func (s *Internal) GetPerfilRole(ctx context.Context, usuarioID string) (string, error) {
	var row struct {
		Role  string `gorm:"column:role"`
		Ativo bool   `gorm:"column:ativo"`
	}
	err := s.db.WithContext(ctx).
		Table("usuarios u").
		Select("p.role AS role, u.ativo AS ativo").
		Joins("JOIN perfis p ON p.id = u.perfil_id").
		Where("u.id = ?", usuarioID).
		Take(&row).Error
	if err != nil {
		return "", translate(err)
	}
	if !row.Ativo {
		return "", nil
	}
	return row.Role, nil
}

func (s *Internal) updateUsuario(ctx context.Context, id string, values map[string]interface{}) error {
	values["updated_at"] = time.Now().UTC()
	res := s.db.WithContext(ctx).Table(entities.Usuario{}.TableName()).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("failed to update usuario: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastLogin registra o último acesso
func (s *Internal) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return s.updateUsuario(ctx, id, map[string]interface{}{"last_login_at": at.UTC()})
}

// UpdatePassword troca o hash da senha
func (s *Internal) UpdatePassword(ctx context.Context, id, hash string) error {
	return s.updateUsuario(ctx, id, map[string]interface{}{"password_hash": hash})
}

// LinkMicrosoftID associa a conta Microsoft ao usuário
func (s *Internal) LinkMicrosoftID(ctx context.Context, id, microsoftID string) error {
	return s.updateUsuario(ctx, id, map[string]interface{}{"microsoft_id": microsoftID})
}

// GetUsuarioByMicrosoftID busca o usuário já vinculado à conta Microsoft
func (s *Internal) GetUsuarioByMicrosoftID(ctx context.Context, microsoftID string) (*entities.Usuario, error) {
	var u entities.Usuario
	if err := s.db.WithContext(ctx).Where("microsoft_id = ?", microsoftID).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// GetPerfilByNome busca um perfil pelo nome
func (s *Internal) GetPerfilByNome(ctx context.Context, nome string) (*entities.Perfil, error) {
	var p entities.Perfil
	if err := s.db.WithContext(ctx).Where("nome = ?", nome).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
