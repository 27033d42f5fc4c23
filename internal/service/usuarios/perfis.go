package usuarios

import (
	"context"
	"errors"
	"fmt"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/redis"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"
)

// Perfis é o cadastro de perfis de acesso
func Perfis() *crud.Resource[entities.Perfil] {
	return &crud.Resource[entities.Perfil]{
		Entity: "perfis",
		Label:  "Perfil",
		Fields: mapper.Perfis,
		Search: []string{"nome", "role"},
		Order:  "nome ASC",
		Check: func(ctx context.Context, cfg *config.App, p *entities.Perfil) error {
			other, err := cfg.DB.GetPerfilByNome(ctx, p.Nome)
			switch {
			case errors.Is(err, sqldb.ErrNotFound):
				return nil
			case err != nil:
				return err
			case other.ID != p.ID:
				return fmt.Errorf("%w: perfil %q already exists", sqldb.ErrConflict, p.Nome)
			}
			return nil
		},
		CanDelete: func(ctx context.Context, cfg *config.App, id string) error {
			n, err := sqldb.CountWhere[entities.Usuario](ctx, cfg.DB, "perfil_id = ?", id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: perfil has %d usuarios", sqldb.ErrInUse, n)
			}
			return nil
		},
		// o papel muda para todos os usuários do perfil
		OnChange: func(ctx context.Context, cfg *config.App, _ string, _ *entities.Perfil) {
			if err := redis.InvalidatePerfilRoles(ctx, cfg.Cache); err != nil {
				cfg.Logger.Warn("failed to clear role cache", map[string]interface{}{"error": err.Error()})
			}
		},
	}
}
