package middleware

import (
	"context"
	"net/http"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/redis"

	"github.com/gin-gonic/gin"
)

// RoleCacheTTL é o tempo de cache do papel do usuário
const RoleCacheTTL = 5 * time.Minute

// PerfilRole retorna o papel do perfil do usuário, consultando o cache antes
// do banco. Usuário inativo tem papel vazio.
func PerfilRole(ctx context.Context, cfg *config.App, usuarioID string) (string, error) {
	key := redis.PerfilRoleKey(usuarioID)

	var role string
	ok, err := cfg.Cache.GetJSON(ctx, key, &role)
	if err != nil {
		cfg.Logger.Warn("reading role cache", map[string]interface{}{"error": err.Error(), "user_id": usuarioID})
	}
	if ok {
		return role, nil
	}

	role, err = cfg.DB.GetPerfilRole(ctx, usuarioID)
	if err != nil {
		return "", err
	}
	if err := cfg.Cache.SetJSON(ctx, key, role, RoleCacheTTL); err != nil {
		cfg.Logger.Warn("writing role cache", map[string]interface{}{"error": err.Error(), "user_id": usuarioID})
	}
	return role, nil
}

// RequireAdmin permite apenas usuários ativos cujo perfil tem papel de
// administrador. Roda depois do Auth, que já resolveu o papel.
func RequireAdmin(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Usuário não autenticado"))
			return
		}

		if !entities.IsAdminRole(c.GetString(currentRoleKey)) {
			dto.AbortWithError(c, http.StatusForbidden, "Acesso restrito a administradores", nil)
			return
		}

		c.Next()
	}
}
