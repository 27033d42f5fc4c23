// Package auditoria consulta a trilha de alterações
package auditoria

import (
	"context"
	"net/http"
	"strconv"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
)

// Register monta /auditoria. O grupo já deve exigir administrador.
func Register(g *gin.RouterGroup, cfg *config.App) {
	g.GET("/auditoria", List(cfg))
}

// List lista as alterações registradas, mais recentes primeiro. Com o
// MongoDB desligado a lista vem vazia.
// @Summary      Trilha de auditoria
// @Description  Lista as alterações registradas com filtros por entidade, registro e usuário
// @Tags         auditoria
// @Produce      json
// @Security     BearerAuth
// @Param        entity    query string false "Entidade (ex.: socios)"
// @Param        entityId  query string false "ID do registro"
// @Param        userId    query string false "ID do usuário"
// @Param        page      query int    false "Página" default(1)
// @Param        pageSize  query int    false "Itens por página" default(20) maximum(100)
// @Success      200 {object} dto.PaginatedResponse{data=[]mongo.AuditEntry}
// @Failure      401 {object} dto.AuthErrorResponse "Unauthorized"
// @Failure      403 {object} dto.ErrorResponse "Forbidden"
// @Router       /auditoria [get]
func List(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
		q := sqldb.Query{Page: page, PageSize: size}
		q.Normalize()

		filter := mongo.AuditFilter{
			Entity:   c.Query("entity"),
			EntityID: c.Query("entityId"),
			UserID:   c.Query("userId"),
			Page:     q.Page,
			PageSize: q.PageSize,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		entries, total, err := cfg.Audit.List(ctx, filter)
		if err != nil {
			crud.Fail(c, err, "Failed to list audit trail")
			return
		}
		c.JSON(http.StatusOK, dto.NewPaginatedResponse(c, entries, dto.NewPagination(q.Page, q.PageSize, total), ""))
	}
}
