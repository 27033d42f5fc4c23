// Package empresas expõe o cadastro de empresas da base do sindicato
package empresas

import (
	"context"
	"fmt"
	"net/http"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"
	"sindicatorest/internal/service/socios"

	"github.com/gin-gonic/gin"
)

// Resource é o cadastro de empresas
func Resource() *crud.Resource[entities.Empresa] {
	return &crud.Resource[entities.Empresa]{
		Entity: "empresas",
		Label:  "Empresa",
		Fields: mapper.Empresas,
		Search: []string{"razao_social", "nome_fantasia", "cnpj"},
		Order:  "razao_social ASC",
		CanDelete: func(ctx context.Context, cfg *config.App, id string) error {
			has, err := sqldb.Exists[entities.Socio](ctx, cfg.DB, "empresa_id = ?", id)
			if err != nil {
				return err
			}
			if has {
				return fmt.Errorf("%w: empresa has socios", sqldb.ErrInUse)
			}
			has, err = sqldb.Exists[entities.ContaReceber](ctx, cfg.DB, "empresa_id = ?", id)
			if err != nil {
				return err
			}
			if has {
				return fmt.Errorf("%w: empresa has contas a receber", sqldb.ErrInUse)
			}
			return nil
		},
	}
}

// Register monta as rotas de empresas
func Register(g *gin.RouterGroup, cfg *config.App) {
	e := g.Group("/empresas")
	e.GET("/:id/socios", ListSocios(cfg))
	Resource().Register(e, cfg)
}

// ListSocios lista os sócios de uma empresa
// @Summary      Sócios da empresa
// @Description  Lista paginada dos sócios vinculados à empresa
// @Tags         empresas
// @Produce      json
// @Security     BearerAuth
// @Param        id        path   string  true   "ID da empresa"
// @Param        page      query  int     false  "Página" default(1)
// @Param        pageSize  query  int     false  "Itens por página" default(20) maximum(100)
// @Param        status    query  string  false  "Status do sócio"
// @Success      200 {object} dto.PaginatedResponse{data=[]entities.Socio}
// @Failure      404 {object} dto.ErrorResponse
// @Router       /empresas/{id}/socios [get]
func ListSocios(cfg *config.App) gin.HandlerFunc {
	res := socios.Resource()
	return func(c *gin.Context) {
		q, err := res.Query(c)
		if err != nil {
			crud.Fail(c, err, "Invalid list parameters")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		id := c.Param("id")
		if _, err := sqldb.FindByID[entities.Empresa](ctx, cfg.DB, id); err != nil {
			crud.Fail(c, err, "Error while listing socios")
			return
		}
		items, total, err := cfg.DB.ListSociosByEmpresa(ctx, id, q)
		if err != nil {
			crud.Fail(c, err, "Error while listing socios")
			return
		}
		c.JSON(http.StatusOK, dto.NewPaginatedResponse(c, items, dto.NewPagination(q.Page, q.PageSize, total), ""))
	}
}
