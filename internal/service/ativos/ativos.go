// Package ativos expõe o patrimônio do sindicato
package ativos

import (
	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
)

// Resource é o cadastro de ativos
func Resource() *crud.Resource[entities.Ativo] {
	return &crud.Resource[entities.Ativo]{
		Entity: "ativos",
		Label:  "Ativo",
		Fields: mapper.Ativos,
		Search: []string{"descricao", "numero_patrimonio", "localizacao"},
		Order:  "descricao ASC",
	}
}

// Register monta as rotas de ativos
func Register(g *gin.RouterGroup, cfg *config.App) {
	Resource().Register(g.Group("/ativos"), cfg)
}
