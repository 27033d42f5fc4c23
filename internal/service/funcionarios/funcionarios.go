// Package funcionarios expõe os funcionários do sindicato e as suas funções
package funcionarios

import (
	"context"
	"fmt"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
)

// Funcoes é o cadastro de funções
func Funcoes() *crud.Resource[entities.Funcao] {
	return &crud.Resource[entities.Funcao]{
		Entity: "funcoes",
		Label:  "Funcao",
		Fields: mapper.Funcoes,
		Search: []string{"nome"},
		Order:  "nome ASC",
		CanDelete: func(ctx context.Context, cfg *config.App, id string) error {
			has, err := sqldb.Exists[entities.Funcionario](ctx, cfg.DB, "funcao_id = ?", id)
			if err != nil {
				return err
			}
			if has {
				return fmt.Errorf("%w: funcao has funcionarios", sqldb.ErrInUse)
			}
			return nil
		},
	}
}

// Funcionarios é o cadastro de funcionários
func Funcionarios() *crud.Resource[entities.Funcionario] {
	return &crud.Resource[entities.Funcionario]{
		Entity: "funcionarios",
		Label:  "Funcionario",
		Fields: mapper.Funcionarios,
		Search: []string{"nome", "cpf"},
		Order:  "nome ASC",
		Check: func(ctx context.Context, cfg *config.App, f *entities.Funcionario) error {
			ok, err := sqldb.Exists[entities.Funcao](ctx, cfg.DB, "id = ?", f.FuncaoID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: funcao %s", crud.ErrBadReference, f.FuncaoID)
			}
			return nil
		},
	}
}

// Register monta as rotas de funções e funcionários
func Register(g *gin.RouterGroup, cfg *config.App) {
	Funcoes().Register(g.Group("/funcoes"), cfg)
	Funcionarios().Register(g.Group("/funcionarios"), cfg)
}
