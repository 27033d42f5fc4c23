// Package financeiro expõe as contas a pagar e a receber
package financeiro

import (
	"context"
	"fmt"
	"net/http"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
)

// ContasPagar é o cadastro de contas a pagar
func ContasPagar() *crud.Resource[entities.ContaPagar] {
	return &crud.Resource[entities.ContaPagar]{
		Entity: "contas-pagar",
		Label:  "Conta a pagar",
		Fields: mapper.ContasPagar,
		Search: []string{"descricao", "fornecedor", "documento"},
		Order:  "data_vencimento ASC",
	}
}

// ContasReceber é o cadastro de contas a receber
func ContasReceber() *crud.Resource[entities.ContaReceber] {
	return &crud.Resource[entities.ContaReceber]{
		Entity: "contas-receber",
		Label:  "Conta a receber",
		Fields: mapper.ContasReceber,
		Search: []string{"descricao", "pagador", "documento"},
		Order:  "data_vencimento ASC",
		Check:  checkReceber,
	}
}

func checkReceber(ctx context.Context, cfg *config.App, c *entities.ContaReceber) error {
	if c.SocioID != nil && *c.SocioID == "" {
		c.SocioID = nil
	}
	if c.EmpresaID != nil && *c.EmpresaID == "" {
		c.EmpresaID = nil
	}
	if c.SocioID != nil {
		ok, err := sqldb.Exists[entities.Socio](ctx, cfg.DB, "id = ?", *c.SocioID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: socio %s", crud.ErrBadReference, *c.SocioID)
		}
	}
	if c.EmpresaID != nil {
		ok, err := sqldb.Exists[entities.Empresa](ctx, cfg.DB, "id = ?", *c.EmpresaID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: empresa %s", crud.ErrBadReference, *c.EmpresaID)
		}
	}
	return nil
}

// Register monta as rotas financeiras. A exclusão exige administrador.
func Register(g *gin.RouterGroup, cfg *config.App) {
	pagar := ContasPagar()
	p := g.Group("/contas-pagar")
	p.POST("/:id/pagar", Pagar(cfg, pagar))
	pagar.Register(p, cfg, middleware.RequireAdmin(cfg))

	receber := ContasReceber()
	r := g.Group("/contas-receber")
	r.POST("/:id/receber", Receber(cfg, receber))
	receber.Register(r, cfg, middleware.RequireAdmin(cfg))
}

func bindBaixa(c *gin.Context) (sqldb.Baixa, error) {
	var req dto.BaixaRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return sqldb.Baixa{}, &crud.ValidationError{Details: err.Error(), Err: err}
		}
	}
	baixa := sqldb.Baixa{Valor: req.Valor, FormaPagamento: req.FormaPagamento}
	if req.Data != nil {
		baixa.Data = *req.Data
	}
	return baixa, nil
}

// Pagar registra o pagamento de uma conta pendente
// @Summary      Pagar conta
// @Description  Muda a conta de pendente para pago. Sem valor informado, considera o valor da conta.
// @Tags         financeiro
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string            true   "ID da conta"
// @Param        body  body  dto.BaixaRequest  false  "Dados do pagamento"
// @Success      200 {object} dto.SuccessResponse{data=entities.ContaPagar}
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse "Conta não está pendente"
// @Router       /contas-pagar/{id}/pagar [post]
func Pagar(cfg *config.App, res *crud.Resource[entities.ContaPagar]) gin.HandlerFunc {
	return func(c *gin.Context) {
		baixa, err := bindBaixa(c)
		if err != nil {
			crud.Fail(c, err, "Invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		conta, err := cfg.DB.MarkContaPagarPaga(ctx, c.Param("id"), baixa)
		if err != nil {
			crud.Fail(c, err, "Error while paying conta")
			return
		}
		res.Changed(ctx, c, cfg, mongo.ActionPay, conta, conta)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, conta, "Conta paga"))
	}
}

// Receber registra o recebimento de uma conta pendente
// @Summary      Receber conta
// @Description  Muda a conta de pendente para recebido. Sem valor informado, considera o valor da conta.
// @Tags         financeiro
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string            true   "ID da conta"
// @Param        body  body  dto.BaixaRequest  false  "Dados do recebimento"
// @Success      200 {object} dto.SuccessResponse{data=entities.ContaReceber}
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse "Conta não está pendente"
// @Router       /contas-receber/{id}/receber [post]
func Receber(cfg *config.App, res *crud.Resource[entities.ContaReceber]) gin.HandlerFunc {
	return func(c *gin.Context) {
		baixa, err := bindBaixa(c)
		if err != nil {
			crud.Fail(c, err, "Invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		conta, err := cfg.DB.MarkContaReceberRecebida(ctx, c.Param("id"), baixa)
		if err != nil {
			crud.Fail(c, err, "Error while receiving conta")
			return
		}
		res.Changed(ctx, c, cfg, mongo.ActionReceive, conta, conta)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, conta, "Conta recebida"))
	}
}
