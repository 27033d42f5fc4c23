// Package dashboard entrega os dados dos gráficos do painel
package dashboard

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/models/types"
	"sindicatorest/internal/repositories/redis"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"
	"sindicatorest/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// ResumoTTL é o tempo de cache do resumo
const ResumoTTL = 60 * time.Second

// Register monta as rotas do painel
func Register(g *gin.RouterGroup, cfg *config.App) {
	d := g.Group("/dashboard")
	d.GET("/resumo", GetResumo(cfg))
	d.GET("/socios-por-empresa", GetSociosPorEmpresa(cfg))
	d.GET("/fluxo-caixa", GetFluxoCaixa(cfg))
	d.GET("/filiacoes", GetFiliacoes(cfg))
}

// GetResumo retorna os totais do painel
// @Summary      Resumo do painel
// @Description  Totais de sócios, dependentes, empresas, funcionários, bens e contas pendentes. O resultado fica em cache por 60 segundos.
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SuccessResponse{data=dto.ResumoResponse}
// @Failure      401 {object} dto.AuthErrorResponse "Unauthorized"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /dashboard/resumo [get]
func GetResumo(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		var cached dto.ResumoResponse
		ok, err := cfg.Cache.GetJSON(ctx, redis.KeyDashboardResumo, &cached)
		if err != nil {
			cfg.Logger.Warn("reading dashboard cache", map[string]interface{}{"error": err.Error()})
		}
		if ok {
			c.JSON(http.StatusOK, dto.NewSuccessResponse(c, cached, "source: cache"))
			return
		}

		resumo, err := Resumo(ctx, cfg.DB)
		if err != nil {
			crud.Fail(c, err, "Failed to build dashboard")
			return
		}
		if err := cfg.Cache.SetJSON(ctx, redis.KeyDashboardResumo, resumo, ResumoTTL); err != nil {
			cfg.Logger.Warn("writing dashboard cache", map[string]interface{}{"error": err.Error()})
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, resumo, "source: database"))
	}
}

// Resumo calcula os totais em paralelo
func Resumo(ctx context.Context, db *sqldb.Internal) (*dto.ResumoResponse, error) {
	r := &dto.ResumoResponse{}
	hoje := types.Today()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		r.Socios, err = db.CountSociosByStatus(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.Dependentes, err = sqldb.CountWhere[entities.Dependente](ctx, db, "1 = 1")
		return err
	})
	g.Go(func() (err error) {
		r.Empresas, err = sqldb.CountWhere[entities.Empresa](ctx, db, "1 = 1")
		return err
	})
	g.Go(func() (err error) {
		r.Funcionarios, err = sqldb.CountWhere[entities.Funcionario](ctx, db, "1 = 1")
		return err
	})
	g.Go(func() (err error) {
		r.Ativos, r.ValorAtivos, err = db.SumAtivos(ctx)
		return err
	})
	g.Go(func() (err error) {
		r.ContasPagar, err = db.PendenciasPagar(ctx, hoje)
		return err
	})
	g.Go(func() (err error) {
		r.ContasReceber, err = db.PendenciasReceber(ctx, hoje)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, n := range r.Socios {
		r.TotalSocios += n
	}
	r.GeradoEm = time.Now().UTC().Format(time.RFC3339)
	return r, nil
}

// GetSociosPorEmpresa retorna a série de sócios ativos por empresa
// @Summary      Sócios por empresa
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Máximo de empresas" default(10)
// @Success      200 {object} dto.SuccessResponse{data=[]sqldb.NameValue}
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /dashboard/socios-por-empresa [get]
func GetSociosPorEmpresa(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
		if err != nil || limit <= 0 || limit > sqldb.MaxPageSize {
			limit = 10
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		serie, err := cfg.DB.SociosPorEmpresa(ctx, limit)
		if err != nil {
			crud.Fail(c, err, "Failed to build dashboard")
			return
		}
		if serie == nil {
			serie = []sqldb.NameValue{}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, serie, ""))
	}
}

// ano lê o parâmetro ano, padrão o ano corrente
func ano(c *gin.Context) (int, bool) {
	raw := c.Query("ano")
	if raw == "" {
		return time.Now().Year(), true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 2999 {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "Invalid parameter", "the parameter 'ano' must be a year"))
		return 0, false
	}
	return year, true
}

// porMes soma os valores em 12 meses
func porMes(values []sqldb.DatedValue) [12]float64 {
	var out [12]float64
	for _, v := range values {
		if v.Data.IsZero() {
			continue
		}
		out[v.Data.Month()-1] += v.Valor
	}
	return out
}

// GetFluxoCaixa retorna os valores pagos e recebidos por mês
// @Summary      Fluxo de caixa
// @Description  Doze meses do ano com o total pago, o total recebido e o saldo
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        ano query int false "Ano" example(2025)
// @Success      200 {object} dto.SuccessResponse{data=[]dto.FluxoCaixaPoint}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /dashboard/fluxo-caixa [get]
func GetFluxoCaixa(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := ano(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		var pagos, recebidos []sqldb.DatedValue
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			pagos, err = cfg.DB.Pagamentos(gctx, year)
			return err
		})
		g.Go(func() (err error) {
			recebidos, err = cfg.DB.Recebimentos(gctx, year)
			return err
		})
		if err := g.Wait(); err != nil {
			crud.Fail(c, err, "Failed to build dashboard")
			return
		}

		pago, recebido := porMes(pagos), porMes(recebidos)
		serie := make([]dto.FluxoCaixaPoint, 12)
		for i := range serie {
			serie[i] = dto.FluxoCaixaPoint{
				Mes:      i + 1,
				Label:    utils.MesesAbrev[i+1],
				Pago:     pago[i],
				Recebido: recebido[i],
				Saldo:    recebido[i] - pago[i],
			}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, serie, strconv.Itoa(year)))
	}
}

// GetFiliacoes retorna as novas filiações por mês
// @Summary      Filiações por mês
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Param        ano query int false "Ano" example(2025)
// @Success      200 {object} dto.SuccessResponse{data=[]dto.MonthlyPoint}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /dashboard/filiacoes [get]
func GetFiliacoes(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		year, ok := ano(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		values, err := cfg.DB.Filiacoes(ctx, year)
		if err != nil {
			crud.Fail(c, err, "Failed to build dashboard")
			return
		}

		meses := porMes(values)
		serie := make([]dto.MonthlyPoint, 12)
		for i := range serie {
			serie[i] = dto.MonthlyPoint{Mes: i + 1, Label: utils.MesesAbrev[i+1], Valor: meses[i]}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, serie, strconv.Itoa(year)))
	}
}
