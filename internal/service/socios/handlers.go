package socios

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/models/types"
	"sindicatorest/internal/repositories/elsearch"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
)

// Register monta as rotas de sócios e dependentes
func Register(g *gin.RouterGroup, cfg *config.App) {
	socios := Resource()
	deps := Dependentes()

	s := g.Group("/socios")
	s.GET("/search", Search(cfg))
	s.POST("/:id/desligar", Desligar(cfg, socios))
	s.GET("/:id/dependentes", ListDependentes(cfg))
	s.POST("/:id/dependentes", CreateDependente(cfg, deps))
	socios.Register(s, cfg)

	deps.Register(g.Group("/dependentes"), cfg)
}

// Search busca sócios por nome, CPF ou matrícula
// @Summary      Buscar sócios
// @Description  Busca textual no índice de sócios; sem índice disponível usa LIKE no banco
// @Tags         socios
// @Produce      json
// @Security     BearerAuth
// @Param        q      query     string  true   "Nome, CPF ou matrícula"
// @Param        limit  query     int     false  "Máximo de resultados" default(20) maximum(100)
// @Success      200 {object} dto.SuccessResponse{data=[]entities.Socio}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /socios/search [get]
func Search(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		term := strings.TrimSpace(c.Query("q"))
		if term == "" {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Search query 'q' is required", "Error while searching socios", nil))
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if limit <= 0 || limit > sqldb.MaxPageSize {
			limit = 20
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		found, source, err := search(ctx, cfg, term, limit)
		if err != nil {
			crud.Fail(c, err, "Error while searching socios")
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, found, "source: "+source))
	}
}

func search(ctx context.Context, cfg *config.App, term string, limit int) ([]entities.Socio, string, error) {
	if _, off := cfg.Search.(elsearch.NopSearcher); cfg.Search != nil && !off {
		ids, err := cfg.Search.SearchSocios(ctx, term, limit)
		if err == nil {
			found, err := cfg.DB.GetSociosByIDs(ctx, ids)
			return found, "search", err
		}
		fields := map[string]interface{}{"error": err.Error()}
		if errors.Is(err, elsearch.ErrSearchDisabled) {
			cfg.Logger.Debug("socio search disabled, using database", fields)
		} else {
			cfg.Logger.Warn("socio search unavailable, falling back to database", fields)
		}
	}
	found, err := cfg.DB.SearchSociosLike(ctx, term, limit)
	return found, "database", err
}

// Desligar encerra a filiação de um sócio
// @Summary      Desligar sócio
// @Description  Muda o status para desligado e registra a data de desligamento
// @Tags         socios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string               true   "ID do sócio"
// @Param        body  body  dto.DesligarRequest  false  "Data e motivo"
// @Success      200 {object} dto.SuccessResponse{data=entities.Socio}
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse "Sócio já desligado"
// @Router       /socios/{id}/desligar [post]
func Desligar(cfg *config.App, res *crud.Resource[entities.Socio]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.DesligarRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				crud.Fail(c, &crud.ValidationError{Details: err.Error(), Err: err}, "Invalid request body")
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		socio, err := sqldb.FindByID[entities.Socio](ctx, cfg.DB, c.Param("id"))
		if err != nil {
			crud.Fail(c, err, "Error while dismissing socio")
			return
		}
		if socio.Status == entities.SocioDesligado {
			crud.Fail(c, fmt.Errorf("%w: socio already desligado", sqldb.ErrInvalidState), "Error while dismissing socio")
			return
		}

		data := types.Today()
		if req.Data != nil && !req.Data.IsZero() {
			data = *req.Data
		}
		socio.Status = entities.SocioDesligado
		socio.DataDesligamento = &data
		if req.Motivo != nil && strings.TrimSpace(*req.Motivo) != "" {
			nota := "Desligamento: " + strings.TrimSpace(*req.Motivo)
			if socio.Observacoes != nil && *socio.Observacoes != "" {
				nota = *socio.Observacoes + "\n" + nota
			}
			socio.Observacoes = &nota
		}

		if err := res.Store(ctx, cfg, socio); err != nil {
			crud.Fail(c, err, "Error while dismissing socio")
			return
		}
		res.Changed(ctx, c, cfg, mongo.ActionDismiss, socio, req)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, socio, "Socio desligado"))
	}
}

// ListDependentes lista os dependentes de um sócio
// @Summary      Dependentes do sócio
// @Tags         socios
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "ID do sócio"
// @Success      200 {object} dto.SuccessResponse{data=[]entities.Dependente}
// @Failure      404 {object} dto.ErrorResponse
// @Router       /socios/{id}/dependentes [get]
func ListDependentes(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		id := c.Param("id")
		if _, err := sqldb.FindByID[entities.Socio](ctx, cfg.DB, id); err != nil {
			crud.Fail(c, err, "Error while listing dependentes")
			return
		}
		deps, err := sqldb.FindWhere[entities.Dependente](ctx, cfg.DB, "nome ASC", "socio_id = ?", id)
		if err != nil {
			crud.Fail(c, err, "Error while listing dependentes")
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, deps, ""))
	}
}

// CreateDependente cadastra um dependente para o sócio da rota
// @Summary      Cadastrar dependente
// @Tags         socios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string               true  "ID do sócio"
// @Param        body  body  entities.Dependente  true  "Dependente"
// @Success      201 {object} dto.SuccessResponse{data=entities.Dependente}
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /socios/{id}/dependentes [post]
func CreateDependente(cfg *config.App, res *crud.Resource[entities.Dependente]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form map[string]interface{}
		if err := c.ShouldBindJSON(&form); err != nil || form == nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "Invalid request body", nil))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		id := c.Param("id")
		if _, err := sqldb.FindByID[entities.Socio](ctx, cfg.DB, id); err != nil {
			crud.Fail(c, err, "Error while creating dependente")
			return
		}

		values, err := mapper.Dependentes.Normalize(form, mapper.Options{AllowReadOnly: true})
		if err != nil {
			crud.Fail(c, err, "Invalid request body")
			return
		}
		values["socioId"] = id

		dep := new(entities.Dependente)
		if err := crud.Apply(mapper.Dependentes, dep, values); err != nil {
			crud.Fail(c, err, "Invalid request body")
			return
		}
		if err := res.Add(ctx, c, cfg, dep); err != nil {
			crud.Fail(c, err, "Error while creating dependente")
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(c, dep, "Dependente created"))
	}
}
