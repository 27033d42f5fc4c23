// Package crud implementa os handlers de cadastro compartilhados pelos recursos
package crud

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/sqldb"

	"github.com/gin-gonic/gin"
)

// RequestTimeout limita cada operação no banco
const RequestTimeout = 30 * time.Second

// parâmetros da listagem que não são filtros
var reserved = map[string]bool{"page": true, "pageSize": true, "page_size": true, "q": true, "sort": true}

// Resource descreve um cadastro exposto em /<Entity>
type Resource[T any] struct {
	Entity string
	Label  string
	Fields *mapper.FieldMap
	// colunas usadas pela busca textual (q)
	Search []string
	Order  string

	// Check roda antes de gravar, com o registro já montado
	Check func(ctx context.Context, cfg *config.App, item *T) error
	// Insert substitui a inserção padrão
	Insert func(ctx context.Context, cfg *config.App, item *T) error
	// CanDelete bloqueia a exclusão de registros referenciados
	CanDelete func(ctx context.Context, cfg *config.App, id string) error
	// OnChange roda depois de cada alteração gravada; item é o estado final
	// (ou o anterior, na exclusão)
	OnChange func(ctx context.Context, cfg *config.App, action string, item *T)
}

func common(item interface{}) *entities.Base {
	if b, ok := item.(interface{ Common() *entities.Base }); ok {
		return b.Common()
	}
	return &entities.Base{}
}

// Register monta as rotas do recurso. Os handlers extras são aplicados
// apenas na exclusão.
func (r *Resource[T]) Register(g *gin.RouterGroup, cfg *config.App, deleteGuards ...gin.HandlerFunc) {
	g.GET("", r.List(cfg))
	g.GET("/:id", r.Get(cfg))
	g.POST("", r.Create(cfg))
	g.PUT("/:id", r.Update(cfg))
	g.PATCH("/:id", r.Patch(cfg))
	g.DELETE("/:id", append(deleteGuards, r.Delete(cfg))...)
}

// Query monta a consulta paginada a partir dos parâmetros da requisição
func (r *Resource[T]) Query(c *gin.Context) (sqldb.Query, error) {
	q := sqldb.Query{
		Page:          atoi(c.Query("page")),
		PageSize:      atoi(c.DefaultQuery("pageSize", c.Query("page_size"))),
		Search:        searchTerm(c.Query("q")),
		SearchColumns: r.Search,
		Order:         r.Order,
	}

	params := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if !reserved[k] && len(v) > 0 {
			params[k] = v[0]
		}
	}
	filters, err := r.Fields.Filters(params)
	if err != nil {
		return q, err
	}
	q.Filters = filters

	order, err := r.Fields.OrderClause(c.Query("sort"))
	if err != nil {
		return q, &ValidationError{Details: gin.H{"sort": err.Error()}, Err: err}
	}
	if order != "" {
		q.Order = order
	}
	q.Normalize()
	return q, nil
}

// searchTerm tira a máscara de termos que são só um documento (CPF, CNPJ, CEP)
func searchTerm(q string) string {
	q = strings.TrimSpace(q)
	if strings.Trim(q, "0123456789.-/ ") != "" {
		return q
	}
	if digits := mapper.OnlyDigits(q); digits != "" {
		return digits
	}
	return q
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// List lista o recurso com paginação, busca textual, filtros e ordenação
func (r *Resource[T]) List(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := r.Query(c)
		if err != nil {
			Fail(c, err, "Invalid list parameters")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
		defer cancel()

		items, total, err := sqldb.FindPage[T](ctx, cfg.DB, q)
		if err != nil {
			Fail(c, err, "Error while listing "+r.Label)
			return
		}

		c.JSON(http.StatusOK, dto.NewPaginatedResponse(c, items, dto.NewPagination(q.Page, q.PageSize, total), ""))
	}
}

// Get busca um registro pelo id
func (r *Resource[T]) Get(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
		defer cancel()

		item, err := sqldb.FindByID[T](ctx, cfg.DB, c.Param("id"))
		if err != nil {
			Fail(c, err, "Error while fetching "+r.Label)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, item, ""))
	}
}

func bindForm(c *gin.Context) (map[string]interface{}, error) {
	var form map[string]interface{}
	if err := c.ShouldBindJSON(&form); err != nil {
		return nil, &ValidationError{Details: err.Error(), Err: err}
	}
	if form == nil {
		err := errors.New("request body must be a JSON object")
		return nil, &ValidationError{Details: err.Error(), Err: err}
	}
	return form, nil
}

// Add valida e grava um registro novo, com auditoria
func (r *Resource[T]) Add(ctx context.Context, c *gin.Context, cfg *config.App, item *T) error {
	if err := Validate(item); err != nil {
		return err
	}
	if r.Check != nil {
		if err := r.Check(ctx, cfg, item); err != nil {
			return err
		}
	}
	var err error
	if r.Insert != nil {
		err = r.Insert(ctx, cfg, item)
	} else {
		err = sqldb.Insert(ctx, cfg.DB, item)
	}
	if err != nil {
		return err
	}
	r.Changed(ctx, c, cfg, mongo.ActionCreate, item, item)
	return nil
}

// Create cria um registro a partir de um formulário JSON
func (r *Resource[T]) Create(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := bindForm(c)
		if err != nil {
			Fail(c, err, "Invalid request body")
			return
		}
		values, err := r.Fields.Normalize(form, mapper.Options{AllowReadOnly: true})
		if err != nil {
			Fail(c, err, "Invalid request body")
			return
		}
		item := new(T)
		if err := Apply(r.Fields, item, values); err != nil {
			Fail(c, err, "Invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
		defer cancel()

		if err := r.Add(ctx, c, cfg, item); err != nil {
			Fail(c, err, "Error while creating "+r.Label)
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(c, item, r.Label+" created"))
	}
}

// Update substitui o registro inteiro, preservando id, data de criação e os
// campos atribuídos pelo servidor que não vierem no corpo
func (r *Resource[T]) Update(cfg *config.App) gin.HandlerFunc {
	return r.write(cfg, mongo.ActionUpdate, func(existing *T, form map[string]interface{}) (*T, map[string]interface{}, error) {
		values, err := r.Fields.Normalize(form, mapper.Options{AllowReadOnly: true})
		if err != nil {
			return nil, nil, err
		}
		if err := keepStored(r.Fields, existing, values); err != nil {
			return nil, nil, err
		}
		item := new(T)
		if err := Apply(r.Fields, item, values); err != nil {
			return nil, nil, err
		}
		b, old := common(item), common(existing)
		b.ID, b.CreatedAt = old.ID, old.CreatedAt
		return item, nil, nil
	})
}

// Patch altera apenas os campos enviados
func (r *Resource[T]) Patch(cfg *config.App) gin.HandlerFunc {
	return r.write(cfg, mongo.ActionPatch, func(existing *T, form map[string]interface{}) (*T, map[string]interface{}, error) {
		values, err := r.Fields.Normalize(form, mapper.Options{})
		if err != nil {
			return nil, nil, err
		}
		if err := Apply(r.Fields, existing, values); err != nil {
			return nil, nil, err
		}
		return existing, values, nil
	})
}

type merge[T any] func(existing *T, form map[string]interface{}) (item *T, changes map[string]interface{}, err error)

func (r *Resource[T]) write(cfg *config.App, action string, build merge[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, err := bindForm(c)
		if err != nil {
			Fail(c, err, "Invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
		defer cancel()

		existing, err := sqldb.FindByID[T](ctx, cfg.DB, c.Param("id"))
		if err != nil {
			Fail(c, err, "Error while updating "+r.Label)
			return
		}

		item, changes, err := build(existing, form)
		if err != nil {
			Fail(c, err, "Invalid request body")
			return
		}
		if err := r.Store(ctx, cfg, item); err != nil {
			Fail(c, err, "Error while updating "+r.Label)
			return
		}
		if changes == nil {
			r.Changed(ctx, c, cfg, action, item, item)
		} else {
			r.Changed(ctx, c, cfg, action, item, changes)
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, item, r.Label+" updated"))
	}
}

// Store valida e grava um registro existente, sem auditoria
func (r *Resource[T]) Store(ctx context.Context, cfg *config.App, item *T) error {
	if err := Validate(item); err != nil {
		return err
	}
	if r.Check != nil {
		if err := r.Check(ctx, cfg, item); err != nil {
			return err
		}
	}
	return sqldb.Save(ctx, cfg.DB, item)
}

// Delete apaga um registro
func (r *Resource[T]) Delete(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
		defer cancel()

		id := c.Param("id")
		existing, err := sqldb.FindByID[T](ctx, cfg.DB, id)
		if err != nil {
			Fail(c, err, "Error while deleting "+r.Label)
			return
		}
		if r.CanDelete != nil {
			if err := r.CanDelete(ctx, cfg, id); err != nil {
				Fail(c, err, "Error while deleting "+r.Label)
				return
			}
		}
		if err := sqldb.Remove[T](ctx, cfg.DB, id); err != nil {
			Fail(c, err, "Error while deleting "+r.Label)
			return
		}
		r.Changed(ctx, c, cfg, mongo.ActionDelete, existing, nil)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, gin.H{"id": id}, r.Label+" deleted"))
	}
}

// Changed registra a auditoria e dispara OnChange
func (r *Resource[T]) Changed(ctx context.Context, c *gin.Context, cfg *config.App, action string, item *T, changes interface{}) {
	Audit(ctx, c, cfg, r.Entity, common(item).ID, action, changes)
	if r.OnChange != nil {
		r.OnChange(ctx, cfg, action, item)
	}
}
