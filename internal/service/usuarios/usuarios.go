// Package usuarios administra usuários e perfis de acesso
package usuarios

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/redis"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Register monta /usuarios e /perfis. O grupo já deve exigir administrador.
func Register(g *gin.RouterGroup, cfg *config.App) {
	res := Resource()
	u := g.Group("/usuarios")
	u.GET("", res.List(cfg))
	u.GET("/:id", res.Get(cfg))
	u.POST("", CreateUsuario(cfg, res))
	u.PUT("/:id", UpdateUsuario(cfg, res))
	u.PATCH("/:id", res.Patch(cfg))
	u.DELETE("/:id", notSelf, res.Delete(cfg))

	Perfis().Register(g.Group("/perfis"), cfg)
}

// Resource é o cadastro de usuários; criação e substituição passam pelos
// handlers próprios por causa da senha
func Resource() *crud.Resource[entities.Usuario] {
	return &crud.Resource[entities.Usuario]{
		Entity:   "usuarios",
		Label:    "Usuario",
		Fields:   mapper.Usuarios,
		Search:   []string{"nome", "email"},
		Order:    "nome ASC",
		Check:    checkUsuario,
		OnChange: forgetRole,
	}
}

func checkUsuario(ctx context.Context, cfg *config.App, u *entities.Usuario) error {
	ok, err := sqldb.Exists[entities.Perfil](ctx, cfg.DB, "id = ?", u.PerfilID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: perfil %s", crud.ErrBadReference, u.PerfilID)
	}

	other, err := cfg.DB.GetUsuarioByEmail(ctx, u.Email)
	switch {
	case errors.Is(err, sqldb.ErrNotFound):
		return nil
	case err != nil:
		return err
	case other.ID != u.ID:
		return fmt.Errorf("%w: email %s already registered", sqldb.ErrConflict, u.Email)
	}
	return nil
}

// forgetRole descarta o papel em cache do usuário alterado
func forgetRole(ctx context.Context, cfg *config.App, _ string, u *entities.Usuario) {
	if err := cfg.Cache.Delete(ctx, redis.PerfilRoleKey(u.ID)); err != nil {
		cfg.Logger.Warn("failed to clear role cache", map[string]interface{}{"user_id": u.ID, "error": err.Error()})
	}
}

func hashPassword(password string) (*string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return entities.String(string(hash)), nil
}

func invalidBody(c *gin.Context, err error) {
	crud.Fail(c, &crud.ValidationError{Details: err.Error(), Err: err}, "Invalid request body")
}

// CreateUsuario cadastra um usuário com senha
// @Summary      Criar usuário
// @Description  Cria um usuário com senha (bcrypt). O email é único e o perfil deve existir.
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateUsuarioRequest true "Dados do usuário"
// @Success      201 {object} dto.SuccessResponse{data=entities.Usuario}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      403 {object} dto.ErrorResponse "Forbidden"
// @Failure      409 {object} dto.ErrorResponse "Conflict - Email já existe"
// @Router       /usuarios [post]
func CreateUsuario(cfg *config.App, res *crud.Resource[entities.Usuario]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateUsuarioRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c, err)
			return
		}

		hash, err := hashPassword(req.Password)
		if err != nil {
			crud.Fail(c, err, "Error while creating Usuario")
			return
		}
		u := &entities.Usuario{
			Nome:         req.Nome,
			Email:        req.Email,
			PasswordHash: hash,
			PerfilID:     req.PerfilID,
			Ativo:        req.Ativo,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		if err := res.Add(ctx, c, cfg, u); err != nil {
			crud.Fail(c, err, "Error while creating Usuario")
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(c, u, "Usuario created"))
	}
}

// UpdateUsuario substitui os dados de um usuário; a senha só muda quando enviada
// @Summary      Atualizar usuário
// @Tags         usuarios
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "ID do usuário"
// @Param        body body dto.UpdateUsuarioRequest true "Dados do usuário"
// @Success      200 {object} dto.SuccessResponse{data=entities.Usuario}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      404 {object} dto.ErrorResponse "Not Found"
// @Failure      409 {object} dto.ErrorResponse "Conflict - Email já existe"
// @Router       /usuarios/{id} [put]
func UpdateUsuario(cfg *config.App, res *crud.Resource[entities.Usuario]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdateUsuarioRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			invalidBody(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), crud.RequestTimeout)
		defer cancel()

		u, err := sqldb.FindByID[entities.Usuario](ctx, cfg.DB, c.Param("id"))
		if err != nil {
			crud.Fail(c, err, "Error while updating Usuario")
			return
		}
		u.Nome, u.Email, u.PerfilID = req.Nome, req.Email, req.PerfilID
		if req.Ativo != nil {
			u.Ativo = req.Ativo
		}
		if req.Password != nil {
			if u.PasswordHash, err = hashPassword(*req.Password); err != nil {
				crud.Fail(c, err, "Error while updating Usuario")
				return
			}
		}

		if err := res.Store(ctx, cfg, u); err != nil {
			crud.Fail(c, err, "Error while updating Usuario")
			return
		}
		res.Changed(ctx, c, cfg, mongo.ActionUpdate, u, gin.H{
			"nome":            u.Nome,
			"email":           u.Email,
			"perfilId":        u.PerfilID,
			"ativo":           u.Ativo,
			"passwordChanged": req.Password != nil,
		})
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, u, "Usuario updated"))
	}
}

// notSelf impede que o administrador apague a própria conta
func notSelf(c *gin.Context) {
	if claims, ok := middleware.CurrentUser(c); ok && claims.UserID == c.Param("id") {
		crud.Fail(c, fmt.Errorf("%w: cannot delete your own user", sqldb.ErrInvalidState), "Error while deleting Usuario")
		c.Abort()
		return
	}
	c.Next()
}
