// Package auth autentica os usuários do sistema
package auth

import (
	"errors"
	"net/http"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Register monta as rotas de autenticação
func Register(g *gin.RouterGroup, cfg *config.App) {
	a := g.Group("/auth")
	a.POST("/login", LoginHandler(cfg))
	a.GET("/microsoft/login", MicrosoftLoginHandler(cfg))
	a.GET("/microsoft/callback", MicrosoftCallbackHandler(cfg))

	private := a.Group("", middleware.Auth(cfg))
	private.GET("/me", MeHandler(cfg))
	private.POST("/change-password", ChangePasswordHandler(cfg))
}

// issue gera o JWT interno e registra o último acesso
func issue(c *gin.Context, cfg *config.App, u *entities.Usuario) (*dto.LoginResponse, error) {
	token, expiresAt, err := middleware.GenerateJWT(cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, u.ID, u.Email)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := cfg.DB.UpdateLastLogin(c.Request.Context(), u.ID, now); err != nil {
		cfg.Logger.Warn("failed to update last login", map[string]interface{}{"user_id": u.ID, "error": err.Error()})
	} else {
		u.LastLoginAt = &now
	}

	resp := &dto.LoginResponse{Token: token, ExpiresAt: expiresAt, Usuario: u}
	if perfil, err := sqldb.FindByID[entities.Perfil](c.Request.Context(), cfg.DB, u.PerfilID); err == nil {
		resp.Perfil = perfil
	}
	return resp, nil
}

// LoginHandler autentica um usuário e retorna um JWT
// @Summary      Login
// @Description  Autenticação por email e senha. Usuários inativos recebem 403.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body dto.LoginRequest true "Credenciais de login"
// @Success      200 {object} dto.SuccessResponse{data=dto.LoginResponse}
// @Failure      400 {object} dto.ErrorResponse "Bad Request - Dados inválidos"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - Credenciais inválidas"
// @Failure      403 {object} dto.ErrorResponse "Forbidden - Usuário inativo"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /auth/login [post]
func LoginHandler(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "Invalid request body", err.Error()))
			return
		}

		u, err := cfg.DB.GetUsuarioByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, sqldb.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Invalid credentials", nil))
			return
		}
		if err != nil {
			crud.Fail(c, err, "Error while authenticating")
			return
		}
		if !u.IsActive() {
			c.JSON(http.StatusForbidden, dto.NewErrorResponse(c, http.StatusForbidden, "Forbidden", "User account is inactive", nil))
			return
		}
		if u.PasswordHash == nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "User uses Microsoft authentication. Please use Microsoft login", nil))
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "Invalid credentials", nil))
			return
		}

		resp, err := issue(c, cfg, u)
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError, err.Error(), "Failed to generate authentication token", nil))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, resp, "Login successful"))
	}
}

// MeHandler retorna o usuário autenticado
// @Summary      Usuário atual
// @Description  Dados do usuário autenticado, do seu perfil e se ele é administrador
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SuccessResponse{data=dto.MeResponse}
// @Failure      401 {object} dto.AuthErrorResponse "Unauthorized"
// @Router       /auth/me [get]
func MeHandler(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _ := middleware.CurrentUser(c)
		u, perfil, err := cfg.DB.GetUsuarioWithPerfil(c.Request.Context(), claims.UserID)
		if errors.Is(err, sqldb.ErrNotFound) && u == nil {
			c.JSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Usuário não encontrado"))
			return
		}
		if err != nil {
			crud.Fail(c, err, "Error while loading user")
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, dto.MeResponse{
			Usuario: u,
			Perfil:  perfil,
			IsAdmin: u.IsActive() && perfil.IsAdmin(),
		}, ""))
	}
}

// ChangePasswordHandler troca a senha do usuário autenticado
// @Summary      Trocar senha
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ChangePasswordRequest true "Senha atual e nova senha"
// @Success      200 {object} dto.SuccessResponse
// @Failure      400 {object} dto.ErrorResponse "Bad Request - Senha atual incorreta"
// @Failure      401 {object} dto.AuthErrorResponse "Unauthorized"
// @Router       /auth/change-password [post]
func ChangePasswordHandler(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.ChangePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "Invalid request body", err.Error()))
			return
		}

		claims, _ := middleware.CurrentUser(c)
		ctx := c.Request.Context()
		u, err := sqldb.FindByID[entities.Usuario](ctx, cfg.DB, claims.UserID)
		if err != nil {
			crud.Fail(c, err, "Error while changing password")
			return
		}
		if u.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(req.CurrentPassword)) != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "Current password is incorrect", nil))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError, err.Error(), "Failed to hash password", nil))
			return
		}
		if err := cfg.DB.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
			crud.Fail(c, err, "Error while changing password")
			return
		}
		crud.Audit(ctx, c, cfg, "usuarios", u.ID, mongo.ActionPatch, map[string]interface{}{"password": "changed"})
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, nil, "Password changed"))
	}
}
