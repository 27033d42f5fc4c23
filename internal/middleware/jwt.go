package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/repositories/sqldb"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// CurrentUserKey é a chave das claims no contexto do gin
const CurrentUserKey = "currentUser"

// papel do perfil resolvido pelo Auth
const currentRoleKey = "currentRole"

// Claims são as claims do token emitido no login
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateJWT gera o token HS256 do usuário
func GenerateJWT(secret []byte, ttl time.Duration, userID, email string) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	expiresAt := time.Now().Add(ttl).UTC()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// DecodeTokenJWT valida o token e retorna as claims
func DecodeTokenJWT(secret []byte, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth exige um bearer token válido e guarda as claims em currentUser
func Auth(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Token JWT não informado"))
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Formato do cabeçalho Authorization inválido"))
			return
		}

		claims, err := DecodeTokenJWT(cfg.Auth.JWTSecret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Token de autorização inválido ou expirado"))
			return
		}

		role, err := PerfilRole(c.Request.Context(), cfg, claims.UserID)
		switch {
		case errors.Is(err, sqldb.ErrNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewAuthErrorResponse(c, "Usuário não encontrado"))
			return
		case err != nil:
			cfg.Logger.Error("loading perfil role", err, map[string]interface{}{"user_id": claims.UserID})
			dto.AbortWithError(c, http.StatusInternalServerError, "Falha ao verificar permissões", nil)
			return
		case role == "":
			dto.AbortWithError(c, http.StatusForbidden, "Usuário inativo", nil)
			return
		}

		c.Set(CurrentUserKey, claims)
		c.Set(currentRoleKey, role)
		AddLogFields(c, map[string]interface{}{"user_id": claims.UserID})
		c.Next()
	}
}

// CurrentUser retorna as claims do usuário autenticado
func CurrentUser(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}
