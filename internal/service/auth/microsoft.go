package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/redis"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// StateTTL é a validade do state entre o login e o callback
const StateTTL = 10 * time.Minute

var jwksURL = "https://login.microsoftonline.com/common/discovery/v2.0/keys"

// MicrosoftClaims são as claims do id_token da Microsoft
type MicrosoftClaims struct {
	Email             string `json:"email"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	Subject           string `json:"sub"`
	jwt.RegisteredClaims
}

// Mail retorna o email da conta, que em contas corporativas vem em preferred_username
func (m *MicrosoftClaims) Mail() string {
	if m.Email != "" {
		return m.Email
	}
	return m.PreferredUsername
}

type jwksResponse struct {
	Keys []struct {
		Kty string `json:"kty"`
		N   string `json:"n"`
		E   string `json:"e"`
		Kid string `json:"kid"`
	} `json:"keys"`
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}

// publicKey busca no JWKS a chave RSA do kid
func publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	var jwks jwksResponse
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	for _, k := range jwks.Keys {
		if k.Kid != kid {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("decode N: %w", err)
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("decode E: %w", err)
		}
		e := 0
		for _, b := range eb {
			e = e<<8 + int(b)
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
	}
	return nil, fmt.Errorf("no jwk found for kid=%s", kid)
}

func validateMicrosoftIDToken(ctx context.Context, idToken, clientID string) (*MicrosoftClaims, error) {
	claims := &MicrosoftClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("kid not present in token header")
		}
		return publicKey(ctx, kid)
	}, jwt.WithExpirationRequired(), jwt.WithLeeway(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("parse/verify token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token or claims")
	}

	if clientID != "" && !containsAudience(claims.Audience, clientID) {
		return nil, fmt.Errorf("token aud mismatch (want %s)", clientID)
	}
	if !strings.HasPrefix(claims.Issuer, "https://login.microsoftonline.com/") &&
		!strings.HasPrefix(claims.Issuer, "https://sts.windows.net/") {
		return nil, fmt.Errorf("unexpected issuer: %s", claims.Issuer)
	}
	if claims.Subject == "" || claims.Mail() == "" {
		return nil, errors.New("token without subject or email")
	}
	return claims, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func oauthDisabled(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(c, http.StatusServiceUnavailable, "Service Unavailable", "Microsoft login is not configured", nil))
}

// MicrosoftLoginHandler inicia o fluxo OAuth2 da Microsoft
// @Summary      Iniciar login via Microsoft
// @Description  Redireciona o usuário para o portal de autenticação da Microsoft (OAuth2). Deve ser acessado via navegador.
// @Tags         auth
// @Success      302 {string} string "Redirect para a página de login da Microsoft"
// @Failure      503 {object} dto.ErrorResponse "Login Microsoft não configurado"
// @Router       /auth/microsoft/login [get]
func MicrosoftLoginHandler(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.OAuth == nil {
			oauthDisabled(c)
			return
		}
		state, err := generateState()
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError, err.Error(), "failed to generate state", nil))
			return
		}
		if err := cfg.Cache.SetJSON(c.Request.Context(), redis.OAuthStateKey(state), true, StateTTL); err != nil {
			crud.Fail(c, err, "failed to store state")
			return
		}
		c.Redirect(http.StatusFound, cfg.Auth.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline))
	}
}

// MicrosoftCallbackHandler recebe o código OAuth2 da Microsoft e gera um JWT interno
// @Summary      Callback de autenticação Microsoft
// @Description  Valida o state e o id_token, vincula a conta Microsoft a um usuário ativo já cadastrado com o mesmo email e redireciona ao frontend com o JWT.
// @Tags         auth
// @Param        code   query string true "Código de autorização retornado pela Microsoft"
// @Param        state  query string true "State gerado no início do login"
// @Success      302 {string} string "Redirect para o frontend com o JWT na query string"
// @Failure      400 {object} dto.ErrorResponse "Bad Request - Código ou state inválidos"
// @Failure      401 {object} dto.ErrorResponse "Unauthorized - Token Microsoft inválido"
// @Failure      403 {object} dto.ErrorResponse "Forbidden - Usuário inexistente ou inativo"
// @Failure      503 {object} dto.ErrorResponse "Login Microsoft não configurado"
// @Router       /auth/microsoft/callback [get]
func MicrosoftCallbackHandler(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Auth.OAuth == nil {
			oauthDisabled(c)
			return
		}
		ctx := c.Request.Context()

		code, state := c.Query("code"), c.Query("state")
		if code == "" || state == "" {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "missing code or state", nil))
			return
		}
		var pending bool
		found, err := cfg.Cache.GetJSON(ctx, redis.OAuthStateKey(state), &pending)
		if err != nil || !found {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest, "Bad Request", "invalid or expired state", nil))
			return
		}
		if err := cfg.Cache.Delete(ctx, redis.OAuthStateKey(state)); err != nil {
			cfg.Logger.Warn("failed to delete oauth state", map[string]interface{}{"error": err.Error()})
		}

		token, err := cfg.Auth.OAuth.Exchange(ctx, code)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "failed to exchange code for token", err.Error()))
			return
		}
		idToken, _ := token.Extra("id_token").(string)
		if idToken == "" {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(c, http.StatusUnauthorized, "Unauthorized", "id_token not found in token response", nil))
			return
		}

		claims, err := validateMicrosoftIDToken(ctx, idToken, cfg.Auth.OAuth.ClientID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(c, http.StatusUnauthorized, "Unauthorized", fmt.Sprintf("invalid microsoft id_token: %v", err), nil))
			return
		}

		u, err := linkUsuario(ctx, cfg, claims)
		if errors.Is(err, sqldb.ErrNotFound) {
			c.JSON(http.StatusForbidden, dto.NewErrorResponse(c, http.StatusForbidden, "Forbidden", "No user registered for this Microsoft account", nil))
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

		resp, err := issue(c, cfg, u)
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError, err.Error(), "failed to generate jwt", nil))
			return
		}

		if cfg.Auth.FrontRedirect == "" {
			c.JSON(http.StatusOK, dto.NewSuccessResponse(c, resp, "Login successful"))
			return
		}
		q := url.Values{}
		q.Set("token", resp.Token)
		q.Set("id", u.ID)
		q.Set("email", u.Email)
		q.Set("name", u.Nome)
		c.Redirect(http.StatusFound, cfg.Auth.FrontRedirect+"?"+q.Encode())
	}
}

// linkUsuario encontra o usuário da conta Microsoft, vinculando pelo email no
// primeiro acesso. Nenhum usuário é criado aqui.
func linkUsuario(ctx context.Context, cfg *config.App, claims *MicrosoftClaims) (*entities.Usuario, error) {
	u, err := cfg.DB.GetUsuarioByMicrosoftID(ctx, claims.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, sqldb.ErrNotFound) {
		return nil, err
	}

	u, err = cfg.DB.GetUsuarioByEmail(ctx, claims.Mail())
	if err != nil {
		return nil, err
	}
	if u.IsActive() {
		if err := cfg.DB.LinkMicrosoftID(ctx, u.ID, claims.Subject); err != nil {
			return nil, err
		}
		u.MicrosoftID = &claims.Subject
	}
	return u, nil
}
