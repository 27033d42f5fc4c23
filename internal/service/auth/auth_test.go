package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/redis"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/auth"
	"sindicatorest/internal/testhelpers"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func setup(t *testing.T) (*testhelpers.Env, *gin.Engine) {
	env := testhelpers.NewEnv(t)
	engine := env.Engine(func(e *gin.Engine, cfg *config.App) {
		auth.Register(e.Group(""), cfg)
	})
	return env, engine
}

func TestLogin(t *testing.T) {
	env, engine := setup(t)
	u, _ := env.CreateUser(t, "maria@sindicato.org.br", "Administrador", "senha-segura")

	inativo, _ := env.CreateUser(t, "inativo@sindicato.org.br", "Operador", "senha-segura")
	require.NoError(t, env.App.DB.DB().Table("usuarios").Where("id = ?", inativo.ID).Update("ativo", false).Error)

	ms, _ := env.CreateUser(t, "ms@sindicato.org.br", "Operador", "senha-segura")
	require.NoError(t, env.App.DB.DB().Table("usuarios").Where("id = ?", ms.ID).Update("password_hash", nil).Error)

	tests := []struct {
		name         string
		body         interface{}
		expectedCode int
		validateFunc func(t *testing.T, data map[string]interface{})
	}{
		{
			name:         "valid credentials",
			body:         map[string]string{"email": "Maria@Sindicato.org.br", "password": "senha-segura"},
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, data map[string]interface{}) {
				assert.NotEmpty(t, data["token"])
				usuario := data["usuario"].(map[string]interface{})
				assert.Equal(t, u.ID, usuario["id"])
				assert.NotContains(t, usuario, "passwordHash")
				assert.NotEmpty(t, usuario["lastLoginAt"])
				assert.Equal(t, "Administrador", data["perfil"].(map[string]interface{})["role"])
			},
		},
		{
			name:         "wrong password",
			body:         map[string]string{"email": "maria@sindicato.org.br", "password": "errada"},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "unknown email",
			body:         map[string]string{"email": "ninguem@sindicato.org.br", "password": "senha-segura"},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "inactive user",
			body:         map[string]string{"email": "inativo@sindicato.org.br", "password": "senha-segura"},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "microsoft only user",
			body:         map[string]string{"email": "ms@sindicato.org.br", "password": "senha-segura"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "invalid body",
			body:         map[string]string{"email": "não é email"},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testhelpers.Do(engine, http.MethodPost, "/auth/login", tt.body, "")
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.validateFunc != nil {
				tt.validateFunc(t, testhelpers.Data(t, w))
			}
		})
	}
}

func TestMe(t *testing.T) {
	env, engine := setup(t)
	_, adminToken := env.CreateUser(t, "admin@sindicato.org.br", "Administrador", "senha-segura")
	_, userToken := env.CreateUser(t, "op@sindicato.org.br", "Operador", "senha-segura")

	w := testhelpers.Do(engine, http.MethodGet, "/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testhelpers.Do(engine, http.MethodGet, "/auth/me", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, testhelpers.Data(t, w)["isAdmin"])

	w = testhelpers.Do(engine, http.MethodGet, "/auth/me", nil, userToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := testhelpers.Data(t, w)
	assert.Equal(t, false, data["isAdmin"])
	assert.Equal(t, "op@sindicato.org.br", data["usuario"].(map[string]interface{})["email"])
}

func TestChangePassword(t *testing.T) {
	env, engine := setup(t)
	u, token := env.CreateUser(t, "maria@sindicato.org.br", "Operador", "senha-antiga")

	w := testhelpers.Do(engine, http.MethodPost, "/auth/change-password",
		map[string]string{"currentPassword": "errada", "newPassword": "senha-nova-123"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testhelpers.Do(engine, http.MethodPost, "/auth/change-password",
		map[string]string{"currentPassword": "senha-antiga", "newPassword": "curta"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testhelpers.Do(engine, http.MethodPost, "/auth/change-password",
		map[string]string{"currentPassword": "senha-antiga", "newPassword": "senha-nova-123"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testhelpers.Do(engine, http.MethodPost, "/auth/login",
		map[string]string{"email": u.Email, "password": "senha-nova-123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"patch"}, env.Audit.Actions("usuarios"))
}

// microsoft simula o JWKS e o endpoint de token da Microsoft
type microsoft struct {
	key     *rsa.PrivateKey
	claims  jwt.MapClaims
	jwks    *httptest.Server
	tokenEP *httptest.Server
}

func newMicrosoft(t *testing.T) *microsoft {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	m := &microsoft{key: key}

	m.jwks = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": "test-kid",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	t.Cleanup(m.jwks.Close)

	m.tokenEP = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, m.claims)
		tok.Header["kid"] = "test-kid"
		signed, err := tok.SignedString(key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     signed,
		})
	}))
	t.Cleanup(m.tokenEP.Close)

	t.Cleanup(auth.SetJWKSURL(m.jwks.URL))
	return m
}

func (m *microsoft) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/auth/microsoft/callback",
		Scopes:       []string{"openid", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenURL:  m.tokenEP.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func validClaims(sub, email string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"name":  "Maria",
		"aud":   "client-id",
		"iss":   "https://login.microsoftonline.com/tenant/v2.0",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
	}
}

// startLogin chama o login e devolve o state gravado
func startLogin(t *testing.T, engine *gin.Engine) string {
	w := testhelpers.Do(engine, http.MethodGet, "/auth/microsoft/login", nil, "")
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))
	return state
}

func TestMicrosoftDisabled(t *testing.T) {
	_, engine := setup(t)

	w := testhelpers.Do(engine, http.MethodGet, "/auth/microsoft/login", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = testhelpers.Do(engine, http.MethodGet, "/auth/microsoft/callback?code=x&state=y", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMicrosoftCallback(t *testing.T) {
	env, engine := setup(t)
	ms := newMicrosoft(t)
	env.App.Auth.OAuth = ms.config()
	env.App.Auth.FrontRedirect = "http://front.local/login"

	u, _ := env.CreateUser(t, "maria@sindicato.org.br", "Operador", "senha-segura")
	inativo, _ := env.CreateUser(t, "inativo@sindicato.org.br", "Operador", "senha-segura")
	require.NoError(t, env.App.DB.DB().Table("usuarios").Where("id = ?", inativo.ID).Update("ativo", false).Error)

	expired := validClaims("sub-1", "maria@sindicato.org.br")
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	wrongAud := validClaims("sub-1", "maria@sindicato.org.br")
	wrongAud["aud"] = "other-app"
	wrongIss := validClaims("sub-1", "maria@sindicato.org.br")
	wrongIss["iss"] = "https://evil.example.com/"

	tests := []struct {
		name         string
		claims       jwt.MapClaims
		state        func() string
		expectedCode int
		validateFunc func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:         "unknown state",
			claims:       validClaims("sub-1", "maria@sindicato.org.br"),
			state:        func() string { return "forjado" },
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "expired id_token",
			claims:       expired,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "audience mismatch",
			claims:       wrongAud,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "issuer mismatch",
			claims:       wrongIss,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "no registered user",
			claims:       validClaims("sub-2", "ninguem@sindicato.org.br"),
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "inactive user",
			claims:       validClaims("sub-3", "inativo@sindicato.org.br"),
			expectedCode: http.StatusForbidden,
			validateFunc: func(t *testing.T, w *httptest.ResponseRecorder) {
				got, err := sqldb.FindByID[entities.Usuario](context.Background(), env.App.DB, inativo.ID)
				require.NoError(t, err)
				assert.Nil(t, got.MicrosoftID)
			},
		},
		{
			name:         "links by email and redirects",
			claims:       validClaims("sub-1", "Maria@Sindicato.org.br"),
			expectedCode: http.StatusFound,
			validateFunc: func(t *testing.T, w *httptest.ResponseRecorder) {
				loc, err := url.Parse(w.Header().Get("Location"))
				require.NoError(t, err)
				assert.Equal(t, "front.local", loc.Host)
				assert.NotEmpty(t, loc.Query().Get("token"))
				assert.Equal(t, u.ID, loc.Query().Get("id"))

				got, err := env.App.DB.GetUsuarioByMicrosoftID(context.Background(), "sub-1")
				require.NoError(t, err)
				assert.Equal(t, u.ID, got.ID)
			},
		},
		{
			name:         "linked account logs in by subject",
			claims:       validClaims("sub-1", "outro-email@exemplo.com"),
			expectedCode: http.StatusFound,
			validateFunc: func(t *testing.T, w *httptest.ResponseRecorder) {
				loc, err := url.Parse(w.Header().Get("Location"))
				require.NoError(t, err)
				assert.Equal(t, u.ID, loc.Query().Get("id"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms.claims = tt.claims
			state := startLogin(t, engine)
			if tt.state != nil {
				state = tt.state()
			}

			w := testhelpers.Do(engine, http.MethodGet, "/auth/microsoft/callback?code=abc&state="+url.QueryEscape(state), nil, "")
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.validateFunc != nil {
				tt.validateFunc(t, w)
			}
		})
	}
}

func TestMicrosoftStateIsSingleUse(t *testing.T) {
	env, engine := setup(t)
	ms := newMicrosoft(t)
	env.App.Auth.OAuth = ms.config()
	ms.claims = validClaims("sub-1", "maria@sindicato.org.br")
	env.CreateUser(t, "maria@sindicato.org.br", "Operador", "senha-segura")

	state := startLogin(t, engine)
	ok, err := env.Cache.GetJSON(context.Background(), redis.OAuthStateKey(state), new(bool))
	require.NoError(t, err)
	assert.True(t, ok)

	w := testhelpers.Do(engine, http.MethodGet, "/auth/microsoft/callback?code=abc&state="+state, nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, testhelpers.Data(t, w)["token"])

	w = testhelpers.Do(engine, http.MethodGet, "/auth/microsoft/callback?code=abc&state="+state, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
