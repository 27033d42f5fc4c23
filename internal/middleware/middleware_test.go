package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/testhelpers"
	"sindicatorest/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

func TestGenerateAndDecodeJWT(t *testing.T) {
	secret := []byte("s3cr3t")

	token, exp, err := middleware.GenerateJWT(secret, time.Hour, "u1", "ana@sind.org.br")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := middleware.DecodeTokenJWT(secret, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ana@sind.org.br", claims.Email)

	_, err = middleware.DecodeTokenJWT([]byte("other"), token)
	assert.Error(t, err)

	expired, _, err := middleware.GenerateJWT(secret, -time.Minute, "u1", "ana@sind.org.br")
	require.NoError(t, err)
	_, err = middleware.DecodeTokenJWT(secret, expired)
	assert.Error(t, err)

	_, _, err = middleware.GenerateJWT(nil, time.Hour, "u1", "x")
	assert.Error(t, err)
}

func TestAuth(t *testing.T) {
	env := testhelpers.NewEnv(t)
	user, token := env.CreateUser(t, "ana@sind.org.br", "Operador", "12345678")
	inactive, inactiveToken := env.CreateUser(t, "inativa@sind.org.br", "Operador", "12345678")
	inactive.Ativo = entities.Bool(false)
	require.NoError(t, sqldb.Save(context.Background(), env.App.DB, inactive))
	ghostToken, _, err := middleware.GenerateJWT(env.App.Auth.JWTSecret, time.Hour, "u1", "fantasma@sind.org.br")
	require.NoError(t, err)

	engine := env.Engine(func(e *gin.Engine, cfg *config.App) {
		e.GET("/private", middleware.Auth(cfg), func(c *gin.Context) {
			claims, _ := middleware.CurrentUser(c)
			c.JSON(http.StatusOK, gin.H{"user": claims.UserID})
		})
	})

	tests := []struct {
		name         string
		header       string
		expectedCode int
		validateFunc func(t *testing.T, body map[string]interface{})
	}{
		{
			name:         "missing header",
			expectedCode: http.StatusUnauthorized,
			validateFunc: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "unauthorized", body["error"])
				assert.Equal(t, "/auth/login", body["login_url"])
			},
		},
		{
			name:         "wrong scheme",
			header:       "Basic " + token,
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "invalid token",
			header:       "Bearer abc.def.ghi",
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "valid token",
			header:       "Bearer " + token,
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, user.ID, body["user"])
			},
		},
		{
			name:         "inactive user",
			header:       "Bearer " + inactiveToken,
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "user no longer exists",
			header:       "Bearer " + ghostToken,
			expectedCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.validateFunc != nil {
				tt.validateFunc(t, testhelpers.Decode(t, w))
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	env := testhelpers.NewEnv(t)
	ctx := context.Background()

	engine := env.Engine(func(e *gin.Engine, cfg *config.App) {
		e.GET("/admin", middleware.Auth(cfg), middleware.RequireAdmin(cfg), ok)
	})

	adminToken := env.AdminToken(t)
	userToken := env.UserToken(t)
	inactive, inactiveToken := env.CreateUser(t, "inativo@sind.org.br", "Administrador", "12345678")
	inactive.Ativo = entities.Bool(false)
	require.NoError(t, sqldb.Save(ctx, env.App.DB, inactive))
	ghostToken, _, _ := middleware.GenerateJWT(env.App.Auth.JWTSecret, time.Hour, "missing", "x@y.z")

	tests := []struct {
		name         string
		token        string
		expectedCode int
	}{
		{name: "admin", token: adminToken, expectedCode: http.StatusOK},
		{name: "operador", token: userToken, expectedCode: http.StatusForbidden},
		{name: "inactive admin", token: inactiveToken, expectedCode: http.StatusForbidden},
		{name: "deleted user", token: ghostToken, expectedCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testhelpers.Do(engine, http.MethodGet, "/admin", nil, tt.token)
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestPerfilRoleUsesCache(t *testing.T) {
	env := testhelpers.NewEnv(t)
	ctx := context.Background()

	u, _ := env.CreateUser(t, "maria@sind.org.br", "Administrador", "12345678")

	role, err := middleware.PerfilRole(ctx, env.App, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Administrador", role)

	// o papel fica em cache mesmo se o perfil mudar no banco
	_, perfil, err := env.App.DB.GetUsuarioWithPerfil(ctx, u.ID)
	require.NoError(t, err)
	perfil.Role = "operador"
	require.NoError(t, sqldb.Save(ctx, env.App.DB, perfil))

	role, err = middleware.PerfilRole(ctx, env.App, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Administrador", role)
}

type fakeCounter struct {
	mu     sync.Mutex
	values map[string]int
	err    error
}

func (f *fakeCounter) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(strconv.Itoa(v), nil)
}

func (f *fakeCounter) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.(int)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCounter) TTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(42*time.Second, nil)
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key]++
	return redis.NewIntResult(int64(f.values[key]), nil)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("blocks after limit", func(t *testing.T) {
		store := &fakeCounter{values: map[string]int{}}
		engine := gin.New()
		engine.Use(middleware.NewRateLimiter(store, logger.NewNop(), 2, time.Minute).Middleware())
		engine.GET("/", ok)

		codes := make([]int, 0, 3)
		var last *httptest.ResponseRecorder
		for i := 0; i < 3; i++ {
			last = testhelpers.Do(engine, http.MethodGet, "/", nil, "")
			codes = append(codes, last.Code)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
		assert.Equal(t, "42", last.Header().Get("Retry-After"))
		assert.Equal(t, "rate_limit_exceeded", testhelpers.Decode(t, last)["error"])
	})

	t.Run("store failure lets requests through", func(t *testing.T) {
		store := &fakeCounter{values: map[string]int{}, err: errors.New("connection refused")}
		engine := gin.New()
		engine.Use(middleware.NewRateLimiter(store, logger.NewNop(), 1, time.Minute).Middleware())
		engine.GET("/", ok)

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, testhelpers.Do(engine, http.MethodGet, "/", nil, "").Code)
		}
	})
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware(""))
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(middleware.RequestIDHeader))

	w = testhelpers.Do(engine, http.MethodGet, "/", nil, "")
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(middleware.RequestIDHeader))
}

type recordingLogger struct {
	logger.Logger
	mu      sync.Mutex
	entries []logger.LogContext
	levels  []logger.LogLevel
}

func (r *recordingLogger) WithContext(level logger.LogLevel, _ string, lc logger.LogContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.entries = append(r.entries, lc)
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &recordingLogger{Logger: logger.NewNop()}

	engine := gin.New()
	engine.Use(middleware.RequestIDMiddleware(""))
	engine.Use(middleware.LoggerMiddleware(rec, middleware.MiddlewareConfig{
		LogRequestBody:  true,
		LogResponseBody: true,
		MaxBodySize:     64,
		ExcludedHeaders: []string{"authorization"},
		SkipPaths:       []string{"/healthcheck/"},
	}))
	engine.POST("/socios", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Bad Request"})
	})
	engine.GET("/healthcheck/", ok)

	testhelpers.Do(engine, http.MethodGet, "/healthcheck/", nil, "")
	testhelpers.Do(engine, http.MethodPost, "/socios", `{"nome":"Ana"}`, "token")

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0].HTTP
	require.NotNil(t, entry)
	assert.Equal(t, logger.LevelWarn, rec.levels[0])
	assert.Equal(t, "/socios", entry.Route)
	assert.Equal(t, http.StatusBadRequest, entry.StatusCode)
	assert.Equal(t, `{"nome":"Ana"}`, entry.RequestBody)
	assert.Contains(t, entry.ResponseBody, "Bad Request")
	assert.NotEmpty(t, entry.RequestID)
	_, hasAuth := entry.Headers["Authorization"]
	assert.False(t, hasAuth)
}

func TestHTTPMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()

	engine := gin.New()
	engine.Use(middleware.NewHTTPMetrics(reg).Middleware())
	engine.GET("/socios/:id", ok)

	testhelpers.Do(engine, http.MethodGet, "/socios/1", nil, "")
	testhelpers.Do(engine, http.MethodGet, "/socios/2", nil, "")
	testhelpers.Do(engine, http.MethodGet, "/nada", nil, "")

	families, err := reg.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "sindicato_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			counts[labels["route"]+" "+labels["status"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, counts["/socios/:id 200"])
	assert.Equal(t, 1.0, counts["unmatched 404"])
}

func TestSetupServerRecovers(t *testing.T) {
	env := testhelpers.NewEnv(t)
	engine := env.Engine(func(e *gin.Engine, _ *config.App) {
		e.GET("/panic", func(*gin.Context) { panic("boom") })
	})

	w := testhelpers.Do(engine, http.MethodGet, "/panic", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := testhelpers.Decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["request_id"])
}
