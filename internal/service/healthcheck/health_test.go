package healthcheck_test

import (
	"net/http"
	"testing"

	"sindicatorest/internal/config"
	"sindicatorest/internal/service/healthcheck"
	"sindicatorest/internal/testhelpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name         string
		prepare      func(env *testhelpers.Env)
		expectedCode int
		validateFunc func(t *testing.T, body map[string]interface{})
	}{
		{
			name:         "database up and optional backends disabled",
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "OK", body["status"])
				assert.Equal(t, true, body["success"])
				assert.Equal(t, config.Version, body["version"])
				assert.NotEmpty(t, body["uptime"])
				checks := body["checks"].(map[string]interface{})
				assert.Equal(t, "up", checks["database"])
				assert.Equal(t, "disabled", checks["redis"])
				assert.Equal(t, "disabled", checks["mongodb"])
				assert.Equal(t, "disabled", checks["elasticsearch"])
			},
		},
		{
			name: "database down",
			prepare: func(env *testhelpers.Env) {
				_ = env.App.DB.Close()
			},
			expectedCode: http.StatusServiceUnavailable,
			validateFunc: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "DOWN", body["status"])
				assert.Equal(t, false, body["success"])
				checks := body["checks"].(map[string]interface{})
				assert.Contains(t, checks["database"], "error")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testhelpers.NewEnv(t)
			engine := env.Engine(func(e *gin.Engine, cfg *config.App) {
				e.GET("/healthcheck/", healthcheck.Health(cfg))
			})
			if tt.prepare != nil {
				tt.prepare(env)
			}

			w := testhelpers.Do(engine, http.MethodGet, "/healthcheck/", nil, "")
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			tt.validateFunc(t, testhelpers.Decode(t, w))
		})
	}
}
