package auditoria_test

import (
	"context"
	"net/http"
	"testing"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/service/auditoria"
	"sindicatorest/internal/testhelpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	env := testhelpers.NewEnv(t)
	engine := env.Engine(func(e *gin.Engine, cfg *config.App) {
		auditoria.Register(e.Group("", middleware.Auth(cfg), middleware.RequireAdmin(cfg)), cfg)
	})
	admin := env.AdminToken(t)
	user := env.UserToken(t)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, env.Audit.Record(ctx, mongo.AuditEntry{Entity: "socios", EntityID: "s1", Action: mongo.ActionPatch, UserID: "u1"}))
	}
	require.NoError(t, env.Audit.Record(ctx, mongo.AuditEntry{Entity: "empresas", EntityID: "e1", Action: mongo.ActionCreate, UserID: "u2"}))

	tests := []struct {
		name         string
		path         string
		token        string
		expectedCode int
		validateFunc func(t *testing.T, body map[string]interface{})
	}{
		{name: "requires admin", path: "/auditoria", token: user, expectedCode: http.StatusForbidden},
		{
			name:         "all entries",
			path:         "/auditoria",
			token:        admin,
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["data"], 4)
				assert.Equal(t, "empresas", body["data"].([]interface{})[0].(map[string]interface{})["entity"])
			},
		},
		{
			name:         "filtered and paged",
			path:         "/auditoria?entity=socios&entityId=s1&page=2&pageSize=2",
			token:        admin,
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["data"], 1)
				p := body["pagination"].(map[string]interface{})
				assert.Equal(t, 3.0, p["total_records"])
				assert.Equal(t, 2.0, p["total_pages"])
				assert.Equal(t, false, p["has_next"])
				assert.Equal(t, true, p["has_prev"])
			},
		},
		{
			name:         "by user",
			path:         "/auditoria?userId=u2",
			token:        admin,
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["data"], 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testhelpers.Do(engine, http.MethodGet, tt.path, nil, tt.token)
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.validateFunc != nil {
				tt.validateFunc(t, testhelpers.Decode(t, w))
			}
		})
	}
}
