package routes_test

import (
	"net/http"
	"testing"

	"sindicatorest/internal/routes"
	"sindicatorest/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitiateRoutes(t *testing.T) {
	env := testhelpers.NewEnv(t)
	engine := env.Engine(routes.InitiateRoutes)
	user := env.UserToken(t)
	admin := env.AdminToken(t)

	tests := []struct {
		name         string
		path         string
		token        string
		expectedCode int
	}{
		{name: "health is public", path: "/healthcheck/", expectedCode: http.StatusOK},
		{name: "socios needs a token", path: "/socios", expectedCode: http.StatusUnauthorized},
		{name: "socios", path: "/socios", token: user, expectedCode: http.StatusOK},
		{name: "empresas", path: "/empresas", token: user, expectedCode: http.StatusOK},
		{name: "funcionarios", path: "/funcionarios", token: user, expectedCode: http.StatusOK},
		{name: "ativos", path: "/ativos", token: user, expectedCode: http.StatusOK},
		{name: "contas a pagar", path: "/contas-pagar", token: user, expectedCode: http.StatusOK},
		{name: "dashboard", path: "/dashboard/resumo", token: user, expectedCode: http.StatusOK},
		{name: "me", path: "/auth/me", token: user, expectedCode: http.StatusOK},
		{name: "usuarios is admin only", path: "/usuarios", token: user, expectedCode: http.StatusForbidden},
		{name: "auditoria is admin only", path: "/auditoria", token: user, expectedCode: http.StatusForbidden},
		{name: "usuarios", path: "/usuarios", token: admin, expectedCode: http.StatusOK},
		{name: "auditoria", path: "/auditoria", token: admin, expectedCode: http.StatusOK},
		{name: "unknown route", path: "/tickets", token: user, expectedCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testhelpers.Do(engine, http.MethodGet, tt.path, nil, tt.token)
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := testhelpers.NewEnv(t)
	engine := env.Engine(routes.InitiateRoutes)

	testhelpers.Do(engine, http.MethodGet, "/healthcheck/", nil, "")

	w := testhelpers.Do(engine, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sindicato_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/healthcheck/"`)
}
