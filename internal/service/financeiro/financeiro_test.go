package financeiro_test

import (
	"net/http"
	"testing"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/models/types"
	"sindicatorest/internal/service/financeiro"
	"sindicatorest/internal/testhelpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*testhelpers.Env, *gin.Engine) {
	env := testhelpers.NewEnv(t)
	engine := env.Engine(func(e *gin.Engine, cfg *config.App) {
		financeiro.Register(e.Group("", middleware.Auth(cfg)), cfg)
	})
	return env, engine
}

func TestContasPagar(t *testing.T) {
	env, engine := setup(t)
	token := env.UserToken(t)
	admin := env.AdminToken(t)
	ontem := types.Today().AddDays(-1).String()

	var id string
	tests := []struct {
		name         string
		method       string
		path         func() string
		body         interface{}
		token        string
		expectedCode int
		validateFunc func(t *testing.T, data map[string]interface{})
	}{
		{
			name:         "valor must be positive",
			method:       http.MethodPost,
			path:         func() string { return "/contas-pagar" },
			body:         map[string]interface{}{"descricao": "Aluguel", "valor": 0, "vencimento": ontem},
			token:        token,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "vencimento is required",
			method:       http.MethodPost,
			path:         func() string { return "/contas-pagar" },
			body:         map[string]interface{}{"descricao": "Aluguel", "valor": 10},
			token:        token,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "overdue conta",
			method:       http.MethodPost,
			path:         func() string { return "/contas-pagar" },
			body:         map[string]interface{}{"historico": "Aluguel da sede", "vl_conta": "1.500,00", "vencimento": ontem, "credor": "Imobiliária"},
			token:        token,
			expectedCode: http.StatusCreated,
			validateFunc: func(t *testing.T, data map[string]interface{}) {
				id = data["id"].(string)
				assert.Equal(t, entities.ContaPendente, data["status"])
				assert.Equal(t, entities.ContaVencida, data["situacao"])
				assert.Equal(t, 1500.0, data["valor"])
			},
		},
		{
			name:         "get keeps the computed situacao",
			method:       http.MethodGet,
			path:         func() string { return "/contas-pagar/" + id },
			token:        token,
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, entities.ContaVencida, data["situacao"])
			},
		},
		{
			name:         "invalid forma de pagamento",
			method:       http.MethodPost,
			path:         func() string { return "/contas-pagar/" + id + "/pagar" },
			body:         map[string]interface{}{"formaPagamento": "fiado"},
			token:        token,
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "pay",
			method:       http.MethodPost,
			path:         func() string { return "/contas-pagar/" + id + "/pagar" },
			body:         map[string]interface{}{"data": "2025-03-10", "formaPagamento": "pix"},
			token:        token,
			expectedCode: http.StatusOK,
			validateFunc: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, entities.ContaPaga, data["status"])
				assert.Equal(t, entities.ContaPaga, data["situacao"])
				assert.Equal(t, "2025-03-10", data["dataPagamento"])
				assert.Equal(t, 1500.0, data["valorPago"])
				assert.Equal(t, "pix", data["formaPagamento"])
			},
		},
		{
			name:         "pay twice",
			method:       http.MethodPost,
			path:         func() string { return "/contas-pagar/" + id + "/pagar" },
			token:        token,
			expectedCode: http.StatusConflict,
		},
		{
			name:         "pay unknown conta",
			method:       http.MethodPost,
			path:         func() string { return "/contas-pagar/nao-existe/pagar" },
			token:        token,
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "delete requires admin",
			method:       http.MethodDelete,
			path:         func() string { return "/contas-pagar/" + id },
			token:        token,
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "admin deletes",
			method:       http.MethodDelete,
			path:         func() string { return "/contas-pagar/" + id },
			token:        admin,
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testhelpers.Do(engine, tt.method, tt.path(), tt.body, tt.token)
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.validateFunc != nil {
				tt.validateFunc(t, testhelpers.Data(t, w))
			}
		})
	}

	assert.Equal(t, []string{"create", "pay", "delete"}, env.Audit.Actions("contas-pagar"))
}

func TestContasReceber(t *testing.T) {
	env, engine := setup(t)
	token := env.UserToken(t)

	w := testhelpers.Do(engine, http.MethodPost, "/contas-receber", map[string]interface{}{
		"descricao": "Mensalidade", "valor": 50, "dataVencimento": "2030-01-10", "socioId": "nao-existe",
	}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testhelpers.Do(engine, http.MethodPost, "/contas-receber", map[string]interface{}{
		"descricao": "Mensalidade", "valor": 50, "dataVencimento": "2030-01-10", "socioId": "",
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := testhelpers.Data(t, w)
	assert.NotContains(t, data, "socioId")
	assert.Equal(t, entities.ContaPendente, data["situacao"])
	id := data["id"].(string)

	w = testhelpers.Do(engine, http.MethodPatch, "/contas-receber/"+id, map[string]interface{}{"dataRecebimento": "2030-01-10"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testhelpers.Do(engine, http.MethodPost, "/contas-receber/"+id+"/receber", map[string]interface{}{"valor": 45}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data = testhelpers.Data(t, w)
	assert.Equal(t, entities.ContaRecebida, data["status"])
	assert.Equal(t, 45.0, data["valorRecebido"])
	assert.Equal(t, types.Today().String(), data["dataRecebimento"])

	w = testhelpers.Do(engine, http.MethodGet, "/contas-receber?status=recebido", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testhelpers.Decode(t, w)["data"], 1)
}
