package funcionarios_test

import (
	"net/http"
	"testing"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/service/funcionarios"
	"sindicatorest/internal/testhelpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncoesAndFuncionarios(t *testing.T) {
	env := testhelpers.NewEnv(t)
	engine := env.Engine(func(e *gin.Engine, cfg *config.App) {
		funcionarios.Register(e.Group("", middleware.Auth(cfg)), cfg)
	})
	token := env.UserToken(t)

	w := testhelpers.Do(engine, http.MethodPost, "/funcoes", map[string]interface{}{"nome": "Secretária", "salario": "2.500,00"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	funcao := testhelpers.Data(t, w)
	assert.Equal(t, 2500.0, funcao["salarioBase"])
	funcaoID := funcao["id"].(string)

	var funcionarioID string
	tests := []struct {
		name         string
		method       string
		path         func() string
		body         interface{}
		expectedCode int
		validateFunc func(t *testing.T, data map[string]interface{})
	}{
		{
			name:         "duplicated funcao",
			method:       http.MethodPost,
			path:         func() string { return "/funcoes" },
			body:         map[string]interface{}{"nome": "Secretária"},
			expectedCode: http.StatusConflict,
		},
		{
			name:         "funcionario with unknown funcao",
			method:       http.MethodPost,
			path:         func() string { return "/funcionarios" },
			body:         map[string]interface{}{"nome": "Carla Mendes", "cpf": "52998224725", "funcaoId": "nao-existe"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "funcionario with invalid cpf",
			method:       http.MethodPost,
			path:         func() string { return "/funcionarios" },
			body:         map[string]interface{}{"nome": "Carla Mendes", "cpf": "123", "funcaoId": funcaoID},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "demissao before admissao",
			method:       http.MethodPost,
			path:         func() string { return "/funcionarios" },
			body:         map[string]interface{}{"nome": "Carla Mendes", "cpf": "52998224725", "funcaoId": funcaoID, "admissao": "01/03/2020", "demissao": "01/02/2020"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "create funcionario",
			method:       http.MethodPost,
			path:         func() string { return "/funcionarios" },
			body:         map[string]interface{}{"nome": "Carla Mendes", "cpf": "529.982.247-25", "funcao": funcaoID, "admissao": "01/03/2020"},
			expectedCode: http.StatusCreated,
			validateFunc: func(t *testing.T, data map[string]interface{}) {
				funcionarioID = data["id"].(string)
				assert.Equal(t, "2020-03-01", data["dataAdmissao"])
				assert.Equal(t, true, data["ativo"])
			},
		},
		{
			name:         "funcao in use",
			method:       http.MethodDelete,
			path:         func() string { return "/funcoes/" + funcaoID },
			expectedCode: http.StatusConflict,
		},
		{
			name:         "delete funcionario",
			method:       http.MethodDelete,
			path:         func() string { return "/funcionarios/" + funcionarioID },
			expectedCode: http.StatusOK,
		},
		{
			name:         "funcao can be deleted afterwards",
			method:       http.MethodDelete,
			path:         func() string { return "/funcoes/" + funcaoID },
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testhelpers.Do(engine, tt.method, tt.path(), tt.body, token)
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.validateFunc != nil {
				tt.validateFunc(t, testhelpers.Data(t, w))
			}
		})
	}
}
