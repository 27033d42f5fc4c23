package crud_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"
	"sindicatorest/internal/testhelpers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	env     *testhelpers.Env
	engine  *gin.Engine
	token   string
	changes []string
	blocked bool
}

func setup(t *testing.T) *fixture {
	f := &fixture{env: testhelpers.NewEnv(t)}
	res := &crud.Resource[entities.Ativo]{
		Entity: "ativos",
		Label:  "Ativo",
		Fields: mapper.Ativos,
		Search: []string{"descricao", "numero_patrimonio"},
		Order:  "descricao ASC",
		Check: func(_ context.Context, _ *config.App, a *entities.Ativo) error {
			if a.Descricao == "proibido" {
				return fmt.Errorf("%w: descricao", crud.ErrBadReference)
			}
			return nil
		},
		CanDelete: func(context.Context, *config.App, string) error {
			if f.blocked {
				return sqldb.ErrInUse
			}
			return nil
		},
		OnChange: func(_ context.Context, _ *config.App, action string, a *entities.Ativo) {
			f.changes = append(f.changes, action+":"+a.Descricao)
		},
	}
	f.engine = f.env.Engine(func(e *gin.Engine, cfg *config.App) {
		res.Register(e.Group("/ativos", middleware.Auth(cfg)), cfg)
	})
	f.token = f.env.UserToken(t)
	return f
}

func (f *fixture) create(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := testhelpers.Do(f.engine, http.MethodPost, "/ativos", body, f.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testhelpers.Data(t, w)
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name         string
		body         interface{}
		expectedCode int
		validateFunc func(t *testing.T, f *fixture, body map[string]interface{})
	}{
		{
			name:         "legacy names and BR decimal are normalized",
			body:         map[string]interface{}{"DESCRICAO": "Notebook", "vl_aquisicao": "3.499,90", "dt_aquisicao": "10/02/2023", "conservacao": "NOVO"},
			expectedCode: http.StatusCreated,
			validateFunc: func(t *testing.T, f *fixture, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, "Notebook", data["descricao"])
				assert.Equal(t, 3499.90, data["valorAquisicao"])
				assert.Equal(t, "2023-02-10", data["dataAquisicao"])
				assert.Equal(t, "novo", data["estado"])
				assert.NotEmpty(t, data["id"])
				assert.Equal(t, []string{mongo.ActionCreate}, f.env.Audit.Actions("ativos"))
				assert.Equal(t, []string{"create:Notebook"}, f.changes)
			},
		},
		{
			name:         "read-only fields are ignored",
			body:         map[string]interface{}{"id": "fixo", "descricao": "Cadeira"},
			expectedCode: http.StatusCreated,
			validateFunc: func(t *testing.T, f *fixture, body map[string]interface{}) {
				assert.NotEqual(t, "fixo", body["data"].(map[string]interface{})["id"])
			},
		},
		{
			name:         "unknown field",
			body:         map[string]interface{}{"descricao": "Mesa", "cor": "azul"},
			expectedCode: http.StatusBadRequest,
			validateFunc: func(t *testing.T, f *fixture, body map[string]interface{}) {
				details := body["details"].(map[string]interface{})
				assert.Equal(t, []interface{}{"cor"}, details["unknown"])
			},
		},
		{
			name:         "binding rules",
			body:         map[string]interface{}{"descricao": "Mesa", "estado": "quebrado"},
			expectedCode: http.StatusBadRequest,
			validateFunc: func(t *testing.T, f *fixture, body map[string]interface{}) {
				assert.Equal(t, "oneof=novo bom regular ruim baixado", body["details"].(map[string]interface{})["estado"])
			},
		},
		{
			name:         "entity rules",
			body:         map[string]interface{}{"descricao": "Mesa", "dataAquisicao": "2999-01-01"},
			expectedCode: http.StatusBadRequest,
			validateFunc: func(t *testing.T, f *fixture, body map[string]interface{}) {
				assert.Contains(t, body["details"], "future")
			},
		},
		{
			name:         "check hook",
			body:         map[string]interface{}{"descricao": "proibido"},
			expectedCode: http.StatusBadRequest,
			validateFunc: func(t *testing.T, f *fixture, body map[string]interface{}) {
				assert.Empty(t, f.changes)
				assert.Empty(t, f.env.Audit.Actions("ativos"))
			},
		},
		{
			name:         "body must be an object",
			body:         "[1,2]",
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			w := testhelpers.Do(f.engine, http.MethodPost, "/ativos", tt.body, f.token)
			assert.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.validateFunc != nil {
				tt.validateFunc(t, f, testhelpers.Decode(t, w))
			}
		})
	}
}

func TestRequiresAuth(t *testing.T) {
	f := setup(t)
	w := testhelpers.Do(f.engine, http.MethodGet, "/ativos", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestList(t *testing.T) {
	f := setup(t)
	for _, d := range []string{"Projetor", "Cadeira", "Notebook", "Mesa"} {
		f.create(t, map[string]interface{}{"descricao": d, "categoria": "moveis"})
	}
	f.create(t, map[string]interface{}{"descricao": "Impressora", "categoria": "informatica", "estado": "ruim"})

	tests := []struct {
		name         string
		query        string
		expectedCode int
		expected     []string
		total        float64
	}{
		{name: "default order", query: "", expectedCode: http.StatusOK, expected: []string{"Cadeira", "Impressora", "Mesa", "Notebook", "Projetor"}, total: 5},
		{name: "pagination", query: "?page=2&pageSize=2", expectedCode: http.StatusOK, expected: []string{"Mesa", "Notebook"}, total: 5},
		{name: "sort desc", query: "?sort=-descricao&pageSize=2", expectedCode: http.StatusOK, expected: []string{"Projetor", "Notebook"}, total: 5},
		{name: "filter by legacy name", query: "?conservacao=RUIM", expectedCode: http.StatusOK, expected: []string{"Impressora"}, total: 1},
		{name: "text search", query: "?q=note", expectedCode: http.StatusOK, expected: []string{"Notebook"}, total: 1},
		{name: "non filterable params are ignored", query: "?responsavel=x&categoria=moveis", expectedCode: http.StatusOK, expected: []string{"Cadeira", "Mesa", "Notebook", "Projetor"}, total: 4},
		{name: "unknown sort", query: "?sort=senha", expectedCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testhelpers.Do(f.engine, http.MethodGet, "/ativos"+tt.query, nil, f.token)
			require.Equal(t, tt.expectedCode, w.Code, w.Body.String())
			if tt.expectedCode != http.StatusOK {
				return
			}
			body := testhelpers.Decode(t, w)
			var got []string
			for _, item := range body["data"].([]interface{}) {
				got = append(got, item.(map[string]interface{})["descricao"].(string))
			}
			assert.Equal(t, tt.expected, got)
			pagination := body["pagination"].(map[string]interface{})
			assert.Equal(t, tt.total, pagination["total_records"])
		})
	}
}

func TestPageSizeIsCapped(t *testing.T) {
	f := setup(t)
	w := testhelpers.Do(f.engine, http.MethodGet, "/ativos?pageSize=500", nil, f.token)
	require.Equal(t, http.StatusOK, w.Code)
	pagination := testhelpers.Decode(t, w)["pagination"].(map[string]interface{})
	assert.Equal(t, float64(sqldb.MaxPageSize), pagination["per_page"])
}

func TestGetUpdatePatchDelete(t *testing.T) {
	f := setup(t)
	created := f.create(t, map[string]interface{}{"descricao": "Notebook", "categoria": "informatica", "valorAquisicao": 1000})
	id := created["id"].(string)

	t.Run("get", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodGet, "/ativos/"+id, nil, f.token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Notebook", testhelpers.Data(t, w)["descricao"])
	})

	t.Run("get missing", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodGet, "/ativos/nao-existe", nil, f.token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("patch keeps other fields", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodPatch, "/ativos/"+id, map[string]interface{}{"estado": "regular"}, f.token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := testhelpers.Data(t, w)
		assert.Equal(t, "regular", data["estado"])
		assert.Equal(t, "informatica", data["categoria"])
		assert.Equal(t, float64(1000), data["valorAquisicao"])
	})

	t.Run("patch rejects read-only fields", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodPatch, "/ativos/"+id, map[string]interface{}{"id": "outro"}, f.token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patch null clears optional field", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodPatch, "/ativos/"+id, map[string]interface{}{"categoria": nil}, f.token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.NotContains(t, testhelpers.Data(t, w), "categoria")
	})

	t.Run("put replaces the record", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodPut, "/ativos/"+id, map[string]interface{}{"descricao": "Notebook Dell"}, f.token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		data := testhelpers.Data(t, w)
		assert.Equal(t, id, data["id"])
		assert.Equal(t, created["createdAt"], data["createdAt"])
		assert.Equal(t, "Notebook Dell", data["descricao"])
		assert.NotContains(t, data, "valorAquisicao")
		assert.Equal(t, "bom", data["estado"])
	})

	t.Run("put validates", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodPut, "/ativos/"+id, map[string]interface{}{"categoria": "x"}, f.token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete blocked", func(t *testing.T) {
		f.blocked = true
		defer func() { f.blocked = false }()
		w := testhelpers.Do(f.engine, http.MethodDelete, "/ativos/"+id, nil, f.token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		w := testhelpers.Do(f.engine, http.MethodDelete, "/ativos/"+id, nil, f.token)
		require.Equal(t, http.StatusOK, w.Code)
		w = testhelpers.Do(f.engine, http.MethodDelete, "/ativos/"+id, nil, f.token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	assert.Equal(t, []string{"create", "patch", "patch", "update", "delete"}, f.env.Audit.Actions("ativos"))
	assert.Equal(t, "delete:Notebook Dell", f.changes[len(f.changes)-1])

	last := f.env.Audit.Entries[len(f.env.Audit.Entries)-1]
	assert.NotEmpty(t, last.UserID)
	assert.NotEmpty(t, last.RequestID)
	assert.Nil(t, last.Changes)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "not found", err: sqldb.ErrNotFound, expected: http.StatusNotFound},
		{name: "wrapped conflict", err: fmt.Errorf("x: %w", sqldb.ErrConflict), expected: http.StatusConflict},
		{name: "in use", err: sqldb.ErrInUse, expected: http.StatusConflict},
		{name: "invalid state", err: sqldb.ErrInvalidState, expected: http.StatusConflict},
		{name: "bad reference", err: crud.ErrBadReference, expected: http.StatusBadRequest},
		{name: "mapper", err: &mapper.Error{Entity: "socio", Unknown: []string{"x"}}, expected: http.StatusBadRequest},
		{name: "validation", err: &crud.ValidationError{Err: errors.New("x")}, expected: http.StatusBadRequest},
		{name: "other", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, crud.Status(tt.err))
		})
	}
}

func TestDecode(t *testing.T) {
	socio, err := crud.Decode[entities.Socio](mapper.Socios, map[string]interface{}{
		"NOME":        "Maria da Silva",
		"CPF":         "529.982.247-25",
		"dt_nasc":     "01/05/1980",
		"MATRICULA":   "120",
		"ignorada":    "x",
		"dt_cadastro": "2020-01-01",
	}, mapper.Options{AllowReadOnly: true, IgnoreUnknown: true})
	require.NoError(t, err)
	assert.Equal(t, "Maria da Silva", socio.Nome)
	assert.Equal(t, "52998224725", socio.CPF)
	assert.Equal(t, int64(120), socio.Matricula)
	require.NotNil(t, socio.DataNascimento)
	assert.Equal(t, "1980-05-01", socio.DataNascimento.String())
	assert.True(t, socio.CreatedAt.IsZero())

	_, err = crud.Decode[entities.Socio](mapper.Socios, map[string]interface{}{"nome": "Maria", "cpf": "111.111.111-11"}, mapper.Options{})
	var verr *crud.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cpf", verr.Details.(map[string]string)["cpf"])
}
