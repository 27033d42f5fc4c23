package sqldb_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/models/types"
	"sindicatorest/internal/repositories/sqldb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqldb.Internal {
	t.Helper()
	db, err := sqldb.NewInternal(sqldb.Config{
		Driver: sqldb.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(context.Background()))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newSocio(nome, cpf string) *entities.Socio {
	return &entities.Socio{Nome: nome, CPF: cpf}
}

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		cfg     sqldb.Config
		want    string
		wantErr bool
	}{
		{
			name: "explicit dsn wins",
			cfg:  sqldb.Config{Driver: sqldb.DriverPostgres, DSN: "postgres://x"},
			want: "postgres://x",
		},
		{
			name: "postgres from parts",
			cfg:  sqldb.Config{Driver: sqldb.DriverPostgres, Host: "db", User: "sind", Password: "p@ss", Name: "sindicato"},
			want: "postgres://sind:p%40ss@db:5432/sindicato?sslmode=disable",
		},
		{
			name: "sqlserver from parts",
			cfg:  sqldb.Config{Driver: sqldb.DriverSQLServer, Host: "mssql", Port: "1444", User: "sa", Password: "pw", Name: "SINDICATO"},
			want: "sqlserver://sa:pw@mssql:1444?database=SINDICATO",
		},
		{
			name: "sqlite default file",
			cfg:  sqldb.Config{Driver: sqldb.DriverSQLite},
			want: "sindicato.db",
		},
		{
			name:    "unknown driver",
			cfg:     sqldb.Config{Driver: "mysql"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.ConnectionString()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenericCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	funcao := &entities.Funcao{Nome: "Secretária"}
	require.NoError(t, sqldb.Insert(ctx, db, funcao))
	assert.NotEmpty(t, funcao.ID)

	got, err := sqldb.FindByID[entities.Funcao](ctx, db, funcao.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secretária", got.Nome)

	got.Descricao = entities.String("Atendimento")
	require.NoError(t, sqldb.Save(ctx, db, got))

	exists, err := sqldb.Exists[entities.Funcao](ctx, db, "nome = ?", "Secretária")
	require.NoError(t, err)
	assert.True(t, exists)

	dup := &entities.Funcao{Nome: "Secretária"}
	err = sqldb.Insert(ctx, db, dup)
	assert.ErrorIs(t, err, sqldb.ErrConflict)

	require.NoError(t, sqldb.Remove[entities.Funcao](ctx, db, funcao.ID))
	assert.ErrorIs(t, sqldb.Remove[entities.Funcao](ctx, db, funcao.ID), sqldb.ErrNotFound)

	_, err = sqldb.FindByID[entities.Funcao](ctx, db, funcao.ID)
	assert.ErrorIs(t, err, sqldb.ErrNotFound)
}

func TestFindPage(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	cpfs := []string{"52998224725", "11144477735", "12345678909"}
	nomes := []string{"Ana Souza", "Bruno Lima", "Carla Souza"}
	for i := range cpfs {
		require.NoError(t, db.CreateSocio(ctx, newSocio(nomes[i], cpfs[i])))
	}

	items, total, err := sqldb.FindPage[entities.Socio](ctx, db, sqldb.Query{
		Page:          1,
		PageSize:      1,
		Search:        "SOUZA",
		SearchColumns: []string{"nome"},
		Order:         "nome ASC",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Ana Souza", items[0].Nome)

	items, total, err = sqldb.FindPage[entities.Socio](ctx, db, sqldb.Query{
		Page:     2,
		PageSize: 1,
		Filters:  map[string]interface{}{"status": "ativo"},
		Order:    "nome ASC",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Bruno Lima", items[0].Nome)

	q := sqldb.Query{PageSize: 1000}
	q.Normalize()
	assert.Equal(t, sqldb.MaxPageSize, q.PageSize)
	assert.Equal(t, 1, q.Page)
}

func TestSocios(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	next, err := db.NextMatricula(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	a := newSocio("Ana Souza", "52998224725")
	require.NoError(t, db.CreateSocio(ctx, a))
	assert.Equal(t, int64(1), a.Matricula)
	assert.Equal(t, entities.SocioAtivo, a.Status)
	require.NotNil(t, a.DataFiliacao)

	b := newSocio("Bruno Lima", "11144477735")
	b.Matricula = 50
	require.NoError(t, db.CreateSocio(ctx, b))

	max, err := db.MaxMatricula(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(50), max)

	dup := newSocio("Outra Ana", "52998224725")
	assert.ErrorIs(t, db.CreateSocio(ctx, dup), sqldb.ErrConflict)

	found, err := db.GetSocioByCPF(ctx, "52998224725")
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.ID)

	_, err = db.GetSocioByCPF(ctx, "00000000000")
	assert.ErrorIs(t, err, sqldb.ErrNotFound)

	res, err := db.SearchSociosLike(ctx, "lima", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, b.ID, res[0].ID)

	res, err = db.SearchSociosLike(ctx, "50", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Bruno Lima", res[0].Nome)

	res, err = db.SearchSociosLike(ctx, "529.982", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, a.ID, res[0].ID)

	byIDs, err := db.GetSociosByIDs(ctx, []string{b.ID, "missing", a.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)
	assert.Equal(t, b.ID, byIDs[0].ID)
	assert.Equal(t, a.ID, byIDs[1].ID)

	require.NoError(t, db.RenameSocio(ctx, a.ID, "Ana Souza Lima"))
	assert.ErrorIs(t, db.RenameSocio(ctx, "missing", "x"), sqldb.ErrNotFound)

	names, err := db.ListSocioNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza Lima", names[0].Nome)
}

func TestUpsertSocioByCPF(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	created, err := db.UpsertSocioByCPF(ctx, newSocio("Ana Souza", "52998224725"))
	require.NoError(t, err)
	assert.True(t, created)

	update := newSocio("Ana Souza Atualizada", "52998224725")
	update.Cargo = entities.String("Operadora")
	created, err = db.UpsertSocioByCPF(ctx, update)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), update.Matricula)

	total, err := sqldb.CountWhere[entities.Socio](ctx, db, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	found, err := db.GetSocioByCPF(ctx, "52998224725")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza Atualizada", found.Nome)
	assert.Equal(t, "Operadora", *found.Cargo)
}

func TestUsuarios(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	perfil := &entities.Perfil{Nome: "Administradores", Role: "Admin"}
	require.NoError(t, sqldb.Insert(ctx, db, perfil))

	u := &entities.Usuario{Nome: "Maria", Email: " Maria@Sind.org.br ", PerfilID: perfil.ID}
	require.NoError(t, sqldb.Insert(ctx, db, u))

	got, err := db.GetUsuarioByEmail(ctx, "MARIA@sind.org.br")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsActive())

	role, err := db.GetPerfilRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Admin", role)

	_, err = db.GetPerfilRole(ctx, "missing")
	assert.ErrorIs(t, err, sqldb.ErrNotFound)

	now := time.Now()
	require.NoError(t, db.UpdateLastLogin(ctx, u.ID, now))
	require.NoError(t, db.UpdatePassword(ctx, u.ID, "hash"))
	require.NoError(t, db.LinkMicrosoftID(ctx, u.ID, "ms-1"))

	byMS, err := db.GetUsuarioByMicrosoftID(ctx, "ms-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byMS.ID)
	require.NotNil(t, byMS.PasswordHash)
	assert.Equal(t, "hash", *byMS.PasswordHash)
	require.NotNil(t, byMS.LastLoginAt)

	usuario, p, err := db.GetUsuarioWithPerfil(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, usuario.ID)
	assert.Equal(t, perfil.ID, p.ID)

	u.Ativo = entities.Bool(false)
	require.NoError(t, sqldb.Save(ctx, db, u))
	role, err = db.GetPerfilRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, role)

	assert.ErrorIs(t, db.UpdatePassword(ctx, "missing", "x"), sqldb.ErrNotFound)
}

func TestMarkContas(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	conta := &entities.ContaPagar{Descricao: "Aluguel", Valor: 1500, DataVencimento: types.NewDate(2025, time.March, 10)}
	require.NoError(t, sqldb.Insert(ctx, db, conta))
	assert.Equal(t, entities.ContaPendente, conta.Status)

	paga, err := db.MarkContaPagarPaga(ctx, conta.ID, sqldb.Baixa{Data: types.NewDate(2025, time.March, 9)})
	require.NoError(t, err)
	assert.Equal(t, entities.ContaPaga, paga.Status)
	assert.Equal(t, entities.ContaPaga, paga.Situacao)
	require.NotNil(t, paga.ValorPago)
	assert.Equal(t, 1500.0, *paga.ValorPago)

	_, err = db.MarkContaPagarPaga(ctx, conta.ID, sqldb.Baixa{})
	assert.True(t, errors.Is(err, sqldb.ErrInvalidState))

	_, err = db.MarkContaPagarPaga(ctx, "missing", sqldb.Baixa{})
	assert.ErrorIs(t, err, sqldb.ErrNotFound)

	receber := &entities.ContaReceber{Descricao: "Mensalidade", Valor: 50, DataVencimento: types.NewDate(2020, time.January, 5)}
	require.NoError(t, sqldb.Insert(ctx, db, receber))

	loaded, err := sqldb.FindByID[entities.ContaReceber](ctx, db, receber.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.ContaVencida, loaded.Situacao)

	valor := 45.0
	recebida, err := db.MarkContaReceberRecebida(ctx, receber.ID, sqldb.Baixa{Valor: &valor, FormaPagamento: entities.String("pix")})
	require.NoError(t, err)
	assert.Equal(t, entities.ContaRecebida, recebida.Status)
	assert.Equal(t, 45.0, *recebida.ValorRecebido)
	assert.Equal(t, "pix", *recebida.FormaPagamento)
	require.NotNil(t, recebida.DataRecebimento)
}

func TestDashboardQueries(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	empresa := &entities.Empresa{RazaoSocial: "Metalúrgica Paulista Ltda", CNPJ: "11222333000181", NomeFantasia: entities.String("MetalPaulista")}
	require.NoError(t, sqldb.Insert(ctx, db, empresa))

	filiacao := types.NewDate(2024, time.March, 15)
	a := newSocio("Ana Souza", "52998224725")
	a.EmpresaID = &empresa.ID
	a.DataFiliacao = &filiacao
	require.NoError(t, db.CreateSocio(ctx, a))

	b := newSocio("Bruno Lima", "11144477735")
	b.DataFiliacao = &filiacao
	require.NoError(t, db.CreateSocio(ctx, b))

	c := newSocio("Carla Dias", "12345678909")
	c.Status = entities.SocioDesligado
	require.NoError(t, db.CreateSocio(ctx, c))

	byStatus, err := db.CountSociosByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[entities.SocioAtivo])
	assert.Equal(t, int64(1), byStatus[entities.SocioDesligado])
	assert.Equal(t, int64(0), byStatus[entities.SocioInativo])

	series, err := db.SociosPorEmpresa(ctx, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []sqldb.NameValue{
		{Name: "MetalPaulista", Value: 1},
		{Name: "Sem empresa", Value: 1},
	}, series)

	require.NoError(t, sqldb.Insert(ctx, db, &entities.Ativo{Descricao: "Notebook", ValorAquisicao: entities.Float(3000)}))
	require.NoError(t, sqldb.Insert(ctx, db, &entities.Ativo{Descricao: "Impressora", ValorAquisicao: entities.Float(800), Estado: entities.AtivoBaixado}))
	count, total, err := db.SumAtivos(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 3000.0, total)

	hoje := types.NewDate(2025, time.June, 1)
	require.NoError(t, sqldb.Insert(ctx, db, &entities.ContaPagar{Descricao: "Luz", Valor: 200, DataVencimento: types.NewDate(2025, time.May, 1)}))
	require.NoError(t, sqldb.Insert(ctx, db, &entities.ContaPagar{Descricao: "Água", Valor: 100, DataVencimento: types.NewDate(2025, time.July, 1)}))
	pend, err := db.PendenciasPagar(ctx, hoje)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pend.Count)
	assert.Equal(t, 300.0, pend.Total)
	assert.Equal(t, int64(1), pend.Vencidas)

	pago := types.NewDate(2025, time.February, 20)
	require.NoError(t, sqldb.Insert(ctx, db, &entities.ContaPagar{Descricao: "Internet", Valor: 120, DataVencimento: pago, Status: entities.ContaPaga, DataPagamento: &pago}))
	pagamentos, err := db.Pagamentos(ctx, 2025)
	require.NoError(t, err)
	require.Len(t, pagamentos, 1)
	assert.Equal(t, time.February, pagamentos[0].Data.Month())
	assert.Equal(t, 120.0, pagamentos[0].Valor)

	filiacoes, err := db.Filiacoes(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, filiacoes, 2)
}

func TestInspection(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	tables, err := db.Tables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "socios")
	assert.Contains(t, tables, "contas_receber")

	cols, err := db.Columns(ctx, "socios")
	require.NoError(t, err)
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "data_filiacao")
	assert.Contains(t, names, "empresa_id")

	_, err = db.Columns(ctx, "socios; drop table socios")
	assert.ErrorIs(t, err, sqldb.ErrNotFound)

	require.NoError(t, db.CreateSocio(ctx, newSocio("Ana Souza", "52998224725")))
	n, err := db.CountRows(ctx, "socios")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	created, err := db.ApplyConstraints(ctx)
	require.NoError(t, err)
	assert.Empty(t, created)
}
