package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/elsearch"
	"sindicatorest/internal/repositories/legacy"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/importer"
	"sindicatorest/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// fakeIndex grava os documentos em memória
type fakeIndex struct {
	mu        sync.Mutex
	recreated int
	docs      map[string]elsearch.SocioDocument
}

func (f *fakeIndex) RecreateSocioIndex(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recreated++
	f.docs = map[string]elsearch.SocioDocument{}
	return nil
}

func (f *fakeIndex) IndexSocio(_ context.Context, doc elsearch.SocioDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs == nil {
		f.docs = map[string]elsearch.SocioDocument{}
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) DeleteSocio(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) SearchSocios(context.Context, string, int) ([]string, error) {
	return nil, nil
}

// setup aponta o CLI para um SQLite em memória
func setup(t *testing.T) *sqldb.Internal {
	t.Helper()
	db := testhelpers.NewDB(t)
	logger = zap.NewNop()

	prevDB, prevLegacy, prevIndex := openDB, openLegacy, openIndex
	openDB = func() (*sqldb.Internal, func(), error) { return db, func() {}, nil }
	t.Cleanup(func() {
		openDB, openLegacy, openIndex = prevDB, prevLegacy, prevIndex
	})
	return db
}

// run executa o comando com os flags zerados e devolve a saída
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	jsonOutput, verbose, envFile = false, false, ""
	seedFile, fixNames, dryRun, legacyView, skipIndex = "", false, false, "", false
	adminEmail, adminNome, adminPass, resetPassword = "", "Administrador", "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SilenceErrors = true
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	setup(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sindctl 1.0.0")
}

func TestMigrateInspectCount(t *testing.T) {
	setup(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	out, err := run(t, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "socios")
	assert.Contains(t, out, "contas_pagar")

	out, err = run(t, "inspect", "socios", "--json")
	require.NoError(t, err)
	var cols []sqldb.ColumnInfo
	require.NoError(t, json.Unmarshal([]byte(out), &cols))
	names := map[string]bool{}
	for _, c := range cols {
		names[c.Name] = true
	}
	assert.True(t, names["cpf"])
	assert.True(t, names["matricula"])

	_, err = run(t, "inspect", "planetas")
	assert.ErrorIs(t, err, sqldb.ErrNotFound)

	out, err = run(t, "count", "socios", "planetas", "empresas", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 tables")
	var counts []TableCount
	require.NoError(t, json.Unmarshal([]byte(out), &counts))
	require.Len(t, counts, 3)
	assert.Equal(t, "socios", counts[0].Table)
	assert.NotEmpty(t, counts[1].Error)
	assert.Equal(t, "empresas", counts[2].Table)
	assert.Empty(t, counts[2].Error)
}

func TestMaxMatricula(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	require.NoError(t, db.CreateSocio(ctx, &entities.Socio{Matricula: 41, Nome: "Maria Souza", CPF: "52998224725"}))
	require.NoError(t, db.CreateSocio(ctx, &entities.Socio{Nome: "João Lima", CPF: "11144477735"}))

	out, err := run(t, "max-matricula", "--json")
	require.NoError(t, err)
	var got map[string]int64
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(42), got["max"])
	assert.Equal(t, int64(43), got["next"])
}

func TestSeedCommand(t *testing.T) {
	db := setup(t)
	file := filepath.Join(t.TempDir(), "exemplo.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
empresas:
  - razaoSocial: Metalúrgica Alfa Ltda
    cnpj: "11222333000181"
socios:
  - nome: Maria Souza
    cpf: "52998224725"
    empresaCnpj: "11222333000181"
`), 0o600))

	out, err := run(t, "seed", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "empresas: 1")
	assert.Contains(t, out, "socios: 1")

	_, err = db.GetSocioByCPF(context.Background(), "52998224725")
	assert.NoError(t, err)

	_, err = run(t, "seed")
	assert.Error(t, err)
}

func TestCheckNamesCommand(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	ok := &entities.Socio{Nome: "Maria Souza", CPF: "52998224725"}
	messy := &entities.Socio{Nome: "  joão  DA silva ", CPF: "11144477735"}
	for _, s := range []*entities.Socio{ok, messy} {
		require.NoError(t, db.CreateSocio(ctx, s))
	}

	out, err := run(t, "check-names")
	require.NoError(t, err)
	assert.Contains(t, out, "1 nomes com problemas, 0 corrigidos")
	assert.Contains(t, out, "João da Silva")

	_, err = run(t, "check-names", "--fix")
	require.NoError(t, err)

	fixed, err := sqldb.FindByID[entities.Socio](ctx, db, messy.ID)
	require.NoError(t, err)
	assert.Equal(t, "João da Silva", fixed.Nome)
}

func TestImportLegacyCommand(t *testing.T) {
	db := setup(t)
	idx := &fakeIndex{}
	openIndex = func() (socioIndex, error) { return idx, nil }
	openLegacy = func(view string) (legacy.Source, error) {
		return legacy.StaticSource{
			{"NOME": "Maria Souza", "NR_CPF": "529.982.247-25", "RAZAO_SOCIAL": "Metalúrgica Alfa Ltda", "CNPJ": "11222333000181"},
			{"NOME": "Carlos Pereira", "NR_CPF": "12345678900"},
		}, nil
	}

	out, err := run(t, "import-legacy", "--json")
	require.NoError(t, err)
	var report importer.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 2, report.Rows)
	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Empresas)
	assert.Len(t, report.Errors, 1)

	socio, err := db.GetSocioByCPF(context.Background(), "52998224725")
	require.NoError(t, err)
	assert.Contains(t, idx.docs, socio.ID)
}

func TestCreateAdminCommand(t *testing.T) {
	db := setup(t)
	ctx := context.Background()

	_, err := run(t, "create-admin", "--email", "admin@sindicato.org.br", "--password", "curta")
	require.Error(t, err)

	out, err := run(t, "create-admin", "--email", "Admin@Sindicato.org.br", "--password", "admin12345")
	require.NoError(t, err)
	assert.Contains(t, out, "administrador criado")

	u, err := db.GetUsuarioByEmail(ctx, "admin@sindicato.org.br")
	require.NoError(t, err)
	role, err := db.GetPerfilRole(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, entities.IsAdminRole(role))

	_, err = run(t, "create-admin", "--email", "admin@sindicato.org.br", "--password", "outra-senha")
	assert.ErrorIs(t, err, sqldb.ErrConflict)

	_, err = run(t, "create-admin", "--email", "admin@sindicato.org.br", "--password", "outra-senha", "--reset-password")
	require.NoError(t, err)
	u, err = db.GetUsuarioByEmail(ctx, "admin@sindicato.org.br")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte("outra-senha")))

	total, err := sqldb.CountWhere[entities.Perfil](ctx, db, "1 = 1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestReindex(t *testing.T) {
	db := setup(t)
	ctx := context.Background()
	for _, s := range []*entities.Socio{
		{Nome: "Maria Souza", CPF: "52998224725"},
		{Nome: "João Lima", CPF: "11144477735"},
	} {
		require.NoError(t, db.CreateSocio(ctx, s))
	}
	idx := &fakeIndex{docs: map[string]elsearch.SocioDocument{"velho": {ID: "velho"}}}
	openIndex = func() (socioIndex, error) { return idx, nil }

	out, err := run(t, "reindex-search")
	require.NoError(t, err)
	assert.Contains(t, out, "2 sócios indexados")
	assert.Equal(t, 1, idx.recreated)
	assert.Len(t, idx.docs, 2)
	assert.NotContains(t, idx.docs, "velho")
}
