// Package testhelpers monta um App completo para os testes dos handlers,
// com SQLite em memória e backends falsos.
package testhelpers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/elsearch"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/redis"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Env agrupa o App e os backends falsos
type Env struct {
	App    *config.App
	Audit  *Audit
	Files  *Files
	Search *Search
	Cache  *redis.MemoryCache
}

// NewDB abre um SQLite em memória com o schema migrado
func NewDB(t *testing.T) *sqldb.Internal {
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

// NewEnv cria o App de teste
func NewEnv(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &Env{
		Audit:  &Audit{},
		Files:  NewFiles(),
		Search: NewSearch(),
		Cache:  redis.NewMemoryCache(),
	}
	env.App = &config.App{
		Logger: logger.NewNop(),
		DB:     NewDB(t),
		Cache:  env.Cache,
		Audit:  env.Audit,
		Files:  env.Files,
		Search: env.Search,
		Auth: config.Auth{
			JWTSecret: []byte("test-secret"),
			JWTTTL:    time.Hour,
		},
		Metrics:   prometheus.NewRegistry(),
		StartedAt: time.Now(),
	}
	return env
}

// Engine monta o servidor com os middlewares de produção
func (e *Env) Engine(register func(*gin.Engine, *config.App)) *gin.Engine {
	engine := middleware.SetupServer(e.App)
	register(engine, e.App)
	return engine
}

// CreateUser grava perfil e usuário ativos e retorna o usuário e um token
func (e *Env) CreateUser(t *testing.T, email, role, password string) (*entities.Usuario, string) {
	t.Helper()
	ctx := context.Background()

	perfil, err := e.App.DB.GetPerfilByNome(ctx, "Perfil "+role)
	if err != nil {
		perfil = &entities.Perfil{Nome: "Perfil " + role, Role: role}
		require.NoError(t, sqldb.Insert(ctx, e.App.DB, perfil))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &entities.Usuario{
		Nome:         "Usuário " + role,
		Email:        email,
		PasswordHash: entities.String(string(hash)),
		PerfilID:     perfil.ID,
	}
	require.NoError(t, sqldb.Insert(ctx, e.App.DB, u))

	token, _, err := middleware.GenerateJWT(e.App.Auth.JWTSecret, time.Hour, u.ID, u.Email)
	require.NoError(t, err)
	return u, token
}

// AdminToken cria um administrador e retorna o token
func (e *Env) AdminToken(t *testing.T) string {
	_, token := e.CreateUser(t, "admin-"+uuid.NewString()[:8]+"@sindicato.org.br", "Administrador", "admin12345")
	return token
}

// UserToken cria um operador comum e retorna o token
func (e *Env) UserToken(t *testing.T) string {
	_, token := e.CreateUser(t, "op-"+uuid.NewString()[:8]+"@sindicato.org.br", "Operador", "operador123")
	return token
}

// Do executa uma requisição JSON
func Do(engine http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// Decode lê o corpo JSON da resposta
func Decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// Data retorna o campo data de uma resposta de sucesso
func Data(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	data, ok := Decode(t, w)["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return data
}

// Audit é um Auditor em memória
type Audit struct {
	mu      sync.Mutex
	Entries []mongo.AuditEntry
}

func (a *Audit) Record(_ context.Context, entry mongo.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	entry.ID = primitive.NewObjectID()
	a.Entries = append(a.Entries, entry)
	return nil
}

func (a *Audit) List(_ context.Context, f mongo.AuditFilter) ([]mongo.AuditEntry, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []mongo.AuditEntry{}
	for i := len(a.Entries) - 1; i >= 0; i-- {
		e := a.Entries[i]
		if (f.Entity == "" || e.Entity == f.Entity) && (f.EntityID == "" || e.EntityID == f.EntityID) && (f.UserID == "" || e.UserID == f.UserID) {
			out = append(out, e)
		}
	}
	total := int64(len(out))
	from := (f.Page - 1) * f.PageSize
	if from > len(out) {
		from = len(out)
	}
	to := from + f.PageSize
	if to > len(out) {
		to = len(out)
	}
	return out[from:to], total, nil
}

// Actions retorna as ações registradas para a entidade
func (a *Audit) Actions(entity string) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, e := range a.Entries {
		if e.Entity == entity {
			out = append(out, e.Action)
		}
	}
	return out
}

// Files é um FileStore em memória
type Files struct {
	mu      sync.Mutex
	infos   map[string]mongo.FileInfo
	content map[string][]byte
}

// NewFiles cria um Files vazio
func NewFiles() *Files {
	return &Files{infos: map[string]mongo.FileInfo{}, content: map[string][]byte{}}
}

func (f *Files) Upload(_ context.Context, info mongo.FileInfo, r io.Reader) (*mongo.FileInfo, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	info.ID = primitive.NewObjectID().Hex()
	info.Size = int64(len(raw))
	info.UploadedAt = time.Now().UTC()
	f.infos[info.ID] = info
	f.content[info.ID] = raw
	return &info, nil
}

func (f *Files) List(_ context.Context, entity, entityID string) ([]mongo.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []mongo.FileInfo{}
	for _, info := range f.infos {
		if info.Entity == entity && info.EntityID == entityID {
			out = append(out, info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (f *Files) Open(_ context.Context, id string) (*mongo.FileInfo, io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[id]
	if !ok {
		return nil, nil, mongo.ErrFileNotFound
	}
	return &info, io.NopCloser(bytes.NewReader(f.content[id])), nil
}

func (f *Files) Delete(_ context.Context, id string) (*mongo.FileInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.infos[id]
	if !ok {
		return nil, mongo.ErrFileNotFound
	}
	delete(f.infos, id)
	delete(f.content, id)
	return &info, nil
}

// Search é um SocioSearcher em memória com busca por substring no nome
type Search struct {
	mu   sync.Mutex
	Docs map[string]elsearch.SocioDocument
	Err  error
}

// NewSearch cria um Search vazio
func NewSearch() *Search {
	return &Search{Docs: map[string]elsearch.SocioDocument{}}
}

func (s *Search) IndexSocio(_ context.Context, doc elsearch.SocioDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Docs[doc.ID] = doc
	return nil
}

func (s *Search) DeleteSocio(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Docs, id)
	return nil
}

func (s *Search) SearchSocios(_ context.Context, term string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var ids []string
	for id, d := range s.Docs {
		if strings.Contains(strings.ToLower(d.Nome), strings.ToLower(term)) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Indexed indica se o sócio está no índice
func (s *Search) Indexed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Docs[id]
	return ok
}

var (
	_ mongo.Auditor          = (*Audit)(nil)
	_ mongo.FileStore        = (*Files)(nil)
	_ elsearch.SocioSearcher = (*Search)(nil)
)

// LogLine é uma mensagem registrada por Logs
type LogLine struct {
	Level   logger.LogLevel
	Message string
}

// Logs é um logger.Logger em memória
type Logs struct {
	mu      sync.Mutex
	Entries []LogLine
}

func (l *Logs) add(level logger.LogLevel, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogLine{Level: level, Message: message})
}

func (l *Logs) Debug(msg string, _ ...map[string]interface{}) { l.add(logger.LevelDebug, msg) }
func (l *Logs) Info(msg string, _ ...map[string]interface{})  { l.add(logger.LevelInfo, msg) }
func (l *Logs) Warn(msg string, _ ...map[string]interface{})  { l.add(logger.LevelWarn, msg) }
func (l *Logs) Error(msg string, _ error, _ ...map[string]interface{}) {
	l.add(logger.LevelError, msg)
}
func (l *Logs) Fatal(msg string, _ error, _ ...map[string]interface{}) {
	l.add(logger.LevelFatal, msg)
}
func (l *Logs) WithContext(level logger.LogLevel, msg string, _ logger.LogContext) { l.add(level, msg) }
func (l *Logs) Close() error                                                        { return nil }

// Messages retorna as mensagens de um nível
func (l *Logs) Messages(level logger.LogLevel) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

var _ logger.Logger = (*Logs)(nil)
