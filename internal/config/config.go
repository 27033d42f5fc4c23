package config

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"sindicatorest/internal/repositories/elsearch"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/redis"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/pkg/logger"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// Version é a versão publicada da API
const Version = "1.0.0"

// Auth reúne as configurações de autenticação
type Auth struct {
	JWTSecret []byte
	JWTTTL    time.Duration
	// OAuth é nil quando o login Microsoft não está configurado
	OAuth         *oauth2.Config
	FrontRedirect string
}

// App - a struct that holds the application dependencies
type App struct {
	Logger logger.Logger
	DB     *sqldb.Internal

	// Redis é nil quando REDIS_ENABLED=false; o rate limit é desligado
	Redis *redis.RedisInternal
	Cache redis.Cache

	Mongo *mongo.MongoInternal
	Audit mongo.Auditor
	Files mongo.FileStore

	ES     *elsearch.Client
	Search elsearch.SocioSearcher

	Auth      Auth
	Metrics   *prometheus.Registry
	StartedAt time.Time
}

// NewConfig - a function that returns a new Config struct
func NewConfig() (*App, error) {

	cfg := &App{StartedAt: time.Now(), Metrics: NewRegistry()}

	executionID := uuid.New().String()[0:5]

	cfg.Logger = logger.NewLogger(logger.Config{
		Service:         "sindicato-api",
		Version:         Version,
		Environment:     envOr("ENVIRONMENT_APP", "development"),
		LogDir:          envOr("LOG_DIR", "logs"),
		FlushInterval:   5 * time.Second,
		BatchSize:       50,
		BufferSize:      1000,
		LogLevel:        logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		EnableCaller:    true,
		EnableBody:      true,
		MaxBodySize:     2048,
		SensitiveFields: []string{"password", "senha", "token", "secret", "passwordHash"},
		ExecutionID:     executionID,
	})

	db, err := sqldb.NewInternal(sqldb.ConfigFromEnv())
	if err != nil {
		return cfg, err
	}
	cfg.DB = db

	if envBool("DB_AUTO_MIGRATE", true) {
		if err := db.AutoMigrate(context.Background()); err != nil {
			return cfg, err
		}
	}

	auth, err := newAuth()
	if err != nil {
		return cfg, err
	}
	cfg.Auth = auth

	cfg.newClientRedis()
	cfg.newClientMongo()
	cfg.newClientES()

	return cfg, nil
}

// NewRegistry cria o registro do Prometheus com os coletores do processo
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// CloseAll - a function that closes all connections
func (cfg *App) CloseAll() {
	if cfg.Redis != nil {
		_ = cfg.Redis.Close()
	}

	if cfg.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = cfg.Mongo.Close(ctx)
		cancel()
	}

	if cfg.DB != nil {
		_ = cfg.DB.Close()
	}

	if cfg.Logger != nil {
		_ = cfg.Logger.Close()
	}
}

func newAuth() (Auth, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Auth{}, errors.New("JWT_SECRET is not set")
	}

	ttl, err := time.ParseDuration(envOr("JWT_TTL", "8h"))
	if err != nil {
		return Auth{}, errors.New("invalid JWT_TTL: " + err.Error())
	}

	auth := Auth{
		JWTSecret:     []byte(secret),
		JWTTTL:        ttl,
		FrontRedirect: os.Getenv("URL_REDIRECT_FRONT"),
	}

	if id := os.Getenv("MICROSOFT_CLIENT_ID"); id != "" {
		auth.OAuth = &oauth2.Config{
			ClientID:     id,
			ClientSecret: os.Getenv("MICROSOFT_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("REDIRECT_URL"),
			Scopes:       []string{"openid", "profile", "email", "User.Read"},
			Endpoint:     microsoft.AzureADEndpoint(envOr("MICROSOFT_TENANT", "common")),
		}
	}

	return auth, nil
}

// newClientRedis conecta ao Redis; sem ele o cache fica em memória
func (cfg *App) newClientRedis() {
	cfg.Cache = redis.NewMemoryCache()
	if !envBool("REDIS_ENABLED", true) {
		cfg.Logger.Warn("Redis disabled, using in-memory cache and no rate limit")
		return
	}

	r, err := redis.NewRedisInternal(redis.ConfigFromEnv())
	if err != nil {
		cfg.Logger.Error("creating redis client, using in-memory cache", err)
		return
	}

	cfg.Redis = r
	cfg.Cache = r
}

// newClientMongo conecta ao MongoDB usado pela auditoria e pelos arquivos
func (cfg *App) newClientMongo() {
	cfg.Audit = mongo.NopAuditor{}
	cfg.Files = mongo.NopFileStore{}
	if !envBool("MONGO_ENABLED", true) {
		cfg.Logger.Warn("MongoDB disabled, audit trail and file storage are off")
		return
	}

	m, err := mongo.NewMongoInternal(mongo.ConfigFromEnv())
	if err != nil {
		cfg.Logger.Error("creating mongo client, audit trail and file storage are off", err)
		return
	}
	cfg.Mongo = m

	audit := m.AuditLog()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := audit.EnsureIndexes(ctx); err != nil {
		cfg.Logger.Error("creating audit indexes", err)
	}
	cfg.Audit = audit

	files, err := m.Files()
	if err != nil {
		cfg.Logger.Error("opening file bucket", err)
		return
	}
	cfg.Files = files
}

// newClientES conecta ao Elasticsearch da busca de sócios
func (cfg *App) newClientES() {
	cfg.Search = elsearch.NopSearcher{}
	if !envBool("ES_ENABLED", true) {
		cfg.Logger.Warn("Elasticsearch disabled, member search uses SQL")
		return
	}

	es, err := elsearch.NewClient(&elsearch.Config{
		MaxRetries:         3,
		RetryBackoff:       100 * time.Millisecond,
		Timeout:            5 * time.Second,
		InsecureSkipVerify: envBool("ELASTICSEARCH_INSECURE", false),
		IndexName:          envOr("ELASTICSEARCH_INDEX", elsearch.SociosIndex),
	})
	if err != nil {
		cfg.Logger.Error("creating elastic client, member search uses SQL", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := es.EnsureSocioIndex(ctx); err != nil {
		cfg.Logger.Error("creating socios index", err)
	}

	cfg.ES = es
	cfg.Search = es
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
