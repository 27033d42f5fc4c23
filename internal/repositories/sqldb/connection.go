// Package sqldb is the relational repository of the union database. It runs
// on PostgreSQL, SQL Server or SQLite through gorm.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Drivers suportados
const (
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
)

// Erros devolvidos pelo repositório
var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record already exists")
	ErrInUse        = errors.New("record is referenced by other records")
	ErrInvalidState = errors.New("invalid state transition")
)

// Config holds the relational connection settings
type Config struct {
	Driver          string
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Debug           bool
}

// ConfigFromEnv reads DB_DRIVER, DATABASE_URL and DB_* variables
func ConfigFromEnv() Config {
	cfg := Config{
		Driver:          strings.ToLower(os.Getenv("DB_DRIVER")),
		DSN:             os.Getenv("DATABASE_URL"),
		Host:            os.Getenv("DB_HOST"),
		Port:            os.Getenv("DB_PORT"),
		User:            os.Getenv("DB_USER"),
		Password:        os.Getenv("DB_PASSWORD"),
		Name:            os.Getenv("DB_NAME"),
		MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 20),
		MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: 30 * time.Minute,
		Debug:           os.Getenv("DB_DEBUG") == "true",
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	return cfg
}

func envInt(name string, def int) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// ConnectionString monta o DSN quando DATABASE_URL não foi informado
func (c Config) ConnectionString() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Driver {
	case DriverPostgres:
		port := c.Port
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + port,
			Path:     "/" + c.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	case DriverSQLServer:
		port := c.Port
		if port == "" {
			port = "1433"
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     c.Host + ":" + port,
			RawQuery: url.Values{"database": {c.Name}}.Encode(),
		}
		return u.String(), nil
	case DriverSQLite:
		if c.Name == "" {
			return "sindicato.db", nil
		}
		return c.Name, nil
	}
	return "", fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
}

// Internal is the relational repository
type Internal struct {
	db     *gorm.DB
	driver string
}

// NewInternal opens the connection for the configured driver and pings it
func NewInternal(cfg Config) (*Internal, error) {
	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if cfg.Debug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		sqlDB, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	case DriverSQLServer:
		dialector = sqlserver.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == DriverSQLite {
		// sqlite em memória só existe enquanto houver uma conexão aberta
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Driver, err)
	}

	return &Internal{db: db, driver: cfg.Driver}, nil
}

// DB exposes the gorm handle
func (s *Internal) DB() *gorm.DB {
	return s.db
}

// Driver returns the configured driver name
func (s *Internal) Driver() string {
	return s.driver
}

// Ping checks the connection
func (s *Internal) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying pool
func (s *Internal) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate converte erros do gorm nos erros do repositório
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrInUse, err)
	}
	return err
}
