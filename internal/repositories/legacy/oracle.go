// Package legacy lê o cadastro antigo de sócios mantido no Oracle.
package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/godror/godror"
)

// DefaultView é a view do cadastro antigo
const DefaultView = "SINDICATO_SOCIOS"

// Row é uma linha com os nomes de coluna do banco de origem
type Row map[string]interface{}

// Source percorre as linhas do cadastro antigo
type Source interface {
	Each(ctx context.Context, fn func(Row) error) error
	Close() error
}

// Config holds the Oracle connection settings
type Config struct {
	User          string
	Password      string
	ConnectString string
	View          string
}

// ConfigFromEnv reads ORACLE_USER, ORACLE_PASSWORD, ORACLE_CONNECT_STRING and ORACLE_VIEW
func ConfigFromEnv() Config {
	cfg := Config{
		User:          os.Getenv("ORACLE_USER"),
		Password:      os.Getenv("ORACLE_PASSWORD"),
		ConnectString: os.Getenv("ORACLE_CONNECT_STRING"),
		View:          os.Getenv("ORACLE_VIEW"),
	}
	if cfg.View == "" {
		cfg.View = DefaultView
	}
	return cfg
}

var identifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_$#]*(\.[A-Za-z][A-Za-z0-9_$#]*)?$`)

// OracleSource lê a view configurada via godror
type OracleSource struct {
	db   *sql.DB
	view string
}

// NewOracleSource abre a conexão e valida o nome da view
func NewOracleSource(cfg Config) (*OracleSource, error) {
	if cfg.ConnectString == "" {
		return nil, fmt.Errorf("ORACLE_CONNECT_STRING is not set")
	}
	if !identifier.MatchString(cfg.View) {
		return nil, fmt.Errorf("invalid view name %q", cfg.View)
	}

	var params godror.ConnectionParams
	params.Username = cfg.User
	params.Password = godror.NewPassword(cfg.Password)
	params.ConnectString = cfg.ConnectString
	params.Timezone = time.UTC

	db := sql.OpenDB(godror.NewConnector(params))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping oracle: %w", err)
	}

	return &OracleSource{db: db, view: strings.ToUpper(cfg.View)}, nil
}

// Each chama fn para cada linha da view
func (o *OracleSource) Each(ctx context.Context, fn func(Row) error) error {
	rows, err := o.db.QueryContext(ctx, "SELECT * FROM "+o.view)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", o.view, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("failed to read columns: %w", err)
	}

	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = plain(values[i])
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Close fecha a conexão
func (o *OracleSource) Close() error {
	return o.db.Close()
}

// plain converte os tipos do driver para string, número ou data
func plain(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case godror.Number:
		// números do Oracle usam ponto decimal
		if f, err := strconv.ParseFloat(string(x), 64); err == nil {
			return f
		}
		return string(x)
	case []byte:
		return string(x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case fmt.Stringer:
		return x.String()
	}
	return v
}

// StaticSource serve linhas em memória (arquivos exportados e testes)
type StaticSource []Row

func (s StaticSource) Each(ctx context.Context, fn func(Row) error) error {
	for _, row := range s {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (StaticSource) Close() error { return nil }
