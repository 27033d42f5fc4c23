package sqldb

import (
	"context"
	"fmt"
	"sort"

	"sindicatorest/internal/models/entities"
)

// AutoMigrate cria ou atualiza as tabelas
func (s *Internal) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(entities.All()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

type constraint struct {
	model interface{}
	index string
}

// índices únicos que bases antigas podem não ter
var constraints = []constraint{
	{&entities.Socio{}, "idx_socios_cpf"},
	{&entities.Socio{}, "idx_socios_matricula"},
	{&entities.Empresa{}, "idx_empresas_cnpj"},
	{&entities.Usuario{}, "idx_usuarios_email"},
	{&entities.Perfil{}, "idx_perfis_nome"},
	{&entities.Funcao{}, "idx_funcoes_nome"},
	{&entities.Funcionario{}, "idx_funcionarios_cpf"},
}

// ApplyConstraints cria os índices únicos ausentes e retorna os criados
func (s *Internal) ApplyConstraints(ctx context.Context) ([]string, error) {
	m := s.db.WithContext(ctx).Migrator()
	var created []string
	for _, c := range constraints {
		if m.HasIndex(c.model, c.index) {
			continue
		}
		if err := m.CreateIndex(c.model, c.index); err != nil {
			return created, fmt.Errorf("failed to create %s: %w", c.index, translate(err))
		}
		created = append(created, c.index)
	}
	return created, nil
}

// ColumnInfo descreve uma coluna
type ColumnInfo struct {
	Name         string `json:"name"`
	DatabaseType string `json:"databaseType"`
	Nullable     bool   `json:"nullable"`
	PrimaryKey   bool   `json:"primaryKey"`
}

// Tables lista as tabelas do banco
func (s *Internal) Tables(ctx context.Context) ([]string, error) {
	tables, err := s.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sort.Strings(tables)
	return tables, nil
}

// HasTable indica se a tabela existe
func (s *Internal) HasTable(ctx context.Context, table string) (bool, error) {
	tables, err := s.Tables(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range tables {
		if t == table {
			return true, nil
		}
	}
	return false, nil
}

// Columns lista as colunas de uma tabela e os tipos informados pelo banco
func (s *Internal) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	ok, err := s.HasTable(ctx, table)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}

	types, err := s.db.WithContext(ctx).Migrator().ColumnTypes(table)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	out := make([]ColumnInfo, 0, len(types))
	for _, ct := range types {
		info := ColumnInfo{Name: ct.Name(), DatabaseType: ct.DatabaseTypeName()}
		if nullable, ok := ct.Nullable(); ok {
			info.Nullable = nullable
		}
		if pk, ok := ct.PrimaryKey(); ok {
			info.PrimaryKey = pk
		}
		out = append(out, info)
	}
	return out, nil
}

// CountRows conta as linhas de uma tabela existente
func (s *Internal) CountRows(ctx context.Context, table string) (int64, error) {
	ok, err := s.HasTable(ctx, table)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("table %q: %w", table, ErrNotFound)
	}
	var total int64
	if err := s.db.WithContext(ctx).Table(table).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return total, nil
}

// RowExists indica se a tabela tem uma linha com o id
func (s *Internal) RowExists(ctx context.Context, table, id string) (bool, error) {
	var total int64
	if err := s.db.WithContext(ctx).Table(table).Where("id = ?", id).Count(&total).Error; err != nil {
		return false, fmt.Errorf("failed to look up %s in %s: %w", id, table, err)
	}
	return total > 0, nil
}
