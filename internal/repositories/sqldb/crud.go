package sqldb

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// MaxPageSize limita o tamanho de uma página
const MaxPageSize = 100

// Query descreve uma listagem paginada
type Query struct {
	Page          int
	PageSize      int
	Search        string
	SearchColumns []string
	Filters       map[string]interface{}
	Order         string
}

// Normalize aplica os limites de paginação
func (q *Query) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Order == "" {
		q.Order = "created_at DESC"
	}
}

// Offset returns the first row of the page
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

func (q Query) apply(db *gorm.DB) *gorm.DB {
	if len(q.Filters) > 0 {
		db = db.Where(q.Filters)
	}
	if s := strings.TrimSpace(q.Search); s != "" && len(q.SearchColumns) > 0 {
		like := "%" + strings.ToLower(s) + "%"
		clauses := make([]string, 0, len(q.SearchColumns))
		args := make([]interface{}, 0, len(q.SearchColumns))
		for _, col := range q.SearchColumns {
			clauses = append(clauses, "LOWER("+col+") LIKE ?")
			args = append(args, like)
		}
		db = db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
	return db
}

// FindPage lista registros de T com filtros, busca textual e paginação
func FindPage[T any](ctx context.Context, s *Internal, q Query) ([]T, int64, error) {
	q.Normalize()

	var total int64
	if err := q.apply(s.db.WithContext(ctx).Model(new(T))).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count: %w", translate(err))
	}

	items := make([]T, 0, q.PageSize)
	err := q.apply(s.db.WithContext(ctx)).
		Order(q.Order).
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list: %w", translate(err))
	}

	return items, total, nil
}

// FindByID busca um registro pelo id
func FindByID[T any](ctx context.Context, s *Internal, id string) (*T, error) {
	var item T
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// FindWhere lista todos os registros que atendem à condição
func FindWhere[T any](ctx context.Context, s *Internal, order string, query interface{}, args ...interface{}) ([]T, error) {
	var items []T
	db := s.db.WithContext(ctx).Where(query, args...)
	if order != "" {
		db = db.Order(order)
	}
	if err := db.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list: %w", translate(err))
	}
	return items, nil
}

// Insert grava um novo registro
func Insert[T any](ctx context.Context, s *Internal, item *T) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to insert: %w", translate(err))
	}
	return nil
}

// Save atualiza todas as colunas de um registro existente
func Save[T any](ctx context.Context, s *Internal, item *T) error {
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save: %w", translate(err))
	}
	return nil
}

// Remove apaga um registro pelo id
func Remove[T any](ctx context.Context, s *Internal, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("failed to delete: %w", translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountWhere conta os registros de T que atendem à condição
func CountWhere[T any](ctx context.Context, s *Internal, query interface{}, args ...interface{}) (int64, error) {
	var total int64
	db := s.db.WithContext(ctx).Model(new(T))
	if query != nil {
		db = db.Where(query, args...)
	}
	if err := db.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count: %w", translate(err))
	}
	return total, nil
}

// Exists indica se há algum registro de T que atende à condição
func Exists[T any](ctx context.Context, s *Internal, query interface{}, args ...interface{}) (bool, error) {
	total, err := CountWhere[T](ctx, s, query, args...)
	return total > 0, err
}

// Transaction executa fn em uma transação
func (s *Internal) Transaction(ctx context.Context, fn func(tx *Internal) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Internal{db: tx, driver: s.driver})
	})
}
