package sqldb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"sindicatorest/internal/models/entities"
)

// GetSocioByCPF busca um sócio pelo CPF (apenas dígitos)
func (s *Internal) GetSocioByCPF(ctx context.Context, cpf string) (*entities.Socio, error) {
	var socio entities.Socio
	if err := s.db.WithContext(ctx).Where("cpf = ?", cpf).First(&socio).Error; err != nil {
		return nil, translate(err)
	}
	return &socio, nil
}

// MaxMatricula retorna a maior matrícula cadastrada (0 quando vazio)
func (s *Internal) MaxMatricula(ctx context.Context) (int64, error) {
	var max int64
	row := s.db.WithContext(ctx).Model(&entities.Socio{}).Select("COALESCE(MAX(matricula), 0)").Row()
	if err := row.Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to read max matricula: %w", err)
	}
	return max, nil
}

// NextMatricula retorna a próxima matrícula livre
func (s *Internal) NextMatricula(ctx context.Context) (int64, error) {
	max, err := s.MaxMatricula(ctx)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// CreateSocio grava um sócio. Sem matrícula informada, usa NextMatricula e
// tenta novamente se outra requisição ocupar o mesmo número.
func (s *Internal) CreateSocio(ctx context.Context, socio *entities.Socio) error {
	auto := socio.Matricula == 0
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		if auto {
			next, nerr := s.NextMatricula(ctx)
			if nerr != nil {
				return nerr
			}
			socio.Matricula = next
		}
		err = Insert(ctx, s, socio)
		if err == nil || !auto || !errors.Is(err, ErrConflict) {
			return err
		}
		if taken, _ := Exists[entities.Socio](ctx, s, "cpf = ?", socio.CPF); taken {
			return err
		}
		socio.ID = ""
	}
	return err
}

// ListSociosByEmpresa lista os sócios vinculados a uma empresa
func (s *Internal) ListSociosByEmpresa(ctx context.Context, empresaID string, q Query) ([]entities.Socio, int64, error) {
	if q.Filters == nil {
		q.Filters = map[string]interface{}{}
	}
	q.Filters["empresa_id"] = empresaID
	return FindPage[entities.Socio](ctx, s, q)
}

// SearchSociosLike busca por nome, CPF ou matrícula usando LIKE
func (s *Internal) SearchSociosLike(ctx context.Context, term string, limit int) ([]entities.Socio, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []entities.Socio{}, nil
	}
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	db := s.db.WithContext(ctx).Model(&entities.Socio{})
	conds := []string{"LOWER(nome) LIKE ?"}
	args := []interface{}{"%" + strings.ToLower(term) + "%"}

	digits := onlyDigits(term)
	if digits != "" {
		conds = append(conds, "cpf LIKE ?")
		args = append(args, "%"+digits+"%")
	}
	if n, err := strconv.ParseInt(term, 10, 64); err == nil {
		conds = append(conds, "matricula = ?")
		args = append(args, n)
	}

	var socios []entities.Socio
	err := db.Where(strings.Join(conds, " OR "), args...).
		Order("nome ASC").
		Limit(limit).
		Find(&socios).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search socios: %w", err)
	}
	return socios, nil
}

// GetSociosByIDs carrega sócios preservando a ordem dos ids
func (s *Internal) GetSociosByIDs(ctx context.Context, ids []string) ([]entities.Socio, error) {
	if len(ids) == 0 {
		return []entities.Socio{}, nil
	}
	var found []entities.Socio
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to load socios: %w", err)
	}
	byID := make(map[string]entities.Socio, len(found))
	for _, so := range found {
		byID[so.ID] = so
	}
	out := make([]entities.Socio, 0, len(ids))
	for _, id := range ids {
		if so, ok := byID[id]; ok {
			out = append(out, so)
		}
	}
	return out, nil
}

// UpsertSocioByCPF atualiza o sócio com o mesmo CPF ou cria um novo.
// Matrícula e data de cadastro de um sócio existente são preservadas.
func (s *Internal) UpsertSocioByCPF(ctx context.Context, socio *entities.Socio) (created bool, err error) {
	existing, err := s.GetSocioByCPF(ctx, socio.CPF)
	switch {
	case errors.Is(err, ErrNotFound):
		socio.ID = ""
		return true, s.CreateSocio(ctx, socio)
	case err != nil:
		return false, err
	}

	socio.ID = existing.ID
	socio.CreatedAt = existing.CreatedAt
	if socio.Matricula == 0 {
		socio.Matricula = existing.Matricula
	}
	return false, Save(ctx, s, socio)
}

// SocioNome é usado pela verificação de nomes
type SocioNome struct {
	ID   string `gorm:"column:id"`
	Nome string `gorm:"column:nome"`
}

// ListSocioNames retorna id e nome de todos os sócios
func (s *Internal) ListSocioNames(ctx context.Context) ([]SocioNome, error) {
	var out []SocioNome
	err := s.db.WithContext(ctx).Model(&entities.Socio{}).Select("id, nome").Order("nome").Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list socio names: %w", err)
	}
	return out, nil
}

// RenameSocio altera apenas o nome de um sócio
func (s *Internal) RenameSocio(ctx context.Context, id, nome string) error {
	res := s.db.WithContext(ctx).Table(entities.Socio{}.TableName()).
		Where("id = ?", id).
		Updates(map[string]interface{}{"nome": nome, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to rename socio: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
