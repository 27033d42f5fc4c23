package sqldb

import (
	"context"
	"fmt"
	"time"

	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/models/types"
)

// NameValue é um ponto de gráfico
type NameValue struct {
	Name  string  `json:"name" gorm:"column:name"`
	Value float64 `json:"value" gorm:"column:value"`
}

// CountSociosByStatus retorna a quantidade de sócios por status
func (s *Internal) CountSociosByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string `gorm:"column:status"`
		Total  int64  `gorm:"column:total"`
	}
	err := s.db.WithContext(ctx).Model(&entities.Socio{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count socios by status: %w", err)
	}
	out := map[string]int64{
		entities.SocioAtivo:     0,
		entities.SocioInativo:   0,
		entities.SocioDesligado: 0,
	}
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}

// SumAtivos retorna a quantidade e o valor dos bens não baixados
func (s *Internal) SumAtivos(ctx context.Context) (count int64, total float64, err error) {
	row := s.db.WithContext(ctx).Model(&entities.Ativo{}).
		Select("COUNT(*), COALESCE(SUM(valor_aquisicao), 0)").
		Where("estado <> ?", entities.AtivoBaixado).
		Row()
	if err := row.Scan(&count, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to sum ativos: %w", err)
	}
	return count, total, nil
}

// Pendencias resume as contas pendentes
type Pendencias struct {
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
	Vencidas int64   `json:"vencidas"`
}

func (s *Internal) pendencias(ctx context.Context, model interface{}, hoje types.Date) (Pendencias, error) {
	var p Pendencias
	row := s.db.WithContext(ctx).Model(model).
		Select("COUNT(*), COALESCE(SUM(valor), 0)").
		Where("status = ?", entities.ContaPendente).
		Row()
	if err := row.Scan(&p.Count, &p.Total); err != nil {
		return p, fmt.Errorf("failed to sum pendencias: %w", err)
	}
	err := s.db.WithContext(ctx).Model(model).
		Where("status = ? AND data_vencimento < ?", entities.ContaPendente, hoje).
		Count(&p.Vencidas).Error
	if err != nil {
		return p, fmt.Errorf("failed to count vencidas: %w", err)
	}
	return p, nil
}

// PendenciasPagar resume as contas a pagar pendentes
func (s *Internal) PendenciasPagar(ctx context.Context, hoje types.Date) (Pendencias, error) {
	return s.pendencias(ctx, &entities.ContaPagar{}, hoje)
}

// PendenciasReceber resume as contas a receber pendentes
func (s *Internal) PendenciasReceber(ctx context.Context, hoje types.Date) (Pendencias, error) {
	return s.pendencias(ctx, &entities.ContaReceber{}, hoje)
}

// SociosPorEmpresa conta os sócios ativos por empresa
func (s *Internal) SociosPorEmpresa(ctx context.Context, limit int) ([]NameValue, error) {
	var out []NameValue
	db := s.db.WithContext(ctx).
		Table("socios s").
		Select("COALESCE(e.nome_fantasia, e.razao_social, 'Sem empresa') AS name, COUNT(s.id) AS value").
		Joins("LEFT JOIN empresas e ON e.id = s.empresa_id").
		Where("s.status = ?", entities.SocioAtivo).
		Group("e.id, e.nome_fantasia, e.razao_social").
		Order("value DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Scan(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to count socios por empresa: %w", err)
	}
	return out, nil
}

// DatedValue é uma data com valor, agregada por mês no serviço
type DatedValue struct {
	Data  types.Date `gorm:"column:data"`
	Valor float64    `gorm:"column:valor"`
}

func yearRange(year int) (types.Date, types.Date) {
	return types.NewDate(year, time.January, 1), types.NewDate(year+1, time.January, 1)
}

// Pagamentos retorna as contas pagas no ano
func (s *Internal) Pagamentos(ctx context.Context, year int) ([]DatedValue, error) {
	from, to := yearRange(year)
	var out []DatedValue
	err := s.db.WithContext(ctx).Model(&entities.ContaPagar{}).
		Select("data_pagamento AS data, COALESCE(valor_pago, valor) AS valor").
		Where("status = ? AND data_pagamento >= ? AND data_pagamento < ?", entities.ContaPaga, from, to).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pagamentos: %w", err)
	}
	return out, nil
}

// Recebimentos retorna as contas recebidas no ano
func (s *Internal) Recebimentos(ctx context.Context, year int) ([]DatedValue, error) {
	from, to := yearRange(year)
	var out []DatedValue
	err := s.db.WithContext(ctx).Model(&entities.ContaReceber{}).
		Select("data_recebimento AS data, COALESCE(valor_recebido, valor) AS valor").
		Where("status = ? AND data_recebimento >= ? AND data_recebimento < ?", entities.ContaRecebida, from, to).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recebimentos: %w", err)
	}
	return out, nil
}

// Filiacoes retorna as datas de filiação do ano
func (s *Internal) Filiacoes(ctx context.Context, year int) ([]DatedValue, error) {
	from, to := yearRange(year)
	var out []DatedValue
	err := s.db.WithContext(ctx).Model(&entities.Socio{}).
		Select("data_filiacao AS data, 1 AS valor").
		Where("data_filiacao >= ? AND data_filiacao < ?", from, to).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list filiacoes: %w", err)
	}
	return out, nil
}
