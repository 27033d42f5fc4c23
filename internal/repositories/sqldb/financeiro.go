package sqldb

import (
	"context"
	"fmt"

	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/models/types"
)

// Baixa descreve o pagamento ou recebimento de uma conta
type Baixa struct {
	Data           types.Date
	Valor          *float64
	FormaPagamento *string
}

// MarkContaPagarPaga baixa uma conta pendente. Contas pagas ou canceladas
// retornam ErrInvalidState.
func (s *Internal) MarkContaPagarPaga(ctx context.Context, id string, baixa Baixa) (*entities.ContaPagar, error) {
	var conta *entities.ContaPagar
	err := s.Transaction(ctx, func(tx *Internal) error {
		c, err := FindByID[entities.ContaPagar](ctx, tx, id)
		if err != nil {
			return err
		}
		if c.Status != entities.ContaPendente {
			return fmt.Errorf("%w: conta is %s", ErrInvalidState, c.Status)
		}

		c.Status = entities.ContaPaga
		data := baixa.Data
		if data.IsZero() {
			data = types.Today()
		}
		c.DataPagamento = &data
		c.ValorPago = baixa.Valor
		if baixa.FormaPagamento != nil {
			c.FormaPagamento = baixa.FormaPagamento
		}
		if err := Save(ctx, tx, c); err != nil {
			return err
		}
		conta = c
		return nil
	})
	return conta, err
}

// MarkContaReceberRecebida baixa um recebimento pendente
func (s *Internal) MarkContaReceberRecebida(ctx context.Context, id string, baixa Baixa) (*entities.ContaReceber, error) {
	var conta *entities.ContaReceber
	err := s.Transaction(ctx, func(tx *Internal) error {
		c, err := FindByID[entities.ContaReceber](ctx, tx, id)
		if err != nil {
			return err
		}
		if c.Status != entities.ContaPendente {
			return fmt.Errorf("%w: conta is %s", ErrInvalidState, c.Status)
		}

		c.Status = entities.ContaRecebida
		data := baixa.Data
		if data.IsZero() {
			data = types.Today()
		}
		c.DataRecebimento = &data
		c.ValorRecebido = baixa.Valor
		if baixa.FormaPagamento != nil {
			c.FormaPagamento = baixa.FormaPagamento
		}
		if err := Save(ctx, tx, c); err != nil {
			return err
		}
		conta = c
		return nil
	})
	return conta, err
}
