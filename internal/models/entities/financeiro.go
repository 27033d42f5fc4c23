package entities

import (
	"errors"

	"sindicatorest/internal/models/types"

	"gorm.io/gorm"
)

// Status das contas
const (
	ContaPendente  = "pendente"
	ContaPaga      = "pago"
	ContaRecebida  = "recebido"
	ContaCancelada = "cancelado"
	ContaVencida   = "vencida"
)

// Situacao calcula a situação exibida de uma conta: "vencida" quando
// pendente com vencimento anterior a hoje, caso contrário o próprio status
func Situacao(status string, vencimento types.Date, hoje types.Date) string {
	if status == ContaPendente && !vencimento.IsZero() && vencimento.Before(hoje) {
		return ContaVencida
	}
	return status
}

// ContaPagar representa uma despesa do sindicato
type ContaPagar struct {
	Base
	Descricao      string      `json:"descricao" gorm:"column:descricao;type:varchar(200);not null" binding:"required,min=2,max=200"`
	Fornecedor     *string     `json:"fornecedor,omitempty" gorm:"column:fornecedor;type:varchar(200)"`
	Categoria      *string     `json:"categoria,omitempty" gorm:"column:categoria;type:varchar(50)"`
	Valor          float64     `json:"valor" gorm:"column:valor;type:decimal(12,2);not null" binding:"gt=0"`
	DataVencimento types.Date  `json:"dataVencimento" gorm:"column:data_vencimento;not null;index:idx_contas_pagar_vencimento"`
	DataPagamento  *types.Date `json:"dataPagamento,omitempty" gorm:"column:data_pagamento"`
	ValorPago      *float64    `json:"valorPago,omitempty" gorm:"column:valor_pago;type:decimal(12,2)" binding:"omitempty,gte=0"`
	FormaPagamento *string     `json:"formaPagamento,omitempty" gorm:"column:forma_pagamento;type:varchar(20)" binding:"omitempty,oneof=dinheiro pix boleto transferencia cartao cheque debito"`
	Status         string      `json:"status" gorm:"column:status;type:varchar(20);not null;index:idx_contas_pagar_status" binding:"omitempty,oneof=pendente pago cancelado"`
	Documento      *string     `json:"documento,omitempty" gorm:"column:documento;type:varchar(50)"`
	Observacoes    *string     `json:"observacoes,omitempty" gorm:"column:observacoes;type:text"`
	Situacao       string      `json:"situacao" gorm:"-"`
}

// TableName especifica o nome da tabela no banco
func (ContaPagar) TableName() string {
	return "contas_pagar"
}

// BeforeSave aplica os valores padrão
func (c *ContaPagar) BeforeSave(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = ContaPendente
	}
	if c.Status == ContaPaga {
		if c.DataPagamento == nil {
			today := types.Today()
			c.DataPagamento = &today
		}
		if c.ValorPago == nil {
			c.ValorPago = Float(c.Valor)
		}
	}
	return nil
}

// AfterSave recalcula a situação
func (c *ContaPagar) AfterSave(tx *gorm.DB) error {
	c.Situacao = Situacao(c.Status, c.DataVencimento, types.Today())
	return nil
}

// AfterFind recalcula a situação
func (c *ContaPagar) AfterFind(tx *gorm.DB) error {
	c.Situacao = Situacao(c.Status, c.DataVencimento, types.Today())
	return nil
}

// Validate verifica regras que as tags não cobrem
func (c *ContaPagar) Validate() error {
	if c.DataVencimento.IsZero() {
		return errors.New("dataVencimento is required")
	}
	if c.Status != ContaPaga && (c.DataPagamento != nil || c.ValorPago != nil) {
		return errors.New("dataPagamento and valorPago are only allowed when status is pago")
	}
	return nil
}

// ContaReceber representa uma receita do sindicato (mensalidades, contribuições)
type ContaReceber struct {
	Base
	Descricao       string      `json:"descricao" gorm:"column:descricao;type:varchar(200);not null" binding:"required,min=2,max=200"`
	SocioID         *string     `json:"socioId,omitempty" gorm:"column:socio_id;type:varchar(36);index:idx_contas_receber_socio"`
	EmpresaID       *string     `json:"empresaId,omitempty" gorm:"column:empresa_id;type:varchar(36);index:idx_contas_receber_empresa"`
	Pagador         *string     `json:"pagador,omitempty" gorm:"column:pagador;type:varchar(200)"`
	Categoria       *string     `json:"categoria,omitempty" gorm:"column:categoria;type:varchar(50)"`
	Valor           float64     `json:"valor" gorm:"column:valor;type:decimal(12,2);not null" binding:"gt=0"`
	DataVencimento  types.Date  `json:"dataVencimento" gorm:"column:data_vencimento;not null;index:idx_contas_receber_vencimento"`
	DataRecebimento *types.Date `json:"dataRecebimento,omitempty" gorm:"column:data_recebimento"`
	ValorRecebido   *float64    `json:"valorRecebido,omitempty" gorm:"column:valor_recebido;type:decimal(12,2)" binding:"omitempty,gte=0"`
	FormaPagamento  *string     `json:"formaPagamento,omitempty" gorm:"column:forma_pagamento;type:varchar(20)" binding:"omitempty,oneof=dinheiro pix boleto transferencia cartao cheque debito"`
	Status          string      `json:"status" gorm:"column:status;type:varchar(20);not null;index:idx_contas_receber_status" binding:"omitempty,oneof=pendente recebido cancelado"`
	Documento       *string     `json:"documento,omitempty" gorm:"column:documento;type:varchar(50)"`
	Observacoes     *string     `json:"observacoes,omitempty" gorm:"column:observacoes;type:text"`
	Situacao        string      `json:"situacao" gorm:"-"`
}

// TableName especifica o nome da tabela no banco
func (ContaReceber) TableName() string {
	return "contas_receber"
}

// BeforeSave aplica os valores padrão
func (c *ContaReceber) BeforeSave(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = ContaPendente
	}
	if c.Status == ContaRecebida {
		if c.DataRecebimento == nil {
			today := types.Today()
			c.DataRecebimento = &today
		}
		if c.ValorRecebido == nil {
			c.ValorRecebido = Float(c.Valor)
		}
	}
	return nil
}

// AfterSave recalcula a situação
func (c *ContaReceber) AfterSave(tx *gorm.DB) error {
	c.Situacao = Situacao(c.Status, c.DataVencimento, types.Today())
	return nil
}

// AfterFind recalcula a situação
func (c *ContaReceber) AfterFind(tx *gorm.DB) error {
	c.Situacao = Situacao(c.Status, c.DataVencimento, types.Today())
	return nil
}

// Validate verifica regras que as tags não cobrem
func (c *ContaReceber) Validate() error {
	if c.DataVencimento.IsZero() {
		return errors.New("dataVencimento is required")
	}
	if c.Status != ContaRecebida && (c.DataRecebimento != nil || c.ValorRecebido != nil) {
		return errors.New("dataRecebimento and valorRecebido are only allowed when status is recebido")
	}
	return nil
}
