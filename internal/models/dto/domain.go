package dto

import (
	"sindicatorest/internal/models/types"
	"sindicatorest/internal/repositories/sqldb"
)

// BaixaRequest registra o pagamento ou o recebimento de uma conta
type BaixaRequest struct {
	Data           *types.Date `json:"data,omitempty" swaggertype:"string" example:"2025-03-10"`
	Valor          *float64    `json:"valor,omitempty" binding:"omitempty,gt=0" example:"150.00"`
	FormaPagamento *string     `json:"formaPagamento,omitempty" binding:"omitempty,oneof=dinheiro pix boleto transferencia cartao cheque debito" example:"pix"`
}

// DesligarRequest desliga um sócio
type DesligarRequest struct {
	Data   *types.Date `json:"data,omitempty" swaggertype:"string" example:"2025-03-10"`
	Motivo *string     `json:"motivo,omitempty" binding:"omitempty,max=500" example:"Pedido do sócio"`
}

// ResumoResponse são os totais do painel
type ResumoResponse struct {
	Socios        map[string]int64 `json:"socios"`
	TotalSocios   int64            `json:"totalSocios"`
	Dependentes   int64            `json:"dependentes"`
	Empresas      int64            `json:"empresas"`
	Funcionarios  int64            `json:"funcionarios"`
	Ativos        int64            `json:"ativos"`
	ValorAtivos   float64          `json:"valorAtivos"`
	ContasPagar   sqldb.Pendencias `json:"contasPagar"`
	ContasReceber sqldb.Pendencias `json:"contasReceber"`
	GeradoEm      string           `json:"geradoEm"`
}

// MonthlyPoint é um mês de uma série
type MonthlyPoint struct {
	Mes   int     `json:"mes" example:"1"`
	Label string  `json:"label" example:"jan"`
	Valor float64 `json:"valor" example:"1500.50"`
}

// FluxoCaixaPoint é um mês do fluxo de caixa
type FluxoCaixaPoint struct {
	Mes      int     `json:"mes" example:"1"`
	Label    string  `json:"label" example:"jan"`
	Pago     float64 `json:"pago" example:"1200"`
	Recebido float64 `json:"recebido" example:"3400"`
	Saldo    float64 `json:"saldo" example:"2200"`
}
