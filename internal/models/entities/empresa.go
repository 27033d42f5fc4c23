package entities

import (
	"errors"

	"sindicatorest/internal/models/types"

	"gorm.io/gorm"
)

// Empresa representa um empregador da base do sindicato
type Empresa struct {
	Base
	RazaoSocial       string  `json:"razaoSocial" gorm:"column:razao_social;type:varchar(200);not null" binding:"required,min=2,max=200"`
	NomeFantasia      *string `json:"nomeFantasia,omitempty" gorm:"column:nome_fantasia;type:varchar(200)"`
	CNPJ              string  `json:"cnpj" gorm:"column:cnpj;type:varchar(14);not null;uniqueIndex:idx_empresas_cnpj" binding:"required,cnpj"`
	InscricaoEstadual *string `json:"inscricaoEstadual,omitempty" gorm:"column:inscricao_estadual;type:varchar(20)"`
	Email             *string `json:"email,omitempty" gorm:"column:email;type:varchar(255)" binding:"omitempty,email"`
	Telefone          *string `json:"telefone,omitempty" gorm:"column:telefone;type:varchar(20)" binding:"omitempty,min=10,max=11,numeric"`
	Contato           *string `json:"contato,omitempty" gorm:"column:contato;type:varchar(200)"`
	Logradouro        *string `json:"logradouro,omitempty" gorm:"column:logradouro;type:varchar(200)"`
	Numero            *string `json:"numero,omitempty" gorm:"column:numero;type:varchar(20)"`
	Complemento       *string `json:"complemento,omitempty" gorm:"column:complemento;type:varchar(100)"`
	Bairro            *string `json:"bairro,omitempty" gorm:"column:bairro;type:varchar(100)"`
	Cidade            *string `json:"cidade,omitempty" gorm:"column:cidade;type:varchar(100)"`
	UF                *string `json:"uf,omitempty" gorm:"column:uf;type:varchar(2)" binding:"omitempty,uf"`
	CEP               *string `json:"cep,omitempty" gorm:"column:cep;type:varchar(8)" binding:"omitempty,len=8,numeric"`
	Ativa             *bool   `json:"ativa" gorm:"column:ativa;not null"`
}

// TableName especifica o nome da tabela no banco
func (Empresa) TableName() string {
	return "empresas"
}

// BeforeSave aplica os valores padrão
func (e *Empresa) BeforeSave(tx *gorm.DB) error {
	if e.Ativa == nil {
		e.Ativa = Bool(true)
	}
	return nil
}

// Funcao representa o cargo de um funcionário do sindicato
type Funcao struct {
	Base
	Nome        string   `json:"nome" gorm:"column:nome;type:varchar(100);not null;uniqueIndex:idx_funcoes_nome" binding:"required,min=2,max=100"`
	Descricao   *string  `json:"descricao,omitempty" gorm:"column:descricao;type:text"`
	SalarioBase *float64 `json:"salarioBase,omitempty" gorm:"column:salario_base;type:decimal(12,2)" binding:"omitempty,gte=0"`
}

// TableName especifica o nome da tabela no banco
func (Funcao) TableName() string {
	return "funcoes"
}

// Funcionario representa um funcionário do sindicato
type Funcionario struct {
	Base
	Nome         string      `json:"nome" gorm:"column:nome;type:varchar(200);not null" binding:"required,min=3,max=200"`
	CPF          string      `json:"cpf" gorm:"column:cpf;type:varchar(11);not null;uniqueIndex:idx_funcionarios_cpf" binding:"required,cpf"`
	FuncaoID     string      `json:"funcaoId" gorm:"column:funcao_id;type:varchar(36);not null;index:idx_funcionarios_funcao" binding:"required"`
	Email        *string     `json:"email,omitempty" gorm:"column:email;type:varchar(255)" binding:"omitempty,email"`
	Telefone     *string     `json:"telefone,omitempty" gorm:"column:telefone;type:varchar(20)" binding:"omitempty,min=10,max=11,numeric"`
	DataAdmissao *types.Date `json:"dataAdmissao,omitempty" gorm:"column:data_admissao"`
	DataDemissao *types.Date `json:"dataDemissao,omitempty" gorm:"column:data_demissao"`
	Salario      *float64    `json:"salario,omitempty" gorm:"column:salario;type:decimal(12,2)" binding:"omitempty,gte=0"`
	Ativo        *bool       `json:"ativo" gorm:"column:ativo;not null"`
}

// TableName especifica o nome da tabela no banco
func (Funcionario) TableName() string {
	return "funcionarios"
}

// BeforeSave aplica os valores padrão
func (f *Funcionario) BeforeSave(tx *gorm.DB) error {
	if f.Ativo == nil {
		f.Ativo = Bool(f.DataDemissao == nil)
	}
	return nil
}

// Validate verifica regras que as tags não cobrem
func (f *Funcionario) Validate() error {
	if f.DataAdmissao != nil && f.DataDemissao != nil && f.DataDemissao.Before(*f.DataAdmissao) {
		return errors.New("dataDemissao cannot be before dataAdmissao")
	}
	return nil
}

// Estados de conservação de um ativo
const (
	AtivoBaixado = "baixado"
)

// Ativo representa um bem patrimonial do sindicato
type Ativo struct {
	Base
	Descricao        string      `json:"descricao" gorm:"column:descricao;type:varchar(200);not null" binding:"required,min=2,max=200"`
	Categoria        *string     `json:"categoria,omitempty" gorm:"column:categoria;type:varchar(50)"`
	NumeroPatrimonio *string     `json:"numeroPatrimonio,omitempty" gorm:"column:numero_patrimonio;type:varchar(50)"`
	DataAquisicao    *types.Date `json:"dataAquisicao,omitempty" gorm:"column:data_aquisicao"`
	ValorAquisicao   *float64    `json:"valorAquisicao,omitempty" gorm:"column:valor_aquisicao;type:decimal(12,2)" binding:"omitempty,gte=0"`
	Localizacao      *string     `json:"localizacao,omitempty" gorm:"column:localizacao;type:varchar(100)"`
	Estado           string      `json:"estado" gorm:"column:estado;type:varchar(20);not null" binding:"omitempty,oneof=novo bom regular ruim baixado"`
	Responsavel      *string     `json:"responsavel,omitempty" gorm:"column:responsavel;type:varchar(200)"`
	Observacoes      *string     `json:"observacoes,omitempty" gorm:"column:observacoes;type:text"`
}

// TableName especifica o nome da tabela no banco
func (Ativo) TableName() string {
	return "ativos"
}

// BeforeSave aplica os valores padrão
func (a *Ativo) BeforeSave(tx *gorm.DB) error {
	if a.Estado == "" {
		a.Estado = "bom"
	}
	return nil
}

// Validate verifica regras que as tags não cobrem
func (a *Ativo) Validate() error {
	if a.DataAquisicao != nil && types.Today().Before(*a.DataAquisicao) {
		return errors.New("dataAquisicao cannot be in the future")
	}
	return nil
}
