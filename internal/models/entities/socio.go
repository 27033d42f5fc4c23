package entities

import (
	"errors"

	"sindicatorest/internal/models/types"

	"gorm.io/gorm"
)

// Situações do sócio
const (
	SocioAtivo     = "ativo"
	SocioInativo   = "inativo"
	SocioDesligado = "desligado"
)

// Socio representa um membro do sindicato
type Socio struct {
	Base
	Matricula        int64       `json:"matricula" gorm:"column:matricula;not null;uniqueIndex:idx_socios_matricula"`
	Nome             string      `json:"nome" gorm:"column:nome;type:varchar(200);not null;index:idx_socios_nome" binding:"required,min=3,max=200"`
	CPF              string      `json:"cpf" gorm:"column:cpf;type:varchar(11);not null;uniqueIndex:idx_socios_cpf" binding:"required,cpf"`
	RG               *string     `json:"rg,omitempty" gorm:"column:rg;type:varchar(20)" binding:"omitempty,max=20"`
	DataNascimento   *types.Date `json:"dataNascimento,omitempty" gorm:"column:data_nascimento"`
	Sexo             *string     `json:"sexo,omitempty" gorm:"column:sexo;type:varchar(1)" binding:"omitempty,oneof=M F"`
	EstadoCivil      *string     `json:"estadoCivil,omitempty" gorm:"column:estado_civil;type:varchar(20)" binding:"omitempty,oneof=solteiro casado divorciado viuvo separado uniao_estavel"`
	Email            *string     `json:"email,omitempty" gorm:"column:email;type:varchar(255)" binding:"omitempty,email"`
	Telefone         *string     `json:"telefone,omitempty" gorm:"column:telefone;type:varchar(20)" binding:"omitempty,min=10,max=11,numeric"`
	Celular          *string     `json:"celular,omitempty" gorm:"column:celular;type:varchar(20)" binding:"omitempty,min=10,max=11,numeric"`
	Logradouro       *string     `json:"logradouro,omitempty" gorm:"column:logradouro;type:varchar(200)"`
	Numero           *string     `json:"numero,omitempty" gorm:"column:numero;type:varchar(20)"`
	Complemento      *string     `json:"complemento,omitempty" gorm:"column:complemento;type:varchar(100)"`
	Bairro           *string     `json:"bairro,omitempty" gorm:"column:bairro;type:varchar(100)"`
	Cidade           *string     `json:"cidade,omitempty" gorm:"column:cidade;type:varchar(100)"`
	UF               *string     `json:"uf,omitempty" gorm:"column:uf;type:varchar(2)" binding:"omitempty,uf"`
	CEP              *string     `json:"cep,omitempty" gorm:"column:cep;type:varchar(8)" binding:"omitempty,len=8,numeric"`
	EmpresaID        *string     `json:"empresaId,omitempty" gorm:"column:empresa_id;type:varchar(36);index:idx_socios_empresa"`
	Cargo            *string     `json:"cargo,omitempty" gorm:"column:cargo;type:varchar(100)"`
	DataAdmissao     *types.Date `json:"dataAdmissao,omitempty" gorm:"column:data_admissao"`
	DataFiliacao     *types.Date `json:"dataFiliacao,omitempty" gorm:"column:data_filiacao"`
	DataDesligamento *types.Date `json:"dataDesligamento,omitempty" gorm:"column:data_desligamento"`
	Status           string      `json:"status" gorm:"column:status;type:varchar(20);not null;index:idx_socios_status" binding:"omitempty,oneof=ativo inativo desligado"`
	Mensalidade      *float64    `json:"mensalidade,omitempty" gorm:"column:mensalidade;type:decimal(12,2)" binding:"omitempty,gte=0"`
	Observacoes      *string     `json:"observacoes,omitempty" gorm:"column:observacoes;type:text"`
}

// TableName especifica o nome da tabela no banco
func (Socio) TableName() string {
	return "socios"
}

// BeforeSave aplica os valores padrão
func (s *Socio) BeforeSave(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = SocioAtivo
	}
	if s.DataFiliacao == nil {
		today := types.Today()
		s.DataFiliacao = &today
	}
	if s.Status == SocioDesligado && s.DataDesligamento == nil {
		today := types.Today()
		s.DataDesligamento = &today
	}
	return nil
}

// Validate verifica regras que as tags não cobrem
func (s *Socio) Validate() error {
	if s.DataNascimento != nil && types.Today().Before(*s.DataNascimento) {
		return errors.New("dataNascimento cannot be in the future")
	}
	if s.DataFiliacao != nil && s.DataDesligamento != nil && s.DataDesligamento.Before(*s.DataFiliacao) {
		return errors.New("dataDesligamento cannot be before dataFiliacao")
	}
	if s.Status != SocioDesligado && s.DataDesligamento != nil {
		return errors.New("dataDesligamento is only allowed when status is desligado")
	}
	return nil
}

// Dependente representa um dependente vinculado a um sócio
type Dependente struct {
	Base
	SocioID        string      `json:"socioId" gorm:"column:socio_id;type:varchar(36);not null;index:idx_dependentes_socio" binding:"required"`
	Nome           string      `json:"nome" gorm:"column:nome;type:varchar(200);not null" binding:"required,min=3,max=200"`
	CPF            *string     `json:"cpf,omitempty" gorm:"column:cpf;type:varchar(11)" binding:"omitempty,cpf"`
	DataNascimento *types.Date `json:"dataNascimento,omitempty" gorm:"column:data_nascimento"`
	Parentesco     string      `json:"parentesco" gorm:"column:parentesco;type:varchar(20);not null" binding:"required,oneof=conjuge filho filha enteado pai mae outro"`
	Observacoes    *string     `json:"observacoes,omitempty" gorm:"column:observacoes;type:text"`
}

// TableName especifica o nome da tabela no banco
func (Dependente) TableName() string {
	return "dependentes"
}

// Validate verifica regras que as tags não cobrem
func (d *Dependente) Validate() error {
	if d.DataNascimento != nil && types.Today().Before(*d.DataNascimento) {
		return errors.New("dataNascimento cannot be in the future")
	}
	return nil
}
