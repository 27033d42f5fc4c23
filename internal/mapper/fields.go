package mapper

// campos de endereço compartilhados por sócios e empresas
func endereco() []Field {
	return []Field{
		{Name: "logradouro", Column: "logradouro", Aliases: []string{"endereco", "ENDERECO", "rua", "end_logradouro"}},
		{Name: "numero", Column: "numero", Aliases: []string{"num", "nro", "end_numero"}},
		{Name: "complemento", Column: "complemento", Aliases: []string{"compl", "end_complemento"}},
		{Name: "bairro", Column: "bairro", Aliases: []string{"end_bairro"}},
		{Name: "cidade", Column: "cidade", Aliases: []string{"municipio", "end_cidade"}, Filterable: true},
		{Name: "uf", Column: "uf", Aliases: []string{"estado", "end_uf", "sigla_uf"}, Kind: Upper, Filterable: true},
		{Name: "cep", Column: "cep", Aliases: []string{"end_cep", "codigo_postal"}, Kind: Digits},
	}
}

func base() []Field {
	return []Field{
		{Name: "id", Column: "id", ReadOnly: true},
		{Name: "createdAt", Column: "created_at", Aliases: []string{"dt_cadastro", "data_cadastro"}, Kind: Date, ReadOnly: true},
		{Name: "updatedAt", Column: "updated_at", Aliases: []string{"dt_alteracao"}, Kind: Date, ReadOnly: true},
	}
}

func fields(groups ...[]Field) []Field {
	var out []Field
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Socios mapeia o cadastro de sócios
var Socios = New("socio", fields(base(), []Field{
	{Name: "matricula", Column: "matricula", Aliases: []string{"chapa", "num_matricula", "nr_matricula", "MATRICULA"}, Kind: Int, Filterable: true, Keep: true},
	{Name: "nome", Column: "nome", Aliases: []string{"nome_socio", "nome_completo", "NOME"}},
	{Name: "cpf", Column: "cpf", Aliases: []string{"cpf_socio", "nr_cpf", "CPF"}, Kind: Digits, Filterable: true},
	{Name: "rg", Column: "rg", Aliases: []string{"nr_rg", "identidade"}},
	{Name: "dataNascimento", Column: "data_nascimento", Aliases: []string{"nascimento", "dt_nasc", "data_nasc", "dt_nascimento"}, Kind: Date},
	{Name: "sexo", Column: "sexo", Aliases: []string{"genero"}, Kind: Upper, Filterable: true},
	{Name: "estadoCivil", Column: "estado_civil", Aliases: []string{"estado_civ", "est_civil"}, Kind: Lower},
	{Name: "email", Column: "email", Aliases: []string{"e_mail", "email_socio"}, Kind: Lower},
	{Name: "telefone", Column: "telefone", Aliases: []string{"fone", "tel", "telefone_fixo"}, Kind: Digits},
	{Name: "celular", Column: "celular", Aliases: []string{"cel", "whatsapp", "telefone_celular"}, Kind: Digits},
	{Name: "empresaId", Column: "empresa_id", Aliases: []string{"empresa", "cod_empresa", "id_empresa"}, Filterable: true},
	{Name: "cargo", Column: "cargo", Aliases: []string{"funcao", "cargo_socio", "ocupacao"}},
	{Name: "dataAdmissao", Column: "data_admissao", Aliases: []string{"admissao", "dt_admissao"}, Kind: Date},
	{Name: "dataFiliacao", Column: "data_filiacao", Aliases: []string{"dt_filiacao", "data_associacao", "filiacao"}, Kind: Date, Keep: true},
	{Name: "dataDesligamento", Column: "data_desligamento", Aliases: []string{"dt_desligamento", "desligamento"}, Kind: Date, Keep: true},
	{Name: "status", Column: "status", Aliases: []string{"situacao", "situacao_socio"}, Kind: Lower, Filterable: true, Keep: true},
	{Name: "mensalidade", Column: "mensalidade", Aliases: []string{"valor_mensalidade", "contribuicao", "vl_mensalidade"}, Kind: Decimal},
	{Name: "observacoes", Column: "observacoes", Aliases: []string{"obs", "observacao"}},
}, endereco())...)

// Dependentes mapeia os dependentes de sócios
var Dependentes = New("dependente", fields(base(), []Field{
	{Name: "socioId", Column: "socio_id", Aliases: []string{"socio", "id_socio", "cod_socio"}, Filterable: true},
	{Name: "nome", Column: "nome", Aliases: []string{"nome_dependente"}},
	{Name: "cpf", Column: "cpf", Aliases: []string{"cpf_dependente", "nr_cpf"}, Kind: Digits},
	{Name: "dataNascimento", Column: "data_nascimento", Aliases: []string{"nascimento", "dt_nasc", "dt_nascimento"}, Kind: Date},
	{Name: "parentesco", Column: "parentesco", Aliases: []string{"grau_parentesco", "tipo_dependente"}, Kind: Lower, Filterable: true},
	{Name: "observacoes", Column: "observacoes", Aliases: []string{"obs"}},
})...)

// Empresas mapeia as empresas vinculadas
var Empresas = New("empresa", fields(base(), []Field{
	{Name: "razaoSocial", Column: "razao_social", Aliases: []string{"razao", "nome_empresa", "RAZAO_SOCIAL"}},
	{Name: "nomeFantasia", Column: "nome_fantasia", Aliases: []string{"fantasia", "NOME_FANTASIA"}},
	{Name: "cnpj", Column: "cnpj", Aliases: []string{"nr_cnpj", "cnpj_empresa", "CNPJ"}, Kind: Digits, Filterable: true},
	{Name: "inscricaoEstadual", Column: "inscricao_estadual", Aliases: []string{"ie", "insc_estadual"}},
	{Name: "email", Column: "email", Aliases: []string{"e_mail"}, Kind: Lower},
	{Name: "telefone", Column: "telefone", Aliases: []string{"fone", "tel"}, Kind: Digits},
	{Name: "contato", Column: "contato", Aliases: []string{"responsavel", "nome_contato"}},
	{Name: "ativa", Column: "ativa", Aliases: []string{"ativo", "fl_ativa"}, Kind: Bool, Filterable: true},
}, endereco())...)

// Funcoes mapeia as funções dos funcionários do sindicato
var Funcoes = New("funcao", fields(base(), []Field{
	{Name: "nome", Column: "nome", Aliases: []string{"nome_funcao", "descricao_funcao"}},
	{Name: "descricao", Column: "descricao", Aliases: []string{"desc", "atribuicoes"}},
	{Name: "salarioBase", Column: "salario_base", Aliases: []string{"salario", "vl_salario_base"}, Kind: Decimal},
})...)

// Funcionarios mapeia os funcionários do sindicato
var Funcionarios = New("funcionario", fields(base(), []Field{
	{Name: "nome", Column: "nome", Aliases: []string{"nome_funcionario"}},
	{Name: "cpf", Column: "cpf", Aliases: []string{"nr_cpf"}, Kind: Digits, Filterable: true},
	{Name: "funcaoId", Column: "funcao_id", Aliases: []string{"funcao", "id_funcao", "cod_funcao"}, Filterable: true},
	{Name: "email", Column: "email", Aliases: []string{"e_mail"}, Kind: Lower},
	{Name: "telefone", Column: "telefone", Aliases: []string{"fone", "tel", "celular"}, Kind: Digits},
	{Name: "dataAdmissao", Column: "data_admissao", Aliases: []string{"admissao", "dt_admissao"}, Kind: Date},
	{Name: "dataDemissao", Column: "data_demissao", Aliases: []string{"demissao", "dt_demissao"}, Kind: Date},
	{Name: "salario", Column: "salario", Aliases: []string{"vl_salario", "remuneracao"}, Kind: Decimal},
	{Name: "ativo", Column: "ativo", Aliases: []string{"fl_ativo"}, Kind: Bool, Filterable: true},
})...)

// Ativos mapeia o patrimônio do sindicato
var Ativos = New("ativo", fields(base(), []Field{
	{Name: "descricao", Column: "descricao", Aliases: []string{"nome", "nome_ativo", "item"}},
	{Name: "categoria", Column: "categoria", Aliases: []string{"tipo", "tipo_ativo"}, Kind: Lower, Filterable: true},
	{Name: "numeroPatrimonio", Column: "numero_patrimonio", Aliases: []string{"patrimonio", "plaqueta", "nr_patrimonio"}},
	{Name: "dataAquisicao", Column: "data_aquisicao", Aliases: []string{"aquisicao", "dt_aquisicao", "data_compra"}, Kind: Date},
	{Name: "valorAquisicao", Column: "valor_aquisicao", Aliases: []string{"valor", "vl_aquisicao", "valor_compra"}, Kind: Decimal},
	{Name: "localizacao", Column: "localizacao", Aliases: []string{"local", "setor"}},
	{Name: "estado", Column: "estado", Aliases: []string{"estado_conservacao", "conservacao"}, Kind: Lower, Filterable: true},
	{Name: "responsavel", Column: "responsavel", Aliases: []string{"resp"}},
	{Name: "observacoes", Column: "observacoes", Aliases: []string{"obs"}},
})...)

// campos comuns às contas a pagar e a receber
func conta() []Field {
	return []Field{
		{Name: "descricao", Column: "descricao", Aliases: []string{"historico", "desc"}},
		{Name: "categoria", Column: "categoria", Aliases: []string{"tipo", "plano_conta"}, Kind: Lower, Filterable: true},
		{Name: "valor", Column: "valor", Aliases: []string{"vl_conta", "valor_conta", "vl_documento"}, Kind: Decimal},
		{Name: "dataVencimento", Column: "data_vencimento", Aliases: []string{"vencimento", "dt_vencimento", "dt_venc"}, Kind: Date},
		{Name: "formaPagamento", Column: "forma_pagamento", Aliases: []string{"forma_pgto", "meio_pagamento"}, Kind: Lower},
		{Name: "status", Column: "status", Aliases: []string{"situacao_conta"}, Kind: Lower, Filterable: true, Keep: true},
		{Name: "documento", Column: "documento", Aliases: []string{"nr_documento", "nota_fiscal", "nf"}},
		{Name: "observacoes", Column: "observacoes", Aliases: []string{"obs"}},
		{Name: "situacao", Column: "situacao", ReadOnly: true},
	}
}

// ContasPagar mapeia as contas a pagar
var ContasPagar = New("conta_pagar", fields(base(), conta(), []Field{
	{Name: "fornecedor", Column: "fornecedor", Aliases: []string{"credor", "favorecido"}, Filterable: true},
	{Name: "dataPagamento", Column: "data_pagamento", Aliases: []string{"pagamento", "dt_pagamento", "dt_pgto"}, Kind: Date, Keep: true},
	{Name: "valorPago", Column: "valor_pago", Aliases: []string{"vl_pago"}, Kind: Decimal, Keep: true},
})...)

// ContasReceber mapeia as contas a receber
var ContasReceber = New("conta_receber", fields(base(), conta(), []Field{
	{Name: "socioId", Column: "socio_id", Aliases: []string{"socio", "id_socio"}, Filterable: true},
	{Name: "empresaId", Column: "empresa_id", Aliases: []string{"empresa", "id_empresa"}, Filterable: true},
	{Name: "pagador", Column: "pagador", Aliases: []string{"devedor", "sacado"}},
	{Name: "dataRecebimento", Column: "data_recebimento", Aliases: []string{"recebimento", "dt_recebimento"}, Kind: Date, Keep: true},
	{Name: "valorRecebido", Column: "valor_recebido", Aliases: []string{"vl_recebido"}, Kind: Decimal, Keep: true},
})...)

// Perfis mapeia os perfis de acesso
var Perfis = New("perfil", fields(base(), []Field{
	{Name: "nome", Column: "nome", Aliases: []string{"nome_perfil"}},
	{Name: "descricao", Column: "descricao", Aliases: []string{"desc"}},
	{Name: "role", Column: "role", Aliases: []string{"papel", "funcao_perfil"}, Filterable: true},
	{Name: "permissoes", Column: "permissoes", Aliases: []string{"permissions", "acessos"}, Kind: List},
})...)

// Usuarios mapeia os usuários do sistema. Senha não passa pelo mapper.
var Usuarios = New("usuario", fields(base(), []Field{
	{Name: "nome", Column: "nome", Aliases: []string{"name", "nome_usuario"}},
	{Name: "email", Column: "email", Aliases: []string{"login", "e_mail"}, Kind: Lower, Filterable: true},
	{Name: "perfilId", Column: "perfil_id", Aliases: []string{"perfil", "id_perfil"}, Filterable: true},
	{Name: "ativo", Column: "ativo", Aliases: []string{"is_active", "fl_ativo"}, Kind: Bool, Filterable: true},
	{Name: "lastLoginAt", Column: "last_login_at", Aliases: []string{"ultimo_acesso"}, ReadOnly: true},
})...)

// ByEntity permite localizar o mapa pelo nome do recurso (usado pelo CLI e pelo seed)
var ByEntity = map[string]*FieldMap{
	"socios":         Socios,
	"dependentes":    Dependentes,
	"empresas":       Empresas,
	"funcoes":        Funcoes,
	"funcionarios":   Funcionarios,
	"ativos":         Ativos,
	"contas_pagar":   ContasPagar,
	"contas_receber": ContasReceber,
	"perfis":         Perfis,
	"usuarios":       Usuarios,
}
