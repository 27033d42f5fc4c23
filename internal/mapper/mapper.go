// Package mapper normalizes field names and values between the API (camelCase),
// the database columns (snake_case) and the legacy column names found in old
// spreadsheets, the previous database and the payroll views.
package mapper

import (
	"fmt"
	"sort"
	"strings"
)

// Kind define como o valor de um campo é convertido
type Kind int

const (
	String  Kind = iota // texto com espaços aparados
	Digits              // apenas dígitos (CPF, CNPJ, telefone, CEP)
	Upper               // texto em maiúsculas (UF, sexo)
	Lower               // texto em minúsculas (email, status)
	Date                // YYYY-MM-DD
	Decimal             // número, aceita "1.234,56"
	Int                 // inteiro
	Bool                // booleano, aceita "sim"/"não", "S"/"N", 1/0
	List                // lista de textos
)

// Field descreve um campo da aplicação
type Field struct {
	Name       string   // nome na API (camelCase)
	Column     string   // nome da coluna no banco
	Aliases    []string // nomes legados
	Kind       Kind
	ReadOnly   bool // não pode ser alterado pelo cliente
	Filterable bool // pode ser usado como filtro na listagem
	Keep       bool // atribuído pelo servidor; PUT mantém o valor gravado quando o campo não vem
}

// FieldMap é o conjunto de campos de uma entidade
type FieldMap struct {
	Entity string
	Fields []Field
	index  map[string]int
}

// Options controla o comportamento de Normalize
type Options struct {
	// AllowReadOnly aceita campos somente leitura (importação, seed)
	AllowReadOnly bool
	// IgnoreUnknown descarta campos desconhecidos em vez de falhar
	IgnoreUnknown bool
}

// Error agrega os problemas encontrados em um formulário
type Error struct {
	Entity  string
	Unknown []string
	Invalid map[string]string
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Invalid)+1)
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown fields: "+strings.Join(e.Unknown, ", "))
	}
	keys := make([]string, 0, len(e.Invalid))
	for k := range e.Invalid {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, k+": "+e.Invalid[k])
	}
	return fmt.Sprintf("%s: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *Error) empty() bool {
	return len(e.Unknown) == 0 && len(e.Invalid) == 0
}

// New cria um FieldMap e indexa nomes, colunas e apelidos
func New(entity string, fields ...Field) *FieldMap {
	m := &FieldMap{
		Entity: entity,
		Fields: fields,
		index:  make(map[string]int, len(fields)*3),
	}
	for i, f := range fields {
		m.index[key(f.Name)] = i
		m.index[key(f.Column)] = i
		for _, alias := range f.Aliases {
			m.index[key(alias)] = i
		}
	}
	return m
}

// key ignora caixa e separadores: "DT_NASCIMENTO", "dtNascimento" e "dt-nascimento" são iguais
func key(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "", ".", "").Replace(s)
}

// Lookup encontra o campo pelo nome da API, pela coluna ou por um nome legado
func (m *FieldMap) Lookup(name string) (Field, bool) {
	i, ok := m.index[key(name)]
	if !ok {
		return Field{}, false
	}
	return m.Fields[i], true
}

// Column retorna a coluna de um campo
func (m *FieldMap) Column(name string) (string, bool) {
	f, ok := m.Lookup(name)
	if !ok {
		return "", false
	}
	return f.Column, true
}

// Kept lista os campos atribuídos pelo servidor
func (m *FieldMap) Kept() []string {
	var out []string
	for _, f := range m.Fields {
		if f.Keep {
			out = append(out, f.Name)
		}
	}
	return out
}

// Normalize converte um formulário (nomes da API, colunas ou nomes legados)
// em um mapa com os nomes da API e valores convertidos
func (m *FieldMap) Normalize(in map[string]interface{}, opts Options) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(in))
	ferr := &Error{Entity: m.Entity, Invalid: map[string]string{}}

	for k, v := range in {
		f, ok := m.Lookup(k)
		if !ok {
			if !opts.IgnoreUnknown {
				ferr.Unknown = append(ferr.Unknown, k)
			}
			continue
		}
		if f.ReadOnly && !opts.AllowReadOnly {
			ferr.Invalid[f.Name] = "field is read-only"
			continue
		}
		converted, err := Coerce(f.Kind, v)
		if err != nil {
			ferr.Invalid[f.Name] = err.Error()
			continue
		}
		out[f.Name] = converted
	}

	sort.Strings(ferr.Unknown)
	if !ferr.empty() {
		return out, ferr
	}
	return out, nil
}

// FromColumns converte uma linha do banco (ou de uma view legada) para os nomes da API
func (m *FieldMap) FromColumns(row map[string]interface{}) map[string]interface{} {
	out, _ := m.Normalize(row, Options{AllowReadOnly: true, IgnoreUnknown: true})
	return out
}

// ToColumns converte um mapa com nomes da API para nomes de coluna
func (m *FieldMap) ToColumns(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if f, ok := m.Lookup(k); ok {
			out[f.Column] = v
		}
	}
	return out
}

// Filters converte parâmetros de consulta em filtros por coluna. Apenas campos
// marcados como Filterable são considerados; os demais parâmetros são ignorados.
func (m *FieldMap) Filters(params map[string]string) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	ferr := &Error{Entity: m.Entity, Invalid: map[string]string{}}
	for k, raw := range params {
		f, ok := m.Lookup(k)
		if !ok || !f.Filterable || strings.TrimSpace(raw) == "" {
			continue
		}
		v, err := Coerce(f.Kind, raw)
		if err != nil {
			ferr.Invalid[f.Name] = err.Error()
			continue
		}
		out[f.Column] = v
	}
	if !ferr.empty() {
		return nil, ferr
	}
	return out, nil
}

// OrderClause converte "nome,-dataFiliacao" em "nome ASC, data_filiacao DESC"
func (m *FieldMap) OrderClause(sortParam string) (string, error) {
	sortParam = strings.TrimSpace(sortParam)
	if sortParam == "" {
		return "", nil
	}
	var clauses []string
	for _, part := range strings.Split(sortParam, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dir := "ASC"
		if strings.HasPrefix(part, "-") {
			dir = "DESC"
			part = part[1:]
		}
		col, ok := m.Column(part)
		if !ok {
			return "", fmt.Errorf("cannot sort by %q", part)
		}
		clauses = append(clauses, col+" "+dir)
	}
	return strings.Join(clauses, ", "), nil
}
