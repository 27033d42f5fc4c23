package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// SeedOrder é a ordem de gravação, das entidades sem dependências para as demais
var SeedOrder = []string{
	"perfis", "usuarios", "empresas", "funcoes", "funcionarios",
	"socios", "dependentes", "ativos", "contas_pagar", "contas_receber",
}

// SeedResult conta os registros gravados por entidade
type SeedResult map[string]int

// ref troca uma chave natural pelo id do registro referenciado. Os
// arquivos de exemplo não conhecem os ids gerados pelo banco.
type ref struct {
	field  string
	lookup func(ctx context.Context, db *sqldb.Internal, value string) (string, error)
}

func firstID[T any](ctx context.Context, db *sqldb.Internal, label, query, value string, id func(*T) string) (string, error) {
	found, err := sqldb.FindWhere[T](ctx, db, "", query, value)
	if err != nil {
		return "", err
	}
	if len(found) == 0 {
		return "", fmt.Errorf("%w: %s %q", sqldb.ErrNotFound, label, value)
	}
	return id(&found[0]), nil
}

var refs = map[string]ref{
	"empresaCnpj": {field: "empresaId", lookup: func(ctx context.Context, db *sqldb.Internal, v string) (string, error) {
		return firstID(ctx, db, "empresa", "cnpj = ?", mapper.OnlyDigits(v), func(e *entities.Empresa) string { return e.ID })
	}},
	"socioCpf": {field: "socioId", lookup: func(ctx context.Context, db *sqldb.Internal, v string) (string, error) {
		return firstID(ctx, db, "socio", "cpf = ?", mapper.OnlyDigits(v), func(s *entities.Socio) string { return s.ID })
	}},
	"perfilNome": {field: "perfilId", lookup: func(ctx context.Context, db *sqldb.Internal, v string) (string, error) {
		return firstID(ctx, db, "perfil", "nome = ?", v, func(p *entities.Perfil) string { return p.ID })
	}},
	"funcaoNome": {field: "funcaoId", lookup: func(ctx context.Context, db *sqldb.Internal, v string) (string, error) {
		return firstID(ctx, db, "funcao", "nome = ?", v, func(f *entities.Funcao) string { return f.ID })
	}},
}

// Seed grava os registros de um arquivo YAML com uma lista por entidade:
//
//	empresas:
//	  - razaoSocial: Metalúrgica Alfa Ltda
//	    cnpj: 11.222.333/0001-81
//	socios:
//	  - nome: Maria Souza
//	    cpf: 529.982.247-25
//	    empresaCnpj: "11222333000181"
//
// As chaves passam pelo mapper, então nomes de coluna e nomes legados
// também servem. Usuários aceitam "password". Tudo é gravado em uma
// transação.
func Seed(ctx context.Context, db *sqldb.Internal, r io.Reader) (SeedResult, error) {
	var doc map[string][]map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for entity := range doc {
		if _, ok := mapper.ByEntity[entity]; !ok {
			return nil, fmt.Errorf("unknown entity %q in seed file", entity)
		}
	}

	result := SeedResult{}
	err := db.Transaction(ctx, func(tx *sqldb.Internal) error {
		for _, entity := range SeedOrder {
			for i, record := range doc[entity] {
				if err := seedRecord(ctx, tx, entity, record); err != nil {
					return fmt.Errorf("%s[%d]: %w", entity, i, err)
				}
				result[entity]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func seedRecord(ctx context.Context, db *sqldb.Internal, entity string, record map[string]interface{}) error {
	values := make(map[string]interface{}, len(record))
	var password string
	for k, v := range record {
		if k == "password" {
			password = fmt.Sprint(v)
			continue
		}
		if r, ok := refs[k]; ok {
			id, err := r.lookup(ctx, db, fmt.Sprint(v))
			if err != nil {
				return err
			}
			values[r.field] = id
			continue
		}
		values[k] = v
	}

	fields := mapper.ByEntity[entity]
	switch entity {
	case "perfis":
		return seedInsert[entities.Perfil](ctx, db, fields, values)
	case "usuarios":
		u, err := crud.Decode[entities.Usuario](fields, values, mapper.Options{})
		if err != nil {
			return err
		}
		if password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u.PasswordHash = entities.String(string(hash))
		}
		return sqldb.Insert(ctx, db, u)
	case "empresas":
		return seedInsert[entities.Empresa](ctx, db, fields, values)
	case "funcoes":
		return seedInsert[entities.Funcao](ctx, db, fields, values)
	case "funcionarios":
		return seedInsert[entities.Funcionario](ctx, db, fields, values)
	case "socios":
		s, err := crud.Decode[entities.Socio](fields, values, mapper.Options{})
		if err != nil {
			return err
		}
		return db.CreateSocio(ctx, s)
	case "dependentes":
		return seedInsert[entities.Dependente](ctx, db, fields, values)
	case "ativos":
		return seedInsert[entities.Ativo](ctx, db, fields, values)
	case "contas_pagar":
		return seedInsert[entities.ContaPagar](ctx, db, fields, values)
	case "contas_receber":
		return seedInsert[entities.ContaReceber](ctx, db, fields, values)
	}
	return fmt.Errorf("unknown entity %q", entity)
}

func seedInsert[T any](ctx context.Context, db *sqldb.Internal, fields *mapper.FieldMap, values map[string]interface{}) error {
	item, err := crud.Decode[T](fields, values, mapper.Options{})
	if err != nil {
		return err
	}
	return sqldb.Insert(ctx, db, item)
}
