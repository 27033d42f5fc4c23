// Package socios expõe o cadastro de sócios e dependentes
package socios

import (
	"context"
	"errors"
	"fmt"

	"sindicatorest/internal/config"
	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/elsearch"
	"sindicatorest/internal/repositories/mongo"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"
)

// Resource é o cadastro de sócios
func Resource() *crud.Resource[entities.Socio] {
	return &crud.Resource[entities.Socio]{
		Entity: "socios",
		Label:  "Socio",
		Fields: mapper.Socios,
		Search: []string{"nome", "cpf"},
		Order:  "nome ASC",
		Check:  checkSocio,
		Insert: func(ctx context.Context, cfg *config.App, s *entities.Socio) error {
			return cfg.DB.CreateSocio(ctx, s)
		},
		CanDelete: func(ctx context.Context, cfg *config.App, id string) error {
			has, err := sqldb.Exists[entities.Dependente](ctx, cfg.DB, "socio_id = ?", id)
			if err != nil {
				return err
			}
			if has {
				return fmt.Errorf("%w: socio has dependentes", sqldb.ErrInUse)
			}
			has, err = sqldb.Exists[entities.ContaReceber](ctx, cfg.DB, "socio_id = ?", id)
			if err != nil {
				return err
			}
			if has {
				return fmt.Errorf("%w: socio has contas a receber", sqldb.ErrInUse)
			}
			return nil
		},
		OnChange: syncIndex,
	}
}

func checkSocio(ctx context.Context, cfg *config.App, s *entities.Socio) error {
	if s.EmpresaID != nil && *s.EmpresaID == "" {
		s.EmpresaID = nil
	}
	if s.EmpresaID == nil {
		return nil
	}
	ok, err := sqldb.Exists[entities.Empresa](ctx, cfg.DB, "id = ?", *s.EmpresaID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: empresa %s", crud.ErrBadReference, *s.EmpresaID)
	}
	return nil
}

// Document monta o documento indexado de um sócio
func Document(s *entities.Socio) elsearch.SocioDocument {
	doc := elsearch.SocioDocument{
		ID:        s.ID,
		Matricula: s.Matricula,
		Nome:      s.Nome,
		CPF:       s.CPF,
		Status:    s.Status,
	}
	if s.EmpresaID != nil {
		doc.EmpresaID = *s.EmpresaID
	}
	if s.Cidade != nil {
		doc.Cidade = *s.Cidade
	}
	return doc
}

// syncIndex mantém o índice de busca alinhado com o banco
func syncIndex(ctx context.Context, cfg *config.App, action string, s *entities.Socio) {
	if cfg.Search == nil {
		return
	}
	var err error
	if action == mongo.ActionDelete {
		err = cfg.Search.DeleteSocio(ctx, s.ID)
	} else {
		err = cfg.Search.IndexSocio(ctx, Document(s))
	}
	if err != nil && !errors.Is(err, elsearch.ErrSearchDisabled) {
		cfg.Logger.Warn("failed to sync socio search index", map[string]interface{}{
			"socio_id": s.ID,
			"action":   action,
			"error":    err.Error(),
		})
	}
}

// Dependentes é o cadastro de dependentes
func Dependentes() *crud.Resource[entities.Dependente] {
	return &crud.Resource[entities.Dependente]{
		Entity: "dependentes",
		Label:  "Dependente",
		Fields: mapper.Dependentes,
		Search: []string{"nome"},
		Order:  "nome ASC",
		Check: func(ctx context.Context, cfg *config.App, d *entities.Dependente) error {
			ok, err := sqldb.Exists[entities.Socio](ctx, cfg.DB, "id = ?", d.SocioID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: socio %s", crud.ErrBadReference, d.SocioID)
			}
			return nil
		},
	}
}
