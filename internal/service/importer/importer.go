// Package importer carrega dados externos no banco: o cadastro antigo de
// sócios e os arquivos YAML de exemplo.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/entities"
	"sindicatorest/internal/repositories/elsearch"
	"sindicatorest/internal/repositories/legacy"
	"sindicatorest/internal/repositories/sqldb"
	"sindicatorest/internal/service/crud"
	"sindicatorest/internal/service/socios"
	"sindicatorest/pkg/logger"
)

// RowError descreve uma linha que não pôde ser importada
type RowError struct {
	Row   int    `json:"row"`
	CPF   string `json:"cpf,omitempty"`
	Error string `json:"error"`
}

// Report resume uma importação
type Report struct {
	Rows     int        `json:"rows"`
	Created  int        `json:"created"`
	Updated  int        `json:"updated"`
	Empresas int        `json:"empresas"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

// Importer grava o cadastro antigo de sócios. Empresas são localizadas ou
// criadas pelo CNPJ e sócios são atualizados pelo CPF.
type Importer struct {
	DB     *sqldb.Internal
	Search elsearch.SocioSearcher
	Logger logger.Logger
	// DryRun valida as linhas sem gravar
	DryRun bool
}

// campos da empresa lidos da linha do sócio
var empresaFields = map[string]bool{"razaoSocial": true, "nomeFantasia": true, "cnpj": true}

var legacyStatus = map[string]string{
	"a": entities.SocioAtivo,
	"i": entities.SocioInativo,
	"d": entities.SocioDesligado,
}

// Run percorre a origem. Erros de linha entram no relatório e não
// interrompem a importação.
func (im *Importer) Run(ctx context.Context, src legacy.Source) (*Report, error) {
	if im.Logger == nil {
		im.Logger = logger.NewNop()
	}
	report := &Report{}
	empresas := map[string]string{}

	err := src.Each(ctx, func(row legacy.Row) error {
		report.Rows++
		cpf, err := im.importRow(ctx, row, empresas, report)
		if err != nil {
			report.Errors = append(report.Errors, RowError{Row: report.Rows, CPF: cpf, Error: err.Error()})
			im.Logger.Warn("legacy row rejected", map[string]interface{}{
				"row":   report.Rows,
				"error": err.Error(),
			})
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to read legacy source: %w", err)
	}

	im.Logger.Info("legacy import finished", map[string]interface{}{
		"rows":     report.Rows,
		"created":  report.Created,
		"updated":  report.Updated,
		"empresas": report.Empresas,
		"skipped":  report.Skipped,
		"errors":   len(report.Errors),
		"dry_run":  im.DryRun,
	})
	return report, nil
}

func (im *Importer) importRow(ctx context.Context, row legacy.Row, empresas map[string]string, report *Report) (string, error) {
	values, err := mapper.Socios.Normalize(row, mapper.Options{AllowReadOnly: true, IgnoreUnknown: true})
	if err != nil {
		return "", err
	}
	cpf, _ := values["cpf"].(string)
	if cpf == "" {
		report.Skipped++
		return "", nil
	}
	delete(values, "id")
	delete(values, "empresaId")
	fixLegacyValues(values)

	socio := &entities.Socio{}
	if err := crud.Apply(mapper.Socios, socio, values); err != nil {
		return cpf, err
	}
	if err := crud.Validate(socio); err != nil {
		return cpf, err
	}

	empresaID, err := im.empresa(ctx, row, empresas, report)
	if err != nil {
		return cpf, err
	}
	if empresaID != "" {
		socio.EmpresaID = &empresaID
	}

	if im.DryRun {
		return cpf, nil
	}

	created, err := im.DB.UpsertSocioByCPF(ctx, socio)
	if err != nil {
		return cpf, err
	}
	if created {
		report.Created++
	} else {
		report.Updated++
	}

	if im.Search != nil {
		if err := im.Search.IndexSocio(ctx, socios.Document(socio)); err != nil && !errors.Is(err, elsearch.ErrSearchDisabled) {
			im.Logger.Warn("failed to index imported socio", map[string]interface{}{"socio_id": socio.ID, "error": err.Error()})
		}
	}
	return cpf, nil
}

// empresa retorna o id da empresa da linha, criando-a quando o CNPJ é novo
func (im *Importer) empresa(ctx context.Context, row legacy.Row, known map[string]string, report *Report) (string, error) {
	subset := map[string]interface{}{}
	for k, v := range row {
		if f, ok := mapper.Empresas.Lookup(k); ok && empresaFields[f.Name] {
			subset[k] = v
		}
	}
	values, err := mapper.Empresas.Normalize(subset, mapper.Options{})
	if err != nil {
		return "", err
	}
	cnpj, _ := values["cnpj"].(string)
	if cnpj == "" {
		return "", nil
	}
	if id, ok := known[cnpj]; ok {
		return id, nil
	}

	found, err := sqldb.FindWhere[entities.Empresa](ctx, im.DB, "", "cnpj = ?", cnpj)
	if err != nil {
		return "", err
	}
	if len(found) > 0 {
		known[cnpj] = found[0].ID
		return found[0].ID, nil
	}

	if razao, _ := values["razaoSocial"].(string); razao == "" {
		values["razaoSocial"] = "Empresa " + cnpj
	}
	empresa := &entities.Empresa{}
	if err := crud.Apply(mapper.Empresas, empresa, values); err != nil {
		return "", err
	}
	if err := crud.Validate(empresa); err != nil {
		return "", err
	}
	report.Empresas++
	if im.DryRun {
		known[cnpj] = ""
		return "", nil
	}
	if err := sqldb.Insert(ctx, im.DB, empresa); err != nil {
		return "", err
	}
	known[cnpj] = empresa.ID
	return empresa.ID, nil
}

// fixLegacyValues traduz os códigos de uma letra e o sexo por extenso
func fixLegacyValues(values map[string]interface{}) {
	if s, ok := values["status"].(string); ok {
		if status, found := legacyStatus[s]; found {
			values["status"] = status
		}
	}
	if s, ok := values["sexo"].(string); ok && len(s) > 1 {
		switch {
		case strings.HasPrefix(s, "M"):
			values["sexo"] = "M"
		case strings.HasPrefix(s, "F"):
			values["sexo"] = "F"
		}
	}
}
