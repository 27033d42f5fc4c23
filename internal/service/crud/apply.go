package crud

import (
	"encoding/json"
	"fmt"

	"sindicatorest/internal/mapper"
	"sindicatorest/internal/utils"

	"github.com/gin-gonic/gin/binding"
)

// Apply grava sobre item os valores de um formulário já normalizado.
// Campos somente leitura são descartados; null limpa campos opcionais.
func Apply[T any](fields *mapper.FieldMap, item *T, values map[string]interface{}) error {
	writable := make(map[string]interface{}, len(values))
	for k, v := range values {
		if f, ok := fields.Lookup(k); ok && f.ReadOnly {
			continue
		}
		writable[k] = v
	}

	raw, err := json.Marshal(writable)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fields.Entity, err)
	}
	if err := json.Unmarshal(raw, item); err != nil {
		return &ValidationError{Details: err.Error(), Err: err}
	}
	return nil
}

// keepStored copia de existing os campos Keep ausentes em values
func keepStored[T any](fields *mapper.FieldMap, existing *T, values map[string]interface{}) error {
	kept := fields.Kept()
	if len(kept) == 0 {
		return nil
	}
	raw, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", fields.Entity, err)
	}
	stored := map[string]interface{}{}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fields.Entity, err)
	}
	for _, name := range kept {
		if _, sent := values[name]; sent {
			continue
		}
		if v, ok := stored[name]; ok {
			values[name] = v
		}
	}
	return nil
}

// Validate aplica as tags binding e o método Validate da entidade, quando existir
func Validate(item interface{}) error {
	utils.RegisterValidators()
	if err := binding.Validator.ValidateStruct(item); err != nil {
		return &ValidationError{Details: utils.ValidationDetails(err), Err: err}
	}
	if v, ok := item.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return &ValidationError{Details: err.Error(), Err: err}
		}
	}
	return nil
}

// Decode normaliza um formulário e monta um T novo e válido
func Decode[T any](fields *mapper.FieldMap, values map[string]interface{}, opts mapper.Options) (*T, error) {
	normalized, err := fields.Normalize(values, opts)
	if err != nil {
		return nil, err
	}
	item := new(T)
	if err := Apply(fields, item, normalized); err != nil {
		return nil, err
	}
	if err := Validate(item); err != nil {
		return nil, err
	}
	return item, nil
}
