package utils

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the cpf, cnpj and uf tags to gin's validator
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
			return ValidCPF(fl.Field().String())
		})
		_ = v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
			return ValidCNPJ(fl.Field().String())
		})
		_ = v.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
			return ValidUF(fl.Field().String())
		})
	})
}

// ValidationDetails converte os erros do validator em um mapa campo -> regra
func ValidationDetails(err error) interface{} {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		out[fe.Field()] = rule
	}
	return out
}
