package crud

import (
	"errors"
	"net/http"

	"sindicatorest/internal/mapper"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/repositories/sqldb"

	"github.com/gin-gonic/gin"
)

// ErrBadReference indica um vínculo com registro inexistente
var ErrBadReference = errors.New("referenced record does not exist")

// ValidationError carrega os detalhes da validação por campo
type ValidationError struct {
	Details interface{}
	Err     error
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Status traduz um erro do serviço ou do repositório em status HTTP
func Status(err error) int {
	var verr *ValidationError
	var merr *mapper.Error
	switch {
	case errors.As(err, &verr), errors.As(err, &merr), errors.Is(err, ErrBadReference):
		return http.StatusBadRequest
	case errors.Is(err, sqldb.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, sqldb.ErrConflict), errors.Is(err, sqldb.ErrInUse), errors.Is(err, sqldb.ErrInvalidState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func details(err error) interface{} {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Details
	}
	var merr *mapper.Error
	if errors.As(err, &merr) {
		out := gin.H{}
		if len(merr.Unknown) > 0 {
			out["unknown"] = merr.Unknown
		}
		if len(merr.Invalid) > 0 {
			out["invalid"] = merr.Invalid
		}
		return out
	}
	return nil
}

// Fail responde com o ErrorResponse correspondente ao erro
func Fail(c *gin.Context, err error, message string) {
	code := Status(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(code, dto.NewErrorResponse(c, code, err.Error(), message, details(err)))
}
