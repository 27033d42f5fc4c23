package mapper

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"sindicatorest/internal/models/types"
)

var errNotNumber = errors.New("not a number")

// Coerce converte v para a representação canônica do tipo k. O resultado
// é sempre serializável em JSON (string, float64, int64, bool, []string ou nil).
func Coerce(k Kind, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}

	switch k {
	case String:
		return strings.TrimSpace(toString(v)), nil
	case Upper:
		return strings.ToUpper(strings.TrimSpace(toString(v))), nil
	case Lower:
		return strings.ToLower(strings.TrimSpace(toString(v))), nil
	case Digits:
		return OnlyDigits(toString(v)), nil
	case Date:
		return coerceDate(v)
	case Decimal:
		return coerceDecimal(v)
	case Int:
		return coerceInt(v)
	case Bool:
		return coerceBool(v)
	case List:
		return coerceList(v), nil
	}
	return nil, fmt.Errorf("unsupported kind %d", k)
}

// OnlyDigits remove a máscara de documentos e telefones
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return toString(float64(t))
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

func coerceDate(v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return nil, nil
		}
		return types.FromTime(t).String(), nil
	case types.Date:
		if t.IsZero() {
			return nil, nil
		}
		return t.String(), nil
	case *types.Date:
		if t == nil || t.IsZero() {
			return nil, nil
		}
		return t.String(), nil
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return nil, nil
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return d.String(), nil
}

// coerceDecimal aceita números e textos no formato brasileiro ("R$ 1.234,56")
// inteiro com pontos separando os milhares, sem vírgula decimal
var thousands = regexp.MustCompile(`^-?[1-9]\d{0,2}(\.\d{3})+$`)

func coerceDecimal(v interface{}) (interface{}, error) {
	if n, ok := asNumber(v); ok {
		return n, nil
	}
	s := strings.TrimSpace(toString(v))
	s = strings.TrimPrefix(s, "R$")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil, nil
	}
	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case thousands.MatchString(s):
		// "1.234" é mil duzentos e trinta e quatro
		s = strings.ReplaceAll(s, ".", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errNotNumber
	}
	return f, nil
}

func coerceInt(v interface{}) (interface{}, error) {
	if n, ok := asNumber(v); ok {
		if n != math.Trunc(n) {
			return nil, errors.New("not an integer")
		}
		return int64(n), nil
	}
	s := strings.TrimSpace(toString(v))
	if s == "" {
		return nil, nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.New("not an integer")
	}
	return i, nil
}

func coerceBool(v interface{}) (interface{}, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if n, ok := asNumber(v); ok {
		return n != 0, nil
	}
	switch strings.ToLower(strings.TrimSpace(toString(v))) {
	case "true", "1", "s", "sim", "y", "yes", "t", "ativo", "ativa":
		return true, nil
	case "false", "0", "n", "nao", "não", "no", "f", "inativo", "inativa":
		return false, nil
	case "":
		return nil, nil
	}
	return nil, errors.New("not a boolean")
}

func coerceList(v interface{}) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range t {
			if s := strings.TrimSpace(toString(item)); s != "" {
				out = append(out, s)
			}
		}
	default:
		for _, s := range strings.Split(toString(v), ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func asNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}
