package utils

import (
	"strings"
	"unicode"
)

// OnlyDigits removes any mask from documents and phone numbers
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}

// checkDigit calcula um dígito verificador módulo 11
func checkDigit(digits string, weights []int) byte {
	sum := 0
	for i, w := range weights {
		sum += int(digits[i]-'0') * w
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

// ValidCPF verifica os dígitos verificadores de um CPF (com ou sem máscara)
func ValidCPF(cpf string) bool {
	cpf = OnlyDigits(cpf)
	if len(cpf) != 11 || allSame(cpf) {
		return false
	}
	d1 := checkDigit(cpf, []int{10, 9, 8, 7, 6, 5, 4, 3, 2})
	d2 := checkDigit(cpf, []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2})
	return cpf[9] == d1 && cpf[10] == d2
}

// ValidCNPJ verifica os dígitos verificadores de um CNPJ (com ou sem máscara)
func ValidCNPJ(cnpj string) bool {
	cnpj = OnlyDigits(cnpj)
	if len(cnpj) != 14 || allSame(cnpj) {
		return false
	}
	d1 := checkDigit(cnpj, []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	d2 := checkDigit(cnpj, []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	return cnpj[12] == d1 && cnpj[13] == d2
}

// ValidUF checks a two letter state code
func ValidUF(uf string) bool {
	_, ok := UFs[strings.ToUpper(uf)]
	return ok
}

// FormatCPF aplica a máscara 000.000.000-00
func FormatCPF(cpf string) string {
	cpf = OnlyDigits(cpf)
	if len(cpf) != 11 {
		return cpf
	}
	return cpf[0:3] + "." + cpf[3:6] + "." + cpf[6:9] + "-" + cpf[9:]
}
