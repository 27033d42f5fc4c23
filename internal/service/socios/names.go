package socios

import (
	"context"
	"strings"
	"unicode"

	"sindicatorest/internal/repositories/sqldb"
)

// partículas que ficam em minúsculas no meio do nome
var particulas = map[string]bool{"da": true, "de": true, "do": true, "das": true, "dos": true, "e": true}

// NomeCheck é o resultado da verificação de um nome
type NomeCheck struct {
	ID        string   `json:"id"`
	Nome      string   `json:"nome"`
	Sugestao  string   `json:"sugestao"`
	Problemas []string `json:"problemas"`
	// Corrigivel indica que a sugestão resolve todos os problemas
	Corrigivel bool `json:"corrigivel"`
}

// FormatNome apara espaços e aplica maiúsculas nas iniciais
func FormatNome(nome string) string {
	words := strings.Fields(nome)
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && particulas[lower] {
			words[i] = lower
			continue
		}
		r := []rune(lower)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// CheckNome aponta problemas de cadastro em um nome
func CheckNome(nome string) (sugestao string, problemas []string, corrigivel bool) {
	sugestao = FormatNome(nome)
	corrigivel = true

	if sugestao != nome {
		switch {
		case strings.TrimSpace(nome) != nome || strings.Contains(nome, "  "):
			problemas = append(problemas, "espaços extras")
		default:
			problemas = append(problemas, "maiúsculas/minúsculas")
		}
	}
	if len(strings.Fields(sugestao)) < 2 {
		problemas = append(problemas, "nome incompleto")
		corrigivel = false
	}
	for _, r := range sugestao {
		if unicode.IsDigit(r) {
			problemas = append(problemas, "contém números")
			corrigivel = false
			break
		}
	}
	for _, r := range sugestao {
		if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' && !unicode.IsDigit(r) {
			problemas = append(problemas, "caracteres inválidos")
			corrigivel = false
			break
		}
	}
	return sugestao, problemas, corrigivel
}

// CheckNames verifica os nomes de todos os sócios. Com fix, os nomes
// corrigíveis são gravados e retornados em fixed.
func CheckNames(ctx context.Context, db *sqldb.Internal, fix bool) (found []NomeCheck, fixed int, err error) {
	names, err := db.ListSocioNames(ctx)
	if err != nil {
		return nil, 0, err
	}
	for _, n := range names {
		sugestao, problemas, corrigivel := CheckNome(n.Nome)
		if len(problemas) == 0 {
			continue
		}
		found = append(found, NomeCheck{ID: n.ID, Nome: n.Nome, Sugestao: sugestao, Problemas: problemas, Corrigivel: corrigivel})
		if fix && corrigivel {
			if err := db.RenameSocio(ctx, n.ID, sugestao); err != nil {
				return found, fixed, err
			}
			fixed++
		}
	}
	return found, fixed, nil
}
