package elsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9/esapi"
)

// SociosIndex é o índice padrão de sócios
const SociosIndex = "socios"

// ErrSearchDisabled indica que a busca textual não está disponível
var ErrSearchDisabled = errors.New("search is disabled")

// SocioDocument é o documento indexado de um sócio
type SocioDocument struct {
	ID        string `json:"id"`
	Matricula int64  `json:"matricula"`
	Nome      string `json:"nome"`
	CPF       string `json:"cpf"`
	EmpresaID string `json:"empresaId,omitempty"`
	Cidade    string `json:"cidade,omitempty"`
	Status    string `json:"status"`
}

// SocioSearcher indexa e busca sócios
type SocioSearcher interface {
	IndexSocio(ctx context.Context, doc SocioDocument) error
	DeleteSocio(ctx context.Context, id string) error
	SearchSocios(ctx context.Context, term string, limit int) ([]string, error)
}

var sociosMapping = []byte(`{
  "settings": {
    "analysis": {
      "analyzer": {
        "nome_pt": {"type": "custom", "tokenizer": "standard", "filter": ["lowercase", "asciifolding"]}
      }
    }
  },
  "mappings": {
    "properties": {
      "id":        {"type": "keyword"},
      "matricula": {"type": "long"},
      "nome":      {"type": "text", "analyzer": "nome_pt"},
      "cpf":       {"type": "keyword"},
      "empresaId": {"type": "keyword"},
      "cidade":    {"type": "text", "analyzer": "nome_pt"},
      "status":    {"type": "keyword"}
    }
  }
}`)

// EnsureSocioIndex cria o índice de sócios quando ausente
func (c *Client) EnsureSocioIndex(ctx context.Context) error {
	ok, err := c.IndexExists(ctx, c.Index())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return c.CreateIndex(ctx, c.Index(), sociosMapping)
}

// RecreateSocioIndex apaga e recria o índice de sócios
func (c *Client) RecreateSocioIndex(ctx context.Context) error {
	if err := c.DeleteIndex(ctx, c.Index()); err != nil {
		return err
	}
	return c.CreateIndex(ctx, c.Index(), sociosMapping)
}

// IndexSocio grava ou substitui o documento do sócio
func (c *Client) IndexSocio(ctx context.Context, doc SocioDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("erro ao serializar socio: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.Index(),
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, c.ES)
	if err != nil {
		return fmt.Errorf("erro ao indexar socio %s: %w", doc.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return readError(res)
	}
	return nil
}

// DeleteSocio remove o documento do sócio. Documento ausente não é erro.
func (c *Client) DeleteSocio(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      c.Index(),
		DocumentID: id,
	}
	res, err := req.Do(ctx, c.ES)
	if err != nil {
		return fmt.Errorf("erro ao remover socio %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return readError(res)
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchSocios busca por nome, CPF ou matrícula e retorna os ids por relevância
func (c *Client) SearchSocios(ctx context.Context, term string, limit int) ([]string, error) {
	query := buildSocioQuery(term, limit)

	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.Index()},
		Body:  bytes.NewReader(queryJSON),
	}
	res, err := req.Do(ctx, c.ES)
	if err != nil {
		return nil, fmt.Errorf("erro na execução da busca: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, readError(res)
	}

	var esResponse searchResponse
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("erro ao deserializar resposta: %w", err)
	}

	ids := make([]string, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}

func buildSocioQuery(term string, size int) map[string]interface{} {
	term = strings.TrimSpace(term)
	if size <= 0 || size > 100 {
		size = 20
	}

	should := []interface{}{
		map[string]interface{}{
			"match": map[string]interface{}{
				"nome": map[string]interface{}{
					"query":     term,
					"fuzziness": "AUTO",
					"operator":  "and",
				},
			},
		},
		map[string]interface{}{
			"match_phrase_prefix": map[string]interface{}{
				"nome": map[string]interface{}{"query": term, "boost": 2},
			},
		},
	}

	digits := onlyDigits(term)
	if digits != "" {
		should = append(should, map[string]interface{}{
			"prefix": map[string]interface{}{"cpf": digits},
		})
	}
	if n, err := strconv.ParseInt(term, 10, 64); err == nil {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"matricula": map[string]interface{}{"value": n, "boost": 5}},
		})
	}

	return map[string]interface{}{
		"size":    size,
		"_source": false,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		},
	}
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NopSearcher é usado quando o Elasticsearch está desligado
type NopSearcher struct{}

func (NopSearcher) IndexSocio(context.Context, SocioDocument) error { return nil }

func (NopSearcher) DeleteSocio(context.Context, string) error { return nil }

func (NopSearcher) SearchSocios(context.Context, string, int) ([]string, error) {
	return nil, ErrSearchDisabled
}

var (
	_ SocioSearcher = (*Client)(nil)
	_ SocioSearcher = NopSearcher{}
)
