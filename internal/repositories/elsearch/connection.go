package elsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
)

type Config struct {
	Addresses []string
	Username  string
	Password  string

	// Connection settings
	MaxRetries    int
	RetryBackoff  time.Duration
	Timeout       time.Duration
	EnableLogging bool

	// TLS settings
	InsecureSkipVerify bool

	IndexName string

	// Transport substitui o transporte HTTP padrão
	Transport http.RoundTripper
}

type Client struct {
	ES     *elasticsearch.Client
	config *Config
}

// NewClient creates a new Elasticsearch client with the provided configuration
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Load from environment variables if not provided in config
	if len(cfg.Addresses) == 0 {
		if url := os.Getenv("ELASTICSEARCH_URL"); url != "" {
			cfg.Addresses = []string{url}
		} else {
			cfg.Addresses = []string{"http://elasticsearch:9200"}
		}
	}

	if cfg.Username == "" {
		cfg.Username = os.Getenv("ELASTICSEARCH_USERNAME")
	}

	if cfg.Password == "" {
		cfg.Password = os.Getenv("ELASTICSEARCH_PASSWORD")
	}

	// Set defaults
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = 100 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.IndexName == "" {
		cfg.IndexName = SociosIndex
	}

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: cfg.Timeout,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.InsecureSkipVerify,
			},
		}
	}

	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,

		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
		RetryBackoff: func(i int) time.Duration {
			return cfg.RetryBackoff * time.Duration(i)
		},
		Transport:         transport,
		EnableMetrics:     cfg.EnableLogging,
		EnableDebugLogger: cfg.EnableLogging,
	}

	// Create client
	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	client := &Client{
		ES:     es,
		config: cfg,
	}

	// Test connection
	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping elasticsearch: %w", err)
	}

	return client, nil
}

// Index retorna o nome do índice de sócios
func (c *Client) Index() string {
	return c.config.IndexName
}

// Ping tests the connection to Elasticsearch
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.ES.Ping(c.ES.Ping.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed with status: %s", res.Status())
	}

	return nil
}

// CreateIndex creates an index with optional mapping
func (c *Client) CreateIndex(ctx context.Context, indexName string, mapping []byte) error {
	res, err := c.ES.Indices.Create(
		indexName,
		c.ES.Indices.Create.WithContext(ctx),
		c.ES.Indices.Create.WithBody(bytes.NewReader(mapping)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", indexName, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("failed to create index %s: %s", indexName, res.String())
	}

	return nil
}

// IndexExists checks if an index exists
func (c *Client) IndexExists(ctx context.Context, indexName string) (bool, error) {
	res, err := c.ES.Indices.Exists([]string{indexName}, c.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, err
	}
	defer res.Body.Close()
	return res.StatusCode == http.StatusOK, nil
}

// DeleteIndex deletes an index
func (c *Client) DeleteIndex(ctx context.Context, indexName string) error {
	res, err := c.ES.Indices.Delete([]string{indexName}, c.ES.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete index %s: %w", indexName, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("failed to delete index %s: %s", indexName, res.String())
	}

	return nil
}

func readError(res *esapi.Response) error {
	return fmt.Errorf("elasticsearch: %s", res.String())
}
