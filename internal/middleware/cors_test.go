package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorsConfig(t *testing.T) {
	cfg := corsConfig("")
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)

	cfg = corsConfig(" https://painel.sindicato.org.br, ,http://localhost:3000")
	assert.False(t, cfg.AllowAllOrigins)
	assert.True(t, cfg.AllowCredentials)
	assert.Equal(t, []string{"https://painel.sindicato.org.br", "http://localhost:3000"}, cfg.AllowOrigins)
	assert.Contains(t, cfg.AllowHeaders, RequestIDHeader)
}
