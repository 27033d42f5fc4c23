// Package healthcheck informa o estado da API e dos backends
package healthcheck

import (
	"context"
	"net/http"
	"sync"
	"time"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/dto"

	"github.com/gin-gonic/gin"
)

// PingTimeout limita cada verificação
const PingTimeout = 3 * time.Second

const (
	statusOK       = "OK"
	statusDegraded = "DEGRADED"
	statusDown     = "DOWN"
	checkDisabled  = "disabled"
	checkUp        = "up"
)

type pinger func(ctx context.Context) error

// Health - Healthcheck endpoint
// @Summary      Healthcheck
// @Description  Estado da API, do banco e dos backends opcionais (Redis, MongoDB, Elasticsearch). Sem banco responde 503; backend opcional fora deixa o status DEGRADED.
// @Tags         health
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /healthcheck/ [get]
func Health(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		optional := map[string]pinger{}
		if cfg.Redis != nil {
			optional["redis"] = cfg.Redis.Ping
		}
		if cfg.Mongo != nil {
			optional["mongodb"] = cfg.Mongo.Ping
		}
		if cfg.ES != nil {
			optional["elasticsearch"] = cfg.ES.Ping
		}

		checks := map[string]string{
			"redis":         checkDisabled,
			"mongodb":       checkDisabled,
			"elasticsearch": checkDisabled,
		}
		var mu sync.Mutex
		var wg sync.WaitGroup
		run := func(name string, ping pinger) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(c.Request.Context(), PingTimeout)
			defer cancel()
			result := checkUp
			if err := ping(ctx); err != nil {
				result = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = result
			mu.Unlock()
		}

		wg.Add(1 + len(optional))
		go run("database", cfg.DB.Ping)
		for name, ping := range optional {
			go run(name, ping)
		}
		wg.Wait()

		status, code := statusOK, http.StatusOK
		for name, result := range checks {
			if result == checkUp || result == checkDisabled {
				continue
			}
			if name == "database" {
				status, code = statusDown, http.StatusServiceUnavailable
				break
			}
			status = statusDegraded
		}
		if status != statusOK {
			cfg.Logger.Warn("healthcheck failing", map[string]interface{}{"checks": checks})
		}

		uptime := time.Since(cfg.StartedAt).Round(time.Second).String()
		c.JSON(code, dto.NewHealthResponse(c, status, "Sindicato API", config.Version, uptime, checks))
	}
}
