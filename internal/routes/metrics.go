package routes

import (
	"sindicatorest/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupMetricsRoutes expõe o registro do Prometheus em /metrics
func SetupMetricsRoutes(engine *gin.Engine, cfg *config.App) {
	handler := promhttp.HandlerFor(cfg.Metrics, promhttp.HandlerOpts{Registry: cfg.Metrics})
	engine.GET("/metrics", gin.WrapH(handler))
}
