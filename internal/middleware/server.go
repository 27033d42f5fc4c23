package middleware

import (
	"net/http"
	"os"
	"strconv"

	"sindicatorest/internal/config"
	"sindicatorest/internal/models/dto"
	"sindicatorest/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SetupServer monta o engine com os middlewares na ordem: métricas,
// semáforo, CORS, rate limit, ids, logger, HTTPS e recovery
func SetupServer(cfg *config.App) (engine *gin.Engine) {

	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	engine = gin.New()

	utils.RegisterValidators()

	if cfg.Metrics != nil {
		engine.Use(NewHTTPMetrics(cfg.Metrics).Middleware())
	}
	setupSemaphore(engine)
	setupCors(engine)
	if cfg.Redis != nil {
		setupRateLimit(engine, cfg.Redis, cfg.Logger)
	}
	setupIds(engine)
	setupLogger(engine, cfg.Logger)

	certFile, keyFile := utils.GetCertFiles()
	if certFile != "" && keyFile != "" {
		setupSSL(engine, cfg)
	}

	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		cfg.Logger.Warn("panic recovered", map[string]interface{}{"panic": recovered, "path": c.Request.URL.Path})
		dto.AbortWithError(c, http.StatusInternalServerError, "Erro interno", nil)
	}))

	return engine
}

// setupSSL is a function that sets up the SSL configuration for the server
func setupSSL(engine *gin.Engine, cfg *config.App) {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:          true,
		SSLHost:              os.Getenv("SSL_HOST"),
		STSSeconds:           31536000,
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		IsDevelopment:        os.Getenv("ENVIRONMENT_APP") == "development",
	})
	engine.Use(func(c *gin.Context) {
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			cfg.Logger.Warn("secure middleware rejected request", map[string]interface{}{"error": err.Error()})
			c.Abort()
			return
		}
		// redirecionamento já respondido
		if status := c.Writer.Status(); status > 300 && status < 399 {
			c.Abort()
			return
		}
		c.Next()
	})
}

func getEnvAsInt64(name string, defaultValue int64) int64 {
	valueStr := os.Getenv(name)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil || value <= 0 {
		return defaultValue
	}

	return value
}
