package main

import (
	"fmt"
	"log"
	"os"

	_ "sindicatorest/docs"
	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/routes"
	"sindicatorest/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// @title                       Sindicato API
// @version                     1.0.0
// @description                 API de gestão do sindicato: sócios, empresas, financeiro, patrimônio e usuários.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Token JWT no formato: Bearer {token}
func main() {

	envPath := "/app/.env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../../.env"
	}
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("No .env file loaded (%v), using environment variables", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		cfg.CloseAll()
		log.Fatalf("Error creating config: %v", err)
	}

	cfg.Logger.Info(fmt.Sprintf("Starting server version %s", config.Version), map[string]interface{}{
		"environment": os.Getenv("ENVIRONMENT_APP"),
		"db_driver":   cfg.DB.Driver(),
	})

	engine := middleware.SetupServer(cfg)

	routes.InitiateRoutes(engine, cfg)

	if err := startServer(engine, cfg); err != nil {
		cfg.Logger.Fatal("Error starting server", err)
		cfg.CloseAll()
		os.Exit(1)
	}
	cfg.CloseAll()
}

func startServer(engine *gin.Engine, cfg *config.App) error {
	addr := ":" + utils.GetPort()
	certFile, keyFile := utils.GetCertFiles()
	if certFile != "" && keyFile != "" {
		cfg.Logger.Info("Starting server with TLS", map[string]interface{}{"addr": addr})
		return engine.RunTLS(addr, certFile, keyFile)
	}
	cfg.Logger.Info("Starting server", map[string]interface{}{"addr": addr})
	return engine.Run(addr)
}
