package routes

import (
	"sindicatorest/internal/config"
	"sindicatorest/internal/middleware"
	"sindicatorest/internal/service/arquivos"
	"sindicatorest/internal/service/ativos"
	"sindicatorest/internal/service/auditoria"
	"sindicatorest/internal/service/auth"
	"sindicatorest/internal/service/dashboard"
	"sindicatorest/internal/service/empresas"
	"sindicatorest/internal/service/financeiro"
	"sindicatorest/internal/service/funcionarios"
	"sindicatorest/internal/service/healthcheck"
	"sindicatorest/internal/service/socios"
	"sindicatorest/internal/service/usuarios"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// InitiateRoutes is a function that initializes the routes for the application
func InitiateRoutes(engine *gin.Engine, cfg *config.App) {

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	healthGroup := engine.Group("/healthcheck")
	{
		healthGroup.GET("/", healthcheck.Health(cfg))
	}

	SetupMetricsRoutes(engine, cfg)

	// Login e sessão (rotas públicas e /auth/me)
	auth.Register(engine.Group(""), cfg)

	// Cadastros: qualquer usuário autenticado
	protected := engine.Group("", middleware.Auth(cfg))
	{
		socios.Register(protected, cfg)
		empresas.Register(protected, cfg)
		funcionarios.Register(protected, cfg)
		ativos.Register(protected, cfg)
		financeiro.Register(protected, cfg)
		dashboard.Register(protected, cfg)
		arquivos.Register(protected, cfg)
	}

	// Usuários, perfis e auditoria: apenas administradores
	admin := engine.Group("", middleware.Auth(cfg), middleware.RequireAdmin(cfg))
	{
		usuarios.Register(admin, cfg)
		auditoria.Register(admin, cfg)
	}
}
