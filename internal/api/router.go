package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pegasusdeploy/platform-api/internal/api/handler"
	"github.com/pegasusdeploy/platform-api/internal/api/middleware"
	"github.com/pegasusdeploy/platform-api/internal/core/domain"
	"github.com/pegasusdeploy/platform-api/internal/core/service"
	mongostore "github.com/pegasusdeploy/platform-api/internal/infrastructure/db/mongo"
	redisstore "github.com/pegasusdeploy/platform-api/internal/infrastructure/db/redis"
	"github.com/pegasusdeploy/platform-api/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("platform"))

	// --- Dependencies ---
	accountRepo := mongostore.NewAccountRepository(db)
	auditLog := mongostore.NewAuditLog(db)
	channelRepo := mongostore.NewChannelRepository(db)
	envVarRepo := mongostore.NewEnvVarRepository(db)
	sessions := redisstore.NewSessionStore(rdb)
	lockout := redisstore.NewLockoutStore(rdb, cfg.Auth.MaxLoginFailures, cfg.Auth.LockoutWindow)

	accountService := service.NewAccountService(
		accountRepo, auditLog, sessions, lockout,
		service.TokenConfig{Key: cfg.JWT.Key, Issuer: cfg.JWT.Issuer, Audience: cfg.JWT.Audience},
		cfg.Auth.SessionTTL, cfg.Auth.RememberTTL,
		log,
	)
	channelService := service.NewChannelService(channelRepo, log)

	accountHandler := handler.NewAccountHandler(accountService)
	channelHandler := handler.NewChannelHandler(channelService)
	envVarHandler := handler.NewEnvVarHandler(envVarRepo)

	// --- Interactive account flows (session cookie, anti-forgery token) ---
	account := e.Group("/account", middleware.Session(sessions), middleware.AntiForgery())
	account.GET("/register", accountHandler.RegisterForm)
	account.POST("/register", accountHandler.Register)
	account.GET("/login", accountHandler.LoginForm)
	account.POST("/login", accountHandler.Login)
	account.GET("/logout", accountHandler.Logout)

	// --- Programmatic token endpoint (JSON, outside the session and
	// anti-forgery machinery) ---
	e.POST("/api/token", accountHandler.CreateToken)

	// --- Administrator API ---
	admin := e.Group("/v1",
		middleware.BearerAuth(cfg.JWT.Key, cfg.JWT.Issuer, cfg.JWT.Audience),
		middleware.RequireRole(accountRepo, domain.RoleAdministrator),
	)
	admin.POST("/channels", channelHandler.Create)
	admin.GET("/channels", channelHandler.List)
	admin.PUT("/envvars", envVarHandler.Put)
	admin.GET("/envvars", envVarHandler.List)
	admin.GET("/envvars/:key", envVarHandler.Get)
	admin.DELETE("/envvars/:key", envVarHandler.Delete)

	// --- Health probes, metrics, docs (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Landing page: where authenticated callers are redirected.
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"service": "platform-api"})
	})

	return e
}
