package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/athletelink/athletelink-backend/internal/http/handlers"
	"github.com/athletelink/athletelink-backend/internal/http/middleware"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log               *logger.Logger
	AllowOrigins      []string
	AuthMiddleware    *middleware.AuthMiddleware
	HealthHandler     *handlers.HealthHandler
	ContractHandler   *handlers.ContractHandler
	SettlementHandler *handlers.SettlementHandler
	WebhookHandler    *handlers.WebhookHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("athletelink-backend"))
	router.Use(middleware.AttachTraceContext())
	router.Use(middleware.RequestLogger(cfg.Log))
	router.Use(middleware.CORS(cfg.AllowOrigins))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthz", cfg.HealthHandler.HealthCheck)
	// Gateway notifications authenticate via the signature header, not JWT.
	router.POST("/webhooks/stripe", cfg.WebhookHandler.Stripe)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Contracts
	api.POST("/contracts", cfg.ContractHandler.Create)
	api.GET("/contracts/:id", cfg.ContractHandler.Get)
	api.POST("/contracts/:id/send", cfg.ContractHandler.Send)
	api.POST("/contracts/:id/sign", cfg.ContractHandler.Sign)
	api.POST("/contracts/:id/decline", cfg.ContractHandler.Decline)
	api.POST("/contracts/:id/void", cfg.ContractHandler.Void)

	// Settlement
	api.POST("/deals/:id/pay", cfg.SettlementHandler.Pay)
	api.POST("/athletes/:id/payout-account", cfg.SettlementHandler.OnboardAccount)
	api.POST("/athletes/:id/payouts", cfg.SettlementHandler.RequestPayout)
	api.GET("/athletes/:id/balance", cfg.SettlementHandler.Balance)
	api.GET("/athletes/:id/earnings", cfg.SettlementHandler.Earnings)

	return router
}
