package app

import (
	"github.com/gin-gonic/gin"

	"github.com/athletelink/athletelink-backend/internal/platform/logger"
	"github.com/athletelink/athletelink-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, mw Middleware) *gin.Engine {
	log.Info("Wiring router...")
	return server.NewRouter(server.RouterConfig{
		Log:               log,
		AllowOrigins:      cfg.AllowOrigins,
		AuthMiddleware:    mw.Auth,
		HealthHandler:     handlers.Health,
		ContractHandler:   handlers.Contract,
		SettlementHandler: handlers.Settlement,
		WebhookHandler:    handlers.Webhook,
	})
}
