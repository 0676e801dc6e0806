package app

import (
	"github.com/athletelink/athletelink-backend/internal/http/handlers"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Contract   *handlers.ContractHandler
	Settlement *handlers.SettlementHandler
	Webhook    *handlers.WebhookHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     handlers.NewHealthHandler(),
		Contract:   handlers.NewContractHandler(services.Contract),
		Settlement: handlers.NewSettlementHandler(services.Settlement),
		Webhook:    handlers.NewWebhookHandler(log, services.Webhook, cfg.StripeWebhookSecret),
	}
}
