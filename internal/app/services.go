package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/athletelink/athletelink-backend/internal/platform/logger"
	"github.com/athletelink/athletelink-backend/internal/platform/stripegw"
	"github.com/athletelink/athletelink-backend/internal/services"
)

type Services struct {
	Contract   services.ContractService
	Settlement services.SettlementService
	Webhook    services.WebhookService

	Gateway          stripegw.Gateway
	SettlementWorker *services.SettlementWorker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	templates, err := services.LoadClauseTemplates(cfg.ClauseTemplatePath)
	if err != nil {
		return Services{}, fmt.Errorf("load clause templates: %w", err)
	}

	var gateway stripegw.Gateway
	switch cfg.GatewayMode {
	case "fake":
		log.Warn("Using in-memory payment gateway; no real money moves")
		gateway = stripegw.NewFake()
	default:
		gateway, err = stripegw.NewFromEnv(log)
		if err != nil {
			return Services{}, fmt.Errorf("init payment gateway: %w", err)
		}
	}

	contractService := services.NewContractService(db, log, repos.Deal, repos.Contract, repos.ContractSignature, templates)

	settlementService := services.NewSettlementService(
		db, log,
		services.SettlementConfig{
			FeePercent: int64(cfg.PlatformFeePercent),
			HoldPeriod: cfg.SettlementHoldPeriod,
		},
		gateway,
		repos.Deal,
		repos.Payment,
		repos.ConnectedAccount,
		repos.Payout,
		repos.Earnings,
	)

	webhookService := services.NewWebhookService(db, log, settlementService, repos.Payment, repos.Payout, repos.ConnectedAccount)

	worker := services.NewSettlementWorker(log, settlementService, cfg.SettlementSweepInterval)

	return Services{
		Contract:         contractService,
		Settlement:       settlementService,
		Webhook:          webhookService,
		Gateway:          gateway,
		SettlementWorker: worker,
	}, nil
}
