package app

import (
	"strings"
	"time"

	"github.com/athletelink/athletelink-backend/internal/platform/envutil"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey string
	AllowOrigins []string

	// Settlement policy
	PlatformFeePercent      int
	SettlementHoldPeriod    time.Duration
	SettlementSweepInterval time.Duration

	// Contract templates
	ClauseTemplatePath string

	// Payment gateway ("stripe" or "fake")
	GatewayMode         string
	StripeWebhookSecret string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:    envutil.Str("PORT", "8080"),
		LogMode: envutil.Str("LOG_MODE", "development"),

		JWTSecretKey: envutil.Str("JWT_SECRET_KEY", "defaultsecret"),

		PlatformFeePercent:      envutil.Int("PLATFORM_FEE_PERCENT", 12),
		SettlementHoldPeriod:    time.Duration(envutil.Int("SETTLEMENT_HOLD_DAYS", 7)) * 24 * time.Hour,
		SettlementSweepInterval: time.Duration(envutil.Int("SETTLEMENT_SWEEP_MINUTES", 60)) * time.Minute,

		ClauseTemplatePath: envutil.Str("CLAUSE_TEMPLATE_PATH", ""),

		GatewayMode:         strings.ToLower(envutil.Str("PAYMENT_GATEWAY_MODE", "stripe")),
		StripeWebhookSecret: envutil.Str("STRIPE_WEBHOOK_SECRET", ""),
	}
	if origins := envutil.Str("CORS_ALLOW_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowOrigins = append(cfg.AllowOrigins, o)
			}
		}
	}
	if cfg.StripeWebhookSecret == "" {
		log.Warn("STRIPE_WEBHOOK_SECRET not set; webhook signatures cannot be verified")
	}
	return cfg
}
