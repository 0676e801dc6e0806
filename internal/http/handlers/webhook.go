package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
	"github.com/athletelink/athletelink-backend/internal/platform/stripegw"
	"github.com/athletelink/athletelink-backend/internal/services"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	log            *logger.Logger
	webhookService services.WebhookService
	signingSecret  string
}

func NewWebhookHandler(log *logger.Logger, webhookService services.WebhookService, signingSecret string) *WebhookHandler {
	return &WebhookHandler{
		log:            log.With("handler", "WebhookHandler"),
		webhookService: webhookService,
		signingSecret:  signingSecret,
	}
}

// POST /webhooks/stripe
// Unauthenticated route: the HMAC signature header is the authentication.
// A non-2xx response makes the gateway redeliver, so only transient
// processing failures return 5xx; bad signatures and malformed payloads are
// rejected outright.
func (wh *WebhookHandler) Stripe(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}

	header := c.GetHeader("Stripe-Signature")
	if err := stripegw.VerifyWebhookSignature(payload, header, wh.signingSecret, stripegw.DefaultWebhookTolerance, time.Now()); err != nil {
		wh.log.Warn("Webhook signature rejected", "error", err)
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	event, err := stripegw.ParseEvent(payload)
	if err != nil {
		wh.log.Warn("Webhook payload rejected", "error", err)
		c.String(http.StatusBadRequest, "invalid payload")
		return
	}

	if err := wh.webhookService.HandleEvent(dbctx.Context{Ctx: c.Request.Context()}, event); err != nil {
		wh.log.Error("Webhook event processing failed", "event_id", event.ID, "event_type", event.Type, "error", err)
		c.String(http.StatusInternalServerError, "processing failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
