package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/athletelink/athletelink-backend/internal/data/repos"
	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/apierr"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
	"github.com/athletelink/athletelink-backend/internal/platform/stripegw"
)

// WebhookService replays gateway notifications into ledger state. Events are
// at-least-once, unordered and replayable; every applier is idempotent, with
// duplicates detected by conditional status writes matching zero rows.
type WebhookService interface {
	HandleEvent(dbc dbctx.Context, event *stripegw.Event) error
}

type webhookService struct {
	db          *gorm.DB
	log         *logger.Logger
	settlement  SettlementService
	paymentRepo repos.PaymentRepo
	payoutRepo  repos.PayoutRepo
	accountRepo repos.ConnectedAccountRepo
}

func NewWebhookService(
	db *gorm.DB,
	log *logger.Logger,
	settlement SettlementService,
	paymentRepo repos.PaymentRepo,
	payoutRepo repos.PayoutRepo,
	accountRepo repos.ConnectedAccountRepo,
) WebhookService {
	return &webhookService{
		db:          db,
		log:         log.With("service", "WebhookService"),
		settlement:  settlement,
		paymentRepo: paymentRepo,
		payoutRepo:  payoutRepo,
		accountRepo: accountRepo,
	}
}

func (ws *webhookService) HandleEvent(dbc dbctx.Context, event *stripegw.Event) error {
	if event == nil {
		return apierr.New(apierr.KindInvalidArgument, "nil event")
	}
	log := ws.log.With("event_id", event.ID, "event_type", event.Type)

	switch event.Type {
	case "payment_intent.succeeded":
		return ws.applyPaymentSucceeded(dbc, log, event.Object)
	case "payment_intent.payment_failed":
		return ws.applyPaymentFailed(dbc, log, event.Object)
	case "payout.paid":
		return ws.applyPayoutPaid(dbc, log, event.Object)
	case "payout.failed":
		return ws.applyPayoutFailed(dbc, log, event.Object)
	case "account.updated":
		return ws.applyAccountUpdated(dbc, log, event.Object)
	case "charge.refunded":
		return ws.applyChargeRefunded(dbc, log, event.Object)
	default:
		// Unknown event types are acknowledged, never errors.
		log.Debug("Ignoring unhandled webhook event")
		return nil
	}
}

func (ws *webhookService) applyPaymentSucceeded(dbc dbctx.Context, log *logger.Logger, object json.RawMessage) error {
	var intent stripegw.EventPaymentIntent
	if err := json.Unmarshal(object, &intent); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, err, "decode payment_intent object")
	}
	payment, err := ws.paymentRepo.GetByStripeIntentID(dbc, intent.ID)
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payment by intent ref")
	}
	if payment == nil {
		// Not ours (or the pending row never got its intent ref). Ack.
		log.Warn("No payment for intent ref", "intent_ref", intent.ID)
		return nil
	}
	applied, err := ws.settlement.ApplyPaymentSuccess(dbc, payment.ID)
	if err != nil {
		return err
	}
	if !applied {
		log.Debug("Payment success already applied", "payment_id", payment.ID)
	}
	return nil
}

func (ws *webhookService) applyPaymentFailed(dbc dbctx.Context, log *logger.Logger, object json.RawMessage) error {
	var intent stripegw.EventPaymentIntent
	if err := json.Unmarshal(object, &intent); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, err, "decode payment_intent object")
	}
	payment, err := ws.paymentRepo.GetByStripeIntentID(dbc, intent.ID)
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payment by intent ref")
	}
	if payment == nil {
		log.Warn("No payment for intent ref", "intent_ref", intent.ID)
		return nil
	}
	reason := intent.LastPaymentError.DeclineCode
	if reason == "" {
		reason = intent.LastPaymentError.Code
	}
	if reason == "" {
		reason = intent.LastPaymentError.Message
	}
	ok, err := ws.paymentRepo.UpdateStatusIf(dbc, payment.ID, []string{types.PaymentStatusPending}, types.PaymentStatusFailed, map[string]interface{}{
		"failure_reason": reason,
	})
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "mark payment failed")
	}
	if ok {
		log.Info("Payment failed via webhook", "payment_id", payment.ID, "reason", reason)
	}
	return nil
}

func (ws *webhookService) applyPayoutPaid(dbc dbctx.Context, log *logger.Logger, object json.RawMessage) error {
	var wire stripegw.EventPayout
	if err := json.Unmarshal(object, &wire); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, err, "decode payout object")
	}
	payout, err := ws.payoutRepo.GetByStripePayoutID(dbc, wire.ID)
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payout by ref")
	}
	if payout == nil {
		log.Warn("No payout for ref", "payout_ref", wire.ID)
		return nil
	}
	ok, err := ws.payoutRepo.UpdateStatusIf(dbc, payout.ID,
		[]string{types.PayoutStatusPending, types.PayoutStatusInTransit}, types.PayoutStatusPaid, nil)
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "mark payout paid")
	}
	if ok {
		log.Info("Payout paid", "payout_id", payout.ID)
	}
	return nil
}

// applyPayoutFailed marks the payout failed and returns the reserved amount to
// the available balance. The conditional status write gates the re-credit so a
// replay cannot credit twice.
func (ws *webhookService) applyPayoutFailed(dbc dbctx.Context, log *logger.Logger, object json.RawMessage) error {
	var wire stripegw.EventPayout
	if err := json.Unmarshal(object, &wire); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, err, "decode payout object")
	}
	payout, err := ws.payoutRepo.GetByStripePayoutID(dbc, wire.ID)
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payout by ref")
	}
	if payout == nil {
		log.Warn("No payout for ref", "payout_ref", wire.ID)
		return nil
	}
	apply := func(inner dbctx.Context) error {
		ok, err := ws.payoutRepo.UpdateStatusIf(inner, payout.ID,
			[]string{types.PayoutStatusPending, types.PayoutStatusInTransit}, types.PayoutStatusFailed, nil)
		if err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "mark payout failed")
		}
		if !ok {
			return nil
		}
		if err := ws.accountRepo.AddAvailableBalance(inner, payout.AthleteUserID, payout.Amount); err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "re-credit failed payout")
		}
		log.Info("Payout failed, amount re-credited", "payout_id", payout.ID, "amount", payout.Amount, "reason", wire.FailureMessage)
		return nil
	}
	if dbc.Tx != nil {
		return apply(dbc)
	}
	return ws.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return apply(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func (ws *webhookService) applyAccountUpdated(dbc dbctx.Context, log *logger.Logger, object json.RawMessage) error {
	var wire stripegw.EventAccount
	if err := json.Unmarshal(object, &wire); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, err, "decode account object")
	}
	ok, err := ws.accountRepo.UpdateCapabilities(dbc, wire.ID, wire.ChargesEnabled, wire.PayoutsEnabled)
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "update account capabilities")
	}
	if !ok {
		log.Warn("No connected account for ref", "account_ref", wire.ID)
		return nil
	}
	log.Info("Account capabilities updated", "account_ref", wire.ID, "charges_enabled", wire.ChargesEnabled, "payouts_enabled", wire.PayoutsEnabled)
	return nil
}

func (ws *webhookService) applyChargeRefunded(dbc dbctx.Context, log *logger.Logger, object json.RawMessage) error {
	var wire stripegw.EventCharge
	if err := json.Unmarshal(object, &wire); err != nil {
		return apierr.Wrap(apierr.KindInvalidArgument, err, "decode charge object")
	}
	if !wire.Refunded {
		return nil
	}
	payment, err := ws.paymentRepo.GetByStripeIntentID(dbc, wire.PaymentIntent)
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payment by intent ref")
	}
	if payment == nil {
		log.Warn("No payment for refunded charge", "intent_ref", wire.PaymentIntent)
		return nil
	}
	ok, err := ws.paymentRepo.UpdateStatusIf(dbc, payment.ID, []string{types.PaymentStatusSucceeded}, types.PaymentStatusRefunded, map[string]interface{}{
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return apierr.Wrap(apierr.KindGatewayUnavailable, err, "mark payment refunded")
	}
	if ok {
		log.Info("Payment refunded", "payment_id", payment.ID)
	}
	return nil
}
