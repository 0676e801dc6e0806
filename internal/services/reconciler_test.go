package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/stripegw"
)

func makeEvent(tb testing.TB, eventType string, object any) *stripegw.Event {
	tb.Helper()
	raw, err := json.Marshal(object)
	if err != nil {
		tb.Fatalf("marshal event object: %v", err)
	}
	return &stripegw.Event{
		ID:     "evt_" + uuid.NewString()[:8],
		Type:   eventType,
		Object: raw,
	}
}

// seedPendingPayment creates a deal plus a claimed pending payment carrying an
// intent ref, as if ExecutePayment crashed after confirm was issued.
func seedPendingPayment(t *testing.T, e *env) (*types.Deal, *types.Payment) {
	t.Helper()
	deal := e.seedDeal(t, 10000, types.DealStatusAccepted)
	e.seedAccount(t, deal.AthleteUserID, 0, 0)

	payment := &types.Payment{
		DealID:                deal.ID,
		BrandUserID:           deal.BrandUserID,
		AthleteUserID:         deal.AthleteUserID,
		Amount:                10000,
		PlatformFee:           1200,
		NetAmount:             8800,
		Currency:              "usd",
		StripePaymentIntentID: "pi_" + uuid.NewString()[:8],
		Status:                types.PaymentStatusPending,
	}
	ok, err := e.payments.CreateIfNoActive(e.dbc(), payment)
	if err != nil || !ok {
		t.Fatalf("seed pending payment: ok=%v err=%v", ok, err)
	}
	return deal, payment
}

func TestReconcilerPaymentSucceededReplayIdempotent(t *testing.T) {
	e := newEnv(t)
	deal, payment := seedPendingPayment(t, e)

	event := makeEvent(t, "payment_intent.succeeded", map[string]any{
		"id": payment.StripePaymentIntentID, "amount": 10000, "status": "succeeded",
	})
	for i := 0; i < 3; i++ {
		if err := e.webhooks.HandleEvent(e.dbc(), event); err != nil {
			t.Fatalf("HandleEvent (apply %d): %v", i, err)
		}
	}

	got, _ := e.payments.GetByID(e.dbc(), payment.ID)
	if got.Status != types.PaymentStatusSucceeded {
		t.Fatalf("payment status %s, want succeeded", got.Status)
	}
	d, _ := e.deals.GetByID(e.dbc(), deal.ID)
	if d.Status != types.DealStatusPaid {
		t.Fatalf("deal status %s, want paid", d.Status)
	}
	balance, err := e.settlement.GetAthleteBalance(e.dbc(), deal.AthleteUserID)
	if err != nil {
		t.Fatalf("GetAthleteBalance: %v", err)
	}
	if balance.PendingBalance != 8800 {
		t.Fatalf("pending balance %d after 3 replays, want 8800 (applied once)", balance.PendingBalance)
	}
	now := time.Now().UTC()
	rec, err := e.earnings.GetByPeriod(e.dbc(), deal.AthleteUserID, now.Year(), int(now.Month()))
	if err != nil || rec == nil {
		t.Fatalf("GetByPeriod: rec=%v err=%v", rec, err)
	}
	if rec.DealsCompleted != 1 || rec.GrossTotal != 10000 {
		t.Fatalf("earnings after replays: %+v", rec)
	}
}

func TestReconcilerPaymentFailed(t *testing.T) {
	e := newEnv(t)
	deal, payment := seedPendingPayment(t, e)

	event := makeEvent(t, "payment_intent.payment_failed", map[string]any{
		"id": payment.StripePaymentIntentID,
		"last_payment_error": map[string]any{
			"code": "card_declined", "decline_code": "insufficient_funds",
		},
	})
	if err := e.webhooks.HandleEvent(e.dbc(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	got, _ := e.payments.GetByID(e.dbc(), payment.ID)
	if got.Status != types.PaymentStatusFailed || got.FailureReason != "insufficient_funds" {
		t.Fatalf("payment after failure event: %+v", got)
	}
	d, _ := e.deals.GetByID(e.dbc(), deal.ID)
	if d.Status != types.DealStatusAccepted {
		t.Fatalf("deal status %s, want accepted (retryable)", d.Status)
	}

	// A late success for the same intent must not resurrect the failed row.
	late := makeEvent(t, "payment_intent.succeeded", map[string]any{
		"id": payment.StripePaymentIntentID, "status": "succeeded",
	})
	if err := e.webhooks.HandleEvent(e.dbc(), late); err != nil {
		t.Fatalf("HandleEvent (late success): %v", err)
	}
	got, _ = e.payments.GetByID(e.dbc(), payment.ID)
	if got.Status != types.PaymentStatusFailed {
		t.Fatalf("failed payment mutated to %s by late success", got.Status)
	}
}

func TestReconcilerPayoutPaid(t *testing.T) {
	e := newEnv(t)
	athleteID := uuid.New()
	e.seedAccount(t, athleteID, 5000, 0)

	amt := int64(5000)
	payout, err := e.settlement.RequestPayout(e.dbc(), athleteID, &amt, types.PayoutMethodStandard)
	if err != nil {
		t.Fatalf("RequestPayout: %v", err)
	}

	event := makeEvent(t, "payout.paid", map[string]any{"id": payout.StripePayoutID, "status": "paid"})
	for i := 0; i < 2; i++ {
		if err := e.webhooks.HandleEvent(e.dbc(), event); err != nil {
			t.Fatalf("HandleEvent (%d): %v", i, err)
		}
	}
	got, _ := e.payouts.GetByID(e.dbc(), payout.ID)
	if got.Status != types.PayoutStatusPaid {
		t.Fatalf("payout status %s, want paid", got.Status)
	}
}

func TestReconcilerPayoutFailedRecreditsOnce(t *testing.T) {
	e := newEnv(t)
	athleteID := uuid.New()
	e.seedAccount(t, athleteID, 5000, 0)

	amt := int64(5000)
	payout, err := e.settlement.RequestPayout(e.dbc(), athleteID, &amt, types.PayoutMethodStandard)
	if err != nil {
		t.Fatalf("RequestPayout: %v", err)
	}
	balance, _ := e.settlement.GetAthleteBalance(e.dbc(), athleteID)
	if balance.AvailableBalance != 0 {
		t.Fatalf("balance after payout request: %d, want 0", balance.AvailableBalance)
	}

	event := makeEvent(t, "payout.failed", map[string]any{
		"id": payout.StripePayoutID, "status": "failed", "failure_message": "account closed",
	})
	for i := 0; i < 3; i++ {
		if err := e.webhooks.HandleEvent(e.dbc(), event); err != nil {
			t.Fatalf("HandleEvent (%d): %v", i, err)
		}
	}

	got, _ := e.payouts.GetByID(e.dbc(), payout.ID)
	if got.Status != types.PayoutStatusFailed {
		t.Fatalf("payout status %s, want failed", got.Status)
	}
	balance, _ = e.settlement.GetAthleteBalance(e.dbc(), athleteID)
	if balance.AvailableBalance != 5000 {
		t.Fatalf("balance after 3 failure replays: %d, want 5000 (re-credited once)", balance.AvailableBalance)
	}
}

func TestReconcilerAccountUpdated(t *testing.T) {
	e := newEnv(t)
	athleteID := uuid.New()
	account := e.seedAccount(t, athleteID, 0, 0)

	event := makeEvent(t, "account.updated", map[string]any{
		"id": account.StripeAccountID, "charges_enabled": true, "payouts_enabled": false,
	})
	if err := e.webhooks.HandleEvent(e.dbc(), event); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	got, _ := e.accounts.GetByAthleteID(e.dbc(), athleteID)
	if !got.ChargesEnabled || got.PayoutsEnabled {
		t.Fatalf("capabilities after event: charges=%v payouts=%v", got.ChargesEnabled, got.PayoutsEnabled)
	}
}

func TestReconcilerChargeRefunded(t *testing.T) {
	e := newEnv(t)
	deal := e.seedDeal(t, 10000, types.DealStatusAccepted)
	e.seedAccount(t, deal.AthleteUserID, 0, 0)

	payment, err := e.settlement.ExecutePayment(e.dbc(), deal.ID, "pm_card_visa")
	if err != nil {
		t.Fatalf("ExecutePayment: %v", err)
	}

	event := makeEvent(t, "charge.refunded", map[string]any{
		"id": "ch_1", "payment_intent": payment.StripePaymentIntentID, "refunded": true, "amount_refunded": 10000,
	})
	for i := 0; i < 2; i++ {
		if err := e.webhooks.HandleEvent(e.dbc(), event); err != nil {
			t.Fatalf("HandleEvent (%d): %v", i, err)
		}
	}
	got, _ := e.payments.GetByID(e.dbc(), payment.ID)
	if got.Status != types.PaymentStatusRefunded {
		t.Fatalf("payment status %s, want refunded", got.Status)
	}
}

func TestReconcilerUnknownEventAcked(t *testing.T) {
	e := newEnv(t)
	for i, eventType := range []string{"customer.created", "invoice.finalized", fmt.Sprintf("made.up.%d", time.Now().Unix())} {
		event := makeEvent(t, eventType, map[string]any{"id": "obj_1"})
		if err := e.webhooks.HandleEvent(e.dbc(), event); err != nil {
			t.Fatalf("HandleEvent (%d %s): unknown event returned error %v", i, eventType, err)
		}
	}
}
