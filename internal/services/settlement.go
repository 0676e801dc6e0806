package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/athletelink/athletelink-backend/internal/data/repos"
	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/apierr"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
	"github.com/athletelink/athletelink-backend/internal/platform/stripegw"
)

type SettlementConfig struct {
	// FeePercent is the platform's cut of every deal, in whole percent.
	FeePercent int64
	// HoldPeriod is how long a payment's net amount stays pending before it
	// settles to the available bucket.
	HoldPeriod time.Duration
}

type BalanceView struct {
	AthleteUserID    uuid.UUID `json:"athlete_user_id"`
	AvailableBalance int64     `json:"available_balance"`
	PendingBalance   int64     `json:"pending_balance"`
	PayoutsEnabled   bool      `json:"payouts_enabled"`
}

type OnboardAccountInput struct {
	Email   string `json:"email"`
	Country string `json:"country"`
}

type SettlementService interface {
	OnboardPayoutAccount(dbc dbctx.Context, athleteID uuid.UUID, input OnboardAccountInput) (*types.ConnectedPayoutAccount, error)
	ExecutePayment(dbc dbctx.Context, dealID uuid.UUID, paymentMethodRef string) (*types.Payment, error)
	RequestPayout(dbc dbctx.Context, athleteID uuid.UUID, amount *int64, method string) (*types.Payout, error)
	SettleBalance(dbc dbctx.Context, athleteID uuid.UUID) (int64, error)
	GetAthleteBalance(dbc dbctx.Context, athleteID uuid.UUID) (*BalanceView, error)
	GetAthleteEarnings(dbc dbctx.Context, athleteID uuid.UUID, year *int) ([]*types.EarningsRecord, error)

	// ApplyPaymentSuccess applies the four success writes (payment, deal,
	// pending balance, earnings) as one unit. Idempotent: a payment already
	// past pending is a no-op returning false. Shared with the reconciler.
	ApplyPaymentSuccess(dbc dbctx.Context, paymentID uuid.UUID) (bool, error)

	// SettlePayment moves one payment's held net from pending to available.
	SettlePayment(dbc dbctx.Context, paymentID uuid.UUID) (bool, error)
	ListSettleablePayments(dbc dbctx.Context, before time.Time, limit int) ([]*types.Payment, error)
}

type settlementService struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         SettlementConfig
	gateway     stripegw.Gateway
	dealRepo    repos.DealRepo
	paymentRepo repos.PaymentRepo
	accountRepo repos.ConnectedAccountRepo
	payoutRepo  repos.PayoutRepo
	earnRepo    repos.EarningsRepo
}

func NewSettlementService(
	db *gorm.DB,
	log *logger.Logger,
	cfg SettlementConfig,
	gateway stripegw.Gateway,
	dealRepo repos.DealRepo,
	paymentRepo repos.PaymentRepo,
	accountRepo repos.ConnectedAccountRepo,
	payoutRepo repos.PayoutRepo,
	earnRepo repos.EarningsRepo,
) SettlementService {
	if cfg.FeePercent <= 0 {
		cfg.FeePercent = 12
	}
	if cfg.HoldPeriod <= 0 {
		cfg.HoldPeriod = 7 * 24 * time.Hour
	}
	return &settlementService{
		db:          db,
		log:         log.With("service", "SettlementService"),
		cfg:         cfg,
		gateway:     gateway,
		dealRepo:    dealRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		payoutRepo:  payoutRepo,
		earnRepo:    earnRepo,
	}
}

func (ss *settlementService) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return ss.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

func (ss *settlementService) OnboardPayoutAccount(dbc dbctx.Context, athleteID uuid.UUID, input OnboardAccountInput) (*types.ConnectedPayoutAccount, error) {
	if athleteID == uuid.Nil {
		return nil, apierr.New(apierr.KindInvalidArgument, "athlete id required")
	}
	existing, err := ss.accountRepo.GetByAthleteID(dbc, athleteID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payout account")
	}
	if existing != nil {
		return nil, apierr.New(apierr.KindAlreadyProcessed, "athlete %s already has a payout account", athleteID)
	}

	remote, err := ss.gateway.CreateConnectedAccount(dbc.Ctx, stripegw.CreateAccountRequest{
		Email:   input.Email,
		Country: input.Country,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &types.ConnectedPayoutAccount{
		ID:              uuid.New(),
		AthleteUserID:   athleteID,
		StripeAccountID: remote.ID,
		ChargesEnabled:  remote.ChargesEnabled,
		PayoutsEnabled:  remote.PayoutsEnabled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := ss.accountRepo.Create(dbc, account); err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "persist payout account")
	}
	ss.log.Info("Payout account onboarded", "athlete_id", athleteID, "account_ref", remote.ID)
	return account, nil
}

// ExecutePayment runs the synchronous payment path:
//  1. guards (deal accepted, payee account charge-capable),
//  2. claim a pending Payment row so concurrent attempts cannot double-charge,
//  3. create + confirm the gateway intent,
//  4. on success apply the four-write success unit; on decline mark failed.
//
// A gateway_unavailable confirm outcome leaves the payment pending: the
// reconciler resolves it when the gateway's notification arrives.
func (ss *settlementService) ExecutePayment(dbc dbctx.Context, dealID uuid.UUID, paymentMethodRef string) (*types.Payment, error) {
	deal, err := ss.dealRepo.GetByID(dbc, dealID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load deal")
	}
	if deal == nil {
		return nil, apierr.New(apierr.KindNotFound, "deal %s not found", dealID)
	}
	if deal.Status != types.DealStatusAccepted {
		return nil, apierr.New(apierr.KindInvalidStatus, "deal %s is %s, not accepted", dealID, deal.Status)
	}

	account, err := ss.accountRepo.GetByAthleteID(dbc, deal.AthleteUserID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payout account")
	}
	if account == nil || !account.ChargesEnabled {
		return nil, apierr.New(apierr.KindPayoutAccountNotConfigured, "athlete %s has no charge-capable payout account", deal.AthleteUserID)
	}

	fee, net := ComputeFeeSplit(deal.Amount, ss.cfg.FeePercent)

	payment := &types.Payment{
		DealID:        deal.ID,
		BrandUserID:   deal.BrandUserID,
		AthleteUserID: deal.AthleteUserID,
		Amount:        deal.Amount,
		PlatformFee:   fee,
		NetAmount:     net,
		Currency:      deal.Currency,
		Status:        types.PaymentStatusPending,
	}
	claimed, err := ss.paymentRepo.CreateIfNoActive(dbc, payment)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "create payment record")
	}
	if !claimed {
		return nil, apierr.New(apierr.KindAlreadyProcessed, "deal %s already has an active payment", dealID)
	}

	intent, err := ss.gateway.CreatePaymentIntent(dbc.Ctx, stripegw.CreatePaymentIntentRequest{
		Amount:             deal.Amount,
		Currency:           deal.Currency,
		DestinationAccount: account.StripeAccountID,
		ApplicationFee:     fee,
		DealRef:            deal.ID.String(),
	})
	if err != nil {
		ss.failPayment(dbc, payment, err.Error())
		return nil, err
	}
	if err := ss.paymentRepo.SetIntentRef(dbc, payment.ID, intent.ID); err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "record intent ref")
	}
	payment.StripePaymentIntentID = intent.ID

	confirmed, err := ss.gateway.ConfirmPaymentIntent(dbc.Ctx, intent.ID, paymentMethodRef)
	if err != nil {
		if apierr.Is(err, apierr.KindGatewayDeclined) {
			ss.failPayment(dbc, payment, err.Error())
			return nil, err
		}
		// Ambiguous: the confirm may have landed. Leave the payment pending
		// for the reconciler.
		ss.log.Warn("Payment confirm outcome ambiguous", "payment_id", payment.ID, "intent_ref", intent.ID, "error", err)
		return nil, err
	}
	if confirmed.Status != stripegw.IntentStatusSucceeded {
		ss.log.Info("Payment confirm pending gateway settlement", "payment_id", payment.ID, "intent_status", confirmed.Status)
		return payment, nil
	}

	if _, err := ss.ApplyPaymentSuccess(dbc, payment.ID); err != nil {
		return nil, err
	}
	fresh, err := ss.paymentRepo.GetByID(dbc, payment.ID)
	if err != nil || fresh == nil {
		return payment, nil
	}
	return fresh, nil
}

func (ss *settlementService) failPayment(dbc dbctx.Context, payment *types.Payment, reason string) {
	ok, err := ss.paymentRepo.UpdateStatusIf(dbc, payment.ID, []string{types.PaymentStatusPending}, types.PaymentStatusFailed, map[string]interface{}{
		"failure_reason": reason,
	})
	if err != nil {
		ss.log.Error("Failed to mark payment failed", "payment_id", payment.ID, "error", err)
		return
	}
	if ok {
		ss.log.Info("Payment failed", "payment_id", payment.ID, "deal_id", payment.DealID, "reason", reason)
	}
}

func (ss *settlementService) ApplyPaymentSuccess(dbc dbctx.Context, paymentID uuid.UUID) (bool, error) {
	applied := false
	err := ss.inTx(dbc, func(inner dbctx.Context) error {
		payment, err := ss.paymentRepo.GetByID(inner, paymentID)
		if err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payment")
		}
		if payment == nil {
			return apierr.New(apierr.KindNotFound, "payment %s not found", paymentID)
		}

		now := time.Now().UTC()
		settlesAt := now.Add(ss.cfg.HoldPeriod)
		ok, err := ss.paymentRepo.UpdateStatusIf(inner, payment.ID, []string{types.PaymentStatusPending}, types.PaymentStatusSucceeded, map[string]interface{}{
			"paid_at":    now,
			"settles_at": settlesAt,
		})
		if err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "mark payment succeeded")
		}
		if !ok {
			// Already applied (replay) or resolved to failed. Either way the
			// remaining writes must not run again.
			return nil
		}

		if _, err := ss.dealRepo.UpdateStatusIf(inner, payment.DealID, []string{types.DealStatusAccepted}, types.DealStatusPaid); err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "mark deal paid")
		}
		if err := ss.accountRepo.AddPendingBalance(inner, payment.AthleteUserID, payment.NetAmount); err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "credit pending balance")
		}
		if err := ss.earnRepo.Add(inner, payment.AthleteUserID, now.Year(), int(now.Month()), payment.Amount, payment.PlatformFee, payment.NetAmount); err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "accumulate earnings")
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		ss.log.Info("Payment success applied", "payment_id", paymentID)
	}
	return applied, nil
}

func (ss *settlementService) RequestPayout(dbc dbctx.Context, athleteID uuid.UUID, amount *int64, method string) (*types.Payout, error) {
	if method == "" {
		method = types.PayoutMethodStandard
	}
	if method != types.PayoutMethodStandard && method != types.PayoutMethodInstant {
		return nil, apierr.New(apierr.KindInvalidArgument, "unknown payout method %q", method)
	}

	account, err := ss.accountRepo.GetByAthleteID(dbc, athleteID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payout account")
	}
	if account == nil {
		return nil, apierr.New(apierr.KindPayoutAccountNotConfigured, "athlete %s has no payout account", athleteID)
	}
	if !account.PayoutsEnabled {
		return nil, apierr.New(apierr.KindPayoutsNotEnabled, "payouts not enabled for athlete %s", athleteID)
	}

	amt := account.AvailableBalance
	if amount != nil {
		amt = *amount
	}
	if amt <= 0 {
		return nil, apierr.New(apierr.KindInsufficientFunds, "no available balance to pay out")
	}

	// Funds are committed at request time. The guarded decrement is the
	// InsufficientFunds check: a stale read above cannot overdraw.
	ok, err := ss.accountRepo.DecrementAvailableIf(dbc, athleteID, amt)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "reserve payout amount")
	}
	if !ok {
		return nil, apierr.New(apierr.KindInsufficientFunds, "requested %d exceeds available balance", amt)
	}

	remote, err := ss.gateway.CreatePayout(dbc.Ctx, stripegw.CreatePayoutRequest{
		AccountRef: account.StripeAccountID,
		Amount:     amt,
		Currency:   "usd",
		Method:     method,
	})
	if err != nil {
		// Compensate the reservation so the funds are not stranded.
		if credErr := ss.accountRepo.AddAvailableBalance(dbc, athleteID, amt); credErr != nil {
			ss.log.Error("Failed to re-credit reserved payout amount", "athlete_id", athleteID, "amount", amt, "error", credErr)
		}
		return nil, err
	}

	status := types.PayoutStatusPending
	if method == types.PayoutMethodInstant || remote.Status == stripegw.PayoutStatusPaid {
		status = types.PayoutStatusPaid
	}
	now := time.Now().UTC()
	payout := &types.Payout{
		ID:             uuid.New(),
		AthleteUserID:  athleteID,
		Amount:         amt,
		Currency:       "usd",
		StripePayoutID: remote.ID,
		Status:         status,
		Method:         method,
		ArrivalDate:    remote.ArrivalDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := ss.payoutRepo.Create(dbc, payout); err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "persist payout")
	}
	ss.log.Info("Payout requested", "athlete_id", athleteID, "payout_id", payout.ID, "amount", amt, "method", method, "status", status)
	return payout, nil
}

func (ss *settlementService) SettleBalance(dbc dbctx.Context, athleteID uuid.UUID) (int64, error) {
	if athleteID == uuid.Nil {
		return 0, apierr.New(apierr.KindInvalidArgument, "athlete id required")
	}
	due, err := ss.paymentRepo.ListSettleable(dbc, &athleteID, time.Now().UTC(), 0)
	if err != nil {
		return 0, apierr.Wrap(apierr.KindGatewayUnavailable, err, "list settleable payments")
	}
	var moved int64
	for _, p := range due {
		ok, err := ss.SettlePayment(dbc, p.ID)
		if err != nil {
			return moved, err
		}
		if ok {
			moved += p.NetAmount
		}
	}
	if moved > 0 {
		ss.log.Info("Balance settled", "athlete_id", athleteID, "amount", moved, "payments", len(due))
	}
	return moved, nil
}

// SettlePayment relocates one payment's net amount from pending to available.
// Both writes run in one transaction; MarkSettled's settled_at guard makes
// replays no-ops, and the guarded move refuses to take pending negative.
func (ss *settlementService) SettlePayment(dbc dbctx.Context, paymentID uuid.UUID) (bool, error) {
	settled := false
	err := ss.inTx(dbc, func(inner dbctx.Context) error {
		payment, err := ss.paymentRepo.GetByID(inner, paymentID)
		if err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payment")
		}
		if payment == nil {
			return apierr.New(apierr.KindNotFound, "payment %s not found", paymentID)
		}
		ok, err := ss.paymentRepo.MarkSettled(inner, payment.ID, time.Now().UTC())
		if err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "mark payment settled")
		}
		if !ok {
			return nil
		}
		moved, err := ss.accountRepo.MovePendingToAvailable(inner, payment.AthleteUserID, payment.NetAmount)
		if err != nil {
			return apierr.Wrap(apierr.KindGatewayUnavailable, err, "move pending to available")
		}
		if !moved {
			ss.log.Error("Pending balance short for settlement", "payment_id", payment.ID, "athlete_id", payment.AthleteUserID, "net", payment.NetAmount)
			return apierr.New(apierr.KindGatewayUnavailable, "pending balance short for payment %s", payment.ID)
		}
		settled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return settled, nil
}

func (ss *settlementService) ListSettleablePayments(dbc dbctx.Context, before time.Time, limit int) ([]*types.Payment, error) {
	return ss.paymentRepo.ListSettleable(dbc, nil, before, limit)
}

func (ss *settlementService) GetAthleteBalance(dbc dbctx.Context, athleteID uuid.UUID) (*BalanceView, error) {
	account, err := ss.accountRepo.GetByAthleteID(dbc, athleteID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load payout account")
	}
	if account == nil {
		return nil, apierr.New(apierr.KindNotFound, "athlete %s has no payout account", athleteID)
	}
	return &BalanceView{
		AthleteUserID:    athleteID,
		AvailableBalance: account.AvailableBalance,
		PendingBalance:   account.PendingBalance,
		PayoutsEnabled:   account.PayoutsEnabled,
	}, nil
}

func (ss *settlementService) GetAthleteEarnings(dbc dbctx.Context, athleteID uuid.UUID, year *int) ([]*types.EarningsRecord, error) {
	if athleteID == uuid.Nil {
		return nil, apierr.New(apierr.KindInvalidArgument, "athlete id required")
	}
	records, err := ss.earnRepo.ListByAthlete(dbc, athleteID, year)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load earnings")
	}
	return records, nil
}
