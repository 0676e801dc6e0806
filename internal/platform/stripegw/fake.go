package stripegw

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/athletelink/athletelink-backend/internal/platform/apierr"
)

// Fake is an in-memory Gateway for tests and local development. Failure
// behavior is scripted through the Fail* fields and through magic payment
// method refs: "pm_declined" declines, "pm_unreachable" simulates an outage.
type Fake struct {
	mu       sync.Mutex
	seq      int
	intents  map[string]*PaymentIntent
	payouts  map[string]*Payout
	accounts map[string]*Account

	FailNextPayout  error
	FailNextAccount error
	Balances        map[string]Balance
}

func NewFake() *Fake {
	return &Fake{
		intents:  make(map[string]*PaymentIntent),
		payouts:  make(map[string]*Payout),
		accounts: make(map[string]*Account),
		Balances: make(map[string]Balance),
	}
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s_fake%06d", prefix, f.seq)
}

func (f *Fake) CreatePaymentIntent(_ context.Context, req CreatePaymentIntentRequest) (*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pi := &PaymentIntent{
		ID:                 f.nextID("pi"),
		Amount:             req.Amount,
		Currency:           req.Currency,
		ApplicationFee:     req.ApplicationFee,
		DestinationAccount: req.DestinationAccount,
		Status:             IntentStatusRequiresConfirmation,
	}
	f.intents[pi.ID] = pi
	return clonedIntent(pi), nil
}

func (f *Fake) ConfirmPaymentIntent(_ context.Context, intentRef, paymentMethodRef string) (*PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pi, ok := f.intents[intentRef]
	if !ok {
		return nil, apierr.New(apierr.KindGatewayDeclined, "no such payment intent")
	}
	switch {
	case strings.Contains(paymentMethodRef, "unreachable"):
		return nil, apierr.New(apierr.KindGatewayUnavailable, "simulated outage")
	case strings.Contains(paymentMethodRef, "declined"):
		pi.Status = IntentStatusRequiresPaymentMethod
		return nil, apierr.New(apierr.KindGatewayDeclined, "card_declined")
	}
	pi.Status = IntentStatusSucceeded
	return clonedIntent(pi), nil
}

func (f *Fake) CreatePayout(_ context.Context, req CreatePayoutRequest) (*Payout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNextPayout != nil {
		err := f.FailNextPayout
		f.FailNextPayout = nil
		return nil, err
	}
	status := PayoutStatusPending
	if req.Method == "instant" {
		status = PayoutStatusPaid
	}
	arrival := time.Now().UTC().Add(48 * time.Hour)
	p := &Payout{
		ID:          f.nextID("po"),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      status,
		Method:      req.Method,
		ArrivalDate: &arrival,
	}
	f.payouts[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *Fake) GetAccountBalance(_ context.Context, accountRef string) (*Balance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := f.Balances[accountRef]
	return &Balance{Available: b.Available, Pending: b.Pending}, nil
}

func (f *Fake) CreateConnectedAccount(_ context.Context, req CreateAccountRequest) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNextAccount != nil {
		err := f.FailNextAccount
		f.FailNextAccount = nil
		return nil, err
	}
	a := &Account{
		ID:      f.nextID("acct"),
		Email:   req.Email,
		Country: req.Country,
		// Express accounts report capabilities immediately in the fake;
		// the real flow flips them via account.updated webhooks.
		ChargesEnabled: true,
		PayoutsEnabled: true,
	}
	f.accounts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (f *Fake) UpdateConnectedAccount(_ context.Context, accountRef string, req UpdateAccountRequest) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[accountRef]
	if !ok {
		return nil, apierr.New(apierr.KindGatewayDeclined, "no such account")
	}
	if req.Email != nil {
		a.Email = *req.Email
	}
	cp := *a
	return &cp, nil
}

// Intent returns the fake's view of an intent, for test assertions.
func (f *Fake) Intent(id string) *PaymentIntent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clonedIntent(f.intents[id])
}

func clonedIntent(pi *PaymentIntent) *PaymentIntent {
	if pi == nil {
		return nil
	}
	cp := *pi
	return &cp
}
