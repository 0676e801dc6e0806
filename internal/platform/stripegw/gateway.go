package stripegw

import (
	"context"
	"time"
)

// Intent/payout statuses as the processor reports them.
const (
	IntentStatusSucceeded             = "succeeded"
	IntentStatusProcessing            = "processing"
	IntentStatusRequiresConfirmation  = "requires_confirmation"
	IntentStatusRequiresPaymentMethod = "requires_payment_method"

	PayoutStatusPending   = "pending"
	PayoutStatusInTransit = "in_transit"
	PayoutStatusPaid      = "paid"
	PayoutStatusFailed    = "failed"
)

type PaymentIntent struct {
	ID                 string
	Amount             int64
	Currency           string
	ApplicationFee     int64
	DestinationAccount string
	Status             string
}

type Payout struct {
	ID          string
	Amount      int64
	Currency    string
	Status      string
	Method      string
	ArrivalDate *time.Time
}

type Account struct {
	ID             string
	Email          string
	Country        string
	ChargesEnabled bool
	PayoutsEnabled bool
}

type Balance struct {
	Available int64
	Pending   int64
}

type CreatePaymentIntentRequest struct {
	Amount             int64
	Currency           string
	DestinationAccount string
	ApplicationFee     int64
	DealRef            string
}

type CreatePayoutRequest struct {
	AccountRef string
	Amount     int64
	Currency   string
	Method     string // standard|instant
}

type CreateAccountRequest struct {
	Email   string
	Country string
}

type UpdateAccountRequest struct {
	Email *string
}

// Gateway is the boundary to the external payment processor. Implementations
// must return apierr-typed errors: gateway_declined for payment-method level
// failures, gateway_unavailable for transient infrastructure failures. A
// gateway_unavailable outcome after a confirm call is ambiguous; the webhook
// reconciler supplies the eventual truth.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req CreatePaymentIntentRequest) (*PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, intentRef, paymentMethodRef string) (*PaymentIntent, error)
	CreatePayout(ctx context.Context, req CreatePayoutRequest) (*Payout, error)
	GetAccountBalance(ctx context.Context, accountRef string) (*Balance, error)
	CreateConnectedAccount(ctx context.Context, req CreateAccountRequest) (*Account, error)
	UpdateConnectedAccount(ctx context.Context, accountRef string, req UpdateAccountRequest) (*Account, error)
}
