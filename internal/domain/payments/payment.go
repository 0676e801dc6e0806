package payments

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment is one attempted money movement for a deal. Invariants:
// PlatformFee + NetAmount == Amount, and at most one non-failed payment per
// deal (re-attempts after a failure create a new row; a failed row is never
// mutated back to succeeded).
type Payment struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealID uuid.UUID `gorm:"type:uuid;not null;index" json:"deal_id"`

	BrandUserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"brand_user_id"`
	AthleteUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"athlete_user_id"`

	// All amounts in minor currency units.
	Amount      int64  `gorm:"column:amount;not null" json:"amount"`
	PlatformFee int64  `gorm:"column:platform_fee;not null" json:"platform_fee"`
	NetAmount   int64  `gorm:"column:net_amount;not null" json:"net_amount"`
	Currency    string `gorm:"column:currency;not null;default:usd" json:"currency"`

	StripePaymentIntentID string `gorm:"column:stripe_payment_intent_id;index" json:"stripe_payment_intent_id,omitempty"`

	// pending|succeeded|failed|refunded
	Status        string `gorm:"column:status;not null;index" json:"status"`
	FailureReason string `gorm:"column:failure_reason" json:"failure_reason,omitempty"`

	PaidAt *time.Time `gorm:"column:paid_at" json:"paid_at,omitempty"`

	// SettlesAt is when the gateway hold on the net amount elapses; SettledAt
	// records the pending->available move so it is applied exactly once.
	SettlesAt *time.Time `gorm:"column:settles_at;index" json:"settles_at,omitempty"`
	SettledAt *time.Time `gorm:"column:settled_at" json:"settled_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Payment) TableName() string { return "payment" }
