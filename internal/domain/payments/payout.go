package payments

import (
	"time"

	"github.com/google/uuid"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusInTransit = "in_transit"
	PayoutStatusPaid      = "paid"
	PayoutStatusFailed    = "failed"
	PayoutStatusCanceled  = "canceled"
)

const (
	PayoutMethodStandard = "standard"
	PayoutMethodInstant  = "instant"
)

// Payout is a withdrawal instruction against a connected payout account. The
// available balance is decremented when the payout is requested, not when the
// gateway eventually settles it.
type Payout struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AthleteUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"athlete_user_id"`

	Amount   int64  `gorm:"column:amount;not null" json:"amount"`
	Currency string `gorm:"column:currency;not null;default:usd" json:"currency"`

	StripePayoutID string `gorm:"column:stripe_payout_id;index" json:"stripe_payout_id,omitempty"`

	// pending|in_transit|paid|failed|canceled
	Status string `gorm:"column:status;not null;index" json:"status"`
	// standard|instant
	Method string `gorm:"column:method;not null" json:"method"`

	ArrivalDate *time.Time `gorm:"column:arrival_date" json:"arrival_date,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Payout) TableName() string { return "payout" }
