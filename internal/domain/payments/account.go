package payments

import (
	"time"

	"github.com/google/uuid"
)

// ConnectedPayoutAccount is the payee's account at the payment processor.
// Balances are minor currency units and never go negative: pending grows on
// payment success, available grows only by settlement from pending, and
// available shrinks only by payout requests.
type ConnectedPayoutAccount struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AthleteUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"athlete_user_id"`

	StripeAccountID string `gorm:"column:stripe_account_id;not null;uniqueIndex" json:"stripe_account_id"`

	ChargesEnabled bool `gorm:"column:charges_enabled;not null;default:false" json:"charges_enabled"`
	PayoutsEnabled bool `gorm:"column:payouts_enabled;not null;default:false" json:"payouts_enabled"`

	AvailableBalance int64 `gorm:"column:available_balance;not null;default:0" json:"available_balance"`
	PendingBalance   int64 `gorm:"column:pending_balance;not null;default:0" json:"pending_balance"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ConnectedPayoutAccount) TableName() string { return "connected_payout_account" }
