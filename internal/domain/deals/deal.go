package deals

import (
	"time"

	"github.com/google/uuid"
)

const (
	DealStatusPending   = "pending"
	DealStatusAccepted  = "accepted"
	DealStatusPaid      = "paid"
	DealStatusCancelled = "cancelled"
	DealStatusRejected  = "rejected"
	DealStatusExpired   = "expired"
)

// Deal is a priced engagement between a brand (payer) and an athlete (payee).
// Deal CRUD lives outside this service; the settlement engine only reads deals
// and writes status=paid on payment success.
type Deal struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	BrandUserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"brand_user_id"`
	AthleteUserID uuid.UUID `gorm:"type:uuid;not null;index" json:"athlete_user_id"`

	Title string `gorm:"column:title" json:"title"`

	// Amount is the gross deal value in minor currency units.
	Amount   int64  `gorm:"column:amount;not null" json:"amount"`
	Currency string `gorm:"column:currency;not null;default:usd" json:"currency"`

	// pending|accepted|paid|cancelled|rejected|expired
	Status string `gorm:"column:status;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Deal) TableName() string { return "deal" }
