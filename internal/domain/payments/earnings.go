package payments

import (
	"time"

	"github.com/google/uuid"
)

// EarningsRecord is the per-(athlete, year, month) cumulative earnings
// aggregate. Totals are incremented only by successful payments and never
// decremented.
type EarningsRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AthleteUserID uuid.UUID `gorm:"type:uuid;not null;index:idx_earnings_athlete_period,unique,priority:1" json:"athlete_user_id"`

	Year  int `gorm:"column:year;not null;index:idx_earnings_athlete_period,unique,priority:2" json:"year"`
	Month int `gorm:"column:month;not null;index:idx_earnings_athlete_period,unique,priority:3" json:"month"`

	GrossTotal int64 `gorm:"column:gross_total;not null;default:0" json:"gross_total"`
	FeeTotal   int64 `gorm:"column:fee_total;not null;default:0" json:"fee_total"`
	NetTotal   int64 `gorm:"column:net_total;not null;default:0" json:"net_total"`

	DealsCompleted int `gorm:"column:deals_completed;not null;default:0" json:"deals_completed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EarningsRecord) TableName() string { return "earnings_record" }
