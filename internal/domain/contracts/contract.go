package contracts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ContractStatusDraft            = "draft"
	ContractStatusPendingSignature = "pending_signature"
	ContractStatusPartiallySigned  = "partially_signed"
	ContractStatusFullySigned      = "fully_signed"
	ContractStatusCancelled        = "cancelled"
	ContractStatusVoided           = "voided"
)

// Contract is the legal agreement tied to exactly one deal. Status is derived
// from the signature set (see DeriveStatus); it is never written independently
// except for the terminal cancelled/voided transitions.
type Contract struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DealID uuid.UUID `gorm:"type:uuid;not null;index" json:"deal_id"`

	TemplateKind string `gorm:"column:template_kind;not null" json:"template_kind"`

	EffectiveDate  *time.Time `gorm:"column:effective_date" json:"effective_date,omitempty"`
	ExpirationDate *time.Time `gorm:"column:expiration_date" json:"expiration_date,omitempty"`

	// CompensationAmount mirrors the deal amount at contract generation time,
	// in minor currency units.
	CompensationAmount int64  `gorm:"column:compensation_amount;not null" json:"compensation_amount"`
	Currency           string `gorm:"column:currency;not null;default:usd" json:"currency"`

	// Clauses is the resolved clause list: template clauses plus any
	// deal-specific additions, as a JSON array of strings.
	Clauses datatypes.JSON `gorm:"column:clauses;type:jsonb" json:"clauses"`

	RequiresGuardianSignature bool `gorm:"column:requires_guardian_signature;not null;default:false" json:"requires_guardian_signature"`
	RequiresWitness           bool `gorm:"column:requires_witness;not null;default:false" json:"requires_witness"`

	// draft|pending_signature|partially_signed|fully_signed|cancelled|voided
	Status string `gorm:"column:status;not null;index" json:"status"`

	SignedAt   *time.Time `gorm:"column:signed_at" json:"signed_at,omitempty"`
	VoidedAt   *time.Time `gorm:"column:voided_at" json:"voided_at,omitempty"`
	VoidReason string     `gorm:"column:void_reason" json:"void_reason,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Contract) TableName() string { return "contract" }

// Terminal reports whether no further signature activity is possible.
func (c *Contract) Terminal() bool {
	switch c.Status {
	case ContractStatusFullySigned, ContractStatusCancelled, ContractStatusVoided:
		return true
	}
	return false
}
