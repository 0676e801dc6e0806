package contracts

import (
	"time"

	"github.com/google/uuid"
)

const (
	PartyAthlete  = "athlete"
	PartyBrand    = "brand"
	PartyGuardian = "guardian"
	PartyWitness  = "witness"
)

const (
	SignatureStatusPending  = "pending"
	SignatureStatusSigned   = "signed"
	SignatureStatusDeclined = "declined"
)

// ContractSignature is one required party's signature slot. Created atomically
// with its contract; the only mutation is the single terminal transition
// pending -> signed or pending -> declined.
type ContractSignature struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ContractID uuid.UUID `gorm:"type:uuid;not null;index:idx_signature_contract_party,unique,priority:1" json:"contract_id"`

	// athlete|brand|guardian|witness
	PartyType string `gorm:"column:party_type;not null;index:idx_signature_contract_party,unique,priority:2" json:"party_type"`

	SignerUserID uuid.UUID `gorm:"type:uuid;column:signer_user_id" json:"signer_user_id"`
	SignerName   string    `gorm:"column:signer_name" json:"signer_name"`
	SignerEmail  string    `gorm:"column:signer_email" json:"signer_email"`

	// SignaturePayload is the captured signature artifact (typed name, drawn
	// strokes reference, or click-through acknowledgment token).
	SignaturePayload string `gorm:"column:signature_payload;type:text" json:"signature_payload,omitempty"`
	SignatureMethod  string `gorm:"column:signature_method" json:"signature_method,omitempty"`

	// pending|signed|declined
	SignatureStatus string `gorm:"column:signature_status;not null;index" json:"signature_status"`

	SignedAt      *time.Time `gorm:"column:signed_at" json:"signed_at,omitempty"`
	DeclinedAt    *time.Time `gorm:"column:declined_at" json:"declined_at,omitempty"`
	DeclineReason string     `gorm:"column:decline_reason" json:"decline_reason,omitempty"`

	OriginAddr string `gorm:"column:origin_addr" json:"origin_addr,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ContractSignature) TableName() string { return "contract_signature" }

// CoreParty reports whether a decline by this party is fatal to the agreement.
func CoreParty(partyType string) bool {
	return partyType == PartyAthlete || partyType == PartyBrand
}
