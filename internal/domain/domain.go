package domain

import (
	"github.com/athletelink/athletelink-backend/internal/domain/contracts"
	"github.com/athletelink/athletelink-backend/internal/domain/deals"
	"github.com/athletelink/athletelink-backend/internal/domain/payments"
)

type Deal = deals.Deal
type Contract = contracts.Contract
type ContractSignature = contracts.ContractSignature
type Payment = payments.Payment
type Payout = payments.Payout
type ConnectedPayoutAccount = payments.ConnectedPayoutAccount
type EarningsRecord = payments.EarningsRecord

const (
	DealStatusPending   = deals.DealStatusPending
	DealStatusAccepted  = deals.DealStatusAccepted
	DealStatusPaid      = deals.DealStatusPaid
	DealStatusCancelled = deals.DealStatusCancelled
	DealStatusRejected  = deals.DealStatusRejected
	DealStatusExpired   = deals.DealStatusExpired

	ContractStatusDraft            = contracts.ContractStatusDraft
	ContractStatusPendingSignature = contracts.ContractStatusPendingSignature
	ContractStatusPartiallySigned  = contracts.ContractStatusPartiallySigned
	ContractStatusFullySigned      = contracts.ContractStatusFullySigned
	ContractStatusCancelled        = contracts.ContractStatusCancelled
	ContractStatusVoided           = contracts.ContractStatusVoided

	PartyAthlete  = contracts.PartyAthlete
	PartyBrand    = contracts.PartyBrand
	PartyGuardian = contracts.PartyGuardian
	PartyWitness  = contracts.PartyWitness

	SignatureStatusPending  = contracts.SignatureStatusPending
	SignatureStatusSigned   = contracts.SignatureStatusSigned
	SignatureStatusDeclined = contracts.SignatureStatusDeclined

	PaymentStatusPending   = payments.PaymentStatusPending
	PaymentStatusSucceeded = payments.PaymentStatusSucceeded
	PaymentStatusFailed    = payments.PaymentStatusFailed
	PaymentStatusRefunded  = payments.PaymentStatusRefunded

	PayoutStatusPending   = payments.PayoutStatusPending
	PayoutStatusInTransit = payments.PayoutStatusInTransit
	PayoutStatusPaid      = payments.PayoutStatusPaid
	PayoutStatusFailed    = payments.PayoutStatusFailed
	PayoutStatusCanceled  = payments.PayoutStatusCanceled

	PayoutMethodStandard = payments.PayoutMethodStandard
	PayoutMethodInstant  = payments.PayoutMethodInstant
)
