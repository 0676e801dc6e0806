package repos

import (
	"github.com/athletelink/athletelink-backend/internal/data/repos/contracts"
	"github.com/athletelink/athletelink-backend/internal/data/repos/deals"
	"github.com/athletelink/athletelink-backend/internal/data/repos/payments"
)

type DealRepo = deals.DealRepo

type ContractRepo = contracts.ContractRepo
type ContractSignatureRepo = contracts.ContractSignatureRepo

type PaymentRepo = payments.PaymentRepo
type PayoutRepo = payments.PayoutRepo
type ConnectedAccountRepo = payments.ConnectedAccountRepo
type EarningsRepo = payments.EarningsRepo

var NewDealRepo = deals.NewDealRepo

var NewContractRepo = contracts.NewContractRepo
var NewContractSignatureRepo = contracts.NewContractSignatureRepo

var NewPaymentRepo = payments.NewPaymentRepo
var NewPayoutRepo = payments.NewPayoutRepo
var NewConnectedAccountRepo = payments.NewConnectedAccountRepo
var NewEarningsRepo = payments.NewEarningsRepo
