package app

import (
	"gorm.io/gorm"

	"github.com/athletelink/athletelink-backend/internal/data/repos"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type Repos struct {
	Deal repos.DealRepo

	Contract          repos.ContractRepo
	ContractSignature repos.ContractSignatureRepo

	Payment          repos.PaymentRepo
	Payout           repos.PayoutRepo
	ConnectedAccount repos.ConnectedAccountRepo
	Earnings         repos.EarningsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Deal: repos.NewDealRepo(db, log),

		Contract:          repos.NewContractRepo(db, log),
		ContractSignature: repos.NewContractSignatureRepo(db, log),

		Payment:          repos.NewPaymentRepo(db, log),
		Payout:           repos.NewPayoutRepo(db, log),
		ConnectedAccount: repos.NewConnectedAccountRepo(db, log),
		Earnings:         repos.NewEarningsRepo(db, log),
	}
}
