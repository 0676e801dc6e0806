package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/athletelink/athletelink-backend/internal/data/repos"
	"github.com/athletelink/athletelink-backend/internal/db"
	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
	"github.com/athletelink/athletelink-backend/internal/platform/stripegw"
)

var (
	memDBSeq int64

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// testDB opens a fresh in-memory sqlite database. cache=shared with a single
// connection lets concurrent goroutines exercise the conditional writes while
// sharing one schema.
func testDB(tb testing.TB) *gorm.DB {
	tb.Helper()
	name := fmt.Sprintf("svc_test_%d", atomic.AddInt64(&memDBSeq, 1))
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return gdb
}

// env bundles everything a service test needs.
type env struct {
	db       *gorm.DB
	log      *logger.Logger
	gateway  *stripegw.Fake
	deals    repos.DealRepo
	payments repos.PaymentRepo
	accounts repos.ConnectedAccountRepo
	payouts  repos.PayoutRepo
	earnings repos.EarningsRepo

	contracts  ContractService
	settlement SettlementService
	webhooks   WebhookService
}

func newEnv(tb testing.TB) *env {
	tb.Helper()
	gdb := testDB(tb)
	log := testLogger(tb)
	gw := stripegw.NewFake()

	dealRepo := repos.NewDealRepo(gdb, log)
	contractRepo := repos.NewContractRepo(gdb, log)
	sigRepo := repos.NewContractSignatureRepo(gdb, log)
	paymentRepo := repos.NewPaymentRepo(gdb, log)
	accountRepo := repos.NewConnectedAccountRepo(gdb, log)
	payoutRepo := repos.NewPayoutRepo(gdb, log)
	earnRepo := repos.NewEarningsRepo(gdb, log)

	settlement := NewSettlementService(gdb, log, SettlementConfig{FeePercent: 12, HoldPeriod: 7 * 24 * time.Hour},
		gw, dealRepo, paymentRepo, accountRepo, payoutRepo, earnRepo)

	return &env{
		db:         gdb,
		log:        log,
		gateway:    gw,
		deals:      dealRepo,
		payments:   paymentRepo,
		accounts:   accountRepo,
		payouts:    payoutRepo,
		earnings:   earnRepo,
		contracts:  NewContractService(gdb, log, dealRepo, contractRepo, sigRepo, BuiltinClauseTemplates()),
		settlement: settlement,
		webhooks:   NewWebhookService(gdb, log, settlement, paymentRepo, payoutRepo, accountRepo),
	}
}

func (e *env) dbc() dbctx.Context {
	return dbctx.Context{Ctx: context.Background()}
}

func (e *env) seedDeal(tb testing.TB, amount int64, status string) *types.Deal {
	tb.Helper()
	d := &types.Deal{
		ID:            uuid.New(),
		BrandUserID:   uuid.New(),
		AthleteUserID: uuid.New(),
		Title:         "spring campaign",
		Amount:        amount,
		Currency:      "usd",
		Status:        status,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	if err := e.db.Create(d).Error; err != nil {
		tb.Fatalf("seed deal: %v", err)
	}
	return d
}

func (e *env) seedAccount(tb testing.TB, athleteID uuid.UUID, available, pending int64) *types.ConnectedPayoutAccount {
	tb.Helper()
	a := &types.ConnectedPayoutAccount{
		ID:               uuid.New(),
		AthleteUserID:    athleteID,
		StripeAccountID:  "acct_" + uuid.NewString()[:8],
		ChargesEnabled:   true,
		PayoutsEnabled:   true,
		AvailableBalance: available,
		PendingBalance:   pending,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}
	if err := e.db.Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}

// generateActiveContract seeds a deal, generates a contract and sends it for
// signature.
func (e *env) generateActiveContract(tb testing.TB, requiresGuardian, requiresWitness bool) (*types.Deal, *ContractView) {
	tb.Helper()
	deal := e.seedDeal(tb, 10000, types.DealStatusAccepted)
	view, err := e.contracts.Generate(e.dbc(), GenerateContractInput{
		DealID:       deal.ID,
		TemplateKind: "social_media_promotion",
		Parties: []ContractPartyInput{
			{PartyType: types.PartyAthlete, Name: "Sam Athlete", Email: "sam@example.com"},
			{PartyType: types.PartyBrand, Name: "Pat Brand", Email: "pat@brand.example.com"},
		},
		RequiresGuardianSignature: requiresGuardian,
		RequiresWitness:           requiresWitness,
	})
	if err != nil {
		tb.Fatalf("Generate: %v", err)
	}
	if _, err := e.contracts.SendForSignature(e.dbc(), view.Contract.ID); err != nil {
		tb.Fatalf("SendForSignature: %v", err)
	}
	return deal, view
}
