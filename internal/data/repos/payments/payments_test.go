package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/athletelink/athletelink-backend/internal/data/repos/testutil"
	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
)

func TestPaymentRepoCreateIfNoActive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewPaymentRepo(db, testutil.Logger(t))
	deal := testutil.SeedDeal(t, ctx, tx, 10000, types.DealStatusAccepted)

	row := &types.Payment{
		DealID:        deal.ID,
		BrandUserID:   deal.BrandUserID,
		AthleteUserID: deal.AthleteUserID,
		Amount:        10000,
		PlatformFee:   1200,
		NetAmount:     8800,
		Currency:      "usd",
		Status:        types.PaymentStatusPending,
	}
	ok, err := repo.CreateIfNoActive(dbc, row)
	if err != nil {
		t.Fatalf("CreateIfNoActive: %v", err)
	}
	if !ok {
		t.Fatalf("CreateIfNoActive: expected first attempt to claim the deal")
	}

	// A second attempt against the same deal must be rejected while the first
	// payment is pending.
	dup := &types.Payment{
		DealID:        deal.ID,
		BrandUserID:   deal.BrandUserID,
		AthleteUserID: deal.AthleteUserID,
		Amount:        10000,
		PlatformFee:   1200,
		NetAmount:     8800,
		Currency:      "usd",
		Status:        types.PaymentStatusPending,
	}
	ok, err = repo.CreateIfNoActive(dbc, dup)
	if err != nil {
		t.Fatalf("CreateIfNoActive (dup): %v", err)
	}
	if ok {
		t.Fatalf("CreateIfNoActive (dup): two active payments for one deal")
	}

	// After the first fails, a retry creates a fresh record.
	ok, err = repo.UpdateStatusIf(dbc, row.ID, []string{types.PaymentStatusPending}, types.PaymentStatusFailed, map[string]interface{}{
		"failure_reason": "card_declined",
	})
	if err != nil || !ok {
		t.Fatalf("UpdateStatusIf to failed: ok=%v err=%v", ok, err)
	}
	retry := &types.Payment{
		DealID:        deal.ID,
		BrandUserID:   deal.BrandUserID,
		AthleteUserID: deal.AthleteUserID,
		Amount:        10000,
		PlatformFee:   1200,
		NetAmount:     8800,
		Currency:      "usd",
		Status:        types.PaymentStatusPending,
	}
	ok, err = repo.CreateIfNoActive(dbc, retry)
	if err != nil {
		t.Fatalf("CreateIfNoActive (retry): %v", err)
	}
	if !ok {
		t.Fatalf("CreateIfNoActive (retry): expected retry after failure to claim")
	}
}

func TestConnectedAccountRepoBalanceGuards(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewConnectedAccountRepo(db, testutil.Logger(t))
	athleteID := uuid.New()
	testutil.SeedAccount(t, ctx, tx, athleteID, 500, 300)

	// Decrement beyond available must not match.
	ok, err := repo.DecrementAvailableIf(dbc, athleteID, 501)
	if err != nil {
		t.Fatalf("DecrementAvailableIf: %v", err)
	}
	if ok {
		t.Fatalf("DecrementAvailableIf: overdraw applied")
	}

	ok, err = repo.DecrementAvailableIf(dbc, athleteID, 500)
	if err != nil || !ok {
		t.Fatalf("DecrementAvailableIf (exact): ok=%v err=%v", ok, err)
	}

	// Move more than pending must not match.
	ok, err = repo.MovePendingToAvailable(dbc, athleteID, 301)
	if err != nil {
		t.Fatalf("MovePendingToAvailable: %v", err)
	}
	if ok {
		t.Fatalf("MovePendingToAvailable: moved more than pending")
	}

	ok, err = repo.MovePendingToAvailable(dbc, athleteID, 300)
	if err != nil || !ok {
		t.Fatalf("MovePendingToAvailable (exact): ok=%v err=%v", ok, err)
	}

	acct, err := repo.GetByAthleteID(dbc, athleteID)
	if err != nil {
		t.Fatalf("GetByAthleteID: %v", err)
	}
	if acct.AvailableBalance != 300 || acct.PendingBalance != 0 {
		t.Fatalf("balances: available=%d pending=%d", acct.AvailableBalance, acct.PendingBalance)
	}
}

func TestEarningsRepoUpsertAccumulates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewEarningsRepo(db, testutil.Logger(t))
	athleteID := uuid.New()

	if err := repo.Add(dbc, athleteID, 2026, 8, 10000, 1200, 8800); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := repo.Add(dbc, athleteID, 2026, 8, 5000, 600, 4400); err != nil {
		t.Fatalf("Add (second): %v", err)
	}

	rec, err := repo.GetByPeriod(dbc, athleteID, 2026, 8)
	if err != nil {
		t.Fatalf("GetByPeriod: %v", err)
	}
	if rec == nil {
		t.Fatalf("GetByPeriod: missing record")
	}
	if rec.GrossTotal != 15000 || rec.FeeTotal != 1800 || rec.NetTotal != 13200 || rec.DealsCompleted != 2 {
		t.Fatalf("totals: %+v", rec)
	}
}

func TestPaymentRepoSettleable(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewPaymentRepo(db, testutil.Logger(t))
	deal := testutil.SeedDeal(t, ctx, tx, 10000, types.DealStatusAccepted)

	row := &types.Payment{
		DealID:        deal.ID,
		BrandUserID:   deal.BrandUserID,
		AthleteUserID: deal.AthleteUserID,
		Amount:        10000,
		PlatformFee:   1200,
		NetAmount:     8800,
		Currency:      "usd",
		Status:        types.PaymentStatusPending,
	}
	if ok, err := repo.CreateIfNoActive(dbc, row); err != nil || !ok {
		t.Fatalf("CreateIfNoActive: ok=%v err=%v", ok, err)
	}

	due := time.Now().UTC().Add(-time.Hour)
	ok, err := repo.UpdateStatusIf(dbc, row.ID, []string{types.PaymentStatusPending}, types.PaymentStatusSucceeded, map[string]interface{}{
		"paid_at":    time.Now().UTC(),
		"settles_at": due,
	})
	if err != nil || !ok {
		t.Fatalf("UpdateStatusIf to succeeded: ok=%v err=%v", ok, err)
	}

	list, err := repo.ListSettleable(dbc, &deal.AthleteUserID, time.Now().UTC(), 10)
	if err != nil {
		t.Fatalf("ListSettleable: %v", err)
	}
	if len(list) != 1 || list[0].ID != row.ID {
		t.Fatalf("ListSettleable: unexpected result: %+v", list)
	}

	if ok, err := repo.MarkSettled(dbc, row.ID, time.Now().UTC()); err != nil || !ok {
		t.Fatalf("MarkSettled: ok=%v err=%v", ok, err)
	}
	// Settling twice is a no-op.
	if ok, err := repo.MarkSettled(dbc, row.ID, time.Now().UTC()); err != nil || ok {
		t.Fatalf("MarkSettled (repeat): ok=%v err=%v", ok, err)
	}
}
