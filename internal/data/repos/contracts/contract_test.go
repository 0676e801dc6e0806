package contracts

import (
	"context"
	"testing"
	"time"

	"github.com/athletelink/athletelink-backend/internal/data/repos/testutil"
	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
)

func TestContractRepoConditionalStatusUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewContractRepo(db, testutil.Logger(t))

	deal := testutil.SeedDeal(t, ctx, tx, 10000, types.DealStatusAccepted)
	c := testutil.SeedContract(t, ctx, tx, deal.ID, types.ContractStatusDraft)

	ok, err := repo.UpdateStatusIf(dbc, c.ID, []string{types.ContractStatusDraft}, types.ContractStatusPendingSignature, nil)
	if err != nil {
		t.Fatalf("UpdateStatusIf: %v", err)
	}
	if !ok {
		t.Fatalf("UpdateStatusIf: expected transition from draft to apply")
	}

	// Second transition from draft must not match.
	ok, err = repo.UpdateStatusIf(dbc, c.ID, []string{types.ContractStatusDraft}, types.ContractStatusPendingSignature, nil)
	if err != nil {
		t.Fatalf("UpdateStatusIf (repeat): %v", err)
	}
	if ok {
		t.Fatalf("UpdateStatusIf (repeat): expected no-op, transition applied twice")
	}

	got, err := repo.GetByID(dbc, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Status != types.ContractStatusPendingSignature {
		t.Fatalf("GetByID: unexpected contract: %+v", got)
	}
}

func TestContractRepoDeleteCompensation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewContractRepo(db, testutil.Logger(t))

	deal := testutil.SeedDeal(t, ctx, tx, 10000, types.DealStatusAccepted)
	c := testutil.SeedContract(t, ctx, tx, deal.ID, types.ContractStatusDraft)

	if err := repo.Delete(dbc, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.GetByID(dbc, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID after delete: expected nil, got %+v", got)
	}
}

func TestContractSignatureRepoTerminalTransitions(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewContractSignatureRepo(db, testutil.Logger(t))

	deal := testutil.SeedDeal(t, ctx, tx, 10000, types.DealStatusAccepted)
	c := testutil.SeedContract(t, ctx, tx, deal.ID, types.ContractStatusPendingSignature)
	sig := testutil.SeedSignature(t, ctx, tx, c.ID, types.PartyAthlete, types.SignatureStatusPending)

	now := time.Now().UTC()
	ok, err := repo.MarkSigned(dbc, sig.ID, "Sam Athlete", "typed", "203.0.113.9", deal.AthleteUserID, now)
	if err != nil {
		t.Fatalf("MarkSigned: %v", err)
	}
	if !ok {
		t.Fatalf("MarkSigned: expected pending signature to sign")
	}

	// Signed slot cannot sign or decline again.
	ok, err = repo.MarkSigned(dbc, sig.ID, "Sam Athlete", "typed", "203.0.113.9", deal.AthleteUserID, now)
	if err != nil {
		t.Fatalf("MarkSigned (repeat): %v", err)
	}
	if ok {
		t.Fatalf("MarkSigned (repeat): terminal transition applied twice")
	}
	ok, err = repo.MarkDeclined(dbc, sig.ID, "changed mind", "203.0.113.9", now)
	if err != nil {
		t.Fatalf("MarkDeclined after sign: %v", err)
	}
	if ok {
		t.Fatalf("MarkDeclined after sign: expected no-op")
	}

	got, err := repo.GetByContractAndParty(dbc, c.ID, types.PartyAthlete)
	if err != nil {
		t.Fatalf("GetByContractAndParty: %v", err)
	}
	if got == nil || got.SignatureStatus != types.SignatureStatusSigned || got.SignedAt == nil {
		t.Fatalf("GetByContractAndParty: unexpected signature: %+v", got)
	}
}
