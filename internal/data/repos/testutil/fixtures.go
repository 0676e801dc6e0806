package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
)

func SeedDeal(tb testing.TB, ctx context.Context, tx *gorm.DB, amount int64, status string) *types.Deal {
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
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed deal: %v", err)
	}
	return d
}

func SeedContract(tb testing.TB, ctx context.Context, tx *gorm.DB, dealID uuid.UUID, status string) *types.Contract {
	tb.Helper()
	c := &types.Contract{
		ID:                 uuid.New(),
		DealID:             dealID,
		TemplateKind:       "social_media_promotion",
		CompensationAmount: 10000,
		Currency:           "usd",
		Clauses:            []byte(`["exclusivity for 30 days"]`),
		Status:             status,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed contract: %v", err)
	}
	return c
}

func SeedSignature(tb testing.TB, ctx context.Context, tx *gorm.DB, contractID uuid.UUID, party, status string) *types.ContractSignature {
	tb.Helper()
	s := &types.ContractSignature{
		ID:              uuid.New(),
		ContractID:      contractID,
		PartyType:       party,
		SignerName:      "Sam " + party,
		SignerEmail:     party + "@example.com",
		SignatureStatus: status,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed signature: %v", err)
	}
	return s
}

func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, athleteID uuid.UUID, available, pending int64) *types.ConnectedPayoutAccount {
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
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}
