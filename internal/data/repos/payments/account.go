package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type ConnectedAccountRepo interface {
	Create(dbc dbctx.Context, row *types.ConnectedPayoutAccount) error
	GetByAthleteID(dbc dbctx.Context, athleteID uuid.UUID) (*types.ConnectedPayoutAccount, error)
	GetByStripeAccountID(dbc dbctx.Context, stripeAccountID string) (*types.ConnectedPayoutAccount, error)

	UpdateCapabilities(dbc dbctx.Context, stripeAccountID string, chargesEnabled, payoutsEnabled bool) (bool, error)

	// Balance mutations are relative SQL increments so concurrent writers
	// accumulate correctly; the guarded variants refuse to take a bucket
	// negative and report that as a false return.
	AddPendingBalance(dbc dbctx.Context, athleteID uuid.UUID, amount int64) error
	AddAvailableBalance(dbc dbctx.Context, athleteID uuid.UUID, amount int64) error
	MovePendingToAvailable(dbc dbctx.Context, athleteID uuid.UUID, amount int64) (bool, error)
	DecrementAvailableIf(dbc dbctx.Context, athleteID uuid.UUID, amount int64) (bool, error)
}

type connectedAccountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConnectedAccountRepo(db *gorm.DB, baseLog *logger.Logger) ConnectedAccountRepo {
	return &connectedAccountRepo{db: db, log: baseLog.With("repo", "ConnectedAccountRepo")}
}

func (r *connectedAccountRepo) Create(dbc dbctx.Context, row *types.ConnectedPayoutAccount) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *connectedAccountRepo) GetByAthleteID(dbc dbctx.Context, athleteID uuid.UUID) (*types.ConnectedPayoutAccount, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if athleteID == uuid.Nil {
		return nil, nil
	}
	var out []*types.ConnectedPayoutAccount
	if err := t.WithContext(dbc.Ctx).Where("athlete_user_id = ?", athleteID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *connectedAccountRepo) GetByStripeAccountID(dbc dbctx.Context, stripeAccountID string) (*types.ConnectedPayoutAccount, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if stripeAccountID == "" {
		return nil, nil
	}
	var out []*types.ConnectedPayoutAccount
	if err := t.WithContext(dbc.Ctx).Where("stripe_account_id = ?", stripeAccountID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *connectedAccountRepo) UpdateCapabilities(dbc dbctx.Context, stripeAccountID string, chargesEnabled, payoutsEnabled bool) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ConnectedPayoutAccount{}).
		Where("stripe_account_id = ?", stripeAccountID).
		Updates(map[string]interface{}{
			"charges_enabled": chargesEnabled,
			"payouts_enabled": payoutsEnabled,
			"updated_at":      time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *connectedAccountRepo) AddPendingBalance(dbc dbctx.Context, athleteID uuid.UUID, amount int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ConnectedPayoutAccount{}).
		Where("athlete_user_id = ?", athleteID).
		Updates(map[string]interface{}{
			"pending_balance": gorm.Expr("pending_balance + ?", amount),
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *connectedAccountRepo) AddAvailableBalance(dbc dbctx.Context, athleteID uuid.UUID, amount int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.ConnectedPayoutAccount{}).
		Where("athlete_user_id = ?", athleteID).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance + ?", amount),
			"updated_at":        time.Now().UTC(),
		}).Error
}

func (r *connectedAccountRepo) MovePendingToAvailable(dbc dbctx.Context, athleteID uuid.UUID, amount int64) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ConnectedPayoutAccount{}).
		Where("athlete_user_id = ? AND pending_balance >= ?", athleteID, amount).
		Updates(map[string]interface{}{
			"pending_balance":   gorm.Expr("pending_balance - ?", amount),
			"available_balance": gorm.Expr("available_balance + ?", amount),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *connectedAccountRepo) DecrementAvailableIf(dbc dbctx.Context, athleteID uuid.UUID, amount int64) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ConnectedPayoutAccount{}).
		Where("athlete_user_id = ? AND available_balance >= ?", athleteID, amount).
		Updates(map[string]interface{}{
			"available_balance": gorm.Expr("available_balance - ?", amount),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
