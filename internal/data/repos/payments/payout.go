package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type PayoutRepo interface {
	Create(dbc dbctx.Context, row *types.Payout) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Payout, error)
	GetByStripePayoutID(dbc dbctx.Context, stripePayoutID string) (*types.Payout, error)
	ListByAthleteID(dbc dbctx.Context, athleteID uuid.UUID, limit int) ([]*types.Payout, error)

	UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string, extra map[string]interface{}) (bool, error)
}

type payoutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPayoutRepo(db *gorm.DB, baseLog *logger.Logger) PayoutRepo {
	return &payoutRepo{db: db, log: baseLog.With("repo", "PayoutRepo")}
}

func (r *payoutRepo) Create(dbc dbctx.Context, row *types.Payout) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *payoutRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Payout, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Payout
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *payoutRepo) GetByStripePayoutID(dbc dbctx.Context, stripePayoutID string) (*types.Payout, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if stripePayoutID == "" {
		return nil, nil
	}
	var out []*types.Payout
	if err := t.WithContext(dbc.Ctx).Where("stripe_payout_id = ?", stripePayoutID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *payoutRepo) ListByAthleteID(dbc dbctx.Context, athleteID uuid.UUID, limit int) ([]*types.Payout, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Payout
	if athleteID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).Where("athlete_user_id = ?", athleteID).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *payoutRepo) UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string, extra map[string]interface{}) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	updates := map[string]interface{}{
		"status":     toStatus,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Payout{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
