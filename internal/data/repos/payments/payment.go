package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type PaymentRepo interface {
	// CreateIfNoActive inserts the payment only when the deal has no pending or
	// succeeded payment. A false return means another attempt already claimed
	// the deal. This is the conditional write that keeps concurrent
	// executePayment calls from double-charging.
	CreateIfNoActive(dbc dbctx.Context, row *types.Payment) (bool, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Payment, error)
	GetByDealID(dbc dbctx.Context, dealID uuid.UUID) ([]*types.Payment, error)
	GetByStripeIntentID(dbc dbctx.Context, intentID string) (*types.Payment, error)

	SetIntentRef(dbc dbctx.Context, id uuid.UUID, intentID string) error

	UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string, extra map[string]interface{}) (bool, error)

	// MarkSettled records the pending->available move for a succeeded payment,
	// guarded on settled_at IS NULL so replays are no-ops.
	MarkSettled(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)

	// ListSettleable returns succeeded, unsettled payments whose hold period
	// has elapsed. athleteID narrows the sweep to one payee when non-nil.
	ListSettleable(dbc dbctx.Context, athleteID *uuid.UUID, before time.Time, limit int) ([]*types.Payment, error)
}

type paymentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentRepo(db *gorm.DB, baseLog *logger.Logger) PaymentRepo {
	return &paymentRepo{db: db, log: baseLog.With("repo", "PaymentRepo")}
}

func (r *paymentRepo) CreateIfNoActive(dbc dbctx.Context, row *types.Payment) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	res := t.WithContext(dbc.Ctx).Exec(`
		INSERT INTO payment
			(id, deal_id, brand_user_id, athlete_user_id, amount, platform_fee, net_amount,
			 currency, stripe_payment_intent_id, status, failure_reason, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM payment WHERE deal_id = ? AND status IN (?, ?)
		)`,
		row.ID, row.DealID, row.BrandUserID, row.AthleteUserID, row.Amount, row.PlatformFee, row.NetAmount,
		row.Currency, row.StripePaymentIntentID, row.Status, row.FailureReason, row.CreatedAt, row.UpdatedAt,
		row.DealID, types.PaymentStatusPending, types.PaymentStatusSucceeded,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Payment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Payment
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *paymentRepo) GetByDealID(dbc dbctx.Context, dealID uuid.UUID) ([]*types.Payment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Payment
	if dealID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("deal_id = ?", dealID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *paymentRepo) GetByStripeIntentID(dbc dbctx.Context, intentID string) (*types.Payment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if intentID == "" {
		return nil, nil
	}
	var out []*types.Payment
	if err := t.WithContext(dbc.Ctx).Where("stripe_payment_intent_id = ?", intentID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *paymentRepo) SetIntentRef(dbc dbctx.Context, id uuid.UUID, intentID string) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Payment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stripe_payment_intent_id": intentID,
			"updated_at":               time.Now().UTC(),
		}).Error
}

func (r *paymentRepo) UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string, extra map[string]interface{}) (bool, error) {
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
		Model(&types.Payment{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepo) MarkSettled(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Payment{}).
		Where("id = ? AND status = ? AND settled_at IS NULL", id, types.PaymentStatusSucceeded).
		Updates(map[string]interface{}{
			"settled_at": at,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *paymentRepo) ListSettleable(dbc dbctx.Context, athleteID *uuid.UUID, before time.Time, limit int) ([]*types.Payment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Where("status = ? AND settled_at IS NULL AND settles_at IS NOT NULL AND settles_at <= ?",
			types.PaymentStatusSucceeded, before)
	if athleteID != nil && *athleteID != uuid.Nil {
		q = q.Where("athlete_user_id = ?", *athleteID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.Payment
	if err := q.Order("settles_at asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
