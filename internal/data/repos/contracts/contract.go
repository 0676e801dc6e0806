package contracts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type ContractRepo interface {
	Create(dbc dbctx.Context, row *types.Contract) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error)
	GetByDealID(dbc dbctx.Context, dealID uuid.UUID) ([]*types.Contract, error)

	// Delete is the compensating action for a contract whose signature batch
	// failed to create; it must never be used on a fully materialized contract.
	Delete(dbc dbctx.Context, id uuid.UUID) error

	// UpdateStatusIf performs the conditional status transition and applies any
	// extra column updates in the same statement. Returns false when no row
	// matched the expected current statuses.
	UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string, extra map[string]interface{}) (bool, error)
}

type contractRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractRepo(db *gorm.DB, baseLog *logger.Logger) ContractRepo {
	return &contractRepo{db: db, log: baseLog.With("repo", "ContractRepo")}
}

func (r *contractRepo) Create(dbc dbctx.Context, row *types.Contract) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *contractRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Contract, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Contract
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *contractRepo) GetByDealID(dbc dbctx.Context, dealID uuid.UUID) ([]*types.Contract, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Contract
	if dealID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("deal_id = ?", dealID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Contract{}).Error
}

func (r *contractRepo) UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string, extra map[string]interface{}) (bool, error) {
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
		Model(&types.Contract{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
