package deals

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type DealRepo interface {
	Create(dbc dbctx.Context, rows []*types.Deal) ([]*types.Deal, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Deal, error)

	// UpdateStatusIf transitions the deal only when its current status is one
	// of fromStatuses. Returns false when the conditional write matched no row,
	// which the caller interprets as a lost race or an invalid starting state.
	UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string) (bool, error)
}

type dealRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDealRepo(db *gorm.DB, baseLog *logger.Logger) DealRepo {
	return &dealRepo{db: db, log: baseLog.With("repo", "DealRepo")}
}

func (r *dealRepo) Create(dbc dbctx.Context, rows []*types.Deal) ([]*types.Deal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Deal{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *dealRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Deal, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Deal
	if err := t.WithContext(dbc.Ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *dealRepo) UpdateStatusIf(dbc dbctx.Context, id uuid.UUID, fromStatuses []string, toStatus string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.Deal{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
