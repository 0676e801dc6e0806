package payments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type EarningsRepo interface {
	// Add upserts the (athlete, year, month) row, adding the deltas to the
	// running totals. The conflict arithmetic runs in the database so
	// concurrent successful payments accumulate without lost updates.
	Add(dbc dbctx.Context, athleteID uuid.UUID, year, month int, gross, fee, net int64) error

	GetByPeriod(dbc dbctx.Context, athleteID uuid.UUID, year, month int) (*types.EarningsRecord, error)
	ListByAthlete(dbc dbctx.Context, athleteID uuid.UUID, year *int) ([]*types.EarningsRecord, error)
}

type earningsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEarningsRepo(db *gorm.DB, baseLog *logger.Logger) EarningsRepo {
	return &earningsRepo{db: db, log: baseLog.With("repo", "EarningsRepo")}
}

func (r *earningsRepo) Add(dbc dbctx.Context, athleteID uuid.UUID, year, month int, gross, fee, net int64) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	row := &types.EarningsRecord{
		ID:             uuid.New(),
		AthleteUserID:  athleteID,
		Year:           year,
		Month:          month,
		GrossTotal:     gross,
		FeeTotal:       fee,
		NetTotal:       net,
		DealsCompleted: 1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "athlete_user_id"}, {Name: "year"}, {Name: "month"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"gross_total":     gorm.Expr("earnings_record.gross_total + excluded.gross_total"),
				"fee_total":       gorm.Expr("earnings_record.fee_total + excluded.fee_total"),
				"net_total":       gorm.Expr("earnings_record.net_total + excluded.net_total"),
				"deals_completed": gorm.Expr("earnings_record.deals_completed + excluded.deals_completed"),
				"updated_at":      now,
			}),
		}).
		Create(row).Error
}

func (r *earningsRepo) GetByPeriod(dbc dbctx.Context, athleteID uuid.UUID, year, month int) (*types.EarningsRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.EarningsRecord
	if err := t.WithContext(dbc.Ctx).
		Where("athlete_user_id = ? AND year = ? AND month = ?", athleteID, year, month).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *earningsRepo) ListByAthlete(dbc dbctx.Context, athleteID uuid.UUID, year *int) ([]*types.EarningsRecord, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.EarningsRecord
	if athleteID == uuid.Nil {
		return out, nil
	}
	q := t.WithContext(dbc.Ctx).Where("athlete_user_id = ?", athleteID)
	if year != nil {
		q = q.Where("year = ?", *year)
	}
	if err := q.Order("year desc, month desc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
