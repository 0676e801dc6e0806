package contracts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/athletelink/athletelink-backend/internal/domain"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type ContractSignatureRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.ContractSignature) ([]*types.ContractSignature, error)
	GetByContractID(dbc dbctx.Context, contractID uuid.UUID) ([]*types.ContractSignature, error)
	GetByContractAndParty(dbc dbctx.Context, contractID uuid.UUID, partyType string) (*types.ContractSignature, error)

	// MarkSigned and MarkDeclined apply the single allowed terminal transition
	// for a signature, guarded on signature_status = pending. A false return
	// means the slot was already signed or declined.
	MarkSigned(dbc dbctx.Context, id uuid.UUID, payload, method, originAddr string, signerUserID uuid.UUID, at time.Time) (bool, error)
	MarkDeclined(dbc dbctx.Context, id uuid.UUID, reason, originAddr string, at time.Time) (bool, error)
}

type contractSignatureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContractSignatureRepo(db *gorm.DB, baseLog *logger.Logger) ContractSignatureRepo {
	return &contractSignatureRepo{db: db, log: baseLog.With("repo", "ContractSignatureRepo")}
}

func (r *contractSignatureRepo) CreateBatch(dbc dbctx.Context, rows []*types.ContractSignature) ([]*types.ContractSignature, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ContractSignature{}, nil
	}
	if err := t.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *contractSignatureRepo) GetByContractID(dbc dbctx.Context, contractID uuid.UUID) ([]*types.ContractSignature, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ContractSignature
	if contractID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("contract_id = ?", contractID).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contractSignatureRepo) GetByContractAndParty(dbc dbctx.Context, contractID uuid.UUID, partyType string) (*types.ContractSignature, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ContractSignature
	if err := t.WithContext(dbc.Ctx).
		Where("contract_id = ? AND party_type = ?", contractID, partyType).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *contractSignatureRepo) MarkSigned(dbc dbctx.Context, id uuid.UUID, payload, method, originAddr string, signerUserID uuid.UUID, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ContractSignature{}).
		Where("id = ? AND signature_status = ?", id, types.SignatureStatusPending).
		Updates(map[string]interface{}{
			"signature_status":  types.SignatureStatusSigned,
			"signature_payload": payload,
			"signature_method":  method,
			"signer_user_id":    signerUserID,
			"origin_addr":       originAddr,
			"signed_at":         at,
			"updated_at":        at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *contractSignatureRepo) MarkDeclined(dbc dbctx.Context, id uuid.UUID, reason, originAddr string, at time.Time) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(dbc.Ctx).
		Model(&types.ContractSignature{}).
		Where("id = ? AND signature_status = ?", id, types.SignatureStatusPending).
		Updates(map[string]interface{}{
			"signature_status": types.SignatureStatusDeclined,
			"decline_reason":   reason,
			"origin_addr":      originAddr,
			"declined_at":      at,
			"updated_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
