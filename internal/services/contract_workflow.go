package services

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/athletelink/athletelink-backend/internal/data/repos"
	types "github.com/athletelink/athletelink-backend/internal/domain"
	contractdomain "github.com/athletelink/athletelink-backend/internal/domain/contracts"
	"github.com/athletelink/athletelink-backend/internal/platform/apierr"
	"github.com/athletelink/athletelink-backend/internal/platform/ctxutil"
	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

type ContractPartyInput struct {
	PartyType string `json:"party_type"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

type GenerateContractInput struct {
	DealID         uuid.UUID            `json:"deal_id"`
	TemplateKind   string               `json:"template_kind"`
	EffectiveDate  *time.Time           `json:"effective_date,omitempty"`
	ExpirationDate *time.Time           `json:"expiration_date,omitempty"`
	ExtraClauses   []string             `json:"extra_clauses,omitempty"`
	Parties        []ContractPartyInput `json:"parties"`

	RequiresGuardianSignature bool `json:"requires_guardian_signature"`
	RequiresWitness           bool `json:"requires_witness"`
}

// ContractView is the read model for a contract: the row plus its full
// signature set.
type ContractView struct {
	Contract   *types.Contract            `json:"contract"`
	Signatures []*types.ContractSignature `json:"signatures"`
}

type ContractService interface {
	Generate(dbc dbctx.Context, input GenerateContractInput) (*ContractView, error)
	SendForSignature(dbc dbctx.Context, contractID uuid.UUID) (*types.Contract, error)
	Sign(dbc dbctx.Context, contractID uuid.UUID, partyType, payload, method string) (*types.Contract, error)
	Decline(dbc dbctx.Context, contractID uuid.UUID, partyType, reason string) (*types.Contract, error)
	Void(dbc dbctx.Context, contractID uuid.UUID, reason string) (*types.Contract, error)
	Get(dbc dbctx.Context, contractID uuid.UUID) (*ContractView, error)
}

type contractService struct {
	db        *gorm.DB
	log       *logger.Logger
	dealRepo  repos.DealRepo
	repo      repos.ContractRepo
	sigRepo   repos.ContractSignatureRepo
	templates *ClauseTemplateLibrary
}

func NewContractService(db *gorm.DB, log *logger.Logger, dealRepo repos.DealRepo, repo repos.ContractRepo, sigRepo repos.ContractSignatureRepo, templates *ClauseTemplateLibrary) ContractService {
	if templates == nil {
		templates = BuiltinClauseTemplates()
	}
	return &contractService{
		db:        db,
		log:       log.With("service", "ContractService"),
		dealRepo:  dealRepo,
		repo:      repo,
		sigRepo:   sigRepo,
		templates: templates,
	}
}

func (cs *contractService) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return cs.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

// activeStatuses are the contract states that still accept signature activity.
var activeStatuses = []string{types.ContractStatusPendingSignature, types.ContractStatusPartiallySigned}

// Generate creates the contract plus its full signature slot set. The two
// writes are not one storage transaction: the signature batch failing after
// the contract row landed triggers an explicit compensating delete, so no
// contract can exist without its signature set.
func (cs *contractService) Generate(dbc dbctx.Context, input GenerateContractInput) (*ContractView, error) {
	deal, err := cs.dealRepo.GetByID(dbc, input.DealID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load deal")
	}
	if deal == nil {
		return nil, apierr.New(apierr.KindNotFound, "deal %s not found", input.DealID)
	}

	existing, err := cs.repo.GetByDealID(dbc, deal.ID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load contracts for deal")
	}
	for _, c := range existing {
		if c.Status != types.ContractStatusCancelled && c.Status != types.ContractStatusVoided {
			return nil, apierr.New(apierr.KindInvalidStatus, "deal %s already has contract %s (%s)", deal.ID, c.ID, c.Status)
		}
	}

	clauses, tpl, ok := cs.templates.Resolve(input.TemplateKind, input.ExtraClauses)
	if !ok {
		return nil, apierr.New(apierr.KindInvalidArgument, "unknown template kind %q", input.TemplateKind)
	}
	requiresWitness := input.RequiresWitness || tpl.RequiresWitness

	clausesJSON, err := json.Marshal(clauses)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindInvalidArgument, err, "encode clauses")
	}

	partyInfo := make(map[string]ContractPartyInput, len(input.Parties))
	for _, p := range input.Parties {
		switch p.PartyType {
		case types.PartyAthlete, types.PartyBrand, types.PartyGuardian, types.PartyWitness:
		default:
			return nil, apierr.New(apierr.KindInvalidArgument, "unknown party type %q", p.PartyType)
		}
		if _, dup := partyInfo[p.PartyType]; dup {
			return nil, apierr.New(apierr.KindInvalidArgument, "duplicate party %q", p.PartyType)
		}
		partyInfo[p.PartyType] = p
	}

	now := time.Now().UTC()
	contract := &types.Contract{
		ID:                        uuid.New(),
		DealID:                    deal.ID,
		TemplateKind:              input.TemplateKind,
		EffectiveDate:             input.EffectiveDate,
		ExpirationDate:            input.ExpirationDate,
		CompensationAmount:        deal.Amount,
		Currency:                  deal.Currency,
		Clauses:                   clausesJSON,
		RequiresGuardianSignature: input.RequiresGuardianSignature,
		RequiresWitness:           requiresWitness,
		Status:                    types.ContractStatusDraft,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	var sigs []*types.ContractSignature
	for _, party := range contractdomain.RequiredParties(input.RequiresGuardianSignature, requiresWitness) {
		info := partyInfo[party]
		sigs = append(sigs, &types.ContractSignature{
			ID:              uuid.New(),
			ContractID:      contract.ID,
			PartyType:       party,
			SignerName:      info.Name,
			SignerEmail:     info.Email,
			SignatureStatus: types.SignatureStatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	if err := cs.repo.Create(dbc, contract); err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "create contract")
	}
	if _, err := cs.sigRepo.CreateBatch(dbc, sigs); err != nil {
		// Compensate: the contract row must not survive without its slots.
		if delErr := cs.repo.Delete(dbc, contract.ID); delErr != nil {
			cs.log.Error("Compensating contract delete failed", "contract_id", contract.ID, "error", delErr)
		}
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "create signature slots")
	}

	cs.log.Info("Contract generated", "contract_id", contract.ID, "deal_id", deal.ID, "template", input.TemplateKind, "parties", len(sigs))
	return &ContractView{Contract: contract, Signatures: sigs}, nil
}

func (cs *contractService) SendForSignature(dbc dbctx.Context, contractID uuid.UUID) (*types.Contract, error) {
	contract, err := cs.repo.GetByID(dbc, contractID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load contract")
	}
	if contract == nil {
		return nil, apierr.New(apierr.KindNotFound, "contract %s not found", contractID)
	}
	ok, err := cs.repo.UpdateStatusIf(dbc, contractID, []string{types.ContractStatusDraft}, types.ContractStatusPendingSignature, nil)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "send contract for signature")
	}
	if !ok {
		return nil, apierr.New(apierr.KindInvalidStatus, "contract %s is %s, not draft", contractID, contract.Status)
	}
	contract.Status = types.ContractStatusPendingSignature
	cs.log.Info("Contract sent for signature", "contract_id", contractID)
	return contract, nil
}

func (cs *contractService) Sign(dbc dbctx.Context, contractID uuid.UUID, partyType, payload, method string) (*types.Contract, error) {
	var out *types.Contract
	err := cs.inTx(dbc, func(inner dbctx.Context) error {
		c, err := cs.signLocked(inner, contractID, partyType, payload, method)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *contractService) signLocked(dbc dbctx.Context, contractID uuid.UUID, partyType, payload, method string) (*types.Contract, error) {
	contract, sig, err := cs.loadActiveSlot(dbc, contractID, partyType)
	if err != nil {
		return nil, err
	}

	rd := ctxutil.GetRequestData(dbc.Ctx)
	var signerID uuid.UUID
	var origin string
	if rd != nil {
		signerID = rd.UserID
		origin = rd.RemoteAddr
	}

	now := time.Now().UTC()
	ok, err := cs.sigRepo.MarkSigned(dbc, sig.ID, payload, method, origin, signerID, now)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "record signature")
	}
	if !ok {
		return nil, apierr.New(apierr.KindAlreadyProcessed, "%s signature for contract %s already %s", partyType, contractID, sig.SignatureStatus)
	}

	return cs.rederiveStatus(dbc, contract, now)
}

func (cs *contractService) Decline(dbc dbctx.Context, contractID uuid.UUID, partyType, reason string) (*types.Contract, error) {
	var out *types.Contract
	err := cs.inTx(dbc, func(inner dbctx.Context) error {
		c, err := cs.declineLocked(inner, contractID, partyType, reason)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (cs *contractService) declineLocked(dbc dbctx.Context, contractID uuid.UUID, partyType, reason string) (*types.Contract, error) {
	contract, sig, err := cs.loadActiveSlot(dbc, contractID, partyType)
	if err != nil {
		return nil, err
	}

	var origin string
	if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil {
		origin = rd.RemoteAddr
	}

	now := time.Now().UTC()
	ok, err := cs.sigRepo.MarkDeclined(dbc, sig.ID, reason, origin, now)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "record decline")
	}
	if !ok {
		return nil, apierr.New(apierr.KindAlreadyProcessed, "%s signature for contract %s already %s", partyType, contractID, sig.SignatureStatus)
	}

	// A core-party decline is unconditionally fatal. Guardian/witness declines
	// only record; the contract stalls until voided or re-issued.
	if contractdomain.CoreParty(partyType) {
		ok, err := cs.repo.UpdateStatusIf(dbc, contractID, activeStatuses, types.ContractStatusCancelled, nil)
		if err != nil {
			return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "cancel contract")
		}
		if ok {
			contract.Status = types.ContractStatusCancelled
			cs.log.Info("Contract cancelled by core-party decline", "contract_id", contractID, "party", partyType)
		}
		return contract, nil
	}

	cs.log.Info("Signature declined", "contract_id", contractID, "party", partyType)
	return contract, nil
}

// loadActiveSlot loads the contract and the party's signature slot, enforcing
// the shared sign/decline guards.
func (cs *contractService) loadActiveSlot(dbc dbctx.Context, contractID uuid.UUID, partyType string) (*types.Contract, *types.ContractSignature, error) {
	contract, err := cs.repo.GetByID(dbc, contractID)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load contract")
	}
	if contract == nil {
		return nil, nil, apierr.New(apierr.KindNotFound, "contract %s not found", contractID)
	}
	if contract.Status != types.ContractStatusPendingSignature && contract.Status != types.ContractStatusPartiallySigned {
		return nil, nil, apierr.New(apierr.KindInvalidStatus, "contract %s is %s, not open for signatures", contractID, contract.Status)
	}

	sig, err := cs.sigRepo.GetByContractAndParty(dbc, contractID, partyType)
	if err != nil {
		return nil, nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load signature slot")
	}
	if sig == nil {
		return nil, nil, apierr.New(apierr.KindNotFound, "contract %s has no %s signature slot", contractID, partyType)
	}
	return contract, sig, nil
}

// rederiveStatus recomputes the contract status from the full signature set
// and persists it with a conditional write. Derivation always runs against
// every signature row, never incrementally, so status cannot drift.
func (cs *contractService) rederiveStatus(dbc dbctx.Context, contract *types.Contract, now time.Time) (*types.Contract, error) {
	sigs, err := cs.sigRepo.GetByContractID(dbc, contract.ID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load signatures")
	}
	derived := contractdomain.DeriveStatus(sigs, contract.RequiresGuardianSignature, contract.RequiresWitness)
	if derived == contract.Status {
		return contract, nil
	}

	var extra map[string]interface{}
	if derived == types.ContractStatusFullySigned {
		extra = map[string]interface{}{"signed_at": now}
	}
	ok, err := cs.repo.UpdateStatusIf(dbc, contract.ID, activeStatuses, derived, extra)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "persist derived status")
	}
	if !ok {
		// Lost a race with a terminal transition; the signature already
		// landed, so surface the persisted truth.
		fresh, err := cs.repo.GetByID(dbc, contract.ID)
		if err != nil || fresh == nil {
			return contract, nil
		}
		return fresh, nil
	}
	contract.Status = derived
	if derived == types.ContractStatusFullySigned {
		contract.SignedAt = &now
		cs.log.Info("Contract fully signed", "contract_id", contract.ID)
	}
	return contract, nil
}

func (cs *contractService) Void(dbc dbctx.Context, contractID uuid.UUID, reason string) (*types.Contract, error) {
	contract, err := cs.repo.GetByID(dbc, contractID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load contract")
	}
	if contract == nil {
		return nil, apierr.New(apierr.KindNotFound, "contract %s not found", contractID)
	}
	if contract.Status == types.ContractStatusVoided {
		return nil, apierr.New(apierr.KindAlreadyProcessed, "contract %s already voided", contractID)
	}

	now := time.Now().UTC()
	from := []string{
		types.ContractStatusDraft,
		types.ContractStatusPendingSignature,
		types.ContractStatusPartiallySigned,
		types.ContractStatusFullySigned,
		types.ContractStatusCancelled,
	}
	ok, err := cs.repo.UpdateStatusIf(dbc, contractID, from, types.ContractStatusVoided, map[string]interface{}{
		"voided_at":   now,
		"void_reason": reason,
	})
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "void contract")
	}
	if !ok {
		return nil, apierr.New(apierr.KindAlreadyProcessed, "contract %s already voided", contractID)
	}
	contract.Status = types.ContractStatusVoided
	contract.VoidedAt = &now
	contract.VoidReason = reason
	cs.log.Info("Contract voided", "contract_id", contractID, "reason", reason)
	return contract, nil
}

func (cs *contractService) Get(dbc dbctx.Context, contractID uuid.UUID) (*ContractView, error) {
	contract, err := cs.repo.GetByID(dbc, contractID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load contract")
	}
	if contract == nil {
		return nil, apierr.New(apierr.KindNotFound, "contract %s not found", contractID)
	}
	sigs, err := cs.sigRepo.GetByContractID(dbc, contractID)
	if err != nil {
		return nil, apierr.Wrap(apierr.KindGatewayUnavailable, err, "load signatures")
	}
	return &ContractView{Contract: contract, Signatures: sigs}, nil
}
