package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/services"
)

type ContractHandler struct {
	contractService services.ContractService
}

func NewContractHandler(contractService services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// POST /api/contracts
// body: { "deal_id", "template_kind", "parties": [{"party_type","name","email"}],
//         "requires_guardian_signature", "requires_witness", "extra_clauses",
//         "effective_date", "expiration_date" }
func (ch *ContractHandler) Create(c *gin.Context) {
	var req struct {
		DealID                    string                        `json:"deal_id"`
		TemplateKind              string                        `json:"template_kind"`
		Parties                   []services.ContractPartyInput `json:"parties"`
		RequiresGuardianSignature bool                          `json:"requires_guardian_signature"`
		RequiresWitness           bool                          `json:"requires_witness"`
		ExtraClauses              []string                      `json:"extra_clauses"`
		EffectiveDate             *time.Time                    `json:"effective_date"`
		ExpirationDate            *time.Time                    `json:"expiration_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	dealID, err := uuid.Parse(req.DealID)
	if err != nil {
		respondBadRequest(c, "invalid deal_id")
		return
	}

	view, err := ch.contractService.Generate(dbctx.Context{Ctx: c.Request.Context()}, services.GenerateContractInput{
		DealID:                    dealID,
		TemplateKind:              req.TemplateKind,
		Parties:                   req.Parties,
		RequiresGuardianSignature: req.RequiresGuardianSignature,
		RequiresWitness:           req.RequiresWitness,
		ExtraClauses:              req.ExtraClauses,
		EffectiveDate:             req.EffectiveDate,
		ExpirationDate:            req.ExpirationDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, view)
}

// POST /api/contracts/:id/send
func (ch *ContractHandler) Send(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	contract, err := ch.contractService.SendForSignature(dbctx.Context{Ctx: c.Request.Context()}, contractID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, contract)
}

// POST /api/contracts/:id/sign
// body: { "party_type", "signature_payload", "signature_method" }
func (ch *ContractHandler) Sign(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PartyType        string `json:"party_type"`
		SignaturePayload string `json:"signature_payload"`
		SignatureMethod  string `json:"signature_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PartyType == "" {
		respondBadRequest(c, "party_type required")
		return
	}
	contract, err := ch.contractService.Sign(dbctx.Context{Ctx: c.Request.Context()},
		contractID, req.PartyType, req.SignaturePayload, req.SignatureMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, contract)
}

// POST /api/contracts/:id/decline
// body: { "party_type", "reason" }
func (ch *ContractHandler) Decline(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PartyType string `json:"party_type"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PartyType == "" {
		respondBadRequest(c, "party_type required")
		return
	}
	contract, err := ch.contractService.Decline(dbctx.Context{Ctx: c.Request.Context()},
		contractID, req.PartyType, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, contract)
}

// POST /api/contracts/:id/void
// body: { "reason" }
func (ch *ContractHandler) Void(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	contract, err := ch.contractService.Void(dbctx.Context{Ctx: c.Request.Context()}, contractID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, contract)
}

// GET /api/contracts/:id
func (ch *ContractHandler) Get(c *gin.Context) {
	contractID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	view, err := ch.contractService.Get(dbctx.Context{Ctx: c.Request.Context()}, contractID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, view)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondBadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
