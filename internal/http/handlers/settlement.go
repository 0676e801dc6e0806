package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/services"
)

type SettlementHandler struct {
	settlementService services.SettlementService
}

func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// POST /api/deals/:id/pay
// body: { "payment_method": "pm_..." }
func (sh *SettlementHandler) Pay(c *gin.Context) {
	dealID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentMethod == "" {
		respondBadRequest(c, "payment_method required")
		return
	}
	payment, err := sh.settlementService.ExecutePayment(dbctx.Context{Ctx: c.Request.Context()}, dealID, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, payment)
}

// POST /api/athletes/:id/payout-account
// body: { "email", "country" }
func (sh *SettlementHandler) OnboardAccount(c *gin.Context) {
	athleteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.OnboardAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	account, err := sh.settlementService.OnboardPayoutAccount(dbctx.Context{Ctx: c.Request.Context()}, athleteID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, account)
}

// POST /api/athletes/:id/payouts
// body: { "amount": 1234, "method": "standard" | "instant" } (amount omitted
// pays out the full available balance)
func (sh *SettlementHandler) RequestPayout(c *gin.Context) {
	athleteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Amount *int64 `json:"amount"`
		Method string `json:"method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}
	payout, err := sh.settlementService.RequestPayout(dbctx.Context{Ctx: c.Request.Context()}, athleteID, req.Amount, req.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, payout)
}

// GET /api/athletes/:id/balance
func (sh *SettlementHandler) Balance(c *gin.Context) {
	athleteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	balance, err := sh.settlementService.GetAthleteBalance(dbctx.Context{Ctx: c.Request.Context()}, athleteID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, balance)
}

// GET /api/athletes/:id/earnings?year=2026
func (sh *SettlementHandler) Earnings(c *gin.Context) {
	athleteID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var year *int
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "invalid year")
			return
		}
		year = &y
	}
	records, err := sh.settlementService.GetAthleteEarnings(dbctx.Context{Ctx: c.Request.Context()}, athleteID, year)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, records)
}
