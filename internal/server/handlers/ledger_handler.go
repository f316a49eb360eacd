package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/service/ledger"
)

// LedgerHandler exposes the daily entry and monthly advance operations.
type LedgerHandler struct {
	svc    *ledger.Service
	logger *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(svc *ledger.Service, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

// List returns entries for the target user, optionally narrowed to a
// month. The month filter only applies when both year and month are given.
func (h *LedgerHandler) List(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))

	entries, err := h.svc.ListEntries(c.Request.Context(), callerID(c), c.Query("target_user_id"), year, month)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

type upsertEntryRequest struct {
	Date            string   `json:"date" binding:"required"`
	CashAmount      *float64 `json:"cash_amount" binding:"omitempty,gte=0"`
	NetworkAmount   *float64 `json:"network_amount" binding:"omitempty,gte=0"`
	PurchasesAmount *float64 `json:"purchases_amount" binding:"omitempty,gte=0"`
	AdvanceAmount   *float64 `json:"advance_amount" binding:"omitempty,gte=0"`
	Notes           string   `json:"notes"`
	TargetUserID    string   `json:"target_user_id"`
}

// Upsert writes the entry keyed on (target user, date).
func (h *LedgerHandler) Upsert(c *gin.Context) {
	var req upsertEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.svc.Upsert(c.Request.Context(), callerID(c), ledger.UpsertInput{
		Date:            req.Date,
		CashAmount:      req.CashAmount,
		NetworkAmount:   req.NetworkAmount,
		PurchasesAmount: req.PurchasesAmount,
		AdvanceAmount:   req.AdvanceAmount,
		Notes:           req.Notes,
		TargetUserID:    req.TargetUserID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete removes one entry by id. Admin only.
func (h *LedgerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdvanceTotal returns the cached monthly advance sum for the target user.
func (h *LedgerHandler) AdvanceTotal(c *gin.Context) {
	total, err := h.svc.MonthlyAdvanceTotal(c.Request.Context(), callerID(c), c.Query("target_user_id"), c.Param("yearMonth"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"year_month": c.Param("yearMonth"), "total_advances": total})
}
