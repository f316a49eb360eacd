package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/service/accounts"
	"github.com/msallal/yawmia/internal/service/reporting"
)

// AdminHandler exposes account administration and the monthly reports.
// Authorization lives in the services; these adapters only translate HTTP.
type AdminHandler struct {
	accounts *accounts.Service
	reports  *reporting.Service
	logger   *zap.Logger
}

// NewAdminHandler constructs the HTTP handler adapter.
func NewAdminHandler(accountsSvc *accounts.Service, reportsSvc *reporting.Service, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{accounts: accountsSvc, reports: reportsSvc, logger: logger}
}

// ListUsers returns every profile joined with its identity record.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type setDeductionsRequest struct {
	Deductions float64 `json:"deductions"`
}

// SetDeductions overwrites a user's recurring deduction.
func (h *AdminHandler) SetDeductions(c *gin.Context) {
	var req setDeductionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.accounts.SetDeductions(c.Request.Context(), callerID(c), c.Param("id"), req.Deductions); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type renameUserRequest struct {
	NewUsername string `json:"new_username" binding:"required"`
}

// RenameUser changes a user's username.
func (h *AdminHandler) RenameUser(c *gin.Context) {
	var req renameUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.accounts.RenameUser(c.Request.Context(), callerID(c), c.Param("id"), req.NewUsername); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser removes a user and everything they own.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.accounts.DeleteUser(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// yearMonthParams parses the mandatory year/month query pair.
func yearMonthParams(c *gin.Context) (int, int, bool) {
	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	if errY != nil || errM != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year and month query parameters are required"})
		return 0, 0, false
	}
	return year, month, true
}

// MonthlyAggregate returns the lightweight all-users month rollup.
func (h *AdminHandler) MonthlyAggregate(c *gin.Context) {
	year, month, ok := yearMonthParams(c)
	if !ok {
		return
	}

	agg, err := h.reports.UsersMonthlyAggregate(c.Request.Context(), callerID(c), year, month)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, agg)
}

// ComprehensiveSummary returns the per-day month report with grand totals.
func (h *AdminHandler) ComprehensiveSummary(c *gin.Context) {
	year, month, ok := yearMonthParams(c)
	if !ok {
		return
	}

	summary, err := h.reports.ComprehensiveMonthlySummary(c.Request.Context(), callerID(c), year, month)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// UsersSummary returns the per-user month report.
func (h *AdminHandler) UsersSummary(c *gin.Context) {
	year, month, ok := yearMonthParams(c)
	if !ok {
		return
	}

	summary, err := h.reports.UsersMonthlySummary(c.Request.Context(), callerID(c), year, month)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

type resetRequest struct {
	ConfirmationText string `json:"confirmation_text" binding:"required"`
}

// FullReset wipes all records and all accounts except the acting admin's.
func (h *AdminHandler) FullReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, err := h.accounts.CompleteSystemReset(c.Request.Context(), callerID(c), req.ConfirmationText)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}

// DataReset wipes all records but keeps every account.
func (h *AdminHandler) DataReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, err := h.accounts.ResetDataOnly(c.Request.Context(), callerID(c), req.ConfirmationText)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
