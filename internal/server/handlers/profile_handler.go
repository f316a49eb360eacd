package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/service/accounts"
)

// ProfileHandler exposes the authenticated-user profile operations.
type ProfileHandler struct {
	svc    *accounts.Service
	logger *zap.Logger
}

// NewProfileHandler constructs the HTTP handler adapter.
func NewProfileHandler(svc *accounts.Service, logger *zap.Logger) *ProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileHandler{svc: svc, logger: logger}
}

type createProfileRequest struct {
	Username string `json:"username" binding:"required"`
}

// Create sets up the caller's profile. Idempotent per identity.
func (h *ProfileHandler) Create(c *gin.Context) {
	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.svc.CreateProfile(c.Request.Context(), callerID(c), req.Username)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Check returns the caller's profile, or null when none exists yet.
func (h *ProfileHandler) Check(c *gin.Context) {
	profile, err := h.svc.CheckProfile(c.Request.Context(), callerID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Get returns a profile, defaulting the target to the caller.
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), callerID(c), c.Query("target_user_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
