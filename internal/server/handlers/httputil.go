package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/domain/models"
)

// CallerIDKey is the gin context key under which the auth middleware stores
// the verified identity id.
const CallerIDKey = "caller_id"

// callerID extracts the authenticated identity id from the request context.
// Empty when the request carried no valid token.
func callerID(c *gin.Context) string {
	return c.GetString(CallerIDKey)
}

// writeError maps domain failures onto HTTP status codes. Unknown errors
// become opaque 500s; the details stay in the log.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden),
		errors.Is(err, models.ErrProfileMissing),
		errors.Is(err, models.ErrCannotDeleteAdmin):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrUserNotFound), errors.Is(err, models.ErrEntryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrUsernameTaken), errors.Is(err, models.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, models.ErrConfirmationMismatch):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
