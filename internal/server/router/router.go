package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/server/handlers"
)

// TokenVerifier validates a bearer token and returns the identity id it
// carries.
type TokenVerifier interface {
	VerifyToken(token string) (string, error)
}

// New wires the Gin engine with required routes and middlewares.
func New(auth *handlers.AuthHandler, profile *handlers.ProfileHandler, ledger *handlers.LedgerHandler, admin *handlers.AdminHandler, verifier TokenVerifier, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/auth/register", auth.Register)
	r.POST("/auth/login", auth.Login)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(bearerAuthMiddleware(verifier))

	api.POST("/profile", profile.Create)
	api.GET("/profile/check", profile.Check)
	api.GET("/profile", profile.Get)

	api.GET("/entries", ledger.List)
	api.PUT("/entries", ledger.Upsert)
	api.GET("/advances/:yearMonth", ledger.AdvanceTotal)

	adm := api.Group("/admin")
	adm.GET("/users", admin.ListUsers)
	adm.PUT("/users/:id/deductions", admin.SetDeductions)
	adm.PUT("/users/:id/username", admin.RenameUser)
	adm.DELETE("/users/:id", admin.DeleteUser)
	adm.DELETE("/entries/:id", ledger.Delete)
	adm.GET("/reports/aggregate", admin.MonthlyAggregate)
	adm.GET("/reports/comprehensive", admin.ComprehensiveSummary)
	adm.GET("/reports/users", admin.UsersSummary)
	adm.POST("/reset/full", admin.FullReset)
	adm.POST("/reset/data", admin.DataReset)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// bearerAuthMiddleware verifies the Authorization header and threads the
// caller's identity id into the request context. Every protected operation
// receives the caller explicitly from here; nothing resolves it ambiently.
func bearerAuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}

		identityID, err := verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(handlers.CallerIDKey, identityID)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
