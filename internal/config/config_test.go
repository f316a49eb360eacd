package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	require.Equal(t, "yawmia", cfg.Mongo.DBName)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, "0 3 * * *", cfg.Reconcile.CronSchedule)
	require.True(t, cfg.Reconcile.Enabled)
	require.Empty(t, cfg.Notify.WebhookURL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("RECONCILE_ENABLED", "false")
	t.Setenv("ADMIN_WEBHOOK_URL", "https://hooks.example.com/admin")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	require.False(t, cfg.Reconcile.Enabled)
	require.Equal(t, "https://hooks.example.com/admin", cfg.Notify.WebhookURL)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AUTH_TOKEN_TTL", "soon")

	_, err := Load("")
	require.Error(t, err)
}
