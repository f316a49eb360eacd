package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msallal/yawmia/internal/domain/models"
	"github.com/msallal/yawmia/internal/repository/memory"
)

func TestResolveCaller(t *testing.T) {
	store := memory.New()
	guard := NewGuard(store)
	ctx := context.Background()

	_, err := guard.ResolveCaller(ctx, "")
	require.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = guard.ResolveCaller(ctx, "unknown")
	require.ErrorIs(t, err, models.ErrProfileMissing)

	profile, err := store.InsertProfile(ctx, models.UserProfile{UserID: "u1", Username: "sara"})
	require.NoError(t, err)

	resolved, err := guard.ResolveCaller(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, profile.ID, resolved.ID)
}

func TestRequireAdmin(t *testing.T) {
	store := memory.New()
	guard := NewGuard(store)
	ctx := context.Background()

	_, err := store.InsertProfile(ctx, models.UserProfile{UserID: "u1", Username: "sara"})
	require.NoError(t, err)
	_, err = store.InsertProfile(ctx, models.UserProfile{UserID: "u2", Username: "omar", IsAdmin: true})
	require.NoError(t, err)

	_, err = guard.RequireAdmin(ctx, "u1")
	require.ErrorIs(t, err, models.ErrForbidden)

	admin, err := guard.RequireAdmin(ctx, "u2")
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	guard := NewGuard(memory.New())

	plain := models.UserProfile{UserID: "u1"}
	admin := models.UserProfile{UserID: "u2", IsAdmin: true}

	require.NoError(t, guard.RequireSelfOrAdmin(plain, "u1"))
	require.ErrorIs(t, guard.RequireSelfOrAdmin(plain, "u2"), models.ErrForbidden)
	require.NoError(t, guard.RequireSelfOrAdmin(admin, "u1"))
}
