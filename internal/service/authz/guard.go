// Package authz enforces the access rules every operation starts with:
// resolve the caller's profile, then check "admin only" or "self or admin".
package authz

import (
	"context"
	"fmt"

	"github.com/msallal/yawmia/internal/domain/models"
	"github.com/msallal/yawmia/internal/repository"
)

// Guard resolves caller identities into profiles and enforces role rules.
// It has no side effects.
type Guard struct {
	store repository.Store
}

// NewGuard wires a guard over the given store.
func NewGuard(store repository.Store) *Guard {
	return &Guard{store: store}
}

// ResolveCaller loads the profile behind an authenticated identity. An
// empty callerID means the request carried no identity at all.
func (g *Guard) ResolveCaller(ctx context.Context, callerID string) (models.UserProfile, error) {
	if callerID == "" {
		return models.UserProfile{}, models.ErrUnauthenticated
	}

	profile, err := g.store.GetProfileByUserID(ctx, callerID)
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("load caller profile: %w", err)
	}
	if profile == nil {
		return models.UserProfile{}, models.ErrProfileMissing
	}

	return *profile, nil
}

// RequireAdmin resolves the caller and fails unless the profile carries the
// admin flag.
func (g *Guard) RequireAdmin(ctx context.Context, callerID string) (models.UserProfile, error) {
	profile, err := g.ResolveCaller(ctx, callerID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if !profile.IsAdmin {
		return models.UserProfile{}, models.ErrForbidden
	}
	return profile, nil
}

// RequireSelfOrAdmin passes when the caller targets their own data or holds
// the admin role.
func (g *Guard) RequireSelfOrAdmin(caller models.UserProfile, targetUserID string) error {
	if targetUserID == caller.UserID || caller.IsAdmin {
		return nil
	}
	return models.ErrForbidden
}
