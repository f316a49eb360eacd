package repository

import (
	"context"

	"github.com/msallal/yawmia/internal/domain/models"
)

// Store is the document-store contract the services are written against.
// Lookup methods return (nil, nil) when no document matches; callers decide
// whether absence is an error. Multi-step mutations run inside
// WithTransaction so that every exposed operation commits or fails as a
// whole.
type Store interface {
	// WithTransaction executes fn atomically. The context passed to fn must
	// be used for every store call made inside it.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	InsertIdentity(ctx context.Context, identity models.Identity) (models.Identity, error)
	GetIdentity(ctx context.Context, id string) (*models.Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (*models.Identity, error)
	DeleteIdentity(ctx context.Context, id string) error

	InsertProfile(ctx context.Context, profile models.UserProfile) (models.UserProfile, error)
	GetProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	GetProfileByUsername(ctx context.Context, username string) (*models.UserProfile, error)
	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
	CountProfiles(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, profile models.UserProfile) error
	DeleteProfile(ctx context.Context, id string) error

	InsertEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error)
	UpdateEntry(ctx context.Context, entry models.DailyEntry) error
	GetEntryByUserAndDate(ctx context.Context, userID, date string) (*models.DailyEntry, error)
	ListEntriesByUser(ctx context.Context, userID string) ([]models.DailyEntry, error)
	ListAllEntries(ctx context.Context) ([]models.DailyEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	DeleteEntriesByUser(ctx context.Context, userID string) error
	DeleteAllEntries(ctx context.Context) error

	GetAdvance(ctx context.Context, userID, yearMonth string) (*models.MonthlyAdvance, error)
	UpsertAdvance(ctx context.Context, advance models.MonthlyAdvance) error
	ListAllAdvances(ctx context.Context) ([]models.MonthlyAdvance, error)
	DeleteAdvance(ctx context.Context, userID, yearMonth string) error
	DeleteAdvancesByUser(ctx context.Context, userID string) error
	DeleteAllAdvances(ctx context.Context) error
}
