// Package accounts covers profile lifecycle and the admin account
// operations: listing, renaming, deduction overrides, deletion and the two
// destructive reset operations.
package accounts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/msallal/yawmia/internal/domain/models"
	"github.com/msallal/yawmia/internal/repository"
	"github.com/msallal/yawmia/internal/service/authz"
	"github.com/msallal/yawmia/pkg/clients/notify"
)

// Safety phrases the destructive resets demand verbatim.
const (
	FullResetConfirmation = "RESET EVERYTHING"
	DataResetConfirmation = "RESET FINANCIAL DATA"
)

// Service implements profile management and account administration.
type Service struct {
	store    repository.Store
	guard    *authz.Guard
	notifier notify.Client
	collator *collate.Collator
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new accounts service. notifier may be nil, in which
// case admin events are not broadcast.
func NewService(store repository.Store, guard *authz.Guard, notifier notify.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		guard:    guard,
		notifier: notifier,
		collator: collate.New(language.Und),
		logger:   logger,
		now:      time.Now,
	}
}

// CreateProfile creates the caller's profile after registration. Idempotent
// per identity: a repeat call returns the existing profile. The very first
// profile in the system is granted the admin role.
func (s *Service) CreateProfile(ctx context.Context, callerID, username string) (models.UserProfile, error) {
	if callerID == "" {
		return models.UserProfile{}, models.ErrUnauthenticated
	}

	var profile models.UserProfile
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.store.GetProfileByUserID(ctx, callerID)
		if err != nil {
			return fmt.Errorf("lookup caller profile: %w", err)
		}
		if existing != nil {
			profile = *existing
			return nil
		}

		taken, err := s.store.GetProfileByUsername(ctx, username)
		if err != nil {
			return fmt.Errorf("lookup username: %w", err)
		}
		if taken != nil {
			return models.ErrUsernameTaken
		}

		count, err := s.store.CountProfiles(ctx)
		if err != nil {
			return fmt.Errorf("count profiles: %w", err)
		}

		profile, err = s.store.InsertProfile(ctx, models.UserProfile{
			UserID:    callerID,
			Username:  username,
			IsAdmin:   count == 0,
			CreatedAt: s.now().UTC(),
		})
		return err
	})
	if err != nil {
		return models.UserProfile{}, err
	}

	s.logger.Info("profile ready",
		zap.String("user_id", profile.UserID),
		zap.Bool("is_admin", profile.IsAdmin))
	return profile, nil
}

// CheckProfile returns the caller's profile, or nil when none exists yet.
// Absence is not an error here; clients use this to drive onboarding.
func (s *Service) CheckProfile(ctx context.Context, callerID string) (*models.UserProfile, error) {
	if callerID == "" {
		return nil, nil
	}
	return s.store.GetProfileByUserID(ctx, callerID)
}

// GetProfile returns the target user's profile, defaulting the target to
// the caller. Self or admin.
func (s *Service) GetProfile(ctx context.Context, callerID, targetUserID string) (*models.UserProfile, error) {
	caller, err := s.guard.ResolveCaller(ctx, callerID)
	if err != nil {
		return nil, err
	}

	if targetUserID == "" {
		targetUserID = caller.UserID
	}
	if err := s.guard.RequireSelfOrAdmin(caller, targetUserID); err != nil {
		return nil, err
	}

	return s.store.GetProfileByUserID(ctx, targetUserID)
}

// ListUsers joins every profile with its identity record, sorted by
// username ascending with a locale-aware collator. Admin only.
func (s *Service) ListUsers(ctx context.Context, callerID string) ([]models.UserAccount, error) {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	accounts := make([]models.UserAccount, 0, len(profiles))
	for _, profile := range profiles {
		identity, err := s.store.GetIdentity(ctx, profile.UserID)
		if err != nil {
			return nil, fmt.Errorf("load identity %s: %w", profile.UserID, err)
		}
		accounts = append(accounts, models.UserAccount{UserProfile: profile, Identity: identity})
	}

	s.collator.Sort(byUsername(accounts))
	return accounts, nil
}

// SetDeductions overwrites the target profile's deductions. Admin only.
func (s *Service) SetDeductions(ctx context.Context, callerID, userID string, deductions float64) error {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return err
	}

	return s.store.WithTransaction(ctx, func(ctx context.Context) error {
		profile, err := s.store.GetProfileByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load target profile: %w", err)
		}
		if profile == nil {
			return models.ErrUserNotFound
		}

		profile.Deductions = deductions
		return s.store.UpdateProfile(ctx, *profile)
	})
}

// RenameUser changes the target's username. Renaming a user to the name
// they already hold succeeds; a name held by a different user fails.
func (s *Service) RenameUser(ctx context.Context, callerID, userID, newUsername string) error {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return err
	}

	return s.store.WithTransaction(ctx, func(ctx context.Context) error {
		holder, err := s.store.GetProfileByUsername(ctx, newUsername)
		if err != nil {
			return fmt.Errorf("lookup username: %w", err)
		}
		if holder != nil && holder.UserID != userID {
			return models.ErrUsernameTaken
		}

		profile, err := s.store.GetProfileByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load target profile: %w", err)
		}
		if profile == nil {
			return models.ErrUserNotFound
		}

		profile.Username = newUsername
		return s.store.UpdateProfile(ctx, *profile)
	})
}

// DeleteUser removes a non-admin user and everything they own: entries,
// advance caches, the profile and the identity record, children first.
func (s *Service) DeleteUser(ctx context.Context, callerID, userID string) error {
	admin, err := s.guard.RequireAdmin(ctx, callerID)
	if err != nil {
		return err
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		profile, err := s.store.GetProfileByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load target profile: %w", err)
		}
		if profile == nil {
			return models.ErrUserNotFound
		}
		if profile.IsAdmin {
			return models.ErrCannotDeleteAdmin
		}

		if err := s.store.DeleteEntriesByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if err := s.store.DeleteAdvancesByUser(ctx, userID); err != nil {
			return fmt.Errorf("delete advances: %w", err)
		}
		if err := s.store.DeleteProfile(ctx, profile.ID); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		if err := s.store.DeleteIdentity(ctx, userID); err != nil {
			return fmt.Errorf("delete identity: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", userID))
	s.publish(ctx, "user.deleted", admin.UserID, fmt.Sprintf("user %s and all owned records removed", userID))
	return nil
}

// CompleteSystemReset wipes every financial record and every account except
// the acting admin's, whose deductions are reset to zero.
func (s *Service) CompleteSystemReset(ctx context.Context, callerID, confirmationText string) (string, error) {
	admin, err := s.guard.RequireAdmin(ctx, callerID)
	if err != nil {
		return "", err
	}

	if confirmationText != FullResetConfirmation {
		return "", models.ErrConfirmationMismatch
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteAllEntries(ctx); err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if err := s.store.DeleteAllAdvances(ctx); err != nil {
			return fmt.Errorf("delete advances: %w", err)
		}

		profiles, err := s.store.ListProfiles(ctx)
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		for _, profile := range profiles {
			if profile.UserID == admin.UserID {
				continue
			}
			if err := s.store.DeleteProfile(ctx, profile.ID); err != nil {
				return fmt.Errorf("delete profile %s: %w", profile.ID, err)
			}
			if err := s.store.DeleteIdentity(ctx, profile.UserID); err != nil {
				return fmt.Errorf("delete identity %s: %w", profile.UserID, err)
			}
		}

		adminProfile, err := s.store.GetProfileByUserID(ctx, admin.UserID)
		if err != nil {
			return fmt.Errorf("load admin profile: %w", err)
		}
		if adminProfile != nil {
			adminProfile.Deductions = 0
			if err := s.store.UpdateProfile(ctx, *adminProfile); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Warn("complete system reset executed", zap.String("admin_id", admin.UserID))
	s.publish(ctx, "system.reset.full", admin.UserID, "all records and all accounts except the acting admin removed")
	return "System fully reset. All records and all accounts except yours were removed.", nil
}

// ResetDataOnly wipes every entry and advance cache but keeps all accounts,
// zeroing every profile's deductions.
func (s *Service) ResetDataOnly(ctx context.Context, callerID, confirmationText string) (string, error) {
	admin, err := s.guard.RequireAdmin(ctx, callerID)
	if err != nil {
		return "", err
	}

	if confirmationText != DataResetConfirmation {
		return "", models.ErrConfirmationMismatch
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.DeleteAllEntries(ctx); err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if err := s.store.DeleteAllAdvances(ctx); err != nil {
			return fmt.Errorf("delete advances: %w", err)
		}

		profiles, err := s.store.ListProfiles(ctx)
		if err != nil {
			return fmt.Errorf("list profiles: %w", err)
		}
		for _, profile := range profiles {
			profile.Deductions = 0
			if err := s.store.UpdateProfile(ctx, profile); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Warn("financial data reset executed", zap.String("admin_id", admin.UserID))
	s.publish(ctx, "system.reset.data", admin.UserID, "all financial records removed, accounts kept")
	return "All financial records were removed. Every account was kept.", nil
}

// publish broadcasts an admin event. Delivery failures are logged and never
// fail the operation that triggered them.
func (s *Service) publish(ctx context.Context, event, actorID, detail string) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.Publish(ctx, notify.Event{
		Event:      event,
		ActorID:    actorID,
		Detail:     detail,
		OccurredAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("admin event delivery failed", zap.String("event", event), zap.Error(err))
	}
}

// byUsername adapts user accounts to the collator's sort interface.
type byUsername []models.UserAccount

func (b byUsername) Len() int           { return len(b) }
func (b byUsername) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
func (b byUsername) Bytes(i int) []byte { return []byte(b[i].Username) }
