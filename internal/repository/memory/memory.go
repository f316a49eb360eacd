// Package memory provides an in-memory Store used by unit tests and local
// experimentation. It mirrors the MongoDB repository's contract, including
// the (nil, nil) not-found convention and the unique keys.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/msallal/yawmia/internal/domain/models"
)

// Store keeps all documents in maps guarded by a mutex. Transactions are
// serialized with a second lock held for the whole callback, which is
// enough for the single-process test scenarios it exists for.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	nextID     int
	identities map[string]models.Identity
	profiles   map[string]models.UserProfile
	entries    map[string]models.DailyEntry
	advances   map[string]models.MonthlyAdvance
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		identities: make(map[string]models.Identity),
		profiles:   make(map[string]models.UserProfile),
		entries:    make(map[string]models.DailyEntry),
		advances:   make(map[string]models.MonthlyAdvance),
	}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func (s *Store) newID() string {
	s.nextID++
	return fmt.Sprintf("id-%04d", s.nextID)
}

func advanceKey(userID, yearMonth string) string {
	return userID + "|" + yearMonth
}

func (s *Store) InsertIdentity(_ context.Context, identity models.Identity) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.identities {
		if existing.Email == identity.Email {
			return models.Identity{}, fmt.Errorf("duplicate email %q", identity.Email)
		}
	}
	identity.ID = s.newID()
	s.identities[identity.ID] = identity
	return identity, nil
}

func (s *Store) GetIdentity(_ context.Context, id string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if identity, ok := s.identities[id]; ok {
		return &identity, nil
	}
	return nil, nil
}

func (s *Store) GetIdentityByEmail(_ context.Context, email string) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, identity := range s.identities {
		if identity.Email == email {
			identity := identity
			return &identity, nil
		}
	}
	return nil, nil
}

func (s *Store) DeleteIdentity(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, id)
	return nil
}

func (s *Store) InsertProfile(_ context.Context, profile models.UserProfile) (models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.profiles {
		if existing.UserID == profile.UserID {
			return models.UserProfile{}, fmt.Errorf("duplicate profile for user %q", profile.UserID)
		}
		if existing.Username == profile.Username {
			return models.UserProfile{}, fmt.Errorf("duplicate username %q", profile.Username)
		}
	}
	profile.ID = s.newID()
	s.profiles[profile.ID] = profile
	return profile, nil
}

func (s *Store) GetProfileByUserID(_ context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, profile := range s.profiles {
		if profile.UserID == userID {
			profile := profile
			return &profile, nil
		}
	}
	return nil, nil
}

func (s *Store) GetProfileByUsername(_ context.Context, username string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, profile := range s.profiles {
		if profile.Username == username {
			profile := profile
			return &profile, nil
		}
	}
	return nil, nil
}

func (s *Store) ListProfiles(_ context.Context) ([]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserProfile, 0, len(s.profiles))
	for _, profile := range s.profiles {
		out = append(out, profile)
	}
	return out, nil
}

func (s *Store) CountProfiles(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.profiles)), nil
}

func (s *Store) UpdateProfile(_ context.Context, profile models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[profile.ID]; !ok {
		return models.ErrUserNotFound
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *Store) DeleteProfile(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, id)
	return nil
}

func (s *Store) InsertEntry(_ context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entries {
		if existing.UserID == entry.UserID && existing.Date == entry.Date {
			return models.DailyEntry{}, fmt.Errorf("duplicate entry for %s on %s", entry.UserID, entry.Date)
		}
	}
	entry.ID = s.newID()
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *Store) UpdateEntry(_ context.Context, entry models.DailyEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return models.ErrEntryNotFound
	}
	s.entries[entry.ID] = entry
	return nil
}

func (s *Store) GetEntryByUserAndDate(_ context.Context, userID, date string) (*models.DailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.UserID == userID && entry.Date == date {
			entry := entry
			return &entry, nil
		}
	}
	return nil, nil
}

func (s *Store) ListEntriesByUser(_ context.Context, userID string) ([]models.DailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DailyEntry
	for _, entry := range s.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *Store) ListAllEntries(_ context.Context) ([]models.DailyEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DailyEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) DeleteEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *Store) DeleteEntriesByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, entry := range s.entries {
		if entry.UserID == userID {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *Store) DeleteAllEntries(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]models.DailyEntry)
	return nil
}

func (s *Store) GetAdvance(_ context.Context, userID, yearMonth string) (*models.MonthlyAdvance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if advance, ok := s.advances[advanceKey(userID, yearMonth)]; ok {
		return &advance, nil
	}
	return nil, nil
}

func (s *Store) UpsertAdvance(_ context.Context, advance models.MonthlyAdvance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := advanceKey(advance.UserID, advance.YearMonth)
	if existing, ok := s.advances[key]; ok {
		advance.ID = existing.ID
	} else {
		advance.ID = s.newID()
	}
	s.advances[key] = advance
	return nil
}

func (s *Store) ListAllAdvances(_ context.Context) ([]models.MonthlyAdvance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MonthlyAdvance, 0, len(s.advances))
	for _, advance := range s.advances {
		out = append(out, advance)
	}
	return out, nil
}

func (s *Store) DeleteAdvance(_ context.Context, userID, yearMonth string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.advances, advanceKey(userID, yearMonth))
	return nil
}

func (s *Store) DeleteAdvancesByUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, advance := range s.advances {
		if advance.UserID == userID {
			delete(s.advances, key)
		}
	}
	return nil
}

func (s *Store) DeleteAllAdvances(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advances = make(map[string]models.MonthlyAdvance)
	return nil
}
