// Package ledger owns the per-user, per-date daily entries and the derived
// monthly advance cache.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/msallal/yawmia/internal/domain/models"
	"github.com/msallal/yawmia/internal/repository"
	"github.com/msallal/yawmia/internal/service/authz"
)

const dateLayout = "2006-01-02"

// Service implements the daily entry ledger and the monthly advance
// aggregator.
type Service struct {
	store  repository.Store
	guard  *authz.Guard
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new ledger service instance.
func NewService(store repository.Store, guard *authz.Guard, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		guard:  guard,
		logger: logger,
		now:    time.Now,
	}
}

// UpsertInput carries the writable fields of a daily entry. Nil amounts
// mean "not supplied" and count as zero in the derived totals.
type UpsertInput struct {
	Date            string
	CashAmount      *float64
	NetworkAmount   *float64
	PurchasesAmount *float64
	AdvanceAmount   *float64
	Notes           string
	TargetUserID    string
}

// ListEntries returns the target user's entries sorted by date descending.
// When both year and month are given the result is narrowed to dates with
// the zero-padded YYYY-MM prefix; the filter is a plain string prefix match
// against the stored date format, not a range comparison.
func (s *Service) ListEntries(ctx context.Context, callerID, targetUserID string, year, month int) ([]models.DailyEntry, error) {
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

	entries, err := s.store.ListEntriesByUser(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	if year != 0 && month != 0 {
		monthKey := models.MonthKey(year, month)
		filtered := entries[:0]
		for _, entry := range entries {
			if strings.HasPrefix(entry.Date, monthKey) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})

	return entries, nil
}

// Upsert writes the entry for (target user, date), replacing any existing
// row for that key. Total and remaining are recomputed from the raw
// amounts; a nonzero advance triggers a full recompute of that month's
// advance cache. The whole sequence runs in one transaction.
func (s *Service) Upsert(ctx context.Context, callerID string, in UpsertInput) error {
	caller, err := s.guard.ResolveCaller(ctx, callerID)
	if err != nil {
		return err
	}

	targetUserID := in.TargetUserID
	if targetUserID == "" {
		targetUserID = caller.UserID
	}
	if err := s.guard.RequireSelfOrAdmin(caller, targetUserID); err != nil {
		return err
	}

	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", in.Date, err)
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		// The target profile's deductions are intentionally not part of the
		// stored calculation; they apply at report time only.
		if _, err := s.store.GetProfileByUserID(ctx, targetUserID); err != nil {
			return fmt.Errorf("load target profile: %w", err)
		}

		total := models.Amount(in.CashAmount) + models.Amount(in.NetworkAmount)
		remaining := total - models.Amount(in.PurchasesAmount)
		now := s.now().UTC()

		existing, err := s.store.GetEntryByUserAndDate(ctx, targetUserID, in.Date)
		if err != nil {
			return fmt.Errorf("lookup entry: %w", err)
		}

		entry := models.DailyEntry{
			UserID:          targetUserID,
			Date:            in.Date,
			CashAmount:      in.CashAmount,
			NetworkAmount:   in.NetworkAmount,
			PurchasesAmount: in.PurchasesAmount,
			AdvanceAmount:   in.AdvanceAmount,
			Notes:           in.Notes,
			Total:           total,
			Remaining:       remaining,
			UpdatedAt:       now,
		}

		if existing != nil {
			entry.ID = existing.ID
			entry.CreatedAt = existing.CreatedAt
			if err := s.store.UpdateEntry(ctx, entry); err != nil {
				return err
			}
		} else {
			entry.CreatedAt = now
			if _, err := s.store.InsertEntry(ctx, entry); err != nil {
				return err
			}
		}

		if in.AdvanceAmount != nil && *in.AdvanceAmount != 0 {
			if err := s.recomputeMonth(ctx, targetUserID, in.Date); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("entry upserted",
		zap.String("user_id", targetUserID),
		zap.String("date", in.Date))
	return nil
}

// Delete removes a single entry by id. Admin only.
func (s *Service) Delete(ctx context.Context, callerID, entryID string) error {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return err
	}

	if err := s.store.DeleteEntry(ctx, entryID); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	s.logger.Info("entry deleted", zap.String("entry_id", entryID))
	return nil
}

// MonthlyAdvanceTotal returns the cached advance sum for (target user,
// yearMonth), or 0 when no cache row exists.
func (s *Service) MonthlyAdvanceTotal(ctx context.Context, callerID, targetUserID, yearMonth string) (float64, error) {
	caller, err := s.guard.ResolveCaller(ctx, callerID)
	if err != nil {
		return 0, err
	}

	if targetUserID == "" {
		targetUserID = caller.UserID
	}
	if err := s.guard.RequireSelfOrAdmin(caller, targetUserID); err != nil {
		return 0, err
	}

	advance, err := s.store.GetAdvance(ctx, targetUserID, yearMonth)
	if err != nil {
		return 0, fmt.Errorf("load advance: %w", err)
	}
	if advance == nil {
		return 0, nil
	}
	return advance.TotalAdvances, nil
}

// recomputeMonth rebuilds the advance cache row for the month containing
// date. The sum is always recomputed from the source entries; never
// incremented, so edits and deletes of earlier entries cannot drift it.
func (s *Service) recomputeMonth(ctx context.Context, userID, date string) error {
	yearMonth := date
	if len(yearMonth) > 7 {
		yearMonth = yearMonth[:7]
	}

	entries, err := s.store.ListEntriesByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("scan entries: %w", err)
	}

	var total float64
	for _, entry := range entries {
		if strings.HasPrefix(entry.Date, yearMonth) && entry.AdvanceAmount != nil && *entry.AdvanceAmount != 0 {
			total += *entry.AdvanceAmount
		}
	}

	return s.store.UpsertAdvance(ctx, models.MonthlyAdvance{
		UserID:        userID,
		YearMonth:     yearMonth,
		TotalAdvances: total,
		UpdatedAt:     s.now().UTC(),
	})
}

// ReconcileAdvances rebuilds every monthly advance cache row from the
// entries table and drops rows whose source entries are gone. Run
// periodically as drift repair for the materialized view.
func (s *Service) ReconcileAdvances(ctx context.Context) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context) error {
		entries, err := s.store.ListAllEntries(ctx)
		if err != nil {
			return fmt.Errorf("scan entries: %w", err)
		}

		totals := make(map[string]map[string]float64)
		for _, entry := range entries {
			if entry.AdvanceAmount == nil || *entry.AdvanceAmount == 0 {
				continue
			}
			byMonth, ok := totals[entry.UserID]
			if !ok {
				byMonth = make(map[string]float64)
				totals[entry.UserID] = byMonth
			}
			byMonth[entry.YearMonth()] += *entry.AdvanceAmount
		}

		now := s.now().UTC()
		var recomputed int
		for userID, byMonth := range totals {
			for yearMonth, total := range byMonth {
				err := s.store.UpsertAdvance(ctx, models.MonthlyAdvance{
					UserID:        userID,
					YearMonth:     yearMonth,
					TotalAdvances: total,
					UpdatedAt:     now,
				})
				if err != nil {
					return err
				}
				recomputed++
			}
		}

		cached, err := s.store.ListAllAdvances(ctx)
		if err != nil {
			return fmt.Errorf("scan advances: %w", err)
		}

		var stale int
		for _, advance := range cached {
			if _, ok := totals[advance.UserID][advance.YearMonth]; ok {
				continue
			}
			if err := s.store.DeleteAdvance(ctx, advance.UserID, advance.YearMonth); err != nil {
				return err
			}
			stale++
		}

		s.logger.Info("advance caches reconciled",
			zap.Int("recomputed", recomputed),
			zap.Int("stale_removed", stale))
		return nil
	})
}
