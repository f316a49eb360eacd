// Package reporting builds the admin-facing monthly rollups: the
// lightweight all-users aggregate, the comprehensive per-day summary and
// the per-user summary. All three are pure read computations; missing
// optional amounts count as zero throughout.
package reporting

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

// Username shown when an entry's author no longer has a profile.
const deletedUserPlaceholder = "deleted user"

// Service exposes the monthly report builders. Admin only.
type Service struct {
	store  repository.Store
	guard  *authz.Guard
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(store repository.Store, guard *authz.Guard, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, guard: guard, logger: logger}
}

// monthEntries scans the entries table and keeps those whose date carries
// the zero-padded YYYY-MM prefix.
func (s *Service) monthEntries(ctx context.Context, year, month int) ([]models.DailyEntry, error) {
	all, err := s.store.ListAllEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan entries: %w", err)
	}

	monthKey := models.MonthKey(year, month)
	var out []models.DailyEntry
	for _, entry := range all {
		if strings.HasPrefix(entry.Date, monthKey) {
			out = append(out, entry)
		}
	}
	return out, nil
}

// UsersMonthlyAggregate is a single pass over the month's entries that
// yields the combined cash+network total, the entry count, the number of
// distinct active users and per-user totals in first-seen order.
func (s *Service) UsersMonthlyAggregate(ctx context.Context, callerID string, year, month int) (*models.MonthlyAggregate, error) {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	entries, err := s.monthEntries(ctx, year, month)
	if err != nil {
		return nil, err
	}

	agg := &models.MonthlyAggregate{
		TotalEntries: len(entries),
		UserTotals:   []models.UserTotal{},
	}

	index := make(map[string]int)
	for _, entry := range entries {
		total := models.Amount(entry.CashAmount) + models.Amount(entry.NetworkAmount)
		agg.TotalAmount += total

		if i, ok := index[entry.UserID]; ok {
			agg.UserTotals[i].TotalAmount += total
		} else {
			index[entry.UserID] = len(agg.UserTotals)
			agg.UserTotals = append(agg.UserTotals, models.UserTotal{UserID: entry.UserID, TotalAmount: total})
		}
	}
	agg.ActiveUsers = len(index)

	return agg, nil
}

// ComprehensiveMonthlySummary groups the month's entries into per-day
// buckets with per-entry user breakdowns, and accumulates the grand totals
// in the same pass.
//
// The deductions grand total is summed once per ENTRY, so a user with N
// entries in the month contributes N times their deductions. That matches
// the established report output and is kept deliberately.
func (s *Service) ComprehensiveMonthlySummary(ctx context.Context, callerID string, year, month int) (*models.ComprehensiveMonthlySummary, error) {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	entries, err := s.monthEntries(ctx, year, month)
	if err != nil {
		return nil, err
	}

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}
	profilesByUser := make(map[string]models.UserProfile, len(profiles))
	for _, profile := range profiles {
		profilesByUser[profile.UserID] = profile
	}

	days := make(map[string]*models.DaySummary)
	activeUsers := make(map[string]struct{})
	totals := models.MonthlyTotals{}

	for _, entry := range entries {
		day, ok := days[entry.Date]
		if !ok {
			day = &models.DaySummary{Date: entry.Date, UserEntries: []models.EntryBreakdown{}}
			days[entry.Date] = day
		}

		cash := models.Amount(entry.CashAmount)
		network := models.Amount(entry.NetworkAmount)
		purchases := models.Amount(entry.PurchasesAmount)
		advance := models.Amount(entry.AdvanceAmount)

		username := deletedUserPlaceholder
		var deductions float64
		if profile, ok := profilesByUser[entry.UserID]; ok {
			username = profile.Username
			deductions = profile.Deductions
		}

		day.TotalCash += cash
		day.TotalNetwork += network
		day.TotalPurchases += purchases
		day.TotalAdvances += advance
		day.TotalAmount += cash + network
		day.TotalRemaining += cash + network - purchases
		day.EntriesCount++

		day.UserEntries = append(day.UserEntries, models.EntryBreakdown{
			UserID:          entry.UserID,
			Username:        username,
			CashAmount:      cash,
			NetworkAmount:   network,
			PurchasesAmount: purchases,
			AdvanceAmount:   advance,
			Deductions:      deductions,
			Total:           cash + network,
			Remaining:       cash + network - purchases,
		})

		totals.TotalCash += cash
		totals.TotalNetwork += network
		totals.TotalPurchases += purchases
		totals.TotalAdvances += advance
		totals.TotalDeductions += deductions
		activeUsers[entry.UserID] = struct{}{}
	}

	daily := make([]models.DaySummary, 0, len(days))
	for _, day := range days {
		daily = append(daily, *day)
	}
	sort.Slice(daily, func(i, j int) bool {
		return daily[i].Date > daily[j].Date
	})

	totals.TotalGross = totals.TotalCash + totals.TotalNetwork
	totals.TotalNet = totals.TotalGross - totals.TotalPurchases
	totals.ActiveDays = len(daily)
	if len(daily) > 0 {
		totals.AverageDailyAmount = totals.TotalGross / float64(len(daily))
	}
	totals.DaysInMonth = daysInMonth(year, month)
	totals.ActiveUsers = len(activeUsers)

	return &models.ComprehensiveMonthlySummary{
		Year:         year,
		Month:        month,
		DailySummary: daily,
		Totals:       totals,
	}, nil
}

// UsersMonthlySummary produces one record per existing profile, zeroed when
// the user had no activity. Entries whose author no longer has a profile
// are dropped on purpose. Sorted by combined cash+network total descending.
func (s *Service) UsersMonthlySummary(ctx context.Context, callerID string, year, month int) ([]models.UserMonthlySummary, error) {
	if _, err := s.guard.RequireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	entries, err := s.monthEntries(ctx, year, month)
	if err != nil {
		return nil, err
	}

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan profiles: %w", err)
	}

	byUser := make(map[string]*models.UserMonthlySummary, len(profiles))
	for _, profile := range profiles {
		byUser[profile.UserID] = &models.UserMonthlySummary{
			UserID:     profile.UserID,
			Username:   profile.Username,
			IsAdmin:    profile.IsAdmin,
			Deductions: profile.Deductions,
		}
	}

	for _, entry := range entries {
		summary, ok := byUser[entry.UserID]
		if !ok {
			continue
		}

		cash := models.Amount(entry.CashAmount)
		network := models.Amount(entry.NetworkAmount)
		purchases := models.Amount(entry.PurchasesAmount)

		summary.TotalCash += cash
		summary.TotalNetwork += network
		summary.TotalPurchases += purchases
		summary.TotalAdvances += models.Amount(entry.AdvanceAmount)
		summary.TotalAmount += cash + network
		summary.TotalRemaining += cash + network - purchases
		summary.EntriesCount++
	}

	activeDates := make(map[string]map[string]struct{})
	for _, entry := range entries {
		dates, ok := activeDates[entry.UserID]
		if !ok {
			dates = make(map[string]struct{})
			activeDates[entry.UserID] = dates
		}
		dates[entry.Date] = struct{}{}
	}
	for userID, dates := range activeDates {
		if summary, ok := byUser[userID]; ok {
			summary.ActiveDays = len(dates)
		}
	}

	out := make([]models.UserMonthlySummary, 0, len(byUser))
	for _, summary := range byUser {
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TotalAmount > out[j].TotalAmount
	})

	return out, nil
}

// daysInMonth returns the number of calendar days in the target month via
// the day number of its last day.
func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
