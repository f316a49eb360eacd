package reporting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/msallal/yawmia/internal/domain/models"
	"github.com/msallal/yawmia/internal/repository/memory"
	"github.com/msallal/yawmia/internal/service/authz"
	"github.com/msallal/yawmia/internal/service/ledger"
)

func ptr(v float64) *float64 { return &v }

type fixture struct {
	svc    *Service
	ledger *ledger.Service
	store  *memory.Store
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	guard := authz.NewGuard(store)

	ctx := context.Background()
	_, err := store.InsertProfile(ctx, models.UserProfile{UserID: "admin", Username: "boss", IsAdmin: true})
	require.NoError(t, err)
	_, err = store.InsertProfile(ctx, models.UserProfile{UserID: "a", Username: "amal", Deductions: 50})
	require.NoError(t, err)
	_, err = store.InsertProfile(ctx, models.UserProfile{UserID: "b", Username: "badr"})
	require.NoError(t, err)

	return fixture{
		svc:    NewService(store, guard, nil),
		ledger: ledger.NewService(store, guard, nil),
		store:  store,
	}
}

func (f fixture) upsert(t *testing.T, in ledger.UpsertInput) {
	t.Helper()
	require.NoError(t, f.ledger.Upsert(context.Background(), "admin", in))
}

func TestReportsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UsersMonthlyAggregate(ctx, "a", 2024, 3)
	require.ErrorIs(t, err, models.ErrForbidden)
	_, err = f.svc.ComprehensiveMonthlySummary(ctx, "a", 2024, 3)
	require.ErrorIs(t, err, models.ErrForbidden)
	_, err = f.svc.UsersMonthlySummary(ctx, "a", 2024, 3)
	require.ErrorIs(t, err, models.ErrForbidden)
}

func TestUsersMonthlyAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, ledger.UpsertInput{Date: "2024-03-05", CashAmount: ptr(100), NetworkAmount: ptr(50), TargetUserID: "a"})
	f.upsert(t, ledger.UpsertInput{Date: "2024-03-06", CashAmount: ptr(30), TargetUserID: "a"})
	f.upsert(t, ledger.UpsertInput{Date: "2024-03-06", NetworkAmount: ptr(20), TargetUserID: "b"})
	f.upsert(t, ledger.UpsertInput{Date: "2024-04-01", CashAmount: ptr(999), TargetUserID: "b"})

	agg, err := f.svc.UsersMonthlyAggregate(ctx, "admin", 2024, 3)
	require.NoError(t, err)

	require.Equal(t, 200.0, agg.TotalAmount)
	require.Equal(t, 3, agg.TotalEntries)
	require.Equal(t, 2, agg.ActiveUsers)
	require.Len(t, agg.UserTotals, 2)

	totals := map[string]float64{}
	for _, ut := range agg.UserTotals {
		totals[ut.UserID] = ut.TotalAmount
	}
	require.Equal(t, 180.0, totals["a"])
	require.Equal(t, 20.0, totals["b"])
}

func TestComprehensiveMonthlySummaryScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, ledger.UpsertInput{Date: "2024-03-05", CashAmount: ptr(100), NetworkAmount: ptr(50), PurchasesAmount: ptr(30), TargetUserID: "a"})
	f.upsert(t, ledger.UpsertInput{Date: "2024-03-06", CashAmount: ptr(0), NetworkAmount: ptr(0), PurchasesAmount: ptr(0), AdvanceAmount: ptr(20), TargetUserID: "a"})

	total, err := f.ledger.MonthlyAdvanceTotal(ctx, "admin", "a", "2024-03")
	require.NoError(t, err)
	require.Equal(t, 20.0, total)

	summary, err := f.svc.ComprehensiveMonthlySummary(ctx, "admin", 2024, 3)
	require.NoError(t, err)
	require.Equal(t, 2024, summary.Year)
	require.Equal(t, 3, summary.Month)
	require.Len(t, summary.DailySummary, 2)

	// Sorted by date descending.
	require.Equal(t, "2024-03-06", summary.DailySummary[0].Date)
	require.Equal(t, "2024-03-05", summary.DailySummary[1].Date)

	day5 := summary.DailySummary[1]
	require.Equal(t, 150.0, day5.TotalAmount)
	require.Equal(t, 120.0, day5.TotalRemaining)
	require.Equal(t, 1, day5.EntriesCount)
	require.Len(t, day5.UserEntries, 1)
	require.Equal(t, "amal", day5.UserEntries[0].Username)
	require.Equal(t, 50.0, day5.UserEntries[0].Deductions)

	day6 := summary.DailySummary[0]
	require.Equal(t, 0.0, day6.TotalAmount)
	require.Equal(t, 20.0, day6.TotalAdvances)

	totals := summary.Totals
	require.Equal(t, 150.0, totals.TotalGross)
	require.Equal(t, 120.0, totals.TotalNet)
	require.Equal(t, 20.0, totals.TotalAdvances)
	require.Equal(t, 2, totals.ActiveDays)
	require.Equal(t, 31, totals.DaysInMonth)
	require.Equal(t, 1, totals.ActiveUsers)
	require.Equal(t, 75.0, totals.AverageDailyAmount)
	// Deductions accumulate once per entry: two entries by a user with 50.
	require.Equal(t, 100.0, totals.TotalDeductions)
}

func TestComprehensiveSummaryDeletedUserPlaceholder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, ledger.UpsertInput{Date: "2024-03-05", CashAmount: ptr(10), TargetUserID: "b"})

	profile, err := f.store.GetProfileByUserID(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteProfile(ctx, profile.ID))

	summary, err := f.svc.ComprehensiveMonthlySummary(ctx, "admin", 2024, 3)
	require.NoError(t, err)
	require.Len(t, summary.DailySummary, 1)
	require.Equal(t, "deleted user", summary.DailySummary[0].UserEntries[0].Username)
	require.Equal(t, 0.0, summary.DailySummary[0].UserEntries[0].Deductions)
}

func TestComprehensiveSummaryEmptyMonth(t *testing.T) {
	f := newFixture(t)

	summary, err := f.svc.ComprehensiveMonthlySummary(context.Background(), "admin", 2024, 2)
	require.NoError(t, err)
	require.Empty(t, summary.DailySummary)
	require.Equal(t, 0.0, summary.Totals.AverageDailyAmount)
	require.Equal(t, 29, summary.Totals.DaysInMonth) // leap February
	require.Equal(t, 0, summary.Totals.ActiveUsers)
}

func TestUsersMonthlySummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, ledger.UpsertInput{Date: "2024-03-05", CashAmount: ptr(100), TargetUserID: "a"})
	f.upsert(t, ledger.UpsertInput{Date: "2024-03-06", NetworkAmount: ptr(40), PurchasesAmount: ptr(15), TargetUserID: "a"})
	f.upsert(t, ledger.UpsertInput{Date: "2024-03-06", CashAmount: ptr(5), TargetUserID: "b"})

	summaries, err := f.svc.UsersMonthlySummary(ctx, "admin", 2024, 3)
	require.NoError(t, err)
	// One record per profile, active or not.
	require.Len(t, summaries, 3)

	// Sorted by combined total descending.
	require.Equal(t, "amal", summaries[0].Username)
	require.Equal(t, 140.0, summaries[0].TotalAmount)
	require.Equal(t, 125.0, summaries[0].TotalRemaining)
	require.Equal(t, 2, summaries[0].EntriesCount)
	require.Equal(t, 2, summaries[0].ActiveDays)
	require.Equal(t, 50.0, summaries[0].Deductions)

	require.Equal(t, "badr", summaries[1].Username)
	require.Equal(t, 5.0, summaries[1].TotalAmount)

	require.Equal(t, "boss", summaries[2].Username)
	require.True(t, summaries[2].IsAdmin)
	require.Equal(t, 0, summaries[2].EntriesCount)
}

func TestUsersMonthlySummaryDropsDeletedUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.upsert(t, ledger.UpsertInput{Date: "2024-03-05", CashAmount: ptr(10), TargetUserID: "b"})

	profile, err := f.store.GetProfileByUserID(ctx, "b")
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteProfile(ctx, profile.ID))

	summaries, err := f.svc.UsersMonthlySummary(ctx, "admin", 2024, 3)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	for _, summary := range summaries {
		require.NotEqual(t, "b", summary.UserID)
	}
}
