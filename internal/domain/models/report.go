package models

// UserTotal pairs a user with their combined cash+network amount for a month.
type UserTotal struct {
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
}

// MonthlyAggregate is the lightweight all-users rollup for one month.
type MonthlyAggregate struct {
	TotalAmount  float64     `json:"total_amount"`
	TotalEntries int         `json:"total_entries"`
	ActiveUsers  int         `json:"active_users"`
	UserTotals   []UserTotal `json:"user_totals"`
}

// EntryBreakdown is one user's contribution to a day inside the
// comprehensive monthly summary.
type EntryBreakdown struct {
	UserID          string  `json:"user_id"`
	Username        string  `json:"username"`
	CashAmount      float64 `json:"cash_amount"`
	NetworkAmount   float64 `json:"network_amount"`
	PurchasesAmount float64 `json:"purchases_amount"`
	AdvanceAmount   float64 `json:"advance_amount"`
	Deductions      float64 `json:"deductions"`
	Total           float64 `json:"total"`
	Remaining       float64 `json:"remaining"`
}

// DaySummary buckets all entries of a single calendar date.
type DaySummary struct {
	Date           string           `json:"date"`
	TotalCash      float64          `json:"total_cash"`
	TotalNetwork   float64          `json:"total_network"`
	TotalPurchases float64          `json:"total_purchases"`
	TotalAdvances  float64          `json:"total_advances"`
	TotalAmount    float64          `json:"total_amount"`
	TotalRemaining float64          `json:"total_remaining"`
	EntriesCount   int              `json:"entries_count"`
	UserEntries    []EntryBreakdown `json:"user_entries"`
}

// MonthlyTotals carries the grand totals and derived statistics of a
// comprehensive monthly summary.
type MonthlyTotals struct {
	TotalCash          float64 `json:"total_cash"`
	TotalNetwork       float64 `json:"total_network"`
	TotalGross         float64 `json:"total_gross"`
	TotalPurchases     float64 `json:"total_purchases"`
	TotalNet           float64 `json:"total_net"`
	TotalAdvances      float64 `json:"total_advances"`
	TotalDeductions    float64 `json:"total_deductions"`
	AverageDailyAmount float64 `json:"average_daily_amount"`
	ActiveDays         int     `json:"active_days"`
	DaysInMonth        int     `json:"days_in_month"`
	ActiveUsers        int     `json:"active_users"`
}

// ComprehensiveMonthlySummary is the full per-day report for one month.
type ComprehensiveMonthlySummary struct {
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	DailySummary []DaySummary  `json:"daily_summary"`
	Totals       MonthlyTotals `json:"totals"`
}

// UserMonthlySummary is one user's month rollup. Every existing profile
// gets a record even with zero activity.
type UserMonthlySummary struct {
	UserID         string  `json:"user_id"`
	Username       string  `json:"username"`
	IsAdmin        bool    `json:"is_admin"`
	Deductions     float64 `json:"deductions"`
	TotalCash      float64 `json:"total_cash"`
	TotalNetwork   float64 `json:"total_network"`
	TotalPurchases float64 `json:"total_purchases"`
	TotalAdvances  float64 `json:"total_advances"`
	TotalAmount    float64 `json:"total_amount"`
	TotalRemaining float64 `json:"total_remaining"`
	EntriesCount   int     `json:"entries_count"`
	ActiveDays     int     `json:"active_days"`
}
