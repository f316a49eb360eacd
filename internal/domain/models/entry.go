package models

import (
	"fmt"
	"time"
)

// DailyEntry records one user's figures for one calendar day. The four raw
// amounts are optional; a nil pointer means the field was never supplied and
// counts as zero everywhere. Total and Remaining are derived on every write
// and never trusted from caller input.
type DailyEntry struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	Date            string    `bson:"date" json:"date"` // YYYY-MM-DD
	CashAmount      *float64  `bson:"cash_amount,omitempty" json:"cash_amount,omitempty"`
	NetworkAmount   *float64  `bson:"network_amount,omitempty" json:"network_amount,omitempty"`
	PurchasesAmount *float64  `bson:"purchases_amount,omitempty" json:"purchases_amount,omitempty"`
	AdvanceAmount   *float64  `bson:"advance_amount,omitempty" json:"advance_amount,omitempty"`
	Notes           string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Total           float64   `bson:"total" json:"total"`
	Remaining       float64   `bson:"remaining" json:"remaining"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// YearMonth returns the YYYY-MM partition key of the entry's date.
func (e DailyEntry) YearMonth() string {
	if len(e.Date) < 7 {
		return e.Date
	}
	return e.Date[:7]
}

// MonthlyAdvance is a materialized view: the sum of AdvanceAmount over one
// user's entries in one month. It is recomputed in full from the entries on
// every relevant write, never incremented.
type MonthlyAdvance struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	UserID        string    `bson:"user_id" json:"user_id"`
	YearMonth     string    `bson:"year_month" json:"year_month"` // YYYY-MM
	TotalAdvances float64   `bson:"total_advances" json:"total_advances"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// Amount dereferences an optional amount, treating absence as zero.
func Amount(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// MonthKey builds the zero-padded YYYY-MM key used both as the advance
// partition key and as a string prefix filter over entry dates.
func MonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}
