package core

import (
	"errors"
	"math"
	"time"
)

// SplitType determines how an expense amount is divided among participants.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitPercentage SplitType = "percentage"
	SplitExact      SplitType = "exact"
)

// RecurrenceInterval is the cadence at which a recurring expense regenerates.
type RecurrenceInterval string

const (
	Daily   RecurrenceInterval = "daily"
	Weekly  RecurrenceInterval = "weekly"
	Monthly RecurrenceInterval = "monthly"
	Yearly  RecurrenceInterval = "yearly"
)

// recurrenceDays maps each interval to a fixed day count. Monthly and yearly
// are calendar-naive (30/365): existing due dates were computed with these
// values, so changing them would shift every stored schedule.
var recurrenceDays = map[RecurrenceInterval]int{
	Daily:   1,
	Weekly:  7,
	Monthly: 30,
	Yearly:  365,
}

// Days returns the number of days the interval advances a due date by,
// or 0 for an unknown interval.
func (ri RecurrenceInterval) Days() int {
	return recurrenceDays[ri]
}

// Valid reports whether the interval is one of the supported cadences.
func (ri RecurrenceInterval) Valid() bool {
	_, ok := recurrenceDays[ri]
	return ok
}

// Categories is the fixed set of expense categories.
var Categories = []string{
	"Food", "Travel", "Utilities", "Bills", "Shopping",
	"Healthcare", "Entertainment", "Groceries", "Transportation", "Other",
}

const CategoryOther = "Other"

// ValidCategory reports whether c is in the fixed category set.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// SplitValues maps a person name to their share of an expense. The meaning
// of the value depends on the split type: a percentage of the amount, or an
// exact amount.
type SplitValues map[string]float64

// Sum returns the total of all values.
func (sv SplitValues) Sum() float64 {
	var total float64
	for _, v := range sv {
		total += v
	}
	return total
}

// Expense is a cost fronted by one person and shared among participants.
// JSON field names follow the established wire convention and must not change.
type Expense struct {
	ID                 int64              `json:"id"`
	Amount             float64            `json:"amount"`
	Description        string             `json:"description"`
	PaidBy             string             `json:"paid_by"`
	Participants       []string           `json:"participants"`
	SplitType          SplitType          `json:"split_type"`
	SplitValues        SplitValues        `json:"split_values,omitempty"`
	Category           string             `json:"category"`
	IsRecurring        bool               `json:"isRecurring"`
	RecurrenceInterval RecurrenceInterval `json:"recurrenceInterval,omitempty"`
	NextDueDate        *time.Time         `json:"nextDueDate,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Settlement is a single payer-to-payee transaction reducing net balances.
// Derived and transient, never persisted.
type Settlement struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

var (
	// ErrNotFound signals that a referenced expense does not exist.
	ErrNotFound = errors.New("expense not found")
	// ErrInvalidID signals an identifier that does not match the store's
	// format. Checked before any store access, distinct from ErrNotFound.
	ErrInvalidID = errors.New("invalid expense id")
)

// ValidationError carries the full list of rule violations for a payload.
// A payload with any violation is rejected before mutation.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Violations[0]
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StartOfDay strips the time-of-day component in UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
