package core

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// sumTolerance absorbs float accumulation error when checking split value
// totals, so payloads like 33.33+33.33+33.34 validate as expected.
const sumTolerance = 1e-6

// Draft is a candidate expense payload. Pointer and nil-able fields
// distinguish "absent" from "present but zero", which drives the
// partial-update semantics: an absent field is not validated and not applied.
type Draft struct {
	Amount             *float64    `json:"amount"`
	Description        *string     `json:"description"`
	PaidBy             *string     `json:"paid_by"`
	Participants       []string    `json:"participants"`
	SplitType          *string     `json:"split_type"`
	SplitValues        SplitValues `json:"split_values"`
	Category           *string     `json:"category"`
	IsRecurring        *bool       `json:"isRecurring"`
	RecurrenceInterval *string     `json:"recurrenceInterval"`
	NextDueDate        *string     `json:"nextDueDate"`
}

// Validate checks the draft against all rules and returns every violation
// found; an empty result means the draft is acceptable. Rules are evaluated
// independently, never short-circuited. With partial=true (updates), a field
// absent from the payload is skipped; a present field is validated under the
// same rule as on create.
func (d *Draft) Validate(partial bool) []string {
	var violations []string

	if !partial || d.Amount != nil {
		if d.Amount == nil || *d.Amount <= 0 {
			violations = append(violations, "amount must be a positive number")
		}
	}

	if !partial || d.Description != nil {
		if d.Description == nil || strings.TrimSpace(*d.Description) == "" {
			violations = append(violations, "description is required and must be a non-empty string")
		}
	}

	if !partial || d.PaidBy != nil {
		if d.PaidBy == nil || strings.TrimSpace(*d.PaidBy) == "" {
			violations = append(violations, "paid_by is required and must be a non-empty string")
		}
	}

	if !partial || d.Participants != nil {
		if len(d.Participants) == 0 {
			violations = append(violations, "participants must be a non-empty array")
		}
	}

	if d.SplitType != nil {
		switch SplitType(*d.SplitType) {
		case SplitEqual, SplitPercentage, SplitExact:
		default:
			violations = append(violations, "split_type must be one of equal, percentage, exact")
		}
	}

	if d.SplitType != nil && SplitType(*d.SplitType) == SplitPercentage {
		if d.SplitValues == nil {
			violations = append(violations, "split_values must be provided for percentage split")
		} else if math.Abs(d.SplitValues.Sum()-100) > sumTolerance {
			violations = append(violations, "sum of percentage split_values must be 100")
		}
	}

	if d.SplitType != nil && SplitType(*d.SplitType) == SplitExact {
		if d.SplitValues == nil {
			violations = append(violations, "split_values must be provided for exact split")
		} else if d.Amount != nil && math.Abs(d.SplitValues.Sum()-*d.Amount) > sumTolerance {
			violations = append(violations, "sum of exact split_values must be equal to amount")
		}
	}

	if d.Category != nil && !ValidCategory(*d.Category) {
		violations = append(violations,
			fmt.Sprintf("category must be one of %s", strings.Join(Categories, ", ")))
	}

	// Recurrence fields are required whenever isRecurring is explicitly true,
	// on create and update alike.
	if d.IsRecurring != nil && *d.IsRecurring {
		if d.RecurrenceInterval == nil || !RecurrenceInterval(*d.RecurrenceInterval).Valid() {
			violations = append(violations,
				"recurrenceInterval must be one of daily, weekly, monthly, yearly when isRecurring is true")
		}
		if d.NextDueDate == nil {
			violations = append(violations, "nextDueDate must be a valid date when isRecurring is true")
		} else if _, err := ParseDueDate(*d.NextDueDate); err != nil {
			violations = append(violations, "nextDueDate must be a valid date when isRecurring is true")
		}
	}

	return violations
}

// ToExpense builds a new expense from a validated create draft. Participants
// left empty are auto-filled from paid_by plus the split value keys; category
// defaults to Other and split type to equal.
func (d *Draft) ToExpense(now time.Time) Expense {
	e := Expense{
		Amount:      *d.Amount,
		Description: *d.Description,
		PaidBy:      *d.PaidBy,
		SplitType:   SplitEqual,
		Category:    CategoryOther,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if d.SplitType != nil {
		e.SplitType = SplitType(*d.SplitType)
	}
	if d.SplitValues != nil {
		e.SplitValues = d.SplitValues
	}
	if d.Category != nil {
		e.Category = *d.Category
	}

	if len(d.Participants) > 0 {
		e.Participants = d.Participants
	} else {
		e.Participants = fillParticipants(e.PaidBy, e.SplitValues)
	}

	if d.IsRecurring != nil && *d.IsRecurring {
		e.IsRecurring = true
		e.RecurrenceInterval = RecurrenceInterval(*d.RecurrenceInterval)
		due, _ := ParseDueDate(*d.NextDueDate)
		e.NextDueDate = &due
	}

	return e
}

// Apply merges a validated partial draft into an existing expense. Absent
// fields are left untouched.
func (d *Draft) Apply(e *Expense, now time.Time) {
	if d.Amount != nil {
		e.Amount = *d.Amount
	}
	if d.Description != nil {
		e.Description = *d.Description
	}
	if d.PaidBy != nil {
		e.PaidBy = *d.PaidBy
	}
	if d.Participants != nil {
		e.Participants = d.Participants
	}
	if d.SplitType != nil {
		e.SplitType = SplitType(*d.SplitType)
	}
	if d.SplitValues != nil {
		e.SplitValues = d.SplitValues
	}
	if d.Category != nil {
		e.Category = *d.Category
	}
	if d.IsRecurring != nil {
		e.IsRecurring = *d.IsRecurring
	}
	if d.RecurrenceInterval != nil {
		e.RecurrenceInterval = RecurrenceInterval(*d.RecurrenceInterval)
	}
	if d.NextDueDate != nil {
		if due, err := ParseDueDate(*d.NextDueDate); err == nil {
			e.NextDueDate = &due
		}
	}
	e.UpdatedAt = now
}

// ParseDueDate accepts both plain dates (2006-01-02) and RFC 3339 timestamps,
// normalized to UTC.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse due date %q: %w", s, err)
	}
	return t.UTC(), nil
}

func fillParticipants(paidBy string, sv SplitValues) []string {
	seen := map[string]bool{paidBy: true}
	participants := []string{paidBy}
	for person := range sv {
		if !seen[person] {
			seen[person] = true
			participants = append(participants, person)
		}
	}
	return participants
}
