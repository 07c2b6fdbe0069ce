package core

import (
	"strings"
	"testing"
	"time"
)

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }
func bptr(v bool) *bool       { return &v }

func validCreateDraft() Draft {
	return Draft{
		Amount:       fptr(100),
		Description:  sptr("Dinner"),
		PaidBy:       sptr("alice"),
		Participants: []string{"alice", "bob"},
	}
}

func TestDraftValidate_Create(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Draft)
		wantLen int
		want    string
	}{
		{
			name:   "valid minimal draft",
			mutate: func(d *Draft) {},
		},
		{
			name:    "missing amount",
			mutate:  func(d *Draft) { d.Amount = nil },
			wantLen: 1,
			want:    "amount must be a positive number",
		},
		{
			name:    "zero amount",
			mutate:  func(d *Draft) { d.Amount = fptr(0) },
			wantLen: 1,
			want:    "amount must be a positive number",
		},
		{
			name:    "negative amount",
			mutate:  func(d *Draft) { d.Amount = fptr(-5) },
			wantLen: 1,
			want:    "amount must be a positive number",
		},
		{
			name:    "blank description",
			mutate:  func(d *Draft) { d.Description = sptr("   ") },
			wantLen: 1,
			want:    "description is required",
		},
		{
			name:    "missing paid_by",
			mutate:  func(d *Draft) { d.PaidBy = nil },
			wantLen: 1,
			want:    "paid_by is required",
		},
		{
			name:    "missing participants",
			mutate:  func(d *Draft) { d.Participants = nil },
			wantLen: 1,
			want:    "participants must be a non-empty array",
		},
		{
			name:    "empty participants",
			mutate:  func(d *Draft) { d.Participants = []string{} },
			wantLen: 1,
			want:    "participants must be a non-empty array",
		},
		{
			name:    "unknown split type",
			mutate:  func(d *Draft) { d.SplitType = sptr("weighted") },
			wantLen: 1,
			want:    "split_type must be one of",
		},
		{
			name: "percentage summing to 99 rejected",
			mutate: func(d *Draft) {
				d.SplitType = sptr("percentage")
				d.SplitValues = SplitValues{"alice": 50, "bob": 49}
			},
			wantLen: 1,
			want:    "sum of percentage split_values must be 100",
		},
		{
			name: "percentage summing to 101 rejected",
			mutate: func(d *Draft) {
				d.SplitType = sptr("percentage")
				d.SplitValues = SplitValues{"alice": 50, "bob": 51}
			},
			wantLen: 1,
			want:    "sum of percentage split_values must be 100",
		},
		{
			name: "percentage summing to 100 accepted",
			mutate: func(d *Draft) {
				d.SplitType = sptr("percentage")
				d.SplitValues = SplitValues{"alice": 33.33, "bob": 33.33, "carol": 33.34}
			},
		},
		{
			name: "percentage without split_values",
			mutate: func(d *Draft) {
				d.SplitType = sptr("percentage")
			},
			wantLen: 1,
			want:    "split_values must be provided for percentage split",
		},
		{
			name: "exact values must sum to amount",
			mutate: func(d *Draft) {
				d.SplitType = sptr("exact")
				d.SplitValues = SplitValues{"alice": 60, "bob": 30}
			},
			wantLen: 1,
			want:    "sum of exact split_values must be equal to amount",
		},
		{
			name: "exact values matching amount accepted",
			mutate: func(d *Draft) {
				d.SplitType = sptr("exact")
				d.SplitValues = SplitValues{"alice": 60, "bob": 40}
			},
		},
		{
			name:    "category outside the fixed set",
			mutate:  func(d *Draft) { d.Category = sptr("Gadgets") },
			wantLen: 1,
			want:    "category must be one of",
		},
		{
			name:   "category inside the fixed set",
			mutate: func(d *Draft) { d.Category = sptr("Groceries") },
		},
		{
			name:    "recurring without interval and date",
			mutate:  func(d *Draft) { d.IsRecurring = bptr(true) },
			wantLen: 2,
		},
		{
			name: "recurring with bad interval",
			mutate: func(d *Draft) {
				d.IsRecurring = bptr(true)
				d.RecurrenceInterval = sptr("fortnightly")
				d.NextDueDate = sptr("2026-09-01")
			},
			wantLen: 1,
			want:    "recurrenceInterval must be one of",
		},
		{
			name: "recurring with unparseable date",
			mutate: func(d *Draft) {
				d.IsRecurring = bptr(true)
				d.RecurrenceInterval = sptr("monthly")
				d.NextDueDate = sptr("next tuesday")
			},
			wantLen: 1,
			want:    "nextDueDate must be a valid date",
		},
		{
			name: "valid recurring draft",
			mutate: func(d *Draft) {
				d.IsRecurring = bptr(true)
				d.RecurrenceInterval = sptr("weekly")
				d.NextDueDate = sptr("2026-09-01")
			},
		},
		{
			name: "violations are collected, not short-circuited",
			mutate: func(d *Draft) {
				d.Amount = nil
				d.Description = nil
				d.PaidBy = nil
				d.Participants = nil
			},
			wantLen: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := validCreateDraft()
			tt.mutate(&draft)

			violations := draft.Validate(false)
			if len(violations) != tt.wantLen {
				t.Fatalf("Validate() returned %d violations %v, want %d", len(violations), violations, tt.wantLen)
			}
			if tt.want != "" && !containsSubstring(violations, tt.want) {
				t.Errorf("Validate() = %v, want a violation containing %q", violations, tt.want)
			}
		})
	}
}

func TestDraftValidate_PartialUpdate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantLen int
	}{
		{
			name:  "empty draft validates nothing",
			draft: Draft{},
		},
		{
			name:  "absent fields are skipped",
			draft: Draft{Description: sptr("Rent")},
		},
		{
			name:    "present amount still checked",
			draft:   Draft{Amount: fptr(-1)},
			wantLen: 1,
		},
		{
			name:    "present empty participants rejected",
			draft:   Draft{Participants: []string{}},
			wantLen: 1,
		},
		{
			name: "exact sum not checked when amount absent from payload",
			draft: Draft{
				SplitType:   sptr("exact"),
				SplitValues: SplitValues{"alice": 10},
			},
		},
		{
			name:    "recurring fields required even on update",
			draft:   Draft{IsRecurring: bptr(true)},
			wantLen: 2,
		},
		{
			name:  "turning recurrence off requires nothing",
			draft: Draft{IsRecurring: bptr(false)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := tt.draft.Validate(true)
			if len(violations) != tt.wantLen {
				t.Errorf("Validate(partial) returned %d violations %v, want %d", len(violations), violations, tt.wantLen)
			}
		})
	}
}

func TestDraftToExpense_Defaults(t *testing.T) {
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	draft := validCreateDraft()
	e := draft.ToExpense(now)

	if e.SplitType != SplitEqual {
		t.Errorf("SplitType = %q, want default %q", e.SplitType, SplitEqual)
	}
	if e.Category != CategoryOther {
		t.Errorf("Category = %q, want default %q", e.Category, CategoryOther)
	}
	if !e.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, now)
	}
	if e.IsRecurring || e.NextDueDate != nil {
		t.Error("non-recurring draft should not carry recurrence state")
	}
}

func TestDraftToExpense_AutoFillParticipants(t *testing.T) {
	draft := Draft{
		Amount:      fptr(90),
		Description: sptr("Cab"),
		PaidBy:      sptr("alice"),
		SplitType:   sptr("exact"),
		SplitValues: SplitValues{"bob": 45, "carol": 45},
	}
	e := draft.ToExpense(time.Now())

	if len(e.Participants) != 3 {
		t.Fatalf("Participants = %v, want paid_by plus split value keys", e.Participants)
	}
	if e.Participants[0] != "alice" {
		t.Errorf("Participants[0] = %q, want paid_by first", e.Participants[0])
	}
}

func TestDraftApply_PartialUpdate(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	e := Expense{
		Amount:       50,
		Description:  "Groceries",
		PaidBy:       "alice",
		Participants: []string{"alice", "bob"},
		SplitType:    SplitEqual,
		Category:     "Groceries",
	}

	draft := Draft{Amount: fptr(75), Category: sptr("Food")}
	draft.Apply(&e, now)

	if e.Amount != 75 {
		t.Errorf("Amount = %v, want 75", e.Amount)
	}
	if e.Category != "Food" {
		t.Errorf("Category = %q, want Food", e.Category)
	}
	if e.Description != "Groceries" || e.PaidBy != "alice" {
		t.Error("absent fields must not be touched")
	}
	if !e.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v, want %v", e.UpdatedAt, now)
	}
}

func TestParseDueDate(t *testing.T) {
	if _, err := ParseDueDate("2026-09-01"); err != nil {
		t.Errorf("plain date should parse: %v", err)
	}
	if _, err := ParseDueDate("2026-09-01T00:00:00Z"); err != nil {
		t.Errorf("RFC3339 should parse: %v", err)
	}
	if _, err := ParseDueDate("garbage"); err == nil {
		t.Error("garbage should not parse")
	}
}

func containsSubstring(list []string, sub string) bool {
	for _, s := range list {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
