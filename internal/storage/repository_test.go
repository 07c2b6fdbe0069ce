package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"splitledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testExpense(now time.Time) core.Expense {
	return core.Expense{
		Amount:       100,
		Description:  "Dinner",
		PaidBy:       "alice",
		Participants: []string{"alice", "bob"},
		SplitType:    core.SplitEqual,
		Category:     "Food",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	e := testExpense(now)
	e.SplitType = core.SplitExact
	e.SplitValues = core.SplitValues{"alice": 40, "bob": 60}

	created, err := repo.CreateExpense(ctx, e)
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("CreateExpense should assign an ID")
	}

	got, err := repo.GetExpense(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.Description != "Dinner" || got.Amount != 100 || got.PaidBy != "alice" {
		t.Errorf("GetExpense = %+v, want the stored fields back", got)
	}
	if len(got.Participants) != 2 {
		t.Errorf("Participants = %v, want 2 entries", got.Participants)
	}
	if got.SplitValues["bob"] != 60 {
		t.Errorf("SplitValues[bob] = %v, want 60", got.SplitValues["bob"])
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetExpense(context.Background(), 12345)
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetExpense(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_ListOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		e := testExpense(base.Add(time.Duration(i) * time.Minute))
		if _, err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	expenses, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 3 {
		t.Fatalf("ListExpenses returned %d expenses, want 3", len(expenses))
	}
	for i := 1; i < len(expenses); i++ {
		if expenses[i].CreatedAt.After(expenses[i-1].CreatedAt) {
			t.Error("ListExpenses should return newest first")
		}
	}
}

func TestRepository_Update(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	created, err := repo.CreateExpense(ctx, testExpense(now))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	created.Amount = 150
	created.Category = "Travel"
	created.UpdatedAt = now.Add(time.Hour)

	updated, err := repo.UpdateExpense(ctx, created)
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if updated.Amount != 150 || updated.Category != "Travel" {
		t.Errorf("UpdateExpense = %+v, want amount 150 and category Travel", updated)
	}

	missing := created
	missing.ID = 9999
	if _, err := repo.UpdateExpense(ctx, missing); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateExpense(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateExpense(ctx, testExpense(time.Now().UTC()))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if err := repo.DeleteExpense(ctx, created.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetExpense(deleted) error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteExpense(ctx, created.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteExpense(deleted) error = %v, want ErrNotFound", err)
	}
}

func recurringExpense(due time.Time) core.Expense {
	now := due.Add(-24 * time.Hour)
	e := testExpense(now)
	e.IsRecurring = true
	e.RecurrenceInterval = core.Monthly
	e.NextDueDate = &due
	return e
}

func TestRepository_ListDueRecurring(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	dueToday := recurringExpense(today)
	dueTomorrow := recurringExpense(tomorrow)
	notRecurring := testExpense(today)

	for _, e := range []core.Expense{dueToday, dueTomorrow, notRecurring} {
		if _, err := repo.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	due, err := repo.ListDueRecurring(ctx, today, tomorrow)
	if err != nil {
		t.Fatalf("ListDueRecurring: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("ListDueRecurring returned %d expenses, want only the one due today", len(due))
	}
	if !due[0].NextDueDate.Equal(today) {
		t.Errorf("due expense NextDueDate = %v, want %v", due[0].NextDueDate, today)
	}
}

func TestRepository_GenerateOccurrence(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	advanced := today.AddDate(0, 0, 30)

	original, err := repo.CreateExpense(ctx, recurringExpense(today))
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	next := original
	next.ID = 0
	next.NextDueDate = &advanced
	next.CreatedAt = today
	next.UpdatedAt = today

	created, generated, err := repo.GenerateOccurrence(ctx, original.ID, next, today, tomorrow)
	if err != nil {
		t.Fatalf("GenerateOccurrence: %v", err)
	}
	if !generated {
		t.Fatal("first run should generate an occurrence")
	}
	if created.ID == original.ID {
		t.Error("occurrence must be a new record")
	}

	// The original's schedule must have advanced in the same transaction.
	got, err := repo.GetExpense(ctx, original.ID)
	if err != nil {
		t.Fatalf("GetExpense: %v", err)
	}
	if got.NextDueDate == nil || !got.NextDueDate.Equal(advanced) {
		t.Errorf("original NextDueDate = %v, want %v", got.NextDueDate, advanced)
	}

	// A second run in the same window must see the advanced date and skip.
	_, generated, err = repo.GenerateOccurrence(ctx, original.ID, next, today, tomorrow)
	if err != nil {
		t.Fatalf("GenerateOccurrence (second run): %v", err)
	}
	if generated {
		t.Error("second run in the same window must not generate a duplicate")
	}

	expenses, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("expense count = %d, want exactly 2 (original + one occurrence)", len(expenses))
	}
}

func TestRepository_GenerateOccurrenceMissingOriginal(t *testing.T) {
	repo := newTestRepo(t)
	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	_, _, err := repo.GenerateOccurrence(context.Background(), 777, testExpense(today), today, today.AddDate(0, 0, 1))
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GenerateOccurrence(missing) error = %v, want ErrNotFound", err)
	}
}
