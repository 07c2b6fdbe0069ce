package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"splitledger/internal/amqp"
	"splitledger/internal/core"
	"splitledger/internal/storage"
)

// ExpenseService orchestrates expense operations across validation, SQLite
// and AMQP event publishing.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense validates a create draft and persists the new expense.
// Validation happens before any write: a draft with violations is rejected
// whole with a core.ValidationError.
func (s *ExpenseService) CreateExpense(ctx context.Context, draft core.Draft) (core.Expense, error) {
	if violations := draft.Validate(false); len(violations) > 0 {
		return core.Expense{}, &core.ValidationError{Violations: violations}
	}

	expense, err := s.storage.CreateExpense(ctx, draft.ToExpense(time.Now().UTC()))
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	s.publishEvent(ctx, expense.ID, amqp.ActionCreated)
	return expense, nil
}

// GetExpense returns a single expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	return s.storage.GetExpense(ctx, id)
}

// ListExpenses returns all expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.storage.ListExpenses(ctx)
}

// UpdateExpense applies a validated partial draft to an existing expense.
// Absent fields keep their stored values.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, draft core.Draft) (core.Expense, error) {
	if violations := draft.Validate(true); len(violations) > 0 {
		return core.Expense{}, &core.ValidationError{Violations: violations}
	}

	expense, err := s.storage.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}

	draft.Apply(&expense, time.Now().UTC())

	updated, err := s.storage.UpdateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return updated, nil
}

// DeleteExpense removes an expense by ID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.storage.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, id, amqp.ActionDeleted)
	return nil
}

// People returns everyone appearing as payer or participant.
func (s *ExpenseService) People(ctx context.Context) ([]string, error) {
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	return core.People(expenses), nil
}

// Balances recomputes every person's net balance from the full expense set.
func (s *ExpenseService) Balances(ctx context.Context) (map[string]float64, error) {
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	return core.Balances(expenses, core.People(expenses)), nil
}

// Settlements recomputes the settling transactions from the full expense set.
func (s *ExpenseService) Settlements(ctx context.Context) ([]core.Settlement, error) {
	expenses, err := s.storage.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	people := core.People(expenses)
	return core.Settlements(core.Balances(expenses, people), people), nil
}

// publishEvent notifies downstream consumers of an expense change. Publish
// failures never fail the request: the expense is already durable locally.
func (s *ExpenseService) publishEvent(ctx context.Context, id int64, action string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishExpenseEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"id", id, "action", action, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}
	return nil
}
