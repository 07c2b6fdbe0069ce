package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"splitledger/internal/amqp"
	"splitledger/internal/core"
	"splitledger/internal/metrics"
	"splitledger/internal/storage"
)

// RecurringProcessor materializes new expense occurrences from recurring
// expenses that are due today. It is stateless between invocations: all
// schedule state lives in the stored next due dates.
type RecurringProcessor struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewRecurringProcessor(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *RecurringProcessor {
	return &RecurringProcessor{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// ProcessDueExpenses generates the next occurrence for every recurring
// expense due today and advances each original's schedule. Only expenses
// whose next due date falls within [todayStart, todayStart+1d) are selected,
// so a day is never reprocessed once past.
//
// The occurrence insert and the original's advance happen in one storage
// transaction, with the due window re-checked inside it; running the
// processor twice on the same day therefore creates exactly one occurrence.
// Failures are isolated per expense: one broken schedule never blocks the
// rest of the batch.
func (p *RecurringProcessor) ProcessDueExpenses(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	metrics.RecurrenceRuns.Inc()

	today := core.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	due, err := p.storage.ListDueRecurring(ctx, today, tomorrow)
	if err != nil {
		return 0, fmt.Errorf("list due recurring expenses: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring expenses",
		"due", len(due),
		"processing_date", today.Format("2006-01-02"))

	generated := 0
	for _, expense := range due {
		if !expense.RecurrenceInterval.Valid() {
			slog.ErrorContext(ctx, "Skipping recurring expense with unknown interval",
				"id", expense.ID,
				"interval", expense.RecurrenceInterval)
			continue
		}

		occurrence, ok, err := p.storage.GenerateOccurrence(
			ctx, expense.ID, nextOccurrence(expense, today, now.UTC()), today, tomorrow)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to generate occurrence",
				"id", expense.ID,
				"description", expense.Description,
				"error", err)
			continue
		}
		if !ok {
			// Another invocation advanced this schedule first.
			slog.DebugContext(ctx, "Occurrence already generated for today", "id", expense.ID)
			continue
		}

		generated++
		metrics.OccurrencesGenerated.Inc()
		p.publishGenerated(ctx, occurrence.ID)

		slog.InfoContext(ctx, "Generated expense occurrence",
			"original_id", expense.ID,
			"occurrence_id", occurrence.ID,
			"description", occurrence.Description,
			"interval", occurrence.RecurrenceInterval,
			"next_due", occurrence.NextDueDate.Format("2006-01-02"))
	}

	slog.InfoContext(ctx, "Recurring expense processing complete",
		"generated", generated,
		"due", len(due))

	return generated, nil
}

// nextOccurrence copies the recurring expense into a fresh record whose due
// date is advanced by the interval's fixed day count.
func nextOccurrence(expense core.Expense, today, now time.Time) core.Expense {
	nextDue := today.AddDate(0, 0, expense.RecurrenceInterval.Days())

	next := expense
	next.ID = 0
	next.NextDueDate = &nextDue
	next.CreatedAt = now
	next.UpdatedAt = now
	return next
}

func (p *RecurringProcessor) publishGenerated(ctx context.Context, id int64) {
	if p.amqpClient == nil {
		return
	}
	if err := p.amqpClient.PublishExpenseEvent(ctx, id, amqp.ActionGenerated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish generated event", "id", id, "error", err)
	}
}
