// Package worker consumes expense events and exports expenses to Google Sheets.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"splitledger/internal/amqp"
	"splitledger/internal/core"
	"splitledger/internal/storage"
)

// ExpenseAppender writes one expense to the export destination.
type ExpenseAppender interface {
	Append(ctx context.Context, expense core.Expense) (string, error)
}

// ExportWorker turns expense events into spreadsheet rows. Created and
// generated expenses are appended; deletions only log, rows already exported
// stay in the sheet as history.
type ExportWorker struct {
	storage  *storage.SQLiteRepository
	appender ExpenseAppender
}

func NewExportWorker(storage *storage.SQLiteRepository, appender ExpenseAppender) *ExportWorker {
	return &ExportWorker{
		storage:  storage,
		appender: appender,
	}
}

// HandleEvent processes a single expense event from AMQP.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	slog.InfoContext(ctx, "Processing expense event",
		"id", msg.ID,
		"action", msg.Action)

	switch msg.Action {
	case amqp.ActionCreated, amqp.ActionGenerated:
		return w.exportExpense(ctx, msg.ID)
	case amqp.ActionDeleted:
		slog.InfoContext(ctx, "Expense deleted, keeping exported row as history", "id", msg.ID)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring event with unknown action",
			"id", msg.ID,
			"action", msg.Action)
		return nil
	}
}

func (w *ExportWorker) exportExpense(ctx context.Context, id int64) error {
	expense, err := w.storage.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Deleted between publish and consume. Nothing to export.
			slog.WarnContext(ctx, "Expense no longer exists, skipping export", "id", id)
			return nil
		}
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.appender.Append(ctx, expense)
	if err != nil {
		return fmt.Errorf("append expense to sheet: %w", err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"id", id,
		"description", expense.Description,
		"amount", expense.Amount,
		"sheets_ref", ref)

	return nil
}
