package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"splitledger/internal/core"

	_ "modernc.org/sqlite"
)

const expenseColumns = `id, amount, description, paid_by, participants, split_type,
	split_values, category, is_recurring, recurrence_interval, next_due_date,
	created_at, updated_at`

// SQLiteRepository is the persistent expense store.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// SQLite allows one writer; a single connection serializes the
	// recurrence engine's transactional writes against API writes.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateExpense inserts the expense and returns it with its assigned ID.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	created, err := insertExpense(ctx, r.db, e)
	if err != nil {
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", created.ID,
		"description", created.Description,
		"amount", created.Amount,
		"paid_by", created.PaidBy)
	return created, nil
}

// GetExpense returns the expense with the given ID or core.ErrNotFound.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// ListExpenses returns all expenses, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// UpdateExpense persists the expense's current field values by ID.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	participants, splitValues, err := encodeJSONColumns(e)
	if err != nil {
		return core.Expense{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET
			amount = ?, description = ?, paid_by = ?, participants = ?,
			split_type = ?, split_values = ?, category = ?, is_recurring = ?,
			recurrence_interval = ?, next_due_date = ?, updated_at = ?
		WHERE id = ?`,
		e.Amount, e.Description, e.PaidBy, participants,
		string(e.SplitType), splitValues, e.Category, boolToInt(e.IsRecurring),
		nullString(string(e.RecurrenceInterval)), nullTime(e.NextDueDate), e.UpdatedAt.Unix(),
		e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.Expense{}, core.ErrNotFound
	}

	return r.GetExpense(ctx, e.ID)
}

// DeleteExpense removes the expense or returns core.ErrNotFound.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// ListDueRecurring returns recurring expenses whose next due date falls in
// [from, to).
func (r *SQLiteRepository) ListDueRecurring(ctx context.Context, from, to time.Time) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE is_recurring = 1 AND next_due_date >= ? AND next_due_date < ?
		ORDER BY id`,
		from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("list due recurring expenses: %w", err)
	}
	defer rows.Close()

	return collectExpenses(rows)
}

// GenerateOccurrence materializes the next occurrence of a recurring expense
// and advances the original's due date in one transaction. The original's due
// date is re-checked against [from, to) inside the transaction, so two
// overlapping runs in the same window generate exactly one occurrence: the
// second run sees the advanced date and reports generated=false.
func (r *SQLiteRepository) GenerateOccurrence(ctx context.Context, originalID int64, next core.Expense, from, to time.Time) (core.Expense, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var due sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT next_due_date FROM expenses WHERE id = ? AND is_recurring = 1`,
		originalID).Scan(&due)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, false, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, false, fmt.Errorf("check original due date: %w", err)
	}
	if !due.Valid || due.Int64 < from.Unix() || due.Int64 >= to.Unix() {
		// Already advanced by a concurrent run.
		return core.Expense{}, false, nil
	}

	created, err := insertExpense(ctx, tx, next)
	if err != nil {
		return core.Expense{}, false, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE expenses SET next_due_date = ?, updated_at = ? WHERE id = ?`,
		nullTime(next.NextDueDate), next.UpdatedAt.Unix(), originalID); err != nil {
		return core.Expense{}, false, fmt.Errorf("advance original %d: %w", originalID, err)
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, false, fmt.Errorf("commit occurrence: %w", err)
	}
	return created, true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertExpense(ctx context.Context, db execer, e core.Expense) (core.Expense, error) {
	participants, splitValues, err := encodeJSONColumns(e)
	if err != nil {
		return core.Expense{}, err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO expenses (
			amount, description, paid_by, participants, split_type, split_values,
			category, is_recurring, recurrence_interval, next_due_date,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Amount, e.Description, e.PaidBy, participants, string(e.SplitType), splitValues,
		e.Category, boolToInt(e.IsRecurring), nullString(string(e.RecurrenceInterval)),
		nullTime(e.NextDueDate), e.CreatedAt.Unix(), e.UpdatedAt.Unix())
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return e, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e            core.Expense
		participants string
		splitValues  sql.NullString
		splitType    string
		interval     sql.NullString
		isRecurring  int64
		nextDue      sql.NullInt64
		createdAt    int64
		updatedAt    int64
	)

	if err := row.Scan(
		&e.ID, &e.Amount, &e.Description, &e.PaidBy, &participants, &splitType,
		&splitValues, &e.Category, &isRecurring, &interval, &nextDue,
		&createdAt, &updatedAt,
	); err != nil {
		return core.Expense{}, err
	}

	if err := json.Unmarshal([]byte(participants), &e.Participants); err != nil {
		return core.Expense{}, fmt.Errorf("decode participants: %w", err)
	}
	if splitValues.Valid && splitValues.String != "" {
		if err := json.Unmarshal([]byte(splitValues.String), &e.SplitValues); err != nil {
			return core.Expense{}, fmt.Errorf("decode split values: %w", err)
		}
	}

	e.SplitType = core.SplitType(splitType)
	e.IsRecurring = isRecurring != 0
	if interval.Valid {
		e.RecurrenceInterval = core.RecurrenceInterval(interval.String)
	}
	if nextDue.Valid {
		due := time.Unix(nextDue.Int64, 0).UTC()
		e.NextDueDate = &due
	}
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func encodeJSONColumns(e core.Expense) (participants string, splitValues sql.NullString, err error) {
	p := e.Participants
	if p == nil {
		p = []string{}
	}
	pb, err := json.Marshal(p)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("encode participants: %w", err)
	}

	if e.SplitValues != nil {
		sb, err := json.Marshal(e.SplitValues)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("encode split values: %w", err)
		}
		splitValues = sql.NullString{String: string(sb), Valid: true}
	}
	return string(pb), splitValues, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
