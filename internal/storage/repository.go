// Package storage owns the durable SQLite representation of the ledger: one
// table of transactions and one of savings goals. Every public operation is
// a single atomic statement against the store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ivanmayoraldev/mintly-tracker/internal/core"

	_ "modernc.org/sqlite"
)

// ErrStorageUnavailable marks failures to reach the store itself, as opposed
// to per-statement errors.
var ErrStorageUnavailable = errors.New("storage unavailable")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", ErrStorageUnavailable, err)
	}

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

// AddTransaction inserts a new row and returns the assigned identity. The
// type tag is normalized to its canonical code before it reaches the
// database; the schema CHECK is the last line of defense.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	code := core.NormalizeTypeCode(string(t.Type))

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (type, amount, category, description, date)
		 VALUES (?, ?, ?, ?, ?)`,
		code, t.Amount, t.Category, t.Description, t.Date)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"type", code,
		"amount", t.Amount,
		"category", t.Category,
		"date", t.Date)

	return id, nil
}

// DeleteTransaction removes the row if present. Deleting a missing id is not
// an error.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListTransactions returns all transactions ordered by date descending, then
// id descending as the tie-break for same-date rows. A limit of 0 means no
// cap.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	query := `SELECT id, type, amount, category, description, date
	          FROM transactions ORDER BY date DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactionsByType is ListTransactions filtered to one type.
func (r *SQLiteRepository) ListTransactionsByType(ctx context.Context, t core.TransactionType, limit int) ([]core.Transaction, error) {
	query := `SELECT id, type, amount, category, description, date
	          FROM transactions WHERE type = ? ORDER BY date DESC, id DESC`
	args := []any{core.NormalizeTypeCode(string(t))}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions by type: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// AggregateByPeriod sums amounts per type over the inclusive range
// [start, end]. Dates compare as strings, consistent with the storage
// format. Types without rows report 0.
func (r *SQLiteRepository) AggregateByPeriod(ctx context.Context, start, end string) (core.PeriodTotals, error) {
	var totals core.PeriodTotals

	rows, err := r.db.QueryContext(ctx,
		`SELECT type, COALESCE(SUM(amount), 0)
		 FROM transactions WHERE date BETWEEN ? AND ? GROUP BY type`,
		start, end)
	if err != nil {
		return totals, fmt.Errorf("aggregate by period: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code string
		var total float64
		if err := rows.Scan(&code, &total); err != nil {
			return totals, fmt.Errorf("scan period total: %w", err)
		}
		switch code {
		case core.CodeIncome:
			totals.Income = total
		case core.CodeExpense:
			totals.Expense = total
		case core.CodeSavings:
			totals.Savings = total
		}
	}
	if err := rows.Err(); err != nil {
		return totals, fmt.Errorf("aggregate by period: %w", err)
	}

	return totals, nil
}

// CategoryTotals groups summed amounts by category for one type. Categories
// with no rows are absent from the result.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, t core.TransactionType) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount) FROM transactions WHERE type = ? GROUP BY category`,
		core.NormalizeTypeCode(string(t)))
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals[category] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	return totals, nil
}

// AddSavingsGoal inserts a new goal and returns the assigned identity.
func (r *SQLiteRepository) AddSavingsGoal(ctx context.Context, g core.SavingsGoal) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (name, target_amount, current_amount, deadline, description)
		 VALUES (?, ?, ?, ?, ?)`,
		g.Name, g.TargetAmount, g.CurrentAmount, g.Deadline, g.Description)
	if err != nil {
		return 0, fmt.Errorf("insert savings goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("savings goal insert id: %w", err)
	}

	slog.InfoContext(ctx, "Savings goal saved",
		"id", id,
		"name", g.Name,
		"target_amount", g.TargetAmount)

	return id, nil
}

// DeleteSavingsGoal removes the goal if present. Deleting a missing id is
// not an error, and savings transactions recorded against the goal remain
// as historical rows.
func (r *SQLiteRepository) DeleteSavingsGoal(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return nil
}

// ListSavingsGoals returns all goals, newest first.
func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_amount, current_amount, deadline, description
		 FROM savings_goals ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var current sql.NullFloat64
		var deadline, description sql.NullString
		if err := rows.Scan(&g.ID, &g.Name, &g.TargetAmount, &current, &deadline, &description); err != nil {
			return nil, fmt.Errorf("scan savings goal: %w", err)
		}
		g.CurrentAmount = current.Float64
		g.Deadline = deadline.String
		g.Description = description.String
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}

	return goals, nil
}

// IncrementSavingsGoal atomically adds amount to the goal's balance. A
// missing id is a silent no-op, consistent with the idempotent deletes; the
// warning keeps the condition observable.
func (r *SQLiteRepository) IncrementSavingsGoal(ctx context.Context, id int64, amount float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET current_amount = current_amount + ? WHERE id = ?`,
		amount, id)
	if err != nil {
		return fmt.Errorf("increment savings goal: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		slog.WarnContext(ctx, "Goal increment matched no rows", "goal_id", id, "amount", amount)
	}

	return nil
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var code string
		var description sql.NullString
		if err := rows.Scan(&t.ID, &code, &t.Amount, &t.Category, &description, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TypeFromCode(code)
		t.Description = description.String
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	return txs, nil
}
