// Package storage persists transactions and budgets in SQLite. It implements
// the budget.Repository port and the ledger reader/appender ports, so a
// single local database can back the whole evaluator.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"duit/internal/budget"
	"duit/internal/core"
	"duit/internal/ledger"
	applog "duit/internal/log"

	_ "modernc.org/sqlite"
)

// Timestamps are stored as UTC RFC3339 strings so lexical order matches
// chronological order and range scans can use the (user_id, occurred_at)
// index directly.
const timeLayout = time.RFC3339

type SQLiteRepository struct {
	db     *sql.DB
	norm   *ledger.Normalizer
	logger *applog.Logger
}

var (
	_ budget.Repository = (*SQLiteRepository)(nil)
	_ ledger.Reader     = (*SQLiteRepository)(nil)
	_ ledger.Appender   = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string, norm *ledger.Normalizer) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if norm == nil {
		norm = ledger.NewNormalizer(nil)
	}

	return &SQLiteRepository{
		db:     db,
		norm:   norm,
		logger: applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append implements ledger.Appender.
func (r *SQLiteRepository) Append(ctx context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, amount_cents, category, description, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		tx.UserID, tx.Amount.Cents, tx.Category, tx.Description,
		tx.Timestamp.UTC().Format(timeLayout))
	if err != nil {
		return "", fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved",
		applog.FieldUserID, tx.UserID,
		applog.FieldCategory, tx.Category,
		applog.FieldAmountCents, tx.Amount.Cents,
		"id", id)

	return strconv.FormatInt(id, 10), nil
}

// ListTransactions implements ledger.Reader. Rows with unparsable timestamps
// are skipped.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string, since, until time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, amount_cents, category, description, occurred_at
		 FROM transactions
		 WHERE user_id = ? AND occurred_at >= ? AND occurred_at < ?
		 ORDER BY occurred_at`,
		userID, since.UTC().Format(timeLayout), until.UTC().Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx  core.Transaction
			raw string
		)
		if err := rows.Scan(&tx.UserID, &tx.Amount.Cents, &tx.Category, &tx.Description, &raw); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		ts, err := time.Parse(timeLayout, raw)
		if err != nil {
			r.logger.WarnContext(ctx, "Skipping transaction with unparsable timestamp",
				applog.FieldUserID, userID, "raw", raw)
			continue
		}
		tx.Timestamp = r.norm.Normalize(ts)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ListUserIDs returns every user with at least one recorded transaction,
// sorted. The digest scheduler iterates this set.
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM transactions ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return out, nil
}

// Get implements budget.Repository.
func (r *SQLiteRepository) Get(ctx context.Context, userID, category string) (core.CategoryBudget, error) {
	var b core.CategoryBudget
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, category, amount_cents, period, alert_threshold
		 FROM budgets WHERE user_id = ? AND category = ?`,
		userID, category).
		Scan(&b.UserID, &b.Category, &b.Amount.Cents, &b.Period, &b.AlertThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CategoryBudget{}, budget.ErrNotFound
	}
	if err != nil {
		return core.CategoryBudget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// Put implements budget.Repository, replacing any existing record.
func (r *SQLiteRepository) Put(ctx context.Context, b core.CategoryBudget) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (user_id, category, amount_cents, period, alert_threshold, updated_at)
		 VALUES (?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT (user_id, category) DO UPDATE SET
		   amount_cents = excluded.amount_cents,
		   period = excluded.period,
		   alert_threshold = excluded.alert_threshold,
		   updated_at = excluded.updated_at`,
		b.UserID, b.Category, b.Amount.Cents, string(b.Period), b.AlertThreshold)
	if err != nil {
		return fmt.Errorf("put budget: %w", err)
	}
	return nil
}

// Delete implements budget.Repository, reporting whether a record existed.
func (r *SQLiteRepository) Delete(ctx context.Context, userID, category string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE user_id = ? AND category = ?`, userID, category)
	if err != nil {
		return false, fmt.Errorf("delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListByUser implements budget.Repository.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]core.CategoryBudget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, category, amount_cents, period, alert_threshold
		 FROM budgets WHERE user_id = ? ORDER BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryBudget
	for rows.Next() {
		var b core.CategoryBudget
		if err := rows.Scan(&b.UserID, &b.Category, &b.Amount.Cents, &b.Period, &b.AlertThreshold); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}
	return out, nil
}
