// Package storage implements the store.Store ports on SQLite.
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

	"finanzaflow/internal/core"
	"finanzaflow/internal/store"

	_ "modernc.org/sqlite"
)

const balanceKey = "initial_balance_cents"

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

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
		return nil, fmt.Errorf("ping database: %w", err)
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

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, description, category, date, type, status,
		       plan_total_installments, plan_paid_installments, plan_start_date, plan_monthly_cents,
		       recurring_rule_id, parent_transaction_id
		FROM transactions
		ORDER BY date, id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t          core.Transaction
			date       string
			planTotal  sql.NullInt64
			planPaid   sql.NullInt64
			planStart  sql.NullString
			planAmount sql.NullInt64
		)
		if err := rows.Scan(
			&t.ID, &t.Amount.Cents, &t.Description, &t.Category, &date, &t.Type, &t.Status,
			&planTotal, &planPaid, &planStart, &planAmount,
			&t.RecurringRuleID, &t.ParentTransactionID,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", date, err)
		}
		if planTotal.Valid {
			start, err := time.Parse(time.RFC3339, planStart.String)
			if err != nil {
				return nil, fmt.Errorf("parse plan start date %q: %w", planStart.String, err)
			}
			t.InstallmentPlan = &core.InstallmentPlan{
				TotalInstallments: int(planTotal.Int64),
				PaidInstallments:  int(planPaid.Int64),
				StartDate:         start,
				MonthlyAmount:     core.Money{Cents: planAmount.Int64},
			}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}

	var (
		planTotal  sql.NullInt64
		planPaid   sql.NullInt64
		planStart  sql.NullString
		planAmount sql.NullInt64
	)
	if t.InstallmentPlan != nil {
		p := t.InstallmentPlan
		planTotal = sql.NullInt64{Int64: int64(p.TotalInstallments), Valid: true}
		planPaid = sql.NullInt64{Int64: int64(p.PaidInstallments), Valid: true}
		planStart = sql.NullString{String: p.StartDate.UTC().Format(time.RFC3339), Valid: true}
		planAmount = sql.NullInt64{Int64: p.MonthlyAmount.Cents, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, amount_cents, description, category, date, type, status,
			plan_total_installments, plan_paid_installments, plan_start_date, plan_monthly_cents,
			recurring_rule_id, parent_transaction_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount_cents = excluded.amount_cents,
			description = excluded.description,
			category = excluded.category,
			date = excluded.date,
			type = excluded.type,
			status = excluded.status,
			plan_total_installments = excluded.plan_total_installments,
			plan_paid_installments = excluded.plan_paid_installments,
			plan_start_date = excluded.plan_start_date,
			plan_monthly_cents = excluded.plan_monthly_cents,
			recurring_rule_id = excluded.recurring_rule_id,
			parent_transaction_id = excluded.parent_transaction_id`,
		t.ID, t.Amount.Cents, t.Description, t.Category,
		t.Date.UTC().Format(time.RFC3339), string(t.Type), string(t.Status),
		planTotal, planPaid, planStart, planAmount,
		t.RecurringRuleID, t.ParentTransactionID,
	)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "transactions", id)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.CategoryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, kind FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryItem
	for rows.Next() {
		var c core.CategoryItem
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Kind); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.CategoryItem) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, kind) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			kind = excluded.kind`,
		c.ID, c.Name, c.Color, string(c.Kind),
	)
	if err != nil {
		return fmt.Errorf("upsert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "categories", id)
}

func (r *SQLiteRepository) ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, category, day_of_month, active
		FROM recurring_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query recurring rules: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringRule
	for rows.Next() {
		var rule core.RecurringRule
		if err := rows.Scan(&rule.ID, &rule.Description, &rule.Amount.Cents,
			&rule.Category, &rule.DayOfMonth, &rule.Active); err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring rules: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpsertRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_rules (id, description, amount_cents, category, day_of_month, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			amount_cents = excluded.amount_cents,
			category = excluded.category,
			day_of_month = excluded.day_of_month,
			active = excluded.active`,
		rule.ID, rule.Description, rule.Amount.Cents, rule.Category, rule.DayOfMonth, rule.Active,
	)
	if err != nil {
		return fmt.Errorf("upsert recurring rule: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "recurring_rules", id)
}

func (r *SQLiteRepository) GetInitialBalance(ctx context.Context) (core.Money, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, balanceKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, nil
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("query initial balance: %w", err)
	}
	cents, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return core.Money{}, fmt.Errorf("parse initial balance %q: %w", value, err)
	}
	return core.Money{Cents: cents}, nil
}

func (r *SQLiteRepository) SetInitialBalance(ctx context.Context, v core.Money) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		balanceKey, strconv.FormatInt(v.Cents, 10),
	)
	if err != nil {
		return fmt.Errorf("set initial balance: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) deleteByID(ctx context.Context, table, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
