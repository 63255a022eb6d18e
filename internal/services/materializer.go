// Package services orchestrates the ledger engine against the storage
// collaborator: recurring materialization and the ledger facade.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"finanzaflow/internal/core"
	"finanzaflow/internal/store"
)

// Materializer turns active recurring rules into concrete PENDING expense
// transactions for the current real-world month. It never backfills past
// months and is idempotent: the load-time de-duplication check lets the
// application call it unconditionally on every startup.
type Materializer struct {
	store store.Store
	// newID produces globally unique transaction ids.
	newID func() string
}

func NewMaterializer(st store.Store) *Materializer {
	return &Materializer{
		store: st,
		newID: uuid.NewString,
	}
}

// MaterializeDueExpenses generates at most one transaction per active rule
// for the month containing now. A rule is due when no existing transaction
// carries its id inside that month. Per-rule failures are logged and
// skipped; the remaining rules still get their chance, since no rule's
// generation depends on another's.
func (m *Materializer) MaterializeDueExpenses(ctx context.Context, now time.Time) (int, error) {
	rules, err := m.store.ListRecurringRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring rules: %w", err)
	}

	txs, err := m.store.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	month := core.MonthOf(now)
	generated := make(map[string]bool)
	for _, t := range txs {
		if t.RecurringRuleID != "" && month.Contains(t.Date) {
			generated[t.RecurringRuleID] = true
		}
	}

	slog.InfoContext(ctx, "Materializing due recurring expenses",
		"month", month.String(),
		"total_rules", len(rules))

	created := 0
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if generated[rule.ID] {
			continue
		}

		tx := core.Transaction{
			ID:              m.newID(),
			Amount:          rule.Amount,
			Description:     rule.Description,
			Category:        rule.Category,
			Date:            month.DateAt(rule.DayOfMonth),
			Type:            core.Expense,
			Status:          core.Pending,
			RecurringRuleID: rule.ID,
		}

		if err := m.store.UpsertTransaction(ctx, tx); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring expense",
				"rule_id", rule.ID,
				"description", rule.Description,
				"error", err)
			continue
		}

		created++
		slog.InfoContext(ctx, "Materialized recurring expense",
			"rule_id", rule.ID,
			"transaction_id", tx.ID,
			"description", rule.Description,
			"amount_cents", rule.Amount.Cents,
			"date", tx.Date.Format("2006-01-02"))
	}

	slog.InfoContext(ctx, "Recurring materialization complete",
		"month", month.String(),
		"created", created)

	return created, nil
}
