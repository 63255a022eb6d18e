// Package store declares the ports the ledger engine needs from its
// storage collaborator. All operations are context-aware and fallible;
// the engine never retries them.
package store

import (
	"context"
	"errors"

	"finanzaflow/internal/core"
)

// ErrNotFound is returned when an id does not exist in the authoritative
// collection. Callers treat it as a no-op and re-sync.
var ErrNotFound = errors.New("record not found")

type (
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		// UpsertTransaction inserts or fully replaces by id.
		UpsertTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
	}

	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.CategoryItem, error)
		UpsertCategory(ctx context.Context, c core.CategoryItem) error
		DeleteCategory(ctx context.Context, id string) error
	}

	RecurringRuleStore interface {
		ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error)
		UpsertRecurringRule(ctx context.Context, r core.RecurringRule) error
		DeleteRecurringRule(ctx context.Context, id string) error
	}

	BalanceStore interface {
		GetInitialBalance(ctx context.Context) (core.Money, error)
		SetInitialBalance(ctx context.Context, v core.Money) error
	}

	// Store is the full storage collaborator surface.
	Store interface {
		TransactionStore
		CategoryStore
		RecurringRuleStore
		BalanceStore
	}
)
