package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"finanzaflow/internal/core"
	"finanzaflow/internal/ledger"
	"finanzaflow/internal/store"
)

// Publisher emits ledger change events for downstream sync. A nil
// Publisher disables eventing; publish failures are logged, never fatal.
type Publisher interface {
	PublishTransactionUpsert(ctx context.Context, t core.Transaction) error
	PublishTransactionDelete(ctx context.Context, id string) error
}

// LedgerService is the facade the application calls. It owns an in-memory
// snapshot of the authoritative collections and is the only component with
// side effects. Mutations are serialized: exactly one in flight at a time.
//
// After every upsert the authoritative collection is re-fetched rather
// than trusting an optimistic local update. Deletes apply an optimistic
// local removal first for responsiveness, then reconcile with the
// post-delete collection. A failed persistence call leaves the snapshot
// at the last-known-good state; recovery is re-reading the collection.
type LedgerService struct {
	store store.Store
	pub   Publisher
	mat   *Materializer
	newID func() string
	now   func() time.Time

	mu      sync.Mutex
	txs     []core.Transaction
	cats    []core.CategoryItem
	initial core.Money
}

func NewLedgerService(st store.Store, pub Publisher) *LedgerService {
	return &LedgerService{
		store: st,
		pub:   pub,
		mat:   NewMaterializer(st),
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Load populates the snapshot in the order the engine requires:
// categories, then the initial balance, then recurring materialization,
// then the transaction list, so freshly generated instances are visible.
func (s *LedgerService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	s.cats = cats

	initial, err := s.store.GetInitialBalance(ctx)
	if err != nil {
		return fmt.Errorf("get initial balance: %w", err)
	}
	s.initial = initial

	created, err := s.mat.MaterializeDueExpenses(ctx, s.now())
	if err != nil {
		return fmt.Errorf("materialize recurring expenses: %w", err)
	}
	if created > 0 {
		slog.InfoContext(ctx, "Recurring expenses generated on load", "count", created)
	}

	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	s.txs = txs

	return nil
}

// Transactions returns a copy of the current snapshot.
func (s *LedgerService) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...)
}

// Categories returns a copy of the current snapshot.
func (s *LedgerService) Categories() []core.CategoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.CategoryItem(nil), s.cats...)
}

func (s *LedgerService) InitialBalance() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initial
}

// Summary derives the aggregate figures for a scope from the snapshot.
func (s *LedgerService) Summary(scope ledger.Scope) ledger.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Summarize(s.txs, scope, s.initial)
}

// MonthlyCommitment sums the active installment plans for a month.
func (s *LedgerService) MonthlyCommitment(year, month int) core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.MonthlyCommitment(s.txs, year, month)
}

// SaveTransaction upserts by id; create and edit are the same operation.
// A blank id gets a fresh unique one.
func (s *LedgerService) SaveTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = s.newID()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.UpsertTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("upsert transaction: %w", err)
	}
	if err := s.refreshTransactions(ctx); err != nil {
		return core.Transaction{}, err
	}

	s.publishUpsert(ctx, t)
	return t, nil
}

// DeleteTransaction removes optimistically, persists, then reconciles
// with the authoritative collection. A missing id is a no-op: the re-sync
// restores whatever the store holds. Children and parents linked to the
// deleted record are left in place (orphan policy, no cascade).
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.txs[:0:0]
	for _, t := range s.txs {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.txs = kept

	if err := s.store.DeleteTransaction(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		// Keep the optimistic removal; the refresh below re-syncs either way.
		slog.ErrorContext(ctx, "Failed to delete transaction", "id", id, "error", err)
		if refreshErr := s.refreshTransactions(ctx); refreshErr != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	if err := s.refreshTransactions(ctx); err != nil {
		return err
	}

	s.publishDelete(ctx, id)
	return nil
}

// PayInstallment synthesizes and persists the payment child for one
// installment of the parent purchase, dated into the viewed month.
func (s *LedgerService) PayInstallment(ctx context.Context, parentID string, installmentNumber, year, month int) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var parent *core.Transaction
	for i := range s.txs {
		if s.txs[i].ID == parentID {
			parent = &s.txs[i]
			break
		}
	}
	if parent == nil {
		return core.Transaction{}, store.ErrNotFound
	}

	payment, err := ledger.NewPaymentTransaction(*parent, installmentNumber, year, month, s.now())
	if err != nil {
		return core.Transaction{}, err
	}
	payment.ID = s.newID()

	if err := s.store.UpsertTransaction(ctx, payment); err != nil {
		return core.Transaction{}, fmt.Errorf("upsert installment payment: %w", err)
	}
	if err := s.refreshTransactions(ctx); err != nil {
		return core.Transaction{}, err
	}

	s.publishUpsert(ctx, payment)
	return payment, nil
}

// SaveCategory upserts a category and re-fetches the collection.
func (s *LedgerService) SaveCategory(ctx context.Context, c core.CategoryItem) (core.CategoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = s.newID()
	}
	if c.Kind == "" {
		c.Kind = core.CustomCategory
	}
	if err := c.Validate(); err != nil {
		return core.CategoryItem{}, err
	}

	if err := s.store.UpsertCategory(ctx, c); err != nil {
		return core.CategoryItem{}, fmt.Errorf("upsert category: %w", err)
	}
	if err := s.refreshCategories(ctx); err != nil {
		return core.CategoryItem{}, err
	}
	return c, nil
}

// DeleteCategory removes the category only. Transactions referencing it
// keep the category name as a free string and stay untouched.
func (s *LedgerService) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cats[:0:0]
	for _, c := range s.cats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.cats = kept

	if err := s.store.DeleteCategory(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		if refreshErr := s.refreshCategories(ctx); refreshErr != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return s.refreshCategories(ctx)
}

// RecurringRules lists the standing rules straight from the store; rules
// are owned by their manager, not snapshotted by the ledger.
func (s *LedgerService) RecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	rules, err := s.store.ListRecurringRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recurring rules: %w", err)
	}
	return rules, nil
}

func (s *LedgerService) SaveRecurringRule(ctx context.Context, r core.RecurringRule) (core.RecurringRule, error) {
	if r.ID == "" {
		r.ID = s.newID()
	}
	if err := r.Validate(); err != nil {
		return core.RecurringRule{}, err
	}
	if err := s.store.UpsertRecurringRule(ctx, r); err != nil {
		return core.RecurringRule{}, fmt.Errorf("upsert recurring rule: %w", err)
	}
	return r, nil
}

func (s *LedgerService) DeleteRecurringRule(ctx context.Context, id string) error {
	if err := s.store.DeleteRecurringRule(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("delete recurring rule: %w", err)
	}
	return nil
}

// AdjustBalance reconciles a user-entered "true current balance" into a
// new stored baseline. Non-numeric input is rejected before any mutation.
func (s *LedgerService) AdjustBalance(ctx context.Context, targetInput string) (core.Money, error) {
	target, err := core.ParseSignedAmount(targetInput)
	if err != nil {
		return core.Money{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sum := ledger.Summarize(s.txs, ledger.AllTime(), core.Money{})
	newInitial := ledger.ReconcileInitialBalance(target, sum.TotalIncome, sum.TotalExpense, sum.TotalSavings)

	if err := s.store.SetInitialBalance(ctx, newInitial); err != nil {
		return core.Money{}, fmt.Errorf("set initial balance: %w", err)
	}
	s.initial = newInitial

	slog.InfoContext(ctx, "Initial balance reconciled",
		"target_cents", target.Cents,
		"new_initial_cents", newInitial.Cents)

	return newInitial, nil
}

// MaterializeDueRecurringExpenses runs the materializer for the current
// month and refreshes the transaction snapshot. Safe to call repeatedly.
func (s *LedgerService) MaterializeDueRecurringExpenses(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.mat.MaterializeDueExpenses(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if err := s.refreshTransactions(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// refreshTransactions re-reads the authoritative transaction collection.
// Callers must hold s.mu.
func (s *LedgerService) refreshTransactions(ctx context.Context) error {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("refresh transactions: %w", err)
	}
	s.txs = txs
	return nil
}

func (s *LedgerService) refreshCategories(ctx context.Context) error {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("refresh categories: %w", err)
	}
	s.cats = cats
	return nil
}

func (s *LedgerService) publishUpsert(ctx context.Context, t core.Transaction) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishTransactionUpsert(ctx, t); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction upsert", "id", t.ID, "error", err)
	}
}

func (s *LedgerService) publishDelete(ctx context.Context, id string) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishTransactionDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction delete", "id", id, "error", err)
	}
}
