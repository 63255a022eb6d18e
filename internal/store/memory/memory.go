// Package memory provides a mutex-guarded in-memory Store, used by the
// memory backend and as the test double for the engine.
package memory

import (
	"context"
	"sort"
	"sync"

	"finanzaflow/internal/core"
	"finanzaflow/internal/store"
)

type Store struct {
	mu      sync.Mutex
	txs     map[string]core.Transaction
	cats    map[string]core.CategoryItem
	rules   map[string]core.RecurringRule
	balance core.Money
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		txs:   make(map[string]core.Transaction),
		cats:  make(map[string]core.CategoryItem),
		rules: make(map[string]core.RecurringRule),
	}
}

// Seed returns a store preloaded with the default category set.
func Seed(categories []core.CategoryItem) *Store {
	s := New()
	for _, c := range categories {
		s.cats[c.ID] = c
	}
	return s
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.txs))
	for _, t := range s.txs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpsertTransaction(_ context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.InstallmentPlan != nil {
		plan := *t.InstallmentPlan
		t.InstallmentPlan = &plan
	}
	s.txs[t.ID] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.txs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.CategoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.CategoryItem, 0, len(s.cats))
	for _, c := range s.cats {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UpsertCategory(_ context.Context, c core.CategoryItem) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cats[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cats[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.cats, id)
	return nil
}

func (s *Store) ListRecurringRules(_ context.Context) ([]core.RecurringRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpsertRecurringRule(_ context.Context, r core.RecurringRule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = r
	return nil
}

func (s *Store) DeleteRecurringRule(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.rules, id)
	return nil
}

func (s *Store) GetInitialBalance(_ context.Context) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance, nil
}

func (s *Store) SetInitialBalance(_ context.Context, v core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = v
	return nil
}
