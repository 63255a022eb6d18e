// Package ledger implements the pure accounting engine: aggregation,
// installment expansion, and balance reconciliation. Nothing here has
// side effects; every function recomputes from the full transaction set.
package ledger

import (
	"sort"

	"finanzaflow/internal/core"
)

// Scope selects which transactions an aggregation covers: all time, or a
// single calendar month. The scope is always passed explicitly; there is
// no ambient "current view month".
type Scope struct {
	allTime bool
	month   core.Month
}

// AllTime covers every transaction ever recorded.
func AllTime() Scope {
	return Scope{allTime: true}
}

// ForMonth covers transactions whose date falls in the given calendar
// month, comparing year and month only.
func ForMonth(year, month int) Scope {
	return Scope{month: core.NewMonth(year, month)}
}

func (s Scope) contains(t core.Transaction) bool {
	return s.allTime || s.month.Contains(t.Date)
}

// CategoryAmount is an expense total for one category name.
type CategoryAmount struct {
	Name   string
	Amount core.Money
}

// Summary holds the typed sums for a scope. Balance is only meaningful
// for the all-time scope; monthly scopes have no standalone balance.
type Summary struct {
	TotalIncome  core.Money
	TotalExpense core.Money
	TotalSavings core.Money
	Balance      core.Money
	ByCategory   []CategoryAmount
}

// Summarize computes the typed totals and the expense-by-category
// breakdown for the scope. The all-time balance is
// initialBalance + income - expense - savings: savings remove liquidity,
// modeling money moved into a separate account. The result is identical
// for any permutation of the input.
func Summarize(txs []core.Transaction, scope Scope, initialBalance core.Money) Summary {
	var sum Summary
	byCategory := make(map[string]int64)

	for _, t := range txs {
		if !scope.contains(t) {
			continue
		}
		switch t.Type {
		case core.Income:
			sum.TotalIncome = sum.TotalIncome.Add(t.Amount)
		case core.Expense:
			sum.TotalExpense = sum.TotalExpense.Add(t.Amount)
			byCategory[t.Category] += t.Amount.Cents
		case core.Savings:
			sum.TotalSavings = sum.TotalSavings.Add(t.Amount)
		}
	}

	if scope.allTime {
		sum.Balance = initialBalance.
			Add(sum.TotalIncome).
			Sub(sum.TotalExpense).
			Sub(sum.TotalSavings)
	}

	sum.ByCategory = make([]CategoryAmount, 0, len(byCategory))
	for name, cents := range byCategory {
		sum.ByCategory = append(sum.ByCategory, CategoryAmount{
			Name:   name,
			Amount: core.Money{Cents: cents},
		})
	}
	// Descending by amount, name as tie-break for a stable order.
	// Truncating to a top-N is the caller's presentation concern.
	sort.Slice(sum.ByCategory, func(i, j int) bool {
		a, b := sum.ByCategory[i], sum.ByCategory[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})

	return sum
}
