package ledger

import (
	"testing"

	"finanzaflow/internal/core"
)

func TestReconcileInitialBalance_RoundTrip(t *testing.T) {
	txs := sampleTransactions()

	targets := []int64{0, 1, -250000, 987654, 75000}
	for _, target := range targets {
		sum := Summarize(txs, AllTime(), core.Money{})
		newInitial := ReconcileInitialBalance(
			core.Money{Cents: target},
			sum.TotalIncome, sum.TotalExpense, sum.TotalSavings,
		)
		got := Summarize(txs, AllTime(), newInitial)
		if got.Balance.Cents != target {
			t.Errorf("round trip for target %d: balance = %d", target, got.Balance.Cents)
		}
	}
}

func TestReconcileInitialBalance_EmptyLedger(t *testing.T) {
	got := ReconcileInitialBalance(core.Money{Cents: 5000}, core.Money{}, core.Money{}, core.Money{})
	if got.Cents != 5000 {
		t.Errorf("empty ledger: initial = %d, want target 5000", got.Cents)
	}
}
