package ledger

import "finanzaflow/internal/core"

// ReconcileInitialBalance inverts the balance formula so that summarizing
// the unchanged transaction set with the returned baseline reproduces
// target exactly:
//
//	balance = initial + income - expense - savings
//	initial = target - income + expense + savings
func ReconcileInitialBalance(target, income, expense, savings core.Money) core.Money {
	return target.Sub(income).Add(expense).Add(savings)
}
