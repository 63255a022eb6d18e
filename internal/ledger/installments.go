package ledger

import (
	"fmt"
	"time"

	"finanzaflow/internal/core"
)

// PlanActiveInMonth reports whether the plan's window covers the given
// calendar month: the month distance from the start month must lie in
// [0, TotalInstallments). Distance is pure year*12+month arithmetic, so
// day-of-month and month length never shift the window.
func PlanActiveInMonth(plan core.InstallmentPlan, year, month int) bool {
	offset := core.NewMonth(year, month).Index() - core.MonthOf(plan.StartDate).Index()
	return offset >= 0 && offset < plan.TotalInstallments
}

// MonthlyCommitment sums the monthly amounts of every plan active in the
// given month. Transactions without a plan contribute nothing; the parent
// purchase records themselves are not cash movements.
func MonthlyCommitment(txs []core.Transaction, year, month int) core.Money {
	var total core.Money
	for _, t := range txs {
		if t.InstallmentPlan == nil {
			continue
		}
		if PlanActiveInMonth(*t.InstallmentPlan, year, month) {
			total = total.Add(t.InstallmentPlan.MonthlyAmount)
		}
	}
	return total
}

// CountPaidInstallments derives the parent's paid count from its generated
// children. The count is never stored redundantly on the plan.
func CountPaidInstallments(txs []core.Transaction, parentID string) int {
	n := 0
	for _, t := range txs {
		if t.ParentTransactionID == parentID {
			n++
		}
	}
	return n
}

// NewPaymentTransaction synthesizes the concrete payment for one
// installment of the parent purchase. The payment lands on today's
// day-of-month when the target month is the current one, otherwise on the
// 1st, both at 12:00 UTC so timezone conversion cannot shift the day.
// The parent's PaidInstallments is not touched; it is derived by counting
// children.
func NewPaymentTransaction(parent core.Transaction, installmentNumber int, year, month int, now time.Time) (core.Transaction, error) {
	if parent.InstallmentPlan == nil {
		return core.Transaction{}, core.ErrInvalidPlan
	}
	plan := *parent.InstallmentPlan

	target := core.NewMonth(year, month)
	day := 1
	if target.Contains(now) {
		day = now.Day()
	}

	return core.Transaction{
		Amount:              plan.MonthlyAmount,
		Description:         fmt.Sprintf("%s (Installment %d/%d)", parent.Description, installmentNumber, plan.TotalInstallments),
		Category:            parent.Category,
		Date:                target.DateAt(day),
		Type:                core.Expense,
		Status:              core.Paid,
		ParentTransactionID: parent.ID,
	}, nil
}
