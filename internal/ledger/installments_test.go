package ledger

import (
	"errors"
	"strings"
	"testing"
	"time"

	"finanzaflow/internal/core"
)

func TestPlanActiveInMonth(t *testing.T) {
	plan := core.InstallmentPlan{
		TotalInstallments: 3,
		StartDate:         time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		MonthlyAmount:     core.Money{Cents: 10000},
	}

	tests := []struct {
		name  string
		year  int
		month int
		want  bool
	}{
		{"start month", 2024, 1, true},
		{"second month", 2024, 2, true},
		{"last month", 2024, 3, true},
		{"month after window", 2024, 4, false},
		{"month before window", 2023, 12, false},
		{"one year later", 2025, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlanActiveInMonth(plan, tt.year, tt.month); got != tt.want {
				t.Errorf("PlanActiveInMonth(%d, %d) = %v, want %v", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestPlanActiveInMonth_YearBoundary(t *testing.T) {
	// A 12-month plan starting November straddles the year boundary.
	plan := core.InstallmentPlan{
		TotalInstallments: 12,
		StartDate:         time.Date(2023, 11, 28, 0, 0, 0, 0, time.UTC),
		MonthlyAmount:     core.Money{Cents: 5000},
	}

	if !PlanActiveInMonth(plan, 2024, 2) {
		t.Error("plan should be active in Feb 2024")
	}
	if !PlanActiveInMonth(plan, 2024, 10) {
		t.Error("plan should be active in Oct 2024 (12th month)")
	}
	if PlanActiveInMonth(plan, 2024, 11) {
		t.Error("plan should be inactive in Nov 2024")
	}
}

func TestMonthlyCommitment(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	parent := core.Transaction{
		ID:          "parent",
		Amount:      core.Money{Cents: 120000},
		Description: "Laptop",
		Category:    "Shopping",
		Date:        start,
		Type:        core.Expense,
		Status:      core.Pending,
		InstallmentPlan: &core.InstallmentPlan{
			TotalInstallments: 12,
			StartDate:         start,
			MonthlyAmount:     core.Money{Cents: 10000},
		},
	}
	short := parent
	short.ID = "short"
	short.InstallmentPlan = &core.InstallmentPlan{
		TotalInstallments: 2,
		StartDate:         start,
		MonthlyAmount:     core.Money{Cents: 3000},
	}
	plain := mkTx("plain", core.Expense, 99999, "Food", start)

	txs := []core.Transaction{parent, short, plain}

	tests := []struct {
		name  string
		year  int
		month int
		want  int64
	}{
		{"both plans active", 2024, 2, 13000},
		{"short plan expired", 2024, 3, 10000},
		{"before both", 2023, 12, 0},
		{"after both", 2025, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyCommitment(txs, tt.year, tt.month)
			if got.Cents != tt.want {
				t.Errorf("MonthlyCommitment(%d, %d) = %d, want %d", tt.year, tt.month, got.Cents, tt.want)
			}
		})
	}
}

func TestNewPaymentTransaction(t *testing.T) {
	parent := core.Transaction{
		ID:          "parent-1",
		Amount:      core.Money{Cents: 120000},
		Description: "Laptop",
		Category:    "Shopping",
		Date:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Status:      core.Pending,
		InstallmentPlan: &core.InstallmentPlan{
			TotalInstallments: 12,
			StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MonthlyAmount:     core.Money{Cents: 10000},
		},
	}
	now := time.Date(2024, 3, 21, 9, 30, 0, 0, time.UTC)

	t.Run("current month uses today's day", func(t *testing.T) {
		got, err := NewPaymentTransaction(parent, 3, 2024, 3, now)
		if err != nil {
			t.Fatalf("NewPaymentTransaction: %v", err)
		}
		if got.Amount.Cents != 10000 {
			t.Errorf("amount = %d, want 10000", got.Amount.Cents)
		}
		if got.Type != core.Expense || got.Status != core.Paid {
			t.Errorf("type/status = %s/%s, want EXPENSE/PAID", got.Type, got.Status)
		}
		if got.Category != "Shopping" {
			t.Errorf("category = %q, want Shopping", got.Category)
		}
		if !strings.Contains(got.Description, "Laptop") || !strings.Contains(got.Description, "(Installment 3/12)") {
			t.Errorf("description = %q, want annotated parent description", got.Description)
		}
		if got.ParentTransactionID != "parent-1" {
			t.Errorf("parent id = %q, want parent-1", got.ParentTransactionID)
		}
		want := time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC)
		if !got.Date.Equal(want) {
			t.Errorf("date = %v, want %v", got.Date, want)
		}
	})

	t.Run("other month uses the first at noon", func(t *testing.T) {
		got, err := NewPaymentTransaction(parent, 2, 2024, 2, now)
		if err != nil {
			t.Fatalf("NewPaymentTransaction: %v", err)
		}
		want := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
		if !got.Date.Equal(want) {
			t.Errorf("date = %v, want %v", got.Date, want)
		}
	})

	t.Run("parent without plan is rejected", func(t *testing.T) {
		plain := parent
		plain.InstallmentPlan = nil
		if _, err := NewPaymentTransaction(plain, 1, 2024, 3, now); !errors.Is(err, core.ErrInvalidPlan) {
			t.Errorf("err = %v, want ErrInvalidPlan", err)
		}
	})
}

func TestCountPaidInstallments(t *testing.T) {
	pay := func(id, parent string) core.Transaction {
		tx := mkTx(id, core.Expense, 10000, "Shopping", time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC))
		tx.ParentTransactionID = parent
		return tx
	}
	txs := []core.Transaction{
		pay("c1", "parent-1"),
		pay("c2", "parent-1"),
		pay("c3", "parent-2"),
		mkTx("plain", core.Expense, 500, "Food", time.Now()),
	}

	if got := CountPaidInstallments(txs, "parent-1"); got != 2 {
		t.Errorf("CountPaidInstallments(parent-1) = %d, want 2", got)
	}
	if got := CountPaidInstallments(txs, "parent-3"); got != 0 {
		t.Errorf("CountPaidInstallments(parent-3) = %d, want 0", got)
	}
}
