package core

import (
	"errors"
	"testing"
	"time"
)

func validTransaction() Transaction {
	return Transaction{
		ID:          "tx-1",
		Amount:      Money{Cents: 1500},
		Description: "Groceries",
		Category:    "Food",
		Date:        time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		Type:        Expense,
		Status:      Paid,
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{"valid", func(*Transaction) {}, nil},
		{"empty id", func(tx *Transaction) { tx.ID = " " }, ErrEmptyID},
		{"negative amount", func(tx *Transaction) { tx.Amount.Cents = -1 }, ErrInvalidAmount},
		{"zero amount allowed", func(tx *Transaction) { tx.Amount.Cents = 0 }, nil},
		{"empty description", func(tx *Transaction) { tx.Description = "" }, ErrEmptyDescription},
		{"empty category", func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		{"zero date", func(tx *Transaction) { tx.Date = time.Time{} }, ErrInvalidDate},
		{"bad type", func(tx *Transaction) { tx.Type = "TRANSFER" }, ErrInvalidType},
		{"bad status", func(tx *Transaction) { tx.Status = "MAYBE" }, ErrInvalidStatus},
		{
			"bad plan",
			func(tx *Transaction) {
				tx.InstallmentPlan = &InstallmentPlan{TotalInstallments: 0}
			},
			ErrInvalidPlan,
		},
		{
			"valid plan",
			func(tx *Transaction) {
				tx.InstallmentPlan = &InstallmentPlan{
					TotalInstallments: 12,
					PaidInstallments:  3,
					StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
					MonthlyAmount:     Money{Cents: 10000},
				}
			},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInstallmentPlan_Validate(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		plan    InstallmentPlan
		wantErr error
	}{
		{
			"valid",
			InstallmentPlan{TotalInstallments: 3, PaidInstallments: 1, StartDate: start, MonthlyAmount: Money{Cents: 5000}},
			nil,
		},
		{
			"zero installments",
			InstallmentPlan{TotalInstallments: 0, StartDate: start, MonthlyAmount: Money{Cents: 5000}},
			ErrInvalidPlan,
		},
		{
			"paid exceeds total",
			InstallmentPlan{TotalInstallments: 3, PaidInstallments: 4, StartDate: start, MonthlyAmount: Money{Cents: 5000}},
			ErrInvalidPlan,
		},
		{
			"zero start date",
			InstallmentPlan{TotalInstallments: 3, MonthlyAmount: Money{Cents: 5000}},
			ErrInvalidDate,
		},
		{
			"non-positive monthly amount",
			InstallmentPlan{TotalInstallments: 3, StartDate: start},
			ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.plan.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurringRule_Validate(t *testing.T) {
	valid := RecurringRule{
		ID:          "rule-1",
		Description: "Rent",
		Amount:      Money{Cents: 90000},
		Category:    "Housing",
		DayOfMonth:  5,
		Active:      true,
	}

	tests := []struct {
		name    string
		mutate  func(*RecurringRule)
		wantErr error
	}{
		{"valid", func(*RecurringRule) {}, nil},
		{"day 31 is valid", func(r *RecurringRule) { r.DayOfMonth = 31 }, nil},
		{"day zero", func(r *RecurringRule) { r.DayOfMonth = 0 }, ErrInvalidDayOfMonth},
		{"day 32", func(r *RecurringRule) { r.DayOfMonth = 32 }, ErrInvalidDayOfMonth},
		{"zero amount", func(r *RecurringRule) { r.Amount.Cents = 0 }, ErrInvalidAmount},
		{"empty category", func(r *RecurringRule) { r.Category = "" }, ErrEmptyCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cat     CategoryItem
		wantErr error
	}{
		{"valid default", CategoryItem{ID: "c1", Name: "Food", Color: "#f43f5e", Kind: DefaultCategory}, nil},
		{"valid custom", CategoryItem{ID: "c2", Name: "Pets", Kind: CustomCategory}, nil},
		{"empty name", CategoryItem{ID: "c3", Kind: CustomCategory}, ErrEmptyName},
		{"bad kind", CategoryItem{ID: "c4", Name: "X", Kind: "weird"}, ErrInvalidCategoryKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cat.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
