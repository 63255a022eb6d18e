package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
	Savings TransactionType = "SAVINGS"

	Paid    TransactionStatus = "PAID"
	Pending TransactionStatus = "PENDING"

	DefaultCategory CategoryKind = "default"
	CustomCategory  CategoryKind = "custom"
)

type (
	TransactionType   string
	TransactionStatus string
	CategoryKind      string

	// CategoryItem is a display label owned by the category manager.
	// Transactions reference categories by name, never by id, so deleting
	// a category leaves historical transactions legible.
	CategoryItem struct {
		ID    string
		Name  string
		Color string
		Kind  CategoryKind
	}

	// InstallmentPlan describes a purchase split over TotalInstallments
	// consecutive calendar months starting at the month of StartDate.
	InstallmentPlan struct {
		TotalInstallments int
		PaidInstallments  int
		StartDate         time.Time
		MonthlyAmount     Money
	}

	// RecurringRule is a standing monthly obligation that produces one
	// expense transaction per active calendar month.
	RecurringRule struct {
		ID          string
		Description string
		Amount      Money
		Category    string
		DayOfMonth  int
		Active      bool
	}

	// Transaction is the central ledger entity. Amount is always a
	// positive magnitude; direction is derived from Type alone.
	Transaction struct {
		ID              string
		Amount          Money
		Description     string
		Category        string
		Date            time.Time
		Type            TransactionType
		Status          TransactionStatus
		InstallmentPlan *InstallmentPlan
		// RecurringRuleID links a generated instance back to its rule.
		RecurringRuleID string
		// ParentTransactionID links an installment payment to the parent
		// purchase record. Deletion never cascades in either direction.
		ParentTransactionID string
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidDayOfMonth   = errors.New("day of month must be between 1 and 31")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidStatus       = errors.New("invalid transaction status")
	ErrEmptyID             = errors.New("empty id")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidPlan         = errors.New("invalid installment plan")
	ErrInvalidCategoryKind = errors.New("invalid category kind")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Savings:
		return true
	}
	return false
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case Paid, Pending:
		return true
	}
	return false
}

func (c CategoryItem) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	switch c.Kind {
	case DefaultCategory, CustomCategory:
	default:
		return ErrInvalidCategoryKind
	}
	return nil
}

func (p InstallmentPlan) Validate() error {
	if p.TotalInstallments < 1 {
		return ErrInvalidPlan
	}
	if p.PaidInstallments < 0 || p.PaidInstallments > p.TotalInstallments {
		return ErrInvalidPlan
	}
	if p.StartDate.IsZero() {
		return ErrInvalidDate
	}
	if p.MonthlyAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (r RecurringRule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return ErrEmptyID
	}
	if len(strings.TrimSpace(r.Description)) == 0 {
		return ErrEmptyDescription
	}
	if r.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDayOfMonth
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.InstallmentPlan != nil {
		if err := t.InstallmentPlan.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultCategories returns the built-in category set a fresh ledger
// starts with. IDs are stable so re-seeding upserts instead of
// duplicating.
func DefaultCategories() []CategoryItem {
	return []CategoryItem{
		{ID: "default-food", Name: "Alimentación", Color: "#f59e0b", Kind: DefaultCategory},
		{ID: "default-transport", Name: "Transporte", Color: "#06b6d4", Kind: DefaultCategory},
		{ID: "default-housing", Name: "Vivienda", Color: "#6366f1", Kind: DefaultCategory},
		{ID: "default-entertainment", Name: "Entretenimiento", Color: "#ec4899", Kind: DefaultCategory},
		{ID: "default-shopping", Name: "Compras", Color: "#8b5cf6", Kind: DefaultCategory},
		{ID: "default-health", Name: "Salud", Color: "#ef4444", Kind: DefaultCategory},
		{ID: "default-education", Name: "Educación", Color: "#14b8a6", Kind: DefaultCategory},
		{ID: "default-salary", Name: "Salario", Color: "#10b981", Kind: DefaultCategory},
		{ID: "default-investment", Name: "Inversiones", Color: "#84cc16", Kind: DefaultCategory},
		{ID: "default-other", Name: "Otros", Color: "#64748b", Kind: DefaultCategory},
	}
}

// HasPlan reports whether t is the parent record of an installment purchase.
// Parent records never count as monthly cash movements themselves; only the
// generated payment children do.
func (t Transaction) HasPlan() bool {
	return t.InstallmentPlan != nil
}
