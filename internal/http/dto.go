package http

import (
	"fmt"
	"time"

	"finanzaflow/internal/core"
	"finanzaflow/internal/ledger"
)

// Wire shapes for the JSON API. Amounts travel as decimal strings
// ("12.34") and dates as RFC 3339 timestamps.

type installmentPlanJSON struct {
	TotalInstallments int    `json:"totalInstallments"`
	PaidInstallments  int    `json:"paidInstallments"`
	StartDate         string `json:"startDate"`
	MonthlyAmount     string `json:"monthlyAmount"`
}

type transactionJSON struct {
	ID                  string               `json:"id,omitempty"`
	Amount              string               `json:"amount"`
	Description         string               `json:"description"`
	Category            string               `json:"category"`
	Date                string               `json:"date"`
	Type                string               `json:"type"`
	Status              string               `json:"status"`
	InstallmentPlan     *installmentPlanJSON `json:"installmentPlan,omitempty"`
	RecurringRuleID     string               `json:"recurringRuleId,omitempty"`
	ParentTransactionID string               `json:"parentTransactionId,omitempty"`
}

type categoryJSON struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

type recurringRuleJSON struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	DayOfMonth  int    `json:"dayOfMonth"`
	Active      bool   `json:"active"`
}

type categoryAmountJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type summaryJSON struct {
	TotalIncome  string               `json:"totalIncome"`
	TotalExpense string               `json:"totalExpense"`
	TotalSavings string               `json:"totalSavings"`
	Balance      string               `json:"balance,omitempty"`
	ByCategory   []categoryAmountJSON `json:"byCategory"`
}

type payInstallmentJSON struct {
	InstallmentNumber int `json:"installmentNumber"`
	Year              int `json:"year"`
	Month             int `json:"month"`
}

type balanceJSON struct {
	InitialBalance string `json:"initialBalance"`
	Balance        string `json:"balance"`
}

type adjustBalanceJSON struct {
	Target string `json:"target"`
}

type errorJSON struct {
	Error string `json:"error"`
}

func (in transactionJSON) toDomain() (core.Transaction, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	date, err := time.Parse(time.RFC3339, in.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", core.ErrInvalidDate)
	}

	t := core.Transaction{
		ID:                  in.ID,
		Amount:              amount,
		Description:         in.Description,
		Category:            in.Category,
		Date:                date,
		Type:                core.TransactionType(in.Type),
		Status:              core.TransactionStatus(in.Status),
		RecurringRuleID:     in.RecurringRuleID,
		ParentTransactionID: in.ParentTransactionID,
	}

	if in.InstallmentPlan != nil {
		monthly, err := core.ParseAmount(in.InstallmentPlan.MonthlyAmount)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("monthly amount: %w", err)
		}
		start, err := time.Parse(time.RFC3339, in.InstallmentPlan.StartDate)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("plan start date: %w", core.ErrInvalidDate)
		}
		t.InstallmentPlan = &core.InstallmentPlan{
			TotalInstallments: in.InstallmentPlan.TotalInstallments,
			PaidInstallments:  in.InstallmentPlan.PaidInstallments,
			StartDate:         start,
			MonthlyAmount:     monthly,
		}
	}

	return t, nil
}

func transactionToJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:                  t.ID,
		Amount:              t.Amount.String(),
		Description:         t.Description,
		Category:            t.Category,
		Date:                t.Date.UTC().Format(time.RFC3339),
		Type:                string(t.Type),
		Status:              string(t.Status),
		RecurringRuleID:     t.RecurringRuleID,
		ParentTransactionID: t.ParentTransactionID,
	}
	if t.InstallmentPlan != nil {
		out.InstallmentPlan = &installmentPlanJSON{
			TotalInstallments: t.InstallmentPlan.TotalInstallments,
			PaidInstallments:  t.InstallmentPlan.PaidInstallments,
			StartDate:         t.InstallmentPlan.StartDate.UTC().Format(time.RFC3339),
			MonthlyAmount:     t.InstallmentPlan.MonthlyAmount.String(),
		}
	}
	return out
}

func (in categoryJSON) toDomain() core.CategoryItem {
	return core.CategoryItem{
		ID:    in.ID,
		Name:  in.Name,
		Color: in.Color,
		Kind:  core.CategoryKind(in.Kind),
	}
}

func categoryToJSON(c core.CategoryItem) categoryJSON {
	return categoryJSON{
		ID:    c.ID,
		Name:  c.Name,
		Color: c.Color,
		Kind:  string(c.Kind),
	}
}

func (in recurringRuleJSON) toDomain() (core.RecurringRule, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("amount: %w", err)
	}
	return core.RecurringRule{
		ID:          in.ID,
		Description: in.Description,
		Amount:      amount,
		Category:    in.Category,
		DayOfMonth:  in.DayOfMonth,
		Active:      in.Active,
	}, nil
}

func recurringRuleToJSON(r core.RecurringRule) recurringRuleJSON {
	return recurringRuleJSON{
		ID:          r.ID,
		Description: r.Description,
		Amount:      r.Amount.String(),
		Category:    r.Category,
		DayOfMonth:  r.DayOfMonth,
		Active:      r.Active,
	}
}

func summaryToJSON(s ledger.Summary, allTime bool) summaryJSON {
	out := summaryJSON{
		TotalIncome:  s.TotalIncome.String(),
		TotalExpense: s.TotalExpense.String(),
		TotalSavings: s.TotalSavings.String(),
		ByCategory:   make([]categoryAmountJSON, 0, len(s.ByCategory)),
	}
	// Monthly scopes have no standalone balance; omit the field.
	if allTime {
		out.Balance = s.Balance.String()
	}
	for _, ca := range s.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmountJSON{
			Name:   ca.Name,
			Amount: ca.Amount.String(),
		})
	}
	return out
}
