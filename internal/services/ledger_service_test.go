package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzaflow/internal/core"
	"finanzaflow/internal/ledger"
	"finanzaflow/internal/store/memory"
)

type recordingPublisher struct {
	upserts []string
	deletes []string
}

func (p *recordingPublisher) PublishTransactionUpsert(_ context.Context, t core.Transaction) error {
	p.upserts = append(p.upserts, t.ID)
	return nil
}

func (p *recordingPublisher) PublishTransactionDelete(_ context.Context, id string) error {
	p.deletes = append(p.deletes, id)
	return nil
}

func newTestService(st *memory.Store, now time.Time) (*LedgerService, *recordingPublisher) {
	pub := &recordingPublisher{}
	svc := NewLedgerService(st, pub)
	svc.now = func() time.Time { return now }
	svc.newID = sequentialIDs("svc")
	svc.mat.newID = sequentialIDs("gen")
	return svc, pub
}

func TestLedgerService_LoadMaterializesBeforeListing(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	now := time.Date(2024, 3, 21, 10, 0, 0, 0, time.UTC)

	if err := st.UpsertRecurringRule(ctx, testRule("rent", 90000, 5, true)); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	svc, _ := newTestService(st, now)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	txs := svc.Transactions()
	if len(txs) != 1 {
		t.Fatalf("snapshot after load = %d transactions, want the generated instance", len(txs))
	}
	if txs[0].RecurringRuleID != "rent" {
		t.Errorf("generated instance rule id = %q, want rent", txs[0].RecurringRuleID)
	}

	// A second load must not duplicate the instance.
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if got := len(svc.Transactions()); got != 1 {
		t.Errorf("snapshot after second load = %d, want 1", got)
	}
}

func TestLedgerService_SaveTransactionAssignsIDAndPublishes(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, pub := newTestService(st, time.Date(2024, 3, 21, 10, 0, 0, 0, time.UTC))
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	saved, err := svc.SaveTransaction(ctx, core.Transaction{
		Amount:      core.Money{Cents: 2500},
		Description: "Coffee",
		Category:    "Food",
		Date:        time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Status:      core.Paid,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("save must assign an id")
	}
	if len(svc.Transactions()) != 1 {
		t.Error("snapshot must reflect the re-fetched collection")
	}
	if len(pub.upserts) != 1 || pub.upserts[0] != saved.ID {
		t.Errorf("published upserts = %v, want [%s]", pub.upserts, saved.ID)
	}
}

func TestLedgerService_SaveTransactionRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, pub := newTestService(st, time.Now())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	_, err := svc.SaveTransaction(ctx, core.Transaction{
		Amount: core.Money{Cents: 2500},
		Date:   time.Now(),
		Type:   core.Expense,
		Status: core.Paid,
	})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("err = %v, want ErrEmptyDescription", err)
	}
	if len(svc.Transactions()) != 0 || len(pub.upserts) != 0 {
		t.Error("invalid transaction must cause no mutation and no event")
	}
}

func TestLedgerService_DeleteMissingIsNoOp(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, _ := newTestService(st, time.Now())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, "ghost"); err != nil {
		t.Errorf("deleting an absent id = %v, want nil (no-op by re-sync)", err)
	}
}

func TestLedgerService_DeleteParentOrphansChildren(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	now := time.Date(2024, 3, 21, 10, 0, 0, 0, time.UTC)
	svc, _ := newTestService(st, now)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	parent, err := svc.SaveTransaction(ctx, core.Transaction{
		Amount:      core.Money{Cents: 120000},
		Description: "Laptop",
		Category:    "Shopping",
		Date:        time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Status:      core.Pending,
		InstallmentPlan: &core.InstallmentPlan{
			TotalInstallments: 12,
			StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MonthlyAmount:     core.Money{Cents: 10000},
		},
	})
	if err != nil {
		t.Fatalf("save parent: %v", err)
	}
	payment, err := svc.PayInstallment(ctx, parent.ID, 3, 2024, 3)
	if err != nil {
		t.Fatalf("pay installment: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, parent.ID); err != nil {
		t.Fatalf("delete parent: %v", err)
	}

	var childSurvives bool
	for _, tx := range svc.Transactions() {
		if tx.ID == payment.ID {
			childSurvives = true
			if tx.ParentTransactionID != parent.ID {
				t.Error("orphaned child must keep its parent reference")
			}
		}
	}
	if !childSurvives {
		t.Error("deleting the parent must not cascade to generated payments")
	}
}

func TestLedgerService_CategoryDeletionLeavesTransactions(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, _ := newTestService(st, time.Now())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	cat, err := svc.SaveCategory(ctx, core.CategoryItem{Name: "Pets", Kind: core.CustomCategory})
	if err != nil {
		t.Fatalf("save category: %v", err)
	}
	tx, err := svc.SaveTransaction(ctx, core.Transaction{
		Amount:      core.Money{Cents: 4000},
		Description: "Dog food",
		Category:    cat.Name,
		Date:        time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Status:      core.Paid,
	})
	if err != nil {
		t.Fatalf("save transaction: %v", err)
	}

	if err := svc.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	if len(svc.Categories()) != 0 {
		t.Error("category must be gone")
	}
	txs := svc.Transactions()
	if len(txs) != 1 || txs[0].ID != tx.ID || txs[0].Category != "Pets" {
		t.Errorf("transaction must keep the category name untouched, got %+v", txs)
	}
}

func TestLedgerService_AdjustBalanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, _ := newTestService(st, time.Now())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	seed := []core.Transaction{
		{Amount: core.Money{Cents: 500000}, Description: "Salary", Category: "Salary", Date: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Type: core.Income, Status: core.Paid},
		{Amount: core.Money{Cents: 120000}, Description: "Rent", Category: "Housing", Date: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), Type: core.Expense, Status: core.Paid},
		{Amount: core.Money{Cents: 50000}, Description: "Stash", Category: "Savings", Date: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), Type: core.Savings, Status: core.Paid},
	}
	for _, tx := range seed {
		if _, err := svc.SaveTransaction(ctx, tx); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if _, err := svc.AdjustBalance(ctx, "1234.56"); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	sum := svc.Summary(ledger.AllTime())
	if sum.Balance.Cents != 123456 {
		t.Errorf("balance after reconciliation = %d, want 123456", sum.Balance.Cents)
	}
}

func TestLedgerService_AdjustBalanceRejectsNonNumeric(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc, _ := newTestService(st, time.Now())
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := st.SetInitialBalance(ctx, core.Money{Cents: 7700}); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	if _, err := svc.AdjustBalance(ctx, "not-a-number"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}

	got, _ := st.GetInitialBalance(ctx)
	if got.Cents != 7700 {
		t.Errorf("stored baseline changed to %d on invalid input, want 7700", got.Cents)
	}
}

func TestLedgerService_MarchScenario(t *testing.T) {
	// One 12-month plan of 100.00 starting January plus one recurring
	// rule of 50.00 on the 5th: after materialization and one installment
	// payment in March, the commitment is 100.00 and the March breakdown
	// carries both generated movements.
	ctx := context.Background()
	st := memory.New()
	now := time.Date(2024, 3, 21, 10, 0, 0, 0, time.UTC)

	rule := core.RecurringRule{
		ID:          "fixed-50",
		Description: "Streaming bundle",
		Amount:      core.Money{Cents: 5000},
		Category:    "Entertainment",
		DayOfMonth:  5,
		Active:      true,
	}
	if err := st.UpsertRecurringRule(ctx, rule); err != nil {
		t.Fatalf("seed rule: %v", err)
	}

	svc, _ := newTestService(st, now)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	parent, err := svc.SaveTransaction(ctx, core.Transaction{
		Amount:      core.Money{Cents: 120000},
		Description: "Phone",
		Category:    "Shopping",
		Date:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Type:        core.Expense,
		Status:      core.Pending,
		InstallmentPlan: &core.InstallmentPlan{
			TotalInstallments: 12,
			StartDate:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MonthlyAmount:     core.Money{Cents: 10000},
		},
	})
	if err != nil {
		t.Fatalf("save parent: %v", err)
	}
	if _, err := svc.PayInstallment(ctx, parent.ID, 3, 2024, 3); err != nil {
		t.Fatalf("pay installment: %v", err)
	}

	if got := svc.MonthlyCommitment(2024, 3); got.Cents != 10000 {
		t.Errorf("MonthlyCommitment(March) = %d, want 10000", got.Cents)
	}

	sum := svc.Summary(ledger.ForMonth(2024, 3))
	byName := map[string]int64{}
	for _, c := range sum.ByCategory {
		byName[c.Name] = c.Amount.Cents
	}
	if byName["Entertainment"] != 5000 {
		t.Errorf("Entertainment = %d, want 5000 (materialized rule)", byName["Entertainment"])
	}
	if byName["Shopping"] != 10000 {
		t.Errorf("Shopping = %d, want 10000 (installment payment, parent excluded)", byName["Shopping"])
	}
}
