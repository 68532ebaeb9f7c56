package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"carteira/internal/core"
	"carteira/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestEntryRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	paidAt := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	paid := core.Money{Cents: 9500}
	id, err := st.AddFinancialEntry(ctx, core.FinancialEntry{
		UID:            "u1",
		Description:    "Internet",
		Notes:          "fibra",
		Type:           core.Expense,
		Status:         core.StatusPaid,
		ExpectedAmount: core.Money{Cents: 9990},
		DueDate:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PaidAmount:     &paid,
		PaymentDate:    &paidAt,
		CategoryID:     "cat1",
		AccountID:      "acc1",
	})
	if err != nil {
		t.Fatalf("AddFinancialEntry() error = %v", err)
	}

	got, err := st.GetFinancialEntry(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetFinancialEntry() error = %v", err)
	}
	if got.Description != "Internet" || got.Notes != "fibra" {
		t.Errorf("round trip lost text fields: %+v", got)
	}
	if !got.DueDate.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("DueDate = %v", got.DueDate)
	}
	if got.PaidAmount == nil || got.PaidAmount.Cents != 9500 {
		t.Errorf("PaidAmount = %v", got.PaidAmount)
	}
	if got.PaymentDate == nil || !got.PaymentDate.Equal(paidAt) {
		t.Errorf("PaymentDate = %v", got.PaymentDate)
	}
}

func TestEntryNullablePaymentFields(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, err := st.AddFinancialEntry(ctx, core.FinancialEntry{
		UID:            "u1",
		Description:    "Aluguel",
		Type:           core.Expense,
		Status:         core.StatusPending,
		ExpectedAmount: core.Money{Cents: 150000},
		DueDate:        time.Date(2026, 4, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddFinancialEntry() error = %v", err)
	}

	got, err := st.GetFinancialEntry(ctx, "u1", id)
	if err != nil {
		t.Fatalf("GetFinancialEntry() error = %v", err)
	}
	if got.PaidAmount != nil || got.PaymentDate != nil {
		t.Errorf("pending entry should have nil payment fields: %+v", got)
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, _ := st.AddFinancialEntry(ctx, core.FinancialEntry{
		UID:            "u1",
		Description:    "Luz",
		Type:           core.Expense,
		Status:         core.StatusPending,
		ExpectedAmount: core.Money{Cents: 12000},
		DueDate:        time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
	})

	e, _ := st.GetFinancialEntry(ctx, "u1", id)
	e.Status = core.StatusOverdue
	if err := st.UpdateFinancialEntry(ctx, e); err != nil {
		t.Fatalf("UpdateFinancialEntry() error = %v", err)
	}
	got, _ := st.GetFinancialEntry(ctx, "u1", id)
	if got.Status != core.StatusOverdue {
		t.Errorf("Status = %q, want overdue", got.Status)
	}

	if err := st.DeleteFinancialEntry(ctx, "u1", id); err != nil {
		t.Fatalf("DeleteFinancialEntry() error = %v", err)
	}
	if _, err := st.GetFinancialEntry(ctx, "u1", id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}

	// Updating a deleted entry reports not found.
	if err := st.UpdateFinancialEntry(ctx, e); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update deleted err = %v, want ErrNotFound", err)
	}
}

func TestUserScoping(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id, _ := st.AddFinancialEntry(ctx, core.FinancialEntry{
		UID:            "alice",
		Description:    "Salario",
		Type:           core.Income,
		Status:         core.StatusPending,
		ExpectedAmount: core.Money{Cents: 500000},
		DueDate:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	})

	if _, err := st.GetFinancialEntry(ctx, "bob", id); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("cross-user read err = %v, want ErrNotFound", err)
	}

	entries, err := st.FinancialEntries(ctx, "bob")
	if err != nil {
		t.Fatalf("FinancialEntries() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("bob sees %d entries, want 0", len(entries))
	}
}

func TestReferenceDataAndUsers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.AddAccount(ctx, core.Account{UID: "u1", Name: "Nubank", Type: core.AccountCreditCard}); err != nil {
		t.Fatalf("AddAccount() error = %v", err)
	}
	catID, err := st.AddCategory(ctx, core.Category{UID: "u1", Name: "Moradia"})
	if err != nil {
		t.Fatalf("AddCategory() error = %v", err)
	}
	if _, err := st.AddPaymentMethod(ctx, core.PaymentMethod{UID: "u1", Name: "Pix", Active: true}); err != nil {
		t.Fatalf("AddPaymentMethod() error = %v", err)
	}

	// Resolve the untagged category.
	if err := st.UpdateCategory(ctx, core.Category{ID: catID, UID: "u1", Name: "Moradia", Type: core.CategoryExpense}); err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}
	cats, _ := st.Categories(ctx, "u1")
	if len(cats) != 1 || cats[0].Type != core.CategoryExpense {
		t.Errorf("categories = %+v", cats)
	}

	users, err := st.Users(ctx)
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if len(users) != 1 || users[0] != "u1" {
		t.Errorf("Users() = %v, want [u1]", users)
	}
}
