package core

import (
	"testing"
	"time"
)

func validEntry() FinancialEntry {
	return FinancialEntry{
		ID:             "e1",
		UID:            "u1",
		Description:    "Aluguel",
		Type:           Expense,
		Status:         StatusPending,
		ExpectedAmount: Money{Cents: 120000},
		DueDate:        time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestFinancialEntryValidate(t *testing.T) {
	if err := validEntry().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []func(e *FinancialEntry){
		func(e *FinancialEntry) { e.Description = "" },
		func(e *FinancialEntry) { e.Type = "transfer" },
		func(e *FinancialEntry) { e.Status = "partial" },
		func(e *FinancialEntry) { e.ExpectedAmount = Money{} },
		func(e *FinancialEntry) { e.DueDate = time.Time{} },
		func(e *FinancialEntry) { m := Money{Cents: -1}; e.PaidAmount = &m },
	}
	for i, mutate := range bads {
		e := validEntry()
		mutate(&e)
		if err := e.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestAccountValidate(t *testing.T) {
	good := Account{ID: "a1", UID: "u1", Name: "Nubank", Type: AccountCreditCard}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Account{Name: "", Type: AccountBank}).Validate(); err == nil {
		t.Error("expected error for empty name")
	}
	if err := (Account{Name: "x", Type: "savings"}).Validate(); err == nil {
		t.Error("expected error for unknown type")
	}
	if !good.IsCreditCard() {
		t.Error("credit_card account should be a credit card")
	}
}

func TestCategoryValidate(t *testing.T) {
	cases := []struct {
		c  Category
		ok bool
	}{
		{Category{Name: "Salário", Type: CategoryIncome}, true},
		{Category{Name: "Mercado", Type: CategoryExpense}, true},
		{Category{Name: "Antiga", Type: CategoryUntagged}, true}, // pre-migration category
		{Category{Name: "", Type: CategoryIncome}, false},
		{Category{Name: "x", Type: "transfer"}, false},
	}
	for i, tc := range cases {
		err := tc.c.Validate()
		if tc.ok && err != nil {
			t.Errorf("case %d: expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	if !Income.IsValid() || !Expense.IsValid() || EntryType("loan").IsValid() {
		t.Error("EntryType validity mismatch")
	}
	if !StatusOverdue.IsValid() || EntryStatus("partial").IsValid() {
		t.Error("EntryStatus validity mismatch")
	}
}
