// Package store defines the per-user document store port the rest of the
// application talks to, with in-memory and SQLite implementations in
// subpackages.
package store

import (
	"context"
	"errors"

	"carteira/internal/core"
)

// ErrNotFound is returned when a document id does not exist for the user.
var ErrNotFound = errors.New("document not found")

// Store is the per-user collection port. The legacy collections (debts,
// installments, transactions) are read-only: they survive only to feed
// reconciliation and are never mutated through this interface.
type Store interface {
	// Live ledger.
	FinancialEntries(ctx context.Context, uid string) ([]core.FinancialEntry, error)
	GetFinancialEntry(ctx context.Context, uid, id string) (core.FinancialEntry, error)
	AddFinancialEntry(ctx context.Context, e core.FinancialEntry) (string, error)
	UpdateFinancialEntry(ctx context.Context, e core.FinancialEntry) error
	DeleteFinancialEntry(ctx context.Context, uid, id string) error

	// Reference data.
	Accounts(ctx context.Context, uid string) ([]core.Account, error)
	AddAccount(ctx context.Context, a core.Account) (string, error)
	Categories(ctx context.Context, uid string) ([]core.Category, error)
	AddCategory(ctx context.Context, c core.Category) (string, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	PaymentMethods(ctx context.Context, uid string) ([]core.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, p core.PaymentMethod) (string, error)

	// Legacy collections, read-only.
	Debts(ctx context.Context, uid string) ([]core.Debt, error)
	DebtInstallments(ctx context.Context, uid string) ([]core.DebtInstallment, error)
	Transactions(ctx context.Context, uid string) ([]core.Transaction, error)

	// Users lists the distinct owners present in the store, for workers
	// that iterate every user.
	Users(ctx context.Context) ([]string, error)
}
