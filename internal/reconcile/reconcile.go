// Package reconcile rebuilds the unified financial-entry ledger from the
// legacy debt/installment/transaction collections and packages it, together
// with the carried-over reference data, as an exportable backup snapshot.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"carteira/internal/core"
	applog "carteira/internal/log"
)

// Source is the read side of the per-user document store the reconciler
// consumes. All six reads are independent; the store offers no cross-
// collection snapshot, so the result is a best-effort, last-fetched-wins
// view when the store mutates concurrently.
type Source interface {
	Accounts(ctx context.Context, uid string) ([]core.Account, error)
	Categories(ctx context.Context, uid string) ([]core.Category, error)
	PaymentMethods(ctx context.Context, uid string) ([]core.PaymentMethod, error)
	Debts(ctx context.Context, uid string) ([]core.Debt, error)
	DebtInstallments(ctx context.Context, uid string) ([]core.DebtInstallment, error)
	Transactions(ctx context.Context, uid string) ([]core.Transaction, error)
}

// FullBackup is the exportable snapshot: the rebuilt ledger plus the
// reference collections passed through unchanged.
type FullBackup struct {
	FinancialEntries []core.FinancialEntry `json:"financialEntries"`
	Accounts         []core.Account        `json:"accounts"`
	Categories       []core.Category       `json:"categories"`
	PaymentMethods   []core.PaymentMethod  `json:"paymentMethods"`
}

// Options makes the legacy mapping rules explicit. The defaults reproduce
// the historical behavior: "partial" installments collapse to "pending" and
// every debt reconciles as an expense, even one that represented borrowed
// money. Both rules lost information in the legacy system; callers that
// know better can override them.
type Options struct {
	// StatusMap translates installment statuses to entry statuses.
	// Unmapped statuses fall back to pending.
	StatusMap map[core.InstallmentStatus]core.EntryStatus

	// EntryTypeFor decides the entry type for all installments of a debt.
	EntryTypeFor func(core.Debt) core.EntryType
}

// DefaultOptions returns the legacy-faithful mapping rules.
func DefaultOptions() Options {
	return Options{
		StatusMap: map[core.InstallmentStatus]core.EntryStatus{
			core.InstallmentPaid:    core.StatusPaid,
			core.InstallmentOverdue: core.StatusOverdue,
			core.InstallmentPending: core.StatusPending,
			core.InstallmentPartial: core.StatusPending,
		},
		EntryTypeFor: func(core.Debt) core.EntryType { return core.Expense },
	}
}

// Reconciler performs the one-shot batch transform. It never writes: the
// legacy collections stay untouched and the output exists only in the
// returned snapshot.
type Reconciler struct {
	src  Source
	opts Options
}

func New(src Source, opts Options) *Reconciler {
	if opts.StatusMap == nil {
		opts.StatusMap = DefaultOptions().StatusMap
	}
	if opts.EntryTypeFor == nil {
		opts.EntryTypeFor = DefaultOptions().EntryTypeFor
	}
	return &Reconciler{src: src, opts: opts}
}

// Run reads the six legacy collections concurrently, then derives exactly
// one financial entry per installment whose parent debt still exists.
// Orphaned installments are dropped silently; that is compaction, not an
// error. The first failing read aborts the whole run and no snapshot is
// returned.
func (r *Reconciler) Run(ctx context.Context, uid string) (*FullBackup, error) {
	var (
		debts          []core.Debt
		installments   []core.DebtInstallment
		transactions   []core.Transaction
		accounts       []core.Account
		categories     []core.Category
		paymentMethods []core.PaymentMethod
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		debts, err = r.src.Debts(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		installments, err = r.src.DebtInstallments(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		transactions, err = r.src.Transactions(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		accounts, err = r.src.Accounts(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		categories, err = r.src.Categories(gctx, uid)
		return err
	})
	g.Go(func() (err error) {
		paymentMethods, err = r.src.PaymentMethods(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch legacy collections: %w", err)
	}

	debtByID := make(map[string]core.Debt, len(debts))
	for _, d := range debts {
		debtByID[d.ID] = d
	}
	txByID := make(map[string]core.Transaction, len(transactions))
	for _, tx := range transactions {
		txByID[tx.ID] = tx
	}

	entries := make([]core.FinancialEntry, 0, len(installments))
	orphaned := 0
	for _, inst := range installments {
		debt, ok := debtByID[inst.DebtID]
		if !ok {
			orphaned++
			continue
		}
		entries = append(entries, r.entryFromInstallment(inst, debt, txByID))
	}

	slog.InfoContext(ctx, "Ledger reconciliation completed",
		applog.FieldUID, uid,
		"installments", len(installments),
		"entries", len(entries),
		"orphaned_skipped", orphaned,
		applog.FieldComponent, applog.ComponentReconcile)

	return &FullBackup{
		FinancialEntries: entries,
		Accounts:         accounts,
		Categories:       categories,
		PaymentMethods:   paymentMethods,
	}, nil
}

func (r *Reconciler) entryFromInstallment(inst core.DebtInstallment, debt core.Debt, txByID map[string]core.Transaction) core.FinancialEntry {
	status, ok := r.opts.StatusMap[inst.Status]
	if !ok {
		status = core.StatusPending
	}

	// Account and payment method come from the first linked transaction,
	// when one exists.
	var accountID, paymentMethodID string
	if len(inst.TransactionIDs) > 0 {
		if tx, ok := txByID[inst.TransactionIDs[0]]; ok {
			accountID = tx.AccountID
			paymentMethodID = tx.PaymentMethodID
		}
	}

	var paid *core.Money
	if inst.PaidAmount.Cents > 0 {
		p := inst.PaidAmount
		paid = &p
	}

	return core.FinancialEntry{
		ID:                inst.ID,
		UID:               inst.UID,
		Description:       fmt.Sprintf("%s (%d/%d)", debt.Description, inst.Number, debt.TotalInstallments),
		Type:              r.opts.EntryTypeFor(debt),
		Status:            status,
		ExpectedAmount:    inst.ExpectedAmount,
		DueDate:           inst.ExpectedDueDate,
		PaidAmount:        paid,
		PaymentDate:       inst.PaymentDate,
		CategoryID:        debt.Category,
		RecurrenceID:      debt.ID,
		InstallmentNumber: inst.Number,
		TotalInstallments: debt.TotalInstallments,
		CreatedAt:         inst.ExpectedDueDate,
		AccountID:         accountID,
		PaymentMethodID:   paymentMethodID,
	}
}
