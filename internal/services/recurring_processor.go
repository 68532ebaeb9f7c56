package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
)

// RecurringProcessor advances installment series and marks overdue entries.
// It runs per user: for each recurrence series whose newest entry is already
// behind the reference month, it creates the following installment, and it
// flips pending entries past their due date to overdue.
type RecurringProcessor struct {
	store        store.Store
	entryService *EntryService
}

// NewRecurringProcessor creates a new recurring entry processor
func NewRecurringProcessor(st store.Store, entryService *EntryService) *RecurringProcessor {
	return &RecurringProcessor{
		store:        st,
		entryService: entryService,
	}
}

// ProcessUser handles one user's ledger for the given reference time.
// Returns the number of entries created plus the number marked overdue.
func (p *RecurringProcessor) ProcessUser(ctx context.Context, uid string, now time.Time) (int, error) {
	if p.store == nil || p.entryService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	entries, err := p.store.FinancialEntries(ctx, uid)
	if err != nil {
		return 0, fmt.Errorf("list entries: %w", err)
	}

	created, err := p.advanceSeries(ctx, uid, entries, now)
	if err != nil {
		return created, err
	}

	overdue := p.markOverdue(ctx, entries, now)

	slog.InfoContext(ctx, "Recurring processing complete",
		applog.FieldComponent, applog.ComponentRecurring,
		"uid", uid,
		"created", created,
		"marked_overdue", overdue)

	return created + overdue, nil
}

// advanceSeries creates the next installment for series that fell behind.
func (p *RecurringProcessor) advanceSeries(ctx context.Context, uid string, entries []core.FinancialEntry, now time.Time) (int, error) {
	series := map[string][]core.FinancialEntry{}
	for _, e := range entries {
		if e.RecurrenceID == "" {
			continue
		}
		series[e.RecurrenceID] = append(series[e.RecurrenceID], e)
	}

	created := 0
	for recurrenceID, installments := range series {
		sort.Slice(installments, func(i, j int) bool {
			return installments[i].InstallmentNumber < installments[j].InstallmentNumber
		})
		newest := installments[len(installments)-1]

		// Finished series or open-ended ones with no total stay untouched.
		if newest.TotalInstallments > 0 && newest.InstallmentNumber >= newest.TotalInstallments {
			continue
		}
		if newest.TotalInstallments == 0 {
			continue
		}

		// Only generate once the reference month has moved past the
		// newest installment's month.
		if !monthBefore(newest.DueDate, now) {
			continue
		}

		next := newest
		next.ID = ""
		next.UID = uid
		next.InstallmentNumber = newest.InstallmentNumber + 1
		next.Status = core.StatusPending
		next.PaidAmount = nil
		next.PaymentDate = nil
		next.DueDate = nextMonthSameDay(newest.DueDate)
		next.CreatedAt = now

		id, err := p.entryService.CreateEntry(ctx, next)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create next installment",
				"recurrence_id", recurrenceID,
				"installment", next.InstallmentNumber,
				"error", err)
			continue
		}

		created++
		slog.InfoContext(ctx, "Created next installment",
			"recurrence_id", recurrenceID,
			"entry_id", id,
			"installment", next.InstallmentNumber,
			"total", next.TotalInstallments,
			"due_date", next.DueDate.Format("2006-01-02"))
	}

	return created, nil
}

// markOverdue flips pending entries whose due date has passed.
func (p *RecurringProcessor) markOverdue(ctx context.Context, entries []core.FinancialEntry, now time.Time) int {
	marked := 0
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, e := range entries {
		if e.Status != core.StatusPending {
			continue
		}
		if !e.DueDate.Before(today) {
			continue
		}

		e.Status = core.StatusOverdue
		if err := p.store.UpdateFinancialEntry(ctx, e); err != nil {
			slog.ErrorContext(ctx, "Failed to mark entry overdue",
				"entry_id", e.ID,
				"error", err)
			continue
		}
		marked++
	}

	return marked
}

// monthBefore reports whether a's calendar month is strictly before b's.
func monthBefore(a, b time.Time) bool {
	if a.Year() != b.Year() {
		return a.Year() < b.Year()
	}
	return a.Month() < b.Month()
}

// nextMonthSameDay moves the date one month ahead, clamping the day to the
// target month's length (Jan 31 -> Feb 28).
func nextMonthSameDay(d time.Time) time.Time {
	firstOfNext := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, d.Location())
}
