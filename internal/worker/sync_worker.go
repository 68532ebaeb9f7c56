// Package worker contains the background consumer that exports financial
// entries to the configured spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"carteira/internal/amqp"
	applog "carteira/internal/log"
	"carteira/internal/sheets"
	"carteira/internal/store"
)

// SyncWorker resolves sync messages against the store and appends the
// referenced entry to the export destination.
type SyncWorker struct {
	store    store.Store
	appender sheets.EntryAppender
}

func NewSyncWorker(st store.Store, appender sheets.EntryAppender) *SyncWorker {
	return &SyncWorker{
		store:    st,
		appender: appender,
	}
}

// HandleSyncMessage processes one sync message. A missing entry is treated
// as already deleted and acknowledged, not requeued.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	entry, err := w.store.GetFinancialEntry(ctx, msg.UID, msg.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "Entry gone before sync, skipping",
				applog.FieldOperation, applog.OpSync,
				applog.FieldEntryID, msg.ID,
				applog.FieldUID, msg.UID,
				applog.FieldComponent, applog.ComponentWorker)
			return nil
		}
		return fmt.Errorf("get entry %s: %w", msg.ID, err)
	}

	ref, err := w.appender.Append(ctx, entry)
	if err != nil {
		return fmt.Errorf("append entry %s: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Entry exported",
		applog.FieldOperation, applog.OpSync,
		applog.FieldEntryID, msg.ID,
		applog.FieldUID, msg.UID,
		applog.FieldSheetsRef, ref,
		applog.FieldComponent, applog.ComponentWorker)
	return nil
}
