package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"carteira/internal/amqp"
	"carteira/internal/core"
	"carteira/internal/store"
)

// EntryService orchestrates financial entry operations across the store and AMQP
type EntryService struct {
	store      store.Store
	amqpClient *amqp.Client
}

func NewEntryService(st store.Store, amqpClient *amqp.Client) *EntryService {
	return &EntryService{
		store:      st,
		amqpClient: amqpClient,
	}
}

// CreateEntry saves an entry locally and publishes a sync message
func (s *EntryService) CreateEntry(ctx context.Context, e core.FinancialEntry) (string, error) {
	// Save to the store first (fast, reliable)
	id, err := s.store.AddFinancialEntry(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save entry: %w", err)
	}

	// Publish async sync message (non-blocking, version 1 for new entry)
	if err := s.publishSyncMessage(ctx, id, e.UID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
		// Don't fail the request - entry is saved locally
	}

	return id, nil
}

// UpdateEntry replaces an existing entry and publishes a sync message
func (s *EntryService) UpdateEntry(ctx context.Context, e core.FinancialEntry) error {
	if err := s.store.UpdateFinancialEntry(ctx, e); err != nil {
		return fmt.Errorf("update entry: %w", err)
	}

	if err := s.publishSyncMessage(ctx, e.ID, e.UID, 2); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", e.ID, "error", err)
	}

	return nil
}

// PayEntry settles an entry: status becomes paid, the paid amount and
// payment date are recorded. A zero paidAt defaults to now, a nil amount
// defaults to the expected amount.
func (s *EntryService) PayEntry(ctx context.Context, uid, id string, amount *core.Money, paidAt time.Time) (core.FinancialEntry, error) {
	e, err := s.store.GetFinancialEntry(ctx, uid, id)
	if err != nil {
		return core.FinancialEntry{}, fmt.Errorf("get entry: %w", err)
	}

	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	if amount == nil {
		amount = &core.Money{Cents: e.ExpectedAmount.Cents}
	}

	e.Status = core.StatusPaid
	e.PaidAmount = amount
	e.PaymentDate = &paidAt

	if err := s.store.UpdateFinancialEntry(ctx, e); err != nil {
		return core.FinancialEntry{}, fmt.Errorf("save payment: %w", err)
	}

	if err := s.publishSyncMessage(ctx, e.ID, e.UID, 2); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", e.ID, "error", err)
	}

	return e, nil
}

// DeleteEntry removes an entry from the store
func (s *EntryService) DeleteEntry(ctx context.Context, uid, id string) error {
	if err := s.store.DeleteFinancialEntry(ctx, uid, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (s *EntryService) publishSyncMessage(ctx context.Context, id, uid string, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishEntrySync(ctx, id, uid, version)
}

// Close closes the AMQP connection
func (s *EntryService) Close() error {
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			return fmt.Errorf("close amqp: %w", err)
		}
	}
	return nil
}
