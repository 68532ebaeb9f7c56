package sheets

import (
	"context"

	"carteira/internal/core"
)

// Ports for outbound adapters.
type (
	// EntryAppender writes one financial entry to an export destination and
	// returns a reference to the written row.
	EntryAppender interface {
		Append(ctx context.Context, e core.FinancialEntry) (rowRef string, err error)
	}
)
