package memory

import (
	"context"
	"fmt"
	"sync"

	"carteira/internal/core"
)

// Store is an in-memory appender used in tests and local runs without
// spreadsheet credentials.
type Store struct {
	mu    sync.Mutex
	items []core.FinancialEntry
}

func New() *Store {
	return &Store{}
}

// Append stores the entry and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.FinancialEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.FinancialEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FinancialEntry(nil), s.items...)
}
