// Package backend selects and constructs the document store implementation
// from configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	applog "carteira/internal/log"
	"carteira/internal/store"
	"carteira/internal/store/memory"
	"carteira/internal/store/sqlite"
)

// Type identifies a store backend.
type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// Config holds what backend construction needs.
type Config struct {
	Type         Type
	SQLiteDBPath string
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result bundles the store with its cleanup function.
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Create builds the configured store backend.
func Create(ctx context.Context, cfg Config) (*Result, error) {
	switch cfg.Type {
	case SQLite:
		st, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("create sqlite store: %w", err)
		}
		slog.InfoContext(ctx, "Initialized SQLite store",
			applog.FieldComponent, applog.ComponentBackend,
			"path", cfg.SQLiteDBPath)
		return &Result{Store: st, Cleanup: st.Close}, nil
	case Memory:
		slog.InfoContext(ctx, "Initialized memory store",
			applog.FieldComponent, applog.ComponentBackend)
		return &Result{Store: memory.New(), Cleanup: func() error { return nil }}, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}
