// Package memory provides a mutex-guarded in-memory Store, used as the
// default backend and as the test double for everything that needs one.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"carteira/internal/core"
	"carteira/internal/store"
)

type Store struct {
	mu             sync.Mutex
	entries        map[string][]core.FinancialEntry
	accounts       map[string][]core.Account
	categories     map[string][]core.Category
	paymentMethods map[string][]core.PaymentMethod
	debts          map[string][]core.Debt
	installments   map[string][]core.DebtInstallment
	transactions   map[string][]core.Transaction
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		entries:        make(map[string][]core.FinancialEntry),
		accounts:       make(map[string][]core.Account),
		categories:     make(map[string][]core.Category),
		paymentMethods: make(map[string][]core.PaymentMethod),
		debts:          make(map[string][]core.Debt),
		installments:   make(map[string][]core.DebtInstallment),
		transactions:   make(map[string][]core.Transaction),
	}
}

func (s *Store) FinancialEntries(_ context.Context, uid string) ([]core.FinancialEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FinancialEntry(nil), s.entries[uid]...), nil
}

func (s *Store) GetFinancialEntry(_ context.Context, uid, id string) (core.FinancialEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries[uid] {
		if e.ID == id {
			return e, nil
		}
	}
	return core.FinancialEntry{}, fmt.Errorf("entry %s: %w", id, store.ErrNotFound)
}

func (s *Store) AddFinancialEntry(_ context.Context, e core.FinancialEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.entries[e.UID] = append(s.entries[e.UID], e)
	return e.ID, nil
}

func (s *Store) UpdateFinancialEntry(_ context.Context, e core.FinancialEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[e.UID]
	for i := range list {
		if list[i].ID == e.ID {
			list[i] = e
			return nil
		}
	}
	return fmt.Errorf("entry %s: %w", e.ID, store.ErrNotFound)
}

func (s *Store) DeleteFinancialEntry(_ context.Context, uid, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[uid]
	for i := range list {
		if list[i].ID == id {
			s.entries[uid] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry %s: %w", id, store.ErrNotFound)
}

func (s *Store) Accounts(_ context.Context, uid string) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts[uid]...), nil
}

func (s *Store) AddAccount(_ context.Context, a core.Account) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.accounts[a.UID] = append(s.accounts[a.UID], a)
	return a.ID, nil
}

func (s *Store) Categories(_ context.Context, uid string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories[uid]...), nil
}

func (s *Store) AddCategory(_ context.Context, c core.Category) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories[c.UID] = append(s.categories[c.UID], c)
	return c.ID, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.categories[c.UID]
	for i := range list {
		if list[i].ID == c.ID {
			list[i] = c
			return nil
		}
	}
	return fmt.Errorf("category %s: %w", c.ID, store.ErrNotFound)
}

func (s *Store) PaymentMethods(_ context.Context, uid string) ([]core.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.PaymentMethod(nil), s.paymentMethods[uid]...), nil
}

func (s *Store) AddPaymentMethod(_ context.Context, p core.PaymentMethod) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.paymentMethods[p.UID] = append(s.paymentMethods[p.UID], p)
	return p.ID, nil
}

func (s *Store) Debts(_ context.Context, uid string) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Debt(nil), s.debts[uid]...), nil
}

func (s *Store) DebtInstallments(_ context.Context, uid string) ([]core.DebtInstallment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.DebtInstallment(nil), s.installments[uid]...), nil
}

func (s *Store) Transactions(_ context.Context, uid string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.transactions[uid]...), nil
}

func (s *Store) Users(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	for uid := range s.entries {
		seen[uid] = struct{}{}
	}
	for uid := range s.accounts {
		seen[uid] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for uid := range seen {
		out = append(out, uid)
	}
	sort.Strings(out)
	return out, nil
}

// SeedLegacy loads legacy collections for reconciliation tests and the
// memory backend's demo data.
func (s *Store) SeedLegacy(uid string, debts []core.Debt, installments []core.DebtInstallment, transactions []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debts[uid] = append(s.debts[uid], debts...)
	s.installments[uid] = append(s.installments[uid], installments...)
	s.transactions[uid] = append(s.transactions[uid], transactions...)
}
