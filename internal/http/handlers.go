package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
)

// handleSummary computes (or serves from cache) the monthly forecast and
// actuals for the requested year/month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)
	year, month := parseYearMonth(r)

	cacheKey := fmt.Sprintf("%s|%04d-%02d", uid, year, month)
	if cached, ok := s.summaryCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	entries, err := s.store.FinancialEntries(ctx, uid)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list entries", applog.FieldOperation, applog.OpList, "uid", uid, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}
	accounts, err := s.store.Accounts(ctx, uid)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list accounts", applog.FieldOperation, applog.OpList, "uid", uid, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load accounts")
		return
	}

	ref := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	summary := core.MonthlySummary(entries, accounts, ref)

	s.summaryCache.Set(cacheKey, summary)
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) invalidateSummaries(uid string) {
	s.summaryCache.DeletePrefix(uid + "|")
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	uid := s.uidFrom(r)
	entries, err := s.store.FinancialEntries(r.Context(), uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load entries")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)

	var e core.FinancialEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	e.ID = ""
	e.UID = uid
	e.Description = sanitizeInput(e.Description)
	e.Notes = sanitizeInput(e.Notes)
	if e.Status == "" {
		e.Status = core.StatusPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if err := e.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.entries.CreateEntry(ctx, e)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create entry", applog.FieldOperation, applog.OpCreate, "uid", uid, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}
	e.ID = id

	s.invalidateSummaries(uid)
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)
	id := r.PathValue("id")

	var e core.FinancialEntry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	e.ID = id
	e.UID = uid
	e.Description = sanitizeInput(e.Description)
	e.Notes = sanitizeInput(e.Notes)
	if err := e.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.entries.UpdateEntry(ctx, e); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "entry not found")
			return
		}
		slog.ErrorContext(ctx, "Failed to update entry", applog.FieldOperation, applog.OpUpdate, "uid", uid, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update entry")
		return
	}

	s.invalidateSummaries(uid)
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)
	id := r.PathValue("id")

	if err := s.entries.DeleteEntry(ctx, uid, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "entry not found")
			return
		}
		slog.ErrorContext(ctx, "Failed to delete entry", applog.FieldOperation, applog.OpDelete, "uid", uid, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}

	s.invalidateSummaries(uid)
	w.WriteHeader(http.StatusNoContent)
}

// payRequest carries optional override values for settling an entry.
// Amount accepts "1234.56", "1234,56" or a plain JSON number; an absent
// amount settles at the expected value. PaymentDate is YYYY-MM-DD.
type payRequest struct {
	Amount      *core.Money `json:"amount"`
	PaymentDate string      `json:"paymentDate"`
}

func (s *Server) handlePayEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)
	id := r.PathValue("id")

	var req payRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	var paidAt time.Time
	if req.PaymentDate != "" {
		t, err := time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid paymentDate, want YYYY-MM-DD")
			return
		}
		paidAt = t
	}

	e, err := s.entries.PayEntry(ctx, uid, id, req.Amount, paidAt)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "entry not found")
			return
		}
		slog.ErrorContext(ctx, "Failed to pay entry", applog.FieldOperation, applog.OpPay, "uid", uid, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to pay entry")
		return
	}

	s.invalidateSummaries(uid)
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	uid := s.uidFrom(r)
	accounts, err := s.store.Accounts(r.Context(), uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load accounts")
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)

	var a core.Account
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a.ID = ""
	a.UID = uid
	a.Name = sanitizeInput(a.Name)
	if err := a.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.AddAccount(ctx, a)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create account", applog.FieldOperation, applog.OpCreate, "uid", uid, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	a.ID = id

	s.invalidateSummaries(uid)
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	uid := s.uidFrom(r)
	categories, err := s.store.Categories(r.Context(), uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)

	var c core.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c.ID = ""
	c.UID = uid
	c.Name = sanitizeInput(c.Name)
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.AddCategory(ctx, c)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create category", applog.FieldOperation, applog.OpCreate, "uid", uid, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	c.ID = id

	respondJSON(w, http.StatusCreated, c)
}

// handleUpdateCategory lets untagged categories be resolved to income or
// expense, and names/icons be edited.
func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)
	id := r.PathValue("id")

	var c core.Category
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c.ID = id
	c.UID = uid
	c.Name = sanitizeInput(c.Name)
	if err := c.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		slog.ErrorContext(ctx, "Failed to update category", applog.FieldOperation, applog.OpUpdate, "uid", uid, "id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to update category")
		return
	}

	respondJSON(w, http.StatusOK, c)
}

func (s *Server) handleListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	uid := s.uidFrom(r)
	methods, err := s.store.PaymentMethods(r.Context(), uid)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load payment methods")
		return
	}
	respondJSON(w, http.StatusOK, methods)
}

func (s *Server) handleCreatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)

	var p core.PaymentMethod
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p.ID = ""
	p.UID = uid
	p.Name = sanitizeInput(p.Name)
	if err := p.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.store.AddPaymentMethod(ctx, p)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to create payment method", applog.FieldOperation, applog.OpCreate, "uid", uid, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create payment method")
		return
	}
	p.ID = id

	respondJSON(w, http.StatusCreated, p)
}

// handleBackup reconciles the legacy collections into financial entries and
// streams the resulting backup as a JSON download.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	uid := s.uidFrom(r)

	backup, err := s.reconciler.Run(ctx, uid)
	if err != nil {
		slog.ErrorContext(ctx, "Reconciliation failed", applog.FieldOperation, applog.OpReconcile, "uid", uid, "error", err)
		respondError(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}

	filename := fmt.Sprintf("carteira-backup-%s.json", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		slog.ErrorContext(ctx, "Failed to stream backup", applog.FieldOperation, applog.OpBackup, "uid", uid, "error", err)
	}
}
