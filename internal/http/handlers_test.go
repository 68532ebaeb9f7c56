package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carteira/internal/core"
	"carteira/internal/services"
	"carteira/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	srv := NewServer(":0", st, services.NewEntryService(st, nil), "local", time.Minute)
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv, st
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	if rec := doRequest(t, srv, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", rec.Code)
	}
	if rec := doRequest(t, srv, http.MethodGet, "/readyz", ""); rec.Code != http.StatusOK {
		t.Errorf("/readyz = %d, want 200", rec.Code)
	}
}

func TestCreateAndListEntries(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/entries", `{
		"description": "Aluguel",
		"type": "expense",
		"expectedAmount": "1500.00",
		"dueDate": "2026-03-10T00:00:00Z"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/entries = %d, body %s", rec.Code, rec.Body.String())
	}

	var created core.FinancialEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created entry: %v", err)
	}
	if created.ID == "" {
		t.Error("created entry should have an id")
	}
	if created.UID != "local" {
		t.Errorf("UID = %q, want local", created.UID)
	}
	if created.Status != core.StatusPending {
		t.Errorf("Status = %q, want pending default", created.Status)
	}
	if created.ExpectedAmount.Cents != 150000 {
		t.Errorf("ExpectedAmount = %d cents, want 150000", created.ExpectedAmount.Cents)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/entries", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/entries = %d", rec.Code)
	}
	var list []core.FinancialEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d entries, want 1", len(list))
	}
}

func TestCreateEntryRejectsInvalid(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/entries", `{
		"description": "",
		"type": "expense",
		"expectedAmount": "10.00",
		"dueDate": "2026-03-10T00:00:00Z"
	}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty description = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/entries", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad JSON = %d, want 400", rec.Code)
	}
}

func TestPayEntryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/entries", `{
		"description": "Internet",
		"type": "expense",
		"expectedAmount": "99.90",
		"dueDate": "2026-03-10T00:00:00Z"
	}`)
	var created core.FinancialEntry
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doRequest(t, srv, http.MethodPost, "/api/entries/"+created.ID+"/pay", `{
		"amount": "95.00",
		"paymentDate": "2026-03-08"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay = %d, body %s", rec.Code, rec.Body.String())
	}

	var paid core.FinancialEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode paid: %v", err)
	}
	if paid.Status != core.StatusPaid {
		t.Errorf("Status = %q, want paid", paid.Status)
	}
	if paid.PaidAmount == nil || paid.PaidAmount.Cents != 9500 {
		t.Errorf("PaidAmount = %v, want 95.00", paid.PaidAmount)
	}
}

func TestPayEntryCommaDecimalAmount(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/entries", `{
		"description": "Condominio",
		"type": "expense",
		"expectedAmount": "450,00",
		"dueDate": "2026-03-10T00:00:00Z"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create with comma amount = %d, body %s", rec.Code, rec.Body.String())
	}
	var created core.FinancialEntry
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ExpectedAmount.Cents != 45000 {
		t.Errorf("ExpectedAmount = %d cents, want 45000", created.ExpectedAmount.Cents)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/entries/"+created.ID+"/pay", `{
		"amount": "95,00",
		"paymentDate": "2026-03-08"
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay with comma amount = %d, body %s", rec.Code, rec.Body.String())
	}
	var paid core.FinancialEntry
	_ = json.Unmarshal(rec.Body.Bytes(), &paid)
	if paid.PaidAmount == nil || paid.PaidAmount.Cents != 9500 {
		t.Errorf("PaidAmount = %v, want 95.00", paid.PaidAmount)
	}
}

func TestPayMissingEntryReturns404(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(t, srv, http.MethodPost, "/api/entries/nope/pay", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("pay missing = %d, want 404", rec.Code)
	}
}

func TestUserIsolationViaHeader(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/entries", strings.NewReader(`{
		"description": "Salario",
		"type": "income",
		"expectedAmount": "5000.00",
		"dueDate": "2026-03-05T00:00:00Z"
	}`))
	req.Header.Set("X-User-ID", "alice")
	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create as alice = %d", rec.Code)
	}

	// Default user sees nothing.
	rec2 := doRequest(t, srv, http.MethodGet, "/api/entries", "")
	var list []core.FinancialEntry
	_ = json.Unmarshal(rec2.Body.Bytes(), &list)
	if len(list) != 0 {
		t.Errorf("default user sees %d entries, want 0", len(list))
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	cardID, err := st.AddAccount(context.Background(), core.Account{
		UID: "local", Name: "Nubank", Type: core.AccountCreditCard,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	seed := func(e core.FinancialEntry) {
		t.Helper()
		e.UID = "local"
		if _, err := st.AddFinancialEntry(context.Background(), e); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	// February card expense rolls into March's forecast.
	seed(core.FinancialEntry{
		Description: "Cartao fevereiro", Type: core.Expense, Status: core.StatusPaid,
		ExpectedAmount: core.Money{Cents: 40000},
		DueDate:        time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		AccountID:      cardID,
	})
	// March expense.
	seed(core.FinancialEntry{
		Description: "Aluguel", Type: core.Expense, Status: core.StatusPending,
		ExpectedAmount: core.Money{Cents: 150000},
		DueDate:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	})

	rec := doRequest(t, srv, http.MethodGet, "/api/summary?year=2026&month=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/summary = %d", rec.Code)
	}

	var sum core.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if got := sum.Despesas.Previsto.Cents; got != 190000 {
		t.Errorf("Despesas.Previsto = %d, want 190000 (rent + rolled card bill)", got)
	}
}

func TestSummaryCacheInvalidation(t *testing.T) {
	srv, _ := newTestServer(t)

	// Warm the cache with an empty month.
	rec := doRequest(t, srv, http.MethodGet, "/api/summary?year=2026&month=3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("warm summary = %d", rec.Code)
	}

	// A write must invalidate it.
	rec = doRequest(t, srv, http.MethodPost, "/api/entries", `{
		"description": "Luz",
		"type": "expense",
		"expectedAmount": "120.00",
		"dueDate": "2026-03-20T00:00:00Z"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodGet, "/api/summary?year=2026&month=3", "")
	var sum core.Summary
	_ = json.Unmarshal(rec.Body.Bytes(), &sum)
	if sum.Despesas.Previsto.Cents != 12000 {
		t.Errorf("Despesas.Previsto = %d after write, want 12000", sum.Despesas.Previsto.Cents)
	}
}

func TestAccountsCategoriesPaymentMethods(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/api/accounts", `{"name":"Carteira","type":"wallet"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/accounts", `{"name":"","type":"wallet"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty account name = %d, want 400", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/categories", `{"name":"Moradia","type":"expense"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category = %d", rec.Code)
	}
	var cat core.Category
	_ = json.Unmarshal(rec.Body.Bytes(), &cat)

	// Resolve an untagged category by updating its type.
	rec = doRequest(t, srv, http.MethodPut, "/api/categories/"+cat.ID, `{"name":"Moradia","type":"expense"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("update category = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/api/payment-methods", `{"name":"Pix","active":true}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create payment method = %d", rec.Code)
	}
}

func TestBackupEndpoint(t *testing.T) {
	srv, st := newTestServer(t)

	st.SeedLegacy("local",
		[]core.Debt{{
			ID: "d1", UID: "local", Description: "Financiamento",
			OriginalAmount: core.Money{Cents: 1200000}, TotalInstallments: 12,
			StartDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		}},
		[]core.DebtInstallment{{
			ID: "i1", DebtID: "d1", UID: "local", Number: 1,
			ExpectedDueDate: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			ExpectedAmount:  core.Money{Cents: 100000},
			Status:          core.InstallmentPaid,
			PaidAmount:      core.Money{Cents: 100000},
		}},
		nil,
	)

	rec := doRequest(t, srv, http.MethodPost, "/api/backup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /api/backup = %d, body %s", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Errorf("Content-Disposition = %q, want attachment", cd)
	}

	var backup struct {
		FinancialEntries []core.FinancialEntry `json:"financialEntries"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &backup); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if len(backup.FinancialEntries) != 1 {
		t.Fatalf("got %d reconciled entries, want 1", len(backup.FinancialEntries))
	}
	if got := backup.FinancialEntries[0].Description; got != "Financiamento (1/12)" {
		t.Errorf("Description = %q", got)
	}
}
