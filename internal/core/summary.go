package core

import "time"

// Totals is one forecast/actual/balance triple of the monthly summary.
type Totals struct {
	Previsto  Money `json:"previsto"`
	Realizado Money `json:"realizado"`
	Saldo     Money `json:"saldo"`
}

// Summary is the monthly aggregate consumed by the dashboard widgets.
// The flat fields mirror the structured triples for consumers that predate
// the receitas/despesas/resultado shape.
type Summary struct {
	Receitas  Totals `json:"receitas"`
	Despesas  Totals `json:"despesas"`
	Resultado Totals `json:"resultado"`

	TotalPrevisto Money `json:"totalPrevisto"`
	TotalPago     Money `json:"totalPago"`
	FaltaPagar    Money `json:"faltaPagar"`
	TotalReceitas Money `json:"totalReceitas"`
	TotalDespesas Money `json:"totalDespesas"`
}

// MonthlySummary derives forecast (previsto), actual (realizado) and balance
// (saldo) figures for the calendar month of ref from the in-memory ledger.
//
// Credit-card handling follows the billing cycle: expenses charged to a
// credit-card account in the previous month roll into this month's expense
// forecast as the unpaid bill, and a transfer-type income entry on a
// credit-card account is the payment of that bill, counted as realized
// expense outflow rather than income.
//
// The function is pure: it reads nothing outside its arguments, mutates
// nothing, and identical inputs always yield identical output.
func MonthlySummary(entries []FinancialEntry, accounts []Account, ref time.Time) Summary {
	cards := make(map[string]struct{})
	for _, a := range accounts {
		if a.IsCreditCard() {
			cards[a.ID] = struct{}{}
		}
	}
	isCard := func(accountID string) bool {
		_, ok := cards[accountID]
		return ok
	}

	// Previous-cycle bill: card expenses due last month that roll into this
	// month's forecast.
	prev := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	var previousBill Money
	for _, e := range entries {
		if sameMonth(e.DueDate, prev) && e.Type == Expense && !e.IsTransfer && isCard(e.AccountID) {
			previousBill = previousBill.Add(e.ExpectedAmount)
		}
	}

	var current []FinancialEntry
	for _, e := range entries {
		if sameMonth(e.DueDate, ref) {
			current = append(current, e)
		}
	}

	var receitas, despesas Totals
	for _, e := range current {
		switch {
		case e.Type == Income && !e.IsTransfer:
			receitas.Previsto = receitas.Previsto.Add(e.ExpectedAmount)
			if e.IsPaid() {
				receitas.Realizado = receitas.Realizado.Add(paidOrZero(e))
			}
		case e.Type == Expense && !e.IsTransfer:
			despesas.Previsto = despesas.Previsto.Add(e.ExpectedAmount)
			if e.IsPaid() {
				despesas.Realizado = despesas.Realizado.Add(paidOrZero(e))
			}
		case e.IsTransfer && e.Type == Income && isCard(e.AccountID):
			// Card bill settlement: realized expense, never income.
			despesas.Realizado = despesas.Realizado.Add(e.ExpectedAmount)
		}
	}

	despesas.Previsto = despesas.Previsto.Add(previousBill)
	receitas.Saldo = receitas.Previsto.Sub(receitas.Realizado)
	despesas.Saldo = despesas.Previsto.Sub(despesas.Realizado)

	resultado := Totals{
		Previsto:  receitas.Previsto.Sub(despesas.Previsto),
		Realizado: receitas.Realizado.Sub(despesas.Realizado),
	}
	resultado.Saldo = resultado.Previsto.Sub(resultado.Realizado)

	return Summary{
		Receitas:  receitas,
		Despesas:  despesas,
		Resultado: resultado,

		TotalPrevisto: despesas.Previsto,
		TotalPago:     despesas.Realizado,
		FaltaPagar:    despesas.Saldo,
		TotalReceitas: receitas.Realizado,
		TotalDespesas: despesas.Realizado,
	}
}

func paidOrZero(e FinancialEntry) Money {
	if e.PaidAmount == nil {
		return Money{}
	}
	return *e.PaidAmount
}

// sameMonth compares calendar year and month, not a rolling 30-day window.
func sameMonth(t, ref time.Time) bool {
	return t.Year() == ref.Year() && t.Month() == ref.Month()
}
