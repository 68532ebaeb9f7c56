// Package sqlite implements the store port on SQLite. Documents keep their
// timestamps in the store-native form (unix seconds); conversion to
// time.Time happens on read, here and nowhere else.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"carteira/internal/core"
	applog "carteira/internal/log"
	"carteira/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Store-native timestamps are unix seconds.

func toUnix(t time.Time) int64 {
	return t.UTC().Unix()
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func toNullUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toUnix(*t), Valid: true}
}

func fromNullUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromUnix(v.Int64)
	return &t
}

func toNullCents(m *core.Money) sql.NullInt64 {
	if m == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: m.Cents, Valid: true}
}

func fromNullCents(v sql.NullInt64) *core.Money {
	if !v.Valid {
		return nil
	}
	return &core.Money{Cents: v.Int64}
}

const entryColumns = `id, uid, description, notes, type, status, expected_cents, due_date,
	paid_cents, payment_date, category_id, recurrence_id, installment_number,
	total_installments, created_at, account_id, payment_method_id, is_transfer`

func scanEntry(row interface{ Scan(...any) error }) (core.FinancialEntry, error) {
	var (
		e           core.FinancialEntry
		expected    int64
		due         int64
		paid        sql.NullInt64
		paymentDate sql.NullInt64
		createdAt   int64
	)
	err := row.Scan(&e.ID, &e.UID, &e.Description, &e.Notes, &e.Type, &e.Status,
		&expected, &due, &paid, &paymentDate, &e.CategoryID, &e.RecurrenceID,
		&e.InstallmentNumber, &e.TotalInstallments, &createdAt, &e.AccountID,
		&e.PaymentMethodID, &e.IsTransfer)
	if err != nil {
		return core.FinancialEntry{}, err
	}
	e.ExpectedAmount = core.Money{Cents: expected}
	e.DueDate = fromUnix(due)
	e.PaidAmount = fromNullCents(paid)
	e.PaymentDate = fromNullUnix(paymentDate)
	e.CreatedAt = fromUnix(createdAt)
	return e, nil
}

func (s *Store) FinancialEntries(ctx context.Context, uid string) ([]core.FinancialEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM financial_entries WHERE uid = ? ORDER BY due_date, id`, uid)
	if err != nil {
		return nil, fmt.Errorf("query financial entries: %w", err)
	}
	defer rows.Close()

	var out []core.FinancialEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan financial entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate financial entries: %w", err)
	}
	return out, nil
}

func (s *Store) GetFinancialEntry(ctx context.Context, uid, id string) (core.FinancialEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM financial_entries WHERE uid = ? AND id = ?`, uid, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FinancialEntry{}, fmt.Errorf("entry %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.FinancialEntry{}, fmt.Errorf("get financial entry: %w", err)
	}
	return e, nil
}

func (s *Store) AddFinancialEntry(ctx context.Context, e core.FinancialEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO financial_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UID, e.Description, e.Notes, e.Type, e.Status,
		e.ExpectedAmount.Cents, toUnix(e.DueDate), toNullCents(e.PaidAmount),
		toNullUnix(e.PaymentDate), e.CategoryID, e.RecurrenceID,
		e.InstallmentNumber, e.TotalInstallments, toUnix(e.CreatedAt),
		e.AccountID, e.PaymentMethodID, e.IsTransfer)
	if err != nil {
		return "", fmt.Errorf("insert financial entry: %w", err)
	}

	slog.InfoContext(ctx, "Financial entry saved",
		applog.FieldComponent, applog.ComponentStore,
		"id", e.ID,
		"uid", e.UID,
		"type", e.Type,
		"expected_cents", e.ExpectedAmount.Cents)

	return e.ID, nil
}

func (s *Store) UpdateFinancialEntry(ctx context.Context, e core.FinancialEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE financial_entries SET
			description = ?, notes = ?, type = ?, status = ?, expected_cents = ?,
			due_date = ?, paid_cents = ?, payment_date = ?, category_id = ?,
			recurrence_id = ?, installment_number = ?, total_installments = ?,
			account_id = ?, payment_method_id = ?, is_transfer = ?
		 WHERE uid = ? AND id = ?`,
		e.Description, e.Notes, e.Type, e.Status, e.ExpectedAmount.Cents,
		toUnix(e.DueDate), toNullCents(e.PaidAmount), toNullUnix(e.PaymentDate),
		e.CategoryID, e.RecurrenceID, e.InstallmentNumber, e.TotalInstallments,
		e.AccountID, e.PaymentMethodID, e.IsTransfer, e.UID, e.ID)
	if err != nil {
		return fmt.Errorf("update financial entry: %w", err)
	}
	return requireRow(res, e.ID)
}

func (s *Store) DeleteFinancialEntry(ctx context.Context, uid, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM financial_entries WHERE uid = ? AND id = ?`, uid, id)
	if err != nil {
		return fmt.Errorf("delete financial entry: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *Store) Accounts(ctx context.Context, uid string) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, name, type, balance_cents, icon FROM accounts WHERE uid = ? ORDER BY name`, uid)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		var (
			a       core.Account
			balance sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.UID, &a.Name, &a.Type, &balance, &a.Icon); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Balance = fromNullCents(balance)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) AddAccount(ctx context.Context, a core.Account) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, uid, name, type, balance_cents, icon) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UID, a.Name, a.Type, toNullCents(a.Balance), a.Icon)
	if err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}
	return a.ID, nil
}

func (s *Store) Categories(ctx context.Context, uid string) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, name, icon, type FROM categories WHERE uid = ? ORDER BY name`, uid)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.UID, &c.Name, &c.Icon, &c.Type); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) AddCategory(ctx context.Context, c core.Category) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, uid, name, icon, type) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.UID, c.Name, c.Icon, c.Type)
	if err != nil {
		return "", fmt.Errorf("insert category: %w", err)
	}
	return c.ID, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, type = ? WHERE uid = ? AND id = ?`,
		c.Name, c.Icon, c.Type, c.UID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, c.ID)
}

func (s *Store) PaymentMethods(ctx context.Context, uid string) ([]core.PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, name, description, active FROM payment_methods WHERE uid = ? ORDER BY name`, uid)
	if err != nil {
		return nil, fmt.Errorf("query payment methods: %w", err)
	}
	defer rows.Close()

	var out []core.PaymentMethod
	for rows.Next() {
		var p core.PaymentMethod
		if err := rows.Scan(&p.ID, &p.UID, &p.Name, &p.Description, &p.Active); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) AddPaymentMethod(ctx context.Context, p core.PaymentMethod) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payment_methods (id, uid, name, description, active) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.UID, p.Name, p.Description, p.Active)
	if err != nil {
		return "", fmt.Errorf("insert payment method: %w", err)
	}
	return p.ID, nil
}

func (s *Store) Debts(ctx context.Context, uid string) ([]core.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, description, original_cents, total_repayment_cents, is_recurring,
			type, category, start_date, end_date, outstanding_cents, paid_installments,
			total_installments, interest_rate, fine_rate, expected_installment_cents
		 FROM debts WHERE uid = ?`, uid)
	if err != nil {
		return nil, fmt.Errorf("query debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		var (
			d         core.Debt
			original  int64
			repayment sql.NullInt64
			start     int64
			end       sql.NullInt64
			outCents  int64
			expected  int64
		)
		if err := rows.Scan(&d.ID, &d.UID, &d.Description, &original, &repayment,
			&d.IsRecurring, &d.Type, &d.Category, &start, &end, &outCents,
			&d.PaidInstallments, &d.TotalInstallments, &d.InterestRate,
			&d.FineRate, &expected); err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		d.OriginalAmount = core.Money{Cents: original}
		d.TotalRepayment = fromNullCents(repayment)
		d.StartDate = fromUnix(start)
		d.EndDate = fromNullUnix(end)
		d.OutstandingBalance = core.Money{Cents: outCents}
		d.ExpectedInstallmentAmount = core.Money{Cents: expected}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) DebtInstallments(ctx context.Context, uid string) ([]core.DebtInstallment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, debt_id, uid, number, expected_due, expected_cents, paid_cents,
			remaining_cents, discount_cents, status, payment_date, transaction_ids
		 FROM debt_installments WHERE uid = ?`, uid)
	if err != nil {
		return nil, fmt.Errorf("query debt installments: %w", err)
	}
	defer rows.Close()

	var out []core.DebtInstallment
	for rows.Next() {
		var (
			inst      core.DebtInstallment
			due       int64
			expected  int64
			paid      int64
			remaining int64
			discount  int64
			payDate   sql.NullInt64
			txIDs     string
		)
		if err := rows.Scan(&inst.ID, &inst.DebtID, &inst.UID, &inst.Number, &due,
			&expected, &paid, &remaining, &discount, &inst.Status, &payDate, &txIDs); err != nil {
			return nil, fmt.Errorf("scan debt installment: %w", err)
		}
		inst.ExpectedDueDate = fromUnix(due)
		inst.ExpectedAmount = core.Money{Cents: expected}
		inst.PaidAmount = core.Money{Cents: paid}
		inst.RemainingAmount = core.Money{Cents: remaining}
		inst.Discount = core.Money{Cents: discount}
		inst.PaymentDate = fromNullUnix(payDate)
		if txIDs != "" {
			inst.TransactionIDs = strings.Split(txIDs, ",")
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (s *Store) Transactions(ctx context.Context, uid string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, account_id, type, description, amount_cents, date, category,
			debt_installment_id, is_loan, payment_method_id, interest_cents, discount_cents
		 FROM transactions WHERE uid = ?`, uid)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			tx       core.Transaction
			amount   int64
			date     int64
			interest int64
			discount int64
		)
		if err := rows.Scan(&tx.ID, &tx.UID, &tx.AccountID, &tx.Type, &tx.Description,
			&amount, &date, &tx.Category, &tx.DebtInstallmentID, &tx.IsLoan,
			&tx.PaymentMethodID, &interest, &discount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Amount = core.Money{Cents: amount}
		tx.Date = fromUnix(date)
		tx.Interest = core.Money{Cents: interest}
		tx.Discount = core.Money{Cents: discount}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT uid FROM financial_entries UNION SELECT uid FROM accounts ORDER BY uid`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var uid string
		if err := rows.Scan(&uid); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, uid)
	}
	return out, rows.Err()
}
