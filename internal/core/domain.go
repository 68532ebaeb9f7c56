package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  EntryType = "income"
	Expense EntryType = "expense"
)

const (
	StatusPending EntryStatus = "pending"
	StatusPaid    EntryStatus = "paid"
	StatusOverdue EntryStatus = "overdue"
)

const (
	InstallmentPending InstallmentStatus = "pending"
	InstallmentPaid    InstallmentStatus = "paid"
	InstallmentOverdue InstallmentStatus = "overdue"
	InstallmentPartial InstallmentStatus = "partial"
)

const (
	AccountWallet     AccountType = "wallet"
	AccountBank       AccountType = "bank"
	AccountCreditCard AccountType = "credit_card"
)

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
	// CategoryUntagged marks categories created before typed categories
	// existed. They must be resolved to income or expense before summary
	// bucketing is reliable.
	CategoryUntagged CategoryType = ""
)

type (
	EntryType         string
	EntryStatus       string
	InstallmentStatus string
	AccountType       string
	CategoryType      string

	// Account is a money container: wallet, bank account or credit card.
	// Type discriminates credit cards for billing-cycle handling.
	Account struct {
		ID      string      `json:"id"`
		UID     string      `json:"uid"`
		Name    string      `json:"name"`
		Type    AccountType `json:"type"`
		Balance *Money      `json:"balance"`
		Icon    string      `json:"icon,omitempty"`
	}

	Category struct {
		ID   string       `json:"id"`
		UID  string       `json:"uid"`
		Name string       `json:"name"`
		Icon string       `json:"icon,omitempty"`
		Type CategoryType `json:"type,omitempty"`
	}

	PaymentMethod struct {
		ID          string `json:"id"`
		UID         string `json:"uid"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Active      bool   `json:"active"`
	}

	// FinancialEntry is the unified ledger row the system lives on going
	// forward. Pending entries carry only the expected amount; paying one
	// fills PaidAmount and PaymentDate.
	FinancialEntry struct {
		ID                string      `json:"id"`
		UID               string      `json:"uid"`
		Description       string      `json:"description"`
		Notes             string      `json:"notes,omitempty"`
		Type              EntryType   `json:"type"`
		Status            EntryStatus `json:"status"`
		ExpectedAmount    Money       `json:"expectedAmount"`
		DueDate           time.Time   `json:"dueDate"`
		PaidAmount        *Money      `json:"paidAmount"`
		PaymentDate       *time.Time  `json:"paymentDate"`
		CategoryID        string      `json:"categoryId,omitempty"`
		RecurrenceID      string      `json:"recurrenceId,omitempty"`
		InstallmentNumber int         `json:"installmentNumber,omitempty"`
		TotalInstallments int         `json:"totalInstallments,omitempty"`
		CreatedAt         time.Time   `json:"createdAt"`
		AccountID         string      `json:"accountId,omitempty"`
		PaymentMethodID   string      `json:"paymentMethodId,omitempty"`
		IsTransfer        bool        `json:"isTransfer"`
	}

	// Debt is a legacy entity, read-only since the ledger unification.
	Debt struct {
		ID                        string     `json:"id"`
		UID                       string     `json:"uid"`
		Description               string     `json:"description"`
		OriginalAmount            Money      `json:"originalAmount"`
		TotalRepayment            *Money     `json:"totalRepayment"`
		IsRecurring               bool       `json:"isRecurring"`
		Type                      string     `json:"type,omitempty"`
		Category                  string     `json:"category,omitempty"`
		StartDate                 time.Time  `json:"startDate"`
		EndDate                   *time.Time `json:"endDate"`
		OutstandingBalance        Money      `json:"outstandingBalance"`
		PaidInstallments          int        `json:"paidInstallments"`
		TotalInstallments         int        `json:"totalInstallments"`
		InterestRate              float64    `json:"interestRate,omitempty"`
		FineRate                  float64    `json:"fineRate,omitempty"`
		ExpectedInstallmentAmount Money      `json:"expectedInstallmentAmount"`
	}

	// DebtInstallment is a legacy entity, read-only since the ledger
	// unification.
	DebtInstallment struct {
		ID              string            `json:"id"`
		DebtID          string            `json:"debtId"`
		UID             string            `json:"uid"`
		Number          int               `json:"number"`
		ExpectedDueDate time.Time         `json:"expectedDueDate"`
		ExpectedAmount  Money             `json:"expectedAmount"`
		PaidAmount      Money             `json:"paidAmount"`
		RemainingAmount Money             `json:"remainingAmount"`
		Discount        Money             `json:"discount"`
		Status          InstallmentStatus `json:"status"`
		PaymentDate     *time.Time        `json:"paymentDate"`
		TransactionIDs  []string          `json:"transactionIds,omitempty"`
	}

	// Transaction is a legacy entity, read-only since the ledger unification.
	Transaction struct {
		ID                string    `json:"id"`
		UID               string    `json:"uid"`
		AccountID         string    `json:"accountId"`
		Type              EntryType `json:"type"`
		Description       string    `json:"description"`
		Amount            Money     `json:"amount"`
		Date              time.Time `json:"date"`
		Category          string    `json:"category,omitempty"`
		DebtInstallmentID string    `json:"debtInstallmentId,omitempty"`
		IsLoan            bool      `json:"isLoan"`
		PaymentMethodID   string    `json:"paymentMethodId,omitempty"`
		Interest          Money     `json:"interest"`
		Discount          Money     `json:"discount"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid entry type")
	ErrInvalidStatus    = errors.New("invalid entry status")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrZeroDueDate      = errors.New("due date cannot be zero")
)

func (t EntryType) IsValid() bool {
	return t == Income || t == Expense
}

func (s EntryStatus) IsValid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusOverdue
}

func (t AccountType) IsValid() bool {
	switch t {
	case AccountWallet, AccountBank, AccountCreditCard:
		return true
	default:
		return false
	}
}

// IsCreditCard reports whether expenses on this account accrue into a
// billing cycle instead of settling immediately.
func (a Account) IsCreditCard() bool {
	return a.Type == AccountCreditCard
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.IsValid() {
		return errors.New("invalid account type")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	switch c.Type {
	case CategoryIncome, CategoryExpense, CategoryUntagged:
		return nil
	default:
		return errors.New("invalid category type")
	}
}

func (p PaymentMethod) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e FinancialEntry) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if !e.Type.IsValid() {
		return ErrInvalidType
	}
	if !e.Status.IsValid() {
		return ErrInvalidStatus
	}
	if err := e.ExpectedAmount.Validate(); err != nil {
		return err
	}
	if e.DueDate.IsZero() {
		return ErrZeroDueDate
	}
	if e.PaidAmount != nil && e.PaidAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsPaid reports whether the entry has been settled.
func (e FinancialEntry) IsPaid() bool {
	return e.Status == StatusPaid
}
