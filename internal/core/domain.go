package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
	Savings TransactionType = "SAVINGS"
)

// Well-known category labels used by savings funding operations.
const (
	CategoryGeneralSavings    = "General Savings"
	CategorySavingsWithdrawal = "Savings Withdrawal"
	CategoryFixedDeposit      = "Fixed Deposit"
	CategoryGoalSaving        = "Goal Saving"
)

// DateLayout is the on-disk format of transaction dates. Dates are plain
// calendar dates with no timezone semantics.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	// Transaction is a single ledger entry. Amount is signed: savings
	// withdrawals are recorded as negative SAVINGS entries.
	Transaction struct {
		ID       string          `json:"id"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category"`
		Note     string          `json:"note,omitempty"`
		Date     string          `json:"date"`
		Type     TransactionType `json:"type"`
		Currency string          `json:"currency"`
		// ExcludeFromBalance is meaningful only for SAVINGS entries: when
		// true the entry counts toward total savings but not the spendable
		// balance.
		ExcludeFromBalance bool `json:"excludeFromBalance,omitempty"`
	}

	// Goal is a named savings bucket. SavedAmount tracks the sum of its
	// funding transactions but the two are maintained by separate key
	// writes, so they can drift if a write fails mid-operation.
	Goal struct {
		ID             string          `json:"id"`
		Name           string          `json:"name"`
		TargetAmount   decimal.Decimal `json:"targetAmount"`
		SavedAmount    decimal.Decimal `json:"savedAmount"`
		Currency       string          `json:"currency"`
		Category       string          `json:"category,omitempty"`
		IsFixedDeposit bool            `json:"isFixedDeposit,omitempty"`
	}

	// Profile namespaces all other entities via key prefixing.
	Profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// DashboardStats is derived from the ledger and never persisted.
	DashboardStats struct {
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalExpense decimal.Decimal `json:"totalExpense"`
		TotalSavings decimal.Decimal `json:"totalSavings"`
		Balance      decimal.Decimal `json:"balance"`
	}
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyName         = errors.New("empty name")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrUnknownCategory   = errors.New("category not in configured list")
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Savings:
		return true
	}
	return false
}

// NewTransaction builds a ledger entry with a fresh id. The
// excludeFromBalance flag is only retained for SAVINGS entries.
func NewTransaction(amount decimal.Decimal, category, note string, typ TransactionType, date, currency string, excludeFromBalance bool) Transaction {
	if typ != Savings {
		excludeFromBalance = false
	}
	return Transaction{
		ID:                 uuid.NewString(),
		Amount:             amount,
		Category:           category,
		Note:               note,
		Date:               date,
		Type:               typ,
		Currency:           currency,
		ExcludeFromBalance: excludeFromBalance,
	}
}

// NewGoal builds a savings goal with a fresh id and zero saved amount.
func NewGoal(name string, target decimal.Decimal, currency, category string, isFixedDeposit bool) Goal {
	return Goal{
		ID:             uuid.NewString(),
		Name:           name,
		TargetAmount:   target,
		SavedAmount:    decimal.Zero,
		Currency:       currency,
		Category:       category,
		IsFixedDeposit: isFixedDeposit,
	}
}

// Validate checks user-facing invariants for a new or updated transaction.
// Funding operations bypass it because withdrawals carry negative amounts.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if !t.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// FundingCategory returns the ledger category for a deposit into this goal.
func (g Goal) FundingCategory() string {
	if g.Category != "" {
		return g.Category
	}
	if g.IsFixedDeposit {
		return CategoryFixedDeposit
	}
	return CategoryGoalSaving
}

// Today formats the current date in the ledger's date layout.
func Today() string {
	return time.Now().Format(DateLayout)
}
