package core

import (
	"errors"
	"strings"
	"time"
)

// Canonical type codes as stored in the transactions table. The database has
// always used these codes; they are part of the durable schema and must not
// change.
const (
	CodeIncome  = "ingreso"
	CodeExpense = "gasto"
	CodeSavings = "ahorro"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
	Savings TransactionType = "SAVINGS"
)

// DateLayout is the storage format for all dates. Lexicographic order on
// these strings equals chronological order.
const DateLayout = "2006-01-02"

type (
	// TransactionType is the closed taxonomy of ledger movements.
	TransactionType string

	// Transaction is a single dated monetary event. ID is zero until the
	// row is persisted; rows are immutable after insert except for deletion.
	Transaction struct {
		ID          int64
		Type        TransactionType
		Amount      float64
		Category    string
		Description string
		Date        string // ISO YYYY-MM-DD
	}

	// SavingsGoal is a named target with an accumulating balance. The
	// balance only ever grows through deposits; it is never set directly.
	SavingsGoal struct {
		ID            int64
		Name          string
		TargetAmount  float64
		CurrentAmount float64
		Deadline      string // optional, ISO YYYY-MM-DD
		Description   string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyName     = errors.New("empty name")
)

// NormalizeTypeCode maps any accepted representation of a transaction type
// (taxonomy value, symbolic name, or canonical code) to the single stored
// code. Unrecognized input falls back to the expense code: storage must
// never reject a row over a bad type tag.
func NormalizeTypeCode(v string) string {
	switch strings.TrimSpace(v) {
	case string(Income), CodeIncome:
		return CodeIncome
	case string(Expense), CodeExpense:
		return CodeExpense
	case string(Savings), CodeSavings:
		return CodeSavings
	default:
		return CodeExpense
	}
}

// Code returns the canonical stored code for the type.
func (t TransactionType) Code() string {
	return NormalizeTypeCode(string(t))
}

// TypeFromCode maps a stored code back to its taxonomy value. Unknown codes
// read back as Expense, mirroring the write-side fallback.
func TypeFromCode(code string) TransactionType {
	switch code {
	case CodeIncome:
		return Income
	case CodeSavings:
		return Savings
	default:
		return Expense
	}
}

func (t Transaction) IsIncome() bool  { return t.Type == Income }
func (t Transaction) IsExpense() bool { return t.Type == Expense }
func (t Transaction) IsSavings() bool { return t.Type == Savings }

// Validate checks the fields collected at the input boundary. Storage itself
// does not re-validate; it only normalizes the type tag.
func (t Transaction) Validate() error {
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return ValidateDate(t.Date)
}

// Validate checks goal fields collected at the input boundary. A zero target
// is allowed; progress just reports 0 for it.
func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount < 0 || g.CurrentAmount < 0 {
		return ErrInvalidAmount
	}
	if g.Deadline != "" {
		return ValidateDate(g.Deadline)
	}
	return nil
}

// ProgressPercentage reports how far the goal has come, clamped to [0, 100].
// A non-positive target reports 0 rather than dividing by zero.
func (g SavingsGoal) ProgressPercentage() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	pct := g.CurrentAmount / g.TargetAmount * 100
	if pct > 100 {
		return 100
	}
	return pct
}

// ValidateDate checks that s is a well-formed storage date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Today returns the current local date in storage format.
func Today() string {
	return time.Now().Format(DateLayout)
}
