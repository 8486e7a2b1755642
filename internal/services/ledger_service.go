// Package services composes storage operations into the ledger's domain
// behaviors and derived metrics.
package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ivanmayoraldev/mintly-tracker/internal/core"
	"github.com/ivanmayoraldev/mintly-tracker/internal/storage"
)

// Deposit bookkeeping constants. Every deposit into a goal is also recorded
// as a savings transaction under this fixed category and description.
const (
	depositCategory    = "💰 Ahorro"
	depositDescription = "Traspaso manual a meta"
)

// Health score tiers and advisory messages.
const (
	LevelNoData    = "Sin datos"
	LevelExcellent = "Excelente"
	LevelGood      = "Bueno"
	LevelNeedsWork = "Mejorable"

	msgNoData    = "Registra ingresos para analizar"
	msgExcellent = "¡Ahorro manual impecable!"
	msgGood      = "Buen control de tus aportes."
	msgNeedsWork = "Intenta mover más dinero a tus metas."
)

// LedgerService owns the persistence handle and exposes the operations the
// presentation layer consumes. Construct one at process start and pass it
// around explicitly.
type LedgerService struct {
	storage *storage.SQLiteRepository
	now     func() time.Time
}

func NewLedgerService(st *storage.SQLiteRepository) *LedgerService {
	return &LedgerService{
		storage: st,
		now:     time.Now,
	}
}

// RecordTransaction persists a new transaction and returns its identity.
// Amounts are caller-validated at the input boundary; the service delegates
// straight to storage.
func (s *LedgerService) RecordTransaction(ctx context.Context, t core.TransactionType, amount float64, category, description, date string) (int64, error) {
	return s.storage.AddTransaction(ctx, core.Transaction{
		Type:        t,
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	})
}

// DepositToGoal moves money into a goal as one logical unit: it records a
// savings transaction dated today, then increments the goal balance. The two
// writes are attempted in that order and are not atomic across a crash; if
// the increment fails the transaction row still stands.
func (s *LedgerService) DepositToGoal(ctx context.Context, goalID int64, amount float64) error {
	tx := core.Transaction{
		Type:        core.Savings,
		Amount:      amount,
		Category:    depositCategory,
		Description: depositDescription,
		Date:        s.now().Format(core.DateLayout),
	}
	if _, err := s.storage.AddTransaction(ctx, tx); err != nil {
		return fmt.Errorf("record savings transaction: %w", err)
	}

	if err := s.storage.IncrementSavingsGoal(ctx, goalID, amount); err != nil {
		return fmt.Errorf("increment goal %d: %w", goalID, err)
	}

	return nil
}

// CreateSavingsGoal persists a new goal and returns its identity.
func (s *LedgerService) CreateSavingsGoal(ctx context.Context, name string, target, current float64, deadline, description string) (int64, error) {
	return s.storage.AddSavingsGoal(ctx, core.SavingsGoal{
		Name:          name,
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      deadline,
		Description:   description,
	})
}

// MonthlyBalance aggregates the current calendar month, from the 1st through
// today inclusive. TotalSavings is the all-time sum of goal balances, not
// the month's savings transactions (see core.MonthlyBalance).
func (s *LedgerService) MonthlyBalance(ctx context.Context) (core.MonthlyBalance, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).Format(core.DateLayout)
	end := now.Format(core.DateLayout)

	totals, err := s.storage.AggregateByPeriod(ctx, start, end)
	if err != nil {
		return core.MonthlyBalance{}, fmt.Errorf("aggregate month: %w", err)
	}

	goals, err := s.storage.ListSavingsGoals(ctx)
	if err != nil {
		return core.MonthlyBalance{}, fmt.Errorf("list goals: %w", err)
	}
	var saved float64
	for _, g := range goals {
		saved += g.CurrentAmount
	}

	return core.MonthlyBalance{
		TotalIncome:  totals.Income,
		TotalExpense: totals.Expense,
		TotalSavings: saved,
		Balance:      totals.Income - totals.Expense - saved,
	}, nil
}

// FinancialHealthScore derives the advisory score from the monthly balance:
// score = round(savingsRate*2 + (100-expenseRate)*0.8), clamped to [0, 100].
// With no income the score is 0 and the level is the no-data sentinel.
func (s *LedgerService) FinancialHealthScore(ctx context.Context) (core.HealthScore, error) {
	bal, err := s.MonthlyBalance(ctx)
	if err != nil {
		return core.HealthScore{}, err
	}

	if bal.TotalIncome <= 0 {
		return core.HealthScore{Score: 0, Level: LevelNoData, Message: msgNoData}, nil
	}

	savingsRate := bal.TotalSavings / bal.TotalIncome * 100
	expenseRate := bal.TotalExpense / bal.TotalIncome * 100

	score := int(math.Round(savingsRate*2 + (100-expenseRate)*0.8))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	switch {
	case score >= 80:
		return core.HealthScore{Score: score, Level: LevelExcellent, Message: msgExcellent}, nil
	case score >= 50:
		return core.HealthScore{Score: score, Level: LevelGood, Message: msgGood}, nil
	default:
		return core.HealthScore{Score: score, Level: LevelNeedsWork, Message: msgNeedsWork}, nil
	}
}

// ListTransactions returns all transactions, most recent first. A limit of 0
// means no cap.
func (s *LedgerService) ListTransactions(ctx context.Context, limit int) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, limit)
}

// ListTransactionsByType returns one type's transactions, most recent first.
func (s *LedgerService) ListTransactionsByType(ctx context.Context, t core.TransactionType, limit int) ([]core.Transaction, error) {
	return s.storage.ListTransactionsByType(ctx, t, limit)
}

// ListSavingsGoals returns all goals, newest first.
func (s *LedgerService) ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	return s.storage.ListSavingsGoals(ctx)
}

// IncomeByCategory returns per-category income totals.
func (s *LedgerService) IncomeByCategory(ctx context.Context) (map[string]float64, error) {
	return s.storage.CategoryTotals(ctx, core.Income)
}

// ExpensesByCategory returns per-category expense totals.
func (s *LedgerService) ExpensesByCategory(ctx context.Context) (map[string]float64, error) {
	return s.storage.CategoryTotals(ctx, core.Expense)
}

// SavingsByCategory returns per-category savings totals.
func (s *LedgerService) SavingsByCategory(ctx context.Context) (map[string]float64, error) {
	return s.storage.CategoryTotals(ctx, core.Savings)
}

// DeleteTransaction removes a transaction; missing ids are a no-op.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	return s.storage.DeleteTransaction(ctx, id)
}

// DeleteSavingsGoal removes a goal; missing ids are a no-op. Savings
// transactions recorded against the goal are kept as history.
func (s *LedgerService) DeleteSavingsGoal(ctx context.Context, id int64) error {
	return s.storage.DeleteSavingsGoal(ctx, id)
}

// Close releases the storage handle.
func (s *LedgerService) Close() error {
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return fmt.Errorf("close storage: %w", err)
		}
	}
	return nil
}
