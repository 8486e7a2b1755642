package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ivanmayoraldev/mintly-tracker/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "mintly.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAddTransactionAssignsIdentity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AddTransaction(ctx, core.Transaction{
		Type:        core.Income,
		Amount:      500,
		Category:    "💼 Salario",
		Description: "Salario mensual",
		Date:        "2024-01-20",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if first <= 0 {
		t.Fatalf("expected positive id, got %d", first)
	}

	second, err := repo.AddTransaction(ctx, core.Transaction{
		Type:     core.Expense,
		Amount:   40,
		Category: "🛒 Alimentación",
		Date:     "2024-01-21",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	if second == first {
		t.Fatalf("expected a fresh id, got %d twice", first)
	}

	txs, err := repo.ListTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	// Most recent first
	got := txs[1]
	if got.ID != first || got.Type != core.Income || got.Amount != 500 ||
		got.Category != "💼 Salario" || got.Description != "Salario mensual" || got.Date != "2024-01-20" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestListTransactionsOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dates := []string{"2024-03-01", "2024-03-05", "2024-03-05", "2024-02-28"}
	ids := make([]int64, len(dates))
	for i, d := range dates {
		id, err := repo.AddTransaction(ctx, core.Transaction{
			Type: core.Expense, Amount: 10, Category: "❓ Otros", Date: d,
		})
		if err != nil {
			t.Fatalf("add transaction: %v", err)
		}
		ids[i] = id
	}

	txs, err := repo.ListTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	// Date desc, then id desc for the 2024-03-05 pair
	want := []int64{ids[2], ids[1], ids[0], ids[3]}
	for i, w := range want {
		if txs[i].ID != w {
			t.Fatalf("position %d: got id %d, want %d", i, txs[i].ID, w)
		}
	}

	limited, err := repo.ListTransactions(ctx, 2)
	if err != nil {
		t.Fatalf("list transactions with limit: %v", err)
	}
	if len(limited) != 2 || limited[0].ID != ids[2] || limited[1].ID != ids[1] {
		t.Fatalf("limit 2 returned wrong rows: %+v", limited)
	}
}

func TestListTransactionsByType(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{Type: core.Income, Amount: 100, Category: "💼 Salario", Date: "2024-01-01"},
		{Type: core.Expense, Amount: 20, Category: "🎬 Ocio", Date: "2024-01-02"},
		{Type: core.Income, Amount: 50, Category: "🎁 Regalos", Date: "2024-01-03"},
	}
	for _, tx := range seed {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	incomes, err := repo.ListTransactionsByType(ctx, core.Income, 0)
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(incomes) != 2 {
		t.Fatalf("expected 2 income rows, got %d", len(incomes))
	}
	for _, tx := range incomes {
		if !tx.IsIncome() {
			t.Fatalf("expected income rows only, got %+v", tx)
		}
	}
	if incomes[0].Date != "2024-01-03" {
		t.Fatalf("expected most recent first, got %s", incomes[0].Date)
	}
}

func TestTypeNormalizationAtBoundary(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Canonical code and taxonomy value normalize to the same stored code
	if _, err := repo.AddTransaction(ctx, core.Transaction{
		Type: core.TransactionType("ahorro"), Amount: 5, Category: "💰 Ahorro", Date: "2024-01-01",
	}); err != nil {
		t.Fatalf("add with canonical code: %v", err)
	}
	// Unrecognized tags default to expense instead of failing the insert
	if _, err := repo.AddTransaction(ctx, core.Transaction{
		Type: core.TransactionType("bogus"), Amount: 7, Category: "❓ Otros", Date: "2024-01-02",
	}); err != nil {
		t.Fatalf("add with unknown tag: %v", err)
	}

	savings, err := repo.ListTransactionsByType(ctx, core.Savings, 0)
	if err != nil {
		t.Fatalf("list savings: %v", err)
	}
	if len(savings) != 1 || !savings[0].IsSavings() {
		t.Fatalf("expected one savings row, got %+v", savings)
	}

	expenses, err := repo.ListTransactionsByType(ctx, core.Expense, 0)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Amount != 7 {
		t.Fatalf("expected the bogus-tagged row as expense, got %+v", expenses)
	}
}

func TestDeleteTransactionIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.AddTransaction(ctx, core.Transaction{
		Type: core.Expense, Amount: 10, Category: "❓ Otros", Date: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}

	if err := repo.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	// Deleting again, or deleting an id that never existed, is not an error
	if err := repo.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, 99999); err != nil {
		t.Fatalf("delete of missing id: %v", err)
	}

	txs, err := repo.ListTransactions(ctx, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("expected empty ledger, got %d rows", len(txs))
	}
}

func TestAggregateByPeriod(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{Type: core.Income, Amount: 100, Category: "💼 Salario", Date: "2024-02-10"},
		{Type: core.Expense, Amount: 40, Category: "🛒 Alimentación", Date: "2024-02-15"},
		// Outside the queried range
		{Type: core.Income, Amount: 999, Category: "💼 Salario", Date: "2024-03-01"},
	}
	for _, tx := range seed {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	totals, err := repo.AggregateByPeriod(ctx, "2024-02-01", "2024-02-29")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if totals.Income != 100 || totals.Expense != 40 || totals.Savings != 0 {
		t.Fatalf("totals = %+v, want {100 40 0}", totals)
	}

	// The range is inclusive on both ends
	edge, err := repo.AggregateByPeriod(ctx, "2024-02-10", "2024-02-15")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if edge.Income != 100 || edge.Expense != 40 {
		t.Fatalf("inclusive range totals = %+v", edge)
	}

	empty, err := repo.AggregateByPeriod(ctx, "2020-01-01", "2020-12-31")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if empty != (core.PeriodTotals{}) {
		t.Fatalf("empty period totals = %+v, want zeros", empty)
	}
}

func TestCategoryTotals(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{Type: core.Expense, Amount: 30, Category: "🏠 Vivienda", Date: "2024-01-01"},
		{Type: core.Expense, Amount: 20, Category: "🏠 Vivienda", Date: "2024-01-02"},
		{Type: core.Expense, Amount: 15, Category: "🎬 Ocio", Date: "2024-01-03"},
		{Type: core.Income, Amount: 100, Category: "💼 Salario", Date: "2024-01-04"},
	}
	for _, tx := range seed {
		if _, err := repo.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("add transaction: %v", err)
		}
	}

	totals, err := repo.CategoryTotals(ctx, core.Expense)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("expected 2 expense categories, got %v", totals)
	}
	if totals["🏠 Vivienda"] != 50 || totals["🎬 Ocio"] != 15 {
		t.Fatalf("totals = %v", totals)
	}
	// Categories without rows are absent, not zero-valued
	if _, present := totals["💼 Salario"]; present {
		t.Fatalf("income category leaked into expense totals: %v", totals)
	}

	savings, err := repo.CategoryTotals(ctx, core.Savings)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(savings) != 0 {
		t.Fatalf("expected no savings categories, got %v", savings)
	}
}

func TestSavingsGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.AddSavingsGoal(ctx, core.SavingsGoal{
		Name:          "Vacaciones",
		TargetAmount:  3000,
		CurrentAmount: 500,
		Deadline:      "2024-12-31",
		Description:   "Viaje a Europa",
	})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	if first <= 0 {
		t.Fatalf("expected positive goal id, got %d", first)
	}

	second, err := repo.AddSavingsGoal(ctx, core.SavingsGoal{Name: "Laptop", TargetAmount: 1000})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}

	goals, err := repo.ListSavingsGoals(ctx)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected 2 goals, got %d", len(goals))
	}
	// Newest first
	if goals[0].ID != second || goals[1].ID != first {
		t.Fatalf("goal order = %d, %d; want %d, %d", goals[0].ID, goals[1].ID, second, first)
	}
	if goals[1].Name != "Vacaciones" || goals[1].CurrentAmount != 500 || goals[1].Deadline != "2024-12-31" {
		t.Fatalf("goal round trip mismatch: %+v", goals[1])
	}

	if err := repo.DeleteSavingsGoal(ctx, second); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if err := repo.DeleteSavingsGoal(ctx, second); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}

	goals, err = repo.ListSavingsGoals(ctx)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 || goals[0].ID != first {
		t.Fatalf("expected only the first goal, got %+v", goals)
	}
}

func TestIncrementSavingsGoal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.AddSavingsGoal(ctx, core.SavingsGoal{Name: "Laptop", TargetAmount: 1000, CurrentAmount: 100})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}

	if err := repo.IncrementSavingsGoal(ctx, id, 250); err != nil {
		t.Fatalf("increment: %v", err)
	}
	// Missing ids are a silent no-op
	if err := repo.IncrementSavingsGoal(ctx, 99999, 250); err != nil {
		t.Fatalf("increment of missing id: %v", err)
	}

	goals, err := repo.ListSavingsGoals(ctx)
	if err != nil {
		t.Fatalf("list goals: %v", err)
	}
	if len(goals) != 1 || goals[0].CurrentAmount != 350 {
		t.Fatalf("expected current amount 350, got %+v", goals)
	}
}
