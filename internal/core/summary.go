package core

// PeriodTotals sums transaction amounts per type over a closed date range.
// Types with no transactions in the range report 0.
type PeriodTotals struct {
	Income  float64
	Expense float64
	Savings float64
}

// MonthlyBalance is the dashboard aggregate for the current calendar month.
//
// TotalSavings is the cumulative balance across all goals, not the month's
// savings transactions: goal balances are lifetime figures while income and
// expense are month-scoped. That asymmetry is the intended reading.
type MonthlyBalance struct {
	TotalIncome  float64
	TotalExpense float64
	TotalSavings float64
	Balance      float64
}

// HealthScore is the 0-100 advisory heuristic with its tier and message.
type HealthScore struct {
	Score   int
	Level   string
	Message string
}
