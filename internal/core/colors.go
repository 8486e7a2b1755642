package core

import "sort"

// DefaultColor is the neutral color for categories outside the suggested set.
const DefaultColor = "#6B7280"

// Display colors for the suggested category labels. Categories are free-form
// in the schema; these tables only drive presentation.
var (
	IncomeCategoryColors = map[string]string{
		"💼 Salario":     "#10B981",
		"📈 Inversiones": "#3B82F6",
		"🎁 Regalos":     "#F59E0B",
		"💰 Otros":       "#6B7280",
	}

	ExpenseCategoryColors = map[string]string{
		"🏠 Vivienda":     "#EF4444",
		"🛒 Alimentación": "#F59E0B",
		"🚌 Transporte":   "#3B82F6",
		"🎬 Ocio":         "#8B5CF6",
		"🏥 Salud":        "#10B981",
		"🛍️ Compras":     "#EC4899",
		"💰 Ahorro":       "#8E44AD",
		"❓ Otros":        "#6B7280",
	}
)

// Color returns the display color for the transaction's category. Income
// transactions use the income table; expense and savings share the expense
// table. Unrecognized categories get the neutral default.
func (t Transaction) Color() string {
	table := ExpenseCategoryColors
	if t.IsIncome() {
		table = IncomeCategoryColors
	}
	if c, ok := table[t.Category]; ok {
		return c
	}
	return DefaultColor
}

// SuggestedCategories returns the suggested labels for a type, sorted for
// stable presentation.
func SuggestedCategories(t TransactionType) []string {
	table := ExpenseCategoryColors
	if t == Income {
		table = IncomeCategoryColors
	}
	labels := make([]string, 0, len(table))
	for label := range table {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
