package dashboard

import "bilancio/internal/core"

// RecentLimit caps the unified recent-activity feed.
const RecentLimit = 10

// ViewState is the single renderable snapshot owned by the aggregator.
// Render functions receive it explicitly; nothing reads ambient globals.
type ViewState struct {
	// Generation identifies which LoadAll produced this state. Stale
	// completions are discarded before they can overwrite newer data.
	Generation uint64

	// Identity, from the profile step (or its local fallback).
	Username string
	Email    string
	Initial  string
	Currency string

	// Category subsets for form population.
	IncomeCategories  []core.Category
	ExpenseCategories []core.Category

	// Server-computed totals and time series.
	Summary    core.Summary
	HasSummary bool

	// Client-side grouping of expenses by category for the
	// distribution chart.
	Distribution []core.CategoryTotal

	// Unified recent-activity feed plus the full per-type lists.
	Recent   []core.Transaction
	Incomes  []core.Transaction
	Expenses []core.Transaction
}

// partitionCategories splits the category list into income and expense
// subsets, preserving server order.
func partitionCategories(categories []core.Category) (income, expense []core.Category) {
	for _, c := range categories {
		switch c.Type {
		case core.TypeIncome:
			income = append(income, c)
		case core.TypeExpense:
			expense = append(expense, c)
		}
	}
	return income, expense
}

// mergeRecent combines both lists, tags are already set by the API
// layer, sorts newest first and truncates to the feed size.
func mergeRecent(incomes, expenses []core.Transaction) []core.Transaction {
	merged := make([]core.Transaction, 0, len(incomes)+len(expenses))
	merged = append(merged, incomes...)
	merged = append(merged, expenses...)
	core.SortByDateDesc(merged)
	if len(merged) > RecentLimit {
		merged = merged[:RecentLimit]
	}
	return merged
}
