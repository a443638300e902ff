// Package analytics filters transactions and derives the aggregates shown on
// the dashboard: per-category totals, summaries, period comparisons and goal
// comparisons. Every function is pure and leaves its inputs untouched.
package analytics

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/period"
)

// AdHoc narrows a view by exact category and by a case-insensitive
// substring of the description. Empty fields match everything.
type AdHoc struct {
	Category string `json:"category,omitempty"`
	Text     string `json:"text,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f AdHoc) IsZero() bool {
	return f.Category == "" && strings.TrimSpace(f.Text) == ""
}

// FilterByPeriod keeps transactions inside rng. When bounded is false every
// transaction passes.
func FilterByPeriod(txs []core.Transaction, rng period.Range, bounded bool) []core.Transaction {
	if !bounded {
		return slices.Clone(txs)
	}
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if rng.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// FilterAdHoc applies the category and text filters of f.
func FilterAdHoc(txs []core.Transaction, f AdHoc) []core.Transaction {
	q := strings.ToLower(strings.TrimSpace(f.Text))
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Expenses keeps the negative (outgoing) transactions of an account.
func Expenses(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if t.Amount.IsNegative() {
			out = append(out, t)
		}
	}
	return out
}

// AggregateByCategory groups txs by category in first-encounter order.
func AggregateByCategory(txs []core.Transaction) []core.CategoryAggregate {
	index := make(map[string]int)
	var out []core.CategoryAggregate
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAggregate{Name: t.Category, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
		out[i].Count++
	}
	for i := range out {
		out[i].Average = average(out[i].Total, out[i].Count)
	}
	return out
}

// SortByTotal returns aggs ordered by descending total. Ties keep their
// encounter order.
func SortByTotal(aggs []core.CategoryAggregate) []core.CategoryAggregate {
	out := slices.Clone(aggs)
	slices.SortStableFunc(out, func(a, b core.CategoryAggregate) int {
		return b.Total.Cmp(a.Total)
	})
	return out
}

// SortByAverage returns aggs ordered by descending average.
func SortByAverage(aggs []core.CategoryAggregate) []core.CategoryAggregate {
	out := slices.Clone(aggs)
	slices.SortStableFunc(out, func(a, b core.CategoryAggregate) int {
		return b.Average.Cmp(a.Average)
	})
	return out
}

// Summarize computes the card overview of txs.
func Summarize(txs []core.Transaction) core.Summary {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return core.Summary{
		TotalExpenses:    total,
		TransactionCount: len(txs),
		AverageSpend:     average(total, len(txs)),
	}
}

// SummarizeAccount computes the account overview of txs.
func SummarizeAccount(txs []core.Transaction) core.AccountSummary {
	s := core.AccountSummary{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
	}
	for _, t := range txs {
		switch {
		case t.Amount.IsPositive():
			s.Income = s.Income.Add(t.Amount)
			s.IncomeCount++
		case t.Amount.IsNegative():
			s.Expenses = s.Expenses.Add(t.Amount.Abs())
			s.ExpenseCount++
		}
	}
	s.TotalCount = len(txs)
	s.Balance = s.Income.Sub(s.Expenses)
	s.AverageIncome = average(s.Income, s.IncomeCount)
	s.AverageExpense = average(s.Expenses, s.ExpenseCount)
	return s
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}
