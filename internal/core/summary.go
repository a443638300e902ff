package core

import "github.com/shopspring/decimal"

// Goal statuses reported by a goal comparison.
const (
	GoalUnder  GoalStatus = "under"
	GoalOver   GoalStatus = "over"
	GoalNoGoal GoalStatus = "no_goal"
)

type GoalStatus string

// CategoryAggregate is the per-category rollup of a transaction set.
type CategoryAggregate struct {
	Name    string          `json:"name"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Average decimal.Decimal `json:"average"`
}

// ComparisonRow pairs a category's magnitude in two periods.
type ComparisonRow struct {
	Name     string          `json:"name"`
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
}

// GoalComparisonRow compares realized spend in a category with its goal.
// Variation is a percentage and is only meaningful when HasVariation is set.
type GoalComparisonRow struct {
	Name         string          `json:"name"`
	Planned      decimal.Decimal `json:"planned"`
	Realized     decimal.Decimal `json:"realized"`
	Variation    decimal.Decimal `json:"variation"`
	HasVariation bool            `json:"has_variation"`
	Status       GoalStatus      `json:"status"`
}

// Summary is the overview of a card statement view.
type Summary struct {
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TransactionCount int             `json:"transaction_count"`
	AverageSpend     decimal.Decimal `json:"average_spend"`
}

// AccountSummary is the overview of a bank account view. Expenses is a
// positive magnitude and Balance is Income minus Expenses.
type AccountSummary struct {
	Income         decimal.Decimal `json:"income"`
	Expenses       decimal.Decimal `json:"expenses"`
	Balance        decimal.Decimal `json:"balance"`
	IncomeCount    int             `json:"income_count"`
	ExpenseCount   int             `json:"expense_count"`
	TotalCount     int             `json:"total_count"`
	AverageIncome  decimal.Decimal `json:"average_income"`
	AverageExpense decimal.Decimal `json:"average_expense"`
}
