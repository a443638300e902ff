package analytics

import (
	"slices"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

var hundred = decimal.NewFromInt(100)

// BuildComparison joins two periods by category. Magnitudes are absolute,
// categories missing on one side are zero, and rows are ordered by
// descending current magnitude.
func BuildComparison(current, previous []core.Transaction) []core.ComparisonRow {
	index := make(map[string]int)
	var rows []core.ComparisonRow
	row := func(name string) *core.ComparisonRow {
		i, ok := index[name]
		if !ok {
			i = len(rows)
			index[name] = i
			rows = append(rows, core.ComparisonRow{Name: name, Current: decimal.Zero, Previous: decimal.Zero})
		}
		return &rows[i]
	}
	for _, t := range current {
		r := row(t.Category)
		r.Current = r.Current.Add(t.Amount.Abs())
	}
	for _, t := range previous {
		r := row(t.Category)
		r.Previous = r.Previous.Add(t.Amount.Abs())
	}
	slices.SortStableFunc(rows, func(a, b core.ComparisonRow) int {
		return b.Current.Cmp(a.Current)
	})
	return rows
}

// BuildGoalComparison emits one row per aggregate with a nonzero realized
// amount. Categories with a goal but no spending produce no row.
func BuildGoalComparison(aggs []core.CategoryAggregate, goals core.Goals) []core.GoalComparisonRow {
	var rows []core.GoalComparisonRow
	for _, a := range aggs {
		realized := a.Total.Abs()
		if realized.IsZero() {
			continue
		}
		row := core.GoalComparisonRow{
			Name:      a.Name,
			Planned:   goals.Planned(a.Name),
			Realized:  realized,
			Variation: decimal.Zero,
		}
		if v, ok := Variation(row.Planned, realized); ok {
			row.Variation = v
			row.HasVariation = true
		}
		row.Status = goalStatus(row.Planned, realized)
		rows = append(rows, row)
	}
	return rows
}

// Variation is (realized - planned) / planned as a percentage, rounded to
// two places. It is undefined when nothing was planned.
func Variation(planned, realized decimal.Decimal) (decimal.Decimal, bool) {
	if !planned.IsPositive() {
		return decimal.Zero, false
	}
	return realized.Sub(planned).Div(planned).Mul(hundred).Round(2), true
}

func goalStatus(planned, realized decimal.Decimal) core.GoalStatus {
	switch {
	case !planned.IsPositive():
		return core.GoalNoGoal
	case realized.GreaterThan(planned):
		return core.GoalOver
	default:
		return core.GoalUnder
	}
}
