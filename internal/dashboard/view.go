package dashboard

import (
	"net/url"
	"strings"
	"time"

	"finboard/internal/analytics"
	"finboard/internal/categorize"
	"finboard/internal/core"
	"finboard/internal/period"
)

// Query selects what a view shows.
type Query struct {
	Filter period.Filter
	AdHoc  analytics.AdHoc
}

// ParseQuery reads period, start, end, category and q from URL values.
func ParseQuery(v url.Values) (Query, error) {
	f, err := period.ParseFilter(v.Get("period"), v.Get("start"), v.Get("end"))
	if err != nil {
		return Query{}, err
	}
	return Query{
		Filter: f,
		AdHoc:  analytics.AdHoc{Category: v.Get("category"), Text: v.Get("q")},
	}, nil
}

// Values is the inverse of ParseQuery.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Filter.Kind != "" && q.Filter.Kind != period.All {
		v.Set("period", string(q.Filter.Kind))
	}
	if q.Filter.Start != nil {
		v.Set("start", q.Filter.Start.ISO())
	}
	if q.Filter.End != nil {
		v.Set("end", q.Filter.End.ISO())
	}
	if q.AdHoc.Category != "" {
		v.Set("category", q.AdHoc.Category)
	}
	if t := strings.TrimSpace(q.AdHoc.Text); t != "" {
		v.Set("q", t)
	}
	return v
}

// Key identifies the query for analysis caching. Named periods are resolved
// against now so "month" in March and in April differ.
func (q Query) Key(now time.Time) string {
	v := q.Values()
	if r, ok := period.Resolve(q.Filter, now); ok {
		v.Set("range", r.String())
	}
	return v.Encode()
}

// View is the derived dashboard for one query. Summary is set for card
// workspaces and Account for account workspaces.
type View struct {
	Kind           core.Kind                `json:"kind"`
	Period         period.Kind              `json:"period"`
	Range          *period.Range            `json:"range,omitempty"`
	PreviousRange  *period.Range            `json:"previous_range,omitempty"`
	Filter         analytics.AdHoc          `json:"filter"`
	Summary        *core.Summary            `json:"summary,omitempty"`
	Account        *core.AccountSummary     `json:"account,omitempty"`
	Categories     []core.CategoryAggregate `json:"categories"`
	AverageRanking []core.CategoryAggregate `json:"average_ranking"`
	Comparison     []core.ComparisonRow     `json:"comparison"`
	Goals          []core.GoalComparisonRow `json:"goals"`
	GoalsSet       core.Goals               `json:"goals_set"`
	Transactions   []core.Transaction       `json:"transactions"`
	CategoryList   []string                 `json:"category_list"`
	Analysis       string                   `json:"analysis,omitempty"`
}

// BuildView derives every dashboard structure for q from w.
//
// The current period honours both the time filter and the ad hoc filter;
// the previous period is only time filtered. For account workspaces the
// category breakdown and goals consider expenses only, as magnitudes.
func BuildView(w Workspace, q Query, now time.Time) View {
	kind := q.Filter.Kind
	if kind == "" {
		kind = period.All
	}
	rng, bounded := period.Resolve(q.Filter, now)
	current := analytics.FilterByPeriod(w.Transactions, rng, bounded)
	current = analytics.FilterAdHoc(current, q.AdHoc)

	view := View{
		Kind:         w.Kind,
		Period:       kind,
		Filter:       q.AdHoc,
		Transactions: current,
		GoalsSet:     w.Goals,
		CategoryList: w.Categories,
		Comparison:   []core.ComparisonRow{},
	}
	if bounded {
		view.Range = &rng
	}

	spending := current
	if w.Kind == core.KindAccount {
		s := analytics.SummarizeAccount(current)
		view.Account = &s
		spending = analytics.Expenses(current)
	} else {
		s := analytics.Summarize(current)
		view.Summary = &s
	}

	aggs := analytics.AggregateByCategory(spending)
	if w.Kind == core.KindAccount {
		aggs = magnitudes(aggs)
	}
	view.Categories = analytics.SortByTotal(aggs)
	view.AverageRanking = analytics.SortByAverage(aggs)
	view.Goals = analytics.BuildGoalComparison(view.Categories, w.Goals)

	if bounded {
		if prev, ok := rng.Previous(); ok && len(w.Transactions) > 0 {
			view.PreviousRange = &prev
			previous := analytics.FilterByPeriod(w.Transactions, prev, true)
			view.Comparison = analytics.BuildComparison(current, previous)
		}
	}

	if text, ok := w.CachedAnalysis(q.Key(now)); ok {
		view.Analysis = text
	}
	return view
}

func magnitudes(aggs []core.CategoryAggregate) []core.CategoryAggregate {
	out := make([]core.CategoryAggregate, len(aggs))
	for i, a := range aggs {
		a.Total = a.Total.Abs()
		a.Average = a.Average.Abs()
		out[i] = a
	}
	return out
}

// AnalysisInput extracts what the narrator needs from a view.
func (v View) AnalysisInput() categorize.AnalysisInput {
	in := categorize.AnalysisInput{
		Kind:       v.Kind,
		Period:     periodLabel(v),
		Comparison: v.Comparison,
		Goals:      v.Goals,
	}
	if v.Summary != nil {
		in.Summary = *v.Summary
	}
	if v.Account != nil {
		in.Account = *v.Account
	}
	return in
}

func periodLabel(v View) string {
	if v.Range == nil {
		return "Todo o período"
	}
	return v.Range.String()
}
