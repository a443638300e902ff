// Package categorize assigns category labels to transaction descriptions and
// writes the narrative analysis of a dashboard view.
//
// Implementations never fail: when the backend is unavailable or answers
// with something unusable they fall back to the default label of the
// vocabulary, or to FailureMessage for narratives.
package categorize

import (
	"context"

	"finboard/internal/core"
)

// FailureMessage is returned by narrators that could not produce an analysis.
const FailureMessage = "Não foi possível gerar a análise. Tente novamente mais tarde."

// Categorizer labels descriptions. The result has the same length and order
// as descriptions and every label belongs to the vocabulary of kind.
type Categorizer interface {
	Categorize(ctx context.Context, kind core.Kind, descriptions []string) []string
}

// Narrator produces a markdown analysis of a view.
type Narrator interface {
	GenerateAnalysis(ctx context.Context, in AnalysisInput) string
}

// AnalysisInput is the aggregated data a narrative is based on. Summary is
// set for card views, Account for account views.
type AnalysisInput struct {
	Kind       core.Kind
	Period     string
	Summary    core.Summary
	Account    core.AccountSummary
	Comparison []core.ComparisonRow
	Goals      []core.GoalComparisonRow
}

// conform returns labels coerced into v when they line up with n
// descriptions, and a same-length default fill otherwise.
func conform(v core.Vocabulary, labels []string, n int) ([]string, bool) {
	if len(labels) != n {
		return v.Fill(n), false
	}
	out := make([]string, n)
	for i, l := range labels {
		out[i] = v.Coerce(l)
	}
	return out, true
}

// CategorizerFunc adapts a function to Categorizer.
type CategorizerFunc func(ctx context.Context, kind core.Kind, descriptions []string) []string

func (f CategorizerFunc) Categorize(ctx context.Context, kind core.Kind, descriptions []string) []string {
	return f(ctx, kind, descriptions)
}
