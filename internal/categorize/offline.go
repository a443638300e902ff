package categorize

import (
	"context"
	"fmt"
	"strings"

	"finboard/internal/analytics"
	"finboard/internal/core"
)

// Offline writes a rule-based analysis with the same five sections the model
// is asked for. It is used when no model backend is configured.
type Offline struct{}

func (Offline) GenerateAnalysis(_ context.Context, in AnalysisInput) string {
	var b strings.Builder

	b.WriteString("### 1. Resumo Geral\n")
	if in.Kind == core.KindCard {
		fmt.Fprintf(&b, "*   Gasto total de %s em %d transações, média de %s por transação.\n",
			core.FormatBRL(in.Summary.TotalExpenses), in.Summary.TransactionCount, core.FormatBRL(in.Summary.AverageSpend))
	} else {
		a := in.Account
		tone := "positivo"
		if a.Balance.IsNegative() {
			tone = "negativo"
		}
		fmt.Fprintf(&b, "*   Receitas de %s e despesas de %s, saldo %s de %s.\n",
			core.FormatBRL(a.Income), core.FormatBRL(a.Expenses), tone, core.FormatBRL(a.Balance))
	}

	b.WriteString("\n### 2. Principais Destaques do Período\n")
	var ups, downs []string
	for _, c := range in.Comparison {
		switch {
		case c.Current.GreaterThan(c.Previous):
			ups = append(ups, c.Name)
		case c.Current.LessThan(c.Previous):
			downs = append(downs, c.Name)
		}
	}
	if len(in.Comparison) == 0 {
		b.WriteString("*   Não há período anterior para comparação.\n")
	}
	if len(ups) > 0 {
		fmt.Fprintf(&b, "*   Aumento de gastos em: %s.\n", strings.Join(first(ups, 3), ", "))
	}
	if len(downs) > 0 {
		fmt.Fprintf(&b, "*   Redução de gastos em: %s.\n", strings.Join(first(downs, 3), ", "))
	}

	var met, missed, untracked []string
	for _, g := range in.Goals {
		switch g.Status {
		case core.GoalUnder:
			met = append(met, g.Name)
		case core.GoalOver:
			v, _ := analytics.Variation(g.Planned, g.Realized)
			missed = append(missed, fmt.Sprintf("%s (%s)", g.Name, core.FormatPercent(v)))
		default:
			untracked = append(untracked, g.Name)
		}
	}

	b.WriteString("\n### 3. Pontos Positivos\n")
	if len(met) > 0 {
		fmt.Fprintf(&b, "*   Metas cumpridas: %s.\n", strings.Join(met, ", "))
	} else if len(downs) > 0 {
		fmt.Fprintf(&b, "*   Gastos menores que no período anterior em %s.\n", downs[0])
	} else {
		b.WriteString("*   Nenhum destaque positivo identificado.\n")
	}

	b.WriteString("\n### 4. Pontos de Atenção\n")
	if len(missed) > 0 {
		fmt.Fprintf(&b, "*   Metas estouradas: %s.\n", strings.Join(missed, ", "))
	}
	if len(untracked) > 0 {
		fmt.Fprintf(&b, "*   Categorias sem meta definida: %s.\n", strings.Join(first(untracked, 3), ", "))
	}
	if len(missed) == 0 && len(untracked) == 0 {
		b.WriteString("*   Nenhum desvio relevante.\n")
	}

	b.WriteString("\n### 5. Recomendações Práticas\n")
	switch {
	case len(missed) > 0:
		fmt.Fprintf(&b, "*   Revise os gastos em %s.\n", strings.SplitN(missed[0], " (", 2)[0])
	case len(untracked) > 0:
		fmt.Fprintf(&b, "*   Considere criar uma meta para '%s'.\n", untracked[0])
	default:
		b.WriteString("*   Mantenha o acompanhamento das metas atuais.\n")
	}
	return b.String()
}

func first(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
