package categorize

import (
	"encoding/json"
	"fmt"
	"strings"

	"finboard/internal/core"
)

func categorizationPrompt(kind core.Kind, v core.Vocabulary, descriptions []string) string {
	list, _ := json.Marshal(descriptions)

	subject, items := "transações de extratos bancários", "Descrições das Transações"
	if kind == core.KindCard {
		subject, items = "despesas de cartão de crédito", "Descrições das Despesas"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Você é um assistente financeiro especialista em categorizar %s.\n", subject)
	b.WriteString("Analise cada descrição abaixo e atribua a categoria mais apropriada da lista fornecida.\n\n")
	fmt.Fprintf(&b, "Lista de Categorias Válidas:\n%s\n\n", strings.Join(v.Labels, ", "))
	fmt.Fprintf(&b, "%s para Analisar:\n%s\n\n", items, list)
	b.WriteString("Responda com um array JSON em que cada elemento é a categoria da descrição correspondente, na mesma ordem em que foram fornecidas.")
	fmt.Fprintf(&b, " Se nenhuma categoria for apropriada, use '%s'.", v.Default)
	return b.String()
}

func analysisPrompt(in AnalysisInput) string {
	var b strings.Builder
	if in.Kind == core.KindCard {
		b.WriteString("Você é um analista financeiro especialista em faturas de cartão de crédito. Com base nos dados abaixo, gere uma análise estruturada.\n")
	} else {
		b.WriteString("Você é um analista financeiro especialista. Com base nos dados abaixo de uma conta, gere uma análise estruturada.\n")
	}
	b.WriteString("A análise deve ser em português, clara, concisa e orientada à tomada de decisão.\n")
	b.WriteString("Use **markdown** e estruture a resposta exatamente nas cinco seções com bullet points descritas abaixo, sem parágrafos de introdução ou conclusão fora dessa estrutura.\n\n")

	writeData(&b, in)

	b.WriteString("\n**Estrutura da Análise (use este formato exato):**\n\n")
	for i, s := range sections(in.Kind) {
		fmt.Fprintf(&b, "### %d. %s\n", i+1, s.title)
		for _, hint := range s.hints {
			fmt.Fprintf(&b, "*   %s\n", hint)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeData(b *strings.Builder, in AnalysisInput) {
	if in.Kind == core.KindCard {
		b.WriteString("**Dados da Fatura:**\n")
	} else {
		b.WriteString("**Dados Financeiros:**\n")
	}
	if in.Period != "" {
		fmt.Fprintf(b, "- **Período:** %s\n", in.Period)
	}
	b.WriteString("- **Resumo do Período:**\n")
	if in.Kind == core.KindCard {
		s := in.Summary
		fmt.Fprintf(b, "  - Gasto Total: %s\n", core.FormatBRL(s.TotalExpenses))
		fmt.Fprintf(b, "  - Número de Transações: %d\n", s.TransactionCount)
		fmt.Fprintf(b, "  - Gasto Médio por Transação: %s\n", core.FormatBRL(s.AverageSpend))
	} else {
		s := in.Account
		fmt.Fprintf(b, "  - Receitas Totais: %s\n", core.FormatBRL(s.Income))
		fmt.Fprintf(b, "  - Despesas Totais: %s\n", core.FormatBRL(s.Expenses))
		fmt.Fprintf(b, "  - Saldo: %s\n", core.FormatBRL(s.Balance))
		fmt.Fprintf(b, "  - Total de Transações: %d\n", s.TotalCount)
		fmt.Fprintf(b, "  - Média por Transação de Receita: %s\n", core.FormatBRL(s.AverageIncome))
		fmt.Fprintf(b, "  - Média por Transação de Despesa: %s\n", core.FormatBRL(s.AverageExpense))
	}

	b.WriteString("- **Comparativo com Período Anterior (por categoria):**\n")
	if len(in.Comparison) == 0 {
		b.WriteString("  - Sem período anterior para comparar.\n")
	}
	for _, c := range in.Comparison {
		fmt.Fprintf(b, "  - %s: Atual %s vs. Anterior %s\n", c.Name, core.FormatBRL(c.Current), core.FormatBRL(c.Previous))
	}

	b.WriteString("- **Metas de Despesas (Planejado vs. Realizado):**\n")
	wrote := false
	for _, g := range in.Goals {
		if !g.Planned.IsPositive() {
			continue
		}
		fmt.Fprintf(b, "  - %s: Planejado %s vs. Realizado %s\n", g.Name, core.FormatBRL(g.Planned), core.FormatBRL(g.Realized))
		wrote = true
	}
	if !wrote {
		b.WriteString("  - Nenhuma meta de despesa definida.\n")
	}
}

type section struct {
	title string
	hints []string
}

func sections(kind core.Kind) []section {
	if kind == core.KindCard {
		return []section{
			{"Resumo Geral", []string{"Apresente o valor total da fatura, o número de transações e o gasto médio por transação."}},
			{"Principais Destaques do Período", []string{
				"Identifique as 2 ou 3 categorias com os maiores aumentos em relação ao período anterior.",
				"Mencione também reduções significativas, se houver.",
			}},
			{"Pontos Positivos", []string{
				"Destaque se os gastos totais diminuíram ou se alguma categoria importante teve redução considerável.",
				"Mencione metas cumpridas (realizado menor que o planejado).",
			}},
			{"Pontos de Atenção", []string{
				"Aponte categorias que ultrapassaram o planejado ou o histórico do período anterior.",
				"Mencione se o gasto médio por transação aumentou.",
				"Se as principais categorias não tiverem metas, sugira criá-las.",
			}},
			{"Recomendações Práticas", []string{"Forneça 2 ou 3 sugestões objetivas e acionáveis."}},
		}
	}
	return []section{
		{"Resumo Geral", []string{"Comente o desempenho do período, o saldo final e a relação entre receitas e despesas."}},
		{"Principais Destaques do Período", []string{
			"Identifique as 2 ou 3 categorias de despesa com as maiores variações em relação ao período anterior.",
			"Mencione a categoria de receita com maior variação, se relevante.",
		}},
		{"Pontos Positivos", []string{
			"Destaque comportamentos financeiros saudáveis, como redução de gastos não essenciais ou aumento de receitas.",
			"Mencione metas cumpridas (realizado menor que o planejado).",
		}},
		{"Pontos de Atenção", []string{
			"Aponte desvios ou gastos inesperados em relação ao planejado ou ao período anterior.",
			"Mencione metas estouradas.",
			"Se as principais categorias de despesa não tiverem metas, sugira criá-las.",
		}},
		{"Recomendações Práticas", []string{"Forneça 2 ou 3 sugestões objetivas e acionáveis."}},
	}
}
