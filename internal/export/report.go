// Package export turns a dashboard view into a spreadsheet report: a
// consolidated sheet with totals and goals, and a transaction base.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/dashboard"
)

const (
	ConsolidatedSheet = "Dashboard Consolidado"
	BaseSheet         = "Base de Dados"
)

// Sheet is a named grid of cells. A cell holds a string, an int or a
// decimal.Decimal; an empty row is a blank separator line.
type Sheet struct {
	Name string
	Rows [][]any
}

// Report is what gets written to a spreadsheet or downloaded.
type Report struct {
	Title  string
	Sheets []Sheet
}

// Title returns the report name for kind.
func Title(kind core.Kind) string {
	if kind == core.KindAccount {
		return "Relatorio_Conta"
	}
	return "Relatorio_Cartao"
}

// BuildReport lays out the consolidated and base sheets for v.
func BuildReport(v dashboard.View) Report {
	return Report{
		Title:  Title(v.Kind),
		Sheets: []Sheet{consolidated(v), Base(v)},
	}
}

func consolidated(v dashboard.View) Sheet {
	rows := [][]any{{"Item", "Valor"}}
	switch {
	case v.Account != nil:
		a := v.Account
		rows = append(rows,
			[]any{"Receitas", a.Income},
			[]any{"Despesas", a.Expenses},
			[]any{"Saldo", a.Balance},
			[]any{"Nº de Transações", a.TotalCount},
		)
	case v.Summary != nil:
		s := v.Summary
		rows = append(rows,
			[]any{"Gasto Total", s.TotalExpenses},
			[]any{"Nº de Transações", s.TransactionCount},
			[]any{"Gasto Médio por Transação", s.AverageSpend},
		)
	}

	rows = append(rows, []any{}, []any{"Metas por Categoria"}, []any{"Categoria", "Planejado", "Realizado"})
	for _, g := range v.Goals {
		rows = append(rows, []any{g.Name, g.Planned, g.Realized})
	}
	return Sheet{Name: ConsolidatedSheet, Rows: rows}
}

// Base lists the view's transactions. Card purchases are written as
// negative values so the sheet reads as money leaving the account.
func Base(v dashboard.View) Sheet {
	rows := make([][]any, 0, len(v.Transactions)+1)
	rows = append(rows, []any{"Data", "Descrição", "Categoria", "Valor"})
	for _, t := range v.Transactions {
		amount := t.Amount
		if v.Kind == core.KindCard {
			amount = amount.Neg()
		}
		rows = append(rows, []any{t.Date.BR(), t.Description, t.Category, amount})
	}
	return Sheet{Name: BaseSheet, Rows: rows}
}

// FormatCell renders a cell for text outputs. Decimals keep two places.
func FormatCell(c any) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return v.StringFixed(2)
	default:
		return fmt.Sprint(v)
	}
}

// WriteCSV writes s as comma separated values.
func WriteCSV(w io.Writer, s Sheet) error {
	cw := csv.NewWriter(w)
	for _, row := range s.Rows {
		rec := make([]string, len(row))
		for i, c := range row {
			rec[i] = FormatCell(c)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", s.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
