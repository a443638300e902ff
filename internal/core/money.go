// Package core provides the domain types of the dashboard together with
// the lenient parsers for statement cells.
//
// This file contains the monetary helpers: parsing locale-formatted amounts
// into decimals and formatting decimals as Brazilian reais.
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	currencySymbols = strings.NewReplacer("R$", "", "US$", "", "$", "", "€", "", "£", "")

	// numericPrefix matches the longest leading number the way a lenient
	// float parser would: trailing garbage after the number is ignored.
	numericPrefix = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// ParseCurrencyValue converts a statement amount cell into a decimal.
//
// Currency symbols and whitespace are removed first. When both '.' and ','
// appear, the rightmost one is the decimal separator and the other one is a
// thousands separator. When only ',' appears it is the decimal separator.
// Anything else is parsed as-is. Unparseable input yields zero.
//
// Examples:
//
//	ParseCurrencyValue("R$ 1.234,56") -> 1234.56
//	ParseCurrencyValue("1,234.56")    -> 1234.56
//	ParseCurrencyValue("-25,00")      -> -25
//	ParseCurrencyValue("abc")         -> 0
func ParseCurrencyValue(raw string) decimal.Decimal {
	s := currencySymbols.Replace(raw)
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	m := numericPrefix.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	m = strings.Replace(m, ".e", "e", 1)
	m = strings.Replace(m, ".E", "E", 1)
	m = strings.TrimSuffix(m, ".")
	m = strings.TrimPrefix(m, "+")
	if strings.HasPrefix(m, ".") || strings.HasPrefix(m, "-.") {
		m = strings.Replace(m, ".", "0.", 1)
	}

	d, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatBRL renders an amount as Brazilian reais, e.g. "R$ 1.234,56" or
// "-R$ 12,00".
func FormatBRL(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + "R$ " + b.String() + "," + fracPart
}

// FormatPercent renders a percentage with one decimal place and an explicit
// sign for positive values, e.g. "+20.0%" or "-40.0%".
func FormatPercent(p decimal.Decimal) string {
	s := p.StringFixed(1)
	if p.IsPositive() {
		s = "+" + s
	}
	return s + "%"
}
