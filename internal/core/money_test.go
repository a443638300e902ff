package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseCurrencyValue(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"R$ 1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1234.56", "1234.56"},
		{"25,00", "25"},
		{"-25,00", "-25"},
		{"R$-1.000,00", "-1000"},
		{"  12,5  ", "12.5"},
		{"1.234.567,89", "1234567.89"},
		{"1,234,567.89", "1234567.89"},
		{"12,50 D", "12.5"},
		{".5", "0.5"},
		{"7.", "7"},
		{"+3", "3"},
		{"abc", "0"},
		{"", "0"},
		{"R$", "0"},
		{"-", "0"},
	}
	for _, tc := range cases {
		got := ParseCurrencyValue(tc.in)
		want := decimal.RequireFromString(tc.out)
		if !got.Equal(want) {
			t.Fatalf("%q expected %s, got %s", tc.in, want, got)
		}
	}
}

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"0", "R$ 0,00"},
		{"5", "R$ 5,00"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.891", "R$ 1.234.567,89"},
		{"-12", "-R$ 12,00"},
		{"999", "R$ 999,00"},
	}
	for _, tc := range cases {
		if got := FormatBRL(decimal.RequireFromString(tc.in)); got != tc.out {
			t.Fatalf("%s expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := map[string]string{
		"20":    "+20.0%",
		"-40":   "-40.0%",
		"0":     "0.0%",
		"12.34": "+12.3%",
	}
	for in, want := range cases {
		if got := FormatPercent(decimal.RequireFromString(in)); got != want {
			t.Fatalf("%s expected %q, got %q", in, want, got)
		}
	}
}
