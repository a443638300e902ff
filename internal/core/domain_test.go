package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want Date
		ok   bool
	}{
		{"2024-03-05", NewDate(2024, 3, 5), true},
		{"5/3/2024", NewDate(2024, 3, 5), true},
		{"05/03/2024", NewDate(2024, 3, 5), true},
		{" 29/02/2024 ", NewDate(2024, 2, 29), true},
		{"13/13/2024", Date{}, false},
		{"31/02/2024", Date{}, false},
		{"29/02/2023", Date{}, false},
		{"2024-02-30", Date{}, false},
		{"2024-3-5", Date{}, false},
		{"03-05-2024", Date{}, false},
		{"5/3/24", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseDate(tc.in)
		if ok != tc.ok {
			t.Fatalf("%q expected ok=%v, got %v", tc.in, tc.ok, ok)
		}
		if ok && !got.Equal(tc.want.Time) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.want, got)
		}
		if ok && got.Location() != time.UTC {
			t.Fatalf("%q expected UTC, got %v", tc.in, got.Location())
		}
	}
}

func TestParseDateFormatsAgree(t *testing.T) {
	a, _ := ParseDate("2024-03-05")
	b, _ := ParseDate("5/3/2024")
	if !a.Equal(b.Time) {
		t.Fatalf("formats disagree: %v vs %v", a, b)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 1, 9))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-01-09"` {
		t.Fatalf("unexpected json %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"9/1/2024"`), &d); err != nil {
		t.Fatal(err)
	}
	if d.BR() != "09/01/2024" {
		t.Fatalf("unexpected date %s", d.BR())
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &d); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"card": KindCard, " Account ": KindAccount} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("%q expected %s, got %s (err=%v)", in, want, got, err)
		}
	}
	if _, err := ParseKind("savings"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: "1", Date: NewDate(2025, 1, 1), Description: "ok", Category: "Mercado"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Description: "a", Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: " ", Category: "c"},
		{Date: NewDate(2025, 1, 1), Description: "a"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestGoalsSet(t *testing.T) {
	var g Goals
	g2, err := g.Set("Mercado", decimal.NewFromInt(500))
	if err != nil {
		t.Fatal(err)
	}
	if len(g) != 0 {
		t.Fatalf("original goals mutated")
	}
	if !g2.Planned("Mercado").Equal(decimal.NewFromInt(500)) {
		t.Fatalf("unexpected planned %s", g2.Planned("Mercado"))
	}
	if !g2.Planned("Lazer").IsZero() {
		t.Fatalf("missing goal should be zero")
	}
	if _, err := g2.Set("Mercado", decimal.NewFromInt(-1)); !errors.Is(err, ErrNegativeGoal) {
		t.Fatalf("expected ErrNegativeGoal, got %v", err)
	}
	if _, err := g2.Set("", decimal.Zero); !errors.Is(err, ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestVocabularyCoerce(t *testing.T) {
	v, err := VocabularyFor(KindCard)
	if err != nil {
		t.Fatal(err)
	}
	cases := map[string]string{
		"Mercado":   "Mercado",
		"mercado":   "Mercado",
		" Uber ":    "Uber",
		"Groceries": "Miscellaneous",
		"":          "Miscellaneous",
	}
	for in, want := range cases {
		if got := v.Coerce(in); got != want {
			t.Fatalf("%q expected %q, got %q", in, want, got)
		}
	}

	acc, _ := VocabularyFor(KindAccount)
	if acc.Default != "Outras Despesas" {
		t.Fatalf("unexpected account default %q", acc.Default)
	}
	fill := acc.Fill(3)
	if len(fill) != 3 || fill[2] != "Outras Despesas" {
		t.Fatalf("unexpected fill %v", fill)
	}

	v.Labels[0] = "changed"
	again, _ := VocabularyFor(KindCard)
	if again.Labels[0] != "Restaurante" {
		t.Fatalf("vocabulary table was mutated through a copy")
	}
}
