package storage

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/ingest"
)

func newTestStore(t *testing.T) *WorkspaceStore {
	t.Helper()
	s, err := NewWorkspaceStore(filepath.Join(t.TempDir(), "data", "finboard.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleWorkspace(t *testing.T) dashboard.Workspace {
	t.Helper()
	now := time.Date(2024, 3, 20, 10, 30, 0, 0, time.UTC)
	w, err := dashboard.NewWorkspace(core.KindCard)
	if err != nil {
		t.Fatal(err)
	}
	rows := []ingest.Row{
		{Date: core.NewDate(2024, 3, 2), Description: "Carrefour", Amount: decimal.RequireFromString("300.45"), Signature: "02/03/2024|Carrefour|300,45"},
		{Date: core.NewDate(2024, 3, 5), Description: "Uber", Amount: decimal.RequireFromString("-25"), Signature: "05/03/2024|Uber|-25"},
	}
	ids := []string{"a", "b"}
	n := 0
	w, err = w.ApplyImport(rows, []string{"Mercado", "Uber"}, func() string { n++; return ids[n-1] }, now)
	if err != nil {
		t.Fatal(err)
	}
	if w, err = w.WithCategory("b", "Corridas", now); err != nil {
		t.Fatal(err)
	}
	if w, err = w.WithGoal("Mercado", decimal.NewFromInt(500), now); err != nil {
		t.Fatal(err)
	}
	return w.WithAnalysis("period=month", "### 1. Resumo Geral")
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.Load(context.Background(), core.KindAccount)
	if err != nil || ok {
		t.Fatalf("expected nothing stored, got ok=%v err=%v", ok, err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w := sampleWorkspace(t)

	if err := s.Save(ctx, w); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, ok, err := s.Load(ctx, core.KindCard)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}

	if got.Version != w.Version || !got.UpdatedAt.Equal(w.UpdatedAt) {
		t.Fatalf("expected version %d at %v, got %d at %v", w.Version, w.UpdatedAt, got.Version, got.UpdatedAt)
	}
	if len(got.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(got.Transactions))
	}
	first, second := got.Transactions[0], got.Transactions[1]
	if first.ID != "a" || first.Date.ISO() != "2024-03-02" || !first.Amount.Equal(decimal.RequireFromString("300.45")) {
		t.Fatalf("unexpected first transaction %+v", first)
	}
	if second.Category != "Corridas" || !second.Amount.Equal(decimal.NewFromInt(-25)) {
		t.Fatalf("unexpected second transaction %+v", second)
	}
	if !got.Signatures.Has("05/03/2024|Uber|-25") || len(got.Signatures) != 2 {
		t.Fatalf("signatures not restored: %v", got.Signatures.Slice())
	}
	if !got.Goals.Planned("Mercado").Equal(decimal.NewFromInt(500)) {
		t.Fatalf("goal not restored: %v", got.Goals)
	}
	if len(got.Categories) != len(w.Categories) || got.Categories[0] != w.Categories[0] {
		t.Fatalf("category order not restored: %v", got.Categories)
	}
	if text, ok := got.CachedAnalysis("period=month"); !ok || text != "### 1. Resumo Geral" {
		t.Fatalf("analysis not restored")
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	w := sampleWorkspace(t)
	if err := s.Save(ctx, w); err != nil {
		t.Fatal(err)
	}

	reset := w.Reset(time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC))
	if err := s.Save(ctx, reset); err != nil {
		t.Fatal(err)
	}
	got, _, err := s.Load(ctx, core.KindCard)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Transactions) != 0 || len(got.Signatures) != 0 || len(got.Goals) != 0 {
		t.Fatalf("reset state not persisted: %+v", got)
	}
	if len(got.Categories) != 22 {
		t.Fatalf("expected the card vocabulary, got %d categories", len(got.Categories))
	}

	other, ok, err := s.Load(ctx, core.KindAccount)
	if err != nil || ok || len(other.Transactions) != 0 {
		t.Fatalf("kinds must be stored separately")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	first, err := Migrate(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Migrate(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != 1 || second != first {
		t.Fatalf("expected schema version 1 twice, got %d and %d", first, second)
	}
}

func TestStoreLogsToInjectedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := NewWorkspaceStore(filepath.Join(t.TempDir(), "finboard.db"), logger)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Save(context.Background(), sampleWorkspace(t)); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"SQLite store ready", "Workspace saved"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in %q", want, buf.String())
		}
	}
}
