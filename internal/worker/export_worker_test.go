package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/export"
	"finboard/internal/ingest"
	"finboard/internal/period"
	"finboard/internal/sheets/memory"
)

var now = time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)

type mapStore map[core.Kind]dashboard.Workspace

func (m mapStore) Load(_ context.Context, kind core.Kind) (dashboard.Workspace, bool, error) {
	w, ok := m[kind]
	return w, ok, nil
}

func (m mapStore) Save(_ context.Context, w dashboard.Workspace) error {
	m[w.Kind] = w
	return nil
}

func seeded(t *testing.T) mapStore {
	t.Helper()
	w, _ := dashboard.NewWorkspace(core.KindCard)
	rows := []ingest.Row{
		{Date: core.NewDate(2024, 3, 2), Description: "Carrefour", Amount: decimal.NewFromInt(300), Signature: "a"},
		{Date: core.NewDate(2024, 1, 9), Description: "Uber", Amount: decimal.NewFromInt(20), Signature: "b"},
	}
	ids := []string{"1", "2"}
	i := 0
	w, err := w.ApplyImport(rows, []string{"Mercado", "Uber"}, func() string { i++; return ids[i-1] }, now)
	if err != nil {
		t.Fatal(err)
	}
	return mapStore{core.KindCard: w}
}

func TestExportWritesFilteredView(t *testing.T) {
	var logs bytes.Buffer
	out := memory.New()
	w := NewExportWorker(StoreViews{Store: seeded(t), Now: func() time.Time { return now }}, out,
		slog.New(slog.NewTextHandler(&logs, nil)))

	msg := MessageFor(core.KindCard, dashboard.Query{Filter: period.Filter{Kind: period.Month}})
	ref, err := w.Export(context.Background(), msg)
	if err != nil {
		t.Fatal(err)
	}
	if ref != "mem:1" {
		t.Fatalf("unexpected ref %q", ref)
	}
	if !strings.Contains(logs.String(), "Report exported") || !strings.Contains(logs.String(), "ref=mem:1") {
		t.Fatalf("expected export log on the injected logger, got %q", logs.String())
	}
	rows, ok := out.Tab("Relatorio_Cartao - " + export.BaseSheet)
	if !ok || len(rows) != 2 || rows[1][1] != "Carrefour" {
		t.Fatalf("expected only the March purchase, got %v", rows)
	}
}

func TestExportEmptyWorkspace(t *testing.T) {
	out := memory.New()
	w := NewExportWorker(StoreViews{Store: mapStore{}}, out, nil)
	if err := w.HandleExportRequest(context.Background(), amqp.NewExportRequestMessage(core.KindAccount)); err != nil {
		t.Fatal(err)
	}
	rows, _ := out.Tab("Relatorio_Conta - " + export.BaseSheet)
	if len(rows) != 1 {
		t.Fatalf("expected only the header row, got %v", rows)
	}
}

func TestExportRejectsBadRequests(t *testing.T) {
	w := NewExportWorker(StoreViews{Store: mapStore{}}, memory.New(), nil)
	if _, err := w.Export(context.Background(), &amqp.ExportRequestMessage{Kind: "loan"}); !errors.Is(err, core.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	bad := amqp.NewExportRequestMessage(core.KindCard)
	bad.Period = "fortnight"
	if _, err := w.Export(context.Background(), bad); !errors.Is(err, period.ErrInvalidFilter) {
		t.Fatalf("expected ErrInvalidFilter, got %v", err)
	}
}

func TestMessageRoundTrip(t *testing.T) {
	start := core.NewDate(2024, 1, 1)
	end := core.NewDate(2024, 1, 31)
	q := dashboard.Query{Filter: period.Filter{Kind: period.Custom, Start: &start, End: &end}}
	q.AdHoc.Text = "uber"
	q.AdHoc.Category = "Uber"

	msg := MessageFor(core.KindCard, q)
	if msg.Kind != "card" || msg.Period != "custom" || msg.End != "2024-01-31" {
		t.Fatalf("unexpected message %+v", msg)
	}
	got, err := QueryOf(msg)
	if err != nil {
		t.Fatal(err)
	}
	if got.Key(now) != q.Key(now) {
		t.Fatalf("expected %q, got %q", q.Key(now), got.Key(now))
	}
}
