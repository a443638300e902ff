//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/export"
)

// Integration tests require a real spreadsheet shared with a service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_WriteReport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, err := NewFromEnv(ctx)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	r := export.Report{
		Title: "Integration_Test",
		Sheets: []export.Sheet{{
			Name: export.BaseSheet,
			Rows: [][]any{
				{"Data", "Descrição", "Categoria", "Valor"},
				{time.Now().Format("02/01/2006"), "Integration test", "Miscellaneous", decimal.RequireFromString("-12.34")},
			},
		}},
	}
	ref, err := client.WriteReport(ctx, r)
	if err != nil {
		t.Fatalf("Failed to write report: %v", err)
	}
	t.Logf("Report written to %s", ref)
}
