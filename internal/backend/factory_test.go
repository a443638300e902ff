package backend

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/dashboard"
	applog "finboard/internal/log"
	"finboard/internal/sheets"
	gsheet "finboard/internal/sheets/google"
	"finboard/internal/sheets/memory"
)

func quietFactory() *DefaultFactory {
	return NewFactory(applog.New(applog.Config{Output: io.Discard}))
}

func TestCreateMemoryBackend(t *testing.T) {
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	if res.Store != nil || res.Ping != nil {
		t.Fatalf("memory backend must not persist: %+v", res)
	}
	if _, ok := res.Writer.(*memory.Store); !ok {
		t.Fatalf("expected in-memory writer, got %T", res.Writer)
	}
	if err := res.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "finboard.db")
	res, err := quietFactory().CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatal(err)
	}
	defer res.Close()

	if err := res.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	ws, _ := dashboard.NewWorkspace(core.KindCard)
	if err := res.Store.Save(context.Background(), ws); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok, err := res.Store.Load(context.Background(), core.KindCard); err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
}

func TestCreateBackendSheetsWriter(t *testing.T) {
	f := quietFactory()
	want := memory.New()
	var got gsheet.Settings
	f.newSheets = func(_ context.Context, s gsheet.Settings) (sheets.ReportWriter, error) {
		got = s
		return want, nil
	}
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, Sheets: gsheet.Settings{SpreadsheetID: "abc", CredentialsJSON: "{}"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.Writer != sheets.ReportWriter(want) || got.SpreadsheetID != "abc" {
		t.Fatalf("sheets writer not used: %T %+v", res.Writer, got)
	}

	f.newSheets = func(context.Context, gsheet.Settings) (sheets.ReportWriter, error) {
		return nil, errors.New("bad credentials")
	}
	if _, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, Sheets: gsheet.Settings{SpreadsheetID: "abc"}}); err == nil {
		t.Fatal("expected sheets initialization error")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	c, err := FromAppConfig(&config.Config{
		DataBackend:              "sqlite",
		SQLiteDBPath:             "/tmp/x.db",
		GoogleSpreadsheetID:      "sheet",
		GoogleServiceAccountFile: "/etc/sa.json",
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Type != SQLiteBackend || c.SQLiteDBPath != "/tmp/x.db" || c.Sheets.SpreadsheetID != "sheet" || c.Sheets.CredentialsFile != "/etc/sa.json" {
		t.Fatalf("unexpected config %+v", c)
	}
}
