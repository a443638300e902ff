package backend

import (
	"context"
	"fmt"
	"log/slog"

	applog "finboard/internal/log"
	"finboard/internal/sheets"
	gsheet "finboard/internal/sheets/google"
	"finboard/internal/sheets/memory"
	"finboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
	// newSheets is swapped in tests to avoid reaching Google.
	newSheets func(ctx context.Context, s gsheet.Settings) (sheets.ReportWriter, error)
}

func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentStorage).Logger,
		newSheets: func(ctx context.Context, s gsheet.Settings) (sheets.ReportWriter, error) {
			return gsheet.New(ctx, s)
		},
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	writer, err := f.createWriter(ctx, config.Sheets)
	if err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(config, writer)
	default:
		f.logger.Info("Initialized memory backend")
		return &BackendResult{Type: MemoryBackend, Writer: writer}, nil
	}
}

func (f *DefaultFactory) createSQLiteBackend(config Config, writer sheets.ReportWriter) (*BackendResult, error) {
	store, err := storage.NewWorkspaceStore(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{
		Type:    SQLiteBackend,
		Store:   store,
		Ping:    store.Ping,
		Writer:  writer,
		Cleanup: store.Close,
	}, nil
}

func (f *DefaultFactory) createWriter(ctx context.Context, s gsheet.Settings) (sheets.ReportWriter, error) {
	if s.SpreadsheetID == "" {
		f.logger.Info("Google Sheets disabled, reports are kept in memory")
		return memory.New(), nil
	}
	w, err := f.newSheets(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets writer", "spreadsheet_id", s.SpreadsheetID)
	return w, nil
}
