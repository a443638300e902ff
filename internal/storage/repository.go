// Package storage persists dashboard workspaces in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/dashboard"
	"finboard/internal/ingest"

	_ "modernc.org/sqlite"
)

// WorkspaceStore implements dashboard.Store on a SQLite database.
type WorkspaceStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ dashboard.Store = (*WorkspaceStore)(nil)

func NewWorkspaceStore(dbPath string, logger *slog.Logger) (*WorkspaceStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	version, err := Migrate(dbPath)
	if err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("SQLite store ready", "path", dbPath, "schema_version", version)
	return &WorkspaceStore{db: db, logger: logger}, nil
}

func (s *WorkspaceStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *WorkspaceStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save replaces everything stored for w.Kind with w in one transaction.
func (s *WorkspaceStore) Save(ctx context.Context, w dashboard.Workspace) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	kind := string(w.Kind)
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO workspaces (kind, version, updated_at, analysis_key, analysis_version, analysis_text)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			version = excluded.version,
			updated_at = excluded.updated_at,
			analysis_key = excluded.analysis_key,
			analysis_version = excluded.analysis_version,
			analysis_text = excluded.analysis_text`,
		kind, w.Version, formatTime(w.UpdatedAt), w.Analysis.Key, w.Analysis.Version, w.Analysis.Text,
	); err != nil {
		return fmt.Errorf("upsert workspace: %w", err)
	}

	for _, table := range []string{"transactions", "signatures", "goals", "categories"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE kind = ?", kind); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err = insertEach(ctx, tx,
		`INSERT INTO transactions (id, kind, position, date, description, amount, category) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(w.Transactions), func(i int) []any {
			t := w.Transactions[i]
			return []any{t.ID, kind, i, t.Date.ISO(), t.Description, t.Amount.String(), t.Category}
		}); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}

	sigs := w.Signatures.Slice()
	if err = insertEach(ctx, tx,
		`INSERT INTO signatures (kind, signature) VALUES (?, ?)`,
		len(sigs), func(i int) []any { return []any{kind, sigs[i]} }); err != nil {
		return fmt.Errorf("insert signatures: %w", err)
	}

	cats := make([]string, 0, len(w.Goals))
	for c := range w.Goals {
		cats = append(cats, c)
	}
	if err = insertEach(ctx, tx,
		`INSERT INTO goals (kind, category, planned) VALUES (?, ?, ?)`,
		len(cats), func(i int) []any { return []any{kind, cats[i], w.Goals[cats[i]].String()} }); err != nil {
		return fmt.Errorf("insert goals: %w", err)
	}

	if err = insertEach(ctx, tx,
		`INSERT INTO categories (kind, position, name) VALUES (?, ?, ?)`,
		len(w.Categories), func(i int) []any { return []any{kind, i, w.Categories[i]} }); err != nil {
		return fmt.Errorf("insert categories: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.DebugContext(ctx, "Workspace saved",
		"kind", kind,
		"version", w.Version,
		"transactions", len(w.Transactions),
		"signatures", len(sigs))
	return nil
}

func insertEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the workspace of kind. The boolean is false when the kind was
// never saved.
func (s *WorkspaceStore) Load(ctx context.Context, kind core.Kind) (dashboard.Workspace, bool, error) {
	w, err := dashboard.NewWorkspace(kind)
	if err != nil {
		return dashboard.Workspace{}, false, err
	}

	var updated string
	err = s.db.QueryRowContext(ctx, `
		SELECT version, updated_at, analysis_key, analysis_version, analysis_text
		FROM workspaces WHERE kind = ?`, string(kind),
	).Scan(&w.Version, &updated, &w.Analysis.Key, &w.Analysis.Version, &w.Analysis.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return w, false, nil
	}
	if err != nil {
		return dashboard.Workspace{}, false, fmt.Errorf("load workspace: %w", err)
	}
	w.UpdatedAt = parseTime(updated)

	if w.Transactions, err = s.loadTransactions(ctx, kind); err != nil {
		return dashboard.Workspace{}, false, err
	}

	sigs, err := queryStrings(ctx, s.db, `SELECT signature FROM signatures WHERE kind = ?`, kind)
	if err != nil {
		return dashboard.Workspace{}, false, fmt.Errorf("load signatures: %w", err)
	}
	w.Signatures = ingest.NewSignatureSet(sigs...)

	if w.Goals, err = s.loadGoals(ctx, kind); err != nil {
		return dashboard.Workspace{}, false, err
	}

	cats, err := queryStrings(ctx, s.db, `SELECT name FROM categories WHERE kind = ? ORDER BY position`, kind)
	if err != nil {
		return dashboard.Workspace{}, false, fmt.Errorf("load categories: %w", err)
	}
	if len(cats) > 0 {
		w.Categories = cats
	}
	return w, true, nil
}

func (s *WorkspaceStore) loadTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, category
		FROM transactions WHERE kind = ? ORDER BY position`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var date, amount string
		if err := rows.Scan(&t.ID, &date, &t.Description, &amount, &t.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		d, ok := core.ParseDate(date)
		if !ok {
			return nil, fmt.Errorf("transaction %s: %w: %q", t.ID, core.ErrInvalidDate, date)
		}
		t.Date = d
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("transaction %s: amount %q: %w", t.ID, amount, err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (s *WorkspaceStore) loadGoals(ctx context.Context, kind core.Kind) (core.Goals, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT category, planned FROM goals WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}
	defer rows.Close()

	goals := core.Goals{}
	for rows.Next() {
		var cat, planned string
		if err := rows.Scan(&cat, &planned); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		v, err := decimal.NewFromString(planned)
		if err != nil {
			return nil, fmt.Errorf("goal %s: planned %q: %w", cat, planned, err)
		}
		goals[cat] = v
	}
	return goals, rows.Err()
}

func queryStrings(ctx context.Context, db *sql.DB, query string, kind core.Kind) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
