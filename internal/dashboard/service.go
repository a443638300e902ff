package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"finboard/internal/categorize"
	"finboard/internal/core"
	"finboard/internal/ingest"
	applog "finboard/internal/log"
)

// Store persists workspace snapshots. Load reports false when nothing was
// saved for kind yet.
type Store interface {
	Load(ctx context.Context, kind core.Kind) (Workspace, bool, error)
	Save(ctx context.Context, w Workspace) error
}

// Options configures a Service. Categorizer and Narrator are required;
// everything else has a default.
type Options struct {
	Categorizer categorize.Categorizer
	Narrator    categorize.Narrator
	Store       Store
	Aliases     ingest.HeaderAliases
	Now         func() time.Time
	NewID       func() string
	Logger      *applog.Logger
}

// ImportReport summarizes one import call.
type ImportReport struct {
	Files       []ingest.FileReport `json:"files"`
	Read        int                 `json:"read"`
	Accepted    int                 `json:"accepted"`
	Incomplete  int                 `json:"incomplete"`
	InvalidDate int                 `json:"invalid_date"`
	Duplicates  int                 `json:"duplicates"`
	Warnings    []string            `json:"warnings,omitempty"`
}

type slot struct {
	importMu sync.Mutex // serializes imports end to end
	mu       sync.RWMutex
	ws       Workspace
}

// Service owns the account and card workspaces.
type Service struct {
	slots       map[core.Kind]*slot
	categorizer categorize.Categorizer
	narrator    categorize.Narrator
	store       Store
	aliases     ingest.HeaderAliases
	now         func() time.Time
	newID       func() string
	logger      *applog.Logger
}

func NewService(opts Options) *Service {
	s := &Service{
		slots:       make(map[core.Kind]*slot, 2),
		categorizer: opts.Categorizer,
		narrator:    opts.Narrator,
		store:       opts.Store,
		aliases:     opts.Aliases,
		now:         opts.Now,
		newID:       opts.NewID,
		logger:      opts.Logger,
	}
	if s.aliases == nil {
		s.aliases = ingest.DefaultAliases
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = applog.FromContext(context.Background())
	}
	s.logger = s.logger.WithComponent(applog.ComponentDashboard)
	for _, k := range []core.Kind{core.KindAccount, core.KindCard} {
		ws, _ := NewWorkspace(k)
		s.slots[k] = &slot{ws: ws}
	}
	return s
}

// Restore loads persisted workspaces, if a store is configured.
func (s *Service) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	for kind, sl := range s.slots {
		ws, ok, err := s.store.Load(ctx, kind)
		if err != nil {
			return fmt.Errorf("restore %s workspace: %w", kind, err)
		}
		if !ok {
			continue
		}
		sl.mu.Lock()
		sl.ws = ws
		sl.mu.Unlock()
		s.logger.InfoContext(ctx, "Workspace restored", "kind", kind, "transactions", len(ws.Transactions), "version", ws.Version)
	}
	return nil
}

func (s *Service) slot(kind core.Kind) (*slot, error) {
	sl, ok := s.slots[kind]
	if !ok {
		return nil, core.ErrUnknownKind
	}
	return sl, nil
}

func (sl *slot) snapshot() Workspace {
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.ws
}

// commit applies fn to the current workspace, persists the result and only
// then makes it current.
func (s *Service) commit(ctx context.Context, sl *slot, fn func(Workspace) (Workspace, error)) (Workspace, error) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	next, err := fn(sl.ws)
	if err != nil {
		return sl.ws, err
	}
	if s.store != nil {
		if err := s.store.Save(ctx, next); err != nil {
			return sl.ws, fmt.Errorf("save workspace: %w", err)
		}
	}
	sl.ws = next
	return next, nil
}

// Workspace returns a snapshot of the workspace of kind.
func (s *Service) Workspace(kind core.Kind) (Workspace, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return Workspace{}, err
	}
	return sl.snapshot(), nil
}

// Import reads every source, drops incomplete and already seen rows,
// categorizes the remainder in a single call and appends them.
func (s *Service) Import(ctx context.Context, kind core.Kind, sources []ingest.Source) (ImportReport, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return ImportReport{}, err
	}
	sl.importMu.Lock()
	defer sl.importMu.Unlock()

	raw, files, err := ingest.ReadFiles(ctx, sources, s.aliases)
	if err != nil {
		return ImportReport{}, fmt.Errorf("read statements: %w", err)
	}

	res := ingest.Normalize(raw, sl.snapshot().Signatures)
	report := ImportReport{
		Files:       files,
		Read:        len(raw),
		Accepted:    len(res.Rows),
		Incomplete:  res.Incomplete,
		InvalidDate: res.InvalidDate,
		Duplicates:  res.Duplicates,
	}
	for _, f := range files {
		if f.Incomplete > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("some rows in %q were ignored: date, description and amount are required", f.Name))
		}
	}
	if res.InvalidDate > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d rows were ignored because their date could not be parsed", res.InvalidDate))
	}
	if len(res.Rows) == 0 {
		s.logger.InfoContext(ctx, "Import added nothing", "kind", kind, "read", report.Read, "duplicates", report.Duplicates)
		return report, nil
	}

	descriptions := make([]string, len(res.Rows))
	for i, r := range res.Rows {
		descriptions[i] = r.Description
	}
	start := time.Now()
	labels := s.labels(ctx, kind, descriptions)
	s.logger.InfoContext(ctx, "Descriptions categorized", "kind", kind, "count", len(labels), "duration_ms", time.Since(start).Milliseconds())

	if _, err := s.commit(ctx, sl, func(w Workspace) (Workspace, error) {
		return w.ApplyImport(res.Rows, labels, s.newID, s.now())
	}); err != nil {
		return ImportReport{}, err
	}

	applog.NewStructuredLogger(s.logger).
		LogImport(ctx, string(kind), len(files), report.Read, report.Accepted, report.Duplicates, report.Incomplete)
	return report, nil
}

// labels calls the categorizer and enforces its contract: one label per
// description, each inside the vocabulary.
func (s *Service) labels(ctx context.Context, kind core.Kind, descriptions []string) []string {
	v, _ := core.VocabularyFor(kind)
	got := s.categorizer.Categorize(ctx, kind, descriptions)
	if len(got) != len(descriptions) {
		s.logger.WarnContext(ctx, "Categorizer returned wrong number of labels", "kind", kind, "expected", len(descriptions), "got", len(got))
		return v.Fill(len(descriptions))
	}
	out := make([]string, len(got))
	for i, l := range got {
		out[i] = v.Coerce(l)
	}
	return out
}

// Dashboard builds the view of kind for q.
func (s *Service) Dashboard(_ context.Context, kind core.Kind, q Query) (View, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return View{}, err
	}
	return BuildView(sl.snapshot(), q, s.now()), nil
}

// UpdateCategory relabels a transaction and returns it.
func (s *Service) UpdateCategory(ctx context.Context, kind core.Kind, id, category string) (core.Transaction, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return core.Transaction{}, err
	}
	ws, err := s.commit(ctx, sl, func(w Workspace) (Workspace, error) {
		return w.WithCategory(id, category, s.now())
	})
	if err != nil {
		return core.Transaction{}, err
	}
	tx, _ := ws.Transaction(id)
	s.logger.InfoContext(ctx, "Category updated", "kind", kind, "id", id, "category", tx.Category)
	return tx, nil
}

// DeleteTransaction removes a transaction.
func (s *Service) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	sl, err := s.slot(kind)
	if err != nil {
		return err
	}
	_, err = s.commit(ctx, sl, func(w Workspace) (Workspace, error) {
		return w.Without(id, s.now())
	})
	if err == nil {
		s.logger.InfoContext(ctx, "Transaction deleted", "kind", kind, "id", id)
	}
	return err
}

// SetGoal sets the planned amount of a category and returns all goals.
func (s *Service) SetGoal(ctx context.Context, kind core.Kind, category string, planned decimal.Decimal) (core.Goals, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return nil, err
	}
	ws, err := s.commit(ctx, sl, func(w Workspace) (Workspace, error) {
		return w.WithGoal(category, planned, s.now())
	})
	if err != nil {
		return nil, err
	}
	return ws.Goals, nil
}

// Analyze returns the narrative for q, generating it when the stored one
// belongs to another query or older data.
func (s *Service) Analyze(ctx context.Context, kind core.Kind, q Query) (string, error) {
	sl, err := s.slot(kind)
	if err != nil {
		return "", err
	}
	now := s.now()
	key := q.Key(now)
	ws := sl.snapshot()
	if text, ok := ws.CachedAnalysis(key); ok {
		return text, nil
	}

	view := BuildView(ws, q, now)
	text := s.narrator.GenerateAnalysis(ctx, view.AnalysisInput())
	if text == categorize.FailureMessage {
		return text, nil
	}

	_, err = s.commit(ctx, sl, func(w Workspace) (Workspace, error) {
		if w.Version != ws.Version {
			// Data changed while the narrative was generated.
			return w, nil
		}
		return w.WithAnalysis(key, text), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Analysis not stored", "kind", kind, "error", err)
	}
	return text, nil
}

// Reset clears the workspace of kind.
func (s *Service) Reset(ctx context.Context, kind core.Kind) error {
	sl, err := s.slot(kind)
	if err != nil {
		return err
	}
	_, err = s.commit(ctx, sl, func(w Workspace) (Workspace, error) {
		return w.Reset(s.now()), nil
	})
	if err == nil {
		s.logger.InfoContext(ctx, "Workspace reset", "kind", kind)
	}
	return err
}
