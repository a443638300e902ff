// Package dashboard holds the per-kind workspace state and the operations
// users perform on it: importing statements, editing categories, deleting
// transactions, setting goals, resetting, and reading derived views.
//
// A Workspace is a value. Every transition returns a new Workspace and
// leaves the receiver untouched, so a snapshot taken for a read stays
// consistent while later transitions are applied.
package dashboard

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	"finboard/internal/ingest"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrLabelsMismatch      = errors.New("one category label is required per row")
)

// Workspace is everything known about one statement kind.
type Workspace struct {
	Kind         core.Kind           `json:"kind"`
	Transactions []core.Transaction  `json:"transactions"`
	Signatures   ingest.SignatureSet `json:"-"`
	Goals        core.Goals          `json:"goals"`
	Categories   []string            `json:"categories"`
	Analysis     Analysis            `json:"-"`
	Version      int64               `json:"version"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Analysis is the last narrative generated, tied to the query and workspace
// version it was generated for.
type Analysis struct {
	Key     string `json:"key"`
	Version int64  `json:"version"`
	Text    string `json:"text"`
}

// NewWorkspace returns an empty workspace with the kind's vocabulary as its
// category list.
func NewWorkspace(kind core.Kind) (Workspace, error) {
	v, err := core.VocabularyFor(kind)
	if err != nil {
		return Workspace{}, err
	}
	return Workspace{
		Kind:       kind,
		Signatures: ingest.NewSignatureSet(),
		Goals:      core.Goals{},
		Categories: v.Labels,
	}, nil
}

func (w Workspace) touched(now time.Time) Workspace {
	w.Version++
	w.UpdatedAt = now.UTC()
	return w
}

// ApplyImport appends one transaction per row, labelled by the matching
// entry of labels, and records the rows' signatures in the same step. A row
// that would produce an invalid transaction rejects the whole batch.
func (w Workspace) ApplyImport(rows []ingest.Row, labels []string, newID func() string, now time.Time) (Workspace, error) {
	if len(rows) != len(labels) {
		return w, ErrLabelsMismatch
	}
	if len(rows) == 0 {
		return w, nil
	}
	txs := slices.Grow(slices.Clone(w.Transactions), len(rows))
	sigs := make([]string, len(rows))
	for i, r := range rows {
		tx := core.Transaction{
			ID:          newID(),
			Date:        r.Date,
			Description: r.Description,
			Amount:      r.Amount,
			Category:    labels[i],
		}
		if err := tx.Validate(); err != nil {
			return w, fmt.Errorf("row %d: %w", i+1, err)
		}
		txs = append(txs, tx)
		sigs[i] = r.Signature
	}
	w.Transactions = txs
	w.Signatures = w.Signatures.With(sigs...)
	return w.touched(now), nil
}

func (w Workspace) find(id string) int {
	return slices.IndexFunc(w.Transactions, func(t core.Transaction) bool { return t.ID == id })
}

// Transaction returns the transaction with id.
func (w Workspace) Transaction(id string) (core.Transaction, bool) {
	if i := w.find(id); i >= 0 {
		return w.Transactions[i], true
	}
	return core.Transaction{}, false
}

// WithCategory relabels a transaction. A label not yet in the category list
// is added to it and the list is kept sorted from then on.
func (w Workspace) WithCategory(id, category string, now time.Time) (Workspace, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return w, core.ErrEmptyCategory
	}
	i := w.find(id)
	if i < 0 {
		return w, ErrTransactionNotFound
	}
	txs := slices.Clone(w.Transactions)
	txs[i].Category = category
	w.Transactions = txs

	if !slices.Contains(w.Categories, category) {
		cats := append(slices.Clone(w.Categories), category)
		slices.Sort(cats)
		w.Categories = cats
	}
	return w.touched(now), nil
}

// Without removes a transaction. Its signature stays recorded, so the same
// row is still treated as a duplicate by later imports.
func (w Workspace) Without(id string, now time.Time) (Workspace, error) {
	i := w.find(id)
	if i < 0 {
		return w, ErrTransactionNotFound
	}
	w.Transactions = slices.Delete(slices.Clone(w.Transactions), i, i+1)
	return w.touched(now), nil
}

// WithGoal sets the planned amount for category.
func (w Workspace) WithGoal(category string, planned decimal.Decimal, now time.Time) (Workspace, error) {
	goals, err := w.Goals.Set(strings.TrimSpace(category), planned)
	if err != nil {
		return w, err
	}
	w.Goals = goals
	return w.touched(now), nil
}

// WithAnalysis records a generated narrative.
func (w Workspace) WithAnalysis(key, text string) Workspace {
	w.Analysis = Analysis{Key: key, Version: w.Version, Text: text}
	return w
}

// CachedAnalysis returns the stored narrative if it was generated for key
// against the current data.
func (w Workspace) CachedAnalysis(key string) (string, bool) {
	if w.Analysis.Text == "" || w.Analysis.Key != key || w.Analysis.Version != w.Version {
		return "", false
	}
	return w.Analysis.Text, true
}

// Reset drops transactions, signatures, goals and custom categories.
func (w Workspace) Reset(now time.Time) Workspace {
	fresh, err := NewWorkspace(w.Kind)
	if err != nil {
		return w
	}
	fresh.Version = w.Version
	return fresh.touched(now)
}
