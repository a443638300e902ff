package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"finboard/internal/export"
	ports "finboard/internal/sheets"
)

// Store keeps written reports in memory, keyed by tab name like the Google
// adapter. It backs development runs without spreadsheet credentials.
type Store struct {
	mu     sync.Mutex
	tabs   map[string][][]any
	writes int
}

var _ ports.ReportWriter = (*Store)(nil)

func New() *Store {
	return &Store{tabs: map[string][][]any{}}
}

// WriteReport stores a copy of every sheet and returns a synthetic reference.
func (s *Store) WriteReport(_ context.Context, r export.Report) (string, error) {
	if len(r.Sheets) == 0 {
		return "", errors.New("report has no sheets")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range r.Sheets {
		rows := make([][]any, len(sh.Rows))
		for i, row := range sh.Rows {
			rows[i] = slices.Clone(row)
		}
		s.tabs[ports.TabName(r, sh)] = rows
	}
	s.writes++
	return fmt.Sprintf("mem:%d", s.writes), nil
}

// Tab returns the rows last written to name.
func (s *Store) Tab(name string) ([][]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, ok := s.tabs[name]
	return rows, ok
}

// Tabs lists the tab names written so far.
func (s *Store) Tabs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.tabs))
	for name := range s.tabs {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
