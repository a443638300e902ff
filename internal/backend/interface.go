package backend

import (
	"context"

	"finboard/internal/dashboard"
	"finboard/internal/sheets"
)

// BackendType selects where workspaces are persisted.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) String() string { return string(t) }

// IsValid reports whether t is a known backend type.
func (t BackendType) IsValid() bool {
	return t == MemoryBackend || t == SQLiteBackend
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult holds everything a binary needs to persist and export
// workspaces. Store is nil for the memory backend, where workspaces live
// only in the service. Ping is nil when there is nothing to check.
type BackendResult struct {
	Type    BackendType
	Store   dashboard.Store
	Ping    func(ctx context.Context) error
	Writer  sheets.ReportWriter
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
