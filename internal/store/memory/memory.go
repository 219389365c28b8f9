// Package memory is an in-process storage backend. Data is lost when the
// process exits.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/accounts"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/ingest"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store"
)

// Store keeps imports, statements and lines in maps. Account lookups are
// served by the embedded registry. It is safe for concurrent use.
type Store struct {
	*accounts.Registry

	mu          sync.RWMutex
	imports     map[string]model.ImportRecord
	transitions map[string][]model.ImportStatus
	statements  map[string]model.Statement
	lines       map[string]model.StatementLine
	byStatement map[string][]string
	now         func() time.Time
}

// New creates an empty store over the given account registry. A nil
// registry means no accounts are registered.
func New(registry *accounts.Registry) *Store {
	if registry == nil {
		registry = accounts.NewRegistry(nil)
	}
	return &Store{
		Registry:    registry,
		imports:     make(map[string]model.ImportRecord),
		transitions: make(map[string][]model.ImportStatus),
		statements:  make(map[string]model.Statement),
		lines:       make(map[string]model.StatementLine),
		byStatement: make(map[string][]string),
		now:         time.Now,
	}
}

// UpdateStatus creates or replaces the import record. A record in a terminal
// status is never replaced.
func (s *Store) UpdateStatus(_ context.Context, tenantID, importID string, u model.StatusUpdate) error {
	if importID == "" {
		return fmt.Errorf("import ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.imports[importID]; ok {
		if rec.TenantID != tenantID {
			return fmt.Errorf("import %s belongs to another tenant", importID)
		}
		if rec.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ingest.ErrImportFinished, importID, rec.Status)
		}
	}
	s.imports[importID] = model.ImportRecord{
		ImportID:     importID,
		TenantID:     tenantID,
		UpdatedAt:    s.now().UTC(),
		StatusUpdate: u,
	}
	s.transitions[importID] = append(s.transitions[importID], u.Status)
	return nil
}

// CreateStatement stores a statement record.
func (s *Store) CreateStatement(_ context.Context, st *model.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.statements[st.ID]; ok {
		return fmt.Errorf("%w: %s", store.ErrDuplicateStatement, st.ID)
	}
	s.statements[st.ID] = *st
	return nil
}

// InsertLines stores lines, skipping IDs that are already present.
func (s *Store) InsertLines(_ context.Context, lines []model.StatementLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range lines {
		if _, ok := s.statements[l.StatementID]; !ok {
			return fmt.Errorf("line %s references unknown statement %s", l.ID, l.StatementID)
		}
		if _, ok := s.lines[l.ID]; ok {
			continue
		}
		s.lines[l.ID] = l
		s.byStatement[l.StatementID] = append(s.byStatement[l.StatementID], l.ID)
	}
	return nil
}

// GetImport returns the import record.
func (s *Store) GetImport(_ context.Context, tenantID, importID string) (model.ImportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.imports[importID]
	if !ok || rec.TenantID != tenantID {
		return model.ImportRecord{}, fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
	}
	return rec, nil
}

// Transitions returns every status recorded for an import, oldest first.
func (s *Store) Transitions(importID string) []model.ImportStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.transitions[importID])
}

// GetStatement returns a statement record.
func (s *Store) GetStatement(_ context.Context, tenantID, statementID string) (model.Statement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statements[statementID]
	if !ok || st.TenantID != tenantID {
		return model.Statement{}, fmt.Errorf("statement %s: %w", statementID, store.ErrNotFound)
	}
	return st, nil
}

// ListLines returns a statement's lines ordered by sequence.
func (s *Store) ListLines(ctx context.Context, tenantID, statementID string) ([]model.StatementLine, error) {
	if _, err := s.GetStatement(ctx, tenantID, statementID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byStatement[statementID]
	out := make([]model.StatementLine, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.lines[id])
	}
	slices.SortFunc(out, func(a, b model.StatementLine) int { return a.Seq - b.Seq })
	return out, nil
}

// Counts returns how many statements and lines are stored.
func (s *Store) Counts() (statements, lines int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.statements), len(s.lines)
}

// Close is a no-op.
func (s *Store) Close() {}
