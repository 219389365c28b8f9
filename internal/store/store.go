// Package store holds what the storage backends share: the read side used
// by the HTTP API and the CLI, and the errors both backends return.
package store

import (
	"context"
	"errors"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/ingest"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

var (
	// ErrNotFound is returned when a record does not exist for the tenant.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateStatement is returned when a statement ID is created twice.
	ErrDuplicateStatement = errors.New("statement already exists")
)

// Reader exposes stored imports and their statements.
type Reader interface {
	GetImport(ctx context.Context, tenantID, importID string) (model.ImportRecord, error)
	GetStatement(ctx context.Context, tenantID, statementID string) (model.Statement, error)
	ListLines(ctx context.Context, tenantID, statementID string) ([]model.StatementLine, error)
}

// Backend is a complete storage implementation.
type Backend interface {
	ingest.Store
	Reader
	Close()
}
