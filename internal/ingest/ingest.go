// Package ingest runs one statement file through normalization, detection,
// extraction, account resolution and persistence, recording the import's
// status at every transition.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/accounts"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/envelope"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/id"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/importer"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/logger"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// StatusUpdater records import status transitions by import ID. A record
// in a terminal status is final: writes to it fail with ErrImportFinished.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, tenantID, importID string, u model.StatusUpdate) error
}

// StatementWriter creates the statement record of an import.
type StatementWriter interface {
	CreateStatement(ctx context.Context, st *model.Statement) error
}

// LineWriter bulk-inserts statement lines. Lines carry deterministic IDs,
// so inserting the same batch twice must not duplicate them.
type LineWriter interface {
	InsertLines(ctx context.Context, lines []model.StatementLine) error
}

// Store is everything the orchestrator needs from storage.
type Store interface {
	StatusUpdater
	accounts.Lookup
	StatementWriter
	LineWriter
}

// Publisher receives an event after every terminal transition.
type Publisher interface {
	Publish(ctx context.Context, ev model.IngestionEvent) error
}

// Request is one file to ingest.
type Request struct {
	RawContent            string
	ImportID              string
	TenantID              string
	ExplicitBankAccountID string
}

// Result describes a PARSED import.
type Result struct {
	Format            model.Format               `json:"format"`
	TransactionCount  int                        `json:"transactionCount"`
	AccountIdentifier string                     `json:"accountIdentifier,omitempty"`
	StatementNumber   string                     `json:"statementNumber,omitempty"`
	BankAccountID     string                     `json:"bankAccountId,omitempty"`
	StatementID       string                     `json:"statementId,omitempty"`
	AccountResolution accounts.Method            `json:"accountResolution"`
	Warnings          []string                   `json:"warnings,omitempty"`
	Validation        []importer.ValidationError `json:"-"`
}

// Service orchestrates ingestion. It keeps no per-import state and is safe
// for concurrent use when its Store is.
type Service struct {
	store     Store
	publisher Publisher
	registry  *importer.Registry
	detector  importer.Detector
	resolver  *accounts.Resolver
	cfg       Config
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher sends ingestion events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRegistry replaces the extractor registry built from Config.
func WithRegistry(r *importer.Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithClock sets the time source used for record and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an orchestrator over store. Zero Config fields take
// their defaults.
func NewService(store Store, cfg Config, opts ...Option) *Service {
	cfg = cfg.withDefaults()
	s := &Service{
		store: store,
		registry: importer.NewDefaultRegistry(importer.Options{
			Dialects:       cfg.Dialects,
			MaxFieldLength: cfg.MaxFieldLength,
		}),
		detector: importer.Detector{Dialects: cfg.Dialects, PrefixBytes: cfg.DetectPrefixBytes},
		resolver: &accounts.Resolver{Lookup: store, SuffixDigits: cfg.SuffixDigits},
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accept records a newly uploaded import as PENDING.
func (s *Service) Accept(ctx context.Context, tenantID, importID string) error {
	if tenantID == "" || importID == "" {
		return fmt.Errorf("%w: tenant and import IDs are required", ErrInvalidRequest)
	}
	if err := s.store.UpdateStatus(ctx, tenantID, importID, model.StatusUpdate{Status: model.StatusPending}); err != nil {
		if errors.Is(err, ErrImportFinished) {
			return fmt.Errorf("%w: %s", ErrImportFinished, importID)
		}
		return fmt.Errorf("%w: recording PENDING: %v", ErrPersistence, err)
	}
	return nil
}

// Ingest processes one file. A quarantined import returns a nil Result and a
// *QuarantineError. An import ID that already finished returns
// ErrImportFinished and leaves its record untouched. Storage failures return
// an error wrapping ErrPersistence; the import must then be retried under a
// new import ID.
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	if req.TenantID == "" || req.ImportID == "" {
		return nil, fmt.Errorf("%w: tenant and import IDs are required", ErrInvalidRequest)
	}
	log := logger.FromContext(ctx).With().
		Str("import_id", req.ImportID).
		Str("tenant_id", req.TenantID).
		Logger()
	ctx = logger.WithContext(ctx, log)

	if err := s.store.UpdateStatus(ctx, req.TenantID, req.ImportID, model.StatusUpdate{Status: model.StatusProcessing}); err != nil {
		if errors.Is(err, ErrImportFinished) {
			log.Warn().Msg("import already finished; resubmission ignored")
			return nil, fmt.Errorf("%w: %s", ErrImportFinished, req.ImportID)
		}
		return nil, fmt.Errorf("%w: recording PROCESSING: %v", ErrPersistence, err)
	}

	if len(req.RawContent) > s.cfg.MaxInputBytes {
		return nil, s.quarantine(ctx, req, model.FormatUnknown, req.RawContent,
			fmt.Errorf("%w: %d bytes, limit %d", ErrInputTooLarge, len(req.RawContent), s.cfg.MaxInputBytes))
	}

	normalized := envelope.Normalize(req.RawContent)
	format := s.detector.Detect(normalized)
	log.Debug().Str("format", format.Label()).Int("bytes", len(req.RawContent)).Msg("format detected")

	extractor := s.registry.Get(format)
	if format == model.FormatUnknown || extractor == nil {
		return nil, s.quarantine(ctx, req, format, normalized, ErrUnrecognizedFormat)
	}

	parsed := extractor.Extract(normalized)
	if parsed == nil || len(parsed.Transactions) == 0 {
		return nil, s.quarantine(ctx, req, format, normalized, ErrEmptyExtraction)
	}

	res, err := s.persist(ctx, req, parsed)
	if err != nil {
		s.fail(ctx, req, format, err)
		return nil, err
	}

	log.Info().
		Str("format", format.Label()).
		Int("transactions", res.TransactionCount).
		Str("bank_account_id", res.BankAccountID).
		Str("resolution", string(res.AccountResolution)).
		Int("warnings", len(res.Warnings)).
		Msg("import parsed")
	s.publish(ctx, req, model.StatusUpdate{
		Status:           model.StatusParsed,
		Format:           format,
		BankAccountID:    res.BankAccountID,
		StatementID:      res.StatementID,
		TransactionCount: res.TransactionCount,
	})
	return res, nil
}

// persist resolves the account, writes the statement and its lines, then
// records PARSED. Every error it returns wraps ErrPersistence.
func (s *Service) persist(ctx context.Context, req Request, parsed *model.ParsedStatement) (*Result, error) {
	res := &Result{
		Format:            parsed.Format,
		TransactionCount:  len(parsed.Transactions),
		AccountIdentifier: parsed.AccountIdentifier,
		StatementNumber:   parsed.StatementNumber,
		StatementID:       id.StatementID(req.ImportID),
		Warnings:          append([]string(nil), parsed.Warnings...),
	}

	res.Validation = importer.ValidateStatement(parsed)
	for _, v := range res.Validation {
		res.Warnings = append(res.Warnings, v.Error())
	}

	resolution, err := s.resolver.Resolve(ctx, req.TenantID, parsed.AccountIdentifier, req.ExplicitBankAccountID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving account: %v", ErrPersistence, err)
	}
	res.BankAccountID = resolution.AccountID
	res.AccountResolution = resolution.Method
	if !resolution.Resolved() {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("bank account %q is not registered for this tenant; link the statement manually", parsed.AccountIdentifier))
	}

	st := &model.Statement{
		ID:                res.StatementID,
		TenantID:          req.TenantID,
		ImportID:          req.ImportID,
		BankAccountID:     res.BankAccountID,
		Format:            parsed.Format,
		AccountIdentifier: parsed.AccountIdentifier,
		StatementNumber:   parsed.StatementNumber,
		Currency:          parsed.Currency,
		OpeningBalance:    parsed.OpeningBalance,
		ClosingBalance:    parsed.ClosingBalance,
		PeriodStart:       parsed.PeriodStart,
		PeriodEnd:         parsed.PeriodEnd,
		TransactionCount:  len(parsed.Transactions),
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.CreateStatement(ctx, st); err != nil {
		return nil, fmt.Errorf("%w: creating statement: %v", ErrPersistence, err)
	}

	lines := Lines(st, parsed.Transactions)
	for start := 0; start < len(lines); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(lines))
		if err := s.store.InsertLines(ctx, lines[start:end]); err != nil {
			return nil, fmt.Errorf("%w: inserting lines %d-%d: %v", ErrPersistence, start+1, end, err)
		}
	}

	err = s.store.UpdateStatus(ctx, req.TenantID, req.ImportID, model.StatusUpdate{
		Status:           model.StatusParsed,
		Format:           parsed.Format,
		BankAccountID:    res.BankAccountID,
		StatementID:      res.StatementID,
		TransactionCount: res.TransactionCount,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: recording PARSED: %v", ErrPersistence, err)
	}
	return res, nil
}

// Lines builds the persisted lines of a statement, numbered from 1 in file order.
func Lines(st *model.Statement, txns []model.ParsedTransaction) []model.StatementLine {
	lines := make([]model.StatementLine, len(txns))
	for i, txn := range txns {
		seq := i + 1
		lines[i] = model.StatementLine{
			ID:                id.FormatLineID(st.ImportID, seq),
			StatementID:       st.ID,
			ImportID:          st.ImportID,
			TenantID:          st.TenantID,
			Seq:               seq,
			ParsedTransaction: txn,
		}
	}
	return lines
}

// quarantine records the terminal QUARANTINE status and returns the error
// handed back to the caller.
func (s *Service) quarantine(ctx context.Context, req Request, format model.Format, content string, cause error) error {
	qerr := &QuarantineError{
		Format:  format,
		Snippet: snippet(content, s.cfg.SnippetLength),
		Hint:    hintFor(cause, format),
		Err:     cause,
	}
	log := logger.FromContext(ctx)
	log.Warn().Str("format", format.Label()).Err(cause).Msg("import quarantined")

	u := model.StatusUpdate{Status: model.StatusQuarantine, Format: format, ErrorMessage: qerr.Message()}
	if err := s.store.UpdateStatus(ctx, req.TenantID, req.ImportID, u); err != nil {
		return errors.Join(qerr, fmt.Errorf("%w: recording QUARANTINE: %v", ErrPersistence, err))
	}
	s.publish(ctx, req, u)
	return qerr
}

// fail makes a best-effort attempt to move a failed import to QUARANTINE
// with the failure text. Errors here are logged only.
func (s *Service) fail(ctx context.Context, req Request, format model.Format, cause error) {
	log := logger.FromContext(ctx)
	log.Error().Err(cause).Msg("import failed")

	u := model.StatusUpdate{Status: model.StatusQuarantine, Format: format, ErrorMessage: cause.Error()}
	if err := s.store.UpdateStatus(ctx, req.TenantID, req.ImportID, u); err != nil {
		log.Error().Err(err).Msg("failed to record QUARANTINE after persistence failure")
		return
	}
	s.publish(ctx, req, u)
}

func (s *Service) publish(ctx context.Context, req Request, u model.StatusUpdate) {
	if s.publisher == nil {
		return
	}
	ev := model.IngestionEvent{
		EventID:          uuid.NewString(),
		ImportID:         req.ImportID,
		TenantID:         req.TenantID,
		Status:           u.Status,
		Format:           u.Format,
		StatementID:      u.StatementID,
		BankAccountID:    u.BankAccountID,
		TransactionCount: u.TransactionCount,
		Error:            u.ErrorMessage,
		Timestamp:        s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		log := logger.FromContext(ctx)
		log.Error().Err(err).Str("status", string(u.Status)).Msg("failed to publish ingestion event")
	}
}
