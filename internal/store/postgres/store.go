package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/ingest"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// Store implements the ingestion storage contract on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store over an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate applies the schema to the store's database.
func (s *Store) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.pool)
}

// Close closes the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}

// UpdateStatus creates or replaces the import record. Rows already in
// PARSED or QUARANTINE are left as they are.
func (s *Store) UpdateStatus(ctx context.Context, tenantID, importID string, u model.StatusUpdate) error {
	query := `
		INSERT INTO imports (import_id, tenant_id, status, format, bank_account_id, statement_id,
		                     transaction_count, error_message, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (import_id) DO UPDATE SET
			status = EXCLUDED.status,
			format = EXCLUDED.format,
			bank_account_id = EXCLUDED.bank_account_id,
			statement_id = EXCLUDED.statement_id,
			transaction_count = EXCLUDED.transaction_count,
			error_message = EXCLUDED.error_message,
			updated_at = EXCLUDED.updated_at
		WHERE imports.tenant_id = EXCLUDED.tenant_id
		  AND imports.status NOT IN ('PARSED', 'QUARANTINE')
	`
	tag, err := s.pool.Exec(ctx, query, importID, tenantID, string(u.Status), string(u.Format),
		u.BankAccountID, u.StatementID, u.TransactionCount, u.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to update import status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.rejectedStatus(ctx, tenantID, importID)
	}
	return nil
}

// rejectedStatus explains why the status upsert matched no row.
func (s *Store) rejectedStatus(ctx context.Context, tenantID, importID string) error {
	var owner, status string
	err := s.pool.QueryRow(ctx,
		`SELECT tenant_id, status FROM imports WHERE import_id = $1`, importID).Scan(&owner, &status)
	if err != nil {
		return fmt.Errorf("failed to read import %s: %w", importID, err)
	}
	if owner != tenantID {
		return fmt.Errorf("import %s belongs to another tenant", importID)
	}
	return fmt.Errorf("%w: %s is %s", ingest.ErrImportFinished, importID, status)
}

// CreateStatement inserts the statement record.
func (s *Store) CreateStatement(ctx context.Context, st *model.Statement) error {
	query := `
		INSERT INTO statements (id, tenant_id, import_id, bank_account_id, format, account_identifier,
		                        statement_number, currency, opening_balance, closing_balance,
		                        period_start, period_end, transaction_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.pool.Exec(ctx, query,
		st.ID, st.TenantID, st.ImportID, st.BankAccountID, string(st.Format), st.AccountIdentifier,
		st.StatementNumber, st.Currency, st.OpeningBalance, st.ClosingBalance,
		st.PeriodStart, st.PeriodEnd, st.TransactionCount, st.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", store.ErrDuplicateStatement, st.ID)
		}
		return fmt.Errorf("failed to create statement: %w", err)
	}
	return nil
}

// InsertLines inserts one batch of lines in a single transaction. Lines
// whose ID already exists are skipped.
func (s *Store) InsertLines(ctx context.Context, lines []model.StatementLine) error {
	query := `
		INSERT INTO statement_lines (id, statement_id, import_id, tenant_id, seq, line_date, value_date,
		                             amount, direction, description, counterparty_name,
		                             counterparty_account, counterparty_bank, payment_reference,
		                             payment_purpose, transaction_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, l := range lines {
			batch.Queue(query,
				l.ID, l.StatementID, l.ImportID, l.TenantID, l.Seq, l.LineDate, l.ValueDate,
				l.Amount, string(l.Direction), l.Description, l.CounterpartyName,
				l.CounterpartyAccount, l.CounterpartyBank, l.PaymentReference,
				l.PaymentPurpose, string(l.TransactionType),
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert statement lines: %w", err)
		}
		return nil
	})
}

// GetImport returns the import record.
func (s *Store) GetImport(ctx context.Context, tenantID, importID string) (model.ImportRecord, error) {
	query := `
		SELECT import_id, tenant_id, status, format, bank_account_id, statement_id,
		       transaction_count, error_message, updated_at
		FROM imports
		WHERE import_id = $1 AND tenant_id = $2
	`
	var rec model.ImportRecord
	var status, format string
	err := s.pool.QueryRow(ctx, query, importID, tenantID).Scan(
		&rec.ImportID, &rec.TenantID, &status, &format, &rec.BankAccountID, &rec.StatementID,
		&rec.TransactionCount, &rec.ErrorMessage, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ImportRecord{}, fmt.Errorf("import %s: %w", importID, store.ErrNotFound)
		}
		return model.ImportRecord{}, fmt.Errorf("failed to get import: %w", err)
	}
	rec.Status = model.ImportStatus(status)
	rec.Format = model.Format(format)
	return rec, nil
}

// GetStatement returns a statement record.
func (s *Store) GetStatement(ctx context.Context, tenantID, statementID string) (model.Statement, error) {
	query := `
		SELECT id, tenant_id, import_id, bank_account_id, format, account_identifier,
		       statement_number, currency, opening_balance, closing_balance,
		       period_start, period_end, transaction_count, created_at
		FROM statements
		WHERE id = $1 AND tenant_id = $2
	`
	var st model.Statement
	var format string
	err := s.pool.QueryRow(ctx, query, statementID, tenantID).Scan(
		&st.ID, &st.TenantID, &st.ImportID, &st.BankAccountID, &format, &st.AccountIdentifier,
		&st.StatementNumber, &st.Currency, &st.OpeningBalance, &st.ClosingBalance,
		&st.PeriodStart, &st.PeriodEnd, &st.TransactionCount, &st.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Statement{}, fmt.Errorf("statement %s: %w", statementID, store.ErrNotFound)
		}
		return model.Statement{}, fmt.Errorf("failed to get statement: %w", err)
	}
	st.Format = model.Format(format)
	return st, nil
}

// ListLines returns a statement's lines ordered by sequence.
func (s *Store) ListLines(ctx context.Context, tenantID, statementID string) ([]model.StatementLine, error) {
	if _, err := s.GetStatement(ctx, tenantID, statementID); err != nil {
		return nil, err
	}
	query := `
		SELECT id, statement_id, import_id, tenant_id, seq, line_date, value_date, amount, direction,
		       description, counterparty_name, counterparty_account, counterparty_bank,
		       payment_reference, payment_purpose, transaction_type
		FROM statement_lines
		WHERE statement_id = $1
		ORDER BY seq
	`
	rows, err := s.pool.Query(ctx, query, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statement lines: %w", err)
	}
	lines, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.StatementLine, error) {
		var l model.StatementLine
		var direction, txType string
		err := row.Scan(
			&l.ID, &l.StatementID, &l.ImportID, &l.TenantID, &l.Seq, &l.LineDate, &l.ValueDate,
			&l.Amount, &direction, &l.Description, &l.CounterpartyName, &l.CounterpartyAccount,
			&l.CounterpartyBank, &l.PaymentReference, &l.PaymentPurpose, &txType,
		)
		l.Direction = model.Direction(direction)
		l.TransactionType = model.TransactionType(txType)
		return l, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan statement lines: %w", err)
	}
	return lines, nil
}
