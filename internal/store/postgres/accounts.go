package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/accounts"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

const accountColumns = `id, tenant_id, name, iban, account_number, currency`

// UpsertAccounts registers bank accounts, replacing rows with the same ID.
func (s *Store) UpsertAccounts(ctx context.Context, accts []model.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (id, tenant_id, name, iban, account_number, currency, account_digits, iban_local)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			tenant_id = EXCLUDED.tenant_id,
			name = EXCLUDED.name,
			iban = EXCLUDED.iban,
			account_number = EXCLUDED.account_number,
			currency = EXCLUDED.currency,
			account_digits = EXCLUDED.account_digits,
			iban_local = EXCLUDED.iban_local
	`
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, a := range accts {
			iban := accounts.CompactIBAN(a.IBAN)
			var ibanLocal string
			if accounts.IsIBAN(iban) {
				ibanLocal = accounts.LocalNumber(iban)
			}
			batch.Queue(query, a.ID, a.TenantID, a.Name, iban, a.AccountNumber, a.Currency,
				accounts.Digits(a.AccountNumber), ibanLocal)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to upsert bank accounts: %w", err)
		}
		return nil
	})
}

// FindByIBAN implements accounts.Lookup.
func (s *Store) FindByIBAN(ctx context.Context, tenantID, iban string) ([]model.BankAccount, error) {
	return s.queryAccounts(ctx, `
		SELECT `+accountColumns+` FROM bank_accounts
		WHERE tenant_id = $1 AND iban = $2 AND iban <> ''
		ORDER BY id
	`, tenantID, accounts.CompactIBAN(iban))
}

// FindByAccountNumber implements accounts.Lookup.
func (s *Store) FindByAccountNumber(ctx context.Context, tenantID, number string) ([]model.BankAccount, error) {
	digits := accounts.Digits(number)
	if digits == "" {
		return nil, nil
	}
	return s.queryAccounts(ctx, `
		SELECT `+accountColumns+` FROM bank_accounts
		WHERE tenant_id = $1 AND (account_digits = $2 OR iban_local = $2)
		ORDER BY id
	`, tenantID, digits)
}

// FindByNumberSuffix implements accounts.Lookup.
func (s *Store) FindByNumberSuffix(ctx context.Context, tenantID, suffix string) ([]model.BankAccount, error) {
	digits := accounts.Digits(suffix)
	if digits == "" {
		return nil, nil
	}
	return s.queryAccounts(ctx, `
		SELECT `+accountColumns+` FROM bank_accounts
		WHERE tenant_id = $1
		  AND ((account_digits <> '' AND right(account_digits, length($2)) = $2)
		    OR (iban_local <> '' AND right(iban_local, length($2)) = $2))
		ORDER BY id
	`, tenantID, digits)
}

func (s *Store) queryAccounts(ctx context.Context, query string, args ...any) ([]model.BankAccount, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bank accounts: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.BankAccount, error) {
		var a model.BankAccount
		err := row.Scan(&a.ID, &a.TenantID, &a.Name, &a.IBAN, &a.AccountNumber, &a.Currency)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan bank accounts: %w", err)
	}
	return out, nil
}
