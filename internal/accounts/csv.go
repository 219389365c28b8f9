package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

const (
	numFields     = 6
	colID         = 0
	colTenant     = 1
	colName       = 2
	colIBAN       = 3
	colAccountNum = 4
	colCurrency   = 5
)

// Header is the bank-accounts.csv header row.
var Header = []string{"account_id", "tenant_id", "name", "iban", "account_number", "currency"}

// ReadAccounts reads bank-accounts.csv.
func ReadAccounts(r io.Reader) ([]model.BankAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.BankAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes bank-accounts.csv.
func WriteAccounts(w io.Writer, accounts []model.BankAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalAccount converts a BankAccount to a CSV row.
func MarshalAccount(acct model.BankAccount) []string {
	row := make([]string, numFields)
	row[colID] = acct.ID
	row[colTenant] = acct.TenantID
	row[colName] = acct.Name
	row[colIBAN] = acct.IBAN
	row[colAccountNum] = acct.AccountNumber
	row[colCurrency] = acct.Currency
	return row
}

// UnmarshalAccount converts a CSV row to a BankAccount.
func UnmarshalAccount(record []string) (model.BankAccount, error) {
	if len(record) != numFields {
		return model.BankAccount{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.BankAccount{}, fmt.Errorf("account_id is empty")
	}
	if record[colTenant] == "" {
		return model.BankAccount{}, fmt.Errorf("tenant_id is empty for account %s", record[colID])
	}
	if record[colIBAN] == "" && record[colAccountNum] == "" {
		return model.BankAccount{}, fmt.Errorf("account %s has neither iban nor account_number", record[colID])
	}

	return model.BankAccount{
		ID:            record[colID],
		TenantID:      record[colTenant],
		Name:          record[colName],
		IBAN:          CompactIBAN(record[colIBAN]),
		AccountNumber: record[colAccountNum],
		Currency:      record[colCurrency],
	}, nil
}
