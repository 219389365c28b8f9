package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedStatement is the canonical output of every format extractor.
type ParsedStatement struct {
	Format            Format
	AccountIdentifier string // IBAN or local account number as declared in the file
	StatementNumber   string
	Currency          string
	OpeningBalance    decimal.NullDecimal
	ClosingBalance    decimal.NullDecimal
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	Transactions      []ParsedTransaction // file order
	Warnings          []string
}

// Totals returns the sums of credit and debit magnitudes.
func (s *ParsedStatement) Totals() (credits, debits decimal.Decimal) {
	credits, debits = decimal.Zero, decimal.Zero
	for _, t := range s.Transactions {
		if t.Direction == DirectionDebit {
			debits = debits.Add(t.Amount)
		} else {
			credits = credits.Add(t.Amount)
		}
	}
	return credits, debits
}

// Statement is the persisted statement record created for one import.
type Statement struct {
	ID                string
	TenantID          string
	ImportID          string
	BankAccountID     string // empty when the account could not be resolved
	Format            Format
	AccountIdentifier string
	StatementNumber   string
	Currency          string
	OpeningBalance    decimal.NullDecimal
	ClosingBalance    decimal.NullDecimal
	PeriodStart       *time.Time
	PeriodEnd         *time.Time
	TransactionCount  int
	CreatedAt         time.Time
}

// StatementLine is one persisted transaction belonging to a statement.
type StatementLine struct {
	ID          string // deterministic: import ID + sequence
	StatementID string
	ImportID    string
	TenantID    string
	Seq         int
	ParsedTransaction
}
