package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a statement line from the account holder's view.
type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// Valid reports whether d is one of the two concrete directions.
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// TransactionType classifies a statement line.
type TransactionType string

const (
	TypeWire    TransactionType = "WIRE"
	TypeFee     TransactionType = "FEE"
	TypeSalary  TransactionType = "SALARY"
	TypeTax     TransactionType = "TAX"
	TypeCard    TransactionType = "CARD"
	TypeUnknown TransactionType = "UNKNOWN"
)

// ParsedTransaction is one normalized statement line.
type ParsedTransaction struct {
	LineDate            time.Time
	ValueDate           *time.Time
	Amount              decimal.Decimal // magnitude, never negative
	Direction           Direction
	Description         string
	CounterpartyName    string
	CounterpartyAccount string
	CounterpartyBank    string
	PaymentReference    string
	PaymentPurpose      string
	TransactionType     TransactionType
}

// FormatAmount renders an amount with at least two decimals, keeping any
// further significant digits (3-decimal currencies, camt's 5). Trailing
// zeros from a database column scale are dropped.
func FormatAmount(d decimal.Decimal) string {
	places := int32(2)
	if _, frac, ok := strings.Cut(d.String(), "."); ok && int32(len(frac)) > places {
		places = int32(len(frac))
	}
	return d.StringFixed(places)
}

// SignedAmount returns the amount negated for debits.
func (t ParsedTransaction) SignedAmount() decimal.Decimal {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
