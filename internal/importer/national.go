package importer

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/tagscan"
)

// NationalExtractor reads the national XML statement family. Every field is
// looked up through the ordered variants of its DialectTable.
type NationalExtractor struct {
	Dialects       DialectTable
	MaxFieldLength int
}

var (
	errNoDirection  = errors.New("direction cannot be determined")
	errAmbiguousDCA = errors.New("both debit and credit amounts are non-zero")
)

// Format returns the extractor's format.
func (e *NationalExtractor) Format() model.Format { return model.FormatNational }

// Extract finds transaction containers, first by container name and then as
// the children of a known wrapper. Header fields are read from the document
// with all containers removed.
func (e *NationalExtractor) Extract(doc string) *model.ParsedStatement {
	table := e.Dialects
	if table.empty() {
		table = DefaultDialects()
	}
	st := &model.ParsedStatement{Format: model.FormatNational}

	header := doc
	for _, name := range table.Containers {
		header = tagscan.Strip(header, name)
	}
	for _, name := range table.Wrappers {
		header = tagscan.Strip(header, name)
	}
	limit := e.MaxFieldLength

	if v, ok := table.Lookup(header, FieldAccount); ok {
		st.AccountIdentifier = Truncate(v, limit)
	}
	if v, ok := table.Lookup(header, FieldStatementNumber); ok {
		st.StatementNumber = Truncate(v, limit)
	}
	if v, ok := table.Lookup(header, FieldCurrency); ok {
		st.Currency = Truncate(v, limit)
	}
	st.OpeningBalance = lookupBalance(table, header, FieldOpeningBalance)
	st.ClosingBalance = lookupBalance(table, header, FieldClosingBalance)

	var statementDate *time.Time
	if v, ok := table.Lookup(header, FieldStatementDate); ok {
		statementDate = parseOptionalDate(v)
	}
	if v, ok := table.Lookup(header, FieldPeriodStart); ok {
		st.PeriodStart = parseOptionalDate(v)
	}
	if v, ok := table.Lookup(header, FieldPeriodEnd); ok {
		st.PeriodEnd = parseOptionalDate(v)
	}
	if st.PeriodStart == nil {
		st.PeriodStart = statementDate
	}
	if st.PeriodEnd == nil {
		st.PeriodEnd = statementDate
	}

	bySign := 0
	for i, item := range transactionItems(doc, table) {
		txn, signInferred, err := e.transaction(item, table, statementDate)
		if err != nil {
			st.Warnings = append(st.Warnings, fmt.Sprintf("item %d skipped: %v", i+1, err))
			continue
		}
		if signInferred {
			bySign++
		}
		st.Transactions = append(st.Transactions, txn)
	}
	if bySign > 0 && bySign < len(st.Transactions) {
		st.Warnings = append(st.Warnings,
			fmt.Sprintf("%d of %d lines took their direction from the amount sign", bySign, len(st.Transactions)))
	}
	return st
}

// transactionItems returns the bodies of the first container variant present
// in doc, or else the children of every wrapper of the first wrapper variant
// present.
func transactionItems(doc string, table DialectTable) []string {
	for _, name := range table.Containers {
		if items := tagscan.AllTagContents(doc, name); len(items) > 0 {
			return items
		}
	}
	for _, name := range table.Wrappers {
		var items []string
		for _, body := range tagscan.AllTagContents(doc, name) {
			for _, child := range tagscan.Children(body) {
				items = append(items, child.Content)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

func (e *NationalExtractor) transaction(item string, table DialectTable, statementDate *time.Time) (model.ParsedTransaction, bool, error) {
	var txn model.ParsedTransaction
	limit := e.MaxFieldLength

	lineDate := lookupDate(table, item, FieldLineDate)
	switch {
	case lineDate != nil:
		txn.LineDate = *lineDate
	case statementDate != nil:
		txn.LineDate = *statementDate
	default:
		return txn, false, errors.New("no line date")
	}
	txn.ValueDate = lookupDate(table, item, FieldValueDate)

	amount, dir, bySign, err := resolveDirection(table, item)
	if err != nil {
		return txn, false, err
	}
	txn.Amount = amount
	txn.Direction = dir

	text := func(f Field) string {
		v, _ := table.Lookup(item, f)
		return Truncate(v, limit)
	}
	txn.Description = text(FieldDescription)
	txn.CounterpartyName = text(FieldCounterpartyName)
	txn.CounterpartyAccount = text(FieldCounterpartyAccount)
	txn.CounterpartyBank = text(FieldCounterpartyBank)
	txn.PaymentReference = text(FieldPaymentReference)
	txn.PaymentPurpose = text(FieldPaymentPurpose)
	if txn.Description == "" {
		txn.Description = txn.PaymentPurpose
	}

	code, _ := table.Lookup(item, FieldPurposeCode)
	txn.TransactionType = ClassifyPurposeCode(code, table.PurposeCodes)
	return txn, bySign, nil
}

// resolveDirection tries, in order: an explicit side indicator, a debit/credit
// amount pair, and the sign of a single amount. It never guesses past that.
func resolveDirection(table DialectTable, item string) (decimal.Decimal, model.Direction, bool, error) {
	amount, hasAmount := lookupAmount(table, item, FieldAmount)
	debit, hasDebit := lookupAmount(table, item, FieldDebitAmount)
	credit, hasCredit := lookupAmount(table, item, FieldCreditAmount)

	if raw, ok := table.Lookup(item, FieldDirection); ok {
		if dir, ok := ParseDirection(raw); ok {
			switch {
			case hasAmount:
				return amount.Abs(), dir, false, nil
			case dir == model.DirectionDebit && hasDebit:
				return debit.Abs(), dir, false, nil
			case dir == model.DirectionCredit && hasCredit:
				return credit.Abs(), dir, false, nil
			}
		}
	}

	debitSet := hasDebit && !debit.IsZero()
	creditSet := hasCredit && !credit.IsZero()
	switch {
	case debitSet && creditSet:
		return decimal.Zero, "", false, errAmbiguousDCA
	case debitSet:
		return debit.Abs(), model.DirectionDebit, false, nil
	case creditSet:
		return credit.Abs(), model.DirectionCredit, false, nil
	}

	if hasAmount {
		switch {
		case amount.IsNegative():
			return amount.Abs(), model.DirectionDebit, true, nil
		case amount.IsPositive():
			return amount, model.DirectionCredit, true, nil
		}
	}
	return decimal.Zero, "", false, errNoDirection
}

func lookupAmount(table DialectTable, doc string, f Field) (decimal.Decimal, bool) {
	v, ok := table.Lookup(doc, f)
	if !ok {
		return decimal.Zero, false
	}
	d, err := ParseAmount(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func lookupBalance(table DialectTable, doc string, f Field) decimal.NullDecimal {
	d, ok := lookupAmount(table, doc, f)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func lookupDate(table DialectTable, doc string, f Field) *time.Time {
	v, ok := table.Lookup(doc, f)
	if !ok {
		return nil
	}
	return parseOptionalDate(v)
}
