// Package export writes and reads persisted statement lines as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// Header is the CSV header for exported statement lines.
const Header = "line_id,statement_id,seq,line_date,value_date,debit,credit,type,description,counterparty_name,counterparty_account,counterparty_bank,payment_reference,payment_purpose"

const (
	numFields      = 14
	dateFormat     = "2006-01-02"
	colLineID      = 0
	colStatementID = 1
	colSeq         = 2
	colLineDate    = 3
	colValueDate   = 4
	colDebit       = 5
	colCredit      = 6
	colType        = 7
	colDesc        = 8
	colCpName      = 9
	colCpAccount   = 10
	colCpBank      = 11
	colReference   = 12
	colPurpose     = 13
)

// ReadLines reads all lines from an export reader.
func ReadLines(r io.Reader) ([]model.StatementLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading lines CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var lines []model.StatementLine
	for i, rec := range records[1:] {
		line, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// WriteLines writes lines to w (including header).
func WriteLines(w io.Writer, lines []model.StatementLine) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, l := range lines {
		if err := cw.Write(MarshalLine(l)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalLine converts a line to a CSV row. The amount goes to the debit or
// credit column according to its direction.
func MarshalLine(l model.StatementLine) []string {
	row := make([]string, numFields)
	row[colLineID] = l.ID
	row[colStatementID] = l.StatementID
	row[colSeq] = strconv.Itoa(l.Seq)
	row[colLineDate] = l.LineDate.Format(dateFormat)
	if l.ValueDate != nil {
		row[colValueDate] = l.ValueDate.Format(dateFormat)
	}

	if l.Direction == model.DirectionDebit {
		row[colDebit] = model.FormatAmount(l.Amount)
	} else {
		row[colCredit] = model.FormatAmount(l.Amount)
	}

	row[colType] = string(l.TransactionType)
	row[colDesc] = l.Description
	row[colCpName] = l.CounterpartyName
	row[colCpAccount] = l.CounterpartyAccount
	row[colCpBank] = l.CounterpartyBank
	row[colReference] = l.PaymentReference
	row[colPurpose] = l.PaymentPurpose
	return row
}

// UnmarshalLine converts a CSV row to a line. Exactly one of debit and
// credit must be set.
func UnmarshalLine(record []string) (model.StatementLine, error) {
	if len(record) != numFields {
		return model.StatementLine{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	seq, err := strconv.Atoi(record[colSeq])
	if err != nil {
		return model.StatementLine{}, fmt.Errorf("parsing seq %q: %w", record[colSeq], err)
	}

	lineDate, err := time.Parse(dateFormat, record[colLineDate])
	if err != nil {
		return model.StatementLine{}, fmt.Errorf("parsing line_date %q: %w", record[colLineDate], err)
	}

	var valueDate *time.Time
	if record[colValueDate] != "" {
		vd, err := time.Parse(dateFormat, record[colValueDate])
		if err != nil {
			return model.StatementLine{}, fmt.Errorf("parsing value_date %q: %w", record[colValueDate], err)
		}
		valueDate = &vd
	}

	var amount decimal.Decimal
	var direction model.Direction
	switch {
	case record[colDebit] != "" && record[colCredit] != "":
		return model.StatementLine{}, fmt.Errorf("both debit and credit are set")
	case record[colDebit] != "":
		direction = model.DirectionDebit
		amount, err = decimal.NewFromString(record[colDebit])
	case record[colCredit] != "":
		direction = model.DirectionCredit
		amount, err = decimal.NewFromString(record[colCredit])
	default:
		return model.StatementLine{}, fmt.Errorf("neither debit nor credit is set")
	}
	if err != nil {
		return model.StatementLine{}, fmt.Errorf("parsing amount: %w", err)
	}

	return model.StatementLine{
		ID:          record[colLineID],
		StatementID: record[colStatementID],
		Seq:         seq,
		ParsedTransaction: model.ParsedTransaction{
			LineDate:            lineDate,
			ValueDate:           valueDate,
			Amount:              amount,
			Direction:           direction,
			Description:         record[colDesc],
			CounterpartyName:    record[colCpName],
			CounterpartyAccount: record[colCpAccount],
			CounterpartyBank:    record[colCpBank],
			PaymentReference:    record[colReference],
			PaymentPurpose:      record[colPurpose],
			TransactionType:     model.TransactionType(record[colType]),
		},
	}, nil
}
