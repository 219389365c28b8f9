package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// MT940Extractor reads SWIFT MT940 customer statement messages. Files with
// several messages yield the transactions of all of them.
type MT940Extractor struct {
	MaxFieldLength int
}

type swiftField struct {
	tag   string
	value string // continuation lines joined with "\n"
}

var (
	fieldStartRe = regexp.MustCompile(`^:(\d{2}[A-Z]?):`)
	// value date, entry date, mark, funds code, amount, type code, customer ref, bank ref
	statementLineRe = regexp.MustCompile(`^(\d{6})(\d{4})?(R?[CD])([A-Z])?(\d+,\d*)([NFS][A-Z0-9]{3})?(.*?)(?://(.*))?$`)
	balanceRe       = regexp.MustCompile(`^([CD])(\d{6})([A-Z]{3})(\d+,\d*)`)
	subfieldRe      = regexp.MustCompile(`\?(\d{2})`)
)

const swiftNoReference = "NONREF"

// Format returns the extractor's format.
func (e *MT940Extractor) Format() model.Format { return model.FormatSWIFT }

// Extract reads header fields from the first message and every :61: line.
// An :86: block describes the :61: line it directly follows; an :86: in any
// other position is statement information and is ignored.
func (e *MT940Extractor) Extract(doc string) *model.ParsedStatement {
	st := &model.ParsedStatement{Format: model.FormatSWIFT}
	fields := splitFields(doc)

	var opening, closing, interim *swiftBalance
	prevTxn := -1
	for _, f := range fields {
		isTxn := false
		switch f.tag {
		case "25":
			acct := strings.TrimSpace(firstLine(f.value))
			if st.AccountIdentifier == "" {
				st.AccountIdentifier = acct
			} else if acct != st.AccountIdentifier {
				st.Warnings = append(st.Warnings, fmt.Sprintf("account %s differs from %s", acct, st.AccountIdentifier))
			}
		case "28C":
			if st.StatementNumber == "" {
				st.StatementNumber = strings.TrimSpace(firstLine(f.value))
			}
		case "60F", "60M":
			if b, err := parseBalance(f.value); err == nil && opening == nil {
				opening = b
			}
		case "62F":
			if b, err := parseBalance(f.value); err == nil {
				closing = b
			}
		case "62M":
			if b, err := parseBalance(f.value); err == nil {
				interim = b
			}
		case "61":
			txn, err := e.statementLine(f.value)
			if err != nil {
				st.Warnings = append(st.Warnings, fmt.Sprintf(":61: line %d skipped: %v", len(st.Transactions)+1, err))
				break
			}
			st.Transactions = append(st.Transactions, txn)
			prevTxn = len(st.Transactions) - 1
			isTxn = true
		case "86":
			if prevTxn >= 0 {
				e.applyInfo(&st.Transactions[prevTxn], f.value)
			}
		}
		if !isTxn {
			prevTxn = -1
		}
	}

	if closing == nil {
		closing = interim
	}
	if opening != nil {
		st.OpeningBalance = decimal.NewNullDecimal(opening.amount)
		st.Currency = opening.currency
		st.PeriodStart = &opening.date
	}
	if closing != nil {
		st.ClosingBalance = decimal.NewNullDecimal(closing.amount)
		if st.Currency == "" {
			st.Currency = closing.currency
		}
		st.PeriodEnd = &closing.date
	}
	return st
}

// splitFields cuts a message into tagged fields. Lines before the first tag,
// SWIFT block headers and the "-" trailer close the current field.
func splitFields(doc string) []swiftField {
	var fields []swiftField
	open := false
	for _, line := range strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.HasPrefix(line, "{") {
			open = false
			i := strings.Index(line, "{4:")
			if i < 0 {
				continue
			}
			line = line[i+3:]
		}
		if m := fieldStartRe.FindStringSubmatch(line); m != nil {
			fields = append(fields, swiftField{tag: m[1], value: line[len(m[0]):]})
			open = true
			continue
		}
		if line == "-" || line == "-}" || strings.HasPrefix(line, "-}") {
			open = false
			continue
		}
		if open && line != "" {
			fields[len(fields)-1].value += "\n" + line
		}
	}
	return fields
}

type swiftBalance struct {
	date     time.Time
	currency string
	amount   decimal.Decimal
}

func parseBalance(value string) (*swiftBalance, error) {
	m := balanceRe.FindStringSubmatch(strings.TrimSpace(firstLine(value)))
	if m == nil {
		return nil, fmt.Errorf("malformed balance %q", value)
	}
	date, err := time.Parse("060102", m[2])
	if err != nil {
		return nil, fmt.Errorf("balance date: %w", err)
	}
	amt, err := ParseAmount(m[4])
	if err != nil {
		return nil, err
	}
	if m[1] == "D" {
		amt = amt.Neg()
	}
	return &swiftBalance{date: date, currency: m[3], amount: amt}, nil
}

func (e *MT940Extractor) statementLine(value string) (model.ParsedTransaction, error) {
	var txn model.ParsedTransaction
	line, supplementary, _ := strings.Cut(value, "\n")
	m := statementLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return txn, errors.New("malformed statement line")
	}

	valueDate, err := time.Parse("060102", m[1])
	if err != nil {
		return txn, fmt.Errorf("value date: %w", err)
	}
	txn.LineDate = valueDate
	if m[2] != "" {
		if entry, ok := entryDate(valueDate, m[2]); ok {
			txn.LineDate = entry
		}
	}
	txn.ValueDate = &valueDate

	switch m[3] {
	case "C", "RD":
		txn.Direction = model.DirectionCredit
	case "D", "RC":
		txn.Direction = model.DirectionDebit
	}

	amt, err := ParseAmount(m[5])
	if err != nil {
		return txn, err
	}
	txn.Amount = amt.Abs()
	txn.TransactionType = ClassifyCode(m[6])

	ref := strings.TrimSpace(m[7])
	if ref == "" || strings.EqualFold(ref, swiftNoReference) {
		ref = strings.TrimSpace(m[8])
	}
	txn.PaymentReference = Truncate(ref, e.MaxFieldLength)
	txn.Description = Truncate(joinContinuation(supplementary), e.MaxFieldLength)
	return txn, nil
}

// entryDate resolves an MMDD booking date against the value date's year,
// allowing bookings to straddle a year boundary.
func entryDate(valueDate time.Time, mmdd string) (time.Time, bool) {
	t, err := time.Parse("0102", mmdd)
	if err != nil {
		return time.Time{}, false
	}
	year := valueDate.Year()
	switch {
	case t.Month() == time.December && valueDate.Month() == time.January:
		year--
	case t.Month() == time.January && valueDate.Month() == time.December:
		year++
	}
	d := time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if d.Month() != t.Month() {
		return time.Time{}, false
	}
	return d, true
}

// applyInfo fills a transaction from its :86: block. Structured blocks
// (?20-?29 purpose, ?30 bank, ?31 account, ?32/?33 name) also populate the
// counterparty fields; the description is always the whole block.
func (e *MT940Extractor) applyInfo(txn *model.ParsedTransaction, value string) {
	limit := e.MaxFieldLength
	if !structured(value) {
		txn.Description = Truncate(joinContinuation(value), limit)
		return
	}
	text := strings.ReplaceAll(value, "\n", "")
	txn.Description = Truncate(text, limit)

	locs := subfieldRe.FindAllStringSubmatchIndex(text, -1)
	var purpose, name strings.Builder
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		code := text[loc[2]:loc[3]]
		v := text[loc[1]:end]
		switch {
		case code >= "20" && code <= "29":
			purpose.WriteString(v)
		case code == "30":
			txn.CounterpartyBank = Truncate(v, limit)
		case code == "31":
			txn.CounterpartyAccount = Truncate(v, limit)
		case code == "32" || code == "33":
			name.WriteString(v)
		}
	}
	txn.PaymentPurpose = Truncate(purpose.String(), limit)
	txn.CounterpartyName = Truncate(name.String(), limit)
}

// structured reports whether an :86: block uses '?' subfields, optionally
// after a 3-digit transaction code. Structured blocks wrap mid-token.
func structured(value string) bool {
	loc := subfieldRe.FindStringIndex(value)
	return loc != nil && loc[0] <= 3
}

// joinContinuation rejoins a wrapped free-text field with single spaces.
func joinContinuation(value string) string {
	var parts []string
	for _, l := range strings.Split(value, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, " ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
