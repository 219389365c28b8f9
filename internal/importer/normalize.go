package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// DefaultMaxFieldLength bounds every free-text field of a ParsedTransaction.
const DefaultMaxFieldLength = 500

// ErrInvalidAmount is returned by ParseAmount for text that is not a number.
var ErrInvalidAmount = errors.New("invalid amount")

// ErrInvalidDate is returned by ParseDate for text in no supported layout.
var ErrInvalidDate = errors.New("invalid date")

// ParseAmount parses a locale-formatted amount. Either ',' or '.' may be the
// decimal separator; when both appear the last one wins and the other is
// grouping. Spaces, NBSP and apostrophes are grouping too. A leading sign,
// a trailing '-' or surrounding parentheses make the result negative.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") {
		negative = !negative
		s = strings.TrimSuffix(s, "-")
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	} else {
		s = strings.TrimPrefix(s, "+")
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')
	decimalAt := -1
	switch {
	case lastComma >= 0 && lastDot >= 0:
		decimalAt = max(lastComma, lastDot)
	case lastComma >= 0 && strings.Count(s, ",") == 1:
		decimalAt = lastComma
	case lastDot >= 0 && strings.Count(s, ".") == 1:
		decimalAt = lastDot
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case i == decimalAt:
			b.WriteByte('.')
		case c == ',' || c == '.':
		case c < '0' || c > '9':
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
		default:
			b.WriteByte(c)
		}
	}
	s = strings.TrimSuffix(b.String(), ".")
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

var dateLayouts = []string{
	"02.01.2006.",
	"02.01.2006",
	"2.1.2006.",
	"2.1.2006",
	"02/01/2006",
	"20060102",
	"060102",
}

// ParseDate parses a calendar date from ISO (date or date-time, any zone
// suffix), dd.mm.yyyy[.], dd/mm/yyyy, yyyymmdd or yymmdd text. The result is
// midnight UTC of the date as written.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 10 && s[4] == '-' && s[7] == '-' {
		t, err := time.Parse("2006-01-02", s[:10])
		if err == nil {
			return t, nil
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}

var directionWords = map[string]model.Direction{
	"D":         model.DirectionDebit,
	"DR":        model.DirectionDebit,
	"DBIT":      model.DirectionDebit,
	"DEBIT":     model.DirectionDebit,
	"DUG":       model.DirectionDebit,
	"DUGUJE":    model.DirectionDebit,
	"DUGOVNA":   model.DirectionDebit,
	"Z":         model.DirectionDebit,
	"ZADUZENJE": model.DirectionDebit,
	"-":         model.DirectionDebit,
	"C":         model.DirectionCredit,
	"CR":        model.DirectionCredit,
	"CRDT":      model.DirectionCredit,
	"CREDIT":    model.DirectionCredit,
	"P":         model.DirectionCredit,
	"POT":       model.DirectionCredit,
	"POTRAZUJE": model.DirectionCredit,
	"POTRAZNA":  model.DirectionCredit,
	"O":         model.DirectionCredit,
	"ODOBRENJE": model.DirectionCredit,
	"+":         model.DirectionCredit,
}

// ParseDirection maps a side indicator (DBIT/CRDT, D/C, Duguje/Potrazuje,
// D/P and similar) to a Direction.
func ParseDirection(s string) (model.Direction, bool) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("Ž", "Z", "Ć", "C", "Č", "C", "Š", "S", "Đ", "DJ").Replace(key)
	d, ok := directionWords[key]
	return d, ok
}

// Truncate trims s and bounds it to limit runes. A limit of zero or less
// uses DefaultMaxFieldLength.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxFieldLength
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	i := 0
	for pos := range s {
		if i == limit {
			return strings.TrimSpace(s[:pos])
		}
		i++
	}
	return s
}

type codeRule struct {
	needles []string
	typ     model.TransactionType
}

// Checked in order; the first rule with a matching substring wins.
var codeRules = []codeRule{
	{[]string{"CHRG", "FEES", "COMM", "COMT", "NCHG", "NCOM"}, model.TypeFee},
	{[]string{"SALA", "BONU", "PENS", "PAYR"}, model.TypeSalary},
	{[]string{"TAXS", "VATX", "TAX"}, model.TypeTax},
	{[]string{"CCRD", "POSD", "POSC", "CWDL", "DCRD", "CARD"}, model.TypeCard},
}

// ClassifyCode classifies bank transaction codes (ISO domain/family/
// sub-family, proprietary codes, purpose codes, MT940 N-codes) by substring.
// Codes matching no rule are WIRE.
func ClassifyCode(codes ...string) model.TransactionType {
	joined := strings.ToUpper(strings.Join(codes, " "))
	for _, rule := range codeRules {
		for _, n := range rule.needles {
			if strings.Contains(joined, n) {
				return rule.typ
			}
		}
	}
	return model.TypeWire
}

// CodeRange maps an inclusive range of numeric payment-purpose bases to a type.
type CodeRange struct {
	From int                   `yaml:"from"`
	To   int                   `yaml:"to"`
	Type model.TransactionType `yaml:"type"`
}

// ClassifyPurposeCode classifies a numeric payment code by its basis, the
// last two digits (code 240 has basis 40). Unmatched or non-numeric codes
// are WIRE.
func ClassifyPurposeCode(code string, ranges []CodeRange) model.TransactionType {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.TypeWire
	}
	n := 0
	for _, r := range code {
		if r < '0' || r > '9' {
			return model.TypeWire
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000 {
			return model.TypeWire
		}
	}
	basis := n % 100
	for _, cr := range ranges {
		if basis >= cr.From && basis <= cr.To {
			return cr.Type
		}
	}
	return model.TypeWire
}
