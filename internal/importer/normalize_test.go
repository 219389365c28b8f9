package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1500,00", "1500.00"},
		{"1500.00", "1500.00"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1 234,56", "1234.56"},
		{"1\u00a0234,56", "1234.56"},
		{"1'234.56", "1234.56"},
		{"1.234.567", "1234567.00"},
		{"1,234,567", "1234567.00"},
		{"-12,5", "-12.50"},
		{"12,50-", "-12.50"},
		{"+7", "7.00"},
		{"(3.00)", "-3.00"},
		{"1500,", "1500.00"},
		{".5", "0.50"},
		{"  42  ", "42.00"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, input := range []string{"", "-", "abc", "12a", "EUR 10", "()"} {
		_, err := ParseAmount(input)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", input)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"2024-03-15", "2024-03-15"},
		{"2024-03-15T10:30:00+01:00", "2024-03-15"},
		{"2024-03-15T23:59:59", "2024-03-15"},
		{"2024-03-15+01:00", "2024-03-15"},
		{"15.03.2024", "2024-03-15"},
		{"15.03.2024.", "2024-03-15"},
		{"5.3.2024", "2024-03-05"},
		{"15/03/2024", "2024-03-15"},
		{"20240315", "2024-03-15"},
		{"240315", "2024-03-15"},
		{" 2024-03-15 ", "2024-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, input := range []string{"", "tomorrow", "2024-13-01", "32.01.2024"} {
		_, err := ParseDate(input)
		assert.ErrorIs(t, err, ErrInvalidDate, "input %q", input)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		input  string
		want   model.Direction
		wantOK bool
	}{
		{"DBIT", model.DirectionDebit, true},
		{"CRDT", model.DirectionCredit, true},
		{"d", model.DirectionDebit, true},
		{"P", model.DirectionCredit, true},
		{"Duguje", model.DirectionDebit, true},
		{"Potražuje", model.DirectionCredit, true},
		{" zaduženje ", model.DirectionDebit, true},
		{"-", model.DirectionDebit, true},
		{"+", model.DirectionCredit, true},
		{"X", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDirection(tt.input)
		assert.Equal(t, tt.wantOK, ok, "ParseDirection(%q)", tt.input)
		assert.Equal(t, tt.want, got, "ParseDirection(%q)", tt.input)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("  abc  ", 10))
	assert.Equal(t, "šđč", Truncate("šđčćž", 3))
	assert.Equal(t, 500, len([]rune(Truncate(strings.Repeat("ž", 600), 0))))
	assert.Equal(t, "", Truncate("", 5))
}

func TestClassifyCode(t *testing.T) {
	tests := []struct {
		codes []string
		want  model.TransactionType
	}{
		{[]string{"ACMT", "MDOP", "CHRG"}, model.TypeFee},
		{[]string{"NCHG"}, model.TypeFee},
		{[]string{"PMNT", "RCDT", "SALA"}, model.TypeSalary},
		{[]string{"", "TAXS"}, model.TypeTax},
		{[]string{"PMNT", "CCRD", "POSD"}, model.TypeCard},
		{[]string{"PMNT", "RCDT", "ESCT"}, model.TypeWire},
		{nil, model.TypeWire},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyCode(tt.codes...), "ClassifyCode(%v)", tt.codes)
	}
}

func TestClassifyPurposeCode(t *testing.T) {
	ranges := DefaultDialects().PurposeCodes
	tests := []struct {
		code string
		want model.TransactionType
	}{
		{"240", model.TypeSalary},
		{"149", model.TypeSalary},
		{"253", model.TypeTax},
		{"254", model.TypeTax},
		{"279", model.TypeFee},
		{"284", model.TypeCard},
		{"221", model.TypeWire},
		{"289", model.TypeWire},
		{"", model.TypeWire},
		{"2A1", model.TypeWire},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyPurposeCode(tt.code, ranges), "code %q", tt.code)
	}
}
