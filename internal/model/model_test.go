package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"ISO20022_XML", FormatISO20022},
		{"swift_text", FormatSWIFT},
		{" NATIONAL_XML ", FormatNational},
		{"csv", FormatUnknown},
		{"", FormatUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFormat(tt.input), "ParseFormat(%q)", tt.input)
	}
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Format("").Label())
	assert.Equal(t, "SWIFT_TEXT", FormatSWIFT.Label())
}

func TestSignedAmount(t *testing.T) {
	debit := ParsedTransaction{Amount: decimal.RequireFromString("12.50"), Direction: DirectionDebit}
	credit := ParsedTransaction{Amount: decimal.RequireFromString("12.50"), Direction: DirectionCredit}

	assert.Equal(t, "-12.50", debit.SignedAmount().StringFixed(2))
	assert.Equal(t, "12.50", credit.SignedAmount().StringFixed(2))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"5", "5.00"},
		{"100.5", "100.50"},
		{"1.234", "1.234"},
		{"0.00001", "0.00001"},
		{"100.50000", "100.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.input)), "FormatAmount(%q)", tt.input)
	}
}

func TestStatementTotals(t *testing.T) {
	st := &ParsedStatement{Transactions: []ParsedTransaction{
		{Amount: decimal.RequireFromString("250.00"), Direction: DirectionCredit},
		{Amount: decimal.RequireFromString("250.00"), Direction: DirectionCredit},
		{Amount: decimal.RequireFromString("100.00"), Direction: DirectionDebit},
	}}

	credits, debits := st.Totals()
	assert.Equal(t, "500.00", credits.StringFixed(2))
	assert.Equal(t, "100.00", debits.StringFixed(2))
}

func TestImportStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusParsed.Terminal())
	assert.True(t, StatusQuarantine.Terminal())
}
