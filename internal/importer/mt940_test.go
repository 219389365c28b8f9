package importer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

func TestMT940Extractor_Statement(t *testing.T) {
	st := (&MT940Extractor{}).Extract(fixture(t, "mt940_statement.sta"))

	assert.Equal(t, model.FormatSWIFT, st.Format)
	assert.Equal(t, "RS35260005601001611379", st.AccountIdentifier)
	assert.Equal(t, "52/1", st.StatementNumber)
	assert.Equal(t, "RSD", st.Currency)
	assert.Equal(t, "1000.00", st.OpeningBalance.Decimal.StringFixed(2))
	assert.Equal(t, "1400.00", st.ClosingBalance.Decimal.StringFixed(2))
	require.NotNil(t, st.PeriodStart)
	assert.Equal(t, "2024-03-14", st.PeriodStart.Format("2006-01-02"))
	require.NotNil(t, st.PeriodEnd)
	assert.Equal(t, "2024-03-16", st.PeriodEnd.Format("2006-01-02"))
	assert.Empty(t, st.Warnings)

	require.Len(t, st.Transactions, 3)

	first := st.Transactions[0]
	assert.Equal(t, model.DirectionCredit, first.Direction)
	assert.Equal(t, "250.00", first.Amount.StringFixed(2))
	assert.Equal(t, "INV-1001", first.PaymentReference)
	assert.Equal(t, "Payment for invoice 1001", first.Description)
	assert.Equal(t, model.TypeWire, first.TransactionType)

	second := st.Transactions[1]
	assert.Equal(t, model.DirectionDebit, second.Direction)
	assert.Equal(t, "B24031500002", second.PaymentReference, "NONREF falls back to the bank reference")
	assert.Equal(t, model.TypeFee, second.TransactionType)
	assert.Equal(t, "Bank fee March", second.PaymentPurpose)
	assert.Equal(t, "BANKRSBG", second.CounterpartyBank)
	assert.Equal(t, "RS35160005080000123456", second.CounterpartyAccount)
	assert.Equal(t, "Bank Servis", second.CounterpartyName)
	assert.True(t, strings.HasPrefix(second.Description, "166?00SEPA-UEBERWEISUNG?20Bank fee"))

	third := st.Transactions[2]
	assert.Equal(t, model.DirectionCredit, third.Direction)
	assert.Equal(t, "2024-03-16", third.LineDate.Format("2006-01-02"))
	assert.Empty(t, third.Description, "no :86: follows the last :61:")
	assert.Empty(t, third.PaymentReference)
}

func TestMT940Extractor_SingleDebitLine(t *testing.T) {
	doc := ":20:REF\n:25:123456\n:28C:1\n:60F:C060314EUR2000,00\n:61:060315D1500,00\n:62F:C060315EUR500,00\n-"

	st := (&MT940Extractor{}).Extract(doc)
	require.Len(t, st.Transactions, 1)
	txn := st.Transactions[0]
	assert.Equal(t, model.DirectionDebit, txn.Direction)
	assert.Equal(t, "1500.00", txn.Amount.StringFixed(2))
	assert.Equal(t, "2006-03-15", txn.LineDate.Format("2006-01-02"))
}

func TestMT940Extractor_EntryDate(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{":61:2403150314C1,00", "2024-03-14"},
		{":61:2401021231C1,00", "2023-12-31"},
		{":61:2312310102C1,00", "2024-01-02"},
		{":61:2403151399C1,00", "2024-03-15"},
	}
	for _, tt := range tests {
		st := (&MT940Extractor{}).Extract(":20:X\n:60F:C240314EUR0,00\n" + tt.line + "\n")
		require.Len(t, st.Transactions, 1, tt.line)
		assert.Equal(t, tt.want, st.Transactions[0].LineDate.Format("2006-01-02"), tt.line)
	}
}

func TestMT940Extractor_ReversalMarks(t *testing.T) {
	doc := ":20:X\n:60F:C240314EUR0,00\n:61:240315RC10,00\n:61:240315RD20,00\n"
	st := (&MT940Extractor{}).Extract(doc)
	require.Len(t, st.Transactions, 2)
	assert.Equal(t, model.DirectionDebit, st.Transactions[0].Direction)
	assert.Equal(t, model.DirectionCredit, st.Transactions[1].Direction)
}

// A missing :86: never shifts the descriptions of later lines.
func TestMT940Extractor_AdjacencyPairing(t *testing.T) {
	doc := strings.Join([]string{
		":20:X",
		":60F:C240314EUR0,00",
		":61:240315C1,00",
		":86:first",
		":61:240315C2,00",
		":61:240315C3,00",
		":86:third",
		":62F:C240315EUR6,00",
		":86:statement note",
	}, "\n")

	st := (&MT940Extractor{}).Extract(doc)
	require.Len(t, st.Transactions, 3)
	assert.Equal(t, "first", st.Transactions[0].Description)
	assert.Empty(t, st.Transactions[1].Description)
	assert.Equal(t, "third", st.Transactions[2].Description)
}

// The :61: count equals the transaction count and the Kth :86: is the Kth description.
func TestMT940Extractor_CountAndDescriptions(t *testing.T) {
	for _, n := range []int{1, 3, 25} {
		lines := []string{":20:X", ":25:ACC", ":60F:C240101EUR0,00"}
		for i := 0; i < n; i++ {
			mark := "C"
			if i%2 == 1 {
				mark = "D"
			}
			lines = append(lines,
				fmt.Sprintf(":61:2401%02d%s%d,%02dNTRFREF%d", i%28+1, mark, i+1, i, i),
				fmt.Sprintf(":86:description number %d", i))
		}
		lines = append(lines, ":62F:C240131EUR0,00", "-")
		doc := strings.Join(lines, "\n")

		st := (&MT940Extractor{}).Extract(doc)
		require.Equal(t, strings.Count(doc, ":61:"), len(st.Transactions))
		for k, txn := range st.Transactions {
			assert.Equal(t, fmt.Sprintf("description number %d", k), txn.Description)
			assert.False(t, txn.Amount.IsNegative())
			assert.True(t, txn.Direction.Valid())
		}
	}
}

func TestMT940Extractor_MultilineFreeText(t *testing.T) {
	doc := ":20:X\n:60F:C240314EUR0,00\n:61:240315C1,00\n:86:Uplata po\nracunu 15/2024\n:62F:C240315EUR1,00\n"
	st := (&MT940Extractor{}).Extract(doc)
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, "Uplata po racunu 15/2024", st.Transactions[0].Description)
}

func TestMT940Extractor_MalformedLineSkipped(t *testing.T) {
	doc := ":20:X\n:60F:C240314EUR0,00\n:61:garbage\n:86:orphan\n:61:240315C1,00\n"
	st := (&MT940Extractor{}).Extract(doc)
	require.Len(t, st.Transactions, 1)
	assert.Empty(t, st.Transactions[0].Description, "the orphaned :86: is not attached to another line")
	require.Len(t, st.Warnings, 1)
}
