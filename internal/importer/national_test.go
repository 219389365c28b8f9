package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

func newNational() *NationalExtractor {
	return &NationalExtractor{Dialects: DefaultDialects()}
}

func TestNationalExtractor_DebitCreditPair(t *testing.T) {
	st := newNational().Extract(fixture(t, "national_izvod.xml"))

	assert.Equal(t, model.FormatNational, st.Format)
	assert.Equal(t, "260-0056010016113-79", st.AccountIdentifier)
	assert.Equal(t, "41", st.StatementNumber)
	assert.Equal(t, "RSD", st.Currency)
	assert.Equal(t, "1000.00", st.OpeningBalance.Decimal.StringFixed(2))
	assert.Equal(t, "1150.00", st.ClosingBalance.Decimal.StringFixed(2))
	require.NotNil(t, st.PeriodStart)
	assert.Equal(t, "2024-03-15", st.PeriodStart.Format("2006-01-02"))
	assert.Empty(t, st.Warnings)

	require.Len(t, st.Transactions, 2)

	debit := st.Transactions[0]
	assert.Equal(t, model.DirectionDebit, debit.Direction)
	assert.Equal(t, "500.00", debit.Amount.StringFixed(2))
	assert.Equal(t, "2024-03-15", debit.LineDate.Format("2006-01-02"))
	require.NotNil(t, debit.ValueDate)
	assert.Equal(t, "Elektrodistribucija", debit.CounterpartyName)
	assert.Equal(t, "160-0000000012345-11", debit.CounterpartyAccount)
	assert.Equal(t, "97 11-222", debit.PaymentReference)
	assert.Equal(t, "Racun za struju", debit.PaymentPurpose)
	assert.Equal(t, "Racun za struju", debit.Description)
	assert.Equal(t, model.TypeWire, debit.TransactionType)

	credit := st.Transactions[1]
	assert.Equal(t, model.DirectionCredit, credit.Direction)
	assert.Equal(t, "650.00", credit.Amount.StringFixed(2))
	assert.Equal(t, "2024-03-15", credit.LineDate.Format("2006-01-02"), "statement date stands in for a missing line date")
	assert.Nil(t, credit.ValueDate)
}

func TestNationalExtractor_SignInference(t *testing.T) {
	st := newNational().Extract(fixture(t, "national_signed.xml"))

	assert.Equal(t, "205-0000000000001-01", st.AccountIdentifier)
	require.Len(t, st.Transactions, 2)

	tax := st.Transactions[0]
	assert.Equal(t, model.DirectionDebit, tax.Direction)
	assert.Equal(t, "1234.50", tax.Amount.StringFixed(2))
	assert.Equal(t, "Poreska uprava", tax.CounterpartyName)
	assert.Equal(t, "Porez na dobit", tax.Description)
	assert.Equal(t, model.TypeTax, tax.TransactionType)

	salary := st.Transactions[1]
	assert.Equal(t, model.DirectionCredit, salary.Direction)
	assert.Equal(t, "80000.00", salary.Amount.StringFixed(2))
	assert.Equal(t, model.TypeSalary, salary.TransactionType)

	require.Len(t, st.Warnings, 1, "zero amount without a direction is skipped, not guessed")
	assert.Contains(t, st.Warnings[0], "item 3")
}

func TestNationalExtractor_DugujeScenario(t *testing.T) {
	doc := `<Izvod><Stavka><Datum>01.04.2024</Datum><Duguje>500,00</Duguje></Stavka></Izvod>`

	st := newNational().Extract(doc)
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, model.DirectionDebit, st.Transactions[0].Direction)
	assert.Equal(t, "500.00", st.Transactions[0].Amount.StringFixed(2))
}

// A negative amount with no direction tag is always a debit of its magnitude.
func TestNationalExtractor_NegativeAmountIsDebit(t *testing.T) {
	for _, raw := range []string{"-1", "-0,01", "-1.000.000,99", "15,00-", "-7.5"} {
		doc := `<Izvod><Stavka><Datum>2024-04-01</Datum><Iznos>` + raw + `</Iznos></Stavka></Izvod>`
		st := newNational().Extract(doc)
		require.Len(t, st.Transactions, 1, raw)

		txn := st.Transactions[0]
		want, err := ParseAmount(raw)
		require.NoError(t, err)
		assert.Equal(t, model.DirectionDebit, txn.Direction, raw)
		assert.True(t, txn.Amount.Equal(want.Abs()), raw)
	}
}

func TestNationalExtractor_ExplicitDirection(t *testing.T) {
	tests := []struct {
		name string
		item string
		want model.Direction
		amt  string
	}{
		{"indicator wins over sign", "<Smer>P</Smer><Iznos>-10,00</Iznos>", model.DirectionCredit, "10.00"},
		{"indicator with debit column", "<DugPot>D</DugPot><Duguje>3,00</Duguje>", model.DirectionDebit, "3.00"},
		{"word indicator", "<Strana>Potrazuje</Strana><Iznos>4</Iznos>", model.DirectionCredit, "4.00"},
		{"unknown indicator falls back to columns", "<Smer>?</Smer><Potrazuje>8</Potrazuje>", model.DirectionCredit, "8.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := "<Izvod><Stavka><Datum>2024-04-01</Datum>" + tt.item + "</Stavka></Izvod>"
			st := newNational().Extract(doc)
			require.Len(t, st.Transactions, 1)
			assert.Equal(t, tt.want, st.Transactions[0].Direction)
			assert.Equal(t, tt.amt, st.Transactions[0].Amount.StringFixed(2))
		})
	}
}

func TestNationalExtractor_AmbiguousColumnsSkipped(t *testing.T) {
	doc := `<Izvod><Stavka><Datum>2024-04-01</Datum><Duguje>1</Duguje><Potrazuje>2</Potrazuje></Stavka></Izvod>`
	st := newNational().Extract(doc)
	assert.Empty(t, st.Transactions)
	require.Len(t, st.Warnings, 1)
}

func TestNationalExtractor_ZeroAmountNeedsIndicator(t *testing.T) {
	doc := `<Izvod>
<Stavka><Datum>2024-04-01</Datum><Iznos>10,00</Iznos></Stavka>
<Stavka><Datum>2024-04-01</Datum><Iznos>0,00</Iznos></Stavka>
<Stavka><Datum>2024-04-01</Datum><Smer>P</Smer><Iznos>0,00</Iznos></Stavka>
</Izvod>`
	st := newNational().Extract(doc)

	require.Len(t, st.Transactions, 2)
	assert.True(t, st.Transactions[1].Amount.IsZero())
	assert.Equal(t, model.DirectionCredit, st.Transactions[1].Direction)
	assert.Contains(t, st.Warnings, "item 2 skipped: direction cannot be determined")
}

func TestNationalExtractor_MixedConventionWarning(t *testing.T) {
	doc := `<Izvod>
<Stavka><Datum>2024-04-01</Datum><Iznos>-5</Iznos></Stavka>
<Stavka><Datum>2024-04-01</Datum><Smer>D</Smer><Iznos>5</Iznos></Stavka>
</Izvod>`
	st := newNational().Extract(doc)
	require.Len(t, st.Transactions, 2)
	require.Len(t, st.Warnings, 1)
	assert.Contains(t, st.Warnings[0], "1 of 2 lines")
}

func TestNationalExtractor_ContainerOrder(t *testing.T) {
	doc := `<Izvod><StavkaIzvoda><Datum>2024-04-01</Datum><Iznos>1</Iznos></StavkaIzvoda></Izvod>`
	st := newNational().Extract(doc)
	require.Len(t, st.Transactions, 1)
}

func TestNationalExtractor_ExtendedDialect(t *testing.T) {
	doc := `<Izvod><Racun>1</Racun><Kretanja><Kretanje><Dan>2024-04-01</Dan><Vrednost>-9</Vrednost></Kretanje></Kretanja></Izvod>`

	assert.Empty(t, newNational().Extract(doc).Transactions)

	table := DefaultDialects().Merge(DialectTable{
		Fields: map[Field][]string{
			FieldLineDate: {"Dan"},
			FieldAmount:   {"Vrednost"},
		},
		Wrappers: []string{"Kretanja"},
	})
	st := (&NationalExtractor{Dialects: table}).Extract(doc)
	require.Len(t, st.Transactions, 1)
	assert.Equal(t, model.DirectionDebit, st.Transactions[0].Direction)
	assert.Equal(t, "1", st.AccountIdentifier)
}

func TestNationalExtractor_NoContainers(t *testing.T) {
	st := newNational().Extract("<Izvod><BrojRacuna>1</BrojRacuna></Izvod>")
	assert.Equal(t, "1", st.AccountIdentifier)
	assert.Empty(t, st.Transactions)
}
