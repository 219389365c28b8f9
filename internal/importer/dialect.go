package importer

import (
	"slices"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/tagscan"
)

// Field is a logical statement field of the national XML format.
type Field string

// Line-level fields, looked up inside one transaction container.
const (
	FieldLineDate            Field = "line_date"
	FieldValueDate           Field = "value_date"
	FieldAmount              Field = "amount"
	FieldDebitAmount         Field = "debit_amount"
	FieldCreditAmount        Field = "credit_amount"
	FieldDirection           Field = "direction"
	FieldDescription         Field = "description"
	FieldCounterpartyName    Field = "counterparty_name"
	FieldCounterpartyAccount Field = "counterparty_account"
	FieldCounterpartyBank    Field = "counterparty_bank"
	FieldPaymentReference    Field = "payment_reference"
	FieldPaymentPurpose      Field = "payment_purpose"
	FieldPurposeCode         Field = "purpose_code"
)

// Statement-level fields, looked up in the document with containers removed.
const (
	FieldAccount         Field = "account"
	FieldStatementNumber Field = "statement_number"
	FieldStatementDate   Field = "statement_date"
	FieldOpeningBalance  Field = "opening_balance"
	FieldClosingBalance  Field = "closing_balance"
	FieldPeriodStart     Field = "period_start"
	FieldPeriodEnd       Field = "period_end"
	FieldCurrency        Field = "currency"
)

// DialectTable lists, per logical field, the tag names used by known bank
// export tools, in lookup order. New dialects are supported by appending
// variants, never by rewriting existing ones.
type DialectTable struct {
	Fields map[Field][]string `yaml:"fields"`
	// Containers are the element names of one transaction.
	Containers []string `yaml:"containers"`
	// Wrappers hold transactions as direct children under unknown names.
	Wrappers []string `yaml:"wrappers"`
	// Markers are the element names that identify the format on detection.
	Markers      []string    `yaml:"markers"`
	PurposeCodes []CodeRange `yaml:"purpose_codes"`
}

// DefaultDialects returns the built-in table. Each call returns a fresh copy.
func DefaultDialects() DialectTable {
	return DialectTable{
		Fields: map[Field][]string{
			FieldLineDate:            {"DatumKnjizenja", "Datum", "DatumPromene", "DatumTransakcije"},
			FieldValueDate:           {"DatumValute", "DatumValuta"},
			FieldAmount:              {"Iznos", "IznosPromene", "Suma"},
			FieldDebitAmount:         {"Duguje", "IznosDuguje", "Zaduzenje"},
			FieldCreditAmount:        {"Potrazuje", "IznosPotrazuje", "Odobrenje"},
			FieldDirection:           {"Smer", "SmerPromene", "DugPot", "Strana"},
			FieldDescription:         {"Opis", "SvrhaPlacanja", "Napomena"},
			FieldCounterpartyName:    {"Partner", "NazivPartnera", "Komitent", "NazivKomitenta", "Korisnik", "Naziv"},
			FieldCounterpartyAccount: {"RacunPartnera", "RacunKomitenta", "BrojRacuna", "Racun", "ZiroRacun"},
			FieldCounterpartyBank:    {"BankaPartnera", "Banka", "NazivBanke"},
			FieldPaymentReference:    {"PozivNaBroj", "PozivNaBrojOdobrenja", "PozivNaBrojZaduzenja", "Referenca", "PNB"},
			FieldPaymentPurpose:      {"SvrhaPlacanja", "Svrha", "SvrhaDoznake", "Opis"},
			FieldPurposeCode:         {"SifraPlacanja", "SifraSvrhe", "Sifra"},

			FieldAccount:         {"BrojRacuna", "Racun", "RacunKorisnika", "IBAN"},
			FieldStatementNumber: {"BrojIzvoda", "Broj", "RedniBroj"},
			FieldStatementDate:   {"DatumIzvoda", "Datum"},
			FieldOpeningBalance:  {"PrethodnoStanje", "PocetnoStanje", "StaroStanje"},
			FieldClosingBalance:  {"NovoStanje", "KrajnjeStanje", "ZavrsnoStanje"},
			FieldPeriodStart:     {"DatumOd", "PeriodOd"},
			FieldPeriodEnd:       {"DatumDo", "PeriodDo"},
			FieldCurrency:        {"Valuta", "OznakaValute", "SifraValute"},
		},
		Containers: []string{"Stavka", "StavkaIzvoda", "Promena", "Transakcija", "Nalog"},
		Wrappers:   []string{"Stavke", "StavkeIzvoda", "Promene", "Transakcije", "Nalozi"},
		Markers: []string{
			"Izvod", "IzvodBanke", "Stavka", "StavkaIzvoda", "Stavke", "Promet",
			"Promena", "Promene", "Duguje", "Potrazuje", "PrethodnoStanje", "NovoStanje",
		},
		PurposeCodes: []CodeRange{
			{From: 40, To: 49, Type: model.TypeSalary},
			{From: 50, To: 59, Type: model.TypeTax},
			{From: 70, To: 79, Type: model.TypeFee},
			{From: 84, To: 84, Type: model.TypeCard},
		},
	}
}

// Merge returns a table with ext's variants appended after d's. Variants
// already present are not repeated, so built-in lookup order is preserved.
func (d DialectTable) Merge(ext DialectTable) DialectTable {
	out := DialectTable{
		Fields:       make(map[Field][]string, len(d.Fields)+len(ext.Fields)),
		Containers:   appendNew(nil, d.Containers...),
		Wrappers:     appendNew(nil, d.Wrappers...),
		Markers:      appendNew(nil, d.Markers...),
		PurposeCodes: append(slices.Clone(d.PurposeCodes), ext.PurposeCodes...),
	}
	for f, names := range d.Fields {
		out.Fields[f] = appendNew(nil, names...)
	}
	for f, names := range ext.Fields {
		out.Fields[f] = appendNew(out.Fields[f], names...)
	}
	out.Containers = appendNew(out.Containers, ext.Containers...)
	out.Wrappers = appendNew(out.Wrappers, ext.Wrappers...)
	out.Markers = appendNew(out.Markers, ext.Markers...)
	return out
}

// Variants returns the tag names of f in lookup order.
func (d DialectTable) Variants(f Field) []string {
	return d.Fields[f]
}

// Lookup returns the first non-empty variant of f found in doc.
func (d DialectTable) Lookup(doc string, f Field) (string, bool) {
	return tagscan.FirstOf(doc, d.Fields[f]...)
}

func (d DialectTable) empty() bool {
	return len(d.Fields) == 0 && len(d.Containers) == 0 && len(d.Markers) == 0
}

func appendNew(dst []string, names ...string) []string {
	for _, n := range names {
		if n != "" && !slices.Contains(dst, n) {
			dst = append(dst, n)
		}
	}
	return dst
}
