package tagscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagContent(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		tag    string
		want   string
		wantOK bool
	}{
		{"simple", "<Amt>12.50</Amt>", "Amt", "12.50", true},
		{"trimmed", "<Amt>\n  12.50 \n</Amt>", "Amt", "12.50", true},
		{"attributes", `<Amt Ccy="EUR">12.50</Amt>`, "Amt", "12.50", true},
		{"first match wins", "<Id>A</Id><Id>B</Id>", "Id", "A", true},
		{"boundary", "<AmtDtls>x</AmtDtls><Amt>1</Amt>", "Amt", "1", true},
		{"prefix only", "<AmtDtls>x</AmtDtls>", "Amt", "", false},
		{"self closing", "<Amt/>", "Amt", "", true},
		{"self closing with space", `<Amt Ccy="EUR" />`, "Amt", "", true},
		{"missing", "<Bal>1</Bal>", "Amt", "", false},
		{"unterminated", "<Amt>12.50", "Amt", "", false},
		{"close with whitespace", "<Amt>7</Amt >", "Amt", "7", true},
		{"empty doc", "", "Amt", "", false},
		{"quoted gt in attribute", `<Amt note="a>b">3</Amt>`, "Amt", "3", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TagContent(tt.doc, tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTagContent_Nested(t *testing.T) {
	doc := "<Ntry><Amt>1</Amt><Ntry><Amt>2</Amt></Ntry><Sfx>z</Sfx></Ntry>"
	got, ok := TagContent(doc, "Ntry")
	require.True(t, ok)
	assert.Equal(t, "<Amt>1</Amt><Ntry><Amt>2</Amt></Ntry><Sfx>z</Sfx>", got)
}

func TestTagContent_UnbalancedNestingFallsBackToFirstClose(t *testing.T) {
	doc := "<A>x<A>y</A>"
	got, ok := TagContent(doc, "A")
	require.True(t, ok)
	assert.Equal(t, "x<A>y", got)
}

func TestAllTagContents(t *testing.T) {
	doc := `<Stmt><Ntry><Amt>1</Amt></Ntry><Ntry><Amt>2</Amt></Ntry><Ntry/><NtryDtls>n</NtryDtls></Stmt>`
	got := AllTagContents(doc, "Ntry")
	require.Len(t, got, 3)
	assert.Equal(t, "<Amt>1</Amt>", got[0])
	assert.Equal(t, "<Amt>2</Amt>", got[1])
	assert.Equal(t, "", got[2])

	assert.Nil(t, AllTagContents(doc, "Missing"))
}

func TestAttribute(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		attr   string
		want   string
		wantOK bool
	}{
		{"double quoted", `<Amt Ccy="EUR">1</Amt>`, "Ccy", "EUR", true},
		{"single quoted", `<Amt Ccy='RSD'>1</Amt>`, "Ccy", "RSD", true},
		{"spaces around equals", `<Amt Ccy = "USD">1</Amt>`, "Ccy", "USD", true},
		{"first wins", `<A Ccy="EUR"/><B Ccy="USD"/>`, "Ccy", "EUR", true},
		{"boundary", `<A XCcy="EUR" Ccy="USD"/>`, "Ccy", "USD", true},
		{"missing", `<Amt>1</Amt>`, "Ccy", "", false},
		{"text not attribute", `<Note> Ccy is unknown</Note>`, "Ccy", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Attribute(tt.doc, tt.attr)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasTag(t *testing.T) {
	assert.True(t, HasTag("<Izvod><Stavka/></Izvod>", "Stavka"))
	assert.True(t, HasTag("<Stavka\n>x</Stavka>", "Stavka"))
	assert.False(t, HasTag("<StavkaIzvoda>x</StavkaIzvoda>", "Stavka"))
	assert.False(t, HasTag("Stavka", "Stavka"))
}

func TestFirstOf(t *testing.T) {
	doc := "<Stavka><Duguje></Duguje><Potrazuje>500,00</Potrazuje></Stavka>"

	got, ok := FirstOf(doc, "Iznos", "Duguje", "Potrazuje")
	require.True(t, ok)
	assert.Equal(t, "500,00", got)

	_, ok = FirstOf(doc, "Iznos", "Suma")
	assert.False(t, ok)
}

func TestStrip(t *testing.T) {
	doc := "<Izvod><BrojIzvoda>7</BrojIzvoda><Stavka><BrojIzvoda>x</BrojIzvoda></Stavka><Stavka/></Izvod>"
	got := Strip(doc, "Stavka")
	assert.Equal(t, "<Izvod><BrojIzvoda>7</BrojIzvoda></Izvod>", got)

	assert.Equal(t, doc, Strip(doc, "Missing"))
}

func TestChildren(t *testing.T) {
	doc := `
<!-- generated -->
<Stavka><Iznos>1</Iznos></Stavka>
text
<Promena sifra="1">2</Promena>
<Prazno/>
`
	got := Children(doc)
	require.Len(t, got, 3)
	assert.Equal(t, Element{Name: "Stavka", Content: "<Iznos>1</Iznos>"}, got[0])
	assert.Equal(t, Element{Name: "Promena", Content: "2"}, got[1])
	assert.Equal(t, Element{Name: "Prazno", Content: ""}, got[2])
}

func TestNeverPanicsOnMalformedInput(t *testing.T) {
	inputs := []string{"<", "<A", "<A>", "</A>", "<A/", "<<A>>", "<A x=\">", "<A></A", ">"}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			TagContent(in, "A")
			AllTagContents(in, "A")
			Attribute(in, "x")
			Strip(in, "A")
			Children(in)
		}, "input %q", in)
	}
}
