package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/tagscan"
)

// CamtExtractor reads ISO 20022 camt.053 bank-to-customer statements.
type CamtExtractor struct {
	MaxFieldLength int
}

const notProvided = "NOTPROVIDED"

var errNoAmount = errors.New("no amount")

// Format returns the extractor's format.
func (e *CamtExtractor) Format() model.Format { return model.FormatISO20022 }

// Extract reads the first Stmt block. Entries without a readable amount or
// date are skipped with a warning.
func (e *CamtExtractor) Extract(doc string) *model.ParsedStatement {
	st := &model.ParsedStatement{Format: model.FormatISO20022}

	stmts := tagscan.AllTagContents(doc, "Stmt")
	if len(stmts) == 0 {
		return st
	}
	if len(stmts) > 1 {
		st.Warnings = append(st.Warnings,
			fmt.Sprintf("document holds %d statements, only the first was read", len(stmts)))
	}
	stmt := stmts[0]
	header := tagscan.Strip(stmt, "Ntry")

	acct, _ := tagscan.TagContent(header, "Acct")
	st.AccountIdentifier = accountID(acct)
	st.Currency, _ = tagscan.TagContent(acct, "Ccy")
	st.StatementNumber = statementNumber(header)
	e.readBalances(header, st)

	if period, ok := tagscan.TagContent(header, "FrToDt"); ok {
		if v, ok := tagscan.FirstOf(period, "FrDtTm", "FrDt"); ok {
			st.PeriodStart = parseOptionalDate(v)
		}
		if v, ok := tagscan.FirstOf(period, "ToDtTm", "ToDt"); ok {
			st.PeriodEnd = parseOptionalDate(v)
		}
	}

	for i, ntry := range tagscan.AllTagContents(stmt, "Ntry") {
		txn, err := e.entry(ntry)
		if err != nil {
			st.Warnings = append(st.Warnings, fmt.Sprintf("entry %d skipped: %v", i+1, err))
			continue
		}
		st.Transactions = append(st.Transactions, txn)
	}
	return st
}

func (e *CamtExtractor) readBalances(header string, st *model.ParsedStatement) {
	var prcd decimal.NullDecimal
	for _, bal := range tagscan.AllTagContents(header, "Bal") {
		tp, _ := tagscan.TagContent(bal, "Tp")
		code, _ := tagscan.FirstOf(tp, "Cd", "Prtry")
		amt, err := signedAmount(bal)
		if err != nil {
			continue
		}
		if st.Currency == "" {
			st.Currency, _ = tagscan.Attribute(bal, "Ccy")
		}
		switch strings.ToUpper(code) {
		case "OPBD":
			st.OpeningBalance = decimal.NewNullDecimal(amt)
		case "PRCD":
			prcd = decimal.NewNullDecimal(amt)
		case "CLBD":
			st.ClosingBalance = decimal.NewNullDecimal(amt)
		}
	}
	if !st.OpeningBalance.Valid {
		st.OpeningBalance = prcd
	}
}

func (e *CamtExtractor) entry(ntry string) (model.ParsedTransaction, error) {
	head := tagscan.Strip(ntry, "NtryDtls")
	var txn model.ParsedTransaction

	rawAmt, ok := tagscan.TagContent(head, "Amt")
	if !ok {
		return txn, errNoAmount
	}
	amt, err := ParseAmount(rawAmt)
	if err != nil {
		return txn, err
	}
	ind, _ := tagscan.TagContent(head, "CdtDbtInd")
	dir, ok := ParseDirection(ind)
	switch {
	case ok && amt.IsNegative():
		dir = flip(dir)
	case !ok && amt.IsNegative():
		dir = model.DirectionDebit
	case !ok && amt.IsPositive():
		dir = model.DirectionCredit
	case !ok:
		return txn, errors.New("no credit/debit indicator")
	}
	txn.Amount = amt.Abs()
	txn.Direction = dir

	booking := dateIn(head, "BookgDt")
	value := dateIn(head, "ValDt")
	switch {
	case booking != nil:
		txn.LineDate = *booking
	case value != nil:
		txn.LineDate = *value
	default:
		return txn, errors.New("no booking or value date")
	}
	txn.ValueDate = value

	tx, _ := tagscan.TagContent(ntry, "TxDtls")
	limit := e.MaxFieldLength

	description := strings.Join(tagscan.AllTagContents(ntry, "Ustrd"), " ")
	if description == "" {
		description, _ = tagscan.FirstOf(ntry, "AddtlNtryInf", "AddtlTxInf")
	}
	txn.Description = Truncate(description, limit)

	parties, _ := tagscan.TagContent(tx, "RltdPties")
	agents, _ := tagscan.TagContent(tx, "RltdAgts")
	party, partyAcct, agent := "Dbtr", "DbtrAcct", "DbtrAgt"
	if dir == model.DirectionDebit {
		party, partyAcct, agent = "Cdtr", "CdtrAcct", "CdtrAgt"
	}
	if p, ok := tagscan.TagContent(parties, party); ok {
		name, _ := tagscan.TagContent(p, "Nm")
		txn.CounterpartyName = Truncate(name, limit)
	}
	if a, ok := tagscan.TagContent(parties, partyAcct); ok {
		txn.CounterpartyAccount = Truncate(accountID(a), limit)
	}
	if a, ok := tagscan.TagContent(agents, agent); ok {
		bank, _ := tagscan.FirstOf(a, "BIC", "BICFI", "Nm")
		txn.CounterpartyBank = Truncate(bank, limit)
	}

	txn.PaymentReference = Truncate(reference(ntry, tx), limit)

	purp, _ := tagscan.TagContent(tx, "Purp")
	purpose, _ := tagscan.FirstOf(purp, "Cd", "Prtry")
	txn.PaymentPurpose = Truncate(purpose, limit)

	txn.TransactionType = ClassifyCode(append(bankTxCodes(head), purpose)...)
	return txn, nil
}

// accountID returns the IBAN of an account block, or its Othr/Id.
func accountID(acct string) string {
	if iban, ok := tagscan.TagContent(acct, "IBAN"); ok && iban != "" {
		return iban
	}
	othr, _ := tagscan.TagContent(acct, "Othr")
	id, _ := tagscan.TagContent(othr, "Id")
	return id
}

func statementNumber(header string) string {
	if v, ok := tagscan.FirstOf(header, "ElctrncSeqNb", "LglSeqNb"); ok {
		return v
	}
	// Stmt/Id precedes Acct; an Id holding markup belongs to a nested block.
	if v, ok := tagscan.TagContent(header, "Id"); ok && !strings.Contains(v, "<") {
		return v
	}
	return ""
}

func signedAmount(block string) (decimal.Decimal, error) {
	raw, ok := tagscan.TagContent(block, "Amt")
	if !ok {
		return decimal.Zero, errNoAmount
	}
	amt, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	ind, _ := tagscan.TagContent(block, "CdtDbtInd")
	if d, ok := ParseDirection(ind); ok && d == model.DirectionDebit {
		amt = amt.Neg()
	}
	return amt, nil
}

func dateIn(block, tag string) *time.Time {
	v, ok := tagscan.TagContent(block, tag)
	if !ok {
		return nil
	}
	d, ok := tagscan.FirstOf(v, "Dt", "DtTm")
	if !ok {
		return nil
	}
	return parseOptionalDate(d)
}

func reference(ntry, tx string) string {
	refs, _ := tagscan.TagContent(tx, "Refs")
	if v, ok := tagscan.TagContent(refs, "EndToEndId"); ok && v != "" && !strings.EqualFold(v, notProvided) {
		return v
	}
	if cri, ok := tagscan.TagContent(tx, "CdtrRefInf"); ok {
		if v, ok := tagscan.TagContent(cri, "Ref"); ok && v != "" {
			return v
		}
	}
	v, _ := tagscan.TagContent(ntry, "AcctSvcrRef")
	return v
}

func bankTxCodes(head string) []string {
	bk, ok := tagscan.TagContent(head, "BkTxCd")
	if !ok {
		return nil
	}
	var codes []string
	if domn, ok := tagscan.TagContent(bk, "Domn"); ok {
		if v, ok := tagscan.TagContent(domn, "Cd"); ok {
			codes = append(codes, v)
		}
		if fmly, ok := tagscan.TagContent(domn, "Fmly"); ok {
			if v, ok := tagscan.TagContent(fmly, "Cd"); ok {
				codes = append(codes, v)
			}
			if v, ok := tagscan.TagContent(fmly, "SubFmlyCd"); ok {
				codes = append(codes, v)
			}
		}
	}
	if prtry, ok := tagscan.TagContent(bk, "Prtry"); ok {
		if v, ok := tagscan.TagContent(prtry, "Cd"); ok {
			codes = append(codes, v)
		}
	}
	return codes
}

func flip(d model.Direction) model.Direction {
	if d == model.DirectionDebit {
		return model.DirectionCredit
	}
	return model.DirectionDebit
}
