package importer

import (
	"fmt"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// Validation rules checked by ValidateStatement.
const (
	RuleNegativeAmount = "negative_amount"
	RuleDirection      = "direction"
	RuleLineDate       = "line_date"
	RuleBalance        = "balance"
)

// ValidationError describes a single rule violation. Line is the 1-based
// transaction position, or 0 for statement-level rules.
type ValidationError struct {
	Rule        string
	Line        int
	Description string
}

func (e ValidationError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.Rule, e.Description)
	}
	return fmt.Sprintf("%s [line %d]: %s", e.Rule, e.Line, e.Description)
}

// ValidateStatement checks the normalized-transaction guarantees and, when
// both balances are present, that opening + credits - debits == closing.
func ValidateStatement(st *model.ParsedStatement) []ValidationError {
	var errs []ValidationError

	for i, txn := range st.Transactions {
		line := i + 1
		if txn.Amount.IsNegative() {
			errs = append(errs, ValidationError{
				Rule:        RuleNegativeAmount,
				Line:        line,
				Description: fmt.Sprintf("amount %s is negative", txn.Amount),
			})
		}
		if !txn.Direction.Valid() {
			errs = append(errs, ValidationError{
				Rule:        RuleDirection,
				Line:        line,
				Description: fmt.Sprintf("direction %q is not CREDIT or DEBIT", txn.Direction),
			})
		}
		if txn.LineDate.IsZero() {
			errs = append(errs, ValidationError{
				Rule:        RuleLineDate,
				Line:        line,
				Description: "line date missing",
			})
		}
	}

	if st.OpeningBalance.Valid && st.ClosingBalance.Valid && len(st.Transactions) > 0 {
		credits, debits := st.Totals()
		expected := st.OpeningBalance.Decimal.Add(credits).Sub(debits)
		if !expected.Equal(st.ClosingBalance.Decimal) {
			errs = append(errs, ValidationError{
				Rule: RuleBalance,
				Description: fmt.Sprintf("opening %s + credits %s - debits %s = %s, closing balance is %s",
					st.OpeningBalance.Decimal.StringFixed(2), credits.StringFixed(2), debits.StringFixed(2),
					expected.StringFixed(2), st.ClosingBalance.Decimal.StringFixed(2)),
			})
		}
	}

	return errs
}
