package accounts

import (
	"context"
	"fmt"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// DefaultSuffixDigits is how many trailing digits the suffix strategy compares.
const DefaultSuffixDigits = 10

// Lookup finds a tenant's registered bank accounts. Account numbers are
// compared as digit strings (see Digits and LocalNumber).
type Lookup interface {
	// FindByIBAN matches the compact IBAN exactly.
	FindByIBAN(ctx context.Context, tenantID, iban string) ([]model.BankAccount, error)
	// FindByAccountNumber matches the digits of the local account number, or
	// of a registered IBAN with its 4-character prefix removed.
	FindByAccountNumber(ctx context.Context, tenantID, number string) ([]model.BankAccount, error)
	// FindByNumberSuffix matches accounts whose local number ends in suffix.
	FindByNumberSuffix(ctx context.Context, tenantID, suffix string) ([]model.BankAccount, error)
}

// Method names the strategy that resolved an account.
type Method string

const (
	MethodExplicit    Method = "explicit"
	MethodIBAN        Method = "iban"
	MethodLocalNumber Method = "local_number"
	MethodSuffix      Method = "suffix"
	MethodNone        Method = "none"
)

// Resolution is the outcome of Resolve. An empty AccountID with MethodNone
// is a valid result: the statement is stored without an account link.
type Resolution struct {
	AccountID string
	Method    Method
}

// Resolved reports whether an account was found.
func (r Resolution) Resolved() bool {
	return r.AccountID != ""
}

// Resolver matches a statement's declared account against registered ones.
type Resolver struct {
	Lookup       Lookup
	SuffixDigits int // zero uses DefaultSuffixDigits
}

// NewResolver creates a Resolver with the default suffix length.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{Lookup: lookup, SuffixDigits: DefaultSuffixDigits}
}

// Resolve picks the bank account for a statement. An explicit account wins
// unconditionally; otherwise the cascade is exact IBAN, local account number,
// then a unique suffix match. Ambiguous suffix matches resolve to nothing.
func (r *Resolver) Resolve(ctx context.Context, tenantID, declared, explicit string) (Resolution, error) {
	if explicit != "" {
		return Resolution{AccountID: explicit, Method: MethodExplicit}, nil
	}
	none := Resolution{Method: MethodNone}
	if declared == "" {
		return none, nil
	}

	if IsIBAN(declared) {
		found, err := r.Lookup.FindByIBAN(ctx, tenantID, CompactIBAN(declared))
		if err != nil {
			return none, fmt.Errorf("looking up IBAN: %w", err)
		}
		if len(found) > 0 {
			return Resolution{AccountID: found[0].ID, Method: MethodIBAN}, nil
		}
	}

	number := LocalNumber(declared)
	if number == "" {
		return none, nil
	}
	found, err := r.Lookup.FindByAccountNumber(ctx, tenantID, number)
	if err != nil {
		return none, fmt.Errorf("looking up account number: %w", err)
	}
	if len(found) > 0 {
		return Resolution{AccountID: found[0].ID, Method: MethodLocalNumber}, nil
	}

	n := r.SuffixDigits
	if n <= 0 {
		n = DefaultSuffixDigits
	}
	if len(number) < n {
		return none, nil
	}
	found, err = r.Lookup.FindByNumberSuffix(ctx, tenantID, number[len(number)-n:])
	if err != nil {
		return none, fmt.Errorf("looking up account suffix: %w", err)
	}
	if len(found) == 1 {
		return Resolution{AccountID: found[0].ID, Method: MethodSuffix}, nil
	}
	return none, nil
}
