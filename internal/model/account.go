package model

// BankAccount is a tenant's registered bank account.
type BankAccount struct {
	ID            string
	TenantID      string
	Name          string
	IBAN          string
	AccountNumber string // local account number, any punctuation
	Currency      string
}
