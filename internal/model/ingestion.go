package model

import "time"

// ImportStatus represents the lifecycle state of one ingestion attempt.
type ImportStatus string

const (
	StatusPending    ImportStatus = "PENDING"
	StatusProcessing ImportStatus = "PROCESSING"
	StatusParsed     ImportStatus = "PARSED"
	StatusQuarantine ImportStatus = "QUARANTINE"
)

// Terminal reports whether no further transition is expected.
func (s ImportStatus) Terminal() bool {
	return s == StatusParsed || s == StatusQuarantine
}

// StatusUpdate is written to storage by import ID at every transition.
type StatusUpdate struct {
	Status           ImportStatus
	Format           Format
	BankAccountID    string
	StatementID      string
	TransactionCount int
	ErrorMessage     string // bounded diagnostic, quarantine only
}

// ImportRecord is the stored state of one import.
type ImportRecord struct {
	ImportID  string
	TenantID  string
	UpdatedAt time.Time
	StatusUpdate
}

// IngestionEvent is published after an import reaches a terminal status.
type IngestionEvent struct {
	EventID          string       `json:"eventId"`
	ImportID         string       `json:"importId"`
	TenantID         string       `json:"tenantId"`
	Status           ImportStatus `json:"status"`
	Format           Format       `json:"format"`
	StatementID      string       `json:"statementId,omitempty"`
	BankAccountID    string       `json:"bankAccountId,omitempty"`
	TransactionCount int          `json:"transactionCount"`
	Error            string       `json:"error,omitempty"`
	Timestamp        time.Time    `json:"timestamp"`
}
