// Package auditlog keeps an append-only CSV trail of finished imports.
package auditlog

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp     time.Time
	ImportID      string
	TenantID      string
	Status        model.ImportStatus
	Format        model.Format
	Transactions  int
	BankAccountID string
	Details       string
}

// Header is the CSV header for the audit log.
const Header = "timestamp,import_id,tenant_id,status,format,transactions,bank_account_id,details"

const (
	numFields        = 8
	colTimestamp     = 0
	colImportID      = 1
	colTenantID      = 2
	colStatus        = 3
	colFormat        = 4
	colTransactions  = 5
	colBankAccountID = 6
	colDetails       = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colImportID] = e.ImportID
	row[colTenantID] = e.TenantID
	row[colStatus] = string(e.Status)
	row[colFormat] = string(e.Format)
	row[colTransactions] = strconv.Itoa(e.Transactions)
	row[colBankAccountID] = e.BankAccountID
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	n, err := strconv.Atoi(record[colTransactions])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing transactions %q: %w", record[colTransactions], err)
	}

	return Entry{
		Timestamp:     ts,
		ImportID:      record[colImportID],
		TenantID:      record[colTenantID],
		Status:        model.ImportStatus(record[colStatus]),
		Format:        model.ParseFormat(record[colFormat]),
		Transactions:  n,
		BankAccountID: record[colBankAccountID],
		Details:       record[colDetails],
	}, nil
}

// FromEvent builds the audit entry for an ingestion event. Only the first
// line of a quarantine diagnostic is kept.
func FromEvent(ev model.IngestionEvent) Entry {
	details, _, _ := strings.Cut(ev.Error, "\n")
	return Entry{
		Timestamp:     ev.Timestamp,
		ImportID:      ev.ImportID,
		TenantID:      ev.TenantID,
		Status:        ev.Status,
		Format:        ev.Format,
		Transactions:  ev.TransactionCount,
		BankAccountID: ev.BankAccountID,
		Details:       details,
	}
}

// Append writes entries to path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating audit log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from path. Returns an empty slice if the file
// does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading audit log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Log appends an entry for every published ingestion event. It satisfies
// the orchestrator's Publisher interface.
type Log struct {
	Path string

	mu sync.Mutex
}

// Publish appends the event to the log file. Only terminal statuses are
// recorded.
func (l *Log) Publish(_ context.Context, ev model.IngestionEvent) error {
	if !ev.Status.Terminal() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return Append(l.Path, []Entry{FromEvent(ev)})
}
