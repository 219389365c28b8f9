// Package id derives the identifiers of persisted statement records.
package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// lineSeqWidth pads line sequences so IDs of one import sort in file order.
const lineSeqWidth = 5

var statementNamespace = uuid.MustParse("6f1c3a52-7d4e-4b8a-9c2e-0a5d3b7e9f14")

// NewImportID returns a random import ID for callers that did not supply one.
func NewImportID() string {
	return uuid.NewString()
}

// StatementID returns the statement ID for an import. The same import always
// yields the same ID, so a retried write hits the storage uniqueness check.
func StatementID(importID string) string {
	return uuid.NewSHA1(statementNamespace, []byte(importID)).String()
}

// FormatLineID returns a line ID like "imp-42-00007" for the 7th line of
// import "imp-42". Sequences start at 1.
func FormatLineID(importID string, seq int) string {
	return fmt.Sprintf("%s-%0*d", importID, lineSeqWidth, seq)
}

// ParseLineID splits a line ID into its import ID and sequence.
func ParseLineID(lineID string) (importID string, seq int, err error) {
	i := strings.LastIndexByte(lineID, '-')
	if i <= 0 || i == len(lineID)-1 {
		return "", 0, fmt.Errorf("invalid line ID format: %q", lineID)
	}

	seq, err = strconv.Atoi(lineID[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid sequence in line ID %q: %w", lineID, err)
	}
	if seq < 1 {
		return "", 0, fmt.Errorf("invalid sequence in line ID %q: must be positive", lineID)
	}
	return lineID[:i], seq, nil
}
