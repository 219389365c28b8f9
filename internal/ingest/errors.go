package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

var (
	// ErrInvalidRequest is returned before any status is written.
	ErrInvalidRequest = errors.New("invalid ingestion request")
	// ErrUnrecognizedFormat means no detector marker matched.
	ErrUnrecognizedFormat = errors.New("unrecognized statement format")
	// ErrEmptyExtraction means the format was recognized but no transaction was read.
	ErrEmptyExtraction = errors.New("no transactions extracted")
	// ErrInputTooLarge means the raw content exceeded Config.MaxInputBytes.
	ErrInputTooLarge = errors.New("input exceeds size limit")
	// ErrImportFinished means the import already reached PARSED or
	// QUARANTINE. Stores return it instead of overwriting a final status.
	ErrImportFinished = errors.New("import already finished")
	// ErrPersistence wraps any storage failure after PROCESSING was recorded.
	ErrPersistence = errors.New("persistence failed")
)

// QuarantineError is returned when an import ends in QUARANTINE. The same
// diagnostic is persisted as the import's error message.
type QuarantineError struct {
	Format  model.Format
	Snippet string // bounded prefix of the normalized content
	Hint    string
	Err     error // ErrUnrecognizedFormat, ErrEmptyExtraction or ErrInputTooLarge
}

func (e *QuarantineError) Error() string {
	return fmt.Sprintf("%v [%s]", e.Err, e.Format.Label())
}

func (e *QuarantineError) Unwrap() error {
	return e.Err
}

// Message renders the diagnostic stored with the QUARANTINE status.
func (e *QuarantineError) Message() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if e.Hint != "" {
		b.WriteString(": ")
		b.WriteString(e.Hint)
	}
	if e.Snippet != "" {
		b.WriteString("\n--- content ---\n")
		b.WriteString(e.Snippet)
	}
	return b.String()
}

func hintFor(err error, format model.Format) string {
	switch {
	case errors.Is(err, ErrInputTooLarge):
		return "split the statement or raise ingest.max_input_bytes"
	case errors.Is(err, ErrUnrecognizedFormat):
		return "no camt.053, MT940 or national marker found; add an extractor or reclassify the file"
	case format == model.FormatNational:
		return "add the file's amount, date and container tags to ingest.dialects"
	default:
		return "the file may be truncated or use an unsupported field layout"
	}
}

// snippet returns at most limit runes of s.
func snippet(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
