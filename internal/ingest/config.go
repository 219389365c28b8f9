package ingest

import (
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/accounts"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/importer"
)

// Defaults for Config fields left at zero.
const (
	DefaultMaxInputBytes = 10 << 20
	DefaultBatchSize     = 100
	DefaultSnippetLength = 500
)

// Config carries every limit and table the orchestrator uses. It is passed
// in explicitly; nothing is read from globals.
type Config struct {
	MaxInputBytes     int
	BatchSize         int
	SnippetLength     int
	MaxFieldLength    int
	DetectPrefixBytes int
	SuffixDigits      int
	Dialects          importer.DialectTable // zero value uses importer.DefaultDialects
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.MaxInputBytes <= 0 {
		c.MaxInputBytes = DefaultMaxInputBytes
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.SnippetLength <= 0 {
		c.SnippetLength = DefaultSnippetLength
	}
	if c.MaxFieldLength <= 0 {
		c.MaxFieldLength = importer.DefaultMaxFieldLength
	}
	if c.DetectPrefixBytes <= 0 {
		c.DetectPrefixBytes = importer.DefaultDetectPrefix
	}
	if c.SuffixDigits <= 0 {
		c.SuffixDigits = accounts.DefaultSuffixDigits
	}
	return c
}
