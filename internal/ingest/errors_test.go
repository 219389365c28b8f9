package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

func TestSnippet(t *testing.T) {
	tests := []struct {
		input string
		limit int
		want  string
	}{
		{"abcdef", 3, "abc"},
		{"abc", 10, "abc"},
		{"Račun broj", 3, "Rač"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, snippet(tt.input, tt.limit), "snippet(%q, %d)", tt.input, tt.limit)
	}
}

func TestQuarantineErrorMessage(t *testing.T) {
	qerr := &QuarantineError{
		Format:  "",
		Snippet: "hello",
		Hint:    hintFor(ErrUnrecognizedFormat, model.FormatUnknown),
		Err:     ErrUnrecognizedFormat,
	}

	assert.Equal(t, "unrecognized statement format [UNKNOWN]", qerr.Error())
	assert.True(t, errors.Is(qerr, ErrUnrecognizedFormat))
	msg := qerr.Message()
	assert.Contains(t, msg, "add an extractor")
	assert.Contains(t, msg, "--- content ---\nhello")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 10<<20, cfg.MaxInputBytes)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 500, cfg.SnippetLength)
	assert.Equal(t, 10, cfg.SuffixDigits)

	custom := Config{BatchSize: 7}.withDefaults()
	assert.Equal(t, 7, custom.BatchSize)
}
