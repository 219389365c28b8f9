package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/importer"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Database.URL = "postgres://u:p@localhost:5432/stmt"
	cfg.AuditLog = "audit/imports.csv"
	cfg.Ingest.Dialects = importer.DialectTable{
		Fields:     map[importer.Field][]string{importer.FieldAmount: {"IznosRSD"}},
		Containers: []string{"Red"},
	}

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10<<20, cfg.Ingest.MaxInputBytes)
	assert.Equal(t, 100, cfg.Ingest.BatchSize)
	assert.Equal(t, 500, cfg.Ingest.MaxFieldLength)
	assert.Equal(t, 10, cfg.Ingest.SuffixDigits)
	assert.Equal(t, "accounts/bank-accounts.csv", cfg.Accounts.File)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	yaml := `
ingest:
  batch_size: 25
  dialects:
    fields:
      line_date: [Dan]
    purpose_codes:
      - {from: 90, to: 90, type: FEE}
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Ingest.BatchSize)
	assert.Equal(t, 10<<20, cfg.Ingest.MaxInputBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	dialects := cfg.Dialects()
	lineDates := dialects.Variants(importer.FieldLineDate)
	assert.Equal(t, "DatumKnjizenja", lineDates[0], "built-in variants stay first")
	assert.Equal(t, "Dan", lineDates[len(lineDates)-1])
	last := dialects.PurposeCodes[len(dialects.PurposeCodes)-1]
	assert.Equal(t, importer.CodeRange{From: 90, To: 90, Type: model.TypeFee}, last)
}

func TestIngestConfig(t *testing.T) {
	cfg := Default()
	cfg.Ingest.BatchSize = 40
	cfg.Ingest.Dialects.Containers = []string{"Red"}

	ic := cfg.IngestConfig()
	assert.Equal(t, 40, ic.BatchSize)
	assert.Equal(t, 10<<20, ic.MaxInputBytes)
	assert.Equal(t, "Red", ic.Dialects.Containers[len(ic.Dialects.Containers)-1])
	assert.Contains(t, ic.Dialects.Containers, "Stavka")
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("ingest: [not, a, map]"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("RABBITMQ_URL", "amqp://env/")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, "amqp://env/", cfg.RabbitMQ.URL)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "empty variables keep the file value")
	assert.Equal(t, "statements", cfg.RabbitMQ.Exchange)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Ingest.BatchSize = 0
	cfg.Ingest.Dialects.PurposeCodes = []importer.CodeRange{{From: 60, To: 50}}
	cfg.Database.MinConns = 30

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_size")
	assert.Contains(t, err.Error(), "60-50")
	assert.Contains(t, err.Error(), "min_conns")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "batch_size: 100")
	assert.Contains(t, contents, "file: accounts/bank-accounts.csv")
	assert.Contains(t, contents, "shutdown_timeout: 10s")
	assert.NotContains(t, contents, "dialects:")
	assert.NotContains(t, contents, "audit_log")
}
