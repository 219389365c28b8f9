package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/accounts"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/importer"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/ingest"
)

// FileName is the default configuration file name.
const FileName = "stmtingest.yaml"

// Config represents the top-level stmtingest.yaml configuration.
type Config struct {
	Ingest   IngestConfig   `yaml:"ingest"`
	Accounts AccountsConfig `yaml:"accounts"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	AuditLog string         `yaml:"audit_log,omitempty"`
}

// IngestConfig holds the limits and tables handed to the orchestrator.
type IngestConfig struct {
	MaxInputBytes     int `yaml:"max_input_bytes"`
	BatchSize         int `yaml:"batch_size"`
	MaxFieldLength    int `yaml:"max_field_length"`
	SnippetLength     int `yaml:"snippet_length"`
	DetectPrefixBytes int `yaml:"detect_prefix_bytes"`
	SuffixDigits      int `yaml:"suffix_digits"`
	// Dialects are appended after the built-in national dialect table.
	Dialects importer.DialectTable `yaml:"dialects,omitempty"`
}

// AccountsConfig points at the registered bank accounts file used when no
// database is configured.
type AccountsConfig struct {
	File string `yaml:"file"`
}

// DatabaseConfig configures the PostgreSQL store. An empty URL selects the
// in-memory store.
type DatabaseConfig struct {
	URL      string `yaml:"url,omitempty"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// RabbitMQConfig configures ingestion event publishing. An empty URL
// disables publishing.
type RabbitMQConfig struct {
	URL        string `yaml:"url,omitempty"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// Load reads a stmtingest.yaml file from disk. Unset values keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			MaxInputBytes:     10 << 20,
			BatchSize:         100,
			MaxFieldLength:    importer.DefaultMaxFieldLength,
			SnippetLength:     500,
			DetectPrefixBytes: importer.DefaultDetectPrefix,
			SuffixDigits:      accounts.DefaultSuffixDigits,
		},
		Accounts: AccountsConfig{
			File: "accounts/" + accounts.FileName,
		},
		Database: DatabaseConfig{
			MaxConns: 25,
			MinConns: 5,
		},
		RabbitMQ: RabbitMQConfig{
			Exchange:   "statements",
			RoutingKey: "statements.import",
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ApplyEnv overrides deployment settings from the environment.
func (c *Config) ApplyEnv() {
	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.RabbitMQ.URL = getEnv("RABBITMQ_URL", c.RabbitMQ.URL)
	c.RabbitMQ.Exchange = getEnv("RABBITMQ_EXCHANGE", c.RabbitMQ.Exchange)
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate reports settings the orchestrator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Ingest.MaxInputBytes <= 0 {
		errs = append(errs, errors.New("ingest.max_input_bytes must be positive"))
	}
	if c.Ingest.BatchSize <= 0 {
		errs = append(errs, errors.New("ingest.batch_size must be positive"))
	}
	if c.Ingest.MaxFieldLength < 0 || c.Ingest.SnippetLength < 0 {
		errs = append(errs, errors.New("ingest length limits must not be negative"))
	}
	for _, r := range c.Ingest.Dialects.PurposeCodes {
		if r.From > r.To || r.From < 0 || r.To > 99 {
			errs = append(errs, fmt.Errorf("purpose code range %d-%d is invalid", r.From, r.To))
		}
	}
	if c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, errors.New("database.min_conns exceeds max_conns"))
	}
	return errors.Join(errs...)
}

// Dialects returns the built-in national dialect table extended by the
// configured variants.
func (c *Config) Dialects() importer.DialectTable {
	return importer.DefaultDialects().Merge(c.Ingest.Dialects)
}

// IngestConfig converts the ingest section into the orchestrator's Config.
func (c *Config) IngestConfig() ingest.Config {
	return ingest.Config{
		MaxInputBytes:     c.Ingest.MaxInputBytes,
		BatchSize:         c.Ingest.BatchSize,
		SnippetLength:     c.Ingest.SnippetLength,
		MaxFieldLength:    c.Ingest.MaxFieldLength,
		DetectPrefixBytes: c.Ingest.DetectPrefixBytes,
		SuffixDigits:      c.Ingest.SuffixDigits,
		Dialects:          c.Dialects(),
	}
}

// getEnv retrieves an environment variable or returns a default value if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
