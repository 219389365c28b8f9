package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/accounts"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/auditlog"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/config"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/events"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/ingest"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/logger"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store/memory"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store/postgres"
)

// app is the loaded configuration plus the logger built from it.
type app struct {
	cfg *config.Config
	dir string // directory of the config file; relative paths resolve against it
	log zerolog.Logger
}

// loadApp reads the config file (defaults when it does not exist),
// applies environment overrides and builds the logger.
func loadApp(flags *globalFlags, stderr io.Writer) (*app, error) {
	path, err := filepath.Abs(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = config.Default()
	} else if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.Configure(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, dir: filepath.Dir(path), log: log}, nil
}

// path resolves p against the config directory.
func (a *app) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(a.dir, p)
}

// accountsRegistry loads the registered accounts file. A missing file is an
// empty registry.
func (a *app) accountsRegistry() (*accounts.Registry, error) {
	reg, err := accounts.Load(a.path(a.cfg.Accounts.File))
	if errors.Is(err, os.ErrNotExist) {
		a.log.Warn().Str("file", a.cfg.Accounts.File).Msg("bank accounts file not found; no accounts registered")
		return accounts.NewRegistry(nil), nil
	}
	return reg, err
}

// openBackend opens PostgreSQL when a database URL is configured and the
// in-memory store otherwise.
func (a *app) openBackend(ctx context.Context) (store.Backend, error) {
	if a.cfg.Database.URL == "" {
		reg, err := a.accountsRegistry()
		if err != nil {
			return nil, err
		}
		a.log.Debug().Int("accounts", len(reg.All())).Msg("using in-memory store")
		return memory.New(reg), nil
	}

	pool, err := postgres.NewPool(ctx, a.cfg.Database.URL, postgres.PoolConfig{
		MaxConns: a.cfg.Database.MaxConns,
		MinConns: a.cfg.Database.MinConns,
	})
	if err != nil {
		return nil, err
	}
	return postgres.New(pool), nil
}

// publisher combines the configured event sinks. The returned close
// function is never nil.
func (a *app) publisher() (ingest.Publisher, func(), error) {
	var pubs ingest.Fanout
	closeFn := func() {}

	if a.cfg.AuditLog != "" {
		pubs = append(pubs, &auditlog.Log{Path: a.path(a.cfg.AuditLog)})
	}
	if a.cfg.RabbitMQ.URL != "" {
		rmq, err := events.NewRabbitMQPublisher(a.cfg.RabbitMQ.URL, a.cfg.RabbitMQ.Exchange, a.cfg.RabbitMQ.RoutingKey)
		if err != nil {
			return nil, closeFn, err
		}
		pubs = append(pubs, rmq)
		closeFn = func() {
			if err := rmq.Close(); err != nil {
				a.log.Warn().Err(err).Msg("closing RabbitMQ publisher")
			}
		}
	}

	if len(pubs) == 0 {
		return nil, closeFn, nil
	}
	return pubs, closeFn, nil
}

// service builds the orchestrator over backend with the configured publishers.
func (a *app) service(backend store.Backend) (*ingest.Service, func(), error) {
	pub, closeFn, err := a.publisher()
	if err != nil {
		return nil, closeFn, err
	}
	var opts []ingest.Option
	if pub != nil {
		opts = append(opts, ingest.WithPublisher(pub))
	}
	return ingest.NewService(backend, a.cfg.IngestConfig(), opts...), closeFn, nil
}
