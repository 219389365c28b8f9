package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/api"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/logger"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store/postgres"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	var (
		addr    string
		migrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the statement import HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx = logger.WithContext(ctx, a.log)

			backend, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			if migrate {
				pg, ok := backend.(*postgres.Store)
				if !ok {
					return fmt.Errorf("--migrate requires database.url")
				}
				if err := pg.Migrate(ctx); err != nil {
					return err
				}
			}

			svc, closePub, err := a.service(backend)
			if err != nil {
				return err
			}
			defer closePub()

			handler := api.NewHandler(svc, backend, a.cfg.Ingest.MaxInputBytes)
			return serveHTTP(ctx, a, handler.Router(a.log))
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the database schema before serving")
	return cmd
}

// serveHTTP runs the server until ctx is cancelled, then shuts it down
// within the configured timeout.
func serveHTTP(ctx context.Context, a *app, h http.Handler) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTP.Addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
