package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/export"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/id"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/ingest"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/logger"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store"
)

type ingestOptions struct {
	tenantID   string
	importID   string
	accountID  string
	exportPath string
}

func newIngestCommand(flags *globalFlags) *cobra.Command {
	var opts ingestOptions

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Parse a statement file and store its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := logger.WithContext(cmd.Context(), a.log)
			return runIngest(ctx, a, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.tenantID, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&opts.importID, "import-id", "", "import ID (generated when empty)")
	cmd.Flags().StringVar(&opts.accountID, "account", "", "bank account ID, skipping account resolution")
	cmd.Flags().StringVar(&opts.exportPath, "export", "", "write the stored lines to this CSV file")

	return cmd
}

func runIngest(ctx context.Context, a *app, path string, opts ingestOptions, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if opts.importID == "" {
		opts.importID = id.NewImportID()
	}

	backend, err := a.openBackend(ctx)
	if err != nil {
		return err
	}
	defer backend.Close()

	svc, closePub, err := a.service(backend)
	if err != nil {
		return err
	}
	defer closePub()

	if err := svc.Accept(ctx, opts.tenantID, opts.importID); err != nil {
		return err
	}
	res, err := svc.Ingest(ctx, ingest.Request{
		RawContent:            string(data),
		ImportID:              opts.importID,
		TenantID:              opts.tenantID,
		ExplicitBankAccountID: opts.accountID,
	})
	if err != nil {
		var qerr *ingest.QuarantineError
		if errors.As(err, &qerr) {
			fmt.Fprintf(out, "Import %s quarantined (%s)\n", opts.importID, qerr.Format.Label())
			fmt.Fprintf(out, "  hint: %s\n", qerr.Hint)
		}
		return err
	}

	fmt.Fprintf(out, "Import %s parsed as %s: %d transactions\n", opts.importID, res.Format, res.TransactionCount)
	fmt.Fprintf(out, "  statement: %s (number %q)\n", res.StatementID, res.StatementNumber)
	if res.BankAccountID != "" {
		fmt.Fprintf(out, "  account:   %s via %s\n", res.BankAccountID, res.AccountResolution)
	} else {
		fmt.Fprintf(out, "  account:   %q not resolved\n", res.AccountIdentifier)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  warning:   %s\n", w)
	}

	if opts.exportPath != "" {
		if err := exportLines(ctx, backend, opts.tenantID, res.StatementID, opts.exportPath); err != nil {
			return err
		}
		fmt.Fprintf(out, "  exported:  %s\n", opts.exportPath)
	}
	return nil
}

func exportLines(ctx context.Context, r store.Reader, tenantID, statementID, path string) error {
	lines, err := r.ListLines(ctx, tenantID, statementID)
	if err != nil {
		return fmt.Errorf("listing lines: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := export.WriteLines(f, lines); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}
