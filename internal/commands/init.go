package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/accounts"
	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/config"
)

func newInitCommand() *cobra.Command {
	var databaseURL string
	var auditLog bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a stmtingest.yaml and an empty bank accounts file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, databaseURL, auditLog); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized stmtingest project at %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection string (empty uses the in-memory store)")
	cmd.Flags().BoolVar(&auditLog, "audit-log", true, "record finished imports in logs/imports.csv")

	return cmd
}

func runInit(dir, databaseURL string, auditLog bool) error {
	configPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}

	for _, d := range []string{"accounts", "logs", "exports"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Database.URL = databaseURL
	if auditLog {
		cfg.AuditLog = "logs/imports.csv"
	}
	if err := config.Save(configPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := accounts.NewRegistry(nil).Save(filepath.Join(dir, cfg.Accounts.File)); err != nil {
		return fmt.Errorf("writing bank accounts: %w", err)
	}

	gitignore := "exports/\nlogs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
