package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/store/postgres"
)

func newMigrateCommand(flags *globalFlags) *cobra.Command {
	var seedAccounts bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the PostgreSQL schema",
		Long: `Create the PostgreSQL schema. The schema statements are idempotent, so
migrate is safe to run against an existing database. With --seed-accounts
the registered accounts file is upserted into bank_accounts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if a.cfg.Database.URL == "" {
				return fmt.Errorf("database.url is not set (config file or DATABASE_URL)")
			}

			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, a.cfg.Database.URL, postgres.PoolConfig{
				MaxConns: a.cfg.Database.MaxConns,
				MinConns: a.cfg.Database.MinConns,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")

			if !seedAccounts {
				return nil
			}
			reg, err := a.accountsRegistry()
			if err != nil {
				return err
			}
			accts := reg.All()
			if err := postgres.New(pool).UpsertAccounts(ctx, accts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d bank accounts\n", len(accts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&seedAccounts, "seed-accounts", false, "upsert the accounts file into the database")
	return cmd
}
