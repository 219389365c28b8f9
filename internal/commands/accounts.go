package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/businesstalksnetwork/erp-ai-assistant-sub005/internal/model"
)

func newAccountsCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage registered bank accounts",
	}
	cmd.AddCommand(newAccountsListCommand(flags), newAccountsAddCommand(flags))
	return cmd
}

func newAccountsListCommand(flags *globalFlags) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered bank accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			reg, err := a.accountsRegistry()
			if err != nil {
				return err
			}

			accts := reg.All()
			if tenantID != "" {
				accts = reg.ByTenant(tenantID)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTENANT\tIBAN\tNUMBER\tCURRENCY\tNAME")
			for _, acct := range accts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					acct.ID, acct.TenantID, acct.IBAN, acct.AccountNumber, acct.Currency, acct.Name)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "only list this tenant's accounts")
	return cmd
}

func newAccountsAddCommand(flags *globalFlags) *cobra.Command {
	var acct model.BankAccount

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a bank account in the accounts file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if acct.IBAN == "" && acct.AccountNumber == "" {
				return fmt.Errorf("one of --iban or --number is required")
			}

			reg, err := a.accountsRegistry()
			if err != nil {
				return err
			}
			if err := reg.Add(acct); err != nil {
				return err
			}
			if err := reg.Save(a.path(a.cfg.Accounts.File)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s for tenant %s\n", acct.ID, acct.TenantID)
			return nil
		},
	}

	cmd.Flags().StringVar(&acct.ID, "id", "", "account ID (required)")
	cmd.Flags().StringVar(&acct.TenantID, "tenant", "", "tenant ID (required)")
	cmd.Flags().StringVar(&acct.Name, "name", "", "display name")
	cmd.Flags().StringVar(&acct.IBAN, "iban", "", "IBAN")
	cmd.Flags().StringVar(&acct.AccountNumber, "number", "", "local account number")
	cmd.Flags().StringVar(&acct.Currency, "currency", "", "ISO currency code")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
