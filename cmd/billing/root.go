package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "billing",
		Short: "Invoices and quotes for a trade business",
		Long: `Create, edit and track invoices and quotes. Documents are numbered per month and week
of their business date, e.g. INV-0325-101 is the first invoice in the first week of March 2025.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dbURL, "db", "", "Database URL or path (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&a.dbDriver, "driver", "", "Database driver: sqlite3, libsql, postgres")
	rootCmd.PersistentFlags().StringVar(&a.sequenceBackend, "sequence", "", "Sequence backend: store, redis, local")

	rootCmd.AddCommand(
		newInvoicesCmd(a),
		newQuotesCmd(a),
		newMigrateCmd(a),
	)

	return rootCmd
}
