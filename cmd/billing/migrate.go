package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	var showConfig bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Create the document, payment and sequence tables if they do not exist. Safe to run repeatedly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showConfig && a.cfg != nil {
				a.cfg.Dump()
			}
			if err := a.store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			fmt.Println("Database schema is up to date.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showConfig, "verbose", "v", false, "Print the resolved configuration first")
	return cmd
}
