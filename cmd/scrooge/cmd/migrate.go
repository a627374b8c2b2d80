package cmd

import (
	"fmt"

	"github.com/smallbiznis/scrooge/internal/migration"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	Long: `Apply the embedded SQL migrations on PostgreSQL, or AutoMigrate the models on
MySQL and SQLite. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogs()

		app, err := startApp(commandContext(cmd), migration.Module)
		if err != nil {
			return err
		}
		defer stopApp(app)

		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}
