// Package cmd provides the CLI commands for scrooge.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/scrooge/internal/editorcontext"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	editorID int64
)

var rootCmd = &cobra.Command{
	Use:   "scrooge",
	Short: "Track pricing objects and their daily cost snapshots",
	Long: `scrooge keeps the catalogue of pricing objects (assets, virtual machines,
OpenStack tenants, IP addresses) and records one immutable cost snapshot per
object per day.

Examples:
  scrooge migrate
  scrooge serve
  scrooge snapshot --date 2024-03-01`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			return os.Setenv("SCROOGE_CONFIG_FILE", cfgFile)
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json) overlaid before environment variables")
	rootCmd.PersistentFlags().Int64Var(&editorID, "editor", 0, "user id stamped as created_by/modified_by on writes")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(objectsCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(versionCmd)
}

// commandContext carries the editor identity given on the command line.
func commandContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if editorID > 0 {
		ctx = editorcontext.WithEditorID(ctx, snowflake.ID(editorID))
	}
	return ctx
}

// quietLogs sends logs to stderr so command output on stdout stays parseable.
func quietLogs() {
	if strings.TrimSpace(os.Getenv("LOG_OUTPUT")) == "" {
		_ = os.Setenv("LOG_OUTPUT", "stderr")
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scrooge version %s\n", version)
	},
}

var version = "0.1.0"
