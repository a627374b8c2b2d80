package cmd

import (
	serviceregistrydomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Manage the services pricing objects are billed to",
}

var (
	serviceName   string
	serviceSymbol string
)

var servicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a service",
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogs()
		ctx := commandContext(cmd)

		var registry serviceregistrydomain.Registry
		app, err := startApp(ctx, fx.Populate(&registry))
		if err != nil {
			return err
		}
		defer stopApp(app)

		svc, err := registry.Create(ctx, serviceregistrydomain.CreateRequest{
			Name:   serviceName,
			Symbol: serviceSymbol,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), svc)
	},
}

var servicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List services ordered by symbol",
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogs()
		ctx := commandContext(cmd)

		var registry serviceregistrydomain.Registry
		app, err := startApp(ctx, fx.Populate(&registry))
		if err != nil {
			return err
		}
		defer stopApp(app)

		services, err := registry.List(ctx)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), services)
	},
}

func init() {
	servicesCmd.AddCommand(servicesCreateCmd)
	servicesCmd.AddCommand(servicesListCmd)

	servicesCreateCmd.Flags().StringVar(&serviceName, "name", "", "display name")
	servicesCreateCmd.Flags().StringVar(&serviceSymbol, "symbol", "", "unique symbol, stored lower case")
	servicesCreateCmd.MarkFlagRequired("name")
	servicesCreateCmd.MarkFlagRequired("symbol")
}
