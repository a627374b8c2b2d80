package cmd

import (
	"context"
	"errors"
	"fmt"

	pricingobjectdomain "github.com/smallbiznis/scrooge/internal/pricingobject/domain"
	serviceregistrydomain "github.com/smallbiznis/scrooge/internal/serviceregistry/domain"
	"github.com/smallbiznis/scrooge/pkg/db/pagination"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Manage pricing objects",
}

var objectFlags struct {
	name          string
	typ           string
	service       string
	remarks       string
	assetID       int64
	sn            string
	barcode       string
	deviceID      int64
	virtualDevice int64
	pageToken     string
	pageSize      int
}

var objectsRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a pricing object together with its type extension",
	Long: `Create a pricing object and, for assets and virtuals, its extension in one
transaction. Assets need --asset-id; virtuals need --vm-device-id.`,
	Example: `  scrooge objects register --name srv-01 --type asset --service backup --asset-id 1001 --sn SN1
  scrooge objects register --name vm-01 --type virtual --service backup --vm-device-id 501`,
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogs()
		ctx := commandContext(cmd)

		typ, err := pricingobjectdomain.ParseType(objectFlags.typ)
		if err != nil {
			return err
		}

		var (
			objects  pricingobjectdomain.Service
			registry serviceregistrydomain.Registry
		)
		app, err := startApp(ctx, fx.Populate(&objects, &registry))
		if err != nil {
			return err
		}
		defer stopApp(app)

		svc, err := registry.GetBySymbol(ctx, objectFlags.service)
		if err != nil {
			return fmt.Errorf("service %q: %w", objectFlags.service, err)
		}

		req := pricingobjectdomain.RegisterRequest{
			CreateRequest: pricingobjectdomain.CreateRequest{
				Name:      objectFlags.name,
				Type:      typ,
				ServiceID: svc.ID,
				Remarks:   objectFlags.remarks,
			},
		}
		switch typ {
		case pricingobjectdomain.TypeAsset:
			req.Asset = &pricingobjectdomain.AssetFields{
				SN:      objectFlags.sn,
				Barcode: objectFlags.barcode,
				AssetID: objectFlags.assetID,
			}
			if objectFlags.deviceID > 0 {
				deviceID := objectFlags.deviceID
				req.Asset.DeviceID = &deviceID
			}
		case pricingobjectdomain.TypeVirtual:
			if objectFlags.virtualDevice <= 0 {
				return errors.New("--vm-device-id is required for virtual pricing objects")
			}
			deviceID := objectFlags.virtualDevice
			req.VirtualDeviceID = &deviceID
		}

		registered, err := objects.Register(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), registered)
	},
}

var objectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pricing objects, optionally by service symbol and type",
	RunE: func(cmd *cobra.Command, args []string) error {
		quietLogs()
		ctx := commandContext(cmd)

		var (
			objects  pricingobjectdomain.Service
			registry serviceregistrydomain.Registry
		)
		app, err := startApp(ctx, fx.Populate(&objects, &registry))
		if err != nil {
			return err
		}
		defer stopApp(app)

		req, err := listRequest(ctx, registry)
		if err != nil {
			return err
		}
		resp, err := objects.List(ctx, req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), resp)
	},
}

func listRequest(ctx context.Context, registry serviceregistrydomain.Registry) (pricingobjectdomain.ListRequest, error) {
	req := pricingobjectdomain.ListRequest{
		Pagination: pagination.Pagination{
			PageToken: objectFlags.pageToken,
			PageSize:  objectFlags.pageSize,
		},
	}
	if objectFlags.service != "" {
		svc, err := registry.GetBySymbol(ctx, objectFlags.service)
		if err != nil {
			return req, fmt.Errorf("service %q: %w", objectFlags.service, err)
		}
		req.ServiceID = &svc.ID
	}
	if objectFlags.typ != "" {
		typ, err := pricingobjectdomain.ParseType(objectFlags.typ)
		if err != nil {
			return req, err
		}
		req.Type = &typ
	}
	return req, nil
}

func init() {
	objectsCmd.AddCommand(objectsRegisterCmd)
	objectsCmd.AddCommand(objectsListCmd)

	f := objectsRegisterCmd.Flags()
	f.StringVar(&objectFlags.name, "name", "", "pricing object name")
	f.StringVar(&objectFlags.typ, "type", "", "asset, virtual, tenant or ip_address")
	f.StringVar(&objectFlags.service, "service", "", "symbol of the owning service")
	f.StringVar(&objectFlags.remarks, "remarks", "", "free-form remarks")
	f.Int64Var(&objectFlags.assetID, "asset-id", 0, "inventory asset id (assets)")
	f.StringVar(&objectFlags.sn, "sn", "", "serial number (assets)")
	f.StringVar(&objectFlags.barcode, "barcode", "", "barcode (assets)")
	f.Int64Var(&objectFlags.deviceID, "device-id", 0, "device id (assets)")
	f.Int64Var(&objectFlags.virtualDevice, "vm-device-id", 0, "device id of the virtual machine (virtuals)")
	objectsRegisterCmd.MarkFlagRequired("name")
	objectsRegisterCmd.MarkFlagRequired("type")
	objectsRegisterCmd.MarkFlagRequired("service")

	l := objectsListCmd.Flags()
	l.StringVar(&objectFlags.service, "service", "", "only objects of this service symbol")
	l.StringVar(&objectFlags.typ, "type", "", "only objects of this type")
	l.StringVar(&objectFlags.pageToken, "page-token", "", "next_page_token of a previous page")
	l.IntVar(&objectFlags.pageSize, "page-size", 50, "objects per page")
}
