package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cliapi "github.com/solver492/manu-pro/internal/cli"
)

var shipmentsCmd = &cobra.Command{
	Use:     "shipments",
	Aliases: []string{"shipment", "envois"},
	Short:   "Record and list handler shipments",
}

var shipmentsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List shipments, newest first",
	Args:    cobra.NoArgs,
	RunE:    runShipmentsList,
}

var shipmentsAddCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"create"},
	Short:   "Record handlers sent to a site",
	Args:    cobra.NoArgs,
	RunE:    runShipmentsAdd,
}

var shipmentsDeleteCmd = &cobra.Command{
	Use:     "delete <shipment-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a shipment",
	Args:    cobra.ExactArgs(1),
	RunE:    runShipmentsDelete,
}

var (
	shipmentSite     string
	shipmentHandlers int64
	shipmentDate     string
)

func init() {
	rootCmd.AddCommand(shipmentsCmd)
	shipmentsCmd.AddCommand(shipmentsListCmd, shipmentsAddCmd, shipmentsDeleteCmd)

	shipmentsListCmd.Flags().StringVar(&shipmentSite, "site", "", "Only list shipments of this site")

	shipmentsAddCmd.Flags().StringVar(&shipmentSite, "site", "", "Site ID (required)")
	shipmentsAddCmd.Flags().Int64VarP(&shipmentHandlers, "handlers", "n", 0, "Number of handlers sent (required)")
	shipmentsAddCmd.Flags().StringVarP(&shipmentDate, "date", "d", "today", "Shipment date (YYYY-MM-DD)")
	shipmentsAddCmd.MarkFlagRequired("site")
	shipmentsAddCmd.MarkFlagRequired("handlers")
}

func runShipmentsList(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	shipments, err := client.ListShipments(cmd.Context(), shipmentSite)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintShipments(shipments)
}

func runShipmentsAdd(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	if shipmentHandlers <= 0 {
		err := fmt.Errorf("handlers must be greater than 0")
		formatter.PrintError(err)
		return err
	}
	date, err := parseShipmentDate(shipmentDate, time.Now())
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	shipment, err := client.CreateShipment(cmd.Context(), &cliapi.ShipmentRequest{
		SiteID:       shipmentSite,
		HandlerCount: shipmentHandlers,
		ShipmentDate: date,
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess("Shipment recorded")
	return formatter.PrintShipment(shipment)
}

func runShipmentsDelete(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	id, err := validateID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if err := client.DeleteShipment(cmd.Context(), id); err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess("Shipment deleted successfully")
	return nil
}
