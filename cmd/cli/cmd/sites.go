package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cliapi "github.com/solver492/manu-pro/internal/cli"
)

var sitesCmd = &cobra.Command{
	Use:     "sites",
	Aliases: []string{"site"},
	Short:   "Manage client sites",
}

var sitesListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List client sites",
	Args:    cobra.NoArgs,
	RunE:    runSitesList,
}

var sitesGetCmd = &cobra.Command{
	Use:   "get <site-id>",
	Short: "Show a site with its statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesGet,
}

var sitesAddCmd = &cobra.Command{
	Use:     "add",
	Aliases: []string{"create"},
	Short:   "Add a client site",
	Args:    cobra.NoArgs,
	RunE:    runSitesAdd,
}

var sitesUpdateCmd = &cobra.Command{
	Use:   "update <site-id>",
	Short: "Update the name, address or status of a site",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitesUpdate,
}

var sitesDeleteCmd = &cobra.Command{
	Use:     "delete <site-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a site and all of its shipments",
	Args:    cobra.ExactArgs(1),
	RunE:    runSitesDelete,
}

var sitesStatusCmd = &cobra.Command{
	Use:       "status <site-id> <active|inactive>",
	Short:     "Activate or deactivate a site",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"active", "inactive"},
	RunE:      runSitesStatus,
}

var (
	sitesStatusFilter string
	siteName          string
	siteAddress       string
	siteStatus        string
	siteDeleteYes     bool
)

func init() {
	rootCmd.AddCommand(sitesCmd)
	sitesCmd.AddCommand(sitesListCmd, sitesGetCmd, sitesAddCmd, sitesUpdateCmd, sitesDeleteCmd, sitesStatusCmd)

	sitesListCmd.Flags().StringVar(&sitesStatusFilter, "status", "", "Only list sites with this status (active, inactive)")

	for _, c := range []*cobra.Command{sitesAddCmd, sitesUpdateCmd} {
		c.Flags().StringVarP(&siteName, "name", "n", "", "Site name")
		c.Flags().StringVarP(&siteAddress, "address", "a", "", "Site address")
		c.Flags().StringVar(&siteStatus, "status", "", "Site status (active, inactive)")
	}
	sitesAddCmd.MarkFlagRequired("name")

	sitesDeleteCmd.Flags().BoolVarP(&siteDeleteYes, "yes", "y", false, "Do not ask for confirmation")
}

func runSitesList(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	sites, err := client.ListSites(cmd.Context(), sitesStatusFilter)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintSites(sites)
}

func runSitesGet(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	id, err := validateID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	detail, err := client.GetSite(cmd.Context(), id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	return formatter.PrintSiteDetail(detail)
}

func runSitesAdd(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	site, err := client.CreateSite(cmd.Context(), &cliapi.SiteRequest{
		Name:    siteName,
		Address: siteAddress,
		Status:  siteStatus,
	})
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess("Site added successfully")
	return formatter.PrintSite(site)
}

func runSitesUpdate(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	id, err := validateID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	// PUT replaces every field, so unset flags keep the current values
	current, err := client.GetSite(cmd.Context(), id)
	if err != nil {
		formatter.PrintError(err)
		return err
	}
	req := &cliapi.SiteRequest{
		Name:    current.Site.Name,
		Address: current.Site.Address,
		Status:  string(current.Site.Status),
	}
	if cmd.Flags().Changed("name") {
		req.Name = siteName
	}
	if cmd.Flags().Changed("address") {
		req.Address = siteAddress
	}
	if cmd.Flags().Changed("status") {
		req.Status = siteStatus
	}

	site, err := client.UpdateSite(cmd.Context(), id, req)
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess("Site updated successfully")
	return formatter.PrintSite(site)
}

func runSitesDelete(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	id, err := validateID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if !siteDeleteYes {
		if !confirm(cmd, fmt.Sprintf("Delete site %s and all of its shipments?", id)) {
			formatter.PrintInfo("Delete cancelled")
			return nil
		}
	}

	if err := client.DeleteSite(cmd.Context(), id); err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess("Site deleted successfully")
	return nil
}

func runSitesStatus(cmd *cobra.Command, args []string) error {
	_, formatter, client, err := initializeClient(cmd)
	if err != nil {
		return err
	}

	id, err := validateID(args[0])
	if err != nil {
		formatter.PrintError(err)
		return err
	}
	status, err := validateStatus(args[1])
	if err != nil {
		formatter.PrintError(err)
		return err
	}

	if err := client.SetSiteStatus(cmd.Context(), id, status); err != nil {
		formatter.PrintError(err)
		return err
	}

	formatter.PrintSuccess(fmt.Sprintf("Site %s is now %s", id, status))
	return nil
}
