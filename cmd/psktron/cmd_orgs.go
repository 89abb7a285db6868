package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/newtron-network/psktron/pkg/cli"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/util"
)

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List organizations visible to the API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, release, err := connect(ctx)
		if err != nil {
			return err
		}
		defer release()
		return listOrgs(ctx, cmd.OutOrStdout(), api)
	},
}

var networksCmd = &cobra.Command{
	Use:   "networks",
	Short: "List networks of the selected organization",
	Long: `List networks of the selected organization.

Examples:
  psktron -o "Acme Living" networks
  psktron -o "Acme Living" networks --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		org, err := requireOrg()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		api, release, err := connect(ctx)
		if err != nil {
			return err
		}
		defer release()
		return listNetworks(ctx, cmd.OutOrStdout(), api, org)
	},
}

func listOrgs(ctx context.Context, w io.Writer, api meraki.API) error {
	orgs, err := api.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("listing organizations: %w", err)
	}
	if jsonOutput {
		return printJSON(w, orgs)
	}
	if len(orgs) == 0 {
		fmt.Fprintln(w, "No organizations visible to this API key.")
		return nil
	}

	t := cli.NewTable(w, "ID", "NAME")
	for _, o := range orgs {
		t.Row(o.ID, o.Name)
	}
	t.Flush()
	return nil
}

func listNetworks(ctx context.Context, w io.Writer, api meraki.API, org string) error {
	orgs, err := api.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("listing organizations: %w", err)
	}
	orgID := ""
	for _, o := range orgs {
		if o.Name == org || o.ID == org {
			orgID = o.ID
			break
		}
	}
	if orgID == "" {
		return util.NewNotFoundError(util.KindOrganization, org, "")
	}

	nets, err := api.ListNetworks(ctx, orgID)
	if err != nil {
		return fmt.Errorf("listing networks of organization %s: %w", orgID, err)
	}
	if jsonOutput {
		return printJSON(w, nets)
	}
	if len(nets) == 0 {
		fmt.Fprintf(w, "No networks in organization %s.\n", org)
		return nil
	}

	t := cli.NewTable(w, "ID", "NAME")
	for _, n := range nets {
		t.Row(n.ID, n.Name)
	}
	t.Flush()
	return nil
}
