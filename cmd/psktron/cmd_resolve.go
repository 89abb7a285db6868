package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/newtron-network/psktron/pkg/cli"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/resolver"
	"github.com/newtron-network/psktron/pkg/session"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve the SSID and group policy of the selected network",
	Long: `Resolve the configured SSID and group policy names to Dashboard ids.

Nothing is written. Use this to check a network before provisioning.

Examples:
  psktron -o "Acme Living" -n "Tower A" resolve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := requireSelection()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		api, release, err := connect(ctx)
		if err != nil {
			return err
		}
		defer release()

		rc, err := resolveSelection(ctx, api, sel)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), rc)
		}
		printContext(cmd.OutOrStdout(), rc)
		return nil
	},
}

func requireSelection() (session.Selection, error) {
	org, err := requireOrg()
	if err != nil {
		return session.Selection{}, err
	}
	network, err := requireNetwork()
	if err != nil {
		return session.Selection{}, err
	}
	return session.Selection{Organization: org, Network: network}, nil
}

func resolveSelection(ctx context.Context, api meraki.API, sel session.Selection) (*resolver.Context, error) {
	s := session.New(api, cfg.ResolverTarget(), cfg.Resolve.StrictNames)
	s.Select(sel)
	return s.Resolve(ctx)
}

func printContext(w io.Writer, rc *resolver.Context) {
	const width = 16
	fmt.Fprintf(w, "%s %s (%s)\n", cli.DotPad("Organization", width), rc.OrganizationName, rc.OrganizationID)
	fmt.Fprintf(w, "%s %s (%s)\n", cli.DotPad("Network", width), rc.NetworkName, rc.NetworkID)
	fmt.Fprintf(w, "%s %s (number %d)\n", cli.DotPad("SSID", width), rc.SSIDName, rc.SSIDNumber)
	fmt.Fprintf(w, "%s %s (%s)\n", cli.DotPad("Group policy", width), rc.GroupPolicyName, rc.GroupPolicyID)
	for _, warning := range rc.Warnings {
		fmt.Fprintln(w, yellow("Warning: ")+warning)
	}
}
