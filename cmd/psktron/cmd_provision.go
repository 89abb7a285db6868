package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/newtron-network/psktron/pkg/cli"
	"github.com/newtron-network/psktron/pkg/config"
	"github.com/newtron-network/psktron/pkg/credential"
	"github.com/newtron-network/psktron/pkg/export"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/provision"
	"github.com/newtron-network/psktron/pkg/session"
	"github.com/newtron-network/psktron/pkg/units"
	"github.com/newtron-network/psktron/pkg/util"
)

var (
	provPrefix  string
	provUnits   string
	provFile    string
	provColumn  string
	provPolicy  string
	provOut     string
	provS3Key   string
	provWorkers int
)

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create one identity PSK per unit",
	Long: `Create one identity PSK per unit on the configured SSID, bound to the
configured group policy.

Units come from --units (comma or newline separated) or --file (CSV or JSON
with a "unit" column). Without -x the run is previewed: names are shown,
nothing is created and no passphrases are generated.

With -x every unit gets exactly one create call. A failure for one unit does
not affect the others. Results, including passphrases, are written as CSV
to --out (default results-<run id>.csv) or to S3 with --s3-key.

Examples:
  psktron -o "Acme Living" -n "Tower A" provision --prefix CC --units "101,102A"
  psktron -o "Acme Living" -n "Tower A" provision --prefix CC --file units.csv -x
  psktron -o "Acme Living" -n "Tower A" provision --prefix CC --file units.csv -x --policy words --out -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel, err := requireSelection()
		if err != nil {
			return err
		}
		req, err := buildRequest(cfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		api, release, err := connect(ctx)
		if err != nil {
			return err
		}
		defer release()

		return runProvision(ctx, cmd.OutOrStdout(), api, sel, req)
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provPrefix, "prefix", "", "Credential name prefix (default from settings)")
	provisionCmd.Flags().StringVar(&provUnits, "units", "", "Unit list, comma or newline separated")
	provisionCmd.Flags().StringVar(&provFile, "file", "", "CSV or JSON file with a unit column")
	provisionCmd.Flags().StringVar(&provColumn, "column", "", "Unit column name in --file (default from config)")
	provisionCmd.Flags().StringVar(&provPolicy, "policy", "", "Passphrase policy: random or words (default from config)")
	provisionCmd.Flags().StringVar(&provOut, "out", "", "Result CSV path, - for stdout")
	provisionCmd.Flags().StringVar(&provS3Key, "s3-key", "", "Upload results to this key in the configured S3 bucket")
	provisionCmd.Flags().IntVar(&provWorkers, "workers", 0, "Concurrent create calls (default from config)")
	provisionCmd.MarkFlagsMutuallyExclusive("units", "file")
	provisionCmd.MarkFlagsMutuallyExclusive("out", "s3-key")
}

// provisionRequest is everything a run needs besides the selection.
type provisionRequest struct {
	Prefix  string
	Units   []string
	Policy  *credential.Policy
	Workers int
	Sink    func(ctx context.Context, runID string) (export.Sink, error)
}

// buildRequest validates all operator input before anything touches the
// Dashboard.
func buildRequest(c *config.Config) (*provisionRequest, error) {
	prefix := provPrefix
	if prefix == "" && userSettings != nil {
		prefix = userSettings.Prefix
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("%w: prefix required: use --prefix or 'psktron settings set prefix <prefix>'", util.ErrInvalidConfig)
	}

	column := provColumn
	if column == "" {
		column = c.Input.UnitColumn
	}
	normalizer := units.New(column)

	var list []string
	switch {
	case provFile != "":
		var err error
		if list, err = normalizer.FromFile(provFile); err != nil {
			return nil, err
		}
	case provUnits != "":
		list = normalizer.FromText(provUnits)
	default:
		return nil, fmt.Errorf("%w: units required: use --units or --file", util.ErrInvalidConfig)
	}
	if len(list) == 0 {
		return nil, util.ErrNoUnits
	}

	policy, err := c.PolicyFor(provPolicy, nil)
	if err != nil {
		return nil, err
	}

	workers := c.Provision.Workers
	if provWorkers > 0 {
		workers = provWorkers
	}

	return &provisionRequest{
		Prefix:  prefix,
		Units:   list,
		Policy:  policy,
		Workers: workers,
		Sink:    sinkFor(c),
	}, nil
}

// sinkFor picks where results go once the run id is known.
func sinkFor(c *config.Config) func(ctx context.Context, runID string) (export.Sink, error) {
	return func(ctx context.Context, runID string) (export.Sink, error) {
		if provS3Key != "" {
			s3 := c.Export.S3
			return export.NewS3Sink(ctx, export.S3Options{
				Endpoint:  s3.Endpoint,
				Region:    s3.Region,
				Bucket:    s3.Bucket,
				AccessKey: lookupEnv(s3.AccessKeyEnv),
				SecretKey: lookupEnv(s3.SecretKeyEnv),
			}, provS3Key)
		}
		path := provOut
		if path == "" {
			path = "results-" + runID + ".csv"
		}
		return export.NewFileSink(path), nil
	}
}

// runProvision resolves the selection, then previews or executes the run.
// Resolution errors stop here before any create call.
func runProvision(ctx context.Context, w io.Writer, api meraki.API, sel session.Selection, req *provisionRequest) error {
	rc, err := resolveSelection(ctx, api, sel)
	if err != nil {
		return err
	}
	for _, warning := range rc.Warnings {
		fmt.Fprintln(w, yellow("Warning: ")+warning)
	}

	planned := provision.Plan(req.Units, req.Prefix, req.Policy.Namer)
	for _, name := range provision.DuplicateNames(planned) {
		fmt.Fprintln(w, yellow("Warning: ")+fmt.Sprintf("credential name '%s' appears more than once", name))
	}

	if !executeMode {
		if jsonOutput {
			return printJSON(w, planned)
		}
		fmt.Fprintln(w, bold(fmt.Sprintf("Provisioning %d unit(s) on %s / SSID '%s' with group policy '%s':",
			len(planned), rc.NetworkName, rc.SSIDName, rc.GroupPolicyName)))
		fmt.Fprintln(w)
		t := cli.NewTable(w, "#", "UNIT", "NAME").Indent("  ")
		for _, p := range planned {
			t.Row(fmt.Sprintf("%d", p.Index+1), p.Unit, p.Name)
		}
		t.Flush()
		printDryRunNotice(w)
		return nil
	}

	// The sink must be usable before any passphrase exists on the Dashboard.
	runID := uuid.NewString()
	sink, err := req.Sink(ctx, runID)
	if err != nil {
		return fmt.Errorf("%w: result destination: %v", util.ErrInvalidConfig, err)
	}
	if err := sink.Check(ctx); err != nil {
		return fmt.Errorf("%w: result destination: %v", util.ErrInvalidConfig, err)
	}

	report, err := provision.New(api, provision.WithWorkers(req.Workers), provision.WithRunID(runID)).
		Run(ctx, rc, req.Units, req.Prefix, req.Policy)
	if err != nil {
		return err
	}

	data, err := export.Render(report.Outcomes)
	if err != nil {
		return err
	}
	if err := sink.Put(ctx, data); err != nil {
		fmt.Fprintln(w, red(fmt.Sprintf("Could not write results to %s; they are printed below and will not be shown again.", sink)))
		fmt.Fprintln(w)
		w.Write(data)
		return fmt.Errorf("writing results to %s: %w", sink, err)
	}

	if jsonOutput {
		if err := printJSON(w, report); err != nil {
			return err
		}
	} else {
		printReport(w, report)
		fmt.Fprintf(w, "\nResults written to %s\n", sink)
	}

	if report.Failed() {
		return errRunFailed
	}
	return nil
}

// printReport shows outcomes without passphrases; the fingerprint matches
// the one in the log.
func printReport(w io.Writer, report *provision.Report) {
	t := cli.NewTable(w, "UNIT", "NAME", "PSK", "STATUS")
	for _, o := range report.Outcomes {
		t.Row(o.Unit, o.CredentialName, dim(o.Fingerprint), cli.Status(o.Status.OK(), cli.Truncate(strings.Join(strings.Fields(o.Status.String()), " "), 80)))
	}
	t.Flush()

	succeeded, failed := report.Summary()
	summary := fmt.Sprintf("\n%d succeeded, %d failed (run %s)", succeeded, failed, report.RunID)
	if failed > 0 {
		fmt.Fprintln(w, red(summary))
	} else {
		fmt.Fprintln(w, green(summary))
	}
}

func lookupEnv(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}
