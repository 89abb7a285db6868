// Psktron - Meraki identity PSK provisioning tool
//
// Creates one identity PSK per apartment unit on a shared SSID, each bound to
// the same group policy, and writes the resulting credentials to CSV.
//
// Context flags select the organization and network; defaults come from
// ~/.psktron/settings.json:
//
//	-o, --org       Organization name (or: psktron settings set organization <name>)
//	-n, --network   Network name      (or: psktron settings set network <name>)
//
// Write commands preview by default; -x executes.
//
// Examples:
//
//	psktron orgs
//	psktron -o "Acme Living" networks
//	psktron -o "Acme Living" -n "Tower A" resolve
//	psktron -o "Acme Living" -n "Tower A" provision --prefix CC --units "101,102A"
//	psktron -o "Acme Living" -n "Tower A" provision --prefix CC --file units.csv -x --out results.csv
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/psktron/pkg/cache"
	"github.com/newtron-network/psktron/pkg/cli"
	"github.com/newtron-network/psktron/pkg/config"
	"github.com/newtron-network/psktron/pkg/meraki"
	"github.com/newtron-network/psktron/pkg/secret"
	"github.com/newtron-network/psktron/pkg/settings"
	"github.com/newtron-network/psktron/pkg/util"
	"github.com/newtron-network/psktron/pkg/version"
)

var (
	// Global context flags
	orgName     string // -o, --org
	networkName string // -n, --network

	// Global option flags
	configPath  string
	apiKeyFlag  string
	verbose     bool
	logJSON     bool
	executeMode bool
	jsonOutput  bool

	// Global state
	userSettings *settings.Settings
	cfg          *config.Config
)

// errRunFailed makes the process exit non-zero after a run in which some
// units failed. The outcome table has already been printed.
var errRunFailed = errors.New("one or more units failed")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("Error:"), err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "psktron",
	Short:             "Meraki identity PSK provisioning tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Psktron creates per-unit identity PSKs on a Meraki wireless network.

Context flags select the organization and network. Write commands preview
by default; use -x to execute.

  psktron -o <org> -n <network> provision --prefix <prefix> --units <list> [-x]`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Log level first so settings/config warnings respect -v.
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if logJSON {
			util.SetJSONFormat()
		}

		if isSettingsOrHelp(cmd) {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if orgName == "" {
			orgName = userSettings.DefaultOrganization
		}
		if networkName == "" {
			networkName = userSettings.DefaultNetwork
		}
		if configPath == "" {
			configPath = userSettings.ConfigPath
		}
		if configPath == "" {
			configPath = config.DefaultPath()
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	// Context flags
	rootCmd.PersistentFlags().StringVarP(&orgName, "org", "o", "", "Organization name (context selector)")
	rootCmd.PersistentFlags().StringVarP(&networkName, "network", "n", "", "Network name (context selector)")

	// Option flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.psktron/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Dashboard API key (default from env, Vault or prompt)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON")

	addWriteFlags(provisionCmd)
	for _, cmd := range []*cobra.Command{orgsCmd, networksCmd, resolveCmd, provisionCmd} {
		addOutputFlags(cmd)
	}

	rootCmd.AddGroup(
		&cobra.Group{ID: "query", Title: "Dashboard Queries:"},
		&cobra.Group{ID: "mutate", Title: "Provisioning:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{orgsCmd, networksCmd, resolveCmd} {
		cmd.GroupID = "query"
		rootCmd.AddCommand(cmd)
	}
	provisionCmd.GroupID = "mutate"
	rootCmd.AddCommand(provisionCmd)
	for _, cmd := range []*cobra.Command{settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), "psktron")
	},
}

func printVersion(w io.Writer, tool string) {
	if version.Version == "dev" {
		fmt.Fprintf(w, "%s dev build\n", tool)
	} else {
		fmt.Fprintf(w, "%s %s\n", tool, version.Info())
	}
}

// ============================================================================
// Context Helpers
// ============================================================================

func requireOrg() (string, error) {
	if orgName == "" {
		return "", fmt.Errorf("organization required: use -o <org> flag")
	}
	return orgName, nil
}

func requireNetwork() (string, error) {
	if networkName == "" {
		return "", fmt.Errorf("network required: use -n <network> flag")
	}
	return networkName, nil
}

// keySources lists where the API key may come from, in priority order.
func keySources(c *config.Config) ([]secret.Source, error) {
	sources := []secret.Source{secret.Static(apiKeyFlag), secret.NewEnv(c.API.KeyEnv)}
	if c.API.Vault.Path != "" {
		v, err := secret.NewVault(c.API.Vault.Address, c.API.Vault.Path, c.API.Vault.Field)
		if err != nil {
			return nil, err
		}
		sources = append(sources, v)
	}
	return append(sources, secret.NewPrompt()), nil
}

// connect builds the Dashboard client, wrapped in the catalog cache when one
// is configured. The returned func releases the cache connection.
func connect(ctx context.Context) (meraki.API, func(), error) {
	sources, err := keySources(cfg)
	if err != nil {
		return nil, nil, err
	}
	apiKey, err := secret.Resolve(ctx, sources...)
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set $%s or use --api-key)", err, cfg.API.KeyEnv)
	}

	var api meraki.API = meraki.NewClient(apiKey,
		meraki.WithBaseURL(cfg.API.BaseURL),
		meraki.WithTimeout(cfg.API.Timeout),
	)

	if cfg.Cache.RedisAddr == "" {
		return api, func() {}, nil
	}
	store := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisDB)
	if err := store.Connect(ctx); err != nil {
		util.Warnf("catalog cache disabled: %v", err)
		store.Close()
		return api, func() {}, nil
	}
	return cache.New(api, store, apiKey, cfg.Cache.TTL), func() { store.Close() }, nil
}

// ============================================================================
// Output Helpers
// ============================================================================

func printDryRunNotice(w io.Writer) {
	if !executeMode {
		fmt.Fprintln(w, "\n"+yellow("DRY-RUN: No credentials created. Use -x to execute."))
	}
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isSettingsOrHelp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "version", "settings":
			return true
		}
	}
	return false
}

// addWriteFlags registers -x/--execute as a local flag.
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&executeMode, "execute", "x", false, "Execute (default is dry-run)")
}

// addOutputFlags registers --json as a local flag.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "JSON output")
}

// Color helpers delegating to pkg/cli
func green(s string) string  { return cli.Green(s) }
func yellow(s string) string { return cli.Yellow(s) }
func red(s string) string    { return cli.Red(s) }
func bold(s string) string   { return cli.Bold(s) }
func dim(s string) string    { return cli.Dim(s) }
