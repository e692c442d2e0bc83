package cmd

import (
	"fmt"

	"soa-reconciliation-engine/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Statement-of-account reconciliation tool",
	Long: `Reconciler matches a base ledger (statement of account) against one or
more reference datasets on a join key, detects duplicates, buckets document
ages, aggregates amounts across sources and classifies each key's payment
status.

Examples:
  reconciler reconcile --run-config run.yaml
  reconciler reconcile --run-config run.yaml --output-dir reports -v`,
	Version: getVersionString(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			l, err := logger.New(&logger.Config{Level: logger.DebugLevel, Format: logger.TextFormat})
			if err == nil {
				logger.SetGlobalLogger(l)
			}
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
