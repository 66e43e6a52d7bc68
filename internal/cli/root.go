package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile   string
	debugFlag bool
)

// rootCmd runs the dashboard when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "hostwatch",
	Short: "Live CPU, memory, disk and network dashboard for remote hosts",
	Long: `hostwatch opens one SSH session per configured host, samples /proc on
every refresh, and shows the latest readings in a terminal dashboard.

Run 'hostwatch init' to create a config, then 'hostwatch' to start watching.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), monitorFlagsFrom(cmd))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./hostwatch.yaml, then ~/.config/hostwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	addMonitorFlags(rootCmd)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if isUnknownCommandError(err) {
			fmt.Fprintln(os.Stderr, "Run 'hostwatch --help' for usage.")
		}
		os.Exit(1)
	}
}

// isUnknownCommandError checks if an error is from cobra for an unknown
// command or flag.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
