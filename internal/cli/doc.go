// Package cli implements the hostwatch command-line interface.
//
// The root command runs the dashboard, so "hostwatch" and "hostwatch monitor"
// are the same. Subcommands:
//
//	hostwatch monitor     - Live dashboard (default)
//	hostwatch init        - Create hostwatch.yaml interactively
//	hostwatch validate    - Check the config and list the hosts it defines
//	hostwatch version     - Print build information
//	hostwatch completion  - Generate shell completion scripts
//
// # Flag Handling
//
// --config and --debug are persistent flags on the root command. Flags like
// --display, --refresh and --hosts override the loaded config for a single
// run and are validated together with it.
package cli
