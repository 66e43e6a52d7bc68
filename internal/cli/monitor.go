package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostwatch/internal/config"
	"github.com/rileyhilliard/hostwatch/internal/dashboard"
	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/logger"
)

// monitorFlags are per-run overrides of the loaded config.
type monitorFlags struct {
	Display     string
	Refresh     string
	Hosts       string
	MetricsAddr string
}

// monitorCmd starts the dashboard. The root command does the same.
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live dashboard of host metrics",
	Long: `Connect to every configured host and show live CPU, memory, disk and
network readings.

Keys: n/→ next host, l/← previous host, 1-4 pick a metric, q quit.

Examples:
  hostwatch monitor
  hostwatch monitor --hosts web-1,db
  hostwatch monitor --display plain --refresh 2s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), monitorFlagsFrom(cmd))
	},
}

func init() {
	addMonitorFlags(monitorCmd)
}

func addMonitorFlags(cmd *cobra.Command) {
	cmd.Flags().String("display", "", "display mode: tui or plain (default from config)")
	cmd.Flags().String("refresh", "", "refresh interval, e.g. 500ms or 2s (default from config)")
	cmd.Flags().String("hosts", "", "only watch these servers (comma-separated names)")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
}

func monitorFlagsFrom(cmd *cobra.Command) monitorFlags {
	var f monitorFlags
	f.Display, _ = cmd.Flags().GetString("display")
	f.Refresh, _ = cmd.Flags().GetString("refresh")
	f.Hosts, _ = cmd.Flags().GetString("hosts")
	f.MetricsAddr, _ = cmd.Flags().GetString("metrics-addr")
	return f
}

// loadMonitorConfig loads the config, applies flag overrides, validates the
// result and applies the --hosts filter.
func loadMonitorConfig(path string, flags monitorFlags) (*config.Config, []config.Server, error) {
	cfg, _, err := config.FindAndLoad(path)
	if err != nil {
		return nil, nil, err
	}

	if err := applyOverrides(cfg, flags); err != nil {
		return nil, nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	servers, err := cfg.SelectServers(splitList(flags.Hosts))
	if err != nil {
		return nil, nil, err
	}
	return cfg, servers, nil
}

func applyOverrides(cfg *config.Config, flags monitorFlags) error {
	if flags.Display != "" {
		cfg.Global.Display = strings.ToLower(flags.Display)
	}
	if flags.Refresh != "" {
		d, err := time.ParseDuration(flags.Refresh)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' doesn't look like a valid refresh interval", flags.Refresh),
				"Try something like 500ms, 2s, or 1m.")
		}
		cfg.Global.Refresh = d
	}
	if flags.MetricsAddr != "" {
		cfg.Global.MetricsAddr = flags.MetricsAddr
	}
	return nil
}

// splitList parses a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// monitorCommand runs the dashboard until the user quits or an interrupt
// arrives.
func monitorCommand(ctx context.Context, flags monitorFlags) error {
	cfg, servers, err := loadMonitorConfig(cfgFile, flags)
	if err != nil {
		return err
	}

	cfg.Global.Display = dashboard.ResolveDisplay(cfg.Global.Display, os.Stdout)

	log, closeLog, err := dashboard.NewLogger(cfg.Global.Display, cfg.Global.LogFile, debugFlag)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't open the log file",
			"Set global.log_file to a writable path.")
	}
	defer func() { _ = closeLog() }()
	logger.SetDefault(log)

	d, err := dashboard.New(dashboard.Options{
		Global:  cfg.Global,
		Servers: servers,
		Log:     log,
	})
	if err != nil {
		return err
	}
	return d.Run(ctx)
}
