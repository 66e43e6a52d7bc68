package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostwatch/internal/config"
	"github.com/rileyhilliard/hostwatch/internal/ui"
)

// validateCmd checks the config without connecting to any host.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file and list its servers",
	Long: `Load the config the same way 'hostwatch monitor' does, validate it, and
print the servers it defines. No connections are made.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateCommand(cmd.OutOrStdout(), cfgFile)
	},
}

func validateCommand(w io.Writer, path string) error {
	cfg, found, err := config.FindAndLoad(path)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s %s is valid\n\n", ui.SymbolSuccess, found)
	printServers(w, cfg)
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func printServers(w io.Writer, cfg *config.Config) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("NAME", "ADDRESS", "USER", "AUTH", "INTERVAL", "MONITORS").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, s := range cfg.Servers {
		addr := s.Host
		if s.Port != 0 {
			addr = fmt.Sprintf("%s:%d", s.Host, s.Port)
		}
		auth := "password"
		if s.PrivKeyPath != "" {
			auth = "key"
		}
		t.Row(s.Name, addr, s.User, auth, s.PollInterval(cfg.Global).String(), strings.Join(s.Monitors, ","))
	}

	fmt.Fprintln(w, t.Render())
}
