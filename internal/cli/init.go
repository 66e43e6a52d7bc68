package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostwatch/internal/config"
	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/metrics"
	"github.com/rileyhilliard/hostwatch/internal/ui"
	"github.com/rileyhilliard/hostwatch/pkg/sshutil"
)

const (
	authKey      = "key"
	authPassword = "password"
	manualEntry  = ""
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string        // Where to write the config
	Overwrite      bool          // Overwrite existing config without asking
	NonInteractive bool          // Skip prompts, use Server as given
	Check          bool          // Test the SSH connection before saving
	Server         config.Server // Pre-specified server values from flags
	Out            io.Writer     // Progress output, defaults to stdout
}

var (
	initOpts     InitOptions
	initMonitors string
)

// initCmd creates a config file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a hostwatch.yaml config",
	Long: `Create a config file with one server. Hosts from ~/.ssh/config are
offered as a starting point.

Examples:
  hostwatch init
  hostwatch init --non-interactive --host 10.0.0.5 --user ops --key ~/.ssh/id_ed25519`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		opts.Server.Monitors = splitList(initMonitors)
		opts.Out = cmd.OutOrStdout()
		return Init(opts)
	},
}

func init() {
	f := initCmd.Flags()
	f.StringVarP(&initOpts.Path, "output", "o", config.ConfigFileName, "path of the config file to write")
	f.BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	f.BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt; use flag values")
	f.BoolVar(&initOpts.Check, "check", true, "test the SSH connection before saving")
	f.StringVar(&initOpts.Server.Name, "name", "", "server name shown in the dashboard (default: host)")
	f.StringVar(&initOpts.Server.Host, "host", "", "address or ~/.ssh/config alias")
	f.IntVar(&initOpts.Server.Port, "port", 0, "SSH port (default: ssh_config Port or 22)")
	f.StringVar(&initOpts.Server.User, "user", "", "SSH user")
	f.StringVar(&initOpts.Server.PrivKeyPath, "key", "", "private key path")
	f.StringVar(&initMonitors, "monitors", strings.Join(metrics.KindNames(), ","), "metrics to poll, in order")
}

// Init creates a new config file.
func Init(opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Path == "" {
		opts.Path = config.ConfigFileName
	}

	if _, err := os.Stat(opts.Path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", opts.Path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", opts.Path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	server := opts.Server
	if !opts.NonInteractive {
		if err := promptServer(&server); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}
	}

	cfg := buildInitConfig(server)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if opts.Check {
		if err := checkConnection(opts, cfg); err != nil {
			return err
		}
	}

	if err := config.Save(opts.Path, cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config",
			"Check you can write to "+opts.Path)
	}

	fmt.Fprintf(opts.Out, "%s Wrote %s\n\nStart the dashboard with: hostwatch --config %s\n", ui.SymbolSuccess, opts.Path, opts.Path)
	return nil
}

// buildInitConfig wraps one server in a default config, filling the name and
// monitors when they were left empty.
func buildInitConfig(server config.Server) *config.Config {
	server.Name = strings.TrimSpace(server.Name)
	if server.Name == "" {
		server.Name = server.Host
	}
	if len(server.Monitors) == 0 {
		server.Monitors = metrics.KindNames()
	}
	server.PrivKeyPath = config.Expand(server.PrivKeyPath)

	cfg := config.DefaultConfig()
	cfg.Servers = []config.Server{server}
	return cfg
}

// checkConnection dials the server once. A failure is fatal only in
// non-interactive mode; interactively the user may save anyway.
func checkConnection(opts InitOptions, cfg *config.Config) error {
	server := cfg.Servers[0]
	spinner := ui.NewSpinner(opts.Out, "Connecting to "+server.Host)
	spinner.Start()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Global.Timeout+time.Second)
	defer cancel()

	client, err := sshutil.Dial(ctx, server.DialOptions(cfg.Global))
	if err == nil {
		spinner.SetLabel("Connected to " + client.GetAddress())
		spinner.Success()
		_ = client.Close()
		return nil
	}
	spinner.Fail()

	if opts.NonInteractive {
		return err
	}

	fmt.Fprintf(opts.Out, "\n  %s\n\n", errors.Brief(err))
	var saveAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save config anyway? (You can fix the connection later)").
				Value(&saveAnyway),
		),
	)
	if formErr := form.Run(); formErr != nil || !saveAnyway {
		return err
	}
	return nil
}

// promptServer fills server interactively, starting from any flag values.
func promptServer(server *config.Server) error {
	if server.Host == "" {
		if err := pickSSHConfigHost(server); err != nil {
			return err
		}
	}

	auth := authKey
	if server.PrivKeyPath == "" && server.Password != "" {
		auth = authPassword
	}
	monitors := server.Monitors
	if len(monitors) == 0 {
		monitors = metrics.KindNames()
	}
	port := ""
	if server.Port != 0 {
		port = fmt.Sprint(server.Port)
	}

	kindOptions := make([]huh.Option[string], 0, metrics.NumKinds)
	for _, k := range metrics.Kinds() {
		kindOptions = append(kindOptions, huh.NewOption(k.Label(), k.String()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SSH host or alias").
				Description("Address, or an alias from ~/.ssh/config").
				Placeholder("10.0.0.5").
				Value(&server.Host).
				Validate(required("host")),
			huh.NewInput().
				Title("Server name").
				Description("Shown in the dashboard header (default: host)").
				Value(&server.Name).
				Validate(func(s string) error {
					if strings.ContainsAny(s, " \t\n") {
						return fmt.Errorf("name cannot contain whitespace")
					}
					return nil
				}),
			huh.NewInput().
				Title("SSH user").
				Value(&server.User).
				Validate(required("user")),
			huh.NewInput().
				Title("SSH port (optional)").
				Placeholder("22").
				Value(&port).
				Validate(validPort),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Authentication").
				Options(
					huh.NewOption("Private key", authKey),
					huh.NewOption("Password", authPassword),
				).
				Value(&auth),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Private key path").
				Placeholder("~/.ssh/id_ed25519").
				Value(&server.PrivKeyPath).
				Validate(required("private key path")),
			huh.NewInput().
				Title("Key passphrase (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&server.Passphrase),
		).WithHideFunc(func() bool { return auth != authKey }),
		huh.NewGroup(
			huh.NewInput().
				Title("Password").
				Description("Stored in the config file; keep it private").
				EchoMode(huh.EchoModePassword).
				Value(&server.Password).
				Validate(required("password")),
		).WithHideFunc(func() bool { return auth != authPassword }),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Metrics to watch").
				Options(kindOptions...).
				Value(&monitors).
				Validate(func(v []string) error {
					if len(v) == 0 {
						return fmt.Errorf("pick at least one metric")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	if auth == authKey {
		server.Password = ""
	} else {
		server.PrivKeyPath = ""
		server.Passphrase = ""
	}
	server.Monitors = orderedKinds(monitors)
	if p, err := strconv.Atoi(port); err == nil {
		server.Port = p
	}
	return nil
}

// pickSSHConfigHost offers the aliases from ~/.ssh/config. Choosing one
// fills host, user, port and key.
func pickSSHConfigHost(server *config.Server) error {
	aliases, err := sshutil.LoadAliases()
	if err != nil || len(aliases) == 0 {
		return nil
	}

	options := []huh.Option[string]{huh.NewOption("Enter manually", manualEntry)}
	for _, a := range aliases {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", a.Name, a), a.Name))
	}

	var picked string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Start from an ~/.ssh/config host?").
				Options(options...).
				Value(&picked),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	for _, a := range aliases {
		if a.Name == picked {
			applyAlias(server, a)
			break
		}
	}
	return nil
}

// applyAlias copies an ssh_config alias into empty server fields. The alias
// is kept as the host so ssh_config resolution still applies.
func applyAlias(server *config.Server, a sshutil.HostAlias) {
	server.Host = a.Name
	if server.Name == "" {
		server.Name = a.Name
	}
	if server.User == "" {
		server.User = a.User
	}
	if server.Port == 0 {
		server.Port = a.Port
	}
	if server.PrivKeyPath == "" {
		server.PrivKeyPath = a.IdentityFile
	}
}

// orderedKinds returns the selected kind names in canonical order.
func orderedKinds(selected []string) []string {
	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}
	var out []string
	for _, name := range metrics.KindNames() {
		if want[name] {
			out = append(out, name)
		}
	}
	return out
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validPort(s string) error {
	if s == "" {
		return nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535")
	}
	return nil
}
