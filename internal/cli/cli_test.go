package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/hostwatch/internal/config"
	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/pkg/sshutil"
)

const twoServerConfig = `version: 1
global:
  refresh: 1s
  display: plain
servers:
  - name: web-1
    host: 10.0.0.5
    user: ops
    privkey_path: /keys/id_ed25519
    monitors: [mem, cpu]
  - name: db
    host: db.internal
    port: 2222
    user: postgres
    password: hunter2
    interval: 5s
    monitors: [disk]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	for _, name := range []string{"monitor", "init", "validate", "version", "completion"} {
		t.Run(name, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, cmd.Name())
		})
	}
}

func TestRootCommand_MonitorFlags(t *testing.T) {
	for _, name := range []string{"display", "refresh", "hosts", "metrics-addr"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(name), "root --%s", name)
		assert.NotNil(t, monitorCmd.Flags().Lookup(name), "monitor --%s", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
}

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{`unknown command "foo" for "hostwatch"`, true},
		{"unknown flag: --bogus", true},
		{"unknown shorthand flag: 'z' in -z", true},
		{"No config file found", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(fmt.Errorf("%s", tt.msg)))
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"web-1", []string{"web-1"}},
		{"web-1, db ,", []string{"web-1", "db"}},
		{" , ,", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.in))
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.DefaultConfig()
	err := applyOverrides(cfg, monitorFlags{Display: "PLAIN", Refresh: "2s", MetricsAddr: ":9100"})
	require.NoError(t, err)
	assert.Equal(t, config.DisplayPlain, cfg.Global.Display)
	assert.Equal(t, 2*time.Second, cfg.Global.Refresh)
	assert.Equal(t, ":9100", cfg.Global.MetricsAddr)

	untouched := config.DefaultConfig()
	require.NoError(t, applyOverrides(untouched, monitorFlags{}))
	assert.Equal(t, config.DefaultConfig().Global, untouched.Global)

	err = applyOverrides(cfg, monitorFlags{Refresh: "fast"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "valid refresh interval")
}

func TestLoadMonitorConfig(t *testing.T) {
	path := writeConfig(t, twoServerConfig)

	t.Run("all servers", func(t *testing.T) {
		cfg, servers, err := loadMonitorConfig(path, monitorFlags{})
		require.NoError(t, err)
		assert.Equal(t, time.Second, cfg.Global.Refresh)
		require.Len(t, servers, 2)
		assert.Equal(t, "web-1", servers[0].Name)
		assert.Equal(t, "db", servers[1].Name)
	})

	t.Run("hosts filter keeps config order", func(t *testing.T) {
		_, servers, err := loadMonitorConfig(path, monitorFlags{Hosts: "db,web-1"})
		require.NoError(t, err)
		require.Len(t, servers, 2)
		assert.Equal(t, "web-1", servers[0].Name)
	})

	t.Run("unknown host", func(t *testing.T) {
		_, _, err := loadMonitorConfig(path, monitorFlags{Hosts: "cache"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "cache")
	})

	t.Run("override fails validation", func(t *testing.T) {
		_, _, err := loadMonitorConfig(path, monitorFlags{Refresh: "10ms"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("bad display", func(t *testing.T) {
		_, _, err := loadMonitorConfig(path, monitorFlags{Display: "web"})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := loadMonitorConfig(filepath.Join(t.TempDir(), "nope.yaml"), monitorFlags{})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})
}

func TestValidateCommand(t *testing.T) {
	path := writeConfig(t, twoServerConfig)

	var buf bytes.Buffer
	require.NoError(t, validateCommand(&buf, path))

	out := buf.String()
	assert.Contains(t, out, "✓ "+path+" is valid")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "web-1")
	assert.Contains(t, out, "db.internal:2222")
	assert.Contains(t, out, "mem,cpu")
	assert.Contains(t, out, "5s")
	assert.NotContains(t, out, "hunter2", "passwords are never printed")
}

func TestValidateCommand_Invalid(t *testing.T) {
	path := writeConfig(t, strings.Replace(twoServerConfig, "name: db", "name: web-1", 1))

	var buf bytes.Buffer
	err := validateCommand(&buf, path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.Contains(t, err.Error(), "more than once")
	assert.Empty(t, buf.String())
}

func TestInit_NonInteractive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", config.ConfigFileName)
	var out bytes.Buffer

	err := Init(InitOptions{
		Path:           path,
		NonInteractive: true,
		Server:         config.Server{Host: "10.0.0.5", User: "ops", PrivKeyPath: "/keys/id"},
		Out:            &out,
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate(cfg))
	require.Len(t, cfg.Servers, 1)

	s := cfg.Servers[0]
	assert.Equal(t, "10.0.0.5", s.Name, "name defaults to host")
	assert.Equal(t, "ops", s.User)
	assert.Equal(t, "/keys/id", s.PrivKeyPath)
	assert.Equal(t, []string{"mem", "cpu", "disk", "net"}, s.Monitors)
}

func TestInit_NonInteractiveExisting(t *testing.T) {
	path := writeConfig(t, twoServerConfig)
	opts := InitOptions{
		Path:           path,
		NonInteractive: true,
		Server:         config.Server{Name: "solo", Host: "h", User: "u", Password: "p"},
		Out:            &bytes.Buffer{},
	}

	err := Init(opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	opts.Overwrite = true
	require.NoError(t, Init(opts))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"solo"}, cfg.ServerNames())
}

func TestInit_NonInteractiveInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)

	err := Init(InitOptions{
		Path:           path,
		NonInteractive: true,
		Server:         config.Server{Host: "h", User: "u"},
		Out:            &bytes.Buffer{},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
	assert.NoFileExists(t, path)
}

func TestBuildInitConfig(t *testing.T) {
	cfg := buildInitConfig(config.Server{Name: "  api ", Host: "a", Monitors: []string{"net"}})
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "api", cfg.Servers[0].Name)
	assert.Equal(t, []string{"net"}, cfg.Servers[0].Monitors)
	assert.Equal(t, config.DefaultConfig().Global, cfg.Global)
}

func TestOrderedKinds(t *testing.T) {
	assert.Equal(t, []string{"mem", "disk", "net"}, orderedKinds([]string{"net", "mem", "disk"}))
	assert.Empty(t, orderedKinds(nil))
}

func TestValidPort(t *testing.T) {
	assert.NoError(t, validPort(""))
	assert.NoError(t, validPort("2222"))
	assert.Error(t, validPort("0"))
	assert.Error(t, validPort("70000"))
	assert.Error(t, validPort("ssh"))
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionCmd.SetOut(&buf)
			t.Cleanup(func() { completionCmd.SetOut(nil) })

			require.NoError(t, completionCmd.RunE(completionCmd, []string{shell}))
			assert.Contains(t, buf.String(), "hostwatch")
		})
	}
}

func TestInit_NonInteractiveCheckFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	var out bytes.Buffer

	err := Init(InitOptions{
		Path:           path,
		NonInteractive: true,
		Check:          true,
		Server:         config.Server{Host: "127.0.0.1", Port: 1, User: "u", Password: "p"},
		Out:            &out,
	})
	require.Error(t, err)
	assert.Contains(t, out.String(), "Connecting to 127.0.0.1")
	assert.NoFileExists(t, path)
}

func TestApplyAlias(t *testing.T) {
	alias := sshutil.HostAlias{Name: "web-1", HostName: "10.0.0.11", User: "deploy", Port: 2222, IdentityFile: "/keys/fleet"}

	var blank config.Server
	applyAlias(&blank, alias)
	assert.Equal(t, config.Server{Name: "web-1", Host: "web-1", User: "deploy", Port: 2222, PrivKeyPath: "/keys/fleet"}, blank)

	preset := config.Server{Name: "frontend", User: "ops", Port: 22}
	applyAlias(&preset, alias)
	assert.Equal(t, "web-1", preset.Host)
	assert.Equal(t, "frontend", preset.Name, "flag values win")
	assert.Equal(t, "ops", preset.User)
	assert.Equal(t, 22, preset.Port)
}
