package config

import (
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// MinInterval is the smallest refresh or poll interval accepted.
const MinInterval = 200 * time.Millisecond

// Display modes.
const (
	DisplayTUI   = "tui"
	DisplayPlain = "plain"
)

// Config represents the complete hostwatch.yaml configuration file.
type Config struct {
	Version int          `yaml:"version" mapstructure:"version"`
	Global  GlobalConfig `yaml:"global" mapstructure:"global"`
	Servers []Server     `yaml:"servers" mapstructure:"servers"`
}

// GlobalConfig holds settings shared by every host.
type GlobalConfig struct {
	// Refresh is the render tick and the default poll interval.
	Refresh time.Duration `yaml:"refresh" mapstructure:"refresh"`

	// Display mode: "tui" or "plain".
	Display string `yaml:"display" mapstructure:"display"`

	// Timeout bounds the SSH connect and handshake.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// BusCapacity is the number of events buffered between samplers and the store.
	BusCapacity int `yaml:"bus_capacity" mapstructure:"bus_capacity"`

	// StrictHostKey verifies hosts against ~/.ssh/known_hosts.
	StrictHostKey bool `yaml:"strict_host_key" mapstructure:"strict_host_key"`

	// LogFile receives the side log while the TUI owns the terminal.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`

	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9100".
	MetricsAddr string `yaml:"metrics_addr" mapstructure:"metrics_addr"`
}

// Server defines a remote machine to monitor.
type Server struct {
	// Name identifies the host in the dashboard. Must be unique.
	Name string `yaml:"name" mapstructure:"name"`

	// Host is an address or an ~/.ssh/config alias.
	Host string `yaml:"host" mapstructure:"host"`

	// Port defaults to the ssh_config Port, then 22.
	Port int `yaml:"port,omitempty" mapstructure:"port"`

	User string `yaml:"user" mapstructure:"user"`

	// Exactly one of Password or PrivKeyPath must be set.
	Password    string `yaml:"password,omitempty" mapstructure:"password"`
	PrivKeyPath string `yaml:"privkey_path,omitempty" mapstructure:"privkey_path"`
	Passphrase  string `yaml:"passphrase,omitempty" mapstructure:"passphrase"`

	// Interval overrides Global.Refresh as this host's poll interval.
	Interval time.Duration `yaml:"interval,omitempty" mapstructure:"interval"`

	// Monitors lists metric kinds in poll order: mem, cpu, disk, net.
	Monitors []string `yaml:"monitors" mapstructure:"monitors"`
}

// DefaultConfig returns a Config with sensible defaults and no servers.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Global: GlobalConfig{
			Refresh:     500 * time.Millisecond,
			Display:     DisplayTUI,
			Timeout:     10 * time.Second,
			BusCapacity: 100,
		},
		Servers: []Server{},
	}
}
