package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config with durations as strings so the written YAML
// reads "500ms" instead of nanoseconds.
type fileConfig struct {
	Version int        `yaml:"version"`
	Global  fileGlobal `yaml:"global"`
	Servers []fileHost `yaml:"servers"`
}

type fileGlobal struct {
	Refresh       string `yaml:"refresh"`
	Display       string `yaml:"display"`
	Timeout       string `yaml:"timeout"`
	BusCapacity   int    `yaml:"bus_capacity"`
	StrictHostKey bool   `yaml:"strict_host_key"`
	LogFile       string `yaml:"log_file,omitempty"`
	MetricsAddr   string `yaml:"metrics_addr,omitempty"`
}

type fileHost struct {
	Name        string   `yaml:"name"`
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port,omitempty"`
	User        string   `yaml:"user"`
	Password    string   `yaml:"password,omitempty"`
	PrivKeyPath string   `yaml:"privkey_path,omitempty"`
	Passphrase  string   `yaml:"passphrase,omitempty"`
	Interval    string   `yaml:"interval,omitempty"`
	Monitors    []string `yaml:"monitors"`
}

// Marshal renders cfg as YAML that Load reads back unchanged.
func Marshal(cfg *Config) ([]byte, error) {
	out := fileConfig{
		Version: cfg.Version,
		Global: fileGlobal{
			Refresh:       cfg.Global.Refresh.String(),
			Display:       cfg.Global.Display,
			Timeout:       cfg.Global.Timeout.String(),
			BusCapacity:   cfg.Global.BusCapacity,
			StrictHostKey: cfg.Global.StrictHostKey,
			LogFile:       cfg.Global.LogFile,
			MetricsAddr:   cfg.Global.MetricsAddr,
		},
		Servers: make([]fileHost, 0, len(cfg.Servers)),
	}
	for _, s := range cfg.Servers {
		out.Servers = append(out.Servers, fileHost{
			Name:        s.Name,
			Host:        s.Host,
			Port:        s.Port,
			User:        s.User,
			Password:    s.Password,
			PrivKeyPath: s.PrivKeyPath,
			Passphrase:  s.Passphrase,
			Interval:    durationOrEmpty(s.Interval),
			Monitors:    s.Monitors,
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes cfg to path. The file holds credentials, so it is created 0600.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func durationOrEmpty(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}
