package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"github.com/rileyhilliard/hostwatch/internal/metrics"
	"github.com/rileyhilliard/hostwatch/pkg/sshutil"
)

// Kinds parses Monitors in order. Empty lists, unknown names and duplicates
// are errors.
func (s Server) Kinds() ([]metrics.Kind, error) {
	if len(s.Monitors) == 0 {
		return nil, fmt.Errorf("monitors must list at least one of %s", strings.Join(metrics.KindNames(), ", "))
	}
	kinds := make([]metrics.Kind, 0, len(s.Monitors))
	seen := make(map[metrics.Kind]bool, len(s.Monitors))
	for _, name := range s.Monitors {
		k, err := metrics.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if seen[k] {
			return nil, fmt.Errorf("monitor '%s' is listed twice", k)
		}
		seen[k] = true
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// PollInterval returns the server's interval, falling back to the global refresh.
func (s Server) PollInterval(g GlobalConfig) time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return g.Refresh
}

// DialOptions builds SSH connection settings for the server.
func (s Server) DialOptions(g GlobalConfig) sshutil.DialOptions {
	return sshutil.DialOptions{
		Host: s.Host,
		Port: s.Port,
		User: s.User,
		Credentials: sshutil.Credentials{
			Password:   s.Password,
			KeyPath:    s.PrivKeyPath,
			Passphrase: s.Passphrase,
		},
		Timeout:       g.Timeout,
		StrictHostKey: g.StrictHostKey,
	}
}

// SelectServers returns the servers named in names, in config order. An
// empty filter selects every server.
func (c *Config) SelectServers(names []string) ([]Server, error) {
	if len(names) == 0 {
		return c.Servers, nil
	}

	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.TrimSpace(n)] = true
	}

	var out []Server
	for _, s := range c.Servers {
		if want[s.Name] {
			out = append(out, s)
			delete(want, s.Name)
		}
	}

	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown server(s): %s", strings.Join(missing, ", ")),
			fmt.Sprintf("Available servers: %s", strings.Join(c.ServerNames(), ", ")))
	}
	return out, nil
}

// ServerNames returns every configured server name in order.
func (c *Config) ServerNames() []string {
	names := make([]string, len(c.Servers))
	for i, s := range c.Servers {
		names[i] = s.Name
	}
	return names
}
