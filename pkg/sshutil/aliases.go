package sshutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// HostAlias is a concrete Host entry from an ssh_config file together with
// the settings that matter for a monitored server.
type HostAlias struct {
	Name         string
	HostName     string
	User         string
	Port         int
	IdentityFile string
}

// String renders the alias as user@host:port, leaving out what is unset or
// default.
func (a HostAlias) String() string {
	host := a.HostName
	if host == "" {
		host = a.Name
	}
	if a.User != "" {
		host = a.User + "@" + host
	}
	if a.Port != 0 && a.Port != DefaultPort {
		host = fmt.Sprintf("%s:%d", host, a.Port)
	}
	return host
}

// LoadAliases reads the host aliases from ~/.ssh/config.
func LoadAliases() ([]HostAlias, error) {
	return ReadAliases(filepath.Join(homeDir(), ".ssh", "config"))
}

// ReadAliases returns every concrete alias in the ssh_config at path, sorted
// by name. Wildcard and negated patterns are skipped. A missing file yields
// no aliases and no error.
func ReadAliases(path string) ([]HostAlias, error) {
	content, _, err := preprocessSSHConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var aliases []HostAlias
	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			name := pattern.String()
			if !isConcreteAlias(name) || seen[name] {
				continue
			}
			seen[name] = true
			aliases = append(aliases, lookupAlias(cfg, name))
		}
	}

	sort.Slice(aliases, func(i, j int) bool { return aliases[i].Name < aliases[j].Name })
	return aliases, nil
}

func lookupAlias(cfg *ssh_config.Config, name string) HostAlias {
	get := func(key string) string {
		v, _ := cfg.Get(name, key)
		return v
	}

	a := HostAlias{
		Name:     name,
		HostName: get("HostName"),
		User:     get("User"),
	}
	if port, err := strconv.Atoi(get("Port")); err == nil {
		a.Port = port
	}
	if id := get("IdentityFile"); id != "" {
		a.IdentityFile = expandPath(id)
	}
	return a
}

func isConcreteAlias(pattern string) bool {
	return pattern != "" && !strings.HasPrefix(pattern, "!") && !strings.ContainsAny(pattern, "*?")
}
