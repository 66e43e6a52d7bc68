package sshutil

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/kevinburke/ssh_config"

	"github.com/rileyhilliard/hostwatch/internal/logger"
)

// matchWarned records the ssh_config files already warned about, so a
// sampler reconnecting every interval does not repeat the warning.
var matchWarned sync.Map

// sshSettings holds the resolved dial target.
type sshSettings struct {
	hostname string
	port     string
}

func (s *sshSettings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSSHSettings applies HostName and Port from the ssh_config to
// opts.Host. An explicit opts.Port always wins.
func resolveSSHSettings(opts DialOptions) *sshSettings {
	settings := &sshSettings{hostname: opts.Host, port: strconv.Itoa(DefaultPort)}
	if opts.Port > 0 {
		settings.port = strconv.Itoa(opts.Port)
	}

	configPath := opts.SSHConfigPath
	if configPath == "" {
		configPath = filepath.Join(homeDir(), ".ssh", "config")
	}

	content, matchLine, err := preprocessSSHConfig(configPath)
	if err != nil {
		return settings
	}
	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return settings
	}

	hostname, _ := cfg.Get(opts.Host, "HostName")
	port, _ := cfg.Get(opts.Host, "Port")
	if hostname != "" {
		settings.hostname = hostname
	}
	if port != "" && opts.Port == 0 {
		settings.port = port
	}

	// the host may be defined after the Match block we had to cut off
	if matchLine > 0 && hostname == "" && port == "" {
		if _, seen := matchWarned.LoadOrStore(configPath, true); !seen {
			logger.Default().Warn(
				"Host '%s' not found in %s before its Match block at line %d; entries after a Match block are ignored",
				opts.Host, configPath, matchLine)
		}
	}

	return settings
}

// preprocessSSHConfig returns the ssh_config content before the first Match
// directive, which the parser does not support, and the 1-based line of that
// directive (0 when there is none).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return []byte(strings.Join(lines[:i], "\n")), i + 1, nil
		}
	}
	return content, 0, nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func suggestionForDialError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "Nothing is listening on that port. Is sshd running? Try: ssh <host>"
	case strings.Contains(msg, "no route to host"), strings.Contains(msg, "network is unreachable"):
		return "Can't route to the host. Check your network connection."
	case strings.Contains(msg, "timeout"):
		return "Connection timed out. The host might be offline or behind a firewall."
	case strings.Contains(msg, "no such host"):
		return "The name doesn't resolve. Check host, or add an alias to ~/.ssh/config."
	default:
		return "Make sure the host is reachable: ping <host>"
	}
}

func suggestionForHandshakeError(err error) string {
	switch {
	case isAuthFailure(err):
		return "Auth failed. Check user, password or privkey_path for this server."
	case strings.Contains(err.Error(), "host key"):
		return "Host key issue. Try connecting manually first: ssh <host>"
	default:
		return "Something went wrong during SSH setup. Try: ssh <host>"
	}
}
