package testing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/hostwatch/pkg/sshutil"
)

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// MockClient simulates an SSH connection for testing.
// Commands are split on ';' and each part is answered from canned responses
// or, for cat/echo/sleep, from the virtual filesystem.
type MockClient struct {
	mu       sync.Mutex
	host     string
	address  string
	fs       *MockFS
	closed   bool
	delay    time.Duration
	calls    []string
	commands map[string]CommandResponse // pattern -> response
}

var _ sshutil.SSHClient = (*MockClient)(nil)

// NewMockClient creates a new mock SSH client with an empty filesystem.
func NewMockClient(host string) *MockClient {
	return &MockClient{
		host:     host,
		address:  host + ":22",
		fs:       NewMockFS(),
		commands: make(map[string]CommandResponse),
	}
}

// ExecContext runs a command against the canned responses and the virtual
// filesystem. When a delay is set it waits that long first, returning
// ctx.Err() if the context ends during the wait.
func (m *MockClient) ExecContext(ctx context.Context, cmd string) (stdout, stderr []byte, exitCode int, err error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, nil, -1, errors.New("connection closed")
	}
	m.calls = append(m.calls, cmd)
	delay := m.delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, nil, -1, ctx.Err()
		case <-time.After(delay):
		}
	} else if err := ctx.Err(); err != nil {
		return nil, nil, -1, err
	}

	if resp, ok := m.match(cmd); ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}

	var out, errOut []byte
	for _, part := range strings.Split(cmd, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		o, e, code, err := m.execOne(part)
		if err != nil {
			return nil, nil, -1, err
		}
		out = append(out, o...)
		errOut = append(errOut, e...)
		exitCode = code
	}
	return out, errOut, exitCode, nil
}

func (m *MockClient) execOne(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	if resp, ok := m.match(cmd); ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}

	switch {
	case strings.HasPrefix(cmd, "cat "):
		path := strings.Trim(strings.TrimSpace(strings.TrimPrefix(cmd, "cat ")), `"'`)
		content, err := m.fs.ReadFile(path)
		if err != nil {
			return nil, []byte(fmt.Sprintf("cat: %s: No such file or directory\n", path)), 1, nil
		}
		return content, nil, 0, nil
	case strings.HasPrefix(cmd, "echo "):
		return []byte(strings.Trim(strings.TrimPrefix(cmd, "echo "), `"'`) + "\n"), nil, 0, nil
	case strings.HasPrefix(cmd, "sleep "):
		return nil, nil, 0, nil
	default:
		name := strings.Fields(cmd)[0]
		return nil, []byte(fmt.Sprintf("sh: %s: command not found\n", name)), 127, nil
	}
}

// match checks exact matches first, then regex patterns.
func (m *MockClient) match(cmd string) (CommandResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if resp, ok := m.commands[cmd]; ok {
		return resp, true
	}
	for pattern, resp := range m.commands {
		if matched, _ := regexp.MatchString(pattern, cmd); matched {
			return resp, true
		}
	}
	return CommandResponse{}, false
}

// Close marks the mock connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (m *MockClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the mock host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress returns the mock address.
func (m *MockClient) GetAddress() string {
	return m.address
}

// SetCommandResponse configures a canned response for a command pattern.
// The pattern can be an exact command string or a regex.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands[pattern] = resp
}

// SetDelay makes every ExecContext call wait d before answering.
func (m *MockClient) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Calls returns the commands executed so far.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// GetFS returns the virtual filesystem for direct manipulation in tests.
func (m *MockClient) GetFS() *MockFS {
	return m.fs
}
