package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/hostwatch/internal/errors"
)

// DefaultPort is used when neither the config nor ~/.ssh/config sets a port.
const DefaultPort = 22

// DefaultTimeout bounds the TCP connect and SSH handshake.
const DefaultTimeout = 10 * time.Second

// Client is an established session to one monitored host.
type Client struct {
	*ssh.Client
	Host    string // Host or alias as configured
	Address string // Resolved host:port that was dialed
}

// Credentials holds exactly one authentication variant: a password, or a
// private key path with an optional passphrase.
type Credentials struct {
	Password   string
	KeyPath    string
	Passphrase string
}

// DialOptions describes one connection.
type DialOptions struct {
	// Host is a hostname, IP, or ~/.ssh/config alias.
	Host string
	// Port overrides ~/.ssh/config. Zero means "from ssh config, else 22".
	Port int
	User string
	Credentials
	Timeout time.Duration
	// StrictHostKey verifies the server key against KnownHostsPath.
	StrictHostKey  bool
	KnownHostsPath string
	// SSHConfigPath defaults to ~/.ssh/config.
	SSHConfigPath string
}

func (o DialOptions) timeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

// Dial opens a session described by opts. HostName and Port are resolved
// through ~/.ssh/config when it has an entry for opts.Host. Cancelling ctx
// aborts the TCP connect.
//
// Failures are structured errors: AUTH_CONFIG for unusable credentials,
// AUTH when the server rejects them, SSH for everything on the wire.
func Dial(ctx context.Context, opts DialOptions) (*Client, error) {
	auth, err := authMethods(opts.Credentials)
	if err != nil {
		return nil, err
	}

	hostKeyCallback, err := hostKeyCallbackFor(opts)
	if err != nil {
		return nil, err
	}

	timeout := opts.timeout()
	address := resolveSSHSettings(opts).address()

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", opts.Host, address),
			suggestionForDialError(err))
	}

	// the deadline covers the handshake only
	_ = conn.SetDeadline(time.Now().Add(timeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	})
	if err != nil {
		conn.Close()
		return nil, handshakeError(opts.Host, err)
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    opts.Host,
		Address: address,
	}, nil
}

func handshakeError(host string, err error) error {
	var mismatch *HostKeyMismatchError
	if stderrors.As(err, &mismatch) {
		return errors.WrapWithCode(mismatch, errors.ErrSSH, mismatch.Error(), mismatch.Suggestion())
	}

	code := errors.ErrSSH
	if isAuthFailure(err) {
		code = errors.ErrAuth
	}
	return errors.WrapWithCode(err, code,
		fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
		suggestionForHandshakeError(err))
}

func hostKeyCallbackFor(opts DialOptions) (ssh.HostKeyCallback, error) {
	if !opts.StrictHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // strict_host_key is opt-in
	}

	path := opts.KnownHostsPath
	if path == "" {
		path = filepath.Join(homeDir(), ".ssh", "known_hosts")
	}
	callback, err := createHostKeyCallback(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't load known_hosts",
			"Check that "+path+" is readable, or set strict_host_key: false.")
	}
	return callback, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the configured host or alias.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}
