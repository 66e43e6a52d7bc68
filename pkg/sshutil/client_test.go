package sshutil

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rileyhilliard/hostwatch/internal/errors"
	"golang.org/x/crypto/ssh"
)

const testPassword = "hunter2"

// testServer is a minimal in-process SSH server that answers exec requests.
type testServer struct {
	addr    string
	hostKey ssh.Signer
	release chan struct{}
}

// handleCommand returns canned output for the commands used in these tests.
func (s *testServer) handleCommand(ch ssh.Channel, cmd string) uint32 {
	switch {
	case cmd == "echo hello":
		_, _ = ch.Write([]byte("hello\n"))
		return 0
	case cmd == "echo out; echo err >&2":
		_, _ = ch.Write([]byte("out\n"))
		_, _ = ch.Stderr().Write([]byte("err\n"))
		return 0
	case strings.HasPrefix(cmd, "exit "):
		code, _ := strconv.Atoi(strings.TrimPrefix(cmd, "exit "))
		return uint32(code)
	case cmd == "hang":
		<-s.release
		return 0
	default:
		_, _ = ch.Stderr().Write([]byte("command not found\n"))
		return 127
	}
}

func newSigner(t *testing.T) (ssh.Signer, ed25519.PrivateKey) {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	return signer, priv
}

// startTestServer accepts password testPassword and, when clientKey is
// non-nil, that public key.
func startTestServer(t *testing.T, clientKey ssh.PublicKey) *testServer {
	t.Helper()

	hostKey, _ := newSigner(t)
	srv := &testServer{hostKey: hostKey, release: make(chan struct{})}

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if string(pass) == testPassword {
				return nil, nil
			}
			return nil, stderrors.New("bad password")
		},
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if clientKey != nil && bytes.Equal(key.Marshal(), clientKey.Marshal()) {
				return nil, nil
			}
			return nil, stderrors.New("unknown key")
		},
	}
	cfg.AddHostKey(hostKey)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv.addr = ln.Addr().String()
	t.Cleanup(func() {
		close(srv.release)
		ln.Close()
	})

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serveConn(nc, cfg)
		}
	}()
	return srv
}

func (s *testServer) serveConn(nc net.Conn, cfg *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		nc.Close()
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		if newCh.ChannelType() != "session" {
			_ = newCh.Reject(ssh.UnknownChannelType, "only sessions")
			continue
		}
		ch, chReqs, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func() {
			defer ch.Close()
			for req := range chReqs {
				if req.Type != "exec" {
					_ = req.Reply(false, nil)
					continue
				}
				var payload struct{ Command string }
				if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
					_ = req.Reply(false, nil)
					return
				}
				_ = req.Reply(true, nil)
				status := s.handleCommand(ch, payload.Command)
				_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))
				return
			}
		}()
	}
}

func (s *testServer) dialOptions(t *testing.T) DialOptions {
	t.Helper()
	host, portStr, err := net.SplitHostPort(s.addr)
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)
	return DialOptions{
		Host:          host,
		Port:          port,
		User:          "monitor",
		Timeout:       5 * time.Second,
		SSHConfigPath: filepath.Join(t.TempDir(), "no-ssh-config"),
	}
}

func writeKey(t *testing.T, block *pem.Block) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "id_test")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	return path
}

func dialPassword(t *testing.T, srv *testServer) *Client {
	t.Helper()
	opts := srv.dialOptions(t)
	opts.Password = testPassword
	client, err := Dial(context.Background(), opts)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDial_Password(t *testing.T) {
	srv := startTestServer(t, nil)
	client := dialPassword(t, srv)

	if client.GetHost() != "127.0.0.1" {
		t.Errorf("GetHost() = %q, want 127.0.0.1", client.GetHost())
	}
	if client.GetAddress() != srv.addr {
		t.Errorf("GetAddress() = %q, want %q", client.GetAddress(), srv.addr)
	}
}

func TestDial_WrongPassword(t *testing.T) {
	srv := startTestServer(t, nil)
	opts := srv.dialOptions(t)
	opts.Password = "wrong"

	_, err := Dial(context.Background(), opts)
	if err == nil {
		t.Fatal("Dial with wrong password should fail")
	}
	if !errors.IsCode(err, errors.ErrAuth) {
		t.Errorf("error code = %q, want %q", errors.CodeOf(err), errors.ErrAuth)
	}
}

func TestDial_PrivateKey(t *testing.T) {
	signer, priv := newSigner(t)
	srv := startTestServer(t, signer.PublicKey())

	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	opts := srv.dialOptions(t)
	opts.KeyPath = writeKey(t, block)

	client, err := Dial(context.Background(), opts)
	if err != nil {
		t.Fatalf("Dial with key failed: %v", err)
	}
	client.Close()
}

func TestDial_EncryptedKey(t *testing.T) {
	signer, priv := newSigner(t)
	srv := startTestServer(t, signer.PublicKey())

	block, err := ssh.MarshalPrivateKeyWithPassphrase(priv, "", []byte("s3cret"))
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	keyPath := writeKey(t, block)

	t.Run("without passphrase", func(t *testing.T) {
		opts := srv.dialOptions(t)
		opts.KeyPath = keyPath
		_, err := Dial(context.Background(), opts)
		if !errors.IsCode(err, errors.ErrAuthConfig) {
			t.Fatalf("expected AUTH_CONFIG error, got %v", err)
		}
		var encErr *EncryptedKeyError
		if !stderrors.As(err, &encErr) {
			t.Errorf("expected EncryptedKeyError in chain, got %v", err)
		}
	})

	t.Run("with passphrase", func(t *testing.T) {
		opts := srv.dialOptions(t)
		opts.KeyPath = keyPath
		opts.Passphrase = "s3cret"
		client, err := Dial(context.Background(), opts)
		if err != nil {
			t.Fatalf("Dial failed: %v", err)
		}
		client.Close()
	})
}

func TestDial_CredentialErrors(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		code  string
	}{
		{name: "no credentials", creds: Credentials{}, code: errors.ErrAuthConfig},
		{name: "both variants", creds: Credentials{Password: "x", KeyPath: "/tmp/key"}, code: errors.ErrAuthConfig},
		{name: "missing key file", creds: Credentials{KeyPath: "/nonexistent/id_ed25519"}, code: errors.ErrAuthConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// never reaches the network
			_, err := Dial(context.Background(), DialOptions{Host: "192.0.2.1", Port: 22, Credentials: tt.creds})
			if !errors.IsCode(err, tt.code) {
				t.Errorf("code = %q, want %q (err: %v)", errors.CodeOf(err), tt.code, err)
			}
		})
	}
}

func TestDial_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close() // nothing listens on this port now

	_, err = Dial(context.Background(), DialOptions{
		Host:          "127.0.0.1",
		Port:          addr.Port,
		User:          "monitor",
		Credentials:   Credentials{Password: "x"},
		Timeout:       time.Second,
		SSHConfigPath: "/nonexistent/config",
	})
	if !errors.IsCode(err, errors.ErrSSH) {
		t.Fatalf("expected SSH error, got %v", err)
	}
}

func TestDial_StrictHostKeyUnknownHost(t *testing.T) {
	srv := startTestServer(t, nil)
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(knownHosts, nil, 0600); err != nil {
		t.Fatalf("write known_hosts: %v", err)
	}

	opts := srv.dialOptions(t)
	opts.Password = testPassword
	opts.StrictHostKey = true
	opts.KnownHostsPath = knownHosts

	if _, err := Dial(context.Background(), opts); err == nil {
		t.Fatal("strict host key checking should reject an unknown host")
	}
}

func TestExec_SimpleCommand(t *testing.T) {
	client := dialPassword(t, startTestServer(t, nil))

	stdout, _, exitCode, err := client.Exec("echo hello")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if exitCode != 0 {
		t.Errorf("exitCode = %d, want 0", exitCode)
	}
	if !bytes.Contains(stdout, []byte("hello")) {
		t.Errorf("stdout = %q, want to contain 'hello'", stdout)
	}
}

func TestExec_NonZeroExit(t *testing.T) {
	client := dialPassword(t, startTestServer(t, nil))

	_, _, exitCode, err := client.ExecContext(context.Background(), "exit 42")
	if err != nil {
		t.Fatalf("Exec failed unexpectedly: %v", err)
	}
	if exitCode != 42 {
		t.Errorf("exitCode = %d, want 42", exitCode)
	}
}

func TestExec_StderrOutput(t *testing.T) {
	client := dialPassword(t, startTestServer(t, nil))

	stdout, stderr, exitCode, err := client.ExecContext(context.Background(), "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	if exitCode != 0 {
		t.Errorf("exitCode = %d, want 0", exitCode)
	}
	if !bytes.Contains(stdout, []byte("out")) {
		t.Errorf("stdout = %q, want to contain 'out'", stdout)
	}
	if !bytes.Contains(stderr, []byte("err")) {
		t.Errorf("stderr = %q, want to contain 'err'", stderr)
	}
}

func TestExecContext_Cancel(t *testing.T) {
	client := dialPassword(t, startTestServer(t, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, exitCode, err := client.ExecContext(ctx, "hang")
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
	if exitCode != -1 {
		t.Errorf("exitCode = %d, want -1", exitCode)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancel took %v", elapsed)
	}
}

func TestExecContext_AlreadyCancelled(t *testing.T) {
	client := dialPassword(t, startTestServer(t, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, _, err := client.ExecContext(ctx, "echo hello"); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want Canceled", err)
	}
}

func TestClose_NilClient(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Errorf("Close on empty client = %v, want nil", err)
	}
}

func TestHostKeyMismatchError_Suggestion(t *testing.T) {
	e := &HostKeyMismatchError{Hostname: "10.0.0.11:22", ReceivedType: "ssh-ed25519", KnownHosts: "/home/u/.ssh/known_hosts"}

	if !strings.Contains(e.Error(), "10.0.0.11:22") {
		t.Errorf("Error() = %q", e.Error())
	}
	s := e.Suggestion()
	if !strings.Contains(s, "ssh-keygen -R 10.0.0.11 -f /home/u/.ssh/known_hosts") {
		t.Errorf("Suggestion() = %q", s)
	}
	if !strings.Contains(s, "known_hosts lists unknown") {
		t.Errorf("Suggestion() = %q", s)
	}
}
