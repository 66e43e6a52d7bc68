package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/rileyhilliard/hostwatch/internal/errors"
)

// EncryptedKeyError is returned when a private key needs a passphrase that
// was not configured.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// authMethods turns exactly one credential variant into auth methods.
func authMethods(creds Credentials) ([]ssh.AuthMethod, error) {
	switch {
	case creds.Password != "" && creds.KeyPath != "":
		return nil, errors.New(errors.ErrAuthConfig,
			"Both a password and a private key are configured",
			"Set either password or privkey_path for this server, not both.")
	case creds.Password != "":
		return passwordAuth(creds.Password), nil
	case creds.KeyPath != "":
		method, err := keyFileAuth(expandPath(creds.KeyPath), creds.Passphrase)
		if err != nil {
			return nil, err
		}
		return []ssh.AuthMethod{method}, nil
	default:
		return nil, errors.New(errors.ErrAuthConfig,
			"No credentials configured",
			"Set password or privkey_path for this server.")
	}
}

// passwordAuth offers the password both directly and as the answer to every
// keyboard-interactive prompt, which is how many PAM setups ask for it.
func passwordAuth(password string) []ssh.AuthMethod {
	return []ssh.AuthMethod{
		ssh.Password(password),
		ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range answers {
				answers[i] = password
			}
			return answers, nil
		}),
	}
}

// keyFileAuth loads a private key. An encrypted key without a passphrase is
// an AUTH_CONFIG error wrapping EncryptedKeyError.
func keyFileAuth(keyPath, passphrase string) (ssh.AuthMethod, error) {
	pem, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAuthConfig,
			fmt.Sprintf("Couldn't read private key %s", keyPath),
			"Check privkey_path points at a readable key file.")
	}

	var signer ssh.Signer
	if passphrase == "" {
		signer, err = ssh.ParsePrivateKey(pem)
	} else {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(pem, []byte(passphrase))
	}
	if err == nil {
		return ssh.PublicKeys(signer), nil
	}

	var missing *ssh.PassphraseMissingError
	if stderrors.As(err, &missing) || (passphrase == "" && bytes.Contains(pem, []byte("ENCRYPTED"))) {
		return nil, errors.WrapWithCode(&EncryptedKeyError{Path: keyPath}, errors.ErrAuthConfig,
			fmt.Sprintf("Private key %s needs a passphrase", keyPath),
			"Set passphrase for this server.")
	}
	return nil, errors.WrapWithCode(err, errors.ErrAuth,
		fmt.Sprintf("Couldn't parse private key %s", keyPath),
		"Check the key format and passphrase.")
}

func isAuthFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "no supported methods")
}
