package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandTilde resolves a leading "~" or "~/" against the home directory.
// "~name" forms are returned unchanged, as is everything when the home
// directory is unknown.
func ExpandTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// Expand substitutes ${USER}, ${HOME} and ${TMPDIR} in a local path, then
// resolves a leading ~.
func Expand(s string) string {
	if !strings.Contains(s, "${") {
		return ExpandTilde(s)
	}
	r := strings.NewReplacer(
		"${USER}", currentUser(),
		"${HOME}", homeOrTilde(),
		"${TMPDIR}", strings.TrimSuffix(os.TempDir(), "/"),
	)
	return ExpandTilde(r.Replace(s))
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "user"
}

func homeOrTilde() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "~"
}

// DefaultLogFile is where the side log goes when global.log_file is empty.
func DefaultLogFile() string {
	return filepath.Join(os.TempDir(), "hostwatch.log")
}
