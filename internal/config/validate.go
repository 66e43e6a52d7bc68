package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/hostwatch/internal/errors"
)

// Validate checks the config and returns the first problem as a structured
// CONFIG error.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig, "No config loaded", "Run 'hostwatch init' to create one.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but hostwatch only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade hostwatch or lower the 'version' field.")
	}

	if err := validateGlobal(cfg.Global); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'global' section in your config.")
	}

	if len(cfg.Servers) == 0 {
		return errors.New(errors.ErrConfig,
			"No servers configured",
			"Add at least one entry under 'servers', or run 'hostwatch init'.")
	}

	seen := make(map[string]bool, len(cfg.Servers))
	for i, s := range cfg.Servers {
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		if err := validateServer(s); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Server '%s': %s", label, err.Error()),
				"Check the 'servers' section in your config.")
		}
		if seen[s.Name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Server name '%s' is used more than once", s.Name),
				"Give every server a unique name.")
		}
		seen[s.Name] = true
	}

	return nil
}

func validateGlobal(g GlobalConfig) error {
	if g.Refresh < MinInterval {
		return fmt.Errorf("refresh %s is below the %s minimum", g.Refresh, MinInterval)
	}
	if err := ValidateDisplay(g.Display); err != nil {
		return err
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", g.Timeout)
	}
	if g.BusCapacity <= 0 {
		return fmt.Errorf("bus_capacity must be greater than 0, got %d", g.BusCapacity)
	}
	return nil
}

// ValidateDisplay checks a display mode name.
func ValidateDisplay(mode string) error {
	switch mode {
	case DisplayTUI, DisplayPlain:
		return nil
	default:
		return fmt.Errorf("display must be '%s' or '%s', got '%s'", DisplayTUI, DisplayPlain, mode)
	}
}

func validateServer(s Server) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(s.Host) == "" {
		return fmt.Errorf("host is required")
	}
	if strings.TrimSpace(s.User) == "" {
		return fmt.Errorf("user is required")
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port %d is out of range", s.Port)
	}

	hasPassword := s.Password != ""
	hasKey := s.PrivKeyPath != ""
	switch {
	case hasPassword && hasKey:
		return fmt.Errorf("set either password or privkey_path, not both")
	case !hasPassword && !hasKey:
		return fmt.Errorf("a password or privkey_path is required")
	case s.Passphrase != "" && !hasKey:
		return fmt.Errorf("passphrase only applies with privkey_path")
	}

	if s.Interval != 0 && s.Interval < MinInterval {
		return fmt.Errorf("interval %s is below the %s minimum", s.Interval, MinInterval)
	}

	if _, err := s.Kinds(); err != nil {
		return err
	}
	return nil
}
