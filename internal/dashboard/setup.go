package dashboard

import (
	"os"

	"golang.org/x/term"

	"github.com/rileyhilliard/hostwatch/internal/config"
	"github.com/rileyhilliard/hostwatch/internal/logger"
)

// ResolveDisplay returns the display mode to use. The TUI needs a terminal,
// so "tui" falls back to "plain" when out is not one.
func ResolveDisplay(mode string, out *os.File) string {
	if mode != config.DisplayTUI {
		return mode
	}
	if out == nil || !term.IsTerminal(int(out.Fd())) {
		return config.DisplayPlain
	}
	return mode
}

// NewLogger builds the side log for a display mode. The TUI owns the
// terminal, so it logs to a file; plain mode logs to stderr. The returned
// close function is never nil.
func NewLogger(display, logFile string, debug bool) (logger.Logger, func() error, error) {
	if display == config.DisplayPlain {
		return logger.NewConsoleLogger(debug), func() error { return nil }, nil
	}
	if logFile == "" {
		logFile = config.DefaultLogFile()
	}
	return logger.NewFileLogger(logFile, debug)
}
