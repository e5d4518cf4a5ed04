// Package logger wraps charmbracelet/log with the level/file resolution
// the rest of the client needs: a single *log.Logger built once from
// config.Config and handed to the components that log (session, dispatch).
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New builds a *log.Logger at the given level, writing to stderr; use
// SetupFileLogging when a log file is configured so the session-start
// banner is also written.
func New(level string) *log.Logger {
	l := log.New(os.Stderr)
	l.SetLevel(parseLevel(level))
	return l
}

func parseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "WARN", "WARNING":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	case "FATAL":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// SetupFileLogging opens (creating if needed) the client's log file and
// returns a *log.Logger writing to it plus the handle so the caller can
// close it on shutdown. logPath empty resolves to
// $HOME/.local/share/synergo/synergo.log, falling back to ./synergo.log if
// the home directory is unavailable.
func SetupFileLogging(logPath, level string) (*log.Logger, *os.File, error) {
	if logPath == "" {
		logPath = defaultLogPath()
	}
	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("logger: create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // logPath is resolved, not user-controlled in-process
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open log file %s: %w", logPath, err)
	}

	if _, err := fmt.Fprintf(f, "\n%s synergo: === new session ===\n", time.Now().Format("15:04:05")); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to write to log file: %v\n", err)
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	l.SetLevel(parseLevel(level))
	return l, f, nil
}

func defaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "synergo.log"
	}
	dir := filepath.Join(home, ".local", "share", "synergo")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "synergo.log"
	}
	return filepath.Join(dir, "synergo.log")
}
