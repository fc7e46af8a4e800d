// Package config holds the daemon configuration assembled by the CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultLogFile      = "log.pullbox"
	DefaultLogLevel     = "warn"
	DefaultPollInterval = 60 * time.Second
	DefaultHTTPAddr     = "127.0.0.1:7939"
)

// DefaultLockFile is the single-instance lock location when none is given.
func DefaultLockFile() string {
	return filepath.Join(os.TempDir(), "pullbox.lock")
}

type Config struct {
	// Path is the local directory to keep in sync.
	Path string

	// Server is the ssh address of the machine holding the bare repository.
	Server string

	LogFile  string
	LogLevel string
	Quiet    bool

	LockFile string

	// PollInterval caps how often the pull engine contacts the server
	// absent a remote change notification.
	PollInterval time.Duration

	// Local control-plane API listener.
	HTTPEnabled bool
	HTTPAddr    string
	HTTPToken   string
}

func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("path is required")
	}
	if c.Server == "" {
		return errors.New("server is required")
	}
	if c.LockFile == "" {
		return errors.New("lock file path is required")
	}
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.HTTPEnabled && c.HTTPAddr == "" {
		return errors.New("http address is required")
	}
	return nil
}

// ParseLevel maps a configured level name onto a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
}
