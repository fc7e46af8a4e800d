package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanthellina/pullbox/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := loadConfig(rootCmd, []string{"/tmp/notes", "user@host"})

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/tmp/notes", cfg.Path)
	assert.Equal(t, "user@host", cfg.Server)
	assert.Equal(t, config.DefaultLogFile, cfg.LogFile)
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, config.DefaultLockFile(), cfg.LockFile)
	assert.Equal(t, config.DefaultPollInterval, cfg.PollInterval)
	assert.True(t, cfg.HTTPEnabled)
	assert.Equal(t, config.DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Empty(t, cfg.HTTPToken)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("PULLBOX_LOG_LEVEL", "debug")
	t.Setenv("PULLBOX_QUIET", "true")
	t.Setenv("PULLBOX_POLL_INTERVAL", "30s")
	t.Setenv("PULLBOX_HTTP_TOKEN", "sekrit")
	t.Setenv("PULLBOX_NO_HTTP", "true")

	cfg := loadConfig(rootCmd, []string{"/tmp/notes", "user@host"})

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, "sekrit", cfg.HTTPToken)
	assert.False(t, cfg.HTTPEnabled)
}

func TestRootCommandFlags(t *testing.T) {
	for _, name := range []string{
		"log", "log-level", "quiet", "lock-file",
		"poll-interval", "http-addr", "http-token", "no-http",
	} {
		require.NotNil(t, rootCmd.Flags().Lookup(name), "flag %s", name)
	}

	assert.Equal(t, config.DefaultHTTPAddr, rootCmd.Flags().Lookup("http-addr").DefValue)
	assert.Equal(t, config.DefaultLogFile, rootCmd.Flags().Lookup("log").DefValue)
	assert.Equal(t, "q", rootCmd.Flags().Lookup("quiet").Shorthand)
}

func TestRootCommandRequiresPathAndServer(t *testing.T) {
	require.Error(t, rootCmd.Args(rootCmd, []string{}))
	require.Error(t, rootCmd.Args(rootCmd, []string{"only-path"}))
	require.NoError(t, rootCmd.Args(rootCmd, []string{"path", "server"}))
	require.Error(t, rootCmd.Args(rootCmd, []string{"path", "server", "extra"}))
}

func TestNewLoggerWritesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "log.pullbox")
	cfg := &config.Config{
		LogFile:  logFile,
		LogLevel: "info",
		Quiet:    true,
	}

	logger, closeLogs, err := newLogger(cfg)
	require.NoError(t, err)

	logger.Info("hello from the daemon")
	closeLogs()

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the daemon")
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	_, _, err := newLogger(&config.Config{LogFile: "log.pullbox", LogLevel: "nope"})
	require.Error(t, err)
}
