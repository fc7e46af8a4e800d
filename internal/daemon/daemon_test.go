package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanthellina/pullbox/internal/config"
	"github.com/prashanthellina/pullbox/internal/proc"
	"github.com/prashanthellina/pullbox/internal/proc/proctest"
	"github.com/prashanthellina/pullbox/internal/workspace"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	root := filepath.Join(t.TempDir(), "notes")
	require.NoError(t, os.MkdirAll(root, 0o755))

	return &config.Config{
		Path:         root,
		Server:       "host",
		LockFile:     filepath.Join(t.TempDir(), "pullbox.lock"),
		PollInterval: time.Minute,
	}
}

// stubLocalBinaries keeps the local preflight independent of what the
// test machine has installed.
func stubLocalBinaries(t *testing.T) {
	t.Helper()
	orig := localBinaries
	localBinaries = []string{"sh"}
	t.Cleanup(func() { localBinaries = orig })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDaemonLifecycle(t *testing.T) {
	stubLocalBinaries(t)

	// The remote watch blocks like a real inotifywait; everything else
	// succeeds immediately.
	runner := proctest.New(func(ctx context.Context, cmd proc.Command) (int, error) {
		if strings.Contains(cmd.String(), "-rqq") {
			<-ctx.Done()
			return 0, ctx.Err()
		}
		return 0, nil
	})

	cfg := newTestConfig(t)
	d, err := newDaemon(cfg, discardLogger(), runner)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- d.Start(ctx) }()

	require.Eventually(t, func() bool {
		lines := runner.Lines()
		return slices.Contains(lines, "git pull") &&
			slices.Contains(lines, "git push origin master")
	}, 5*time.Second, 10*time.Millisecond, "daemon never completed a pull and push cycle")

	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop after cancellation")
	}

	// The lock must be free for the next instance.
	next, err := workspace.New(cfg.Path, cfg.Server, cfg.LockFile)
	require.NoError(t, err)
	require.NoError(t, next.Lock())
	require.NoError(t, next.Unlock())
}

func TestDaemonStartPreflight(t *testing.T) {
	runner := proctest.New(func(_ context.Context, cmd proc.Command) (int, error) {
		if cmd.String() == "ssh host which inotifywait" {
			return 1, nil
		}
		return 0, nil
	})

	stubLocalBinaries(t)
	d, err := newDaemon(newTestConfig(t), discardLogger(), runner)
	require.NoError(t, err)

	err = d.Start(t.Context())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "inotifywait", cfgErr.Binary)
	assert.True(t, cfgErr.Remote)
}

func TestDaemonStartMissingLocalBinary(t *testing.T) {
	orig := localBinaries
	localBinaries = []string{"pullbox-no-such-binary"}
	t.Cleanup(func() { localBinaries = orig })

	runner := proctest.New(nil)
	d, err := newDaemon(newTestConfig(t), discardLogger(), runner)
	require.NoError(t, err)

	err = d.Start(t.Context())

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.False(t, cfgErr.Remote)
	assert.Empty(t, runner.Lines(), "no command should run when a local binary is missing")
}

func TestDaemonStartLockHeld(t *testing.T) {
	cfg := newTestConfig(t)

	holder, err := workspace.New(cfg.Path, cfg.Server, cfg.LockFile)
	require.NoError(t, err)
	require.NoError(t, holder.Lock())
	defer holder.Unlock()

	d, err := newDaemon(cfg, discardLogger(), proctest.New(nil))
	require.NoError(t, err)

	err = d.Start(t.Context())
	require.ErrorIs(t, err, workspace.ErrWorkspaceLocked)
}

func TestDaemonInitialPullFailureIsFatal(t *testing.T) {
	stubLocalBinaries(t)

	runner := proctest.New(func(_ context.Context, cmd proc.Command) (int, error) {
		if cmd.String() == "git pull" {
			return 128, nil
		}
		return 0, nil
	})

	d, err := newDaemon(newTestConfig(t), discardLogger(), runner)
	require.NoError(t, err)

	err = d.Start(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "initial pull")

	var cmdErr *proc.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 128, cmdErr.ExitCode)
}
