package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prashanthellina/pullbox/internal/proc"
	"github.com/prashanthellina/pullbox/internal/proc/proctest"
	"github.com/prashanthellina/pullbox/internal/ssh"
)

func TestCheckLocalBinaries(t *testing.T) {
	require.NoError(t, checkLocalBinaries([]string{"sh"}))

	err := checkLocalBinaries([]string{"pullbox-no-such-binary"})
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "pullbox-no-such-binary", cfgErr.Binary)
	assert.False(t, cfgErr.Remote)
}

func TestCheckRemoteBinaries(t *testing.T) {
	runner := proctest.New(nil)
	shell := ssh.NewRemoteShell("host", runner)

	require.NoError(t, checkRemoteBinaries(t.Context(), shell, []string{"git", "inotifywait"}))
	assert.Equal(t, []string{
		"ssh host which git",
		"ssh host which inotifywait",
	}, runner.Lines())
}

func TestCheckRemoteBinariesMissing(t *testing.T) {
	runner := proctest.New(func(context.Context, proc.Command) (int, error) {
		return 1, nil
	})
	shell := ssh.NewRemoteShell("host", runner)

	err := checkRemoteBinaries(t.Context(), shell, []string{"inotifywait"})

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "inotifywait", cfgErr.Binary)
	assert.True(t, cfgErr.Remote)
}

func TestCheckRemoteBinariesInterrupted(t *testing.T) {
	runner := proctest.New(func(context.Context, proc.Command) (int, error) {
		return 130, nil
	})
	shell := ssh.NewRemoteShell("host", runner)

	err := checkRemoteBinaries(t.Context(), shell, []string{"git"})
	require.ErrorIs(t, err, proc.ErrInterrupted)

	var cfgErr *ConfigError
	assert.False(t, errors.As(err, &cfgErr))
}

func TestEnsureRemoteRepoIdempotent(t *testing.T) {
	runner := proctest.New(nil)
	shell := ssh.NewRemoteShell("host", runner)

	require.NoError(t, ensureRemoteRepo(t.Context(), shell, "notes"))
	require.NoError(t, ensureRemoteRepo(t.Context(), shell, "notes"))
	assert.Equal(t, []string{
		"ssh host git init --bare notes",
		"ssh host git init --bare notes",
	}, runner.Lines())
}
