package daemon

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/prashanthellina/pullbox/internal/proc"
	"github.com/prashanthellina/pullbox/internal/ssh"
)

// Binaries the daemon shells out to, locally and on the server.
var (
	localBinaries  = []string{"git", "ssh"}
	remoteBinaries = []string{"git", "inotifywait"}
)

// ConfigError is a fatal startup precondition failure. It aborts the
// daemon before any loop starts.
type ConfigError struct {
	Binary string
	Remote bool
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Remote {
		return fmt.Sprintf("%q remote binary required (or could not connect to server)", e.Binary)
	}
	return fmt.Sprintf("%q binary required", e.Binary)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// checkLocalBinaries probes the local search path for each binary.
func checkLocalBinaries(names []string) error {
	for _, bin := range names {
		if _, err := exec.LookPath(bin); err != nil {
			return &ConfigError{Binary: bin, Err: err}
		}
	}
	return nil
}

// checkRemoteBinaries probes the server through the remote shell. A
// failed probe covers both a missing binary and an unreachable server;
// the exit code alone cannot tell the two apart, so they are reported as
// one kind of failure.
func checkRemoteBinaries(ctx context.Context, shell *ssh.RemoteShell, names []string) error {
	for _, bin := range names {
		if err := shell.Which(ctx, bin); err != nil {
			if errors.Is(err, proc.ErrInterrupted) || errors.Is(err, context.Canceled) {
				return err
			}
			return &ConfigError{Binary: bin, Remote: true, Err: err}
		}
	}
	return nil
}

// ensureRemoteRepo initializes the bare repository on the server. Git
// treats re-initialization as a no-op, so the call is idempotent.
func ensureRemoteRepo(ctx context.Context, shell *ssh.RemoteShell, repoName string) error {
	if _, err := shell.Run(ctx, "git", "init", "--bare", repoName); err != nil {
		return fmt.Errorf("init remote repo %s: %w", repoName, err)
	}
	return nil
}
