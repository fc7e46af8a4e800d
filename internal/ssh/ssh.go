// Package ssh runs commands on the sync server through the local ssh
// binary. Authentication is the user's own ssh setup (keys, agent,
// config); pullbox never handles credentials itself.
package ssh

import (
	"context"
	"fmt"

	"github.com/prashanthellina/pullbox/internal/proc"
)

// RemoteShell executes commands on one server.
type RemoteShell struct {
	server string
	runner proc.Runner
}

func NewRemoteShell(server string, runner proc.Runner) *RemoteShell {
	return &RemoteShell{
		server: server,
		runner: runner,
	}
}

func (s *RemoteShell) Server() string {
	return s.server
}

// Run executes `ssh <server> <args...>` and classifies the exit code.
// The exit code is the remote command's own, except 255 which ssh
// reserves for connection failures.
func (s *RemoteShell) Run(ctx context.Context, args ...string) (proc.Result, error) {
	cmd := proc.Command{
		Bin:  "ssh",
		Args: append([]string{s.server}, args...),
	}
	return s.runner.Run(ctx, cmd)
}

// Which probes for a binary on the server's search path. A nonzero exit
// means the binary is missing or the server could not be reached; the two
// are indistinguishable here and reported as one failure.
func (s *RemoteShell) Which(ctx context.Context, bin string) error {
	if _, err := s.Run(ctx, "which", bin); err != nil {
		return fmt.Errorf("probe remote %s: %w", bin, err)
	}
	return nil
}

// WatchTree blocks until something under dir changes on the server, using
// a recursive inotifywait that exits on the first event. dir is relative
// to the ssh login directory.
func (s *RemoteShell) WatchTree(ctx context.Context, dir string) error {
	_, err := s.Run(ctx,
		"inotifywait", "-rqq",
		"-e", "modify", "-e", "move", "-e", "create", "-e", "delete",
		dir,
	)
	if err != nil {
		return fmt.Errorf("watch remote %s: %w", dir, err)
	}
	return nil
}
