// Package git wraps the git CLI for the operations pullbox performs on
// the sync repository. Every call names its working directory explicitly;
// nothing here touches the process-wide current directory.
package git

import (
	"context"
	"fmt"

	"github.com/prashanthellina/pullbox/internal/proc"
)

// Remote and branch the sync repository pushes to and pulls from.
const (
	Remote = "origin"
	Branch = "master"
)

// Client issues git commands through a proc.Runner.
type Client struct {
	runner proc.Runner
}

func NewClient(runner proc.Runner) *Client {
	return &Client{runner: runner}
}

// Clone runs `git clone <remoteURL>` inside parentDir. Git creates the
// checkout as a child of parentDir, named after the repository.
func (c *Client) Clone(ctx context.Context, parentDir, remoteURL string) error {
	_, err := c.runner.Run(ctx, proc.Command{
		Bin:  "git",
		Args: []string{"clone", remoteURL},
		Dir:  parentDir,
	})
	if err != nil {
		return fmt.Errorf("clone %s: %w", remoteURL, err)
	}
	return nil
}

// Pull merges remote changes into the checkout at dir.
func (c *Client) Pull(ctx context.Context, dir string) error {
	_, err := c.runner.Run(ctx, proc.Command{
		Bin:  "git",
		Args: []string{"pull"},
		Dir:  dir,
	})
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	return nil
}

// Add stages pathspec (a file, or "." for the whole tree) at dir.
func (c *Client) Add(ctx context.Context, dir, pathspec string) error {
	_, err := c.runner.Run(ctx, proc.Command{
		Bin:  "git",
		Args: []string{"add", pathspec},
		Dir:  dir,
	})
	if err != nil {
		return fmt.Errorf("add %s: %w", pathspec, err)
	}
	return nil
}

// Commit records staged and tracked changes with the given message. A
// commit with nothing to record is an error here; use TryCommit where
// that is an expected outcome.
func (c *Client) Commit(ctx context.Context, dir, message string) error {
	_, err := c.runner.Run(ctx, proc.Command{
		Bin:  "git",
		Args: []string{"commit", "-a", "-m", message},
		Dir:  dir,
	})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// TryCommit commits like Commit but treats "nothing to commit" (exit 1)
// as a clean no-op. It reports whether a commit was actually created.
func (c *Client) TryCommit(ctx context.Context, dir, message string) (bool, error) {
	res, err := c.runner.Run(ctx, proc.Command{
		Bin:     "git",
		Args:    []string{"commit", "-a", "-m", message},
		Dir:     dir,
		OKCodes: []int{1},
	})
	if err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return res.Outcome == proc.OutcomeOK, nil
}

// Push uploads the branch to the remote. Any rejection is an error.
func (c *Client) Push(ctx context.Context, dir string) error {
	_, err := c.runner.Run(ctx, proc.Command{
		Bin:  "git",
		Args: []string{"push", Remote, Branch},
		Dir:  dir,
	})
	if err != nil {
		return fmt.Errorf("push: %w", err)
	}
	return nil
}

// TryPush pushes like Push but treats a rejected push (exit 1, remote
// advanced concurrently) as a no-op; the divergence resolves itself on
// the next pull-then-push cycle. It reports whether the push landed.
func (c *Client) TryPush(ctx context.Context, dir string) (bool, error) {
	res, err := c.runner.Run(ctx, proc.Command{
		Bin:     "git",
		Args:    []string{"push", Remote, Branch},
		Dir:     dir,
		OKCodes: []int{1},
	})
	if err != nil {
		return false, fmt.Errorf("push: %w", err)
	}
	return res.Outcome == proc.OutcomeOK, nil
}
