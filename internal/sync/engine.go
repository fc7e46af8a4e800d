// Package sync is the synchronization core: the filesystem watcher, the
// shared dirty/deadline state, and the pull, push and remote-tracking
// operations that the daemon's loops drive.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/prashanthellina/pullbox/internal/git"
	"github.com/prashanthellina/pullbox/internal/ssh"
	"github.com/prashanthellina/pullbox/internal/utils"
	"github.com/prashanthellina/pullbox/internal/workspace"
)

const (
	bootstrapFile    = "README.md"
	bootstrapMessage = "initial"
	commitTimeFormat = "20060102T150405"
)

// Engine owns the sync operations against one workspace. The pull and
// push paths both mutate the same checkout, so every repository-touching
// section runs under repoMu.
type Engine struct {
	ws           *workspace.Workspace
	git          *git.Client
	shell        *ssh.RemoteShell
	pollInterval time.Duration
	log          *slog.Logger

	dirty    *DirtyState
	schedule *PullSchedule
	stats    *Stats

	repoMu sync.Mutex
}

func NewEngine(ws *workspace.Workspace, gitClient *git.Client, shell *ssh.RemoteShell, pollInterval time.Duration, log *slog.Logger) *Engine {
	return &Engine{
		ws:           ws,
		git:          gitClient,
		shell:        shell,
		pollInterval: pollInterval,
		log:          log,
		dirty:        NewDirtyState(),
		schedule:     &PullSchedule{},
		stats:        NewStats(),
	}
}

func (e *Engine) Dirty() *DirtyState {
	return e.dirty
}

func (e *Engine) Schedule() *PullSchedule {
	return e.schedule
}

func (e *Engine) Stats() *Stats {
	return e.stats
}

// MarkDirty is the watcher's change callback.
func (e *Engine) MarkDirty(relPath string) {
	e.dirty.Mark(relPath)
}

// SyncNow makes both loops act on their next tick: the pull deadline
// expires and the workspace is flagged dirty.
func (e *Engine) SyncNow() {
	e.schedule.ExpireNow()
	e.dirty.Mark("")
}

// TrackRemoteChanges blocks on the server's change watch. When it fires,
// the next pull becomes due immediately instead of waiting out the poll
// interval.
func (e *Engine) TrackRemoteChanges(ctx context.Context) error {
	if err := e.shell.WatchTree(ctx, e.ws.RepoName); err != nil {
		e.stats.RecordFailure(err)
		return err
	}

	e.schedule.ExpireNow()
	e.stats.RecordRemoteEvent()
	e.log.Debug("remote change notified", "repo", e.ws.RepoName)
	return nil
}

// PullChanges brings the checkout up to date with the server when the
// schedule allows it, bootstrapping a missing checkout first. On success
// the next pull is pushed out one poll interval.
func (e *Engine) PullChanges(ctx context.Context) error {
	if !e.schedule.Due(time.Now()) {
		return nil
	}

	e.repoMu.Lock()
	defer e.repoMu.Unlock()

	if !e.ws.Exists() {
		if err := e.bootstrap(ctx); err != nil {
			e.stats.RecordFailure(err)
			return fmt.Errorf("bootstrap: %w", err)
		}
	} else if err := e.git.Pull(ctx, e.ws.Root); err != nil {
		e.stats.RecordFailure(err)
		return err
	}

	e.schedule.Extend(time.Now(), e.pollInterval)
	e.stats.RecordPull()
	e.log.Debug("pulled", "repo", e.ws.RepoName)
	return nil
}

// PushChanges commits and uploads local changes when the dirty flag says
// there are any. The flag clears only once the cycle completes, so a
// failed cycle keeps the work queued for the next attempt.
func (e *Engine) PushChanges(ctx context.Context) error {
	if !e.dirty.Dirty() {
		return nil
	}

	e.repoMu.Lock()
	defer e.repoMu.Unlock()

	if err := e.git.Add(ctx, e.ws.Root, "."); err != nil {
		e.stats.RecordFailure(err)
		return err
	}

	message := "auto commit at " + time.Now().UTC().Format(commitTimeFormat)
	committed, err := e.git.TryCommit(ctx, e.ws.Root, message)
	if err != nil {
		e.stats.RecordFailure(err)
		return err
	}
	if !committed {
		e.log.Debug("nothing to commit", "repo", e.ws.RepoName)
	}

	pushed, err := e.git.TryPush(ctx, e.ws.Root)
	if err != nil {
		e.stats.RecordFailure(err)
		return err
	}
	if !pushed {
		e.log.Warn("push rejected, remote advanced", "repo", e.ws.RepoName)
	}

	e.dirty.Clear()
	e.stats.RecordPush()
	e.log.Debug("pushed", "repo", e.ws.RepoName, "committed", committed, "uploaded", pushed)
	return nil
}

// bootstrap creates the checkout from scratch: clone the remote into the
// parent directory, then seed the repository with a placeholder commit so
// a brand-new remote has a history for later pulls and pushes.
func (e *Engine) bootstrap(ctx context.Context) error {
	parent := e.ws.ParentDir()
	if err := utils.EnsureDir(parent); err != nil {
		return fmt.Errorf("create %s: %w", parent, err)
	}

	if err := e.git.Clone(ctx, parent, e.ws.RemoteURL()); err != nil {
		return err
	}

	readme := filepath.Join(e.ws.Root, bootstrapFile)
	if err := utils.Touch(readme); err != nil {
		return fmt.Errorf("create %s: %w", readme, err)
	}

	if err := e.git.Add(ctx, e.ws.Root, bootstrapFile); err != nil {
		return err
	}
	if err := e.git.Commit(ctx, e.ws.Root, bootstrapMessage); err != nil {
		return err
	}
	if err := e.git.Push(ctx, e.ws.Root); err != nil {
		return err
	}

	e.log.Info("bootstrapped local checkout", "root", e.ws.Root, "remote", e.ws.RemoteURL())
	return nil
}
