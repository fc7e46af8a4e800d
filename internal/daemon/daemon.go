// Package daemon wires the workspace, watcher, sync loops and control
// plane together under one lifecycle.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/prashanthellina/pullbox/internal/config"
	"github.com/prashanthellina/pullbox/internal/controlplane"
	"github.com/prashanthellina/pullbox/internal/controlplane/handlers"
	"github.com/prashanthellina/pullbox/internal/git"
	"github.com/prashanthellina/pullbox/internal/proc"
	"github.com/prashanthellina/pullbox/internal/ssh"
	"github.com/prashanthellina/pullbox/internal/sync"
	"github.com/prashanthellina/pullbox/internal/workspace"
)

const shutdownTimeout = 10 * time.Second

// Loop pacing. The tracking loop blocks inside ssh, so it only needs a
// failure delay; the pull and push loops tick continuously and re-check
// their own gates each pass.
var (
	trackPolicy = sync.RetryPolicy{FailureDelay: 1 * time.Second}
	cyclePolicy = sync.RetryPolicy{SuccessDelay: 100 * time.Millisecond, FailureDelay: 1 * time.Second}
)

// Daemon is one running pullbox instance: a locked workspace, the sync
// engine and its three loops, and the optional local HTTP control plane.
type Daemon struct {
	id        string
	startedAt time.Time
	config    *config.Config
	log       *slog.Logger

	ws      *workspace.Workspace
	shell   *ssh.RemoteShell
	engine  *sync.Engine
	ignore  *sync.IgnoreList
	watcher *sync.Watcher
	cp      *controlplane.Server
}

func New(cfg *config.Config, log *slog.Logger) (*Daemon, error) {
	return newDaemon(cfg, log, proc.ExecRunner{})
}

func newDaemon(cfg *config.Config, log *slog.Logger, runner proc.Runner) (*Daemon, error) {
	ws, err := workspace.New(cfg.Path, cfg.Server, cfg.LockFile)
	if err != nil {
		return nil, err
	}

	shell := ssh.NewRemoteShell(cfg.Server, runner)
	engine := sync.NewEngine(ws, git.NewClient(runner), shell, cfg.PollInterval, log)
	ignore := sync.NewIgnoreList(ws.Root, log)
	watcher := sync.NewWatcher(ws.Root, ignore, engine.MarkDirty, log)

	d := &Daemon{
		id:        uuid.NewString(),
		startedAt: time.Now().UTC(),
		config:    cfg,
		log:       log,
		ws:        ws,
		shell:     shell,
		engine:    engine,
		ignore:    ignore,
		watcher:   watcher,
	}

	if cfg.HTTPEnabled {
		d.cp = controlplane.New(
			&controlplane.Config{Addr: cfg.HTTPAddr, Token: cfg.HTTPToken},
			&handlers.Daemon{
				ID:        d.id,
				StartedAt: d.startedAt,
				Workspace: ws,
				Engine:    engine,
			},
			log,
		)
	}

	return d, nil
}

func (d *Daemon) ID() string {
	return d.id
}

// Start runs the daemon until ctx is canceled or a fatal error occurs.
// Startup order matters: the lock and the preflight checks run before
// anything touches the repository, the first pull (or bootstrap) must
// succeed before any loop starts, and the ignore list loads after that
// pull so rules fetched from the server apply.
func (d *Daemon) Start(ctx context.Context) error {
	d.log.Info("daemon start", "id", d.id, "workspace", d.ws.Root, "remote", d.ws.RemoteURL())

	if err := d.ws.Lock(); err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.ws.LockPath(), err)
	}
	defer d.ws.Unlock()

	if err := checkLocalBinaries(localBinaries); err != nil {
		return err
	}
	if err := checkRemoteBinaries(ctx, d.shell, remoteBinaries); err != nil {
		return err
	}
	if err := ensureRemoteRepo(ctx, d.shell, d.ws.RepoName); err != nil {
		return err
	}

	if err := d.engine.PullChanges(ctx); err != nil {
		return fmt.Errorf("initial pull: %w", err)
	}

	d.ignore.Load()

	if err := d.watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return sync.KeepRunning(egCtx, d.log, "track", d.engine.TrackRemoteChanges, trackPolicy)
	})
	eg.Go(func() error {
		return sync.KeepRunning(egCtx, d.log, "pull", d.engine.PullChanges, cyclePolicy)
	})
	eg.Go(func() error {
		return sync.KeepRunning(egCtx, d.log, "push", d.engine.PushChanges, cyclePolicy)
	})

	if d.cp != nil {
		eg.Go(func() error {
			return d.cp.Start(egCtx)
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return d.Stop(shutdownCtx)
	})

	err := eg.Wait()
	if err != nil && !proc.IsInterruption(err) {
		d.log.Error("daemon failure", "error", err)
		return err
	}

	d.log.Info("daemon stopped")
	return err
}

// Stop halts the watcher and the control plane. The loops stop through
// context cancellation, not through Stop.
func (d *Daemon) Stop(ctx context.Context) error {
	d.watcher.Stop()
	if d.cp != nil {
		if err := d.cp.Stop(ctx); err != nil {
			return fmt.Errorf("stop control plane: %w", err)
		}
	}
	return nil
}
