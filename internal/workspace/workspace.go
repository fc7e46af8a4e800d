// Package workspace models the one synchronization target a pullbox
// daemon owns: a local checkout, the server it syncs with, and the
// single-instance lock that keeps a second daemon off the same machine.
package workspace

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/prashanthellina/pullbox/internal/utils"
)

var ErrWorkspaceLocked = errors.New("workspace locked by another process")

type Workspace struct {
	// Root is the absolute path of the local checkout.
	Root string

	// Server is the host the repository lives on, in ssh address form.
	Server string

	// RepoName is the final segment of Root. It names the bare repository
	// on the server, relative to the ssh login directory, and never
	// changes for the lifetime of the daemon.
	RepoName string

	flock *flock.Flock
}

func New(rootDir, server, lockPath string) (*Workspace, error) {
	root, err := utils.ResolvePath(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", rootDir, err)
	}

	repoName := filepath.Base(root)
	if repoName == "." || repoName == string(filepath.Separator) {
		return nil, fmt.Errorf("path %s does not name a directory", rootDir)
	}

	lockPath, err = utils.ResolvePath(lockPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lock file %s: %w", lockPath, err)
	}

	return &Workspace{
		Root:     root,
		Server:   server,
		RepoName: repoName,
		flock:    flock.New(lockPath),
	}, nil
}

// RemoteURL is the repository address in scp-like form, `server:repo`.
func (w *Workspace) RemoteURL() string {
	return w.Server + ":" + w.RepoName
}

// ParentDir is the directory the checkout lives in. Cloning runs here.
func (w *Workspace) ParentDir() string {
	return filepath.Dir(w.Root)
}

// Exists reports whether the local checkout directory is present.
func (w *Workspace) Exists() bool {
	return utils.DirExists(w.Root)
}

func (w *Workspace) LockPath() string {
	return w.flock.Path()
}

// Lock takes the single-instance lock without blocking. A held lock means
// another daemon is already syncing on this machine.
func (w *Workspace) Lock() error {
	if err := utils.EnsureParent(w.flock.Path()); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	locked, err := w.flock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock workspace: %w", err)
	}
	if !locked {
		return ErrWorkspaceLocked
	}

	return nil
}

func (w *Workspace) Unlock() error {
	// if this process hasn't locked the workspace, leave the lock file alone
	if !w.flock.Locked() {
		return nil
	}

	if err := w.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to unlock workspace: %w", err)
	}

	return nil
}
