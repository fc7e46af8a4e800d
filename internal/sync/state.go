package sync

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// pendingPathLimit bounds how many changed paths are remembered between
// pushes. The flag alone drives the push cycle; the paths are a sample
// for status reporting.
const pendingPathLimit = 512

// DirtyState is the shared "local changes await push" flag. The watcher
// sets it, the push engine clears it after a completed cycle. A mark that
// lands while a push is finishing is picked up by the next cycle.
type DirtyState struct {
	dirty   atomic.Bool
	pending *lru.Cache[string, struct{}]
}

func NewDirtyState() *DirtyState {
	pending, _ := lru.New[string, struct{}](pendingPathLimit)
	d := &DirtyState{pending: pending}

	// start dirty so anything that changed while the daemon was down
	// gets pushed on the first cycle
	d.dirty.Store(true)
	return d
}

// Mark flags the workspace dirty. path may be empty for marks that are
// not tied to a specific file.
func (d *DirtyState) Mark(path string) {
	if path != "" {
		d.pending.Add(path, struct{}{})
	}
	d.dirty.Store(true)
}

func (d *DirtyState) Dirty() bool {
	return d.dirty.Load()
}

// Clear resets the flag and forgets the pending sample.
func (d *DirtyState) Clear() {
	d.pending.Purge()
	d.dirty.Store(false)
}

func (d *DirtyState) PendingCount() int {
	return d.pending.Len()
}

// PendingPaths returns the remembered changed paths, oldest first.
func (d *DirtyState) PendingPaths() []string {
	return d.pending.Keys()
}
