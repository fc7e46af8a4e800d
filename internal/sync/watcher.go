package sync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rjeczalik/notify"
)

const eventBufferSize = 64

// OnChange receives the root-relative path of every qualifying event. It
// is called from the watcher goroutine and must not block.
type OnChange func(relPath string)

// Watcher subscribes to recursive filesystem notifications under the
// checkout and reduces them to dirty marks. There is no debouncing here;
// the push loop's cadence collapses bursts into one cycle on its own.
type Watcher struct {
	root     string
	ignore   *IgnoreList
	onChange OnChange
	log      *slog.Logger

	raw  chan notify.EventInfo
	done chan struct{}
	wg   sync.WaitGroup
}

func NewWatcher(root string, ignore *IgnoreList, onChange OnChange, log *slog.Logger) *Watcher {
	return &Watcher{
		root:     root,
		ignore:   ignore,
		onChange: onChange,
		log:      log,
		done:     make(chan struct{}),
	}
}

func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("file watcher start", "dir", w.root)

	w.raw = make(chan notify.EventInfo, eventBufferSize)

	recursivePath := w.root + "/..."
	if err := notify.Watch(recursivePath, w.raw, notify.All); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	w.wg.Add(1)
	go w.filterEvents(ctx)

	return nil
}

func (w *Watcher) Stop() {
	w.log.Info("file watcher stopping")

	close(w.done)

	// stops delivery; the channel itself stays open
	if w.raw != nil {
		notify.Stop(w.raw)
	}

	w.wg.Wait()

	w.log.Info("file watcher stopped")
}

func (w *Watcher) filterEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.raw:
			if !ok {
				return
			}
			w.handleEvent(event)
		}
	}
}

func (w *Watcher) handleEvent(event notify.EventInfo) {
	path := event.Path()

	// a stat failure means the path is already gone; treat it as a file
	// event, which qualifies
	isDir := false
	if info, err := os.Stat(path); err == nil {
		isDir = info.IsDir()
	}

	if isNoise(event.Event(), path, isDir) {
		return
	}

	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}

	if w.ignore != nil && w.ignore.Match(rel) {
		w.log.Debug("file watcher ignored", "path", rel)
		return
	}

	w.log.Debug("file watcher", "event", event.Event(), "path", rel)
	w.onChange(rel)
}

// isNoise reports whether an event can never represent syncable content:
// anything touching the git metadata directory, paths whose basename
// starts with a dot, and write events on directories (mtime churn from
// child writes).
func isNoise(event notify.Event, path string, isDir bool) bool {
	if hasGitSegment(path) {
		return true
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return true
	}
	if isDir && event&notify.Write != 0 {
		return true
	}
	return false
}

func hasGitSegment(path string) bool {
	for _, seg := range strings.Split(path, string(filepath.Separator)) {
		if seg == ".git" {
			return true
		}
	}
	return false
}
