// Package scriptwatch watches a tour script file for edits, an
// authoring aid: the demo host restarts the tour when the script
// changes on disk.
package scriptwatch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/guidepost-io/guidepost/internal/ports"
)

// debounce coalesces editor write bursts into one reload.
const debounce = 250 * time.Millisecond

// Watcher notifies when the script file changes.
type Watcher struct {
	path string
	fsw  *fsnotify.Watcher
	log  ports.Logger
	done chan struct{}
}

// New starts watching the script's directory. Watching the directory
// rather than the file survives the rename-replace dance editors do on
// save.
func New(path string, log ports.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		path: path,
		fsw:  fsw,
		log:  log,
		done: make(chan struct{}),
	}, nil
}

// Run invokes onChange (debounced) whenever the script file is written
// or replaced. It blocks until Close is called.
func (w *Watcher) Run(onChange func()) {
	var timer *time.Timer
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, onChange)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Warn(context.Background(), "script watcher error",
					ports.F("error", err))
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
