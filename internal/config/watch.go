package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads Defaults from a config file whenever the file is
// written, so a long-running process such as cmd/poolctl can pick up a new
// default pool size or policy without restarting. It never touches pools
// already open — see the Defaults doc comment.
type Watcher struct {
	w    *fsnotify.Watcher
	path string
	onCh chan Defaults
}

// NewWatcher starts watching path for writes and returns a Watcher whose
// Changes channel delivers a freshly-loaded Defaults after each write.
// Load errors (e.g. a mid-write partial file) are logged and skipped rather
// than delivered, so a transient bad read never resets a live default.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &Watcher{w: fw, path: path, onCh: make(chan Defaults, 1)}
	go w.loop()

	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			d, err := Load(w.path)
			if err != nil {
				log.Printf("config: reload of %s failed: %v", w.path, err)
				continue
			}

			select {
			case w.onCh <- d:
			default:
				// Drop the stale pending reload in favor of the new one.
				select {
				case <-w.onCh:
				default:
				}
				w.onCh <- d
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			log.Printf("config: watch error on %s: %v", w.path, err)
		}
	}
}

// Changes delivers a Defaults value each time path is rewritten and
// successfully reparsed.
func (w *Watcher) Changes() <-chan Defaults { return w.onCh }

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.w.Close() }
