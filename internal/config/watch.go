package config

import (
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-Loads path whenever fsnotify reports a write or create,
// handing the result to onChange. A single goroutine owns the
// fsnotify.Watcher and calls onChange from that goroutine, so callers
// never touch fsnotify types directly.
type Watcher struct {
	w *fsnotify.Watcher
}

// Watch starts watching path and calls onChange with every successfully
// reloaded Config. Load errors triggered by a reload (e.g. a transient
// half-written file) are logged and skipped rather than propagated, since
// there is no caller on the other end of onChange to hand them to.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(path); err != nil {
		w.Close()

		return nil, err
	}

	go watchLoop(w, path, onChange)

	return &Watcher{w: w}, nil
}

func watchLoop(w *fsnotify.Watcher, path string, onChange func(Config)) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				log.Printf("config: reload %s: %v", path, err)

				continue
			}

			onChange(cfg)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}

			log.Printf("config: watch %s: %v", path, err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error { return w.w.Close() }
