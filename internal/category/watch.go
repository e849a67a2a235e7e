package category

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// FileWatcher polls the YAML files of a directory and reports changed,
// added or removed files.
type FileWatcher struct {
	Dir      string
	Interval time.Duration
	onChange func(path string)
	mtimes   map[string]time.Time
}

// NewFileWatcher creates a watcher for dir's *.yaml files.
func NewFileWatcher(dir string, interval time.Duration, onChange func(path string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		Dir:      dir,
		Interval: interval,
		onChange: onChange,
		mtimes:   make(map[string]time.Time),
	}
}

// WatchLoader returns a watcher that invalidates l whenever a category file
// changes, then calls notify (which may be nil).
func WatchLoader(l *Loader, interval time.Duration, notify func(path string)) *FileWatcher {
	return NewFileWatcher(l.Paths().Dir(), interval, func(path string) {
		l.Invalidate()
		if notify != nil {
			notify(path)
		}
	})
}

// Run polls until ctx is done. The first scan only primes the cache.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	w.Scan(true)
	for {
		select {
		case <-ticker.C:
			w.Scan(false)
		case <-ctx.Done():
			return
		}
	}
}

// Scan compares current mtimes with the last scan. With prime set it only
// records them.
func (w *FileWatcher) Scan(prime bool) {
	matches, _ := filepath.Glob(filepath.Join(w.Dir, "*.yaml"))
	seen := make(map[string]bool, len(matches))
	for _, p := range matches {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		seen[p] = true
		mt := fi.ModTime()
		last, ok := w.mtimes[p]
		w.mtimes[p] = mt
		if prime {
			continue
		}
		if !ok || mt.After(last) {
			w.fire(p)
		}
	}
	for p := range w.mtimes {
		if !seen[p] {
			delete(w.mtimes, p)
			if !prime {
				w.fire(p)
			}
		}
	}
}

func (w *FileWatcher) fire(path string) {
	if w.onChange != nil {
		w.onChange(path)
	}
}
