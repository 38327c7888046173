// Package watch reports debounced changes below mounted host directories.
package watch

import (
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"

	"github.com/justyntemme/deskshell/internal/debug"
)

// DefaultDebounce is used when New is given a non-positive interval.
const DefaultDebounce = 200 * time.Millisecond

// Change says that something below a mount root changed.
type Change struct {
	Key  string // Caller supplied mount key, e.g. a category
	Root string
}

// Watcher watches mount roots recursively and emits one Change per root
// once events have been quiet for the debounce interval.
type Watcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	roots    map[string]string // mount root -> key
	watching map[string]string // watched dir -> mount root
	notify   chan Change
	done     chan struct{}
	debounce time.Duration
	closed   sync.Once
}

// New creates a watcher and starts its event loop.
func New(debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	mw := &Watcher{
		watcher:  w,
		roots:    make(map[string]string),
		watching: make(map[string]string),
		notify:   make(chan Change, 10),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go mw.run()
	return mw, nil
}

func (w *Watcher) run() {
	lastEvent := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !(event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write)) {
				continue
			}
			w.mu.Lock()
			root, ok := w.rootOf(event.Name)
			w.mu.Unlock()
			if !ok {
				continue
			}
			lastEvent[root] = time.Now()
			debug.Log(debug.WATCH, "%s on %s (mount %s)", event.Op, event.Name, root)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "fsnotify error: %v", err)

		case <-ticker.C:
			now := time.Now()
			for root, last := range lastEvent {
				if now.Sub(last) < w.debounce {
					continue
				}
				delete(lastEvent, root)

				w.mu.Lock()
				key, ok := w.roots[root]
				if ok {
					// Pick up directories created since the last walk
					w.addTreeLocked(root)
				}
				w.mu.Unlock()
				if !ok {
					continue
				}

				select {
				case w.notify <- Change{Key: key, Root: root}:
					debug.Log(debug.WATCH, "mount %s changed", key)
				default:
					// Channel full, skip
				}
			}
		}
	}
}

// rootOf maps an event path to the mount root containing it.
func (w *Watcher) rootOf(name string) (string, bool) {
	if root, ok := w.watching[name]; ok {
		return root, true
	}
	root, ok := w.watching[filepath.Dir(name)]
	return root, ok
}

// Watch starts watching root and every directory below it, reporting
// changes under key. Watching an already watched root refreshes its
// directory set.
func (w *Watcher) Watch(key, root string) error {
	root = filepath.Clean(root)
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.watcher.Add(root); err != nil {
		return err
	}
	w.roots[root] = key
	w.watching[root] = root
	w.addTreeLocked(root)
	debug.Log(debug.WATCH, "watching %s as %s", root, key)
	return nil
}

func (w *Watcher) addTreeLocked(root string) {
	var mu sync.Mutex
	var dirs []string
	conf := &fastwalk.Config{Follow: false}
	fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root || !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return fastwalk.SkipDir
		}
		mu.Lock()
		dirs = append(dirs, path)
		mu.Unlock()
		return nil
	})

	for _, dir := range dirs {
		if _, ok := w.watching[dir]; ok {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			debug.Log(debug.WATCH, "cannot watch %s: %v", dir, err)
			continue
		}
		w.watching[dir] = root
	}
}

// Unwatch stops watching the root registered under key.
func (w *Watcher) Unwatch(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for root, k := range w.roots {
		if k != key {
			continue
		}
		for dir, r := range w.watching {
			if r == root {
				// Ignore errors when removing - path may already be gone
				w.watcher.Remove(dir)
				delete(w.watching, dir)
			}
		}
		delete(w.roots, root)
		debug.Log(debug.WATCH, "stopped watching %s", root)
	}
}

// Watched returns the number of directories currently watched.
func (w *Watcher) Watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watching)
}

// Changes returns the channel that receives mount change notifications
func (w *Watcher) Changes() <-chan Change {
	return w.notify
}

// Close shuts down the watcher
func (w *Watcher) Close() error {
	var err error
	w.closed.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}
