// Package watch turns git metadata changes into refresh signals.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	log "github.com/chmouel/worktrees/internal/log"
	"github.com/chmouel/worktrees/internal/models"
)

// Debounce is the minimum spacing between two signals.
const Debounce = 600 * time.Millisecond

// DefaultIgnoredDirs are directory names whose contents never trigger a signal.
var DefaultIgnoredDirs = []string{"node_modules", "target", "build", "dist", ".gradle", "bin", "obj"}

// gitNamespaces hold names chosen by users (branches, worktrees). Ignored
// names do not apply below them.
var gitNamespaces = []string{"refs", "logs", "worktrees"}

// Watcher watches a git common directory (`.bare` or `.git`).
type Watcher struct {
	CommonDir string
	Roots     []string
	Ignored   []string
	Interval  time.Duration

	events  chan models.RepositoryEvent
	done    chan struct{}
	stop    sync.Once
	wg      sync.WaitGroup
	mu      sync.Mutex
	paths   map[string]struct{}
	fs      *fsnotify.Watcher
	limiter *rate.Limiter
}

// New returns a watcher for commonDir. ignored extends DefaultIgnoredDirs.
func New(commonDir string, ignored ...string) *Watcher {
	return &Watcher{
		CommonDir: commonDir,
		Roots: []string{
			filepath.Join(commonDir, "refs"),
			filepath.Join(commonDir, "logs"),
			filepath.Join(commonDir, "worktrees"),
		},
		Ignored:  append(slices.Clone(DefaultIgnoredDirs), ignored...),
		Interval: Debounce,
	}
}

// Start begins watching and returns the signal channel. The channel has room
// for one pending signal and is closed when the watcher stops. When watching
// cannot start the failure is logged and the channel is returned closed.
func (w *Watcher) Start(ctx context.Context) <-chan models.RepositoryEvent {
	w.events = make(chan models.RepositoryEvent, 1)
	w.done = make(chan struct{})
	w.paths = make(map[string]struct{})

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		w.fs = watcher
		if !w.addDir(w.CommonDir) {
			_ = watcher.Close()
			err = os.ErrNotExist
		}
	}
	if err != nil {
		log.Printf("watch: cannot watch %q: %v", w.CommonDir, err)
		close(w.events)
		w.stop.Do(func() { close(w.done) })
		return w.events
	}
	for _, root := range w.Roots {
		w.addTree(root)
	}
	w.limiter = rate.NewLimiter(rate.Every(w.Interval), 1)

	w.wg.Add(1)
	go w.run(ctx)
	return w.events
}

// Stop ends watching and waits for the watcher goroutine to exit.
func (w *Watcher) Stop() {
	if w.done == nil {
		return
	}
	w.stop.Do(func() { close(w.done) })
	w.wg.Wait()
}

// Meaningful reports whether a change at path should trigger a refresh.
func (w *Watcher) Meaningful(path string) bool {
	if path == "" || !within(w.CommonDir, path) {
		return false
	}
	if strings.HasSuffix(path, ".lock") {
		return false
	}
	rel, err := filepath.Rel(w.CommonDir, path)
	if err != nil {
		return false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if slices.Contains(gitNamespaces, parts[0]) {
		return true
	}
	for _, part := range parts {
		if slices.Contains(w.Ignored, part) {
			return false
		}
	}
	return true
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.events)
	defer w.fs.Close()

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-pending:
			pending = nil
			w.signal()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				w.maybeAddDir(ev.Name)
			}
			if !w.Meaningful(ev.Name) || pending != nil {
				continue
			}
			if delay := w.limiter.Reserve().Delay(); delay > 0 {
				pending = time.After(delay)
				continue
			}
			w.signal()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}

// signal queues a rescan unless one is already pending.
func (w *Watcher) signal() {
	select {
	case w.events <- models.RescanRequired{}:
	default:
	}
}

func (w *Watcher) maybeAddDir(path string) {
	for _, root := range w.Roots {
		if within(root, path) {
			w.addTree(path)
			return
		}
	}
}

func (w *Watcher) addDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.paths[path]; ok {
		return true
	}
	if err := w.fs.Add(path); err != nil {
		log.Printf("watch: add %s: %v", path, err)
		return false
	}
	w.paths[path] = struct{}{}
	return true
}

func (w *Watcher) addTree(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if !w.Meaningful(path) {
			return filepath.SkipDir
		}
		w.addDir(path)
		return nil
	})
}

// watched reports how many directories are being watched.
func (w *Watcher) watched() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}

func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
