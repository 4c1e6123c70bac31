package specwatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"log/slog"
)

const debounceDelay = 300 * time.Millisecond

// Event describes one observed change to an installed kernel. Ops are
// "updated" and "removed"; a fresh install surfaces as updated.
type Event struct {
	Kernel string    `json:"kernel"`
	Op     string    `json:"op"`
	Path   string    `json:"path"`
	Time   time.Time `json:"time"`
}

// Watcher observes the kernels/ subdirectory of each configured Jupyter
// data dir and fans debounced change events out to subscribers. It never
// caches specs; resolution always reads the filesystem fresh, so the
// watcher is purely a notification surface.
type Watcher struct {
	paths   []string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu       sync.Mutex
	debounce map[string]*time.Timer
	subs     map[chan Event]struct{}
}

// New builds a watcher over the given Jupyter data directories.
func New(dataDirs []string) *Watcher {
	return &Watcher{
		paths:    dataDirs,
		debounce: make(map[string]*time.Timer),
		subs:     make(map[chan Event]struct{}),
	}
}

func (w *Watcher) SetLogger(logger *slog.Logger) {
	w.logger = logger
}

// Subscribe registers a new event channel. The channel is buffered;
// events are dropped for subscribers that fall behind.
func (w *Watcher) Subscribe() chan Event {
	ch := make(chan Event, 16)
	w.mu.Lock()
	w.subs[ch] = struct{}{}
	w.mu.Unlock()
	return ch
}

func (w *Watcher) Unsubscribe(ch chan Event) {
	w.mu.Lock()
	if _, ok := w.subs[ch]; ok {
		delete(w.subs, ch)
		close(ch)
	}
	w.mu.Unlock()
}

// Start blocks watching until the context is cancelled. Data dirs that
// do not exist yet are skipped; a host with no kernels installed is not
// an error.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	watched := 0
	for _, dir := range w.paths {
		base := filepath.Join(dir, "kernels")
		if err := w.addRecursive(base); err == nil {
			watched++
		}
	}
	w.logInfo("specwatch_started", "dirs", watched)

	for {
		select {
		case <-ctx.Done():
			_ = w.watcher.Close()
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
				}
			}
			if isChange(event) {
				w.scheduleNotify(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logError("specwatch_error", "error", err)
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	if _, err := os.Stat(root); err != nil {
		return err
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func isChange(event fsnotify.Event) bool {
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// scheduleNotify coalesces bursts of events on the same kernel dir into
// a single notification after a quiet period.
func (w *Watcher) scheduleNotify(path string) {
	kernelDir := w.kernelDir(path)
	if kernelDir == "" {
		return
	}

	w.mu.Lock()
	if timer, ok := w.debounce[kernelDir]; ok {
		timer.Stop()
	}
	w.debounce[kernelDir] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.debounce, kernelDir)
		w.mu.Unlock()

		op := "updated"
		if _, err := os.Stat(kernelDir); err != nil {
			op = "removed"
		}
		w.publish(Event{
			Kernel: filepath.Base(kernelDir),
			Op:     op,
			Path:   kernelDir,
			Time:   time.Now(),
		})
	})
	w.mu.Unlock()
}

// kernelDir maps an event path to the kernel directory that owns it:
// the first path element below a watched kernels/ base.
func (w *Watcher) kernelDir(path string) string {
	for _, dir := range w.paths {
		base := filepath.Join(dir, "kernels")
		rel, err := filepath.Rel(base, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		parts := strings.Split(rel, string(filepath.Separator))
		return filepath.Join(base, parts[0])
	}
	return ""
}

func (w *Watcher) publish(ev Event) {
	w.logInfo("kernelspec_changed", "kernel", ev.Kernel, "op", ev.Op, "path", ev.Path)
	w.mu.Lock()
	for ch := range w.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	w.mu.Unlock()
}

func (w *Watcher) logInfo(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}

func (w *Watcher) logError(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Error(msg, args...)
	}
}
