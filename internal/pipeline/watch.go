package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"

	"github.com/ironsheep/image-glitch/internal/imaging"
)

// Debounce is how long the watcher waits for a burst of file events to
// settle before rendering again.
const Debounce = 100 * time.Millisecond

// Watcher re-renders whenever the input image, the expression file, or the
// config file changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	load    func() (*Config, error)
	cache   *imaging.ImageCache

	// OnRender, when set, is called after every render attempt.
	OnRender func(*Result, error)

	mu      sync.Mutex
	files   map[string]bool // absolute paths that trigger a render
	dirs    map[string]bool
	renders int
}

// NewWatcher creates a watcher. load is called before every render so edits
// to the config file take effect.
func NewWatcher(load func() (*Config, error), cache *imaging.ImageCache) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return &Watcher{
		watcher: fsWatcher,
		load:    load,
		cache:   cache,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}, nil
}

// Renders returns the number of render attempts so far.
func (w *Watcher) Renders() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renders
}

// Run renders once, then keeps rendering on changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.render(ctx)
	w.eventLoop(ctx)
	return nil
}

func (w *Watcher) render(ctx context.Context) {
	res, err := w.renderOnce(ctx)
	if err != nil {
		klog.Errorf("render failed: %v", err)
	}

	w.mu.Lock()
	w.renders++
	w.mu.Unlock()
	if w.OnRender != nil {
		w.OnRender(res, err)
	}
}

func (w *Watcher) renderOnce(ctx context.Context) (*Result, error) {
	cfg, err := w.load()
	if err != nil {
		return nil, err
	}
	w.track(cfg)

	// The input may have changed since it was cached.
	w.cache.Evict(cfg.Input)

	p, err := New(cfg, w.cache)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx)
}

// track starts watching the directories of every file that should trigger a
// render. Directories are watched instead of files so editors that replace
// files on save are still seen.
func (w *Watcher) track(cfg *Config) {
	files := make(map[string]bool)
	for _, path := range []string{cfg.Path, cfg.Input, cfg.ExpressionFile} {
		if path == "" || imaging.IsURL(path) {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		files[abs] = true
	}
	if out, err := filepath.Abs(cfg.Output); err == nil {
		delete(files, out)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files = files
	for path := range files {
		dir := filepath.Dir(path)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			klog.Warningf("failed to watch %s: %v", dir, err)
			continue
		}
		w.dirs[dir] = true
		klog.V(2).Infof("watching %s", dir)
	}
}

func (w *Watcher) triggers(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

func (w *Watcher) eventLoop(ctx context.Context) {
	settle := time.NewTimer(Debounce)
	settle.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !w.triggers(event.Name) {
				continue
			}
			klog.V(2).Infof("changed: %s", event.Name)
			settle.Reset(Debounce)
			pending = true

		case <-settle.C:
			if pending {
				pending = false
				w.render(ctx)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			klog.Errorf("watcher error: %v", err)
		}
	}
}
