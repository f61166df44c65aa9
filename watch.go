package main

import (
	"sync"

	"github.com/fsnotify/fsnotify"
)

// diskWatcher flags files modified behind the editor's back. Writes the
// editor itself performs are suppressed once so a save does not flag
// its own buffer.
type diskWatcher struct {
	w      *fsnotify.Watcher
	notify func()

	mu       sync.Mutex
	changed  map[string]bool
	suppress map[string]bool
}

func newDiskWatcher(notify func()) (*diskWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dw := &diskWatcher{
		w:        w,
		notify:   notify,
		changed:  map[string]bool{},
		suppress: map[string]bool{},
	}
	go dw.run()
	return dw, nil
}

func (dw *diskWatcher) run() {
	for {
		select {
		case ev, ok := <-dw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			dw.mu.Lock()
			if dw.suppress[ev.Name] {
				delete(dw.suppress, ev.Name)
				dw.mu.Unlock()
				continue
			}
			dw.changed[ev.Name] = true
			dw.mu.Unlock()
			dlog.logf("watch", "changed on disk: %s", ev.Name)
			if dw.notify != nil {
				dw.notify()
			}
		case err, ok := <-dw.w.Errors:
			if !ok {
				return
			}
			dlog.logf("watch", "error: %v", err)
		}
	}
}

func (dw *diskWatcher) Watch(path string) error {
	if dw == nil || path == "" {
		return nil
	}
	return dw.w.Add(path)
}

func (dw *diskWatcher) Forget(path string) {
	if dw == nil || path == "" {
		return
	}
	_ = dw.w.Remove(path)
	dw.mu.Lock()
	delete(dw.changed, path)
	delete(dw.suppress, path)
	dw.mu.Unlock()
}

// SuppressNext ignores the next write event for path (our own save).
func (dw *diskWatcher) SuppressNext(path string) {
	if dw == nil || path == "" {
		return
	}
	dw.mu.Lock()
	dw.suppress[path] = true
	dw.mu.Unlock()
}

// Changed reports and clears the changed-on-disk flag for path.
func (dw *diskWatcher) Changed(path string) bool {
	if dw == nil {
		return false
	}
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.changed[path] {
		delete(dw.changed, path)
		return true
	}
	return false
}

func (dw *diskWatcher) Close() {
	if dw == nil || dw.w == nil {
		return
	}
	_ = dw.w.Close()
}
