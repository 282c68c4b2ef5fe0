package codebase

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileWatcher polls the codebase root and re-analyzes .kal files whose
// modification time moved forward. Removed files leave the codebase.
type FileWatcher struct {
	codebase     *Codebase
	stopCh       chan struct{}
	pollInterval time.Duration
	modTimes     map[string]time.Time
	onChange     func(paths []string)
}

func NewFileWatcher(c *Codebase) *FileWatcher {
	return &FileWatcher{
		codebase:     c,
		stopCh:       make(chan struct{}),
		pollInterval: 1 * time.Second,
		modTimes:     make(map[string]time.Time),
	}
}

// SetInterval changes the polling period. It must be called before Start.
func (w *FileWatcher) SetInterval(d time.Duration) {
	w.pollInterval = d
}

// OnChange registers fn to run after a poll that added, updated, or
// removed files. It receives the affected paths in sorted order.
func (w *FileWatcher) OnChange(fn func(paths []string)) {
	w.onChange = fn
}

func (w *FileWatcher) Start() {
	go w.run()
}

func (w *FileWatcher) Stop() {
	close(w.stopCh)
}

func (w *FileWatcher) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.poll()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *FileWatcher) poll() {
	changed := w.scan()
	if len(changed) > 0 && w.onChange != nil {
		w.onChange(changed)
	}
}

func (w *FileWatcher) scan() []string {
	currentFiles := make(map[string]bool)
	var changed []string

	root := w.codebase.RootDir()
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != Ext {
			return nil
		}

		currentFiles[path] = true

		lastMod, known := w.modTimes[path]
		if !known || info.ModTime().After(lastMod) {
			w.modTimes[path] = info.ModTime()
			if err := w.codebase.ScanFile(path); err != nil {
				w.codebase.log.Errorf("rescan %s: %s", path, err)
			}
			changed = append(changed, path)
		}
		return nil
	})

	for path := range w.modTimes {
		if !currentFiles[path] {
			delete(w.modTimes, path)
			w.codebase.RemoveFile(path)
			changed = append(changed, path)
		}
	}
	sort.Strings(changed)
	return changed
}
