package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors an inbox directory and hands newly written supported
// files to a submit function.
type Watcher struct {
	dir    string
	submit func(path string)
	logger *zap.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewWatcher creates a watcher over dir. The directory is created if it
// does not exist. Each supported file is submitted at most once per
// watcher lifetime, on create or first write.
func NewWatcher(dir string, submit func(path string), logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:     dir,
		submit:  submit,
		logger:  logger,
		watcher: fw,
		done:    make(chan struct{}),
		seen:    make(map[string]struct{}),
	}
	go w.run()
	return w, nil
}

// ScanExisting submits files already present in the inbox. Useful at
// startup so files dropped while the process was down are not missed.
func (w *Watcher) ScanExisting() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.handle(filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 || event.Op&fsnotify.Write != 0 {
				w.handle(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(path string) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return
	}
	if FileType(path) == "" {
		return
	}

	w.mu.Lock()
	if _, dup := w.seen[path]; dup {
		w.mu.Unlock()
		return
	}
	w.seen[path] = struct{}{}
	w.mu.Unlock()

	w.logger.Info("inbox file detected", zap.String("path", path))
	w.submit(path)
}

// Close stops the watcher.
func (w *Watcher) Close() {
	close(w.done)
	w.watcher.Close()
}
