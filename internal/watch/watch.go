// Package watch validates document files in a directory as they change.
package watch

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/papapumpkin/mnoda/internal/logging"
	"github.com/papapumpkin/mnoda/pkg/mnoda"
	"github.com/papapumpkin/mnoda/pkg/mnoda/codec"
)

// Result is the outcome of loading one changed document file.
type Result struct {
	Path          string
	Removed       bool // File no longer exists
	Records       int
	Relationships int
	Document      *mnoda.Document // Nil when Err is set or the file was removed
	Err           error
}

// Watcher monitors a directory for document changes using fsnotify.
type Watcher struct {
	Dir     string
	Results <-chan Result // Read-only external channel

	results  chan Result // Internal write channel
	debounce time.Duration
	loader   *mnoda.RecordLoader
	logger   *zap.Logger
	stop     chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher
	started  atomic.Bool
	stopOnce sync.Once
}

// ErrStarted is returned by Start on a watcher that was already started.
var ErrStarted = errors.New("watch: already started")

// New creates a watcher for dir. Events for the same file closer together
// than debounce are collapsed into one Result. A nil loader means
// mnoda.NewRecordLoaderWithAllKnownTypes.
func New(dir string, debounce time.Duration, loader *mnoda.RecordLoader, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	if loader == nil {
		loader = mnoda.NewRecordLoaderWithAllKnownTypes()
	}

	ch := make(chan Result, 16)
	return &Watcher{
		Dir:      dir,
		Results:  ch,
		results:  ch,
		debounce: debounce,
		loader:   loader,
		logger:   logging.OrNop(logger),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
	}, nil
}

// Start begins watching the directory. A watcher can be started once.
func (w *Watcher) Start() error {
	if w.started.Load() {
		return ErrStarted
	}
	if err := w.watcher.Add(w.Dir); err != nil {
		return err
	}
	if !w.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	w.logger.Info("watching for document changes", zap.String("dir", w.Dir), zap.Duration("debounce", w.debounce))

	go w.loop()
	return nil
}

// Stop closes the watcher and the Results channel. Pending changes that
// nobody is receiving are dropped. Stop may be called more than once, and
// on a watcher that was never started.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		// A Start racing with Stop must not launch the loop afterwards.
		running := !w.started.CompareAndSwap(false, true)
		close(w.stop)
		w.watcher.Close()
		if running {
			<-w.done // Wait for loop to exit
		}
		close(w.results)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isDocumentFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					delete(pending, file)
					if !w.emit(w.check(file)) {
						return
					}
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

// check loads file and summarizes the outcome.
func (w *Watcher) check(file string) Result {
	c, err := codec.ForPath(file)
	if err != nil {
		return Result{Path: file, Err: err}
	}
	doc, err := codec.LoadDocument(file, c, w.loader)
	if errors.Is(err, fs.ErrNotExist) {
		w.logger.Debug("document removed", zap.String("path", file))
		return Result{Path: file, Removed: true}
	}
	if err != nil {
		w.logger.Warn("invalid document", zap.String("path", file), zap.Error(err))
		return Result{Path: file, Err: err}
	}
	w.logger.Debug("document valid", zap.String("path", file),
		zap.Int("records", len(doc.Records())),
		zap.Int("relationships", len(doc.Relationships())))
	return Result{
		Path:          file,
		Records:       len(doc.Records()),
		Relationships: len(doc.Relationships()),
		Document:      doc,
	}
}

// emit delivers r unless the watcher is stopping. It reports whether the
// loop should keep running.
func (w *Watcher) emit(r Result) bool {
	select {
	case w.results <- r:
		return true
	case <-w.stop:
		return false
	}
}

// isDocumentFile reports whether name has an extension a codec handles.
// Dotfiles are skipped so in-flight temp files from atomic saves never
// trigger a check.
func isDocumentFile(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, err := codec.ForPath(base)
	return err == nil
}
