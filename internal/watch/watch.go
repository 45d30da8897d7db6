// Package watch transcribes MP3 files as they appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fmueller/speechtxt/internal/transcript"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 2 * time.Second

// Handler is called once per settled file. Files are handled one at a time.
type Handler func(ctx context.Context, path string) error

type Options struct {
	Debounce time.Duration
	Logger   *zap.Logger
}

type stamp struct {
	size    int64
	modTime time.Time
}

type Watcher struct {
	dir      string
	handle   Handler
	debounce time.Duration
	logger   *zap.Logger

	fs      *fsnotify.Watcher
	ready   chan string
	done    chan struct{}
	mu      sync.Mutex
	pending map[string]*time.Timer
	handled map[string]stamp
}

func New(dir string, handle Handler, opts Options) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory: %s is not a directory", dir)
	}
	if handle == nil {
		return nil, errors.New("watch handler is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Watcher{
		dir:      dir,
		handle:   handle,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		ready:    make(chan string, 64),
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
		handled:  make(map[string]stamp),
	}, nil
}

// Start begins watching. Events that arrive after Start returns are seen.
// The watcher stops when ctx is cancelled; Done is closed afterwards.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.fs = fsw

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.eventLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		w.workLoop(ctx)
	}()
	go func() {
		wg.Wait()
		w.stopTimers()
		close(w.done)
	}()

	w.logger.Info("watching for mp3 files", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))
	return nil
}

func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

func (w *Watcher) eventLoop(ctx context.Context) {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.onEvent(ctx, event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) onEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !isCandidate(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
	w.logger.Debug("file changed", zap.String("path", path))
}

func (w *Watcher) workLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.ready:
			w.process(ctx, path)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	current := stamp{size: info.Size(), modTime: info.ModTime()}
	if prev, ok := w.handled[path]; ok && prev == current {
		w.logger.Debug("file unchanged since last run", zap.String("path", path))
		return
	}

	w.logger.Info("transcribing", zap.String("path", path))
	if err := w.handle(ctx, path); err != nil {
		w.logger.Error("transcription failed", zap.String("path", path), zap.Error(err))
	}
	w.handled[path] = current
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

func isCandidate(path string) bool {
	base := filepath.Base(path)
	if len(base) > 0 && base[0] == '.' {
		return false
	}
	return transcript.IsMP3(path) && !transcript.IsOutputFile(path)
}
