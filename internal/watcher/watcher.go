package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"taxfiler/internal/logging"
	"taxfiler/internal/scan"
	"taxfiler/internal/tracking"
)

const (
	defaultSettle = 2 * time.Second
	defaultPoll   = 100 * time.Millisecond
	readyBuffer   = 64
)

// Handler receives one settled file. It runs on the watcher's dispatch
// goroutine; a new file is not dispatched until the previous call returns.
type Handler func(ctx context.Context, path string)

// Options configures a Watcher.
type Options struct {
	Dir         string
	Filter      scan.Filter
	Settle      time.Duration
	Poll        time.Duration
	InitialScan bool
	// Tracker is consulted before dispatch. Files that leave the directory
	// are released only for this watcher; the tracker's own records stay.
	// Pass a *tracking.Session to share that state with the handler.
	Tracker tracking.Tracker
	Logger  *slog.Logger
}

// Watcher reports settled files in a single directory.
type Watcher struct {
	dir         string
	filter      scan.Filter
	settle      time.Duration
	poll        time.Duration
	initialScan bool
	tracker     *tracking.Session
	logger      *slog.Logger
	handler     Handler

	mu      sync.Mutex
	running bool
	pending map[string]struct{}
	fsw     *fsnotify.Watcher
	ready   chan string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New validates opts and builds a stopped Watcher.
func New(opts Options, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, errors.New("watcher requires a handler")
	}
	if opts.Dir == "" {
		return nil, errors.New("watcher requires a directory")
	}
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve watch dir: %w", err)
	}
	settle := opts.Settle
	if settle < 0 {
		settle = defaultSettle
	}
	poll := opts.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	session, ok := opts.Tracker.(*tracking.Session)
	if !ok {
		session = tracking.NewSession(opts.Tracker)
	}
	return &Watcher{
		dir:         dir,
		filter:      opts.Filter,
		settle:      settle,
		poll:        poll,
		initialScan: opts.InitialScan,
		tracker:     session,
		logger:      logging.NewComponentLogger(opts.Logger, "watcher"),
		handler:     handler,
	}, nil
}

// Dir returns the absolute directory being watched.
func (w *Watcher) Dir() string {
	return w.dir
}

// Start subscribes to the directory and begins dispatching files.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}

	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("stat watch dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch dir %s is not a directory", w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.ctx = runCtx
	w.cancel = cancel
	w.fsw = fsw
	w.ready = make(chan string, readyBuffer)
	w.pending = make(map[string]struct{})
	w.running = true

	w.wg.Add(2)
	go w.dispatch()
	go w.loop()

	w.logger.Info("watching inbox",
		logging.String("dir", w.dir),
		logging.Duration("settle", w.settle),
		logging.String(logging.FieldEventType, "watch_started"),
	)

	if w.initialScan {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.scanExisting()
		}()
	}
	return nil
}

// Stop unsubscribes and waits for in-flight handlers to return.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	w.running = false
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if fsw != nil {
		_ = fsw.Close()
	}
	w.wg.Wait()
	w.logger.Info("watcher stopped", logging.String(logging.FieldEventType, "watch_stopped"))
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(w.logger, "watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check that the inbox folder still exists and is readable"),
				logging.String(logging.FieldImpact, "some inbox changes may be missed until the next scan"),
			)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if filepath.Dir(path) != w.dir || !w.filter.Accepts(filepath.Base(path)) {
		return
	}
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.forget(path)
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		w.schedule(path)
	}
}

func (w *Watcher) scanExisting() {
	infos, err := scan.Dir(w.ctx, w.dir, w.filter, w.tracker)
	if err != nil {
		if w.ctx.Err() == nil {
			logging.WarnWithContext(w.logger, "initial scan failed", "watch_scan_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "files already in the inbox are not filed until they change"),
			)
		}
		return
	}
	for _, info := range infos {
		w.schedule(info.Path)
	}
}

// schedule starts settle detection for path unless it is already pending.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	if _, ok := w.pending[path]; ok {
		w.mu.Unlock()
		return
	}
	w.pending[path] = struct{}{}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		if !w.awaitStable(path) {
			w.release(path)
			return
		}
		select {
		case w.ready <- path:
		case <-w.ctx.Done():
			w.release(path)
		}
	}()
}

// awaitStable polls path until size and mtime hold for the settle interval.
// It returns false if the file vanishes or the watcher stops.
func (w *Watcher) awaitStable(path string) bool {
	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	var (
		lastSize    int64 = -1
		lastMod     time.Time
		stableSince time.Time
	)
	for {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		now := time.Now()
		if info.Size() != lastSize || !info.ModTime().Equal(lastMod) {
			lastSize, lastMod, stableSince = info.Size(), info.ModTime(), now
		} else if now.Sub(stableSince) >= w.settle {
			return true
		}
		select {
		case <-w.ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

func (w *Watcher) dispatch() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case path := <-w.ready:
			w.handle(path)
		}
	}
}

func (w *Watcher) handle(path string) {
	defer w.release(path)
	done, err := w.tracker.HasBeenProcessed(w.ctx, path)
	if err != nil {
		logging.WarnWithContext(w.logger, "processed lookup failed", "watch_tracker_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "file handled without duplicate check"),
		)
	} else if done {
		w.logger.Debug("skipping processed file", logging.String("path", path))
		return
	}
	w.logger.Debug("file settled", logging.String("path", path), logging.String(logging.FieldEventType, "file_settled"))
	w.handler(w.ctx, path)
}

func (w *Watcher) release(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()
}

// forget releases path in the session so a file arriving under the same
// name is filed again.
func (w *Watcher) forget(path string) {
	_ = w.tracker.Forget(w.ctx, path)
	w.logger.Debug("released removed file", logging.String("path", path))
}
