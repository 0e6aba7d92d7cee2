// Package watch reloads the sanctions list file into a registry whenever
// the file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/innocence-protocol/innocence/pkg/sanctions"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

var (
	// ErrNotRegularFile is returned when the watched path is a directory.
	ErrNotRegularFile = errors.New("watch: sanctions path is not a regular file")

	// ErrEmptyList is returned by Reload for a file with no addresses
	// unless empty lists are allowed.
	ErrEmptyList = errors.New("watch: sanctions file lists no addresses")
)

// ErrorCallback is called when an error occurs during watching or reloading.
type ErrorCallback func(err error)

// Watcher swaps a new snapshot into the registry after each change to the
// list file. A file that fails to parse leaves the current snapshot in
// place.
type Watcher struct {
	path     string
	registry *sanctions.Registry
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	allowEmpty bool
	onError  ErrorCallback
	reloads  atomic.Int64
	failures atomic.Int64

	done chan struct{}
}

// NewWatcher watches path for registry. The directory holding path is
// watched so that atomic replacements by rename are seen.
func NewWatcher(path string, registry *sanctions.Registry, logger *slog.Logger) (*Watcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot access sanctions file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		path:     filepath.Clean(path),
		registry: registry,
		fsw:      fsw,
		logger:   logger,
		debounce: DefaultDebounce,
		done:     make(chan struct{}),
	}, nil
}

// SetErrorCallback sets a callback for watch and reload errors.
func (w *Watcher) SetErrorCallback(cb ErrorCallback) {
	w.onError = cb
}

// SetDebounce changes the delay between the last event and the reload.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// SetAllowEmpty lets Reload install a list with no addresses.
func (w *Watcher) SetAllowEmpty(allow bool) {
	w.allowEmpty = allow
}

// ReloadCount returns the number of successful reloads.
func (w *Watcher) ReloadCount() int64 {
	return w.reloads.Load()
}

// FailureCount returns the number of rejected reloads.
func (w *Watcher) FailureCount() int64 {
	return w.failures.Load()
}

// Reload loads the file and installs it in the registry.
func (w *Watcher) Reload() error {
	list, err := sanctions.LoadFile(w.path)
	if err != nil {
		w.failures.Add(1)
		return err
	}
	if list.Len() == 0 && !w.allowEmpty {
		w.failures.Add(1)
		return fmt.Errorf("%w: %s", ErrEmptyList, w.path)
	}
	previous := w.registry.Root()
	w.registry.Replace(list)
	w.reloads.Add(1)
	w.logger.Info("sanctions list reloaded",
		"path", w.path,
		"addresses", list.Len(),
		"root", list.Root().Hex(),
		"previous_root", previous.Hex(),
	)
	return nil
}

// Start processes events until ctx is cancelled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			if _, err := os.Stat(w.path); err != nil {
				// Renamed away; the replacement's Create event follows.
				continue
			}
			if err := w.Reload(); err != nil {
				w.logger.Warn("sanctions reload failed, keeping current list", "path", w.path, "error", err)
				w.report(err)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) report(err error) {
	if w.onError != nil {
		w.onError(err)
	}
}

// Close stops the watcher and signals Start to return.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.fsw.Close()
}
