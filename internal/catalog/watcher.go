package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/novadlp/nova-console/internal/metrics"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher reloads a catalog file into a Holder when it changes. A file that
// fails to load leaves the previous catalog in place.
type Watcher struct {
	watcher  *fsnotify.Watcher
	holder   *Holder
	path     string
	debounce time.Duration
	logger   *slog.Logger

	// reloaded is signalled after each reload attempt; tests read it.
	reloaded chan error
}

// NewWatcher watches the directory holding path, so editors that replace the
// file by rename are still picked up.
func NewWatcher(holder *Holder, path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create catalog watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		watcher:  fw,
		holder:   holder,
		path:     abs,
		debounce: defaultDebounce,
		logger:   logger,
	}, nil
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			w.notify(w.Reload())

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("catalog watcher error", "error", err)
		}
	}
}

// Reload reads the file once and swaps it in on success.
func (w *Watcher) Reload() error {
	c, err := Load(w.path)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("failure").Inc()
		w.logger.Error("catalog reload failed", "path", w.path, "error", err)
		return err
	}
	w.holder.Set(c)
	metrics.CatalogReloadsTotal.WithLabelValues("success").Inc()
	w.logger.Info("catalog reloaded", "path", w.path)
	return nil
}

func (w *Watcher) notify(err error) {
	if w.reloaded == nil {
		return
	}
	select {
	case w.reloaded <- err:
	default:
	}
}
