// Package watch reports changes to a single input file.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

type Config struct {
	Path     string        // file to watch
	Debounce time.Duration // coalesce rapid write/rename bursts
}

// File emits on the returned channel each time Path is created, written or
// renamed into place. The parent directory is watched rather than the file
// so that editors and copy tools which replace the file are still seen.
// Both channels close when ctx is done.
func File(ctx context.Context, cfg Config, logger *slog.Logger) (<-chan struct{}, <-chan error, error) {
	if cfg.Path == "" {
		return nil, nil, errors.New("no path provided")
	}
	if logger == nil {
		logger = slog.Default()
	}
	target, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}
	if err := w.Add(filepath.Dir(target)); err != nil {
		logger.Error("failed to watch directory", "dir", filepath.Dir(target), "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	evCh := make(chan struct{}, 1)
	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if err := w.Close(); err != nil {
				logger.Warn("closing watcher", "error", err)
			}
		}()
		loop(ctx, target, cfg.Debounce, w.Events, w.Errors, evCh, errCh, logger)
	}()

	return evCh, errCh, nil
}

// loop owns evCh and errCh and closes both on return. The debounce timer
// fires into the select, so nothing else ever sends on evCh.
func loop(ctx context.Context, target string, debounce time.Duration,
	events <-chan fsnotify.Event, errs <-chan error,
	evCh chan<- struct{}, errCh chan<- error, logger *slog.Logger) {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		close(evCh)
		close(errCh)
	}()

	notify := func() {
		select {
		case evCh <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-fire:
			fire = nil
			notify()
		case e, ok := <-events:
			if !ok {
				return
			}
			name, _ := filepath.Abs(e.Name)
			if name != target || !e.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				continue
			}
			if debounce <= 0 {
				notify()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Error("watcher error", "error", err)
			select {
			case errCh <- err:
			default:
			}
		}
	}
}
