package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after an external change to a stored day.
// kind is "updated" or "deleted".
type EventCallback func(kind string, date string)

// Watch starts an fsnotify watcher on a Dir backend's data directory
// and reports external edits until ctx is cancelled.
//
// Atomic writes arrive as rename events on a temp file followed by a
// create on the target, and editors produce bursts of writes, so
// changed dates are debounced and resolved against the file system
// when the timer fires.
func Watch(ctx context.Context, dir *Dir, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", dir.Root()))

	pending := make(map[string]struct{})
	var flushTimer *time.Timer
	var flushCh <-chan time.Time

	scheduleFlush := func() {
		if flushTimer == nil {
			flushTimer = time.NewTimer(200 * time.Millisecond)
			flushCh = flushTimer.C
		} else {
			flushTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if flushTimer != nil {
				flushTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-flushCh:
			for date := range pending {
				delete(pending, date)
				kind := "updated"
				p, pathErr := dir.path(date)
				if pathErr != nil {
					continue
				}
				if _, statErr := os.Stat(p); statErr != nil {
					kind = "deleted"
				}
				logger.Debug("watcher: day changed",
					slog.String("date", date),
					slog.String("kind", kind))
				if cb != nil {
					cb(kind, date)
				}
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			date, match := DateFromFilename(filepath.Base(ev.Name))
			if !match {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				pending[date] = struct{}{}
				scheduleFlush()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
