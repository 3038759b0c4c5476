package kv

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called after the data directory changes on disk
// underneath the process (restored backup, manual edit, external tool).
type ChangeCallback func(key string)

// Watch starts an fsnotify watcher on the file backend's data directory and
// reports externally-modified keys until ctx is cancelled. Events are
// debounced per key so an editor's write-then-rename shows up once.
//
// Only the file backend is watchable; sqlite and redis backends surface
// nothing to watch.
func Watch(ctx context.Context, fs *FS, logger *slog.Logger, cb ChangeCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", fs.Root()))

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

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, ok := keyFromPath(ev.Name)
			if !ok {
				continue // tmp files from our own atomic writes
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				pending[key] = struct{}{}
				scheduleFlush()
			}

		case <-flushCh:
			for key := range pending {
				logger.Debug("watcher: key changed", slog.String("key", key))
				if cb != nil {
					cb(key)
				}
			}
			pending = make(map[string]struct{})

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// keyFromPath maps a changed file back to its key, skipping non-key files.
func keyFromPath(path string) (string, bool) {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if strings.HasPrefix(base, ".") || !strings.HasSuffix(base, ".json") {
		return "", false
	}
	return strings.TrimSuffix(base, ".json"), true
}
