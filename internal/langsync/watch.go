package langsync

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

// Watch pushes again whenever a configured source file changes, waiting for
// debounce after the last change. Push failures are logged and reported to
// onPush (which may be nil); they do not stop the watch. Watch returns when
// ctx is done.
func (s *Syncer) Watch(ctx context.Context, debounce time.Duration, onPush func([]SyncAction, error)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := map[string]struct{}{}
	dirs := map[string]struct{}{}
	for _, set := range s.fileSets {
		local, err := filepath.Abs(set.LocalPath())
		if err != nil {
			return err
		}
		watched[local] = struct{}{}
		dirs[filepath.Dir(local)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			s.logger.Warn("cannot watch source folder", zap.String("dir", dir), zap.Error(err))
			continue
		}
		s.logger.Debug("watching source folder", zap.String("dir", dir))
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if _, tracked := watched[filepath.Clean(event.Name)]; !tracked {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				s.logger.Debug("source file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			actions, err := s.Push(ctx)
			if err != nil {
				s.logger.Error("push after change failed", zap.Error(err))
			}
			if onPush != nil {
				onPush(actions, err)
			}
		}
	}
}
