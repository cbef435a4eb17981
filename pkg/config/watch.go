package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	loggerpkg "github.com/minhyannv/spawn-go/pkg/logger"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the config file at path whenever it changes and passes every
// successfully loaded Config to onChange. Invalid files are logged and
// skipped so the previous configuration stays in effect. Watch blocks until
// ctx is done.
func Watch(ctx context.Context, path string, logger loggerpkg.Logger, onChange func(Config)) error {
	if onChange == nil {
		return fmt.Errorf("onChange is required")
	}
	if logger == nil {
		logger = loggerpkg.NopLogger{}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file by renaming over it.
	if err := w.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(absPath), err)
	}
	logger.Debug("watching config", loggerpkg.Fields{"path": absPath})

	var (
		timer  *time.Timer
		reload = make(chan struct{}, 1)
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(DefaultDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			cfg, err := Load(absPath)
			if err != nil {
				logger.Warn("config reload failed, keeping previous config", loggerpkg.Fields{"path": absPath, "error": err.Error()})
				continue
			}
			logger.Info("config reloaded", loggerpkg.Fields{"path": absPath})
			onChange(cfg)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher error", loggerpkg.Fields{"error": err.Error()})
		}
	}
}
