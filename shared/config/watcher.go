package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchYamlConfig reloads the YAML configuration whenever the file changes on
// disk. Changes are debounced so editors doing atomic rename saves trigger a
// single reload. The watcher runs until the context is canceled.
func WatchYamlConfig(ctx context.Context, cfg *YamlConfig, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: rename-based saves replace the inode
	// and a file watch would go stale after the first write.
	absPath, err := filepath.Abs(cfg.configPath)
	if err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()

		const debounce = 500 * time.Millisecond
		var timer *time.Timer

		for {
			select {
			case <-ctx.Done():
				logger.Debug("Config watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != absPath {
					continue
				}
				if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounce, func() {
						logger.Info("Configuration file changed, reloading", zap.String("path", absPath))
						if err := cfg.Update(); err != nil {
							logger.Error("Failed to reload configuration", zap.Error(err))
						}
					})
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Config watcher error", zap.Error(err))
			}
		}
	}()

	return nil
}
