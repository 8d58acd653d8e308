package vault

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch keeps the index current until ctx is done. fsnotify is not
// recursive, so every directory is registered and new ones are added as
// they appear.
func (x *Index) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	if err := x.addDirs(watcher, x.root); err != nil {
		watcher.Close()
		return err
	}

	if err := x.Refresh(); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		x.logger.Info("watching vault", "root", x.root)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				if event.Has(fsnotify.Create) {
					if err := x.addDirs(watcher, event.Name); err != nil {
						x.logger.Warn("watching new directory", "path", event.Name, "error", err)
					}
				}
				if err := x.Refresh(); err != nil {
					x.logger.Error("refreshing vault index", "error", err)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				x.logger.Error("vault watcher error", "error", err)
			}
		}
	}()

	return nil
}

func (x *Index) addDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// created-then-removed files and plain files are fine to skip
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != x.root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("add watch path %s: %w", path, err)
		}
		return nil
	})
}
