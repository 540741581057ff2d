package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay absorbs editors writing a file in several steps.
const debounceDelay = 100 * time.Millisecond

// watchFiles calls reload after files change until ctx is done. reload
// returns the files to watch from then on; an empty result keeps the current
// set.
func watchFiles(ctx context.Context, files []string, stderr io.Writer, reload func() []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := map[string]bool{}
	update := func(next []string) {
		if len(next) == 0 {
			return
		}
		current := map[string]bool{}
		for _, file := range next {
			current[file] = true
		}
		for file := range watched {
			if !current[file] {
				_ = watcher.Remove(file)
			}
		}
		// Re-add everything to pick up files recreated by atomic saves.
		for file := range current {
			if err := watcher.Add(file); err != nil {
				_, _ = fmt.Fprintf(stderr, "warning: failed to watch %s: %v\n", file, err)
			}
		}
		watched = current
	}
	update(files)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()
	changed := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case changed <- struct{}{}:
				default:
				}
			})

		case <-changed:
			update(reload())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			_, _ = fmt.Fprintf(stderr, "warning: file watcher error: %v\n", err)
		}
	}
}
