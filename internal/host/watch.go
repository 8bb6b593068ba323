package host

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/armature-dev/armature/internal/logging"
)

// Watch observes the given paths (description file, plugin directory) and
// invokes onChange with the changed path, debounced so editor write bursts
// collapse into one reload. It blocks until the context is cancelled.
func Watch(ctx context.Context, log *logging.Logger, paths []string, debounce time.Duration, onChange func(string)) error {
	if onChange == nil {
		return fmt.Errorf("host: watch requires an onChange callback")
	}
	if log == nil {
		log = logging.Nop()
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("host: create watcher: %w", err)
	}
	defer watcher.Close()

	watched := 0
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			log.Warnw("skipping missing watch path", "path", path)
			continue
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("host: watch %s: %w", path, err)
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("host: nothing to watch")
	}

	var (
		timer   *time.Timer
		pending string
	)
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = event.Name
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watch error", "error", err)
		case <-fire:
			timer = nil
			log.Infow("change detected", "path", pending)
			onChange(pending)
		}
	}
}
