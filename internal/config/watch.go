package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay coalesces the bursts of events editors produce on save
const settleDelay = 100 * time.Millisecond

// Update is delivered by Watch after the file changed. Exactly one of
// Registry and Err is set; a file that fails to parse is reported and the
// previous settings stay in force.
type Update struct {
	Registry *Registry
	Err      error
}

// Watch reloads path whenever it changes and streams the results until ctx is
// done. The directory is watched rather than the file so atomic
// rename-on-save is seen. The channel is closed when watching stops.
func Watch(ctx context.Context, path string) (<-chan Update, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	updates := make(chan Update, 4)
	name := filepath.Clean(path)

	go func() {
		defer close(updates)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				send(ctx, updates, Update{Err: err})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != name {
					continue
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) && !evt.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(settleDelay)
				} else {
					timer.Reset(settleDelay)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				reg, err := LoadFile(path)
				if err != nil {
					send(ctx, updates, Update{Err: err})
					continue
				}
				send(ctx, updates, Update{Registry: reg})
			}
		}
	}()

	return updates, nil
}

func send(ctx context.Context, ch chan<- Update, u Update) {
	select {
	case ch <- u:
	case <-ctx.Done():
	}
}
