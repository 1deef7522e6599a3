package catalog

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

const pollInterval = 60 * time.Second

// StartWatcher monitors the overlay file and reloads the catalog on change.
// fsnotify is primary; a slow polling loop runs regardless so a missed event
// (editor rename tricks, network filesystems) still converges within a minute.
func (r *Registry) StartWatcher(ctx context.Context) {
	if r.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	useEvents := err == nil
	if err != nil {
		log.Printf("[catalog] fsnotify unavailable (%v), polling only", err)
	} else if err := watcher.Add(r.path); err != nil {
		// File may not exist yet; polling picks it up once created.
		log.Printf("[catalog] cannot watch %s (%v), polling only", r.path, err)
		watcher.Close()
		useEvents = false
	}

	if useEvents {
		go func() {
			defer watcher.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						// Small debounce: editors often fire write bursts.
						time.Sleep(100 * time.Millisecond)
						if err := r.Reload(); err != nil {
							log.Printf("[catalog] reload failed: %v", err)
						} else {
							log.Printf("[catalog] reloaded from %s", r.path)
						}
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Printf("[catalog] watch error: %v", err)
				}
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.Reload(); err == nil {
					continue
				}
				// Missing file is the normal case here; stay quiet.
			}
		}
	}()
}
