package rotord

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// runObserver implements the Sentinel Observer (spec.md §4.5): it owns
// the single directory watch on c.dir, classifies every event, and hands
// Sentinel events to the Sentinel Handler under a read lock on
// observerGate so the worker's brief re-home step cannot interleave with
// an in-progress dispatch.
//
// fsnotify reports a file moved into a watched directory as a Create
// event (Rename only fires for the source path of a move originating
// inside the watched directory), so subscribing to Create alone covers
// both "file created" and "file moved into" from spec.md §4.5.
func (c *Coordinator) runObserver(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatchFailed, err)
	}
	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return fmt.Errorf("%w: watch %s: %v", ErrWatchFailed, c.dir, err)
	}

	close(c.watcherReady)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("%w: event channel closed", ErrWatchFailed)
			}
			if !event.Has(fsnotify.Create) {
				continue
			}

			name := filepath.Base(event.Name)
			if name == "" {
				continue
			}

			ev := classify(name, c.families)
			if ev.Kind != KindSentinel {
				continue
			}

			c.dispatch(ev)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("%w: error channel closed", ErrWatchFailed)
			}
			c.log.WithError(err).Error("rotord: watch error")
		}
	}
}

// dispatch hands a classified sentinel event to the Sentinel Handler
// under a read lock on observerGate.
func (c *Coordinator) dispatch(ev Event) {
	c.observerGate.RLock()
	defer c.observerGate.RUnlock()

	if err := c.handleSentinel(ev.Family, ev.FileName); err != nil {
		c.log.WithField("family", c.families[ev.Family]).WithError(err).Warn("rotord: sentinel handling failed")
	}
}
