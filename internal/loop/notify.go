package loop

import (
	"fmt"
	"io"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// notifier wakes the polling loop when a task file lands in the
// pending directory. Events can be lost (editor rename dances, watch
// re-registration), so the interval tick always remains the
// authoritative scan.
type notifier struct {
	watcher *fsnotify.Watcher
	c       chan struct{}
}

func newNotifier(dir string, logw io.Writer) (*notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	n := &notifier{
		watcher: watcher,
		c:       make(chan struct{}, 1),
	}
	go n.eventLoop(logw)
	return n, nil
}

// C returns the wake channel.
func (n *notifier) C() <-chan struct{} {
	return n.c
}

// Close stops the underlying watcher and ends the event loop.
func (n *notifier) Close() {
	_ = n.watcher.Close()
}

func (n *notifier) eventLoop(logw io.Writer) {
	for {
		select {
		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".md") {
				continue
			}
			// Non-blocking: one pending wake is enough.
			select {
			case n.c <- struct{}{}:
			default:
			}

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(logw, "watch error: %v\n", err)
		}
	}
}
