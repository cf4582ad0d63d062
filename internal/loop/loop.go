// Package loop drives the claim engine on a fixed polling interval.
// Cycles are sequential and never overlap; the loop runs until its
// context is cancelled or an optional cycle bound is reached.
package loop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"

	"github.com/promptbridge/promptbridge/internal/engine"
)

// ExitReason indicates why the loop stopped.
type ExitReason int

const (
	ExitReasonUnknown   ExitReason = iota
	ExitReasonCancelled            // Context cancelled (signal, test harness)
	ExitReasonMaxCycles            // Hit the configured cycle bound
)

// String returns a human-readable description of the exit reason.
func (r ExitReason) String() string {
	switch r {
	case ExitReasonCancelled:
		return "cancelled"
	case ExitReasonMaxCycles:
		return "max cycles"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a watcher run.
type Result struct {
	Reason  ExitReason
	Cycles  int
	Claimed int
}

// Options configures a Watcher.
type Options struct {
	Engine   *engine.Engine
	Interval time.Duration
	// MaxCycles bounds the number of poll cycles; 0 means unbounded.
	MaxCycles int
	// PendingDir, when set together with Notify, is watched for file
	// creation so a new task wakes the loop before the next tick.
	// Polling remains the authoritative scan.
	PendingDir string
	Notify     bool
	// LockPath, when set, is a flock guard refusing to start a second
	// watcher on the same working tree.
	LockPath string
	Log      io.Writer
}

// Watcher is one running instance of the polling loop.
type Watcher struct {
	engine     *engine.Engine
	interval   time.Duration
	maxCycles  int
	pendingDir string
	notify     bool
	lockPath   string
	log        io.Writer
}

// New creates a Watcher.
func New(opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	logw := opts.Log
	if logw == nil {
		logw = os.Stdout
	}
	return &Watcher{
		engine:     opts.Engine,
		interval:   interval,
		maxCycles:  opts.MaxCycles,
		pendingDir: opts.PendingDir,
		notify:     opts.Notify,
		lockPath:   opts.LockPath,
		log:        logw,
	}
}

// Run executes poll cycles until the context is cancelled or the cycle
// bound is reached. Errors inside a cycle are logged and never stop
// the loop.
func (w *Watcher) Run(ctx context.Context) (Result, error) {
	var result Result

	if w.lockPath != "" {
		guard := flock.New(w.lockPath)
		locked, err := guard.TryLock()
		if err != nil {
			return result, fmt.Errorf("acquire watcher lock %s: %w", w.lockPath, err)
		}
		if !locked {
			return result, fmt.Errorf("another watcher already holds %s", w.lockPath)
		}
		defer func() { _ = guard.Unlock() }()
	}

	var wake <-chan struct{}
	if w.notify && w.pendingDir != "" {
		n, err := newNotifier(w.pendingDir, w.log)
		if err != nil {
			// Degrade to pure polling.
			fmt.Fprintf(w.log, "filesystem notify unavailable, polling only: %v\n", err)
		} else {
			defer n.Close()
			wake = n.C()
		}
	}

	fmt.Fprintf(w.log, "Monitoring %s for new tasks (interval %s)...\n", w.pendingDir, w.interval)

	for {
		cycle, err := w.engine.RunCycle(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				// Claims that landed before cancellation still count.
				result.Cycles++
				result.Claimed += len(cycle.Claimed)
				result.Reason = ExitReasonCancelled
				return result, nil
			}
			fmt.Fprintf(w.log, "poll cycle failed (retrying next cycle): %v\n", err)
		}
		result.Cycles++
		result.Claimed += len(cycle.Claimed)

		if w.maxCycles > 0 && result.Cycles >= w.maxCycles {
			result.Reason = ExitReasonMaxCycles
			return result, nil
		}

		timer := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			result.Reason = ExitReasonCancelled
			return result, nil
		case <-timer.C:
		case <-wake:
			timer.Stop()
		}
	}
}
