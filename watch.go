// File: declconf/watch.go
package declconf

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// WatchOptions configures the polling watcher.
type WatchOptions struct {
	// PollInterval between resolution attempts (minimum 100ms).
	PollInterval time.Duration

	// Eternal respawns the watch loop after it terminates on a resolution
	// failure (e.g. a source becoming unavailable mid-watch), instead of
	// stopping for good.
	Eternal bool

	// RespawnDelay between a loop termination and its eternal respawn.
	RespawnDelay time.Duration

	// OnError receives resolution failures. Loop failures never propagate
	// to the caller of Start.
	OnError func(error)

	// Logger, when set, records supervisor events (loop failures,
	// respawns).
	Logger *slog.Logger
}

// DefaultWatchOptions returns sensible defaults for watching.
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval: DefaultPollInterval,
		RespawnDelay: DefaultRespawnDelay,
	}
}

// Watcher re-resolves the schema on an interval, diffs consecutive Resolved
// trees, and invokes callbacks for changes. It is a supervised task: the
// loop is cancellable through the Start context, termination is observable
// through Done, and Eternal mode restarts the loop until cancelled.
type Watcher struct {
	schema *Schema
	labels []string
	opts   WatchOptions

	mu      sync.Mutex
	itemFns map[string][]func(path string, oldValue, newValue any)
	treeFns []func(old, new *Resolved)
	last    *Resolved

	running atomic.Bool
	done    chan struct{}
}

// NewWatcher creates a watcher over the given precedence list (empty means
// registration order). Register callbacks, then call Start.
func (s *Schema) NewWatcher(opts WatchOptions, labels ...string) *Watcher {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.RespawnDelay <= 0 {
		opts.RespawnDelay = DefaultRespawnDelay
	}
	return &Watcher{
		schema:  s,
		labels:  labels,
		opts:    opts,
		itemFns: make(map[string][]func(string, any, any)),
		done:    make(chan struct{}),
	}
}

// OnItem registers a callback for changes to one dotted path. The callback
// receives the old and new values (nil for absent).
func (w *Watcher) OnItem(path string, fn func(path string, oldValue, newValue any)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.itemFns[path] = append(w.itemFns[path], fn)
}

// OnChange registers a whole-tree callback, invoked when a resolution
// produced changes not covered by any per-item callback.
func (w *Watcher) OnChange(fn func(old, new *Resolved)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.treeFns = append(w.treeFns, fn)
}

// Start performs the initial load and spawns the watch loop. The loop stops
// when ctx is cancelled; Done unblocks once it has fully wound down.
func (w *Watcher) Start(ctx context.Context) (*Resolved, error) {
	if !w.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("watcher already started")
	}

	initial, err := w.schema.Load(ctx, w.labels...)
	if err != nil {
		w.running.Store(false)
		return nil, err
	}
	w.mu.Lock()
	w.last = initial
	w.mu.Unlock()

	go w.supervise(ctx)
	return initial, nil
}

// Done is closed once the watch loop (including eternal respawns) has
// terminated. No zombie tasks: cancellation is always observable here.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// supervise runs the watch loop and restarts it in Eternal mode until the
// context is cancelled.
func (w *Watcher) supervise(ctx context.Context) {
	defer close(w.done)
	defer w.running.Store(false)

	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			return
		}
		w.report(err)
		if !w.opts.Eternal {
			return
		}
		if w.opts.Logger != nil {
			w.opts.Logger.Warn("watch loop terminated, respawning",
				"error", err, "delay", w.opts.RespawnDelay)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.opts.RespawnDelay):
		}
	}
}

// run polls until cancelled or a resolution failure terminates the loop.
func (w *Watcher) run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			next, err := w.schema.Load(ctx, w.labels...)
			if err != nil {
				return err
			}
			w.notify(next)
		}
	}
}

func (w *Watcher) notify(next *Resolved) {
	// Snapshot the callback slices under the lock; registration may race
	// with an in-flight poll.
	w.mu.Lock()
	prev := w.last
	w.last = next
	itemFns := make(map[string][]func(string, any, any), len(w.itemFns))
	for path, fns := range w.itemFns {
		itemFns[path] = append(([]func(string, any, any))(nil), fns...)
	}
	treeFns := append(([]func(old, new *Resolved))(nil), w.treeFns...)
	w.mu.Unlock()

	uncovered := false
	for _, path := range w.schema.order {
		// Dict containers change exactly when a child does; diffing leaves
		// avoids double-reporting.
		if w.schema.nodes[path].item.Kind == KindDict {
			continue
		}
		oldVal, _ := prev.Get(path)
		newVal, _ := next.Get(path)
		if reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		if fns := itemFns[path]; len(fns) > 0 {
			for _, fn := range fns {
				fn(path, oldVal, newVal)
			}
		} else {
			uncovered = true
		}
	}

	if uncovered {
		for _, fn := range treeFns {
			fn(prev, next)
		}
	}
}

func (w *Watcher) report(err error) {
	if err == nil {
		return
	}
	if w.opts.OnError != nil {
		w.opts.OnError(err)
	}
	if w.opts.Logger != nil {
		w.opts.Logger.Error("watch resolution failed", "error", err)
	}
}
