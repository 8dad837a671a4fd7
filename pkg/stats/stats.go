// Package stats provides a thread-safe counter sink and a bounded
// worker-pool helper shared by every pipeline stage CLI (spec §5).
//
// Grounded in theRebelliousNerd-codenerd's intelligence_gatherer.go,
// which guards a shared report struct with a sync.Mutex while fanning
// work out through golang.org/x/sync/errgroup, and in
// semantic_classifier.go's errgroup.WithContext + SetLimit usage for
// bounding concurrency. We generalize the ad-hoc "mu + addError"
// closure there into a reusable Counters type and a RunWorkers helper.
package stats

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Counters is a thread-safe named-counter sink. Every stage CLI reports
// its summary (processed/succeeded/failed/skipped/cache-hit counts)
// through one of these.
type Counters struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewCounters returns an empty counter sink.
func NewCounters() *Counters {
	return &Counters{values: make(map[string]int64)}
}

// Incr adds delta to the named counter, creating it at 0 if unseen.
func (c *Counters) Incr(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[name] += delta
}

// Get returns the current value of the named counter.
func (c *Counters) Get(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Snapshot returns a copy of every counter's current value.
func (c *Counters) Snapshot() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// RunWorkers runs fn once per item in items, with at most limit goroutines
// in flight at a time, and returns the first error encountered (if any).
// Each call to fn gets a context that is canceled once ctx is canceled or
// any call returns an error; fn is still invoked for every item. Used by
// the download10k, extract10k, collectdomains, enrichcompany and embed
// CLIs to implement the shared --workers flag.
func RunWorkers[T any](ctx context.Context, items []T, limit int, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}
