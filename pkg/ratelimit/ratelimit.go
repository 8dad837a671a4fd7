// Package ratelimit provides a keyed registry of per-source rate limiters.
//
// Grounded in the original Python rate_limiting.RateLimiter (a thread-safe
// minimum-interval gate), reimplemented on top of golang.org/x/time/rate
// since it gives us the same single-token, minimum-interval behavior with
// a maintained, allocation-free implementation instead of hand-rolled
// mutex/sleep bookkeeping.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Default per-second rates for the sources named in spec §4.1.
const (
	RateSECEdgar      = 10.0
	RateSECEdgarSlow  = 5.0 // long-duration downloads (tar archives)
	RateFinviz        = 5.0
	RateFinnhub       = 1.0
	RateYahoo         = 10.0
	RateEmbeddingProv = 100.0
)

// Registry is a process-singleton set of named limiters. Limiters survive
// across pipeline stages: callers look one up by source name and the same
// underlying *rate.Limiter is returned on every call, so pacing is shared
// by every worker touching that source.
type Registry struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRegistry creates an empty limiter registry.
func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]*rate.Limiter)}
}

// Get returns the limiter for source, creating it at ratePerSecond with a
// burst of 1 (single-token semantics: one call admitted per 1/rate
// interval) the first time source is seen. Subsequent calls with a
// different ratePerSecond are ignored — the first caller to register a
// source wins, matching the original's get-or-create semantics.
func (r *Registry) Get(source string, ratePerSecond float64) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.limiters[source]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	r.limiters[source] = l
	return l
}

// Wait blocks until source's limiter admits one call, or ctx is canceled.
// Callers invoke Wait, then issue the request — the limiter is the sole
// arbiter of outbound pacing (§5).
func (r *Registry) Wait(ctx context.Context, source string, ratePerSecond float64) error {
	return r.Get(source, ratePerSecond).Wait(ctx)
}
