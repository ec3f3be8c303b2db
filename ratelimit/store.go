// Package ratelimit provides the request-gating counters consumed by the
// server middleware. Counters live behind the Store interface so deployments
// can swap the process-local implementation for a shared one; nothing in this
// package is module-level mutable state.
package ratelimit

import (
	"context"
	"time"
)

// Limit is a fixed-window rate: at most Requests per Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Store counts requests per key within fixed windows.
type Store interface {
	// Allow records one request for key and reports whether it is within the
	// limit. Implementations fail open on backend errors: gating requests is
	// not worth an outage.
	Allow(ctx context.Context, key string, limit Limit) bool

	// Reset clears all counters. Primarily for tests.
	Reset(ctx context.Context) error
}
