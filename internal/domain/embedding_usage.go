package domain

import (
	"context"
	"sync"
)

type embeddingUsageKey struct{}

// EmbeddingUsage collects embedding calls and token usage for one recommendation request.
// The caller puts a pointer into the context; the instrumented embedder writes to it.
type EmbeddingUsage struct {
	mu          sync.Mutex
	calls       int
	totalTokens int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Record counts one embedding call and its tokens (0 on a cache hit).
func (u *EmbeddingUsage) Record(tokens int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.calls++
	u.totalTokens += tokens
	u.mu.Unlock()
}

// Snapshot returns the number of calls and tokens recorded so far.
func (u *EmbeddingUsage) Snapshot() (calls, tokens int) {
	if u == nil {
		return 0, 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls, u.totalTokens
}
