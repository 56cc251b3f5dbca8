package gateway

import (
	"sync"
	"time"
)

// CooldownRegistry maps provider name to the time it may be called again.
// It is shared across requests; a fresh registry per test keeps runs independent.
type CooldownRegistry struct {
	mu    sync.Mutex
	until map[string]time.Time
	now   func() time.Time
}

// NewCooldownRegistry creates an empty registry. now may be nil for time.Now.
func NewCooldownRegistry(now func() time.Time) *CooldownRegistry {
	if now == nil {
		now = time.Now
	}
	return &CooldownRegistry{until: make(map[string]time.Time), now: now}
}

// Active reports whether provider is cooling down and until when.
func (r *CooldownRegistry) Active(provider string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	until, ok := r.until[provider]
	if !ok {
		return time.Time{}, false
	}
	if !r.now().Before(until) {
		delete(r.until, provider)
		return time.Time{}, false
	}
	return until, true
}

// Trip starts or extends a cooldown of d for provider. An existing later deadline is kept.
func (r *CooldownRegistry) Trip(provider string, d time.Duration) time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	until := r.now().Add(d)
	if prev, ok := r.until[provider]; ok && prev.After(until) {
		return prev
	}
	r.until[provider] = until
	return until
}

// Reset clears the cooldown for provider.
func (r *CooldownRegistry) Reset(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.until, provider)
}
