package domain

import (
	"errors"
	"fmt"
	"time"
)

// Caller-visible input errors.
var (
	// ErrInvalidTopK signals a non-positive result size.
	ErrInvalidTopK = errors.New("top_k must be positive")
	// ErrNoProfileSignal signals a profile with no skills, no embeddable text and no embedding.
	ErrNoProfileSignal = errors.New("candidate profile has no skills and no embeddable text")
	// ErrInvalidProfile signals a malformed candidate profile.
	ErrInvalidProfile = errors.New("invalid candidate profile")
	// ErrInvalidPosting signals a malformed job posting.
	ErrInvalidPosting = errors.New("invalid job posting")
	// ErrPostingNotFound signals a lookup of a posting absent from the local index.
	ErrPostingNotFound = errors.New("posting not found")
)

// Dependency failures. All of them degrade the pipeline and are never returned by Recommend.
var (
	// ErrIndexUnavailable signals that the vector store cannot be reached.
	ErrIndexUnavailable = errors.New("similarity index unavailable")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrProviderUnavailable signals a failed external job provider call.
	ErrProviderUnavailable = errors.New("job provider unavailable")
	// ErrProviderThrottled signals that an external job provider asked us to slow down.
	ErrProviderThrottled = errors.New("job provider throttled")
	// ErrRerankUnavailable signals that the language-model capability failed or is absent.
	ErrRerankUnavailable = errors.New("rerank unavailable")
	// ErrMalformedRerank signals an unusable language-model response.
	ErrMalformedRerank = errors.New("malformed rerank response")
)

// ThrottledError wraps ErrProviderThrottled with the provider's requested backoff.
type ThrottledError struct {
	Provider   string
	RetryAfter time.Duration // zero when the provider did not say
}

func (e *ThrottledError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: %s (retry after %s)", ErrProviderThrottled.Error(), e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: %s", ErrProviderThrottled.Error(), e.Provider)
}

func (e *ThrottledError) Unwrap() error { return ErrProviderThrottled }

// NewThrottled creates a throttling error for provider.
func NewThrottled(provider string, retryAfter time.Duration) error {
	return &ThrottledError{Provider: provider, RetryAfter: retryAfter}
}
